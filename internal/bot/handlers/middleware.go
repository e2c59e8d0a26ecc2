// Package handlers contains Telegram bot command, callback, and message
// handlers, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// ChatAdminOnly creates a middleware that lets an update through only when
// the sender administrates the chat it came from. Private chats always
// pass, since there the sender is the only "admin" there is.
func ChatAdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			log := deps.Logger.With("middleware", "ChatAdminOnly")

			chatID, userID, chatType, ok := senderAndChat(update)
			if !ok {
				log.WarnContext(ctx, "Update without identifiable sender or chat, dropping", "update_id", update.ID)
				return
			}

			if chatType == models.ChatTypePrivate {
				next(ctx, b, update)
				return
			}

			member, err := b.GetChatMember(ctx, &tgbot.GetChatMemberParams{
				ChatID: chatID,
				UserID: userID,
			})
			if err != nil {
				log.ErrorContext(ctx, "Failed to check chat membership", "error", err, "chat_id", chatID, "user_id", userID)
				return
			}

			if member.Type != models.ChatMemberTypeOwner && member.Type != models.ChatMemberTypeAdministrator {
				log.WarnContext(ctx, "Non-admin tried to change settings", "chat_id", chatID, "user_id", userID)
				if update.CallbackQuery != nil {
					_, _ = b.AnswerCallbackQuery(ctx, &tgbot.AnswerCallbackQueryParams{
						CallbackQueryID: update.CallbackQuery.ID,
						Text:            deps.Config.Messages.NotChatAdmin,
					})
					return
				}
				if _, err := b.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   deps.Config.Messages.NotChatAdmin,
				}); err != nil {
					log.ErrorContext(ctx, "Failed to send not-admin message", "error", err, "chat_id", chatID)
				}
				return
			}

			next(ctx, b, update)
		}
	}
}

// senderAndChat extracts the sender, chat, and chat type from either a
// message or a callback query update.
func senderAndChat(update *models.Update) (chatID, userID int64, chatType models.ChatType, ok bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.Chat.ID, update.Message.From.ID, update.Message.Chat.Type, true

	case update.CallbackQuery != nil:
		cb := update.CallbackQuery
		if cb.Message.Message != nil {
			return cb.Message.Message.Chat.ID, cb.From.ID, cb.Message.Message.Chat.Type, true
		}
		if cb.Message.InaccessibleMessage != nil {
			return cb.Message.InaccessibleMessage.Chat.ID, cb.From.ID, cb.Message.InaccessibleMessage.Chat.Type, true
		}
	}

	return 0, 0, "", false
}
