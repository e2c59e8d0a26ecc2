package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const karmaTopLimit = 3

// NewKarmaHandler returns a handler for the /karma command, which replies
// with the sender's reputation in the current chat.
func NewKarmaHandler(deps HandlerDeps) bot.HandlerFunc {
	return karmaHandler{deps}.Handle
}

type karmaHandler struct {
	deps HandlerDeps
}

func (h karmaHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "karma")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Karma handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	msg := update.Message
	score, err := h.deps.Store.GetReputation(ctx, msg.Chat.ID, msg.From.ID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get reputation", "error", err, "chat_id", msg.Chat.ID, "user_id", msg.From.ID)
		score = 0
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, h.deps.Config.Messages.Karma, score)

	// In group chats also show the chat leaderboard.
	if msg.Chat.Type != models.ChatTypePrivate {
		top, err := h.deps.Store.TopReputation(ctx, msg.Chat.ID, karmaTopLimit)
		if err != nil {
			log.WarnContext(ctx, "Failed to get reputation leaderboard", "error", err, "chat_id", msg.Chat.ID)
		} else if len(top) > 0 {
			sb.WriteString(h.deps.Config.Messages.KarmaTop)
			for i, entry := range top {
				fmt.Fprintf(&sb, "\n%d. %s — %d", i+1, entry.FirstName, entry.Score)
			}
		}
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:          msg.Chat.ID,
		Text:            sb.String(),
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send karma message", "error", err, "chat_id", msg.Chat.ID)
	}
}
