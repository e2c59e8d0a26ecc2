package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler processes the /start command using injected dependencies.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	welcome := fmt.Sprintf(h.deps.Config.Messages.Welcome, update.Message.From.FirstName)
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: welcome})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send welcome message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}

// NewHiHandler returns a handler for the /hi command, which reports the
// chat ID so users can find it without digging through API tools.
func NewHiHandler(deps HandlerDeps) bot.HandlerFunc {
	return hiHandler{deps}.Handle
}

type hiHandler struct {
	deps HandlerDeps
}

func (h hiHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "hi")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Hi handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	msg := update.Message
	var text string
	if msg.Chat.Type == models.ChatTypePrivate {
		text = fmt.Sprintf(h.deps.Config.Messages.PrivateChatID, msg.From.ID)
	} else {
		text = fmt.Sprintf(h.deps.Config.Messages.GroupChatID, msg.Chat.Title, msg.Chat.ID)
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: text}); err != nil {
		log.ErrorContext(ctx, "Failed to send hi message", "error", err, "chat_id", msg.Chat.ID)
	}
}
