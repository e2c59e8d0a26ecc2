package handlers

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewDefaultHandler returns the catch-all handler for updates no command
// matched. It routes voice notes to the voice flow and everything with
// text to the conversational flow.
func NewDefaultHandler(deps HandlerDeps) bot.HandlerFunc {
	text := NewTextHandler(deps)
	voice := NewVoiceHandler(deps)

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		if update.Message.Voice != nil {
			voice(ctx, b, update)
			return
		}
		if update.Message.Text != "" {
			text(ctx, b, update)
		}
	}
}

// NewTextHandler returns the handler for plain text messages: canned
// trigger phrases first, then the conversational AI flow.
func NewTextHandler(deps HandlerDeps) bot.HandlerFunc {
	return textHandler{
		deps:     deps,
		triggers: newBuddyTriggers(deps.Config.Telegram.BuddyPrefix),
		name:     strings.ToLower(deps.Config.Telegram.TriggerName),
	}.Handle
}

type textHandler struct {
	deps     HandlerDeps
	triggers buddyTriggers
	name     string
}

func (h textHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "text")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Text == "" {
		log.DebugContext(ctx, "Ignoring update with nil message, sender, or empty text", "update_id", update.ID)
		return
	}

	chatID := msg.Chat.ID
	lowered := strings.ToLower(msg.Text)

	if h.handleTrigger(ctx, b, msg, lowered) {
		return
	}

	// Other bots are ignored unless they address the bot by name.
	if msg.From.IsBot && !containsTriggerName(lowered, h.name) {
		return
	}

	// Addressing the bot by name puts the message through the karma
	// classifier.
	if containsTriggerName(lowered, h.name) {
		classifyAndAdjustReputation(ctx, h.deps, chatID, msg.From, lowered)
	}

	settings, err := h.deps.Store.GetChatSettings(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get chat settings", "error", err, "chat_id", chatID)
		return
	}
	if !settings.AIEnabled {
		return
	}

	// Private chats always get an answer.
	if msg.Chat.Type == models.ChatTypePrivate {
		reply := generateAIReply(ctx, h.deps, chatID, msg.From, msg.Text, false)
		sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: reply})
		return
	}

	// Group chats answer when called by name.
	if prompt, called := trimTriggerName(msg.Text, h.name); called {
		reply := generateAIReply(ctx, h.deps, chatID, msg.From, prompt, false)
		sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: reply})
		return
	}

	// Otherwise roll the dice and maybe interject.
	if settings.ReplyChance > 0 && rand.Intn(100)+1 <= settings.ReplyChance {
		log.DebugContext(ctx, "Interjecting into conversation", "chat_id", chatID, "chance", settings.ReplyChance)
		_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
		reply := generateAIReply(ctx, h.deps, chatID, msg.From, msg.Text, true)
		sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: reply})
	}
}

// handleTrigger serves the canned-content phrases and reports whether the
// message was consumed.
func (h textHandler) handleTrigger(ctx context.Context, b *bot.Bot, msg *models.Message, lowered string) bool {
	chatID := msg.Chat.ID
	messages := h.deps.Config.Messages

	switch h.triggers.detect(lowered) {
	case triggerQuote:
		sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: h.quoteLine()})
		return true

	case triggerJoke:
		sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: h.jokeLine(ctx)})
		return true

	case triggerChoose:
		options := h.triggers.chooseOptions(lowered)
		if len(options) == 0 {
			sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: messages.ChooseUsage})
			return true
		}
		sendText(ctx, b, h.deps, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf(messages.ChooseResult, options[rand.Intn(len(options))]),
			ParseMode: models.ParseModeMarkdownV1,
		})
		return true

	case triggerChance:
		// The oracle only answers questions that mention it by name.
		if !containsTriggerName(lowered, h.name) {
			return true
		}
		sendText(ctx, b, h.deps, &bot.SendMessageParams{
			ChatID:    chatID,
			Text:      fmt.Sprintf(messages.ChanceResult, rand.Intn(101)),
			ParseMode: models.ParseModeMarkdownV1,
		})
		return true

	case triggerInsult:
		name := msg.From.FirstName
		if name == "" {
			name = "Друг"
		}
		sendText(ctx, b, h.deps, &bot.SendMessageParams{
			ChatID:          chatID,
			Text:            fmt.Sprintf(messages.InsultReply, name),
			ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
		})
		return true
	}

	return false
}

// quoteLine picks a random quote, falling back when none are loaded.
func (h textHandler) quoteLine() string {
	if h.deps.Quotes == nil || h.deps.Quotes.Len() == 0 {
		return h.deps.Config.Messages.QuotesExhausted
	}
	return fmt.Sprintf(h.deps.Config.Messages.Quote, h.deps.Quotes.Random())
}

// jokeLine fetches a joke, falling back to the canned line when the
// external API is unavailable.
func (h textHandler) jokeLine(ctx context.Context) string {
	if h.deps.Jokes == nil {
		return h.deps.Config.Messages.JokeFallback
	}
	joke, err := h.deps.Jokes.Fetch(ctx)
	if err != nil {
		h.deps.Logger.WarnContext(ctx, "Joke fetch failed", "error", err)
		return h.deps.Config.Messages.JokeFallback
	}
	return fmt.Sprintf(h.deps.Config.Messages.Joke, joke)
}
