package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
)

// Interjection chance levels offered in the settings keyboard.
var allowedChanceValues = map[int]bool{0: true, 10: true, 30: true, 50: true, 100: true}

// NewSettingsHandler returns a handler for the /settings command, which
// shows an inline keyboard for toggling AI, voice, and the interjection
// chance of the current chat.
func NewSettingsHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

type settingsHandler struct {
	deps HandlerDeps
}

func (h settingsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Settings handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	settings, err := h.deps.Store.GetChatSettings(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get chat settings", "error", err, "chat_id", chatID)
		return
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        fmt.Sprintf(h.deps.Config.Messages.SettingsHeader, settings.ReplyChance),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: settingsKeyboard(settings),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send settings menu", "error", err, "chat_id", chatID)
	}
}

// settingsKeyboard builds the inline keyboard reflecting the current chat
// settings. Toggle buttons carry the value to switch TO, not the current one.
func settingsKeyboard(settings *database.ChatSettings) *models.InlineKeyboardMarkup {
	aiMark, aiTarget := "❌", 1
	if settings.AIEnabled {
		aiMark, aiTarget = "✅", 0
	}
	voiceMark, voiceTarget := "❌", 1
	if settings.VoiceEnabled {
		voiceMark, voiceTarget = "✅", 0
	}

	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{{Text: "🧠 ИИ: " + aiMark, CallbackData: fmt.Sprintf("set_ai_%d", aiTarget)}},
			{{Text: "🎤 Войс: " + voiceMark, CallbackData: fmt.Sprintf("set_voice_%d", voiceTarget)}},
			{
				{Text: "🔕 Молчать (0%)", CallbackData: "chance_0"},
				{Text: "🎲 10%", CallbackData: "chance_10"},
			},
			{
				{Text: "🎲 30%", CallbackData: "chance_30"},
				{Text: "🎲 50%", CallbackData: "chance_50"},
			},
			{{Text: "📢 Всегда (100%)", CallbackData: "chance_100"}},
		},
	}
}

// NewSettingsToggleHandler returns a callback handler for the set_ai_* and
// set_voice_* buttons of the settings keyboard.
func NewSettingsToggleHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsToggleHandler{deps}.Handle
}

type settingsToggleHandler struct {
	deps HandlerDeps
}

func (h settingsToggleHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings_toggle")

	cb := update.CallbackQuery
	if cb == nil {
		log.WarnContext(ctx, "Toggle handler received update without callback query", "update_id", update.ID)
		return
	}

	chatID, _, _, ok := senderAndChat(update)
	if !ok {
		log.WarnContext(ctx, "Callback without identifiable chat", "update_id", update.ID)
		return
	}

	parts := strings.Split(cb.Data, "_")
	if len(parts) != 3 {
		log.WarnContext(ctx, "Malformed toggle callback data", "data", cb.Data)
		return
	}

	var column, settingName string
	switch parts[1] {
	case "ai":
		column = database.SettingAIEnabled
		settingName = h.deps.Config.Messages.ToggleAIName
	case "voice":
		column = database.SettingVoiceEnabled
		settingName = h.deps.Config.Messages.ToggleVoiceName
	default:
		log.WarnContext(ctx, "Unknown toggle target in callback data", "data", cb.Data)
		return
	}

	value, err := strconv.Atoi(parts[2])
	if err != nil || (value != 0 && value != 1) {
		log.WarnContext(ctx, "Invalid toggle value in callback data", "data", cb.Data)
		return
	}

	if err := h.deps.Store.UpdateChatSetting(ctx, chatID, column, value); err != nil {
		log.ErrorContext(ctx, "Failed to update chat setting", "error", err, "chat_id", chatID, "setting", column)
		_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
			Text:            h.deps.Config.Messages.GeneralError,
		})
		return
	}

	// Switching the AI off ends the conversation, so the next time it is
	// switched on it starts with a clean slate.
	if column == database.SettingAIEnabled && value == 0 {
		if err := h.deps.Store.ClearMemory(ctx, chatID); err != nil {
			log.WarnContext(ctx, "Failed to clear conversation memory", "error", err, "chat_id", chatID)
		}
	}

	status := h.deps.Config.Messages.SettingDisabledTag
	if value == 1 {
		status = h.deps.Config.Messages.SettingEnabledTag
	}

	finishSettingsCallback(ctx, b, h.deps, cb, chatID,
		fmt.Sprintf("%s: %s", settingName, status),
		fmt.Sprintf(h.deps.Config.Messages.SettingChanged, settingName, status))
}

// finishSettingsCallback acknowledges the callback, removes the stale
// keyboard message, and posts the confirmation.
func finishSettingsCallback(ctx context.Context, b *bot.Bot, deps HandlerDeps, cb *models.CallbackQuery, chatID int64, popup, confirmation string) {
	log := deps.Logger.With("handler", "settings_callback")

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
		CallbackQueryID: cb.ID,
		Text:            popup,
	}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "chat_id", chatID)
	}

	if cb.Message.Message != nil {
		if _, err := b.DeleteMessage(ctx, &bot.DeleteMessageParams{
			ChatID:    chatID,
			MessageID: cb.Message.Message.ID,
		}); err != nil {
			log.WarnContext(ctx, "Failed to delete settings menu message", "error", err, "chat_id", chatID)
		}
	}

	if _, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      confirmation,
		ParseMode: models.ParseModeMarkdownV1,
	}); err != nil {
		log.ErrorContext(ctx, "Failed to send settings confirmation", "error", err, "chat_id", chatID)
	}
}

// NewChanceCallbackHandler returns a callback handler for the chance_*
// buttons of the settings keyboard.
func NewChanceCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return chanceCallbackHandler{deps}.Handle
}

type chanceCallbackHandler struct {
	deps HandlerDeps
}

func (h chanceCallbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings_chance")

	cb := update.CallbackQuery
	if cb == nil {
		log.WarnContext(ctx, "Chance handler received update without callback query", "update_id", update.ID)
		return
	}

	chatID, _, _, ok := senderAndChat(update)
	if !ok {
		log.WarnContext(ctx, "Callback without identifiable chat", "update_id", update.ID)
		return
	}

	value, err := strconv.Atoi(strings.TrimPrefix(cb.Data, "chance_"))
	if err != nil || !allowedChanceValues[value] {
		log.WarnContext(ctx, "Invalid chance value in callback data", "data", cb.Data)
		return
	}

	if err := h.deps.Store.UpdateChatSetting(ctx, chatID, database.SettingReplyChance, value); err != nil {
		log.ErrorContext(ctx, "Failed to update reply chance", "error", err, "chat_id", chatID)
		_, _ = b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cb.ID,
			Text:            h.deps.Config.Messages.GeneralError,
		})
		return
	}

	var confirmation string
	switch value {
	case 0:
		confirmation = h.deps.Config.Messages.ChanceSilent
	case 100:
		confirmation = h.deps.Config.Messages.ChanceAlways
	default:
		confirmation = fmt.Sprintf(h.deps.Config.Messages.ChanceSet, value)
	}

	finishSettingsCallback(ctx, b, h.deps, cb, chatID,
		fmt.Sprintf(h.deps.Config.Messages.ChanceAck, value), confirmation)
}
