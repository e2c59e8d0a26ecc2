package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewVoiceHandler returns the handler for voice notes: download,
// transcribe, run the transcript through the karma classifier, and answer
// with the AI when the bot is addressed by name.
func NewVoiceHandler(deps HandlerDeps) bot.HandlerFunc {
	return voiceHandler{
		deps: deps,
		name: strings.ToLower(deps.Config.Telegram.TriggerName),
	}.Handle
}

type voiceHandler struct {
	deps HandlerDeps
	name string
}

func (h voiceHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "voice")

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Voice == nil {
		log.DebugContext(ctx, "Ignoring update without a voice message", "update_id", update.ID)
		return
	}

	chatID := msg.Chat.ID
	settings, err := h.deps.Store.GetChatSettings(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to get chat settings", "error", err, "chat_id", chatID)
		return
	}
	if !settings.VoiceEnabled {
		return
	}

	log.InfoContext(ctx, "Handling voice message", "chat_id", chatID, "duration", msg.Voice.Duration)
	_, _ = b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionUploadVoice})

	path, err := downloadVoice(ctx, b, h.deps.Config.Telegram.Token, msg.Voice.FileID)
	if err != nil {
		log.ErrorContext(ctx, "Voice download failed", "error", err, "chat_id", chatID)
		return
	}
	defer func() {
		if removeErr := os.Remove(path); removeErr != nil && !os.IsNotExist(removeErr) {
			log.WarnContext(ctx, "Failed to remove downloaded voice file", "path", path, "error", removeErr)
		}
	}()

	transcript, err := h.deps.Transcriber.Transcribe(ctx, path)
	if err != nil {
		log.ErrorContext(ctx, "Voice transcription failed", "error", err, "chat_id", chatID)
		return
	}
	if transcript == "" {
		sendText(ctx, b, h.deps, &bot.SendMessageParams{ChatID: chatID, Text: h.deps.Config.Messages.NothingHeard})
		return
	}

	log.DebugContext(ctx, "Voice transcribed", "chat_id", chatID, "length", len(transcript))

	// Spoken words count towards karma just like typed ones.
	classifyAndAdjustReputation(ctx, h.deps, chatID, msg.From, transcript)

	lowered := strings.ToLower(transcript)
	if settings.AIEnabled && containsTriggerName(lowered, h.name) {
		prompt := stripTriggerName(transcript, h.name)
		reply := generateAIReply(ctx, h.deps, chatID, msg.From, prompt, false)
		sendText(ctx, b, h.deps, &bot.SendMessageParams{
			ChatID:          chatID,
			Text:            fmt.Sprintf(h.deps.Config.Messages.TranscriptReply, transcript, reply),
			ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
		})
		return
	}

	sendText(ctx, b, h.deps, &bot.SendMessageParams{
		ChatID:          chatID,
		Text:            fmt.Sprintf(h.deps.Config.Messages.Transcript, transcript),
		ReplyParameters: &models.ReplyParameters{MessageID: msg.ID},
	})
}
