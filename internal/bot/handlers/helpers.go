package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/mackarov-gog/bot-mitya-bot/internal/ai"
	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
)

const (
	voiceDownloadTimeout = 30 * time.Second
	aiProcessingTimeout  = 2 * time.Minute
	classifyTimeout      = 10 * time.Second
	sendMessageTimeout   = 10 * time.Second
	dbSaveTimeout        = 5 * time.Second
)

// classifyAndAdjustReputation runs sentiment classification on the text
// and moves the sender's karma accordingly. Classification errors degrade
// to neutral, so a dead LLM never blocks message handling.
func classifyAndAdjustReputation(ctx context.Context, deps HandlerDeps, chatID int64, from *models.User, text string) {
	log := deps.Logger.With("handler", "reputation")

	if from == nil || text == "" {
		return
	}

	classifyCtx, cancel := context.WithTimeout(ctx, classifyTimeout)
	sentiment, err := deps.AIClient.ClassifySentiment(classifyCtx, text)
	cancel()
	if err != nil {
		log.DebugContext(ctx, "Sentiment classification degraded to neutral", "error", err, "chat_id", chatID)
	}

	var delta int
	switch sentiment {
	case ai.SentimentToxic:
		delta = -1
	case ai.SentimentPositive:
		delta = 1
	default:
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()
	if err := deps.Store.AdjustReputation(dbCtx, chatID, from.ID, from.FirstName, delta); err != nil {
		log.ErrorContext(ctx, "Failed to adjust reputation", "error", err, "chat_id", chatID, "user_id", from.ID)
	}
}

// generateAIReply runs the full persona reply flow: remember the incoming
// text, collect recent history, shade the tone by the speaker's karma,
// call the LLM, and remember the answer. On any failure it returns the
// configured fallback line instead of an error.
func generateAIReply(ctx context.Context, deps HandlerDeps, chatID int64, from *models.User, text string, interject bool) string {
	log := deps.Logger.With("handler", "ai_reply")

	maxHistory := deps.Config.AI.MaxHistoryMessages
	window := deps.Config.AI.HistoryWindow

	dbCtx, cancel := context.WithTimeout(ctx, dbSaveTimeout)
	err := deps.Store.SaveMemory(dbCtx, chatID, database.RoleUser, text, maxHistory)
	cancel()
	if err != nil {
		log.ErrorContext(ctx, "Failed to save incoming message to memory", "error", err, "chat_id", chatID)
	}

	entries, err := deps.Store.GetRecentMemory(ctx, chatID, maxHistory, window)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load conversation memory", "error", err, "chat_id", chatID)
		entries = nil
	}

	var history []ai.Turn
	if len(entries) > 0 {
		history = make([]ai.Turn, 0, len(entries))
		for _, entry := range entries {
			history = append(history, ai.Turn{Role: entry.Role, Content: entry.Content})
		}
	} else {
		// Memory is unavailable, answer from the current message alone.
		history = []ai.Turn{{Role: database.RoleUser, Content: text}}
	}

	opts := ai.ReplyOptions{Interjection: interject}
	if from != nil {
		score, repErr := deps.Store.GetReputation(ctx, chatID, from.ID)
		if repErr != nil {
			log.WarnContext(ctx, "Failed to get reputation for tone shading", "error", repErr, "chat_id", chatID, "user_id", from.ID)
		} else {
			opts.ReputationKnown = true
			opts.ReputationScore = score
		}
	}

	aiCtx, cancel := context.WithTimeout(ctx, aiProcessingTimeout)
	defer cancel()
	reply, err := deps.AIClient.GenerateReply(aiCtx, history, opts)
	if err != nil {
		log.ErrorContext(ctx, "AI reply generation failed", "error", err, "chat_id", chatID)
		return deps.Config.Messages.AIFallback
	}

	dbCtx, cancel = context.WithTimeout(ctx, dbSaveTimeout)
	defer cancel()
	if err := deps.Store.SaveMemory(dbCtx, chatID, database.RoleAssistant, reply, maxHistory); err != nil {
		log.ErrorContext(ctx, "Failed to save reply to memory", "error", err, "chat_id", chatID)
	}

	return reply
}

// sendText sends a plain text message with a bounded timeout.
func sendText(ctx context.Context, b *bot.Bot, deps HandlerDeps, params *bot.SendMessageParams) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	if _, err := b.SendMessage(sendCtx, params); err != nil {
		deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", params.ChatID)
	}
}

// downloadVoice fetches a Telegram voice note into a temporary OGG file
// and returns its path. The caller removes the file.
func downloadVoice(ctx context.Context, b *bot.Bot, token, fileID string) (path string, err error) {
	if token == "" {
		return "", fmt.Errorf("empty token provided for voice download")
	}
	if fileID == "" {
		return "", fmt.Errorf("empty fileID provided for voice download")
	}

	downloadCtx, cancel := context.WithTimeout(ctx, voiceDownloadTimeout)
	defer cancel()

	fileObj, err := b.GetFile(downloadCtx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return "", fmt.Errorf("failed to get file info from Telegram: %w", err)
	}
	if fileObj.FilePath == "" {
		return "", fmt.Errorf("empty file path returned from Telegram for file ID %s", fileID)
	}

	url := fmt.Sprintf("https://api.telegram.org/file/bot%s/%s", token, fileObj.FilePath)
	req, err := http.NewRequestWithContext(downloadCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download voice file: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close download response body: %w", closeErr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code %d downloading voice file", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "mitya-voice-*.ogg")
	if err != nil {
		return "", fmt.Errorf("failed to create temporary voice file: %w", err)
	}
	path = tmp.Name()

	_, err = io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("failed to write voice file: %w", err)
	}

	return path, nil
}
