package ai

import (
	"fmt"
	"strings"
)

// Tone instructions appended to the persona prompt based on the speaker's
// karma in the chat.
const (
	rudeSpeakerInstruction     = "Собеседник — грубиян. Отвечай дерзко."
	friendlySpeakerInstruction = "Собеседник — друг. Будь вежлив."
	interjectionInstruction    = "Ты решил сам вмешаться в разговор. Шути коротко."

	// Karma thresholds for tone shading.
	rudeThreshold     = -5
	friendlyThreshold = 5
)

const classifyPromptFormat = "System: Ты — модератор. Проанализируй сообщение. " +
	"Если это мат или агрессия — ответь 'toxic'. Если позитив — 'positive'. Иначе 'neutral'.\n" +
	"Message: %s\nAnswer:"

// buildSystemInstruction combines the persona prompt with per-message tone
// shading. The result may be empty when no persona is configured and no
// shading applies.
func buildSystemInstruction(persona string, opts ReplyOptions) string {
	parts := make([]string, 0, 3)
	if persona != "" {
		parts = append(parts, persona)
	}

	if opts.ReputationKnown {
		switch {
		case opts.ReputationScore < rudeThreshold:
			parts = append(parts, rudeSpeakerInstruction)
		case opts.ReputationScore > friendlyThreshold:
			parts = append(parts, friendlySpeakerInstruction)
		}
	}

	if opts.Interjection {
		parts = append(parts, interjectionInstruction)
	}

	return strings.Join(parts, " ")
}

// buildClassifyPrompt wraps a message in the moderator prompt used for
// sentiment classification.
func buildClassifyPrompt(text string) string {
	return fmt.Sprintf(classifyPromptFormat, text)
}

// parseSentiment maps raw model output to a Sentiment. Models occasionally
// pad the answer, so substring matching beats exact comparison here.
func parseSentiment(raw string) Sentiment {
	lowered := strings.ToLower(raw)
	switch {
	case strings.Contains(lowered, string(SentimentToxic)):
		return SentimentToxic
	case strings.Contains(lowered, string(SentimentPositive)):
		return SentimentPositive
	default:
		return SentimentNeutral
	}
}
