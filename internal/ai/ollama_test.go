package ai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
)

func testAIConfig(baseURL string) config.AIConfig {
	return config.AIConfig{
		Provider:           "ollama",
		Instruction:        "Ты — Митя.",
		MaxHistoryMessages: 25,
		HistoryWindow:      6 * time.Hour,
		Ollama: config.OllamaConfig{
			BaseURL:         baseURL,
			Model:           "mitya-gemma",
			Timeout:         5 * time.Second,
			ClassifyTimeout: 2 * time.Second,
			NumPredict:      150,
			Temperature:     0.7,
		},
	}
}

func TestGenerateReplySendsHistoryAndInstruction(t *testing.T) {
	t.Parallel()

	var captured ollamaChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chat", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_ = json.NewEncoder(w).Encode(ollamaChatResponse{
			Message: ollamaChatMessage{Role: "assistant", Content: "  здарова, братан  "},
		})
	}))
	defer server.Close()

	client, err := newOllamaClient(testAIConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	history := []Turn{
		{Role: "user", Content: "привет"},
		{Role: "assistant", Content: "ну привет"},
		{Role: "user", Content: "как дела?"},
	}
	reply, err := client.GenerateReply(context.Background(), history, ReplyOptions{
		ReputationKnown: true,
		ReputationScore: -10,
	})
	require.NoError(t, err)
	require.Equal(t, "здарова, братан", reply)

	require.Equal(t, "mitya-gemma", captured.Model)
	require.False(t, captured.Stream)
	require.Equal(t, 150, captured.Options.NumPredict)
	require.Len(t, captured.Messages, 4)

	// Low karma shades the system prompt towards rudeness.
	require.Equal(t, "system", captured.Messages[0].Role)
	require.Contains(t, captured.Messages[0].Content, "Ты — Митя.")
	require.Contains(t, captured.Messages[0].Content, rudeSpeakerInstruction)
	require.Equal(t, "как дела?", captured.Messages[3].Content)
}

func TestGenerateReplyEmptyContentIsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(ollamaChatResponse{})
	}))
	defer server.Close()

	client, err := newOllamaClient(testAIConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = client.GenerateReply(context.Background(), []Turn{{Role: "user", Content: "эй"}}, ReplyOptions{})
	require.Error(t, err)
}

func TestGenerateReplyNon200IsAnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	client, err := newOllamaClient(testAIConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	_, err = client.GenerateReply(context.Background(), []Turn{{Role: "user", Content: "эй"}}, ReplyOptions{})
	require.Error(t, err)
	require.Contains(t, err.Error(), "non-200")
}

func TestClassifySentiment(t *testing.T) {
	t.Parallel()

	var captured ollamaGenerateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/generate", r.URL.Path)
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &captured))

		_ = json.NewEncoder(w).Encode(ollamaGenerateResponse{Response: " Toxic.\n"})
	}))
	defer server.Close()

	client, err := newOllamaClient(testAIConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	sentiment, err := client.ClassifySentiment(context.Background(), "иди отсюда")
	require.NoError(t, err)
	require.Equal(t, SentimentToxic, sentiment)

	require.Contains(t, captured.Prompt, "иди отсюда")
	require.Equal(t, classifyNumPredict, captured.Options.NumPredict)
	require.Zero(t, captured.Options.Temperature)
}

func TestClassifySentimentDegradesToNeutralOnError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client, err := newOllamaClient(testAIConfig(server.URL), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)

	sentiment, err := client.ClassifySentiment(context.Background(), "привет")
	require.Error(t, err)
	require.Equal(t, SentimentNeutral, sentiment)
}

func TestParseSentiment(t *testing.T) {
	t.Parallel()

	cases := map[string]Sentiment{
		"toxic":              SentimentToxic,
		"TOXIC!":             SentimentToxic,
		"positive":           SentimentPositive,
		"I'd say: Positive.": SentimentPositive,
		"neutral":            SentimentNeutral,
		"что-то непонятное":  SentimentNeutral,
		"":                   SentimentNeutral,
	}

	for input, want := range cases {
		require.Equal(t, want, parseSentiment(input), "input %q", input)
	}
}

func TestBuildSystemInstruction(t *testing.T) {
	t.Parallel()

	// Neutral karma keeps the plain persona.
	got := buildSystemInstruction("persona", ReplyOptions{ReputationKnown: true, ReputationScore: 0})
	require.Equal(t, "persona", got)

	// Boundary values do not shade.
	got = buildSystemInstruction("persona", ReplyOptions{ReputationKnown: true, ReputationScore: -5})
	require.Equal(t, "persona", got)
	got = buildSystemInstruction("persona", ReplyOptions{ReputationKnown: true, ReputationScore: 5})
	require.Equal(t, "persona", got)

	got = buildSystemInstruction("persona", ReplyOptions{ReputationKnown: true, ReputationScore: 6})
	require.Contains(t, got, friendlySpeakerInstruction)

	// Unknown speakers never get shading, even with a score set.
	got = buildSystemInstruction("persona", ReplyOptions{ReputationScore: -100})
	require.Equal(t, "persona", got)

	got = buildSystemInstruction("", ReplyOptions{Interjection: true})
	require.Equal(t, interjectionInstruction, got)
}
