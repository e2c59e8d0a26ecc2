package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
)

// Classification answers are a single word, so the token budget is tiny
// and the temperature is zero for determinism.
const (
	classifyNumPredict  = 5
	classifyTemperature = 0.0
)

// ollamaClient talks to the Ollama native HTTP API: /api/chat for persona
// replies and /api/generate for sentiment classification.
type ollamaClient struct {
	baseURL     string
	model       string
	instruction string
	numPredict  int
	temperature float32

	httpClient     *http.Client
	classifyClient *http.Client
	log            *slog.Logger
}

type ollamaOptions struct {
	NumPredict  int     `json:"num_predict"`
	Temperature float32 `json:"temperature"`
}

type ollamaChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatRequest struct {
	Model    string              `json:"model"`
	Messages []ollamaChatMessage `json:"messages"`
	Stream   bool                `json:"stream"`
	Options  ollamaOptions       `json:"options"`
}

type ollamaChatResponse struct {
	Message ollamaChatMessage `json:"message"`
}

type ollamaGenerateRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Stream  bool          `json:"stream"`
	Options ollamaOptions `json:"options"`
}

type ollamaGenerateResponse struct {
	Response string `json:"response"`
}

// newOllamaClient creates an Ollama-backed AI client.
func newOllamaClient(cfg config.AIConfig, log *slog.Logger) (Client, error) {
	if cfg.Ollama.BaseURL == "" {
		return nil, fmt.Errorf("ollama base URL is required")
	}
	if cfg.Ollama.Model == "" {
		return nil, fmt.Errorf("ollama model name is required")
	}

	logger := log.With("component", "ollama_client")
	logger.Info("Ollama client initialized", "base_url", cfg.Ollama.BaseURL, "model", cfg.Ollama.Model)

	return &ollamaClient{
		baseURL:        strings.TrimRight(cfg.Ollama.BaseURL, "/"),
		model:          cfg.Ollama.Model,
		instruction:    cfg.Instruction,
		numPredict:     cfg.Ollama.NumPredict,
		temperature:    cfg.Ollama.Temperature,
		httpClient:     &http.Client{Timeout: cfg.Ollama.Timeout},
		classifyClient: &http.Client{Timeout: cfg.Ollama.ClassifyTimeout},
		log:            logger,
	}, nil
}

// sendRequest posts a JSON body to an Ollama endpoint and returns the raw
// response body.
func (c *ollamaClient) sendRequest(ctx context.Context, client *http.Client, path string, body any) ([]byte, error) {
	reqBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Error closing response body", "error", closeErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("non-200 response from Ollama: %d - %s", resp.StatusCode, string(respBody))
	}

	return respBody, nil
}

func (c *ollamaClient) GenerateReply(ctx context.Context, history []Turn, opts ReplyOptions) (string, error) {
	c.log.DebugContext(ctx, "Generating reply", "history_len", len(history), "interjection", opts.Interjection)

	messages := make([]ollamaChatMessage, 0, len(history)+1)
	if instruction := buildSystemInstruction(c.instruction, opts); instruction != "" {
		messages = append(messages, ollamaChatMessage{Role: "system", Content: instruction})
	}
	for _, turn := range history {
		messages = append(messages, ollamaChatMessage{Role: turn.Role, Content: turn.Content})
	}

	payload := ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Options: ollamaOptions{
			NumPredict:  c.numPredict,
			Temperature: c.temperature,
		},
	}

	respBody, err := c.sendRequest(ctx, c.httpClient, "/api/chat", payload)
	if err != nil {
		c.log.ErrorContext(ctx, "Ollama chat request failed", "error", err)
		return "", fmt.Errorf("ollama chat request failed: %w", err)
	}

	var response ollamaChatResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		return "", fmt.Errorf("failed to unmarshal chat response: %w", err)
	}

	reply := strings.TrimSpace(response.Message.Content)
	if reply == "" {
		return "", fmt.Errorf("ollama returned an empty reply")
	}

	return reply, nil
}

func (c *ollamaClient) ClassifySentiment(ctx context.Context, text string) (Sentiment, error) {
	payload := ollamaGenerateRequest{
		Model:  c.model,
		Prompt: buildClassifyPrompt(text),
		Stream: false,
		Options: ollamaOptions{
			NumPredict:  classifyNumPredict,
			Temperature: classifyTemperature,
		},
	}

	respBody, err := c.sendRequest(ctx, c.classifyClient, "/api/generate", payload)
	if err != nil {
		c.log.WarnContext(ctx, "Sentiment classification failed, defaulting to neutral", "error", err)
		return SentimentNeutral, fmt.Errorf("ollama generate request failed: %w", err)
	}

	var response ollamaGenerateResponse
	if err := json.Unmarshal(respBody, &response); err != nil {
		c.log.WarnContext(ctx, "Unparseable classification response, defaulting to neutral", "error", err)
		return SentimentNeutral, fmt.Errorf("failed to unmarshal generate response: %w", err)
	}

	return parseSentiment(response.Response), nil
}
