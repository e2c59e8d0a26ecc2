package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
)

// geminiClient implements Client on top of the Gemini SDK. Safety filters
// are disabled because the persona is deliberately rude and the default
// thresholds block most of its output.
type geminiClient struct {
	genaiClient   *genai.Client
	contentConfig *genai.GenerateContentConfig
	modelName     string
	instruction   string
	maxRetries    int
	retryDelay    time.Duration
	log           *slog.Logger
}

// newGeminiClient creates a Gemini-backed AI client.
func newGeminiClient(ctx context.Context, cfg config.AIConfig, log *slog.Logger) (Client, error) {
	if cfg.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if cfg.Gemini.ModelName == "" {
		return nil, fmt.Errorf("gemini model name is required")
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.Gemini.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	temperature := cfg.Gemini.Temperature
	baseCfg := &genai.GenerateContentConfig{
		Temperature: &temperature,

		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}

	logger := log.With("component", "gemini_client")
	logger.Info("Gemini client initialized successfully", "model", cfg.Gemini.ModelName)

	return &geminiClient{
		genaiClient:   gi,
		contentConfig: baseCfg,
		modelName:     cfg.Gemini.ModelName,
		instruction:   cfg.Instruction,
		maxRetries:    cfg.Gemini.MaxRetries,
		retryDelay:    time.Duration(cfg.Gemini.RetryDelaySeconds) * time.Second,
		log:           logger,
	}, nil
}

func (c *geminiClient) generateContentWithRetries(ctx context.Context, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	var resp *genai.GenerateContentResponse
	var err error

	for i := 0; i <= c.maxRetries; i++ {
		resp, err = c.genaiClient.Models.GenerateContent(ctx, c.modelName, contents, cfg)
		if err == nil {
			return resp, nil
		}

		c.log.WarnContext(ctx, "Gemini API call failed, checking for retry",
			"attempt", i+1, "max_retries", c.maxRetries, "error", err)

		var apiErr *genai.APIError
		if errors.As(err, &apiErr) && (apiErr.Code == 500 || apiErr.Code == 503) {
			if i < c.maxRetries {
				c.log.InfoContext(ctx, "Retrying Gemini API call due to retriable APIError",
					"delay", c.retryDelay, "code", apiErr.Code)
				time.Sleep(c.retryDelay)
				continue
			}
			return nil, fmt.Errorf("gemini API call failed after %d retries (APIError code %d): %w",
				c.maxRetries, apiErr.Code, err)
		}

		return nil, fmt.Errorf("gemini API call failed: %w", err)
	}

	return nil, err
}

func (c *geminiClient) extractTextFromResponse(ctx context.Context, resp *genai.GenerateContentResponse) (string, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reasonMsg := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reasonMsg = resp.PromptFeedback.BlockReasonMessage
		}
		c.log.ErrorContext(ctx, "Gemini request blocked", "reason", reasonMsg)
		return "", fmt.Errorf("blocked by safety filter: %s", reasonMsg)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		finishReason := "unknown"
		if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != genai.FinishReasonUnspecified {
			finishReason = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		c.log.WarnContext(ctx, "Gemini response missing candidates or content", "finish_reason", finishReason)
		return "", fmt.Errorf("gemini returned no content, finish reason: %s", finishReason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty reply")
	}

	return text, nil
}

func (c *geminiClient) GenerateReply(ctx context.Context, history []Turn, opts ReplyOptions) (string, error) {
	c.log.DebugContext(ctx, "Generating reply", "history_len", len(history), "interjection", opts.Interjection)

	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == database.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}

	copyCfg := *c.contentConfig
	if instruction := buildSystemInstruction(c.instruction, opts); instruction != "" {
		copyCfg.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: instruction}},
		}
	}

	resp, err := c.generateContentWithRetries(ctx, contents, &copyCfg)
	if err != nil {
		c.log.ErrorContext(ctx, "Gemini reply generation failed", "error", err)
		return "", err
	}

	return c.extractTextFromResponse(ctx, resp)
}

func (c *geminiClient) ClassifySentiment(ctx context.Context, text string) (Sentiment, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(buildClassifyPrompt(text), genai.RoleUser),
	}

	temperature := float32(classifyTemperature)
	copyCfg := *c.contentConfig
	copyCfg.Temperature = &temperature

	resp, err := c.generateContentWithRetries(ctx, contents, &copyCfg)
	if err != nil {
		c.log.WarnContext(ctx, "Sentiment classification failed, defaulting to neutral", "error", err)
		return SentimentNeutral, err
	}

	answer, err := c.extractTextFromResponse(ctx, resp)
	if err != nil {
		c.log.WarnContext(ctx, "Empty classification response, defaulting to neutral", "error", err)
		return SentimentNeutral, err
	}

	return parseSentiment(answer), nil
}
