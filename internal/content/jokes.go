package content

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// JokeClient fetches random jokes from the randstuff.ru generator. The
// service expects browser-looking AJAX headers and answers a POST with a
// JSON body.
type JokeClient struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
}

// NewJokeClient creates a joke client for the given generator URL.
func NewJokeClient(url string, timeout time.Duration, log *slog.Logger) *JokeClient {
	return &JokeClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		log:        log.With("component", "joke_client"),
	}
}

// Fetch returns one random joke.
func (c *JokeClient) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create joke request: %w", err)
	}

	// The generator rejects requests that do not look like its own
	// frontend making an AJAX call.
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "application/json, text/javascript, */*; q=0.01")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	req.Header.Set("Origin", "https://randstuff.ru")
	req.Header.Set("Referer", "https://randstuff.ru/joke/")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("joke request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.log.WarnContext(ctx, "Error closing joke response body", "error", closeErr)
		}
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read joke response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("non-200 response from joke service: %d", resp.StatusCode)
	}

	var parsed struct {
		Joke struct {
			Text string `json:"text"`
		} `json:"joke"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse joke response: %w", err)
	}

	joke := strings.TrimSpace(parsed.Joke.Text)
	if joke == "" {
		return "", fmt.Errorf("joke service returned an empty joke")
	}

	return joke, nil
}
