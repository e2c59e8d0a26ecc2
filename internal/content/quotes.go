// Package content serves the bot's canned material: tough-guy quotes,
// holiday greetings, and jokes fetched from an external service. Quotes
// and holidays ship embedded in the binary and can be overridden with
// files on disk.
package content

import (
	"embed"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"strings"
)

//go:embed assets/quotes.json assets/holidays.json
var assetsFS embed.FS

// quoteEntry accepts both {"text": "..."} objects and bare strings, since
// hand-maintained quote files mix the two.
type quoteEntry struct {
	Text string
}

func (q *quoteEntry) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		q.Text = s
		return nil
	}

	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	q.Text = obj.Text
	return nil
}

// Quotes is a loaded collection of quote lines.
type Quotes struct {
	lines []string
}

// LoadQuotes reads quotes from the given file, or from the embedded copy
// when path is empty.
func LoadQuotes(path string) (*Quotes, error) {
	data, err := readAsset(path, "assets/quotes.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read quotes: %w", err)
	}

	var entries []quoteEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse quotes: %w", err)
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		if text := strings.TrimSpace(entry.Text); text != "" {
			lines = append(lines, text)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("quotes file contains no usable entries")
	}

	return &Quotes{lines: lines}, nil
}

// Random returns a random quote line.
func (q *Quotes) Random() string {
	return q.lines[rand.Intn(len(q.lines))]
}

// Len reports how many quotes are loaded.
func (q *Quotes) Len() int {
	return len(q.lines)
}

func readAsset(path, embeddedName string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return assetsFS.ReadFile(embeddedName)
}
