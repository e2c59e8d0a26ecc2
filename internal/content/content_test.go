package content

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"io"
	"log/slog"

	"github.com/stretchr/testify/require"
)

func TestLoadQuotesEmbedded(t *testing.T) {
	t.Parallel()

	quotes, err := LoadQuotes("")
	require.NoError(t, err)
	require.Positive(t, quotes.Len())
	require.NotEmpty(t, quotes.Random())
}

func TestLoadQuotesFromFileAcceptsMixedEntries(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quotes.json")
	payload := `["просто строка", {"text": "объект с текстом"}, {"text": "  "}, ""]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	quotes, err := LoadQuotes(path)
	require.NoError(t, err)
	require.Equal(t, 2, quotes.Len())
}

func TestLoadQuotesEmptyFileIsAnError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "quotes.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0o644))

	_, err := LoadQuotes(path)
	require.Error(t, err)
}

func TestLoadHolidaysEmbedded(t *testing.T) {
	t.Parallel()

	holidays, err := LoadHolidays("")
	require.NoError(t, err)
	require.Positive(t, holidays.Len())

	newYear := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)
	holiday, ok := holidays.On(newYear)
	require.True(t, ok)
	require.Equal(t, "Новый год", holiday.Name)
	require.NotEmpty(t, holiday.Greeting)

	ordinary := time.Date(2026, time.January, 17, 10, 0, 0, 0, time.UTC)
	_, ok = holidays.On(ordinary)
	require.False(t, ok)
}

func TestLoadHolidaysFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "holidays.json")
	payload := `{"holidays": [{"date": "07-15", "name": "Тестовый день", "greeting": "Ура!"}]}`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o644))

	holidays, err := LoadHolidays(path)
	require.NoError(t, err)

	holiday, ok := holidays.On(time.Date(2026, time.July, 15, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	require.Equal(t, "Тестовый день", holiday.Name)
}

func TestJokeClientFetch(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "XMLHttpRequest", r.Header.Get("X-Requested-With"))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"joke": map[string]string{"text": " Колобок повесился. "},
		})
	}))
	defer server.Close()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewJokeClient(server.URL, 5*time.Second, logger)

	joke, err := client.Fetch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Колобок повесился.", joke)
}

func TestJokeClientFetchErrors(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("non-200", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "nope", http.StatusForbidden)
		}))
		defer server.Close()

		client := NewJokeClient(server.URL, 5*time.Second, logger)
		_, err := client.Fetch(context.Background())
		require.Error(t, err)
	})

	t.Run("empty joke", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_ = json.NewEncoder(w).Encode(map[string]any{"joke": map[string]string{"text": ""}})
		}))
		defer server.Close()

		client := NewJokeClient(server.URL, 5*time.Second, logger)
		_, err := client.Fetch(context.Background())
		require.Error(t, err)
	})
}
