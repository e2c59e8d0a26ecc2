package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfigFile(t, "telegram:\n  token: \"123456:test-token\"\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "123456:test-token", cfg.Telegram.Token)
	require.Equal(t, "митя", cfg.Telegram.TriggerName)
	require.Equal(t, "братан", cfg.Telegram.BuddyPrefix)

	require.Equal(t, "info", cfg.Logger.Level)
	require.Equal(t, "mitya.db", cfg.Database.Path)

	require.Equal(t, "ollama", cfg.AI.Provider)
	require.Equal(t, 25, cfg.AI.MaxHistoryMessages)
	require.Equal(t, 6*time.Hour, cfg.AI.HistoryWindow)
	require.Equal(t, "http://ollama:11434", cfg.AI.Ollama.BaseURL)
	require.Equal(t, "mitya-gemma", cfg.AI.Ollama.Model)
	require.Equal(t, 150, cfg.AI.Ollama.NumPredict)

	require.Equal(t, "Europe/Moscow", cfg.Scheduler.Timezone)
	require.Contains(t, cfg.Scheduler.Tasks, "holiday_greeting")
	require.Contains(t, cfg.Scheduler.Tasks, "memory_prune")
	require.Contains(t, cfg.Scheduler.Tasks, "sql_maintenance")

	require.NotEmpty(t, cfg.Messages.Welcome)
	require.NotEmpty(t, cfg.Messages.AIFallback)
}

func TestLoadConfigMissingFileUsesEnv(t *testing.T) {
	t.Setenv("BOT_TELEGRAM_TOKEN", "123456:env-token")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, "123456:env-token", cfg.Telegram.Token)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
telegram:
  token: "123456:test-token"
  trigger_name: "федя"
ai:
  provider: gemini
  gemini:
    api_key: "test-key"
    model_name: "gemini-2.5-flash"
logger:
  level: debug
  json: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, "федя", cfg.Telegram.TriggerName)
	require.Equal(t, "gemini", cfg.AI.Provider)
	require.Equal(t, "gemini-2.5-flash", cfg.AI.Gemini.ModelName)
	require.Equal(t, "debug", cfg.Logger.Level)
	require.False(t, cfg.Logger.JSON)
}

func TestLoadConfigPartialTaskOverrideKeepsOtherTasks(t *testing.T) {
	path := writeConfigFile(t, `
telegram:
  token: "123456:test-token"
scheduler:
  tasks:
    holiday_greeting:
      enabled: false
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.False(t, cfg.Scheduler.Tasks["holiday_greeting"].Enabled)
	// Tasks not mentioned in the file keep their defaults.
	require.True(t, cfg.Scheduler.Tasks["memory_prune"].Enabled)
	require.Equal(t, "30 * * * *", cfg.Scheduler.Tasks["memory_prune"].Schedule)
	require.True(t, cfg.Scheduler.Tasks["sql_maintenance"].Enabled)
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("missing token", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, "logger:\n  level: info\n"))
		require.Error(t, err)
		require.Contains(t, err.Error(), "validation")
	})

	t.Run("bad log level", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, "telegram:\n  token: \"x\"\nlogger:\n  level: loud\n"))
		require.Error(t, err)
	})

	t.Run("bad provider", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, "telegram:\n  token: \"x\"\nai:\n  provider: skynet\n"))
		require.Error(t, err)
	})

	t.Run("bad reply timeout bounds", func(t *testing.T) {
		_, err := LoadConfig(writeConfigFile(t, "telegram:\n  token: \"x\"\nai:\n  ollama:\n    timeout: 1ms\n"))
		require.Error(t, err)
	})
}
