// Package config provides configuration loading, defaulting, and validation
// for the Mitya bot. Values come from defaults, an optional YAML file, and
// BOT_* environment variables, in that order of precedence.
package config

import (
	"time"

	"github.com/go-telegram/bot/models"
)

// Config defines the application configuration for all components of the
// bot: logging, Telegram transport, database, AI backends, voice
// transcription, scheduled tasks, bundled content, and reply texts.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	AI        AIConfig        `mapstructure:"ai"`
	Whisper   WhisperConfig   `mapstructure:"whisper"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Content   ContentConfig   `mapstructure:"content"`
	Messages  Messages        `mapstructure:"messages"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds the bot token and the trigger words the bot reacts
// to in group chats. BotInfo is populated at startup from GetMe and is not
// read from the config file.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`

	// TriggerName is the bot's spoken name, matched case-insensitively at
	// the start of (or inside) group messages and voice transcripts.
	TriggerName string `mapstructure:"trigger_name" validate:"required"`
	// BuddyPrefix introduces the canned-content commands ("buddy, pick A or B").
	BuddyPrefix string `mapstructure:"buddy_prefix" validate:"required"`

	BotInfo *models.User `mapstructure:"-"`
}

// DatabaseConfig holds the SQLite file path.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// AIConfig selects and configures the LLM backend used for persona replies
// and sentiment classification.
type AIConfig struct {
	Provider string `mapstructure:"provider" validate:"oneof=ollama gemini"`

	// Instruction is the persona system prompt shared by all backends.
	Instruction string `mapstructure:"instruction" validate:"required"`

	// MaxHistoryMessages bounds the conversation memory per chat, and
	// HistoryWindow bounds how stale remembered messages may be.
	MaxHistoryMessages int           `mapstructure:"max_history_messages" validate:"min=1,max=200"`
	HistoryWindow      time.Duration `mapstructure:"history_window" validate:"min=1m"`

	Ollama OllamaConfig `mapstructure:"ollama"`
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// OllamaConfig configures the native Ollama HTTP API client.
type OllamaConfig struct {
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Model           string        `mapstructure:"model" validate:"required"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"min=1s,max=10m"`
	ClassifyTimeout time.Duration `mapstructure:"classify_timeout" validate:"min=1s,max=1m"`
	NumPredict      int           `mapstructure:"num_predict" validate:"min=1"`
	Temperature     float32       `mapstructure:"temperature" validate:"min=0,max=2"`
}

// GeminiConfig configures the Gemini SDK client.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	ModelName         string  `mapstructure:"model_name"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

// WhisperConfig configures local voice transcription via an external
// whisper.cpp binary. FFmpeg decodes Telegram OGG/Opus voice notes into
// the 16-kHz mono WAV the whisper binary expects.
type WhisperConfig struct {
	BinaryPath string        `mapstructure:"binary_path" validate:"required"`
	ModelPath  string        `mapstructure:"model_path" validate:"required"`
	Language   string        `mapstructure:"language" validate:"required"`
	FFmpegPath string        `mapstructure:"ffmpeg_path" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"min=5s,max=10m"`
}

// TaskConfig enables a scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig holds per-task scheduling settings keyed by task name.
type SchedulerConfig struct {
	Timezone string                `mapstructure:"timezone" validate:"required"`
	Tasks    map[string]TaskConfig `mapstructure:"tasks"`
}

// ContentConfig points at the bundled JSON assets and the external joke
// service. Empty paths fall back to the embedded copies.
type ContentConfig struct {
	QuotesPath   string        `mapstructure:"quotes_path"`
	HolidaysPath string        `mapstructure:"holidays_path"`
	JokeURL      string        `mapstructure:"joke_url" validate:"omitempty,url"`
	JokeTimeout  time.Duration `mapstructure:"joke_timeout" validate:"min=1s,max=1m"`
}

// Messages holds every user-visible reply string so deployments can reword
// the bot without rebuilding it. Defaults mirror the bot's Russian persona.
type Messages struct {
	Welcome            string `mapstructure:"welcome"`
	Menu               string `mapstructure:"menu"`
	PrivateChatID      string `mapstructure:"private_chat_id"`
	GroupChatID        string `mapstructure:"group_chat_id"`
	Karma              string `mapstructure:"karma"`
	KarmaTop           string `mapstructure:"karma_top"`
	SettingsHeader     string `mapstructure:"settings_header"`
	SettingChanged     string `mapstructure:"setting_changed"`
	ChanceSilent       string `mapstructure:"chance_silent"`
	ChanceAlways       string `mapstructure:"chance_always"`
	ChanceSet          string `mapstructure:"chance_set"`
	ChanceAck          string `mapstructure:"chance_ack"`
	NotChatAdmin       string `mapstructure:"not_chat_admin"`
	Quote              string `mapstructure:"quote"`
	Joke               string `mapstructure:"joke"`
	JokeFallback       string `mapstructure:"joke_fallback"`
	ChooseResult       string `mapstructure:"choose_result"`
	ChooseUsage        string `mapstructure:"choose_usage"`
	ChanceResult       string `mapstructure:"chance_result"`
	Transcript         string `mapstructure:"transcript"`
	TranscriptReply    string `mapstructure:"transcript_reply"`
	NothingHeard       string `mapstructure:"nothing_heard"`
	AIFallback         string `mapstructure:"ai_fallback"`
	QuotesExhausted    string `mapstructure:"quotes_exhausted"`
	HolidayAnnounce    string `mapstructure:"holiday_announce"`
	InsultReply        string `mapstructure:"insult_reply"`
	GeneralError       string `mapstructure:"general_error"`
	ToggleAIName       string `mapstructure:"toggle_ai_name"`
	ToggleVoiceName    string `mapstructure:"toggle_voice_name"`
	SettingEnabledTag  string `mapstructure:"setting_enabled_tag"`
	SettingDisabledTag string `mapstructure:"setting_disabled_tag"`
}
