package database

import "time"

// Memory roles stored alongside remembered conversation turns.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatSettings holds the per-chat toggles controlling how the bot behaves
// in that chat. A row is created with defaults the first time a chat is seen.
type ChatSettings struct {
	ChatID    int64     `db:"chat_id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	AIEnabled    bool `db:"ai_enabled"`
	VoiceEnabled bool `db:"voice_enabled"`
	// ReplyChance is the percentage chance (0-100) that the bot interjects
	// into a group conversation uninvited.
	ReplyChance int `db:"reply_chance"`
}

// UserReputation tracks a user's karma within one chat. The score moves
// with the sentiment of their messages addressed to the bot.
type UserReputation struct {
	UserID    int64     `db:"user_id"`
	ChatID    int64     `db:"chat_id"`
	FirstName string    `db:"first_name"`
	Score     int       `db:"score"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// MemoryEntry is one remembered conversation turn used as LLM context.
type MemoryEntry struct {
	ID        uint      `db:"id"`
	ChatID    int64     `db:"chat_id"`
	Role      string    `db:"role"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
}
