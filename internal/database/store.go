package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// Columns of chat_settings that UpdateChatSetting may touch.
const (
	SettingAIEnabled    = "ai_enabled"
	SettingVoiceEnabled = "voice_enabled"
	SettingReplyChance  = "reply_chance"
)

var allowedSettings = map[string]bool{
	SettingAIEnabled:    true,
	SettingVoiceEnabled: true,
	SettingReplyChance:  true,
}

// Store defines the interface for database operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// GetChatSettings retrieves the settings for a chat, creating a row
	// with defaults on first sight.
	GetChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error)

	// UpdateChatSetting sets one whitelisted chat_settings column.
	UpdateChatSetting(ctx context.Context, chatID int64, column string, value int) error

	// ListChats returns the settings of every chat the bot has seen.
	ListChats(ctx context.Context) ([]ChatSettings, error)

	// AdjustReputation adds delta to a user's karma in a chat, creating the
	// row if needed and refreshing the stored first name.
	AdjustReputation(ctx context.Context, chatID, userID int64, firstName string, delta int) error

	// GetReputation returns a user's karma in a chat, 0 when unknown.
	GetReputation(ctx context.Context, chatID, userID int64) (int, error)

	// TopReputation returns the highest-karma users of a chat.
	TopReputation(ctx context.Context, chatID int64, limit int) ([]UserReputation, error)

	// SaveMemory appends a conversation turn and trims the chat's memory
	// to the newest 'keep' entries in the same transaction.
	SaveMemory(ctx context.Context, chatID int64, role, content string, keep int) error

	// GetRecentMemory returns up to 'limit' turns newer than 'window',
	// oldest first.
	GetRecentMemory(ctx context.Context, chatID int64, limit int, window time.Duration) ([]MemoryEntry, error)

	// ClearMemory removes all remembered turns for a chat.
	ClearMemory(ctx context.Context, chatID int64) error

	// PruneMemory deletes turns older than the given age across all chats
	// and reports how many rows were removed.
	PruneMemory(ctx context.Context, olderThan time.Duration) (int64, error)

	// RunSQLMaintenance performs database maintenance tasks like VACUUM.
	RunSQLMaintenance(ctx context.Context) error
}

// sqlxStore provides an implementation of the Store interface using sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewStore creates a new Store implementation backed by sqlx.
// It requires a connected sqlx.DB instance and a logger.
func NewStore(db *sqlx.DB, logger *slog.Logger) Store {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &sqlxStore{
		db:     db,
		logger: logger.With("component", "store"),
	}
}

// Ping checks the database connection.
func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetChatSettings(ctx context.Context, chatID int64) (*ChatSettings, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var settings ChatSettings
	query := `SELECT chat_id, ai_enabled, voice_enabled, reply_chance, created_at, updated_at
	          FROM chat_settings WHERE chat_id = ?`

	err := s.db.GetContext(ctx, &settings, query, chatID)
	switch {
	case err == nil:
		return &settings, nil

	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching chat settings",
			"chat_id", chatID, "error", err)
		return nil, err

	case !errors.Is(err, sql.ErrNoRows):
		s.logger.ErrorContext(ctx, "Error getting chat settings", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get settings for chat %d: %w", chatID, err)
	}

	// First time we see this chat. Persist the defaults so the chat shows
	// up in ListChats for scheduled broadcasts.
	now := time.Now().UTC()
	settings = ChatSettings{
		ChatID:       chatID,
		AIEnabled:    true,
		VoiceEnabled: true,
		ReplyChance:  0,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	insert := `INSERT INTO chat_settings (chat_id, ai_enabled, voice_enabled, reply_chance, created_at, updated_at)
	           VALUES (:chat_id, :ai_enabled, :voice_enabled, :reply_chance, :created_at, :updated_at)
	           ON CONFLICT (chat_id) DO NOTHING`
	if _, err := s.db.NamedExecContext(ctx, insert, &settings); err != nil {
		s.logger.ErrorContext(ctx, "Error creating default chat settings", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to create default settings for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Created default settings for new chat", "chat_id", chatID)
	return &settings, nil
}

func (s *sqlxStore) UpdateChatSetting(ctx context.Context, chatID int64, column string, value int) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}
	if !allowedSettings[column] {
		return fmt.Errorf("refusing to update unknown setting %q", column)
	}

	// Ensure the row exists before updating it.
	if _, err := s.GetChatSettings(ctx, chatID); err != nil {
		return err
	}

	// Column name is whitelisted above, safe to interpolate.
	query := fmt.Sprintf(`UPDATE chat_settings SET %s = ?, updated_at = ? WHERE chat_id = ?`, column)
	result, err := s.db.ExecContext(ctx, query, value, time.Now().UTC(), chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating chat setting",
			"chat_id", chatID, "setting", column, "error", err)
		return fmt.Errorf("failed to update setting %s for chat %d: %w", column, chatID, err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected != 1 {
		s.logger.WarnContext(ctx, "Unexpected number of rows affected when updating setting",
			"chat_id", chatID, "setting", column, "affected", affected)
	}

	s.logger.DebugContext(ctx, "Chat setting updated", "chat_id", chatID, "setting", column, "value", value)
	return nil
}

func (s *sqlxStore) ListChats(ctx context.Context) ([]ChatSettings, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var chats []ChatSettings
	query := `SELECT chat_id, ai_enabled, voice_enabled, reply_chance, created_at, updated_at
	          FROM chat_settings ORDER BY chat_id`

	if err := s.db.SelectContext(ctx, &chats, query); err != nil {
		s.logger.ErrorContext(ctx, "Error listing chats", "error", err)
		return nil, fmt.Errorf("failed to list chats: %w", err)
	}

	return chats, nil
}

func (s *sqlxStore) AdjustReputation(ctx context.Context, chatID, userID int64, firstName string, delta int) error {
	if chatID == 0 || userID == 0 {
		return fmt.Errorf("chat_id and user_id must be non-zero")
	}

	now := time.Now().UTC()
	query := `
        INSERT INTO user_reputation (user_id, chat_id, first_name, score, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (user_id, chat_id) DO UPDATE SET
            score = score + excluded.score,
            first_name = excluded.first_name,
            updated_at = excluded.updated_at`

	if _, err := s.db.ExecContext(ctx, query, userID, chatID, firstName, delta, now, now); err != nil {
		s.logger.ErrorContext(ctx, "Error adjusting reputation",
			"chat_id", chatID, "user_id", userID, "delta", delta, "error", err)
		return fmt.Errorf("failed to adjust reputation for user %d in chat %d: %w", userID, chatID, err)
	}

	s.logger.DebugContext(ctx, "Reputation adjusted", "chat_id", chatID, "user_id", userID, "delta", delta)
	return nil
}

func (s *sqlxStore) GetReputation(ctx context.Context, chatID, userID int64) (int, error) {
	if chatID == 0 || userID == 0 {
		return 0, fmt.Errorf("chat_id and user_id must be non-zero")
	}

	var score int
	query := `SELECT score FROM user_reputation WHERE user_id = ? AND chat_id = ?`

	err := s.db.GetContext(ctx, &score, query, userID, chatID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// Unknown users simply have zero karma.
		return 0, nil

	case err != nil:
		s.logger.ErrorContext(ctx, "Error getting reputation", "chat_id", chatID, "user_id", userID, "error", err)
		return 0, fmt.Errorf("failed to get reputation for user %d in chat %d: %w", userID, chatID, err)
	}

	return score, nil
}

func (s *sqlxStore) TopReputation(ctx context.Context, chatID int64, limit int) ([]UserReputation, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if limit <= 0 {
		limit = 10
	}

	var users []UserReputation
	query := `SELECT user_id, chat_id, first_name, score, created_at, updated_at
	          FROM user_reputation WHERE chat_id = ?
	          ORDER BY score DESC, user_id ASC LIMIT ?`

	if err := s.db.SelectContext(ctx, &users, query, chatID, limit); err != nil {
		s.logger.ErrorContext(ctx, "Error getting top reputation", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get top reputation for chat %d: %w", chatID, err)
	}

	return users, nil
}

func (s *sqlxStore) SaveMemory(ctx context.Context, chatID int64, role, content string, keep int) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}
	if role != RoleUser && role != RoleAssistant {
		return fmt.Errorf("invalid memory role %q", role)
	}
	if content == "" {
		return fmt.Errorf("memory content cannot be empty")
	}
	if keep <= 0 {
		keep = 25
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving memory",
			"chat_id", chatID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				if !errors.Is(rollbackErr, sql.ErrTxDone) {
					s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
				}
			}
		}
	}()

	insert := `INSERT INTO memory (chat_id, role, content, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insert, chatID, role, content, time.Now().UTC()); err != nil {
		s.logger.ErrorContext(ctx, "Error saving memory entry", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to save memory for chat %d: %w", chatID, err)
	}

	// Trim older turns so per-chat memory stays bounded.
	trim := `DELETE FROM memory WHERE id IN (
	            SELECT id FROM memory WHERE chat_id = ?
	            ORDER BY created_at DESC, id DESC LIMIT -1 OFFSET ?
	        )`
	if _, err := tx.ExecContext(ctx, trim, chatID, keep); err != nil {
		s.logger.ErrorContext(ctx, "Error trimming memory", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to trim memory for chat %d: %w", chatID, err)
	}

	if err := tx.Commit(); err != nil {
		s.logger.ErrorContext(ctx, "Failed to commit transaction", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	s.logger.DebugContext(ctx, "Memory entry saved", "chat_id", chatID, "role", role)
	return nil
}

func (s *sqlxStore) GetRecentMemory(ctx context.Context, chatID int64, limit int, window time.Duration) ([]MemoryEntry, error) {
	if chatID == 0 {
		return nil, fmt.Errorf("chat_id cannot be zero")
	}
	if limit <= 0 {
		limit = 25
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	cutoff := time.Now().UTC().Add(-window)

	var entries []MemoryEntry
	query := `SELECT id, chat_id, role, content, created_at
	          FROM memory
	          WHERE chat_id = ? AND created_at > ?
	          ORDER BY created_at ASC, id ASC
	          LIMIT ?`

	err := s.db.SelectContext(ctx, &entries, query, chatID, cutoff, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context timeout or cancellation while fetching memory",
			"chat_id", chatID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent memory", "chat_id", chatID, "error", err)
		return nil, fmt.Errorf("failed to get recent memory for chat %d: %w", chatID, err)
	}

	s.logger.DebugContext(ctx, "Fetched recent memory", "chat_id", chatID, "count", len(entries))
	return entries, nil
}

func (s *sqlxStore) ClearMemory(ctx context.Context, chatID int64) error {
	if chatID == 0 {
		return fmt.Errorf("chat_id cannot be zero")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM memory WHERE chat_id = ?`, chatID)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error clearing memory", "chat_id", chatID, "error", err)
		return fmt.Errorf("failed to clear memory for chat %d: %w", chatID, err)
	}

	count, _ := result.RowsAffected()
	s.logger.InfoContext(ctx, "Cleared chat memory", "chat_id", chatID, "count", count)
	return nil
}

func (s *sqlxStore) PruneMemory(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("prune age must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan)
	result, err := s.db.ExecContext(ctx, `DELETE FROM memory WHERE created_at <= ?`, cutoff)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error pruning memory", "error", err)
		return 0, fmt.Errorf("failed to prune memory: %w", err)
	}

	count, _ := result.RowsAffected()
	if count > 0 {
		s.logger.InfoContext(ctx, "Pruned stale memory entries", "count", count)
	}
	return count, nil
}

// RunSQLMaintenance executes a VACUUM command on the SQLite database.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context cancelled or timed out before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)...")

	// VACUUM must run outside a transaction in SQLite.
	_, err := s.db.ExecContext(ctx, "VACUUM;")
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		s.logger.WarnContext(ctx, "VACUUM operation timed out or was cancelled", "error", err)
		return fmt.Errorf("database maintenance (VACUUM) timed out: %w", err)

	case err != nil:
		s.logger.ErrorContext(ctx, "Database maintenance (VACUUM) failed", "error", err)
		return fmt.Errorf("failed to execute VACUUM: %w", err)
	}

	s.logger.InfoContext(ctx, "Database maintenance (VACUUM) completed successfully")
	return nil
}
