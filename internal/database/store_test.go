package database

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) Store {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "bot.db")

	db, err := NewDB(path)
	require.NoError(t, err)
	t.Cleanup(func() { CloseDB(db) })

	return NewStore(db, logger)
}

func TestGetChatSettingsCreatesDefaults(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	settings, err := store.GetChatSettings(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, int64(100), settings.ChatID)
	require.True(t, settings.AIEnabled)
	require.True(t, settings.VoiceEnabled)
	require.Equal(t, 0, settings.ReplyChance)

	// A second read must return the persisted row, not a fresh default.
	again, err := store.GetChatSettings(ctx, 100)
	require.NoError(t, err)
	require.Equal(t, settings.ChatID, again.ChatID)

	chats, err := store.ListChats(ctx)
	require.NoError(t, err)
	require.Len(t, chats, 1)
}

func TestGetChatSettingsRejectsZeroChatID(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.GetChatSettings(context.Background(), 0)
	require.Error(t, err)
}

func TestUpdateChatSetting(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Updating a chat we never saw must create the row first.
	require.NoError(t, store.UpdateChatSetting(ctx, 200, SettingAIEnabled, 0))
	require.NoError(t, store.UpdateChatSetting(ctx, 200, SettingReplyChance, 30))

	settings, err := store.GetChatSettings(ctx, 200)
	require.NoError(t, err)
	require.False(t, settings.AIEnabled)
	require.True(t, settings.VoiceEnabled)
	require.Equal(t, 30, settings.ReplyChance)
}

func TestUpdateChatSettingRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.UpdateChatSetting(context.Background(), 200, "score; DROP TABLE memory", 1)
	require.Error(t, err)
}

func TestAdjustReputation(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	// Unknown users have zero karma.
	score, err := store.GetReputation(ctx, 300, 1)
	require.NoError(t, err)
	require.Equal(t, 0, score)

	require.NoError(t, store.AdjustReputation(ctx, 300, 1, "Петя", 1))
	require.NoError(t, store.AdjustReputation(ctx, 300, 1, "Пётр", -2))

	score, err = store.GetReputation(ctx, 300, 1)
	require.NoError(t, err)
	require.Equal(t, -1, score)

	// The upsert refreshes the stored first name.
	top, err := store.TopReputation(ctx, 300, 5)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, "Пётр", top[0].FirstName)
}

func TestTopReputationOrdering(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.AdjustReputation(ctx, 400, 1, "a", 3))
	require.NoError(t, store.AdjustReputation(ctx, 400, 2, "b", 7))
	require.NoError(t, store.AdjustReputation(ctx, 400, 3, "c", -1))
	require.NoError(t, store.AdjustReputation(ctx, 401, 4, "other chat", 100))

	top, err := store.TopReputation(ctx, 400, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	require.Equal(t, int64(2), top[0].UserID)
	require.Equal(t, int64(1), top[1].UserID)
}

func TestSaveMemoryTrimsToNewest(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMemory(ctx, 500, RoleUser, "first", 3))
	require.NoError(t, store.SaveMemory(ctx, 500, RoleAssistant, "second", 3))
	require.NoError(t, store.SaveMemory(ctx, 500, RoleUser, "third", 3))
	require.NoError(t, store.SaveMemory(ctx, 500, RoleAssistant, "fourth", 3))

	entries, err := store.GetRecentMemory(ctx, 500, 25, 6*time.Hour)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, "second", entries[0].Content)
	require.Equal(t, "fourth", entries[2].Content)
}

func TestSaveMemoryRejectsInvalidRole(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	err := store.SaveMemory(context.Background(), 500, "system", "text", 25)
	require.Error(t, err)
}

func TestGetRecentMemoryIsChronological(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMemory(ctx, 600, RoleUser, "привет", 25))
	require.NoError(t, store.SaveMemory(ctx, 600, RoleAssistant, "здарова", 25))

	entries, err := store.GetRecentMemory(ctx, 600, 25, time.Hour)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, RoleUser, entries[0].Role)
	require.Equal(t, RoleAssistant, entries[1].Role)

	// Memory of another chat must stay invisible.
	entries, err = store.GetRecentMemory(ctx, 601, 25, time.Hour)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestClearMemory(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMemory(ctx, 700, RoleUser, "x", 25))
	require.NoError(t, store.ClearMemory(ctx, 700))

	entries, err := store.GetRecentMemory(ctx, 700, 25, time.Hour)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestPruneMemoryDeletesOnlyStaleEntries(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveMemory(ctx, 800, RoleUser, "fresh", 25))

	// Nothing is older than a day yet.
	pruned, err := store.PruneMemory(ctx, 24*time.Hour)
	require.NoError(t, err)
	require.Zero(t, pruned)

	// Everything is older than zero-ish age.
	pruned, err = store.PruneMemory(ctx, time.Nanosecond)
	require.NoError(t, err)
	require.Equal(t, int64(1), pruned)
}

func TestRunSQLMaintenance(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	require.NoError(t, store.RunSQLMaintenance(context.Background()))
}
