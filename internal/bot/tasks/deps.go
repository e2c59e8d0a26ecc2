// Package tasks implements the bot's scheduled jobs: holiday greetings,
// conversation memory pruning, and database maintenance.
package tasks

import (
	"log/slog"

	tgbot "github.com/go-telegram/bot"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
	"github.com/mackarov-gog/bot-mitya-bot/internal/content"
	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Store    database.Store
	Bot      *tgbot.Bot
	Holidays *content.Holidays
}
