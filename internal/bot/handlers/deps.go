package handlers

import (
	"log/slog"

	"github.com/mackarov-gog/bot-mitya-bot/internal/ai"
	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
	"github.com/mackarov-gog/bot-mitya-bot/internal/content"
	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
	"github.com/mackarov-gog/bot-mitya-bot/internal/transcribe"
)

// HandlerDeps provides dependencies for Telegram command and message handlers.
type HandlerDeps struct {
	Logger      *slog.Logger
	Config      *config.Config
	Store       database.Store
	AIClient    ai.Client
	Transcriber transcribe.Engine
	Quotes      *content.Quotes
	Jokes       *content.JokeClient
}
