// Package main contains the entrypoint for the Telegram bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"

	"github.com/mackarov-gog/bot-mitya-bot/internal/ai"
	"github.com/mackarov-gog/bot-mitya-bot/internal/bot"
	"github.com/mackarov-gog/bot-mitya-bot/internal/bot/handlers"
	"github.com/mackarov-gog/bot-mitya-bot/internal/bot/tasks"
	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
	"github.com/mackarov-gog/bot-mitya-bot/internal/content"
	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
	"github.com/mackarov-gog/bot-mitya-bot/internal/logger"
	"github.com/mackarov-gog/bot-mitya-bot/internal/telegram"
	"github.com/mackarov-gog/bot-mitya-bot/internal/transcribe"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop() // Ensure context cancellation is signaled before exit
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// database, AI client, transcription engine, content, bot, scheduler),
// handles graceful shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)
	if err := store.Ping(ctx); err != nil {
		log.Error("Database ping failed", "error", err)
		return 1
	}

	aiClient, err := ai.NewClient(ctx, cfg.AI, log)
	if err != nil {
		log.Error("Failed to initialize AI client", "error", err)
		return 1
	}

	transcriber, err := transcribe.NewWhisperEngine(cfg.Whisper, log)
	if err != nil {
		log.Error("Failed to initialize transcription engine", "error", err)
		return 1
	}

	quotes, err := content.LoadQuotes(cfg.Content.QuotesPath)
	if err != nil {
		log.Error("Failed to load quotes", "path", cfg.Content.QuotesPath, "error", err)
		return 1
	}
	holidays, err := content.LoadHolidays(cfg.Content.HolidaysPath)
	if err != nil {
		log.Error("Failed to load holidays", "path", cfg.Content.HolidaysPath, "error", err)
		return 1
	}
	jokes := content.NewJokeClient(cfg.Content.JokeURL, cfg.Content.JokeTimeout, log)
	log.Info("Content loaded", "quotes", quotes.Len(), "holidays", holidays.Len())

	hDeps := handlers.HandlerDeps{
		Logger:      log,
		Config:      cfg,
		Store:       store,
		AIClient:    aiClient,
		Transcriber: transcriber,
		Quotes:      quotes,
		Jokes:       jokes,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewDefaultHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	// Retrieve bot info and store it in the config for runtime use
	cfg.Telegram.BotInfo, err = tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Retrieved bot info", "bot_id", cfg.Telegram.BotInfo.ID, "bot_username", cfg.Telegram.BotInfo.Username)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}
	if err := telegram.SetCommandMenu(ctx, tg, log); err != nil {
		log.Warn("Failed to publish command menu", "error", err)
	}

	tDeps := tasks.TaskDeps{
		Logger:   log,
		Config:   cfg,
		Store:    store,
		Bot:      tg,
		Holidays: holidays,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, db, store, aiClient, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx) // Run blocks until context is cancelled or an error occurs
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		// Allow logs to flush before exiting on error
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
