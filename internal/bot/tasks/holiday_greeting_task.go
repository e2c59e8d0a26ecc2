package tasks

import (
	"context"
	"fmt"
	"time"

	tgbot "github.com/go-telegram/bot"
)

// newHolidayGreetingTask creates the scheduled task that checks the
// holiday calendar and greets every chat the bot talks in when today is
// a holiday.
func newHolidayGreetingTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "holiday_greeting")

	loc, err := time.LoadLocation(deps.Config.Scheduler.Timezone)
	if err != nil {
		log.Warn("Failed to load scheduler timezone, falling back to UTC",
			"timezone", deps.Config.Scheduler.Timezone, "error", err)
		loc = time.UTC
	}

	return func(ctx context.Context) error {
		holiday, ok := deps.Holidays.Today(loc)
		if !ok {
			log.DebugContext(ctx, "No holiday today, nothing to announce")
			return nil
		}

		log.InfoContext(ctx, "Announcing holiday", "holiday", holiday.Name)

		chats, err := deps.Store.ListChats(ctx)
		if err != nil {
			return fmt.Errorf("failed to list chats for holiday greeting: %w", err)
		}

		announcement := fmt.Sprintf(deps.Config.Messages.HolidayAnnounce, holiday.Name, holiday.Greeting)

		sent := 0
		for _, chat := range chats {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Chats that muted the bot do not get greetings either.
			if !chat.AIEnabled {
				continue
			}

			if _, err := deps.Bot.SendMessage(ctx, &tgbot.SendMessageParams{
				ChatID: chat.ChatID,
				Text:   announcement,
			}); err != nil {
				// The bot may have been kicked from the chat; skip and move on.
				log.WarnContext(ctx, "Failed to send holiday greeting", "chat_id", chat.ChatID, "error", err)
				continue
			}
			sent++
		}

		log.InfoContext(ctx, "Holiday greetings sent", "holiday", holiday.Name, "chats", sent)
		return nil
	}
}
