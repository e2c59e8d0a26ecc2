package handlers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mackarov-gog/bot-mitya-bot/internal/config"
	"github.com/mackarov-gog/bot-mitya-bot/internal/database"
)

func TestDetectTriggerPhrases(t *testing.T) {
	t.Parallel()

	triggers := newBuddyTriggers("братан")

	cases := map[string]triggerAction{
		"братан, выдай цитату":                    triggerQuote,
		"эй, братан, выдай цитату пожалуйста":     triggerQuote,
		"братан, выдай анекдот":                   triggerJoke,
		"братан, выбери чай или кофе":             triggerChoose,
		"братан, шанс что завтра пятница, митя?":  triggerChance,
		"братан, вероятность дождя, митя":         triggerChance,
		"ну ты и пидор конечно":                   triggerInsult,
		"просто обычное сообщение":                triggerNone,
		"выбери чай или кофе":                     triggerNone,
		"БРАТАН, ВЫДАЙ ЦИТАТУ":                    triggerNone, // detect expects lowercased input
	}

	for input, want := range cases {
		require.Equal(t, want, triggers.detect(input), "input %q", input)
	}
}

func TestChooseOptions(t *testing.T) {
	t.Parallel()

	triggers := newBuddyTriggers("братан")

	options := triggers.chooseOptions("братан, выбери чай или кофе или какао")
	require.Equal(t, []string{"чай", "кофе", "какао"}, options)

	// Missing separator means no options.
	require.Nil(t, triggers.chooseOptions("братан, выбери чай"))

	// A dangling separator still yields the surviving option.
	options = triggers.chooseOptions("братан, выбери чай или ")
	require.Equal(t, []string{"чай"}, options)

	require.Nil(t, triggers.chooseOptions("братан, выбери или "))
}

func TestTrimTriggerName(t *testing.T) {
	t.Parallel()

	prompt, called := trimTriggerName("Митя, расскажи про космос", "митя")
	require.True(t, called)
	require.Equal(t, "расскажи про космос", prompt)

	prompt, called = trimTriggerName("митя как дела", "митя")
	require.True(t, called)
	require.Equal(t, "как дела", prompt)

	// Name in the middle is not a prefix call.
	_, called = trimTriggerName("а что митя думает", "митя")
	require.False(t, called)
}

func TestStripTriggerName(t *testing.T) {
	t.Parallel()

	require.Equal(t, "расскажи анекдот", stripTriggerName("Митя расскажи анекдот", "митя"))
	require.Equal(t, "привет", stripTriggerName("привет", "митя"))
}

func TestContainsTriggerName(t *testing.T) {
	t.Parallel()

	require.True(t, containsTriggerName("эй митя привет", "митя"))
	require.False(t, containsTriggerName("эй ваня привет", "митя"))
}

func TestCannedLinesFallBackWithoutContent(t *testing.T) {
	t.Parallel()

	// Neither Quotes nor Jokes is wired, both lines must still answer.
	h := textHandler{
		deps: HandlerDeps{
			Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
			Config: &config.Config{Messages: config.Messages{
				Quote:           "🗿 %s",
				QuotesExhausted: "Цитаты кончились.",
				Joke:            "😂 %s",
				JokeFallback:    "Анекдотов нет.",
			}},
		},
	}

	require.Equal(t, "Цитаты кончились.", h.quoteLine())
	require.Equal(t, "Анекдотов нет.", h.jokeLine(t.Context()))
}

func TestSettingsKeyboardTargets(t *testing.T) {
	t.Parallel()

	keyboard := settingsKeyboard(&database.ChatSettings{AIEnabled: true, VoiceEnabled: false, ReplyChance: 30})
	require.Len(t, keyboard.InlineKeyboard, 5)

	// Enabled AI offers the disable action, disabled voice offers enable.
	require.Equal(t, "set_ai_0", keyboard.InlineKeyboard[0][0].CallbackData)
	require.Equal(t, "set_voice_1", keyboard.InlineKeyboard[1][0].CallbackData)

	require.Equal(t, "chance_0", keyboard.InlineKeyboard[2][0].CallbackData)
	require.Equal(t, "chance_10", keyboard.InlineKeyboard[2][1].CallbackData)
	require.Equal(t, "chance_30", keyboard.InlineKeyboard[3][0].CallbackData)
	require.Equal(t, "chance_50", keyboard.InlineKeyboard[3][1].CallbackData)
	require.Equal(t, "chance_100", keyboard.InlineKeyboard[4][0].CallbackData)
}
