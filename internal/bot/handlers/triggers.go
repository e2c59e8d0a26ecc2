package handlers

import "strings"

// triggerAction identifies which canned-content phrase a message matched.
type triggerAction int

const (
	triggerNone triggerAction = iota
	triggerQuote
	triggerJoke
	triggerChoose
	triggerChance
	triggerInsult
)

// insultTrigger echoes the chat's favorite insult back at the sender.
const insultTrigger = "пидор"

const chooseSeparator = " или "

// buddyTriggers holds the precomputed phrases built from the configured
// buddy prefix ("братан" by default).
type buddyTriggers struct {
	quote   string
	joke    string
	choose  string
	chances []string
}

func newBuddyTriggers(prefix string) buddyTriggers {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	return buddyTriggers{
		quote:   prefix + ", выдай цитату",
		joke:    prefix + ", выдай анекдот",
		choose:  prefix + ", выбери",
		chances: []string{prefix + ", шанс", prefix + ", вероятность"},
	}
}

// detect reports which trigger phrase the lowercased text matches.
// Matching order mirrors handler precedence: quote and joke before choose,
// chance before the insult echo.
func (t buddyTriggers) detect(lowered string) triggerAction {
	switch {
	case strings.Contains(lowered, t.quote):
		return triggerQuote
	case strings.Contains(lowered, t.joke):
		return triggerJoke
	case strings.HasPrefix(lowered, t.choose):
		return triggerChoose
	}

	for _, chance := range t.chances {
		if strings.Contains(lowered, chance) {
			return triggerChance
		}
	}

	if strings.Contains(lowered, insultTrigger) {
		return triggerInsult
	}

	return triggerNone
}

// chooseOptions extracts the alternatives from a "выбери А или Б" message.
// It returns nil when the separator word is absent or nothing usable
// remains after splitting.
func (t buddyTriggers) chooseOptions(lowered string) []string {
	content := strings.TrimPrefix(lowered, t.choose)
	if !strings.Contains(content, chooseSeparator) {
		return nil
	}

	parts := strings.Split(content, chooseSeparator)
	options := make([]string, 0, len(parts))
	for _, part := range parts {
		if opt := strings.TrimSpace(part); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) == 0 {
		return nil
	}
	return options
}

// containsTriggerName reports whether the bot's spoken name occurs in the
// lowercased text.
func containsTriggerName(lowered, name string) bool {
	return strings.Contains(lowered, name)
}

// trimTriggerName strips the bot's name from the start of a message,
// along with any punctuation separating it from the actual prompt.
// The second return value reports whether the name was a prefix at all.
func trimTriggerName(text, name string) (string, bool) {
	lowered := strings.ToLower(text)
	if !strings.HasPrefix(lowered, name) {
		return text, false
	}
	return strings.TrimLeft(text[len(name):], " ,.!?—-"), true
}

// stripTriggerName removes every occurrence of the bot's name from a
// transcript, used for voice prompts where the name can land anywhere.
func stripTriggerName(text, name string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ToLower(text), name, ""))
}
