package reminder

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
)

// Supported locales.
const (
	LocaleEnglish = "en"
	LocaleSwedish = "sv"
)

// localeEnvVars are consulted in order when neither settings nor profile
// pick a locale.
var localeEnvVars = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// MessageContext carries what the builder needs beyond the todo itself.
type MessageContext struct {
	Profile host.UserProfile
	// FiredAt is when the scheduler actually ran the job. Zero means now.
	FiredAt time.Time
	// Getenv reads process locale variables. Nil means os.Getenv.
	Getenv func(string) string
}

// ResolveLocale picks "sv" or "en". An explicit non-"auto" setting wins,
// then the user's language, then the process locale, then English.
func ResolveLocale(settings model.Settings, userLanguage string) string {
	return resolveLocale(settings, userLanguage, os.Getenv)
}

func resolveLocale(settings model.Settings, userLanguage string, getenv func(string) string) string {
	if s := settings.ReminderLocale; s != nil && !strings.EqualFold(strings.TrimSpace(*s), model.LocaleAuto) {
		if l, ok := matchLocale(*s); ok {
			return l
		}
	}
	if l, ok := matchLocale(userLanguage); ok {
		return l
	}
	if getenv != nil {
		for _, name := range localeEnvVars {
			if l, ok := matchLocale(getenv(name)); ok {
				return l
			}
		}
	}
	return LocaleEnglish
}

// matchLocale prefix-matches values like "sv-SE" or "en_US.UTF-8".
func matchLocale(v string) (string, bool) {
	v = strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.HasPrefix(v, LocaleSwedish):
		return LocaleSwedish, true
	case strings.HasPrefix(v, LocaleEnglish):
		return LocaleEnglish, true
	}
	return "", false
}

type phrases struct {
	greeting      string
	greetingNamed string
	due           string
	delayOne      string
	delayMany     string
	instruction   string
	record        string
}

var catalog = map[string]phrases{
	LocaleEnglish: {
		greeting:      "Hi!",
		greetingNamed: "Hi %s!",
		due:           "Reminder: the todo %q is due now.",
		delayOne:      "This reminder is delayed by 1 minute.",
		delayMany:     "This reminder is delayed by %d minutes.",
		instruction:   "Tell the user about this todo and offer to help them get it done.",
		record:        "Todo details:",
	},
	LocaleSwedish: {
		greeting:      "Hej!",
		greetingNamed: "Hej %s!",
		due:           "Påminnelse: uppgiften %q ska göras nu.",
		delayOne:      "Den här påminnelsen är försenad med 1 minut.",
		delayMany:     "Den här påminnelsen är försenad med %d minuter.",
		instruction:   "Berätta för användaren om uppgiften och erbjud hjälp att slutföra den.",
		record:        "Uppgiftens detaljer:",
	},
}

// BuildInstructionMessage renders the localized instruction sent to the
// chat surface when a reminder fires. The full todo is appended as JSON.
func BuildInstructionMessage(todo model.Todo, payload host.FirePayload, settings model.Settings, mc MessageContext) string {
	getenv := mc.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	p := catalog[resolveLocale(settings, mc.Profile.Language, getenv)]

	var b strings.Builder
	if name := strings.TrimSpace(mc.Profile.DisplayName()); name != "" {
		fmt.Fprintf(&b, p.greetingNamed, name)
	} else {
		b.WriteString(p.greeting)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, p.due, todo.Title)
	b.WriteString("\n")

	firedAt := mc.FiredAt
	if firedAt.IsZero() {
		firedAt = time.Now()
	}
	if delay := DelayMinutes(payload.ScheduledAt, firedAt); delay == 1 {
		b.WriteString(p.delayOne + "\n")
	} else if delay > 1 {
		fmt.Fprintf(&b, p.delayMany+"\n", delay)
	}

	b.WriteString(p.instruction + "\n\n")
	b.WriteString(p.record + "\n")
	record, err := json.MarshalIndent(todo, "", "  ")
	if err != nil {
		record = []byte(fmt.Sprintf("%+v", todo))
	}
	b.Write(record)
	return b.String()
}

// DelayMinutes returns the whole minutes firedAt lags scheduledAt, or 0.
func DelayMinutes(scheduledAt, firedAt time.Time) int {
	if scheduledAt.IsZero() {
		return 0
	}
	lag := firedAt.Sub(scheduledAt)
	if lag < time.Minute {
		return 0
	}
	return int(lag / time.Minute)
}
