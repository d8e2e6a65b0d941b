package reminder

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
)

func envOf(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		name     string
		setting  *string
		language string
		env      map[string]string
		want     string
	}{
		{name: "default", want: LocaleEnglish},
		{name: "explicit swedish", setting: model.Ptr("sv"), language: "en-US", want: LocaleSwedish},
		{name: "explicit with region", setting: model.Ptr("SV-se"), want: LocaleSwedish},
		{name: "auto defers to profile", setting: model.Ptr("auto"), language: "sv-SE", want: LocaleSwedish},
		{name: "unsupported setting falls through", setting: model.Ptr("fr"), language: "sv", want: LocaleSwedish},
		{name: "profile english over env", language: "en", env: map[string]string{"LANG": "sv_SE.UTF-8"}, want: LocaleEnglish},
		{name: "env LANG", env: map[string]string{"LANG": "sv_SE.UTF-8"}, want: LocaleSwedish},
		{name: "LC_ALL before LANG", env: map[string]string{"LC_ALL": "en_GB", "LANG": "sv_SE"}, want: LocaleEnglish},
		{name: "unsupported everywhere", setting: model.Ptr("de"), language: "fi", env: map[string]string{"LANG": "C"}, want: LocaleEnglish},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resolveLocale(model.Settings{ReminderLocale: tt.setting}, tt.language, envOf(tt.env))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLocaleReadsProcessEnv(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "sv_SE.UTF-8")
	assert.Equal(t, LocaleSwedish, ResolveLocale(model.Settings{}, ""))
}

func sampleTodo() model.Todo {
	return model.Todo{
		ID:       "t1",
		Title:    "Water the plants",
		Icon:     "leaf",
		Status:   model.TodoStatusNotStarted,
		DueAt:    "2025-03-01T10:00:00Z",
		Comments: []model.Comment{},
		SubItems: []model.SubItem{},
	}
}

func TestBuildInstructionMessage(t *testing.T) {
	scheduled := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	payload := host.FirePayload{TodoID: "t1", UserID: "u1", ScheduledAt: scheduled}
	noEnv := envOf(nil)

	tests := []struct {
		name      string
		settings  model.Settings
		profile   host.UserProfile
		firedAt   time.Time
		contains  []string
		forbidden []string
	}{
		{
			name:      "english with nickname, on time",
			profile:   host.UserProfile{FirstName: "Alexandra", Nickname: "Alex"},
			firedAt:   scheduled.Add(30 * time.Second),
			contains:  []string{"Hi Alex!", `"Water the plants" is due now`},
			forbidden: []string{"delayed", "Alexandra"},
		},
		{
			name:     "english with first name only",
			profile:  host.UserProfile{FirstName: "Sam"},
			firedAt:  scheduled,
			contains: []string{"Hi Sam!"},
		},
		{
			name:     "anonymous",
			firedAt:  scheduled,
			contains: []string{"Hi!\n"},
		},
		{
			name:     "delayed one minute",
			firedAt:  scheduled.Add(90 * time.Second),
			contains: []string{"delayed by 1 minute."},
		},
		{
			name:     "delayed several minutes",
			firedAt:  scheduled.Add(7*time.Minute + 59*time.Second),
			contains: []string{"delayed by 7 minutes."},
		},
		{
			name:     "swedish from settings",
			settings: model.Settings{ReminderLocale: model.Ptr("sv")},
			profile:  host.UserProfile{Nickname: "Kim", Language: "en"},
			firedAt:  scheduled.Add(3 * time.Minute),
			contains: []string{"Hej Kim!", "ska göras nu", "försenad med 3 minuter", "Uppgiftens detaljer:"},
		},
		{
			name:     "swedish from profile",
			profile:  host.UserProfile{Language: "sv-SE"},
			firedAt:  scheduled,
			contains: []string{"Hej!"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := BuildInstructionMessage(sampleTodo(), payload, tt.settings, MessageContext{
				Profile: tt.profile,
				FiredAt: tt.firedAt,
				Getenv:  noEnv,
			})
			for _, s := range tt.contains {
				assert.Contains(t, msg, s)
			}
			for _, s := range tt.forbidden {
				assert.NotContains(t, msg, s)
			}
		})
	}
}

func TestBuildInstructionMessageEmbedsTodo(t *testing.T) {
	todo := sampleTodo()
	msg := BuildInstructionMessage(todo, host.FirePayload{TodoID: todo.ID}, model.Settings{}, MessageContext{
		FiredAt: time.Now(),
		Getenv:  envOf(nil),
	})

	i := strings.Index(msg, "{")
	require.GreaterOrEqual(t, i, 0)

	var decoded model.Todo
	require.NoError(t, json.Unmarshal([]byte(msg[i:]), &decoded))
	assert.Equal(t, todo.ID, decoded.ID)
	assert.Equal(t, todo.Title, decoded.Title)
	assert.Equal(t, todo.DueAt, decoded.DueAt)
}

func TestDelayMinutes(t *testing.T) {
	base := time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, 0, DelayMinutes(time.Time{}, base))
	assert.Equal(t, 0, DelayMinutes(base, base.Add(59*time.Second)))
	assert.Equal(t, 1, DelayMinutes(base, base.Add(time.Minute)))
	assert.Equal(t, 0, DelayMinutes(base, base.Add(-5*time.Minute)))
	assert.Equal(t, 120, DelayMinutes(base, base.Add(2*time.Hour)))
}
