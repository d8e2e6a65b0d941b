package tools

import (
	"context"

	"github.com/nhle/todo-extension/internal/host"
	"github.com/nhle/todo-extension/internal/model"
)

func settingsTools() []definition {
	return []definition{
		{
			id:          "settings_get",
			name:        "Get settings",
			description: "Get the reminder settings of the current user.",
			run: func(ctx context.Context, c *call) (any, error) {
				return c.repo.GetSettings(ctx)
			},
		},
		{
			id:   "settings_update",
			name: "Update settings",
			description: "Update the supplied reminder settings. Null resets a field. " +
				`reminderLocale "auto" follows the user profile language.`,
			params: []host.Param{
				rules(nullable(num("defaultReminderMinutes", "Default reminder lead minutes")), "min=0"),
				rules(nullable(str("allDayReminderTime", "Reminder time for all-day todos, HH:MM or HH:MM:SS")), "omitempty,timeofday"),
				nullable(str("reminderLocale", `Reminder language such as "en" or "sv", or "auto"`)),
			},
			run: updateSettings,
		},
	}
}

func updateSettings(ctx context.Context, c *call) (any, error) {
	settings, err := c.repo.UpdateSettings(ctx, model.SettingsInput{
		DefaultReminderMinutes: c.args.NullInt("defaultReminderMinutes"),
		AllDayReminderTime:     c.args.NullString("allDayReminderTime"),
		ReminderLocale:         c.args.NullString("reminderLocale"),
	})
	if err != nil {
		return nil, err
	}
	c.changed(EntitySettings, OpUpdate, c.userID, "")
	return settings, nil
}
