package model

import "regexp"

// Settings is the per-user reminder configuration.
type Settings struct {
	DefaultReminderMinutes *int    `json:"defaultReminderMinutes"`
	AllDayReminderTime     *string `json:"allDayReminderTime"`
	ReminderLocale         *string `json:"reminderLocale"`
}

// SettingsInput is a partial settings update.
type SettingsInput struct {
	DefaultReminderMinutes Optional[*int]
	AllDayReminderTime     Optional[*string]
	ReminderLocale         Optional[*string]
}

// Settings keys as stored in the settings table.
const (
	SettingDefaultReminderMinutes = "defaultReminderMinutes"
	SettingAllDayReminderTime     = "allDayReminderTime"
	SettingReminderLocale         = "reminderLocale"
)

// LocaleAuto defers the reminder locale to the profile or environment.
const LocaleAuto = "auto"

var timeOfDayPattern = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?$`)

// ValidTimeOfDay reports whether s is HH:MM or HH:MM:SS.
func ValidTimeOfDay(s string) bool {
	return timeOfDayPattern.MatchString(s)
}
