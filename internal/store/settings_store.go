package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/nhle/todo-extension/internal/model"
)

var settingKeys = []string{
	model.SettingDefaultReminderMinutes,
	model.SettingAllDayReminderTime,
	model.SettingReminderLocale,
}

// SettingsRepo manages the per-user settings singleton. Each field is a row
// whose value is a JSON scalar.
type SettingsRepo struct {
	db *ScopedDB
}

// NewSettingsRepo returns a SettingsRepo over db.
func NewSettingsRepo(db *ScopedDB) *SettingsRepo {
	return &SettingsRepo{db: db}
}

// Get returns the user's settings, creating defaulted rows on first read.
func (r *SettingsRepo) Get(ctx context.Context) (*model.Settings, error) {
	values, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range settingKeys {
		if _, ok := values[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		now := formatTime(time.Now())
		for _, key := range missing {
			_, err := r.db.Execute(ctx,
				"INSERT INTO settings (key, value, user_id, updated_at) VALUES (?, ?, ?, ?)",
				key, "null", r.db.UserID(), now)
			if err != nil {
				return nil, fmt.Errorf("creating default setting %s: %w", key, err)
			}
		}
	}

	s := &model.Settings{}
	decodeSetting(values[model.SettingDefaultReminderMinutes], &s.DefaultReminderMinutes)
	decodeSetting(values[model.SettingAllDayReminderTime], &s.AllDayReminderTime)
	decodeSetting(values[model.SettingReminderLocale], &s.ReminderLocale)
	return s, nil
}

// Update applies every field set in in and returns the merged settings.
func (r *SettingsRepo) Update(ctx context.Context, in model.SettingsInput) (*model.Settings, error) {
	if in.DefaultReminderMinutes.Set && in.DefaultReminderMinutes.Value != nil && *in.DefaultReminderMinutes.Value < 0 {
		return nil, invalid("defaultReminderMinutes", "defaultReminderMinutes must not be negative")
	}
	if in.AllDayReminderTime.Set {
		in.AllDayReminderTime.Value = blankToNil(in.AllDayReminderTime.Value)
		if v := in.AllDayReminderTime.Value; v != nil && !model.ValidTimeOfDay(*v) {
			return nil, invalid("allDayReminderTime", "allDayReminderTime must be HH:MM or HH:MM:SS")
		}
	}
	if in.ReminderLocale.Set {
		in.ReminderLocale.Value = blankToNil(in.ReminderLocale.Value)
	}

	// Ensures every row exists before updating in place.
	if _, err := r.Get(ctx); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.DefaultReminderMinutes.Set {
		updates[model.SettingDefaultReminderMinutes] = in.DefaultReminderMinutes.Value
	}
	if in.AllDayReminderTime.Set {
		updates[model.SettingAllDayReminderTime] = in.AllDayReminderTime.Value
	}
	if in.ReminderLocale.Set {
		updates[model.SettingReminderLocale] = in.ReminderLocale.Value
	}

	now := formatTime(time.Now())
	for _, key := range settingKeys {
		v, ok := updates[key]
		if !ok {
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding setting %s: %w", key, err)
		}
		_, err = r.db.Execute(ctx,
			"UPDATE settings SET value = ?, updated_at = ? WHERE key = ? AND user_id = ?",
			string(encoded), now, key, r.db.UserID())
		if err != nil {
			return nil, fmt.Errorf("updating setting %s: %w", key, err)
		}
	}

	return r.Get(ctx)
}

func (r *SettingsRepo) load(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.Execute(ctx,
		"SELECT key, value FROM settings WHERE user_id = ?", r.db.UserID())
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.String("key")] = row.String("value")
	}
	return values, nil
}

// decodeSetting leaves dest nil for missing, null, or undecodable values.
func decodeSetting[T any](raw string, dest **T) {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return
	}
	*dest = &v
}

func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
