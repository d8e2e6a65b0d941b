package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/todo-extension/internal/model"
	"github.com/nhle/todo-extension/internal/store"
)

func TestDeriveDateTime(t *testing.T) {
	tests := []struct {
		name     string
		dueAt    string
		date     *string
		tod      *string
		allDay   bool
		wantDate string
		wantTime string
	}{
		{
			name:     "derived from dueAt",
			dueAt:    "2025-02-10T09:00:00+01:00",
			wantDate: "2025-02-10",
			wantTime: "09:00",
		},
		{
			name:     "all day forces midnight",
			dueAt:    "2025-02-10T09:00:00+01:00",
			allDay:   true,
			wantDate: "2025-02-10",
			wantTime: "00:00",
		},
		{
			name:     "explicit date and time win",
			dueAt:    "2025-02-10T09:00:00+01:00",
			date:     model.Ptr("2025-02-11"),
			tod:      model.Ptr("17:45"),
			wantDate: "2025-02-11",
			wantTime: "17:45",
		},
		{
			name:     "explicit pair wins over all day",
			dueAt:    "2025-02-10T09:00:00+01:00",
			date:     model.Ptr("2025-02-11"),
			tod:      model.Ptr("17:45"),
			allDay:   true,
			wantDate: "2025-02-11",
			wantTime: "17:45",
		},
		{
			name:     "only date given is ignored",
			dueAt:    "2025-02-10T09:00:00+01:00",
			date:     model.Ptr("2025-02-11"),
			wantDate: "2025-02-10",
			wantTime: "09:00",
		},
		{
			name:     "blank time is ignored",
			dueAt:    "2025-02-10T09:00:00+01:00",
			date:     model.Ptr("2025-02-11"),
			tod:      model.Ptr("  "),
			wantDate: "2025-02-10",
			wantTime: "09:00",
		},
		{
			name:     "date only dueAt",
			dueAt:    "2025-02-10",
			wantDate: "2025-02-10",
			wantTime: "",
		},
		{
			name: "empty dueAt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, tod := store.DeriveDateTime(tt.dueAt, tt.date, tt.tod, tt.allDay)
			assert.Equal(t, tt.wantDate, date)
			assert.Equal(t, tt.wantTime, tod)
		})
	}
}
