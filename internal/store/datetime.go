package store

import "strings"

// DeriveDateTime returns the display date and time for a todo. When both
// date and time are given and non-blank they are used verbatim. Otherwise
// date is the first 10 characters of dueAt and time is characters 11-16;
// an all-day todo always derives "00:00".
func DeriveDateTime(dueAt string, date, tod *string, allDay bool) (string, string) {
	if date != nil && tod != nil &&
		strings.TrimSpace(*date) != "" && strings.TrimSpace(*tod) != "" {
		return *date, *tod
	}

	d := dueAt
	if len(d) > 10 {
		d = d[:10]
	}

	t := ""
	if len(dueAt) >= 16 {
		t = dueAt[11:16]
	}
	if allDay {
		t = "00:00"
	}
	return d, t
}
