package model

import "time"

// ParseTimestamp parses an ISO-8601 timestamp with offset. Minute precision
// without seconds is accepted.
func ParseTimestamp(s string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04Z07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
