package store

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeLayout is how every timestamp column is written.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return formatTime(*t)
}

func nullableString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func (r Row) String(col string) string {
	switch v := r[col].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return formatTime(v)
	default:
		return fmt.Sprint(v)
	}
}

func (r Row) NullString(col string) *string {
	if r[col] == nil {
		return nil
	}
	s := r.String(col)
	return &s
}

func (r Row) Int(col string) int {
	v := r.NullInt(col)
	if v == nil {
		return 0
	}
	return *v
}

func (r Row) NullInt(col string) *int {
	var n int
	switch v := r[col].(type) {
	case nil:
		return nil
	case int64:
		n = int(v)
	case int:
		n = v
	case float64:
		n = int(v)
	case bool:
		if v {
			n = 1
		}
	case string, []byte:
		parsed, err := strconv.Atoi(strings.TrimSpace(r.String(col)))
		if err != nil {
			return nil
		}
		n = parsed
	default:
		return nil
	}
	return &n
}

func (r Row) Bool(col string) bool {
	return r.Int(col) != 0
}

func (r Row) Time(col string) time.Time {
	t := r.NullTime(col)
	if t == nil {
		return time.Time{}
	}
	return *t
}

func (r Row) NullTime(col string) *time.Time {
	switch v := r[col].(type) {
	case nil:
		return nil
	case time.Time:
		return &v
	}
	s := strings.TrimSpace(r.String(col))
	if s == "" {
		return nil
	}
	for _, layout := range []string{timeLayout, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	return nil
}

// likePattern builds a case-insensitive substring pattern for LIKE ... ESCAPE '\'.
func likePattern(q string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(q)) + "%"
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
