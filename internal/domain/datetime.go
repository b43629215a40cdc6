package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// LocalDateTimeLayout is the value format of a datetime-local input.
	LocalDateTimeLayout = "2006-01-02T15:04"
	// DisplayDateTimeLayout is used wherever a timestamp is shown read-only.
	DisplayDateTimeLayout = "02/01/06 15:04"
)

// FormatLocalDateTime converts a wire timestamp into the picker's local format.
func FormatLocalDateTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format(LocalDateTimeLayout)
}

// ParseLocalDateTime converts a picker value back into a wire timestamp (UTC).
// An empty value yields nil.
func ParseLocalDateTime(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(LocalDateTimeLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", s, err)
	}
	t = t.UTC()
	return &t, nil
}

// DefaultLocalDateTime is the picker value a new record starts with.
func DefaultLocalDateTime(now time.Time, loc *time.Location) string {
	return now.In(loc).Truncate(time.Minute).Format(LocalDateTimeLayout)
}

func FormatDisplayDateTime(t *time.Time, loc *time.Location) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.In(loc).Format(DisplayDateTimeLayout)
}
