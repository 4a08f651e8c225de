package schedule

import (
	"fmt"
	"time"
)

// DateKey renders t's calendar day as "YYYY-MM-DD".
//
// The key is built from t's own year/month/day components, never by
// converting to UTC or truncating an RFC 3339 string, so the same calendar
// day always produces the same key no matter what zone the process or the
// value is in. This matches the format the schedule store uses for
// schedule_date.
func DateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// MonthKey renders t's calendar month as "YYYY-MM", the format of the
// store's month query parameter.
func MonthKey(t time.Time) string {
	y, m, _ := t.Date()
	return fmt.Sprintf("%04d-%02d", y, int(m))
}

// ParseDateKey parses a "YYYY-MM-DD" key into a midnight time.Time in the
// local zone. Store payloads use this format for schedule_date.
func ParseDateKey(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t, nil
}
