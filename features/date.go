package features

import (
	"fmt"
	"strconv"
	"time"
)

// Date layouts accepted for request dates.
const (
	dateLayoutISO     = "2006-01-02"
	dateLayoutCompact = "20060102"
)

// ParseDate parses a calendar date given as YYYY-MM-DD, YYYYMMDD, or an
// RFC3339 timestamp. The result is normalized to UTC midnight. Dates in no
// recognized form fail with ErrUnparsableDate carrying the offending input.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{dateLayoutISO, dateLayoutCompact, time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return midnightUTC(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparsableDate, s)
}

// TimeKeyDate converts an integer YYYYMMDD date key into its calendar date
// at UTC midnight. Keys that do not encode a valid date fail with
// ErrUnparsableDate.
func TimeKeyDate(timeKey int) (time.Time, error) {
	t, err := time.Parse(dateLayoutCompact, strconv.Itoa(timeKey))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: time_key %d", ErrUnparsableDate, timeKey)
	}
	return midnightUTC(t), nil
}

// DateTimeKey converts a calendar date into its integer YYYYMMDD key.
func DateTimeKey(t time.Time) int {
	y, m, d := t.Date()
	return y*10000 + int(m)*100 + d
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
