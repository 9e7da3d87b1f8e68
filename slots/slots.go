package slots

import (
	"fmt"
	"time"
)

// Interval is the fixed width of one spot price slot.
const Interval = 15 * time.Minute

var guiLocation *time.Location = time.UTC

func SetGuiTimezone(timezone string) error {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return fmt.Errorf("failed to load timezone %s: %v", timezone, err)
	}
	guiLocation = loc
	return nil
}

// Align truncates t down to the slot grid, in UTC.
func Align(t time.Time) time.Time {
	return t.UTC().Truncate(Interval)
}

// IsAligned reports whether t lies exactly on a slot boundary.
func IsAligned(t time.Time) bool {
	return t.UTC().Truncate(Interval).Equal(t.UTC())
}

// Next returns the first slot boundary at or after t.
func Next(t time.Time) time.Time {
	aligned := Align(t)
	if aligned.Equal(t.UTC()) {
		return aligned
	}
	return aligned.Add(Interval)
}

// Add moves t by n slots along the grid.
func Add(t time.Time, n int) time.Time {
	return t.UTC().Add(time.Duration(n) * Interval)
}

// Count returns the number of whole slots in d, and whether d is an
// exact multiple of the slot interval.
func Count(d time.Duration) (int, bool) {
	if d < 0 {
		return 0, false
	}
	return int(d / Interval), d%Interval == 0
}

func FromNow() time.Time {
	return Align(time.Now())
}

func FromMidnight() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func FromIso(str string) time.Time {
	t, err := time.Parse(time.RFC3339, str)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

func IsoString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func FormatInGuiTimezone(t time.Time) string {
	return t.In(guiLocation).Format("2006-01-02 15:04")
}
