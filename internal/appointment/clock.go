package appointment

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// Clock supplies the current moment to every entry point that needs "now".
type Clock interface {
	Now() time.Time
}

type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always reports t. Used by tests and replays.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// addToTime adds d to a wall-clock time, wrapping past midnight like a clock face.
func addToTime(t civil.Time, d time.Duration) civil.Time {
	base := time.Date(2000, time.January, 1, t.Hour, t.Minute, t.Second, t.Nanosecond, time.UTC)
	return civil.TimeOf(base.Add(d))
}

func addToDateTime(dt civil.DateTime, d time.Duration) civil.DateTime {
	return civil.DateTimeOf(dt.In(time.UTC).Add(d))
}

func sinceMidnight(t civil.Time) time.Duration {
	return time.Duration(t.Hour)*time.Hour +
		time.Duration(t.Minute)*time.Minute +
		time.Duration(t.Second)*time.Second +
		time.Duration(t.Nanosecond)
}

func timeAt(offset time.Duration) civil.Time {
	return addToTime(civil.Time{}, offset)
}

// ParseTimeOfDay accepts HH:MM or HH:MM:SS.
func ParseTimeOfDay(s string) (civil.Time, error) {
	if t, err := civil.ParseTime(s); err == nil {
		return t, nil
	}
	return civil.ParseTime(s + ":00")
}

// FormatTimeOfDay renders t as HH:MM, adding seconds only when set.
func FormatTimeOfDay(t civil.Time) string {
	if t.Second != 0 || t.Nanosecond != 0 {
		return t.String()
	}
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}
