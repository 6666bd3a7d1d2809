package appointment

import (
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

const (
	// DefaultBookingInterval is the start-time granularity: on the hour or on the half hour.
	DefaultBookingInterval = 30 * time.Minute

	// MinimumLeadTime is how far ahead of "now" a booking has to start.
	MinimumLeadTime = 2 * time.Hour
)

var (
	ErrHoursInvalid    = errors.New("closing time must be after opening time")
	ErrIntervalInvalid = errors.New("booking interval must be a whole number of minutes dividing an hour")
)

// ClinicHours is the daily window in which bookings may start and must end.
type ClinicHours struct {
	opening  civil.Time
	closing  civil.Time
	interval time.Duration
}

func NewClinicHours(opening, closing civil.Time, interval time.Duration) (ClinicHours, error) {
	if !opening.IsValid() {
		return ClinicHours{}, fmt.Errorf("opening time %q: %w", opening, ErrFieldNullOrBlank)
	}
	if !closing.IsValid() {
		return ClinicHours{}, fmt.Errorf("closing time %q: %w", closing, ErrFieldNullOrBlank)
	}
	if !closing.After(opening) {
		return ClinicHours{}, ErrHoursInvalid
	}
	if interval <= 0 || interval%time.Minute != 0 || time.Hour%interval != 0 {
		return ClinicHours{}, fmt.Errorf("%s: %w", interval, ErrIntervalInvalid)
	}
	if sinceMidnight(opening)%interval != 0 {
		return ClinicHours{}, fmt.Errorf("opening time %s is off the %s grid: %w", opening, interval, ErrIntervalInvalid)
	}
	return ClinicHours{opening: opening, closing: closing, interval: interval}, nil
}

// DefaultClinicHours is 09:00 to 17:00 with half-hour starts.
func DefaultClinicHours() ClinicHours {
	return ClinicHours{
		opening:  civil.Time{Hour: 9},
		closing:  civil.Time{Hour: 17},
		interval: DefaultBookingInterval,
	}
}

func (h ClinicHours) Opening() civil.Time { return h.opening }
func (h ClinicHours) Closing() civil.Time { return h.closing }
func (h ClinicHours) Interval() time.Duration { return h.interval }

// IsZero reports whether h was never constructed.
func (h ClinicHours) IsZero() bool {
	return h.interval == 0
}

// candidateStarts lists every start time from opening (inclusive) to closing
// (exclusive) stepping by the interval.
func (h ClinicHours) candidateStarts() []civil.Time {
	var starts []civil.Time
	end := sinceMidnight(h.closing)
	for off := sinceMidnight(h.opening); off < end; off += h.interval {
		starts = append(starts, timeAt(off))
	}
	return starts
}
