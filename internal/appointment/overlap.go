package appointment

import "cloud.google.com/go/civil"

// Interval is a half-open [Start, End) span of wall-clock time.
type Interval struct {
	Start civil.Time
	End   civil.Time
}

// IntervalsOverlap treats both spans as half-open, so one ending at 10:00 does
// not conflict with one starting at 10:00.
func IntervalsOverlap(startA, endA, startB, endB civil.Time) bool {
	return startB.Before(endA) && endB.After(startA)
}

// OverlapsAny is false for an empty or nil candidate list.
func OverlapsAny(start, end civil.Time, candidates []Interval) bool {
	for _, c := range candidates {
		if IntervalsOverlap(start, end, c.Start, c.End) {
			return true
		}
	}
	return false
}
