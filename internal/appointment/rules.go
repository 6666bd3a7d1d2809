package appointment

import (
	"fmt"

	"cloud.google.com/go/civil"
)

// slotRequest is the input shared by the booking and appointment factories.
// Nil pointers stand for values the caller did not supply.
type slotRequest struct {
	earliest     *civil.DateTime
	hours        *ClinicHours
	kind         AppointmentType
	date         *civil.Date
	startTime    *civil.Time
	patient      *Patient
	practitioner *Practitioner
}

func (r *slotRequest) endTime() civil.Time {
	return addToTime(*r.startTime, r.kind.Duration())
}

// rule reports zero or more violations. Rules never stop evaluation of the
// ones after them.
type rule func(r *slotRequest) []Violation

func violation(code ViolationCode, detail string) []Violation {
	return []Violation{{Code: code, Detail: detail}}
}

func presence(code ViolationCode, missing func(r *slotRequest) bool) rule {
	return func(r *slotRequest) []Violation {
		if missing(r) {
			return violation(code, "")
		}
		return nil
	}
}

var (
	earliestRequired     = presence(CodeEarliestDateNull, func(r *slotRequest) bool { return r.earliest == nil })
	hoursRequired        = presence(CodeClinicHoursNull, func(r *slotRequest) bool { return r.hours == nil || r.hours.IsZero() })
	dateRequired         = presence(CodeDateNull, func(r *slotRequest) bool { return r.date == nil })
	startTimeRequired    = presence(CodeStartTimeNull, func(r *slotRequest) bool { return r.startTime == nil })
	patientRequired      = presence(CodePatientNull, func(r *slotRequest) bool { return r.patient == nil })
	practitionerRequired = presence(CodePractitionerNull, func(r *slotRequest) bool { return r.practitioner == nil })
)

func typeRequired(r *slotRequest) []Violation {
	switch {
	case r.kind == "":
		return violation(CodeTypeNull, "")
	case !r.kind.Valid():
		return violation(CodeTypeUnknown, string(r.kind))
	}
	return nil
}

// businessRules only run once every value they read is present.
func businessRules(rules ...rule) rule {
	return func(r *slotRequest) []Violation {
		if r.date == nil || r.startTime == nil || r.earliest == nil ||
			r.hours == nil || r.hours.IsZero() || !r.kind.Valid() {
			return nil
		}
		var out []Violation
		for _, fn := range rules {
			out = append(out, fn(r)...)
		}
		return out
	}
}

func dateNotInPast(r *slotRequest) []Violation {
	if r.date.Before(r.earliest.Date) {
		return violation(CodeDateInPast, fmt.Sprintf("%s before %s", r.date, r.earliest.Date))
	}
	return nil
}

func timeNotInPast(r *slotRequest) []Violation {
	if *r.date == r.earliest.Date && r.startTime.Before(r.earliest.Time) {
		return violation(CodeTimeInPast, fmt.Sprintf("%s before %s", r.startTime, r.earliest.Time))
	}
	return nil
}

func startOnInterval(r *slotRequest) []Violation {
	step := int(r.hours.Interval().Minutes())
	if r.startTime.Minute%step != 0 {
		return violation(CodeDesiredStartTimeInvalid, fmt.Sprintf("minute %d is not a multiple of %d", r.startTime.Minute, step))
	}
	return nil
}

func leadTimeRespected(r *slotRequest) []Violation {
	threshold := addToDateTime(*r.earliest, MinimumLeadTime)
	start := civil.DateTime{Date: *r.date, Time: *r.startTime}
	if !threshold.Before(start) {
		return violation(CodeTooSoonToAppointment, fmt.Sprintf("starts %s, earliest allowed after %s", start, threshold))
	}
	return nil
}

func startsWithinHours(r *slotRequest) []Violation {
	if r.startTime.Before(r.hours.Opening()) || r.startTime.After(r.hours.Closing()) {
		return violation(CodeOutsideBusinessHours, fmt.Sprintf("starts %s", r.startTime))
	}
	return nil
}

// endsWithinHours treats an end that wrapped past midnight as after closing.
func endsWithinHours(r *slotRequest) []Violation {
	if end := r.endTime(); end.After(r.hours.Closing()) || end.Before(*r.startTime) {
		return violation(CodeOutsideBusinessHours, fmt.Sprintf("ends %s", end))
	}
	return nil
}

var (
	bookingRules = []rule{
		earliestRequired,
		hoursRequired,
		typeRequired,
		dateRequired,
		startTimeRequired,
		patientRequired,
		practitionerRequired,
		businessRules(
			dateNotInPast,
			timeNotInPast,
			startOnInterval,
			leadTimeRespected,
			startsWithinHours,
			endsWithinHours,
		),
	}

	// Hours and overlap were enforced when the booking was accepted.
	appointmentRules = []rule{
		earliestRequired,
		typeRequired,
		dateRequired,
		startTimeRequired,
		patientRequired,
		practitionerRequired,
	}
)

func evaluate(r *slotRequest, rules []rule) []Violation {
	var out []Violation
	for _, fn := range rules {
		out = append(out, fn(r)...)
	}
	return out
}
