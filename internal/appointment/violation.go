package appointment

import (
	"strings"
)

// ViolationCode names one broken booking or appointment rule.
type ViolationCode string

const (
	CodeEarliestDateNull        ViolationCode = "earliest_date_null"
	CodeClinicHoursNull         ViolationCode = "clinic_hours_null"
	CodeTypeNull                ViolationCode = "type_null"
	CodeTypeUnknown             ViolationCode = "type_unknown"
	CodeDateNull                ViolationCode = "date_null"
	CodeStartTimeNull           ViolationCode = "start_time_null"
	CodePatientNull             ViolationCode = "patient_null"
	CodePractitionerNull        ViolationCode = "practitioner_null"
	CodeDateInPast              ViolationCode = "date_in_past"
	CodeTimeInPast              ViolationCode = "time_in_past"
	CodeDesiredStartTimeInvalid ViolationCode = "desired_start_time_invalid"
	CodeTooSoonToAppointment    ViolationCode = "too_soon_to_appointment"
	CodeOutsideBusinessHours    ViolationCode = "outside_business_hours"
	CodeBookingOverlapsAnother  ViolationCode = "booking_overlaps_another"
)

var violationMessages = map[ViolationCode]string{
	CodeEarliestDateNull:        "earliest permitted date and time is required",
	CodeClinicHoursNull:         "clinic hours are required",
	CodeTypeNull:                "appointment type is required",
	CodeTypeUnknown:             "appointment type is not in the catalog",
	CodeDateNull:                "date is required",
	CodeStartTimeNull:           "start time is required",
	CodePatientNull:             "patient is required",
	CodePractitionerNull:        "practitioner is required",
	CodeDateInPast:              "date is in the past",
	CodeTimeInPast:              "start time is in the past",
	CodeDesiredStartTimeInvalid: "start time must fall on the booking interval",
	CodeTooSoonToAppointment:    "start must be more than two hours away",
	CodeOutsideBusinessHours:    "appointment must start and end within clinic hours",
	CodeBookingOverlapsAnother:  "booking overlaps another booking",
}

// Violation is one entry of a collect-all validation result. Detail carries
// optional context such as the offending time.
type Violation struct {
	Code   ViolationCode
	Detail string
}

func (v Violation) Message() string {
	msg := violationMessages[v.Code]
	if v.Detail != "" {
		return msg + " (" + v.Detail + ")"
	}
	return msg
}

// ValidationError carries every rule a booking or appointment request broke.
// The same code may appear more than once.
type ValidationError struct {
	Entity     string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	codes := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = string(v.Code)
	}
	return e.Entity + " validation failed: " + strings.Join(codes, ", ")
}

func (e *ValidationError) Codes() []ViolationCode {
	codes := make([]ViolationCode, len(e.Violations))
	for i, v := range e.Violations {
		codes[i] = v.Code
	}
	return codes
}

func (e *ValidationError) Has(code ViolationCode) bool {
	return e.Count(code) > 0
}

func (e *ValidationError) Count(code ViolationCode) int {
	n := 0
	for _, v := range e.Violations {
		if v.Code == code {
			n++
		}
	}
	return n
}
