package appointment

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// BookingRequest holds the inputs to CreateBooking. Nil pointers and an empty
// Type are reported as missing values.
type BookingRequest struct {
	Earliest     *civil.DateTime
	Hours        *ClinicHours
	Type         AppointmentType
	Date         *civil.Date
	StartTime    *civil.Time
	Patient      *Patient
	Practitioner *Practitioner
}

// CreateBooking checks every booking rule and returns either a Booking or a
// *ValidationError listing all violations. Overlap with other bookings is the
// caller's concern.
func CreateBooking(req BookingRequest) (*Booking, error) {
	r := &slotRequest{
		earliest:     req.Earliest,
		hours:        req.Hours,
		kind:         req.Type,
		date:         req.Date,
		startTime:    req.StartTime,
		patient:      req.Patient,
		practitioner: req.Practitioner,
	}
	if violations := evaluate(r, bookingRules); len(violations) > 0 {
		return nil, &ValidationError{Entity: "booking", Violations: violations}
	}
	return &Booking{
		id:           uuid.New(),
		kind:         req.Type,
		date:         *req.Date,
		startTime:    *req.StartTime,
		patient:      req.Patient,
		practitioner: req.Practitioner,
	}, nil
}

// RestoreBooking rebuilds a stored booking. It does not re-run the time rules,
// which only hold at the moment of booking.
func RestoreBooking(id uuid.UUID, kind AppointmentType, date civil.Date, startTime civil.Time, patient *Patient, practitioner *Practitioner) (*Booking, error) {
	if err := requireID("booking", id); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("booking type %q: %w", kind, ErrUnknownAppointmentType)
	}
	if !date.IsValid() {
		return nil, fmt.Errorf("booking date: %w", ErrFieldNullOrBlank)
	}
	if !startTime.IsValid() {
		return nil, fmt.Errorf("booking start time: %w", ErrFieldNullOrBlank)
	}
	if patient == nil {
		return nil, fmt.Errorf("booking patient: %w", ErrFieldNullOrBlank)
	}
	if practitioner == nil {
		return nil, fmt.Errorf("booking practitioner: %w", ErrFieldNullOrBlank)
	}
	return &Booking{
		id:           id,
		kind:         kind,
		date:         date,
		startTime:    startTime,
		patient:      patient,
		practitioner: practitioner,
	}, nil
}

// OverlapsAny reports whether b shares any instant with another booking on the
// same date.
func (b Booking) OverlapsAny(others []Booking) bool {
	for _, o := range others {
		if o.date == b.date && IntervalsOverlap(b.startTime, b.EndTime(), o.startTime, o.EndTime()) {
			return true
		}
	}
	return false
}
