package appointment

import (
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type AppointmentRequest struct {
	Earliest     *civil.DateTime
	BookingID    uuid.UUID
	Type         AppointmentType
	Date         *civil.Date
	StartTime    *civil.Time
	Patient      *Patient
	Practitioner *Practitioner
}

// CreateAppointment runs the shared presence checks and returns an Appointment
// with empty notes, or a *ValidationError listing every missing value.
func CreateAppointment(req AppointmentRequest) (*Appointment, error) {
	r := &slotRequest{
		earliest:     req.Earliest,
		kind:         req.Type,
		date:         req.Date,
		startTime:    req.StartTime,
		patient:      req.Patient,
		practitioner: req.Practitioner,
	}
	if violations := evaluate(r, appointmentRules); len(violations) > 0 {
		return nil, &ValidationError{Entity: "appointment", Violations: violations}
	}
	return &Appointment{
		id:           uuid.New(),
		bookingID:    req.BookingID,
		kind:         req.Type,
		date:         *req.Date,
		startTime:    *req.StartTime,
		patient:      req.Patient,
		practitioner: req.Practitioner,
	}, nil
}

func RestoreAppointment(id, bookingID uuid.UUID, kind AppointmentType, date civil.Date, startTime civil.Time, patient *Patient, practitioner *Practitioner, notes string) (*Appointment, error) {
	b, err := RestoreBooking(id, kind, date, startTime, patient, practitioner)
	if err != nil {
		return nil, fmt.Errorf("restore appointment: %w", err)
	}
	return &Appointment{
		id:           b.id,
		bookingID:    bookingID,
		kind:         b.kind,
		date:         b.date,
		startTime:    b.startTime,
		patient:      b.patient,
		practitioner: b.practitioner,
		notes:        notes,
	}, nil
}
