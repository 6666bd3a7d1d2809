package appointment

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

var (
	ErrPatientNotFound      = errors.New("patient not found")
	ErrPractitionerNotFound = errors.New("practitioner not found")
	ErrClinicNotFound       = errors.New("clinic not found")
	ErrBookingNotFound      = errors.New("booking not found")
	ErrAppointmentNotFound  = errors.New("appointment not found")
	ErrAppointmentExists    = errors.New("booking already has an appointment")
)

// Repository contains all DB interactions needed by the service. Identities
// come back through the Restore constructors so stored rows are re-validated.
type Repository interface {
	GetClinicByID(ctx context.Context, id uuid.UUID) (*Clinic, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error)

	// Bookings of one practitioner on one date, ordered by start time
	ListBookings(ctx context.Context, practitioner *Practitioner, date civil.Date) ([]Booking, error)
	GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	InsertBooking(ctx context.Context, b Booking) error
	DeleteBooking(ctx context.Context, id uuid.UUID) error

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	InsertAppointment(ctx context.Context, a *Appointment) error
	UpdateAppointmentNotes(ctx context.Context, id uuid.UUID, notes string) error

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
