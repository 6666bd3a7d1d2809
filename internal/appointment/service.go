package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

const (
	EventBookingCreated     = "BOOKING_CREATED"
	EventBookingCancelled   = "BOOKING_CANCELLED"
	EventAppointmentCreated = "APPOINTMENT_CREATED"
	EventNotesUpdated       = "APPOINTMENT_NOTES_UPDATED"
)

var (
	ErrScheduleBusy = errors.New("practitioner schedule is being changed, please retry")
)

var tracer = otel.Tracer("clinic-scheduling/appointment")

type BookRequest struct {
	PractitionerID uuid.UUID
	PatientID      uuid.UUID
	ClinicID       uuid.UUID
	Type           AppointmentType
	Date           civil.Date
	StartTime      civil.Time
}

type Service struct {
	repo    Repository
	locker  redisclient.Locker
	clock   Clock
	metrics *metrics.BookingMetrics
	logger  zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, clock Clock, m *metrics.BookingMetrics, logger zerolog.Logger) *Service {
	if clock == nil {
		clock = SystemClock
	}
	return &Service{
		repo:    repo,
		locker:  locker,
		clock:   clock,
		metrics: m,
		logger:  logger,
	}
}

// scheduleFor loads one day of a practitioner's bookings into a Schedule.
func (s *Service) scheduleFor(ctx context.Context, practitioner *Practitioner, date civil.Date) (*Schedule, error) {
	existing, err := s.repo.ListBookings(ctx, practitioner, date)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}
	sched := NewSchedule(practitioner, s.clock)
	sched.Restore(existing...)
	return sched, nil
}

// BookAppointment reserves a slot for a patient with a practitioner.
// The check-overlap-then-insert runs under the practitioner lock so
// concurrent requests cannot both take overlapping slots.
func (s *Service) BookAppointment(ctx context.Context, req BookRequest) (*Booking, error) {
	ctx, span := tracer.Start(ctx, "appointment.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("practitioner_id", req.PractitionerID.String()),
		attribute.String("appointment_type", string(req.Type)),
		attribute.String("date", req.Date.String()),
	)

	practitioner, err := s.repo.GetPractitionerByID(ctx, req.PractitionerID)
	if err != nil {
		return nil, s.failBooking(span, req.Type, fmt.Errorf("load practitioner: %w", err))
	}
	patient, err := s.repo.GetPatientByID(ctx, req.PatientID)
	if err != nil {
		return nil, s.failBooking(span, req.Type, fmt.Errorf("load patient: %w", err))
	}
	clinic, err := s.repo.GetClinicByID(ctx, req.ClinicID)
	if err != nil {
		return nil, s.failBooking(span, req.Type, fmt.Errorf("load clinic: %w", err))
	}

	var created *Booking

	err = s.locker.WithPractitionerLock(ctx, practitioner.ID(), func(lockCtx context.Context) error {
		started := time.Now()
		defer func() { s.metrics.ObserveCriticalSection(time.Since(started).Seconds()) }()

		sched, err := s.scheduleFor(lockCtx, practitioner, req.Date)
		if err != nil {
			return err
		}

		booking, err := sched.AddBooking(patient, clinic, req.Type, req.Date, req.StartTime)
		if err != nil {
			return err
		}

		if err := s.repo.InsertBooking(lockCtx, *booking); err != nil {
			return err
		}
		created = booking

		s.logEvent(lockCtx, booking.ID(), EventBookingCreated, map[string]any{
			"practitioner_id":  practitioner.ID().String(),
			"patient_id":       patient.ID().String(),
			"clinic_id":        clinic.ID().String(),
			"appointment_type": string(booking.Type()),
			"date":             booking.Date().String(),
			"start_time":       booking.StartTime().String(),
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			err = ErrScheduleBusy
		}
		return nil, s.failBooking(span, req.Type, err)
	}

	s.metrics.ObserveBooking(string(req.Type), metrics.OutcomeCreated)
	s.logger.Info().
		Str("booking_id", created.ID().String()).
		Str("practitioner_id", practitioner.ID().String()).
		Str("date", created.Date().String()).
		Str("start_time", created.StartTime().String()).
		Msg("booking created")

	return created, nil
}

// failBooking records the outcome of a booking that did not go through and
// returns err unchanged.
func (s *Service) failBooking(span trace.Span, kind AppointmentType, err error) error {
	span.RecordError(err)

	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		codes := verr.Codes()
		names := make([]string, len(codes))
		for i, c := range codes {
			names[i] = string(c)
		}
		s.metrics.ObserveBooking(string(kind), metrics.OutcomeRejected)
		s.metrics.ObserveViolations(names)
		s.logger.Debug().Strs("violations", names).Msg("booking rejected")
	case errors.Is(err, ErrScheduleBusy):
		s.metrics.ObserveBooking(string(kind), metrics.OutcomeBusy)
	case errors.Is(err, ErrPrecondition), isNotFound(err):
		s.metrics.ObserveBooking(string(kind), metrics.OutcomeRejected)
	default:
		s.metrics.ObserveBooking(string(kind), metrics.OutcomeError)
		s.logger.Error().Err(err).Msg("booking failed")
	}
	return err
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrPatientNotFound) ||
		errors.Is(err, ErrPractitionerNotFound) ||
		errors.Is(err, ErrClinicNotFound) ||
		errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrAppointmentNotFound)
}

// CancelBooking removes a practitioner's booking. It reports false when the
// practitioner holds no such booking.
func (s *Service) CancelBooking(ctx context.Context, practitionerID, bookingID uuid.UUID) (bool, error) {
	ctx, span := tracer.Start(ctx, "appointment.cancel")
	defer span.End()

	practitioner, err := s.repo.GetPractitionerByID(ctx, practitionerID)
	if err != nil {
		return false, fmt.Errorf("load practitioner: %w", err)
	}

	removed := false
	err = s.locker.WithPractitionerLock(ctx, practitionerID, func(lockCtx context.Context) error {
		stored, err := s.repo.GetBookingByID(lockCtx, bookingID)
		if errors.Is(err, ErrBookingNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("load booking: %w", err)
		}
		if stored.Practitioner().ID() != practitionerID {
			return nil
		}

		sched, err := s.scheduleFor(lockCtx, practitioner, stored.Date())
		if err != nil {
			return err
		}
		held, ok := sched.FindBooking(bookingID)
		if !ok || !sched.CancelBooking(held) {
			return nil
		}

		if err := s.repo.DeleteBooking(lockCtx, bookingID); err != nil {
			return err
		}
		removed = true

		s.logEvent(lockCtx, bookingID, EventBookingCancelled, map[string]any{
			"practitioner_id": practitionerID.String(),
			"date":            held.Date().String(),
			"start_time":      held.StartTime().String(),
		})
		return nil
	})
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return false, ErrScheduleBusy
		}
		return false, err
	}

	s.metrics.ObserveCancellation(removed)
	return removed, nil
}

// ListBookings returns a practitioner's bookings on date ordered by start time.
func (s *Service) ListBookings(ctx context.Context, practitionerID uuid.UUID, date civil.Date) ([]Booking, error) {
	practitioner, err := s.repo.GetPractitionerByID(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("load practitioner: %w", err)
	}
	sched, err := s.scheduleFor(ctx, practitioner, date)
	if err != nil {
		return nil, err
	}
	return sched.ListBookings(date), nil
}

// AvailableTimes lists the start times on date at which kind could be booked
// with the practitioner at clinic.
func (s *Service) AvailableTimes(ctx context.Context, practitionerID, clinicID uuid.UUID, date civil.Date, kind AppointmentType) ([]civil.Time, error) {
	ctx, span := tracer.Start(ctx, "appointment.available_times")
	defer span.End()

	practitioner, err := s.repo.GetPractitionerByID(ctx, practitionerID)
	if err != nil {
		return nil, fmt.Errorf("load practitioner: %w", err)
	}
	clinic, err := s.repo.GetClinicByID(ctx, clinicID)
	if err != nil {
		return nil, fmt.Errorf("load clinic: %w", err)
	}
	sched, err := s.scheduleFor(ctx, practitioner, date)
	if err != nil {
		return nil, err
	}
	return sched.AvailableTimes(clinic, date, kind)
}

// ConfirmBooking realizes a stored booking as an appointment. A booking has
// at most one appointment.
func (s *Service) ConfirmBooking(ctx context.Context, bookingID uuid.UUID) (*Appointment, error) {
	ctx, span := tracer.Start(ctx, "appointment.confirm")
	defer span.End()

	booking, err := s.repo.GetBookingByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	sched := NewSchedule(booking.Practitioner(), s.clock)
	appt, err := sched.CreateAppointment(*booking)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	if err := s.repo.InsertAppointment(ctx, appt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logEvent(ctx, appt.ID(), EventAppointmentCreated, map[string]any{
		"booking_id":      bookingID.String(),
		"practitioner_id": appt.Practitioner().ID().String(),
		"patient_id":      appt.Patient().ID().String(),
	})
	s.metrics.ObserveAppointmentCreated()

	return appt, nil
}

// UpdateAppointmentNotes replaces an appointment's notes.
func (s *Service) UpdateAppointmentNotes(ctx context.Context, appointmentID uuid.UUID, notes string) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	appt.SetNotes(notes)
	if err := s.repo.UpdateAppointmentNotes(ctx, appt.ID(), appt.Notes()); err != nil {
		return nil, err
	}

	s.logEvent(ctx, appt.ID(), EventNotesUpdated, map[string]any{
		"length": len(notes),
	})
	return appt, nil
}

func (s *Service) logEvent(ctx context.Context, subjectID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Str("event_type", eventType).Msg("failed to marshal event payload")
		data = nil
	}

	id := subjectID

	ev := EventLog{
		EventType: eventType,
		SubjectID: &id,
		Payload:   data,
		CreatedAt: s.clock.Now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn().Err(err).
			Str("event_type", eventType).
			Str("subject_id", subjectID.String()).
			Msg("failed to insert event log")
	}
}
