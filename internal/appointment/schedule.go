package appointment

import (
	"errors"
	"fmt"
	"sync"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

// ErrPrecondition marks a programming error in a Schedule call, as opposed to
// a booking that broke a rule.
var ErrPrecondition = errors.New("precondition failed")

// Schedule is a practitioner's bookings and appointments. It is the only
// thing that adds to or removes from them.
type Schedule struct {
	mu           sync.Mutex
	practitioner *Practitioner
	clock        Clock
	bookings     []Booking
	appointments []Appointment
}

func NewSchedule(practitioner *Practitioner, clock Clock) *Schedule {
	if clock == nil {
		clock = SystemClock
	}
	return &Schedule{practitioner: practitioner, clock: clock}
}

func (s *Schedule) Practitioner() *Practitioner {
	return s.practitioner
}

// Restore loads bookings that were accepted earlier, e.g. read back from storage.
func (s *Schedule) Restore(bookings ...Booking) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = append(s.bookings, bookings...)
}

// ListBookings returns the bookings on date in insertion order.
func (s *Schedule) ListBookings(date civil.Date) []Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookingsOn(date)
}

func (s *Schedule) bookingsOn(date civil.Date) []Booking {
	var out []Booking
	for _, b := range s.bookings {
		if b.date == date {
			out = append(out, b)
		}
	}
	return out
}

// FindBooking looks a held booking up by id.
func (s *Schedule) FindBooking(id uuid.UUID) (Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.bookings {
		if b.id == id {
			return b, true
		}
	}
	return Booking{}, false
}

// AddBooking validates a new booking against the clinic's hours as of the
// schedule clock, rejects it if it overlaps a held booking on the same date,
// and otherwise keeps it.
func (s *Schedule) AddBooking(patient *Patient, clinic *Clinic, kind AppointmentType, date civil.Date, startTime civil.Time) (*Booking, error) {
	if patient == nil {
		return nil, fmt.Errorf("patient cannot be nil: %w", ErrPrecondition)
	}
	if clinic == nil {
		return nil, fmt.Errorf("clinic cannot be nil: %w", ErrPrecondition)
	}
	if kind == "" {
		return nil, fmt.Errorf("appointment type cannot be empty: %w", ErrPrecondition)
	}
	if !date.IsValid() || !startTime.IsValid() {
		return nil, fmt.Errorf("date and time for booking must be set: %w", ErrPrecondition)
	}

	now := clinic.Now(s.clock)
	hours := clinic.Hours()
	booking, err := CreateBooking(BookingRequest{
		Earliest:     &now,
		Hours:        &hours,
		Type:         kind,
		Date:         &date,
		StartTime:    &startTime,
		Patient:      patient,
		Practitioner: s.practitioner,
	})
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if booking.OverlapsAny(s.bookingsOn(date)) {
		return nil, &ValidationError{
			Entity:     "booking",
			Violations: []Violation{{Code: CodeBookingOverlapsAnother}},
		}
	}
	s.bookings = append(s.bookings, *booking)
	return booking, nil
}

// CancelBooking drops the first held booking equal to b and reports whether
// one was found.
func (s *Schedule) CancelBooking(b Booking) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i] == b {
			s.bookings = append(s.bookings[:i], s.bookings[i+1:]...)
			return true
		}
	}
	return false
}

// CreateAppointment turns an accepted booking into an appointment held by
// this schedule.
func (s *Schedule) CreateAppointment(b Booking) (*Appointment, error) {
	now := civil.DateTimeOf(s.clock.Now().UTC())
	date, start := b.date, b.startTime
	req := AppointmentRequest{
		Earliest:     &now,
		BookingID:    b.id,
		Type:         b.kind,
		Patient:      b.patient,
		Practitioner: s.practitioner,
	}
	if date.IsValid() {
		req.Date = &date
	}
	if start.IsValid() {
		req.StartTime = &start
	}

	appt, err := CreateAppointment(req)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.appointments = append(s.appointments, *appt)
	s.mu.Unlock()
	return appt, nil
}

func (s *Schedule) Appointments() []Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Appointment, len(s.appointments))
	copy(out, s.appointments)
	return out
}

// AvailableTimes lists, in ascending order, each start time between the
// clinic's opening and closing at the booking interval whose span for kind
// does not overlap a held booking on date.
//
// TODO: candidates whose end passes closing are still offered although
// AddBooking rejects them; drop them once the product decision is made.
func (s *Schedule) AvailableTimes(clinic *Clinic, date civil.Date, kind AppointmentType) ([]civil.Time, error) {
	if clinic == nil {
		return nil, fmt.Errorf("clinic cannot be nil: %w", ErrPrecondition)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("appointment type %q: %w", kind, ErrPrecondition)
	}

	s.mu.Lock()
	existing := s.bookingsOn(date)
	s.mu.Unlock()

	busy := make([]Interval, len(existing))
	for i, b := range existing {
		busy[i] = b.Interval()
	}

	times := []civil.Time{}
	for _, start := range clinic.Hours().candidateStarts() {
		end := addToTime(start, kind.Duration())
		if !OverlapsAny(start, end, busy) {
			times = append(times, start)
		}
	}
	return times, nil
}
