package appointment

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/clinic-scheduling/internal/metrics"
	redisclient "github.com/hackgods/clinic-scheduling/internal/redis"
)

// memRepo is an in-memory Repository.
type memRepo struct {
	mu            sync.Mutex
	clinics       map[uuid.UUID]*Clinic
	patients      map[uuid.UUID]*Patient
	practitioners map[uuid.UUID]*Practitioner
	bookings      map[uuid.UUID]Booking
	appointments  map[uuid.UUID]Appointment
	events        []EventLog
	insertErr     error
}

func newMemRepo() *memRepo {
	return &memRepo{
		clinics:       map[uuid.UUID]*Clinic{},
		patients:      map[uuid.UUID]*Patient{},
		practitioners: map[uuid.UUID]*Practitioner{},
		bookings:      map[uuid.UUID]Booking{},
		appointments:  map[uuid.UUID]Appointment{},
	}
}

func (r *memRepo) GetClinicByID(_ context.Context, id uuid.UUID) (*Clinic, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.clinics[id]; ok {
		return c, nil
	}
	return nil, ErrClinicNotFound
}

func (r *memRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.patients[id]; ok {
		return p, nil
	}
	return nil, ErrPatientNotFound
}

func (r *memRepo) GetPractitionerByID(_ context.Context, id uuid.UUID) (*Practitioner, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.practitioners[id]; ok {
		return p, nil
	}
	return nil, ErrPractitionerNotFound
}

func (r *memRepo) ListBookings(_ context.Context, practitioner *Practitioner, date civil.Date) ([]Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Booking
	for _, b := range r.bookings {
		if b.Practitioner().ID() == practitioner.ID() && b.Date() == date {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b Booking) int {
		switch {
		case a.StartTime().Before(b.StartTime()):
			return -1
		case a.StartTime().After(b.StartTime()):
			return 1
		}
		return 0
	})
	return out, nil
}

func (r *memRepo) GetBookingByID(_ context.Context, id uuid.UUID) (*Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.bookings[id]; ok {
		return &b, nil
	}
	return nil, ErrBookingNotFound
}

func (r *memRepo) InsertBooking(_ context.Context, b Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.insertErr != nil {
		return r.insertErr
	}
	r.bookings[b.ID()] = b
	return nil
}

func (r *memRepo) DeleteBooking(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[id]; !ok {
		return ErrBookingNotFound
	}
	delete(r.bookings, id)
	return nil
}

func (r *memRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.appointments[id]; ok {
		return &a, nil
	}
	return nil, ErrAppointmentNotFound
}

func (r *memRepo) InsertAppointment(_ context.Context, a *Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.appointments {
		if existing.BookingID() == a.BookingID() {
			return ErrAppointmentExists
		}
	}
	r.appointments[a.ID()] = *a
	return nil
}

func (r *memRepo) UpdateAppointmentNotes(_ context.Context, id uuid.UUID, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return ErrAppointmentNotFound
	}
	a.SetNotes(notes)
	r.appointments[id] = a
	return nil
}

func (r *memRepo) InsertEvent(_ context.Context, ev EventLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *memRepo) eventTypes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.EventType
	}
	return out
}

type busyLocker struct{}

func (busyLocker) WithPractitionerLock(context.Context, uuid.UUID, func(context.Context) error) error {
	return redisclient.ErrLockNotAcquired
}

type serviceFixture struct {
	svc          *Service
	repo         *memRepo
	clinic       *Clinic
	patient      *Patient
	practitioner *Practitioner
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := redisclient.NewRedisClient(context.Background(), redisclient.Options{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemRepo()
	f := &serviceFixture{
		repo:         repo,
		clinic:       newTestClinic(t),
		patient:      newTestPatient(t),
		practitioner: newTestPractitioner(t),
	}
	repo.clinics[f.clinic.ID()] = f.clinic
	repo.patients[f.patient.ID()] = f.patient
	repo.practitioners[f.practitioner.ID()] = f.practitioner

	f.svc = NewService(
		repo,
		redisclient.NewRedisPractitionerLocker(client, 5*time.Second),
		FixedClock(testNow),
		metrics.NewBookingMetrics(prometheus.NewRegistry()),
		zerolog.Nop(),
	)
	return f
}

func (f *serviceFixture) request(kind AppointmentType, start civil.Time) BookRequest {
	return BookRequest{
		PractitionerID: f.practitioner.ID(),
		PatientID:      f.patient.ID(),
		ClinicID:       f.clinic.ID(),
		Type:           kind,
		Date:           testTomorrow,
		StartTime:      start,
	}
}

func TestService_BookAppointment(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	b, err := f.svc.BookAppointment(ctx, f.request(TypeStandard, at(10, 0)))
	require.NoError(t, err)

	assert.Equal(t, TypeStandard, b.Type())
	assert.Equal(t, f.practitioner, b.Practitioner())
	assert.Contains(t, f.repo.bookings, b.ID())
	assert.Equal(t, []string{EventBookingCreated}, f.repo.eventTypes())
}

func TestService_BookAppointmentOverlap(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.BookAppointment(ctx, f.request(TypeStandard, at(10, 0)))
	require.NoError(t, err)

	_, err = f.svc.BookAppointment(ctx, f.request(TypeCheckIn, at(10, 30)))
	verr := requireViolations(t, err)
	assert.Equal(t, []ViolationCode{CodeBookingOverlapsAnother}, verr.Codes())
	assert.Len(t, f.repo.bookings, 1)
}

func TestService_BookAppointmentViolations(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.BookAppointment(context.Background(), f.request(TypeStandard, at(16, 15)))
	verr := requireViolations(t, err)
	assert.Equal(t, []ViolationCode{CodeDesiredStartTimeInvalid, CodeOutsideBusinessHours}, verr.Codes())
	assert.Empty(t, f.repo.bookings)
	assert.Empty(t, f.repo.eventTypes())
}

func TestService_BookAppointmentNotFound(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	req := f.request(TypeStandard, at(10, 0))
	req.PatientID = uuid.New()
	_, err := f.svc.BookAppointment(ctx, req)
	assert.ErrorIs(t, err, ErrPatientNotFound)

	req = f.request(TypeStandard, at(10, 0))
	req.ClinicID = uuid.New()
	_, err = f.svc.BookAppointment(ctx, req)
	assert.ErrorIs(t, err, ErrClinicNotFound)

	req = f.request(TypeStandard, at(10, 0))
	req.PractitionerID = uuid.New()
	_, err = f.svc.BookAppointment(ctx, req)
	assert.ErrorIs(t, err, ErrPractitionerNotFound)
}

func TestService_BookAppointmentBusy(t *testing.T) {
	f := newServiceFixture(t)
	f.svc.locker = busyLocker{}

	_, err := f.svc.BookAppointment(context.Background(), f.request(TypeStandard, at(10, 0)))
	assert.ErrorIs(t, err, ErrScheduleBusy)
}

func TestService_BookAppointmentInsertFails(t *testing.T) {
	f := newServiceFixture(t)
	f.repo.insertErr = errors.New("db down")

	_, err := f.svc.BookAppointment(context.Background(), f.request(TypeStandard, at(10, 0)))
	assert.EqualError(t, err, "db down")
	assert.Empty(t, f.repo.eventTypes())
}

func TestService_BookAppointmentConcurrent(t *testing.T) {
	f := newServiceFixture(t)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.BookAppointment(context.Background(), f.request(TypeStandard, at(10, 0)))
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
				return
			}
			var verr *ValidationError
			if !errors.As(err, &verr) {
				assert.ErrorIs(t, err, ErrScheduleBusy)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, f.repo.bookings, 1)
}

func TestService_CancelBooking(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	b, err := f.svc.BookAppointment(ctx, f.request(TypeStandard, at(10, 0)))
	require.NoError(t, err)

	other, err := NewPractitioner("Grace", "Hopper", "555-987-6543", "grace@example.com")
	require.NoError(t, err)
	f.repo.practitioners[other.ID()] = other

	removed, err := f.svc.CancelBooking(ctx, other.ID(), b.ID())
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = f.svc.CancelBooking(ctx, f.practitioner.ID(), b.ID())
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Empty(t, f.repo.bookings)

	removed, err = f.svc.CancelBooking(ctx, f.practitioner.ID(), b.ID())
	require.NoError(t, err)
	assert.False(t, removed)

	assert.Equal(t, []string{EventBookingCreated, EventBookingCancelled}, f.repo.eventTypes())
}

func TestService_CancelFreesSlot(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	b, err := f.svc.BookAppointment(ctx, f.request(TypeStandard, at(10, 0)))
	require.NoError(t, err)
	_, err = f.svc.CancelBooking(ctx, f.practitioner.ID(), b.ID())
	require.NoError(t, err)

	_, err = f.svc.BookAppointment(ctx, f.request(TypeCheckIn, at(10, 30)))
	assert.NoError(t, err)
}

func TestService_ListBookings(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.BookAppointment(ctx, f.request(TypeCheckIn, at(14, 0)))
	require.NoError(t, err)
	_, err = f.svc.BookAppointment(ctx, f.request(TypeStandard, at(10, 0)))
	require.NoError(t, err)

	got, err := f.svc.ListBookings(ctx, f.practitioner.ID(), testTomorrow)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, at(10, 0), got[0].StartTime())
	assert.Equal(t, at(14, 0), got[1].StartTime())

	got, err = f.svc.ListBookings(ctx, f.practitioner.ID(), testTomorrow.AddDays(1))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestService_AvailableTimes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	_, err := f.svc.BookAppointment(ctx, f.request(TypeStandard, at(10, 0)))
	require.NoError(t, err)

	times, err := f.svc.AvailableTimes(ctx, f.practitioner.ID(), f.clinic.ID(), testTomorrow, TypeCheckIn)
	require.NoError(t, err)
	assert.Len(t, times, 14)
	assert.NotContains(t, times, at(10, 0))
	assert.NotContains(t, times, at(10, 30))
	assert.Contains(t, times, at(11, 0))

	_, err = f.svc.AvailableTimes(ctx, f.practitioner.ID(), f.clinic.ID(), testTomorrow, "")
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestService_ConfirmBookingAndNotes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	b, err := f.svc.BookAppointment(ctx, f.request(TypeConsultation, at(13, 0)))
	require.NoError(t, err)

	appt, err := f.svc.ConfirmBooking(ctx, b.ID())
	require.NoError(t, err)
	assert.Equal(t, b.ID(), appt.BookingID())
	assert.True(t, appt.IsConsultation())
	assert.Equal(t, 90*time.Minute, appt.Duration())

	_, err = f.svc.ConfirmBooking(ctx, b.ID())
	assert.ErrorIs(t, err, ErrAppointmentExists)

	updated, err := f.svc.UpdateAppointmentNotes(ctx, appt.ID(), "bring referral letter")
	require.NoError(t, err)
	assert.Equal(t, "bring referral letter", updated.Notes())
	stored, err := f.repo.GetAppointmentByID(ctx, appt.ID())
	require.NoError(t, err)
	assert.Equal(t, "bring referral letter", stored.Notes())

	assert.Equal(t,
		[]string{EventBookingCreated, EventAppointmentCreated, EventNotesUpdated},
		f.repo.eventTypes())
}

func TestService_ConfirmUnknownBooking(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.ConfirmBooking(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookingNotFound)

	_, err = f.svc.UpdateAppointmentNotes(context.Background(), uuid.New(), "x")
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}
