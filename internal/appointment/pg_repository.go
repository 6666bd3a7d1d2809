package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
)

const uniqueViolation = "23505"

// querier is the part of *pgxpool.Pool the repository uses.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type PgRepository struct {
	db querier
}

func NewPgRepository(db querier) *PgRepository {
	return &PgRepository{db: db}
}

// Helpers

func toPgDate(d civil.Date) pgtype.Date {
	return pgtype.Date{Time: d.In(time.UTC), Valid: true}
}

func fromPgDate(d pgtype.Date) civil.Date {
	return civil.DateOf(d.Time)
}

func toPgTime(t civil.Time) pgtype.Time {
	return pgtype.Time{Microseconds: int64(sinceMidnight(t) / time.Microsecond), Valid: true}
}

func fromPgTime(t pgtype.Time) civil.Time {
	return timeAt(time.Duration(t.Microseconds) * time.Microsecond)
}

type personRow struct {
	id          uuid.UUID
	firstName   string
	lastName    string
	phoneNumber string
	email       string
}

func (p *personRow) dest() []any {
	return []any{&p.id, &p.firstName, &p.lastName, &p.phoneNumber, &p.email}
}

func (p personRow) patient() (*Patient, error) {
	return RestorePatient(p.id, p.firstName, p.lastName, p.phoneNumber, p.email)
}

func (p personRow) practitioner() (*Practitioner, error) {
	return RestorePractitioner(p.id, p.firstName, p.lastName, p.phoneNumber, p.email)
}

type slotRow struct {
	id        uuid.UUID
	kind      string
	date      pgtype.Date
	startTime pgtype.Time
}

func (s *slotRow) dest() []any {
	return []any{&s.id, &s.kind, &s.date, &s.startTime}
}

func (s slotRow) booking(patient *Patient, practitioner *Practitioner) (*Booking, error) {
	return RestoreBooking(s.id, AppointmentType(s.kind), fromPgDate(s.date), fromPgTime(s.startTime), patient, practitioner)
}

func scanClinic(row pgx.Row) (*Clinic, error) {
	var (
		id              uuid.UUID
		name, phone     string
		email, timezone string
		opening         pgtype.Time
		closing         pgtype.Time
		intervalMinutes int32
	)

	err := row.Scan(&id, &name, &phone, &email, &opening, &closing, &intervalMinutes, &timezone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrClinicNotFound
		}
		return nil, err
	}

	hours, err := NewClinicHours(fromPgTime(opening), fromPgTime(closing), time.Duration(intervalMinutes)*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("clinic %s hours: %w", id, err)
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("clinic %s timezone: %w", id, err)
	}
	return RestoreClinic(id, name, phone, email, hours, loc)
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p personRow
	if err := row.Scan(p.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}
	return p.patient()
}

func scanPractitioner(row pgx.Row) (*Practitioner, error) {
	var p personRow
	if err := row.Scan(p.dest()...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPractitionerNotFound
		}
		return nil, err
	}
	return p.practitioner()
}

// scanFullBooking reads a slot followed by its patient and practitioner.
func scanFullBooking(row pgx.Row, notFound error) (slotRow, *Patient, *Practitioner, error) {
	var (
		s         slotRow
		pat, prac personRow
	)
	dest := append(append(s.dest(), pat.dest()...), prac.dest()...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return slotRow{}, nil, nil, notFound
		}
		return slotRow{}, nil, nil, err
	}
	patient, err := pat.patient()
	if err != nil {
		return slotRow{}, nil, nil, err
	}
	practitioner, err := prac.practitioner()
	if err != nil {
		return slotRow{}, nil, nil, err
	}
	return s, patient, practitioner, nil
}

// Interface methods

func (r *PgRepository) GetClinicByID(ctx context.Context, id uuid.UUID) (*Clinic, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, name, phone_number, email, opening_time, closing_time, booking_interval_minutes, timezone
		FROM clinics
		WHERE id = $1
	`, id)
	return scanClinic(row)
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone_number, email
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) GetPractitionerByID(ctx context.Context, id uuid.UUID) (*Practitioner, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, first_name, last_name, phone_number, email
		FROM practitioners
		WHERE id = $1
	`, id)
	return scanPractitioner(row)
}

func (r *PgRepository) ListBookings(ctx context.Context, practitioner *Practitioner, date civil.Date) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `
		SELECT b.id, b.appointment_type, b.booking_date, b.start_time,
		       p.id, p.first_name, p.last_name, p.phone_number, p.email
		FROM bookings b
		JOIN patients p ON p.id = b.patient_id
		WHERE b.practitioner_id = $1
		  AND b.booking_date = $2
		ORDER BY b.start_time
	`, practitioner.ID(), toPgDate(date))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Booking
	for rows.Next() {
		var (
			s   slotRow
			pat personRow
		)
		if err := rows.Scan(append(s.dest(), pat.dest()...)...); err != nil {
			return nil, err
		}
		patient, err := pat.patient()
		if err != nil {
			return nil, err
		}
		b, err := s.booking(patient, practitioner)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetBookingByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	row := r.db.QueryRow(ctx, `
		SELECT b.id, b.appointment_type, b.booking_date, b.start_time,
		       p.id, p.first_name, p.last_name, p.phone_number, p.email,
		       pr.id, pr.first_name, pr.last_name, pr.phone_number, pr.email
		FROM bookings b
		JOIN patients p ON p.id = b.patient_id
		JOIN practitioners pr ON pr.id = b.practitioner_id
		WHERE b.id = $1
	`, id)

	s, patient, practitioner, err := scanFullBooking(row, ErrBookingNotFound)
	if err != nil {
		return nil, err
	}
	return s.booking(patient, practitioner)
}

func (r *PgRepository) InsertBooking(ctx context.Context, b Booking) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO bookings (id, practitioner_id, patient_id, appointment_type, booking_date, start_time, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
	`, b.ID(), b.Practitioner().ID(), b.Patient().ID(), string(b.Type()), toPgDate(b.Date()), toPgTime(b.StartTime()))
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *PgRepository) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	var bookingID uuid.UUID
	var notes string

	row := r.db.QueryRow(ctx, `
		SELECT a.id, a.appointment_type, a.appointment_date, a.start_time,
		       p.id, p.first_name, p.last_name, p.phone_number, p.email,
		       pr.id, pr.first_name, pr.last_name, pr.phone_number, pr.email,
		       a.booking_id, a.notes
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN practitioners pr ON pr.id = a.practitioner_id
		WHERE a.id = $1
	`, id)

	s, patient, practitioner, err := scanFullBooking(trailing{row, []any{&bookingID, &notes}}, ErrAppointmentNotFound)
	if err != nil {
		return nil, err
	}
	return RestoreAppointment(s.id, bookingID, AppointmentType(s.kind), fromPgDate(s.date), fromPgTime(s.startTime), patient, practitioner, notes)
}

// trailing appends extra scan targets after the ones the caller passes.
type trailing struct {
	row   pgx.Row
	extra []any
}

func (t trailing) Scan(dest ...any) error {
	return t.row.Scan(append(dest, t.extra...)...)
}

func (r *PgRepository) InsertAppointment(ctx context.Context, a *Appointment) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO appointments (id, booking_id, practitioner_id, patient_id, appointment_type, appointment_date, start_time, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now(), now())
	`, a.ID(), a.BookingID(), a.Practitioner().ID(), a.Patient().ID(), string(a.Type()), toPgDate(a.Date()), toPgTime(a.StartTime()), a.Notes())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrAppointmentExists
		}
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (r *PgRepository) UpdateAppointmentNotes(ctx context.Context, id uuid.UUID, notes string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE appointments
		SET notes = $2,
		    updated_at = now()
		WHERE id = $1
	`, id, notes)
	if err != nil {
		return fmt.Errorf("update appointment notes: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, subject_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.SubjectID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

// Seeding

func (r *PgRepository) InsertClinic(ctx context.Context, c *Clinic) error {
	h := c.Hours()
	_, err := r.db.Exec(ctx, `
		INSERT INTO clinics (id, name, phone_number, email, opening_time, closing_time, booking_interval_minutes, timezone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
	`, c.ID(), c.Name(), c.PhoneNumber(), c.Email(), toPgTime(h.Opening()), toPgTime(h.Closing()), int32(h.Interval()/time.Minute), c.Location().String())
	if err != nil {
		return fmt.Errorf("insert clinic: %w", err)
	}
	return nil
}

func (r *PgRepository) InsertPatient(ctx context.Context, p *Patient) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO patients (id, first_name, last_name, phone_number, email, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, p.ID(), p.FirstName(), p.LastName(), p.PhoneNumber(), p.Email())
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *PgRepository) InsertPractitioner(ctx context.Context, p *Practitioner) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO practitioners (id, first_name, last_name, phone_number, email, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`, p.ID(), p.FirstName(), p.LastName(), p.PhoneNumber(), p.Email())
	if err != nil {
		return fmt.Errorf("insert practitioner: %w", err)
	}
	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
