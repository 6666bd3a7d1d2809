package appointment

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
)

type AppointmentType string

const (
	TypeConsultation AppointmentType = "consultation"
	TypeStandard     AppointmentType = "standard"
	TypeCheckIn      AppointmentType = "check_in"
)

type appointmentSpec struct {
	duration     time.Duration
	consultation bool
}

var catalog = map[AppointmentType]appointmentSpec{
	TypeConsultation: {duration: 90 * time.Minute, consultation: true},
	TypeStandard:     {duration: 60 * time.Minute},
	TypeCheckIn:      {duration: 30 * time.Minute},
}

// AppointmentTypes returns the catalog in a stable order.
func AppointmentTypes() []AppointmentType {
	return []AppointmentType{TypeConsultation, TypeStandard, TypeCheckIn}
}

// ParseAppointmentType accepts the catalog names case-insensitively.
func ParseAppointmentType(s string) (AppointmentType, error) {
	t := AppointmentType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("appointment type %q: %w", s, ErrUnknownAppointmentType)
	}
	return t, nil
}

func (t AppointmentType) Valid() bool {
	_, ok := catalog[t]
	return ok
}

// Duration is zero for types outside the catalog.
func (t AppointmentType) Duration() time.Duration {
	return catalog[t].duration
}

func (t AppointmentType) IsConsultation() bool {
	return catalog[t].consultation
}

type Clinic struct {
	id          uuid.UUID
	name        string
	phoneNumber string
	email       string
	hours       ClinicHours
	location    *time.Location
}

func (c *Clinic) ID() uuid.UUID { return c.id }
func (c *Clinic) Name() string { return c.name }
func (c *Clinic) PhoneNumber() string { return c.phoneNumber }
func (c *Clinic) Email() string { return c.email }
func (c *Clinic) Hours() ClinicHours { return c.hours }
func (c *Clinic) Location() *time.Location { return c.location }

// Now is the clinic's local wall-clock reading of clock.
func (c *Clinic) Now(clock Clock) civil.DateTime {
	return civil.DateTimeOf(clock.Now().In(c.location))
}

type Patient struct {
	id          uuid.UUID
	firstName   string
	lastName    string
	phoneNumber string
	email       string
}

func (p *Patient) ID() uuid.UUID { return p.id }
func (p *Patient) FirstName() string { return p.firstName }
func (p *Patient) LastName() string { return p.lastName }
func (p *Patient) PhoneNumber() string { return p.phoneNumber }
func (p *Patient) Email() string { return p.email }

type Practitioner struct {
	id          uuid.UUID
	firstName   string
	lastName    string
	phoneNumber string
	email       string
}

func (p *Practitioner) ID() uuid.UUID { return p.id }
func (p *Practitioner) FirstName() string { return p.firstName }
func (p *Practitioner) LastName() string { return p.lastName }
func (p *Practitioner) PhoneNumber() string { return p.phoneNumber }
func (p *Practitioner) Email() string { return p.email }

// Booking is a reserved slot ahead of the encounter. Immutable once created.
type Booking struct {
	id           uuid.UUID
	kind         AppointmentType
	date         civil.Date
	startTime    civil.Time
	patient      *Patient
	practitioner *Practitioner
}

func (b Booking) ID() uuid.UUID { return b.id }
func (b Booking) Type() AppointmentType { return b.kind }
func (b Booking) Date() civil.Date { return b.date }
func (b Booking) StartTime() civil.Time { return b.startTime }
func (b Booking) Patient() *Patient { return b.patient }
func (b Booking) Practitioner() *Practitioner { return b.practitioner }
func (b Booking) EndTime() civil.Time { return addToTime(b.startTime, b.kind.Duration()) }
func (b Booking) Interval() Interval { return Interval{Start: b.startTime, End: b.EndTime()} }

// Appointment is the realized encounter for an accepted booking. Notes is the
// only field that changes after creation.
type Appointment struct {
	id           uuid.UUID
	bookingID    uuid.UUID
	kind         AppointmentType
	date         civil.Date
	startTime    civil.Time
	patient      *Patient
	practitioner *Practitioner
	notes        string
}

func (a *Appointment) ID() uuid.UUID { return a.id }
func (a *Appointment) BookingID() uuid.UUID { return a.bookingID }
func (a *Appointment) Type() AppointmentType { return a.kind }
func (a *Appointment) Date() civil.Date { return a.date }
func (a *Appointment) StartTime() civil.Time { return a.startTime }
func (a *Appointment) EndTime() civil.Time { return addToTime(a.startTime, a.kind.Duration()) }
func (a *Appointment) Patient() *Patient { return a.patient }
func (a *Appointment) Practitioner() *Practitioner { return a.practitioner }
func (a *Appointment) Duration() time.Duration { return a.kind.Duration() }
func (a *Appointment) IsConsultation() bool { return a.kind.IsConsultation() }
func (a *Appointment) Notes() string { return a.notes }

func (a *Appointment) SetNotes(notes string) {
	a.notes = notes
}

type EventLog struct {
	ID        int64
	EventType string
	SubjectID *uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}
