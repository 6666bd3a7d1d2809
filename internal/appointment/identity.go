package appointment

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hackgods/clinic-scheduling/internal/contact"
)

var (
	ErrFieldNullOrBlank       = errors.New("field is null or blank")
	ErrInvalidFormat          = errors.New("field has an invalid format")
	ErrIDNull                 = errors.New("id is null")
	ErrUnknownAppointmentType = errors.New("unknown appointment type")
)

type contactFields struct {
	entity string
	phone  string
	email  string
}

func (c contactFields) validate() error {
	if strings.TrimSpace(c.phone) == "" {
		return fmt.Errorf("%s phone number: %w", c.entity, ErrFieldNullOrBlank)
	}
	if !contact.IsValidPhoneNumber(c.phone) {
		return fmt.Errorf("%s phone number must be in the form ###-###-####: %w", c.entity, ErrInvalidFormat)
	}
	if strings.TrimSpace(c.email) == "" {
		return fmt.Errorf("%s email: %w", c.entity, ErrFieldNullOrBlank)
	}
	if !contact.IsValidEmail(c.email) {
		return fmt.Errorf("%s email: %w", c.entity, ErrInvalidFormat)
	}
	return nil
}

func requireName(entity, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s %s: %w", entity, field, ErrFieldNullOrBlank)
	}
	return nil
}

func requireID(entity string, id uuid.UUID) error {
	if id == uuid.Nil {
		return fmt.Errorf("%s: %w", entity, ErrIDNull)
	}
	return nil
}

// NewClinic validates the clinic fields and assigns a fresh id. A nil location
// means UTC.
func NewClinic(name, phoneNumber, email string, hours ClinicHours, loc *time.Location) (*Clinic, error) {
	return RestoreClinic(uuid.New(), name, phoneNumber, email, hours, loc)
}

// RestoreClinic rebuilds a stored clinic under its existing id.
func RestoreClinic(id uuid.UUID, name, phoneNumber, email string, hours ClinicHours, loc *time.Location) (*Clinic, error) {
	if err := requireID("clinic", id); err != nil {
		return nil, err
	}
	if err := requireName("clinic", "name", name); err != nil {
		return nil, err
	}
	if err := (contactFields{entity: "clinic", phone: phoneNumber, email: email}).validate(); err != nil {
		return nil, err
	}
	if hours.IsZero() {
		return nil, fmt.Errorf("clinic hours: %w", ErrFieldNullOrBlank)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Clinic{
		id:          id,
		name:        name,
		phoneNumber: phoneNumber,
		email:       email,
		hours:       hours,
		location:    loc,
	}, nil
}

func NewPatient(firstName, lastName, phoneNumber, email string) (*Patient, error) {
	return RestorePatient(uuid.New(), firstName, lastName, phoneNumber, email)
}

// RestorePatient is used by repositories creating a patient from a datastore.
func RestorePatient(id uuid.UUID, firstName, lastName, phoneNumber, email string) (*Patient, error) {
	if err := validatePerson("patient", id, firstName, lastName, phoneNumber, email); err != nil {
		return nil, err
	}
	return &Patient{
		id:          id,
		firstName:   firstName,
		lastName:    lastName,
		phoneNumber: phoneNumber,
		email:       email,
	}, nil
}

func NewPractitioner(firstName, lastName, phoneNumber, email string) (*Practitioner, error) {
	return RestorePractitioner(uuid.New(), firstName, lastName, phoneNumber, email)
}

// RestorePractitioner is used by repositories creating a practitioner from a datastore.
func RestorePractitioner(id uuid.UUID, firstName, lastName, phoneNumber, email string) (*Practitioner, error) {
	if err := validatePerson("practitioner", id, firstName, lastName, phoneNumber, email); err != nil {
		return nil, err
	}
	return &Practitioner{
		id:          id,
		firstName:   firstName,
		lastName:    lastName,
		phoneNumber: phoneNumber,
		email:       email,
	}, nil
}

func validatePerson(entity string, id uuid.UUID, firstName, lastName, phoneNumber, email string) error {
	if err := requireID(entity, id); err != nil {
		return err
	}
	if err := requireName(entity, "first name", firstName); err != nil {
		return err
	}
	if err := requireName(entity, "last name", lastName); err != nil {
		return err
	}
	return contactFields{entity: entity, phone: phoneNumber, email: email}.validate()
}
