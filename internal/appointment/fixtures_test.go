package appointment

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/require"
)

// tomorrow relative to testNow, a Wednesday.
var (
	testNow      = time.Date(2026, time.October, 14, 8, 0, 0, 0, time.UTC)
	testToday    = civil.DateOf(testNow)
	testTomorrow = testToday.AddDays(1)
)

func at(hour, minute int) civil.Time {
	return civil.Time{Hour: hour, Minute: minute}
}

func dateTime(d civil.Date, t civil.Time) *civil.DateTime {
	return &civil.DateTime{Date: d, Time: t}
}

func newTestClinic(t *testing.T) *Clinic {
	t.Helper()
	c, err := NewClinic("Test Clinic", "123-456-7890", "testclinic@email.com", DefaultClinicHours(), time.UTC)
	require.NoError(t, err)
	return c
}

func newTestPatient(t *testing.T) *Patient {
	t.Helper()
	p, err := NewPatient("Ada", "Lovelace", "555-123-4567", "ada@example.com")
	require.NoError(t, err)
	return p
}

func newTestPractitioner(t *testing.T) *Practitioner {
	t.Helper()
	p, err := NewPractitioner("Cheria", "Kittle", "555-987-6543", "cheria@clinic.ca")
	require.NoError(t, err)
	return p
}

func newTestSchedule(t *testing.T) *Schedule {
	t.Helper()
	return NewSchedule(newTestPractitioner(t), FixedClock(testNow))
}

// validBookingRequest books a standard slot tomorrow at 10:00.
func validBookingRequest(t *testing.T) BookingRequest {
	t.Helper()
	hours := DefaultClinicHours()
	date := testTomorrow
	start := at(10, 0)
	return BookingRequest{
		Earliest:     dateTime(testToday, at(8, 0)),
		Hours:        &hours,
		Type:         TypeStandard,
		Date:         &date,
		StartTime:    &start,
		Patient:      newTestPatient(t),
		Practitioner: newTestPractitioner(t),
	}
}

func requireViolations(t *testing.T, err error) *ValidationError {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	return verr
}
