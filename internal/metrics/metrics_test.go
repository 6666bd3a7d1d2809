package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetricsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewBookingMetrics(reg)

	m.ObserveBooking("standard", OutcomeCreated)
	m.ObserveBooking("standard", OutcomeCreated)
	m.ObserveBooking("check_in", OutcomeRejected)
	m.ObserveViolations([]string{"date_in_past", "outside_business_hours", "outside_business_hours"})
	m.ObserveCancellation(true)
	m.ObserveAppointmentCreated()
	m.ObserveCriticalSection(0.01)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("standard", OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.bookingsTotal.WithLabelValues("check_in", OutcomeRejected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.violationsTotal.WithLabelValues("outside_business_hours")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cancellations.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appointmentsTotal))
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveBooking("standard", OutcomeBusy)
	m.ObserveViolations([]string{"date_null"})
	m.ObserveCancellation(false)
	m.ObserveAppointmentCreated()
	m.ObserveCriticalSection(0.1)
}
