package metrics

import "github.com/prometheus/client_golang/prometheus"

// Outcome labels for booking attempts.
const (
	OutcomeCreated  = "created"
	OutcomeRejected = "rejected"
	OutcomeBusy     = "busy"
	OutcomeError    = "error"
)

// BookingMetrics exposes counters for booking and appointment flows.
type BookingMetrics struct {
	bookingsTotal     *prometheus.CounterVec
	violationsTotal   *prometheus.CounterVec
	cancellations     *prometheus.CounterVec
	appointmentsTotal prometheus.Counter
	lockWait          prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Booking attempts by outcome",
		}, []string{"appointment_type", "outcome"}),
		violationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "violations_total",
			Help:      "Rule violations reported on rejected bookings",
		}, []string{"code"}),
		cancellations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "cancellations_total",
			Help:      "Cancellation requests by whether a booking was removed",
		}, []string{"removed"}),
		appointmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "appointment",
			Name:      "created_total",
			Help:      "Appointments created from bookings",
		}),
		lockWait: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "critical_section_seconds",
			Help:      "Time spent holding the practitioner lock",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.violationsTotal, m.cancellations, m.appointmentsTotal, m.lockWait)
	return m
}

func (m *BookingMetrics) ObserveBooking(appointmentType, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(appointmentType, outcome).Inc()
}

func (m *BookingMetrics) ObserveViolations(codes []string) {
	if m == nil {
		return
	}
	for _, c := range codes {
		m.violationsTotal.WithLabelValues(c).Inc()
	}
}

func (m *BookingMetrics) ObserveCancellation(removed bool) {
	if m == nil {
		return
	}
	label := "false"
	if removed {
		label = "true"
	}
	m.cancellations.WithLabelValues(label).Inc()
}

func (m *BookingMetrics) ObserveAppointmentCreated() {
	if m == nil {
		return
	}
	m.appointmentsTotal.Inc()
}

func (m *BookingMetrics) ObserveCriticalSection(seconds float64) {
	if m == nil {
		return
	}
	m.lockWait.Observe(seconds)
}
