package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and escrow flows.
type BookingMetrics struct {
	appointmentsCreated *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	escrowTransitions   *prometheus.CounterVec
	escrowReleases      *prometheus.CounterVec
	quoteLatency        prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		appointmentsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carevault",
			Subsystem: "appointments",
			Name:      "created_total",
			Help:      "Total appointments created",
		}, []string{"type"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carevault",
			Subsystem: "appointments",
			Name:      "transitions_total",
			Help:      "Total appointment lifecycle transitions attempted",
		}, []string{"action", "outcome"}),
		escrowTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carevault",
			Subsystem: "escrow",
			Name:      "transitions_total",
			Help:      "Total escrow lifecycle transitions attempted",
		}, []string{"action", "outcome"}),
		escrowReleases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "carevault",
			Subsystem: "escrow",
			Name:      "releases_total",
			Help:      "Total fund releases to doctors",
		}, []string{"trigger"}),
		quoteLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "carevault",
			Subsystem: "pricing",
			Name:      "quote_latency_seconds",
			Help:      "Latency of payment quote computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.appointmentsCreated, m.transitionsTotal, m.escrowTransitions, m.escrowReleases, m.quoteLatency)
	return m
}

func (m *BookingMetrics) ObserveAppointmentCreated(appointmentType string) {
	if m == nil {
		return
	}
	m.appointmentsCreated.WithLabelValues(appointmentType).Inc()
}

func (m *BookingMetrics) ObserveTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(action, outcome).Inc()
}

func (m *BookingMetrics) ObserveEscrowTransition(action, outcome string) {
	if m == nil {
		return
	}
	m.escrowTransitions.WithLabelValues(action, outcome).Inc()
}

func (m *BookingMetrics) ObserveRelease(trigger string) {
	if m == nil {
		return
	}
	m.escrowReleases.WithLabelValues(trigger).Inc()
}

func (m *BookingMetrics) ObserveQuoteLatency(seconds float64) {
	if m == nil {
		return
	}
	m.quoteLatency.Observe(seconds)
}
