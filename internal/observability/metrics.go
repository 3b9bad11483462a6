package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics records engine counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	turnsTotal          *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	collaboratorFailure *prometheus.CounterVec
	ratingsTotal        *prometheus.CounterVec
	turnDuration        prometheus.Histogram
}

// NewMetrics registers the metrics on reg; pass prometheus.NewRegistry() in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		turnsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taborra_turns_total",
				Help: "Inbound turns processed, by router path",
			},
			[]string{"route"},
		),
		transitionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taborra_troubleshooting_transitions_total",
				Help: "Troubleshooting step transitions",
			},
			[]string{"from", "to"},
		),
		collaboratorFailure: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taborra_collaborator_failures_total",
				Help: "Failed calls to external collaborators that were degraded to a fallback",
			},
			[]string{"collaborator"},
		),
		ratingsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "taborra_ratings_total",
				Help: "Solution ratings received",
			},
			[]string{"rating"},
		),
		turnDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "taborra_turn_duration_seconds",
				Help:    "Time to process one inbound turn",
				Buckets: prometheus.DefBuckets,
			},
		),
	}
}

func (m *Metrics) ObserveTurn(route string, d time.Duration) {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(route).Inc()
	m.turnDuration.Observe(d.Seconds())
}

func (m *Metrics) IncTransition(from, to string) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(from, to).Inc()
}

func (m *Metrics) IncCollaboratorFailure(collaborator string) {
	if m == nil {
		return
	}
	m.collaboratorFailure.WithLabelValues(collaborator).Inc()
}

func (m *Metrics) IncRating(rating int) {
	if m == nil {
		return
	}
	m.ratingsTotal.WithLabelValues(strconv.Itoa(rating)).Inc()
}
