package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors.
type Metrics struct {
	ParseTotal        *prometheus.CounterVec
	ParseDuration     prometheus.Histogram
	ScheduledTotal    prometheus.Gauge
	ScheduleMutations *prometheus.CounterVec
	SubmissionsTotal  *prometheus.CounterVec
	ErrorsCount       *prometheus.CounterVec
}

// NewMetrics registers collectors on reg. A nil reg uses the default registerer.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		ParseTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_total",
			Help:      "Reservation text blocks parsed, by outcome",
		}, []string{"outcome"}),
		ParseDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Time taken to parse a reservation text block",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 2, 12),
		}),
		ScheduledTotal: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scheduled_reservations",
			Help:      "Reservations currently on the schedule",
		}),
		ScheduleMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_mutations_total",
			Help:      "Schedule inserts and removals",
		}, []string{"op"}),
		SubmissionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "submissions_total",
			Help:      "Reservations handed to the submission API, by outcome",
		}, []string{"outcome"}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}
