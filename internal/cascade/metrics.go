package cascade

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics holds Prometheus metrics for the answer cascade.
type Metrics struct {
	// AnswersTotal counts resolved questions labeled by the tier that
	// answered them.
	AnswersTotal *prometheus.CounterVec

	// TierErrorsTotal counts tier failures that caused a fall-through.
	TierErrorsTotal *prometheus.CounterVec

	// AnswerDuration observes end-to-end cascade latency.
	AnswerDuration prometheus.Histogram
}

// NewMetrics creates and registers the cascade metrics.
//
// sync.Once guards registration so constructing multiple cascades does not
// panic with a duplicate-collector error.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			AnswersTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "answerd_cascade_answers_total",
					Help: "Total questions answered, labeled by resolving tier",
				},
				[]string{"tier"},
			),
			TierErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "answerd_cascade_tier_errors_total",
					Help: "Total tier errors that fell through to the next tier",
				},
				[]string{"tier"},
			),
			AnswerDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "answerd_cascade_answer_duration_seconds",
					Help:    "End-to-end answer resolution latency in seconds",
					Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
				},
			),
		}
	})
	return globalMetrics
}
