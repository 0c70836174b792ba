package tumble

import (
	"time"

	"github.com/akmonengine/tumble/narrowphase"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	pairLabel = "pair"
)

var (
	stepCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tumble_step_count_total",
		Help: "The total number of simulation steps.",
	})

	stepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "tumble_step_duration_seconds",
		Help:    "The time spent in a simulation step.",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
	})

	contactCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "tumble_contact_count_total",
		Help: "The total number of resolved contacts.",
	}, []string{pairLabel})

	settleCount = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tumble_settle_count_total",
		Help: "The total number of bodies stopped by the resting heuristic.",
	})

	bodyCount = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "tumble_body_count",
		Help: "The number of simulated bodies.",
	})
)

func instrumentStep(duration time.Duration) {
	stepCount.Inc()
	stepDuration.Observe(duration.Seconds())
}

func instrumentContact(kind narrowphase.PairKind) {
	contactCount.
		With(prometheus.Labels{pairLabel: string(kind)}).
		Inc()
}

func instrumentSettle() {
	settleCount.Inc()
}

func instrumentBodyGauge(delta float64) {
	bodyCount.Add(delta)
}
