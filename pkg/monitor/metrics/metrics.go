package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "change_monitor"

	// JobName is the Pushgateway job of all pushed metrics.
	JobName = "change_monitor"
)

// Outcomes of a monitor run.
const (
	OutcomeUnchanged = "unchanged"
	OutcomeChanged   = "changed"
	OutcomeError     = "error"
)

var (
	// Registry contains all change monitor metrics.
	Registry = prometheus.NewRegistry()

	// RunsTotal counts finished runs by outcome.
	RunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Total number of monitor runs by outcome.",
		},
		[]string{"monitor", "outcome"},
	)

	// ChangesTotal counts detected value changes.
	ChangesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Total number of detected value changes.",
		},
		[]string{"monitor"},
	)

	// ErrorsTotal counts errors by kind.
	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by kind.",
		},
		[]string{"monitor", "kind"},
	)

	// FetchDuration observes the duration of content fetches.
	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of content fetches in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"monitor"},
	)

	// LastRunTimestamp is the unix time of the last finished run.
	LastRunTimestamp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last finished run.",
		},
		[]string{"monitor"},
	)
)

func init() {
	Registry.MustRegister(
		RunsTotal,
		ChangesTotal,
		ErrorsTotal,
		FetchDuration,
		LastRunTimestamp,
	)
}

// Push pushes all metrics of Registry to the Pushgateway at url, grouped by
// monitor name as instance. Metrics of previous pushes of the same group are
// replaced.
func Push(url, monitor string) error {
	return push.New(url, JobName).
		Gatherer(Registry).
		Grouping("instance", monitor).
		Push()
}
