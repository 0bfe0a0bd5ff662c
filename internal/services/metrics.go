package services

import "github.com/prometheus/client_golang/prometheus"

// Reconciliation outcome label values.
const (
	outcomeScheduled = "scheduled"
	outcomeReset     = "reset"
)

var (
	likesRecorded = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "likes_recorded_total",
		Help: "Total number of likes recorded.",
	})

	matchesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "matches_created_total",
		Help: "Total number of matches created from mutual likes.",
	})

	availabilitySubmissions = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_submissions_total",
		Help: "Total number of accepted availability submissions.",
	})

	// reconciliations is labelled by outcome: scheduled or reset.
	reconciliations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciliations_total",
			Help: "Total number of slot reconciliations by outcome.",
		},
		[]string{"outcome"},
	)
)

func init() {
	prometheus.MustRegister(likesRecorded, matchesCreated, availabilitySubmissions, reconciliations)
}
