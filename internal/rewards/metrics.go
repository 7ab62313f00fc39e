package rewards

import "github.com/prometheus/client_golang/prometheus"

var (
	// awardsRecorded counts successful ledger writes by the tier that
	// performed them. A rising two_step share means the atomic paths are
	// degraded.
	awardsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_awards_recorded_total",
			Help: "Ledger awards recorded, labeled by write tier.",
		},
		[]string{"tier"},
	)

	// tierFallthroughs counts availability failures that pushed a write to
	// the next tier.
	tierFallthroughs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_tier_fallthrough_total",
			Help: "Ledger write attempts that fell through a tier.",
		},
		[]string{"tier"},
	)

	// duplicateAwards counts idempotent no-ops: retries or races that mapped
	// onto an existing correlation key.
	duplicateAwards = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rewards_duplicate_awards_total",
		Help: "Award calls resolved to an already-recorded correlation key.",
	})

	// driftPending counts two-step writes whose aggregate increment failed,
	// leaving drift for reconciliation.
	driftPending = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rewards_drift_pending_total",
		Help: "Non-atomic writes that left the aggregate behind the ledger.",
	})

	// reconcileDrift observes the absolute drift corrected per reconciliation
	// run. Mostly zeros; any tail is the price of the two_step tier.
	reconcileDrift = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "rewards_reconciliation_drift_abs",
		Help:    "Absolute ledger/aggregate drift corrected per reconciliation.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000},
	})

	// achievementsUnlocked counts newly earned achievements by id.
	achievementsUnlocked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewards_achievements_unlocked_total",
			Help: "Achievement awards created, labeled by achievement id.",
		},
		[]string{"achievement"},
	)
)

func init() {
	prometheus.MustRegister(
		awardsRecorded,
		tierFallthroughs,
		duplicateAwards,
		driftPending,
		reconcileDrift,
		achievementsUnlocked,
	)
}
