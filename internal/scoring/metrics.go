package scoring

import "github.com/prometheus/client_golang/prometheus"

var (
	// remoteScores counts analyses served by the external dependency.
	remoteScores = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoring_remote_total",
		Help: "Analyses scored by the external dependency.",
	})

	// fallbackScores counts analyses that fell back to the local heuristic
	// after a remote error or timeout.
	fallbackScores = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scoring_fallback_total",
		Help: "Analyses that fell back to the deterministic local heuristic.",
	})
)

func init() {
	prometheus.MustRegister(remoteScores, fallbackScores)
}
