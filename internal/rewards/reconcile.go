// Ledger/aggregate reconciliation. The ledger is the source of truth; the
// UserRewardState total is a cache of it that can lag after a partial failure
// on the non-atomic write tier. Reconciliation recomputes the true sum and
// overwrites the aggregate, reporting the drift rather than hiding it.
package rewards

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
)

// ReconcileResult reports one user's reconciliation outcome. Drift is the
// signed correction applied (corrected − previous); zero means the aggregate
// already matched the ledger.
type ReconcileResult struct {
	UserID         string `json:"user_id"`
	PreviousTotal  int    `json:"previous_total"`
	CorrectedTotal int    `json:"corrected_total"`
	Drift          int    `json:"drift"`
}

// SweepResult summarizes a ReconcileRecent run.
type SweepResult struct {
	Users     int `json:"users"`
	Corrected int `json:"corrected"`
}

// Reconciler recomputes running totals from the ledger and corrects drift.
// Safe to run repeatedly: recomputation from the same ledger always yields
// the same result.
type Reconciler struct {
	DB *gorm.DB
}

// NewReconciler constructs a Reconciler.
func NewReconciler(db *gorm.DB) *Reconciler {
	return &Reconciler{DB: db}
}

// Reconcile recomputes the ledger sum for userID and overwrites the
// aggregate when it differs. Drift is a routine, loggable correction event,
// not an error.
func (r *Reconciler) Reconcile(ctx context.Context, userID string) (ReconcileResult, error) {
	state, err := repo.GetRewardState(ctx, r.DB, userID)
	if err != nil {
		return ReconcileResult{}, err
	}

	truth, err := repo.SumActivityPoints(ctx, r.DB, userID)
	if err != nil {
		return ReconcileResult{}, err
	}

	res := ReconcileResult{
		UserID:         userID,
		PreviousTotal:  state.Points,
		CorrectedTotal: truth,
		Drift:          truth - state.Points,
	}

	if res.Drift != 0 {
		if _, err := repo.PutRewardState(ctx, r.DB, userID, truth); err != nil {
			return ReconcileResult{}, err
		}
		log.Warn().
			Str("user_id", userID).
			Int("previous_total", res.PreviousTotal).
			Int("corrected_total", res.CorrectedTotal).
			Int("drift", res.Drift).
			Msg("reconciled reward aggregate drift")
	}

	reconcileDrift.Observe(abs(res.Drift))
	return res, nil
}

// ReconcileRecent reconciles every user with ledger activity inside the
// window. Per-user failures are logged and skipped so one bad row cannot
// stall the sweep.
func (r *Reconciler) ReconcileRecent(ctx context.Context, window time.Duration) (SweepResult, error) {
	cutoff := time.Now().UTC().Add(-window)
	ids, err := repo.ActiveUserIDsSince(ctx, r.DB, cutoff)
	if err != nil {
		return SweepResult{}, err
	}

	var sweep SweepResult
	for _, id := range ids {
		res, err := r.Reconcile(ctx, id)
		if err != nil {
			log.Error().Err(err).Str("user_id", id).Msg("reconciliation sweep: user skipped")
			continue
		}
		sweep.Users++
		if res.Drift != 0 {
			sweep.Corrected++
		}
	}
	return sweep, nil
}

func abs(n int) float64 {
	if n < 0 {
		return float64(-n)
	}
	return float64(n)
}
