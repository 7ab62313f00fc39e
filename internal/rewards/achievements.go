// Achievement catalog and evaluation. The catalog is a fixed, closed set of
// rule variants, each carrying its own predicate and reward metadata; the
// evaluator runs them uniformly, so new achievements are added by appending a
// definition, not by branching control flow.
package rewards

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/scoring"
)

const (
	// championProjects is the distinct-project threshold for Feedback Champion.
	championProjects = 10
	// reviewerWindow and reviewerMean define Quality Reviewer: the mean
	// quality of the most recent reviewerWindow scored items must reach
	// reviewerMean, and fewer scored items than the window cannot fire.
	reviewerWindow = 5
	reviewerMean   = 0.8
)

// AchievementDef is one rule in the catalog: a stable identifier (used in
// correlation keys), display metadata, the points it pays, and the predicate
// over the user's history.
type AchievementDef struct {
	ID          string
	Name        string
	Description string
	Points      int
	Predicate   func(ctx context.Context, db *gorm.DB, userID string) (bool, error)
}

// Catalog returns the fixed achievement set. Identifiers are stable: they
// participate in ledger correlation keys and must never be renamed.
func Catalog() []AchievementDef {
	return []AchievementDef{
		{
			ID:          "first-feedback",
			Name:        "First Steps",
			Description: "Submitted feedback for the first time.",
			Points:      10,
			Predicate: func(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
				n, err := repo.CountFeedbackItems(ctx, db, userID)
				return n >= 1, err
			},
		},
		{
			ID:          "feedback-champion",
			Name:        "Feedback Champion",
			Description: "Gave feedback on ten or more distinct projects.",
			Points:      50,
			Predicate: func(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
				n, err := repo.DistinctProjectCount(ctx, db, userID)
				return n >= championProjects, err
			},
		},
		{
			ID:          "quality-reviewer",
			Name:        "Quality Reviewer",
			Description: "Sustained a mean quality of 0.8 across recent scored feedback.",
			Points:      75,
			Predicate:   qualityReviewerPredicate,
		},
	}
}

// qualityReviewerPredicate averages the quality score of the most recent
// scored items. Fewer than the window's worth of scored items cannot fire.
func qualityReviewerPredicate(ctx context.Context, db *gorm.DB, userID string) (bool, error) {
	items, err := repo.RecentScoredItems(ctx, db, userID, reviewerWindow)
	if err != nil {
		return false, err
	}
	if len(items) < reviewerWindow {
		return false, nil
	}
	var sum float64
	for _, it := range items {
		sum += scoring.QualityScore(it.Metrics())
	}
	return sum/float64(len(items)) >= reviewerMean, nil
}

// Evaluator scans a user's history against the catalog and issues awards for
// newly satisfied rules.
type Evaluator struct {
	DB      *gorm.DB
	Ledger  *Ledger
	Catalog []AchievementDef
}

// NewEvaluator constructs an Evaluator over the default catalog.
func NewEvaluator(db *gorm.DB, ledger *Ledger) *Evaluator {
	return &Evaluator{DB: db, Ledger: ledger, Catalog: Catalog()}
}

// Evaluate returns the achievements userID newly earned during this call.
// At most one award ever exists per (user, achievement): the unique awards
// row and the ledger correlation key keep concurrent evaluations honest.
//
// A crash between the award insert and the ledger credit is self-healing:
// the next Evaluate sees the award row, and the orphaned credit is retried
// under the same correlation key.
func (e *Evaluator) Evaluate(ctx context.Context, userID string) ([]domain.AchievementAward, error) {
	var earned []domain.AchievementAward

	for _, def := range e.Catalog {
		ok, err := def.Predicate(ctx, e.DB, userID)
		if err != nil {
			return earned, fmt.Errorf("achievement %s predicate: %w", def.ID, err)
		}
		if !ok {
			continue
		}

		held, err := repo.HasAchievementAward(ctx, e.DB, userID, def.ID)
		if err != nil {
			return earned, err
		}
		if held {
			// Already earned; the ledger credit may still be missing after a
			// partial failure, and RecordAward is a no-op when it is not.
			if _, err := e.credit(ctx, userID, def); err != nil {
				log.Warn().Err(err).Str("achievement", def.ID).Msg("achievement credit retry failed")
			}
			continue
		}

		award, err := repo.CreateAchievementAward(ctx, e.DB, userID, def.ID)
		if errors.Is(err, repo.ErrDuplicate) {
			continue // lost a race with a concurrent evaluation
		}
		if err != nil {
			return earned, err
		}

		achievementsUnlocked.WithLabelValues(def.ID).Inc()
		if _, err := e.credit(ctx, userID, def); err != nil {
			// Absorbed: the award row exists, and the credit is recovered by
			// the next evaluation or by reconciliation.
			log.Warn().Err(err).Str("achievement", def.ID).Msg("achievement credit failed")
		}
		earned = append(earned, *award)
	}

	return earned, nil
}

func (e *Evaluator) credit(ctx context.Context, userID string, def AchievementDef) (*domain.ActivityRecord, error) {
	return e.Ledger.RecordAward(ctx, userID, ActivityAchievement, def.Points,
		AchievementKey(userID, def.ID), def.Name)
}
