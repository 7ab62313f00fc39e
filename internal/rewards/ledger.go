// Package rewards implements the reward ledger, achievement evaluation, and
// ledger/aggregate reconciliation. The ledger appends ActivityRecords and
// keeps the per-user running total in step under an idempotency contract:
// each logical award event carries a correlation key, and retries of the same
// event never credit twice.
//
// Writes go through an ordered chain of tiers. The preferred tiers update the
// ledger and the aggregate atomically; the last tier is a non-atomic two-step
// path whose partial failures are an accepted risk repaired by the
// reconciliation job. Only availability failures fall through the chain;
// validation failures abort it.
package rewards

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
)

// Activity types recorded in the ledger.
const (
	ActivitySubmission  = "feedback_submission"
	ActivityQuality     = "quality_bonus"
	ActivityAchievement = "achievement"
)

// Correlation key builders. One logical award event maps to exactly one key.
func FeedbackBaseKey(feedbackID string) string    { return "feedback:" + feedbackID + ":base" }
func FeedbackQualityKey(feedbackID string) string { return "feedback:" + feedbackID + ":quality" }
func AchievementKey(userID, achievementID string) string {
	return "achievement:" + userID + ":" + achievementID
}

// ErrInvalidAward reports a malformed award request (empty user, activity
// type, or correlation key). It aborts the tier chain immediately.
var ErrInvalidAward = errors.New("invalid award request")

// ErrPersistence reports that every tier of the write chain failed. The
// submission pipeline treats it as non-fatal: the feedback item is already
// durable, and the missing credit is recovered by a later retry or by
// reconciliation.
var ErrPersistence = errors.New("all ledger write tiers failed")

// Tier is one strategy in the ledger's ordered write chain. Record persists
// the row (and, for atomic tiers, the aggregate increment) or returns an
// error; repo.ErrDuplicate signals a correlation-key collision.
type Tier interface {
	Name() string
	Record(ctx context.Context, db *gorm.DB, rec *domain.ActivityRecord) error
}

// txTier is the preferred path: ledger insert and aggregate increment in one
// database transaction.
type txTier struct{}

func (txTier) Name() string { return "atomic_tx" }

func (txTier) Record(ctx context.Context, db *gorm.DB, rec *domain.ActivityRecord) error {
	return repo.InsertActivityAndIncrement(ctx, db, rec)
}

// legacyTier has the same atomicity guarantee through the older raw-SQL
// calling convention. It exists for stores where the model-based path is
// unavailable.
type legacyTier struct{}

func (legacyTier) Name() string { return "atomic_legacy" }

func (legacyTier) Record(ctx context.Context, db *gorm.DB, rec *domain.ActivityRecord) error {
	return repo.ExecLegacyAward(ctx, db, rec.ID, rec.UserID, rec.ActivityType, rec.Points,
		rec.CorrelationKey, rec.Metadata, rec.CreatedAt)
}

// twoStepTier is the last resort: raw insert followed by a separate aggregate
// increment. Not transactionally safe; a crash between the steps leaves the
// aggregate behind the ledger until reconciliation corrects it.
type twoStepTier struct{}

func (twoStepTier) Name() string { return "two_step" }

func (twoStepTier) Record(ctx context.Context, db *gorm.DB, rec *domain.ActivityRecord) error {
	if err := repo.InsertActivityRecord(ctx, db, rec); err != nil {
		return err
	}
	if err := repo.IncrementRewardState(ctx, db, rec.UserID, rec.Points); err != nil {
		// The ledger row is durable; the aggregate now lags it. Reconciliation
		// will close the gap, so the award itself is reported as recorded.
		log.Warn().Err(err).
			Str("user_id", rec.UserID).
			Str("correlation_key", rec.CorrelationKey).
			Msg("aggregate increment failed after ledger insert; drift until reconciliation")
		driftPending.Inc()
	}
	return nil
}

// Ledger records awards through the tier chain. Construct with NewLedger;
// the zero value has no tiers and rejects every award.
type Ledger struct {
	DB    *gorm.DB
	Tiers []Tier
}

// NewLedger returns a Ledger with the full default tier chain.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{
		DB:    db,
		Tiers: []Tier{txTier{}, legacyTier{}, twoStepTier{}},
	}
}

// RecordAward appends an award to the ledger and credits the user's running
// total, idempotently: if a record with the same correlation key already
// exists (from an earlier call or a concurrent race), the existing record is
// returned and nothing is credited again.
//
// Tier semantics: tiers are attempted in order; an availability failure falls
// through to the next tier, a validation failure aborts, and exhaustion of
// the chain returns ErrPersistence.
func (l *Ledger) RecordAward(ctx context.Context, userID, activityType string, points int, correlationKey, metadata string) (*domain.ActivityRecord, error) {
	if strings.TrimSpace(userID) == "" ||
		strings.TrimSpace(activityType) == "" ||
		strings.TrimSpace(correlationKey) == "" {
		return nil, ErrInvalidAward
	}

	// Fast path: the event was already recorded.
	if existing, err := repo.GetActivityByKey(ctx, l.DB, correlationKey); err == nil {
		duplicateAwards.Inc()
		return existing, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec := repo.NewActivityRecord(userID, activityType, points, correlationKey, metadata)

	var lastErr error = ErrPersistence
	for _, tier := range l.Tiers {
		err := tier.Record(ctx, l.DB, rec)
		switch {
		case err == nil:
			awardsRecorded.WithLabelValues(tier.Name()).Inc()
			return rec, nil

		case errors.Is(err, repo.ErrDuplicate):
			// Lost a race with a concurrent retry of the same event. The
			// winner's record is authoritative.
			duplicateAwards.Inc()
			return repo.GetActivityByKey(ctx, l.DB, correlationKey)

		case !isAvailability(err):
			// Validation failed; later tiers would reject the same payload.
			return nil, fmt.Errorf("ledger tier %s rejected award: %w", tier.Name(), err)

		default:
			tierFallthroughs.WithLabelValues(tier.Name()).Inc()
			log.Warn().Err(err).
				Str("tier", tier.Name()).
				Str("correlation_key", correlationKey).
				Msg("ledger tier unavailable, falling through")
			lastErr = err
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrPersistence, lastErr)
}

// isAvailability classifies tier failures. Constraint violations mean the
// payload itself is unacceptable and later tiers would fail identically;
// anything else (connectivity, timeouts, closed handles, locked store) is an
// availability problem worth falling through for.
func isAvailability(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	low := strings.ToLower(err.Error())
	return !strings.Contains(low, "constraint")
}
