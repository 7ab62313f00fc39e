// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the append-only
// reward ledger (ActivityRecord) and the persistence primitives the ledger's
// tiered write paths are built on.
//
// Two write primitives are exposed:
//
//   - InsertActivityAndIncrement: insert + aggregate increment in one
//     database transaction (the atomic "insert-and-increment" primitive).
//   - InsertActivityRecord: plain insert, used together with
//     IncrementRewardState (reward_state_repo.go) by the non-atomic path.
//
// Error semantics:
//   - A duplicate correlation key maps to ErrDuplicate.
//   - Other DB errors are propagated raw; the rewards layer classifies them.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

// NewActivityRecord builds an unsaved ledger row with a fresh UUID and a UTC
// creation timestamp.
func NewActivityRecord(userID, activityType string, points int, correlationKey, metadata string) *domain.ActivityRecord {
	return &domain.ActivityRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		ActivityType:   activityType,
		Points:         points,
		CorrelationKey: correlationKey,
		Metadata:       metadata,
		CreatedAt:      time.Now().UTC(),
	}
}

// GetActivityByKey returns the ledger row with the given correlation key, or
// ErrNotFound.
func GetActivityByKey(ctx context.Context, db *gorm.DB, correlationKey string) (*domain.ActivityRecord, error) {
	var rec domain.ActivityRecord
	err := db.WithContext(ctx).
		Where("correlation_key = ?", correlationKey).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// InsertActivityRecord appends a single ledger row without touching the
// aggregate. Returns ErrDuplicate when the correlation key already exists.
func InsertActivityRecord(ctx context.Context, db *gorm.DB, rec *domain.ActivityRecord) error {
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// InsertActivityAndIncrement appends a ledger row and increments the user's
// aggregate total in one transaction. A duplicate correlation key rolls the
// whole transaction back and returns ErrDuplicate, so the aggregate is never
// incremented twice for the same logical event.
func InsertActivityAndIncrement(ctx context.Context, db *gorm.DB, rec *domain.ActivityRecord) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		return incrementState(tx, rec.UserID, rec.Points)
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// ExecLegacyAward is the older calling convention for the atomic award write:
// positional raw-SQL statements instead of ORM models, equivalent semantics.
// Kept for stores where the model-based path is unavailable; the rewards
// layer uses it as the second tier of its fallback chain.
func ExecLegacyAward(ctx context.Context, db *gorm.DB, id, userID, activityType string, points int, correlationKey, metadata string, createdAt time.Time) error {
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO activity_records (id, user_id, activity_type, points, correlation_key, metadata, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, userID, activityType, points, correlationKey, metadata, createdAt,
		).Error; err != nil {
			return err
		}
		return incrementState(tx, userID, points)
	})
	if err != nil {
		if IsUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SumActivityPoints recomputes the ledger's true total for a user. This is
// the reconciliation source of truth.
func SumActivityPoints(ctx context.Context, db *gorm.DB, userID string) (int, error) {
	var row struct {
		Total int
	}
	err := db.WithContext(ctx).
		Model(&domain.ActivityRecord{}).
		Select("COALESCE(SUM(points), 0) AS total").
		Where("user_id = ?", userID).
		Scan(&row).Error
	return row.Total, err
}

// CountActivity returns the total number of ledger rows for a user.
func CountActivity(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.ActivityRecord{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

// ListActivityPage returns a page of the user's ledger rows, newest first.
func ListActivityPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.ActivityRecord, error) {
	var out []domain.ActivityRecord
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ActiveUserIDsSince returns the distinct users with ledger activity at or
// after the cutoff. Used by the periodic reconciliation sweep.
func ActiveUserIDsSince(ctx context.Context, db *gorm.DB, cutoff time.Time) ([]string, error) {
	var ids []string
	err := db.WithContext(ctx).
		Model(&domain.ActivityRecord{}).
		Where("created_at >= ?", cutoff).
		Distinct().
		Pluck("user_id", &ids).Error
	return ids, err
}
