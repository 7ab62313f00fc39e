// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// UserRewardState aggregate.
//
// The aggregate is a derived value: the ledger (activity_records) is the
// source of truth. Mutations are restricted to an in-store increment (used by
// the ledger write paths) and a full overwrite (used by reconciliation).
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

// GetRewardState returns the user's aggregate row. A missing row is not an
// error: users who have never been credited read as the zero state.
func GetRewardState(ctx context.Context, db *gorm.DB, userID string) (*domain.UserRewardState, error) {
	var s domain.UserRewardState
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = domain.UserRewardState{UserID: userID}
		s.ApplyPoints(0)
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// IncrementRewardState adds delta to the user's running total in the store
// (no read-modify-write in application code) and refreshes the derived level
// fields. The row is created on first use.
func IncrementRewardState(ctx context.Context, db *gorm.DB, userID string, delta int) error {
	return incrementState(db.WithContext(ctx), userID, delta)
}

// PutRewardState overwrites the aggregate with an authoritative total, used
// by the reconciliation job after recomputing the ledger sum.
func PutRewardState(ctx context.Context, db *gorm.DB, userID string, points int) (*domain.UserRewardState, error) {
	s := domain.UserRewardState{UserID: userID, UpdatedAt: time.Now().UTC()}
	s.ApplyPoints(points)
	err := db.WithContext(ctx).Save(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// incrementState performs the in-store upsert + increment. The level fields
// are recomputed from the stored total in the same statement pair, so callers
// running inside a transaction get an atomic aggregate update.
func incrementState(tx *gorm.DB, userID string, delta int) error {
	now := time.Now().UTC()
	if err := tx.Exec(
		`INSERT INTO user_reward_states (user_id, points, level, points_to_next_level, updated_at)
		 VALUES (?, ?, 1, 100, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
		   points = user_reward_states.points + excluded.points,
		   updated_at = excluded.updated_at`,
		userID, delta, now,
	).Error; err != nil {
		return err
	}
	return tx.Exec(
		`UPDATE user_reward_states
		 SET level = points/100 + 1,
		     points_to_next_level = (points/100 + 1)*100 - points
		 WHERE user_id = ?`,
		userID,
	).Error
}
