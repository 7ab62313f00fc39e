// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// AchievementAward model.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

// CreateAchievementAward records that userID earned achievementID. The
// (user_id, achievement_id) pair is unique; a second insert for the same pair
// returns ErrDuplicate and leaves the original row untouched.
func CreateAchievementAward(ctx context.Context, db *gorm.DB, userID, achievementID string) (*domain.AchievementAward, error) {
	award := &domain.AchievementAward{
		ID:            uuid.NewString(),
		UserID:        userID,
		AchievementID: achievementID,
		EarnedAt:      time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(award).Error; err != nil {
		if IsUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return award, nil
}

// HasAchievementAward reports whether userID already holds achievementID.
func HasAchievementAward(ctx context.Context, db *gorm.DB, userID, achievementID string) (bool, error) {
	var award domain.AchievementAward
	err := db.WithContext(ctx).
		Where("user_id = ? AND achievement_id = ?", userID, achievementID).
		First(&award).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListAchievementAwards returns the user's earned achievements, oldest first.
func ListAchievementAwards(ctx context.Context, db *gorm.DB, userID string) ([]domain.AchievementAward, error) {
	var out []domain.AchievementAward
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at asc").
		Find(&out).Error
	return out, err
}
