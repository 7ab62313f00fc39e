// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// FeedbackItem model.
//
// The repository follows a "thin" approach: it performs persistence and simple
// query composition, leaving business rules to the services package.
//
// Error semantics:
//   - When an item is not found, functions return ErrNotFound.
//   - On other DB errors (connectivity, constraints, etc.), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

// CreateFeedbackItem inserts a new feedback row authored by userID against
// projectID. The item ID is a randomly generated UUID, and CreatedAt is set
// to UTC. Quality score fields are left unset; they are attached later by
// AttachScores once analysis has run.
func CreateFeedbackItem(ctx context.Context, db *gorm.DB, userID, projectID, content, category string) (*domain.FeedbackItem, error) {
	item := &domain.FeedbackItem{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		UserID:    userID,
		Content:   content,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// GetFeedbackItem fetches a single item by ID scoped to userID, or
// ErrNotFound if missing.
func GetFeedbackItem(ctx context.Context, db *gorm.DB, id, userID string) (*domain.FeedbackItem, error) {
	var item domain.FeedbackItem
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// AttachScores writes the derived quality scores onto an existing item and
// marks it as scored. The content itself is immutable; only the derived
// fields are touched.
func AttachScores(ctx context.Context, db *gorm.DB, id string, m domain.QualityMetrics) error {
	res := db.WithContext(ctx).
		Model(&domain.FeedbackItem{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"scored":        true,
			"specificity":   m.Specificity,
			"actionability": m.Actionability,
			"novelty":       m.Novelty,
			"sentiment":     m.Sentiment,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountFeedbackItems returns the total number of items authored by userID.
func CountFeedbackItems(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.FeedbackItem{}).
		Where("user_id = ?", userID).
		Count(&n).Error
	return n, err
}

// ListFeedbackPage returns a page of the user's items, newest first.
func ListFeedbackPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.FeedbackItem, error) {
	var out []domain.FeedbackItem
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// DistinctProjectCount returns how many distinct projects the user has
// submitted feedback on. Used by the achievement evaluator; deliberately
// counts projects, not submissions.
func DistinctProjectCount(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.FeedbackItem{}).
		Where("user_id = ?", userID).
		Distinct("project_id").
		Count(&n).Error
	return n, err
}

// RecentScoredItems returns up to limit of the user's most recently created
// items that carry valid quality scores, newest first.
func RecentScoredItems(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.FeedbackItem, error) {
	var out []domain.FeedbackItem
	err := db.WithContext(ctx).
		Where("user_id = ? AND scored = ?", userID, true).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
