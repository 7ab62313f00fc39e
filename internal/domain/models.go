// Package domain defines the persistence models for feedback items, the
// reward ledger, per-user reward aggregates, and achievement awards. These
// types are mapped with GORM and form the core data layer of the rewards
// engine.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// FeedbackItem represents one piece of submitted free-text feedback. The row
// is created once on submission and is immutable afterwards, except for the
// derived quality score fields attached after analysis.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - ProjectID: identifier of the project the feedback targets.
//   - UserID: identifier of the feedback author.
//   - Content: full free-text content of the feedback.
//   - Category: optional submitter-chosen category label.
//   - Specificity / Actionability / Novelty / Sentiment: derived quality
//     scores, nil until analysis has run. Scored is set once they are written.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type FeedbackItem struct {
	ID        string `json:"id"         gorm:"type:char(36);primaryKey"`
	ProjectID string `json:"project_id" gorm:"type:varchar(64);not null;index:idx_user_projects,priority:2"`
	UserID    string `json:"user_id"    gorm:"type:varchar(64);not null;index:idx_user_projects,priority:1"`
	Content   string `json:"content"    gorm:"type:text;not null"`
	Category  string `json:"category"   gorm:"type:varchar(64)"`

	// Derived quality scores. Never persisted independently of the item
	// they describe; Scored marks items whose scores are present and valid.
	Scored        bool     `json:"scored" gorm:"not null;default:false;index"`
	Specificity   *float64 `json:"specificity,omitempty"`
	Actionability *float64 `json:"actionability,omitempty"`
	Novelty       *float64 `json:"novelty,omitempty"`
	Sentiment     *float64 `json:"sentiment,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-"          gorm:"index"`
}

// TableName returns the database table name for FeedbackItem.
func (FeedbackItem) TableName() string { return "feedback_items" }

// Metrics returns the item's quality scores as a QualityMetrics value.
// Missing (unscored) fields read as zero; callers should gate on Scored.
func (f *FeedbackItem) Metrics() QualityMetrics {
	var m QualityMetrics
	if f.Specificity != nil {
		m.Specificity = *f.Specificity
	}
	if f.Actionability != nil {
		m.Actionability = *f.Actionability
	}
	if f.Novelty != nil {
		m.Novelty = *f.Novelty
	}
	if f.Sentiment != nil {
		m.Sentiment = *f.Sentiment
	}
	return m
}

// QualityMetrics holds the four derived quality scores for a piece of
// feedback. Specificity, actionability, and novelty are in [0,1]; sentiment
// is in [-1,1]. The type is a plain value: it is only ever persisted as
// columns on the FeedbackItem it describes.
type QualityMetrics struct {
	Specificity   float64 `json:"specificity"`
	Actionability float64 `json:"actionability"`
	Novelty       float64 `json:"novelty"`
	Sentiment     float64 `json:"sentiment"`
}

// ActivityRecord is one append-only reward ledger entry. The ledger is the
// source of truth for a user's points; the UserRewardState total is a derived
// value reconciled against it.
//
// CorrelationKey is unique per logical award event (for example
// "feedback:<feedbackID>:base" or "achievement:<userID>:<achievementID>") and
// is the idempotency boundary: retries of the same logical event map onto the
// same row.
type ActivityRecord struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	UserID         string    `json:"user_id"         gorm:"type:varchar(64);not null;index:idx_user_activity,priority:1"`
	ActivityType   string    `json:"activity_type"   gorm:"type:varchar(50);not null"`
	Points         int       `json:"points"          gorm:"not null"`
	CorrelationKey string    `json:"correlation_key" gorm:"type:varchar(191);not null;uniqueIndex:ux_activity_correlation"`
	Metadata       string    `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"      gorm:"index:idx_user_activity,priority:2"`
}

// TableName returns the database table name for ActivityRecord.
func (ActivityRecord) TableName() string { return "activity_records" }

// UserRewardState is the per-user running total of ledger points along with
// the level derived from it. Invariant: Points equals the sum of the user's
// ActivityRecord points; after a partial failure on the non-atomic write path
// it may transiently diverge until reconciliation corrects it.
//
// Only the reward ledger and the reconciliation job mutate this row.
type UserRewardState struct {
	UserID            string    `json:"user_id"              gorm:"type:varchar(64);primaryKey"`
	Points            int       `json:"points"               gorm:"not null;default:0"`
	Level             int       `json:"level"                gorm:"not null;default:1"`
	PointsToNextLevel int       `json:"points_to_next_level" gorm:"not null;default:100"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for UserRewardState.
func (UserRewardState) TableName() string { return "user_reward_states" }

// AchievementAward records that a user earned a specific achievement. The
// (user_id, achievement_id) pair is unique: once created, an award is never
// duplicated or removed.
type AchievementAward struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);not null;uniqueIndex:ux_award_user_achievement,priority:1"`
	AchievementID string    `json:"achievement_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_award_user_achievement,priority:2"`
	EarnedAt      time.Time `json:"earned_at"`
}

// TableName returns the database table name for AchievementAward.
func (AchievementAward) TableName() string { return "achievement_awards" }
