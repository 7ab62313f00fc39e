package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/rewards"
)

// RewardsService exposes read access to a user's reward profile and the
// on-demand reconciliation entry point.
//
// Reads go straight to the repository layer; there is no business logic to
// apply on the way out. Reconcile delegates to the rewards.Reconciler so the
// HTTP trigger and the scheduled sweep share one implementation.
type RewardsService struct {
	DB         *gorm.DB
	Reconciler *rewards.Reconciler
}

// NewRewardsService constructs a RewardsService over db.
func NewRewardsService(db *gorm.DB) *RewardsService {
	return &RewardsService{DB: db, Reconciler: rewards.NewReconciler(db)}
}

// Profile returns the user's running totals. Users with no reward history get
// a zero-valued profile, not an error.
func (s *RewardsService) Profile(ctx context.Context, userID string) (*domain.UserRewardState, error) {
	return repo.GetRewardState(ctx, s.DB, userID)
}

// ActivityPage returns one page of the user's ledger history, newest first,
// along with the total record count.
func (s *RewardsService) ActivityPage(ctx context.Context, userID string, page, pageSize int) ([]domain.ActivityRecord, int64, error) {
	total, err := repo.CountActivity(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListActivityPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Achievements returns every achievement the user holds.
func (s *RewardsService) Achievements(ctx context.Context, userID string) ([]domain.AchievementAward, error) {
	return repo.ListAchievementAwards(ctx, s.DB, userID)
}

// Reconcile recomputes the user's total from the ledger and corrects any
// drift, returning what changed.
func (s *RewardsService) Reconcile(ctx context.Context, userID string) (rewards.ReconcileResult, error) {
	return s.Reconciler.Reconcile(ctx, userID)
}
