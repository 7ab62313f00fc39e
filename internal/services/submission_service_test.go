package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/rewards"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/scoring"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&domain.FeedbackItem{},
		&domain.ActivityRecord{},
		&domain.UserRewardState{},
		&domain.AchievementAward{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newService(db *gorm.DB) *SubmissionService {
	ledger := rewards.NewLedger(db)
	return &SubmissionService{
		DB:              db,
		Analyzer:        &scoring.Analyzer{},
		Ledger:          ledger,
		Evaluator:       rewards.NewEvaluator(db, ledger),
		MaxContentRunes: 5000,
		PipelineBudget:  5 * time.Second,
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := newService(newTestDB(t))
	ctx := context.Background()

	cases := []struct {
		name string
		in   SubmitInput
		want error
	}{
		{"empty content", SubmitInput{ProjectID: "p1", Content: "   "}, ErrEmptyContent},
		{"too long", SubmitInput{ProjectID: "p1", Content: strings.Repeat("a", 5001)}, ErrContentTooLong},
		{"missing project", SubmitInput{Content: "useful feedback"}, ErrMissingProject},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Submit(ctx, "u1", tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("Submit() error = %v, want %v", err, tc.want)
			}
		})
	}

	var n int64
	svc.DB.Model(&domain.FeedbackItem{}).Count(&n)
	if n != 0 {
		t.Fatalf("rejected submissions persisted %d items", n)
	}
}

func TestSubmitPersistsScoresAndCredits(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	ctx := context.Background()

	// 150 words, positive tone, one repeated word: the heuristic lands on
	// 0.9/0.7/0.6/1.0 and the quality bonus is 18.
	content := strings.TrimSpace(strings.Repeat("item ", 145)) + " should should good great helpful"

	res, err := svc.Submit(ctx, "u1", SubmitInput{ProjectID: "p1", Content: content, Category: "usability"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.RewardsPending {
		t.Fatal("RewardsPending set on a healthy pipeline")
	}
	if res.PointsAwarded != scoring.BasePoints+18 {
		t.Fatalf("PointsAwarded = %d, want %d", res.PointsAwarded, scoring.BasePoints+18)
	}
	if res.Metrics == nil || res.Metrics.Specificity != 0.9 {
		t.Fatalf("unexpected metrics %+v", res.Metrics)
	}

	item, err := repo.GetFeedbackItem(ctx, db, res.FeedbackID, "u1")
	if err != nil {
		t.Fatalf("GetFeedbackItem: %v", err)
	}
	if !item.Scored || item.Specificity == nil {
		t.Fatalf("scores not attached: %+v", item)
	}

	// first-feedback achievement fires on the first submission.
	found := false
	for _, a := range res.Achievements {
		if a.AchievementID == "first-feedback" {
			found = true
		}
	}
	if !found {
		t.Fatalf("first-feedback not earned; got %+v", res.Achievements)
	}

	state, err := repo.GetRewardState(ctx, db, "u1")
	if err != nil {
		t.Fatalf("GetRewardState: %v", err)
	}
	sum, err := repo.SumActivityPoints(ctx, db, "u1")
	if err != nil {
		t.Fatalf("SumActivityPoints: %v", err)
	}
	if state.Points != sum {
		t.Fatalf("state %d disagrees with ledger sum %d", state.Points, sum)
	}
}

func TestSubmitLowQualitySkipsBonus(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)

	// A short vague note scores below the quality floor: base points only.
	res, err := svc.Submit(context.Background(), "u1", SubmitInput{ProjectID: "p1", Content: "nice"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.PointsAwarded != scoring.BasePoints {
		t.Fatalf("PointsAwarded = %d, want base only %d", res.PointsAwarded, scoring.BasePoints)
	}

	var bonuses int64
	db.Model(&domain.ActivityRecord{}).
		Where("activity_type = ?", rewards.ActivityQuality).
		Count(&bonuses)
	if bonuses != 0 {
		t.Fatalf("unexpected quality bonus rows: %d", bonuses)
	}
}

// cancelingScorer simulates the client disconnecting while the reward
// pipeline is mid-flight: it cancels the request context during analysis.
type cancelingScorer struct{ cancel context.CancelFunc }

func (s cancelingScorer) Score(context.Context, string) (domain.QualityMetrics, error) {
	s.cancel()
	return domain.QualityMetrics{}, errors.New("remote down")
}

func TestSubmitSurvivesCallerCancellation(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.Analyzer = &scoring.Analyzer{Scorer: cancelingScorer{cancel: cancel}}

	res, err := svc.Submit(ctx, "u1", SubmitInput{ProjectID: "p1", Content: "solid detailed feedback"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.RewardsPending {
		t.Fatal("RewardsPending set; stages after cancellation should still run")
	}

	// Everything after the cancellation still completed.
	item, err := repo.GetFeedbackItem(context.Background(), db, res.FeedbackID, "u1")
	if err != nil {
		t.Fatalf("GetFeedbackItem: %v", err)
	}
	if !item.Scored {
		t.Fatal("scores not attached after caller cancellation")
	}
	sum, err := repo.SumActivityPoints(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("SumActivityPoints: %v", err)
	}
	if sum < scoring.BasePoints {
		t.Fatalf("ledger sum %d; reward pipeline did not run detached", sum)
	}
}

type downTier struct{}

func (downTier) Name() string { return "down" }
func (downTier) Record(context.Context, *gorm.DB, *domain.ActivityRecord) error {
	return errors.New("store unavailable")
}

func TestSubmitRewardFailureIsPending(t *testing.T) {
	db := newTestDB(t)
	svc := newService(db)
	svc.Ledger = &rewards.Ledger{DB: db, Tiers: []rewards.Tier{downTier{}}}
	svc.Evaluator = rewards.NewEvaluator(db, svc.Ledger)

	res, err := svc.Submit(context.Background(), "u1", SubmitInput{ProjectID: "p1", Content: "detailed and useful feedback"})
	if err != nil {
		t.Fatalf("Submit must not fail on reward errors: %v", err)
	}
	if !res.RewardsPending {
		t.Fatal("RewardsPending not set after ledger failure")
	}
	if res.PointsAwarded != 0 {
		t.Fatalf("PointsAwarded = %d with a dead ledger", res.PointsAwarded)
	}

	// The feedback item itself is still durably stored and scored.
	if _, err := repo.GetFeedbackItem(context.Background(), db, res.FeedbackID, "u1"); err != nil {
		t.Fatalf("item missing after reward failure: %v", err)
	}
}
