package rewards

import (
	"context"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
)

func seedFeedback(t *testing.T, db *gorm.DB, userID, projectID string, metrics *domain.QualityMetrics) *domain.FeedbackItem {
	t.Helper()
	item, err := repo.CreateFeedbackItem(context.Background(), db, userID, projectID, "seed content", "")
	if err != nil {
		t.Fatalf("seed feedback: %v", err)
	}
	if metrics != nil {
		if err := repo.AttachScores(context.Background(), db, item.ID, *metrics); err != nil {
			t.Fatalf("seed scores: %v", err)
		}
	}
	return item
}

func earnedIDs(awards []domain.AchievementAward) map[string]bool {
	out := make(map[string]bool, len(awards))
	for _, a := range awards {
		out[a.AchievementID] = true
	}
	return out
}

func TestEvaluate_FirstFeedback(t *testing.T) {
	db := newTestDB(t)
	ev := NewEvaluator(db, NewLedger(db))
	ctx := context.Background()

	// No feedback yet: nothing fires.
	awards, err := ev.Evaluate(ctx, "u1")
	if err != nil || len(awards) != 0 {
		t.Fatalf("Evaluate on empty history = %v, %v", awards, err)
	}

	seedFeedback(t, db, "u1", "p1", nil)
	awards, err = ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !earnedIDs(awards)["first-feedback"] {
		t.Fatalf("first-feedback not earned: %v", awards)
	}

	// Credit landed in the ledger under the achievement correlation key.
	rec, err := repo.GetActivityByKey(ctx, db, AchievementKey("u1", "first-feedback"))
	if err != nil {
		t.Fatalf("ledger credit missing: %v", err)
	}
	if rec.Points != 10 || rec.ActivityType != ActivityAchievement {
		t.Fatalf("credit = %+v", rec)
	}
}

func TestEvaluate_FeedbackChampion_ExactlyOnce(t *testing.T) {
	db := newTestDB(t)
	ev := NewEvaluator(db, NewLedger(db))
	ctx := context.Background()

	// 9 distinct projects: not yet.
	for i := 0; i < 9; i++ {
		seedFeedback(t, db, "u1", fmt.Sprintf("p%d", i), nil)
	}
	awards, err := ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if earnedIDs(awards)["feedback-champion"] {
		t.Fatalf("champion fired at 9 distinct projects")
	}

	// The 10th distinct project unlocks it.
	seedFeedback(t, db, "u1", "p9", nil)
	awards, err = ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !earnedIDs(awards)["feedback-champion"] {
		t.Fatalf("champion not earned at 10 distinct projects: %v", awards)
	}

	// An 11th distinct project must not re-award.
	seedFeedback(t, db, "u1", "p10", nil)
	awards, err = ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if earnedIDs(awards)["feedback-champion"] {
		t.Fatalf("champion re-awarded")
	}

	list, _ := repo.ListAchievementAwards(ctx, db, "u1")
	champions := 0
	for _, a := range list {
		if a.AchievementID == "feedback-champion" {
			champions++
		}
	}
	if champions != 1 {
		t.Fatalf("champion awards = %d, want 1", champions)
	}
}

func TestEvaluate_QualityReviewer(t *testing.T) {
	db := newTestDB(t)
	ev := NewEvaluator(db, NewLedger(db))
	ctx := context.Background()

	high := domain.QualityMetrics{Specificity: 0.9, Actionability: 0.85, Novelty: 0.8}

	// Four scored items: the rule cannot fire yet.
	for i := 0; i < 4; i++ {
		seedFeedback(t, db, "u1", fmt.Sprintf("p%d", i), &high)
	}
	awards, err := ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if earnedIDs(awards)["quality-reviewer"] {
		t.Fatalf("reviewer fired below the scored-item window")
	}

	// Fifth high-quality scored item crosses the bar.
	seedFeedback(t, db, "u1", "p4", &high)
	awards, err = ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !earnedIDs(awards)["quality-reviewer"] {
		t.Fatalf("reviewer not earned: %v", awards)
	}
}

func TestEvaluate_QualityReviewer_MeanBelowBar(t *testing.T) {
	db := newTestDB(t)
	ev := NewEvaluator(db, NewLedger(db))
	ctx := context.Background()

	low := domain.QualityMetrics{Specificity: 0.6, Actionability: 0.6, Novelty: 0.6}
	for i := 0; i < 6; i++ {
		seedFeedback(t, db, "u1", fmt.Sprintf("p%d", i), &low)
	}
	awards, err := ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if earnedIDs(awards)["quality-reviewer"] {
		t.Fatalf("reviewer fired with mean quality 0.6")
	}
}

func TestEvaluate_SelfHealsMissingCredit(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ev := NewEvaluator(db, ledger)
	ctx := context.Background()

	// Simulate a crash after the award row landed but before the credit:
	// the award exists with no matching ledger entry.
	seedFeedback(t, db, "u1", "p1", nil)
	if _, err := repo.CreateAchievementAward(ctx, db, "u1", "first-feedback"); err != nil {
		t.Fatalf("seed award: %v", err)
	}

	awards, err := ev.Evaluate(ctx, "u1")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if earnedIDs(awards)["first-feedback"] {
		t.Fatalf("already-held achievement reported as newly earned")
	}

	// The orphaned credit was issued under the stable correlation key.
	rec, err := repo.GetActivityByKey(ctx, db, AchievementKey("u1", "first-feedback"))
	if err != nil {
		t.Fatalf("credit not healed: %v", err)
	}
	if rec.Points != 10 {
		t.Fatalf("healed credit = %+v", rec)
	}
}
