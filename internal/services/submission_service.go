// Package services – SubmissionService
//
// This file implements the feedback submission pipeline: validate the
// submission, persist the FeedbackItem durably, then run the best-effort
// reward stages (quality analysis, base and bonus crediting, achievement
// evaluation).
//
// Durable persistence of the feedback item is the single source of truth for
// the submission's overall success. Everything after it is deliberately
// availability-over-consistency: reward failures are absorbed, logged, and
// recovered later by retries and reconciliation, never surfaced as a failed
// submission. Reward processing is also decoupled from caller cancellation —
// a client disconnecting mid-request must not strand a half-credited item.
//
// Observability: Submit is OpenTelemetry-instrumented; spans carry user and
// feedback identifiers.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/repo"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/rewards"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/scoring"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// SubmitInput is the validated payload of one feedback submission.
type SubmitInput struct {
	ProjectID string
	Content   string
	Category  string
}

// SubmitResult reports the outcome of a submission. PointsAwarded covers the
// base and quality awards for this item; achievement points are carried on
// the returned awards. RewardsPending is set when the feedback was accepted
// but some reward stage failed and is left to recovery.
type SubmitResult struct {
	FeedbackID     string
	PointsAwarded  int
	Metrics        *domain.QualityMetrics
	Achievements   []domain.AchievementAward
	RewardsPending bool
}

// SubmissionService coordinates feedback persistence and reward processing.
type SubmissionService struct {
	DB        *gorm.DB
	Analyzer  *scoring.Analyzer
	Ledger    *rewards.Ledger
	Evaluator *rewards.Evaluator

	// MaxContentRunes caps submissions by rune length. Zero disables the cap.
	MaxContentRunes int
	// PipelineBudget bounds the post-persist reward stages. Zero means the
	// stages inherit no deadline.
	PipelineBudget time.Duration
}

// Submit validates and persists a feedback item, then runs the reward
// pipeline. A validation or persistence failure of the item itself is the
// only way Submit fails; reward-stage failures degrade to RewardsPending.
func (s *SubmissionService) Submit(ctx context.Context, userID string, in SubmitInput) (SubmitResult, error) {
	tr := otel.Tracer("services/SubmissionService")
	ctx, span := tr.Start(ctx, "Submit",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("project.id", in.ProjectID),
		),
	)
	defer span.End()

	// Normalize & validate
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return SubmitResult{}, ErrEmptyContent
	}
	if s.MaxContentRunes > 0 && utf8.RuneCountInString(content) > s.MaxContentRunes {
		return SubmitResult{}, ErrContentTooLong
	}
	if strings.TrimSpace(in.ProjectID) == "" {
		return SubmitResult{}, ErrMissingProject
	}

	// Durable persistence of the item gates everything that follows.
	item, err := repo.CreateFeedbackItem(ctx, s.DB, userID, in.ProjectID, content, in.Category)
	if err != nil {
		return SubmitResult{}, err
	}
	span.SetAttributes(attribute.String("feedback.id", item.ID))

	// Reward processing proceeds even if the caller disconnects: detach from
	// the request's cancellation and give the stages their own budget.
	rctx := context.WithoutCancel(ctx)
	if s.PipelineBudget > 0 {
		var cancel context.CancelFunc
		rctx, cancel = context.WithTimeout(rctx, s.PipelineBudget)
		defer cancel()
	}

	res := SubmitResult{FeedbackID: item.ID}
	s.processRewards(rctx, item, &res)
	return res, nil
}

// ListPage returns one page of the user's feedback items, newest first,
// along with the total item count.
func (s *SubmissionService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.FeedbackItem, int64, error) {
	total, err := repo.CountFeedbackItems(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	items, err := repo.ListFeedbackPage(ctx, s.DB, userID, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// processRewards runs the best-effort stages. Each stage failure is logged
// and absorbed; the stages that did succeed stand.
func (s *SubmissionService) processRewards(ctx context.Context, item *domain.FeedbackItem, res *SubmitResult) {
	lg := log.With().Str("feedback_id", item.ID).Str("user_id", item.UserID).Logger()

	// 1) Quality analysis never fails; attaching the scores can.
	metrics := s.Analyzer.Analyze(ctx, item.Content)
	res.Metrics = &metrics
	if err := repo.AttachScores(ctx, s.DB, item.ID, metrics); err != nil {
		lg.Warn().Err(err).Msg("could not attach quality scores")
		res.RewardsPending = true
	}

	meta := fmt.Sprintf(`{"feedback_id":%q,"project_id":%q}`, item.ID, item.ProjectID)

	// 2) Base submission award.
	if rec, err := s.Ledger.RecordAward(ctx, item.UserID, rewards.ActivitySubmission,
		scoring.BasePoints, rewards.FeedbackBaseKey(item.ID), meta); err != nil {
		lg.Warn().Err(err).Msg("base award failed; left to reconciliation")
		res.RewardsPending = true
	} else {
		res.PointsAwarded += rec.Points
	}

	// 3) Quality bonus, only when the metrics earn one.
	if bonus := scoring.QualityPoints(metrics); bonus > 0 {
		if rec, err := s.Ledger.RecordAward(ctx, item.UserID, rewards.ActivityQuality,
			bonus, rewards.FeedbackQualityKey(item.ID), meta); err != nil {
			lg.Warn().Err(err).Msg("quality bonus failed; left to reconciliation")
			res.RewardsPending = true
		} else {
			res.PointsAwarded += rec.Points
		}
	}

	// 4) Achievements over the accumulated history.
	earned, err := s.Evaluator.Evaluate(ctx, item.UserID)
	if err != nil {
		lg.Warn().Err(err).Msg("achievement evaluation incomplete")
		res.RewardsPending = true
	}
	res.Achievements = earned
}
