// Feedback HTTP handlers.
//
// This file exposes REST endpoints for feedback resources:
//   - POST /feedback  (submit feedback on a project)
//   - GET  /feedback  (list the user's feedback, paginated)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses. Submission always responds with
// the durably stored feedback; reward details are included on a best-effort
// basis and flagged as pending when a reward stage failed.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/rewards"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/services"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/utils"
)

//
// Service contracts (context-aware)
//

// SubmissionService defines feedback submission operations consumed by HTTP
// handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SubmissionService interface {
	// Submit validates, persists, and rewards a feedback submission.
	Submit(ctx context.Context, userID string, in services.SubmitInput) (services.SubmitResult, error)
	// ListPage returns a page of the user's feedback items and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.FeedbackItem, int64, error)
}

// RewardsService defines reward profile reads and reconciliation operations.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RewardsService interface {
	// Profile returns the user's points, level, and progress.
	Profile(ctx context.Context, userID string) (*domain.UserRewardState, error)
	// ActivityPage returns a page of ledger entries and the total count.
	ActivityPage(ctx context.Context, userID string, page, pageSize int) ([]domain.ActivityRecord, int64, error)
	// Achievements returns every achievement the user holds.
	Achievements(ctx context.Context, userID string) ([]domain.AchievementAward, error)
	// Reconcile recomputes the user's total from the ledger and corrects drift.
	Reconcile(ctx context.Context, userID string) (rewards.ReconcileResult, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for feedback and rewards. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	subSvc SubmissionService
	rwSvc  RewardsService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(subSvc SubmissionService, rwSvc RewardsService) *Handlers {
	return &Handlers{subSvc: subSvc, rwSvc: rwSvc}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// SubmitFeedbackRequest is the JSON payload for submitting feedback.
type SubmitFeedbackRequest struct {
	// ProjectID identifies the project the feedback is about.
	ProjectID string `json:"project_id" binding:"required" example:"proj-42"`
	// Content is the feedback text.
	Content string `json:"content" binding:"required" example:"The onboarding flow should surface pricing earlier."`
	// Category optionally classifies the feedback (e.g. usability, pricing).
	Category string `json:"category" example:"usability"`
}

// SubmitFeedbackResponse reports the stored feedback and any rewards granted.
type SubmitFeedbackResponse struct {
	FeedbackID string `json:"feedback_id"`
	// PointsAwarded covers the base and quality awards for this submission.
	PointsAwarded int                       `json:"points_awarded"`
	Metrics       *domain.QualityMetrics    `json:"metrics,omitempty"`
	Achievements  []domain.AchievementAward `json:"achievements,omitempty"`
	// RewardsPending signals that the feedback was stored but some reward
	// processing failed and will be recovered later.
	RewardsPending bool `json:"rewards_pending,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListFeedbackResponse wraps a page of feedback items and pagination info.
type ListFeedbackResponse struct {
	Feedback   []domain.FeedbackItem `json:"feedback"`
	Pagination Pagination            `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

func paginationFor(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

//
// Handlers
//

// SubmitFeedback godoc
// @ID          submitFeedback
// @Summary     Submit feedback on a project
// @Description Stores the feedback, scores its quality, and grants points and achievements best-effort.
// @Tags        Feedback
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       body       body    handlers.SubmitFeedbackRequest  true  "Feedback payload"
//
// @Success     201  {object}  handlers.SubmitFeedbackResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /feedback [post]
func (h *Handlers) SubmitFeedback(c *gin.Context) {
	var req SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project_id and content are required")
		return
	}

	res, err := h.subSvc.Submit(c.Request.Context(), userID(c), services.SubmitInput{
		ProjectID: req.ProjectID,
		Content:   req.Content,
		Category:  strings.TrimSpace(req.Category),
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyContent):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content must not be empty")
		case errors.Is(err, services.ErrContentTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "content exceeds the maximum length")
		case errors.Is(err, services.ErrMissingProject):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "project_id is required")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSubmitFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusCreated, SubmitFeedbackResponse{
		FeedbackID:     res.FeedbackID,
		PointsAwarded:  res.PointsAwarded,
		Metrics:        res.Metrics,
		Achievements:   res.Achievements,
		RewardsPending: res.RewardsPending,
	})
}

// ListFeedback godoc
// @ID          listFeedback
// @Summary     List feedback (paginated)
// @Description Returns a page of the user's submitted feedback, newest first.
// @Tags        Feedback
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListFeedbackResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /feedback [get]
func (h *Handlers) ListFeedback(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.subSvc.ListPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListFeedbackResponse{
		Feedback:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}
