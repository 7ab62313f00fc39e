package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/rewards"
	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/services"
)

// ---- stubs to satisfy handlers.New() dependencies ----

type stubSubmitSvc struct {
	submit func(ctx context.Context, userID string, in services.SubmitInput) (services.SubmitResult, error)
	list   func(ctx context.Context, userID string, page, pageSize int) ([]domain.FeedbackItem, int64, error)
}

func (s stubSubmitSvc) Submit(ctx context.Context, userID string, in services.SubmitInput) (services.SubmitResult, error) {
	if s.submit != nil {
		return s.submit(ctx, userID, in)
	}
	return services.SubmitResult{}, nil
}

func (s stubSubmitSvc) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.FeedbackItem, int64, error) {
	if s.list != nil {
		return s.list(ctx, userID, page, pageSize)
	}
	return nil, 0, nil
}

type stubRewardsSvc struct {
	profile   func(ctx context.Context, userID string) (*domain.UserRewardState, error)
	activity  func(ctx context.Context, userID string, page, pageSize int) ([]domain.ActivityRecord, int64, error)
	achieved  func(ctx context.Context, userID string) ([]domain.AchievementAward, error)
	reconcile func(ctx context.Context, userID string) (rewards.ReconcileResult, error)
}

func (s stubRewardsSvc) Profile(ctx context.Context, userID string) (*domain.UserRewardState, error) {
	if s.profile != nil {
		return s.profile(ctx, userID)
	}
	return &domain.UserRewardState{UserID: userID, Level: 1}, nil
}

func (s stubRewardsSvc) ActivityPage(ctx context.Context, userID string, page, pageSize int) ([]domain.ActivityRecord, int64, error) {
	if s.activity != nil {
		return s.activity(ctx, userID, page, pageSize)
	}
	return nil, 0, nil
}

func (s stubRewardsSvc) Achievements(ctx context.Context, userID string) ([]domain.AchievementAward, error) {
	if s.achieved != nil {
		return s.achieved(ctx, userID)
	}
	return nil, nil
}

func (s stubRewardsSvc) Reconcile(ctx context.Context, userID string) (rewards.ReconcileResult, error) {
	if s.reconcile != nil {
		return s.reconcile(ctx, userID)
	}
	return rewards.ReconcileResult{UserID: userID}, nil
}

// ---- tests ----

func TestSubmitFeedbackBindingError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sub := stubSubmitSvc{submit: func(context.Context, string, services.SubmitInput) (services.SubmitResult, error) {
		t.Fatalf("service should not be called on binding error")
		return services.SubmitResult{}, nil
	}}
	h := New(sub, stubRewardsSvc{})

	r := gin.New()
	r.POST("/feedback", h.SubmitFeedback)

	w := httptest.NewRecorder()
	// Missing content → binding error
	req := httptest.NewRequest(http.MethodPost, "/feedback", bytes.NewBufferString(`{"project_id":"p1"}`))
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("binding error expected 400, got %d", w.Code)
	}
	var er ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
		t.Fatalf("json: %v", err)
	}
	if er.Code != ErrCodeBadRequest || er.Message == "" {
		t.Fatalf("unexpected envelope: %+v", er)
	}
}

func TestSubmitFeedbackErrorMappings(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty", services.ErrEmptyContent, http.StatusBadRequest, ErrCodeBadRequest},
		{"too_long", services.ErrContentTooLong, http.StatusBadRequest, ErrCodeBadRequest},
		{"no_project", services.ErrMissingProject, http.StatusBadRequest, ErrCodeBadRequest},
		{"internal", context.DeadlineExceeded, http.StatusInternalServerError, ErrCodeSubmitFailed},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sub := stubSubmitSvc{submit: func(ctx context.Context, userID string, in services.SubmitInput) (services.SubmitResult, error) {
				if userID != "u-123" {
					t.Fatalf("expected userID u-123, got %q", userID)
				}
				return services.SubmitResult{}, tc.err
			}}
			h := New(sub, stubRewardsSvc{})

			r := gin.New()
			r.POST("/feedback", h.SubmitFeedback)

			body := bytes.NewBufferString(`{"project_id":"p1","content":"hello"}`)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/feedback", body)
			req.Header.Set("X-User-ID", "u-123")
			r.ServeHTTP(w, req)

			if w.Code != tc.wantStatus {
				t.Fatalf("status=%d, want %d. body=%s", w.Code, tc.wantStatus, w.Body.String())
			}
			var er ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &er); err != nil {
				t.Fatalf("json: %v", err)
			}
			if er.Code != tc.wantCode {
				t.Fatalf("code=%q, want %q", er.Code, tc.wantCode)
			}
		})
	}
}

func TestSubmitFeedbackSuccess(t *testing.T) {
	gin.SetMode(gin.TestMode)

	metrics := domain.QualityMetrics{Specificity: 0.9, Actionability: 0.7, Novelty: 0.6, Sentiment: 1}
	sub := stubSubmitSvc{submit: func(ctx context.Context, userID string, in services.SubmitInput) (services.SubmitResult, error) {
		if in.ProjectID != "p1" || in.Content != "great and useful" {
			t.Fatalf("input mismatch: %+v", in)
		}
		return services.SubmitResult{
			FeedbackID:    "f-1",
			PointsAwarded: 28,
			Metrics:       &metrics,
		}, nil
	}}
	h := New(sub, stubRewardsSvc{})

	r := gin.New()
	r.POST("/feedback", h.SubmitFeedback)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feedback",
		bytes.NewBufferString(`{"project_id":"p1","content":"great and useful"}`))
	req.Header.Set("X-User-ID", "user-42")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	var resp SubmitFeedbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.FeedbackID != "f-1" || resp.PointsAwarded != 28 || resp.Metrics == nil {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if resp.RewardsPending {
		t.Fatalf("rewards_pending should be false")
	}
}

func TestListFeedbackPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sub := stubSubmitSvc{list: func(ctx context.Context, userID string, page, pageSize int) ([]domain.FeedbackItem, int64, error) {
		if page != 2 || pageSize != 10 {
			t.Fatalf("page=%d pageSize=%d; want 2, 10", page, pageSize)
		}
		return []domain.FeedbackItem{{ID: "f-1", UserID: userID}}, 25, nil
	}}
	h := New(sub, stubRewardsSvc{})

	r := gin.New()
	r.GET("/feedback", h.ListFeedback)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/feedback?page=2&page_size=10", nil)
	req.Header.Set("X-User-ID", "u-1")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp ListFeedbackResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	p := resp.Pagination
	if p.Page != 2 || p.PageSize != 10 || p.Total != 25 || p.TotalPages != 3 || !p.HasNext {
		t.Fatalf("unexpected pagination: %+v", p)
	}
}

func TestUserIDFallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if got := userID(c); got != "demo-user" {
		t.Fatalf("default userID = %q", got)
	}

	c.Request.Header.Set("X-User-ID", " header-user ")
	if got := userID(c); got != "header-user" {
		t.Fatalf("header userID = %q", got)
	}

	c.Set("userID", "ctx-user")
	if got := userID(c); got != "ctx-user" {
		t.Fatalf("context userID = %q", got)
	}
}
