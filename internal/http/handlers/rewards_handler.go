// Rewards HTTP handlers.
//
// This file exposes REST endpoints for reward resources:
//   - GET  /rewards               (points, level, progress)
//   - GET  /rewards/activity      (ledger history, paginated)
//   - GET  /rewards/achievements  (earned achievements)
//   - POST /rewards/reconcile     (recompute the total from the ledger)
//
// All reads are served from the aggregate and ledger tables as-is; the
// reconcile endpoint is the manual trigger for the same correction the
// scheduled sweep performs.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/FedericoTs/FeedbackforFounders-sub000/internal/domain"
)

// ListActivityResponse wraps a page of ledger entries and pagination info.
type ListActivityResponse struct {
	Activity   []domain.ActivityRecord `json:"activity"`
	Pagination Pagination              `json:"pagination"`
}

// ListAchievementsResponse wraps the user's earned achievements.
type ListAchievementsResponse struct {
	Achievements []domain.AchievementAward `json:"achievements"`
}

// GetRewards godoc
// @ID          getRewards
// @Summary     Get reward profile
// @Description Returns the user's total points, level, and points to the next level.
// @Tags        Rewards
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} domain.UserRewardState
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rewards [get]
func (h *Handlers) GetRewards(c *gin.Context) {
	state, err := h.rwSvc.Profile(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, state)
}

// ListActivity godoc
// @ID          listActivity
// @Summary     List reward activity (paginated)
// @Description Returns a page of the user's point-earning history, newest first.
// @Tags        Rewards
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       page       query   int     false "Page number"            minimum(1) default(1)
// @Param       page_size  query   int     false "Items per page"         minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListActivityResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rewards/activity [get]
func (h *Handlers) ListActivity(c *gin.Context) {
	page, pageSize := clampPagination(c)

	items, total, err := h.rwSvc.ActivityPage(c.Request.Context(), userID(c), page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	ok(c, http.StatusOK, ListActivityResponse{
		Activity:   items,
		Pagination: paginationFor(page, pageSize, total),
	})
}

// ListAchievements godoc
// @ID          listAchievements
// @Summary     List earned achievements
// @Description Returns every achievement the user has earned.
// @Tags        Rewards
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} handlers.ListAchievementsResponse
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rewards/achievements [get]
func (h *Handlers) ListAchievements(c *gin.Context) {
	awards, err := h.rwSvc.Achievements(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListAchievementsResponse{Achievements: awards})
}

// ReconcileRewards godoc
// @ID          reconcileRewards
// @Summary     Reconcile the reward total
// @Description Recomputes the user's total from the ledger, corrects any drift, and reports what changed.
// @Tags        Rewards
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
//
// @Success     200  {object} rewards.ReconcileResult
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /rewards/reconcile [post]
func (h *Handlers) ReconcileRewards(c *gin.Context) {
	res, err := h.rwSvc.Reconcile(c.Request.Context(), userID(c))
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeReconcileFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, res)
}
