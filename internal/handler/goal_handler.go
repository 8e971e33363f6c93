package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/habitflow/internal/middleware"
	"github.com/hitoshi/habitflow/internal/model"
)

// GoalServiceInterface は目標ハンドラーが必要とするサービスインターフェース。
type GoalServiceInterface interface {
	// Create は新しい目標を作成する。
	Create(ctx context.Context, userID, name string, target *int) (*model.Goal, error)
	// Delete は目標を削除する。対象がない場合は何もしない。
	Delete(ctx context.Context, userID string, goalID int64) error
}

// GoalHandler は目標管理のHTTPハンドラー。
type GoalHandler struct {
	service GoalServiceInterface
}

// NewGoalHandler はGoalHandlerを生成する。
func NewGoalHandler(service GoalServiceInterface) *GoalHandler {
	return &GoalHandler{service: service}
}

// createGoalRequest は目標作成リクエストのボディ。targetは任意。
type createGoalRequest struct {
	Name   string `json:"name"`
	Target *int   `json:"target"`
}

// createGoalResponse は目標作成レスポンス。採番されたIDのみ返す。
type createGoalResponse struct {
	ID int64 `json:"id"`
}

// CreateGoal は目標作成を処理する。
// POST /api/goals
func (h *GoalHandler) CreateGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	goal, err := h.service.Create(r.Context(), userID, req.Name, req.Target)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createGoalResponse{ID: goal.ID})
}

// DeleteGoal は目標削除を処理する。
// DELETE /api/goals/:id
// 存在しないIDや他ユーザーの目標でも成功レスポンスを返す。
func (h *GoalHandler) DeleteGoal(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	goalID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// 数値でないIDはどの目標にも一致しないため、何もせず成功扱い
		writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted"})
		return
	}

	if err := h.service.Delete(r.Context(), userID, goalID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted"})
}
