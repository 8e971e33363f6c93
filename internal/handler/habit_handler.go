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

// HabitServiceInterface は習慣ハンドラーが必要とするサービスインターフェース。
type HabitServiceInterface interface {
	// Create は新しい習慣を作成する。
	Create(ctx context.Context, userID, title string) (*model.Habit, error)
	// Complete は習慣の完了を記録する。対象がない場合は何もしない。
	Complete(ctx context.Context, userID string, habitID int64) error
}

// HabitHandler は習慣管理のHTTPハンドラー。
type HabitHandler struct {
	service HabitServiceInterface
}

// NewHabitHandler はHabitHandlerを生成する。
func NewHabitHandler(service HabitServiceInterface) *HabitHandler {
	return &HabitHandler{service: service}
}

// createHabitRequest は習慣作成リクエストのボディ。
type createHabitRequest struct {
	Title string `json:"title"`
}

// createHabitResponse は習慣作成レスポンス。採番されたIDのみ返す。
type createHabitResponse struct {
	ID int64 `json:"id"`
}

// CreateHabit は習慣作成を処理する。
// POST /api/habits
func (h *HabitHandler) CreateHabit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var req createHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return
	}

	habit, err := h.service.Create(r.Context(), userID, req.Title)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, createHabitResponse{ID: habit.ID})
}

// CompleteHabit は習慣の完了記録を処理する。
// POST /api/habits/:id/complete
// 存在しないIDや他ユーザーの習慣でも成功レスポンスを返す。
func (h *HabitHandler) CompleteHabit(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	habitID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		// 数値でないIDはどの習慣にも一致しないため、何もせず成功扱い
		writeJSON(w, http.StatusOK, messageResponse{Message: "Done"})
		return
	}

	if err := h.service.Complete(r.Context(), userID, habitID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "Done"})
}
