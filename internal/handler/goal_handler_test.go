package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/habitflow/internal/model"
)

type mockGoalService struct {
	createFn func(ctx context.Context, userID, name string, target *int) (*model.Goal, error)
	deleteFn func(ctx context.Context, userID string, goalID int64) error
}

func (m *mockGoalService) Create(ctx context.Context, userID, name string, target *int) (*model.Goal, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, name, target)
	}
	return &model.Goal{ID: 1, UserID: userID, Name: name, Target: target}, nil
}

func (m *mockGoalService) Delete(ctx context.Context, userID string, goalID int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, goalID)
	}
	return nil
}

func TestGoalHandler_CreateGoal_ReturnsID(t *testing.T) {
	var gotTarget *int
	svc := &mockGoalService{
		createFn: func(ctx context.Context, userID, name string, target *int) (*model.Goal, error) {
			gotTarget = target
			return &model.Goal{ID: 9, UserID: userID, Name: name, Target: target}, nil
		},
	}
	h := NewGoalHandler(svc)

	req := newAuthenticatedRequest(http.MethodPost, "/api/goals", `{"name":"Read 12 books","target":12}`, "user-1")
	w := httptest.NewRecorder()

	h.CreateGoal(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotTarget == nil || *gotTarget != 12 {
		t.Errorf("target = %v, want 12", gotTarget)
	}

	var got createGoalResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.ID != 9 {
		t.Errorf("id = %d, want 9", got.ID)
	}
}

func TestGoalHandler_CreateGoal_WithoutTarget(t *testing.T) {
	var gotTarget *int
	svc := &mockGoalService{
		createFn: func(ctx context.Context, userID, name string, target *int) (*model.Goal, error) {
			gotTarget = target
			return &model.Goal{ID: 2, UserID: userID, Name: name}, nil
		},
	}
	h := NewGoalHandler(svc)

	req := newAuthenticatedRequest(http.MethodPost, "/api/goals", `{"name":"Sleep more"}`, "user-1")
	w := httptest.NewRecorder()

	h.CreateGoal(w, req)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
	if gotTarget != nil {
		t.Errorf("target = %v, want nil", gotTarget)
	}
}

func TestGoalHandler_CreateGoal_NoUserID_Returns401(t *testing.T) {
	h := NewGoalHandler(&mockGoalService{})

	req := httptest.NewRequest(http.MethodPost, "/api/goals", nil)
	w := httptest.NewRecorder()

	h.CreateGoal(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

func deleteViaRouter(h *GoalHandler, userID, goalID string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Delete("/api/goals/{id}", h.DeleteGoal)

	req := newAuthenticatedRequest(http.MethodDelete, "/api/goals/"+goalID, "", userID)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGoalHandler_DeleteGoal_ReturnsDeleted(t *testing.T) {
	var gotGoalID int64
	svc := &mockGoalService{
		deleteFn: func(ctx context.Context, userID string, goalID int64) error {
			gotGoalID = goalID
			return nil
		},
	}
	h := NewGoalHandler(svc)

	w := deleteViaRouter(h, "user-1", "5")

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if gotGoalID != 5 {
		t.Errorf("goal ID = %d, want 5", gotGoalID)
	}

	var got messageResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if got.Message != "Deleted" {
		t.Errorf("message = %q, want %q", got.Message, "Deleted")
	}
}

// 数値でないIDでもサービスを呼ばず成功を返すことを検証
func TestGoalHandler_DeleteGoal_NonNumericID_SilentSuccess(t *testing.T) {
	svc := &mockGoalService{
		deleteFn: func(ctx context.Context, userID string, goalID int64) error {
			t.Error("service should not be called for a non-numeric ID")
			return nil
		},
	}
	h := NewGoalHandler(svc)

	w := deleteViaRouter(h, "user-1", "abc")

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}
}
