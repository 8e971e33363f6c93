package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/hitoshi/habitflow/internal/dashboard"
	"github.com/hitoshi/habitflow/internal/middleware"
	"github.com/hitoshi/habitflow/internal/model"
)

// dateFormat はlast_completedの表示フォーマット（日付粒度）。
const dateFormat = "2006-01-02"

// timeFormat は通知・フレンドアクティビティの時刻表示フォーマット。
const timeFormat = "15:04"

// DashboardServiceInterface はダッシュボードハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	// Load はユーザーのダッシュボードデータ一式を集約して返す。
	Load(ctx context.Context, userID string) (*dashboard.Dashboard, error)
}

// LatencyRecorder はダッシュボード集約のレイテンシ記録インターフェース。
type LatencyRecorder interface {
	RecordDashboardLatency(duration time.Duration)
}

// DashboardHandler はダッシュボードデータ取得のHTTPハンドラー。
type DashboardHandler struct {
	service DashboardServiceInterface
	metrics LatencyRecorder
}

// NewDashboardHandler はDashboardHandlerを生成する。metricsはnil許容。
func NewDashboardHandler(service DashboardServiceInterface, metrics LatencyRecorder) *DashboardHandler {
	return &DashboardHandler{
		service: service,
		metrics: metrics,
	}
}

// habitResponse は習慣のAPIレスポンス。
// progressは表示専用の派生値で永続化しない。
type habitResponse struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Streak        int     `json:"streak"`
	LastCompleted *string `json:"last_completed"`
	Progress      int     `json:"progress"`
}

// notificationResponse は通知のAPIレスポンス。
type notificationResponse struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// friendActivityResponse はフレンドアクティビティのAPIレスポンス。
type friendActivityResponse struct {
	ID         int64  `json:"id"`
	FriendName string `json:"friend_name"`
	Action     string `json:"action"`
	Time       string `json:"time"`
}

// goalResponse は目標のAPIレスポンス。
type goalResponse struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Target *int   `json:"target"`
}

// dashboardResponse はダッシュボードデータ一式のAPIレスポンス。
// 各配列は要素がない場合でも空配列としてシリアライズされる。
type dashboardResponse struct {
	Username      string                   `json:"username"`
	Habits        []habitResponse          `json:"habits"`
	Friends       []friendActivityResponse `json:"friends"`
	Notifications []notificationResponse   `json:"notifications"`
	Goals         []goalResponse           `json:"goals"`
}

// GetData はダッシュボードデータ取得を処理する。
// GET /api/data
// 習慣の停滞チェックを実行してから全セクションを返す。
func (h *DashboardHandler) GetData(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeAPIErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	start := time.Now()
	d, err := h.service.Load(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordDashboardLatency(time.Since(start))
	}

	writeJSON(w, http.StatusOK, toDashboardResponse(d))
}

// toDashboardResponse はdashboard.DashboardからAPIレスポンスに変換する。
func toDashboardResponse(d *dashboard.Dashboard) dashboardResponse {
	habits := make([]habitResponse, 0, len(d.Habits))
	for _, h := range d.Habits {
		var lastCompleted *string
		if h.LastCompleted != nil {
			s := h.LastCompleted.Format(dateFormat)
			lastCompleted = &s
		}
		habits = append(habits, habitResponse{
			ID:            h.ID,
			Title:         h.Title,
			Streak:        h.Streak,
			LastCompleted: lastCompleted,
			Progress:      h.Progress(),
		})
	}

	notifications := make([]notificationResponse, 0, len(d.Notifications))
	for _, n := range d.Notifications {
		notifications = append(notifications, notificationResponse{
			ID:   n.ID,
			Type: string(n.Type),
			Text: n.Text,
			Time: n.CreatedAt.Format(timeFormat),
		})
	}

	friends := make([]friendActivityResponse, 0, len(d.Friends))
	for _, f := range d.Friends {
		friends = append(friends, friendActivityResponse{
			ID:         f.ID,
			FriendName: f.FriendName,
			Action:     f.Action,
			Time:       f.CreatedAt.Format(timeFormat),
		})
	}

	goals := make([]goalResponse, 0, len(d.Goals))
	for _, g := range d.Goals {
		goals = append(goals, goalResponse{
			ID:     g.ID,
			Name:   g.Name,
			Target: g.Target,
		})
	}

	return dashboardResponse{
		Username:      d.Username,
		Habits:        habits,
		Friends:       friends,
		Notifications: notifications,
		Goals:         goals,
	}
}
