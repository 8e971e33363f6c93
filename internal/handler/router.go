package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/habitflow/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionStore      middleware.SessionStore
	SessionMaxAge     time.Duration
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// 運用エンドポイント
	HealthChecker  HealthChecker
	MetricsHandler http.Handler
	// RecordHTTPStatus はレスポンスのステータスコードを記録する。nil許容。
	RecordHTTPStatus func(statusCode int)

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ドメイン
	DashboardService DashboardServiceInterface
	LatencyRecorder  LatencyRecorder
	HabitService     HabitServiceInterface
	GoalService      GoalServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Logging → StatusRecorder
//	（認証ルート配下ではさらに Session → RateLimit(General)）
//
// 認証不要ルート（/register、/login、/logout、/health、/metrics）は
// セッションミドルウェアの外に配置する。/register には登録専用のIP単位レート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}
	if deps.RecordHTTPStatus != nil {
		r.Use(middleware.StatusRecorderFunc(deps.RecordHTTPStatus))
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	dashboardHandler := NewDashboardHandler(deps.DashboardService, deps.LatencyRecorder)
	habitHandler := NewHabitHandler(deps.HabitService)
	goalHandler := NewGoalHandler(deps.GoalService)

	// --- 認証不要のルート ---

	r.With(deps.RateLimiter.RegistrationMiddleware()).Post("/register", authHandler.Register)
	r.Post("/login", authHandler.Login)
	r.Post("/logout", authHandler.Logout)

	if deps.HealthChecker != nil {
		healthHandler := NewHealthHandler(deps.HealthChecker)
		r.Get("/health", healthHandler.Health)
	}
	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionStore, deps.SessionMaxAge))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// ダッシュボードデータ
		r.Get("/api/data", dashboardHandler.GetData)

		// 習慣管理
		r.Route("/api/habits", func(r chi.Router) {
			r.Post("/", habitHandler.CreateHabit)
			r.Post("/{id}/complete", habitHandler.CompleteHabit)
		})

		// 目標管理
		r.Route("/api/goals", func(r chi.Router) {
			r.Post("/", goalHandler.CreateGoal)
			r.Delete("/{id}", goalHandler.DeleteGoal)
		})
	})

	return r
}
