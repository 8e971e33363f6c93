package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func newTestRateLimiter(t *testing.T, config RateLimiterConfig) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(config)
	t.Cleanup(rl.Stop)
	return rl
}

// バースト内のリクエストが許可されることを検証
func TestRateLimiter_General_AllowsWithinBurst(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.GeneralBurst = 3
	rl := newTestRateLimiter(t, config)

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
		req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Result().StatusCode != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, w.Result().StatusCode, http.StatusOK)
		}
	}
}

// バースト超過で429とRetry-Afterが返ることを検証
func TestRateLimiter_General_RejectsOverBurst(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.GeneralRate = rate.Limit(0.01) // 補充をほぼ止める
	config.GeneralBurst = 1
	rl := newTestRateLimiter(t, config)

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req1 := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req1 = req1.WithContext(ContextWithUserID(req1.Context(), "user-1"))
	w1 := httptest.NewRecorder()
	handler.ServeHTTP(w1, req1)

	req2 := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req2 = req2.WithContext(ContextWithUserID(req2.Context(), "user-1"))
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	resp := w2.Result()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusTooManyRequests)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected Retry-After header")
	}
}

// ユーザーごとに独立したリミッターが使われることを検証
func TestRateLimiter_General_IndependentPerUser(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.GeneralRate = rate.Limit(0.01)
	config.GeneralBurst = 1
	rl := newTestRateLimiter(t, config)

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// user-1のバーストを使い切る
	req1 := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req1 = req1.WithContext(ContextWithUserID(req1.Context(), "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req1)

	// user-2は影響を受けない
	req2 := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req2 = req2.WithContext(ContextWithUserID(req2.Context(), "user-2"))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req2)

	if w.Result().StatusCode != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusOK)
	}

	if rl.GeneralLimiterCount() != 2 {
		t.Errorf("limiter count = %d, want 2", rl.GeneralLimiterCount())
	}
}

// コンテキストにユーザーIDがない場合に401を返すことを検証
func TestRateLimiter_General_NoUserID_Returns401(t *testing.T) {
	rl := newTestRateLimiter(t, DefaultRateLimiterConfig())

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Result().StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusUnauthorized)
	}
}

// 登録リミッターがIP単位で制限することを検証
func TestRateLimiter_Registration_LimitsByIP(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.RegisterRate = rate.Limit(0.01)
	config.RegisterBurst = 1
	rl := newTestRateLimiter(t, config)

	mw := rl.RegistrationMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// 同一IPからの2回目は拒否される
	req1 := httptest.NewRequest(http.MethodPost, "/register", nil)
	req1.RemoteAddr = "10.0.0.1:52341"
	handler.ServeHTTP(httptest.NewRecorder(), req1)

	req2 := httptest.NewRequest(http.MethodPost, "/register", nil)
	req2.RemoteAddr = "10.0.0.1:52342"
	w2 := httptest.NewRecorder()
	handler.ServeHTTP(w2, req2)

	if w2.Result().StatusCode != http.StatusTooManyRequests {
		t.Errorf("same IP: status = %d, want %d", w2.Result().StatusCode, http.StatusTooManyRequests)
	}

	// 別IPは独立
	req3 := httptest.NewRequest(http.MethodPost, "/register", nil)
	req3.RemoteAddr = "10.0.0.2:52343"
	w3 := httptest.NewRecorder()
	handler.ServeHTTP(w3, req3)

	if w3.Result().StatusCode != http.StatusOK {
		t.Errorf("other IP: status = %d, want %d", w3.Result().StatusCode, http.StatusOK)
	}
}

// クリーンアップが古いエントリを削除することを検証
func TestRateLimiter_Cleanup_RemovesStaleEntries(t *testing.T) {
	config := DefaultRateLimiterConfig()
	config.CleanupInterval = 10 * time.Millisecond
	rl := newTestRateLimiter(t, config)

	mw := rl.GeneralMiddleware()
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/data", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-1"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if rl.GeneralLimiterCount() != 1 {
		t.Fatalf("limiter count = %d, want 1", rl.GeneralLimiterCount())
	}

	// TTL（CleanupIntervalの2倍）経過後にクリーンアップされるのを待つ
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if rl.GeneralLimiterCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("limiter count = %d, want 0 after cleanup", rl.GeneralLimiterCount())
}
