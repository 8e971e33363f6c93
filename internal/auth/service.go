// Package auth はパスワード認証とセッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hitoshi/habitflow/internal/model"
	"github.com/hitoshi/habitflow/internal/repository"
	"github.com/hitoshi/habitflow/internal/security"
	"golang.org/x/crypto/bcrypt"
)

// WelcomeSeeder は新規ユーザーの初期データ投入インターフェース。
// notification.Engineが実装する。
type WelcomeSeeder interface {
	// SeedWelcome はウェルカム通知とフレンドアクティビティの初期データを投入する。
	SeedWelcome(ctx context.Context, userID string, now time.Time) error
}

// MetricsRecorder は認証イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordRegistration()
	RecordLogin()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge int // セッション有効期間（秒）
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	seeder      WelcomeSeeder
	sanitizer   security.InputSanitizerService
	metrics     MetricsRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
// metricsはnil許容（記録しない）。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	seeder WelcomeSeeder,
	sanitizer security.InputSanitizerService,
	metrics MetricsRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		seeder:      seeder,
		sanitizer:   sanitizer,
		metrics:     metrics,
		config:      config,
	}
}

// Register は新規ユーザーを登録する。
// 入力検証（必須項目、パスワード確認の一致）をストレージ到達前に行い、
// パスワードはbcryptハッシュのみ保存する。
// 登録成功時にウェルカム通知とフレンドアクティビティを投入し、ユーザーIDを返す。
func (s *Service) Register(ctx context.Context, username, password, confirmPassword string) (string, error) {
	username = s.sanitizer.Sanitize(username)

	if username == "" || password == "" {
		return "", model.NewValidationError("All fields required")
	}
	if password != confirmPassword {
		return "", model.NewValidationError("Passwords do not match")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) {
			return "", apiErr
		}
		return "", fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.seeder.SeedWelcome(ctx, user.ID, now); err != nil {
		return "", fmt.Errorf("failed to seed welcome data: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRegistration()
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
		slog.String("username", username),
	)

	return user.ID, nil
}

// Login は認証情報を検証し、セッションを発行する。
// ユーザー不在とパスワード不一致は同一のエラーとして扱う。
func (s *Service) Login(ctx context.Context, username, password string) (*model.Session, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	session, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordLogin()
	}

	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return session, nil
}

// Logout はセッションを破棄する。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out")
	return nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, userID string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt: time.Now(),
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
