// Package habit は習慣の作成・一覧・完了記録のビジネスロジックを提供する。
package habit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/habitflow/internal/model"
	"github.com/hitoshi/habitflow/internal/repository"
	"github.com/hitoshi/habitflow/internal/security"
)

// MetricsRecorder は習慣イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordHabitCompletion()
}

// Service は習慣に関するビジネスロジックを提供する。
type Service struct {
	habitRepo repository.HabitRepository
	sanitizer security.InputSanitizerService
	metrics   MetricsRecorder
	now       func() time.Time
}

// NewService はServiceを生成する。metricsはnil許容。
func NewService(habitRepo repository.HabitRepository, sanitizer security.InputSanitizerService, metrics MetricsRecorder) *Service {
	return &Service{
		habitRepo: habitRepo,
		sanitizer: sanitizer,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Create は新しい習慣を作成する。
// タイトルはサニタイズ後に非空であることを検証する。
// streakは0、last_completedは未設定で開始する。
func (s *Service) Create(ctx context.Context, userID, title string) (*model.Habit, error) {
	title = s.sanitizer.Sanitize(title)
	if title == "" {
		return nil, model.NewValidationError("Title required")
	}

	habit := &model.Habit{
		UserID:    userID,
		Title:     title,
		Streak:    0,
		CreatedAt: s.now(),
	}

	if err := s.habitRepo.Create(ctx, habit); err != nil {
		return nil, fmt.Errorf("failed to create habit: %w", err)
	}

	slog.Info("habit created",
		slog.String("user_id", userID),
		slog.Int64("habit_id", habit.ID),
	)

	return habit, nil
}

// List はユーザーの習慣一覧を返す。習慣がない場合は空スライスを返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Habit, error) {
	habits, err := s.habitRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	if habits == nil {
		habits = []*model.Habit{}
	}
	return habits, nil
}

// Complete は習慣の完了を記録する。
// streakを1加算し、last_completedを当日の日付（00:00 UTC）に更新する。
// 同日の重複完了をブロックしない。完了のたびにstreakが進む。
// 対象の習慣が存在しない、または他ユーザーの所有の場合は何もせず成功を返す。
func (s *Service) Complete(ctx context.Context, userID string, habitID int64) error {
	today := truncateToDay(s.now())

	updated, err := s.habitRepo.Complete(ctx, userID, habitID, today)
	if err != nil {
		return fmt.Errorf("failed to complete habit: %w", err)
	}
	if !updated {
		// 存在しない・非所有の習慣IDは黙って無視する
		slog.Debug("habit completion skipped",
			slog.String("user_id", userID),
			slog.Int64("habit_id", habitID),
		)
		return nil
	}

	if s.metrics != nil {
		s.metrics.RecordHabitCompletion()
	}

	slog.Info("habit completed",
		slog.String("user_id", userID),
		slog.Int64("habit_id", habitID),
	)

	return nil
}

// truncateToDay は時刻を日付粒度（00:00 UTC）に切り詰める。
func truncateToDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}
