// Package goal は目標のCRUDビジネスロジックを提供する。
package goal

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hitoshi/habitflow/internal/model"
	"github.com/hitoshi/habitflow/internal/repository"
	"github.com/hitoshi/habitflow/internal/security"
)

// Service は目標に関するビジネスロジックを提供する。
// 目標は進捗追跡を持たない純粋なCRUD。習慣・通知のロジックと連動しない。
type Service struct {
	goalRepo  repository.GoalRepository
	sanitizer security.InputSanitizerService
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(goalRepo repository.GoalRepository, sanitizer security.InputSanitizerService) *Service {
	return &Service{
		goalRepo:  goalRepo,
		sanitizer: sanitizer,
		now:       time.Now,
	}
}

// Create は新しい目標を作成する。
// 名前はサニタイズ後に非空であることを検証する。targetは任意。
func (s *Service) Create(ctx context.Context, userID, name string, target *int) (*model.Goal, error) {
	name = s.sanitizer.Sanitize(name)
	if name == "" {
		return nil, model.NewValidationError("Name required")
	}

	goal := &model.Goal{
		UserID:    userID,
		Name:      name,
		Target:    target,
		CreatedAt: s.now(),
	}

	if err := s.goalRepo.Create(ctx, goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	slog.Info("goal created",
		slog.String("user_id", userID),
		slog.Int64("goal_id", goal.ID),
	)

	return goal, nil
}

// List はユーザーの目標一覧を返す。目標がない場合は空スライスを返す。
func (s *Service) List(ctx context.Context, userID string) ([]*model.Goal, error) {
	goals, err := s.goalRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	if goals == nil {
		goals = []*model.Goal{}
	}
	return goals, nil
}

// Delete は目標を削除する。
// 対象が存在しない、または他ユーザーの所有の場合は何もせず成功を返す。
func (s *Service) Delete(ctx context.Context, userID string, goalID int64) error {
	deleted, err := s.goalRepo.Delete(ctx, userID, goalID)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if !deleted {
		slog.Debug("goal deletion skipped",
			slog.String("user_id", userID),
			slog.Int64("goal_id", goalID),
		)
		return nil
	}

	slog.Info("goal deleted",
		slog.String("user_id", userID),
		slog.Int64("goal_id", goalID),
	)

	return nil
}
