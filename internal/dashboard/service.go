// Package dashboard はダッシュボード表示用データの集約を提供する。
package dashboard

import (
	"context"
	"fmt"

	"github.com/hitoshi/habitflow/internal/model"
	"github.com/hitoshi/habitflow/internal/repository"
)

// HabitLister は習慣一覧の読み取りインターフェース。habit.Serviceが実装する。
type HabitLister interface {
	List(ctx context.Context, userID string) ([]*model.Habit, error)
}

// GoalLister は目標一覧の読み取りインターフェース。goal.Serviceが実装する。
type GoalLister interface {
	List(ctx context.Context, userID string) ([]*model.Goal, error)
}

// NotificationEngine は通知エンジンのインターフェース。notification.Engineが実装する。
type NotificationEngine interface {
	Sweep(ctx context.Context, userID string, habits []*model.Habit) error
	List(ctx context.Context, userID string) ([]*model.Notification, error)
	ListFriendActivity(ctx context.Context, userID string) ([]*model.FriendActivity, error)
}

// Dashboard はダッシュボード表示に必要なデータ一式。
// 各スライスは要素がない場合でも非nil。
type Dashboard struct {
	Username      string
	Habits        []*model.Habit
	Goals         []*model.Goal
	Notifications []*model.Notification
	Friends       []*model.FriendActivity
}

// Service はダッシュボードデータの集約ロジックを提供する。
type Service struct {
	userRepo      repository.UserRepository
	habits        HabitLister
	goals         GoalLister
	notifications NotificationEngine
}

// NewService はServiceを生成する。
func NewService(
	userRepo repository.UserRepository,
	habits HabitLister,
	goals GoalLister,
	notifications NotificationEngine,
) *Service {
	return &Service{
		userRepo:      userRepo,
		habits:        habits,
		goals:         goals,
		notifications: notifications,
	}
}

// Load はユーザーのダッシュボードデータ一式を集約して返す。
//
// 習慣一覧の読み取り後に停滞チェックのスイープを実行し、その後に
// 通知一覧を読むため、このリクエストで発行された通知もレスポンスに含まれる。
// セッションが指すユーザーが存在しない場合は認証エラーを返す。
func (s *Service) Load(ctx context.Context, userID string) (*Dashboard, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	habits, err := s.habits.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.notifications.Sweep(ctx, userID, habits); err != nil {
		return nil, err
	}

	notifications, err := s.notifications.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	friends, err := s.notifications.ListFriendActivity(ctx, userID)
	if err != nil {
		return nil, err
	}

	goals, err := s.goals.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Dashboard{
		Username:      user.Username,
		Habits:        habits,
		Goals:         goals,
		Notifications: notifications,
		Friends:       friends,
	}, nil
}
