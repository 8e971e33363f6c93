// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/habitflow/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByUsername は指定ユーザー名のユーザーを取得する。見つからない場合はnilを返す。
	FindByUsername(ctx context.Context, username string) (*model.User, error)

	// Create はユーザーを作成する。
	// ユーザー名が既に存在する場合は*model.APIError（USERNAME_TAKEN）を返す。
	Create(ctx context.Context, user *model.User) error
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// Refresh はセッションの有効期限を延長する（ローリング有効期限）。
	Refresh(ctx context.Context, id string, expiresAt time.Time) error
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// HabitRepository は習慣データの永続化インターフェース。
type HabitRepository interface {
	// Create は習慣を作成し、採番されたIDをhabit.IDに書き戻す。
	// streakは0、last_completedはNULLで初期化される。
	Create(ctx context.Context, habit *model.Habit) error

	// ListByUserID はユーザーの習慣一覧を作成順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Habit, error)

	// Complete は習慣の完了を記録する。
	// streakの加算とlast_completedの更新を単一のUPDATEで行い、
	// WHERE句のuser_id条件で所有権を強制する。
	// 更新された場合はtrueを、該当行がない（存在しないか他ユーザー所有）場合はfalseを返す。
	Complete(ctx context.Context, userID string, habitID int64, completedOn time.Time) (bool, error)
}

// GoalRepository は目標データの永続化インターフェース。
type GoalRepository interface {
	// Create は目標を作成し、採番されたIDをgoal.IDに書き戻す。
	Create(ctx context.Context, goal *model.Goal) error

	// ListByUserID はユーザーの目標一覧を作成順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Goal, error)

	// Delete は目標を削除する。WHERE句のuser_id条件で所有権を強制する。
	// 削除された場合はtrueを、該当行がない場合はfalseを返す。
	Delete(ctx context.Context, userID string, goalID int64) (bool, error)
}

// NotificationRepository は通知データの永続化インターフェース。
type NotificationRepository interface {
	// Create は通知を作成し、採番されたIDをnotification.IDに書き戻す。
	Create(ctx context.Context, notification *model.Notification) error

	// ListByUserID はユーザーの通知一覧を作成順の降順（id DESC）で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.Notification, error)
}

// FriendActivityRepository はフレンドアクティビティの永続化インターフェース。
type FriendActivityRepository interface {
	// CreateBatch は複数のフレンドアクティビティを同一トランザクションで作成する。
	CreateBatch(ctx context.Context, activities []*model.FriendActivity) error

	// ListByUserID はユーザーのフレンドアクティビティ一覧を作成順の降順で返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.FriendActivity, error)
}
