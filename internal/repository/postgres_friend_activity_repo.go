package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/habitflow/internal/model"
)

// PostgresFriendActivityRepo はPostgreSQLを使用したフレンドアクティビティリポジトリ。
type PostgresFriendActivityRepo struct {
	db *sql.DB
}

// NewPostgresFriendActivityRepo はPostgresFriendActivityRepoを生成する。
func NewPostgresFriendActivityRepo(db *sql.DB) *PostgresFriendActivityRepo {
	return &PostgresFriendActivityRepo{db: db}
}

// CreateBatch は複数のフレンドアクティビティを同一トランザクションで作成する。
// 登録時のテンプレート一括投入で使用する。
func (r *PostgresFriendActivityRepo) CreateBatch(ctx context.Context, activities []*model.FriendActivity) error {
	if len(activities) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, a := range activities {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO friend_activity (user_id, friend_name, action, created_at)
			 VALUES ($1, $2, $3, $4)
			 RETURNING id`,
			a.UserID, a.FriendName, a.Action, a.CreatedAt,
		).Scan(&a.ID)
		if err != nil {
			return fmt.Errorf("failed to insert friend activity: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListByUserID はユーザーのフレンドアクティビティ一覧を作成順の降順で返す。
func (r *PostgresFriendActivityRepo) ListByUserID(ctx context.Context, userID string) ([]*model.FriendActivity, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, friend_name, action, created_at
		 FROM friend_activity
		 WHERE user_id = $1
		 ORDER BY id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend activity: %w", err)
	}
	defer rows.Close()

	activities := []*model.FriendActivity{}
	for rows.Next() {
		a := &model.FriendActivity{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.FriendName, &a.Action, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan friend activity: %w", err)
		}
		activities = append(activities, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate friend activity: %w", err)
	}

	return activities, nil
}

// compile-time interface check
var _ FriendActivityRepository = (*PostgresFriendActivityRepo)(nil)
