package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/habitflow/internal/model"
)

// PostgresHabitRepo はPostgreSQLを使用した習慣リポジトリ。
type PostgresHabitRepo struct {
	db *sql.DB
}

// NewPostgresHabitRepo はPostgresHabitRepoを生成する。
func NewPostgresHabitRepo(db *sql.DB) *PostgresHabitRepo {
	return &PostgresHabitRepo{db: db}
}

// Create は習慣を作成し、採番されたIDをhabit.IDに書き戻す。
func (r *PostgresHabitRepo) Create(ctx context.Context, habit *model.Habit) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO habits (user_id, title, streak, created_at)
		 VALUES ($1, $2, 0, $3)
		 RETURNING id`,
		habit.UserID, habit.Title, habit.CreatedAt,
	).Scan(&habit.ID)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの習慣一覧を作成順で返す。
func (r *PostgresHabitRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Habit, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, streak, last_completed, created_at
		 FROM habits
		 WHERE user_id = $1
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits := []*model.Habit{}
	for rows.Next() {
		habit := &model.Habit{}
		var lastCompleted sql.NullTime
		if err := rows.Scan(&habit.ID, &habit.UserID, &habit.Title, &habit.Streak, &lastCompleted, &habit.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan habit: %w", err)
		}
		if lastCompleted.Valid {
			t := lastCompleted.Time
			habit.LastCompleted = &t
		}
		habits = append(habits, habit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate habits: %w", err)
	}

	return habits, nil
}

// Complete は習慣の完了を記録する。
// 加算と日付更新を単一のUPDATEで行うため、同時実行でも更新が失われない。
// WHERE句のuser_id条件により他ユーザーの習慣は更新されない。
func (r *PostgresHabitRepo) Complete(ctx context.Context, userID string, habitID int64, completedOn time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE habits
		 SET streak = streak + 1, last_completed = $3
		 WHERE id = $1 AND user_id = $2`,
		habitID, userID, completedOn,
	)
	if err != nil {
		return false, fmt.Errorf("failed to complete habit: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ HabitRepository = (*PostgresHabitRepo)(nil)
