package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/habitflow/internal/model"
)

// PostgresGoalRepo はPostgreSQLを使用した目標リポジトリ。
type PostgresGoalRepo struct {
	db *sql.DB
}

// NewPostgresGoalRepo はPostgresGoalRepoを生成する。
func NewPostgresGoalRepo(db *sql.DB) *PostgresGoalRepo {
	return &PostgresGoalRepo{db: db}
}

// Create は目標を作成し、採番されたIDをgoal.IDに書き戻す。
func (r *PostgresGoalRepo) Create(ctx context.Context, goal *model.Goal) error {
	var target sql.NullInt64
	if goal.Target != nil {
		target = sql.NullInt64{Int64: int64(*goal.Target), Valid: true}
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO goals (user_id, name, target, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		goal.UserID, goal.Name, target, goal.CreatedAt,
	).Scan(&goal.ID)
	if err != nil {
		return fmt.Errorf("failed to insert goal: %w", err)
	}
	return nil
}

// ListByUserID はユーザーの目標一覧を作成順で返す。
func (r *PostgresGoalRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Goal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, target, created_at
		 FROM goals
		 WHERE user_id = $1
		 ORDER BY id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := []*model.Goal{}
	for rows.Next() {
		goal := &model.Goal{}
		var target sql.NullInt64
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Name, &target, &goal.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		if target.Valid {
			v := int(target.Int64)
			goal.Target = &v
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate goals: %w", err)
	}

	return goals, nil
}

// Delete は目標を削除する。WHERE句のuser_id条件で所有権を強制する。
func (r *PostgresGoalRepo) Delete(ctx context.Context, userID string, goalID int64) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM goals WHERE id = $1 AND user_id = $2`,
		goalID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete goal: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// compile-time interface check
var _ GoalRepository = (*PostgresGoalRepo)(nil)
