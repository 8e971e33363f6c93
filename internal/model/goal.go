package model

import "time"

// Goal はユーザーが設定する数値目標を表す。
// 派生状態を持たない純粋なCRUD対象。Targetは未指定の場合nil。
type Goal struct {
	ID        int64
	UserID    string
	Name      string
	Target    *int
	CreatedAt time.Time
}
