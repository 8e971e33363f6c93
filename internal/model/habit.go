package model

import "time"

// maxProgress はプログレスバー表示値の上限。
const maxProgress = 100

// Habit はユーザーが継続的に取り組む習慣を表す。
// Streakは完了操作のたびに加算される単純カウンタで、履歴から再計算しない。
// LastCompletedは日付粒度（時刻は常に00:00 UTC）。未完了の習慣ではnil。
type Habit struct {
	ID            int64
	UserID        string
	Title         string
	Streak        int
	LastCompleted *time.Time
	CreatedAt     time.Time
}

// Progress はプログレスバー表示用の派生値（0〜100）を返す。
// 永続化しない表示専用の値。streak 10 で100%に到達する。
func (h *Habit) Progress() int {
	p := h.Streak * 10
	if p > maxProgress {
		return maxProgress
	}
	return p
}
