// Package notification は通知エンジンを提供する。
//
// エンジンは2つの書き込み経路を持つ。
//   - SeedWelcome: 登録時のウェルカム通知とフレンドアクティビティの初期投入
//   - Sweep: ダッシュボード読み取り時の習慣停滞チェックとモチベーション通知の発行
//
// 通知は追記専用で、更新・削除・既読管理は行わない。
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"time"

	"github.com/hitoshi/habitflow/internal/model"
	"github.com/hitoshi/habitflow/internal/repository"
)

// staleThresholdDays は停滞とみなす経過日数の下限。
// 最後の完了から切り上げで2日以上経過した習慣が対象になる。
const staleThresholdDays = 2

// welcomeMessage は登録直後に投入するウェルカム通知の本文。
const welcomeMessage = "Welcome to Habit Flow! Start your first habit today."

// motivationMessages は停滞した習慣に対して発行するモチベーション通知の候補。
var motivationMessages = []string{
	"You’re doing great — keep building your streak!",
	"Small progress is still progress — keep going!",
	"Don’t worry about yesterday, focus on today.",
	"You’re only one step away from getting back on track!",
}

// friendSeedTemplates は登録時に投入するフレンドアクティビティの固定テンプレート。
var friendSeedTemplates = []struct {
	Name   string
	Action string
}{
	{"Alex", "started a new habit: Running"},
	{"Jordan", "reached a 7-day streak on Reading"},
	{"Taylor", "hit a 10-day streak on Meditation"},
	{"Sam", "completed their workout early today!"},
}

// Picker はモチベーション通知の候補選択インターフェース。
// テストで選択を固定するために注入可能にしている。
type Picker interface {
	// Pick は[0, n)の整数を返す。
	Pick(n int) int
}

// randPicker はmath/randを使うPickerの本番実装。
type randPicker struct{}

func (randPicker) Pick(n int) int {
	return rand.Intn(n)
}

// MetricsRecorder は通知イベントのメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordNotificationEmitted()
}

// Engine は通知の生成・読み取りロジックを提供する。
type Engine struct {
	notificationRepo repository.NotificationRepository
	friendRepo       repository.FriendActivityRepository
	picker           Picker
	metrics          MetricsRecorder
	now              func() time.Time
}

// NewEngine はEngineを生成する。metricsはnil許容。
func NewEngine(
	notificationRepo repository.NotificationRepository,
	friendRepo repository.FriendActivityRepository,
	metrics MetricsRecorder,
) *Engine {
	return &Engine{
		notificationRepo: notificationRepo,
		friendRepo:       friendRepo,
		picker:           randPicker{},
		metrics:          metrics,
		now:              time.Now,
	}
}

// SeedWelcome は新規ユーザーにウェルカム通知と固定のフレンドアクティビティを投入する。
// 登録トランザクションの一部として呼ばれる。
func (e *Engine) SeedWelcome(ctx context.Context, userID string, now time.Time) error {
	activities := make([]*model.FriendActivity, 0, len(friendSeedTemplates))
	for _, t := range friendSeedTemplates {
		activities = append(activities, &model.FriendActivity{
			UserID:     userID,
			FriendName: t.Name,
			Action:     t.Action,
			CreatedAt:  now,
		})
	}
	if err := e.friendRepo.CreateBatch(ctx, activities); err != nil {
		return fmt.Errorf("failed to seed friend activity: %w", err)
	}

	welcome := &model.Notification{
		UserID:    userID,
		Type:      model.NotificationTypeMotivation,
		Text:      welcomeMessage,
		CreatedAt: now,
	}
	if err := e.notificationRepo.Create(ctx, welcome); err != nil {
		return fmt.Errorf("failed to seed welcome notification: %w", err)
	}

	slog.Info("welcome data seeded",
		slog.String("user_id", userID),
		slog.Int("friend_activities", len(activities)),
	)

	return nil
}

// Sweep は習慣一覧を走査し、停滞した習慣ごとにモチベーション通知を発行する。
//
// 最後の完了からの経過日数は切り上げ（1日未満の端数も1日に数える）で算出し、
// 2日以上経過した習慣が対象になる。一度も完了していない習慣は対象外。
//
// 重複抑止はスイープ開始時点の既存通知本文のスナップショットに対して行う。
// スナップショットはスイープ中に更新しないため、複数の停滞習慣が
// 同一メッセージを引き当てた場合は同じ本文が複数件発行されうる。
func (e *Engine) Sweep(ctx context.Context, userID string, habits []*model.Habit) error {
	existing, err := e.notificationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to read notifications for sweep: %w", err)
	}

	seen := make(map[string]bool, len(existing))
	for _, n := range existing {
		seen[n.Text] = true
	}

	now := e.now()
	emitted := 0
	for _, h := range habits {
		if h.LastCompleted == nil {
			continue
		}
		if diffDays(now, *h.LastCompleted) < staleThresholdDays {
			continue
		}

		msg := motivationMessages[e.picker.Pick(len(motivationMessages))]
		if seen[msg] {
			continue
		}

		n := &model.Notification{
			UserID:    userID,
			Type:      model.NotificationTypeMotivation,
			Text:      msg,
			CreatedAt: now,
		}
		if err := e.notificationRepo.Create(ctx, n); err != nil {
			return fmt.Errorf("failed to create motivation notification: %w", err)
		}
		emitted++

		if e.metrics != nil {
			e.metrics.RecordNotificationEmitted()
		}
	}

	if emitted > 0 {
		slog.Info("motivation notifications emitted",
			slog.String("user_id", userID),
			slog.Int("count", emitted),
		)
	}

	return nil
}

// List はユーザーの通知一覧を新しい順で返す。通知がない場合は空スライスを返す。
func (e *Engine) List(ctx context.Context, userID string) ([]*model.Notification, error) {
	notifications, err := e.notificationRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	if notifications == nil {
		notifications = []*model.Notification{}
	}
	return notifications, nil
}

// ListFriendActivity はユーザーのフレンドアクティビティ一覧を新しい順で返す。
func (e *Engine) ListFriendActivity(ctx context.Context, userID string) ([]*model.FriendActivity, error) {
	activities, err := e.friendRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend activity: %w", err)
	}
	if activities == nil {
		activities = []*model.FriendActivity{}
	}
	return activities, nil
}

// diffDays は2時点間の経過日数を切り上げで返す。符号は無視する。
func diffDays(now, last time.Time) int {
	diff := now.Sub(last)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}
