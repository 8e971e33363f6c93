package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/habitflow/internal/model"
)

type mockNotificationRepo struct {
	createFn func(ctx context.Context, n *model.Notification) error
	listFn   func(ctx context.Context, userID string) ([]*model.Notification, error)

	created []*model.Notification
}

func (m *mockNotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	if m.createFn != nil {
		return m.createFn(ctx, n)
	}
	n.ID = int64(len(m.created) + 1)
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Notification, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

type mockFriendRepo struct {
	createBatchFn func(ctx context.Context, activities []*model.FriendActivity) error
	listFn        func(ctx context.Context, userID string) ([]*model.FriendActivity, error)
}

func (m *mockFriendRepo) CreateBatch(ctx context.Context, activities []*model.FriendActivity) error {
	if m.createBatchFn != nil {
		return m.createBatchFn(ctx, activities)
	}
	return nil
}

func (m *mockFriendRepo) ListByUserID(ctx context.Context, userID string) ([]*model.FriendActivity, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

// fixedPicker は常に同じインデックスを返すPicker。
type fixedPicker struct {
	index int
}

func (p fixedPicker) Pick(n int) int {
	return p.index % n
}

// sequencePicker は呼び出しごとにインデックス列を消費するPicker。
type sequencePicker struct {
	indices []int
	pos     int
}

func (p *sequencePicker) Pick(n int) int {
	i := p.indices[p.pos%len(p.indices)]
	p.pos++
	return i % n
}

type mockMetrics struct {
	emitted int
}

func (m *mockMetrics) RecordNotificationEmitted() {
	m.emitted++
}

func newTestEngine(nRepo *mockNotificationRepo, fRepo *mockFriendRepo, picker Picker, now time.Time, metrics MetricsRecorder) *Engine {
	e := NewEngine(nRepo, fRepo, metrics)
	if picker != nil {
		e.picker = picker
	}
	e.now = func() time.Time { return now }
	return e
}

func daysAgo(now time.Time, days int) *time.Time {
	t := now.AddDate(0, 0, -days)
	return &t
}

// 登録時にウェルカム通知1件とフレンドアクティビティ4件が投入されることを検証
func TestEngine_SeedWelcome(t *testing.T) {
	nRepo := &mockNotificationRepo{}
	var seeded []*model.FriendActivity
	fRepo := &mockFriendRepo{
		createBatchFn: func(ctx context.Context, activities []*model.FriendActivity) error {
			seeded = activities
			return nil
		},
	}
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(nRepo, fRepo, nil, now, nil)

	if err := e.SeedWelcome(context.Background(), "user-1", now); err != nil {
		t.Fatalf("SeedWelcome returned error: %v", err)
	}

	if len(seeded) != 4 {
		t.Fatalf("seeded friend activities = %d, want 4", len(seeded))
	}
	wantFriends := []struct{ name, action string }{
		{"Alex", "started a new habit: Running"},
		{"Jordan", "reached a 7-day streak on Reading"},
		{"Taylor", "hit a 10-day streak on Meditation"},
		{"Sam", "completed their workout early today!"},
	}
	for i, want := range wantFriends {
		if seeded[i].FriendName != want.name || seeded[i].Action != want.action {
			t.Errorf("friend[%d] = {%q, %q}, want {%q, %q}",
				i, seeded[i].FriendName, seeded[i].Action, want.name, want.action)
		}
		if seeded[i].UserID != "user-1" {
			t.Errorf("friend[%d].UserID = %q, want %q", i, seeded[i].UserID, "user-1")
		}
	}

	if len(nRepo.created) != 1 {
		t.Fatalf("seeded notifications = %d, want 1", len(nRepo.created))
	}
	welcome := nRepo.created[0]
	if welcome.Text != "Welcome to Habit Flow! Start your first habit today." {
		t.Errorf("welcome text = %q", welcome.Text)
	}
	if welcome.Type != model.NotificationTypeMotivation {
		t.Errorf("welcome type = %q, want %q", welcome.Type, model.NotificationTypeMotivation)
	}
}

// 2日以上停滞した習慣にモチベーション通知が発行されることを検証
func TestEngine_Sweep_StaleHabitEmitsNotification(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	nRepo := &mockNotificationRepo{}
	metrics := &mockMetrics{}
	e := newTestEngine(nRepo, &mockFriendRepo{}, fixedPicker{index: 1}, now, metrics)

	habits := []*model.Habit{
		{ID: 1, UserID: "user-1", Title: "Run", LastCompleted: daysAgo(now, 3)},
	}

	if err := e.Sweep(context.Background(), "user-1", habits); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}

	if len(nRepo.created) != 1 {
		t.Fatalf("notifications created = %d, want 1", len(nRepo.created))
	}
	got := nRepo.created[0]
	if got.Text != "Small progress is still progress — keep going!" {
		t.Errorf("text = %q", got.Text)
	}
	if got.Type != model.NotificationTypeMotivation {
		t.Errorf("type = %q, want %q", got.Type, model.NotificationTypeMotivation)
	}
	if metrics.emitted != 1 {
		t.Errorf("metrics emitted = %d, want 1", metrics.emitted)
	}
}

// 経過日数の切り上げ判定を境界値で検証
func TestEngine_Sweep_DiffDaysThreshold(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lastCompleted time.Time
		wantEmit      bool
	}{
		// 12時間前: ceil(0.5) = 1 → 発行しない
		{"half a day ago", now.Add(-12 * time.Hour), false},
		// ちょうど24時間前: ceil(1.0) = 1 → 発行しない
		{"exactly one day ago", now.Add(-24 * time.Hour), false},
		// 25時間前: ceil(1.04) = 2 → 発行する
		{"just over one day ago", now.Add(-25 * time.Hour), true},
		// 48時間前: ceil(2.0) = 2 → 発行する
		{"exactly two days ago", now.Add(-48 * time.Hour), true},
		{"a week ago", now.Add(-7 * 24 * time.Hour), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nRepo := &mockNotificationRepo{}
			e := newTestEngine(nRepo, &mockFriendRepo{}, fixedPicker{index: 0}, now, nil)

			last := tt.lastCompleted
			habits := []*model.Habit{{ID: 1, UserID: "user-1", Title: "Run", LastCompleted: &last}}

			if err := e.Sweep(context.Background(), "user-1", habits); err != nil {
				t.Fatalf("Sweep returned error: %v", err)
			}
			if got := len(nRepo.created) > 0; got != tt.wantEmit {
				t.Errorf("emitted = %v, want %v", got, tt.wantEmit)
			}
		})
	}
}

// 一度も完了していない習慣がスイープ対象外であることを検証
func TestEngine_Sweep_SkipsNeverCompletedHabit(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	nRepo := &mockNotificationRepo{}
	e := newTestEngine(nRepo, &mockFriendRepo{}, fixedPicker{index: 0}, now, nil)

	habits := []*model.Habit{
		{ID: 1, UserID: "user-1", Title: "Run", LastCompleted: nil},
	}

	if err := e.Sweep(context.Background(), "user-1", habits); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(nRepo.created) != 0 {
		t.Errorf("notifications created = %d, want 0", len(nRepo.created))
	}
}

// 既存通知と同一本文のメッセージが重複発行されないことを検証
func TestEngine_Sweep_DeduplicatesByText(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	nRepo := &mockNotificationRepo{
		listFn: func(ctx context.Context, userID string) ([]*model.Notification, error) {
			return []*model.Notification{
				{ID: 1, UserID: userID, Text: "You’re doing great — keep building your streak!"},
			}, nil
		},
	}
	e := newTestEngine(nRepo, &mockFriendRepo{}, fixedPicker{index: 0}, now, nil)

	habits := []*model.Habit{
		{ID: 1, UserID: "user-1", Title: "Run", LastCompleted: daysAgo(now, 5)},
	}

	if err := e.Sweep(context.Background(), "user-1", habits); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(nRepo.created) != 0 {
		t.Errorf("notifications created = %d, want 0 (duplicate text)", len(nRepo.created))
	}
}

// 重複判定がスイープ開始時点のスナップショットに対して行われることを検証。
// 同一スイープ内で同じメッセージを2度引き当てた場合は2件とも発行される。
func TestEngine_Sweep_SnapshotSemantics(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	nRepo := &mockNotificationRepo{}
	picker := &sequencePicker{indices: []int{2, 2}}
	e := newTestEngine(nRepo, &mockFriendRepo{}, picker, now, nil)

	habits := []*model.Habit{
		{ID: 1, UserID: "user-1", Title: "Run", LastCompleted: daysAgo(now, 3)},
		{ID: 2, UserID: "user-1", Title: "Read", LastCompleted: daysAgo(now, 4)},
	}

	if err := e.Sweep(context.Background(), "user-1", habits); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(nRepo.created) != 2 {
		t.Fatalf("notifications created = %d, want 2", len(nRepo.created))
	}
	if nRepo.created[0].Text != nRepo.created[1].Text {
		t.Error("expected both notifications to carry the same text")
	}
}

// 習慣が1件もない場合にスイープが何も発行しないことを検証
func TestEngine_Sweep_NoHabits(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	nRepo := &mockNotificationRepo{}
	e := newTestEngine(nRepo, &mockFriendRepo{}, fixedPicker{index: 0}, now, nil)

	if err := e.Sweep(context.Background(), "user-1", nil); err != nil {
		t.Fatalf("Sweep returned error: %v", err)
	}
	if len(nRepo.created) != 0 {
		t.Errorf("notifications created = %d, want 0", len(nRepo.created))
	}
}

// ストレージエラーがスイープを中断して伝播することを検証
func TestEngine_Sweep_StorageError(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	nRepo := &mockNotificationRepo{
		createFn: func(ctx context.Context, n *model.Notification) error {
			return errors.New("connection reset")
		},
	}
	e := newTestEngine(nRepo, &mockFriendRepo{}, fixedPicker{index: 0}, now, nil)

	habits := []*model.Habit{
		{ID: 1, UserID: "user-1", Title: "Run", LastCompleted: daysAgo(now, 3)},
	}

	if err := e.Sweep(context.Background(), "user-1", habits); err == nil {
		t.Fatal("expected error, got nil")
	}
}

// 通知・フレンドアクティビティの一覧が空でも非nilで返ることを検証
func TestEngine_List_EmptyIsNonNil(t *testing.T) {
	now := time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)
	e := newTestEngine(&mockNotificationRepo{}, &mockFriendRepo{}, nil, now, nil)

	notifications, err := e.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if notifications == nil {
		t.Error("expected non-nil notifications slice")
	}

	friends, err := e.ListFriendActivity(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListFriendActivity returned error: %v", err)
	}
	if friends == nil {
		t.Error("expected non-nil friend activity slice")
	}
}
