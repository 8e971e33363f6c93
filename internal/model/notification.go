package model

import "time"

// NotificationType は通知の種別を表す。
type NotificationType string

const (
	// NotificationTypeMotivation はシステムが生成するモチベーション通知。
	NotificationTypeMotivation NotificationType = "Motivation"
	// NotificationTypeFriendActivity はフレンドアクティビティ由来の通知。
	NotificationTypeFriendActivity NotificationType = "FriendActivity"
)

// Notification はユーザーごとの通知を表す。追記専用で、表示は作成順の降順。
type Notification struct {
	ID        int64
	UserID    string
	Type      NotificationType
	Text      string
	CreatedAt time.Time
}

// FriendActivity はフレンドの活動記録を表す。
// 登録時に固定テンプレートから生成され、以後は読み取り専用。
type FriendActivity struct {
	ID         int64
	UserID     string
	FriendName string
	Action     string
	CreatedAt  time.Time
}
