package models

import "time"

type NotificationType string

const (
	NotifyMessage     NotificationType = "message"
	NotifyGroupInvite NotificationType = "group_invite"
	NotifyMention     NotificationType = "mention"
)

type Notification struct {
	ID        string           `bson:"_id,omitempty" json:"id"`
	UserID    string           `bson:"user_id" json:"user_id"`
	Type      NotificationType `bson:"type" json:"type"`
	Title     string           `bson:"title" json:"title"`
	Content   string           `bson:"content" json:"content"`
	RelatedID string           `bson:"related_id" json:"related_id"`
	Read      bool             `bson:"is_read" json:"is_read"`
	PushSent  bool             `bson:"is_push_sent" json:"is_push_sent"`
	CreatedAt time.Time        `bson:"created_at" json:"created_at"`
}
