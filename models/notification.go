package models

import "time"

type RecipientStatus string

const (
	StatusSent RecipientStatus = "sent"
	StatusRead RecipientStatus = "read"
)

// Valid reports whether s is one of the known delivery states.
func (s RecipientStatus) Valid() bool {
	return s == StatusSent || s == StatusRead
}

// Notification is the immutable content shared by every recipient.
type Notification struct {
	ID        string    `json:"id" bson:"_id"`
	Type      string    `json:"type" bson:"type"`
	Title     string    `json:"title" bson:"title"`
	Message   string    `json:"message" bson:"message"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// NotificationRecipient is the per-recipient delivery row of a notification.
type NotificationRecipient struct {
	ID             string          `json:"id" bson:"_id"`
	NotificationID string          `json:"notificationId" bson:"notificationId"`
	UserID         string          `json:"userId" bson:"userId"`
	Status         RecipientStatus `json:"status" bson:"status"`
	ReadAt         *time.Time      `json:"readAt,omitempty" bson:"readAt,omitempty"`
}

// NotificationView is a recipient row joined with its notification.
type NotificationView struct {
	NotificationID string          `json:"notificationId"`
	Title          string          `json:"title"`
	Message        string          `json:"message"`
	Status         RecipientStatus `json:"status"`
	CreatedAt      time.Time       `json:"createdAt"`
	ReadAt         *time.Time      `json:"readAt,omitempty"`
}
