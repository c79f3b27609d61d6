package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification types.
const (
	NotificationProductAlert = "product_alert"
	NotificationUrgentAlert  = "urgent_alert"
)

// Notification is a per-recipient delivery record derived from an Alert.
// The read flag transitions false -> true only.
type Notification struct {
	ID          uuid.UUID `json:"id"`
	RecipientID int64     `json:"recipient_id"`
	Title       string    `json:"title"`
	Message     string    `json:"message"`
	Type        string    `json:"notification_type"`
	IsRead      bool      `json:"is_read"`
	AlertID     uuid.UUID `json:"alert_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// UnreadCounts is the payload of the per-user unread count API.
type UnreadCounts struct {
	Unread   int `json:"unread_count"`
	Critical int `json:"critical_count"`
}
