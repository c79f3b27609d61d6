package alerting

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"inventory-monitor/internal/models"
)

// BuildNotifications computes the full recipient set of an alert. Tiers apply
// in order and a user already selected by an earlier tier is never selected
// again, so each recipient gets exactly one notification per alert:
//
//  1. every active admin, always;
//  2. the product's owning vendor, if any, always;
//  3. for high/critical severity, every remaining active admin-or-vendor user
//     as the urgent escalation tier.
//
// users must be the active admin-and-vendor set. Identity is by user id.
func BuildNotifications(alert models.Alert, product models.Product, users []models.User, now time.Time) []models.Notification {
	seen := make(map[int64]bool)
	var notifs []models.Notification

	add := func(recipientID int64, title, message, notifType string) {
		if seen[recipientID] {
			return
		}
		seen[recipientID] = true
		notifs = append(notifs, models.Notification{
			ID:          uuid.New(),
			RecipientID: recipientID,
			Title:       title,
			Message:     message,
			Type:        notifType,
			AlertID:     alert.ID,
			CreatedAt:   now,
		})
	}

	for _, u := range users {
		if u.Role == models.RoleAdmin {
			add(u.ID,
				fmt.Sprintf("Product Alert: %s", alert.AlertType),
				fmt.Sprintf("%s - Product: %s", alert.Message, product.Name),
				models.NotificationProductAlert)
		}
	}

	if product.VendorID != nil {
		add(*product.VendorID,
			fmt.Sprintf("Your Product Alert: %s", alert.AlertType),
			fmt.Sprintf("%s - Your product: %s", alert.Message, product.Name),
			models.NotificationProductAlert)
	}

	if alert.Severity.Urgent() {
		for _, u := range users {
			add(u.ID,
				fmt.Sprintf("URGENT: %s", alert.AlertType),
				fmt.Sprintf("%s - Product: %s", alert.Message, product.Name),
				models.NotificationUrgentAlert)
		}
	}

	return notifs
}
