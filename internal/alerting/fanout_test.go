package alerting

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inventory-monitor/internal/models"
)

var fanoutUsers = []models.User{
	{ID: 1, Role: models.RoleAdmin, IsActive: true},
	{ID: 2, Role: models.RoleAdmin, IsActive: true},
	{ID: 3, Role: models.RoleVendor, IsActive: true},
	{ID: 4, Role: models.RoleVendor, IsActive: true},
}

func byRecipient(notifs []models.Notification) map[int64]models.Notification {
	out := make(map[int64]models.Notification, len(notifs))
	for _, n := range notifs {
		out[n.RecipientID] = n
	}
	return out
}

func TestBuildNotificationsMediumSeverity(t *testing.T) {
	t.Parallel()

	vendorID := int64(3)
	alert := models.Alert{
		ID:        uuid.New(),
		AlertType: "humidity_issue",
		Severity:  models.SeverityMedium,
		Message:   "MEDIUM - Humidity issue: 75%",
	}
	product := models.Product{ID: 10, Name: "Camera", VendorID: &vendorID}

	notifs := BuildNotifications(alert, product, fanoutUsers, time.Now().UTC())

	// Two admins plus the owning vendor; the other vendor is not notified.
	require.Len(t, notifs, 3)
	got := byRecipient(notifs)

	admin := got[1]
	assert.Equal(t, "Product Alert: humidity_issue", admin.Title)
	assert.Equal(t, "MEDIUM - Humidity issue: 75% - Product: Camera", admin.Message)
	assert.Equal(t, models.NotificationProductAlert, admin.Type)
	assert.Equal(t, alert.ID, admin.AlertID)

	vendor := got[3]
	assert.Equal(t, "Your Product Alert: humidity_issue", vendor.Title)
	assert.Equal(t, "MEDIUM - Humidity issue: 75% - Your product: Camera", vendor.Message)
	assert.Equal(t, models.NotificationProductAlert, vendor.Type)

	_, other := got[4]
	assert.False(t, other)
}

func TestBuildNotificationsHighSeverityEscalates(t *testing.T) {
	t.Parallel()

	vendorID := int64(3)
	alert := models.Alert{
		ID:        uuid.New(),
		AlertType: "temperature_anomaly",
		Severity:  models.SeverityHigh,
		Message:   "HIGH - Temperature anomaly detected: 29°C",
	}
	product := models.Product{ID: 10, Name: "Milk", VendorID: &vendorID}

	notifs := BuildNotifications(alert, product, fanoutUsers, time.Now().UTC())

	// Admins and owning vendor keep their standard notification; only the
	// remaining vendor lands in the urgent tier. One notification per user.
	require.Len(t, notifs, 4)
	got := byRecipient(notifs)

	assert.Equal(t, models.NotificationProductAlert, got[1].Type)
	assert.Equal(t, models.NotificationProductAlert, got[2].Type)
	assert.Equal(t, models.NotificationProductAlert, got[3].Type)

	urgent := got[4]
	assert.Equal(t, models.NotificationUrgentAlert, urgent.Type)
	assert.Equal(t, "URGENT: temperature_anomaly", urgent.Title)
	assert.Equal(t, "HIGH - Temperature anomaly detected: 29°C - Product: Milk", urgent.Message)
}

func TestBuildNotificationsNoVendor(t *testing.T) {
	t.Parallel()

	alert := models.Alert{ID: uuid.New(), AlertType: "stock_low", Severity: models.SeverityMedium, Message: "Low stock: 2 units remaining (threshold: 5)"}
	product := models.Product{ID: 11, Name: "Bolt"}

	notifs := BuildNotifications(alert, product, fanoutUsers, time.Now().UTC())

	require.Len(t, notifs, 2)
	for _, n := range notifs {
		assert.Contains(t, []int64{1, 2}, n.RecipientID)
	}
}

func TestBuildNotificationsCriticalNotifiesEveryone(t *testing.T) {
	t.Parallel()

	alert := models.Alert{ID: uuid.New(), AlertType: "vibration_alert", Severity: models.SeverityCritical, Message: "CRITICAL - Unusual vibration detected: 8"}
	product := models.Product{ID: 12, Name: "Vase"}

	notifs := BuildNotifications(alert, product, fanoutUsers, time.Now().UTC())

	require.Len(t, notifs, 4)
	got := byRecipient(notifs)
	assert.Equal(t, models.NotificationUrgentAlert, got[3].Type)
	assert.Equal(t, models.NotificationUrgentAlert, got[4].Type)
}

func TestFanOutRetryDoesNotDoubleNotify(t *testing.T) {
	t.Parallel()

	vendorID := int64(3)
	alert := models.Alert{
		ID:        uuid.New(),
		AlertType: "temperature_anomaly",
		Severity:  models.SeverityHigh,
		Message:   "HIGH - Temperature anomaly detected: 29°C",
	}
	product := models.Product{ID: 10, Name: "Milk", VendorID: &vendorID}
	now := time.Now().UTC()

	// Persistence keyed on (alert_id, recipient_id); a conflicting insert is
	// skipped, mirroring the notifications unique index.
	type dedupKey struct {
		alert     uuid.UUID
		recipient int64
	}
	stored := make(map[dedupKey]models.Notification)
	persist := func(notifs []models.Notification) {
		for _, n := range notifs {
			k := dedupKey{alert: n.AlertID, recipient: n.RecipientID}
			if _, ok := stored[k]; ok {
				continue
			}
			stored[k] = n
		}
	}

	first := BuildNotifications(alert, product, fanoutUsers, now)
	persist(first)
	require.Len(t, stored, len(first))

	// A retried fan-out mints new notification ids but targets the same
	// recipients, so the conflict key collapses every row.
	retried := BuildNotifications(alert, product, fanoutUsers, now)
	require.Len(t, retried, len(first))
	persist(retried)

	assert.Len(t, stored, len(first))
	for _, n := range first {
		kept := stored[dedupKey{alert: n.AlertID, recipient: n.RecipientID}]
		assert.Equal(t, n.ID, kept.ID, "retry must not replace the original row")
	}
}

func TestBuildNotificationsVendorIsAlsoAdmin(t *testing.T) {
	t.Parallel()

	vendorID := int64(1) // product owned by an admin account
	alert := models.Alert{ID: uuid.New(), AlertType: "pressure_anomaly", Severity: models.SeverityHigh, Message: "HIGH - Pressure anomaly: 120"}
	product := models.Product{ID: 13, Name: "Tank", VendorID: &vendorID}

	notifs := BuildNotifications(alert, product, fanoutUsers, time.Now().UTC())

	require.Len(t, notifs, 4)
	got := byRecipient(notifs)
	// The admin tier claims user 1 first; the vendor tier must not add a second row.
	assert.Equal(t, "Product Alert: pressure_anomaly", got[1].Title)
}
