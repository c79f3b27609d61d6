// Package alerting converts scorer findings into persisted alerts and fans
// each alert out to its role-based notification recipients.
package alerting

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/metrics"
	"inventory-monitor/internal/models"
)

// Store is the persistence surface the factory needs.
type Store interface {
	GetProductByID(ctx context.Context, id int64) (models.Product, error)
	GetActiveUsersByRoles(ctx context.Context, roles ...string) ([]models.User, error)
	CreateAlertWithNotifications(ctx context.Context, alert models.Alert, notifs []models.Notification) error
}

// Pusher delivers a notification to a connected recipient, best effort.
type Pusher interface {
	Push(recipientID int64, n models.Notification)
}

// Channel is an out-of-band delivery side channel for critical alerts.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert models.Alert, product models.Product) error
}

// Service is the alert factory.
type Service struct {
	store    Store
	logger   *logging.Logger
	pusher   Pusher
	channels []Channel
}

func New(store Store, logger *logging.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// WithPusher attaches a live-push sink for created notifications.
func (s *Service) WithPusher(p Pusher) *Service {
	s.pusher = p
	return s
}

// WithChannels attaches side channels used for critical alerts.
func (s *Service) WithChannels(chs ...Channel) *Service {
	s.channels = append(s.channels, chs...)
	return s
}

// Raise persists one alert for the finding and creates its notifications
// inside a single transaction; a fan-out failure rolls the alert back so no
// alert is ever left without its mandatory recipients. Side channels and live
// push run after commit and never affect the outcome.
func (s *Service) Raise(ctx context.Context, f models.Finding) (models.Alert, error) {
	product, err := s.store.GetProductByID(ctx, f.ProductID)
	if err != nil {
		return models.Alert{}, fmt.Errorf("failed to resolve product for finding: %w", err)
	}

	users, err := s.store.GetActiveUsersByRoles(ctx, models.RoleAdmin, models.RoleVendor)
	if err != nil {
		return models.Alert{}, fmt.Errorf("failed to load alert audience: %w", err)
	}

	now := time.Now().UTC()
	alert := models.Alert{
		ID:         uuid.New(),
		ProductID:  f.ProductID,
		AlertType:  f.AlertType,
		Severity:   f.Severity,
		Message:    f.Message,
		DetectedBy: f.DetectedBy,
		CreatedAt:  now,
	}
	notifs := BuildNotifications(alert, product, users, now)

	if err := s.store.CreateAlertWithNotifications(ctx, alert, notifs); err != nil {
		return models.Alert{}, fmt.Errorf("failed to persist alert: %w", err)
	}

	metrics.AlertsCreatedTotal.WithLabelValues(string(alert.Severity)).Inc()
	for _, n := range notifs {
		metrics.NotificationsCreatedTotal.WithLabelValues(n.Type).Inc()
		if s.pusher != nil {
			s.pusher.Push(n.RecipientID, n)
		}
	}
	s.logger.Infof("Alert %s (%s/%s) raised for product %d, %d notifications",
		alert.ID, alert.AlertType, alert.Severity, alert.ProductID, len(notifs))

	if alert.Severity == models.SeverityCritical {
		for _, ch := range s.channels {
			if err := ch.Send(ctx, alert, product); err != nil {
				s.logger.Errorf("Side channel %s failed for alert %s: %v", ch.Name(), alert.ID, err)
			}
		}
	}

	return alert, nil
}
