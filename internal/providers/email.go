package providers

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
	"time"

	"inventory-monitor/internal/logging"
	"inventory-monitor/internal/models"
)

// Email sends critical alerts to a fixed operator recipient list over SMTP.
type Email struct {
	server     string
	port       int
	username   string
	password   string
	recipients []string
	logger     *logging.Logger
}

func NewEmail(server string, port int, username, password string, recipients []string, logger *logging.Logger) *Email {
	return &Email{
		server:     server,
		port:       port,
		username:   username,
		password:   password,
		recipients: recipients,
		logger:     logger,
	}
}

func (e *Email) Name() string { return "email" }

func (e *Email) Send(ctx context.Context, alert models.Alert, product models.Product) error {
	if e.server == "" || len(e.recipients) == 0 {
		return fmt.Errorf("email channel not configured")
	}

	subject := fmt.Sprintf("Critical Alert: %s", alert.AlertType)
	body := fmt.Sprintf(
		"%s\r\n\r\nProduct: %s (SKU %s)\r\nAlert type: %s\r\nDetected by: %s\r\nDetected at: %s\r\n",
		alert.Message,
		product.Name,
		product.SKU,
		alert.AlertType,
		alert.DetectedBy,
		alert.CreatedAt.Format(time.RFC3339),
	)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		e.username,
		strings.Join(e.recipients, ", "),
		subject,
		body,
	))

	addr := fmt.Sprintf("%s:%d", e.server, e.port)
	auth := smtp.PlainAuth("", e.username, e.password, e.server)

	return retry(e.logger, 3, time.Second, func() error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := smtp.SendMail(addr, auth, e.username, e.recipients, msg); err != nil {
			return fmt.Errorf("failed to send alert email: %w", err)
		}
		return nil
	})
}
