// Package mailer sends transactional email with binary attachments. Sending
// is synchronous: callers that gate a state transition on delivery (invoice
// DRAFT -> SENT) must see the failure before persisting anything.
package mailer

import (
	"context"

	"go.uber.org/zap"

	"tutor-service/pkg/config"
)

// Attachment is a binary file attached to an outbound message.
type Attachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

// Message is one outbound email.
type Message struct {
	ToName      string
	ToAddress   string
	FromName    string
	Subject     string
	HTML        string
	Attachments []Attachment
}

// Mailer is any backend that can deliver a message.
type Mailer interface {
	Send(ctx context.Context, msg *Message) error
}

var current Mailer

// Init selects the backend from configuration: sendgrid when an API key is
// configured, console output otherwise.
func Init(cfg *config.Config, log *zap.Logger) {
	if cfg.Mail.SendgridAPIKey != "" {
		current = NewSendgridMailer(&cfg.Mail, log)
		log.Info("Mailer initialized", zap.String("backend", "sendgrid"))
		return
	}
	current = NewConsoleMailer(&cfg.Mail, log)
	log.Info("Mailer initialized", zap.String("backend", "console"))
}

// Default returns the configured backend.
func Default() Mailer {
	if current == nil {
		current = NewConsoleMailer(&config.MailConfig{}, zap.L())
	}
	return current
}

// Use swaps the backend. Used by tests to install a capturing mailer.
func Use(m Mailer) {
	current = m
}
