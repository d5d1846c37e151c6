package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"tutor-service/pkg/config"
)

// ConsoleMailer logs outbound messages instead of delivering them and keeps
// a copy of everything sent. Used in development and in tests.
type ConsoleMailer struct {
	log *zap.Logger

	mu   sync.Mutex
	sent []Message
}

var _ Mailer = (*ConsoleMailer)(nil)

// NewConsoleMailer builds the console backend.
func NewConsoleMailer(_ *config.MailConfig, log *zap.Logger) *ConsoleMailer {
	return &ConsoleMailer{log: log}
}

func (m *ConsoleMailer) Send(_ context.Context, msg *Message) error {
	names := make([]string, 0, len(msg.Attachments))
	for _, at := range msg.Attachments {
		names = append(names, at.Filename)
	}
	m.log.Info("Email (console backend)",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names))

	m.mu.Lock()
	m.sent = append(m.sent, *msg)
	m.mu.Unlock()
	return nil
}

// Sent returns a copy of every message sent through this backend.
func (m *ConsoleMailer) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}

// Reset drops the recorded messages.
func (m *ConsoleMailer) Reset() {
	m.mu.Lock()
	m.sent = nil
	m.mu.Unlock()
}
