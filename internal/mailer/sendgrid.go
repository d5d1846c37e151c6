package mailer

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"tutor-service/pkg/config"
)

type sendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
	log    *zap.Logger
}

var _ Mailer = (*sendgridMailer)(nil)

// NewSendgridMailer builds the sendgrid backend from mail configuration.
func NewSendgridMailer(cfg *config.MailConfig, log *zap.Logger) Mailer {
	return &sendgridMailer{
		client: sendgrid.NewSendClient(cfg.SendgridAPIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
		log:    log,
	}
}

func (m *sendgridMailer) Send(ctx context.Context, msg *Message) error {
	from := m.from
	if msg.FromName != "" {
		from = sgmail.NewEmail(msg.FromName, m.from.Address)
	}

	p := sgmail.NewPersonalization()
	p.Subject = msg.Subject
	p.AddTos(sgmail.NewEmail(msg.ToName, msg.ToAddress))

	v3 := sgmail.NewV3Mail()
	v3.SetFrom(from)
	v3.AddPersonalizations(p)
	v3.AddContent(sgmail.NewContent("text/html", msg.HTML))

	for _, at := range msg.Attachments {
		a := sgmail.NewAttachment()
		a.SetFilename(at.Filename)
		a.SetType(at.ContentType)
		a.SetDisposition("attachment")
		a.SetContent(base64.StdEncoding.EncodeToString(at.Content))
		v3.AddAttachment(a)
	}

	resp, err := m.client.SendWithContext(ctx, v3)
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	if resp.StatusCode >= 400 {
		m.log.Error("Sendgrid rejected message",
			zap.Int("status", resp.StatusCode),
			zap.String("to", msg.ToAddress),
			zap.String("body", resp.Body))
		return fmt.Errorf("sending email: sendgrid returned status %d", resp.StatusCode)
	}

	m.log.Info("Email sent",
		zap.String("to", msg.ToAddress),
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)))
	return nil
}
