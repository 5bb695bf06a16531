package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"taskmanager/internal/logging"
)

// Message is a plain text email.
type Message struct {
	To      string
	ToName  string
	Subject string
	Text    string
}

// Sender delivers a single message to the mail provider.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender creates a sender using apiKey and a fixed from address.
func NewSendGridSender(apiKey, fromAddress, fromName string) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromAddress),
	}
}

// Send posts the message and treats any non-2xx answer as a failure.
func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	to := mail.NewEmail(msg.ToName, msg.To)
	email := mail.NewSingleEmailPlainText(s.from, msg.Subject, to, msg.Text)

	resp, err := s.client.SendWithContext(ctx, email)
	if err != nil {
		return fmt.Errorf("sendgrid: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("sendgrid: unexpected status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// LogSender writes messages to the log instead of sending them.
type LogSender struct {
	Logger logging.Logger
}

func (s LogSender) Send(ctx context.Context, msg Message) error {
	s.Logger.Info(ctx, "mail suppressed", "to", msg.To, "subject", msg.Subject)
	return nil
}
