package channels

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/alexnthnz/booking-notifications/internal/config"
	"github.com/alexnthnz/booking-notifications/internal/notification"
)

// SendGridTransport sends booking emails through the SendGrid v3 API
type SendGridTransport struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridTransport creates a new SendGrid transport
func NewSendGridTransport(cfg config.MailConfig) *SendGridTransport {
	return &SendGridTransport{
		client: sendgrid.NewSendClient(cfg.SendGrid.APIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// buildMessage addresses every recipient in a single personalization so a
// batched send produces one message
func (t *SendGridTransport) buildMessage(email notification.Email) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(t.from)
	message.Subject = email.Subject

	p := mail.NewPersonalization()
	for _, to := range email.To {
		p.AddTos(mail.NewEmail("", to))
	}
	message.AddPersonalizations(p)

	if email.Text != "" {
		message.AddContent(mail.NewContent("text/plain", email.Text))
	}
	message.AddContent(mail.NewContent("text/html", email.HTML))
	return message
}

// Send sends an email and returns the SendGrid message id
func (t *SendGridTransport) Send(ctx context.Context, email notification.Email) (string, error) {
	if len(email.To) == 0 {
		return "", fmt.Errorf("email has no recipients")
	}

	response, err := t.client.SendWithContext(ctx, t.buildMessage(email))
	if err != nil {
		return "", fmt.Errorf("sendgrid send failed: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		var messageID string
		if msgIDs, ok := response.Headers["X-Message-Id"]; ok && len(msgIDs) > 0 {
			messageID = msgIDs[0]
		}
		return messageID, nil
	}

	return "", fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
}
