package channels

import (
	"context"
	"fmt"

	"github.com/alexnthnz/booking-notifications/internal/config"
	"github.com/alexnthnz/booking-notifications/internal/notification"
)

// NewEmailTransport builds the transport selected by mail.provider
func NewEmailTransport(cfg config.MailConfig) (notification.EmailTransport, error) {
	switch cfg.Provider {
	case "sendgrid":
		return NewSendGridTransport(cfg), nil
	case "smtp":
		return NewSMTPTransport(cfg), nil
	}
	return nil, fmt.Errorf("unsupported mail provider %q", cfg.Provider)
}

// NewTextNotifiers builds the enabled SMS and push mirror channels
func NewTextNotifiers(ctx context.Context, cfg config.ChannelsConfig) ([]notification.TextNotifier, error) {
	var notifiers []notification.TextNotifier

	if cfg.SMSEnabled {
		notifiers = append(notifiers, NewSMSChannel(cfg.Twilio))
	}

	if cfg.PushEnabled {
		push, err := NewPushChannel(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		notifiers = append(notifiers, push)
	}

	return notifiers, nil
}
