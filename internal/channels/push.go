package channels

import (
	"context"
	"fmt"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/config"
	"github.com/alexnthnz/booking-notifications/internal/notification"
)

// messageSender is the subset of the FCM client used by PushChannel
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// PushChannel mirrors booking summaries to the customer's device using
// Firebase Cloud Messaging
type PushChannel struct {
	client messageSender
}

// NewPushChannel creates a new push notification channel
func NewPushChannel(ctx context.Context, cfg config.FirebaseConfig) (*PushChannel, error) {
	// Check if credentials file exists
	if _, err := os.Stat(cfg.CredentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", cfg.CredentialsPath)
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get Firebase messaging client: %w", err)
	}

	return &PushChannel{client: client}, nil
}

// Channel returns the channel type
func (p *PushChannel) Channel() notification.Channel {
	return notification.ChannelPush
}

// Address returns the user's FCM registration token
func (p *PushChannel) Address(user *booking.User) string {
	if user == nil {
		return ""
	}
	return user.PushToken
}

// SendText sends a push notification and returns the FCM message name
func (p *PushChannel) SendText(ctx context.Context, to, title, body string) (string, error) {
	message := &messaging.Message{
		Token: to,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type": "booking_confirmation",
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority": "10",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Alert: &messaging.ApsAlert{
						Title: title,
						Body:  body,
					},
					Sound: "default",
				},
			},
		},
	}

	response, err := p.client.Send(ctx, message)
	if err != nil {
		return "", fmt.Errorf("fcm send failed: %w", err)
	}
	return response, nil
}
