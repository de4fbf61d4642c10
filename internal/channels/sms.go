package channels

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/config"
	"github.com/alexnthnz/booking-notifications/internal/notification"
)

const twilioBaseURL = "https://api.twilio.com"

// SMSChannel mirrors booking summaries to the customer's phone using Twilio
type SMSChannel struct {
	config  config.TwilioConfig
	client  *http.Client
	baseURL string
}

// NewSMSChannel creates a new SMS channel
func NewSMSChannel(cfg config.TwilioConfig) *SMSChannel {
	return &SMSChannel{
		config:  cfg,
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: twilioBaseURL,
	}
}

// TwilioResponse represents the response from Twilio API
type TwilioResponse struct {
	SID          string  `json:"sid"`
	Status       string  `json:"status"`
	ErrorCode    *int    `json:"error_code,omitempty"`
	ErrorMessage *string `json:"error_message,omitempty"`
	Message      string  `json:"message,omitempty"`
}

// Channel returns the channel type
func (s *SMSChannel) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Address returns the user's phone number
func (s *SMSChannel) Address(user *booking.User) string {
	if user == nil {
		return ""
	}
	return user.Phone
}

// SendText sends an SMS and returns the Twilio message SID. SMS has no
// title so only body is sent.
func (s *SMSChannel) SendText(ctx context.Context, to, _, body string) (string, error) {
	data := url.Values{}
	data.Set("To", to)
	data.Set("From", s.config.FromNumber)
	data.Set("Body", body)

	twilioURL := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", s.baseURL, s.config.AccountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, twilioURL, strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.config.AccountSID, s.config.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("twilio request failed: %w", err)
	}
	defer resp.Body.Close()

	var twilioResp TwilioResponse
	if err := json.NewDecoder(resp.Body).Decode(&twilioResp); err != nil {
		return "", fmt.Errorf("failed to parse Twilio response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return twilioResp.SID, nil
	}

	errorMsg := "Unknown Twilio error"
	switch {
	case twilioResp.ErrorMessage != nil:
		errorMsg = *twilioResp.ErrorMessage
	case twilioResp.Message != "":
		errorMsg = twilioResp.Message
	}
	return "", fmt.Errorf("twilio error (status %d): %s", resp.StatusCode, errorMsg)
}
