package notification

import (
	"context"
	"strings"
	"time"

	"github.com/alexnthnz/booking-notifications/internal/booking"
)

// Role is the relationship of a recipient to a booking
type Role string

const (
	RoleCustomer   Role = "customer"
	RoleHotelOwner Role = "hotel_owner"
	RoleInstructor Role = "instructor"
	RoleItemOwner  Role = "item_owner"
)

// Channel is a delivery medium
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelChat  Channel = "chat"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
)

// Contact identifies a person by email and/or internal user id
type Contact struct {
	UserID string `json:"user_id,omitempty"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
}

// Recipient is a resolved party that must be notified about a booking.
// Event instructors are batched into one recipient with several contacts;
// item owners carry the line items they own.
type Recipient struct {
	Role     Role               `json:"role"`
	Variant  booking.Variant    `json:"variant"`
	Contacts []Contact          `json:"contacts"`
	Items    []booking.LineItem `json:"items,omitempty"`
}

// Emails returns the non-empty email addresses of the recipient
func (r Recipient) Emails() []string {
	var emails []string
	for _, c := range r.Contacts {
		if c.Email != "" {
			emails = append(emails, c.Email)
		}
	}
	return emails
}

// Deliverable reports whether the recipient can be emailed
func (r Recipient) Deliverable() bool {
	return len(r.Emails()) > 0
}

// Primary returns the first contact of the recipient
func (r Recipient) Primary() Contact {
	if len(r.Contacts) == 0 {
		return Contact{}
	}
	return r.Contacts[0]
}

// RenderedEmail is the content of a single email
type RenderedEmail struct {
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

// Email is the payload handed to an EmailTransport
type Email struct {
	To      []string
	Subject string
	HTML    string
	Text    string
}

// ChatMessage is an automated in-app message written to the message store
type ChatMessage struct {
	ID          string    `json:"id"`
	From        string    `json:"from"`
	To          string    `json:"to"`
	Content     string    `json:"content"`
	Timestamp   time.Time `json:"timestamp"`
	Attachments []string  `json:"attachments"`
	IsRead      bool      `json:"is_read"`
}

// DeliveryOutcome is the result of one delivery attempt
type DeliveryOutcome struct {
	Recipient         Recipient `json:"recipient"`
	Channel           Channel   `json:"channel"`
	Target            string    `json:"target"`
	Success           bool      `json:"success"`
	Error             string    `json:"error,omitempty"`
	ProviderMessageID string    `json:"provider_message_id,omitempty"`
}

// DispatchResult is the aggregate result of one dispatch
type DispatchResult struct {
	Success  bool              `json:"success"`
	Error    string            `json:"error,omitempty"`
	Outcomes []DeliveryOutcome `json:"outcomes,omitempty"`
}

// Failed returns the unsuccessful outcomes
func (r DispatchResult) Failed() []DeliveryOutcome {
	var failed []DeliveryOutcome
	for _, o := range r.Outcomes {
		if !o.Success {
			failed = append(failed, o)
		}
	}
	return failed
}

// EmailTransport sends transactional email and returns the provider message id
type EmailTransport interface {
	Send(ctx context.Context, email Email) (string, error)
}

// MessageStore persists in-app chat messages
type MessageStore interface {
	Create(ctx context.Context, msg ChatMessage) (*ChatMessage, error)
}

// TextNotifier delivers a short text to a booking user over SMS, push, etc.
type TextNotifier interface {
	Channel() Channel
	Address(user *booking.User) string
	SendText(ctx context.Context, to, title, body string) (string, error)
}

func joinTargets(targets []string) string {
	return strings.Join(targets, ",")
}
