package notification

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/alexnthnz/booking-notifications/internal/booking"
)

const (
	defaultCallTimeout = 15 * time.Second
	defaultConcurrency = 4
	summaryTitle       = "Booking confirmed"
)

// DispatcherConfig bounds external calls made during a dispatch
type DispatcherConfig struct {
	// Timeout applies to each email send, store write and text notification
	Timeout     time.Duration
	Concurrency int
}

// Dispatcher delivers booking confirmations to every resolved recipient
type Dispatcher struct {
	renderer  *Renderer
	email     EmailTransport
	messages  MessageStore
	notifiers []TextNotifier
	timeout   time.Duration
	limit     int
	now       func() time.Time
}

// NewDispatcher creates a dispatcher. messages and notifiers may be nil.
func NewDispatcher(renderer *Renderer, email EmailTransport, messages MessageStore, notifiers []TextNotifier, cfg DispatcherConfig) *Dispatcher {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}
	limit := cfg.Concurrency
	if limit <= 0 {
		limit = defaultConcurrency
	}
	return &Dispatcher{
		renderer:  renderer,
		email:     email,
		messages:  messages,
		notifiers: notifiers,
		timeout:   timeout,
		limit:     limit,
		now:       time.Now,
	}
}

// Dispatch resolves recipients and attempts every delivery once. Only a
// resolution failure makes the aggregate result unsuccessful; delivery
// failures are reported per recipient in the outcomes.
func (d *Dispatcher) Dispatch(ctx context.Context, b booking.Booking) DispatchResult {
	recipients, err := ResolveRecipients(b)
	if err != nil {
		return DispatchResult{Success: false, Error: err.Error()}
	}

	customer := recipients[0]
	results := make([][]DeliveryOutcome, len(recipients))

	var g errgroup.Group
	g.SetLimit(d.limit)
	for i, r := range recipients {
		g.Go(func() error {
			results[i] = d.deliver(ctx, b, customer, r)
			return nil
		})
	}
	_ = g.Wait()

	var outcomes []DeliveryOutcome
	for _, res := range results {
		outcomes = append(outcomes, res...)
	}
	return DispatchResult{Success: true, Outcomes: outcomes}
}

// deliver runs every channel for one recipient. Email goes first; the chat
// and mirror channels are attempted whatever its result, including a panic.
func (d *Dispatcher) deliver(ctx context.Context, b booking.Booking, customer, r Recipient) (outcomes []DeliveryOutcome) {
	defer func() {
		if p := recover(); p != nil {
			outcomes = append(outcomes, DeliveryOutcome{
				Recipient: r,
				Channel:   ChannelEmail,
				Error:     fmt.Sprintf("panic: %v", p),
			})
		}
	}()

	if r.Deliverable() && d.email != nil {
		o, _ := attempt(r, ChannelEmail, joinTargets(r.Emails()), func() (DeliveryOutcome, bool) {
			return d.sendEmail(ctx, b, r), true
		})
		outcomes = append(outcomes, o)
	}

	if r.Role == RoleCustomer {
		for _, n := range d.notifiers {
			if o, ok := attempt(r, n.Channel(), "", func() (DeliveryOutcome, bool) {
				return d.sendText(ctx, b, r, n)
			}); ok {
				outcomes = append(outcomes, o)
			}
		}
		return outcomes
	}

	customerID := customer.Primary().UserID
	if d.messages == nil || customerID == "" {
		return outcomes
	}
	for _, c := range r.Contacts {
		if c.UserID == "" {
			continue
		}
		o, _ := attempt(r, ChannelChat, customerID, func() (DeliveryOutcome, bool) {
			return d.postChat(ctx, b, r, c.UserID, customerID), true
		})
		outcomes = append(outcomes, o)
	}
	return outcomes
}

// attempt runs one channel delivery and turns a panic into a failed outcome
func attempt(r Recipient, channel Channel, target string, send func() (DeliveryOutcome, bool)) (o DeliveryOutcome, ok bool) {
	defer func() {
		if p := recover(); p != nil {
			o = DeliveryOutcome{
				Recipient: r,
				Channel:   channel,
				Target:    target,
				Error:     fmt.Sprintf("panic: %v", p),
			}
			ok = true
		}
	}()
	return send()
}

func (d *Dispatcher) sendEmail(ctx context.Context, b booking.Booking, r Recipient) DeliveryOutcome {
	to := r.Emails()
	outcome := DeliveryOutcome{Recipient: r, Channel: ChannelEmail, Target: joinTargets(to)}

	rendered, err := d.renderer.RenderEmail(b, r)
	if err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	if rendered.Text == "" {
		rendered.Text = PlainText(rendered.HTML)
	}

	if err := ctx.Err(); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := d.email.Send(callCtx, Email{
		To:      to,
		Subject: rendered.Subject,
		HTML:    rendered.HTML,
		Text:    rendered.Text,
	})
	if err != nil {
		outcome.Error = fmt.Sprintf("email transport: %v", err)
		return outcome
	}
	outcome.Success = true
	outcome.ProviderMessageID = id
	return outcome
}

func (d *Dispatcher) postChat(ctx context.Context, b booking.Booking, r Recipient, from, to string) DeliveryOutcome {
	outcome := DeliveryOutcome{Recipient: r, Channel: ChannelChat, Target: to}

	if err := ctx.Err(); err != nil {
		outcome.Error = err.Error()
		return outcome
	}
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	stored, err := d.messages.Create(callCtx, ChatMessage{
		From:        from,
		To:          to,
		Content:     d.renderer.RenderChatMessage(b, r.Role, from),
		Timestamp:   d.now(),
		Attachments: []string{},
		IsRead:      false,
	})
	if err != nil {
		outcome.Error = fmt.Sprintf("message store: %v", err)
		return outcome
	}
	outcome.Success = true
	if stored != nil {
		outcome.ProviderMessageID = stored.ID
	}
	return outcome
}

// sendText mirrors the booking summary to the customer. It reports false
// when the customer has no address for the notifier's channel.
func (d *Dispatcher) sendText(ctx context.Context, b booking.Booking, r Recipient, n TextNotifier) (DeliveryOutcome, bool) {
	address := n.Address(b.Common().User)
	if address == "" {
		return DeliveryOutcome{}, false
	}
	outcome := DeliveryOutcome{Recipient: r, Channel: n.Channel(), Target: address}

	if err := ctx.Err(); err != nil {
		outcome.Error = err.Error()
		return outcome, true
	}
	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	id, err := n.SendText(callCtx, address, summaryTitle, d.renderer.RenderTextSummary(b))
	if err != nil {
		outcome.Error = fmt.Sprintf("%s notifier: %v", n.Channel(), err)
		return outcome, true
	}
	outcome.Success = true
	outcome.ProviderMessageID = id
	return outcome, true
}
