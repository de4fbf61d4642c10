package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/monitoring"
	"github.com/alexnthnz/booking-notifications/internal/notification"
	"github.com/alexnthnz/booking-notifications/internal/queue"
)

// ErrMissingBookingID is returned for events whose booking carries no id.
// The duplicate guard is keyed by id, so such events cannot be dispatched.
var ErrMissingBookingID = errors.New("booking has no id")

// Guard suppresses duplicate confirmations for the same booking
type Guard interface {
	Acquire(ctx context.Context, variant booking.Variant, bookingID string) (bool, error)
	Release(ctx context.Context, variant booking.Variant, bookingID string) error
}

// OutcomeRecorder persists the per-recipient outcomes of a dispatch
type OutcomeRecorder interface {
	RecordOutcomes(ctx context.Context, variant booking.Variant, bookingID string, outcomes []notification.DeliveryOutcome) error
}

// Confirmer dispatches the confirmation for a decoded booking
type Confirmer interface {
	Confirm(ctx context.Context, b booking.Booking) notification.DispatchResult
}

// Worker turns booking confirmed events into notification dispatches
type Worker struct {
	confirmer Confirmer
	guard     Guard
	outcomes  OutcomeRecorder
	metrics   *monitoring.Metrics
	logger    *zap.Logger
}

// New creates a worker. guard, outcomes and metrics may be nil.
func New(confirmer Confirmer, guard Guard, outcomes OutcomeRecorder, metrics *monitoring.Metrics, logger *zap.Logger) *Worker {
	return &Worker{
		confirmer: confirmer,
		guard:     guard,
		outcomes:  outcomes,
		metrics:   metrics,
		logger:    logger,
	}
}

// Handle processes one event. It returns an error only when the event could
// not be dispatched at all; failed deliveries are recorded, not returned.
func (w *Worker) Handle(ctx context.Context, event queue.BookingConfirmedEvent) error {
	b, err := booking.Decode(event.Variant, event.Booking)
	if err != nil {
		return fmt.Errorf("failed to decode booking %s: %w", event.BookingID, err)
	}
	if err := booking.Validate(b); err != nil {
		return fmt.Errorf("booking %s: %w", event.BookingID, err)
	}

	bookingID := b.Common().ID
	if bookingID == "" {
		bookingID = event.BookingID
	}
	if bookingID == "" {
		return fmt.Errorf("event %s: %w", event.ID, ErrMissingBookingID)
	}

	logger := w.logger.With(
		zap.String("event_id", event.ID),
		zap.String("variant", string(event.Variant)),
		zap.String("booking_id", bookingID),
	)

	if w.guard != nil {
		acquired, err := w.guard.Acquire(ctx, event.Variant, bookingID)
		if err != nil {
			return err
		}
		if !acquired {
			logger.Info("Skipping duplicate booking confirmation")
			if w.metrics != nil {
				w.metrics.RecordDuplicate(string(event.Variant))
			}
			return nil
		}
	}

	start := time.Now()
	result := w.confirmer.Confirm(ctx, b)
	if w.metrics != nil {
		w.metrics.RecordDuration("handle_event", time.Since(start).Seconds())
	}

	if !result.Success {
		// nothing was sent, so a redelivery may try again
		if w.guard != nil {
			if err := w.guard.Release(context.WithoutCancel(ctx), event.Variant, bookingID); err != nil {
				logger.Error("Failed to release confirmation guard", zap.Error(err))
			}
		}
		return fmt.Errorf("confirmation not dispatched: %s", result.Error)
	}

	if w.outcomes != nil {
		if err := w.outcomes.RecordOutcomes(context.WithoutCancel(ctx), event.Variant, bookingID, result.Outcomes); err != nil {
			logger.Error("Failed to record delivery outcomes", zap.Error(err))
		}
	}

	logger.Info("Booking confirmed event processed",
		zap.Int("outcomes", len(result.Outcomes)),
		zap.Int("failed", len(result.Failed())))
	return nil
}
