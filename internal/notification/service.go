package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/monitoring"
)

// Service exposes one confirmation entrypoint per booking variant and layers
// logging and metrics over the dispatcher's outcomes.
type Service struct {
	dispatcher *Dispatcher
	metrics    *monitoring.Metrics
	logger     *zap.Logger
}

// NewService creates a new confirmation service. metrics may be nil.
func NewService(dispatcher *Dispatcher, metrics *monitoring.Metrics, logger *zap.Logger) *Service {
	return &Service{
		dispatcher: dispatcher,
		metrics:    metrics,
		logger:     logger,
	}
}

// SendHotelBookingConfirmation notifies the guest and the hotel owner
func (s *Service) SendHotelBookingConfirmation(ctx context.Context, b *booking.HotelBooking) DispatchResult {
	return s.Confirm(ctx, b)
}

// SendEventBookingConfirmation notifies the participant and the event instructors
func (s *Service) SendEventBookingConfirmation(ctx context.Context, b *booking.EventBooking) DispatchResult {
	return s.Confirm(ctx, b)
}

// SendSessionBookingConfirmation notifies the participant and the session instructor
func (s *Service) SendSessionBookingConfirmation(ctx context.Context, b *booking.SessionBooking) DispatchResult {
	return s.Confirm(ctx, b)
}

// SendItemBookingConfirmation notifies the customer and every item owner
func (s *Service) SendItemBookingConfirmation(ctx context.Context, b *booking.ItemBooking) DispatchResult {
	return s.Confirm(ctx, b)
}

// Confirm dispatches confirmations for any booking variant
func (s *Service) Confirm(ctx context.Context, b booking.Booking) DispatchResult {
	start := time.Now()

	var variant, bookingID string
	if booking.Validate(b) == nil {
		variant, bookingID = string(b.Variant()), b.Common().ID
	}

	result := s.dispatcher.Dispatch(ctx, b)

	if !result.Success {
		s.logger.Error("Booking confirmation dispatch failed",
			zap.String("variant", variant),
			zap.String("booking_id", bookingID),
			zap.String("error", result.Error),
		)
		s.record(variant, "failed", start, nil)
		return result
	}

	failed := result.Failed()
	for _, o := range failed {
		s.logger.Error("Booking notification delivery failed",
			zap.String("variant", variant),
			zap.String("booking_id", bookingID),
			zap.String("role", string(o.Recipient.Role)),
			zap.String("channel", string(o.Channel)),
			zap.String("target", o.Target),
			zap.String("error", o.Error),
		)
	}

	label := "success"
	if len(failed) > 0 {
		label = "partial"
	}
	s.record(variant, label, start, result.Outcomes)

	s.logger.Info("Booking confirmation dispatched",
		zap.String("variant", variant),
		zap.String("booking_id", bookingID),
		zap.Int("attempts", len(result.Outcomes)),
		zap.Int("failed", len(failed)),
	)
	return result
}

func (s *Service) record(variant, result string, start time.Time, outcomes []DeliveryOutcome) {
	if s.metrics == nil {
		return
	}
	if variant == "" {
		variant = "unknown"
	}
	s.metrics.RecordDispatch(variant, result, time.Since(start).Seconds())
	for _, o := range outcomes {
		if o.Success {
			s.metrics.RecordNotificationSent(string(o.Channel), string(o.Recipient.Role))
		} else {
			s.metrics.RecordNotificationFailed(string(o.Channel), string(o.Recipient.Role))
		}
	}
}
