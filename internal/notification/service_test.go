package notification

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/monitoring"
)

func TestServiceEntrypoints(t *testing.T) {
	transport := &fakeTransport{}
	svc := NewService(newTestDispatcher(transport, &fakeStore{}), nil, zap.NewNop())
	ctx := context.Background()

	assert.True(t, svc.SendHotelBookingConfirmation(ctx, hotelBooking()).Success)
	assert.True(t, svc.SendEventBookingConfirmation(ctx, eventBooking()).Success)
	assert.True(t, svc.SendSessionBookingConfirmation(ctx, sessionBooking()).Success)
	assert.True(t, svc.SendItemBookingConfirmation(ctx, itemBooking()).Success)

	// 2 hotel + 2 event + 2 session + 2 item
	assert.Len(t, transport.sent, 8)
}

func TestServiceNilBooking(t *testing.T) {
	svc := NewService(newTestDispatcher(&fakeTransport{}, nil), nil, zap.NewNop())

	var result DispatchResult
	require.NotPanics(t, func() {
		result = svc.SendHotelBookingConfirmation(context.Background(), nil)
	})
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
}

func TestServiceLogsAndCountsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := monitoring.NewMetrics()
	transport := &fakeTransport{failOn: map[string]bool{"b@x.com": true}}
	svc := NewService(newTestDispatcher(transport, &fakeStore{}), metrics, zap.New(core))

	result := svc.SendSessionBookingConfirmation(context.Background(), sessionBooking())
	require.True(t, result.Success)
	require.Len(t, result.Failed(), 1)

	failures := logs.FilterMessage("Booking notification delivery failed").All()
	require.Len(t, failures, 1)
	fields := failures[0].ContextMap()
	assert.Equal(t, "instructor", fields["role"])
	assert.Equal(t, "email", fields["channel"])
	assert.Equal(t, "b@x.com", fields["target"])
	assert.Equal(t, "SB-1", fields["booking_id"])

	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dispatches.WithLabelValues("session", "partial")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsFailed.WithLabelValues("email", "instructor")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("email", "customer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.NotificationsSent.WithLabelValues("chat", "instructor")))
}

func TestServiceResolutionFailureIsLogged(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	metrics := monitoring.NewMetrics()
	svc := NewService(newTestDispatcher(&fakeTransport{}, nil), metrics, zap.New(core))

	b := &booking.ItemBooking{}
	result := svc.SendItemBookingConfirmation(context.Background(), b)

	assert.False(t, result.Success)
	assert.Equal(t, 1, logs.FilterMessage("Booking confirmation dispatch failed").Len())
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Dispatches.WithLabelValues("unknown", "failed")))
}
