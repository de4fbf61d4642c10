package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/monitoring"
	"github.com/alexnthnz/booking-notifications/internal/notification"
	"github.com/alexnthnz/booking-notifications/internal/queue"
)

type fakeConfirmer struct {
	result notification.DispatchResult
	calls  []booking.Booking
}

func (f *fakeConfirmer) Confirm(_ context.Context, b booking.Booking) notification.DispatchResult {
	f.calls = append(f.calls, b)
	return f.result
}

type fakeGuard struct {
	held       map[string]bool
	released   []string
	acquireErr error
}

func newFakeGuard() *fakeGuard {
	return &fakeGuard{held: map[string]bool{}}
}

func (g *fakeGuard) Acquire(_ context.Context, variant booking.Variant, id string) (bool, error) {
	if g.acquireErr != nil {
		return false, g.acquireErr
	}
	key := string(variant) + ":" + id
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *fakeGuard) Release(_ context.Context, variant booking.Variant, id string) error {
	key := string(variant) + ":" + id
	delete(g.held, key)
	g.released = append(g.released, key)
	return nil
}

type fakeRecorder struct {
	recorded map[string][]notification.DeliveryOutcome
}

func (r *fakeRecorder) RecordOutcomes(_ context.Context, _ booking.Variant, id string, outcomes []notification.DeliveryOutcome) error {
	if r.recorded == nil {
		r.recorded = map[string][]notification.DeliveryOutcome{}
	}
	r.recorded[id] = outcomes
	return nil
}

func hotelEvent(t *testing.T) queue.BookingConfirmedEvent {
	t.Helper()
	payload, err := json.Marshal(&booking.HotelBooking{
		Base:  booking.Base{ID: "HB-1", User: &booking.User{ID: "u1", Name: "Alice", Email: "alice@x.com"}},
		Hotel: &booking.Hotel{ID: "h1", Name: "Seaview"},
	})
	require.NoError(t, err)
	return queue.NewBookingConfirmedEvent(booking.VariantHotel, "HB-1", payload)
}

func successResult() notification.DispatchResult {
	return notification.DispatchResult{
		Success: true,
		Outcomes: []notification.DeliveryOutcome{
			{Channel: notification.ChannelEmail, Target: "alice@x.com", Success: true},
		},
	}
}

func TestHandleDispatchesAndRecords(t *testing.T) {
	confirmer := &fakeConfirmer{result: successResult()}
	guard := newFakeGuard()
	recorder := &fakeRecorder{}
	w := New(confirmer, guard, recorder, nil, zap.NewNop())

	require.NoError(t, w.Handle(context.Background(), hotelEvent(t)))

	require.Len(t, confirmer.calls, 1)
	hb, ok := confirmer.calls[0].(*booking.HotelBooking)
	require.True(t, ok)
	assert.Equal(t, "Seaview", hb.Hotel.Name)
	assert.Len(t, recorder.recorded["HB-1"], 1)
	assert.True(t, guard.held["hotel:HB-1"])
}

func TestHandleSkipsDuplicates(t *testing.T) {
	confirmer := &fakeConfirmer{result: successResult()}
	metrics := monitoring.NewMetrics()
	w := New(confirmer, newFakeGuard(), nil, metrics, zap.NewNop())

	event := hotelEvent(t)
	require.NoError(t, w.Handle(context.Background(), event))
	require.NoError(t, w.Handle(context.Background(), event))

	assert.Len(t, confirmer.calls, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DuplicateConfirmations.WithLabelValues("hotel")))
}

func TestHandleReleasesGuardWhenNothingSent(t *testing.T) {
	confirmer := &fakeConfirmer{result: notification.DispatchResult{Error: "resolution failed"}}
	guard := newFakeGuard()
	recorder := &fakeRecorder{}
	w := New(confirmer, guard, recorder, nil, zap.NewNop())

	err := w.Handle(context.Background(), hotelEvent(t))
	assert.ErrorContains(t, err, "resolution failed")
	assert.Equal(t, []string{"hotel:HB-1"}, guard.released)
	assert.Empty(t, recorder.recorded)
}

func TestHandleRejectsBadEvents(t *testing.T) {
	confirmer := &fakeConfirmer{result: successResult()}
	w := New(confirmer, nil, nil, nil, zap.NewNop())

	err := w.Handle(context.Background(), queue.BookingConfirmedEvent{Variant: "cruise", Booking: json.RawMessage(`{}`)})
	assert.ErrorIs(t, err, booking.ErrUnknownVariant)

	err = w.Handle(context.Background(), queue.BookingConfirmedEvent{Variant: booking.VariantItem, Booking: json.RawMessage(`{"id":"IB-1"}`)})
	assert.ErrorIs(t, err, booking.ErrMissingUser)

	assert.Empty(t, confirmer.calls)
}

func TestHandleGuardError(t *testing.T) {
	confirmer := &fakeConfirmer{result: successResult()}
	guard := newFakeGuard()
	guard.acquireErr = errors.New("redis down")
	w := New(confirmer, guard, nil, nil, zap.NewNop())

	assert.ErrorContains(t, w.Handle(context.Background(), hotelEvent(t)), "redis down")
	assert.Empty(t, confirmer.calls)
}

func TestHandleRejectsBookingsWithoutID(t *testing.T) {
	confirmer := &fakeConfirmer{result: successResult()}
	guard := newFakeGuard()
	w := New(confirmer, guard, nil, nil, zap.NewNop())

	for _, name := range []string{"Seaview", "Hilltop"} {
		payload, err := json.Marshal(&booking.HotelBooking{
			Base:  booking.Base{User: &booking.User{ID: "u1", Email: "alice@x.com"}},
			Hotel: &booking.Hotel{Name: name},
		})
		require.NoError(t, err)

		err = w.Handle(context.Background(), queue.NewBookingConfirmedEvent(booking.VariantHotel, "", payload))
		assert.ErrorIs(t, err, ErrMissingBookingID)
	}

	assert.Empty(t, confirmer.calls)
	assert.Empty(t, guard.held)
}

func TestHandleFallsBackToEventBookingID(t *testing.T) {
	confirmer := &fakeConfirmer{result: successResult()}
	guard := newFakeGuard()
	w := New(confirmer, guard, nil, nil, zap.NewNop())

	for _, id := range []string{"HB-7", "HB-8"} {
		payload, err := json.Marshal(&booking.HotelBooking{
			Base:  booking.Base{User: &booking.User{ID: "u1", Email: "alice@x.com"}},
			Hotel: &booking.Hotel{Name: "Seaview"},
		})
		require.NoError(t, err)
		require.NoError(t, w.Handle(context.Background(), queue.NewBookingConfirmedEvent(booking.VariantHotel, id, payload)))
	}

	assert.Len(t, confirmer.calls, 2)
	assert.True(t, guard.held["hotel:HB-7"])
	assert.True(t, guard.held["hotel:HB-8"])
}
