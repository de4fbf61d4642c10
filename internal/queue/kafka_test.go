package queue

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/booking"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	mu        sync.Mutex
	pending   []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.pending) == 0 {
		r.cancel()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.pending[0]
	r.pending = r.pending[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestPublishBookingConfirmed(t *testing.T) {
	writer := &fakeWriter{}
	producer := &Producer{writer: writer, logger: zap.NewNop()}

	event := NewBookingConfirmedEvent(booking.VariantHotel, "HB-1", json.RawMessage(`{"id":"HB-1"}`))
	require.NoError(t, producer.PublishBookingConfirmed(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "hotel:HB-1", string(msg.Key))
	assert.Equal(t, "variant", msg.Headers[0].Key)
	assert.Equal(t, "hotel", string(msg.Headers[0].Value))

	var decoded BookingConfirmedEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, event.ID, decoded.ID)
	assert.JSONEq(t, `{"id":"HB-1"}`, string(decoded.Booking))

	writer.err = errors.New("broker unavailable")
	assert.ErrorContains(t, producer.PublishBookingConfirmed(context.Background(), event), "broker unavailable")
}

func TestConsumeBookingConfirmationsCommitsEveryMessage(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	good, err := json.Marshal(NewBookingConfirmedEvent(booking.VariantEvent, "EB-1", json.RawMessage(`{}`)))
	require.NoError(t, err)
	failing, err := json.Marshal(NewBookingConfirmedEvent(booking.VariantEvent, "EB-2", json.RawMessage(`{}`)))
	require.NoError(t, err)

	reader := &fakeReader{
		pending: []kafka.Message{
			{Offset: 1, Value: good},
			{Offset: 2, Value: []byte("not json")},
			{Offset: 3, Value: failing},
		},
		cancel: cancel,
	}
	consumer := &Consumer{reader: reader, logger: zap.NewNop(), retryDelay: time.Millisecond}

	var handled []string
	err = consumer.ConsumeBookingConfirmations(ctx, func(_ context.Context, event BookingConfirmedEvent) error {
		handled = append(handled, event.BookingID)
		if event.BookingID == "EB-2" {
			return errors.New("dispatch failed")
		}
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"EB-1", "EB-2"}, handled)
	assert.Equal(t, []int64{1, 2, 3}, reader.committed)
}
