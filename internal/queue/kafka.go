package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/config"
)

// BookingConfirmedEvent is published when a booking has been paid and
// confirmed. Booking holds the variant-specific record as raw JSON.
type BookingConfirmedEvent struct {
	ID        string          `json:"id"`
	Variant   booking.Variant `json:"variant"`
	BookingID string          `json:"booking_id"`
	Booking   json.RawMessage `json:"booking"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewBookingConfirmedEvent wraps a booking payload in an event with a fresh id
func NewBookingConfirmedEvent(variant booking.Variant, bookingID string, payload json.RawMessage) BookingConfirmedEvent {
	return BookingConfirmedEvent{
		ID:        uuid.New().String(),
		Variant:   variant,
		BookingID: bookingID,
		Booking:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer handles publishing booking events to Kafka
type Producer struct {
	writer messageWriter
	logger *zap.Logger
}

// Consumer handles consuming booking events from Kafka
type Consumer struct {
	reader     messageReader
	logger     *zap.Logger
	retryDelay time.Duration
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		BatchSize:    100,
		RequiredAcks: kafka.RequireAll,
		Async:        false,
	}

	return &Producer{writer: writer, logger: logger}
}

// NewConsumer creates a new Kafka consumer in the configured group
func NewConsumer(cfg config.KafkaConfig, logger *zap.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		Topic:       cfg.Topic,
		GroupID:     cfg.GroupID,
		MinBytes:    1,
		MaxBytes:    10e6, // 10MB
		MaxWait:     1 * time.Second,
		StartOffset: kafka.FirstOffset,
	})

	return &Consumer{reader: reader, logger: logger, retryDelay: time.Second}
}

// PublishBookingConfirmed publishes a booking confirmed event. Events are
// keyed by booking id so redeliveries land on the same partition.
func (p *Producer) PublishBookingConfirmed(ctx context.Context, event BookingConfirmedEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal booking event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(string(event.Variant) + ":" + event.BookingID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "variant", Value: []byte(event.Variant)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
		Time: event.CreatedAt,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	p.logger.Debug("Published booking confirmed event",
		zap.String("event_id", event.ID),
		zap.String("variant", string(event.Variant)),
		zap.String("booking_id", event.BookingID))
	return nil
}

// ConsumeBookingConfirmations reads events until ctx is cancelled. Offsets
// are committed after the handler returns, whatever its result; handler
// errors are logged and the event is not retried.
func (c *Consumer) ConsumeBookingConfirmations(ctx context.Context, handler func(context.Context, BookingConfirmedEvent) error) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("Error reading message from Kafka", zap.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.retryDelay):
			}
			continue
		}

		var event BookingConfirmedEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			c.logger.Error("Error unmarshaling booking event",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		} else if err := handler(ctx, event); err != nil {
			c.logger.Error("Error processing booking event",
				zap.String("event_id", event.ID),
				zap.String("booking_id", event.BookingID),
				zap.Error(err))
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Error("Error committing Kafka offset", zap.Error(err))
		}
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// Close closes the consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
