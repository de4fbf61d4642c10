package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/notification"
)

// execer is satisfied by *sql.DB and *PostgresDB
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// MessageStore writes automated chat messages to PostgreSQL
type MessageStore struct {
	db execer
}

// NewMessageStore creates a new message store
func NewMessageStore(db execer) *MessageStore {
	return &MessageStore{db: db}
}

// Create inserts a chat message and returns it with its assigned id
func (s *MessageStore) Create(ctx context.Context, msg notification.ChatMessage) (*notification.ChatMessage, error) {
	if msg.From == "" || msg.To == "" {
		return nil, fmt.Errorf("chat message requires both sender and recipient")
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if msg.Attachments == nil {
		msg.Attachments = []string{}
	}

	attachments, err := json.Marshal(msg.Attachments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal attachments: %w", err)
	}

	query := `
		INSERT INTO messages (id, from_user_id, to_user_id, content, attachments, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.db.ExecContext(ctx, query,
		msg.ID, msg.From, msg.To, msg.Content, string(attachments), msg.IsRead, msg.Timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert message: %w", err)
	}

	return &msg, nil
}

// OutcomeLog records delivery outcomes so failed notifications can be
// followed up manually
type OutcomeLog struct {
	db  execer
	now func() time.Time
}

// NewOutcomeLog creates a new outcome log
func NewOutcomeLog(db execer) *OutcomeLog {
	return &OutcomeLog{db: db, now: time.Now}
}

// RecordOutcomes inserts every outcome of one dispatch in a single statement
func (l *OutcomeLog) RecordOutcomes(ctx context.Context, variant booking.Variant, bookingID string, outcomes []notification.DeliveryOutcome) error {
	if len(outcomes) == 0 {
		return nil
	}

	const columns = 10
	now := l.now()
	values := make([]string, 0, len(outcomes))
	args := make([]any, 0, len(outcomes)*columns)
	for i, o := range outcomes {
		placeholders := make([]string, columns)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", i*columns+j+1)
		}
		values = append(values, "("+strings.Join(placeholders, ", ")+")")
		args = append(args,
			uuid.New().String(), bookingID, string(variant), string(o.Recipient.Role), string(o.Channel),
			o.Target, o.Success, nullString(o.Error), nullString(o.ProviderMessageID), now,
		)
	}

	query := `INSERT INTO delivery_outcomes (id, booking_id, variant, role, channel, target, success, error_message, provider_message_id, created_at) VALUES ` +
		strings.Join(values, ", ")
	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert delivery outcomes: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
