package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/alexnthnz/booking-notifications/internal/config"
)

// PostgresDB wraps sql.DB for PostgreSQL operations
type PostgresDB struct {
	*sql.DB
}

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(cfg config.DatabaseConfig) (*PostgresDB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// InitSchema creates the chat message and delivery outcome tables
func (db *PostgresDB) InitSchema() error {
	schema := `
	-- Chat messages written by the confirmation pipeline
	CREATE TABLE IF NOT EXISTS messages (
		id UUID PRIMARY KEY,
		from_user_id VARCHAR(255) NOT NULL,
		to_user_id VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		attachments JSONB NOT NULL DEFAULT '[]',
		is_read BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	-- Per-recipient delivery outcomes kept for manual follow-up
	CREATE TABLE IF NOT EXISTS delivery_outcomes (
		id UUID PRIMARY KEY,
		booking_id VARCHAR(255) NOT NULL,
		variant VARCHAR(50) NOT NULL,
		role VARCHAR(50) NOT NULL,
		channel VARCHAR(50) NOT NULL,
		target TEXT NOT NULL,
		success BOOLEAN NOT NULL,
		error_message TEXT,
		provider_message_id VARCHAR(255),
		created_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_messages_to_user_id ON messages(to_user_id);
	CREATE INDEX IF NOT EXISTS idx_messages_from_user_id ON messages(from_user_id);
	CREATE INDEX IF NOT EXISTS idx_delivery_outcomes_booking_id ON delivery_outcomes(booking_id);
	CREATE INDEX IF NOT EXISTS idx_delivery_outcomes_failed ON delivery_outcomes(success) WHERE success = false;
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Close closes the database connection
func (db *PostgresDB) Close() error {
	return db.DB.Close()
}
