package config

import (
	"fmt"
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the booking notification service
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	API      APIConfig      `mapstructure:"api"`
	Mail     MailConfig     `mapstructure:"mail"`
	Channels ChannelsConfig `mapstructure:"channels"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
	Locale   LocaleConfig   `mapstructure:"locale"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// APIConfig holds API server configuration
type APIConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// MailConfig holds the email transport configuration
type MailConfig struct {
	Provider    string         `mapstructure:"provider"` // sendgrid or smtp
	FromName    string         `mapstructure:"from_name"`
	FromAddress string         `mapstructure:"from_address"`
	SendGrid    SendGridConfig `mapstructure:"sendgrid"`
	SMTP        SMTPConfig     `mapstructure:"smtp"`
}

// SendGridConfig holds SendGrid email configuration
type SendGridConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// SMTPConfig holds SMTP relay configuration
type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// ChannelsConfig holds the optional SMS and push mirror channels
type ChannelsConfig struct {
	SMSEnabled  bool           `mapstructure:"sms_enabled"`
	PushEnabled bool           `mapstructure:"push_enabled"`
	Twilio      TwilioConfig   `mapstructure:"twilio"`
	Firebase    FirebaseConfig `mapstructure:"firebase"`
}

// TwilioConfig holds Twilio SMS configuration
type TwilioConfig struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	FromNumber string `mapstructure:"from_number"`
}

// FirebaseConfig holds Firebase push notification configuration
type FirebaseConfig struct {
	CredentialsPath string `mapstructure:"credentials_path"`
}

// DispatchConfig bounds the notification fan-out
type DispatchConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	Concurrency int           `mapstructure:"concurrency"`
	GuardTTL    time.Duration `mapstructure:"guard_ttl"`
}

// LocaleConfig holds currency and date presentation settings
type LocaleConfig struct {
	CurrencySymbol     string `mapstructure:"currency_symbol"`
	ItemCurrencySymbol string `mapstructure:"item_currency_symbol"`
	DateLayout         string `mapstructure:"date_layout"`
	TimeLayout         string `mapstructure:"time_layout"`
	Timezone           string `mapstructure:"timezone"`
}

// MetricsConfig holds monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// LoadLocation resolves the configured timezone
func (l LocaleConfig) LoadLocation() (*time.Location, error) {
	if l.Timezone == "" || l.Timezone == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(l.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid locale timezone %q: %w", l.Timezone, err)
	}
	return loc, nil
}

// LoadConfig loads configuration from environment variables and config files
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Set default values
	setDefaults()

	// Read from environment variables
	viper.AutomaticEnv()

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Println("Config file not found, using environment variables and defaults")
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Mail.Provider != "sendgrid" && config.Mail.Provider != "smtp" {
		return nil, fmt.Errorf("unsupported mail provider %q", config.Mail.Provider)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.database", "bookings")
	viper.SetDefault("database.ssl_mode", "disable")

	// Redis defaults
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Kafka defaults
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "booking-confirmations")
	viper.SetDefault("kafka.group_id", "booking-notifier")

	// API defaults
	viper.SetDefault("api.host", "0.0.0.0")
	viper.SetDefault("api.port", 8080)

	// Mail defaults
	viper.SetDefault("mail.provider", "sendgrid")
	viper.SetDefault("mail.from_name", "Adventure Bookings")
	viper.SetDefault("mail.from_address", "noreply@adventurebookings.com")
	viper.SetDefault("mail.smtp.port", 587)

	// Channel defaults
	viper.SetDefault("channels.sms_enabled", false)
	viper.SetDefault("channels.push_enabled", false)

	// Dispatch defaults
	viper.SetDefault("dispatch.timeout", 15*time.Second)
	viper.SetDefault("dispatch.concurrency", 4)
	viper.SetDefault("dispatch.guard_ttl", 720*time.Hour)

	// Locale defaults
	viper.SetDefault("locale.currency_symbol", "£")
	viper.SetDefault("locale.item_currency_symbol", "")
	viper.SetDefault("locale.date_layout", "1/2/2006")
	viper.SetDefault("locale.time_layout", "3:04:05 PM")
	viper.SetDefault("locale.timezone", "Local")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.port", 9091)
	viper.SetDefault("metrics.path", "/metrics")

	// Map environment variables
	viper.BindEnv("database.host", "DB_HOST")
	viper.BindEnv("database.port", "DB_PORT")
	viper.BindEnv("database.user", "DB_USER")
	viper.BindEnv("database.password", "DB_PASSWORD")
	viper.BindEnv("database.database", "DB_NAME")
	viper.BindEnv("redis.addr", "REDIS_ADDR")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")
	viper.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	viper.BindEnv("mail.provider", "MAIL_PROVIDER")
	viper.BindEnv("mail.from_address", "MAIL_FROM_ADDRESS")
	viper.BindEnv("mail.sendgrid.api_key", "SENDGRID_API_KEY")
	viper.BindEnv("mail.smtp.host", "SMTP_HOST")
	viper.BindEnv("mail.smtp.port", "SMTP_PORT")
	viper.BindEnv("mail.smtp.username", "SMTP_USERNAME")
	viper.BindEnv("mail.smtp.password", "SMTP_PASSWORD")
	viper.BindEnv("channels.twilio.account_sid", "TWILIO_ACCOUNT_SID")
	viper.BindEnv("channels.twilio.auth_token", "TWILIO_AUTH_TOKEN")
	viper.BindEnv("channels.twilio.from_number", "TWILIO_FROM_NUMBER")
	viper.BindEnv("channels.firebase.credentials_path", "FIREBASE_CREDENTIALS_PATH")
	viper.BindEnv("dispatch.timeout", "DISPATCH_TIMEOUT")
	viper.BindEnv("locale.timezone", "LOCALE_TIMEZONE")
}
