package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	AdminPIN        string        `mapstructure:"ADMIN_PIN"`
	AdminSessionTTL time.Duration `mapstructure:"ADMIN_SESSION_TTL"`
	LoginRate       string        `mapstructure:"ADMIN_LOGIN_RATE"`
	DraftTTL        time.Duration `mapstructure:"DRAFT_TTL"`
	AllowedOrigins  []string      `mapstructure:"CORS_ALLOWED_ORIGINS"`

	// Firebase configuration.
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsPath string `mapstructure:"FIREBASE_CREDENTIALS_PATH"`
	FirebaseCollection      string `mapstructure:"FIREBASE_COLLECTION"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	LocalStorePath string `mapstructure:"LOCAL_STORE_PATH"`
	BookingsKey    string `mapstructure:"BOOKINGS_KEY"`

	// Payments.
	StripeKey          string        `mapstructure:"STRIPE_KEY"`
	Currency           string        `mapstructure:"CURRENCY"`
	PaymentOnlineDelay time.Duration `mapstructure:"PAYMENT_ONLINE_DELAY"`
	PaymentCashDelay   time.Duration `mapstructure:"PAYMENT_CASH_DELAY"`
	PaymentTimeout     time.Duration `mapstructure:"PAYMENT_TIMEOUT"`

	StoreRetryAttempts int           `mapstructure:"STORE_RETRY_ATTEMPTS"`
	StoreRetryDelay    time.Duration `mapstructure:"STORE_RETRY_DELAY"`

	StrictStatusTransitions bool `mapstructure:"STRICT_STATUS_TRANSITIONS"`
}

var defaults = map[string]any{
	"APP_PORT":                  "8080",
	"ENV":                       "development",
	"LOG_LEVEL":                 "info",
	"ADMIN_PIN":                 "899336",
	"ADMIN_SESSION_TTL":         "12h",
	"ADMIN_LOGIN_RATE":          "5-M",
	"DRAFT_TTL":                 "2h",
	"CORS_ALLOWED_ORIGINS":      "*",
	"FIREBASE_PROJECT_ID":       "",
	"FIREBASE_CREDENTIALS_PATH": "",
	"FIREBASE_COLLECTION":       "bookings",
	"DATABASE_URL":              "",
	"REDIS_ADDR":                "",
	"REDIS_PASSWORD":            "",
	"REDIS_DB":                  0,
	"LOCAL_STORE_PATH":          "./data/urban_spark_bookings.json",
	"BOOKINGS_KEY":              "urban_spark_bookings",
	"STRIPE_KEY":                "",
	"CURRENCY":                  "usd",
	"PAYMENT_ONLINE_DELAY":      "2s",
	"PAYMENT_CASH_DELAY":        "1s",
	"PAYMENT_TIMEOUT":           "30s",
	"STORE_RETRY_ATTEMPTS":      3,
	"STORE_RETRY_DELAY":         "200ms",
	"STRICT_STATUS_TRANSITIONS": false,
}

// Load reads config.yaml from . or ./config when present, then lets
// environment variables override every key.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// IsPlaceholder reports whether a credential value was left at its template
// value.
func IsPlaceholder(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" ||
		strings.HasPrefix(v, "YOUR_") ||
		strings.Contains(v, "SENDER_ID") ||
		strings.Contains(v, "APP_ID")
}

type Backend string

const (
	BackendFirestore Backend = "firestore"
	BackendPostgres  Backend = "postgres"
	BackendLocal     Backend = "local"
)

// BookingBackend picks the durable store: Firestore when real credentials
// are configured, then Postgres, then the local blob store.
func (c *Config) BookingBackend() Backend {
	if !IsPlaceholder(c.FirebaseProjectID) && !IsPlaceholder(c.FirebaseCredentialsPath) {
		return BackendFirestore
	}
	if strings.TrimSpace(c.DatabaseURL) != "" {
		return BackendPostgres
	}
	return BackendLocal
}

func (c *Config) UsesRedis() bool {
	return strings.TrimSpace(c.RedisAddr) != ""
}
