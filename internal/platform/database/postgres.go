package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

type Config struct {
	URL        string
	MaxRetries int
	RetryDelay time.Duration
}

func NewPostgresDB(cfg Config, logger *zap.Logger) (*sql.DB, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 10
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	var db *sql.DB
	var err error

	for i := 1; i <= maxRetries; i++ {
		logger.Info("Connecting to database", zap.Int("attempt", i), zap.Int("max_attempts", maxRetries))
		db, err = sql.Open("postgres", cfg.URL)
		if err == nil {
			err = db.Ping()
		}

		if err == nil {
			logger.Info("Database connected successfully")
			return db, nil
		}

		if db != nil {
			db.Close()
		}

		logger.Warn("Database not ready yet", zap.Duration("retry_in", delay), zap.Error(err))
		time.Sleep(delay)
	}

	return nil, fmt.Errorf("failed to connect to database: %w", err)
}
