package services

import (
	"context"
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/srgjo27/urban_spark/internal/core/domain"
	"github.com/srgjo27/urban_spark/internal/core/ports"
)

// AdminService gates the dashboard behind one shared PIN. It is a
// convenience lock, not an identity system: anyone holding the PIN is admin.
type AdminService struct {
	pin      string
	sessions ports.AdminSessionRepository
	ttl      time.Duration
	logger   *zap.Logger
}

func NewAdminService(pin string, sessions ports.AdminSessionRepository, ttl time.Duration, logger *zap.Logger) *AdminService {
	return &AdminService{
		pin:      pin,
		sessions: sessions,
		ttl:      ttl,
		logger:   logger,
	}
}

// Login compares pin verbatim and returns a session token on match.
func (s *AdminService) Login(ctx context.Context, pin string) (string, error) {
	if s.pin == "" || subtle.ConstantTimeCompare([]byte(pin), []byte(s.pin)) != 1 {
		s.logger.Warn("admin login rejected")
		return "", domain.ErrInvalidPIN
	}

	token := uuid.New().String()
	if err := s.sessions.Grant(ctx, token, s.ttl); err != nil {
		return "", fmt.Errorf("failed to store admin session: %w", err)
	}

	s.logger.Info("admin session granted")
	return token, nil
}

func (s *AdminService) Authorized(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return s.sessions.Valid(ctx, token)
}

func (s *AdminService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}
