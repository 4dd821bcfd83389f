package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/srgjo27/urban_spark/internal/core/domain"
)

const (
	draftPrefix = "booking_session:"
	adminPrefix = "admin_session:"
)

func lockKey(id string) string {
	return draftPrefix + id + ":lock"
}

// releaseLock deletes the lock only while it still carries the caller's token.
var releaseLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisDraftRepository struct {
	client *redis.Client
}

func NewRedisDraftRepository(client *redis.Client) *RedisDraftRepository {
	return &RedisDraftRepository{client: client}
}

func (s *RedisDraftRepository) Save(ctx context.Context, d *domain.BookingDraft, ttl time.Duration) error {
	b, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftPrefix+d.ID, b, ttl).Err()
}

func (s *RedisDraftRepository) Get(ctx context.Context, id string) (*domain.BookingDraft, error) {
	data, err := s.client.Get(ctx, draftPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrDraftNotFound
	}
	if err != nil {
		return nil, err
	}

	var d domain.BookingDraft
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *RedisDraftRepository) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, draftPrefix+id).Err()
}

func (s *RedisDraftRepository) Lock(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	key := lockKey(id)
	token := uuid.New().String()

	ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrSessionBusy
	}

	return func() {
		// The request context may already be cancelled; the claim still has
		// to be dropped.
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		_ = releaseLock.Run(releaseCtx, s.client, []string{key}, token).Err()
	}, nil
}

type RedisAdminSessions struct {
	client *redis.Client
}

func NewRedisAdminSessions(client *redis.Client) *RedisAdminSessions {
	return &RedisAdminSessions{client: client}
}

func (s *RedisAdminSessions) Grant(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, adminPrefix+token, "1", ttl).Err()
}

func (s *RedisAdminSessions) Valid(ctx context.Context, token string) (bool, error) {
	n, err := s.client.Exists(ctx, adminPrefix+token).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisAdminSessions) Revoke(ctx context.Context, token string) error {
	return s.client.Del(ctx, adminPrefix+token).Err()
}
