package local

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const maxTxRetries = 10

// RedisBlob stores the collection under one redis key. Writes use
// WATCH/MULTI so concurrent instances never lose an update, and every write
// is announced on <key>:changed for the other instances.
type RedisBlob struct {
	client   *redis.Client
	key      string
	channel  string
	instance string
	logger   *zap.Logger
}

func NewRedisBlob(client *redis.Client, key string, logger *zap.Logger) *RedisBlob {
	return &RedisBlob{
		client:   client,
		key:      key,
		channel:  key + ":changed",
		instance: uuid.New().String(),
		logger:   logger,
	}
}

func (r *RedisBlob) Name() string {
	return "redis"
}

func (r *RedisBlob) Load(ctx context.Context) ([]byte, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.key, err)
	}
	return data, nil
}

func (r *RedisBlob) Update(ctx context.Context, fn func(current []byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, r.key).Bytes()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, r.key, next, 0)
			return nil
		})
		return err
	}

	var err error
	for i := 0; i < maxTxRetries; i++ {
		err = r.client.Watch(ctx, txf, r.key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	if err != nil {
		return err
	}

	if err := r.client.Publish(ctx, r.channel, r.instance).Err(); err != nil {
		r.logger.Warn("failed to announce booking store change", zap.String("channel", r.channel), zap.Error(err))
	}

	return nil
}

// Watch subscribes to change announcements from other instances.
func (r *RedisBlob) Watch(ctx context.Context, onChange func()) (func(), error) {
	sub := r.client.Subscribe(ctx, r.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", r.channel, err)
	}

	go func() {
		for msg := range sub.Channel() {
			if msg.Payload == r.instance {
				continue
			}
			onChange()
		}
	}()

	return func() {
		if err := sub.Close(); err != nil {
			r.logger.Debug("closing change subscription", zap.Error(err))
		}
	}, nil
}
