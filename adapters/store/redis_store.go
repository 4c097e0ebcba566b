package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SNO7E-G/Blockchain-Based-Authentication/core"
	"github.com/SNO7E-G/Blockchain-Based-Authentication/ports"
)

// RedisStore keeps the session credential in Redis. Useful when several
// daemon instances share one session slot. The key TTL matches the
// credential lifetime so Redis drops stale tokens on its own; expiry
// validation still belongs to the issuer.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a new Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		key:    "blockauth:" + SlotName,
	}
}

var _ ports.SessionStore = (*RedisStore)(nil)

// Save writes the credential, replacing any previous one.
func (s *RedisStore) Save(token string) error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.client.Set(ctx, s.key, token, core.CredentialTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Load returns the stored credential.
func (s *RedisStore) Load() (string, error) {
	ctx, cancel := s.opCtx()
	defer cancel()

	token, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return "", core.ErrNoSession
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session: %w", err)
	}
	return token, nil
}

// Clear empties the slot.
func (s *RedisStore) Clear() error {
	ctx, cancel := s.opCtx()
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *RedisStore) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}
