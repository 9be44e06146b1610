// Package redisstore keeps password-reset tokens in Redis so they expire
// on their own and survive server restarts.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type ResetTokenStore struct {
	client *redis.Client
	prefix string
}

func NewResetTokenStore(client *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{client: client, prefix: "janus:reset:"}
}

func (s *ResetTokenStore) key(token string) string {
	return s.prefix + token
}

func (s *ResetTokenStore) SaveResetToken(ctx context.Context, token string, userID int64, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.key(token), strconv.FormatInt(userID, 10), ttl).Err(); err != nil {
		return fmt.Errorf("save reset token: %w", err)
	}
	return nil
}

// ConsumeResetToken uses GETDEL so two concurrent resets cannot both win.
func (s *ResetTokenStore) ConsumeResetToken(ctx context.Context, token string) (int64, error) {
	value, err := s.client.GetDel(ctx, s.key(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, store.ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("consume reset token: %w", err)
	}
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("consume reset token: bad value %q: %w", value, err)
	}
	return id, nil
}
