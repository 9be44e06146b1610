package memory

import (
	"context"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type resetToken struct {
	userID  int64
	expires time.Time
}

// ResetTokenStore is the dev fallback when no Redis address is configured.
type ResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]resetToken
	now    func() time.Time
}

func NewResetTokenStore() *ResetTokenStore {
	return &ResetTokenStore{tokens: make(map[string]resetToken), now: time.Now}
}

// WithClock replaces the expiry clock. Test hook.
func (r *ResetTokenStore) WithClock(now func() time.Time) *ResetTokenStore {
	r.now = now
	return r
}

func (r *ResetTokenStore) SaveResetToken(_ context.Context, token string, userID int64, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = resetToken{userID: userID, expires: r.now().Add(ttl)}
	return nil
}

func (r *ResetTokenStore) ConsumeResetToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[token]
	if !ok {
		return 0, store.ErrNotFound
	}
	delete(r.tokens, token)
	if !r.now().Before(t.expires) {
		return 0, store.ErrNotFound
	}
	return t.userID, nil
}
