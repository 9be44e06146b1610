package memory

import (
	"context"
	"sync"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

// BadgeStore keeps badge images in a map keyed by "qr_codes/<name>".
type BadgeStore struct {
	mu   sync.Mutex
	data map[string][]byte

	// FailPut, when set, is returned by every PutBadge. Test hook.
	FailPut error
}

func NewBadgeStore() *BadgeStore {
	return &BadgeStore{data: make(map[string][]byte)}
}

func (b *BadgeStore) PutBadge(_ context.Context, name string, png []byte) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.FailPut != nil {
		return "", b.FailPut
	}
	ref := "qr_codes/" + name
	b.data[ref] = append([]byte(nil), png...)
	return ref, nil
}

func (b *BadgeStore) GetBadge(_ context.Context, ref string) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	png, ok := b.data[ref]
	if !ok {
		return nil, store.ErrNotFound
	}
	return append([]byte(nil), png...), nil
}

func (b *BadgeStore) DeleteBadge(_ context.Context, ref string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.data, ref)
	return nil
}

// Refs returns the stored references. Test-only helper.
func (b *BadgeStore) Refs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.data))
	for ref := range b.data {
		out = append(out, ref)
	}
	return out
}
