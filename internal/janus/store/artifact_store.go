package store

import (
	"context"
	"time"
)

// BadgeStore persists rendered badge images by file name and hands back a
// reference clients can resolve (e.g. "qr_codes/qr_code_7.png").
type BadgeStore interface {
	PutBadge(ctx context.Context, name string, png []byte) (ref string, err error)
	// GetBadge returns ErrNotFound for an unknown reference.
	GetBadge(ctx context.Context, ref string) ([]byte, error)
	DeleteBadge(ctx context.Context, ref string) error
}

// ResetTokenStore holds single-use password-reset tokens.
type ResetTokenStore interface {
	SaveResetToken(ctx context.Context, token string, userID int64, ttl time.Duration) error
	// ConsumeResetToken atomically reads and removes the token. Unknown or
	// expired tokens return ErrNotFound.
	ConsumeResetToken(ctx context.Context, token string) (int64, error)
}
