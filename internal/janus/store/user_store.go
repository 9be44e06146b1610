package store

import (
	"context"
	"time"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	Mobile       string
	PasswordHash string
	IsActive     bool
	IsAdmin      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserStore interface {
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	GetUserByEmail(ctx context.Context, email string) (User, error)
	SetPasswordHash(ctx context.Context, id int64, hash string, at time.Time) error
	// DeleteUser cascades the user's directory assignments and nulls
	// registered_by on the visitors they registered.
	DeleteUser(ctx context.Context, id int64) error
}
