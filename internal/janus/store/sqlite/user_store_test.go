package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	sqlitestore "github.com/BrandonDHaskell/Janus/server/internal/janus/store/sqlite"
)

func TestUserStore_CreateAndLookup(t *testing.T) {
	conn := openTestDB(t)
	us := sqlitestore.NewUserStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	u, err := us.CreateUser(ctx, store.User{
		Name: "Emp", Email: "Emp@X.com", Mobile: "+15550001111",
		PasswordHash: "h1", IsActive: true, CreatedAt: t0,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	got, err := us.GetUserByEmail(ctx, "emp@x.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != u.ID || !got.IsActive || got.IsAdmin {
		t.Errorf("unexpected user: %+v", got)
	}

	_, err = us.CreateUser(ctx, store.User{Name: "Dup", Email: "EMP@x.com", Mobile: "+15559999999", PasswordHash: "h"})
	if f, _ := store.ConflictField(err); f != store.FieldEmail {
		t.Fatalf("expected email conflict, got %v", err)
	}
	_, err = us.CreateUser(ctx, store.User{Name: "Dup", Email: "dup@x.com", Mobile: "+15550001111", PasswordHash: "h"})
	if f, _ := store.ConflictField(err); f != store.FieldMobile {
		t.Fatalf("expected mobile conflict, got %v", err)
	}
}

func TestUserStore_SetPasswordHash(t *testing.T) {
	conn := openTestDB(t)
	us := sqlitestore.NewUserStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	u, err := us.CreateUser(ctx, store.User{Name: "Emp", Email: "emp@x.com", Mobile: "+15550001111", PasswordHash: "old", CreatedAt: t0})
	if err != nil {
		t.Fatal(err)
	}
	if err := us.SetPasswordHash(ctx, u.ID, "new", t0.Add(time.Hour)); err != nil {
		t.Fatalf("SetPasswordHash: %v", err)
	}
	got, _ := us.GetUser(ctx, u.ID)
	if got.PasswordHash != "new" || !got.UpdatedAt.Equal(t0.Add(time.Hour)) {
		t.Errorf("unexpected user after update: %+v", got)
	}

	if err := us.SetPasswordHash(ctx, 999, "x", t0); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
