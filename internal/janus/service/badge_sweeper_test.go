package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
)

func TestBadgeSweeper_Disabled(t *testing.T) {
	f := newFixture(t, service.RegistryConfig{})
	s := service.NewBadgeSweeper(f.registry, 0, zerolog.Nop())
	s.Start(context.Background())
	s.Stop() // must not block
}

func TestBadgeSweeper_RestoresMissingBadges(t *testing.T) {
	f := newFixture(t, service.RegistryConfig{})
	ctx := context.Background()

	v, err := f.registry.Register(ctx, janeDoe(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.badges.DeleteBadge(ctx, v.QRCode); err != nil {
		t.Fatal(err)
	}

	s := service.NewBadgeSweeper(f.registry, time.Hour, zerolog.Nop())
	s.Start(ctx)
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := f.badges.GetBadge(ctx, v.QRCode); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("sweeper did not restore the badge")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
