package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
	"github.com/BrandonDHaskell/Janus/server/internal/metrics"
)

// TurnstileTracker records visitor entry/exit sessions. Times are always
// server time.
type TurnstileTracker struct {
	entries store.TurnstileStore
	logger  zerolog.Logger
	now     func() time.Time
}

func NewTurnstileTracker(ts store.TurnstileStore, logger zerolog.Logger) *TurnstileTracker {
	return &TurnstileTracker{
		entries: ts,
		logger:  logger.With().Str("component", "turnstile_tracker").Logger(),
		now:     time.Now,
	}
}

// WithClock overrides the server clock. Test hook.
func (t *TurnstileTracker) WithClock(now func() time.Time) *TurnstileTracker {
	t.now = now
	return t
}

func (t *TurnstileTracker) Open(ctx context.Context, req types.TurnstileRequest) (types.Turnstile, error) {
	if req.Visitor <= 0 {
		return types.Turnstile{}, invalid("visitor", "This field is required.")
	}
	e, err := t.entries.OpenEntry(ctx, req.Visitor, t.now())
	if errors.Is(err, store.ErrNotFound) {
		return types.Turnstile{}, &FieldError{Kind: ErrNotFound, Field: "visitor", Message: "Visitor not found.", Err: err}
	}
	if err != nil {
		return types.Turnstile{}, err
	}
	metrics.TurnstileEvents.WithLabelValues("open").Inc()
	t.logger.Info().Int64("entry_id", e.ID).Int64("visitor_id", e.VisitorID).Msg("entry opened")
	return toTurnstile(e), nil
}

// Close sets exit_time. Closing an already-closed entry is a conflict.
func (t *TurnstileTracker) Close(ctx context.Context, id int64) (types.Turnstile, error) {
	e, err := t.entries.CloseEntry(ctx, id, t.now())
	if err != nil {
		return types.Turnstile{}, fromStore("turnstile", err)
	}
	metrics.TurnstileEvents.WithLabelValues("close").Inc()
	t.logger.Info().Int64("entry_id", e.ID).Msg("entry closed")
	return toTurnstile(e), nil
}

func (t *TurnstileTracker) Get(ctx context.Context, id int64) (types.Turnstile, error) {
	e, err := t.entries.GetEntry(ctx, id)
	if err != nil {
		return types.Turnstile{}, fromStore("turnstile", err)
	}
	return toTurnstile(e), nil
}

// List returns every entry, or only visitorID's when it is non-nil.
func (t *TurnstileTracker) List(ctx context.Context, visitorID *int64) ([]types.Turnstile, error) {
	es, err := t.entries.ListEntries(ctx, visitorID)
	if err != nil {
		return nil, fromStore("visitor", err)
	}
	out := make([]types.Turnstile, 0, len(es))
	for _, e := range es {
		out = append(out, toTurnstile(e))
	}
	return out, nil
}

func (t *TurnstileTracker) Delete(ctx context.Context, id int64) error {
	if err := t.entries.DeleteEntry(ctx, id); err != nil {
		return fromStore("turnstile", err)
	}
	return nil
}
