package store

import (
	"context"
	"time"
)

// TurnstileEntry is one physical entry/exit session of a visitor.
type TurnstileEntry struct {
	ID        int64
	VisitorID int64
	EntryTime time.Time
	ExitTime  *time.Time
}

type TurnstileStore interface {
	// OpenEntry returns ErrNotFound when the visitor does not exist.
	OpenEntry(ctx context.Context, visitorID int64, at time.Time) (TurnstileEntry, error)
	// CloseEntry sets exit_time to max(at, entry_time). A closed entry
	// yields a ConflictError on FieldExitTime.
	CloseEntry(ctx context.Context, id int64, at time.Time) (TurnstileEntry, error)
	GetEntry(ctx context.Context, id int64) (TurnstileEntry, error)
	// ListEntries lists every entry, or only visitorID's when non-nil.
	ListEntries(ctx context.Context, visitorID *int64) ([]TurnstileEntry, error)
	DeleteEntry(ctx context.Context, id int64) error
}
