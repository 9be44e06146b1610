package store

import (
	"context"
	"time"
)

type ScanStatus string

const (
	ScanSuccess ScanStatus = "success"
	ScanDenied  ScanStatus = "denied"
)

func (s ScanStatus) Valid() bool {
	return s == ScanSuccess || s == ScanDenied
}

// ScanLogEntry is an immutable record of one badge scan at a turnstile.
type ScanLogEntry struct {
	ID          int64
	TurnstileID int64
	Payload     string
	Status      ScanStatus
	ScannedAt   time.Time
}

// ScanLogStore is append-only: rows disappear only with their turnstile entry.
type ScanLogStore interface {
	// AppendScan returns ErrNotFound when the turnstile entry does not exist.
	AppendScan(ctx context.Context, rec ScanLogEntry) (ScanLogEntry, error)
	GetScan(ctx context.Context, id int64) (ScanLogEntry, error)
	// ListScans lists every scan, or only turnstileID's when non-nil.
	ListScans(ctx context.Context, turnstileID *int64) ([]ScanLogEntry, error)
}
