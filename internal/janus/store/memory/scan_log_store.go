package memory

import (
	"context"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

// ScanLogStore has no update or delete; scans go away only with their entry.
type ScanLogStore struct{ s *Store }

func NewScanLogStore(s *Store) *ScanLogStore { return &ScanLogStore{s: s} }

func (ls *ScanLogStore) AppendScan(_ context.Context, rec store.ScanLogEntry) (store.ScanLogEntry, error) {
	s := ls.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[rec.TurnstileID]; !ok {
		return store.ScanLogEntry{}, store.ErrNotFound
	}
	rec.ID = s.nextID()
	rec.ScannedAt = stamp(rec.ScannedAt)
	s.scans[rec.ID] = rec
	return rec, nil
}

func (ls *ScanLogStore) GetScan(_ context.Context, id int64) (store.ScanLogEntry, error) {
	s := ls.s
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.scans[id]
	if !ok {
		return store.ScanLogEntry{}, store.ErrNotFound
	}
	return rec, nil
}

func (ls *ScanLogStore) ListScans(_ context.Context, turnstileID *int64) ([]store.ScanLogEntry, error) {
	s := ls.s
	s.mu.Lock()
	defer s.mu.Unlock()

	all := sortedValues(s.scans)
	if turnstileID == nil {
		return all, nil
	}
	if _, ok := s.entries[*turnstileID]; !ok {
		return nil, store.ErrNotFound
	}
	out := all[:0]
	for _, rec := range all {
		if rec.TurnstileID == *turnstileID {
			out = append(out, rec)
		}
	}
	return out, nil
}
