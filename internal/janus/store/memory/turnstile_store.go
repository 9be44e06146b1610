package memory

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type TurnstileStore struct{ s *Store }

func NewTurnstileStore(s *Store) *TurnstileStore { return &TurnstileStore{s: s} }

func (ts *TurnstileStore) OpenEntry(_ context.Context, visitorID int64, at time.Time) (store.TurnstileEntry, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visitors[visitorID]; !ok {
		return store.TurnstileEntry{}, store.ErrNotFound
	}
	e := store.TurnstileEntry{ID: s.nextID(), VisitorID: visitorID, EntryTime: stamp(at)}
	s.entries[e.ID] = e
	return e, nil
}

func (ts *TurnstileStore) CloseEntry(_ context.Context, id int64, at time.Time) (store.TurnstileEntry, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return store.TurnstileEntry{}, store.ErrNotFound
	}
	if e.ExitTime != nil {
		return store.TurnstileEntry{}, &store.ConflictError{Field: store.FieldExitTime}
	}
	exit := stamp(at)
	if exit.Before(e.EntryTime) {
		exit = e.EntryTime
	}
	e.ExitTime = &exit
	s.entries[id] = e
	return e, nil
}

func (ts *TurnstileStore) GetEntry(_ context.Context, id int64) (store.TurnstileEntry, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return store.TurnstileEntry{}, store.ErrNotFound
	}
	return e, nil
}

func (ts *TurnstileStore) ListEntries(_ context.Context, visitorID *int64) ([]store.TurnstileEntry, error) {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	all := sortedValues(s.entries)
	if visitorID == nil {
		return all, nil
	}
	if _, ok := s.visitors[*visitorID]; !ok {
		return nil, store.ErrNotFound
	}
	out := all[:0]
	for _, e := range all {
		if e.VisitorID == *visitorID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (ts *TurnstileStore) DeleteEntry(_ context.Context, id int64) error {
	s := ts.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return store.ErrNotFound
	}
	s.deleteEntryLocked(id)
	return nil
}

// deleteEntryLocked removes an entry and its scans. Callers hold mu.
func (s *Store) deleteEntryLocked(id int64) {
	for sid, sc := range s.scans {
		if sc.TurnstileID == id {
			delete(s.scans, sid)
		}
	}
	delete(s.entries, id)
}
