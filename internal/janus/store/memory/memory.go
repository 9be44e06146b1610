// Package memory holds map-backed stores for tests and dev runs. They share
// one Store so cascades and unique checks span tables the way the SQLite
// schema does.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type Store struct {
	mu sync.Mutex

	seq int64

	users      map[int64]store.User
	visitors   map[int64]store.Visitor
	entries    map[int64]store.TurnstileEntry
	scans      map[int64]store.ScanLogEntry
	catalogs   map[store.Catalog]map[int64]store.CatalogEntry
	assignment map[store.Catalog]map[int64]store.Assignment
}

func New() *Store {
	s := &Store{
		users:      make(map[int64]store.User),
		visitors:   make(map[int64]store.Visitor),
		entries:    make(map[int64]store.TurnstileEntry),
		scans:      make(map[int64]store.ScanLogEntry),
		catalogs:   make(map[store.Catalog]map[int64]store.CatalogEntry),
		assignment: make(map[store.Catalog]map[int64]store.Assignment),
	}
	for _, c := range []store.Catalog{store.Departments, store.Roles, store.Designations} {
		s.catalogs[c] = make(map[int64]store.CatalogEntry)
		s.assignment[c] = make(map[int64]store.Assignment)
	}
	return s
}

// nextID hands out one id sequence for every table. Callers hold mu.
func (s *Store) nextID() int64 {
	s.seq++
	return s.seq
}

// stamp matches the millisecond UTC precision of the SQLite columns.
func stamp(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Truncate(time.Millisecond)
}

func sameEmail(a, b string) bool { return strings.EqualFold(a, b) }

func sortedValues[V any](m map[int64]V) []V {
	ids := make([]int64, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]V, 0, len(ids))
	for _, id := range ids {
		out = append(out, m[id])
	}
	return out
}
