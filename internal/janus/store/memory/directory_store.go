package memory

import (
	"context"
	"fmt"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type DirectoryStore struct{ s *Store }

func NewDirectoryStore(s *Store) *DirectoryStore { return &DirectoryStore{s: s} }

func checkCatalog(c store.Catalog) error {
	if !c.Valid() {
		return fmt.Errorf("unknown catalog %s", c)
	}
	return nil
}

func (s *Store) nameTaken(c store.Catalog, name string, skip int64) bool {
	for id, e := range s.catalogs[c] {
		if id != skip && e.Name == name {
			return true
		}
	}
	return false
}

func (ds *DirectoryStore) CreateEntry(_ context.Context, c store.Catalog, name string) (store.CatalogEntry, error) {
	if err := checkCatalog(c); err != nil {
		return store.CatalogEntry{}, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.nameTaken(c, name, 0) {
		return store.CatalogEntry{}, &store.ConflictError{Field: store.FieldName}
	}
	e := store.CatalogEntry{ID: s.nextID(), Name: name}
	s.catalogs[c][e.ID] = e
	return e, nil
}

func (ds *DirectoryStore) GetEntry(_ context.Context, c store.Catalog, id int64) (store.CatalogEntry, error) {
	if err := checkCatalog(c); err != nil {
		return store.CatalogEntry{}, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.catalogs[c][id]
	if !ok {
		return store.CatalogEntry{}, store.ErrNotFound
	}
	return e, nil
}

func (ds *DirectoryStore) ListEntries(_ context.Context, c store.Catalog) ([]store.CatalogEntry, error) {
	if err := checkCatalog(c); err != nil {
		return nil, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.catalogs[c]), nil
}

func (ds *DirectoryStore) RenameEntry(_ context.Context, c store.Catalog, id int64, name string) (store.CatalogEntry, error) {
	if err := checkCatalog(c); err != nil {
		return store.CatalogEntry{}, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalogs[c][id]; !ok {
		return store.CatalogEntry{}, store.ErrNotFound
	}
	if s.nameTaken(c, name, id) {
		return store.CatalogEntry{}, &store.ConflictError{Field: store.FieldName}
	}
	e := store.CatalogEntry{ID: id, Name: name}
	s.catalogs[c][id] = e
	return e, nil
}

func (ds *DirectoryStore) DeleteEntry(_ context.Context, c store.Catalog, id int64) error {
	if err := checkCatalog(c); err != nil {
		return err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.catalogs[c][id]; !ok {
		return store.ErrNotFound
	}
	for aid, a := range s.assignment[c] {
		if a.TargetID == id {
			delete(s.assignment[c], aid)
		}
	}
	delete(s.catalogs[c], id)
	return nil
}

// checkAssignment enforces the foreign keys and the (user, target) pair
// uniqueness. Callers hold mu.
func (s *Store) checkAssignment(c store.Catalog, a store.Assignment) error {
	if _, ok := s.users[a.UserID]; !ok {
		return store.ErrNotFound
	}
	if _, ok := s.catalogs[c][a.TargetID]; !ok {
		return store.ErrNotFound
	}
	for id, o := range s.assignment[c] {
		if id != a.ID && o.UserID == a.UserID && o.TargetID == a.TargetID {
			return &store.ConflictError{Field: store.FieldAssignment}
		}
	}
	return nil
}

func (ds *DirectoryStore) CreateAssignment(_ context.Context, c store.Catalog, userID, targetID int64) (store.Assignment, error) {
	if err := checkCatalog(c); err != nil {
		return store.Assignment{}, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	a := store.Assignment{UserID: userID, TargetID: targetID}
	if err := s.checkAssignment(c, a); err != nil {
		return store.Assignment{}, err
	}
	a.ID = s.nextID()
	s.assignment[c][a.ID] = a
	return a, nil
}

func (ds *DirectoryStore) GetAssignment(_ context.Context, c store.Catalog, id int64) (store.Assignment, error) {
	if err := checkCatalog(c); err != nil {
		return store.Assignment{}, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.assignment[c][id]
	if !ok {
		return store.Assignment{}, store.ErrNotFound
	}
	return a, nil
}

func (ds *DirectoryStore) ListAssignments(_ context.Context, c store.Catalog) ([]store.Assignment, error) {
	if err := checkCatalog(c); err != nil {
		return nil, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.assignment[c]), nil
}

func (ds *DirectoryStore) UpdateAssignment(_ context.Context, c store.Catalog, a store.Assignment) (store.Assignment, error) {
	if err := checkCatalog(c); err != nil {
		return store.Assignment{}, err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignment[c][a.ID]; !ok {
		return store.Assignment{}, store.ErrNotFound
	}
	if err := s.checkAssignment(c, a); err != nil {
		return store.Assignment{}, err
	}
	s.assignment[c][a.ID] = a
	return a, nil
}

func (ds *DirectoryStore) DeleteAssignment(_ context.Context, c store.Catalog, id int64) error {
	if err := checkCatalog(c); err != nil {
		return err
	}
	s := ds.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.assignment[c][id]; !ok {
		return store.ErrNotFound
	}
	delete(s.assignment[c], id)
	return nil
}
