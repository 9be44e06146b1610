package memory

import (
	"context"
	"fmt"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type VisitorStore struct{ s *Store }

func NewVisitorStore(s *Store) *VisitorStore { return &VisitorStore{s: s} }

// visitorConflict reports the first unique field v collides on, ignoring
// the row with id skip.
func (s *Store) visitorConflict(v store.Visitor, skip int64) error {
	for id, o := range s.visitors {
		if id == skip {
			continue
		}
		switch {
		case sameEmail(o.Email, v.Email):
			return &store.ConflictError{Field: store.FieldEmail}
		case o.Mobile == v.Mobile:
			return &store.ConflictError{Field: store.FieldMobile}
		case o.VisitCode == v.VisitCode:
			return &store.ConflictError{Field: store.FieldVisitCode}
		}
	}
	return nil
}

func (vs *VisitorStore) CreateVisitor(ctx context.Context, rec store.NewVisitor, badge store.BadgeFunc) (store.Visitor, error) {
	s := vs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.RegisteredBy != nil {
		if _, ok := s.users[*rec.RegisteredBy]; !ok {
			return store.Visitor{}, fmt.Errorf("CreateVisitor registered_by: %w", store.ErrNotFound)
		}
	}

	now := stamp(rec.CreatedAt)
	v := store.Visitor{
		Name:         rec.Name,
		Email:        rec.Email,
		Mobile:       rec.Mobile,
		RegisteredBy: rec.RegisteredBy,
		EmployeeName: rec.EmployeeName,
		Purpose:      rec.Purpose,
		VisitCode:    rec.VisitCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.visitorConflict(v, 0); err != nil {
		return store.Visitor{}, err
	}

	v.ID = s.nextID()
	if badge != nil {
		ref, err := badge(ctx, v)
		if err != nil {
			return store.Visitor{}, err
		}
		v.BadgeRef = ref
	}
	s.visitors[v.ID] = v
	return v, nil
}

func (vs *VisitorStore) UpdateVisitor(ctx context.Context, id int64, patch store.VisitorPatch, badge store.BadgeFunc) (store.Visitor, bool, error) {
	s := vs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.visitors[id]
	if !ok {
		return store.Visitor{}, false, store.ErrNotFound
	}
	next := store.ApplyVisitorPatch(cur, patch)
	if store.SameVisitorFields(cur, next) {
		return cur, false, nil
	}
	if err := s.visitorConflict(next, id); err != nil {
		return store.Visitor{}, false, err
	}
	next.UpdatedAt = stamp(patch.UpdatedAt)

	if badge != nil {
		ref, err := badge(ctx, next)
		if err != nil {
			return store.Visitor{}, false, err
		}
		next.BadgeRef = ref
	}
	s.visitors[id] = next
	return next, true, nil
}

func (vs *VisitorStore) SetBadgeRef(_ context.Context, id int64, ref string) error {
	s := vs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[id]
	if !ok {
		return store.ErrNotFound
	}
	v.BadgeRef = ref
	s.visitors[id] = v
	return nil
}

func (vs *VisitorStore) GetVisitor(_ context.Context, id int64) (store.Visitor, error) {
	s := vs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.visitors[id]
	if !ok {
		return store.Visitor{}, store.ErrNotFound
	}
	return v, nil
}

func (vs *VisitorStore) ListVisitors(context.Context) ([]store.Visitor, error) {
	s := vs.s
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedValues(s.visitors), nil
}

func (vs *VisitorStore) DeleteVisitor(_ context.Context, id int64) error {
	s := vs.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.visitors[id]; !ok {
		return store.ErrNotFound
	}
	for eid, e := range s.entries {
		if e.VisitorID == id {
			s.deleteEntryLocked(eid)
		}
	}
	delete(s.visitors, id)
	return nil
}
