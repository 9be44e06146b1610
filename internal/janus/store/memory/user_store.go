package memory

import (
	"context"
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type UserStore struct{ s *Store }

func NewUserStore(s *Store) *UserStore { return &UserStore{s: s} }

func (us *UserStore) CreateUser(_ context.Context, u store.User) (store.User, error) {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.users {
		if sameEmail(o.Email, u.Email) {
			return store.User{}, &store.ConflictError{Field: store.FieldEmail}
		}
		if o.Mobile == u.Mobile {
			return store.User{}, &store.ConflictError{Field: store.FieldMobile}
		}
	}
	u.ID = s.nextID()
	u.CreatedAt = stamp(u.CreatedAt)
	u.UpdatedAt = u.CreatedAt
	s.users[u.ID] = u
	return u, nil
}

func (us *UserStore) GetUser(_ context.Context, id int64) (store.User, error) {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.User{}, store.ErrNotFound
	}
	return u, nil
}

func (us *UserStore) GetUserByEmail(_ context.Context, email string) (store.User, error) {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if sameEmail(u.Email, email) {
			return u, nil
		}
	}
	return store.User{}, store.ErrNotFound
}

func (us *UserStore) SetPasswordHash(_ context.Context, id int64, hash string, at time.Time) error {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.PasswordHash = hash
	u.UpdatedAt = stamp(at)
	s.users[id] = u
	return nil
}

func (us *UserStore) DeleteUser(_ context.Context, id int64) error {
	s := us.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return store.ErrNotFound
	}
	for _, byID := range s.assignment {
		for aid, a := range byID {
			if a.UserID == id {
				delete(byID, aid)
			}
		}
	}
	for vid, v := range s.visitors {
		if v.RegisteredBy != nil && *v.RegisteredBy == id {
			v.RegisteredBy = nil
			s.visitors[vid] = v
		}
	}
	delete(s.users, id)
	return nil
}
