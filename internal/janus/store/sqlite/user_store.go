package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type UserStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewUserStore(db *sql.DB, writer *dbpkg.Worker) *UserStore {
	return &UserStore{db: db, writer: writer}
}

const userColumns = `id, name, email, mobile, password_hash, is_active, is_admin, created_at_ms, updated_at_ms`

func scanUser(r rowScanner) (store.User, error) {
	var (
		u         store.User
		active    int
		admin     int
		createdMs int64
		updatedMs int64
	)
	if err := r.Scan(&u.ID, &u.Name, &u.Email, &u.Mobile, &u.PasswordHash,
		&active, &admin, &createdMs, &updatedMs); err != nil {
		return store.User{}, err
	}
	u.IsActive = active != 0
	u.IsAdmin = admin != 0
	u.CreatedAt = fromMs(createdMs)
	u.UpdatedAt = fromMs(updatedMs)
	return u, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func (s *UserStore) CreateUser(ctx context.Context, u store.User) (store.User, error) {
	nowMs := toMs(u.CreatedAt)

	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO users(
  name, email, mobile, password_hash,
  is_active, is_admin, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`, u.Name, u.Email, u.Mobile, u.PasswordHash,
			boolInt(u.IsActive), boolInt(u.IsAdmin), nowMs, nowMs)
		if err != nil {
			return fmt.Errorf("CreateUser insert: %w", translate(err))
		}
		u.ID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateUser id: %w", err)
		}
		return nil
	})
	if err != nil {
		return store.User{}, err
	}
	u.CreatedAt = fromMs(nowMs)
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

func (s *UserStore) GetUser(ctx context.Context, id int64) (store.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?;`, id))
	if err != nil {
		return store.User{}, fmt.Errorf("GetUser %d: %w", id, translate(err))
	}
	return u, nil
}

// GetUserByEmail matches case-insensitively (the column is COLLATE NOCASE).
func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (store.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ?;`, email))
	if err != nil {
		return store.User{}, fmt.Errorf("GetUserByEmail: %w", translate(err))
	}
	return u, nil
}

func (s *UserStore) SetPasswordHash(ctx context.Context, id int64, hash string, at time.Time) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE users SET password_hash = ?, updated_at_ms = ? WHERE id = ?;`,
			hash, toMs(at), id)
		if err != nil {
			return fmt.Errorf("SetPasswordHash: %w", err)
		}
		return rowsAffectedOrNotFound(res)
	})
}

func (s *UserStore) DeleteUser(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeleteUser: %w", err)
		}
		return rowsAffectedOrNotFound(res)
	})
}
