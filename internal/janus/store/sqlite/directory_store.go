package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	dbpkg "github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

// catalogTable names the SQL objects behind one store.Catalog. Every
// identifier here is a constant; none is derived from input.
type catalogTable struct {
	table      string // departments
	idCol      string // dept_id
	nameCol    string // department_name
	assignment string // user_departments
	targetCol  string // dept_id on the assignment table
}

var catalogTables = map[store.Catalog]catalogTable{
	store.Departments:  {"departments", "dept_id", "department_name", "user_departments", "dept_id"},
	store.Roles:        {"roles", "role_id", "role_name", "user_roles", "role_id"},
	store.Designations: {"designations", "desgn_id", "designation_name", "user_designations", "desgn_id"},
}

func tableFor(c store.Catalog) (catalogTable, error) {
	t, ok := catalogTables[c]
	if !ok {
		return catalogTable{}, fmt.Errorf("unknown catalog %s", c)
	}
	return t, nil
}

type DirectoryStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewDirectoryStore(db *sql.DB, writer *dbpkg.Worker) *DirectoryStore {
	return &DirectoryStore{db: db, writer: writer}
}

func (s *DirectoryStore) CreateEntry(ctx context.Context, c store.Catalog, name string) (store.CatalogEntry, error) {
	t, err := tableFor(c)
	if err != nil {
		return store.CatalogEntry{}, err
	}
	var out store.CatalogEntry
	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s(%s) VALUES (?);`, t.table, t.nameCol), name)
		if err != nil {
			return fmt.Errorf("create %s: %w", c, translate(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create %s id: %w", c, err)
		}
		out = store.CatalogEntry{ID: id, Name: name}
		return nil
	})
	if err != nil {
		return store.CatalogEntry{}, err
	}
	return out, nil
}

func (s *DirectoryStore) GetEntry(ctx context.Context, c store.Catalog, id int64) (store.CatalogEntry, error) {
	t, err := tableFor(c)
	if err != nil {
		return store.CatalogEntry{}, err
	}
	var e store.CatalogEntry
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = ?;`, t.idCol, t.nameCol, t.table, t.idCol), id,
	).Scan(&e.ID, &e.Name)
	if err != nil {
		return store.CatalogEntry{}, fmt.Errorf("get %s %d: %w", c, id, translate(err))
	}
	return e, nil
}

func (s *DirectoryStore) ListEntries(ctx context.Context, c store.Catalog) ([]store.CatalogEntry, error) {
	t, err := tableFor(c)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s, %s FROM %s ORDER BY %s;`, t.idCol, t.nameCol, t.table, t.idCol))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c, err)
	}
	defer rows.Close()

	var out []store.CatalogEntry
	for rows.Next() {
		var e store.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Name); err != nil {
			return nil, fmt.Errorf("list %s scan: %w", c, err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *DirectoryStore) RenameEntry(ctx context.Context, c store.Catalog, id int64, name string) (store.CatalogEntry, error) {
	t, err := tableFor(c)
	if err != nil {
		return store.CatalogEntry{}, err
	}
	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET %s = ? WHERE %s = ?;`, t.table, t.nameCol, t.idCol), name, id)
		if err != nil {
			return fmt.Errorf("rename %s: %w", c, translate(err))
		}
		return rowsAffectedOrNotFound(res)
	})
	if err != nil {
		return store.CatalogEntry{}, err
	}
	return store.CatalogEntry{ID: id, Name: name}, nil
}

// DeleteEntry also removes every assignment pointing at the entry.
func (s *DirectoryStore) DeleteEntry(ctx context.Context, c store.Catalog, id int64) error {
	t, err := tableFor(c)
	if err != nil {
		return err
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE %s = ?;`, t.table, t.idCol), id)
		if err != nil {
			return fmt.Errorf("delete %s: %w", c, err)
		}
		return rowsAffectedOrNotFound(res)
	})
}

func (s *DirectoryStore) CreateAssignment(ctx context.Context, c store.Catalog, userID, targetID int64) (store.Assignment, error) {
	t, err := tableFor(c)
	if err != nil {
		return store.Assignment{}, err
	}
	var out store.Assignment
	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`INSERT INTO %s(user_id, %s) VALUES (?, ?);`, t.assignment, t.targetCol),
			userID, targetID)
		if err != nil {
			return fmt.Errorf("assign %s: %w", c, translate(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("assign %s id: %w", c, err)
		}
		out = store.Assignment{ID: id, UserID: userID, TargetID: targetID}
		return nil
	})
	if err != nil {
		return store.Assignment{}, err
	}
	return out, nil
}

func (s *DirectoryStore) GetAssignment(ctx context.Context, c store.Catalog, id int64) (store.Assignment, error) {
	t, err := tableFor(c)
	if err != nil {
		return store.Assignment{}, err
	}
	var a store.Assignment
	err = s.db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT id, user_id, %s FROM %s WHERE id = ?;`, t.targetCol, t.assignment), id,
	).Scan(&a.ID, &a.UserID, &a.TargetID)
	if err != nil {
		return store.Assignment{}, fmt.Errorf("get %s assignment %d: %w", c, id, translate(err))
	}
	return a, nil
}

func (s *DirectoryStore) ListAssignments(ctx context.Context, c store.Catalog) ([]store.Assignment, error) {
	t, err := tableFor(c)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT id, user_id, %s FROM %s ORDER BY id;`, t.targetCol, t.assignment))
	if err != nil {
		return nil, fmt.Errorf("list %s assignments: %w", c, err)
	}
	defer rows.Close()

	var out []store.Assignment
	for rows.Next() {
		var a store.Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.TargetID); err != nil {
			return nil, fmt.Errorf("list %s assignments scan: %w", c, err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *DirectoryStore) UpdateAssignment(ctx context.Context, c store.Catalog, a store.Assignment) (store.Assignment, error) {
	t, err := tableFor(c)
	if err != nil {
		return store.Assignment{}, err
	}
	err = s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			fmt.Sprintf(`UPDATE %s SET user_id = ?, %s = ? WHERE id = ?;`, t.assignment, t.targetCol),
			a.UserID, a.TargetID, a.ID)
		if err != nil {
			return fmt.Errorf("update %s assignment: %w", c, translate(err))
		}
		return rowsAffectedOrNotFound(res)
	})
	if err != nil {
		return store.Assignment{}, err
	}
	return a, nil
}

func (s *DirectoryStore) DeleteAssignment(ctx context.Context, c store.Catalog, id int64) error {
	t, err := tableFor(c)
	if err != nil {
		return err
	}
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`, t.assignment), id)
		if err != nil {
			return fmt.Errorf("delete %s assignment: %w", c, err)
		}
		return rowsAffectedOrNotFound(res)
	})
}
