package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

// constraintColumns maps "table.column" fragments of SQLite's
// "UNIQUE constraint failed: ..." message to store field names.
var constraintColumns = []struct {
	fragment string
	field    string
}{
	{"visitors.visitor_email", store.FieldEmail},
	{"visitors.visitor_mobile", store.FieldMobile},
	{"visitors.visit_code", store.FieldVisitCode},
	{"users.email", store.FieldEmail},
	{"users.mobile", store.FieldMobile},
	{"departments.department_name", store.FieldName},
	{"roles.role_name", store.FieldName},
	{"designations.designation_name", store.FieldName},
	{"user_roles.user_id", store.FieldAssignment},
	{"user_departments.user_id", store.FieldAssignment},
	{"user_designations.user_id", store.FieldAssignment},
}

func sqliteCode(err error) (int, bool) {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Code(), true
}

// translate turns driver constraint failures into store errors and leaves
// everything else untouched.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	code, ok := sqliteCode(err)
	if !ok {
		return err
	}
	switch code {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		msg := err.Error()
		for _, c := range constraintColumns {
			if strings.Contains(msg, c.fragment) {
				return &store.ConflictError{Field: c.field, Err: err}
			}
		}
		return &store.ConflictError{Field: "unknown", Err: err}
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return store.ErrNotFound
	}
	return err
}

func toMs(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().UnixMilli()
}

func fromMs(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

func nullableMs(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := fromMs(v.Int64)
	return &t
}

func nullableInt(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// rowsAffectedOrNotFound maps "nothing matched" to ErrNotFound.
func rowsAffectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// requireRow returns ErrNotFound when q (a single-row existence probe)
// matches nothing.
func requireRow(ctx context.Context, db *sql.DB, q string, args ...any) error {
	var one int
	if err := db.QueryRowContext(ctx, q, args...).Scan(&one); err != nil {
		return translate(err)
	}
	return nil
}
