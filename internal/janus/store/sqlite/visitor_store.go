package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	dbpkg "github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type VisitorStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewVisitorStore(db *sql.DB, writer *dbpkg.Worker) *VisitorStore {
	return &VisitorStore{db: db, writer: writer}
}

const visitorColumns = `
visitor_id, visitor_name, visitor_email, visitor_mobile, registered_by,
employee_name, purpose, visit_code, qr_code, created_at_ms, updated_at_ms`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVisitor(r rowScanner) (store.Visitor, error) {
	var (
		v            store.Visitor
		registeredBy sql.NullInt64
		employeeName sql.NullString
		qrCode       sql.NullString
		createdMs    int64
		updatedMs    int64
	)
	if err := r.Scan(
		&v.ID, &v.Name, &v.Email, &v.Mobile, &registeredBy,
		&employeeName, &v.Purpose, &v.VisitCode, &qrCode, &createdMs, &updatedMs,
	); err != nil {
		return store.Visitor{}, err
	}
	v.RegisteredBy = nullableInt(registeredBy)
	v.EmployeeName = nullableString(employeeName)
	v.BadgeRef = qrCode.String
	v.CreatedAt = fromMs(createdMs)
	v.UpdatedAt = fromMs(updatedMs)
	return v, nil
}

func (s *VisitorStore) CreateVisitor(ctx context.Context, rec store.NewVisitor, badge store.BadgeFunc) (store.Visitor, error) {
	nowMs := toMs(rec.CreatedAt)

	var out store.Visitor
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO visitors(
  visitor_name, visitor_email, visitor_mobile, registered_by,
  employee_name, purpose, visit_code, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);
`,
			rec.Name, rec.Email, rec.Mobile, rec.RegisteredBy,
			rec.EmployeeName, rec.Purpose, rec.VisitCode, nowMs, nowMs,
		)
		if err != nil {
			return fmt.Errorf("CreateVisitor insert: %w", translate(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("CreateVisitor id: %w", err)
		}

		v := store.Visitor{
			ID:           id,
			Name:         rec.Name,
			Email:        rec.Email,
			Mobile:       rec.Mobile,
			RegisteredBy: rec.RegisteredBy,
			EmployeeName: rec.EmployeeName,
			Purpose:      rec.Purpose,
			VisitCode:    rec.VisitCode,
			CreatedAt:    fromMs(nowMs),
			UpdatedAt:    fromMs(nowMs),
		}

		if badge != nil {
			ref, err := badge(ctx, v)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE visitors SET qr_code = ? WHERE visitor_id = ?;`, ref, id,
			); err != nil {
				return fmt.Errorf("CreateVisitor badge ref: %w", err)
			}
			v.BadgeRef = ref
		}

		out = v
		return nil
	})
	if err != nil {
		return store.Visitor{}, err
	}
	return out, nil
}

func (s *VisitorStore) UpdateVisitor(ctx context.Context, id int64, patch store.VisitorPatch, badge store.BadgeFunc) (store.Visitor, bool, error) {
	var (
		out     store.Visitor
		changed bool
	)
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		cur, err := scanVisitor(tx.QueryRowContext(ctx,
			`SELECT `+visitorColumns+` FROM visitors WHERE visitor_id = ?;`, id))
		if err != nil {
			return fmt.Errorf("UpdateVisitor load: %w", translate(err))
		}

		next := store.ApplyVisitorPatch(cur, patch)
		if store.SameVisitorFields(cur, next) {
			out = cur
			return nil
		}
		next.UpdatedAt = fromMs(toMs(patch.UpdatedAt))

		if _, err := tx.ExecContext(ctx, `
UPDATE visitors
SET visitor_name   = ?,
    visitor_email  = ?,
    visitor_mobile = ?,
    employee_name  = ?,
    purpose        = ?,
    updated_at_ms  = ?
WHERE visitor_id = ?;
`,
			next.Name, next.Email, next.Mobile, next.EmployeeName, next.Purpose,
			next.UpdatedAt.UnixMilli(), id,
		); err != nil {
			return fmt.Errorf("UpdateVisitor: %w", translate(err))
		}

		if badge != nil {
			ref, err := badge(ctx, next)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`UPDATE visitors SET qr_code = ? WHERE visitor_id = ?;`, ref, id,
			); err != nil {
				return fmt.Errorf("UpdateVisitor badge ref: %w", err)
			}
			next.BadgeRef = ref
		}

		out = next
		changed = true
		return nil
	})
	if err != nil {
		return store.Visitor{}, false, err
	}
	return out, changed, nil
}

func (s *VisitorStore) SetBadgeRef(ctx context.Context, id int64, ref string) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE visitors SET qr_code = ? WHERE visitor_id = ?;`, ref, id)
		if err != nil {
			return fmt.Errorf("SetBadgeRef: %w", err)
		}
		return rowsAffectedOrNotFound(res)
	})
}

func (s *VisitorStore) GetVisitor(ctx context.Context, id int64) (store.Visitor, error) {
	v, err := scanVisitor(s.db.QueryRowContext(ctx,
		`SELECT `+visitorColumns+` FROM visitors WHERE visitor_id = ?;`, id))
	if err != nil {
		return store.Visitor{}, fmt.Errorf("GetVisitor %d: %w", id, translate(err))
	}
	return v, nil
}

func (s *VisitorStore) ListVisitors(ctx context.Context) ([]store.Visitor, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+visitorColumns+` FROM visitors ORDER BY visitor_id;`)
	if err != nil {
		return nil, fmt.Errorf("ListVisitors: %w", err)
	}
	defer rows.Close()

	var out []store.Visitor
	for rows.Next() {
		v, err := scanVisitor(rows)
		if err != nil {
			return nil, fmt.Errorf("ListVisitors scan: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteVisitor relies on ON DELETE CASCADE (foreign_keys is on for every
// connection) to remove turnstile entries and, through them, scan logs.
func (s *VisitorStore) DeleteVisitor(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM visitors WHERE visitor_id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeleteVisitor: %w", err)
		}
		return rowsAffectedOrNotFound(res)
	})
}
