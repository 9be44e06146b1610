package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	dbpkg "github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type TurnstileStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewTurnstileStore(db *sql.DB, writer *dbpkg.Worker) *TurnstileStore {
	return &TurnstileStore{db: db, writer: writer}
}

const turnstileColumns = `id, visitor_id, entry_time_ms, exit_time_ms`

func scanEntry(r rowScanner) (store.TurnstileEntry, error) {
	var (
		e       store.TurnstileEntry
		entryMs int64
		exitMs  sql.NullInt64
	)
	if err := r.Scan(&e.ID, &e.VisitorID, &entryMs, &exitMs); err != nil {
		return store.TurnstileEntry{}, err
	}
	e.EntryTime = fromMs(entryMs)
	e.ExitTime = nullableMs(exitMs)
	return e, nil
}

func (s *TurnstileStore) OpenEntry(ctx context.Context, visitorID int64, at time.Time) (store.TurnstileEntry, error) {
	entryMs := toMs(at)

	var out store.TurnstileEntry
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO turnstiles(visitor_id, entry_time_ms) VALUES (?, ?);
`, visitorID, entryMs)
		if err != nil {
			// FK failure: the visitor does not exist.
			return fmt.Errorf("OpenEntry insert: %w", translate(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("OpenEntry id: %w", err)
		}
		out = store.TurnstileEntry{ID: id, VisitorID: visitorID, EntryTime: fromMs(entryMs)}
		return nil
	})
	if err != nil {
		return store.TurnstileEntry{}, err
	}
	return out, nil
}

func (s *TurnstileStore) CloseEntry(ctx context.Context, id int64, at time.Time) (store.TurnstileEntry, error) {
	var out store.TurnstileEntry
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		e, err := scanEntry(tx.QueryRowContext(ctx,
			`SELECT `+turnstileColumns+` FROM turnstiles WHERE id = ?;`, id))
		if err != nil {
			return fmt.Errorf("CloseEntry load: %w", translate(err))
		}
		if e.ExitTime != nil {
			return &store.ConflictError{Field: store.FieldExitTime}
		}

		exit := fromMs(toMs(at))
		if exit.Before(e.EntryTime) {
			exit = e.EntryTime
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE turnstiles SET exit_time_ms = ? WHERE id = ? AND exit_time_ms IS NULL;`,
			exit.UnixMilli(), id,
		); err != nil {
			return fmt.Errorf("CloseEntry update: %w", err)
		}
		e.ExitTime = &exit
		out = e
		return nil
	})
	if err != nil {
		return store.TurnstileEntry{}, err
	}
	return out, nil
}

func (s *TurnstileStore) GetEntry(ctx context.Context, id int64) (store.TurnstileEntry, error) {
	e, err := scanEntry(s.db.QueryRowContext(ctx,
		`SELECT `+turnstileColumns+` FROM turnstiles WHERE id = ?;`, id))
	if err != nil {
		return store.TurnstileEntry{}, fmt.Errorf("GetEntry %d: %w", id, translate(err))
	}
	return e, nil
}

func (s *TurnstileStore) ListEntries(ctx context.Context, visitorID *int64) ([]store.TurnstileEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if visitorID != nil {
		if err := requireRow(ctx, s.db, `SELECT 1 FROM visitors WHERE visitor_id = ?;`, *visitorID); err != nil {
			return nil, fmt.Errorf("ListEntries visitor: %w", err)
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+turnstileColumns+` FROM turnstiles WHERE visitor_id = ? ORDER BY id;`, *visitorID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+turnstileColumns+` FROM turnstiles ORDER BY id;`)
	}
	if err != nil {
		return nil, fmt.Errorf("ListEntries: %w", err)
	}
	defer rows.Close()

	var out []store.TurnstileEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("ListEntries scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteEntry cascades to the entry's scan logs.
func (s *TurnstileStore) DeleteEntry(ctx context.Context, id int64) error {
	return s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM turnstiles WHERE id = ?;`, id)
		if err != nil {
			return fmt.Errorf("DeleteEntry: %w", err)
		}
		return rowsAffectedOrNotFound(res)
	})
}
