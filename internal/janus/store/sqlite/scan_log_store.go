package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	dbpkg "github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

type ScanLogStore struct {
	db     *sql.DB
	writer *dbpkg.Worker
}

func NewScanLogStore(db *sql.DB, writer *dbpkg.Worker) *ScanLogStore {
	return &ScanLogStore{db: db, writer: writer}
}

const scanColumns = `id, turnstile_id, qr_code_scan, status, scanned_at_ms`

func scanScan(r rowScanner) (store.ScanLogEntry, error) {
	var (
		e         store.ScanLogEntry
		status    string
		scannedMs int64
	)
	if err := r.Scan(&e.ID, &e.TurnstileID, &e.Payload, &status, &scannedMs); err != nil {
		return store.ScanLogEntry{}, err
	}
	e.Status = store.ScanStatus(status)
	e.ScannedAt = fromMs(scannedMs)
	return e, nil
}

func (s *ScanLogStore) AppendScan(ctx context.Context, rec store.ScanLogEntry) (store.ScanLogEntry, error) {
	scannedMs := toMs(rec.ScannedAt)

	var out store.ScanLogEntry
	err := s.writer.Do(ctx, func(ctx context.Context, tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
INSERT INTO turnstile_logs(turnstile_id, qr_code_scan, status, scanned_at_ms)
VALUES (?, ?, ?, ?);
`, rec.TurnstileID, rec.Payload, string(rec.Status), scannedMs)
		if err != nil {
			return fmt.Errorf("AppendScan insert: %w", translate(err))
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("AppendScan id: %w", err)
		}
		out = store.ScanLogEntry{
			ID:          id,
			TurnstileID: rec.TurnstileID,
			Payload:     rec.Payload,
			Status:      rec.Status,
			ScannedAt:   fromMs(scannedMs),
		}
		return nil
	})
	if err != nil {
		return store.ScanLogEntry{}, err
	}
	return out, nil
}

func (s *ScanLogStore) GetScan(ctx context.Context, id int64) (store.ScanLogEntry, error) {
	e, err := scanScan(s.db.QueryRowContext(ctx,
		`SELECT `+scanColumns+` FROM turnstile_logs WHERE id = ?;`, id))
	if err != nil {
		return store.ScanLogEntry{}, fmt.Errorf("GetScan %d: %w", id, translate(err))
	}
	return e, nil
}

func (s *ScanLogStore) ListScans(ctx context.Context, turnstileID *int64) ([]store.ScanLogEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if turnstileID != nil {
		if err := requireRow(ctx, s.db, `SELECT 1 FROM turnstiles WHERE id = ?;`, *turnstileID); err != nil {
			return nil, fmt.Errorf("ListScans turnstile: %w", err)
		}
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+scanColumns+` FROM turnstile_logs WHERE turnstile_id = ? ORDER BY id;`, *turnstileID)
	} else {
		rows, err = s.db.QueryContext(ctx, `SELECT `+scanColumns+` FROM turnstile_logs ORDER BY id;`)
	}
	if err != nil {
		return nil, fmt.Errorf("ListScans: %w", err)
	}
	defer rows.Close()

	var out []store.ScanLogEntry
	for rows.Next() {
		e, err := scanScan(rows)
		if err != nil {
			return nil, fmt.Errorf("ListScans scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
