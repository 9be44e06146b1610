package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	sqlitestore "github.com/BrandonDHaskell/Janus/server/internal/janus/store/sqlite"
)

func TestScanLogStore_AppendAndList(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewVisitorStore(conn, w)
	ts := sqlitestore.NewTurnstileStore(conn, w)
	ls := sqlitestore.NewScanLogStore(conn, w)
	ctx := context.Background()

	v := seedVisitor(t, vs, "jane@x.com", "+15551234567", "ab12cd34")
	e1, _ := ts.OpenEntry(ctx, v.ID, t0)
	e2, _ := ts.OpenEntry(ctx, v.ID, t0)

	rec, err := ls.AppendScan(ctx, store.ScanLogEntry{TurnstileID: e1.ID, Payload: "ID: 1", Status: store.ScanSuccess, ScannedAt: t0})
	if err != nil {
		t.Fatalf("AppendScan: %v", err)
	}
	if _, err := ls.AppendScan(ctx, store.ScanLogEntry{TurnstileID: e2.ID, Payload: "junk", Status: store.ScanDenied, ScannedAt: t0}); err != nil {
		t.Fatal(err)
	}

	got, err := ls.GetScan(ctx, rec.ID)
	if err != nil {
		t.Fatalf("GetScan: %v", err)
	}
	if got.Payload != "ID: 1" || got.Status != store.ScanSuccess || !got.ScannedAt.Equal(t0) {
		t.Errorf("unexpected scan: %+v", got)
	}

	only, err := ls.ListScans(ctx, &e1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(only) != 1 || only[0].ID != rec.ID {
		t.Fatalf("expected only scan %d, got %+v", rec.ID, only)
	}
	all, err := ls.ListScans(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(all))
	}
}

func TestScanLogStore_UnknownTurnstile(t *testing.T) {
	conn := openTestDB(t)
	ls := sqlitestore.NewScanLogStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	_, err := ls.AppendScan(ctx, store.ScanLogEntry{TurnstileID: 7, Payload: "x", Status: store.ScanSuccess, ScannedAt: t0})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("AppendScan: expected ErrNotFound, got %v", err)
	}
	id := int64(7)
	if _, err := ls.ListScans(ctx, &id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("ListScans: expected ErrNotFound, got %v", err)
	}
	if _, err := ls.GetScan(ctx, 1); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("GetScan: expected ErrNotFound, got %v", err)
	}
}

func TestScanLogStore_RowsAreAppendOnly(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewVisitorStore(conn, w)
	ts := sqlitestore.NewTurnstileStore(conn, w)
	ls := sqlitestore.NewScanLogStore(conn, w)
	ctx := context.Background()

	v := seedVisitor(t, vs, "jane@x.com", "+15551234567", "ab12cd34")
	e, _ := ts.OpenEntry(ctx, v.ID, t0)
	rec, err := ls.AppendScan(ctx, store.ScanLogEntry{TurnstileID: e.ID, Payload: "x", Status: store.ScanSuccess, ScannedAt: t0})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := conn.ExecContext(ctx, `UPDATE turnstile_logs SET status = 'denied' WHERE id = ?`, rec.ID); err == nil {
		t.Fatal("expected UPDATE on turnstile_logs to be rejected")
	}
	got, _ := ls.GetScan(ctx, rec.ID)
	if got.Status != store.ScanSuccess {
		t.Fatalf("status changed to %q", got.Status)
	}
}
