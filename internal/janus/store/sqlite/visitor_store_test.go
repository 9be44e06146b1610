package sqlite_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	sqlitestore "github.com/BrandonDHaskell/Janus/server/internal/janus/store/sqlite"
)

// ═══════════════════════════════════════════════════════════════════════════
// CreateVisitor
// ═══════════════════════════════════════════════════════════════════════════

func TestVisitorStore_Create_AttachesBadge(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	var seenID int64
	v, err := vs.CreateVisitor(ctx, newVisitor("Jane Doe", "jane@x.com", "+15551234567", "ab12cd34"),
		func(ctx context.Context, v store.Visitor) (string, error) {
			seenID = v.ID
			return "qr_codes/qr_code_1.png", nil
		})
	if err != nil {
		t.Fatalf("CreateVisitor: %v", err)
	}
	if v.ID == 0 || seenID != v.ID {
		t.Fatalf("badge saw id %d, visitor id %d", seenID, v.ID)
	}

	got, err := vs.GetVisitor(ctx, v.ID)
	if err != nil {
		t.Fatalf("GetVisitor: %v", err)
	}
	if got.BadgeRef != "qr_codes/qr_code_1.png" {
		t.Errorf("BadgeRef = %q", got.BadgeRef)
	}
	if got.VisitCode != "ab12cd34" || !got.CreatedAt.Equal(t0) {
		t.Errorf("unexpected row: %+v", got)
	}
}

func TestVisitorStore_Create_BadgeFailureRollsBack(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))

	boom := errors.New("disk full")
	_, err := vs.CreateVisitor(context.Background(), newVisitor("Jane", "jane@x.com", "+15551234567", "ab12cd34"),
		func(context.Context, store.Visitor) (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if n := countRows(t, conn, "visitors"); n != 0 {
		t.Fatalf("expected no visitor rows, got %d", n)
	}
}

func TestVisitorStore_Create_UniqueFields(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if _, err := vs.CreateVisitor(ctx, newVisitor("Jane", "jane@x.com", "+15551234567", "aaaaaaaa"), nil); err != nil {
		t.Fatalf("first: %v", err)
	}

	cases := []struct {
		name  string
		rec   store.NewVisitor
		field string
	}{
		{"email differs only in case", newVisitor("J2", "JANE@X.COM", "+15550000000", "bbbbbbbb"), store.FieldEmail},
		{"mobile", newVisitor("J3", "other@x.com", "+15551234567", "cccccccc"), store.FieldMobile},
		{"visit code", newVisitor("J4", "third@x.com", "+15559999999", "aaaaaaaa"), store.FieldVisitCode},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := vs.CreateVisitor(ctx, tc.rec, nil)
			if !errors.Is(err, store.ErrConflict) {
				t.Fatalf("expected conflict, got %v", err)
			}
			if f, _ := store.ConflictField(err); f != tc.field {
				t.Errorf("field = %q, want %q", f, tc.field)
			}
		})
	}
}

func TestVisitorStore_Create_ConcurrentSameEmail(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		ok        int
		conflicts int
	)
	for i, rec := range []store.NewVisitor{
		newVisitor("A", "same@x.com", "+15551111111", "11111111"),
		newVisitor("B", "same@x.com", "+15552222222", "22222222"),
	} {
		wg.Add(1)
		go func(i int, rec store.NewVisitor) {
			defer wg.Done()
			_, err := vs.CreateVisitor(context.Background(), rec, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				ok++
			case errors.Is(err, store.ErrConflict):
				conflicts++
			default:
				t.Errorf("create %d: %v", i, err)
			}
		}(i, rec)
	}
	wg.Wait()

	if ok != 1 || conflicts != 1 {
		t.Fatalf("expected 1 success and 1 conflict, got %d/%d", ok, conflicts)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// UpdateVisitor
// ═══════════════════════════════════════════════════════════════════════════

func TestVisitorStore_Update_NoChangeSkipsBadge(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	v, err := vs.CreateVisitor(ctx, newVisitor("Jane", "jane@x.com", "+15551234567", "ab12cd34"), nil)
	if err != nil {
		t.Fatalf("CreateVisitor: %v", err)
	}

	calls := 0
	badge := func(context.Context, store.Visitor) (string, error) { calls++; return "ref", nil }

	_, changed, err := vs.UpdateVisitor(ctx, v.ID, store.VisitorPatch{Name: strPtr("Jane"), UpdatedAt: t0}, badge)
	if err != nil {
		t.Fatalf("UpdateVisitor: %v", err)
	}
	if changed || calls != 0 {
		t.Fatalf("expected no write, changed=%v calls=%d", changed, calls)
	}

	got, changed, err := vs.UpdateVisitor(ctx, v.ID, store.VisitorPatch{Purpose: strPtr("Interview"), UpdatedAt: t0.Add(time.Minute)}, badge)
	if err != nil {
		t.Fatalf("UpdateVisitor: %v", err)
	}
	if !changed || calls != 1 {
		t.Fatalf("expected one badge render, changed=%v calls=%d", changed, calls)
	}
	if got.Purpose != "Interview" || got.BadgeRef != "ref" || !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("unexpected visitor after update: %+v", got)
	}
}

func TestVisitorStore_Update_ClearEmployeeName(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	rec := newVisitor("Jane", "jane@x.com", "+15551234567", "ab12cd34")
	rec.EmployeeName = strPtr("Bob")
	v, err := vs.CreateVisitor(ctx, rec, nil)
	if err != nil {
		t.Fatalf("CreateVisitor: %v", err)
	}

	var cleared *string
	got, changed, err := vs.UpdateVisitor(ctx, v.ID, store.VisitorPatch{EmployeeName: &cleared, UpdatedAt: t0}, nil)
	if err != nil {
		t.Fatalf("UpdateVisitor: %v", err)
	}
	if !changed || got.EmployeeName != nil {
		t.Fatalf("expected employee_name cleared, got %+v", got.EmployeeName)
	}
}

func TestVisitorStore_Update_ConflictAndMissing(t *testing.T) {
	conn := openTestDB(t)
	vs := sqlitestore.NewVisitorStore(conn, newTestWriter(t, conn))
	ctx := context.Background()

	if _, err := vs.CreateVisitor(ctx, newVisitor("A", "a@x.com", "+15551111111", "11111111"), nil); err != nil {
		t.Fatal(err)
	}
	b, err := vs.CreateVisitor(ctx, newVisitor("B", "b@x.com", "+15552222222", "22222222"), nil)
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = vs.UpdateVisitor(ctx, b.ID, store.VisitorPatch{Email: strPtr("a@x.com")}, nil)
	if f, ok := store.ConflictField(err); !ok || f != store.FieldEmail {
		t.Fatalf("expected email conflict, got %v", err)
	}

	_, _, err = vs.UpdateVisitor(ctx, 999, store.VisitorPatch{Name: strPtr("x")}, nil)
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// DeleteVisitor
// ═══════════════════════════════════════════════════════════════════════════

func TestVisitorStore_Delete_CascadesTransitively(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewVisitorStore(conn, w)
	ts := sqlitestore.NewTurnstileStore(conn, w)
	ls := sqlitestore.NewScanLogStore(conn, w)
	ctx := context.Background()

	v, err := vs.CreateVisitor(ctx, newVisitor("Jane", "jane@x.com", "+15551234567", "ab12cd34"), nil)
	if err != nil {
		t.Fatal(err)
	}
	e, err := ts.OpenEntry(ctx, v.ID, t0)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ls.AppendScan(ctx, store.ScanLogEntry{TurnstileID: e.ID, Payload: "p", Status: store.ScanSuccess, ScannedAt: t0}); err != nil {
		t.Fatal(err)
	}

	if err := vs.DeleteVisitor(ctx, v.ID); err != nil {
		t.Fatalf("DeleteVisitor: %v", err)
	}
	for _, table := range []string{"visitors", "turnstiles", "turnstile_logs"} {
		if n := countRows(t, conn, table); n != 0 {
			t.Errorf("%s: expected 0 rows, got %d", table, n)
		}
	}

	if err := vs.DeleteVisitor(ctx, v.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestVisitorStore_RegisteredByNulledOnUserDelete(t *testing.T) {
	conn := openTestDB(t)
	w := newTestWriter(t, conn)
	vs := sqlitestore.NewVisitorStore(conn, w)
	us := sqlitestore.NewUserStore(conn, w)
	ctx := context.Background()

	u, err := us.CreateUser(ctx, store.User{Name: "Host", Email: "host@x.com", Mobile: "+15550001111", PasswordHash: "h", IsActive: true})
	if err != nil {
		t.Fatal(err)
	}
	rec := newVisitor("Jane", "jane@x.com", "+15551234567", "ab12cd34")
	rec.RegisteredBy = &u.ID
	v, err := vs.CreateVisitor(ctx, rec, nil)
	if err != nil {
		t.Fatal(err)
	}

	if err := us.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}
	got, err := vs.GetVisitor(ctx, v.ID)
	if err != nil {
		t.Fatalf("visitor should survive user delete: %v", err)
	}
	if got.RegisteredBy != nil {
		t.Errorf("expected registered_by NULL, got %d", *got.RegisteredBy)
	}
}
