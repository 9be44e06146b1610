package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/BrandonDHaskell/Janus/server/internal/auth"
	"github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/httpapi"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/fsbadge"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/memory"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/sqlite"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

// newTestServer wires up the full dependency graph using in-memory stores
// and returns an httptest.Server whose URL can be hit with a plain http.Client.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mem := memory.New()
	return startServer(t, storeSet{
		visitors:   memory.NewVisitorStore(mem),
		badges:     memory.NewBadgeStore(),
		turnstiles: memory.NewTurnstileStore(mem),
		scans:      memory.NewScanLogStore(mem),
		users:      memory.NewUserStore(mem),
		directory:  memory.NewDirectoryStore(mem),
	})
}

// newSQLiteTestServer is newTestServer over a migrated in-memory SQLite
// database and badge files in a temp dir.
func newSQLiteTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	name := "httpapi_" + strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	conn, err := db.OpenDSN(context.Background(), db.MemoryDSN(name))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	w := db.NewWorker(conn)
	t.Cleanup(func() {
		w.Close()
		conn.Close()
	})

	return startServer(t, storeSet{
		visitors:   sqlite.NewVisitorStore(conn, w),
		badges:     fsbadge.New(t.TempDir()),
		turnstiles: sqlite.NewTurnstileStore(conn, w),
		scans:      sqlite.NewScanLogStore(conn, w),
		users:      sqlite.NewUserStore(conn, w),
		directory:  sqlite.NewDirectoryStore(conn, w),
	})
}

type storeSet struct {
	visitors   store.VisitorStore
	badges     store.BadgeStore
	turnstiles store.TurnstileStore
	scans      store.ScanLogStore
	users      store.UserStore
	directory  store.DirectoryStore
}

func startServer(t *testing.T, s storeSet) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	tokens := auth.NewTokens("test-secret", "janus-test", 5*time.Minute, time.Hour)

	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:   logger,
		Addr:     ":0",
		Registry: service.NewVisitorRegistry(s.visitors, s.badges, service.RegistryConfig{}, logger),
		Tracker:  service.NewTurnstileTracker(s.turnstiles, logger),
		Scans:    service.NewScanLog(s.scans, logger),
		Accounts: service.NewAccountService(
			s.users,
			memory.NewResetTokenStore(),
			tokens,
			service.LogNotifier{Logger: logger},
			service.AccountConfig{BcryptCost: bcrypt.MinCost},
			logger,
		),
		Directory: service.NewDirectoryService(s.directory),
	})

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

type client struct {
	t     *testing.T
	base  string
	token string
}

func (c *client) do(method, path, contentType string, body []byte) *http.Response {
	c.t.Helper()
	req, err := http.NewRequest(method, c.base+path, bytes.NewReader(body))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	c.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (c *client) json(method, path string, body any) *http.Response {
	c.t.Helper()
	var b []byte
	if body != nil {
		var err error
		if b, err = json.Marshal(body); err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
	}
	return c.do(method, path, "application/json", b)
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("%s %s: expected %d, got %d: %s", resp.Request.Method, resp.Request.URL.Path, want, resp.StatusCode, b)
	}
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

// login registers a receptionist account and returns an authenticated
// client plus the account's profile.
func login(t *testing.T, ts *httptest.Server) (*client, types.Profile) {
	t.Helper()
	c := &client{t: t, base: ts.URL}

	resp := c.json(http.MethodPost, "/register", types.RegisterRequest{
		Name:      "Front Desk",
		Email:     "desk@janus.local",
		Mobile:    "+15550009999",
		Password:  "desk-pass-1",
		Password2: "desk-pass-1",
	})
	expectStatus(t, resp, http.StatusCreated)
	reg := decode[types.RegisterResponse](t, resp)

	resp = c.json(http.MethodPost, "/login", types.LoginRequest{Email: "desk@janus.local", Password: "desk-pass-1"})
	expectStatus(t, resp, http.StatusOK)
	c.token = decode[types.LoginResponse](t, resp).Token.Access
	return c, reg.Data
}

func parseTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t.Fatalf("parse time %q: %v", s, err)
	}
	return ts
}

func janeDoe() types.VisitorRequest {
	return types.VisitorRequest{
		VisitorName:   "Jane Doe",
		VisitorEmail:  "jane@x.com",
		VisitorMobile: "+15551234567",
		Purpose:       "Interview",
	}
}

// ── Public routes ────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}

	resp := c.do(http.MethodGet, "/health", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if !decode[types.HealthResponse](t, resp).OK {
		t.Error("expected ok=true")
	}
}

func TestProtectedRoutes_RequireToken(t *testing.T) {
	ts := newTestServer(t)
	c := &client{t: t, base: ts.URL}

	for _, path := range []string{"/visitors", "/turnstiles", "/turnstile-logs", "/profile", "/departments"} {
		resp := c.do(http.MethodGet, path, "", nil)
		expectStatus(t, resp, http.StatusUnauthorized)
	}

	c.token = "not-a-jwt"
	expectStatus(t, c.do(http.MethodGet, "/visitors", "", nil), http.StatusUnauthorized)
}

func TestProfileAndChangePassword(t *testing.T) {
	ts := newTestServer(t)
	c, me := login(t, ts)

	resp := c.do(http.MethodGet, "/profile", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if p := decode[types.Profile](t, resp); p.ID != me.ID || p.Email != "desk@janus.local" {
		t.Errorf("unexpected profile %+v", p)
	}

	resp = c.json(http.MethodPost, "/changepassword", types.PasswordRequest{Password: "a", Password2: "b"})
	expectStatus(t, resp, http.StatusBadRequest)

	resp = c.json(http.MethodPost, "/changepassword", types.PasswordRequest{Password: "desk-pass-2", Password2: "desk-pass-2"})
	expectStatus(t, resp, http.StatusOK)

	anon := &client{t: t, base: ts.URL}
	resp = anon.json(http.MethodPost, "/login", types.LoginRequest{Email: "desk@janus.local", Password: "desk-pass-1"})
	expectStatus(t, resp, http.StatusUnauthorized)
}

// ── Visitors / turnstiles / scans ────────────────────────────────────────────

func TestJaneDoeVisit(t *testing.T) {
	t.Run("memory", func(t *testing.T) { janeDoeVisit(t, newTestServer(t)) })
	t.Run("sqlite", func(t *testing.T) { janeDoeVisit(t, newSQLiteTestServer(t)) })
}

func janeDoeVisit(t *testing.T, ts *httptest.Server) {
	c, me := login(t, ts)

	// Accounts: duplicate email and a password past bcrypt's limit.
	long := strings.Repeat("p", 80)
	expectStatus(t, c.json(http.MethodPost, "/register", types.RegisterRequest{
		Name: "Other", Email: "desk@janus.local", Mobile: "+15550008888", Password: "other-pass-1", Password2: "other-pass-1",
	}), http.StatusConflict)
	expectStatus(t, c.json(http.MethodPost, "/register", types.RegisterRequest{
		Name: "Other", Email: "other@janus.local", Mobile: "+15550008888", Password: long, Password2: long,
	}), http.StatusBadRequest)
	expectStatus(t, c.json(http.MethodPost, "/changepassword", types.PasswordRequest{Password: long, Password2: long}), http.StatusBadRequest)

	// Register.
	resp := c.json(http.MethodPost, "/visitors", janeDoe())
	expectStatus(t, resp, http.StatusCreated)
	v := decode[types.Visitor](t, resp)
	if len(v.VisitCode) != 8 {
		t.Errorf("visit_code %q is not 8 chars", v.VisitCode)
	}
	if v.RegisteredBy == nil || *v.RegisteredBy != me.ID {
		t.Errorf("registered_by = %v, want %d", v.RegisteredBy, me.ID)
	}
	visitorPath := "/visitors/" + strconv.FormatInt(v.VisitorID, 10)

	// Badge.
	resp = c.do(http.MethodGet, visitorPath+"/badge", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("badge content type = %q", ct)
	}
	if _, err := png.Decode(resp.Body); err != nil {
		t.Errorf("badge is not a PNG: %v", err)
	}

	// Duplicate email.
	dup := janeDoe()
	dup.VisitorMobile = "+15550000000"
	resp = c.json(http.MethodPost, "/visitors", dup)
	expectStatus(t, resp, http.StatusConflict)
	if e := decode[types.ErrorResponse](t, resp); e.Field != "email" {
		t.Errorf("conflict field = %q, want email", e.Field)
	}

	// Entry.
	expectStatus(t, c.json(http.MethodPost, "/turnstiles", types.TurnstileRequest{Visitor: 999}), http.StatusNotFound)
	resp = c.json(http.MethodPost, "/turnstiles", types.TurnstileRequest{Visitor: v.VisitorID})
	expectStatus(t, resp, http.StatusCreated)
	entry := decode[types.Turnstile](t, resp)
	entryPath := "/turnstiles/" + strconv.FormatInt(entry.ID, 10)

	// Scans.
	resp = c.json(http.MethodPost, "/turnstile-logs", types.ScanRequest{Turnstile: entry.ID, QRCodeScan: "raw-scan-data", Status: "success"})
	expectStatus(t, resp, http.StatusCreated)
	scan := decode[types.Scan](t, resp)
	if scan.Status != "success" {
		t.Errorf("scan status = %q", scan.Status)
	}

	expectStatus(t, c.json(http.MethodPost, "/turnstile-logs", types.ScanRequest{Turnstile: 999, QRCodeScan: "raw-scan-data", Status: "success"}), http.StatusNotFound)

	resp = c.json(http.MethodPost, "/turnstile-logs", types.ScanRequest{Turnstile: entry.ID, QRCodeScan: "raw-scan-data", Status: "maybe"})
	expectStatus(t, resp, http.StatusBadRequest)
	if e := decode[types.ErrorResponse](t, resp); e.Field != "status" {
		t.Errorf("validation field = %q, want status", e.Field)
	}

	resp = c.do(http.MethodGet, entryPath+"/logs", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if logs := decode[[]types.Scan](t, resp); len(logs) != 1 {
		t.Errorf("expected 1 scan on entry, got %d", len(logs))
	}

	// Exit.
	resp = c.do(http.MethodPatch, entryPath, "application/json", []byte(`{"exit_time":"1999-01-01T00:00:00Z"}`))
	expectStatus(t, resp, http.StatusOK)
	closed := decode[types.Turnstile](t, resp)
	if closed.ExitTime == nil {
		t.Fatal("exit_time not set")
	}
	if parseTime(t, *closed.ExitTime).Before(parseTime(t, closed.EntryTime)) {
		t.Errorf("exit_time %s before entry_time %s", *closed.ExitTime, closed.EntryTime)
	}
	expectStatus(t, c.do(http.MethodPatch, entryPath, "", nil), http.StatusConflict)

	resp = c.do(http.MethodGet, visitorPath+"/turnstiles", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if es := decode[[]types.Turnstile](t, resp); len(es) != 1 {
		t.Errorf("expected 1 entry for visitor, got %d", len(es))
	}

	// Delete cascades.
	expectStatus(t, c.do(http.MethodDelete, visitorPath, "", nil), http.StatusNoContent)
	expectStatus(t, c.do(http.MethodGet, visitorPath, "", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodGet, entryPath, "", nil), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodGet, "/turnstile-logs/"+strconv.FormatInt(scan.ID, 10), "", nil), http.StatusNotFound)
}

func TestVisitor_UpdateRules(t *testing.T) {
	ts := newTestServer(t)
	c, _ := login(t, ts)

	resp := c.json(http.MethodPost, "/visitors", janeDoe())
	expectStatus(t, resp, http.StatusCreated)
	v := decode[types.Visitor](t, resp)
	path := "/visitors/" + strconv.FormatInt(v.VisitorID, 10)

	// visit_code is server-assigned.
	resp = c.do(http.MethodPatch, path, "application/json", []byte(`{"visit_code":"AAAAAAAA"}`))
	expectStatus(t, resp, http.StatusBadRequest)

	resp = c.do(http.MethodPatch, path, "application/json", []byte(`{"purpose":"Delivery","employee_name":"Bob"}`))
	expectStatus(t, resp, http.StatusOK)
	got := decode[types.Visitor](t, resp)
	if got.Purpose != "Delivery" || got.EmployeeName == nil || *got.EmployeeName != "Bob" || got.VisitCode != v.VisitCode {
		t.Errorf("unexpected patch result %+v", got)
	}

	put := janeDoe()
	put.VisitorName = "Jane Q. Doe"
	resp = c.json(http.MethodPut, path, put)
	expectStatus(t, resp, http.StatusOK)
	got = decode[types.Visitor](t, resp)
	if got.VisitorName != "Jane Q. Doe" || got.EmployeeName != nil {
		t.Errorf("unexpected put result %+v", got)
	}

	bad := janeDoe()
	bad.VisitorMobile = "12"
	expectStatus(t, c.json(http.MethodPut, path, bad), http.StatusBadRequest)
	expectStatus(t, c.json(http.MethodPut, "/visitors/999", janeDoe()), http.StatusNotFound)
	expectStatus(t, c.do(http.MethodGet, "/visitors/abc", "", nil), http.StatusNotFound)
}

func TestRecordScan_Protobuf(t *testing.T) {
	ts := newTestServer(t)
	c, _ := login(t, ts)

	resp := c.json(http.MethodPost, "/visitors", janeDoe())
	expectStatus(t, resp, http.StatusCreated)
	v := decode[types.Visitor](t, resp)
	resp = c.json(http.MethodPost, "/turnstiles", types.TurnstileRequest{Visitor: v.VisitorID})
	expectStatus(t, resp, http.StatusCreated)
	entry := decode[types.Turnstile](t, resp)

	msg, err := structpb.NewStruct(map[string]any{
		"turnstile":    float64(entry.ID),
		"qr_code_scan": v.VisitCode,
		"status":       "denied",
	})
	if err != nil {
		t.Fatal(err)
	}
	body, err := proto.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}

	resp = c.do(http.MethodPost, "/turnstile-logs", "application/x-protobuf", body)
	expectStatus(t, resp, http.StatusCreated)
	scan := decode[types.Scan](t, resp)
	if scan.Status != "denied" || scan.Turnstile != entry.ID || scan.QRCodeScan != v.VisitCode {
		t.Errorf("unexpected scan %+v", scan)
	}

	resp = c.do(http.MethodPost, "/turnstile-logs", "application/x-protobuf", []byte{0xff, 0xff})
	expectStatus(t, resp, http.StatusBadRequest)
}

// ── Directory ────────────────────────────────────────────────────────────────

func TestDirectoryRoutes(t *testing.T) {
	ts := newTestServer(t)
	c, me := login(t, ts)

	resp := c.json(http.MethodPost, "/departments", map[string]string{"department_name": "Engineering"})
	expectStatus(t, resp, http.StatusCreated)
	dept := decode[types.Department](t, resp)
	if dept.DeptID == 0 || dept.DepartmentName != "Engineering" {
		t.Fatalf("unexpected department %+v", dept)
	}
	expectStatus(t, c.json(http.MethodPost, "/departments", map[string]string{"department_name": "Engineering"}), http.StatusConflict)
	expectStatus(t, c.json(http.MethodPost, "/departments", map[string]string{"role_name": "x"}), http.StatusBadRequest)

	deptPath := "/departments/" + strconv.FormatInt(dept.DeptID, 10)
	resp = c.json(http.MethodPatch, deptPath, map[string]string{"department_name": "Platform"})
	expectStatus(t, resp, http.StatusOK)
	if d := decode[types.Department](t, resp); d.DepartmentName != "Platform" {
		t.Errorf("rename failed: %+v", d)
	}

	body := map[string]int64{"emp_id": me.ID, "dept_id": dept.DeptID}
	resp = c.json(http.MethodPost, "/user-departments", body)
	expectStatus(t, resp, http.StatusCreated)
	ud := decode[types.UserDepartment](t, resp)
	if ud.EmpID == nil || *ud.EmpID != me.ID {
		t.Errorf("unexpected assignment %+v", ud)
	}
	resp = c.json(http.MethodPost, "/user-departments", body)
	expectStatus(t, resp, http.StatusConflict)

	expectStatus(t, c.json(http.MethodPut, "/user-departments/"+strconv.FormatInt(ud.ID, 10), map[string]int64{"emp_id": me.ID}), http.StatusBadRequest)

	expectStatus(t, c.do(http.MethodDelete, deptPath, "", nil), http.StatusNoContent)
	expectStatus(t, c.do(http.MethodGet, "/user-departments/"+strconv.FormatInt(ud.ID, 10), "", nil), http.StatusNotFound)

	resp = c.do(http.MethodGet, "/roles", "", nil)
	expectStatus(t, resp, http.StatusOK)
	if roles := decode[[]types.Role](t, resp); len(roles) != 0 {
		t.Errorf("expected no roles, got %d", len(roles))
	}
}
