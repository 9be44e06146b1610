package service_test

import (
	"bytes"
	"errors"
	"image/png"
	"testing"
	"time"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/memory"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	db       *memory.Store
	badges   *memory.BadgeStore
	registry *service.VisitorRegistry
	tracker  *service.TurnstileTracker
	scans    *service.ScanLog
}

func newFixture(t *testing.T, cfg service.RegistryConfig) *fixture {
	t.Helper()
	db := memory.New()
	bs := memory.NewBadgeStore()
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return t0 }
	}
	return &fixture{
		db:       db,
		badges:   bs,
		registry: service.NewVisitorRegistry(memory.NewVisitorStore(db), bs, cfg, zerolog.Nop()),
		tracker:  service.NewTurnstileTracker(memory.NewTurnstileStore(db), zerolog.Nop()),
		scans:    service.NewScanLog(memory.NewScanLogStore(db), zerolog.Nop()),
	}
}

func janeDoe() types.VisitorRequest {
	return types.VisitorRequest{
		VisitorName:   "Jane Doe",
		VisitorEmail:  "jane@x.com",
		VisitorMobile: "+15551234567",
		Purpose:       "Interview",
	}
}

// sequence returns a code generator yielding codes in order, repeating
// the last one when exhausted.
func sequence(codes ...string) func() string {
	i := 0
	return func() string {
		c := codes[i]
		if i < len(codes)-1 {
			i++
		}
		return c
	}
}

func decodeQR(t *testing.T, data []byte) string {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png decode: %v", err)
	}
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		t.Fatalf("bitmap: %v", err)
	}
	res, err := zxqr.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		t.Fatalf("qr decode: %v", err)
	}
	return res.GetText()
}

// fieldOf returns the FieldError field of err, failing the test when err
// is not a FieldError of the given kind.
func fieldOf(t *testing.T, err, kind error) string {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("expected %v, got %v", kind, err)
	}
	var fe *service.FieldError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FieldError, got %T", err)
	}
	return fe.Field
}

func strPtr(s string) *string { return &s }
