package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
	"github.com/BrandonDHaskell/Janus/server/internal/metrics"
)

// ScanLog appends badge scans. Records are never updated or deleted
// directly.
type ScanLog struct {
	scans  store.ScanLogStore
	logger zerolog.Logger
	now    func() time.Time
}

func NewScanLog(ls store.ScanLogStore, logger zerolog.Logger) *ScanLog {
	return &ScanLog{
		scans:  ls,
		logger: logger.With().Str("component", "scan_log").Logger(),
		now:    time.Now,
	}
}

// WithClock overrides the server clock. Test hook.
func (l *ScanLog) WithClock(now func() time.Time) *ScanLog {
	l.now = now
	return l
}

func (l *ScanLog) Record(ctx context.Context, req types.ScanRequest) (types.Scan, error) {
	var v validator
	if req.Turnstile <= 0 {
		v.fail("turnstile", "This field is required.")
	}
	v.required("qr_code_scan", req.QRCodeScan)
	v.maxLen("qr_code_scan", req.QRCodeScan, maxScanPayload)
	status := store.ScanStatus(req.Status)
	if !status.Valid() {
		v.fail("status", `"`+req.Status+`" is not a valid choice.`)
	}
	if v.err != nil {
		return types.Scan{}, v.err
	}

	rec, err := l.scans.AppendScan(ctx, store.ScanLogEntry{
		TurnstileID: req.Turnstile,
		Payload:     req.QRCodeScan,
		Status:      status,
		ScannedAt:   l.now(),
	})
	if errors.Is(err, store.ErrNotFound) {
		return types.Scan{}, &FieldError{Kind: ErrNotFound, Field: "turnstile", Message: "Turnstile not found.", Err: err}
	}
	if err != nil {
		return types.Scan{}, err
	}

	metrics.ScansRecorded.WithLabelValues(string(status)).Inc()
	l.logger.Info().
		Int64("scan_id", rec.ID).
		Int64("entry_id", rec.TurnstileID).
		Str("status", string(rec.Status)).
		Msg("scan recorded")
	return toScan(rec), nil
}

func (l *ScanLog) Get(ctx context.Context, id int64) (types.Scan, error) {
	rec, err := l.scans.GetScan(ctx, id)
	if err != nil {
		return types.Scan{}, fromStore("turnstile log", err)
	}
	return toScan(rec), nil
}

// List returns every scan, or only turnstileID's when it is non-nil.
func (l *ScanLog) List(ctx context.Context, turnstileID *int64) ([]types.Scan, error) {
	recs, err := l.scans.ListScans(ctx, turnstileID)
	if err != nil {
		return nil, fromStore("turnstile", err)
	}
	out := make([]types.Scan, 0, len(recs))
	for _, rec := range recs {
		out = append(out, toScan(rec))
	}
	return out, nil
}
