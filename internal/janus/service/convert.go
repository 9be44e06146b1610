package service

import (
	"time"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func toVisitor(v store.Visitor) types.Visitor {
	return types.Visitor{
		VisitorID:     v.ID,
		VisitorName:   v.Name,
		VisitorEmail:  v.Email,
		VisitorMobile: v.Mobile,
		RegisteredBy:  v.RegisteredBy,
		EmployeeName:  v.EmployeeName,
		Purpose:       v.Purpose,
		VisitCode:     v.VisitCode,
		QRCode:        v.BadgeRef,
		CreatedAt:     formatTime(v.CreatedAt),
		UpdatedAt:     formatTime(v.UpdatedAt),
	}
}

func toTurnstile(e store.TurnstileEntry) types.Turnstile {
	out := types.Turnstile{
		ID:        e.ID,
		Visitor:   e.VisitorID,
		EntryTime: formatTime(e.EntryTime),
	}
	if e.ExitTime != nil {
		s := formatTime(*e.ExitTime)
		out.ExitTime = &s
	}
	return out
}

func toScan(rec store.ScanLogEntry) types.Scan {
	return types.Scan{
		ID:         rec.ID,
		Turnstile:  rec.TurnstileID,
		QRCodeScan: rec.Payload,
		Status:     string(rec.Status),
		ScannedAt:  formatTime(rec.ScannedAt),
	}
}

func toProfile(u store.User) types.Profile {
	return types.Profile{ID: u.ID, Name: u.Name, Email: u.Email, Mobile: u.Mobile}
}
