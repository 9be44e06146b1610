package store

import (
	"context"
	"time"
)

// Visitor is the persisted visitor row.
type Visitor struct {
	ID           int64
	Name         string
	Email        string
	Mobile       string
	RegisteredBy *int64 // nulled when the registering user is deleted
	EmployeeName *string
	Purpose      string
	VisitCode    string
	BadgeRef     string // empty until the badge has been attached
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NewVisitor carries the fields for CreateVisitor. VisitCode is chosen by
// the caller; the store only enforces its uniqueness.
type NewVisitor struct {
	Name         string
	Email        string
	Mobile       string
	RegisteredBy *int64
	EmployeeName *string
	Purpose      string
	VisitCode    string
	CreatedAt    time.Time
}

// VisitorPatch lists the mutable visitor fields; nil means "unchanged".
// EmployeeName uses a pointer-to-pointer so it can be explicitly cleared.
type VisitorPatch struct {
	Name         *string
	Email        *string
	Mobile       *string
	Purpose      *string
	EmployeeName **string
	UpdatedAt    time.Time
}

// BadgeFunc renders and stores the badge for v, returning its reference.
// It runs inside the write transaction; an error aborts the whole write.
type BadgeFunc func(ctx context.Context, v Visitor) (string, error)

type VisitorStore interface {
	// CreateVisitor inserts the row, calls badge with the assigned ID and
	// records the returned reference, all in one transaction.
	CreateVisitor(ctx context.Context, rec NewVisitor, badge BadgeFunc) (Visitor, error)
	// UpdateVisitor applies patch and, when anything changed, re-runs badge
	// in the same transaction. changed reports whether a write happened.
	UpdateVisitor(ctx context.Context, id int64, patch VisitorPatch, badge BadgeFunc) (v Visitor, changed bool, err error)
	// SetBadgeRef records a re-derived badge without touching updated_at.
	SetBadgeRef(ctx context.Context, id int64, ref string) error
	GetVisitor(ctx context.Context, id int64) (Visitor, error)
	ListVisitors(ctx context.Context) ([]Visitor, error)
	// DeleteVisitor removes the visitor, its turnstile entries and their scans.
	DeleteVisitor(ctx context.Context, id int64) error
}

// ApplyVisitorPatch returns v with every non-nil patch field applied.
func ApplyVisitorPatch(v Visitor, p VisitorPatch) Visitor {
	if p.Name != nil {
		v.Name = *p.Name
	}
	if p.Email != nil {
		v.Email = *p.Email
	}
	if p.Mobile != nil {
		v.Mobile = *p.Mobile
	}
	if p.Purpose != nil {
		v.Purpose = *p.Purpose
	}
	if p.EmployeeName != nil {
		v.EmployeeName = *p.EmployeeName
	}
	return v
}

// SameVisitorFields compares the mutable fields only.
func SameVisitorFields(a, b Visitor) bool {
	return a.Name == b.Name &&
		a.Email == b.Email &&
		a.Mobile == b.Mobile &&
		a.Purpose == b.Purpose &&
		equalStringPtr(a.EmployeeName, b.EmployeeName)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
