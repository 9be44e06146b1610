package store

import (
	"context"
	"fmt"
)

// Catalog selects one of the three name tables a user can be assigned to.
type Catalog int

const (
	Departments Catalog = iota + 1
	Roles
	Designations
)

func (c Catalog) String() string {
	switch c {
	case Departments:
		return "department"
	case Roles:
		return "role"
	case Designations:
		return "designation"
	default:
		return fmt.Sprintf("catalog(%d)", int(c))
	}
}

func (c Catalog) Valid() bool { return c >= Departments && c <= Designations }

type CatalogEntry struct {
	ID   int64
	Name string
}

// Assignment links a user to one catalog entry; (UserID, TargetID) is unique.
type Assignment struct {
	ID       int64
	UserID   int64
	TargetID int64
}

type DirectoryStore interface {
	CreateEntry(ctx context.Context, c Catalog, name string) (CatalogEntry, error)
	GetEntry(ctx context.Context, c Catalog, id int64) (CatalogEntry, error)
	ListEntries(ctx context.Context, c Catalog) ([]CatalogEntry, error)
	RenameEntry(ctx context.Context, c Catalog, id int64, name string) (CatalogEntry, error)
	DeleteEntry(ctx context.Context, c Catalog, id int64) error

	// CreateAssignment and UpdateAssignment return ErrNotFound when the
	// user or target does not exist.
	CreateAssignment(ctx context.Context, c Catalog, userID, targetID int64) (Assignment, error)
	GetAssignment(ctx context.Context, c Catalog, id int64) (Assignment, error)
	ListAssignments(ctx context.Context, c Catalog) ([]Assignment, error)
	UpdateAssignment(ctx context.Context, c Catalog, a Assignment) (Assignment, error)
	DeleteAssignment(ctx context.Context, c Catalog, id int64) error
}
