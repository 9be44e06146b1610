package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
)

// DirectoryService manages departments, roles and designations and the
// users assigned to them.
type DirectoryService struct {
	dir store.DirectoryStore
}

func NewDirectoryService(ds store.DirectoryStore) *DirectoryService {
	return &DirectoryService{dir: ds}
}

// nameField is the client-facing name column of each catalog.
func nameField(c store.Catalog) string {
	switch c {
	case store.Departments:
		return "department_name"
	case store.Roles:
		return "role_name"
	default:
		return "designation_name"
	}
}

// targetField is the client-facing target column of each assignment table.
func targetField(c store.Catalog) string {
	switch c {
	case store.Departments:
		return "dept_id"
	case store.Roles:
		return "role_id"
	default:
		return "desgn_id"
	}
}

// duplicateAssignment is the message for a repeated (user, target) pair.
func duplicateAssignment(c store.Catalog) string {
	switch c {
	case store.Departments:
		return "This user already belongs to this department."
	case store.Roles:
		return "This user already has this role."
	default:
		return "This user already has this designation."
	}
}

func validName(c store.Catalog, name string) (string, error) {
	name = strings.TrimSpace(name)
	var v validator
	v.required(nameField(c), name)
	v.maxLen(nameField(c), name, maxCatalogName)
	return name, v.err
}

func (s *DirectoryService) Create(ctx context.Context, c store.Catalog, name string) (store.CatalogEntry, error) {
	name, err := validName(c, name)
	if err != nil {
		return store.CatalogEntry{}, err
	}
	e, err := s.dir.CreateEntry(ctx, c, name)
	return e, fromStore(c.String(), err)
}

func (s *DirectoryService) Get(ctx context.Context, c store.Catalog, id int64) (store.CatalogEntry, error) {
	e, err := s.dir.GetEntry(ctx, c, id)
	return e, fromStore(c.String(), err)
}

func (s *DirectoryService) List(ctx context.Context, c store.Catalog) ([]store.CatalogEntry, error) {
	return s.dir.ListEntries(ctx, c)
}

func (s *DirectoryService) Rename(ctx context.Context, c store.Catalog, id int64, name string) (store.CatalogEntry, error) {
	name, err := validName(c, name)
	if err != nil {
		return store.CatalogEntry{}, err
	}
	e, err := s.dir.RenameEntry(ctx, c, id, name)
	return e, fromStore(c.String(), err)
}

func (s *DirectoryService) Delete(ctx context.Context, c store.Catalog, id int64) error {
	return fromStore(c.String(), s.dir.DeleteEntry(ctx, c, id))
}

// assignmentErr maps assignment store errors. A missing user or target on
// write is a bad reference in the body, not a missing resource.
func assignmentErr(c store.Catalog, err error, write bool) error {
	if err == nil {
		return nil
	}
	if _, ok := store.ConflictField(err); ok {
		return &FieldError{Kind: ErrConflict, Field: store.FieldAssignment, Message: duplicateAssignment(c), Err: err}
	}
	if errors.Is(err, store.ErrNotFound) {
		if write {
			return &FieldError{Kind: ErrValidation, Field: "emp_id", Message: "Invalid pk - user or " + c.String() + " does not exist.", Err: err}
		}
		return &FieldError{Kind: ErrNotFound, Message: "User " + c.String() + " not found.", Err: err}
	}
	return err
}

func (s *DirectoryService) Assign(ctx context.Context, c store.Catalog, userID, targetID *int64) (store.Assignment, error) {
	var v validator
	if userID == nil {
		v.fail("emp_id", "This field is required.")
	}
	if targetID == nil {
		v.fail(targetField(c), "This field is required.")
	}
	if v.err != nil {
		return store.Assignment{}, v.err
	}
	a, err := s.dir.CreateAssignment(ctx, c, *userID, *targetID)
	return a, assignmentErr(c, err, true)
}

func (s *DirectoryService) GetAssignment(ctx context.Context, c store.Catalog, id int64) (store.Assignment, error) {
	a, err := s.dir.GetAssignment(ctx, c, id)
	return a, assignmentErr(c, err, false)
}

func (s *DirectoryService) ListAssignments(ctx context.Context, c store.Catalog) ([]store.Assignment, error) {
	return s.dir.ListAssignments(ctx, c)
}

// Reassign updates an assignment; nil sides keep their current value.
func (s *DirectoryService) Reassign(ctx context.Context, c store.Catalog, id int64, userID, targetID *int64) (store.Assignment, error) {
	cur, err := s.dir.GetAssignment(ctx, c, id)
	if err != nil {
		return store.Assignment{}, assignmentErr(c, err, false)
	}
	if userID != nil {
		cur.UserID = *userID
	}
	if targetID != nil {
		cur.TargetID = *targetID
	}
	a, err := s.dir.UpdateAssignment(ctx, c, cur)
	return a, assignmentErr(c, err, true)
}

func (s *DirectoryService) Unassign(ctx context.Context, c store.Catalog, id int64) error {
	return assignmentErr(c, s.dir.DeleteAssignment(ctx, c, id), false)
}
