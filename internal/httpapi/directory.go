package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

// catalogRoute binds one directory table to its URL and JSON shape.
type catalogRoute struct {
	path    string
	catalog store.Catalog
	idKey   string
	nameKey string
	encode  func(store.CatalogEntry) any
}

var catalogs = []catalogRoute{
	{
		path: "/departments", catalog: store.Departments, idKey: "dept_id", nameKey: "department_name",
		encode: func(e store.CatalogEntry) any { return types.Department{DeptID: e.ID, DepartmentName: e.Name} },
	},
	{
		path: "/roles", catalog: store.Roles, idKey: "role_id", nameKey: "role_name",
		encode: func(e store.CatalogEntry) any { return types.Role{RoleID: e.ID, RoleName: e.Name} },
	},
	{
		path: "/designations", catalog: store.Designations, idKey: "desgn_id", nameKey: "designation_name",
		encode: func(e store.CatalogEntry) any { return types.Designation{DesgnID: e.ID, DesignationName: e.Name} },
	},
}

// assignmentRoute binds one user-assignment table to its URL and JSON shape.
type assignmentRoute struct {
	path      string
	catalog   store.Catalog
	targetKey string
	encode    func(store.Assignment) any
}

var assignments = []assignmentRoute{
	{
		path: "/user-departments", catalog: store.Departments, targetKey: "dept_id",
		encode: func(a store.Assignment) any {
			return types.UserDepartment{ID: a.ID, EmpID: &a.UserID, DeptID: &a.TargetID}
		},
	},
	{
		path: "/user-roles", catalog: store.Roles, targetKey: "role_id",
		encode: func(a store.Assignment) any {
			return types.UserRole{ID: a.ID, EmpID: &a.UserID, RoleID: &a.TargetID}
		},
	},
	{
		path: "/user-designations", catalog: store.Designations, targetKey: "desgn_id",
		encode: func(a store.Assignment) any {
			return types.UserDesignation{ID: a.ID, EmpID: &a.UserID, DesgnID: &a.TargetID}
		},
	},
}

// decodeFields reads a flat JSON object whose keys must all be in allowed.
func decodeFields(r *http.Request, allowed ...string) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := decodeJSON(r, &raw); err != nil {
		return nil, err
	}
	for k := range raw {
		known := false
		for _, a := range allowed {
			known = known || k == a
		}
		if !known {
			return nil, fmt.Errorf("unknown field %q", k)
		}
	}
	return raw, nil
}

func stringField(raw map[string]json.RawMessage, key string) (*string, error) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(v, &s); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &s, nil
}

func intField(raw map[string]json.RawMessage, key string) (*int64, error) {
	v, ok := raw[key]
	if !ok || string(v) == "null" {
		return nil, nil
	}
	var n int64
	if err := json.Unmarshal(v, &n); err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return &n, nil
}

// ── Catalogs ─────────────────────────────────────────────────────────────────

func (s *Server) mountCatalog(r chi.Router, c catalogRoute) {
	r.Route(c.path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			es, err := s.directory.List(r.Context(), c.catalog)
			if err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			out := make([]any, 0, len(es))
			for _, e := range es {
				out = append(out, c.encode(e))
			}
			writeJSON(w, http.StatusOK, out)
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			name, ok := c.decodeName(w, r)
			if !ok {
				return
			}
			if name == nil {
				missingField(w, c.nameKey)
				return
			}
			e, err := s.directory.Create(r.Context(), c.catalog, *name)
			if err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, c.encode(e))
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			e, err := s.directory.Get(r.Context(), c.catalog, id)
			if err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, c.encode(e))
		})
		r.Put("/{id}", s.renameCatalog(c, false))
		r.Patch("/{id}", s.renameCatalog(c, true))
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			if err := s.directory.Delete(r.Context(), c.catalog, id); err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func (c catalogRoute) decodeName(w http.ResponseWriter, r *http.Request) (*string, bool) {
	raw, err := decodeFields(r, c.idKey, c.nameKey)
	if err != nil {
		writeBadJSON(w)
		return nil, false
	}
	name, err := stringField(raw, c.nameKey)
	if err != nil {
		writeBadJSON(w)
		return nil, false
	}
	return name, true
}

// renameCatalog serves PUT and PATCH. A PATCH without the name field
// returns the entry unchanged.
func (s *Server) renameCatalog(c catalogRoute, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		name, ok := c.decodeName(w, r)
		if !ok {
			return
		}

		var (
			e   store.CatalogEntry
			err error
		)
		switch {
		case name != nil:
			e, err = s.directory.Rename(r.Context(), c.catalog, id, *name)
		case partial:
			e, err = s.directory.Get(r.Context(), c.catalog, id)
		default:
			missingField(w, c.nameKey)
			return
		}
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, c.encode(e))
	}
}

// ── Assignments ──────────────────────────────────────────────────────────────

func (s *Server) mountAssignment(r chi.Router, a assignmentRoute) {
	r.Route(a.path, func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			as, err := s.directory.ListAssignments(r.Context(), a.catalog)
			if err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			out := make([]any, 0, len(as))
			for _, x := range as {
				out = append(out, a.encode(x))
			}
			writeJSON(w, http.StatusOK, out)
		})
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			userID, targetID, ok := a.decode(w, r)
			if !ok {
				return
			}
			x, err := s.directory.Assign(r.Context(), a.catalog, userID, targetID)
			if err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			writeJSON(w, http.StatusCreated, a.encode(x))
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			x, err := s.directory.GetAssignment(r.Context(), a.catalog, id)
			if err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			writeJSON(w, http.StatusOK, a.encode(x))
		})
		r.Put("/{id}", s.reassign(a, false))
		r.Patch("/{id}", s.reassign(a, true))
		r.Delete("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}
			if err := s.directory.Unassign(r.Context(), a.catalog, id); err != nil {
				writeServiceError(w, s.logger, err)
				return
			}
			w.WriteHeader(http.StatusNoContent)
		})
	})
}

func (a assignmentRoute) decode(w http.ResponseWriter, r *http.Request) (userID, targetID *int64, ok bool) {
	raw, err := decodeFields(r, "id", "emp_id", a.targetKey)
	if err != nil {
		writeBadJSON(w)
		return nil, nil, false
	}
	if userID, err = intField(raw, "emp_id"); err != nil {
		writeBadJSON(w)
		return nil, nil, false
	}
	if targetID, err = intField(raw, a.targetKey); err != nil {
		writeBadJSON(w)
		return nil, nil, false
	}
	return userID, targetID, true
}

// reassign serves PUT (both sides required) and PATCH (absent sides kept).
func (s *Server) reassign(a assignmentRoute, partial bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}
		userID, targetID, ok := a.decode(w, r)
		if !ok {
			return
		}
		if !partial {
			if userID == nil {
				missingField(w, "emp_id")
				return
			}
			if targetID == nil {
				missingField(w, a.targetKey)
				return
			}
		}
		x, err := s.directory.Reassign(r.Context(), a.catalog, id, userID, targetID)
		if err != nil {
			writeServiceError(w, s.logger, err)
			return
		}
		writeJSON(w, http.StatusOK, a.encode(x))
	}
}
