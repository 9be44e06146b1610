package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/badge"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
	"github.com/BrandonDHaskell/Janus/server/internal/metrics"
)

// VisitCodeLen is the length of a visitor's visit code.
const VisitCodeLen = 8

// NewVisitCode returns the first eight characters of a random UUID.
func NewVisitCode() string {
	return uuid.NewString()[:VisitCodeLen]
}

type RegistryConfig struct {
	// CodeAttempts bounds visit-code regeneration on collision. Defaults to 5.
	CodeAttempts int

	// NewCode and Now are overridable for tests.
	NewCode func() string
	Now     func() time.Time
}

type VisitorRegistry struct {
	visitors store.VisitorStore
	badges   store.BadgeStore
	logger   zerolog.Logger

	// filesMu orders badge file writes and deletes with the visitor row
	// changes they belong to. Row writes are already serialized by the
	// store, so holding it across a write costs no concurrency.
	filesMu sync.Mutex

	attempts int
	newCode  func() string
	now      func() time.Time
}

func NewVisitorRegistry(vs store.VisitorStore, bs store.BadgeStore, cfg RegistryConfig, logger zerolog.Logger) *VisitorRegistry {
	r := &VisitorRegistry{
		visitors: vs,
		badges:   bs,
		logger:   logger.With().Str("component", "visitor_registry").Logger(),
		attempts: cfg.CodeAttempts,
		newCode:  cfg.NewCode,
		now:      cfg.Now,
	}
	if r.attempts <= 0 {
		r.attempts = 5
	}
	if r.newCode == nil {
		r.newCode = NewVisitCode
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

func validateVisitor(req types.VisitorRequest) error {
	var v validator
	v.required("visitor_name", req.VisitorName)
	v.maxLen("visitor_name", req.VisitorName, maxVisitorName)
	v.email("visitor_email", req.VisitorEmail, maxVisitorEmail)
	v.mobile("visitor_mobile", req.VisitorMobile)
	v.required("purpose", req.Purpose)
	v.maxLen("purpose", req.Purpose, maxPurpose)
	if req.EmployeeName != nil {
		v.maxLen("employee_name", *req.EmployeeName, maxEmployeeName)
	}
	return v.err
}

func trimVisitor(req types.VisitorRequest) types.VisitorRequest {
	req.VisitorName = strings.TrimSpace(req.VisitorName)
	req.VisitorEmail = strings.TrimSpace(req.VisitorEmail)
	req.VisitorMobile = strings.TrimSpace(req.VisitorMobile)
	req.Purpose = strings.TrimSpace(req.Purpose)
	req.EmployeeName = trimOptional(req.EmployeeName)
	return req
}

// trimOptional maps blank strings to nil, like a nullable text column.
func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

// Register validates req, assigns a visit code and persists the visitor
// together with its badge. registeredBy is used when the body names no
// registering user.
func (r *VisitorRegistry) Register(ctx context.Context, req types.VisitorRequest, registeredBy *int64) (types.Visitor, error) {
	req = trimVisitor(req)
	if err := validateVisitor(req); err != nil {
		return types.Visitor{}, err
	}
	if req.RegisteredBy == nil {
		req.RegisteredBy = registeredBy
	}

	rec := store.NewVisitor{
		Name:         req.VisitorName,
		Email:        req.VisitorEmail,
		Mobile:       req.VisitorMobile,
		RegisteredBy: req.RegisteredBy,
		EmployeeName: req.EmployeeName,
		Purpose:      req.Purpose,
		CreatedAt:    r.now(),
	}

	for attempt := 1; attempt <= r.attempts; attempt++ {
		rec.VisitCode = r.newCode()

		var written badgeWrite
		r.filesMu.Lock()
		v, err := r.visitors.CreateVisitor(ctx, rec, r.renderInto(&written))
		if err != nil {
			r.restore(ctx, written)
		}
		r.filesMu.Unlock()
		if err == nil {
			metrics.VisitorsRegistered.Inc()
			r.logger.Info().Int64("visitor_id", v.ID).Str("visit_code", v.VisitCode).Msg("visitor registered")
			return toVisitor(v), nil
		}

		if field, ok := store.ConflictField(err); ok && field == store.FieldVisitCode {
			metrics.VisitCodeCollisions.Inc()
			r.logger.Warn().Int("attempt", attempt).Str("visit_code", rec.VisitCode).Msg("visit code collision, retrying")
			continue
		}
		if errors.Is(err, store.ErrNotFound) {
			return types.Visitor{}, invalid("registered_by", "Invalid pk - object does not exist.")
		}
		return types.Visitor{}, fromStore("visitor", err)
	}

	return types.Visitor{}, &FieldError{
		Kind:    ErrConflict,
		Field:   store.FieldVisitCode,
		Message: "Could not allocate a unique visit code.",
	}
}

// Replace is a full update (PUT). registered_by is fixed at registration
// and ignored here.
func (r *VisitorRegistry) Replace(ctx context.Context, id int64, req types.VisitorRequest) (types.Visitor, error) {
	req = trimVisitor(req)
	if err := validateVisitor(req); err != nil {
		return types.Visitor{}, err
	}
	employee := req.EmployeeName
	return r.update(ctx, id, store.VisitorPatch{
		Name:         &req.VisitorName,
		Email:        &req.VisitorEmail,
		Mobile:       &req.VisitorMobile,
		Purpose:      &req.Purpose,
		EmployeeName: &employee,
	})
}

// Patch is a partial update (PATCH); absent fields are left unchanged.
func (r *VisitorRegistry) Patch(ctx context.Context, id int64, req types.VisitorPatchRequest) (types.Visitor, error) {
	var (
		v     validator
		patch store.VisitorPatch
	)
	if req.VisitorName != nil {
		s := strings.TrimSpace(*req.VisitorName)
		v.required("visitor_name", s)
		v.maxLen("visitor_name", s, maxVisitorName)
		patch.Name = &s
	}
	if req.VisitorEmail != nil {
		s := strings.TrimSpace(*req.VisitorEmail)
		v.email("visitor_email", s, maxVisitorEmail)
		patch.Email = &s
	}
	if req.VisitorMobile != nil {
		s := strings.TrimSpace(*req.VisitorMobile)
		v.mobile("visitor_mobile", s)
		patch.Mobile = &s
	}
	if req.Purpose != nil {
		s := strings.TrimSpace(*req.Purpose)
		v.required("purpose", s)
		v.maxLen("purpose", s, maxPurpose)
		patch.Purpose = &s
	}
	if req.EmployeeName.Set {
		s := trimOptional(req.EmployeeName.Value)
		if s != nil {
			v.maxLen("employee_name", *s, maxEmployeeName)
		}
		patch.EmployeeName = &s
	}
	if v.err != nil {
		return types.Visitor{}, v.err
	}
	return r.update(ctx, id, patch)
}

func (r *VisitorRegistry) update(ctx context.Context, id int64, patch store.VisitorPatch) (types.Visitor, error) {
	patch.UpdatedAt = r.now()

	var written badgeWrite
	r.filesMu.Lock()
	v, changed, err := r.visitors.UpdateVisitor(ctx, id, patch, r.renderInto(&written))
	if err != nil {
		r.restore(ctx, written)
	}
	r.filesMu.Unlock()
	if err != nil {
		return types.Visitor{}, fromStore("visitor", err)
	}
	if changed {
		r.logger.Info().Int64("visitor_id", v.ID).Msg("visitor updated, badge regenerated")
	}
	return toVisitor(v), nil
}

// Delete removes the visitor (entries and scans cascade) and then its
// badge file. A failed file removal is logged, not returned.
func (r *VisitorRegistry) Delete(ctx context.Context, id int64) error {
	r.filesMu.Lock()
	defer r.filesMu.Unlock()

	v, err := r.visitors.GetVisitor(ctx, id)
	if err != nil {
		return fromStore("visitor", err)
	}
	if err := r.visitors.DeleteVisitor(ctx, id); err != nil {
		return fromStore("visitor", err)
	}
	if v.BadgeRef != "" {
		if err := r.badges.DeleteBadge(ctx, v.BadgeRef); err != nil {
			r.logger.Warn().Err(err).Int64("visitor_id", id).Str("ref", v.BadgeRef).Msg("badge delete failed")
		}
	}
	r.logger.Info().Int64("visitor_id", id).Msg("visitor deleted")
	return nil
}

func (r *VisitorRegistry) Get(ctx context.Context, id int64) (types.Visitor, error) {
	v, err := r.visitors.GetVisitor(ctx, id)
	if err != nil {
		return types.Visitor{}, fromStore("visitor", err)
	}
	return toVisitor(v), nil
}

func (r *VisitorRegistry) List(ctx context.Context) ([]types.Visitor, error) {
	vs, err := r.visitors.ListVisitors(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]types.Visitor, 0, len(vs))
	for _, v := range vs {
		out = append(out, toVisitor(v))
	}
	return out, nil
}

// Badge returns the visitor's badge PNG, re-rendering it from the row if
// the stored file is gone.
func (r *VisitorRegistry) Badge(ctx context.Context, id int64) ([]byte, error) {
	v, err := r.visitors.GetVisitor(ctx, id)
	if err != nil {
		return nil, fromStore("visitor", err)
	}
	if v.BadgeRef != "" {
		png, err := r.badges.GetBadge(ctx, v.BadgeRef)
		if err == nil {
			return png, nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
		r.logger.Warn().Int64("visitor_id", id).Str("ref", v.BadgeRef).Msg("badge file missing, re-rendering")
	}
	png, err := r.refresh(ctx, id)
	if err != nil {
		return nil, fromStore("visitor", err)
	}
	return png, nil
}

// RegenerateBadges re-renders every visitor's badge. When onlyMissing is
// set, visitors whose file is still present are skipped. It returns the
// number of badges written.
func (r *VisitorRegistry) RegenerateBadges(ctx context.Context, onlyMissing bool) (int, error) {
	vs, err := r.visitors.ListVisitors(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, v := range vs {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if onlyMissing && v.BadgeRef != "" {
			if _, err := r.badges.GetBadge(ctx, v.BadgeRef); err == nil {
				continue
			}
		}
		if _, err := r.refresh(ctx, v.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue // deleted meanwhile
			}
			return n, err
		}
		n++
	}
	return n, nil
}

// refresh reloads the visitor and rewrites its badge, so a visitor deleted
// since the caller last read it never gets a file back.
func (r *VisitorRegistry) refresh(ctx context.Context, id int64) ([]byte, error) {
	r.filesMu.Lock()
	defer r.filesMu.Unlock()

	v, err := r.visitors.GetVisitor(ctx, id)
	if err != nil {
		return nil, err
	}
	png, _, err := r.rewrite(ctx, v)
	return png, err
}

// rewrite renders v's badge outside any visitor write and records the
// reference if it changed.
func (r *VisitorRegistry) rewrite(ctx context.Context, v store.Visitor) ([]byte, string, error) {
	png, err := render(v)
	if err != nil {
		return nil, "", err
	}
	ref, err := r.badges.PutBadge(ctx, badge.FileName(v.ID), png)
	if err != nil {
		metrics.BadgesRendered.WithLabelValues("error").Inc()
		return nil, "", badgeError(err)
	}
	metrics.BadgesRendered.WithLabelValues("ok").Inc()
	if ref != v.BadgeRef {
		if err := r.visitors.SetBadgeRef(ctx, v.ID, ref); err != nil {
			return nil, "", err
		}
	}
	return png, ref, nil
}

// badgeWrite remembers which visitor a BadgeFunc wrote a file for, so a
// rolled-back write can be undone.
type badgeWrite struct {
	visitorID int64
	ref       string
}

func (r *VisitorRegistry) renderInto(w *badgeWrite) store.BadgeFunc {
	return func(ctx context.Context, v store.Visitor) (string, error) {
		png, err := render(v)
		if err != nil {
			return "", err
		}
		ref, err := r.badges.PutBadge(ctx, badge.FileName(v.ID), png)
		if err != nil {
			metrics.BadgesRendered.WithLabelValues("error").Inc()
			return "", badgeError(err)
		}
		metrics.BadgesRendered.WithLabelValues("ok").Inc()
		*w = badgeWrite{visitorID: v.ID, ref: ref}
		return ref, nil
	}
}

// restore brings the badge file for a rolled-back write back in line with
// the committed row: re-render it if the visitor exists, delete it if not.
// Callers hold filesMu, so no other write can claim the same id between the
// lookup and the delete.
func (r *VisitorRegistry) restore(ctx context.Context, w badgeWrite) {
	if w.ref == "" {
		return
	}
	log := r.logger.With().Int64("visitor_id", w.visitorID).Str("ref", w.ref).Logger()

	v, err := r.visitors.GetVisitor(ctx, w.visitorID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		if err := r.badges.DeleteBadge(ctx, w.ref); err != nil {
			log.Warn().Err(err).Msg("orphan badge delete failed")
		}
	case err != nil:
		log.Warn().Err(err).Msg("badge restore lookup failed")
	default:
		if _, _, err := r.rewrite(ctx, v); err != nil {
			log.Warn().Err(err).Msg("badge restore failed")
		}
	}
}

func render(v store.Visitor) ([]byte, error) {
	png, err := badge.Render(badge.Payload(v.ID, v.Name, v.Mobile, v.VisitCode))
	if err != nil {
		metrics.BadgesRendered.WithLabelValues("error").Inc()
		return nil, badgeError(err)
	}
	return png, nil
}

func badgeError(err error) error {
	return &FieldError{Kind: ErrBadge, Field: "qr_code", Message: "Badge generation failed.", Err: err}
}
