package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

type SeedDevOptions struct {
	// AdminEmail/AdminPasswordHash create a dev login when both are set.
	// The hash is produced by the caller so this package stays free of
	// password policy.
	AdminName         string
	AdminEmail        string
	AdminMobile       string
	AdminPasswordHash string

	Departments  []string
	Roles        []string
	Designations []string
}

// DefaultSeedDevOptions is a small starter directory for local runs.
func DefaultSeedDevOptions() SeedDevOptions {
	return SeedDevOptions{
		AdminName:    "Dev Admin",
		AdminEmail:   "admin@janus.local",
		AdminMobile:  "+10000000000",
		Departments:  []string{"Front Desk", "Engineering", "Facilities"},
		Roles:        []string{"Receptionist", "Security", "Host"},
		Designations: []string{"Manager", "Associate"},
	}
}

// SeedDev is idempotent: existing rows are left alone.
func SeedDev(ctx context.Context, db *sql.DB, opt SeedDevOptions) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := seedNames(ctx, tx, "departments", "department_name", opt.Departments); err != nil {
		return err
	}
	if err := seedNames(ctx, tx, "roles", "role_name", opt.Roles); err != nil {
		return err
	}
	if err := seedNames(ctx, tx, "designations", "designation_name", opt.Designations); err != nil {
		return err
	}

	if opt.AdminEmail != "" && opt.AdminPasswordHash != "" {
		now := time.Now().UTC().UnixMilli()
		if _, err := tx.ExecContext(ctx, `
INSERT OR IGNORE INTO users(
  name, email, mobile, password_hash,
  is_active, is_admin, created_at_ms, updated_at_ms
) VALUES (?, ?, ?, ?, 1, 1, ?, ?);
`, opt.AdminName, opt.AdminEmail, opt.AdminMobile, opt.AdminPasswordHash, now, now); err != nil {
			return fmt.Errorf("seed admin user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed commit: %w", err)
	}
	return nil
}

// table and column come from the fixed call sites above, never from input.
func seedNames(ctx context.Context, tx *sql.Tx, table, column string, names []string) error {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		q := fmt.Sprintf("INSERT OR IGNORE INTO %s(%s) VALUES (?);", table, column)
		if _, err := tx.ExecContext(ctx, q, n); err != nil {
			return fmt.Errorf("seed %s %q: %w", table, n, err)
		}
	}
	return nil
}
