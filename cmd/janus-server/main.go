package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/BrandonDHaskell/Janus/server/internal/config"
	"github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
	"github.com/BrandonDHaskell/Janus/server/internal/logging"
)

const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := &cli.Command{
		Name:  "janus-server",
		Usage: "Visitor registration and turnstile tracking server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "env-file", Value: ".env", Usage: "optional dotenv file"},
			&cli.StringFlag{Name: "db-path", Usage: "SQLite database path (overrides JANUS_DB_PATH)"},
		},
		Commands: []*cli.Command{
			serveCommand(),
			migrateCommand(),
			seedDevCommand(),
			badgesCommand(),
			usersCommand(),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app) error { return a.serve(ctx, "") })
		},
	}

	if err := root.Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "janus-server:", err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Command) config.Config {
	cfg := config.Load(c.String("env-file"))
	if p := c.String("db-path"); p != "" {
		cfg.DBPath = p
	}
	return cfg
}

func withApp(ctx context.Context, c *cli.Command, fn func(*app) error) error {
	cfg := loadConfig(c)
	logger := logging.New(cfg.Env, cfg.LogLevel)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API (default)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides JANUS_HTTP_ADDR)"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app) error { return a.serve(ctx, c.String("addr")) })
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply pending migrations and print their status",
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app) error {
				status, err := db.Status(ctx, a.conn)
				if err != nil {
					return err
				}
				for _, s := range status {
					at := "pending"
					if s.AppliedAt != nil {
						at = s.AppliedAt.Format(time.RFC3339)
					}
					fmt.Printf("%04d  %-32s  %s\n", s.Version, s.Name, at)
				}
				return nil
			})
		},
	}
}

func seedDevCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed-dev",
		Usage: "Insert a starter directory and a dev admin login",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "admin-email", Value: "admin@janus.local"},
			&cli.StringFlag{Name: "admin-password", Value: "admin-pass", Usage: "dev admin password"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return withApp(ctx, c, func(a *app) error {
				if a.cfg.Env != "dev" {
					return fmt.Errorf("seed-dev refuses to run with JANUS_ENV=%s", a.cfg.Env)
				}
				hash, err := service.HashPassword(c.String("admin-password"), 0)
				if err != nil {
					return err
				}
				opt := db.DefaultSeedDevOptions()
				opt.AdminEmail = c.String("admin-email")
				opt.AdminPasswordHash = hash
				if err := db.SeedDev(ctx, a.conn, opt); err != nil {
					return err
				}
				a.logger.Info().Str("admin_email", opt.AdminEmail).Msg("dev seed applied")
				return nil
			})
		},
	}
}

func badgesCommand() *cli.Command {
	return &cli.Command{
		Name:  "badges",
		Usage: "Badge maintenance",
		Commands: []*cli.Command{
			{
				Name:  "regenerate",
				Usage: "Re-render visitor badge files",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "missing", Usage: "only visitors whose badge file is gone"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(ctx, c, func(a *app) error {
						n, err := a.registry.RegenerateBadges(ctx, c.Bool("missing"))
						if err != nil {
							return err
						}
						fmt.Printf("regenerated %d badge(s)\n", n)
						return nil
					})
				},
			},
		},
	}
}

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "User administration",
		Commands: []*cli.Command{
			{
				Name:  "delete",
				Usage: "Delete a user; their visitors keep existing",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return withApp(ctx, c, func(a *app) error {
						return a.accounts.DeleteUserByEmail(ctx, c.String("email"))
					})
				},
			},
		},
	}
}
