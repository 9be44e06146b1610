package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/auth"
	"github.com/BrandonDHaskell/Janus/server/internal/config"
	"github.com/BrandonDHaskell/Janus/server/internal/db"
	"github.com/BrandonDHaskell/Janus/server/internal/httpapi"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/fsbadge"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/memory"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/redisstore"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/store/sqlite"
)

// app is the wired dependency graph shared by every subcommand.
type app struct {
	cfg    config.Config
	logger zerolog.Logger

	conn   *sql.DB
	writer *db.Worker
	redis  *redis.Client

	registry  *service.VisitorRegistry
	tracker   *service.TurnstileTracker
	scans     *service.ScanLog
	accounts  *service.AccountService
	directory *service.DirectoryService
}

func newApp(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	conn, err := db.Open(ctx, db.Config{Path: cfg.DBPath, Env: cfg.Env})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	a := &app{
		cfg:    cfg,
		logger: logger,
		conn:   conn,
		writer: db.NewWorker(conn),
	}

	var resets store.ResetTokenStore
	if cfg.RedisAddr != "" {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := a.redis.Ping(ctx).Err(); err != nil {
			a.Close()
			return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		resets = redisstore.NewResetTokenStore(a.redis)
	} else {
		logger.Warn().Msg("JANUS_REDIS_ADDR not set, reset tokens kept in memory")
		resets = memory.NewResetTokenStore()
	}

	badges := fsbadge.New(filepath.Clean(cfg.BadgeDir))

	a.registry = service.NewVisitorRegistry(
		sqlite.NewVisitorStore(conn, a.writer),
		badges,
		service.RegistryConfig{CodeAttempts: cfg.VisitCodeAttempts},
		logger,
	)
	a.tracker = service.NewTurnstileTracker(sqlite.NewTurnstileStore(conn, a.writer), logger)
	a.scans = service.NewScanLog(sqlite.NewScanLogStore(conn, a.writer), logger)
	a.accounts = service.NewAccountService(
		sqlite.NewUserStore(conn, a.writer),
		resets,
		auth.NewTokens(cfg.JWTSecret, cfg.JWTIssuer, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		service.LogNotifier{Logger: logger},
		service.AccountConfig{ResetTTL: cfg.ResetTokenTTL, ResetLinkBase: cfg.ResetLinkBase},
		logger,
	)
	a.directory = service.NewDirectoryService(sqlite.NewDirectoryStore(conn, a.writer))

	return a, nil
}

// Close stops the writer before closing the connection it drains into.
func (a *app) Close() {
	a.writer.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	_ = a.conn.Close()
}

func (a *app) serve(ctx context.Context, addr string) error {
	if addr == "" {
		addr = a.cfg.HTTPAddr
	}
	srv := httpapi.NewServer(httpapi.Dependencies{
		Logger:    a.logger,
		Addr:      addr,
		Registry:  a.registry,
		Tracker:   a.tracker,
		Scans:     a.scans,
		Accounts:  a.accounts,
		Directory: a.directory,
	})

	sweeper := service.NewBadgeSweeper(a.registry, a.cfg.BadgeSweepInterval, a.logger)
	sweeper.Start(ctx)
	defer sweeper.Stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info().Str("addr", addr).Str("env", a.cfg.Env).Msg("listening")
		errCh <- srv.Start()
	}()

	select {
	case <-ctx.Done():
		a.logger.Info().Msg("shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
