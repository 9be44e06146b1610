package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/BrandonDHaskell/Janus/server/internal/janus/service"
	"github.com/BrandonDHaskell/Janus/server/internal/janus/types"
)

type Dependencies struct {
	Logger    zerolog.Logger
	Addr      string
	Registry  *service.VisitorRegistry
	Tracker   *service.TurnstileTracker
	Scans     *service.ScanLog
	Accounts  *service.AccountService
	Directory *service.DirectoryService
}

type Server struct {
	httpServer *http.Server
	logger     zerolog.Logger
	registry   *service.VisitorRegistry
	tracker    *service.TurnstileTracker
	scans      *service.ScanLog
	accounts   *service.AccountService
	directory  *service.DirectoryService
}

func NewServer(d Dependencies) *Server {
	s := &Server{
		logger:    d.Logger,
		registry:  d.Registry,
		tracker:   d.Tracker,
		scans:     d.Scans,
		accounts:  d.Accounts,
		directory: d.Directory,
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(d.Logger), metricsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Post("/token/refresh", s.handleRefresh)
	r.Post("/send-password-reset-email", s.handleSendResetEmail)
	r.Post("/reset-password/{uid}/{token}", s.handleResetPassword)

	r.Group(func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/profile", s.handleProfile)
		r.Post("/changepassword", s.handleChangePassword)

		r.Route("/visitors", func(r chi.Router) {
			r.Get("/", s.handleListVisitors)
			r.Post("/", s.handleRegisterVisitor)
			r.Get("/{id}", s.handleGetVisitor)
			r.Put("/{id}", s.handleReplaceVisitor)
			r.Patch("/{id}", s.handlePatchVisitor)
			r.Delete("/{id}", s.handleDeleteVisitor)
			r.Get("/{id}/badge", s.handleVisitorBadge)
			r.Get("/{id}/turnstiles", s.handleVisitorTurnstiles)
		})

		r.Route("/turnstiles", func(r chi.Router) {
			r.Get("/", s.handleListTurnstiles)
			r.Post("/", s.handleOpenTurnstile)
			r.Get("/{id}", s.handleGetTurnstile)
			r.Patch("/{id}", s.handleCloseTurnstile)
			r.Delete("/{id}", s.handleDeleteTurnstile)
			r.Get("/{id}/logs", s.handleTurnstileLogs)
		})

		r.Route("/turnstile-logs", func(r chi.Router) {
			r.Get("/", s.handleListScans)
			r.Post("/", s.handleRecordScan)
			r.Get("/{id}", s.handleGetScan)
		})

		for _, c := range catalogs {
			s.mountCatalog(r, c)
		}
		for _, a := range assignments {
			s.mountAssignment(r, a)
		}
	})

	s.httpServer = &http.Server{
		Addr:              d.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		OK:         true,
		ServerTime: time.Now().UTC().Format(time.RFC3339),
	})
}
