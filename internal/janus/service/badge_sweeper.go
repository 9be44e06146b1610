package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// BadgeSweeper periodically re-renders badge files that have gone missing
// from the badge store. It runs as a background goroutine and is stopped
// via its context or Stop.
//
// An interval of 0 disables sweeping entirely.
type BadgeSweeper struct {
	registry *VisitorRegistry
	interval time.Duration
	logger   zerolog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewBadgeSweeper creates a sweeper but does not start it.
func NewBadgeSweeper(r *VisitorRegistry, interval time.Duration, logger zerolog.Logger) *BadgeSweeper {
	return &BadgeSweeper{
		registry: r,
		interval: interval,
		logger:   logger.With().Str("component", "badge_sweeper").Logger(),
		done:     make(chan struct{}),
	}
}

// Start runs one sweep immediately, then repeats on the interval until ctx
// is cancelled or Stop is called.
func (s *BadgeSweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.logger.Info().Msg("badge sweeper disabled")
		close(s.done)
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	go s.loop(ctx)

	s.logger.Info().Dur("interval", s.interval).Msg("badge sweeper started")
}

// Stop signals the sweeper to exit and waits for it to finish.
func (s *BadgeSweeper) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	<-s.done
}

func (s *BadgeSweeper) loop(ctx context.Context) {
	defer close(s.done)

	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *BadgeSweeper) sweep(ctx context.Context) {
	n, err := s.registry.RegenerateBadges(ctx, true)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("badge sweep failed")
		}
		return
	}
	if n > 0 {
		s.logger.Info().Int("restored", n).Msg("badge sweep restored missing files")
	}
}
