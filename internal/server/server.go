// Package server runs periodic scans and serves the latest results over
// HTTP and WebSocket.
package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/scan"
)

// Scanner is the pipeline the server drives.
type Scanner interface {
	Run(ctx context.Context) ([]*domain.EnrichedToken, error)
	Rescan(ctx context.Context, network, address string) (*domain.EnrichedToken, error)
	State() scan.State
	Networks() []string
}

// Options for creating a Server.
type Options struct {
	Scanner  Scanner
	Addr     string
	Interval time.Duration

	// KeyStatus is reported verbatim on /status.
	KeyStatus any

	Logger zerolog.Logger
}

// Server schedules scans and publishes their results.
type Server struct {
	scanner   Scanner
	hub       *Hub
	addr      string
	interval  time.Duration
	keyStatus any
	logger    zerolog.Logger
	started   time.Time

	mu       sync.RWMutex
	latest   []*domain.EnrichedToken
	lastRun  time.Time
	lastErr  string
	runs     int
	failures int
	running  bool
}

// New creates a Server.
func New(opts Options) *Server {
	interval := opts.Interval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	logger := opts.Logger.With().Str("component", "server").Logger()
	return &Server{
		scanner:   opts.Scanner,
		hub:       NewHub(opts.Logger),
		addr:      opts.Addr,
		interval:  interval,
		keyStatus: opts.KeyStatus,
		logger:    logger,
		started:   time.Now(),
	}
}

// Run starts the WebSocket hub, the scan scheduler and the HTTP server,
// and blocks until ctx is cancelled or one of them fails.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		return s.runScheduler(ctx)
	})

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	g.Go(func() error {
		s.logger.Info().Str("addr", s.addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// runScheduler scans immediately and then on every tick.
func (s *Server) runScheduler(ctx context.Context) error {
	s.logger.Info().Dur("interval", s.interval).Msg("scan scheduler started")

	s.RunScan(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.RunScan(ctx)
		}
	}
}

// RunScan performs one scan unless one is already running, stores the
// result as the latest snapshot and pushes it to WebSocket clients.
func (s *Server) RunScan(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Info().Msg("scan already running, skipping")
		return
	}
	s.running = true
	s.mu.Unlock()

	tokens, err := s.scanner.Run(ctx)

	s.mu.Lock()
	s.running = false
	s.lastRun = time.Now()
	s.runs++
	if err != nil {
		s.failures++
		s.lastErr = err.Error()
	} else {
		s.lastErr = ""
		s.latest = tokens
	}
	s.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Msg("scan failed, keeping previous snapshot")
		return
	}

	if msg, err := encodeMessage(messageScan, rankTokens(tokens)); err == nil {
		s.hub.Broadcast(ctx, msg)
	} else {
		s.logger.Error().Err(err).Msg("encode scan message failed")
	}
}

// Latest returns the most recent successful scan.
func (s *Server) Latest() []*domain.EnrichedToken {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// replace swaps token into the latest snapshot by ID, appending when absent.
func (s *Server) replace(token *domain.EnrichedToken) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]*domain.EnrichedToken, 0, len(s.latest)+1)
	found := false
	for _, t := range s.latest {
		if t.ID == token.ID {
			next = append(next, token)
			found = true
			continue
		}
		next = append(next, t)
	}
	if !found {
		next = append(next, token)
	}
	s.latest = next
}
