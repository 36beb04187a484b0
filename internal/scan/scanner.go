// Package scan runs the scan-and-score pipeline: list new pairs per network,
// enrich each with provider signals under a concurrency bound, score, cache.
package scan

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"token-risk-scanner/internal/cache"
	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/executor"
	"token-risk-scanner/internal/observability"
	"token-risk-scanner/internal/providers"
)

// Defaults used when Options leaves a field zero.
const (
	DefaultMaxPerNetwork = 20
	DefaultConcurrency   = 5
)

// DefaultNetworks is the network list scanned when none is configured.
var DefaultNetworks = []string{
	"ethereum", "bsc", "base", "arbitrum", "optimism",
	"polygon", "avalanche", "fantom", "cronos", "solana",
}

// ErrListingNotFound is returned by Rescan when the token has no pair on
// the requested network.
var ErrListingNotFound = errors.New("listing not found")

// ListingSource provides recently created pairs.
type ListingSource interface {
	RecentListings(ctx context.Context, network string) ([]domain.Listing, error)
	TokenListings(ctx context.Context, address string) ([]domain.Listing, error)
}

// RugCheckProvider fetches Solana token reports.
type RugCheckProvider interface {
	Report(ctx context.Context, mint string) providers.Result[domain.RugCheckPayload]
}

// GoPlusProvider fetches token security records.
type GoPlusProvider interface {
	TokenSecurity(ctx context.Context, chainID, address string) providers.Result[domain.GoPlusPayload]
}

// Options for creating a Scanner.
type Options struct {
	Listings ListingSource
	RugCheck RugCheckProvider
	GoPlus   GoPlusProvider

	// Cache is shared across scans. A fresh cache is created when nil.
	Cache *cache.TTL[*domain.EnrichedToken]

	Networks        []string
	MaxPerNetwork   int
	Concurrency     int
	CacheTTL        time.Duration
	RugCheckEnabled bool

	Logger zerolog.Logger
	Now    func() time.Time
}

// Scanner orchestrates one or more scans. Safe for concurrent use; two
// overlapping scans may both write the same cache key, last writer wins.
type Scanner struct {
	listings ListingSource
	rugCheck RugCheckProvider
	goPlus   GoPlusProvider
	cache    *cache.TTL[*domain.EnrichedToken]

	networks        []string
	maxPerNetwork   int
	concurrency     int
	cacheTTL        time.Duration
	rugCheckEnabled bool

	logger zerolog.Logger
	now    func() time.Time

	mu    sync.RWMutex
	state State
}

// New creates a Scanner.
func New(opts Options) *Scanner {
	s := &Scanner{
		listings:        opts.Listings,
		rugCheck:        opts.RugCheck,
		goPlus:          opts.GoPlus,
		cache:           opts.Cache,
		networks:        opts.Networks,
		maxPerNetwork:   opts.MaxPerNetwork,
		concurrency:     opts.Concurrency,
		cacheTTL:        opts.CacheTTL,
		rugCheckEnabled: opts.RugCheckEnabled,
		logger:          opts.Logger.With().Str("component", "scanner").Logger(),
		now:             opts.Now,
		state:           StateIdle,
	}
	if s.cache == nil {
		s.cache = cache.New[*domain.EnrichedToken]()
	}
	if len(s.networks) == 0 {
		s.networks = DefaultNetworks
	}
	if s.maxPerNetwork <= 0 {
		s.maxPerNetwork = DefaultMaxPerNetwork
	}
	if s.concurrency <= 0 {
		s.concurrency = DefaultConcurrency
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = cache.DefaultTTL
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Networks returns the configured network list.
func (s *Scanner) Networks() []string {
	return append([]string(nil), s.networks...)
}

// State returns the state of the most recent scan.
func (s *Scanner) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Scanner) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Run performs a full scan and returns every enriched token in network
// order. Provider and listing failures degrade the result but never fail
// the scan; an error means a defect was recovered.
func (s *Scanner) Run(ctx context.Context) (tokens []*domain.EnrichedToken, err error) {
	start := time.Now()
	s.logger.Info().Strs("networks", s.networks).Msg("scan started")

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scan panicked: %v", r)
			tokens = nil
		}
		if err != nil {
			s.setState(StateFailed)
			observability.RecordScan(string(StateFailed), time.Since(start).Seconds(), 0, 0)
			s.logger.Error().Err(err).Msg("scan failed")
		}
	}()

	s.setState(StateListing)
	listings, err := s.collectListings(ctx)
	if err != nil {
		return nil, err
	}

	s.setState(StateEnriching)
	tasks := make([]executor.Task[*domain.EnrichedToken], len(listings))
	for i, l := range listings {
		tasks[i] = s.enrichTask(l)
	}
	tokens, err = executor.Run(ctx, s.concurrency, tasks)
	if err != nil {
		return nil, err
	}

	s.setState(StateDone)
	elapsed := time.Since(start)
	observability.RecordScan(string(StateDone), elapsed.Seconds(), len(tokens), s.now().Unix())
	s.logger.Info().
		Int("listings", len(listings)).
		Int("tokens", len(tokens)).
		Dur("elapsed", elapsed).
		Msg("scan finished")

	return tokens, nil
}

// collectListings fetches every network in parallel and flattens the
// results in configured order, truncating each network first.
func (s *Scanner) collectListings(ctx context.Context) ([]domain.Listing, error) {
	tasks := make([]executor.Task[[]domain.Listing], len(s.networks))
	for i, network := range s.networks {
		tasks[i] = s.listTask(network)
	}

	perNetwork, err := executor.Run(ctx, 0, tasks)
	if err != nil {
		return nil, err
	}

	var all []domain.Listing
	for _, ls := range perNetwork {
		all = append(all, ls...)
	}
	return all, nil
}

func (s *Scanner) listTask(network string) executor.Task[[]domain.Listing] {
	return func(ctx context.Context) (out []domain.Listing, err error) {
		defer recoverTask(&err)

		ls, lerr := s.listings.RecentListings(ctx, network)
		if lerr != nil {
			observability.RecordListingError(network)
			s.logger.Warn().Err(lerr).Str("network", network).Msg("listing fetch failed, network skipped")
			return []domain.Listing{}, nil
		}
		if len(ls) > s.maxPerNetwork {
			ls = ls[:s.maxPerNetwork]
		}
		observability.RecordListings(network, len(ls))
		return ls, nil
	}
}

func (s *Scanner) enrichTask(l domain.Listing) executor.Task[*domain.EnrichedToken] {
	return func(ctx context.Context) (out *domain.EnrichedToken, err error) {
		defer recoverTask(&err)

		key := cache.TokenKey(l.Network, l.BaseToken.Address)
		if cached, ok := s.cache.Get(key); ok {
			return cached, nil
		}

		token := s.enrich(ctx, l)
		s.cache.Set(key, token, s.cacheTTL)
		return token, nil
	}
}

// Rescan re-enriches one token, bypassing the cache read, and overwrites
// its cache entry.
func (s *Scanner) Rescan(ctx context.Context, network, address string) (*domain.EnrichedToken, error) {
	ls, err := s.listings.TokenListings(ctx, address)
	if err != nil {
		return nil, fmt.Errorf("rescan %s: %w", domain.TokenID(network, address), err)
	}

	for _, l := range ls {
		if l.Network != network || !sameAddress(l.BaseToken.Address, address) {
			continue
		}
		token := s.enrich(ctx, l)
		s.cache.Set(cache.TokenKey(l.Network, l.BaseToken.Address), token, s.cacheTTL)
		s.logger.Info().
			Str("token", token.ID).
			Int("score", token.Risk.Score).
			Str("verdict", token.Risk.Verdict.String()).
			Msg("token rescanned")
		return token, nil
	}

	return nil, fmt.Errorf("rescan %s: %w", domain.TokenID(network, address), ErrListingNotFound)
}

// recoverTask converts a panic inside a task into an error so the scan
// ends in StateFailed instead of crashing the process.
func recoverTask(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("task panicked: %v", r)
	}
}
