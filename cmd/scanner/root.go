package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"token-risk-scanner/internal/cache"
	"token-risk-scanner/internal/config"
	"token-risk-scanner/internal/domain"
	"token-risk-scanner/internal/fetch"
	"token-risk-scanner/internal/logging"
	"token-risk-scanner/internal/providers"
	"token-risk-scanner/internal/scan"
)

// Circuit breaker settings shared by every provider client.
const (
	breakerFailures = 5
	breakerCooldown = 30 * time.Second
)

// app carries state resolved once by the root command.
type app struct {
	envFile   string
	logLevel  string
	logFormat string

	cfg    *config.Config
	logger zerolog.Logger
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	a := &app{}

	root := &cobra.Command{
		Use:           "scanner",
		Short:         "Scan new DEX listings and score their token risk",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "path to .env file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides LOG_LEVEL)")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: console or json (overrides LOG_FORMAT)")

	root.AddCommand(scanCmd(a), serveCmd(a), keysCmd(a))
	return root.ExecuteContext(ctx)
}

func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}

	logger, err := logging.Setup(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = logger
	return nil
}

// newClient builds the HTTP client for one provider.
func (a *app) newClient(provider string, rps float64) *fetch.Client {
	return fetch.NewClient(
		fetch.WithProvider(provider),
		fetch.WithTimeout(a.cfg.HTTPTimeout),
		fetch.WithMaxRetries(a.cfg.MaxRetries),
		fetch.WithBackoff(a.cfg.Backoff),
		fetch.WithRateLimit(rps, 1),
		fetch.WithCircuitBreaker(provider, breakerFailures, breakerCooldown),
		fetch.WithLogger(a.logger),
	)
}

// newScanner wires providers, cache and scanner from config.
func (a *app) newScanner() *scan.Scanner {
	cfg := a.cfg

	ds := providers.NewDexScreener(a.newClient("dexscreener", cfg.DexScreenerRPS), cfg.DexScreenerURL, a.logger)
	rc := providers.NewRugCheck(a.newClient("rugcheck", cfg.RugCheckRPS), cfg.RugCheckURL, cfg.RugCheckAPIToken, a.logger)
	gp := providers.NewGoPlus(a.newClient("goplus", cfg.GoPlusRPS), cfg.GoPlusURL, cfg.GoPlusAPIKey, a.logger)

	for _, w := range cfg.KeyStatus().Warnings {
		a.logger.Warn().Msg(w)
	}

	return scan.New(scan.Options{
		Listings:        ds,
		RugCheck:        rc,
		GoPlus:          gp,
		Cache:           cache.New[*domain.EnrichedToken](cache.WithDefaultTTL(cfg.CacheTTL)),
		Networks:        cfg.Networks,
		MaxPerNetwork:   cfg.MaxPerNetwork,
		Concurrency:     cfg.Concurrency,
		CacheTTL:        cfg.CacheTTL,
		RugCheckEnabled: cfg.RugCheckActive(),
		Logger:          a.logger,
	})
}
