// Package config loads scanner settings from a .env file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the scanner.
type Config struct {
	// Provider credentials
	GoPlusAPIKey         string
	RugCheckAPIToken     string
	EnableRugCheckSolana bool

	// Scan
	Networks      []string
	MaxPerNetwork int
	Concurrency   int
	CacheTTL      time.Duration
	ScanInterval  time.Duration

	// HTTP client
	MaxRetries  int
	Backoff     time.Duration
	HTTPTimeout time.Duration

	// Provider endpoints
	DexScreenerURL string
	GoPlusURL      string
	RugCheckURL    string

	// Per-provider request rates
	DexScreenerRPS float64
	GoPlusRPS      float64
	RugCheckRPS    float64

	// Server
	HTTPAddr string

	// Logging
	LogLevel  string
	LogFormat string
}

// DefaultNetworks is the DS_NETWORKS default.
var DefaultNetworks = []string{
	"ethereum", "bsc", "base", "arbitrum", "optimism",
	"polygon", "avalanche", "fantom", "cronos", "solana",
}

// Load reads the given .env files (".env" when none) and then the
// environment. A missing .env file is not an error; a malformed value is.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load env file: %w", err)
	}

	l := &loader{}
	cfg := &Config{
		GoPlusAPIKey:         os.Getenv("GOPLUS_API_KEY"),
		RugCheckAPIToken:     os.Getenv("RUGCHECK_API_TOKEN"),
		EnableRugCheckSolana: l.boolOf("ENABLE_RUGCHECK_SOLANA", true),

		Networks:      l.listOf("DS_NETWORKS", DefaultNetworks),
		MaxPerNetwork: l.intOf("SCAN_MAX_PER_NETWORK", 20),
		Concurrency:   l.intOf("API_CONCURRENCY_LIMIT", 5),
		CacheTTL:      l.durationOf("CACHE_TTL", 2*time.Hour),
		ScanInterval:  l.durationOf("SCAN_INTERVAL", 5*time.Minute),

		MaxRetries:  l.intOf("HTTP_MAX_RETRIES", 3),
		Backoff:     l.durationOf("HTTP_BACKOFF", 300*time.Millisecond),
		HTTPTimeout: l.durationOf("HTTP_TIMEOUT", 15*time.Second),

		DexScreenerURL: getEnv("DEXSCREENER_API_URL", "https://api.dexscreener.com/latest/dex"),
		GoPlusURL:      getEnv("GOPLUS_API_URL", "https://api.gopluslabs.io/api/v1/token_security"),
		RugCheckURL:    getEnv("RUGCHECK_API_URL", "https://api.rugcheck.xyz/v1/tokens"),

		DexScreenerRPS: l.floatOf("DEXSCREENER_RPS", 5),
		GoPlusRPS:      l.floatOf("GOPLUS_RPS", 2),
		RugCheckRPS:    l.floatOf("RUGCHECK_RPS", 2),

		HTTPAddr: getEnv("HTTP_ADDR", ":9090"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := errors.Join(l.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Networks) == 0 {
		errs = append(errs, errors.New("DS_NETWORKS: at least one network is required"))
	}
	if c.MaxPerNetwork < 1 {
		errs = append(errs, fmt.Errorf("SCAN_MAX_PER_NETWORK: must be >= 1, got %d", c.MaxPerNetwork))
	}
	if c.Concurrency < 1 {
		errs = append(errs, fmt.Errorf("API_CONCURRENCY_LIMIT: must be >= 1, got %d", c.Concurrency))
	}
	if c.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("HTTP_MAX_RETRIES: must be >= 1, got %d", c.MaxRetries))
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("CACHE_TTL: must be positive, got %s", c.CacheTTL))
	}
	return errors.Join(errs...)
}

// RugCheckActive reports whether Solana tokens will be sent to RugCheck.
func (c *Config) RugCheckActive() bool {
	return c.EnableRugCheckSolana && c.RugCheckAPIToken != ""
}

// KeyStatus describes which provider credentials are configured.
type KeyStatus struct {
	GoPlusConfigured   bool     `json:"goplusConfigured"`
	RugCheckConfigured bool     `json:"rugcheckConfigured"`
	RugCheckEnabled    bool     `json:"rugcheckEnabled"`
	RugCheckActive     bool     `json:"rugcheckActive"`
	Warnings           []string `json:"warnings,omitempty"`
}

// KeyStatus reports credential status and warnings for missing keys.
func (c *Config) KeyStatus() KeyStatus {
	ks := KeyStatus{
		GoPlusConfigured:   c.GoPlusAPIKey != "",
		RugCheckConfigured: c.RugCheckAPIToken != "",
		RugCheckEnabled:    c.EnableRugCheckSolana,
		RugCheckActive:     c.RugCheckActive(),
	}
	if !ks.GoPlusConfigured {
		ks.Warnings = append(ks.Warnings, "GOPLUS_API_KEY is not set: GoPlus checks are skipped on every network")
	}
	if ks.RugCheckEnabled && !ks.RugCheckConfigured {
		ks.Warnings = append(ks.Warnings, "RUGCHECK_API_TOKEN is not set: Solana tokens get no RugCheck report")
	}
	if !ks.RugCheckEnabled {
		ks.Warnings = append(ks.Warnings, "ENABLE_RUGCHECK_SOLANA is false: Solana uses GoPlus only")
	}
	return ks
}

// loader collects parse errors so every bad variable is reported at once.
type loader struct {
	errs []error
}

func (l *loader) intOf(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid integer %q", key, v))
		return def
	}
	return n
}

func (l *loader) floatOf(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid number %q", key, v))
		return def
	}
	return f
}

func (l *loader) boolOf(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid boolean %q", key, v))
		return def
	}
	return b
}

func (l *loader) durationOf(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		l.errs = append(l.errs, fmt.Errorf("%s: invalid duration %q", key, v))
		return def
	}
	return d
}

func (l *loader) listOf(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return append([]string(nil), def...)
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
