package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/julianstephens/moonlit/internal/constants"
)

// EnvPrefix is prepended to every environment variable name, e.g. MOONLIT_DEBUG.
const EnvPrefix = "MOONLIT"

// Config holds runtime configuration resolved from the environment and an optional .env file.
type Config struct {
	ConfigDir string `envconfig:"CONFIG_DIR" default:"~/.config/moonlit"`
	ContentDB string `envconfig:"CONTENT_DB"`
	Debug     bool   `envconfig:"DEBUG" default:"false"`

	// Profile store: "sqlite" keeps profiles in a local database, "postgres" talks to a shared server
	ProfileStore string `envconfig:"PROFILE_STORE" default:"sqlite"`
	ProfileDSN   string `envconfig:"PROFILE_DSN"`

	// Remote APIs
	MoonAPIURL      string        `envconfig:"MOON_API_URL" default:"https://api.farmsense.net/v1"`
	HoroscopeAPIURL string        `envconfig:"HOROSCOPE_API_URL" default:"https://horoscope-app-api.vercel.app/api/v1"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	RatePerSecond   float64       `envconfig:"RATE_PER_SECOND" default:"5"`
	RateBurst       int           `envconfig:"RATE_BURST" default:"5"`
	BreakerFailures uint32        `envconfig:"BREAKER_FAILURES" default:"5"`
	BreakerTimeout  time.Duration `envconfig:"BREAKER_TIMEOUT" default:"30s"`

	// Month fetching
	FetchPolicy       string `envconfig:"FETCH_POLICY" default:"fail-fast"`
	MonthCompleteness string `envconfig:"MONTH_COMPLETENESS" default:"any"`

	// Sessions
	SessionKey string        `envconfig:"SESSION_KEY"`
	SessionTTL time.Duration `envconfig:"SESSION_TTL" default:"720h"`
}

// Load reads envFile (if present) into the process environment and then
// resolves the MOONLIT_* variables. A missing envFile is not an error.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns the configuration used when no environment is set.
func Default() *Config {
	cfg := &Config{
		ConfigDir:         constants.DefaultConfigDir,
		ProfileStore:      constants.ProfileStoreSQLite,
		MoonAPIURL:        constants.DefaultMoonAPIURL,
		HoroscopeAPIURL:   constants.DefaultHoroscopeAPIURL,
		HTTPTimeout:       constants.DefaultHTTPTimeout,
		RatePerSecond:     constants.DefaultRatePerSecond,
		RateBurst:         constants.DefaultRateBurst,
		BreakerFailures:   constants.DefaultBreakerFailures,
		BreakerTimeout:    constants.DefaultBreakerTimeout,
		FetchPolicy:       constants.FetchPolicyFailFast,
		MonthCompleteness: constants.CompletenessAny,
		SessionTTL:        constants.DefaultSessionTTL,
	}
	// The default directory always resolves
	_ = cfg.resolvePaths()
	return cfg
}

// SetConfigDir overrides the configuration directory and re-derives default paths.
func (c *Config) SetConfigDir(dir string) error {
	oldContent := filepath.Join(c.ConfigDir, constants.ContentDBName)
	oldProfile := filepath.Join(c.ConfigDir, constants.ProfileDBName)
	if c.ContentDB == oldContent {
		c.ContentDB = ""
	}
	if c.ProfileStore == constants.ProfileStoreSQLite && c.ProfileDSN == oldProfile {
		c.ProfileDSN = ""
	}
	c.ConfigDir = dir
	return c.resolvePaths()
}

func (c *Config) resolvePaths() error {
	dir, err := ExpandHome(c.ConfigDir)
	if err != nil {
		return err
	}
	c.ConfigDir = dir

	if c.ContentDB == "" {
		c.ContentDB = filepath.Join(dir, constants.ContentDBName)
	} else if c.ContentDB, err = ExpandHome(c.ContentDB); err != nil {
		return err
	}

	if c.ProfileStore == constants.ProfileStoreSQLite {
		if c.ProfileDSN == "" {
			c.ProfileDSN = filepath.Join(dir, constants.ProfileDBName)
		} else if c.ProfileDSN, err = ExpandHome(c.ProfileDSN); err != nil {
			return err
		}
	}
	return nil
}

// Validate rejects unknown policies and malformed values.
func (c *Config) Validate() error {
	switch c.ProfileStore {
	case constants.ProfileStoreSQLite, constants.ProfileStorePostgres:
	default:
		return fmt.Errorf("invalid profile store %q (expected sqlite or postgres)", c.ProfileStore)
	}

	switch c.FetchPolicy {
	case constants.FetchPolicyFailFast, constants.FetchPolicyBestEffort:
	default:
		return fmt.Errorf("invalid fetch policy %q (expected fail-fast or best-effort)", c.FetchPolicy)
	}

	switch c.MonthCompleteness {
	case constants.CompletenessAny, constants.CompletenessFull:
	default:
		return fmt.Errorf("invalid month completeness %q (expected any or full)", c.MonthCompleteness)
	}

	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}
	if c.RatePerSecond <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("rate limit must be positive (got %v/s burst %d)", c.RatePerSecond, c.RateBurst)
	}
	if c.BreakerFailures == 0 {
		return fmt.Errorf("breaker failure threshold must be at least 1")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("session ttl must be positive")
	}

	if c.SessionKey != "" {
		key, err := hex.DecodeString(c.SessionKey)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("session key must be 64 hex characters")
		}
	}

	for name, u := range map[string]string{"moon": c.MoonAPIURL, "horoscope": c.HoroscopeAPIURL} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return fmt.Errorf("invalid %s api url %q", name, u)
		}
	}
	return nil
}

// ExpandHome replaces a leading ~ with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
