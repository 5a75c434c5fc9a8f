package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Config holds the command line client settings.
// Environment variables are parsed from the HEM_ prefix.
type Config struct {
	// Backend root, e.g. http://localhost:5000
	APIURL string `envconfig:"API_URL" default:"http://localhost:5000"`

	// Credential for action management; empty disables action writes.
	AdminKey string `envconfig:"ADMIN_KEY" default:""`

	// Directory holding state.db. Empty means HEM_STATE_HOME or ~/.hem.
	StateDir string `envconfig:"STATE_DIR" default:""`

	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s"`

	// Identity confirmation attempts, counting the first try.
	ConfirmAttempts int `envconfig:"CONFIRM_ATTEMPTS" default:"3"`

	// Zero keeps cached reads fresh until a write invalidates them.
	StaleTime time.Duration `envconfig:"STALE_TIME" default:"0s"`

	LogLevel string `envconfig:"LOG_LEVEL" default:"warn"`
	Debug    bool   `envconfig:"DEBUG" default:"false"`
}

// Validate checks the values that envconfig cannot.
func (c *Config) Validate() error {
	c.APIURL = strings.TrimRight(strings.TrimSpace(c.APIURL), "/")
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API_URL: %q", c.APIURL)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be > 0, got %s", c.HTTPTimeout)
	}
	if c.ConfirmAttempts < 1 {
		return fmt.Errorf("CONFIRM_ATTEMPTS must be >= 1, got %d", c.ConfirmAttempts)
	}
	if c.StaleTime < 0 {
		return fmt.Errorf("STALE_TIME must be >= 0, got %s", c.StaleTime)
	}
	return nil
}

// New creates a Config by parsing environment variables prefixed with HEM_.
// Example: HEM_API_URL, HEM_ADMIN_KEY
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("HEM", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("api_url", cfg.APIURL).
		Bool("admin_key_present", cfg.AdminKey != "").
		Str("state_dir", cfg.StateDir).
		Dur("http_timeout", cfg.HTTPTimeout).
		Int("confirm_attempts", cfg.ConfirmAttempts).
		Dur("stale_time", cfg.StaleTime).
		Msg("configuration loaded")

	return &cfg, nil
}
