package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the NoteHub terminal client.
type Config struct {
	APIBaseURL         string        `envconfig:"API_URL"`
	DatabasePath       string        `envconfig:"DB_PATH"`
	SessionTimeout     time.Duration `envconfig:"SESSION_TIMEOUT"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT"`
	RevalidateInterval time.Duration `envconfig:"REVALIDATE_INTERVAL"`
	VoteRetries        int           `envconfig:"VOTE_RETRIES"`
	ReconcilePolicy    string        `envconfig:"RECONCILE_POLICY"`
	LogLevel           string        `envconfig:"LOG_LEVEL"`
	LogBackend         string        `envconfig:"LOG_BACKEND"`
}

// LoadDefaults populates c with defaults suitable for a local dev server.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:8080/api"
	c.DatabasePath = "notehub.db"
	c.SessionTimeout = 5 * time.Second
	c.RequestTimeout = 10 * time.Second
	c.RevalidateInterval = 30 * time.Second
	c.VoteRetries = 2
	c.ReconcilePolicy = "server"
	c.LogLevel = "info"
	c.LogBackend = "slog"
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.APIBaseURL == "" {
		errs = append(errs, errors.New("api base url is empty"))
	}
	if c.DatabasePath == "" {
		errs = append(errs, errors.New("database path is empty"))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("session timeout must be positive, got %s", c.SessionTimeout))
	}
	if c.RevalidateInterval <= 0 {
		errs = append(errs, fmt.Errorf("revalidate interval must be positive, got %s", c.RevalidateInterval))
	}
	if c.VoteRetries < 0 {
		errs = append(errs, fmt.Errorf("vote retries must not be negative, got %d", c.VoteRetries))
	}
	switch c.ReconcilePolicy {
	case "server", "optimistic":
	default:
		errs = append(errs, fmt.Errorf("unknown reconcile policy %q", c.ReconcilePolicy))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from defaults, then the JSON file named by
// -c/-config, then NOTEHUB_* environment variables, then flags. Later
// sources win.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
