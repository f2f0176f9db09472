// Package config handles configuration for the dev server, including
// defaults, JSON overlay, environment and command-line flags.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds runtime settings for the NoteHub dev server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - SecretKey: HMAC secret for signing session tokens (HS256). Do not use
//     the default outside local runs.
//   - SessionValidity: lifetime of an issued session token.
//   - SeedFile: optional JSON file with notes loaded at startup.
//   - LogLevel: zap level name.
type Config struct {
	Addr            string        `envconfig:"ADDR"`
	SecretKey       string        `envconfig:"SECRET_KEY"`
	SessionValidity time.Duration `envconfig:"SESSION_VALIDITY"`
	SeedFile        string        `envconfig:"SEED_FILE"`
	LogLevel        string        `envconfig:"LOG_LEVEL"`
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8080"
	c.SecretKey = "secretKey"
	c.SessionValidity = 24 * time.Hour
	c.SeedFile = ""
	c.LogLevel = "info"
}

func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("listen address is empty"))
	}
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.SessionValidity <= 0 {
		errs = append(errs, fmt.Errorf("session validity must be positive, got %s", c.SessionValidity))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config by applying defaults, then the JSON file named
// by -c/-config, then NOTEHUB_SERVER_* variables and finally flags.
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
