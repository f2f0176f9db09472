package config

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix namespaces the environment variables, e.g. NOTEHUB_API_URL.
const EnvPrefix = "NOTEHUB"

// parseEnv overlays values from the environment. Unset variables leave the
// field untouched.
func parseEnv(cfg *Config) error {
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}
	return nil
}
