package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notehub/internal/flagx"
	"github.com/dmitrijs2005/notehub/internal/timex"
)

// JsonConfig is the intermediate shape read from the config file. Fields
// left out of the file keep their current value.
type JsonConfig struct {
	Addr            *string         `json:"addr"`
	SecretKey       *string         `json:"secret_key"`
	SessionValidity *timex.Duration `json:"session_validity"`
	SeedFile        *string         `json:"seed_file"`
	LogLevel        *string         `json:"log_level"`
}

// parseJson loads the file given with -c or -config. Without the flag
// nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if jc.Addr != nil {
		cfg.Addr = *jc.Addr
	}
	if jc.SecretKey != nil {
		cfg.SecretKey = *jc.SecretKey
	}
	if jc.SessionValidity != nil {
		cfg.SessionValidity = jc.SessionValidity.Duration
	}
	if jc.SeedFile != nil {
		cfg.SeedFile = *jc.SeedFile
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
