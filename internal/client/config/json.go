package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/notehub/internal/flagx"
	"github.com/dmitrijs2005/notehub/internal/timex"
)

// JsonConfig is the on-disk shape. Durations accept "5s" or nanoseconds.
// Absent fields keep their current value.
type JsonConfig struct {
	APIBaseURL         *string         `json:"api_base_url"`
	DatabasePath       *string         `json:"database_path"`
	SessionTimeout     *timex.Duration `json:"session_timeout"`
	RequestTimeout     *timex.Duration `json:"request_timeout"`
	RevalidateInterval *timex.Duration `json:"revalidate_interval"`
	VoteRetries        *int            `json:"vote_retries"`
	ReconcilePolicy    *string         `json:"reconcile_policy"`
	LogLevel           *string         `json:"log_level"`
	LogBackend         *string         `json:"log_backend"`
}

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

	setString(&cfg.APIBaseURL, jc.APIBaseURL)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.ReconcilePolicy, jc.ReconcilePolicy)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogBackend, jc.LogBackend)
	if jc.SessionTimeout != nil {
		cfg.SessionTimeout = jc.SessionTimeout.Duration
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.RevalidateInterval != nil {
		cfg.RevalidateInterval = jc.RevalidateInterval.Duration
	}
	if jc.VoteRetries != nil {
		cfg.VoteRetries = *jc.VoteRetries
	}
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
