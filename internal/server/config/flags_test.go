package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected *Config
		wantErr  bool
	}{
		{
			name: "all flags",
			args: []string{"-a", "127.0.0.1:9090", "-s", "secret", "-t", "30", "-f", "seed.json", "-l", "debug"},
			expected: &Config{
				Addr:            "127.0.0.1:9090",
				SecretKey:       "secret",
				SessionValidity: 30 * time.Minute,
				SeedFile:        "seed.json",
				LogLevel:        "debug",
			},
		},
		{
			name: "foreign flags are skipped",
			args: []string{"-c", "cfg.json", "-d", "x", "-a", ":1"},
			expected: &Config{
				Addr:            ":1",
				SecretKey:       "secretKey",
				SessionValidity: 24 * time.Hour,
				LogLevel:        "info",
			},
		},
		{
			name:    "bad validity",
			args:    []string{"-t", "long"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.LoadDefaults()

			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, cfg))
		})
	}
}
