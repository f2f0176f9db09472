package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/notehub/internal/flagx"
)

// parseFlags applies command-line overrides:
//
//	-a string   API base URL
//	-d string   path to the local database
//	-t int      session revalidation timeout (seconds)
//	-i int      revalidation interval for an unconfirmed session (seconds)
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-t", "-i", "-l"})

	fs := flag.NewFlagSet("notehub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the local database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	timeout := fs.Int("t", int(cfg.SessionTimeout.Seconds()), "session revalidation timeout (in seconds)")
	interval := fs.Int("i", int(cfg.RevalidateInterval.Seconds()), "revalidation interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			cfg.SessionTimeout = time.Duration(*timeout) * time.Second
		case "i":
			cfg.RevalidateInterval = time.Duration(*interval) * time.Second
		}
	})
	return nil
}
