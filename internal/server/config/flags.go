package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/notehub/internal/flagx"
)

// parseFlags populates selected fields from command-line flags:
//
//	-a string   bind address (e.g. ":8080")
//	-s string   session token secret key
//	-t int      session validity, minutes
//	-f string   seed file with notes
//	-l string   log level
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-s", "-t", "-f", "-l"})

	fs := flag.NewFlagSet("notehub-server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.Addr, "a", cfg.Addr, "address and port to run server")
	fs.StringVar(&cfg.SecretKey, "s", cfg.SecretKey, "secret key")
	fs.StringVar(&cfg.SeedFile, "f", cfg.SeedFile, "seed file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	validity := fs.Int("t", int(cfg.SessionValidity.Minutes()), "session validity (in minutes)")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.SessionValidity = time.Duration(*validity) * time.Minute
		}
	})
	return nil
}
