package config

import (
	"flag"
	"os"
	"time"

	"github.com/unicampus-app/unicampus/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend API
//	-t int      request timeout in seconds
//	-r int      refresh timeout in seconds
//	-s string   path to the local store database
//	-l string   log level (debug|info|warn|error)
//
// Only the flags listed here are parsed; os.Args is filtered through
// flagx.FilterArgs so other components can define their own flags.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-r", "-s", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.BaseURL, "a", cfg.BaseURL, "base URL of the backend API")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	refreshTimeout := fs.Int("r", int(cfg.RefreshTimeout.Seconds()), "refresh timeout (in seconds)")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "path to the local store database")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.RefreshTimeout = time.Duration(*refreshTimeout) * time.Second
}
