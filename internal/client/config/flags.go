package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-a string   REST API base URL
//	-g string   gRPC health endpoint address
//	-i int      online check interval in seconds
//	-d string   local database path
//	-l string   log format (slog|zap)
//
// Only these flags are picked out of os.Args (see flagx.FilterArgs).
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-i", "-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "REST API base URL")
	fs.StringVar(&cfg.HealthAddr, "g", cfg.HealthAddr, "address and port of the gRPC health endpoint")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "local database path")
	fs.StringVar(&cfg.LogFormat, "l", cfg.LogFormat, "log format: slog or zap")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
