package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophsite/internal/flagx"
)

// parseFlags populates Config fields from command-line flags. Unknown flags
// are filtered out with flagx.FilterArgs. A malformed value panics.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-t", "-i", "-p", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the site server")
	fs.StringVar(&cfg.Transport, "p", cfg.Transport, "transport: http or grpc")
	fs.StringVar(&cfg.GRPCAddr, "g", cfg.GRPCAddr, "staff gRPC endpoint address")
	fs.StringVar(&cfg.StatePath, "s", cfg.StatePath, "local state database path")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
}
