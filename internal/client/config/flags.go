package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags. Only
// the flags known here are parsed; subcommands and their operands are left
// to the CLI.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-s", "-d", "-p", "-rb", "-rm", "-ra"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	fs.StringVar(&cfg.Secret, "s", cfg.Secret, "client secret")
	fs.StringVar(&cfg.CacheDSN, "d", cfg.CacheDSN, "local cache database")
	fs.IntVar(&cfg.PageSize, "p", cfg.PageSize, "list page size")

	retryBase := fs.Int("rb", int(cfg.RetryBase.Milliseconds()), "token retry base delay (in milliseconds)")
	retryMax := fs.Int("rm", int(cfg.RetryMax.Milliseconds()), "token retry max delay (in milliseconds)")
	fs.IntVar(&cfg.RetryAttempts, "ra", cfg.RetryAttempts, "token exchange attempts")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.RetryBase = time.Duration(*retryBase) * time.Millisecond
	cfg.RetryMax = time.Duration(*retryMax) * time.Millisecond
}
