package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-k string   JWT HMAC secret key
//	-s string   client secret accepted by ExchangeToken
//	-t int      token validity, seconds
//	-l int      changelog capacity
//	-p int      page size
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with the -c/-config flag.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-k", "-s", "-t", "-l", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run server")
	fs.StringVar(&config.SecretKey, "k", config.SecretKey, "JWT secret key")
	fs.StringVar(&config.ClientSecret, "s", config.ClientSecret, "client secret")

	tokenValidity := fs.Int("t", int(config.TokenValidityDuration.Seconds()), "token validity (in seconds)")

	fs.IntVar(&config.ChangelogCapacity, "l", config.ChangelogCapacity, "changelog capacity")
	fs.IntVar(&config.PageSize, "p", config.PageSize, "list page size")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.TokenValidityDuration = time.Duration(*tokenValidity) * time.Second
}
