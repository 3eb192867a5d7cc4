// Package config handles configuration for the reference server, including
// defaults, JSON overlay, and command-line flags.
package config

import "time"

// Config holds runtime settings for the gophstore reference server.
//
// Fields:
//   - EndpointAddrGRPC: bind address for the gRPC endpoint.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - ClientSecret: the long-lived secret clients exchange for tokens, in
//     plaintext or as an argon2id digest from "server hash-secret".
//   - TokenValidityDuration: lifetime of issued tokens.
//   - ChangelogCapacity: number of changes retained for sync before a reset.
//   - PageSize: maximum items per list page and per sync batch.
type Config struct {
	EndpointAddrGRPC      string
	SecretKey             string
	ClientSecret          string
	TokenValidityDuration time.Duration
	ChangelogCapacity     int
	PageSize              int
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = ":50051"
	c.SecretKey = "secretKey"
	c.ClientSecret = "clientSecret"
	c.TokenValidityDuration = 5 * time.Minute
	c.ChangelogCapacity = 1024
	c.PageSize = 100
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
