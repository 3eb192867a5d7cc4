package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/gophstore/internal/client/auth"
)

// SecretEnv names the environment variable consulted for the secret.
const SecretEnv = "GOPHSTORE_SECRET"

// Config holds runtime settings for the gophstore CLI.
type Config struct {
	ServerEndpointAddr string
	Secret             string
	CacheDSN           string
	PageSize           int

	RetryBase     time.Duration
	RetryMax      time.Duration
	RetryAttempts int
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.Secret = os.Getenv(SecretEnv)
	c.CacheDSN = "gophstore.db"
	c.PageSize = 100
	c.RetryBase = auth.DefaultRetryBase
	c.RetryMax = auth.DefaultRetryMax
	c.RetryAttempts = auth.DefaultRetryAttempts
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}

// ValueFlags lists the flags that take a value, so that positional arguments
// can be told apart from them.
func ValueFlags() []string {
	return []string{"-a", "-s", "-d", "-p", "-rb", "-rm", "-ra", "-c", "-config"}
}
