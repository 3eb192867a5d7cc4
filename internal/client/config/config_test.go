package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(SecretEnv, "from-env")

	var c Config
	c.LoadDefaults()

	assert.Equal(t, "127.0.0.1:50051", c.ServerEndpointAddr)
	assert.Equal(t, "from-env", c.Secret)
	assert.Equal(t, "gophstore.db", c.CacheDSN)
	assert.Equal(t, 100, c.PageSize)
	assert.Equal(t, 100*time.Millisecond, c.RetryBase)
	assert.Equal(t, 5*time.Second, c.RetryMax)
	assert.Equal(t, 5, c.RetryAttempts)
}

func TestLoadConfig_FlagsOverrideDefaults(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	t.Setenv(SecretEnv, "")

	os.Args = []string{"gophstore", "-a", "store:1", "list", "notes/"}
	cfg := LoadConfig()

	require.NotNil(t, cfg, "LoadConfig must not return nil")
	assert.Equal(t, "store:1", cfg.ServerEndpointAddr)
	assert.Empty(t, cfg.Secret)
	assert.Equal(t, 100, cfg.PageSize)
}
