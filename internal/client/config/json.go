package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/timex"
)

// JsonConfig is the on-disk form of Config.
type JsonConfig struct {
	ServerEndpointAddr string         `json:"server_endpoint_addr"`
	Secret             string         `json:"secret"`
	CacheDSN           string         `json:"cache_dsn"`
	PageSize           int            `json:"page_size"`
	RetryBase          timex.Duration `json:"retry_base"`
	RetryMax           timex.Duration `json:"retry_max"`
	RetryAttempts      int            `json:"retry_attempts"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Fields missing from the file are left alone. Read or
// unmarshal errors panic.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerEndpointAddr != "" {
		cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	}
	if jc.Secret != "" {
		cfg.Secret = jc.Secret
	}
	if jc.CacheDSN != "" {
		cfg.CacheDSN = jc.CacheDSN
	}
	if jc.PageSize > 0 {
		cfg.PageSize = jc.PageSize
	}
	if jc.RetryBase.Duration > 0 {
		cfg.RetryBase = jc.RetryBase.Duration
	}
	if jc.RetryMax.Duration > 0 {
		cfg.RetryMax = jc.RetryMax.Duration
	}
	if jc.RetryAttempts > 0 {
		cfg.RetryAttempts = jc.RetryAttempts
	}
}
