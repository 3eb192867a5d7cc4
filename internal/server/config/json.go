package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gophstore/internal/flagx"
	"github.com/dmitrijs2005/gophstore/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "90s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC      string         `json:"endpoint_addr_grpc"`
	SecretKey             string         `json:"secret_key"`
	ClientSecret          string         `json:"client_secret"`
	TokenValidityDuration timex.Duration `json:"token_validity_duration"`
	ChangelogCapacity     int            `json:"changelog_capacity"`
	PageSize              int            `json:"page_size"`
}

// parseJson overlays the JSON file named by -c or -config onto config.
// Fields absent from the file keep their current values. An unreadable or
// invalid file panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	if c.EndpointAddrGRPC != "" {
		config.EndpointAddrGRPC = c.EndpointAddrGRPC
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.ClientSecret != "" {
		config.ClientSecret = c.ClientSecret
	}
	if c.TokenValidityDuration.Duration > 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.ChangelogCapacity > 0 {
		config.ChangelogCapacity = c.ChangelogCapacity
	}
	if c.PageSize > 0 {
		config.PageSize = c.PageSize
	}
}
