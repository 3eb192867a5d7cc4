// Package config loads runtime configuration for the gophstore CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file (see parseJson) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-a string   address:port of the store's gRPC endpoint
//	-s string   client secret exchanged for access tokens
//	-d string   DSN of the local SQLite view cache
//	-p int      list page size requested from the server
//	-rb int     token exchange retry base delay (milliseconds)
//	-rm int     token exchange retry maximum delay (milliseconds)
//	-ra int     token exchange attempts
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "secret": "...",
//	  "cache_dsn": "gophstore.db",
//	  "page_size": 100,
//	  "retry_base": "100ms",
//	  "retry_max": "5s",
//	  "retry_attempts": 5
//	}
//
// The secret may also come from GOPHSTORE_SECRET; when it is still empty
// the CLI prompts for it.
package config
