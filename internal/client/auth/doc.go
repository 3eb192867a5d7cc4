// Package auth keeps a short-lived access token fresh on behalf of every RPC
// a client makes.
//
// A TokenManager exchanges the long-lived client secret for a token, caches
// it until it expires and refreshes it in the background shortly before that.
// Concurrent callers that find the cache empty share a single exchange.
// Transient exchange failures are retried with capped exponential backoff and
// full jitter; credential failures are returned at once.
package auth
