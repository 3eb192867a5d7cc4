// Package common contains shared constants and the typed error used across
// gophstore client and server components.
package common

// AuthorizationHeaderName is the gRPC metadata key used to carry the
// bearer token on outbound requests.
const AuthorizationHeaderName = "authorization"

// BearerPrefix precedes the token in the authorization header value.
const BearerPrefix = "Bearer "
