// Package wire defines the messages exchanged between a gophstore client and
// server: transaction envelopes, list and sync stream messages, and the
// unary token exchange.
//
// # Sum types
//
// Commands, results, sync messages and sync entries are closed sum types:
// each is a sealed interface (unexported marker method) implemented by a
// fixed set of structs in this package. Consumers use exhaustive type
// switches:
//
//	switch r := resp.Result.(type) {
//	case wire.GetResult:
//	case wire.PutAck:
//	case wire.ListResult:
//	case wire.Finished:
//	}
//
// # Encoding
//
// Messages travel as discriminated JSON objects
//
//	{"seq": 3, "kind": "get", "body": {"keys": ["a/b"]}}
//
// through a gRPC codec registered under CodecName. Calls select it with
// grpc.CallContentSubtype(wire.CodecName).
package wire
