// Package client is the gRPC transport of the gophstore client runtime.
//
// # Overview
//
// GRPCClient owns one grpc.ClientConn to the store and exposes:
//  1. ExchangeToken, the unary secret-for-token call used by auth.TokenManager.
//  2. OpenStream, which opens the bidirectional Transact stream a txn.Session
//     runs on, and Transact, which runs a handler in a fresh session.
//  3. List, ContinueList and SyncList, server-streaming calls returned as
//     cursors.
//
// Messages travel with the JSON codec of package wire. When the client is
// built with a secret, data calls carry a bearer token from a TokenManager;
// a stream rejected with Unauthenticated forces a token refresh so that the
// next call goes out with a fresh token.
//
// # Error Handling
//
// gRPC statuses are converted to *common.Error values by mapError, keeping
// the status as the cause. Callers match them with errors.Is against the
// sentinels of package common.
package client
