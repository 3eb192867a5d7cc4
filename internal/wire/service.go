package wire

import "google.golang.org/grpc"

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "gophstore.v1.Store"

const (
	MethodExchangeToken = "/" + ServiceName + "/ExchangeToken"
	MethodTransact      = "/" + ServiceName + "/Transact"
	MethodList          = "/" + ServiceName + "/List"
	MethodSync          = "/" + ServiceName + "/Sync"
)

var (
	// TransactStreamDesc describes the bidirectional transaction stream.
	TransactStreamDesc = grpc.StreamDesc{StreamName: "Transact", ServerStreams: true, ClientStreams: true}
	// ListStreamDesc describes the server-streaming list call (Response messages).
	ListStreamDesc = grpc.StreamDesc{StreamName: "List", ServerStreams: true}
	// SyncStreamDesc describes the server-streaming sync call (SyncEnvelope messages).
	SyncStreamDesc = grpc.StreamDesc{StreamName: "Sync", ServerStreams: true}
)
