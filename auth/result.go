// Package auth implements the authentication-server protocol client: the
// connection lifecycle with automatic reconnection and keepalive, correlated
// request/reply transactions multiplexed over one socket, and delivery of
// server-pushed notifications. All request entry points are asynchronous and
// invoke their callback exactly once, on the application turn via
// Client.Update, never on a network goroutine.
package auth

// Result is the closed outcome taxonomy for transactions and terminal
// connection errors. It is deliberately not a Go error: a Result is a
// protocol outcome handed to callbacks, while Go errors report local
// misuse (not connected, shut down, bad arguments).
type Result uint32

const (
	// ResultSuccess means the server accepted the request.
	ResultSuccess Result = iota

	// ResultTimeout means no reply arrived within the transaction budget.
	ResultTimeout

	// ResultDisconnected means the connection died while the request was
	// in flight.
	ResultDisconnected

	// ResultTransportError means the request never made it onto a socket
	// (resolution or connect failure exhausted the reconnect policy).
	ResultTransportError

	// ResultProtocolError means the reply was malformed or unexpected.
	// Never retried: replaying a malformed exchange risks duplicate side
	// effects on one-shot operations.
	ResultProtocolError

	// ResultRejected means the server returned a domain failure code
	// (bad credentials, name taken). The raw code is passed through on
	// the kind-specific reply, uninterpreted.
	ResultRejected

	// ResultShutdown means the client was shut down before completion.
	ResultShutdown
)

var resultNames = map[Result]string{
	ResultSuccess:        "success",
	ResultTimeout:        "timeout",
	ResultDisconnected:   "disconnected",
	ResultTransportError: "transport_error",
	ResultProtocolError:  "protocol_error",
	ResultRejected:       "rejected",
	ResultShutdown:       "shutdown",
}

// String returns the result's stable name, used in logs and metric labels.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return "unknown"
}

// IsSuccess reports whether the result is ResultSuccess.
func (r Result) IsSuccess() bool {
	return r == ResultSuccess
}
