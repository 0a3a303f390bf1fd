// Package net implements the client-side transport layer for the auth-server
// protocol. A transport owns one socket: it dials, presents the connect
// header, then moves framed messages in both directions until closed. The
// connection lifecycle above the socket (reconnect, ping, registration)
// lives in the auth package; transports only report what the socket did.
package net

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/lcx/authlink/wire"
)

// EventSink receives transport events. Callbacks run on the transport's
// receive goroutine; implementations must not block.
type EventSink interface {
	// OnFrame is called for every complete frame read from the socket.
	// The body slice is only valid for the duration of the call.
	OnFrame(msgID uint32, body []byte)

	// OnClosed is called exactly once when the socket is gone, whether
	// closed locally or dropped by the peer. err is nil for a local
	// Close and carries the socket error otherwise.
	OnClosed(err error)
}

// Transport is a single client connection to an auth server. A transport
// is single-use: once closed it cannot be redialed, the owner creates a
// fresh one for every connection attempt.
type Transport interface {
	// Dial connects to addr and presents the connect header. It blocks
	// until the socket is established or ctx is done. On success the
	// transport starts its receive loop and begins delivering frames
	// to the sink.
	Dial(ctx context.Context, addr string, hdr *wire.ConnectHeader) error

	// Send queues a frame for delivery. It never blocks; when the send
	// channel is full the frame is rejected and the caller decides
	// whether to drop the connection.
	Send(msgID uint32, body []byte) error

	// Close tears down the socket. Safe to call multiple times and
	// before Dial.
	Close() error

	// RemoteAddr returns the dialed address, for logging.
	RemoteAddr() string
}

// Factory creates an unconnected transport bound to a sink.
type Factory func(cfg *TransportCfg, sink EventSink) Transport

var (
	factoryLock sync.RWMutex
	factories   = make(map[string]Factory)
)

// RegisterFactory registers a transport factory under a connType name.
// Later registrations under the same name replace earlier ones.
func RegisterFactory(connType string, f Factory) {
	factoryLock.Lock()
	defer factoryLock.Unlock()
	factories[connType] = f
}

// NewTransport creates a transport of the configured connType.
func NewTransport(cfg *TransportCfg, sink EventSink) (Transport, error) {
	if cfg == nil {
		return nil, errors.New("TransportCfg cannot be nil")
	}
	if sink == nil {
		return nil, errors.New("sink cannot be nil")
	}
	factoryLock.RLock()
	f, ok := factories[cfg.ConnType]
	factoryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown connType: %s", cfg.ConnType)
	}
	return f(cfg, sink), nil
}
