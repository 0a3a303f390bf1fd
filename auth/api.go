package auth

import (
	"time"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// Request entry points follow one contract: they return immediately, nil
// meaning the request is in flight and the callback will be invoked
// exactly once from Update with the final result. A non-nil return
// (ErrNotConnected, ErrShutdown) means the callback will never fire and
// the caller may retry later.

// PingCallback receives the echoed send timestamp and payload.
type PingCallback func(res Result, pingAtMS uint64, payload []byte)

// Ping measures round-trip liveness as a transaction, alongside the
// connection-level keepalive.
func (cl *Client) Ping(payload []byte, cb PingCallback) error {
	var pingAt uint64
	var echoed []byte

	t := cl.newTrans("ping", wire.Cli2Auth_PingRequest,
		func(w *codec.Writer) {
			w.Uint64(uint64(time.Now().UnixMilli())).Buffer(payload)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			pingAt = r.Uint64()
			echoed = r.Buffer()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, ResultSuccess
		},
		func(res Result) {
			cb(res, pingAt, echoed)
		})
	return cl.sendTrans(t)
}
