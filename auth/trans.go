package auth

import (
	"sync/atomic"
	"time"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/metrics"
	"github.com/lcx/authlink/wire"
)

// keepaliveTransID is reserved for the connection-level keepalive ping.
// Real transaction ids start above it and are never reassigned while the
// process lives, so a reply to a long-dead transaction can never collide
// with a live one.
const keepaliveTransID = 0

var transIDCounter atomic.Uint32

func nextTransID() uint32 {
	return transIDCounter.Add(1)
}

const (
	transCreated int32 = iota
	transSent
	transAwaitingReply
	// transReceiving marks the reply path's exclusive claim while the
	// kind-specific decode runs. Cancelers never complete a transaction
	// in this state; the receive goroutine owns it until it releases the
	// claim.
	transReceiving
	transComplete
	transCanceled
)

// buildFunc writes the kind-specific request fields. The correlation id
// has already been written at body offset 0.
type buildFunc func(w *codec.Writer)

// recvFunc interprets one inbound reply for this transaction. Returning
// done=false leaves the transaction awaiting further fragments. A decode
// failure is reported by returning done=true with ResultProtocolError.
type recvFunc func(msgID uint32, r *codec.Reader) (done bool, res Result)

// postFunc invokes the caller's callback. Runs on the application turn
// via Client.Update, exactly once.
type postFunc func(res Result)

// trans is one correlated request/reply exchange. Request kinds differ
// only in their build/recv/post hooks; the lifecycle is uniform.
type trans struct {
	id      uint32
	name    string
	msgID   uint32
	connSeq uint32

	state    atomic.Int32
	deadline time.Time

	// timeoutExempt kinds have unbounded server-side latency (age
	// instantiation); they complete only by reply, disconnect, or
	// shutdown.
	timeoutExempt bool

	build buildFunc
	recv  recvFunc
	post  postFunc

	// subPending counts outstanding sub-work (per-chunk application
	// posts of a bulk download). When the wire exchange finishes while
	// subs remain, completion is deferred until the last sub drains.
	subPending  atomic.Int32
	wireDone    atomic.Bool
	deferredRes Result
}

func (cl *Client) newTrans(name string, msgID uint32, build buildFunc, recv recvFunc, post postFunc) *trans {
	return &trans{
		id:    nextTransID(),
		name:  name,
		msgID: msgID,
		build: build,
		recv:  recv,
		post:  post,
	}
}

// sendTrans acquires the active connection and writes the request. Fails
// fast with ErrNotConnected when no active connection exists; the caller
// may retry after connectivity returns. On success the transaction is
// pending and its callback is guaranteed to fire exactly once.
func (cl *Client) sendTrans(t *trans) error {
	if cl.isShutdown() {
		return ErrShutdown
	}
	c := cl.registry.acquireActive()
	if c == nil {
		return ErrNotConnected
	}

	t.connSeq = c.seq
	t.deadline = time.Now().Add(cl.cfg.transTimeout())

	w := codec.NewWriter(64)
	w.Uint32(t.id)
	if t.build != nil {
		t.build(w)
	}

	cl.transLock.Lock()
	cl.pendingTrans[t.id] = t
	cl.transLock.Unlock()

	t.state.Store(transSent)
	if err := c.send(t.msgID, w.Bytes()); err != nil {
		// Reclaim before unpublishing. A canceler that already won the
		// state owns the callback, and the error return must not signal
		// on top of it.
		if !t.state.CompareAndSwap(transSent, transCanceled) {
			return nil
		}
		cl.transLock.Lock()
		delete(cl.pendingTrans, t.id)
		cl.transLock.Unlock()
		return err
	}
	// A canceler may have claimed the transaction while the send was in
	// flight; its callback is already on the way, so leave the terminal
	// state alone.
	t.state.CompareAndSwap(transSent, transAwaitingReply)
	metrics.IncrCounterWithDimGroup("auth", "trans_sent_total", 1, map[string]string{"kind": t.name})

	c.slog.Debug().Uint32("transID", t.id).Str("kind", t.name).
		Str("msg", wire.Cli2AuthName(t.msgID)).Msg("trans sent")
	return nil
}

// recvReply routes one reply to its pending transaction. Unknown or
// expired correlation ids are dropped silently: a late reply to a
// canceled transaction is normal traffic, not an error.
func (cl *Client) recvReply(msgID uint32, transID uint32, r *codec.Reader) {
	cl.transLock.Lock()
	t, ok := cl.pendingTrans[transID]
	cl.transLock.Unlock()
	if !ok {
		metrics.IncrCounterWithGroup("auth", "reply_unmatched_total", 1)
		return
	}

	// Claim the transaction before decoding. A canceler that already
	// drove it to a terminal state wins, and this reply is discarded as
	// unmatched; a canceler arriving while the claim is held loses its
	// CAS and leaves the transaction to the receive path.
	if !t.state.CompareAndSwap(transAwaitingReply, transReceiving) {
		metrics.IncrCounterWithGroup("auth", "reply_unmatched_total", 1)
		return
	}

	done, res := t.recv(msgID, r)
	if !done {
		t.state.Store(transAwaitingReply)
		// A shutdown that raced the claim skipped this transaction;
		// honor its promise now.
		if cl.isShutdown() {
			cl.completeTrans(t, ResultShutdown)
		}
		return
	}
	if t.subPending.Load() > 0 {
		// Wire exchange finished but sub-work is still queued; the last
		// sub drain completes the transaction.
		t.deferredRes = res
		t.wireDone.Store(true)
		t.state.Store(transAwaitingReply)
		if t.subPending.Load() == 0 {
			cl.completeTrans(t, t.deferredRes)
		}
		return
	}
	t.state.Store(transAwaitingReply)
	cl.completeTrans(t, res)
}

// subDone signals one unit of sub-work finished.
func (cl *Client) subDone(t *trans) {
	if t.subPending.Add(-1) == 0 && t.wireDone.Load() {
		cl.completeTrans(t, t.deferredRes)
	}
}

// completeTrans finishes a transaction exactly once, whatever the race
// between reply, timeout, cancellation, and shutdown. The losing paths
// see the state already terminal and return.
func (cl *Client) completeTrans(t *trans, res Result) {
	final := transComplete
	if res != ResultSuccess && res != ResultRejected {
		final = transCanceled
	}
	if !t.state.CompareAndSwap(transAwaitingReply, int32(final)) &&
		!t.state.CompareAndSwap(transSent, int32(final)) &&
		!t.state.CompareAndSwap(transCreated, int32(final)) {
		return
	}

	cl.transLock.Lock()
	delete(cl.pendingTrans, t.id)
	cl.transLock.Unlock()

	metrics.IncrCounterWithDimGroup("auth", "trans_complete_total", 1,
		map[string]string{"kind": t.name, "result": res.String()})

	cl.enqueuePost(func() {
		if t.post != nil {
			t.post(res)
		}
	})
}

// cancelConnTrans cancels every transaction bound to one connection,
// identified by its sequence number so a reconnect race never cancels the
// successor's transactions.
func (cl *Client) cancelConnTrans(connSeq uint32, res Result) {
	cl.transLock.Lock()
	victims := make([]*trans, 0, len(cl.pendingTrans))
	for _, t := range cl.pendingTrans {
		if t.connSeq == connSeq {
			victims = append(victims, t)
		}
	}
	cl.transLock.Unlock()

	for _, t := range victims {
		cl.completeTrans(t, res)
	}
}

// cancelAllTrans cancels every pending transaction. Used at shutdown and
// when the reconnect policy gives up.
func (cl *Client) cancelAllTrans(res Result) {
	cl.transLock.Lock()
	victims := make([]*trans, 0, len(cl.pendingTrans))
	for _, t := range cl.pendingTrans {
		victims = append(victims, t)
	}
	cl.transLock.Unlock()

	for _, t := range victims {
		cl.completeTrans(t, res)
	}
}

// sweepTimeouts completes every overdue non-exempt transaction with a
// timeout result. Called periodically from the client's housekeeping
// goroutine.
func (cl *Client) sweepTimeouts(now time.Time) {
	cl.transLock.Lock()
	victims := make([]*trans, 0)
	for _, t := range cl.pendingTrans {
		if t.timeoutExempt {
			continue
		}
		if now.After(t.deadline) {
			victims = append(victims, t)
		}
	}
	cl.transLock.Unlock()

	for _, t := range victims {
		metrics.IncrCounterWithDimGroup("auth", "trans_timeout_total", 1, map[string]string{"kind": t.name})
		cl.completeTrans(t, ResultTimeout)
	}
}

// refreshDeadline extends a transaction's timeout budget. Used by
// chunked exchanges where each fragment proves the server is still
// working.
func (cl *Client) refreshDeadline(t *trans) {
	cl.transLock.Lock()
	t.deadline = time.Now().Add(cl.cfg.transTimeout())
	cl.transLock.Unlock()
}

// serverResult maps a server status code to a Result: zero is success,
// anything else is a domain rejection passed through uninterpreted.
func serverResult(code uint32) Result {
	if code == 0 {
		return ResultSuccess
	}
	return ResultRejected
}

func (cl *Client) pendingCount() int {
	cl.transLock.Lock()
	defer cl.transLock.Unlock()
	return len(cl.pendingTrans)
}
