package auth

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/log"
	"github.com/lcx/authlink/metrics"
	"github.com/lcx/authlink/net"
	"github.com/lcx/authlink/wire"
)

// ConnState is the lifecycle state of one connection.
type ConnState int32

const (
	// StateDisconnected is the terminal and initial state.
	StateDisconnected ConnState = iota
	// StateConnecting means a dial is in flight.
	StateConnecting
	// StateConnected means the socket is up but the register handshake
	// has not completed.
	StateConnected
	// StateActive means the handshake completed and the connection is
	// the authoritative one for its role.
	StateActive
)

var connStateNames = map[ConnState]string{
	StateDisconnected: "disconnected",
	StateConnecting:   "connecting",
	StateConnected:    "connected",
	StateActive:       "active",
}

func (s ConnState) String() string {
	if name, ok := connStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// conn owns one transport session. It is created per connection attempt
// and never redialed: reconnection builds a fresh conn with the next
// sequence number, which is what lets a dead conn's transactions be
// bulk-canceled by seq without touching the successor's.
type conn struct {
	seq    uint32
	addr   string
	client *Client
	slog   *log.SessionLogger

	transport net.Transport

	state     atomic.Int32
	abandoned atomic.Bool

	hasToken bool
	token    [wire.TokenSize]byte

	serverChallenge atomic.Uint32

	// Liveness clocks, unix milli. lastHeard updates on every inbound
	// frame; connectedAt anchors the disconnect-timeout ceiling.
	lastHeardMS atomic.Int64
	pingSentMS  atomic.Int64

	pingStop     chan struct{}
	pingStopOnce sync.Once
}

func newConn(client *Client, seq uint32, addr string) *conn {
	c := &conn{
		seq:      seq,
		addr:     addr,
		client:   client,
		slog:     log.NewSessionLogger(client.logCfg, seq),
		pingStop: make(chan struct{}),
	}
	if client.tokens != nil {
		if tok, ok := client.tokens.Get(addr); ok {
			c.token = tok
			c.hasToken = true
		}
	}
	return c
}

func (c *conn) getState() ConnState {
	return ConnState(c.state.Load())
}

func (c *conn) setState(s ConnState) {
	old := ConnState(c.state.Swap(int32(s)))
	if old != s {
		c.slog.Debug().Str("from", old.String()).Str("to", s.String()).Msg("conn state change")
	}
}

func (c *conn) isAbandoned() bool {
	return c.abandoned.Load()
}

// abandon marks the connection superseded and tears the socket down.
// An abandoned connection short-circuits any in-flight connect: its
// handshake can no longer promote it and its closure schedules no
// reconnect.
func (c *conn) abandon() {
	if c.abandoned.Swap(true) {
		return
	}
	c.slog.Info().Str("addr", c.addr).Msg("conn abandoned")
	metrics.IncrCounterWithGroup("auth", "conn_abandoned_total", 1)
	if c.transport != nil {
		_ = c.transport.Close()
	}
}

// dial opens the socket and, on success, sends the register request that
// starts the handshake. Runs on the caller's goroutine; transport events
// arrive asynchronously afterwards.
func (c *conn) dial(ctx context.Context) error {
	c.setState(StateConnecting)

	transport, err := net.NewTransport(c.client.transportCfg, c)
	if err != nil {
		c.setState(StateDisconnected)
		return err
	}
	c.transport = transport

	hdr := &wire.ConnectHeader{
		BuildID:   c.client.cfg.BuildID,
		BranchID:  c.client.cfg.BranchID,
		ProductID: c.client.cfg.ProductID,
	}
	if c.hasToken {
		hdr.Token = c.token
	}

	if err := transport.Dial(ctx, c.addr, hdr); err != nil {
		c.setState(StateDisconnected)
		return err
	}

	now := time.Now().UnixMilli()
	c.lastHeardMS.Store(now)
	c.setState(StateConnected)

	// Register handshake: the reply carries the server challenge and
	// promotes the connection to active.
	body := codec.NewWriter(8)
	body.Uint32(0). // transID slot; handshake replies route by msg id
			Uint32(c.client.cfg.BuildID)
	if err := transport.Send(wire.Cli2Auth_ClientRegisterRequest, body.Bytes()); err != nil {
		_ = transport.Close()
		return err
	}
	return nil
}

// send writes one framed message. Valid only while the socket is up.
func (c *conn) send(msgID uint32, body []byte) error {
	if s := c.getState(); s != StateConnected && s != StateActive {
		return errors.New("conn not connected")
	}
	return c.transport.Send(msgID, body)
}

// OnFrame net.EventSink interface. Runs on the transport receive
// goroutine.
func (c *conn) OnFrame(msgID uint32, body []byte) {
	c.lastHeardMS.Store(time.Now().UnixMilli())
	c.client.dispatch(c, msgID, body)
}

// OnClosed net.EventSink interface.
func (c *conn) OnClosed(err error) {
	c.setState(StateDisconnected)
	c.stopPing()
	c.client.onConnClosed(c, err)
}

func (c *conn) close() {
	c.stopPing()
	if c.transport != nil {
		_ = c.transport.Close()
	}
}

// onRegistered completes the handshake: records the server challenge and
// starts the keepalive ping.
func (c *conn) onRegistered(challenge uint32) {
	c.serverChallenge.Store(challenge)
	c.setState(StateActive)
	go c.servePing()
}

// servePing sends a keepalive ping every interval and, when staleness
// checking is on, drops the socket once nothing has been heard for the
// staleness budget. A half-open socket the transport never reports dead
// would otherwise look alive until the disconnect ceiling.
func (c *conn) servePing() {
	interval := c.client.cfg.pingInterval()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.pingStop:
			return
		case <-ticker.C:
			if c.client.cfg.StalenessCheckEnabled {
				heard := time.Since(time.UnixMilli(c.lastHeardMS.Load()))
				if heard > c.client.cfg.stalenessBudget() {
					c.slog.Warn().Dur("sinceHeard", heard).Msg("conn stale, forcing disconnect")
					metrics.IncrCounterWithGroup("auth", "conn_stale_total", 1)
					_ = c.transport.Close()
					return
				}
			}
			if !c.client.pingEnabled.Load() {
				continue
			}
			c.sendPing()
		}
	}
}

func (c *conn) sendPing() {
	now := time.Now().UnixMilli()
	body := codec.NewWriter(16)
	body.Uint32(keepaliveTransID).
		Uint64(uint64(now)).
		Buffer(nil)
	if err := c.send(wire.Cli2Auth_PingRequest, body.Bytes()); err != nil {
		c.slog.Warn().Err(err).Msg("keepalive ping send failed")
		return
	}
	c.pingSentMS.Store(now)
	metrics.IncrCounterWithGroup("auth", "ping_sent_total", 1)
}

func (c *conn) stopPing() {
	c.pingStopOnce.Do(func() {
		close(c.pingStop)
	})
}
