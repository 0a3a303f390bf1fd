package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/ratelimit"
	"golang.org/x/time/rate"

	"github.com/lcx/authlink/config"
	"github.com/lcx/authlink/log"
	"github.com/lcx/authlink/metrics"
	"github.com/lcx/authlink/net"
	"github.com/lcx/authlink/token"
	"github.com/lcx/authlink/wire"
)

var (
	// ErrNotConnected is returned synchronously when a request is issued
	// with no active connection. Retryable once connectivity returns.
	ErrNotConnected = errors.New("auth: not connected")

	// ErrShutdown is returned after Shutdown; the client issues nothing
	// further.
	ErrShutdown = errors.New("auth: client is shut down")
)

// Deps carries the client's injected collaborators.
type Deps struct {
	// Resolver produces candidate server addresses per connection
	// attempt. Required.
	Resolver net.Resolver

	// TokenStore persists resumption tokens across restarts. Optional;
	// without it sessions never resume and every reconnect takes the
	// slow path.
	TokenStore *token.Store

	// TransportCfg overrides the transport configuration. Optional.
	TransportCfg *net.TransportCfg

	// LogCfg seeds per-connection session loggers. Optional.
	LogCfg *log.LogCfg
}

// Client is an auth-server protocol client: one logical server role, one
// active connection at a time, any number of in-flight transactions
// multiplexed over it. All request entry points are non-blocking; results
// arrive through callbacks drained by Update on the application turn.
type Client struct {
	cfg          *ClientCfg
	transportCfg *net.TransportCfg
	logCfg       *log.LogCfg
	registry     *Registry
	resolver     net.Resolver
	tokens       *token.Store

	transLock    sync.Mutex
	pendingTrans map[uint32]*trans

	postLock  sync.Mutex
	postQueue []func()

	pushes pushHandlers

	recvLimiter     *rate.Limiter
	chunkAckLimiter ratelimit.Limiter

	autoReconnect atomic.Bool
	pingEnabled   atomic.Bool
	shutdownFlag  atomic.Bool

	connSeqCounter atomic.Uint32

	// disconnectStartMS anchors the give-up ceiling: zero while healthy,
	// set at the first failure of a connectivity episode.
	disconnectStartMS atomic.Int64

	reconnectLock  sync.Mutex
	reconnectTimer *time.Timer
	lastAddr       string

	observerLock     sync.Mutex
	connectedHandler func()
	terminalHandler  func(Result)

	housekeepStop chan struct{}
	stopOnce      sync.Once
}

// NewClient creates a client for one server role.
func NewClient(role string, cfg *ClientCfg, deps Deps) (*Client, error) {
	if cfg == nil {
		cfg = DefaultClientCfg()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("auth client config: %w", err)
	}
	if deps.Resolver == nil {
		return nil, errors.New("Resolver cannot be nil")
	}
	transportCfg := deps.TransportCfg
	if transportCfg == nil {
		transportCfg = net.DefaultTransportCfg()
	}
	if err := transportCfg.Validate(); err != nil {
		return nil, fmt.Errorf("transport config: %w", err)
	}

	cl := &Client{
		cfg:           cfg,
		transportCfg:  transportCfg,
		logCfg:        deps.LogCfg,
		registry:      NewRegistry(role),
		resolver:      deps.Resolver,
		tokens:        deps.TokenStore,
		pendingTrans:  make(map[uint32]*trans),
		housekeepStop: make(chan struct{}),
	}
	if cfg.RecvRateLimit > 0 {
		cl.recvLimiter = rate.NewLimiter(rate.Limit(cfg.RecvRateLimit), cfg.RecvRateBurst)
	}
	cl.chunkAckLimiter = ratelimit.New(chunkAcksPerSecond)
	cl.autoReconnect.Store(true)
	cl.pingEnabled.Store(true)

	go cl.serveHousekeeping()
	return cl, nil
}

// NewClientWithConfigManager creates a client whose configuration comes
// from the config manager, with hot reload of the tunables that apply to
// future connections.
func NewClientWithConfigManager(role string, configManager config.ConfigManager, deps Deps) (*Client, error) {
	if configManager == nil {
		return nil, errors.New("configManager cannot be nil")
	}
	cfg := DefaultClientCfg()
	if err := configManager.LoadConfig("auth_client", cfg); err != nil {
		return nil, fmt.Errorf("failed to load auth_client config: %w", err)
	}
	cl, err := NewClient(role, cfg, deps)
	if err != nil {
		return nil, err
	}
	configManager.AddChangeListener(cl)
	return cl, nil
}

// OnConfigChanged implements the ConfigChangeListener interface. Updated
// tunables apply to connections and transactions created after the
// reload.
func (cl *Client) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "auth_client" {
		return nil
	}
	newCfg, ok := newConfig.(*ClientCfg)
	if !ok {
		return fmt.Errorf("invalid configuration type for auth client")
	}
	*cl.cfg = *newCfg
	log.Info().Str("configName", configName).Msg("auth client configuration updated successfully")
	return nil
}

// GetConfigName implements the ConfigChangeListener interface.
func (cl *Client) GetConfigName() string {
	return "auth_client"
}

// Connect begins a connection attempt. Non-blocking; progress is
// reported through the connected observer and, on permanent failure,
// the terminal-error observer.
func (cl *Client) Connect() error {
	if cl.isShutdown() {
		return ErrShutdown
	}
	go cl.doConnect()
	return nil
}

// IsActive reports whether an active, authenticated connection exists.
func (cl *Client) IsActive() bool {
	return cl.registry.hasActive()
}

// SetAutoReconnect enables or disables automatic reconnection. With it
// disabled, the next disconnect is terminal.
func (cl *Client) SetAutoReconnect(enabled bool) {
	cl.autoReconnect.Store(enabled)
}

// SetPingEnabled enables or disables the keepalive ping activity.
// Staleness detection keeps running either way.
func (cl *Client) SetPingEnabled(enabled bool) {
	cl.pingEnabled.Store(enabled)
}

// SetConnectedHandler registers the observer invoked (on the application
// turn) each time a connection completes its handshake. Last wins.
func (cl *Client) SetConnectedHandler(h func()) {
	cl.observerLock.Lock()
	defer cl.observerLock.Unlock()
	cl.connectedHandler = h
}

// SetTerminalErrorHandler registers the observer invoked (on the
// application turn) when the reconnect policy gives up. Last wins.
func (cl *Client) SetTerminalErrorHandler(h func(Result)) {
	cl.observerLock.Lock()
	defer cl.observerLock.Unlock()
	cl.terminalHandler = h
}

// Disconnect closes the session gracefully: no reconnect follows, and
// in-flight transactions cancel as disconnected.
func (cl *Client) Disconnect() {
	cl.stopReconnectTimer()
	cl.registry.abandonAll()
}

// Drop force-closes the active connection as if the network failed,
// exercising the reconnect policy. No-op without an active connection.
func (cl *Client) Drop() {
	if c := cl.registry.acquireActive(); c != nil {
		c.close()
	}
}

// Shutdown stops the client permanently: every pending transaction
// across every connection completes with a shutdown result, no further
// reconnects are issued, and subsequent requests fail with ErrShutdown.
// Queued callbacks remain deliverable; the application should call
// Update once more to drain them.
func (cl *Client) Shutdown() {
	if cl.shutdownFlag.Swap(true) {
		return
	}
	cl.stopOnce.Do(func() { close(cl.housekeepStop) })
	cl.stopReconnectTimer()
	cl.registry.abandonAll()
	cl.cancelAllTrans(ResultShutdown)
	log.Info().Str("role", cl.registry.Role()).Msg("auth client shut down")
}

func (cl *Client) isShutdown() bool {
	return cl.shutdownFlag.Load()
}

// doConnect resolves addresses and dials them in order until one socket
// opens. Runs on its own goroutine.
func (cl *Client) doConnect() {
	if cl.isShutdown() {
		return
	}

	addrs, err := cl.resolver.Resolve()
	if err != nil || len(addrs) == 0 {
		log.Warn().Err(err).Msg("address resolution failed")
		cl.onConnectFailed()
		return
	}

	for _, addr := range addrs {
		if cl.isShutdown() {
			return
		}
		c := newConn(cl, cl.connSeqCounter.Add(1), addr)
		cl.registry.link(c)
		cl.reconnectLock.Lock()
		cl.lastAddr = addr
		cl.reconnectLock.Unlock()

		if err := c.dial(context.Background()); err != nil {
			c.slog.Warn().Str("addr", addr).Err(err).Msg("dial failed")
			cl.registry.unlink(c)
			metrics.IncrCounterWithDimGroup("auth", "dial_fail_total", 1, map[string]string{"role": cl.registry.Role()})
			continue
		}
		// Socket is up; the register reply drives promotion from here.
		return
	}
	cl.onConnectFailed()
}

// onConnRegistered completes the handshake on the dispatch path.
func (cl *Client) onConnRegistered(c *conn, challenge uint32) {
	if !cl.registry.promote(c) {
		// Superseded while the handshake was in flight.
		c.close()
		return
	}
	c.onRegistered(challenge)
	cl.disconnectStartMS.Store(0)
	metrics.IncrCounterWithDimGroup("auth", "conn_active_total", 1, map[string]string{"role": cl.registry.Role()})
	c.slog.Info().Str("addr", c.addr).Msg("conn active")

	cl.observerLock.Lock()
	h := cl.connectedHandler
	cl.observerLock.Unlock()
	if h != nil {
		cl.enqueuePost(h)
	}
}

// onConnClosed runs whenever a socket is gone, for any reason. The
// connection's transactions cancel here; whether a reconnect follows is
// the reconnect policy's call.
func (cl *Client) onConnClosed(c *conn, err error) {
	cl.registry.unlink(c)
	cl.cancelConnTrans(c.seq, ResultDisconnected)

	if err != nil {
		c.slog.Warn().Str("addr", c.addr).Err(err).Msg("conn closed")
	} else {
		c.slog.Info().Str("addr", c.addr).Msg("conn closed")
	}

	if c.isAbandoned() || cl.isShutdown() {
		return
	}
	cl.maybeReconnect(c.hasToken)
}

func (cl *Client) onConnectFailed() {
	if cl.isShutdown() {
		return
	}
	cl.maybeReconnect(cl.hasStoredToken())
}

// maybeReconnect applies the reconnect policy: give up permanently when
// auto-reconnect is off or the connectivity episode has lasted past the
// disconnect ceiling; otherwise schedule the next attempt, quickly for a
// resumable session and slowly for one that never finished a handshake.
func (cl *Client) maybeReconnect(resumable bool) {
	now := time.Now().UnixMilli()
	start := cl.disconnectStartMS.Load()
	if start == 0 {
		cl.disconnectStartMS.CompareAndSwap(0, now)
		start = cl.disconnectStartMS.Load()
	}

	if !cl.autoReconnect.Load() || now-start >= int64(cl.cfg.DisconnectTimeoutMS) {
		cl.giveUp()
		return
	}

	delay := cl.cfg.slowReconnectDelay()
	if resumable {
		delay = cl.cfg.fastReconnectDelay()
	}
	metrics.IncrCounterWithDimGroup("auth", "reconnect_scheduled_total", 1,
		map[string]string{"path": map[bool]string{true: "fast", false: "slow"}[resumable]})

	cl.reconnectLock.Lock()
	defer cl.reconnectLock.Unlock()
	if cl.reconnectTimer != nil {
		// An attempt is already scheduled.
		return
	}
	cl.reconnectTimer = time.AfterFunc(delay, func() {
		cl.reconnectLock.Lock()
		cl.reconnectTimer = nil
		cl.reconnectLock.Unlock()
		cl.doConnect()
	})
}

// giveUp surfaces the terminal failure exactly once per connectivity
// episode: every waiting transaction cancels, and the terminal observer
// fires on the application turn.
func (cl *Client) giveUp() {
	cl.disconnectStartMS.Store(0)
	cl.cancelAllTrans(ResultTransportError)
	metrics.IncrCounterWithDimGroup("auth", "reconnect_giveup_total", 1, map[string]string{"role": cl.registry.Role()})
	log.Error().Str("role", cl.registry.Role()).Msg("reconnect policy exhausted, giving up")

	cl.observerLock.Lock()
	h := cl.terminalHandler
	cl.observerLock.Unlock()
	if h != nil {
		cl.enqueuePost(func() { h(ResultTransportError) })
	}
}

func (cl *Client) stopReconnectTimer() {
	cl.reconnectLock.Lock()
	defer cl.reconnectLock.Unlock()
	if cl.reconnectTimer != nil {
		cl.reconnectTimer.Stop()
		cl.reconnectTimer = nil
	}
}

func (cl *Client) hasStoredToken() bool {
	cl.reconnectLock.Lock()
	addr := cl.lastAddr
	cl.reconnectLock.Unlock()
	if cl.tokens == nil || addr == "" {
		return false
	}
	_, ok := cl.tokens.Get(addr)
	return ok
}

// storeToken persists the resumption token the server issued for the
// active connection's address.
func (cl *Client) storeToken(tok [wire.TokenSize]byte) {
	if cl.tokens == nil {
		return
	}
	c := cl.registry.acquireActive()
	if c == nil {
		return
	}
	c.token = tok
	c.hasToken = true
	if err := cl.tokens.Put(c.addr, tok); err != nil {
		c.slog.Warn().Err(err).Msg("resumption token persist failed")
	}
}

// serveHousekeeping drives the transaction timeout sweep.
func (cl *Client) serveHousekeeping() {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-cl.housekeepStop:
			return
		case now := <-ticker.C:
			cl.sweepTimeouts(now)
		}
	}
}
