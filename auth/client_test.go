package auth

import (
	"io"
	gonet "net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/net"
	"github.com/lcx/authlink/token"
	"github.com/lcx/authlink/wire"
)

func testClientCfg() *ClientCfg {
	return &ClientCfg{
		BuildID:               912,
		PingIntervalMS:        50,
		FastReconnectDelayMS:  20,
		SlowReconnectDelayMS:  250,
		DisconnectTimeoutMS:   5000,
		StalenessCheckEnabled: true,
		StalenessMultiplier:   10,
		TransTimeoutMS:        2000,
	}
}

func testTransportCfg() *net.TransportCfg {
	return &net.TransportCfg{
		ConnType:        "tcp",
		DialTimeoutMS:   1000,
		IdleTimeoutMS:   5000,
		SendChannelSize: 32,
		MaxBufferSize:   64 * 1024,
	}
}

func mustStaticResolver(t *testing.T, addrs ...string) net.Resolver {
	t.Helper()
	r, err := net.NewStaticResolver(addrs)
	require.NoError(t, err)
	return r
}

func newTestTokenStore(t *testing.T) *token.Store {
	t.Helper()
	s, err := token.NewStore(&token.StoreCfg{
		Path:  filepath.Join(t.TempDir(), "tokens.db"),
		TTLMS: 60000,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// pumpUpdates drains the client's completion queue continuously, playing
// the application loop's part.
func pumpUpdates(t *testing.T, cl *Client) {
	t.Helper()
	stop := make(chan struct{})
	t.Cleanup(func() { close(stop) })
	go func() {
		ticker := time.NewTicker(2 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				cl.Update()
			}
		}
	}()
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

// serverSession is one accepted client on the fake server.
type serverSession struct {
	conn gonet.Conn
	hdr  *wire.ConnectHeader

	sendLock sync.Mutex
}

func (s *serverSession) send(msgID uint32, body []byte) {
	s.sendLock.Lock()
	defer s.sendLock.Unlock()
	_, _ = s.conn.Write(wire.EncodeFrame(msgID, body))
}

func (s *serverSession) drop() {
	_ = s.conn.Close()
}

// fakeAuthServer speaks just enough of the server side of the protocol
// for the scenarios: it answers the register handshake and keepalive
// pings itself, everything else goes to per-message handlers the test
// installs.
type fakeAuthServer struct {
	t        *testing.T
	listener gonet.Listener

	lock     sync.Mutex
	handlers map[uint32]func(s *serverSession, body []byte)
	sessions chan *serverSession

	challenge uint32
}

func startFakeAuthServer(t *testing.T) *fakeAuthServer {
	t.Helper()
	listener, err := gonet.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := &fakeAuthServer{
		t:         t,
		listener:  listener,
		handlers:  make(map[uint32]func(*serverSession, []byte)),
		sessions:  make(chan *serverSession, 8),
		challenge: 0xC0FFEE,
	}
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go srv.serve(conn)
		}
	}()
	return srv
}

func (srv *fakeAuthServer) addr() string {
	return srv.listener.Addr().String()
}

// on installs a handler for an inbound message kind.
func (srv *fakeAuthServer) on(msgID uint32, h func(s *serverSession, body []byte)) {
	srv.lock.Lock()
	defer srv.lock.Unlock()
	srv.handlers[msgID] = h
}

func (srv *fakeAuthServer) waitSession(t *testing.T) *serverSession {
	t.Helper()
	select {
	case s := <-srv.sessions:
		return s
	case <-time.After(3 * time.Second):
		t.Fatal("no client session arrived")
		return nil
	}
}

func (srv *fakeAuthServer) serve(conn gonet.Conn) {
	hdrBuf := make([]byte, wire.ConnectHeaderSize)
	if _, err := io.ReadFull(conn, hdrBuf); err != nil {
		_ = conn.Close()
		return
	}
	hdr, err := wire.DecodeConnectHeader(hdrBuf)
	if err != nil {
		_ = conn.Close()
		return
	}

	session := &serverSession{conn: conn, hdr: hdr}
	srv.sessions <- session

	headBuf := make([]byte, wire.FRAME_HEAD_SIZE)
	for {
		if _, err := io.ReadFull(conn, headBuf); err != nil {
			_ = conn.Close()
			return
		}
		frameHdr, err := wire.DecodeFrameHead(headBuf)
		if err != nil {
			_ = conn.Close()
			return
		}
		body := make([]byte, frameHdr.BodySize)
		if _, err := io.ReadFull(conn, body); err != nil {
			_ = conn.Close()
			return
		}

		srv.lock.Lock()
		h := srv.handlers[frameHdr.MsgID]
		srv.lock.Unlock()
		if h != nil {
			h(session, body)
			continue
		}

		switch frameHdr.MsgID {
		case wire.Cli2Auth_ClientRegisterRequest:
			reply := codec.NewWriter(8)
			reply.Uint32(keepaliveTransID).Uint32(srv.challenge)
			session.send(wire.Auth2Cli_ClientRegisterReply, reply.Bytes())
		case wire.Cli2Auth_PingRequest:
			// Echo the body back; it already starts with the transID.
			session.send(wire.Auth2Cli_PingReply, body)
		}
	}
}

func newConnectedClient(t *testing.T, srv *fakeAuthServer, store *token.Store) *Client {
	t.Helper()
	cl, err := NewClient("auth", testClientCfg(), Deps{
		Resolver:     mustStaticResolver(t, srv.addr()),
		TokenStore:   store,
		TransportCfg: testTransportCfg(),
	})
	require.NoError(t, err)
	t.Cleanup(cl.Shutdown)
	pumpUpdates(t, cl)

	require.NoError(t, cl.Connect())
	waitUntil(t, 3*time.Second, cl.IsActive, "client never became active")
	return cl
}

func TestClientConnectBecomesActive(t *testing.T) {
	srv := startFakeAuthServer(t)

	connected := make(chan struct{}, 1)
	cl, err := NewClient("auth", testClientCfg(), Deps{
		Resolver:     mustStaticResolver(t, srv.addr()),
		TransportCfg: testTransportCfg(),
	})
	require.NoError(t, err)
	t.Cleanup(cl.Shutdown)
	cl.SetConnectedHandler(func() { connected <- struct{}{} })
	pumpUpdates(t, cl)

	assert.False(t, cl.IsActive())
	require.NoError(t, cl.Connect())

	session := srv.waitSession(t)
	assert.Equal(t, uint32(912), session.hdr.BuildID)

	waitUntil(t, 3*time.Second, cl.IsActive, "client never became active")
	select {
	case <-connected:
	case <-time.After(time.Second):
		t.Fatal("connected observer never fired")
	}
}

func TestLoginHappyPath(t *testing.T) {
	srv := startFakeAuthServer(t)
	store := newTestTokenStore(t)

	issuedToken := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	srv.on(wire.Cli2Auth_AcctLoginRequest, func(s *serverSession, body []byte) {
		r := codec.NewReader(body)
		transID := r.Uint32()

		// Two player fragments, then the final reply.
		for i, name := range []string{"explorer-one", "explorer-two"} {
			frag := codec.NewWriter(64)
			frag.Uint32(transID).
				Uint32(uint32(100 + i)).
				String(name).
				String("female").
				Uint32(1)
			s.send(wire.Auth2Cli_AcctPlayerInfo, frag.Bytes())
		}

		final := codec.NewWriter(64)
		final.Uint32(transID).
			Uint32(0). // success
			Raw(make([]byte, 16)).
			Uint32(0).
			Uint32(1)
		final.Raw(issuedToken[:])
		s.send(wire.Auth2Cli_AcctLoginReply, final.Bytes())
	})

	cl := newConnectedClient(t, srv, store)

	done := make(chan *LoginInfo, 1)
	require.NoError(t, cl.Login("alice", "secret", "", "linux", func(res Result, info *LoginInfo) {
		require.Equal(t, ResultSuccess, res)
		done <- info
	}))

	select {
	case info := <-done:
		require.NotNil(t, info)
		require.Len(t, info.Players, 2)
		assert.Equal(t, uint32(100), info.Players[0].PlayerID)
		assert.Equal(t, "explorer-two", info.Players[1].PlayerName)
		assert.Equal(t, uint32(1), info.BillingType)
	case <-time.After(3 * time.Second):
		t.Fatal("login never completed")
	}

	// The issued resumption token was persisted for this server.
	waitUntil(t, time.Second, func() bool {
		tok, ok := store.Get(srv.addr())
		return ok && tok == issuedToken
	}, "resumption token was not persisted")
}

func TestLoginDuringReconnect(t *testing.T) {
	srv := startFakeAuthServer(t)
	store := newTestTokenStore(t)

	// First login attempt: the connection dies before any reply.
	firstLogin := make(chan struct{}, 1)
	srv.on(wire.Cli2Auth_AcctLoginRequest, func(s *serverSession, body []byte) {
		firstLogin <- struct{}{}
		s.drop()
	})

	cl := newConnectedClient(t, srv, store)

	res1 := make(chan Result, 1)
	require.NoError(t, cl.Login("alice", "secret", "", "linux", func(res Result, info *LoginInfo) {
		res1 <- res
	}))

	select {
	case res := <-res1:
		assert.Equal(t, ResultDisconnected, res)
	case <-time.After(3 * time.Second):
		t.Fatal("first login never completed")
	}

	// The client reconnects on its own; once active again, a fresh login
	// succeeds.
	srv.on(wire.Cli2Auth_AcctLoginRequest, func(s *serverSession, body []byte) {
		r := codec.NewReader(body)
		transID := r.Uint32()
		final := codec.NewWriter(64)
		final.Uint32(transID).
			Uint32(0).
			Raw(make([]byte, 16)).
			Uint32(0).
			Uint32(0).
			Raw(make([]byte, 16))
		s.send(wire.Auth2Cli_AcctLoginReply, final.Bytes())
	})

	waitUntil(t, 5*time.Second, cl.IsActive, "client never reconnected")

	res2 := make(chan Result, 1)
	require.NoError(t, cl.Login("alice", "secret", "", "linux", func(res Result, info *LoginInfo) {
		res2 <- res
	}))

	select {
	case res := <-res2:
		assert.Equal(t, ResultSuccess, res)
	case <-time.After(3 * time.Second):
		t.Fatal("second login never completed")
	}
}

func TestReconnectDelayAsymmetry(t *testing.T) {
	// A fresh server per measurement keeps the session streams apart.
	measure := func(withToken bool) time.Duration {
		srv := startFakeAuthServer(t)
		var store *token.Store
		if withToken {
			store = newTestTokenStore(t)
			require.NoError(t, store.Put(srv.addr(), [16]byte{9, 9, 9}))
		}
		cl := newConnectedClient(t, srv, store)
		defer cl.Shutdown()

		session := srv.waitSession(t)
		dropAt := time.Now()
		session.drop()

		next := srv.waitSession(t)
		elapsed := time.Since(dropAt)
		next.drop()
		return elapsed
	}

	// Fast path: a resumption token exists for the server address.
	fast := measure(true)

	// Slow path: no token store at all.
	slow := measure(false)

	assert.Less(t, fast, slow,
		"tokened reconnect (%v) should be scheduled sooner than tokenless (%v)", fast, slow)
	assert.GreaterOrEqual(t, slow, 200*time.Millisecond)
}

func TestKickedOffIsTerminal(t *testing.T) {
	srv := startFakeAuthServer(t)
	cl := newConnectedClient(t, srv, nil)
	session := srv.waitSession(t)

	kicked := make(chan uint32, 1)
	cl.SetKickedHandler(func(reason uint32) { kicked <- reason })

	inFlight := make(chan Result, 1)
	require.NoError(t, cl.AccountExists("alice", func(res Result, exists bool) {
		inFlight <- res
	}))

	push := codec.NewWriter(4)
	push.Uint32(5)
	session.send(wire.Auth2Cli_KickedOff, push.Bytes())

	select {
	case reason := <-kicked:
		assert.Equal(t, uint32(5), reason)
	case <-time.After(3 * time.Second):
		t.Fatal("kick handler never fired")
	}

	select {
	case res := <-inFlight:
		assert.Equal(t, ResultDisconnected, res)
	case <-time.After(3 * time.Second):
		t.Fatal("in-flight transaction never canceled")
	}

	// A kick bypasses the reconnect policy entirely.
	time.Sleep(600 * time.Millisecond)
	assert.False(t, cl.IsActive())
	select {
	case s := <-srv.sessions:
		s.drop()
		t.Fatal("client reconnected after kick")
	default:
	}
}

func TestDisconnectIsGraceful(t *testing.T) {
	srv := startFakeAuthServer(t)
	cl := newConnectedClient(t, srv, nil)

	cl.Disconnect()
	waitUntil(t, time.Second, func() bool { return !cl.IsActive() }, "still active after Disconnect")

	// No reconnect follows a graceful disconnect.
	time.Sleep(600 * time.Millisecond)
	assert.Equal(t, 1, len(srv.sessions)) // only the original session
}

func TestAutoReconnectDisabledIsTerminal(t *testing.T) {
	srv := startFakeAuthServer(t)
	cl := newConnectedClient(t, srv, nil)
	session := srv.waitSession(t)

	terminal := make(chan Result, 1)
	cl.SetTerminalErrorHandler(func(res Result) { terminal <- res })
	cl.SetAutoReconnect(false)

	session.drop()

	select {
	case res := <-terminal:
		assert.Equal(t, ResultTransportError, res)
	case <-time.After(3 * time.Second):
		t.Fatal("terminal observer never fired")
	}
	assert.False(t, cl.IsActive())
}
