package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

func TestDispatchVaultPushes(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	var changedNode uint32
	var changedRev [16]byte
	cl.SetVaultNodeChangedHandler(func(nodeID uint32, revisionID [16]byte) {
		changedNode = nodeID
		changedRev = revisionID
	})

	var added [3]uint32
	cl.SetVaultNodeAddedHandler(func(parentID, childID, ownerID uint32) {
		added = [3]uint32{parentID, childID, ownerID}
	})

	var removed [2]uint32
	cl.SetVaultNodeRemovedHandler(func(parentID, childID uint32) {
		removed = [2]uint32{parentID, childID}
	})

	var deleted uint32
	cl.SetVaultNodeDeletedHandler(func(nodeID uint32) {
		deleted = nodeID
	})

	rev := [16]byte{0xA, 0xB, 0xC}
	changed := codec.NewWriter(20)
	changed.Uint32(77).Raw(rev[:])
	cl.dispatch(c, wire.Auth2Cli_VaultNodeChanged, changed.Bytes())

	addedBody := codec.NewWriter(12)
	addedBody.Uint32(1).Uint32(2).Uint32(3)
	cl.dispatch(c, wire.Auth2Cli_VaultNodeAdded, addedBody.Bytes())

	removedBody := codec.NewWriter(8)
	removedBody.Uint32(4).Uint32(5)
	cl.dispatch(c, wire.Auth2Cli_VaultNodeRemoved, removedBody.Bytes())

	deletedBody := codec.NewWriter(4)
	deletedBody.Uint32(6)
	cl.dispatch(c, wire.Auth2Cli_VaultNodeDeleted, deletedBody.Bytes())

	// Nothing reaches a handler before the application turn.
	assert.Zero(t, changedNode)

	cl.Update()
	assert.Equal(t, uint32(77), changedNode)
	assert.Equal(t, rev, changedRev)
	assert.Equal(t, [3]uint32{1, 2, 3}, added)
	assert.Equal(t, [2]uint32{4, 5}, removed)
	assert.Equal(t, uint32(6), deleted)
}

func TestPushLastRegistrationWins(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	firstFired := false
	cl.SetNewBuildHandler(func(buildID uint32) { firstFired = true })

	var got uint32
	cl.SetNewBuildHandler(func(buildID uint32) { got = buildID })

	body := codec.NewWriter(4)
	body.Uint32(913)
	cl.dispatch(c, wire.Auth2Cli_NotifyNewBuild, body.Bytes())
	cl.Update()

	assert.False(t, firstFired)
	assert.Equal(t, uint32(913), got)
}

func TestPushWithoutHandlerIsDropped(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	body := codec.NewWriter(8)
	body.Uint32(1).Buffer([]byte{1, 2})
	cl.dispatch(c, wire.Auth2Cli_PropagateBuffer, body.Bytes())
	cl.Update()
	// No handler registered: the push is discarded without effect.
}

func TestPropagateBufferPush(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	var gotType uint32
	var gotBuf []byte
	cl.SetPropagateBufferHandler(func(bufType uint32, buf []byte) {
		gotType = bufType
		gotBuf = buf
	})

	body := codec.NewWriter(16)
	body.Uint32(42).Buffer([]byte{0xDE, 0xAD})
	cl.dispatch(c, wire.Auth2Cli_PropagateBuffer, body.Bytes())
	cl.Update()

	assert.Equal(t, uint32(42), gotType)
	assert.Equal(t, []byte{0xDE, 0xAD}, gotBuf)
}

func TestDispatchUnknownMessageIgnored(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	cl.dispatch(c, 0xFFFF, []byte{1, 2, 3})
	cl.Update()
	assert.Equal(t, 0, cl.pendingCount())
}

func TestDispatchRateLimit(t *testing.T) {
	cfg := testClientCfg()
	cfg.RecvRateLimit = 1
	cfg.RecvRateBurst = 1
	cl, err := NewClient("auth", cfg, Deps{Resolver: mustStaticResolver(t, "127.0.0.1:1")})
	require.NoError(t, err)
	t.Cleanup(cl.Shutdown)
	c, _ := activateStubConn(t, cl, 1)

	count := 0
	cl.SetNewBuildHandler(func(buildID uint32) { count++ })

	body := codec.NewWriter(4)
	body.Uint32(1)
	// Burst of one: the first frame passes, the flood is shed.
	for i := 0; i < 10; i++ {
		cl.dispatch(c, wire.Auth2Cli_NotifyNewBuild, body.Bytes())
	}
	cl.Update()

	assert.Equal(t, 1, count)
}

func TestDuplicateRegisterReplyIgnored(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	// A stray second register reply must not tear down the healthy
	// active connection.
	body := codec.NewWriter(8)
	body.Uint32(0).Uint32(0xC0FFEE)
	cl.dispatch(c, wire.Auth2Cli_ClientRegisterReply, body.Bytes())

	assert.Equal(t, StateActive, c.getState())
	assert.False(t, c.isAbandoned())
	assert.Same(t, c, cl.registry.acquireActive())
}

func TestKeepalivePingReplyNotRoutedToTrans(t *testing.T) {
	cl := newTestClient(t)
	c, _ := activateStubConn(t, cl, 1)

	fired := false
	require.NoError(t, cl.Ping(nil, func(res Result, pingAt uint64, payload []byte) {
		fired = true
	}))

	// A keepalive pong carries the reserved id and must not complete the
	// ping transaction.
	pong := codec.NewWriter(16)
	pong.Uint32(keepaliveTransID).Uint64(12345).Buffer(nil)
	cl.dispatch(c, wire.Auth2Cli_PingReply, pong.Bytes())
	cl.Update()

	assert.False(t, fired)
	assert.Equal(t, 1, cl.pendingCount())
}
