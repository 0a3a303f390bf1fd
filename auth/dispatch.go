package auth

import (
	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/metrics"
	"github.com/lcx/authlink/wire"
)

// dispatchFunc consumes one decoded inbound message. Runs on the
// connection's receive goroutine.
type dispatchFunc func(cl *Client, c *conn, msgID uint32, r *codec.Reader)

// The dispatch table maps inbound message ids to their consumers. Reply
// kinds all route by correlation id through recvReply; push kinds build a
// notification record and queue it for the application turn. The table is
// fixed at init: inbound routing is part of the wire contract.
var dispatchTable = map[uint32]dispatchFunc{
	wire.Auth2Cli_ClientRegisterReply: dispatchRegisterReply,
	wire.Auth2Cli_PingReply:           dispatchPingReply,

	wire.Auth2Cli_VaultNodeChanged: dispatchVaultNodeChanged,
	wire.Auth2Cli_VaultNodeAdded:   dispatchVaultNodeAdded,
	wire.Auth2Cli_VaultNodeRemoved: dispatchVaultNodeRemoved,
	wire.Auth2Cli_VaultNodeDeleted: dispatchVaultNodeDeleted,
	wire.Auth2Cli_NotifyNewBuild:   dispatchNewBuild,
	wire.Auth2Cli_PropagateBuffer:  dispatchPropagateBuffer,
	wire.Auth2Cli_KickedOff:        dispatchKickedOff,
}

// replyMsgIDs lists every inbound kind that is a reply to a pending
// transaction: correlation id at body offset 0, routed by recvReply.
var replyMsgIDs = []uint32{
	wire.Auth2Cli_AcctExistsReply,
	wire.Auth2Cli_AcctLoginReply,
	wire.Auth2Cli_AcctPlayerInfo,
	wire.Auth2Cli_AcctSetPlayerReply,
	wire.Auth2Cli_AcctCreateReply,
	wire.Auth2Cli_AcctCreateFromKeyReply,
	wire.Auth2Cli_AcctChangePasswordReply,
	wire.Auth2Cli_AcctSetRolesReply,
	wire.Auth2Cli_AcctSetBillingTypeReply,
	wire.Auth2Cli_AcctActivateReply,
	wire.Auth2Cli_PlayerCreateReply,
	wire.Auth2Cli_PlayerDeleteReply,
	wire.Auth2Cli_UpgradeVisitorReply,
	wire.Auth2Cli_SetPlayerBanStatusReply,
	wire.Auth2Cli_ChangePlayerNameReply,
	wire.Auth2Cli_SendFriendInviteReply,
	wire.Auth2Cli_VaultNodeCreated,
	wire.Auth2Cli_VaultNodeFetched,
	wire.Auth2Cli_VaultNodeSaved,
	wire.Auth2Cli_VaultNodeAdded2,
	wire.Auth2Cli_VaultNodeRemoved2,
	wire.Auth2Cli_VaultNodeRefsFetched,
	wire.Auth2Cli_VaultNodeFindReply,
	wire.Auth2Cli_VaultInitAgeReply,
	wire.Auth2Cli_AgeReply,
	wire.Auth2Cli_FileListReply,
	wire.Auth2Cli_FileDownloadChunk,
	wire.Auth2Cli_PublicAgeList,
	wire.Auth2Cli_ScoreCreateReply,
	wire.Auth2Cli_ScoreDeleteReply,
	wire.Auth2Cli_ScoreGetScoresReply,
	wire.Auth2Cli_ScoreAddPointsReply,
	wire.Auth2Cli_ScoreTransferPointsReply,
	wire.Auth2Cli_ScoreSetPointsReply,
	wire.Auth2Cli_ScoreGetRanksReply,
}

func init() {
	for _, msgID := range replyMsgIDs {
		dispatchTable[msgID] = dispatchReply
	}
}

// dispatch routes one inbound frame. Unknown message ids and frames over
// the rate limit are dropped, counted but otherwise silent.
func (cl *Client) dispatch(c *conn, msgID uint32, body []byte) {
	if cl.recvLimiter != nil && !cl.recvLimiter.Allow() {
		metrics.IncrCounterWithGroup("auth", "recv_rate_limited_total", 1)
		return
	}

	handler, ok := dispatchTable[msgID]
	if !ok {
		metrics.IncrCounterWithDimGroup("auth", "recv_unknown_msg_total", 1,
			map[string]string{"msg": wire.Auth2CliName(msgID)})
		c.slog.Warn().Uint32("msgID", msgID).Msg("unknown inbound message")
		return
	}

	r := codec.NewReader(body)
	handler(cl, c, msgID, r)
}

func dispatchReply(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	transID := r.Uint32()
	if r.Err() != nil {
		metrics.IncrCounterWithGroup("auth", "recv_malformed_total", 1)
		return
	}
	cl.recvReply(msgID, transID, r)
}

func dispatchRegisterReply(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	if c.getState() == StateActive {
		// Duplicate register reply; the handshake already completed and
		// the conn must not be torn down over it.
		c.slog.Warn().Msg("duplicate register reply ignored")
		return
	}
	_ = r.Uint32() // transID slot, unused by the handshake
	challenge := r.Uint32()
	if r.Err() != nil {
		c.slog.Error().Msg("malformed register reply, dropping conn")
		c.close()
		return
	}
	cl.onConnRegistered(c, challenge)
}

func dispatchPingReply(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	transID := r.Uint32()
	if r.Err() != nil {
		return
	}
	if transID == keepaliveTransID {
		// Keepalive pong: lastHeard was already updated on frame receipt.
		metrics.IncrCounterWithGroup("auth", "ping_reply_total", 1)
		return
	}
	cl.recvReply(wire.Auth2Cli_PingReply, transID, r)
}

func dispatchVaultNodeChanged(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	nodeID := r.Uint32()
	var revisionID [16]byte
	copy(revisionID[:], r.Raw(16))
	if r.Err() != nil {
		metrics.IncrCounterWithGroup("auth", "recv_malformed_total", 1)
		return
	}
	cl.pushes.lock.RLock()
	h := cl.pushes.vaultNodeChanged
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(nodeID, revisionID) })
	}
}

func dispatchVaultNodeAdded(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	parentID := r.Uint32()
	childID := r.Uint32()
	ownerID := r.Uint32()
	if r.Err() != nil {
		metrics.IncrCounterWithGroup("auth", "recv_malformed_total", 1)
		return
	}
	cl.pushes.lock.RLock()
	h := cl.pushes.vaultNodeAdded
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(parentID, childID, ownerID) })
	}
}

func dispatchVaultNodeRemoved(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	parentID := r.Uint32()
	childID := r.Uint32()
	if r.Err() != nil {
		metrics.IncrCounterWithGroup("auth", "recv_malformed_total", 1)
		return
	}
	cl.pushes.lock.RLock()
	h := cl.pushes.vaultNodeRemoved
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(parentID, childID) })
	}
}

func dispatchVaultNodeDeleted(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	nodeID := r.Uint32()
	if r.Err() != nil {
		metrics.IncrCounterWithGroup("auth", "recv_malformed_total", 1)
		return
	}
	cl.pushes.lock.RLock()
	h := cl.pushes.vaultNodeDeleted
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(nodeID) })
	}
}

func dispatchNewBuild(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	buildID := r.Uint32()
	if r.Err() != nil {
		return
	}
	cl.pushes.lock.RLock()
	h := cl.pushes.newBuild
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(buildID) })
	}
}

func dispatchPropagateBuffer(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	bufType := r.Uint32()
	buf := r.Buffer()
	if r.Err() != nil {
		metrics.IncrCounterWithGroup("auth", "recv_malformed_total", 1)
		return
	}
	cl.pushes.lock.RLock()
	h := cl.pushes.propagateBuffer
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(bufType, buf) })
	}
}

// dispatchKickedOff handles the server-initiated kick: a terminal error,
// not a disconnect. The connection is abandoned so its closure schedules
// no reconnect, and in-flight transactions cancel as disconnected.
func dispatchKickedOff(cl *Client, c *conn, msgID uint32, r *codec.Reader) {
	reason := r.Uint32()
	if r.Err() != nil {
		reason = 0
	}
	c.slog.Warn().Uint32("reason", reason).Msg("kicked by server")
	metrics.IncrCounterWithDimGroup("auth", "kicked_total", 1, map[string]string{"role": cl.registry.Role()})

	cl.pushes.lock.RLock()
	h := cl.pushes.kicked
	cl.pushes.lock.RUnlock()
	if h != nil {
		cl.enqueuePost(func() { h(reason) })
	}

	cl.registry.unlink(c)
	c.abandon()
	cl.cancelConnTrans(c.seq, ResultDisconnected)
}
