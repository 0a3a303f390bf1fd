package auth

import (
	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// PlayerCreateCallback receives the new player record.
type PlayerCreateCallback func(res Result, serverCode uint32, player PlayerInfo)

// PlayerCreate creates a player on the logged-in account.
func (cl *Client) PlayerCreate(playerName, avatarShape, inviteCode string, cb PlayerCreateCallback) error {
	var code uint32
	var player PlayerInfo

	t := cl.newTrans("player_create", wire.Cli2Auth_PlayerCreateRequest,
		func(w *codec.Writer) {
			w.String(playerName).
				String(avatarShape).
				String(inviteCode)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			player.PlayerID = r.Uint32()
			player.PlayerName = r.String()
			player.AvatarShape = r.String()
			player.Explorer = r.Uint32()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, player)
		})
	return cl.sendTrans(t)
}

// PlayerDelete removes a player from the logged-in account.
func (cl *Client) PlayerDelete(playerID uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("player_delete", wire.Cli2Auth_PlayerDeleteRequest,
		func(w *codec.Writer) {
			w.Uint32(playerID)
		}, cb)
}

// ChangePlayerName renames a player.
func (cl *Client) ChangePlayerName(playerID uint32, newName string, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("player_rename", wire.Cli2Auth_ChangePlayerNameRequest,
		func(w *codec.Writer) {
			w.Uint32(playerID).String(newName)
		}, cb)
}

// SetPlayerBanStatus bans or unbans a player. Operator-level request.
func (cl *Client) SetPlayerBanStatus(playerID uint32, banned bool, cb AccountCallback) error {
	var bannedFlag uint32
	if banned {
		bannedFlag = 1
	}
	return cl.sendSimpleAccountTrans("player_ban", wire.Cli2Auth_SetPlayerBanStatusRequest,
		func(w *codec.Writer) {
			w.Uint32(playerID).Uint32(bannedFlag)
		}, cb)
}

// KickPlayer requests the server drop a player's session. One-way: the
// server sends no reply, the kicked client sees the forced-disconnect
// push instead.
func (cl *Client) KickPlayer(playerID uint32) error {
	if cl.isShutdown() {
		return ErrShutdown
	}
	c := cl.registry.acquireActive()
	if c == nil {
		return ErrNotConnected
	}
	w := codec.NewWriter(8)
	w.Uint32(keepaliveTransID).Uint32(playerID)
	return c.send(wire.Cli2Auth_KickPlayer, w.Bytes())
}

// SendFriendInvite mails an invite bound to a one-time key.
func (cl *Client) SendFriendInvite(inviteKey [16]byte, email, toName string, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("friend_invite", wire.Cli2Auth_SendFriendInviteRequest,
		func(w *codec.Writer) {
			w.Raw(inviteKey[:]).
				String(email).
				String(toName)
		}, cb)
}

// AgeInfo describes one public age instance.
type AgeInfo struct {
	InstanceID    [16]byte
	InstanceName  string
	UserName      string
	Description   string
	SequenceNum   uint32
	Language      uint32
	PopulationCur uint32
	PopulationCap uint32
}

// PublicAgeListCallback receives the public instances of one age file.
type PublicAgeListCallback func(res Result, ages []AgeInfo)

// GetPublicAgeList lists the public instances of an age.
func (cl *Client) GetPublicAgeList(ageFilename string, cb PublicAgeListCallback) error {
	var ages []AgeInfo

	t := cl.newTrans("public_age_list", wire.Cli2Auth_GetPublicAgeList,
		func(w *codec.Writer) {
			w.String(ageFilename)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code := r.Uint32()
			count := r.Uint32()
			for i := uint32(0); i < count && r.Err() == nil; i++ {
				var a AgeInfo
				copy(a.InstanceID[:], r.Raw(16))
				a.InstanceName = r.String()
				a.UserName = r.String()
				a.Description = r.String()
				a.SequenceNum = r.Uint32()
				a.Language = r.Uint32()
				a.PopulationCur = r.Uint32()
				a.PopulationCap = r.Uint32()
				ages = append(ages, a)
			}
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, ages)
		})
	return cl.sendTrans(t)
}

// AgeCallback receives the routing handles for a started age instance.
type AgeCallback func(res Result, serverCode uint32, ageMcpID uint32, ageVaultID uint32, gameSrvAddr string)

// AgeRequest asks the server to start (or locate) an age instance and
// return its game-server routing handles. Timeout-exempt: instantiating
// an age can take arbitrarily long while the server spins up the
// instance, so only a reply, disconnect, or shutdown completes it.
func (cl *Client) AgeRequest(ageFilename string, instanceID [16]byte, cb AgeCallback) error {
	var code, mcpID, vaultID uint32
	var gameSrvAddr string

	t := cl.newTrans("age_request", wire.Cli2Auth_AgeRequest,
		func(w *codec.Writer) {
			w.String(ageFilename).Raw(instanceID[:])
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			mcpID = r.Uint32()
			vaultID = r.Uint32()
			gameSrvAddr = r.String()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, mcpID, vaultID, gameSrvAddr)
		})
	t.timeoutExempt = true
	return cl.sendTrans(t)
}
