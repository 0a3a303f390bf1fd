package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"

	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// PlayerInfo is one player record attached to an account.
type PlayerInfo struct {
	PlayerID    uint32
	PlayerName  string
	AvatarShape string
	Explorer    uint32
}

// LoginInfo is the aggregate login outcome: the final reply's account
// fields plus every player-info fragment that arrived before it.
type LoginInfo struct {
	AccountID    [16]byte
	AccountFlags uint32
	BillingType  uint32
	Players      []PlayerInfo
	ServerCode   uint32
}

// credentialHash hashes a password the way the server stores it.
func credentialHash(account, password string) [sha256.Size]byte {
	h := sha256.New()
	h.Write([]byte(account))
	h.Write([]byte(password))
	var out [sha256.Size]byte
	h.Sum(out[:0])
	return out
}

// challengeHash mixes both challenges into the credential hash so the
// password-equivalent never repeats on the wire. A zero server challenge
// (server predates challenge support) falls back to the plain credential
// hash.
func challengeHash(clientChallenge, serverChallenge uint32, credential [sha256.Size]byte) [sha256.Size]byte {
	if serverChallenge == 0 {
		return credential
	}
	var mix [8]byte
	binary.LittleEndian.PutUint32(mix[0:4], clientChallenge)
	binary.LittleEndian.PutUint32(mix[4:8], serverChallenge)

	h := sha256.New()
	h.Write(mix[:])
	h.Write(credential[:])
	var out [sha256.Size]byte
	h.Sum(out[:0])
	return out
}

func randomChallenge() uint32 {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return binary.LittleEndian.Uint32(b[:])
}

// AccountExistsCallback reports whether the account name is taken.
type AccountExistsCallback func(res Result, exists bool)

// AccountExists checks whether an account name is registered.
func (cl *Client) AccountExists(accountName string, cb AccountExistsCallback) error {
	var exists bool

	t := cl.newTrans("acct_exists", wire.Cli2Auth_AcctExistsRequest,
		func(w *codec.Writer) {
			w.String(accountName)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code := r.Uint32()
			exists = r.Byte() != 0
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, exists)
		})
	return cl.sendTrans(t)
}

// LoginCallback receives the aggregated login outcome. info is non-nil
// for success and rejection (ServerCode carries the domain code), nil
// otherwise.
type LoginCallback func(res Result, info *LoginInfo)

// Login authenticates the account on the active connection. Player-info
// fragments accumulate on the transaction until the final reply
// completes it; on success the server-issued resumption token is
// persisted for fast reconnect.
func (cl *Client) Login(accountName, password, authToken, os string, cb LoginCallback) error {
	clientChallenge := randomChallenge()
	var serverChallenge uint32
	if c := cl.registry.acquireActive(); c != nil {
		serverChallenge = c.serverChallenge.Load()
	}
	hash := challengeHash(clientChallenge, serverChallenge, credentialHash(accountName, password))

	info := &LoginInfo{}

	t := cl.newTrans("acct_login", wire.Cli2Auth_AcctLoginRequest,
		func(w *codec.Writer) {
			w.Uint32(clientChallenge).
				String(accountName).
				Raw(hash[:]).
				String(authToken).
				String(os)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			if msgID == wire.Auth2Cli_AcctPlayerInfo {
				p := PlayerInfo{
					PlayerID:    r.Uint32(),
					PlayerName:  r.String(),
					AvatarShape: r.String(),
					Explorer:    r.Uint32(),
				}
				if r.Err() != nil {
					return true, ResultProtocolError
				}
				info.Players = append(info.Players, p)
				return false, ResultSuccess
			}

			code := r.Uint32()
			copy(info.AccountID[:], r.Raw(16))
			info.AccountFlags = r.Uint32()
			info.BillingType = r.Uint32()
			var tok [wire.TokenSize]byte
			copy(tok[:], r.Raw(wire.TokenSize))
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			info.ServerCode = code
			if code == 0 {
				cl.storeToken(tok)
			}
			return true, serverResult(code)
		},
		func(res Result) {
			if res == ResultSuccess || res == ResultRejected {
				cb(res, info)
			} else {
				cb(res, nil)
			}
		})
	return cl.sendTrans(t)
}

// AccountCallback reports an account-management outcome; serverCode
// carries the raw domain code on rejection.
type AccountCallback func(res Result, serverCode uint32)

// AccountCreateCallback additionally carries the new account id.
type AccountCreateCallback func(res Result, serverCode uint32, accountID [16]byte)

// AccountCreate registers a new account.
func (cl *Client) AccountCreate(accountName, password string, accountFlags, billingType uint32, cb AccountCreateCallback) error {
	hash := credentialHash(accountName, password)
	var code uint32
	var accountID [16]byte

	t := cl.newTrans("acct_create", wire.Cli2Auth_AcctCreateRequest,
		func(w *codec.Writer) {
			w.String(accountName).
				Raw(hash[:]).
				Uint32(accountFlags).
				Uint32(billingType)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			copy(accountID[:], r.Raw(16))
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, accountID)
		})
	return cl.sendTrans(t)
}

// AccountCreateFromKey registers a new account bound to an invite key.
func (cl *Client) AccountCreateFromKey(accountName, password string, key [16]byte, billingType uint32, cb AccountCreateCallback) error {
	hash := credentialHash(accountName, password)
	var code uint32
	var accountID [16]byte

	t := cl.newTrans("acct_create_from_key", wire.Cli2Auth_AcctCreateFromKeyRequest,
		func(w *codec.Writer) {
			w.String(accountName).
				Raw(hash[:]).
				Raw(key[:]).
				Uint32(billingType)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			copy(accountID[:], r.Raw(16))
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, accountID)
		})
	return cl.sendTrans(t)
}

// ChangePassword replaces the account credential.
func (cl *Client) ChangePassword(accountName, newPassword string, cb AccountCallback) error {
	hash := credentialHash(accountName, newPassword)
	return cl.sendSimpleAccountTrans("acct_change_password", wire.Cli2Auth_AcctChangePasswordRequest,
		func(w *codec.Writer) {
			w.String(accountName).Raw(hash[:])
		}, cb)
}

// SetAccountRoles replaces the account's role flags.
func (cl *Client) SetAccountRoles(accountName string, accountFlags uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("acct_set_roles", wire.Cli2Auth_AcctSetRolesRequest,
		func(w *codec.Writer) {
			w.String(accountName).Uint32(accountFlags)
		}, cb)
}

// SetAccountBillingType replaces the account's billing class.
func (cl *Client) SetAccountBillingType(accountName string, billingType uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("acct_set_billing", wire.Cli2Auth_AcctSetBillingTypeRequest,
		func(w *codec.Writer) {
			w.String(accountName).Uint32(billingType)
		}, cb)
}

// AccountActivate redeems an activation key.
func (cl *Client) AccountActivate(activationKey [16]byte, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("acct_activate", wire.Cli2Auth_AcctActivateRequest,
		func(w *codec.Writer) {
			w.Raw(activationKey[:])
		}, cb)
}

// SetActivePlayer selects which of the account's players the session
// acts as. Player id zero deselects.
func (cl *Client) SetActivePlayer(playerID uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("acct_set_player", wire.Cli2Auth_AcctSetPlayerRequest,
		func(w *codec.Writer) {
			w.Uint32(playerID)
		}, cb)
}

// UpgradeVisitor converts a visitor player to a full explorer.
func (cl *Client) UpgradeVisitor(playerID uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("upgrade_visitor", wire.Cli2Auth_UpgradeVisitorRequest,
		func(w *codec.Writer) {
			w.Uint32(playerID)
		}, cb)
}

// sendSimpleAccountTrans covers the request kinds whose reply is just a
// server status code.
func (cl *Client) sendSimpleAccountTrans(name string, msgID uint32, build buildFunc, cb AccountCallback) error {
	var code uint32

	t := cl.newTrans(name, msgID, build,
		func(replyID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code)
		})
	return cl.sendTrans(t)
}
