package auth

import (
	"github.com/lcx/authlink/codec"
	"github.com/lcx/authlink/wire"
)

// Vault requests move opaque node buffers; the node data model is the
// application's concern, this layer only transports it.

// VaultNodeCreateCallback receives the new node's id.
type VaultNodeCreateCallback func(res Result, serverCode uint32, nodeID uint32)

// VaultNodeCreate creates a node from a serialized template.
func (cl *Client) VaultNodeCreate(nodeBuf []byte, cb VaultNodeCreateCallback) error {
	var code, nodeID uint32

	t := cl.newTrans("vault_node_create", wire.Cli2Auth_VaultNodeCreate,
		func(w *codec.Writer) {
			w.Buffer(nodeBuf)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			nodeID = r.Uint32()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, nodeID)
		})
	return cl.sendTrans(t)
}

// VaultNodeFetchCallback receives the node's serialized contents.
type VaultNodeFetchCallback func(res Result, serverCode uint32, nodeBuf []byte)

// VaultNodeFetch retrieves one node by id.
func (cl *Client) VaultNodeFetch(nodeID uint32, cb VaultNodeFetchCallback) error {
	var code uint32
	var nodeBuf []byte

	t := cl.newTrans("vault_node_fetch", wire.Cli2Auth_VaultNodeFetch,
		func(w *codec.Writer) {
			w.Uint32(nodeID)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			nodeBuf = r.Buffer()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, nodeBuf)
		})
	return cl.sendTrans(t)
}

// VaultNodeSave uploads new contents for a node under a revision id.
func (cl *Client) VaultNodeSave(nodeID uint32, revisionID [16]byte, nodeBuf []byte, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("vault_node_save", wire.Cli2Auth_VaultNodeSave,
		func(w *codec.Writer) {
			w.Uint32(nodeID).
				Raw(revisionID[:]).
				Buffer(nodeBuf)
		}, cb)
}

// VaultNodeAdd attaches a child node under a parent.
func (cl *Client) VaultNodeAdd(parentID, childID, ownerID uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("vault_node_add", wire.Cli2Auth_VaultNodeAdd,
		func(w *codec.Writer) {
			w.Uint32(parentID).
				Uint32(childID).
				Uint32(ownerID)
		}, cb)
}

// VaultNodeRemove detaches a child node from a parent.
func (cl *Client) VaultNodeRemove(parentID, childID uint32, cb AccountCallback) error {
	return cl.sendSimpleAccountTrans("vault_node_remove", wire.Cli2Auth_VaultNodeRemove,
		func(w *codec.Writer) {
			w.Uint32(parentID).Uint32(childID)
		}, cb)
}

// NodeRef is one edge of the vault graph.
type NodeRef struct {
	ParentID uint32
	ChildID  uint32
	OwnerID  uint32
}

// VaultNodeRefsCallback receives the subtree's edges.
type VaultNodeRefsCallback func(res Result, serverCode uint32, refs []NodeRef)

// VaultFetchNodeRefs retrieves every edge reachable from a node.
func (cl *Client) VaultFetchNodeRefs(nodeID uint32, cb VaultNodeRefsCallback) error {
	var code uint32
	var refs []NodeRef

	t := cl.newTrans("vault_fetch_refs", wire.Cli2Auth_VaultFetchNodeRefs,
		func(w *codec.Writer) {
			w.Uint32(nodeID)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			count := r.Uint32()
			for i := uint32(0); i < count && r.Err() == nil; i++ {
				refs = append(refs, NodeRef{
					ParentID: r.Uint32(),
					ChildID:  r.Uint32(),
					OwnerID:  r.Uint32(),
				})
			}
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, refs)
		})
	return cl.sendTrans(t)
}

// VaultNodeFindCallback receives the matching node ids.
type VaultNodeFindCallback func(res Result, serverCode uint32, nodeIDs []uint32)

// VaultNodeFind searches for nodes matching a serialized template.
func (cl *Client) VaultNodeFind(templateBuf []byte, cb VaultNodeFindCallback) error {
	var code uint32
	var nodeIDs []uint32

	t := cl.newTrans("vault_node_find", wire.Cli2Auth_VaultNodeFind,
		func(w *codec.Writer) {
			w.Buffer(templateBuf)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			count := r.Uint32()
			for i := uint32(0); i < count && r.Err() == nil; i++ {
				nodeIDs = append(nodeIDs, r.Uint32())
			}
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, nodeIDs)
		})
	return cl.sendTrans(t)
}

// VaultInitAgeCallback receives the created instance's vault handles.
type VaultInitAgeCallback func(res Result, serverCode uint32, ageVaultID, ageInfoVaultID uint32)

// VaultInitAge creates the vault structure for a new age instance.
func (cl *Client) VaultInitAge(instanceID, parentInstanceID [16]byte, ageFilename, instanceName, userName string, sequenceNum uint32, cb VaultInitAgeCallback) error {
	var code, ageVaultID, ageInfoVaultID uint32

	t := cl.newTrans("vault_init_age", wire.Cli2Auth_VaultInitAgeRequest,
		func(w *codec.Writer) {
			w.Raw(instanceID[:]).
				Raw(parentInstanceID[:]).
				String(ageFilename).
				String(instanceName).
				String(userName).
				Uint32(sequenceNum)
		},
		func(msgID uint32, r *codec.Reader) (bool, Result) {
			code = r.Uint32()
			ageVaultID = r.Uint32()
			ageInfoVaultID = r.Uint32()
			if r.Err() != nil {
				return true, ResultProtocolError
			}
			return true, serverResult(code)
		},
		func(res Result) {
			cb(res, code, ageVaultID, ageInfoVaultID)
		})
	return cl.sendTrans(t)
}
