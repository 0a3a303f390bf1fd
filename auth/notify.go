package auth

import (
	"sync"

	"github.com/lcx/authlink/metrics"
)

// Push handler signatures. One handler slot per push kind, last
// registration wins: the process has a single logical subscriber.
type (
	// VaultNodeChangedHandler is invoked when a watched vault node's
	// contents changed. revisionID identifies the new revision.
	VaultNodeChangedHandler func(nodeID uint32, revisionID [16]byte)

	// VaultNodeAddedHandler is invoked when a child node was attached.
	VaultNodeAddedHandler func(parentID, childID, ownerID uint32)

	// VaultNodeRemovedHandler is invoked when a child node was detached.
	VaultNodeRemovedHandler func(parentID, childID uint32)

	// VaultNodeDeletedHandler is invoked when a node was destroyed.
	VaultNodeDeletedHandler func(nodeID uint32)

	// NewBuildHandler is invoked when the server advertises a newer
	// client build.
	NewBuildHandler func(buildID uint32)

	// PropagateBufferHandler is invoked for raw application buffers
	// relayed through the auth server.
	PropagateBufferHandler func(bufType uint32, buf []byte)

	// KickedHandler is invoked when the server revoked the session. The
	// connection is already being torn down, without reconnect, when
	// this fires.
	KickedHandler func(reason uint32)
)

type pushHandlers struct {
	lock sync.RWMutex

	vaultNodeChanged VaultNodeChangedHandler
	vaultNodeAdded   VaultNodeAddedHandler
	vaultNodeRemoved VaultNodeRemovedHandler
	vaultNodeDeleted VaultNodeDeletedHandler
	newBuild         NewBuildHandler
	propagateBuffer  PropagateBufferHandler
	kicked           KickedHandler
}

// SetVaultNodeChangedHandler registers the vault-node-changed handler.
func (cl *Client) SetVaultNodeChangedHandler(h VaultNodeChangedHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.vaultNodeChanged = h
}

// SetVaultNodeAddedHandler registers the vault-node-added handler.
func (cl *Client) SetVaultNodeAddedHandler(h VaultNodeAddedHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.vaultNodeAdded = h
}

// SetVaultNodeRemovedHandler registers the vault-node-removed handler.
func (cl *Client) SetVaultNodeRemovedHandler(h VaultNodeRemovedHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.vaultNodeRemoved = h
}

// SetVaultNodeDeletedHandler registers the vault-node-deleted handler.
func (cl *Client) SetVaultNodeDeletedHandler(h VaultNodeDeletedHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.vaultNodeDeleted = h
}

// SetNewBuildHandler registers the new-build handler.
func (cl *Client) SetNewBuildHandler(h NewBuildHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.newBuild = h
}

// SetPropagateBufferHandler registers the propagated-buffer handler.
func (cl *Client) SetPropagateBufferHandler(h PropagateBufferHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.propagateBuffer = h
}

// SetKickedHandler registers the server-kick handler.
func (cl *Client) SetKickedHandler(h KickedHandler) {
	cl.pushes.lock.Lock()
	defer cl.pushes.lock.Unlock()
	cl.pushes.kicked = h
}

// enqueuePost queues a callback for the next Update. This is the only
// path by which transaction results and push notifications reach the
// application: network goroutines enqueue, the application turn drains.
func (cl *Client) enqueuePost(fn func()) {
	cl.postLock.Lock()
	cl.postQueue = append(cl.postQueue, fn)
	depth := len(cl.postQueue)
	cl.postLock.Unlock()
	metrics.UpdateGaugeWithGroup("auth", "post_queue_depth", metrics.Value(depth))
}

// Update drains the completion queue, invoking every queued transaction
// callback and push notification on the caller's goroutine. The
// application calls this from its own processing loop. Callbacks queued
// while Update runs are delivered on the next call.
func (cl *Client) Update() {
	cl.postLock.Lock()
	batch := cl.postQueue
	cl.postQueue = nil
	cl.postLock.Unlock()

	for _, fn := range batch {
		fn()
	}
	if len(batch) > 0 {
		metrics.UpdateGaugeWithGroup("auth", "post_queue_depth", 0)
	}
}
