package auth

import (
	"sync"

	"github.com/lcx/authlink/metrics"
)

// Registry tracks the connections for one logical server role: an ordered
// pending set of connection attempts plus the single active one. It is
// constructor-injected rather than process-global so two clients (or a
// client and its test harness) never share hidden state.
//
// All mutation serializes through one mutex. Socket callbacks, timer
// callbacks, and application calls all land here concurrently; the mutex
// is the single synchronization domain for the role.
type Registry struct {
	role string

	lock    sync.Mutex
	pending []*conn
	active  *conn
}

// NewRegistry creates an empty registry for a role.
func NewRegistry(role string) *Registry {
	return &Registry{role: role}
}

// Role returns the logical server role this registry serves.
func (r *Registry) Role() string {
	return r.role
}

// link registers a new connection attempt. Every other live connection
// for the role is unlinked and abandoned: only one connection per role is
// ever authoritative, and a fresh attempt supersedes the rest.
func (r *Registry) link(c *conn) {
	r.lock.Lock()
	superseded := make([]*conn, 0, len(r.pending)+1)
	superseded = append(superseded, r.pending...)
	if r.active != nil {
		superseded = append(superseded, r.active)
	}
	r.pending = []*conn{c}
	r.active = nil
	r.lock.Unlock()

	for _, old := range superseded {
		if old != c {
			old.abandon()
		}
	}
	metrics.UpdateGaugeWithDimGroup("auth", "registry_pending", 1, map[string]string{"role": r.role})
}

// promote designates a connection active after its handshake completed.
// Returns false when the connection was abandoned in the meantime (a
// newer attempt superseded it while the handshake was in flight); the
// caller must then tear it down instead of using it.
func (r *Registry) promote(c *conn) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	if c.isAbandoned() {
		return false
	}
	found := false
	for i, p := range r.pending {
		if p == c {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return false
	}
	r.active = c
	metrics.IncrCounterWithDimGroup("auth", "registry_promote_total", 1, map[string]string{"role": r.role})
	return true
}

// unlink removes a connection from the registry, whether pending or
// active. Safe to call for a connection that was already removed.
func (r *Registry) unlink(c *conn) {
	r.lock.Lock()
	defer r.lock.Unlock()

	for i, p := range r.pending {
		if p == c {
			r.pending = append(r.pending[:i], r.pending[i+1:]...)
			break
		}
	}
	if r.active == c {
		r.active = nil
	}
}

// acquireActive returns the active connection, or nil when none exists.
// This is the single chokepoint every transaction sends through, which
// is what makes "no connection yet" a fast retryable failure instead of
// a blocking wait.
func (r *Registry) acquireActive() *conn {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.active
}

// hasActive reports whether an active, authenticated connection exists.
func (r *Registry) hasActive() bool {
	return r.acquireActive() != nil
}

// abandonAll unlinks and abandons every connection. Used at shutdown.
func (r *Registry) abandonAll() {
	r.lock.Lock()
	all := make([]*conn, 0, len(r.pending)+1)
	all = append(all, r.pending...)
	if r.active != nil {
		all = append(all, r.active)
	}
	r.pending = nil
	r.active = nil
	r.lock.Unlock()

	for _, c := range all {
		c.abandon()
	}
}
