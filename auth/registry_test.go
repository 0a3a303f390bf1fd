package auth

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	cl, err := NewClient("auth", testClientCfg(), Deps{Resolver: mustStaticResolver(t, "127.0.0.1:1")})
	require.NoError(t, err)
	t.Cleanup(cl.Shutdown)
	return cl
}

func TestRegistryPromoteSingleActive(t *testing.T) {
	cl := newTestClient(t)
	r := cl.registry

	c1 := newConn(cl, 1, "a:1")
	r.link(c1)
	require.True(t, r.promote(c1))
	assert.Same(t, c1, r.acquireActive())

	// A newer attempt supersedes the active connection.
	c2 := newConn(cl, 2, "a:1")
	r.link(c2)
	assert.Nil(t, r.acquireActive())
	assert.True(t, c1.isAbandoned())
	assert.False(t, c2.isAbandoned())

	require.True(t, r.promote(c2))
	assert.Same(t, c2, r.acquireActive())
}

func TestRegistryPromoteAbandonedFails(t *testing.T) {
	cl := newTestClient(t)
	r := cl.registry

	c1 := newConn(cl, 1, "a:1")
	r.link(c1)
	c2 := newConn(cl, 2, "a:1")
	r.link(c2) // abandons c1

	assert.False(t, r.promote(c1))
	assert.Nil(t, r.acquireActive())
}

func TestRegistryUnlink(t *testing.T) {
	cl := newTestClient(t)
	r := cl.registry

	c := newConn(cl, 1, "a:1")
	r.link(c)
	require.True(t, r.promote(c))

	r.unlink(c)
	assert.Nil(t, r.acquireActive())
	assert.False(t, r.hasActive())

	// Unlinking twice is harmless.
	r.unlink(c)
}

func TestRegistryAbandonAll(t *testing.T) {
	cl := newTestClient(t)
	r := cl.registry

	c1 := newConn(cl, 1, "a:1")
	r.link(c1)
	require.True(t, r.promote(c1))
	// link would abandon c1; add a pending conn by hand to cover both sets.
	c2 := newConn(cl, 2, "a:1")
	r.lock.Lock()
	r.pending = append(r.pending, c2)
	r.lock.Unlock()

	r.abandonAll()
	assert.True(t, c1.isAbandoned())
	assert.True(t, c2.isAbandoned())
	assert.Nil(t, r.acquireActive())
}

func TestRegistryConcurrentAttempts(t *testing.T) {
	cl := newTestClient(t)
	r := cl.registry

	// Many racing connect attempts: at most one may end up active.
	const attempts = 32
	conns := make([]*conn, attempts)
	for i := range conns {
		conns[i] = newConn(cl, uint32(i+1), "a:1")
	}

	var wg sync.WaitGroup
	for _, c := range conns {
		wg.Add(1)
		go func(c *conn) {
			defer wg.Done()
			r.link(c)
			r.promote(c)
		}(c)
	}
	wg.Wait()

	active := 0
	for _, c := range conns {
		if r.acquireActive() == c {
			active++
		}
	}
	assert.LessOrEqual(t, active, 1)

	abandoned := 0
	for _, c := range conns {
		if c.isAbandoned() {
			abandoned++
		}
	}
	assert.GreaterOrEqual(t, abandoned, attempts-1)
}
