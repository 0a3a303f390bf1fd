package net

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticResolverRotation(t *testing.T) {
	r, err := NewStaticResolver([]string{"a:1", "b:2", "c:3"})
	require.NoError(t, err)

	first, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"a:1", "b:2", "c:3"}, first)

	second, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"b:2", "c:3", "a:1"}, second)

	third, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"c:3", "a:1", "b:2"}, third)
}

func TestStaticResolverEmpty(t *testing.T) {
	_, err := NewStaticResolver(nil)
	assert.Error(t, err)
}

func TestResolverCfgValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ResolverCfg
		wantErr bool
	}{
		{
			name:    "static only",
			cfg:     ResolverCfg{StaticAddrs: []string{"a:1"}},
			wantErr: false,
		},
		{
			name:    "consul with addr",
			cfg:     ResolverCfg{ConsulAddr: "127.0.0.1:8500", ServiceName: "auth"},
			wantErr: false,
		},
		{
			name:    "consul without addr",
			cfg:     ResolverCfg{ServiceName: "auth"},
			wantErr: true,
		},
		{
			name:    "nothing configured",
			cfg:     ResolverCfg{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConsulResolverStaticFallbackOnly(t *testing.T) {
	r, err := NewConsulResolver(&ResolverCfg{StaticAddrs: []string{"x:9", "y:8"}})
	require.NoError(t, err)

	addrs, err := r.Resolve()
	require.NoError(t, err)
	assert.Equal(t, []string{"x:9", "y:8"}, addrs)
}
