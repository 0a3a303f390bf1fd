package net

import (
	"errors"
	"fmt"
	"sync"

	capi "github.com/hashicorp/consul/api"

	"github.com/lcx/authlink/log"
	"github.com/lcx/authlink/metrics"
)

// Resolver produces candidate auth-server addresses for connection
// attempts. Resolve is called before every dial so reconnects pick up
// topology changes without restarting the client.
type Resolver interface {
	Resolve() ([]string, error)
}

// StaticResolver returns a fixed address list, round-robin rotated so
// successive attempts spread across servers.
type StaticResolver struct {
	lock  sync.Mutex
	addrs []string
	next  int
}

// NewStaticResolver creates a resolver over a fixed address list.
func NewStaticResolver(addrs []string) (*StaticResolver, error) {
	if len(addrs) == 0 {
		return nil, errors.New("addrs cannot be empty")
	}
	cp := make([]string, len(addrs))
	copy(cp, addrs)
	return &StaticResolver{addrs: cp}, nil
}

// Resolve Resolver interface.
func (r *StaticResolver) Resolve() ([]string, error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	out := make([]string, 0, len(r.addrs))
	for i := 0; i < len(r.addrs); i++ {
		out = append(out, r.addrs[(r.next+i)%len(r.addrs)])
	}
	r.next = (r.next + 1) % len(r.addrs)
	return out, nil
}

// ResolverCfg configures the consul-backed resolver.
type ResolverCfg struct {
	ConsulAddr  string   `mapstructure:"consulAddr"`
	ServiceName string   `mapstructure:"serviceName"`
	StaticAddrs []string `mapstructure:"staticAddrs"`
}

// GetName returns the configuration name for ResolverCfg.
func (c *ResolverCfg) GetName() string {
	return "resolver"
}

// Validate validates the ResolverCfg parameters.
func (c *ResolverCfg) Validate() error {
	if c.ServiceName == "" && len(c.StaticAddrs) == 0 {
		return fmt.Errorf("either ServiceName or StaticAddrs must be set")
	}
	if c.ServiceName != "" && c.ConsulAddr == "" {
		return fmt.Errorf("ConsulAddr cannot be empty when ServiceName is set")
	}
	return nil
}

// ConsulResolver queries the consul health catalog for passing instances
// of the auth service, falling back to a static address list when the
// catalog is unreachable or empty.
type ConsulResolver struct {
	client      *capi.Client
	serviceName string
	fallback    *StaticResolver
}

// NewConsulResolver creates a resolver backed by the consul catalog.
func NewConsulResolver(cfg *ResolverCfg) (*ConsulResolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var fallback *StaticResolver
	if len(cfg.StaticAddrs) > 0 {
		var err error
		if fallback, err = NewStaticResolver(cfg.StaticAddrs); err != nil {
			return nil, err
		}
	}

	if cfg.ServiceName == "" {
		return &ConsulResolver{fallback: fallback}, nil
	}

	conf := capi.DefaultConfig()
	conf.Address = cfg.ConsulAddr
	client, err := capi.NewClient(conf)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}
	return &ConsulResolver{
		client:      client,
		serviceName: cfg.ServiceName,
		fallback:    fallback,
	}, nil
}

// Resolve Resolver interface.
func (r *ConsulResolver) Resolve() ([]string, error) {
	if r.client != nil {
		entries, _, err := r.client.Health().Service(r.serviceName, "", true, nil)
		if err == nil && len(entries) > 0 {
			addrs := make([]string, 0, len(entries))
			for _, e := range entries {
				host := e.Service.Address
				if host == "" {
					host = e.Node.Address
				}
				addrs = append(addrs, fmt.Sprintf("%s:%d", host, e.Service.Port))
			}
			return addrs, nil
		}
		if err != nil {
			metrics.IncrCounterWithGroup("net", "resolver_consul_error_total", 1)
			log.Warn().Str("service", r.serviceName).Err(err).Msg("consul resolve failed, using static fallback")
		}
	}

	if r.fallback == nil {
		return nil, errors.New("no healthy instances and no static fallback")
	}
	return r.fallback.Resolve()
}
