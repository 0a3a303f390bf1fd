package auth

import (
	"fmt"
	"time"
)

// ClientCfg configures an auth client. The reconnect delays are asymmetric
// on purpose: a session holding a resumption token was already trusted by
// the server and reconnects quickly, a session that never finished its
// handshake waits the long delay so a misbehaving client cannot hammer
// the server.
type ClientCfg struct {
	BuildID   uint32 `mapstructure:"buildID"`
	BranchID  uint32 `mapstructure:"branchID"`
	ProductID uint32 `mapstructure:"productID"`

	PingIntervalMS       uint32 `mapstructure:"pingIntervalMS"`
	FastReconnectDelayMS uint32 `mapstructure:"fastReconnectDelayMS"`
	SlowReconnectDelayMS uint32 `mapstructure:"slowReconnectDelayMS"`
	DisconnectTimeoutMS  uint32 `mapstructure:"disconnectTimeoutMS"`

	// Staleness detection force-drops a half-open socket when nothing has
	// been heard for StalenessMultiplier ping intervals. On by default;
	// a socket the transport never reports dead would otherwise hang the
	// session until the disconnect ceiling.
	StalenessCheckEnabled bool   `mapstructure:"stalenessCheckEnabled"`
	StalenessMultiplier   uint32 `mapstructure:"stalenessMultiplier"`

	TransTimeoutMS uint32 `mapstructure:"transTimeoutMS"`

	// Inbound dispatch rate limit, frames per second with a burst bucket.
	// Zero disables limiting.
	RecvRateLimit float64 `mapstructure:"recvRateLimit"`
	RecvRateBurst int     `mapstructure:"recvRateBurst"`
}

// GetName returns the configuration name for ClientCfg.
func (c *ClientCfg) GetName() string {
	return "auth_client"
}

// Validate validates the ClientCfg parameters.
func (c *ClientCfg) Validate() error {
	if c.PingIntervalMS == 0 {
		return fmt.Errorf("PingIntervalMS must be positive")
	}
	if c.FastReconnectDelayMS == 0 {
		return fmt.Errorf("FastReconnectDelayMS must be positive")
	}
	if c.SlowReconnectDelayMS == 0 {
		return fmt.Errorf("SlowReconnectDelayMS must be positive")
	}
	if c.FastReconnectDelayMS > c.SlowReconnectDelayMS {
		return fmt.Errorf("FastReconnectDelayMS cannot exceed SlowReconnectDelayMS")
	}
	if c.DisconnectTimeoutMS == 0 {
		return fmt.Errorf("DisconnectTimeoutMS must be positive")
	}
	if c.StalenessCheckEnabled && c.StalenessMultiplier < 2 {
		return fmt.Errorf("StalenessMultiplier must be at least 2")
	}
	if c.TransTimeoutMS == 0 {
		return fmt.Errorf("TransTimeoutMS must be positive")
	}
	if c.RecvRateLimit > 0 && c.RecvRateBurst <= 0 {
		return fmt.Errorf("RecvRateBurst must be positive when RecvRateLimit is set")
	}
	return nil
}

// DefaultClientCfg returns the standard production configuration.
func DefaultClientCfg() *ClientCfg {
	return &ClientCfg{
		PingIntervalMS:        30000,
		FastReconnectDelayMS:  500,
		SlowReconnectDelayMS:  10000,
		DisconnectTimeoutMS:   300000,
		StalenessCheckEnabled: true,
		StalenessMultiplier:   3,
		TransTimeoutMS:        60000,
		RecvRateLimit:         500,
		RecvRateBurst:         1000,
	}
}

func (c *ClientCfg) pingInterval() time.Duration {
	return time.Duration(c.PingIntervalMS) * time.Millisecond
}

func (c *ClientCfg) fastReconnectDelay() time.Duration {
	return time.Duration(c.FastReconnectDelayMS) * time.Millisecond
}

func (c *ClientCfg) slowReconnectDelay() time.Duration {
	return time.Duration(c.SlowReconnectDelayMS) * time.Millisecond
}

func (c *ClientCfg) disconnectTimeout() time.Duration {
	return time.Duration(c.DisconnectTimeoutMS) * time.Millisecond
}

func (c *ClientCfg) transTimeout() time.Duration {
	return time.Duration(c.TransTimeoutMS) * time.Millisecond
}

func (c *ClientCfg) stalenessBudget() time.Duration {
	return time.Duration(c.StalenessMultiplier) * c.pingInterval()
}
