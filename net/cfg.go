package net

import (
	"fmt"

	"github.com/lcx/authlink/config"
	"github.com/lcx/authlink/log"
)

// TransportCfg configures a transport instance. One config drives every
// connType; fields a particular transport does not use are ignored.
type TransportCfg struct {
	ConnType        string `mapstructure:"connType"`
	DialTimeoutMS   uint32 `mapstructure:"dialTimeoutMS"`
	IdleTimeoutMS   uint32 `mapstructure:"idleTimeoutMS"`
	SendChannelSize uint32 `mapstructure:"sendChannelSize"`
	MaxBufferSize   int    `mapstructure:"maxBufferSize"`
}

// GetName returns the configuration name for TransportCfg.
func (c *TransportCfg) GetName() string {
	return "transport"
}

// Validate validates the TransportCfg parameters.
func (c *TransportCfg) Validate() error {
	if c.ConnType == "" {
		return fmt.Errorf("ConnType cannot be empty")
	}
	if c.DialTimeoutMS == 0 {
		return fmt.Errorf("DialTimeoutMS must be positive")
	}
	if c.SendChannelSize == 0 {
		return fmt.Errorf("SendChannelSize must be positive")
	}
	if c.MaxBufferSize <= 0 {
		return fmt.Errorf("MaxBufferSize must be positive")
	}
	return nil
}

// DefaultTransportCfg returns a config suitable for most deployments.
func DefaultTransportCfg() *TransportCfg {
	return &TransportCfg{
		ConnType:        "tcp",
		DialTimeoutMS:   5000,
		IdleTimeoutMS:   90000,
		SendChannelSize: 128,
		MaxBufferSize:   256 * 1024,
	}
}

// LoadTransportCfg loads the transport config from a config manager and
// registers a listener so edits to the config file take effect on the
// next connection attempt.
func LoadTransportCfg(configManager config.ConfigManager) (*TransportCfg, error) {
	cfg := DefaultTransportCfg()
	if err := configManager.LoadConfig("transport", cfg); err != nil {
		return nil, fmt.Errorf("failed to load transport config: %w", err)
	}
	configManager.AddChangeListener(&transportCfgListener{cfg: cfg})
	return cfg, nil
}

type transportCfgListener struct {
	cfg *TransportCfg
}

func (l *transportCfgListener) GetConfigName() string {
	return "transport"
}

func (l *transportCfgListener) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "transport" {
		return nil
	}
	newCfg, ok := newConfig.(*TransportCfg)
	if !ok {
		return fmt.Errorf("invalid configuration type for transport")
	}
	*l.cfg = *newCfg
	log.Info().Str("configName", configName).Msg("transport configuration updated successfully")
	return nil
}
