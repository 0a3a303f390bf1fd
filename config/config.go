package config

// Config interface defines the basic configuration contract
type Config interface {
	GetName() string
	Validate() error
}

// ConfigChangeListener is implemented by components that want to be
// notified when a named configuration is hot-reloaded from disk.
type ConfigChangeListener interface {
	// OnConfigChanged is called after a configuration has been reloaded
	// and validated. Listeners receive every change and should ignore
	// names they are not interested in.
	OnConfigChanged(configName string, newConfig, oldConfig Config) error

	// GetConfigName returns the configuration name this listener follows.
	GetConfigName() string
}
