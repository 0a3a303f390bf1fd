package config

import "sync"

var (
	_instance ConfigManager
	_once     sync.Once
)

// GetInstance returns the process-wide configuration manager, creating it
// on first use. Components that need isolated configuration (tests mostly)
// should construct their own manager with NewConfigManager instead.
func GetInstance() ConfigManager {
	_once.Do(func() {
		_instance = NewConfigManager()
	})
	return _instance
}
