package log

// LogCfg represents logging configuration for the protocol client.
// It controls output destinations, rotation strategy and the minimum level,
// and supports hot-reload through the configuration manager.
type LogCfg struct {
	// LogPath specifies the target log file path for file-based logging.
	// Supports relative and absolute paths with automatic directory creation.
	LogPath string `mapstructure:"path"`

	// LogLevel defines the minimum log level for filtering log entries.
	// Supports hot-reload without restart for dynamic log level adjustment.
	LogLevel Level `mapstructure:"level"`

	// FileSplitMB determines the file rotation threshold in megabytes.
	// When the log file exceeds this size, rotation creates a new file.
	FileSplitMB int `mapstructure:"splitmb"`

	// IsAsync enables asynchronous log writing so slow disks never stall
	// the network goroutines that produce most of the client's log volume.
	IsAsync bool `mapstructure:"isasync"`

	// AsyncCacheSize limits the buffered log entries in async mode.
	// Entries past the limit are dropped rather than blocking the caller.
	AsyncCacheSize int `mapstructure:"asynccachesize"`

	// CallerSkip specifies the number of stack frames to skip for caller
	// information. Useful for wrapper layers above the logger.
	CallerSkip int `mapstructure:"callerSkip"`

	// FileAppender enables file-based logging output.
	FileAppender bool `mapstructure:"fileAppender"`

	// ConsoleAppender enables console (stdout) logging output.
	ConsoleAppender bool `mapstructure:"consoleAppender"`

	// EnabledCallerInfo captures file/function/line for every event.
	EnabledCallerInfo bool `mapstructure:"enabledCallerInfo"`

	// ConnWhiteList lists connection sequence numbers whose session loggers
	// bypass level filtering. Used to trace a single misbehaving connection
	// in production without raising the global verbosity.
	ConnWhiteList []uint32 `mapstructure:"connWhiteList"`

	// connWhiteListSet is an internal cache for O(1) whitelist lookups.
	connWhiteListSet map[uint32]struct{} `mapstructure:"-"`
}

// GetName returns the configuration name for LogCfg.
func (cfg *LogCfg) GetName() string {
	return "logger"
}

// Validate validates the LogCfg parameters.
func (cfg *LogCfg) Validate() error {
	return nil
}

// IsInWhiteList checks whether a connection sequence is whitelisted for
// unrestricted logging.
func (cfg *LogCfg) IsInWhiteList(connSeq uint32) bool {
	if len(cfg.connWhiteListSet) == 0 && len(cfg.ConnWhiteList) != 0 {
		cfg.connWhiteListSet = make(map[uint32]struct{}, len(cfg.ConnWhiteList))
		for _, seq := range cfg.ConnWhiteList {
			cfg.connWhiteListSet[seq] = struct{}{}
		}
	}

	_, exists := cfg.connWhiteListSet[connSeq]
	return exists
}

var _defaultCfg = &LogCfg{
	LogPath:         "./authlink.log",
	LogLevel:        DebugLevel,
	FileSplitMB:     50,
	IsAsync:         true,
	CallerSkip:      1,
	FileAppender:    false,
	ConsoleAppender: true,
}

func getDefaultCfg() *LogCfg {
	return _defaultCfg
}
