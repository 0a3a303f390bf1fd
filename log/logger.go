package log

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/lcx/authlink/config"
)

// Logger is the interface shared by the net logger and the per-connection
// session logger.
type Logger interface {
	Debug() *LogEvent
	Info() *LogEvent
	Warn() *LogEvent
	Error() *LogEvent
	Fatal() *LogEvent
	IgnoreCheckLevel() bool
	GetAppender() []LogAppender
	AddAppender(appender LogAppender)
	OnEventEnd(e *LogEvent)
}

// NetLogger provides a thread-safe logging interface with configurable
// appenders and formatting. It is designed for the protocol client's
// network goroutines, where low-latency logging and minimal allocation
// matter: the hot path is lock-free and events are pooled.
//
// Example usage:
//
//	logger := NewLogger(&LogCfg{LogLevel: InfoLevel, ConsoleAppender: true})
//	logger.Info().Str("addr", addr).Uint32("connSeq", seq).Msg("connected")
type NetLogger struct {
	appenders         []LogAppender
	minLevel          Level
	callerSkip        int
	eventPool         *sync.Pool
	enabledCallerInfo bool
	configMutex       sync.RWMutex
	currentConfig     *LogCfg
}

// NewLogger creates a new NetLogger with the provided configuration.
// A nil cfg selects the package defaults (console only, debug level).
func NewLogger(cfg *LogCfg) *NetLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	logger := &NetLogger{
		minLevel:          cfg.LogLevel,
		callerSkip:        cfg.CallerSkip,
		enabledCallerInfo: cfg.EnabledCallerInfo,
		currentConfig:     cfg,
	}

	logger.eventPool = &sync.Pool{
		New: func() any {
			return newEvent(logger)
		},
	}

	if cfg.FileAppender {
		logger.AddAppender(NewFileAppender(cfg))
	}
	if cfg.ConsoleAppender {
		logger.AddAppender(NewConsoleAppender())
	}

	return logger
}

// NewLoggerWithConfigManager creates a NetLogger registered for hot-reload
// of the "logger" configuration.
func NewLoggerWithConfigManager(cfg *LogCfg, configManager config.ConfigManager) *NetLogger {
	logger := NewLogger(cfg)
	if configManager != nil {
		configManager.AddChangeListener(logger)
	}
	return logger
}

// OnConfigChanged implements the config.ConfigChangeListener interface.
// Level and caller-info changes take effect immediately; appender topology
// changes require a restart and are ignored here.
func (x *NetLogger) OnConfigChanged(configName string, newConfig, oldConfig config.Config) error {
	if configName != "logger" {
		return nil
	}

	newCfg, ok := newConfig.(*LogCfg)
	if !ok {
		return nil
	}

	x.configMutex.Lock()
	defer x.configMutex.Unlock()

	atomic.StoreUint32((*uint32)(unsafe.Pointer(&x.minLevel)), uint32(newCfg.LogLevel))
	x.callerSkip = newCfg.CallerSkip
	x.enabledCallerInfo = newCfg.EnabledCallerInfo
	x.currentConfig = newCfg

	x.Refresh()
	return nil
}

// GetConfigName implements the config.ConfigChangeListener interface.
func (x *NetLogger) GetConfigName() string {
	return "logger"
}

// GetCurrentConfig returns the current logger configuration.
func (x *NetLogger) GetCurrentConfig() *LogCfg {
	x.configMutex.RLock()
	defer x.configMutex.RUnlock()
	return x.currentConfig
}

func (x *NetLogger) checkLevel(level Level) bool {
	currentLevel := Level(atomic.LoadUint32((*uint32)(unsafe.Pointer(&x.minLevel))))
	return currentLevel <= level
}

// AddAppender adds a new log appender. Multiple appenders may be attached,
// sending every event to several destinations simultaneously.
func (x *NetLogger) AddAppender(appender LogAppender) {
	x.appenders = append(x.appenders, appender)
}

// GetAppender returns the registered appenders.
func (x *NetLogger) GetAppender() []LogAppender {
	return x.appenders
}

// Refresh triggers a refresh on all registered appenders, typically after
// log rotation or a configuration change.
func (x *NetLogger) Refresh() {
	for _, appender := range x.appenders {
		appender.Refresh()
	}
}

// IgnoreCheckLevel reports whether level filtering is bypassed. The base
// logger always filters; see SessionLogger for the whitelist exception.
func (x *NetLogger) IgnoreCheckLevel() bool {
	return false
}

func (x *NetLogger) newEvent() *LogEvent {
	e := x.eventPool.Get().(*LogEvent)
	e.Reset()
	return e
}

// OnEventEnd writes a finalized event to all appenders and returns it to
// the pool. Fatal events panic after the write.
func (x *NetLogger) OnEventEnd(e *LogEvent) {
	for _, appender := range x.appenders {
		appender.Write(e.buf.Bytes())
	}

	if e.level == FatalLevel {
		panic("fatal log event")
	}

	x.eventPool.Put(e)
}

// Debug creates a new debug-level log event.
func (x *NetLogger) Debug() *LogEvent {
	return x.log(DebugLevel)
}

// Info creates a new info-level log event.
func (x *NetLogger) Info() *LogEvent {
	return x.log(InfoLevel)
}

// Warn creates a new warn-level log event.
func (x *NetLogger) Warn() *LogEvent {
	return x.log(WarnLevel)
}

// Error creates a new error-level log event.
func (x *NetLogger) Error() *LogEvent {
	return x.log(ErrorLevel)
}

// Fatal creates a new fatal-level log event. After the event is written the
// logger panics.
func (x *NetLogger) Fatal() *LogEvent {
	return x.log(FatalLevel)
}

func (x *NetLogger) log(level Level) *LogEvent {
	if !x.IgnoreCheckLevel() && !x.checkLevel(level) {
		return nil
	}
	return x.newEventAt(level)
}

// newEventAt builds an event without level filtering. Callers are expected
// to have applied their own filtering policy first.
func (x *NetLogger) newEventAt(level Level) *LogEvent {
	e := x.newEvent()
	e.level = level

	t := time.Now()
	e.Time("time", &t)
	e.Str("level", level.String())

	if x.enabledCallerInfo {
		e.Str("caller", x.callerInfo())
	}

	return e
}

func (x *NetLogger) callerInfo() string {
	_, file, line, ok := runtime.Caller(3 + x.callerSkip)
	if !ok {
		return "unknown"
	}

	// keep at most the last two path elements
	if lastSlash := strings.LastIndexByte(file, '/'); lastSlash > 0 {
		if secondLastSlash := strings.LastIndexByte(file[:lastSlash], '/'); secondLastSlash >= 0 {
			file = file[secondLastSlash+1:]
		}
	}

	return file + ":" + strconv.Itoa(line)
}
