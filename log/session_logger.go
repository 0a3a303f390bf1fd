package log

import "sync"

// SessionLogger provides specialized logging for one auth-server connection.
// It extends the base NetLogger so that every event carries the connection
// sequence number, and lets whitelisted connections bypass level filtering
// entirely. Tracing a single flapping connection in production is then a
// config change instead of a global verbosity raise.
type SessionLogger struct {
	*NetLogger
	connSeq     uint32
	inWhiteList bool
}

// NewSessionLogger creates a logger bound to a connection sequence number.
//
// Parameters:
//   - cfg: Base logging configuration
//   - connSeq: Sequence number of the connection this logger serves
func NewSessionLogger(cfg *LogCfg, connSeq uint32) *SessionLogger {
	if cfg == nil {
		cfg = getDefaultCfg()
	}

	logger := &NetLogger{
		minLevel:          cfg.LogLevel,
		callerSkip:        cfg.CallerSkip,
		enabledCallerInfo: cfg.EnabledCallerInfo,
		currentConfig:     cfg,
	}

	sessionLogger := &SessionLogger{
		NetLogger:   logger,
		connSeq:     connSeq,
		inWhiteList: cfg.IsInWhiteList(connSeq),
	}

	logger.eventPool = &sync.Pool{
		New: func() any {
			return newEvent(logger)
		},
	}

	if cfg.ConsoleAppender {
		logger.AddAppender(NewConsoleAppender())
	}
	if cfg.FileAppender {
		logger.AddAppender(NewFileAppender(cfg))
	}

	return sessionLogger
}

// IgnoreCheckLevel bypasses level filtering for whitelisted connections.
func (x *SessionLogger) IgnoreCheckLevel() bool {
	return x.inWhiteList
}

// ConnSeq returns the connection sequence this logger is bound to.
func (x *SessionLogger) ConnSeq() uint32 {
	return x.connSeq
}

func (x *SessionLogger) log(level Level) *LogEvent {
	if !x.IgnoreCheckLevel() && !x.checkLevel(level) {
		return nil
	}
	e := x.newEventAt(level)
	e.Uint32("connSeq", x.connSeq)
	return e
}

// Debug creates a new debug-level log event tagged with the connection.
func (x *SessionLogger) Debug() *LogEvent {
	return x.log(DebugLevel)
}

// Info creates a new info-level log event tagged with the connection.
func (x *SessionLogger) Info() *LogEvent {
	return x.log(InfoLevel)
}

// Warn creates a new warn-level log event tagged with the connection.
func (x *SessionLogger) Warn() *LogEvent {
	return x.log(WarnLevel)
}

// Error creates a new error-level log event tagged with the connection.
func (x *SessionLogger) Error() *LogEvent {
	return x.log(ErrorLevel)
}
