package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogAppender receives finalized log lines and delivers them to an output
// destination. Write must be safe for concurrent use.
type LogAppender interface {
	Write(line []byte)
	Refresh()
	Close()
}

// ConsoleAppender writes log lines to stdout.
type ConsoleAppender struct {
	mu sync.Mutex
}

// NewConsoleAppender creates a console appender.
func NewConsoleAppender() *ConsoleAppender {
	return &ConsoleAppender{}
}

// Write writes one line to stdout.
func (a *ConsoleAppender) Write(line []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, _ = os.Stdout.Write(line)
}

// Refresh is a no-op for the console.
func (a *ConsoleAppender) Refresh() {}

// Close is a no-op for the console.
func (a *ConsoleAppender) Close() {}

// FileAppender writes log lines to a file with size-based rotation and
// optional asynchronous buffering. In async mode lines past the cache limit
// are dropped instead of blocking the caller; the network goroutines that
// produce most log volume must never stall on disk I/O.
type FileAppender struct {
	mu       sync.Mutex
	path     string
	splitMB  int
	file     *os.File
	written  int64
	async    bool
	lineCh   chan []byte
	closedCh chan struct{}
	once     sync.Once
}

// NewFileAppender creates a file appender from the logger configuration.
func NewFileAppender(cfg *LogCfg) *FileAppender {
	a := &FileAppender{
		path:    cfg.LogPath,
		splitMB: cfg.FileSplitMB,
		async:   cfg.IsAsync,
	}
	if a.async {
		cacheSize := cfg.AsyncCacheSize
		if cacheSize <= 0 {
			cacheSize = 1024
		}
		a.lineCh = make(chan []byte, cacheSize)
		a.closedCh = make(chan struct{})
		go a.serveAsync()
	}
	return a
}

// Write delivers one line. In async mode the line is copied and queued; in
// sync mode it is written under the lock.
func (a *FileAppender) Write(line []byte) {
	if a.async {
		cp := make([]byte, len(line))
		copy(cp, line)
		select {
		case a.lineCh <- cp:
		default:
			// cache full, drop
		}
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	a.writeLocked(line)
}

func (a *FileAppender) serveAsync() {
	for {
		select {
		case line, ok := <-a.lineCh:
			if !ok {
				return
			}
			a.mu.Lock()
			a.writeLocked(line)
			a.mu.Unlock()
		case <-a.closedCh:
			return
		}
	}
}

func (a *FileAppender) writeLocked(line []byte) {
	if a.file == nil {
		if err := a.openLocked(); err != nil {
			fmt.Fprintf(os.Stderr, "file appender open failed: %v\n", err)
			return
		}
	}

	n, err := a.file.Write(line)
	if err != nil {
		return
	}
	a.written += int64(n)

	if a.splitMB > 0 && a.written >= int64(a.splitMB)*1024*1024 {
		a.rotateLocked()
	}
}

func (a *FileAppender) openLocked() error {
	if dir := filepath.Dir(a.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	if st, err := f.Stat(); err == nil {
		a.written = st.Size()
	}
	a.file = f
	return nil
}

func (a *FileAppender) rotateLocked() {
	_ = a.file.Close()
	a.file = nil
	a.written = 0

	rotated := fmt.Sprintf("%s.%s", a.path, time.Now().Format("20060102-150405"))
	_ = os.Rename(a.path, rotated)
}

// Refresh forces the appender to reopen its file on the next write. Used
// after external log rotation or a path change from a config reload.
func (a *FileAppender) Refresh() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.file != nil {
		_ = a.file.Close()
		a.file = nil
		a.written = 0
	}
}

// Close stops the async goroutine and closes the file.
func (a *FileAppender) Close() {
	a.once.Do(func() {
		if a.async {
			close(a.closedCh)
		}
		a.mu.Lock()
		defer a.mu.Unlock()
		if a.file != nil {
			_ = a.file.Close()
			a.file = nil
		}
	})
}
