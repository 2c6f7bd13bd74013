// Package logging writes the operational trail of rehydration sessions.
//
// Every entry goes to the tree log (.confcache/logs/confcache.log). Entries
// scoped to a build also go to the log of that build and of each included
// build that owns it, so build-logic-inner.log is a subset of build-logic.log.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/runoshun/confcache/internal/domain"
)

var _ domain.Logger = (*Logger)(nil)

// treeColumn is shown in place of a build identity for tree-wide entries.
const treeColumn = "tree"

// Logger appends formatted entries to per-build log files.
// Fields are ordered to minimize memory padding.
type Logger struct {
	files    map[string]*os.File
	now      func() time.Time
	cacheDir string
	mu       sync.Mutex
	level    slog.Level
}

// New creates a logger writing below cacheDir/logs.
// An empty cacheDir disables logging.
func New(cacheDir string, level slog.Level) *Logger {
	return &Logger{
		cacheDir: cacheDir,
		level:    level,
		files:    make(map[string]*os.File),
		now:      time.Now,
	}
}

// ParseLevel parses a level name; unknown names map to info.
func ParseLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// logPaths returns the files an entry for build is written to: the tree log
// first, then the build and its owning included builds, innermost first.
// Included builds never write to the root build's log.
func (l *Logger) logPaths(build string) []string {
	paths := []string{domain.GlobalLogPath(l.cacheDir)}
	if build == "" {
		return paths
	}
	identity, err := domain.ParsePath(build)
	if err != nil {
		return paths
	}
	if identity.IsRoot() {
		return append(paths, domain.BuildLogPath(l.cacheDir, build))
	}
	for p, ok := identity, true; ok && !p.IsRoot(); p, ok = p.Parent() {
		paths = append(paths, domain.BuildLogPath(l.cacheDir, p.String()))
	}
	return paths
}

// file returns the open handle for path, opening it on first use.
// The caller must hold l.mu.
func (l *Logger) file(path string) (*os.File, error) {
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	// G302: Log files are append-only and need read access by repository users
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files[path] = f
	return f, nil
}

// Close closes every open log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var lastErr error
	for path, f := range l.files {
		if err := f.Close(); err != nil {
			lastErr = err
		}
		delete(l.files, path)
	}
	return lastErr
}

// formatLog renders one entry.
// Format: [2025-12-30 09:32:51] [INFO] [:logic] [session] message
func formatLog(t time.Time, level slog.Level, build, category, msg string) string {
	if build == "" {
		build = treeColumn
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		t.Format("2006-01-02 15:04:05"),
		levelToString(level),
		build,
		category,
		msg,
	)
}

func levelToString(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func (l *Logger) log(level slog.Level, build, category, msg string) {
	if l.cacheDir == "" || level < l.level {
		return
	}

	entry := formatLog(l.now(), level, build, category, msg)

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, path := range l.logPaths(build) {
		if f, err := l.file(path); err == nil {
			_, _ = io.WriteString(f, entry)
		}
	}
}

// Info logs an info message.
func (l *Logger) Info(build, category, msg string) {
	l.log(slog.LevelInfo, build, category, msg)
}

// Debug logs a debug message.
func (l *Logger) Debug(build, category, msg string) {
	l.log(slog.LevelDebug, build, category, msg)
}

// Warn logs a warning message.
func (l *Logger) Warn(build, category, msg string) {
	l.log(slog.LevelWarn, build, category, msg)
}

// Error logs an error message.
func (l *Logger) Error(build, category, msg string) {
	l.log(slog.LevelError, build, category, msg)
}
