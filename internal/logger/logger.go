// Package logger provides leveled logging for bootman.
// Debug and info messages are printed only in verbose mode (--verbose);
// warnings and errors are always printed. The dashboard installs a hook so
// log lines land in its console pane instead of on the terminal.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the severity of a log line.
type Level string

// Log levels.
const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Hook receives every emitted log line. The message has no trailing newline.
type Hook func(level Level, msg string)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	hook    Hook
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer and returns the previous one.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := output
	output = w
	return prev
}

// SetHook routes log lines to h instead of the output writer.
// Passing nil restores writer output.
func SetHook(h Hook) {
	mu.Lock()
	defer mu.Unlock()
	hook = h
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	logf(LevelDebug, true, format, args...)
}

// Info prints an informational message if verbose mode is enabled.
func Info(format string, args ...any) {
	logf(LevelInfo, true, format, args...)
}

// Warn prints a warning message.
func Warn(format string, args ...any) {
	logf(LevelWarn, false, format, args...)
}

// Error prints an error message.
func Error(format string, args ...any) {
	logf(LevelError, false, format, args...)
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if !verbose {
		return
	}
	if hook != nil {
		hook(LevelInfo, "=== "+name+" ===")
		return
	}
	fmt.Fprintf(output, "\n=== %s ===\n", name)
}

func logf(level Level, verboseOnly bool, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verboseOnly && !verbose {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if hook != nil {
		hook(level, msg)
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", level, msg)
}
