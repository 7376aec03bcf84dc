// Package logger writes the run log. Console output stays reserved for
// the final summary, so everything the harness does while driving the
// browser goes to a file that can be attached to a bug report.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

var (
	mu      sync.Mutex
	sink    *log.Logger
	logFile *os.File
)

// Init opens (or creates) the run log at logPath, creating parent
// directories as needed. Until Init is called, log calls are dropped.
func Init(logPath string) error {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
	}

	if dir := filepath.Dir(logPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	logFile = f
	sink = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	return nil
}

// Close flushes and closes the run log.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
		sink = nil
	}
}

// Info logs an info message.
func Info(format string, v ...interface{}) { write("INFO", format, v...) }

// Debug logs a debug message.
func Debug(format string, v ...interface{}) { write("DEBUG", format, v...) }

// Warn logs a warning message.
func Warn(format string, v ...interface{}) { write("WARN", format, v...) }

// Error logs an error message.
func Error(format string, v ...interface{}) { write("ERROR", format, v...) }

func write(level, format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()

	if sink != nil {
		sink.Printf("["+level+"] "+format, v...)
	}
}
