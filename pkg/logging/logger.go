// Package logging provides per-component debug logging for pagesmith.
// All components of one process append to a session-scoped file under
// ~/.pagesmith/logs/, so a single run can be reconstructed from one file.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Logger writes structured entries tagged with a component name. All levels
// write unconditionally; filtering happens at read time, not write time.
type Logger struct {
	sessionID string
	component string
	file      *os.File
	out       *log.Logger
	mu        sync.Mutex
	path      string
	closeOnce sync.Once
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error
)

// SessionID returns the process-wide session identifier, creating it on
// first use.
func SessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

func initLogDir() error {
	initOnce.Do(func() {
		home, err := os.UserHomeDir()
		if err != nil {
			initErr = fmt.Errorf("resolve home directory: %w", err)
			return
		}
		logDir = filepath.Join(home, ".pagesmith", "logs")
		if err := os.MkdirAll(logDir, 0750); err != nil {
			initErr = fmt.Errorf("create log directory: %w", err)
		}
	})
	return initErr
}

// New creates a logger for one component, appending to the shared session
// log file. When the file cannot be opened it falls back to stderr and
// returns the error alongside the usable fallback logger.
func New(component string) (*Logger, error) {
	if err := initLogDir(); err != nil {
		return fallback(component, err), err
	}

	path := filepath.Join(logDir, SessionID()+".log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		err = fmt.Errorf("open log file: %w", err)
		return fallback(component, err), err
	}

	return &Logger{
		sessionID: SessionID(),
		component: component,
		file:      file,
		out:       log.New(file, "", 0),
		path:      path,
	}, nil
}

func fallback(component string, err error) *Logger {
	out := log.New(os.Stderr, fmt.Sprintf("[%s] ", component), log.LstdFlags)
	out.Printf("file logging unavailable, using stderr: %v", err)
	return &Logger{
		sessionID: SessionID(),
		component: component,
		out:       out,
	}
}

func (l *Logger) write(level, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ts := time.Now().Format("2006-01-02 15:04:05.000")
	l.out.Printf("[%s] [%s] [%s] %s", ts, l.component, level, fmt.Sprintf(format, v...))
}

// Debugf logs a debug-level message.
func (l *Logger) Debugf(format string, v ...interface{}) { l.write("DEBUG", format, v...) }

// Infof logs an info-level message.
func (l *Logger) Infof(format string, v ...interface{}) { l.write("INFO", format, v...) }

// Warnf logs a warning-level message.
func (l *Logger) Warnf(format string, v ...interface{}) { l.write("WARN", format, v...) }

// Errorf logs an error-level message.
func (l *Logger) Errorf(format string, v ...interface{}) { l.write("ERROR", format, v...) }

// Path returns the log file path, empty in fallback mode.
func (l *Logger) Path() string { return l.path }

// Close closes the log file. Safe to call multiple times.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.file != nil {
			err = l.file.Close()
		}
	})
	return err
}
