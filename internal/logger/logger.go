package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"motioncapture/internal/config"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Log file names, one per level.
const (
	InfoFile    = "info.log"
	WarningFile = "warning.log"
	ErrorFile   = "error.log"
)

// Rotation limits for each log file.
const (
	maxSizeMB  = 10
	maxBackups = 3
	maxAgeDays = 14
)

// Logger provides leveled logging (info/warning/error) to files and stdout/stderr.
type Logger struct {
	infoLog    *log.Logger
	warningLog *log.Logger
	errorLog   *log.Logger
	logDir     string
	files      []*lumberjack.Logger
	mu         sync.Mutex
}

// NewLogger creates a Logger in the configured directory and exits if that fails.
func NewLogger(config *config.Config) *Logger {
	l, err := New(config.LogDirectory)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	return l
}

// New creates a Logger writing to dir and the console.
func New(dir string) (*Logger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	l := &Logger{logDir: dir}

	writers := make(map[string]io.Writer, 3)
	for _, name := range []string{InfoFile, WarningFile, ErrorFile} {
		path := filepath.Join(dir, name)
		// Create the file up front so the log endpoints can serve it before the first entry.
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			l.Close()
			return nil, fmt.Errorf("failed to open log file %s: %w", name, err)
		}
		f.Close()

		file := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}
		l.files = append(l.files, file)
		writers[name] = file
	}

	l.infoLog = log.New(io.MultiWriter(os.Stdout, writers[InfoFile]), "ℹ️  INFO    ", log.Ldate|log.Ltime|log.Lshortfile)
	l.warningLog = log.New(io.MultiWriter(os.Stdout, writers[WarningFile]), "⚠️  WARNING ", log.Ldate|log.Ltime|log.Lshortfile)
	l.errorLog = log.New(io.MultiWriter(os.Stderr, writers[ErrorFile]), "❌ ERROR   ", log.Ldate|log.Ltime|log.Lshortfile)
	return l, nil
}

// NewDiscard returns a Logger that drops everything.
func NewDiscard() *Logger {
	return &Logger{
		infoLog:    log.New(io.Discard, "", 0),
		warningLog: log.New(io.Discard, "", 0),
		errorLog:   log.New(io.Discard, "", 0),
	}
}

// Dir returns the directory holding the log files, empty for a discard logger.
func (l *Logger) Dir() string { return l.logDir }

// Info writes a formatted info-level log entry.
func (l *Logger) Info(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infoLog.Output(2, fmt.Sprintf(format, v...))
}

// Warning writes a formatted warning-level log entry.
func (l *Logger) Warning(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warningLog.Output(2, fmt.Sprintf(format, v...))
}

// Error writes a formatted error-level log entry.
func (l *Logger) Error(format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errorLog.Output(2, fmt.Sprintf(format, v...))
}

// CleanLogs truncates the specified log file.
func (l *Logger) CleanLogs(fileName string) error {
	if l.logDir == "" {
		return nil
	}

	filePath := filepath.Join(l.logDir, filepath.Base(fileName))
	file, err := os.OpenFile(filePath, os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		l.Error("Error opening file: %v", err)
		return err
	}
	defer file.Close()

	l.Info("File %s has been cleared.", fileName)
	return nil
}

// Close releases the log files.
func (l *Logger) Close() {
	for _, f := range l.files {
		f.Close()
	}
	l.files = nil
}
