package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// LogLevel represents the logging level
type LogLevel string

const (
	// LogLevelQuiet suppresses all output except errors
	LogLevelQuiet LogLevel = "quiet"
	// LogLevelNormal shows standard operational messages
	LogLevelNormal LogLevel = "normal"
	// LogLevelVerbose shows detailed operational information
	LogLevelVerbose LogLevel = "verbose"
	// LogLevelDebug shows all debug information
	LogLevelDebug LogLevel = "debug"
)

// Logger provides structured logging capabilities
type Logger struct {
	logger *logrus.Logger
	level  LogLevel
}

// Config holds logger configuration
type Config struct {
	Level   LogLevel
	Output  io.Writer
	Format  string // "text" or "json"
	LogFile string
}

// NewLogger creates a new logger with the specified configuration
func NewLogger(config Config) (*Logger, error) {
	logger := logrus.New()

	if config.Output != nil {
		logger.SetOutput(config.Output)
	} else {
		logger.SetOutput(os.Stderr)
	}

	switch config.Format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339,
		})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
		})
	}

	switch config.Level {
	case LogLevelQuiet:
		logger.SetLevel(logrus.ErrorLevel)
	case LogLevelNormal:
		logger.SetLevel(logrus.InfoLevel)
	case LogLevelVerbose:
		logger.SetLevel(logrus.DebugLevel)
	case LogLevelDebug:
		logger.SetLevel(logrus.TraceLevel)
	default:
		logger.SetLevel(logrus.InfoLevel)
	}

	if config.LogFile != "" {
		file, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", config.LogFile, err)
		}

		if config.Output == nil {
			logger.SetOutput(io.MultiWriter(os.Stderr, file))
		} else {
			logger.SetOutput(io.MultiWriter(config.Output, file))
		}
	}

	return &Logger{
		logger: logger,
		level:  config.Level,
	}, nil
}

// NewDefaultLogger creates a logger with default configuration
func NewDefaultLogger() *Logger {
	logger, _ := NewLogger(Config{
		Level:  LogLevelNormal,
		Output: os.Stderr,
		Format: "text",
	})
	return logger
}

// WithFields returns a logger entry with additional fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.logger.WithFields(fields)
}

// WithField returns a logger entry with a single additional field
func (l *Logger) WithField(key string, value interface{}) *logrus.Entry {
	return l.logger.WithField(key, value)
}

// Vault operation logging methods

// LogBackupCreated logs a successful definition capture
func (l *Logger) LogBackupCreated(backupID, objectName, objectType, operation string, size int) {
	l.logger.WithFields(logrus.Fields{
		"operation":   "backup_create",
		"backup_id":   backupID,
		"object_name": objectName,
		"object_type": objectType,
		"reason":      operation,
		"bytes":       size,
	}).Info("Backup created")
}

// LogBackupFailed logs a failed definition capture
func (l *Logger) LogBackupFailed(objectName, objectType string, err error) {
	l.logger.WithFields(logrus.Fields{
		"operation":   "backup_create",
		"object_name": objectName,
		"object_type": objectType,
		"error":       err.Error(),
	}).Error("Backup failed")
}

// LogEviction logs removal of entries past the per-object retention cap
func (l *Logger) LogEviction(objectName string, removed int, maxBackups int) {
	l.logger.WithFields(logrus.Fields{
		"operation":   "eviction",
		"object_name": objectName,
		"removed":     removed,
		"max_backups": maxBackups,
	}).Debug("Evicted excess backups")
}

// LogCleanup logs age-based cleanup results
func (l *Logger) LogCleanup(days int, removed int, duration time.Duration) {
	l.logger.WithFields(logrus.Fields{
		"operation": "cleanup",
		"days":      days,
		"removed":   removed,
		"duration":  duration.String(),
	}).Info("Cleanup completed")
}

// LogArchiveExport logs archive export results
func (l *Logger) LogArchiveExport(destination string, entries int, compressed int64, err error) {
	fields := logrus.Fields{
		"operation":   "archive_export",
		"destination": destination,
		"entries":     entries,
		"bytes":       compressed,
	}

	if err != nil {
		fields["error"] = err.Error()
		l.logger.WithFields(fields).Error("Archive export failed")
	} else {
		l.logger.WithFields(fields).Info("Archive exported")
	}
}

// Standard logging methods

// Info logs an info message
func (l *Logger) Info(msg string) {
	l.logger.Info(msg)
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.logger.Infof(format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(msg string) {
	l.logger.Debug(msg)
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.logger.Debugf(format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(msg string) {
	l.logger.Warn(msg)
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.logger.Warnf(format, args...)
}

// Error logs an error message
func (l *Logger) Error(msg string) {
	l.logger.Error(msg)
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.logger.Errorf(format, args...)
}

// GetLevel returns the configured log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// SetOutput changes the logger output destination
func (l *Logger) SetOutput(w io.Writer) {
	l.logger.SetOutput(w)
}
