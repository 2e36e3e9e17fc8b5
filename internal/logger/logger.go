package logger

import (
	"io"

	"github.com/aleister1102/grcdigest/internal/config"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Logger represents the main logger with configuration
type Logger struct {
	zerolog zerolog.Logger
	config  LoggerConfig
	closers []io.Closer
}

// GetZerolog returns the underlying zerolog instance
func (l *Logger) GetZerolog() *zerolog.Logger {
	return &l.zerolog
}

// GetConfig returns the effective configuration
func (l *Logger) GetConfig() LoggerConfig {
	return l.config
}

// Close releases file writers
func (l *Logger) Close() error {
	var firstErr error
	for _, c := range l.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// New creates the process logger and installs it as the zerolog global logger.
// Call it once at process start.
func New(cfg config.LogConfig) (*Logger, error) {
	return NewWithRunID(cfg, "")
}

// NewWithRunID is New with log files grouped under the given run ID
func NewWithRunID(cfg config.LogConfig, runID string) (*Logger, error) {
	logger, err := NewLoggerBuilder().
		WithConfig(cfg).
		WithRunID(runID).
		Build()
	if err != nil {
		return nil, err
	}
	zlog.Logger = logger.zerolog
	return logger, nil
}
