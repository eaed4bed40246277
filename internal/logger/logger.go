// Package logger holds the process-wide zerolog instance. The application
// draws the whole terminal, so log output goes to a file only; before Init
// (and in tests) Get returns a logger that discards everything.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

var instance *zerolog.Logger

// Init opens the log file and installs the global logger.
// level is one of "debug", "info", "warn", "error"; anything else means info.
func Init(level string, file string) error {
	var logLevel zerolog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "info":
		logLevel = zerolog.InfoLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	default:
		logLevel = zerolog.InfoLevel
	}

	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return err
	}
	out, err := os.OpenFile(file, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}

	logger := zerolog.New(out).With().Timestamp().Logger().Level(logLevel)
	instance = &logger
	return nil
}

// DefaultPath is the log file location under the user cache directory.
func DefaultPath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, "repopick", "repopick.log"), nil
}

// Get returns the global logger, or a discarding one when Init has not run.
func Get() *zerolog.Logger {
	if instance == nil {
		logger := zerolog.New(io.Discard)
		instance = &logger
	}
	return instance
}
