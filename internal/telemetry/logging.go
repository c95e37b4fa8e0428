// Package telemetry provides the structured logger and Prometheus metrics
// shared by batch runs and the HTTP server.
package telemetry

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Fields represents structured logging fields.
type Fields = logrus.Fields

// Log formats supported by NewLogger.
const (
	JSONFormat = "json"
	TextFormat = "text"
)

// ParseLevel maps a level name to a logrus level. Unknown names mean info.
func ParseLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "warn", "warning":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return logrus.InfoLevel
	}
}

// NewLogger creates a logger writing to stderr, so stdout stays free for
// tables, JSON results and the MCP stdio transport.
func NewLogger(level, format string) *logrus.Logger {
	return NewLoggerTo(os.Stderr, level, format)
}

// NewLoggerTo creates a logger writing to out.
func NewLoggerTo(out io.Writer, level, format string) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)
	if strings.EqualFold(format, TextFormat) {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, DisableColors: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	logger.SetLevel(ParseLevel(level))
	return logger
}

// WithService tags every entry with the service name.
func WithService(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("service", name)
}

// Discard returns a logger that drops everything. Tests use it.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
