package core

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Context keys for batch options
type contextKey string

const (
	runIDKey  contextKey = "runID"
	loggerKey contextKey = "logger"
)

// withRunID sets the batch run id in the context
func withRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// getRunID returns the batch run id from context
func getRunID(ctx context.Context) (string, bool) {
	runID, ok := ctx.Value(runIDKey).(string)
	return runID, ok && runID != ""
}

// withLogger stores a field logger in the context
func withLogger(ctx context.Context, logger logrus.FieldLogger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// loggerFrom returns the context logger, tagged with the run id when present
func loggerFrom(ctx context.Context) logrus.FieldLogger {
	logger, ok := ctx.Value(loggerKey).(logrus.FieldLogger)
	if !ok || logger == nil {
		logger = logrus.StandardLogger()
	}
	if runID, ok := getRunID(ctx); ok {
		return logger.WithField("run_id", runID)
	}
	return logger
}
