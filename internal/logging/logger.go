// Package logging configures the logrus logger shared by the HTTP API, the
// MCP server and the CLI, and carries correlation IDs through contexts.
package logging

import (
	"context"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Log formats
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Redacted replaces sensitive values in sanitized fields
const Redacted = "[REDACTED]"

type correlationKey struct{}

// sensitivePatterns marks parameter keys that identify a patient
var sensitivePatterns = []string{
	"birth", "diagnosis_date", "patient", "password", "token", "secret", "auth",
}

// New creates a logger writing to stderr. Unknown levels fall back to info;
// any format other than "text" yields JSON.
func New(level, format string) *logrus.Logger {
	return NewWithOutput(level, format, os.Stderr)
}

// NewWithOutput creates a logger writing to out
func NewWithOutput(level, format string, out io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(out)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	logger.SetLevel(lvl)

	if strings.EqualFold(format, FormatText) {
		logger.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: time.RFC3339Nano,
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime:  "timestamp",
				logrus.FieldKeyLevel: "level",
				logrus.FieldKeyMsg:   "message",
			},
		})
	}
	return logger
}

// Discard returns a logger that drops every entry
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// NewCorrelationID returns a fresh correlation ID
func NewCorrelationID() string {
	return uuid.New().String()
}

// WithCorrelationID stores id in ctx
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

// CorrelationID returns the correlation ID stored in ctx, or ""
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationKey{}).(string); ok {
		return id
	}
	return ""
}

// FromContext returns an entry tagged with the context's correlation ID
func FromContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	entry := logrus.NewEntry(logger)
	if id := CorrelationID(ctx); id != "" {
		entry = entry.WithField("correlation_id", id)
	}
	return entry
}

// SanitizeFields copies params into log fields with patient identifiers redacted
func SanitizeFields(params map[string]interface{}) logrus.Fields {
	fields := make(logrus.Fields, len(params))
	for k, v := range params {
		fields[k] = sanitizeField(k, v)
	}
	return fields
}

func sanitizeField(key string, value interface{}) interface{} {
	lowerKey := strings.ToLower(key)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerKey, pattern) {
			return Redacted
		}
	}

	if str, ok := value.(string); ok && len(str) > 1000 {
		return str[:1000] + "... [TRUNCATED]"
	}
	return value
}
