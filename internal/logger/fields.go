package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldRunID correlates every log line of one invocation.
	FieldRunID = "run_id"
	// FieldSource is the source identifier, e.g. "lever:acme".
	FieldSource = "source"
	// FieldRecord identifies a single listing inside a source payload.
	FieldRecord = "record"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger, defaulting
// to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// WithRun attaches the run id to the logger.
func WithRun(logger *zap.Logger, runID string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldRunID, Value: runID})...)
}

// WithSource attaches the source identifier to the logger.
func WithSource(logger *zap.Logger, source string) *zap.Logger {
	return WithFields(logger, StringFields(StringField{Key: FieldSource, Value: source})...)
}
