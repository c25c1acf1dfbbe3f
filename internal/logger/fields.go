package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	FieldProvider = "ai_provider"
	FieldModel    = "ai_model"
	FieldJobIndex = "job_index"
	FieldJobRole  = "job_role"
	FieldStep     = "analysis_step"
)

// WithFields attaches fields to the logger, falling back to a no-op logger when nil.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// ProviderFields describes the language model backend. Blank values are skipped.
func ProviderFields(provider, model string) []zap.Field {
	fields := make([]zap.Field, 0, 2)
	if v := strings.TrimSpace(provider); v != "" {
		fields = append(fields, zap.String(FieldProvider, v))
	}
	if v := strings.TrimSpace(model); v != "" {
		fields = append(fields, zap.String(FieldModel, v))
	}
	return fields
}

// JobFields identifies a job posting within an analysis run.
// Jobs are numbered from 1 as they are shown to the user.
func JobFields(index int, role string) []zap.Field {
	fields := []zap.Field{zap.Int(FieldJobIndex, index)}
	if v := strings.TrimSpace(role); v != "" {
		fields = append(fields, zap.String(FieldJobRole, v))
	}
	return fields
}
