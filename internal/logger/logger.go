// Package logger builds the zap logger shared by all commands.
package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log field names, kept consistent across packages
const (
	FieldRequestID = "request_id"
	FieldNoteID    = "note_id"
	FieldKind      = "kind"
	FieldMessage   = "message"
	FieldCause     = "cause"
	FieldDuration  = "duration"
	FieldTotal     = "total"
	FieldMethod    = "method"
	FieldPath      = "path"
	FieldStatus    = "status"
)

// New creates a logger writing to stderr at the given level.
// development switches to the human-readable console encoder.
func New(level string, development bool) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var cfg zap.Config
	if development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	// stdout carries command output, so logs stay on stderr
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	return cfg.Build()
}
