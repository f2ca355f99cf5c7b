// Package logger provides structured logging for GhostTape.
package logger

import "context"

// contextKey is a type for context keys to avoid collisions.
type contextKey string

const (
	// loggerKey is the context key for the logger.
	loggerKey contextKey = "ghosttape.logger"
	// recordingIDKey is the context key for the recording session ID.
	recordingIDKey contextKey = "ghosttape.recording_id"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context.
// Returns the default logger if none is set.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRecordingID adds a recording session ID to the context.
func WithRecordingID(ctx context.Context, recordingID string) context.Context {
	return context.WithValue(ctx, recordingIDKey, recordingID)
}

// RecordingIDFromContext extracts the recording session ID from context.
func RecordingIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(recordingIDKey).(string); ok {
		return id
	}
	return ""
}

// L returns the context's logger bound to ctx, so the recording ID the
// context carries is stamped onto every record it emits.
func L(ctx context.Context) Logger {
	return FromContext(ctx).WithContext(ctx)
}
