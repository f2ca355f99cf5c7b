// Package logger provides structured logging for GhostTape.
//
// The package wraps log/slog with JSON and text handlers, a process-wide
// level adjustable at runtime, and context propagation: a recording ID
// placed in a context with WithRecordingID is stamped onto every record
// logged against that context, so the lines of one replay session can
// be correlated without threading the ID through call sites.
package logger
