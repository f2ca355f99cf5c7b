package indexd

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
)

// Context keys for request-scoped values.
type contextKey string

// ContextKeyRequestID is the context key for the request ID.
const ContextKeyRequestID contextKey = "request_id"

// Middleware wraps an http.Handler with additional functionality.
type Middleware func(http.Handler) http.Handler

// Chain chains multiple middlewares together.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// RequestID adds a unique request ID to each request.
func RequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = "req-" + ulid.Make().String()
			}

			w.Header().Set("X-Request-ID", requestID)

			ctx := context.WithValue(r.Context(), ContextKeyRequestID, requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Recover recovers from handler panics and returns a 500 error.
func Recover(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.Error("panic recovered",
						"error", err,
						"path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, "GT-SYS-5000", "internal server error")
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// LogRequests logs each completed request with its status and timing.
func LogRequests(log logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapped, r)

			attrs := []any{
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapped.statusCode,
				"duration_ms", time.Since(start).Milliseconds(),
			}
			if wrapped.statusCode >= 500 {
				log.Error("request completed with error", attrs...)
			} else {
				log.Info("request completed", attrs...)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// handler assembles the daemon's HTTP surface: metrics, health, and
// the trace query API.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", s.metrics.Handler())
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /v1/traces", s.handleTraces)
	mux.HandleFunc("GET /v1/stats", s.handleStats)

	return Chain(mux, RequestID(), Recover(s.log), LogRequests(s.log))
}

// handleHealth handles GET /healthz.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleTraces handles GET /v1/traces. Without parameters it lists all
// indexed traces; map_hash (64 hex chars) or map_crc (hex) restricts
// the result to traces bound to that map identity.
func (s *Server) handleTraces(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	mapHash := query.Get("map_hash")
	mapCRC := query.Get("map_crc")

	if mapHash == "" && mapCRC == "" {
		records, err := s.registry.List()
		if err != nil {
			writeError(w, http.StatusInternalServerError, "GT-SYS-5001", err.Error())
			return
		}
		writeJSON(w, http.StatusOK, records)
		return
	}

	var identity domain.TraceIdentity
	switch {
	case mapHash != "":
		hash, err := domain.ParseContentHash(mapHash)
		if err != nil {
			writeError(w, http.StatusBadRequest, "GT-ARG-1000", "invalid map_hash")
			return
		}
		identity.MapContentHash = hash
	default:
		crc, err := strconv.ParseUint(mapCRC, 16, 32)
		if err != nil {
			writeError(w, http.StatusBadRequest, "GT-ARG-1000", "invalid map_crc")
			return
		}
		identity.MapLegacyChecksum = uint32(crc)
	}

	records, err := s.registry.ListByMap(identity)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "GT-SYS-5001", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// handleStats handles GET /v1/stats.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	stats, err := s.registry.Stats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "GT-SYS-5001", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"traces":  stats.Traces,
		"maps":    stats.Maps,
		"skipped": stats.Skipped,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Error-Code", code)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"code":    code,
		"message": message,
	})
}
