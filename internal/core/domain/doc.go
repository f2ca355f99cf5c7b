// Package domain defines the core domain models for GhostTape.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - TraceIdentity: The map identity a recorded trace is bound to
//   - TraceInfo: Summary metadata of a finished trace
//   - TraceChunk: One typed, length-delimited unit of recorded data
//   - OwnerName / MapName: Bounded-length validated string fields
//   - Errors: Domain-specific error definitions
//
// Chunk payloads are opaque to this package; their schema is owned by
// the simulation layer that produces and consumes them.
package domain
