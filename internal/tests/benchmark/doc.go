// Package benchmark contains cross-package benchmarks for the ghost
// trace pipeline: recording, loading, identity computation, and the
// registry index.
//
// Run with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/
package benchmark
