package benchmark

import (
	"fmt"
	"io"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/mapident"
	"github.com/veldra/ghosttape/internal/storage/trace"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
)

// ChunkCounts defines the per-trace chunk counts for benchmarking.
var ChunkCounts = []int{100, 1000, 10000}

// benchPayloadType is the chunk type used for benchmark payloads.
const benchPayloadType domain.ChunkType = 1

// benchIdentity computes a fixed map identity for benchmarks.
func benchIdentity(b *testing.B) domain.TraceIdentity {
	b.Helper()

	name, err := domain.NewMapName("BenchMap")
	if err != nil {
		b.Fatalf("NewMapName: %v", err)
	}
	return mapident.Compute(name, benchMapBytes())
}

// benchMapBytes returns deterministic pseudo map content.
func benchMapBytes() []byte {
	rng := rand.New(rand.NewSource(42))
	buf := make([]byte, 64*1024)
	rng.Read(buf)
	return buf
}

// writeBenchTrace records a trace with the given number of fixed-size
// chunks and returns its path.
func writeBenchTrace(b *testing.B, dir string, chunks, chunkSize int) string {
	b.Helper()

	path := filepath.Join(dir, fmt.Sprintf("bench-%d.ghost", chunks))
	payload := make([]byte, chunkSize)

	rec := trace.NewRecorder()
	if err := rec.Start(path, benchIdentity(b), "Bench"); err != nil {
		b.Fatalf("Start: %v", err)
	}
	for i := 0; i < chunks; i++ {
		if err := rec.WriteData(benchPayloadType, payload); err != nil {
			b.Fatalf("WriteData: %v", err)
		}
	}
	if err := rec.Stop(uint64(chunks), uint64(chunks)*16); err != nil {
		b.Fatalf("Stop: %v", err)
	}
	return path
}

// quietLogger returns a logger that discards all output.
func quietLogger(b *testing.B) logger.Logger {
	b.Helper()

	l, err := logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
	if err != nil {
		b.Fatalf("logger.New: %v", err)
	}
	return l
}

// runWithChunkCounts runs a benchmark function for each chunk count.
func runWithChunkCounts(b *testing.B, benchFn func(b *testing.B, chunks int)) {
	for _, chunks := range ChunkCounts {
		b.Run(fmt.Sprintf("chunks_%d", chunks), func(b *testing.B) {
			benchFn(b, chunks)
		})
	}
}
