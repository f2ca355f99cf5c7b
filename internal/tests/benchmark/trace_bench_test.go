package benchmark

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/veldra/ghosttape/internal/storage/trace"
)

// BenchmarkRecorder_WriteData measures chunk write throughput for
// typical payload sizes.
func BenchmarkRecorder_WriteData(b *testing.B) {
	for _, size := range []int{64, 1024, 16 * 1024} {
		b.Run(fmt.Sprintf("payload_%d", size), func(b *testing.B) {
			dir := b.TempDir()
			identity := benchIdentity(b)
			payload := make([]byte, size)

			rec := trace.NewRecorder()
			if err := rec.Start(filepath.Join(dir, "bench.ghost"), identity, "Bench"); err != nil {
				b.Fatalf("Start: %v", err)
			}
			defer rec.Stop(uint64(b.N), uint64(b.N))

			b.SetBytes(int64(size))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := rec.WriteData(benchPayloadType, payload); err != nil {
					b.Fatalf("WriteData: %v", err)
				}
			}
		})
	}
}

// BenchmarkLoader_ReadData measures sequential chunk reads over a
// prerecorded trace.
func BenchmarkLoader_ReadData(b *testing.B) {
	runWithChunkCounts(b, func(b *testing.B, chunks int) {
		dir := b.TempDir()
		identity := benchIdentity(b)
		path := writeBenchTrace(b, dir, chunks, 1024)

		b.SetBytes(int64(chunks) * 1024)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			loader := trace.NewLoader()
			if err := loader.Load(path, identity); err != nil {
				b.Fatalf("Load: %v", err)
			}
			for {
				chunkType, ok, err := loader.ReadNextType()
				if err != nil {
					b.Fatalf("ReadNextType: %v", err)
				}
				if !ok {
					break
				}
				size, err := loader.PendingSize()
				if err != nil {
					b.Fatalf("PendingSize: %v", err)
				}
				if _, err := loader.ReadData(chunkType, size); err != nil {
					b.Fatalf("ReadData: %v", err)
				}
			}
			loader.Close()
		}
	})
}

// BenchmarkInspect measures header and trailer parsing without reading
// the chunk stream.
func BenchmarkInspect(b *testing.B) {
	dir := b.TempDir()
	path := writeBenchTrace(b, dir, 1000, 1024)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := trace.Inspect(path); err != nil {
			b.Fatalf("Inspect: %v", err)
		}
	}
}
