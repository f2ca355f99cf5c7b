package registry

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/mapident"
	"github.com/veldra/ghosttape/internal/storage/trace"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
)

func quietLogger(t *testing.T) logger.Logger {
	t.Helper()
	l, err := logger.New(logger.Config{Level: "error", Format: "json", Output: io.Discard})
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	return l
}

func openTestRegistry(t *testing.T) *Registry {
	t.Helper()
	cfg := DefaultConfig(t.TempDir())
	cfg.GCInterval = 0

	r, err := Open(cfg, quietLogger(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func writeGhost(t *testing.T, dir, name, mapName string, mapBytes []byte, owner string, ticks, elapsedMs uint64) string {
	t.Helper()

	mn, err := domain.NewMapName(mapName)
	if err != nil {
		t.Fatalf("NewMapName: %v", err)
	}
	on, err := domain.NewOwnerName(owner)
	if err != nil {
		t.Fatalf("NewOwnerName: %v", err)
	}
	identity := mapident.Compute(mn, mapBytes)

	path := filepath.Join(dir, name)
	rec := trace.NewRecorder()
	if err := rec.Start(path, identity, on); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := rec.WriteData(1, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("WriteData: %v", err)
	}
	if err := rec.Stop(ticks, elapsedMs); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	return path
}

func TestRegistry_PutGetDelete(t *testing.T) {
	r := openTestRegistry(t)

	rec := Record{
		Path:              "/ghosts/run1.ghost",
		Owner:             "Alice",
		MapName:           "Map1",
		MapContentHash:    "aa11",
		MapLegacyChecksum: 0xDEADBEEF,
		TickCount:         120,
		ElapsedTimeMs:     2400,
		FileSize:          512,
		IndexedAt:         time.Now().UTC(),
	}
	if err := r.Put(rec); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := r.Get(rec.Path)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Owner != "Alice" || got.TickCount != 120 || got.MapLegacyChecksum != 0xDEADBEEF {
		t.Fatalf("record = %+v", got)
	}

	if err := r.Delete(rec.Path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := r.Get(rec.Path); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete err = %v, want ErrNotFound", err)
	}

	// Deleting an unknown path is not an error.
	if err := r.Delete("/ghosts/never-indexed.ghost"); err != nil {
		t.Fatalf("Delete unknown: %v", err)
	}
}

func TestRegistry_ScanDir(t *testing.T) {
	r := openTestRegistry(t)
	ghostDir := t.TempDir()

	writeGhost(t, ghostDir, "a.ghost", "Map1", []byte("map one"), "Alice", 10, 160)
	writeGhost(t, ghostDir, "b.ghost", "Map2", []byte("map two"), "Bob", 20, 320)

	// A foreign file with the ghost extension must be skipped.
	junk := filepath.Join(ghostDir, "junk.ghost")
	if err := os.WriteFile(junk, []byte("not a trace"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// Non-ghost files are ignored outright.
	if err := os.WriteFile(filepath.Join(ghostDir, "readme.txt"), []byte("hi"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	result, err := r.ScanDir(context.Background(), ghostDir)
	if err != nil {
		t.Fatalf("ScanDir: %v", err)
	}
	if result.Indexed != 2 {
		t.Errorf("Indexed = %d, want 2", result.Indexed)
	}
	if result.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", result.Skipped)
	}

	rec, err := r.Get(filepath.Join(ghostDir, "a.ghost"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.Owner != "Alice" || rec.MapName != "Map1" || rec.TickCount != 10 {
		t.Fatalf("record = %+v", rec)
	}
	if rec.MapContentHash == "" {
		t.Error("record missing content hash")
	}
}

func TestRegistry_ScanDir_PrunesRemoved(t *testing.T) {
	r := openTestRegistry(t)
	ghostDir := t.TempDir()

	pathA := writeGhost(t, ghostDir, "a.ghost", "Map1", []byte("map one"), "Alice", 10, 160)
	writeGhost(t, ghostDir, "b.ghost", "Map1", []byte("map one"), "Bob", 20, 320)

	if _, err := r.ScanDir(context.Background(), ghostDir); err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	if err := os.Remove(pathA); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	result, err := r.ScanDir(context.Background(), ghostDir)
	if err != nil {
		t.Fatalf("rescan: %v", err)
	}
	if result.Removed != 1 {
		t.Errorf("Removed = %d, want 1", result.Removed)
	}
	if _, err := r.Get(pathA); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get pruned err = %v, want ErrNotFound", err)
	}
}

func TestRegistry_ListByMap(t *testing.T) {
	r := openTestRegistry(t)
	ghostDir := t.TempDir()

	writeGhost(t, ghostDir, "a.ghost", "Map1", []byte("map one"), "Alice", 10, 160)
	writeGhost(t, ghostDir, "b.ghost", "Map1", []byte("map one"), "Bob", 20, 320)
	writeGhost(t, ghostDir, "c.ghost", "Map2", []byte("map two"), "Cara", 30, 480)

	if _, err := r.ScanDir(context.Background(), ghostDir); err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	mn, _ := domain.NewMapName("Map1")
	identity := mapident.Compute(mn, []byte("map one"))

	records, err := r.ListByMap(identity)
	if err != nil {
		t.Fatalf("ListByMap: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("ListByMap returned %d records, want 2", len(records))
	}
	for _, rec := range records {
		if rec.MapName != "Map1" {
			t.Errorf("record for wrong map: %+v", rec)
		}
	}

	// A revised map with the same name has a different identity key.
	revised := mapident.Compute(mn, []byte("map one, revised"))
	records, err = r.ListByMap(revised)
	if err != nil {
		t.Fatalf("ListByMap revised: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("ListByMap revised returned %d records, want 0", len(records))
	}
}

func TestRegistry_Stats(t *testing.T) {
	r := openTestRegistry(t)
	ghostDir := t.TempDir()

	writeGhost(t, ghostDir, "a.ghost", "Map1", []byte("map one"), "Alice", 10, 160)
	writeGhost(t, ghostDir, "b.ghost", "Map2", []byte("map two"), "Bob", 20, 320)
	if err := os.WriteFile(filepath.Join(ghostDir, "junk.ghost"), []byte("junk"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if _, err := r.ScanDir(context.Background(), ghostDir); err != nil {
		t.Fatalf("ScanDir: %v", err)
	}

	stats, err := r.Stats()
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Traces != 2 {
		t.Errorf("Traces = %d, want 2", stats.Traces)
	}
	if stats.Maps != 2 {
		t.Errorf("Maps = %d, want 2", stats.Maps)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
}

func TestRecord_Identity(t *testing.T) {
	mn, _ := domain.NewMapName("Map1")
	identity := mapident.Compute(mn, []byte("map one"))

	rec := Record{
		MapName:           "Map1",
		MapContentHash:    identity.MapContentHash.String(),
		MapLegacyChecksum: identity.MapLegacyChecksum,
	}

	got, err := rec.Identity()
	if err != nil {
		t.Fatalf("Identity: %v", err)
	}
	if got != identity {
		t.Fatalf("identity = %+v, want %+v", got, identity)
	}

	// Legacy record without a content hash.
	legacy := Record{MapName: "Map1", MapLegacyChecksum: identity.MapLegacyChecksum}
	got, err = legacy.Identity()
	if err != nil {
		t.Fatalf("Identity legacy: %v", err)
	}
	if !got.MapContentHash.IsZero() {
		t.Error("legacy identity should have zero content hash")
	}
}

func TestWatcher(t *testing.T) {
	r := openTestRegistry(t)
	ghostDir := t.TempDir()

	w, err := NewWatcher(r, quietLogger(t))
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if err := w.Watch(ghostDir); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	w.StartAsync()

	path := writeGhost(t, ghostDir, "live.ghost", "Map1", []byte("map one"), "Alice", 10, 160)

	waitFor(t, 5*time.Second, func() bool {
		_, err := r.Get(path)
		return err == nil
	}, "trace was not indexed after create")

	if err := os.Remove(path); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	waitFor(t, 5*time.Second, func() bool {
		_, err := r.Get(path)
		return errors.Is(err, ErrNotFound)
	}, "trace was not dropped after remove")
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}
