// Package registry maintains a persistent index of ghost trace files.
package registry

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/storage/trace"
)

// ScanResult summarizes one directory scan.
type ScanResult struct {
	// Indexed is the number of trace files added or refreshed.
	Indexed int
	// Skipped is the number of files that failed to parse.
	Skipped int
	// SkippedCorrupt, SkippedUnsupported, and SkippedIO break Skipped
	// down by failure class.
	SkippedCorrupt     int
	SkippedUnsupported int
	SkippedIO          int
	// Removed is the number of stale records pruned.
	Removed int
	// Elapsed is the wall time of the scan.
	Elapsed time.Duration
}

// ScanDir walks dir for ghost trace files and brings the index in sync
// with what is on disk. Files that fail to parse are skipped and
// counted; records for files that no longer exist are pruned.
func (r *Registry) ScanDir(ctx context.Context, dir string) (ScanResult, error) {
	start := time.Now()
	var result ScanResult

	seen := make(map[string]struct{})

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() || !strings.HasSuffix(path, trace.FileExtension) {
			return nil
		}

		seen[path] = struct{}{}
		if err := r.IndexFile(path); err != nil {
			r.logger.Warn("skipping unreadable trace file", "path", path, "error", err)
			result.Skipped++
			switch {
			case errors.Is(err, domain.ErrCorruptFile):
				result.SkippedCorrupt++
			case errors.Is(err, domain.ErrUnsupportedSchema):
				result.SkippedUnsupported++
			default:
				result.SkippedIO++
			}
			r.skipped.Add(1)
			return nil
		}
		result.Indexed++
		return nil
	})
	if err != nil {
		return result, err
	}

	// Prune records for files that vanished from this directory.
	records, err := r.List()
	if err != nil {
		return result, err
	}
	for _, rec := range records {
		if !strings.HasPrefix(rec.Path, dir+string(os.PathSeparator)) {
			continue
		}
		if _, ok := seen[rec.Path]; ok {
			continue
		}
		if err := r.Delete(rec.Path); err != nil {
			return result, err
		}
		result.Removed++
	}

	result.Elapsed = time.Since(start)
	r.logger.Info("ghost directory scanned",
		"dir", dir,
		"indexed", result.Indexed,
		"skipped", result.Skipped,
		"removed", result.Removed,
		"elapsed", result.Elapsed)
	return result, nil
}

// IndexFile inspects one trace file and stores its record.
func (r *Registry) IndexFile(path string) error {
	identity, info, err := trace.Inspect(path)
	if err != nil {
		return err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return err
	}

	rec := Record{
		Path:              path,
		Owner:             string(info.Owner),
		MapName:           string(info.MapName),
		MapLegacyChecksum: identity.MapLegacyChecksum,
		TickCount:         info.TickCount,
		ElapsedTimeMs:     info.ElapsedTimeMs,
		FileSize:          stat.Size(),
		IndexedAt:         time.Now().UTC(),
	}
	if !identity.MapContentHash.IsZero() {
		rec.MapContentHash = identity.MapContentHash.String()
	}

	return r.Put(rec)
}
