// Package registry maintains a persistent index of ghost trace files.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/badger/v3"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/telemetry/logger"
	"github.com/veldra/ghosttape/pkg/cmap"
)

// Common errors
var (
	ErrNotFound = errors.New("registry: trace not found")
	ErrClosed   = errors.New("registry: closed")
)

// Key prefixes. Trace records live under "t/<path>"; the map index
// under "m/<mapKey>/<path>" with an empty value.
const (
	tracePrefix = "t/"
	mapPrefix   = "m/"
)

// Record is one indexed trace file.
type Record struct {
	Path              string    `json:"path"`
	Owner             string    `json:"owner"`
	MapName           string    `json:"map_name"`
	MapContentHash    string    `json:"map_content_hash,omitempty"`
	MapLegacyChecksum uint32    `json:"map_legacy_checksum"`
	TickCount         uint64    `json:"tick_count"`
	ElapsedTimeMs     uint64    `json:"elapsed_time_ms"`
	FileSize          int64     `json:"file_size"`
	IndexedAt         time.Time `json:"indexed_at"`
}

// Identity reconstructs the map identity stored in the record.
func (r Record) Identity() (domain.TraceIdentity, error) {
	name, err := domain.NewMapName(r.MapName)
	if err != nil {
		return domain.TraceIdentity{}, err
	}
	identity := domain.TraceIdentity{
		MapName:           name,
		MapLegacyChecksum: r.MapLegacyChecksum,
	}
	if r.MapContentHash != "" {
		identity.MapContentHash, err = domain.ParseContentHash(r.MapContentHash)
		if err != nil {
			return domain.TraceIdentity{}, err
		}
	}
	return identity, nil
}

// Config holds registry configuration.
type Config struct {
	// Dir is the Badger data directory.
	Dir string
	// SyncWrites forces fsync on every write.
	SyncWrites bool
	// GCInterval is the value log GC period. Zero disables GC.
	GCInterval time.Duration
}

// DefaultConfig returns a default registry configuration.
func DefaultConfig(dir string) Config {
	return Config{
		Dir:        dir,
		SyncWrites: false,
		GCInterval: 10 * time.Minute,
	}
}

// Registry is a Badger-backed index of ghost trace files.
type Registry struct {
	db     *badger.DB
	logger logger.Logger

	// cache holds recently read records so watcher callbacks and query
	// surfaces do not hit Badger for every lookup.
	cache *cmap.Map[Record]

	skipped atomic.Uint64

	stopCh chan struct{}
	doneCh chan struct{}
}

// Open opens (or creates) the registry database.
func Open(cfg Config, log logger.Logger) (*Registry, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("registry: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions(cfg.Dir)
	opts.Logger = &badgerLogger{logger: log}
	opts.SyncWrites = cfg.SyncWrites

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("registry: open db: %w", err)
	}

	r := &Registry{
		db:     db,
		logger: log,
		cache:  cmap.New[Record](),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go r.gcLoop(cfg.GCInterval)

	log.Info("ghost registry opened", "dir", cfg.Dir)
	return r, nil
}

// Close shuts down the registry database.
func (r *Registry) Close() error {
	close(r.stopCh)
	<-r.doneCh

	if err := r.db.Close(); err != nil {
		return fmt.Errorf("registry: close db: %w", err)
	}
	r.logger.Info("ghost registry closed")
	return nil
}

// Put stores or replaces the record for rec.Path and updates the map
// index entry.
func (r *Registry) Put(rec Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("registry: marshal record: %w", err)
	}

	// A reindexed file may have moved to a different map identity.
	old, err := r.Get(rec.Path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	if err == nil && mapKeyFor(old) != mapKeyFor(rec) {
		if err := r.db.Update(func(txn *badger.Txn) error {
			return txn.Delete(mapKey(mapKeyFor(old), old.Path))
		}); err != nil {
			return err
		}
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(traceKey(rec.Path), raw); err != nil {
			return err
		}
		return txn.Set(mapKey(mapKeyFor(rec), rec.Path), nil)
	})
	if err != nil {
		return err
	}

	r.cache.Set(rec.Path, rec)
	return nil
}

// Get returns the record for path, or ErrNotFound.
func (r *Registry) Get(path string) (Record, error) {
	if rec, ok := r.cache.Get(path); ok {
		return rec, nil
	}

	var rec Record
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(traceKey(path))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil {
		return Record{}, err
	}

	r.cache.Set(path, rec)
	return rec, nil
}

// Delete removes the record for path and its map index entry. Deleting
// an unknown path is not an error.
func (r *Registry) Delete(path string) error {
	rec, err := r.Get(path)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	err = r.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(traceKey(path)); err != nil {
			return err
		}
		return txn.Delete(mapKey(mapKeyFor(rec), path))
	})
	if err != nil {
		return err
	}

	r.cache.Delete(path)
	return nil
}

// List returns all indexed records.
func (r *Registry) List() ([]Record, error) {
	var records []Record
	err := r.scan([]byte(tracePrefix), func(_, val []byte) error {
		var rec Record
		if err := json.Unmarshal(val, &rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ListByMap returns all records whose stored identity matches the given
// map identity key.
func (r *Registry) ListByMap(identity domain.TraceIdentity) ([]Record, error) {
	prefix := []byte(mapPrefix + identityKey(identity) + "/")

	var paths []string
	err := r.scan(prefix, func(key, _ []byte) error {
		paths = append(paths, string(key[len(prefix):]))
		return nil
	})
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(paths))
	for _, path := range paths {
		rec, err := r.Get(path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Stats is a point-in-time summary of the index.
type Stats struct {
	Traces  int
	Maps    int
	Skipped uint64
}

// Stats counts indexed traces and distinct map identities.
func (r *Registry) Stats() (Stats, error) {
	stats := Stats{Skipped: r.skipped.Load()}

	maps := make(map[string]struct{})
	err := r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			key := string(it.Item().Key())
			switch {
			case strings.HasPrefix(key, tracePrefix):
				stats.Traces++
			case strings.HasPrefix(key, mapPrefix):
				rest := key[len(mapPrefix):]
				if i := strings.IndexByte(rest, '/'); i > 0 {
					maps[rest[:i]] = struct{}{}
				}
			}
		}
		return nil
	})
	if err != nil {
		return Stats{}, err
	}

	stats.Maps = len(maps)
	return stats, nil
}

// scan iterates all keys with the given prefix.
func (r *Registry) scan(prefix []byte, fn func(key, val []byte) error) error {
	return r.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

// gcLoop runs periodic Badger value log garbage collection.
func (r *Registry) gcLoop(interval time.Duration) {
	defer close(r.doneCh)

	if interval <= 0 {
		<-r.stopCh
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			for {
				if err := r.db.RunValueLogGC(0.5); err != nil {
					if !errors.Is(err, badger.ErrNoRewrite) {
						r.logger.Error("registry gc failed", "error", err)
					}
					break
				}
			}
		case <-r.stopCh:
			return
		}
	}
}

func traceKey(path string) []byte {
	return []byte(tracePrefix + path)
}

func mapKey(mapKey, path string) []byte {
	return []byte(mapPrefix + mapKey + "/" + path)
}

// mapKeyFor derives the map index key from a stored record.
func mapKeyFor(rec Record) string {
	if rec.MapContentHash != "" {
		return rec.MapContentHash
	}
	return fmt.Sprintf("crc-%08x", rec.MapLegacyChecksum)
}

// identityKey derives the map index key from a live identity.
func identityKey(identity domain.TraceIdentity) string {
	if !identity.MapContentHash.IsZero() {
		return identity.MapContentHash.String()
	}
	return fmt.Sprintf("crc-%08x", identity.MapLegacyChecksum)
}

// badgerLogger adapts the application logger to Badger's Logger
// interface.
type badgerLogger struct {
	logger logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Info(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}
