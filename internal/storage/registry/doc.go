// Package registry maintains a persistent index of ghost trace files.
//
// The index is backed by Badger and keyed two ways:
//
//   - by file path, holding the full trace record
//   - by map identity, for listing all ghosts recorded on one map
//
// Records are produced by scanning a ghost directory (scan.go) and kept
// current by a filesystem watcher (watcher.go). Files that fail to
// parse or belong to other programs are skipped, never fatal.
package registry
