// Package cmap provides a concurrent-safe sharded map keyed by string.
//
// It uses sharding to reduce lock contention under concurrent access,
// such as the registry's read cache being hit by the watcher and query
// surfaces at the same time.
package cmap
