// Package indexd wires together the ghost index daemon.
//
// The daemon keeps a Badger-backed index of a ghost directory current:
// an initial full scan, a filesystem watcher for live updates, and an
// optional periodic rescan to heal missed events. The HTTP endpoint
// exposes index statistics in Prometheus format and a small JSON query
// API for listing indexed traces.
package indexd
