// Package mapident computes and compares the map identity pair that binds
// a trace to a specific map revision.
//
// The strong key is a BLAKE2b-256 digest of the map's canonical on-disk
// bytes. The legacy key is a 32-bit murmur3 checksum retained for traces
// recorded before the strong digest existed.
//
// This package has no mutable state and no I/O.
package mapident
