// Package buildinfo exposes the version details stamped at build time.
//
// Version, Commit, and BuildTime are injected via ldflags; when a
// binary is built without them, Get falls back to the VCS metadata the
// Go toolchain embeds. Both ghosttape binaries print Get's banner via
// String for their --version output.
package buildinfo
