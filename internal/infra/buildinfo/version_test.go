package buildinfo

import (
	"runtime"
	"strings"
	"testing"
)

func stash(t *testing.T) {
	t.Helper()
	version, commit, buildTime := Version, Commit, BuildTime
	t.Cleanup(func() {
		Version, Commit, BuildTime = version, commit, buildTime
	})
}

func TestGet_Stamped(t *testing.T) {
	stash(t)
	Version = "v1.4.0"
	Commit = "4f9c1d2ab37e0d55"
	BuildTime = "2026-08-24T10:00:00Z"

	info := Get()
	if info.Version != "v1.4.0" {
		t.Errorf("Version = %q, want v1.4.0", info.Version)
	}
	if info.Commit != "4f9c1d2ab37e0d55" {
		t.Errorf("Commit = %q", info.Commit)
	}
	if info.BuildTime != "2026-08-24T10:00:00Z" {
		t.Errorf("BuildTime = %q", info.BuildTime)
	}
	if info.GoVersion != runtime.Version() {
		t.Errorf("GoVersion = %q, want %q", info.GoVersion, runtime.Version())
	}
}

func TestGet_Unstamped(t *testing.T) {
	stash(t)
	Commit = ""
	BuildTime = ""

	// Without ldflags the fields resolve from embedded VCS metadata or
	// fall back to "unknown"; either way they are never empty.
	info := Get()
	if info.Commit == "" {
		t.Error("Commit should never be empty")
	}
	if info.BuildTime == "" {
		t.Error("BuildTime should never be empty")
	}
}

func TestString(t *testing.T) {
	stash(t)
	Version = "v1.4.0"
	Commit = "4f9c1d2ab37e0d55"
	BuildTime = "2026-08-24T10:00:00Z"

	s := String()
	if !strings.HasPrefix(s, "v1.4.0 (commit 4f9c1d2ab37e") {
		t.Errorf("String() = %q, want abbreviated commit after the version", s)
	}
	if !strings.Contains(s, "2026-08-24T10:00:00Z") {
		t.Errorf("String() = %q, want build time", s)
	}
	if strings.Contains(s, "4f9c1d2ab37e0d55") {
		t.Errorf("String() = %q, commit should be abbreviated to 12 chars", s)
	}
}

func TestShortCommit(t *testing.T) {
	if got := shortCommit("abc123"); got != "abc123" {
		t.Errorf("shortCommit(short) = %q", got)
	}
	if got := shortCommit("0123456789abcdef0123"); got != "0123456789ab" {
		t.Errorf("shortCommit(long) = %q, want first 12 chars", got)
	}
}
