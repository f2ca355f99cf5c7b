package command

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runApp runs the CLI with the given args and captures stdout. HOME is
// pointed at an empty directory so a developer's own CLI config cannot
// leak into the run.
func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	app := App()
	var buf bytes.Buffer
	app.Writer = &buf

	err := app.Run(append([]string{"ghosttape-cli"}, args...))
	return buf.String(), err
}

// writeMapFile writes a fake map file and returns its path.
func writeMapFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestRecordAndInfo(t *testing.T) {
	dir := t.TempDir()
	mapFile := writeMapFile(t, dir, "Castle.map", []byte("castle tile data"))
	input := writeMapFile(t, dir, "input.bin", []byte{1, 2, 3, 4, 5})
	tracePath := filepath.Join(dir, "run.ghost")

	out, err := runApp(t,
		"record",
		"--map-file", mapFile,
		"--owner", "Alice",
		"--chunk-size", "2",
		input, tracePath)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if !strings.Contains(out, "3 chunk(s)") {
		t.Errorf("record output = %q, want 3 chunks", out)
	}

	out, err = runApp(t, "-o", "json", "info", tracePath)
	if err != nil {
		t.Fatalf("info: %v", err)
	}

	var row traceInfoRow
	if err := json.Unmarshal([]byte(out), &row); err != nil {
		t.Fatalf("parse info output: %v\n%s", err, out)
	}
	if row.Owner != "Alice" {
		t.Errorf("Owner = %q, want Alice", row.Owner)
	}
	// Map name defaults to the file name without extension.
	if row.MapName != "Castle" {
		t.Errorf("MapName = %q, want Castle", row.MapName)
	}
	if row.TickCount != 3 {
		t.Errorf("TickCount = %d, want 3", row.TickCount)
	}
}

func TestChunks(t *testing.T) {
	dir := t.TempDir()
	mapFile := writeMapFile(t, dir, "Castle.map", []byte("castle tile data"))
	input := writeMapFile(t, dir, "input.bin", []byte{1, 2, 3, 4, 5})
	tracePath := filepath.Join(dir, "run.ghost")

	if _, err := runApp(t, "record", "--map-file", mapFile, "--chunk-size", "2", input, tracePath); err != nil {
		t.Fatalf("record: %v", err)
	}

	out, err := runApp(t, "-o", "json", "chunks", tracePath)
	if err != nil {
		t.Fatalf("chunks: %v", err)
	}

	var rows []chunkRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("parse chunks output: %v\n%s", err, out)
	}
	if len(rows) != 3 {
		t.Fatalf("chunks = %d, want 3", len(rows))
	}
	wantSizes := []int{2, 2, 1}
	for i, row := range rows {
		if row.Type != uint8(payloadChunkType) {
			t.Errorf("chunk %d type = %d, want %d", i, row.Type, payloadChunkType)
		}
		if row.Size != wantSizes[i] {
			t.Errorf("chunk %d size = %d, want %d", i, row.Size, wantSizes[i])
		}
	}
}

func TestVerify(t *testing.T) {
	dir := t.TempDir()
	mapFile := writeMapFile(t, dir, "Castle.map", []byte("castle tile data"))
	input := writeMapFile(t, dir, "input.bin", []byte{1})
	tracePath := filepath.Join(dir, "run.ghost")

	if _, err := runApp(t, "record", "--map-file", mapFile, input, tracePath); err != nil {
		t.Fatalf("record: %v", err)
	}

	// Same map verifies cleanly.
	out, err := runApp(t, "-o", "json", "verify", "--map-file", mapFile, tracePath)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	var row verifyRow
	if err := json.Unmarshal([]byte(out), &row); err != nil {
		t.Fatalf("parse verify output: %v\n%s", err, out)
	}
	if row.Status != "ok" {
		t.Errorf("Status = %q, want ok", row.Status)
	}

	// A revised map must fail verification.
	revised := writeMapFile(t, dir, "Castle2.map", []byte("castle tile data v2"))
	out, err = runApp(t, "-o", "json", "verify", "--map-file", revised, "--map-name", "Castle", tracePath)
	if err == nil {
		t.Fatal("verify against revised map should fail")
	}
	if err := json.Unmarshal([]byte(out), &row); err != nil {
		t.Fatalf("parse verify output: %v\n%s", err, out)
	}
	if row.Status != "identity-mismatch" {
		t.Errorf("Status = %q, want identity-mismatch", row.Status)
	}
}

func TestMapID(t *testing.T) {
	dir := t.TempDir()
	mapFile := writeMapFile(t, dir, "Castle.map", []byte("castle tile data"))

	out1, err := runApp(t, "-o", "json", "mapid", "--map-file", mapFile)
	if err != nil {
		t.Fatalf("mapid: %v", err)
	}
	out2, err := runApp(t, "-o", "json", "mapid", "--map-file", mapFile)
	if err != nil {
		t.Fatalf("mapid: %v", err)
	}
	if out1 != out2 {
		t.Error("mapid output should be deterministic")
	}

	var row mapIDRow
	if err := json.Unmarshal([]byte(out1), &row); err != nil {
		t.Fatalf("parse mapid output: %v\n%s", err, out1)
	}
	if row.MapName != "Castle" {
		t.Errorf("MapName = %q, want Castle", row.MapName)
	}
	if len(row.ContentHash) != 64 {
		t.Errorf("ContentHash = %q, want 64 hex chars", row.ContentHash)
	}
	if len(row.LegacyChecksum) != 8 {
		t.Errorf("LegacyChecksum = %q, want 8 hex chars", row.LegacyChecksum)
	}
}

func TestConfigDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	mapFile := writeMapFile(t, dir, "Castle.map", []byte("castle tile data"))
	cfgPath := writeMapFile(t, dir, "cli.yaml", []byte("default_output: json\n"))

	// No -o flag; the config file supplies the format.
	out, err := runApp(t, "--config", cfgPath, "mapid", "--map-file", mapFile)
	if err != nil {
		t.Fatalf("mapid: %v", err)
	}

	var row mapIDRow
	if err := json.Unmarshal([]byte(out), &row); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}

	// An explicit flag still wins.
	out, err = runApp(t, "--config", cfgPath, "-o", "table", "mapid", "--map-file", mapFile)
	if err != nil {
		t.Fatalf("mapid: %v", err)
	}
	if json.Unmarshal([]byte(out), &row) == nil {
		t.Errorf("-o table should override the config file, got JSON:\n%s", out)
	}
}

func TestUnknownOutputFormat(t *testing.T) {
	dir := t.TempDir()
	mapFile := writeMapFile(t, dir, "Castle.map", []byte("castle tile data"))

	_, err := runApp(t, "-o", "csv", "mapid", "--map-file", mapFile)
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Fatalf("mapid with -o csv should fail with a format error, got %v", err)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	mapA := writeMapFile(t, dir, "MapA.map", []byte("map a"))
	mapB := writeMapFile(t, dir, "MapB.map", []byte("map b"))
	input := writeMapFile(t, dir, "input.bin", []byte{1, 2})

	ghostDir := filepath.Join(dir, "ghosts")
	if _, err := runApp(t, "record", "--map-file", mapA, "--owner", "Alice", input, filepath.Join(ghostDir, "a.ghost")); err != nil {
		t.Fatalf("record a: %v", err)
	}
	if _, err := runApp(t, "record", "--map-file", mapB, "--owner", "Bob", input, filepath.Join(ghostDir, "b.ghost")); err != nil {
		t.Fatalf("record b: %v", err)
	}
	// A junk file is skipped, not fatal.
	writeMapFile(t, ghostDir, "junk.ghost", []byte("junk"))

	out, err := runApp(t, "-o", "json", "list", "--dir", ghostDir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var rows []traceInfoRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("parse list output: %v\n%s", err, out)
	}
	if len(rows) != 2 {
		t.Fatalf("list = %d rows, want 2", len(rows))
	}

	// Filter by map identity.
	out, err = runApp(t, "-o", "json", "list", "--dir", ghostDir, "--map-file", mapA)
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("parse list output: %v\n%s", err, out)
	}
	if len(rows) != 1 || rows[0].Owner != "Alice" {
		t.Fatalf("filtered list = %+v, want only Alice's trace", rows)
	}
}
