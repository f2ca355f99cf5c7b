package mapident

import (
	"testing"

	"github.com/veldra/ghosttape/internal/core/domain"
)

func TestCompute_Deterministic(t *testing.T) {
	mapBytes := []byte("tile data for Map1")

	a := Compute("Map1", mapBytes)
	b := Compute("Map1", mapBytes)

	if a != b {
		t.Fatalf("identity not deterministic: %+v vs %+v", a, b)
	}
	if a.MapContentHash.IsZero() {
		t.Fatal("content hash should not be zero")
	}
	if a.MapLegacyChecksum == 0 {
		t.Fatal("legacy checksum should not be zero for this input")
	}
}

func TestCompute_DistinguishesContent(t *testing.T) {
	a := Compute("Map1", []byte("revision one"))
	b := Compute("Map1", []byte("revision two"))

	if a.MapContentHash == b.MapContentHash {
		t.Fatal("different map bytes must produce different content hashes")
	}
	if a.MapLegacyChecksum == b.MapLegacyChecksum {
		t.Fatal("different map bytes should produce different legacy checksums")
	}
}

func TestMatch_StrongDigestAuthoritative(t *testing.T) {
	mapBytes := []byte("map contents")
	stored := Compute("Map1", mapBytes)
	expected := Compute("Map1", mapBytes)

	if !Match(stored, expected) {
		t.Fatal("identical identities must match")
	}

	// Same legacy checksum but diverging strong digest: strong wins.
	tampered := expected
	tampered.MapContentHash[0] ^= 0xff
	if Match(stored, tampered) {
		t.Fatal("digest mismatch must fail even when legacy checksum matches")
	}
}

func TestMatch_MapNameAlwaysChecked(t *testing.T) {
	mapBytes := []byte("map contents")
	stored := Compute("Map1", mapBytes)
	expected := Compute("Map2", mapBytes)

	if Match(stored, expected) {
		t.Fatal("different map names must never match")
	}
}

func TestMatch_LegacyFallback(t *testing.T) {
	mapBytes := []byte("old map contents")

	// A legacy trace carries no strong digest.
	stored := domain.TraceIdentity{
		MapName:           "Map1",
		MapLegacyChecksum: LegacyChecksum(mapBytes),
	}
	expected := Compute("Map1", mapBytes)

	if !Match(stored, expected) {
		t.Fatal("legacy identity with matching checksum must be accepted")
	}

	wrong := Compute("Map1", []byte("different map contents"))
	if Match(stored, wrong) {
		t.Fatal("legacy identity with mismatched checksum must be rejected")
	}
}
