// Package mapident computes and compares map identities.
package mapident

import (
	"crypto/subtle"

	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/blake2b"

	"github.com/veldra/ghosttape/internal/core/domain"
)

// Compute derives the identity pair for a map from its canonical bytes.
func Compute(name domain.MapName, mapBytes []byte) domain.TraceIdentity {
	return domain.TraceIdentity{
		MapName:           name,
		MapContentHash:    domain.ContentHash(blake2b.Sum256(mapBytes)),
		MapLegacyChecksum: murmur3.Sum32(mapBytes),
	}
}

// LegacyChecksum computes only the 32-bit legacy checksum of map bytes.
func LegacyChecksum(mapBytes []byte) uint32 {
	return murmur3.Sum32(mapBytes)
}

// Match decides whether a stored trace identity matches the identity the
// caller expects for the currently-loaded map.
//
// The strong digest is authoritative when the stored identity carries one;
// the legacy checksum is only consulted for traces that predate strong
// digests (zero stored hash). The map name must match in every case.
func Match(stored, expected domain.TraceIdentity) bool {
	if stored.MapName != expected.MapName {
		return false
	}
	if !stored.MapContentHash.IsZero() {
		return subtle.ConstantTimeCompare(stored.MapContentHash[:], expected.MapContentHash[:]) == 1
	}
	return stored.MapLegacyChecksum == expected.MapLegacyChecksum
}
