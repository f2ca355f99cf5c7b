// Package domain defines the core domain models for GhostTape.
package domain

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Trace field constraints.
const (
	// MaxOwnerNameLength bounds the trace owner field.
	MaxOwnerNameLength = 31

	// MaxMapNameLength bounds the map name field.
	MaxMapNameLength = 63

	// ContentHashSize is the size of the strong map digest in bytes.
	ContentHashSize = 32

	// RecordingIDPrefix is the prefix for recording session IDs.
	RecordingIDPrefix = "gtrc-"
)

// ContentHash is the strong cryptographic digest of a map's on-disk bytes.
// It is the primary identity key binding a trace to a map revision.
type ContentHash [ContentHashSize]byte

// String returns the lowercase hex form of the hash.
func (h ContentHash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is all zero bytes.
func (h ContentHash) IsZero() bool {
	return h == ContentHash{}
}

// ParseContentHash parses a 64-character hex string into a ContentHash.
func ParseContentHash(s string) (ContentHash, error) {
	var h ContentHash
	raw, err := hex.DecodeString(s)
	if err != nil {
		return h, ErrInvalidArgument.WithDetails("content hash is not hex").WithCause(err)
	}
	if len(raw) != ContentHashSize {
		return h, ErrInvalidArgument.WithDetails("content hash must be 32 bytes")
	}
	copy(h[:], raw)
	return h, nil
}

// OwnerName is a bounded-length trace owner field, validated at construction.
type OwnerName string

// NewOwnerName validates and returns an OwnerName.
// Oversize input is rejected, never silently truncated.
func NewOwnerName(s string) (OwnerName, error) {
	if len(s) > MaxOwnerNameLength {
		return "", ErrNameTooLong.WithDetails("owner name exceeds 31 bytes")
	}
	if strings.ContainsRune(s, 0) {
		return "", ErrInvalidArgument.WithDetails("owner name contains NUL")
	}
	return OwnerName(s), nil
}

// MapName is a bounded-length map name field, validated at construction.
type MapName string

// NewMapName validates and returns a MapName.
func NewMapName(s string) (MapName, error) {
	if s == "" {
		return "", ErrInvalidArgument.WithDetails("map name is empty")
	}
	if len(s) > MaxMapNameLength {
		return "", ErrNameTooLong.WithDetails("map name exceeds 63 bytes")
	}
	if strings.ContainsRune(s, 0) {
		return "", ErrInvalidArgument.WithDetails("map name contains NUL")
	}
	return MapName(s), nil
}

// TraceIdentity binds a trace to the exact map revision it was recorded on.
// It is computed at record time and re-derived at load time for comparison.
type TraceIdentity struct {
	// MapName is the map's logical name.
	MapName MapName `json:"map_name"`

	// MapContentHash is the strong digest of the map's on-disk bytes.
	// Zero for traces recorded before strong digests existed.
	MapContentHash ContentHash `json:"map_content_hash"`

	// MapLegacyChecksum is the 32-bit legacy checksum of the map, retained
	// for compatibility with traces that predate the strong digest.
	MapLegacyChecksum uint32 `json:"map_legacy_checksum"`
}

// TraceInfo is the summary metadata of a finished trace. It is readable
// without decoding the chunk stream.
type TraceInfo struct {
	// Owner identifies the author of the trace.
	Owner OwnerName `json:"owner"`

	// MapName is the map the trace was recorded on.
	MapName MapName `json:"map_name"`

	// TickCount is the total number of simulation ticks recorded.
	TickCount uint64 `json:"tick_count"`

	// ElapsedTimeMs is the sim time the trace represents, in milliseconds.
	ElapsedTimeMs uint64 `json:"elapsed_time_ms"`
}

// Elapsed returns ElapsedTimeMs as a time.Duration.
func (i TraceInfo) Elapsed() time.Duration {
	return time.Duration(i.ElapsedTimeMs) * time.Millisecond
}

// ChunkType tags the semantic kind of a chunk's payload. The set of valid
// tags is owned by the simulation layer; this subsystem treats it opaquely,
// except for type 0 which is reserved for the end-of-stream marker.
type ChunkType uint8

// ChunkTypeEndMarker terminates the chunk stream. Not valid for WriteData.
const ChunkTypeEndMarker ChunkType = 0

// TraceChunk is one unit of the recorded stream. Chunks are strictly
// ordered; ordering encodes tick order and round-trips byte-for-byte.
type TraceChunk struct {
	Type    ChunkType
	Payload []byte
}

// GenerateRecordingID mints a recording session ID using ULID.
// Format: gtrc-{ulid_lowercase}, 31 characters total.
func GenerateRecordingID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrIO.WithCause(err)
	}
	return RecordingIDPrefix + strings.ToLower(id.String()), nil
}

// ValidateRecordingID checks that an ID has the gtrc- prefix and a
// parseable ULID part.
func ValidateRecordingID(id string) error {
	if !strings.HasPrefix(id, RecordingIDPrefix) {
		return ErrInvalidArgument.WithDetails("missing gtrc- prefix")
	}
	ulidPart := strings.ToUpper(id[len(RecordingIDPrefix):])
	if _, err := ulid.Parse(ulidPart); err != nil {
		return ErrInvalidArgument.WithDetails("malformed recording id").WithCause(err)
	}
	return nil
}
