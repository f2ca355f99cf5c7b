// Package trace implements the ghost trace file format.
package trace

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/veldra/ghosttape/internal/core/domain"
)

// File format constants.
const (
	// MagicBytes identify ghost trace files.
	MagicBytes     = "GHOSTTAP"
	MagicBytesSize = 8

	// SchemaLegacy files carry only the legacy map checksum.
	SchemaLegacy uint8 = 1
	// SchemaCurrent files carry the strong content hash as well.
	SchemaCurrent uint8 = 2

	// FileExtension is the ghost trace file extension.
	FileExtension = ".ghost"

	DefaultFilePerm = 0600
	DefaultDirPerm  = 0750
)

// Frame layout sizes. A frame is [len:4][crc:4][type:1][payload...] with
// len covering crc+type+payload.
const (
	frameHeaderSize = 8
	minFrameLen     = 5

	// maxPayloadSize bounds a single chunk payload. Per-tick simulation
	// blobs are small; anything near this size is a framing error.
	maxPayloadSize = 1 << 24
)

// Tail layout. The tail is an end marker frame followed by the summary:
// [tickCount:8][elapsedMs:8][crc:4].
var endMarkerPayload = []byte("GTEND")

const (
	endMarkerFrameSize = frameHeaderSize + 1 + 5
	summarySize        = 8 + 8 + 4
	tailSize           = endMarkerFrameSize + summarySize
)

// encodeHeader serializes the file header for the given schema version.
// Bounded strings are written as a length byte followed by raw bytes.
func encodeHeader(schema uint8, identity domain.TraceIdentity, owner domain.OwnerName) []byte {
	var buf bytes.Buffer
	buf.WriteString(MagicBytes)
	buf.WriteByte(schema)

	buf.WriteByte(byte(len(identity.MapName)))
	buf.WriteString(string(identity.MapName))

	if schema >= SchemaCurrent {
		buf.Write(identity.MapContentHash[:])
	}

	var checksum [4]byte
	binary.BigEndian.PutUint32(checksum[:], identity.MapLegacyChecksum)
	buf.Write(checksum[:])

	buf.WriteByte(byte(len(owner)))
	buf.WriteString(string(owner))

	return buf.Bytes()
}

// fileHeader is the decoded form of a trace file header.
type fileHeader struct {
	schema   uint8
	identity domain.TraceIdentity
	owner    domain.OwnerName
	size     int64 // header length in bytes
}

// decodeHeader parses a file header from r. It returns ErrCorruptFile for
// framing violations and ErrUnsupportedSchema for unknown versions.
func decodeHeader(r io.Reader) (*fileHeader, error) {
	magic := make([]byte, MagicBytesSize)
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, domain.ErrCorruptFile.WithDetails("short magic").WithCause(err)
	}
	if string(magic) != MagicBytes {
		return nil, domain.ErrCorruptFile.WithDetails("invalid magic bytes")
	}

	var schema [1]byte
	if _, err := io.ReadFull(r, schema[:]); err != nil {
		return nil, domain.ErrCorruptFile.WithDetails("missing schema version").WithCause(err)
	}
	if schema[0] != SchemaLegacy && schema[0] != SchemaCurrent {
		return nil, domain.ErrUnsupportedSchema.WithDetails("schema " + itoa(int(schema[0])))
	}

	h := &fileHeader{schema: schema[0]}
	h.size = int64(MagicBytesSize + 1)

	mapName, n, err := readBoundedString(r, domain.MaxMapNameLength)
	if err != nil {
		return nil, err
	}
	h.size += int64(n)
	h.identity.MapName, err = domain.NewMapName(mapName)
	if err != nil {
		return nil, domain.ErrCorruptFile.WithDetails("invalid stored map name").WithCause(err)
	}

	if h.schema >= SchemaCurrent {
		if _, err := io.ReadFull(r, h.identity.MapContentHash[:]); err != nil {
			return nil, domain.ErrCorruptFile.WithDetails("short content hash").WithCause(err)
		}
		h.size += domain.ContentHashSize
	}

	var checksum [4]byte
	if _, err := io.ReadFull(r, checksum[:]); err != nil {
		return nil, domain.ErrCorruptFile.WithDetails("short legacy checksum").WithCause(err)
	}
	h.identity.MapLegacyChecksum = binary.BigEndian.Uint32(checksum[:])
	h.size += 4

	ownerName, n, err := readBoundedString(r, domain.MaxOwnerNameLength)
	if err != nil {
		return nil, err
	}
	h.size += int64(n)
	h.owner, err = domain.NewOwnerName(ownerName)
	if err != nil {
		return nil, domain.ErrCorruptFile.WithDetails("invalid stored owner name").WithCause(err)
	}

	return h, nil
}

// readBoundedString reads a length-prefixed string, rejecting lengths
// above max. Returns the string and the number of bytes consumed.
func readBoundedString(r io.Reader, max int) (string, int, error) {
	var lenByte [1]byte
	if _, err := io.ReadFull(r, lenByte[:]); err != nil {
		return "", 0, domain.ErrCorruptFile.WithDetails("short string length").WithCause(err)
	}
	n := int(lenByte[0])
	if n > max {
		return "", 0, domain.ErrCorruptFile.WithDetails("stored string exceeds bounded length")
	}
	if n == 0 {
		return "", 1, nil
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", 0, domain.ErrCorruptFile.WithDetails("short string body").WithCause(err)
	}
	return string(raw), 1 + n, nil
}

// encodeTail serializes the end marker frame and the summary record.
func encodeTail(tickCount, elapsedTimeMs uint64) []byte {
	out := encodeChunkFrame(domain.ChunkTypeEndMarker, endMarkerPayload)

	var summary [summarySize]byte
	binary.BigEndian.PutUint64(summary[0:8], tickCount)
	binary.BigEndian.PutUint64(summary[8:16], elapsedTimeMs)
	crc := crc32.ChecksumIEEE(summary[:16])
	binary.BigEndian.PutUint32(summary[16:20], crc)

	return append(out, summary[:]...)
}

// decodeTail parses the fixed-size tail. A malformed tail means the
// recorder never stopped cleanly, so the whole file is invalid.
func decodeTail(raw []byte) (tickCount, elapsedTimeMs uint64, err error) {
	if len(raw) != tailSize {
		return 0, 0, domain.ErrCorruptFile.WithDetails("short tail")
	}

	chunkType, payload, err := decodeChunkFrame(raw[:endMarkerFrameSize])
	if err != nil {
		return 0, 0, err
	}
	if chunkType != domain.ChunkTypeEndMarker || !bytes.Equal(payload, endMarkerPayload) {
		return 0, 0, domain.ErrCorruptFile.WithDetails("missing end-of-stream marker")
	}

	summary := raw[endMarkerFrameSize:]
	wantCRC := binary.BigEndian.Uint32(summary[16:20])
	if crc32.ChecksumIEEE(summary[:16]) != wantCRC {
		return 0, 0, domain.ErrCorruptFile.WithDetails("summary checksum mismatch")
	}

	return binary.BigEndian.Uint64(summary[0:8]), binary.BigEndian.Uint64(summary[8:16]), nil
}

// itoa formats a small non-negative integer for error details.
func itoa(v int) string {
	if v == 0 {
		return "0"
	}
	var b [20]byte
	i := len(b)
	for v > 0 {
		i--
		b[i] = byte('0' + v%10)
		v /= 10
	}
	return string(b[i:])
}
