// Package trace implements the ghost trace file format.
package trace

import (
	"encoding/binary"
	"hash/crc32"
	"io"

	"github.com/veldra/ghosttape/internal/core/domain"
)

// encodeChunkFrame serializes one chunk as [len:4][crc:4][type:1][payload].
// len covers crc+type+payload. The CRC covers type+payload.
func encodeChunkFrame(chunkType domain.ChunkType, payload []byte) []byte {
	frameLen := uint32(4 + 1 + len(payload))

	out := make([]byte, 0, frameHeaderSize+1+len(payload))

	var header [frameHeaderSize]byte
	binary.BigEndian.PutUint32(header[0:4], frameLen)

	crc := crc32.NewIEEE()
	crc.Write([]byte{byte(chunkType)})
	crc.Write(payload)
	binary.BigEndian.PutUint32(header[4:8], crc.Sum32())

	out = append(out, header[:]...)
	out = append(out, byte(chunkType))
	out = append(out, payload...)
	return out
}

// decodeChunkFrame parses a complete frame produced by encodeChunkFrame.
func decodeChunkFrame(frame []byte) (domain.ChunkType, []byte, error) {
	if len(frame) < frameHeaderSize+1 {
		return 0, nil, domain.ErrCorruptFile.WithDetails("short chunk frame")
	}

	frameLen := binary.BigEndian.Uint32(frame[0:4])
	if int(frameLen) != len(frame)-4 {
		return 0, nil, domain.ErrCorruptFile.WithDetails("chunk frame length disagreement")
	}

	wantCRC := binary.BigEndian.Uint32(frame[4:8])
	chunkType := frame[8]
	payload := frame[9:]

	crc := crc32.NewIEEE()
	crc.Write([]byte{chunkType})
	crc.Write(payload)
	if crc.Sum32() != wantCRC {
		return 0, nil, domain.ErrCorruptFile.WithDetails("chunk checksum mismatch")
	}

	return domain.ChunkType(chunkType), payload, nil
}

// frameHead is the decoded [len][crc][type] prefix of a pending frame.
type frameHead struct {
	payloadLen int
	crc        uint32
	chunkType  domain.ChunkType
}

// readFrameHead reads the next frame's header and type byte. io.EOF at the
// first byte is surfaced unchanged so callers can distinguish a clean end
// of the body region from a torn frame.
func readFrameHead(r io.Reader) (frameHead, error) {
	var head [frameHeaderSize + 1]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		if err == io.EOF {
			return frameHead{}, io.EOF
		}
		return frameHead{}, domain.ErrCorruptFile.WithDetails("torn chunk header").WithCause(err)
	}

	frameLen := binary.BigEndian.Uint32(head[0:4])
	if frameLen < minFrameLen || frameLen-minFrameLen > maxPayloadSize {
		return frameHead{}, domain.ErrCorruptFile.WithDetails("chunk length out of range")
	}

	return frameHead{
		payloadLen: int(frameLen) - minFrameLen,
		crc:        binary.BigEndian.Uint32(head[4:8]),
		chunkType:  domain.ChunkType(head[8]),
	}, nil
}

// readFramePayload reads and CRC-checks the payload announced by head.
func readFramePayload(r io.Reader, head frameHead) ([]byte, error) {
	payload := make([]byte, head.payloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, domain.ErrCorruptFile.WithDetails("torn chunk payload").WithCause(err)
	}

	crc := crc32.NewIEEE()
	crc.Write([]byte{byte(head.chunkType)})
	crc.Write(payload)
	if crc.Sum32() != head.crc {
		return nil, domain.ErrCorruptFile.WithDetails("chunk checksum mismatch")
	}

	return payload, nil
}
