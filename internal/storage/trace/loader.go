// Package trace implements the ghost trace file format.
package trace

import (
	"bufio"
	"errors"
	"io"
	"os"
	"sync"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/mapident"
)

// loaderState tracks the Loader lifecycle.
type loaderState uint8

const (
	stateClosed loaderState = iota
	stateLoaded
)

// Loader validates a trace file's map identity and exposes its chunk
// stream lazily. One Loader owns a read handle for the duration of a
// load session.
type Loader struct {
	mu sync.Mutex

	state loaderState
	file  *os.File

	identity domain.TraceIdentity
	info     domain.TraceInfo

	reader  *bufio.Reader
	pending *frameHead
	eos     bool
}

// NewLoader returns a closed Loader.
func NewLoader() *Loader {
	return &Loader{}
}

// Load opens the trace file at path and compares its stored identity
// against the identity the caller expects for the currently-loaded map.
// Any mismatch fails with ErrIdentityMismatch before a single chunk is
// decoded. Malformed headers or a missing clean-stop tail fail with
// ErrCorruptFile. On success the summary becomes available via GetInfo
// and the chunk stream via ReadNextType/ReadData.
func (l *Loader) Load(path string, expected domain.TraceIdentity) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == stateLoaded {
		l.closeLocked()
	}

	file, header, info, err := openAndValidate(path, expected)
	if err != nil {
		return err
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return domain.ErrIO.WithDetails("stat trace file").WithCause(err)
	}

	bodyLen := stat.Size() - header.size - tailSize

	l.state = stateLoaded
	l.file = file
	l.identity = header.identity
	l.info = info
	l.reader = bufio.NewReader(io.NewSectionReader(file, header.size, bodyLen))
	l.pending = nil
	l.eos = bodyLen == 0
	return nil
}

// Close releases the underlying file resource. Idempotent; valid from
// any state.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closeLocked()
}

func (l *Loader) closeLocked() {
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.state = stateClosed
	l.reader = nil
	l.pending = nil
	l.eos = false
}

// GetInfo returns the parsed summary without touching the chunk stream.
// Valid only while Loaded.
func (l *Loader) GetInfo() (domain.TraceInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateLoaded {
		return domain.TraceInfo{}, domain.ErrNotLoaded
	}
	return l.info, nil
}

// Identity returns the stored map identity of the loaded trace.
func (l *Loader) Identity() (domain.TraceIdentity, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateLoaded {
		return domain.TraceIdentity{}, domain.ErrNotLoaded
	}
	return l.identity, nil
}

// ReadNextType advances to the next chunk header and returns its type.
// ok is false at end-of-stream; once the end is reached, further calls
// keep reporting it without error. A pending chunk whose payload was
// never fetched with ReadData is skipped, so consumers may ignore chunk
// types they do not understand.
func (l *Loader) ReadNextType() (chunkType domain.ChunkType, ok bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateLoaded {
		return 0, false, domain.ErrNotLoaded
	}
	if l.eos {
		return 0, false, nil
	}

	if l.pending != nil {
		if _, err := readFramePayload(l.reader, *l.pending); err != nil {
			return 0, false, err
		}
		l.pending = nil
	}

	head, err := readFrameHead(l.reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			l.eos = true
			return 0, false, nil
		}
		return 0, false, err
	}

	l.pending = &head
	return head.chunkType, true, nil
}

// PendingSize returns the payload size announced by the last
// ReadNextType. Valid only while a chunk is pending.
func (l *Loader) PendingSize() (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateLoaded {
		return 0, domain.ErrNotLoaded
	}
	if l.pending == nil {
		return 0, domain.ErrReadOutOfOrder
	}
	return l.pending.payloadLen, nil
}

// ReadData fetches the payload announced by the last ReadNextType. The
// caller's chunkType and size must match the announced values exactly; a
// disagreement is a protocol-usage error (ErrSizeDisagreement) that
// leaves the stream position unchanged, so the call may be retried with
// the stored values. Torn or checksum-failing payloads fail with
// ErrCorruptFile.
func (l *Loader) ReadData(chunkType domain.ChunkType, size int) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state != stateLoaded {
		return nil, domain.ErrNotLoaded
	}
	if l.pending == nil {
		return nil, domain.ErrReadOutOfOrder
	}
	if chunkType != l.pending.chunkType {
		return nil, domain.ErrSizeDisagreement.WithDetails("chunk type disagreement")
	}
	if size != l.pending.payloadLen {
		return nil, domain.ErrSizeDisagreement
	}

	payload, err := readFramePayload(l.reader, *l.pending)
	if err != nil {
		return nil, err
	}
	l.pending = nil
	return payload, nil
}

// GetGhostInfo opens the trace at path, validates its identity, reads the
// summary, and closes again without leaving any open state. It is fully
// independent of any Loader session.
func GetGhostInfo(path string, expected domain.TraceIdentity) (domain.TraceInfo, error) {
	file, _, info, err := openAndValidate(path, expected)
	if err != nil {
		return domain.TraceInfo{}, err
	}
	file.Close()
	return info, nil
}

// Inspect reads a trace file's stored identity and summary without
// checking them against any expected map. It is meant for indexing
// files of unknown provenance; replay consumers go through Load, which
// enforces the identity check.
func Inspect(path string) (domain.TraceIdentity, domain.TraceInfo, error) {
	file, header, info, err := openAndParse(path)
	if err != nil {
		return domain.TraceIdentity{}, domain.TraceInfo{}, err
	}
	file.Close()
	return header.identity, info, nil
}

// openAndValidate opens a trace file, parses it, and checks its stored
// identity against the expected one. On error the file handle is
// closed; on success it is returned positioned for body reads via
// section readers.
func openAndValidate(path string, expected domain.TraceIdentity) (*os.File, *fileHeader, domain.TraceInfo, error) {
	file, header, info, err := openAndParse(path)
	if err != nil {
		return nil, nil, domain.TraceInfo{}, err
	}

	if !mapident.Match(header.identity, expected) {
		file.Close()
		return nil, nil, domain.TraceInfo{}, domain.ErrIdentityMismatch.WithDetails(
			"trace is for map " + string(header.identity.MapName))
	}
	return file, header, info, nil
}

// openAndParse opens a trace file and parses its header and tail. On
// error the file handle is closed.
func openAndParse(path string) (*os.File, *fileHeader, domain.TraceInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, domain.TraceInfo{}, domain.ErrIO.WithDetails("open trace file").WithCause(err)
	}

	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, domain.TraceInfo{}, domain.ErrIO.WithDetails("stat trace file").WithCause(err)
	}

	header, err := decodeHeader(bufio.NewReader(io.NewSectionReader(file, 0, stat.Size())))
	if err != nil {
		file.Close()
		return nil, nil, domain.TraceInfo{}, err
	}

	if stat.Size() < header.size+tailSize {
		file.Close()
		return nil, nil, domain.TraceInfo{}, domain.ErrCorruptFile.WithDetails("trace was not cleanly stopped")
	}

	tail := make([]byte, tailSize)
	if _, err := io.ReadFull(io.NewSectionReader(file, stat.Size()-tailSize, tailSize), tail); err != nil {
		file.Close()
		return nil, nil, domain.TraceInfo{}, domain.ErrIO.WithDetails("read trace tail").WithCause(err)
	}
	tickCount, elapsedTimeMs, err := decodeTail(tail)
	if err != nil {
		file.Close()
		return nil, nil, domain.TraceInfo{}, err
	}

	info := domain.TraceInfo{
		Owner:         header.owner,
		MapName:       header.identity.MapName,
		TickCount:     tickCount,
		ElapsedTimeMs: elapsedTimeMs,
	}
	return file, header, info, nil
}
