// Package trace implements the ghost trace file format.
package trace

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/veldra/ghosttape/internal/core/domain"
)

// recorderState tracks the Recorder lifecycle.
type recorderState uint8

const (
	stateIdle recorderState = iota
	stateRecording
	stateStopped
)

// Recorder produces a well-formed trace file incrementally. The total
// chunk count and duration do not need to be known in advance; the
// summary is appended by Stop.
//
// One Recorder owns exclusive write access to its target path for the
// duration of a session. The mutex only serializes calls on this
// instance; concurrent writers to the same path are a caller error.
type Recorder struct {
	mu sync.Mutex

	state       recorderState
	file        *os.File
	path        string
	recordingID string

	identity domain.TraceIdentity
	owner    domain.OwnerName

	chunksWritten uint64
	bytesWritten  int64
}

// NewRecorder returns an idle Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Start creates (or truncates) the trace file at path and writes the
// header binding it to the given map identity. After success the
// Recorder is in the Recording state.
//
// A Recorder that previously stopped may start again; the new session
// targets a new file and fresh metadata.
func (r *Recorder) Start(path string, identity domain.TraceIdentity, owner domain.OwnerName) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == stateRecording {
		return domain.ErrAlreadyRecording
	}
	if identity.MapName == "" {
		return domain.ErrInvalidArgument.WithDetails("map name is empty")
	}
	if identity.MapContentHash.IsZero() {
		return domain.ErrInvalidArgument.WithDetails("map content hash is zero")
	}

	recordingID, err := domain.GenerateRecordingID()
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, DefaultDirPerm); err != nil {
			return domain.ErrIO.WithDetails("create trace dir").WithCause(err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, DefaultFilePerm)
	if err != nil {
		return domain.ErrIO.WithDetails("create trace file").WithCause(err)
	}

	if _, err := file.Write(encodeHeader(SchemaCurrent, identity, owner)); err != nil {
		file.Close()
		return domain.ErrIO.WithDetails("write trace header").WithCause(err)
	}

	r.state = stateRecording
	r.file = file
	r.path = path
	r.recordingID = recordingID
	r.identity = identity
	r.owner = owner
	r.chunksWritten = 0
	r.bytesWritten = 0
	return nil
}

// WriteData appends one length-delimited chunk in append order. Valid only
// while Recording. A write failure is fatal to the session: the Recorder
// transitions to Stopped and the partial file is left on disk for
// diagnostics.
func (r *Recorder) WriteData(chunkType domain.ChunkType, payload []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateRecording {
		return domain.ErrNotRecording
	}
	if chunkType == domain.ChunkTypeEndMarker {
		return domain.ErrReservedChunkType
	}
	if len(payload) > maxPayloadSize {
		return domain.ErrInvalidArgument.WithDetails("chunk payload too large")
	}

	frame := encodeChunkFrame(chunkType, payload)
	n, err := r.file.Write(frame)
	r.bytesWritten += int64(n)
	if err != nil {
		r.abortLocked()
		return domain.ErrIOWrite.WithDetails("append chunk").WithCause(err)
	}

	r.chunksWritten++
	return nil
}

// Stop writes the trailing summary record and finalizes the file
// (flush + close). Valid only while Recording.
func (r *Recorder) Stop(tickCount, elapsedTimeMs uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != stateRecording {
		return domain.ErrNotRecording
	}

	if _, err := r.file.Write(encodeTail(tickCount, elapsedTimeMs)); err != nil {
		r.abortLocked()
		return domain.ErrIOWrite.WithDetails("write trace tail").WithCause(err)
	}
	if err := r.file.Sync(); err != nil {
		r.abortLocked()
		return domain.ErrIOWrite.WithDetails("sync trace file").WithCause(err)
	}
	if err := r.file.Close(); err != nil {
		r.file = nil
		r.state = stateStopped
		return domain.ErrIOWrite.WithDetails("close trace file").WithCause(err)
	}

	r.file = nil
	r.state = stateStopped
	return nil
}

// IsRecording reports whether the Recorder is in the Recording state.
func (r *Recorder) IsRecording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == stateRecording
}

// RecordingID returns the session ID minted by the last successful Start.
func (r *Recorder) RecordingID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.recordingID
}

// ChunksWritten returns the number of chunks appended this session.
func (r *Recorder) ChunksWritten() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.chunksWritten
}

// abortLocked terminates the session after a fatal I/O error. The partial
// file stays on disk.
func (r *Recorder) abortLocked() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	r.state = stateStopped
}
