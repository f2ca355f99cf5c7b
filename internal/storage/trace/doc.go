// Package trace implements the on-disk ghost trace file format and the
// two roles that compose around it:
//
//   - Recorder: appends typed, length-delimited chunks to a new trace file
//     during a live simulation session and finalizes it with summary
//     metadata on Stop.
//   - Loader: validates an existing trace file's map identity, exposes its
//     summary without decoding the chunk stream, and yields chunks lazily
//     for playback.
//
// File layout (schema-versioned):
//
//	magic "GHOSTTAP" | version u8
//	header: mapName | mapContentHash (v2 only) | mapLegacyChecksum | owner
//	body:   repeated frames { len u32 | crc32 | type u8 | payload }
//	tail:   end marker frame (type 0) | tickCount u64 | elapsedMs u64 | crc32
//
// A file without a complete tail was not cleanly stopped and is invalid.
// One Recorder or Loader instance owns its file handle exclusively; there
// is no cross-instance synchronization.
package trace
