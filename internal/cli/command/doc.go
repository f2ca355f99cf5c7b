// Package command provides CLI command definitions for ghosttape-cli.
//
// Commands:
//
//   - info: show the identity and summary of a ghost trace file
//   - chunks: dump the chunk stream of a ghost trace file
//   - verify: check a trace against a map file's identity
//   - list: scan a directory and list the ghost traces in it
//   - record: pack a payload file into a ghost trace
//   - mapid: compute the replay identity of a map file
//
// It uses urfave/cli/v2 for command parsing.
package command
