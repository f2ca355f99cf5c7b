// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/storage/trace"
)

// payloadChunkType is the chunk type used for packed payload data.
const payloadChunkType domain.ChunkType = 1

// RecordCommand returns the record command.
func RecordCommand() *cli.Command {
	return &cli.Command{
		Name:      "record",
		Usage:     "Pack a payload file into a ghost trace (for testing and repro)",
		ArgsUsage: "<input-file> <trace-file>",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:  "owner",
				Usage: "Owner name stored in the trace",
			},
			&cli.IntFlag{
				Name:  "chunk-size",
				Usage: "Payload bytes per chunk",
				Value: 1024,
			},
			&cli.Uint64Flag{
				Name:  "tick-ms",
				Usage: "Simulated milliseconds per chunk",
				Value: 16,
			},
		}, mapFlags(true)...),
		Action: recordAction,
	}
}

func recordAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected input and output file arguments")
	}
	inputPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)

	chunkSize := c.Int("chunk-size")
	if chunkSize <= 0 {
		return fmt.Errorf("chunk-size must be positive")
	}

	identity, err := identityFromFlags(c)
	if err != nil {
		return err
	}
	owner, err := domain.NewOwnerName(c.String("owner"))
	if err != nil {
		return err
	}

	payload, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("read input file: %w", err)
	}

	recorder := trace.NewRecorder()
	if err := recorder.Start(outputPath, identity, owner); err != nil {
		return err
	}

	var ticks uint64
	for off := 0; off < len(payload); off += chunkSize {
		end := off + chunkSize
		if end > len(payload) {
			end = len(payload)
		}
		if err := recorder.WriteData(payloadChunkType, payload[off:end]); err != nil {
			return err
		}
		ticks++
	}

	elapsedMs := ticks * c.Uint64("tick-ms")
	if err := recorder.Stop(ticks, elapsedMs); err != nil {
		return err
	}

	fmt.Fprintf(c.App.Writer, "recorded %s: %d chunk(s), recording %s\n",
		outputPath, recorder.ChunksWritten(), recorder.RecordingID())
	return nil
}
