// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/cli/output"
	"github.com/veldra/ghosttape/internal/storage/trace"
)

// chunkRow is one chunk of a trace's stream.
type chunkRow struct {
	Index int    `json:"index"`
	Type  uint8  `json:"type"`
	Size  int    `json:"size"`
	First string `json:"first_bytes,omitempty" table:"wide"`
}

// ChunksCommand returns the chunks command.
func ChunksCommand() *cli.Command {
	return &cli.Command{
		Name:      "chunks",
		Usage:     "Dump the chunk stream of a ghost trace file",
		ArgsUsage: "<trace-file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "max",
				Usage: "Stop after this many chunks (0 = all)",
			},
		},
		Action: chunksAction,
	}
}

func chunksAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one trace file argument")
	}
	path := c.Args().First()

	// Load against the trace's own stored identity; verification against
	// a live map is the verify command's job.
	identity, _, err := trace.Inspect(path)
	if err != nil {
		return err
	}

	loader := trace.NewLoader()
	if err := loader.Load(path, identity); err != nil {
		return err
	}
	defer loader.Close()

	max := c.Int("max")

	var rows []chunkRow
	for i := 0; max <= 0 || i < max; i++ {
		chunkType, ok, err := loader.ReadNextType()
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		size, err := loader.PendingSize()
		if err != nil {
			return err
		}
		row := chunkRow{Index: i, Type: uint8(chunkType)}
		payload, err := loader.ReadData(chunkType, size)
		if err != nil {
			return err
		}
		row.Size = len(payload)
		row.First = firstBytes(payload, 8)
		rows = append(rows, row)
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(flags.Output, flags.Wide)
	return formatter.Format(c.App.Writer, rows)
}

func firstBytes(payload []byte, n int) string {
	if len(payload) == 0 {
		return ""
	}
	if len(payload) > n {
		return fmt.Sprintf("%x…", payload[:n])
	}
	return fmt.Sprintf("%x", payload)
}
