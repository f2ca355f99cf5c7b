// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/cli/output"
	"github.com/veldra/ghosttape/internal/storage/trace"
)

// traceInfoRow is the printable summary of one trace file.
type traceInfoRow struct {
	Path           string `json:"path"`
	Owner          string `json:"owner"`
	MapName        string `json:"map_name"`
	TickCount      uint64 `json:"tick_count"`
	Elapsed        string `json:"elapsed"`
	ContentHash    string `json:"map_content_hash,omitempty" table:"wide"`
	LegacyChecksum string `json:"map_legacy_checksum" table:"wide"`
}

// InfoCommand returns the info command.
func InfoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Aliases:   []string{"i"},
		Usage:     "Show the identity and summary of a ghost trace file",
		ArgsUsage: "<trace-file>",
		Action:    infoAction,
	}
}

func infoAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one trace file argument")
	}
	path := c.Args().First()

	identity, info, err := trace.Inspect(path)
	if err != nil {
		return err
	}

	row := traceInfoRow{
		Path:           path,
		Owner:          string(info.Owner),
		MapName:        string(info.MapName),
		TickCount:      info.TickCount,
		Elapsed:        info.Elapsed().Round(time.Millisecond).String(),
		LegacyChecksum: fmt.Sprintf("%08x", identity.MapLegacyChecksum),
	}
	if !identity.MapContentHash.IsZero() {
		row.ContentHash = identity.MapContentHash.String()
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(flags.Output, flags.Wide)
	return formatter.Format(c.App.Writer, row)
}
