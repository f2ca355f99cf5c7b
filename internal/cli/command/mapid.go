// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/cli/output"
)

// mapIDRow is the printable replay identity of a map file.
type mapIDRow struct {
	MapName        string `json:"map_name"`
	ContentHash    string `json:"content_hash"`
	LegacyChecksum string `json:"legacy_checksum"`
}

// MapIDCommand returns the mapid command.
func MapIDCommand() *cli.Command {
	return &cli.Command{
		Name:   "mapid",
		Usage:  "Compute the replay identity of a map file",
		Flags:  mapFlags(true),
		Action: mapIDAction,
	}
}

func mapIDAction(c *cli.Context) error {
	identity, err := identityFromFlags(c)
	if err != nil {
		return err
	}

	row := mapIDRow{
		MapName:        string(identity.MapName),
		ContentHash:    identity.MapContentHash.String(),
		LegacyChecksum: fmt.Sprintf("%08x", identity.MapLegacyChecksum),
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(flags.Output, flags.Wide)
	return formatter.Format(c.App.Writer, row)
}
