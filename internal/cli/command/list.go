// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/cli/output"
	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/mapident"
	"github.com/veldra/ghosttape/internal/storage/trace"
)

// ListCommand returns the list command.
func ListCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "Scan a directory and list the ghost traces in it",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory to scan",
				Value:   ".",
			},
		}, mapFlags(false)...),
		Action: listAction,
	}
}

func listAction(c *cli.Context) error {
	dir := c.String("dir")
	if !c.IsSet("dir") {
		if cfg := configFromApp(c); cfg != nil && cfg.GhostDir != "" {
			dir = cfg.GhostDir
		}
	}

	// Optional map filter: only show traces replayable on this map.
	var filter func(domain.TraceIdentity) bool
	if c.String("map-file") != "" {
		expected, err := identityFromFlags(c)
		if err != nil {
			return err
		}
		filter = func(stored domain.TraceIdentity) bool {
			return mapident.Match(stored, expected)
		}
	}

	var rows []traceInfoRow
	skipped := 0

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, trace.FileExtension) {
			return nil
		}

		identity, info, err := trace.Inspect(path)
		if err != nil {
			skipped++
			return nil
		}
		if filter != nil && !filter(identity) {
			return nil
		}

		row := traceInfoRow{
			Path:      path,
			Owner:     string(info.Owner),
			MapName:   string(info.MapName),
			TickCount: info.TickCount,
			Elapsed:   info.Elapsed().Round(time.Millisecond).String(),
		}
		if !identity.MapContentHash.IsZero() {
			row.ContentHash = identity.MapContentHash.String()
		}
		rows = append(rows, row)
		return nil
	})
	if err != nil {
		return err
	}

	if skipped > 0 {
		PrintError("skipped %d unreadable file(s)", skipped)
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(flags.Output, flags.Wide)
	return formatter.Format(c.App.Writer, rows)
}
