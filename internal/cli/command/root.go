// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/cli/config"
	"github.com/veldra/ghosttape/internal/cli/output"
	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/infra/buildinfo"
	"github.com/veldra/ghosttape/internal/mapident"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:     "ghosttape-cli",
		Usage:    "Ghost trace inspection and management tool",
		Version:  buildinfo.String(),
		Flags:    globalFlags(),
		Metadata: make(map[string]any),
		Before: func(c *cli.Context) error {
			cfg, err := config.Load(c.String("config"))
			if err != nil {
				return err
			}
			c.App.Metadata["config"] = cfg
			return nil
		},
		Commands: []*cli.Command{
			InfoCommand(),
			ChunksCommand(),
			VerifyCommand(),
			ListCommand(),
			RecordCommand(),
			MapIDCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
			Value:   "table",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.StringFlag{
			Name:  "config",
			Usage: "Path to the CLI config file (default ~/.ghosttape/cli.yaml)",
		},
	}
}

// configFromApp returns the CLI config loaded by the Before hook, or
// nil when the app was assembled without one.
func configFromApp(c *cli.Context) *config.CLIConfig {
	cfg, _ := c.App.Metadata["config"].(*config.CLIConfig)
	return cfg
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Output output.Format
	Wide   bool
}

// ParseGlobalFlags extracts global flags from context, falling back to
// the CLI config file for the output format. An unknown format name is
// rejected before any command output is written.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	raw := c.String("output")
	if !c.IsSet("output") {
		if cfg := configFromApp(c); cfg != nil && cfg.DefaultOutput != "" {
			raw = cfg.DefaultOutput
		}
	}
	format, err := output.ParseFormat(raw)
	if err != nil {
		return nil, err
	}
	return &GlobalFlags{Output: format, Wide: c.Bool("wide")}, nil
}

// mapFlags returns the flags identifying the map a trace belongs to.
func mapFlags(required bool) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "map-file",
			Aliases:  []string{"m"},
			Usage:    "Path to the map file the trace belongs to",
			Required: required,
		},
		&cli.StringFlag{
			Name:  "map-name",
			Usage: "Map name (defaults to the map file name without extension)",
		},
	}
}

// identityFromFlags computes the replay identity from --map-file and
// --map-name.
func identityFromFlags(c *cli.Context) (domain.TraceIdentity, error) {
	mapFile := c.String("map-file")
	mapBytes, err := os.ReadFile(mapFile)
	if err != nil {
		return domain.TraceIdentity{}, fmt.Errorf("read map file: %w", err)
	}

	nameStr := c.String("map-name")
	if nameStr == "" {
		base := filepath.Base(mapFile)
		nameStr = strings.TrimSuffix(base, filepath.Ext(base))
	}
	name, err := domain.NewMapName(nameStr)
	if err != nil {
		return domain.TraceIdentity{}, err
	}

	return mapident.Compute(name, mapBytes), nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
