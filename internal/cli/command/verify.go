// Package command provides CLI command definitions for ghosttape-cli.
package command

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/veldra/ghosttape/internal/cli/output"
	"github.com/veldra/ghosttape/internal/core/domain"
	"github.com/veldra/ghosttape/internal/storage/trace"
)

// verifyRow is the printable verification result.
type verifyRow struct {
	Path    string `json:"path"`
	MapName string `json:"map_name"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check a ghost trace against a map file's identity",
		ArgsUsage: "<trace-file>",
		Flags:     mapFlags(true),
		Action:    verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one trace file argument")
	}
	path := c.Args().First()

	expected, err := identityFromFlags(c)
	if err != nil {
		return err
	}

	row := verifyRow{Path: path, MapName: string(expected.MapName)}

	loader := trace.NewLoader()
	err = loader.Load(path, expected)
	switch {
	case err == nil:
		loader.Close()
		row.Status = "ok"
	case errors.Is(err, domain.ErrIdentityMismatch):
		row.Status = "identity-mismatch"
		row.Detail = errorDetail(err)
	case errors.Is(err, domain.ErrCorruptFile):
		row.Status = "corrupt"
		row.Detail = errorDetail(err)
	case errors.Is(err, domain.ErrUnsupportedSchema):
		row.Status = "unsupported-schema"
		row.Detail = errorDetail(err)
	default:
		return err
	}

	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	formatter := output.NewFormatter(flags.Output, flags.Wide)
	if err := formatter.Format(c.App.Writer, row); err != nil {
		return err
	}

	if row.Status != "ok" {
		return fmt.Errorf("verification failed: %s", row.Status)
	}
	return nil
}

// errorDetail extracts the structured code and details from a domain
// error for display.
func errorDetail(err error) string {
	var derr *domain.DomainError
	if errors.As(err, &derr) {
		if derr.Details != "" {
			return derr.Code + ": " + derr.Details
		}
		return derr.Code
	}
	return err.Error()
}
