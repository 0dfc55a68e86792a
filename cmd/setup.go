package main

import (
	"context"
	"fmt"

	"github.com/ncmkit/vipsweep/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes an example configuration file.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	fmt.Fprintf(r.output, "Wrote %s. Edit it, then run `vipsweep sweep`.\n", path)
	return nil
}
