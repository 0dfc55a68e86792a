package main

import (
	"context"
	"fmt"

	"github.com/ncmkit/vipsweep/internal/formatter"
	"github.com/urfave/cli/v3"
)

// Scan authenticates, scans liked songs, and prints the restricted subset
// without mutating anything.
func (r *Runner) Scan(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	p, err := r.buildPipeline(cfg)
	if err != nil {
		return err
	}

	profile, err := p.login(ctx, cfg)
	if err != nil {
		return err
	}
	formatter.UserTable(r.output, profile)

	scan, err := p.scanner.Scan(ctx, profile.UserID)
	if err != nil {
		return err
	}

	fmt.Fprintf(r.output, "Scanned %d liked songs, %d restricted to subscribers.\n\n", len(scan.Liked), len(scan.VIP))
	if len(scan.VIP) == 0 {
		return nil
	}

	formatter.TrackTable(r.output, "Restricted tracks", scan.VIP, cmd.Int("limit"))

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteCSVExport(scan.VIP, path); err != nil {
			return fmt.Errorf("failed to export CSV: %w", err)
		}
		fmt.Fprintf(r.output, "Wrote %d tracks to %s\n", len(scan.VIP), path)
	}

	return nil
}
