package main

import (
	"context"
	"fmt"

	"github.com/ncmkit/vipsweep/internal/formatter"
	"github.com/ncmkit/vipsweep/internal/shared"
	"github.com/ncmkit/vipsweep/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Sweep runs the full pipeline: authenticate, scan liked songs, then move
// the restricted subset into the target playlist and unlike it.
func (r *Runner) Sweep(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	p, err := r.buildPipeline(cfg)
	if err != nil {
		return err
	}

	formatter.Banner(r.output)
	if cfg.Settings.DryRun {
		formatter.Warn(r.output, "Dry run: nothing will be modified.")
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
		fmt.Fprintln(r.output, "Nothing to sweep.")
		return nil
	}

	formatter.TrackTable(r.output, "Restricted tracks", scan.VIP, 20)

	if cfg.Settings.DryRun {
		fmt.Fprintf(r.output, "Would move %d tracks into %q and unlike them.\n", len(scan.VIP), targetLabel(cfg))
		return nil
	}

	if !cmd.Bool("yes") {
		msg := fmt.Sprintf("Move %d tracks into %q and unlike them?", len(scan.VIP), targetLabel(cfg))
		if !shared.Confirm(r.input, r.output, msg, false) {
			fmt.Fprintln(r.output, "Aborted.")
			return nil
		}
	}

	engine := tasks.NewSweepEngine(p.newMutator(cfg, profile.UserID), p.logger)
	result, err := engine.Run(ctx, nil, scan.VIPTrackIDs(), tasks.SweepOpts{
		PlaylistID:   cfg.Playlist.VIPPlaylistID,
		PlaylistName: cfg.Playlist.VIPPlaylistName,
	})
	if err != nil {
		return err
	}

	formatter.SummaryTable(r.output, result.VIPCount, result.AddResult, result.UnlikeResult)
	return r.reportFailures(result)
}

// reportFailures writes failed track ids to a file next to the binary so a
// later run can be retried against them. A partial failure does not fail
// the command; the summary already surfaced it.
func (r *Runner) reportFailures(result *tasks.SweepResult) error {
	if !result.Failed() {
		return nil
	}

	ids := result.FailedIDs()
	if err := formatter.WriteFailedIDs(formatter.FailedIDsFile, ids); err != nil {
		r.logger.Warn("could not write failed ids", "err", err)
		return nil
	}
	formatter.Warn(r.output, "%d tracks failed; ids written to %s", len(ids), formatter.FailedIDsFile)
	return nil
}

func targetLabel(cfg *shared.Config) string {
	if cfg.Playlist.VIPPlaylistID != 0 {
		return fmt.Sprintf("playlist %d", cfg.Playlist.VIPPlaylistID)
	}
	return cfg.Playlist.VIPPlaylistName
}
