package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ncmkit/vipsweep/internal/formatter"
	"github.com/ncmkit/vipsweep/internal/shared"
	"github.com/ncmkit/vipsweep/internal/tasks"
	"github.com/ncmkit/vipsweep/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI runs the sweep behind a live progress view. Login and scanning still
// happen on the plain terminal so QR codes and prompts render normally; the
// alternate screen takes over only for the mutation phases.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	cfg, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	// Console output is owned by bubbletea during the run, so logs go to a
	// file regardless of logging.save_to_file.
	logFile, logPath, err := shared.OpenLogFile("")
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	cfg.Logging.SaveToFile = false
	r.logWriter = logFile

	p, err := r.buildPipeline(cfg)
	if err != nil {
		return err
	}

	formatter.Banner(r.output)
	profile, err := p.login(ctx, cfg)
	if err != nil {
		return err
	}
	formatter.UserTable(r.output, profile)

	scan, err := p.scanner.Scan(ctx, profile.UserID)
	if err != nil {
		return err
	}
	if len(scan.VIP) == 0 {
		fmt.Fprintln(r.output, "Nothing to sweep.")
		return nil
	}

	engine := tasks.NewSweepEngine(p.newMutator(cfg, profile.UserID), p.logger)
	run := func(progress chan<- tasks.ProgressUpdate) (*tasks.SweepResult, error) {
		return engine.Run(ctx, progress, scan.VIPTrackIDs(), tasks.SweepOpts{
			PlaylistID:   cfg.Playlist.VIPPlaylistID,
			PlaylistName: cfg.Playlist.VIPPlaylistName,
		})
	}

	program := tea.NewProgram(ui.NewModel(run), tea.WithContext(ctx))
	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("progress view failed: %w", err)
	}

	result, runErr := final.(ui.Model).Result()
	if runErr != nil {
		return runErr
	}
	if result == nil {
		fmt.Fprintln(r.output, "Cancelled.")
		return nil
	}

	formatter.SummaryTable(r.output, result.VIPCount, result.AddResult, result.UnlikeResult)
	fmt.Fprintf(r.output, "Log written to %s\n", logPath)
	return r.reportFailures(result)
}
