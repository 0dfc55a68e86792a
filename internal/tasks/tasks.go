package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/shared"
)

// Mutator defines the playlist mutation operations the engine drives.
type Mutator interface {
	// FindOrCreate resolves the target playlist id by name, creating it when absent.
	FindOrCreate(ctx context.Context, name string) (int64, error)

	// AddIncrementally adds the given tracks, skipping ids already present.
	AddIncrementally(ctx context.Context, playlistID int64, trackIDs []int64) (models.MutationResult, error)

	// UnlikeAll clears the liked flag on every given track.
	UnlikeAll(ctx context.Context, trackIDs []int64) (models.MutationResult, error)

	// SetProgressFunc installs a per-operation progress callback.
	SetProgressFunc(fn func(done, total int))
}

// SweepOpts selects the sweep target.
type SweepOpts struct {
	PlaylistID   int64  // non-zero pins an explicit playlist, skipping find-or-create
	PlaylistName string // find-or-create target when PlaylistID is zero
}

// SweepResult contains all data from a full sweep operation.
type SweepResult struct {
	PlaylistID   int64                 // Target playlist the tracks were moved into
	VIPCount     int                   // Restricted tracks the sweep acted on
	AddResult    models.MutationResult // Outcome of the playlist add
	UnlikeResult models.MutationResult // Outcome of the unlike pass
}

// Failed reports whether any mutation ultimately failed.
func (r *SweepResult) Failed() bool {
	return r.AddResult.Failed > 0 || r.UnlikeResult.Failed > 0
}

// FailedIDs returns the union of track ids that failed either mutation,
// first occurrence order, deduplicated.
func (r *SweepResult) FailedIDs() []int64 {
	seen := make(map[int64]struct{})
	var ids []int64
	for _, id := range append(append([]int64{}, r.AddResult.FailedIDs...), r.UnlikeResult.FailedIDs...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// SweepEngine sequences the mutation phases of a run.
type SweepEngine struct {
	mutator Mutator
	logger  *log.Logger
}

// NewSweepEngine creates a SweepEngine with the provided mutator.
func NewSweepEngine(mutator Mutator, logger *log.Logger) *SweepEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SweepEngine{mutator: mutator, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default so progress reporting never stalls execution.
func (e *SweepEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Run moves the given tracks into the target playlist and unlikes them.
//
// Mutation outcomes are aggregated in the result, never raised: a non-nil
// error means the run could not proceed at all (no target playlist, or
// cancellation).
func (e *SweepEngine) Run(ctx context.Context, progress chan<- ProgressUpdate, trackIDs []int64, opts SweepOpts) (*SweepResult, error) {
	result := &SweepResult{VIPCount: len(trackIDs)}

	playlistID := opts.PlaylistID
	if playlistID == 0 {
		e.sendProgress(progress, resolvePlaylistUpdate(opts.PlaylistName))
		var err error
		playlistID, err = e.mutator.FindOrCreate(ctx, opts.PlaylistName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target playlist: %w", err)
		}
	}
	result.PlaylistID = playlistID

	e.mutator.SetProgressFunc(func(done, total int) {
		e.sendProgress(progress, addTracksUpdate(done, total))
	})
	addResult, err := e.mutator.AddIncrementally(ctx, playlistID, trackIDs)
	result.AddResult = addResult
	if err != nil {
		return result, err
	}

	e.mutator.SetProgressFunc(func(done, total int) {
		e.sendProgress(progress, unlikeTracksUpdate(done, total))
	})
	unlikeResult, err := e.mutator.UnlikeAll(ctx, trackIDs)
	result.UnlikeResult = unlikeResult
	e.mutator.SetProgressFunc(nil)
	if err != nil {
		return result, err
	}

	e.sendProgress(progress, doneUpdate())
	e.logger.Info("sweep finished",
		"playlist", playlistID,
		"added", addResult.Success,
		"skipped", addResult.Skipped,
		"unliked", unlikeResult.Success,
		"failed", addResult.Failed+unlikeResult.Failed)

	return result, nil
}
