// Package mutator performs the bulk playlist mutations: find-or-create the
// target playlist, add tracks to it in batches, and clear liked flags.
//
// Remote services throttle bursty mutation traffic, so every loop here runs
// under an adaptive pacing policy: a self-tuning inter-request delay that
// escalates on throttled responses and decays back toward the configured
// baseline after consecutive successes. Mutations are sequential on purpose;
// the pacing is the correctness mechanism, not an incidental limitation.
package mutator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/shared"
)

// API is the slice of the remote client the mutator needs.
type API interface {
	UserPlaylists(ctx context.Context, userID int64, limit int) ([]models.Playlist, error)
	PlaylistDetail(ctx context.Context, playlistID int64) ([]models.Track, error)
	CreatePlaylist(ctx context.Context, name string) (int64, error)
	AddTracks(ctx context.Context, playlistID int64, trackIDs []int64) error
	SetLikeTrack(ctx context.Context, trackID int64, liked bool) error
}

// Config carries the mutation batch size and the pacing tunables.
type Config struct {
	BatchSize int

	BaseDelay        time.Duration
	MaxDelay         time.Duration
	BackoffStep      time.Duration
	AddBackoffCap    time.Duration // staged-backoff cap on the batch-add path
	UnlikeBackoffCap time.Duration // staged-backoff cap on the per-item unlike path
	FinalBackoffCap  time.Duration // cap on the larger wait before the final retry
	MaxAttempts      int           // attempts per chunk or item, including the first

	RecoveryThreshold int
	RecoveryFactor    float64
}

// ConfigFrom assembles a Config from the [settings] and [pacing] sections,
// applying the built-in defaults to anything unset.
func ConfigFrom(settings shared.SettingsConfig, pacing shared.PacingConfig) Config {
	cfg := Config{
		BatchSize:         settings.BatchSize,
		BaseDelay:         time.Duration(settings.RequestDelay * float64(time.Second)),
		MaxDelay:          time.Duration(pacing.MaxDelay * float64(time.Second)),
		BackoffStep:       time.Duration(pacing.BackoffStep * float64(time.Second)),
		AddBackoffCap:     time.Duration(pacing.AddBackoffCap) * time.Second,
		UnlikeBackoffCap:  time.Duration(pacing.UnlikeBackoffCap) * time.Second,
		FinalBackoffCap:   time.Duration(pacing.FinalBackoffCap) * time.Second,
		MaxAttempts:       pacing.MaxAttempts,
		RecoveryThreshold: pacing.RecoveryThreshold,
		RecoveryFactor:    pacing.RecoveryFactor,
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 500 * time.Millisecond
	}
	if cfg.MaxDelay < cfg.BaseDelay {
		cfg.MaxDelay = 5 * time.Second
	}
	if cfg.BackoffStep <= 0 {
		cfg.BackoffStep = 500 * time.Millisecond
	}
	if cfg.AddBackoffCap <= 0 {
		cfg.AddBackoffCap = 15 * time.Second
	}
	if cfg.UnlikeBackoffCap <= 0 {
		cfg.UnlikeBackoffCap = 30 * time.Second
	}
	if cfg.FinalBackoffCap <= 0 {
		cfg.FinalBackoffCap = 60 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RecoveryThreshold <= 0 {
		cfg.RecoveryThreshold = 3
	}
	if cfg.RecoveryFactor <= 0 || cfg.RecoveryFactor >= 1 {
		cfg.RecoveryFactor = 0.7
	}

	return cfg
}

// Mutator executes bulk playlist mutations with adaptive pacing.
type Mutator struct {
	client API
	userID int64
	logger *log.Logger
	cfg    Config
	retry  shared.RetryPolicy

	// sleep is swapped out in tests to observe pacing without waiting.
	sleep func(ctx context.Context, d time.Duration) error

	onProgress func(done, total int)
}

// SetProgressFunc installs a callback invoked after every chunk or item with
// the running tally. A nil fn disables reporting.
func (m *Mutator) SetProgressFunc(fn func(done, total int)) {
	m.onProgress = fn
}

func (m *Mutator) report(done, total int) {
	if m.onProgress != nil {
		m.onProgress(done, total)
	}
}

// NewMutator creates a Mutator acting as the given user.
func NewMutator(client API, userID int64, logger *log.Logger, cfg Config, retry shared.RetryPolicy) *Mutator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Mutator{
		client: client,
		userID: userID,
		logger: logger,
		cfg:    cfg,
		retry:  retry,
		sleep:  shared.Sleep,
	}
}

// FindOrCreate resolves the target playlist by exact, case-sensitive name
// match among the user's own playlists, creating a new empty playlist only
// when no match exists.
func (m *Mutator) FindOrCreate(ctx context.Context, name string) (int64, error) {
	var playlists []models.Playlist
	err := shared.Retry(ctx, m.logger, "list playlists", m.retry, func() error {
		var listErr error
		playlists, listErr = m.client.UserPlaylists(ctx, m.userID, 1000)
		return listErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list playlists: %w", err)
	}

	for _, pl := range playlists {
		if pl.UserID == m.userID && pl.Name == name {
			m.logger.Info("found existing playlist", "name", name, "id", pl.ID)
			return pl.ID, nil
		}
	}

	var id int64
	err = shared.Retry(ctx, m.logger, "create playlist", m.retry, func() error {
		var createErr error
		id, createErr = m.client.CreatePlaylist(ctx, name)
		return createErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to create playlist %q: %w", name, err)
	}

	m.logger.Info("created playlist", "name", name, "id", id)
	return id, nil
}

// AddIncrementally adds only the tracks not already present in the playlist,
// so repeated runs never double-add. Skipped counts the ids filtered out.
func (m *Mutator) AddIncrementally(ctx context.Context, playlistID int64, trackIDs []int64) (models.MutationResult, error) {
	var existing []models.Track
	err := shared.Retry(ctx, m.logger, "fetch playlist tracks", m.retry, func() error {
		var fetchErr error
		existing, fetchErr = m.client.PlaylistDetail(ctx, playlistID)
		return fetchErr
	})
	if err != nil {
		return models.MutationResult{}, fmt.Errorf("failed to fetch playlist tracks: %w", err)
	}

	present := make(map[int64]struct{}, len(existing))
	for _, t := range existing {
		present[t.ID] = struct{}{}
	}

	remaining := make([]int64, 0, len(trackIDs))
	for _, id := range trackIDs {
		if _, ok := present[id]; !ok {
			remaining = append(remaining, id)
		}
	}

	skipped := len(trackIDs) - len(remaining)
	if skipped > 0 {
		m.logger.Info("skipping tracks already in playlist", "count", skipped)
	}
	if len(remaining) == 0 {
		return models.MutationResult{Skipped: skipped}, nil
	}

	result, err := m.BatchAdd(ctx, playlistID, remaining)
	result.Skipped = skipped
	return result, err
}

// BatchAdd partitions trackIDs into fixed-size, order-preserving chunks and
// issues one add-tracks mutation per chunk under the adaptive pacing policy.
//
// A non-nil error means the run was canceled; partial failures are reported
// in the result, never as an error.
func (m *Mutator) BatchAdd(ctx context.Context, playlistID int64, trackIDs []int64) (models.MutationResult, error) {
	var result models.MutationResult
	if len(trackIDs) == 0 {
		return result, nil
	}

	state := newRateState(m.cfg)
	first := true

	chunks := chunkIDs(trackIDs, m.cfg.BatchSize)
	m.logger.Info("adding tracks to playlist", "total", len(trackIDs), "batches", len(chunks))

	processed := 0
	for i, chunk := range chunks {
		ok, err := m.paced(ctx, state, m.cfg.AddBackoffCap, &first, func() error {
			return m.client.AddTracks(ctx, playlistID, chunk)
		})
		if err != nil {
			return result, err
		}
		if ok {
			result.Success += len(chunk)
		} else {
			m.logger.Warn("batch failed", "batch", i+1, "size", len(chunk))
			result.Failed += len(chunk)
			result.FailedIDs = append(result.FailedIDs, chunk...)
		}
		processed += len(chunk)
		m.report(processed, len(trackIDs))
	}

	return result, nil
}

// UnlikeAll clears the liked flag one track at a time; the service has no
// bulk unlike. Same pacing policy as BatchAdd with per-item granularity and
// its own independent state.
func (m *Mutator) UnlikeAll(ctx context.Context, trackIDs []int64) (models.MutationResult, error) {
	var result models.MutationResult
	if len(trackIDs) == 0 {
		return result, nil
	}

	state := newRateState(m.cfg)
	first := true

	m.logger.Info("clearing liked flags", "total", len(trackIDs))

	for i, id := range trackIDs {
		trackID := id
		ok, err := m.paced(ctx, state, m.cfg.UnlikeBackoffCap, &first, func() error {
			return m.client.SetLikeTrack(ctx, trackID, false)
		})
		if err != nil {
			return result, err
		}
		if ok {
			result.Success++
		} else {
			m.logger.Warn("unlike failed", "track", trackID)
			result.Failed++
			result.FailedIDs = append(result.FailedIDs, trackID)
		}
		m.report(i+1, len(trackIDs))
	}

	return result, nil
}

// paced executes one mutation operation under the pacing policy: observe the
// current delay before every operation after the first, retry throttled
// operations with staged backoff, and fail anything else immediately.
//
// Returns whether the operation ultimately succeeded; the error is non-nil
// only when the context was canceled.
func (m *Mutator) paced(ctx context.Context, state *rateState, stageCap time.Duration, first *bool, op func() error) (bool, error) {
	for retry := 0; ; retry++ {
		if !*first {
			if err := m.sleep(ctx, state.delay()); err != nil {
				return false, err
			}
		}
		*first = false

		err := op()
		if err == nil {
			state.onSuccess()
			return true, nil
		}

		if !errors.Is(err, shared.ErrRateLimited) {
			m.logger.Warn("mutation failed", "err", err)
			return false, nil
		}

		wait := state.onRateLimit(retry, stageCap, m.cfg.FinalBackoffCap)
		if retry >= m.cfg.MaxAttempts-1 {
			m.logger.Warn("still rate limited after retries, giving up", "triggers", state.triggers)
			return false, nil
		}

		m.logger.Warn("rate limited, backing off", "wait", wait, "trigger", state.triggers)
		if err := m.sleep(ctx, wait); err != nil {
			return false, err
		}
	}
}

// chunkIDs splits ids into contiguous slices of at most size elements,
// preserving order. Concatenating the chunks reproduces the input exactly.
func chunkIDs(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = 50
	}
	chunks := make([][]int64, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := start + size
		if end > len(ids) {
			end = len(ids)
		}
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}
