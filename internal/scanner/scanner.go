// Package scanner fetches the user's liked-songs collection and classifies
// which tracks are restricted to paying subscribers.
package scanner

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/shared"
)

// likedNameHint is the substring heuristic used when the provider's
// reserved liked-songs marker is absent. The default collection is named
// "我喜欢的音乐".
const likedNameHint = "喜欢"

// API is the slice of the remote client the scanner needs.
type API interface {
	UserPlaylists(ctx context.Context, userID int64, limit int) ([]models.Playlist, error)
	PlaylistDetail(ctx context.Context, playlistID int64) ([]models.Track, error)
}

// Scanner resolves and classifies the liked-songs collection.
type Scanner struct {
	client API
	logger *log.Logger
	retry  shared.RetryPolicy
}

// ScanResult holds one full scan: everything liked and the VIP subset.
type ScanResult struct {
	PlaylistID int64
	Liked      []models.Track
	VIP        []models.Track
}

// VIPTrackIDs returns the ids of the VIP subset in scan order.
func (r *ScanResult) VIPTrackIDs() []int64 {
	ids := make([]int64, 0, len(r.VIP))
	for _, t := range r.VIP {
		ids = append(ids, t.ID)
	}
	return ids
}

// NewScanner creates a Scanner with the provided dependencies.
func NewScanner(client API, logger *log.Logger, retry shared.RetryPolicy) *Scanner {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Scanner{client: client, logger: logger, retry: retry}
}

// Scan fetches the liked-songs collection for the user and classifies each
// track. Each call re-fetches everything; there is no incremental mode.
func (s *Scanner) Scan(ctx context.Context, userID int64) (*ScanResult, error) {
	playlistID, err := s.LikedPlaylistID(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("resolved liked-songs playlist", "id", playlistID)

	var liked []models.Track
	err = shared.Retry(ctx, s.logger, "fetch liked songs", s.retry, func() error {
		var fetchErr error
		liked, fetchErr = s.client.PlaylistDetail(ctx, playlistID)
		return fetchErr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch liked songs: %w", err)
	}

	result := &ScanResult{PlaylistID: playlistID, Liked: liked, VIP: Classify(liked)}
	s.logger.Info("scan complete", "liked", len(result.Liked), "vip", len(result.VIP))
	return result, nil
}

// LikedPlaylistID resolves the liked-songs playlist among the user's owned
// playlists: the reserved marker wins, a name-substring heuristic is the
// fallback. A missing liked-songs playlist is fatal for the run.
func (s *Scanner) LikedPlaylistID(ctx context.Context, userID int64) (int64, error) {
	var playlists []models.Playlist
	err := shared.Retry(ctx, s.logger, "list playlists", s.retry, func() error {
		var listErr error
		playlists, listErr = s.client.UserPlaylists(ctx, userID, 1000)
		return listErr
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list playlists: %w", err)
	}

	var fallback int64
	for _, pl := range playlists {
		if pl.UserID != userID {
			continue
		}
		if pl.IsLikedSongs() {
			return pl.ID, nil
		}
		if fallback == 0 && strings.Contains(pl.Name, likedNameHint) {
			fallback = pl.ID
		}
	}

	if fallback != 0 {
		s.logger.Debug("liked-songs marker absent, matched by name")
		return fallback, nil
	}

	return 0, fmt.Errorf("%w: liked songs collection", shared.ErrPlaylistNotFound)
}

// Classify returns the subscriber-restricted subset of tracks in order.
//
// Only fee code 1 counts. Code 8 tracks play free at standard quality and
// must be left alone.
func Classify(tracks []models.Track) []models.Track {
	var vip []models.Track
	for _, t := range tracks {
		if t.VIPOnly() {
			vip = append(vip, t)
		}
	}
	return vip
}
