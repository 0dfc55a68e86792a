package scanner

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/shared"
	mock "github.com/ncmkit/vipsweep/internal/testing"
)

func newTestScanner(client API) *Scanner {
	policy := shared.RetryPolicy{MaxAttempts: 1, Delay: time.Millisecond, Backoff: 1}
	return NewScanner(client, shared.NewLogger(io.Discard), policy)
}

func TestClassify(t *testing.T) {
	tracks := []models.Track{
		{ID: 1, Name: "free", Fee: models.FeeFree},
		{ID: 2, Name: "vip only", Fee: models.FeeVIPOnly},
		{ID: 3, Name: "purchased", Fee: models.FeePurchase},
		{ID: 4, Name: "vip high quality", Fee: models.FeeVIPHighQuality},
		{ID: 5, Name: "another vip", Fee: models.FeeVIPOnly},
	}

	vip := Classify(tracks)

	if len(vip) != 2 {
		t.Fatalf("Classify() returned %d tracks, want 2", len(vip))
	}
	if vip[0].ID != 2 || vip[1].ID != 5 {
		t.Errorf("Classify() order = [%d %d], want [2 5]", vip[0].ID, vip[1].ID)
	}
}

// Fee code 8 is free to play at standard quality and must never land in
// the restricted set.
func TestClassify_HighQualityFeeIsNotRestricted(t *testing.T) {
	vip := Classify([]models.Track{{ID: 1, Fee: models.FeeVIPHighQuality}})
	if len(vip) != 0 {
		t.Errorf("fee 8 classified as restricted")
	}
}

func TestLikedPlaylistID(t *testing.T) {
	tests := []struct {
		name      string
		playlists []models.Playlist
		want      int64
		wantErr   error
	}{
		{
			name: "special type marker wins",
			playlists: []models.Playlist{
				{ID: 1, UserID: 42, Name: "随便听听"},
				{ID: 2, UserID: 42, Name: "daily mix", SpecialType: models.LikedSongsSpecialType},
			},
			want: 2,
		},
		{
			name: "marker beats name heuristic",
			playlists: []models.Playlist{
				{ID: 1, UserID: 42, Name: "我喜欢的音乐"},
				{ID: 2, UserID: 42, Name: "plain", SpecialType: models.LikedSongsSpecialType},
			},
			want: 2,
		},
		{
			name: "name heuristic fallback",
			playlists: []models.Playlist{
				{ID: 1, UserID: 42, Name: "随便听听"},
				{ID: 2, UserID: 42, Name: "我喜欢的音乐"},
			},
			want: 2,
		},
		{
			name: "no liked playlist",
			playlists: []models.Playlist{
				{ID: 1, UserID: 42, Name: "随便听听"},
			},
			wantErr: shared.ErrPlaylistNotFound,
		},
		{
			name:    "empty playlist list",
			wantErr: shared.ErrPlaylistNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mock.MockClient{
				UserPlaylistsFunc: func(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
					return tt.playlists, nil
				},
			}

			got, err := newTestScanner(client).LikedPlaylistID(context.Background(), 42)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("LikedPlaylistID() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("LikedPlaylistID() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("LikedPlaylistID() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestScan(t *testing.T) {
	t.Run("classifies the liked collection", func(t *testing.T) {
		client := &mock.MockClient{
			UserPlaylistsFunc: func(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
				return []models.Playlist{
					{ID: 9, UserID: 42, Name: "我喜欢的音乐", SpecialType: models.LikedSongsSpecialType},
				}, nil
			},
			PlaylistDetailFunc: func(ctx context.Context, playlistID int64) ([]models.Track, error) {
				if playlistID != 9 {
					t.Errorf("PlaylistDetail(%d), want 9", playlistID)
				}
				return []models.Track{
					{ID: 1, Fee: models.FeeFree},
					{ID: 2, Fee: models.FeeVIPOnly},
					{ID: 3, Fee: models.FeeVIPHighQuality},
				}, nil
			},
		}

		result, err := newTestScanner(client).Scan(context.Background(), 42)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if result.PlaylistID != 9 {
			t.Errorf("PlaylistID = %d, want 9", result.PlaylistID)
		}
		if len(result.Liked) != 3 || len(result.VIP) != 1 {
			t.Errorf("got %d liked / %d vip, want 3 / 1", len(result.Liked), len(result.VIP))
		}
		if ids := result.VIPTrackIDs(); len(ids) != 1 || ids[0] != 2 {
			t.Errorf("VIPTrackIDs() = %v, want [2]", ids)
		}
	})

	t.Run("empty liked collection is a valid scan", func(t *testing.T) {
		client := &mock.MockClient{
			UserPlaylistsFunc: func(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
				return []models.Playlist{{ID: 9, UserID: 42, SpecialType: models.LikedSongsSpecialType}}, nil
			},
		}

		result, err := newTestScanner(client).Scan(context.Background(), 42)
		if err != nil {
			t.Fatalf("Scan() error = %v", err)
		}
		if len(result.Liked) != 0 || len(result.VIP) != 0 {
			t.Errorf("got %d liked / %d vip, want empty", len(result.Liked), len(result.VIP))
		}
	})

	t.Run("detail failure propagates", func(t *testing.T) {
		client := &mock.MockClient{
			UserPlaylistsFunc: func(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
				return []models.Playlist{{ID: 9, UserID: 42, SpecialType: models.LikedSongsSpecialType}}, nil
			},
			PlaylistDetailFunc: func(ctx context.Context, playlistID int64) ([]models.Track, error) {
				return nil, errors.New("boom")
			},
		}

		if _, err := newTestScanner(client).Scan(context.Background(), 42); err == nil {
			t.Fatal("Scan() expected error")
		}
	})
}
