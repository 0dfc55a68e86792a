package mutator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/shared"
	mock "github.com/ncmkit/vipsweep/internal/testing"
)

func newTestMutator(client API) *Mutator {
	m := NewMutator(client, 42, shared.NewLogger(io.Discard), testConfig(), shared.RetryPolicy{MaxAttempts: 1, Delay: time.Millisecond, Backoff: 1})
	m.sleep = func(ctx context.Context, d time.Duration) error { return ctx.Err() }
	return m
}

func ids(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i + 1)
	}
	return out
}

func TestChunkIDs(t *testing.T) {
	tests := []struct {
		name      string
		count     int
		size      int
		wantSizes []int
	}{
		{"empty input", 0, 50, nil},
		{"single partial chunk", 3, 50, []int{3}},
		{"exact multiple", 100, 50, []int{50, 50}},
		{"trailing partial chunk", 120, 50, []int{50, 50, 20}},
		{"non-positive size falls back", 60, 0, []int{50, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := ids(tt.count)
			chunks := chunkIDs(in, tt.size)
			if len(chunks) != len(tt.wantSizes) {
				t.Fatalf("got %d chunks, want %d", len(chunks), len(tt.wantSizes))
			}

			var flat []int64
			for i, c := range chunks {
				if len(c) != tt.wantSizes[i] {
					t.Errorf("chunk %d has %d ids, want %d", i, len(c), tt.wantSizes[i])
				}
				flat = append(flat, c...)
			}
			for i, id := range flat {
				if id != in[i] {
					t.Fatalf("concatenated chunks diverge from input at %d", i)
				}
			}
		})
	}
}

func TestBatchAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("splits into batches and counts successes", func(t *testing.T) {
		var batches [][]int64
		client := &mock.MockClient{
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				batches = append(batches, trackIDs)
				return nil
			},
		}

		result, err := newTestMutator(client).BatchAdd(ctx, 7, ids(120))
		if err != nil {
			t.Fatalf("BatchAdd() error = %v", err)
		}
		if len(batches) != 3 {
			t.Errorf("got %d batches, want 3", len(batches))
		}
		if result.Success != 120 || result.Failed != 0 {
			t.Errorf("result = %+v, want 120 successes", result)
		}
	})

	t.Run("failed chunk is tallied, run continues", func(t *testing.T) {
		calls := 0
		client := &mock.MockClient{
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				calls++
				if calls == 2 {
					return errors.New("boom")
				}
				return nil
			},
		}

		result, err := newTestMutator(client).BatchAdd(ctx, 7, ids(120))
		if err != nil {
			t.Fatalf("BatchAdd() error = %v", err)
		}
		if result.Success != 70 || result.Failed != 50 {
			t.Errorf("result = %+v, want 70 success / 50 failed", result)
		}
		if len(result.FailedIDs) != 50 || result.FailedIDs[0] != 51 {
			t.Errorf("FailedIDs = %d ids starting at %d, want 50 starting at 51", len(result.FailedIDs), result.FailedIDs[0])
		}
	})

	t.Run("rate limited chunk retries and succeeds", func(t *testing.T) {
		calls := 0
		client := &mock.MockClient{
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				calls++
				if calls <= 2 {
					return fmt.Errorf("add: %w", shared.ErrRateLimited)
				}
				return nil
			},
		}

		m := newTestMutator(client)
		var waits []time.Duration
		m.sleep = func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}

		result, err := m.BatchAdd(ctx, 7, ids(10))
		if err != nil {
			t.Fatalf("BatchAdd() error = %v", err)
		}
		if result.Success != 10 || result.Failed != 0 {
			t.Errorf("result = %+v, want 10 successes", result)
		}
		if calls != 3 {
			t.Errorf("client called %d times, want 3", calls)
		}

		// Staged waits of 5s and 15s, each retry also pausing the escalated
		// inter-request delay first.
		wantWaits := []time.Duration{5 * time.Second, time.Second, 15 * time.Second, 1500 * time.Millisecond}
		if len(waits) != len(wantWaits) {
			t.Fatalf("observed %d waits, want %d", len(waits), len(wantWaits))
		}
		for i := range wantWaits {
			if waits[i] != wantWaits[i] {
				t.Errorf("wait %d = %v, want %v", i, waits[i], wantWaits[i])
			}
		}
	})

	t.Run("persistent rate limiting gives up after three attempts", func(t *testing.T) {
		calls := 0
		client := &mock.MockClient{
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				calls++
				return shared.ErrRateLimited
			},
		}

		result, err := newTestMutator(client).BatchAdd(ctx, 7, ids(10))
		if err != nil {
			t.Fatalf("BatchAdd() error = %v", err)
		}
		if calls != 3 {
			t.Errorf("client called %d times, want 3", calls)
		}
		if result.Failed != 10 {
			t.Errorf("Failed = %d, want 10", result.Failed)
		}
	})

	t.Run("cancellation aborts with partial result", func(t *testing.T) {
		cancelCtx, cancel := context.WithCancel(ctx)
		calls := 0
		client := &mock.MockClient{
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				calls++
				cancel()
				return nil
			},
		}

		m := newTestMutator(client)
		m.sleep = shared.Sleep

		result, err := m.BatchAdd(cancelCtx, 7, ids(120))
		if err == nil {
			t.Fatal("BatchAdd() expected cancellation error")
		}
		if calls != 1 {
			t.Errorf("client called %d times after cancel, want 1", calls)
		}
		if result.Success != 50 {
			t.Errorf("partial Success = %d, want 50", result.Success)
		}
	})
}

func TestAddIncrementally(t *testing.T) {
	ctx := context.Background()

	t.Run("skips tracks already present", func(t *testing.T) {
		var added []int64
		client := &mock.MockClient{
			PlaylistDetailFunc: func(ctx context.Context, playlistID int64) ([]models.Track, error) {
				return []models.Track{{ID: 1}, {ID: 3}}, nil
			},
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				added = append(added, trackIDs...)
				return nil
			},
		}

		result, err := newTestMutator(client).AddIncrementally(ctx, 7, []int64{1, 2, 3, 4})
		if err != nil {
			t.Fatalf("AddIncrementally() error = %v", err)
		}
		if result.Skipped != 2 || result.Success != 2 {
			t.Errorf("result = %+v, want 2 skipped / 2 added", result)
		}
		if len(added) != 2 || added[0] != 2 || added[1] != 4 {
			t.Errorf("added = %v, want [2 4]", added)
		}
	})

	t.Run("all present means no mutation at all", func(t *testing.T) {
		client := &mock.MockClient{
			PlaylistDetailFunc: func(ctx context.Context, playlistID int64) ([]models.Track, error) {
				return []models.Track{{ID: 1}, {ID: 2}}, nil
			},
			AddTracksFunc: func(ctx context.Context, playlistID int64, trackIDs []int64) error {
				t.Error("AddTracks called with nothing to add")
				return nil
			},
		}

		result, err := newTestMutator(client).AddIncrementally(ctx, 7, []int64{1, 2})
		if err != nil {
			t.Fatalf("AddIncrementally() error = %v", err)
		}
		if result.Skipped != 2 || result.Success != 0 {
			t.Errorf("result = %+v, want everything skipped", result)
		}
	})

	t.Run("detail fetch failure aborts", func(t *testing.T) {
		client := &mock.MockClient{
			PlaylistDetailFunc: func(ctx context.Context, playlistID int64) ([]models.Track, error) {
				return nil, errors.New("boom")
			},
		}

		if _, err := newTestMutator(client).AddIncrementally(ctx, 7, []int64{1}); err == nil {
			t.Fatal("AddIncrementally() expected error")
		}
	})
}

func TestFindOrCreate(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		playlists []models.Playlist
		created   int64
		want      int64
		wantNew   bool
	}{
		{
			name: "exact match wins",
			playlists: []models.Playlist{
				{ID: 10, UserID: 42, Name: "VIP歌曲"},
			},
			want: 10,
		},
		{
			name: "case sensitive match",
			playlists: []models.Playlist{
				{ID: 10, UserID: 42, Name: "vip歌曲"},
			},
			created: 11,
			want:    11,
			wantNew: true,
		},
		{
			name: "another user's playlist never matches",
			playlists: []models.Playlist{
				{ID: 10, UserID: 99, Name: "VIP歌曲"},
			},
			created: 12,
			want:    12,
			wantNew: true,
		},
		{
			name:    "no playlists at all",
			created: 13,
			want:    13,
			wantNew: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			createdCalled := false
			client := &mock.MockClient{
				UserPlaylistsFunc: func(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
					return tt.playlists, nil
				},
				CreatePlaylistFunc: func(ctx context.Context, name string) (int64, error) {
					createdCalled = true
					return tt.created, nil
				},
			}

			got, err := newTestMutator(client).FindOrCreate(ctx, "VIP歌曲")
			if err != nil {
				t.Fatalf("FindOrCreate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("FindOrCreate() = %d, want %d", got, tt.want)
			}
			if createdCalled != tt.wantNew {
				t.Errorf("created = %v, want %v", createdCalled, tt.wantNew)
			}
		})
	}
}

func TestUnlikeAll(t *testing.T) {
	ctx := context.Background()

	t.Run("one call per track", func(t *testing.T) {
		var unliked []int64
		client := &mock.MockClient{
			SetLikeTrackFunc: func(ctx context.Context, trackID int64, liked bool) error {
				if liked {
					t.Errorf("SetLikeTrack(%d, true), want liked=false", trackID)
				}
				unliked = append(unliked, trackID)
				return nil
			},
		}

		result, err := newTestMutator(client).UnlikeAll(ctx, []int64{1, 2, 3})
		if err != nil {
			t.Fatalf("UnlikeAll() error = %v", err)
		}
		if result.Success != 3 {
			t.Errorf("Success = %d, want 3", result.Success)
		}
		if len(unliked) != 3 {
			t.Errorf("unliked %d tracks, want 3", len(unliked))
		}
	})

	t.Run("one failure does not stop the rest", func(t *testing.T) {
		client := &mock.MockClient{
			SetLikeTrackFunc: func(ctx context.Context, trackID int64, liked bool) error {
				if trackID == 2 {
					return errors.New("boom")
				}
				return nil
			},
		}

		result, err := newTestMutator(client).UnlikeAll(ctx, []int64{1, 2, 3})
		if err != nil {
			t.Fatalf("UnlikeAll() error = %v", err)
		}
		if result.Success != 2 || result.Failed != 1 {
			t.Errorf("result = %+v, want 2 success / 1 failed", result)
		}
		if len(result.FailedIDs) != 1 || result.FailedIDs[0] != 2 {
			t.Errorf("FailedIDs = %v, want [2]", result.FailedIDs)
		}
	})

	t.Run("pacing state is independent from the add path", func(t *testing.T) {
		client := &mock.MockClient{}
		m := newTestMutator(client)

		var waits []time.Duration
		m.sleep = func(ctx context.Context, d time.Duration) error {
			waits = append(waits, d)
			return nil
		}

		if _, err := m.BatchAdd(ctx, 7, ids(120)); err != nil {
			t.Fatalf("BatchAdd() error = %v", err)
		}
		if _, err := m.UnlikeAll(ctx, []int64{1, 2}); err != nil {
			t.Fatalf("UnlikeAll() error = %v", err)
		}

		// Three chunks pause twice, two unlikes pause once. Every pause is
		// the base delay since nothing was throttled.
		if len(waits) != 3 {
			t.Fatalf("observed %d pauses, want 3", len(waits))
		}
		for i, w := range waits {
			if w != 500*time.Millisecond {
				t.Errorf("pause %d = %v, want 500ms", i, w)
			}
		}
	})
}

func TestSetProgressFunc(t *testing.T) {
	client := &mock.MockClient{}
	m := newTestMutator(client)

	var reports [][2]int
	m.SetProgressFunc(func(done, total int) {
		reports = append(reports, [2]int{done, total})
	})

	if _, err := m.BatchAdd(context.Background(), 7, ids(120)); err != nil {
		t.Fatalf("BatchAdd() error = %v", err)
	}

	want := [][2]int{{50, 120}, {100, 120}, {120, 120}}
	if len(reports) != len(want) {
		t.Fatalf("got %d reports, want %d", len(reports), len(want))
	}
	for i := range want {
		if reports[i] != want[i] {
			t.Errorf("report %d = %v, want %v", i, reports[i], want[i])
		}
	}
}
