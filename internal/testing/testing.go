// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"net/http"
	"os"
	"testing"

	"github.com/ncmkit/vipsweep/internal/models"
)

// MockClient is a configurable test double for the remote API client. Any
// nil function falls back to a benign default, so tests only wire what they
// exercise.
type MockClient struct {
	QRKeyFunc          func(ctx context.Context) (string, error)
	QRCheckFunc        func(ctx context.Context, unikey string) (int, error)
	SendPhoneCodeFunc  func(ctx context.Context, phone string) error
	PhoneLoginFunc     func(ctx context.Context, phone, captcha string) error
	AccountInfoFunc    func(ctx context.Context) (*models.UserProfile, error)
	UserPlaylistsFunc  func(ctx context.Context, userID int64, limit int) ([]models.Playlist, error)
	PlaylistDetailFunc func(ctx context.Context, playlistID int64) ([]models.Track, error)
	CreatePlaylistFunc func(ctx context.Context, name string) (int64, error)
	AddTracksFunc      func(ctx context.Context, playlistID int64, trackIDs []int64) error
	SetLikeTrackFunc   func(ctx context.Context, trackID int64, liked bool) error

	Imported []models.CookieEntry
	Raw      []*http.Cookie
	Exported []models.CookieEntry
}

func (m *MockClient) QRKey(ctx context.Context) (string, error) {
	if m.QRKeyFunc != nil {
		return m.QRKeyFunc(ctx)
	}
	return "test-key", nil
}

func (m *MockClient) QRCheck(ctx context.Context, unikey string) (int, error) {
	if m.QRCheckFunc != nil {
		return m.QRCheckFunc(ctx, unikey)
	}
	return 0, errors.New("no QRCheckFunc configured")
}

func (m *MockClient) SendPhoneCode(ctx context.Context, phone string) error {
	if m.SendPhoneCodeFunc != nil {
		return m.SendPhoneCodeFunc(ctx, phone)
	}
	return nil
}

func (m *MockClient) PhoneLogin(ctx context.Context, phone, captcha string) error {
	if m.PhoneLoginFunc != nil {
		return m.PhoneLoginFunc(ctx, phone, captcha)
	}
	return nil
}

func (m *MockClient) AccountInfo(ctx context.Context) (*models.UserProfile, error) {
	if m.AccountInfoFunc != nil {
		return m.AccountInfoFunc(ctx)
	}
	return &models.UserProfile{UserID: 42, Nickname: "tester"}, nil
}

func (m *MockClient) UserPlaylists(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
	if m.UserPlaylistsFunc != nil {
		return m.UserPlaylistsFunc(ctx, userID, limit)
	}
	return nil, nil
}

func (m *MockClient) PlaylistDetail(ctx context.Context, playlistID int64) ([]models.Track, error) {
	if m.PlaylistDetailFunc != nil {
		return m.PlaylistDetailFunc(ctx, playlistID)
	}
	return nil, nil
}

func (m *MockClient) CreatePlaylist(ctx context.Context, name string) (int64, error) {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, name)
	}
	return 0, errors.New("no CreatePlaylistFunc configured")
}

func (m *MockClient) AddTracks(ctx context.Context, playlistID int64, trackIDs []int64) error {
	if m.AddTracksFunc != nil {
		return m.AddTracksFunc(ctx, playlistID, trackIDs)
	}
	return nil
}

func (m *MockClient) SetLikeTrack(ctx context.Context, trackID int64, liked bool) error {
	if m.SetLikeTrackFunc != nil {
		return m.SetLikeTrackFunc(ctx, trackID, liked)
	}
	return nil
}

func (m *MockClient) ExportCookies() []models.CookieEntry {
	return m.Exported
}

func (m *MockClient) ImportCookies(entries []models.CookieEntry) {
	m.Imported = append(m.Imported, entries...)
}

func (m *MockClient) SetCookies(cookies []*http.Cookie) {
	m.Raw = append(m.Raw, cookies...)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
