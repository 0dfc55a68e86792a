// NetEase Cloud Music web API client.
//
// The client owns the cookie session: cookies captured during login flows
// live in its jar, and ExportCookies/ImportCookies bridge them to the
// on-disk session cache.
package netease

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"
	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://music.163.com"
	cookieDomain   = ".music.163.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 Safari/537.36"
)

// QRLoginURL builds the URL encoded into the login QR code for the given
// single-use key.
func QRLoginURL(unikey string) string {
	return fmt.Sprintf("%s/login?codekey=%s", defaultBaseURL, url.QueryEscape(unikey))
}

// Client is a cookie-session NetEase web API client.
//
// All calls are synchronous and pass through a courtesy rate limiter capping
// overall request throughput; the adaptive mutation pacing on top of it lives
// in the mutator.
type Client struct {
	http    *resty.Client
	jar     http.CookieJar
	baseURL *url.URL
	limiter *rate.Limiter
	logger  *log.Logger
}

// NewClient creates a Client using the [api] config section.
func NewClient(cfg shared.APIConfig, logger *log.Logger) (*Client, error) {
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: base_url %q", shared.ErrInvalidConfig, cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}

	timeout := time.Duration(cfg.Timeout) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	rps := cfg.RateLimit
	if rps <= 0 {
		rps = 5.0
	}

	client := resty.New().
		SetBaseURL(base).
		SetCookieJar(jar).
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Referer", defaultBaseURL)

	return &Client{
		http:    client,
		jar:     jar,
		baseURL: baseURL,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		logger:  logger,
	}, nil
}

// post issues a form POST and decodes the JSON body into out.
//
// Transport failures wrap [shared.ErrAPIRequest]; undecodable bodies wrap
// [shared.ErrMalformedResponse]. Status-code interpretation is left to the
// caller because QR polling treats non-200 codes as states, not failures.
func (c *Client) post(ctx context.Context, path string, form map[string]string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("request canceled: %w", err)
	}

	resp, err := c.http.R().SetContext(ctx).SetFormData(form).Post(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrAPIRequest, path, err)
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrMalformedResponse, path, err)
	}

	return nil
}

// statusErr maps a service status code to an error. 200 maps to nil and
// throttling codes to [shared.ErrRateLimited] so callers can branch with
// errors.Is.
func statusErr(op string, status statusBody) error {
	switch status.Code {
	case CodeOK:
		return nil
	case CodeTooFrequent:
		return fmt.Errorf("%w: %s (code %d)", shared.ErrRateLimited, op, status.Code)
	default:
		if status.Message != "" {
			return fmt.Errorf("%w: %s returned code %d: %s", shared.ErrAPIRequest, op, status.Code, status.Message)
		}
		return fmt.Errorf("%w: %s returned code %d", shared.ErrAPIRequest, op, status.Code)
	}
}

// QRKey requests a single-use QR login token.
func (c *Client) QRKey(ctx context.Context) (string, error) {
	var resp qrKeyResponse
	if err := c.post(ctx, "/api/login/qrcode/unikey", map[string]string{"type": "1"}, &resp); err != nil {
		return "", err
	}
	if err := statusErr("qr key", resp.statusBody); err != nil {
		return "", err
	}
	if resp.Unikey == "" {
		return "", fmt.Errorf("%w: qr key response missing unikey", shared.ErrMalformedResponse)
	}
	return resp.Unikey, nil
}

// QRCheck polls the QR login state for the given key and returns the raw
// state code (800 expired, 801 pending, 802 scanned, 803 confirmed).
func (c *Client) QRCheck(ctx context.Context, unikey string) (int, error) {
	var resp statusBody
	form := map[string]string{"key": unikey, "type": "1"}
	if err := c.post(ctx, "/api/login/qrcode/client/login", form, &resp); err != nil {
		return 0, err
	}
	if resp.Code == 0 {
		return 0, fmt.Errorf("%w: qr check response missing code", shared.ErrMalformedResponse)
	}
	return resp.Code, nil
}

// SendPhoneCode requests a one-time login code for the given phone number.
func (c *Client) SendPhoneCode(ctx context.Context, phone string) error {
	var resp statusBody
	form := map[string]string{"cellphone": phone, "ctcode": "86"}
	if err := c.post(ctx, "/api/sms/captcha/sent", form, &resp); err != nil {
		return err
	}
	return statusErr("send phone code", resp)
}

// PhoneLogin submits a phone number and one-time code, establishing session
// cookies on success.
func (c *Client) PhoneLogin(ctx context.Context, phone, captcha string) error {
	var resp statusBody
	form := map[string]string{
		"phone":         phone,
		"captcha":       captcha,
		"countrycode":   "86",
		"rememberLogin": "true",
	}
	if err := c.post(ctx, "/api/login/cellphone", form, &resp); err != nil {
		return err
	}
	return statusErr("phone login", resp)
}

// AccountInfo fetches the current authenticated identity.
//
// A 200 response with a null profile is possible on some provider branches;
// that case returns (nil, nil) and is the caller's soft-success fallback.
func (c *Client) AccountInfo(ctx context.Context) (*models.UserProfile, error) {
	var resp accountResponse
	if err := c.post(ctx, "/api/nuser/account/get", nil, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("account info", resp.statusBody); err != nil {
		return nil, err
	}
	if resp.Profile == nil {
		return nil, nil
	}
	return &models.UserProfile{
		UserID:   resp.Profile.UserID,
		Nickname: resp.Profile.Nickname,
		VIPType:  resp.Profile.VIPType,
	}, nil
}

// UserPlaylists lists playlists for the given user id (0 means the current
// session's user).
func (c *Client) UserPlaylists(ctx context.Context, userID int64, limit int) ([]models.Playlist, error) {
	var resp userPlaylistsResponse
	form := map[string]string{
		"uid":    strconv.FormatInt(userID, 10),
		"limit":  strconv.Itoa(limit),
		"offset": "0",
	}
	if err := c.post(ctx, "/api/user/playlist", form, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("user playlists", resp.statusBody); err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(resp.Playlists))
	for _, pl := range resp.Playlists {
		playlists = append(playlists, models.Playlist{
			ID:          pl.ID,
			UserID:      pl.UserID,
			Name:        pl.Name,
			SpecialType: pl.SpecialType,
			TrackCount:  pl.TrackCount,
		})
	}
	return playlists, nil
}

// PlaylistDetail fetches a playlist's complete track listing in one call.
func (c *Client) PlaylistDetail(ctx context.Context, playlistID int64) ([]models.Track, error) {
	var resp playlistDetailResponse
	form := map[string]string{
		"id": strconv.FormatInt(playlistID, 10),
		"n":  "100000",
	}
	if err := c.post(ctx, "/api/v6/playlist/detail", form, &resp); err != nil {
		return nil, err
	}
	if err := statusErr("playlist detail", resp.statusBody); err != nil {
		return nil, err
	}
	if resp.Playlist == nil {
		return nil, fmt.Errorf("%w: playlist detail response missing playlist", shared.ErrMalformedResponse)
	}

	tracks := make([]models.Track, 0, len(resp.Playlist.Tracks))
	for _, t := range resp.Playlist.Tracks {
		if t.ID == 0 {
			return nil, fmt.Errorf("%w: playlist detail track missing id", shared.ErrMalformedResponse)
		}
		artists := make([]string, 0, len(t.Artists))
		for _, ar := range t.Artists {
			artists = append(artists, ar.Name)
		}
		tracks = append(tracks, models.Track{
			ID:      t.ID,
			Name:    t.Name,
			Artists: artists,
			Album:   t.Album.Name,
			Fee:     t.Fee,
		})
	}
	return tracks, nil
}

// CreatePlaylist creates an empty playlist and returns its id.
func (c *Client) CreatePlaylist(ctx context.Context, name string) (int64, error) {
	var resp createPlaylistResponse
	if err := c.post(ctx, "/api/playlist/create", map[string]string{"name": name}, &resp); err != nil {
		return 0, err
	}
	if err := statusErr("create playlist", resp.statusBody); err != nil {
		return 0, err
	}

	id := resp.ID
	if id == 0 && resp.Playlist != nil {
		id = resp.Playlist.ID
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: create playlist response missing id", shared.ErrMalformedResponse)
	}
	return id, nil
}

// AddTracks appends the given track ids to a playlist in one mutation call.
func (c *Client) AddTracks(ctx context.Context, playlistID int64, trackIDs []int64) error {
	ids, err := json.Marshal(trackIDs)
	if err != nil {
		return fmt.Errorf("failed to encode track ids: %w", err)
	}

	var resp statusBody
	form := map[string]string{
		"op":       "add",
		"pid":      strconv.FormatInt(playlistID, 10),
		"trackIds": string(ids),
	}
	if err := c.post(ctx, "/api/playlist/manipulate/tracks", form, &resp); err != nil {
		return err
	}
	return statusErr("add tracks", resp)
}

// SetLikeTrack sets or clears the liked flag on a single track. The service
// has no bulk form of this operation.
func (c *Client) SetLikeTrack(ctx context.Context, trackID int64, liked bool) error {
	var resp statusBody
	form := map[string]string{
		"trackId": strconv.FormatInt(trackID, 10),
		"like":    strconv.FormatBool(liked),
	}
	if err := c.post(ctx, "/api/radio/like", form, &resp); err != nil {
		return err
	}
	return statusErr("set like track", resp)
}

// ExportCookies snapshots the session cookies for persistence.
func (c *Client) ExportCookies() []models.CookieEntry {
	var entries []models.CookieEntry
	for _, cookie := range c.jar.Cookies(c.baseURL) {
		entries = append(entries, models.CookieEntry{
			Name:   cookie.Name,
			Value:  cookie.Value,
			Domain: cookieDomain,
			Path:   "/",
		})
	}
	return entries
}

// ImportCookies restores previously persisted session cookies into the jar.
func (c *Client) ImportCookies(entries []models.CookieEntry) {
	cookies := make([]*http.Cookie, 0, len(entries))
	for _, entry := range entries {
		path := entry.Path
		if path == "" {
			path = "/"
		}
		cookies = append(cookies, &http.Cookie{
			Name:  entry.Name,
			Value: entry.Value,
			Path:  path,
		})
	}
	c.jar.SetCookies(c.baseURL, cookies)
}

// SetCookies seeds the jar with raw cookies, e.g. parsed from a browser's
// cURL export.
func (c *Client) SetCookies(cookies []*http.Cookie) {
	c.jar.SetCookies(c.baseURL, cookies)
}
