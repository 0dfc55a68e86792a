// package models defines the data model for the VIP sweep tool
package models

import "strings"

// Fee classification codes used by the provider for [Track.Fee].
const (
	FeeFree           = 0 // playable by anyone
	FeeVIPOnly        = 1 // playable only by paying subscribers
	FeePurchase       = 4 // purchased album or single
	FeeVIPHighQuality = 8 // free at standard quality, VIP at high quality
)

// LikedSongsSpecialType is the provider's reserved marker for the
// "liked songs" playlist in [Playlist.SpecialType].
const LikedSongsSpecialType = 5

// Track is an immutable snapshot of a song in the user's library.
type Track struct {
	ID      int64
	Name    string
	Artists []string
	Album   string
	Fee     int
}

// VIPOnly reports whether the track is restricted to paying subscribers.
//
// Only fee code 1 qualifies. Code 8 (VIP high quality) is free to play at
// standard quality and must never be treated as restricted.
func (t Track) VIPOnly() bool {
	return t.Fee == FeeVIPOnly
}

// ArtistLine renders the artist list as a single display string.
func (t Track) ArtistLine() string {
	return strings.Join(t.Artists, ", ")
}

// Playlist is a snapshot of a playlist owned by some user.
type Playlist struct {
	ID          int64
	UserID      int64
	Name        string
	SpecialType int
	TrackCount  int
}

// IsLikedSongs reports whether the playlist carries the provider's
// reserved liked-songs marker.
func (p Playlist) IsLikedSongs() bool {
	return p.SpecialType == LikedSongsSpecialType
}

// UserProfile is the authenticated user's identity.
type UserProfile struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
	VIPType  int    `json:"vipType"`
}

// CookieEntry is a single serialized session cookie.
type CookieEntry struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Domain string `json:"domain"`
	Path   string `json:"path"`
}

// Session holds everything needed to restore an authenticated session:
// the cookie set, the cached profile, and the capture timestamp.
type Session struct {
	Cookies   []CookieEntry `json:"cookies"`
	User      *UserProfile  `json:"user_info"`
	Timestamp int64         `json:"timestamp"`
}

// MutationResult tallies the outcome of one bulk mutation call.
//
// An ID appears in FailedIDs only if the corresponding remote call was
// attempted and did not succeed after all permitted retries.
type MutationResult struct {
	Success   int
	Failed    int
	Skipped   int
	FailedIDs []int64
}
