// Typed response records for the NetEase Cloud Music web API.
//
// Every remote operation decodes into its own record and is validated
// immediately; missing required fields surface as a malformed-response
// error instead of propagating zero values into business logic.
package netease

// Service status codes. 200 is the only success sentinel; everything else
// is a failure reason.
const (
	CodeOK          = 200
	CodeTooFrequent = 405 // mutating too fast, back off and retry

	// QR login poll states
	CodeQRExpired   = 800
	CodeQRPending   = 801
	CodeQRScanned   = 802
	CodeQRConfirmed = 803
)

// statusBody is the envelope shared by every API response.
type statusBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type qrKeyResponse struct {
	statusBody
	Unikey string `json:"unikey"`
}

type accountResponse struct {
	statusBody
	Profile *profileBody `json:"profile"`
}

type profileBody struct {
	UserID   int64  `json:"userId"`
	Nickname string `json:"nickname"`
	VIPType  int    `json:"vipType"`
}

type userPlaylistsResponse struct {
	statusBody
	Playlists []playlistBody `json:"playlist"`
}

type playlistBody struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	UserID      int64  `json:"userId"`
	SpecialType int    `json:"specialType"`
	TrackCount  int    `json:"trackCount"`
}

type playlistDetailResponse struct {
	statusBody
	Playlist *playlistDetailBody `json:"playlist"`
}

type playlistDetailBody struct {
	ID     int64       `json:"id"`
	Name   string      `json:"name"`
	Tracks []trackBody `json:"tracks"`
}

type trackBody struct {
	ID      int64        `json:"id"`
	Name    string       `json:"name"`
	Artists []artistBody `json:"ar"`
	Album   albumBody    `json:"al"`
	Fee     int          `json:"fee"`
}

type artistBody struct {
	Name string `json:"name"`
}

type albumBody struct {
	Name string `json:"name"`
}

type createPlaylistResponse struct {
	statusBody
	ID       int64         `json:"id"`
	Playlist *playlistBody `json:"playlist"`
}
