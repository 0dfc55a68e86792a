package shared

import "fmt"

var (
	// Configuration errors
	ErrInvalidConfig   = fmt.Errorf("invalid configuration")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
	ErrMissingArgument = fmt.Errorf("missing required argument")

	// Authentication errors
	ErrAuthFailed       = fmt.Errorf("authentication failed")
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrLoginTimeout     = fmt.Errorf("login timed out")
	ErrQRCodeExpired    = fmt.Errorf("qr code expired")

	// API and service errors
	ErrAPIRequest        = fmt.Errorf("API request failed")
	ErrMalformedResponse = fmt.Errorf("malformed API response")
	ErrRateLimited       = fmt.Errorf("rate limited by remote service")
	ErrPlaylistNotFound  = fmt.Errorf("playlist not found")
)
