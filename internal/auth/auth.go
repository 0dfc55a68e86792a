// Package auth obtains a validated session with the music service.
//
// Three routes produce the same capability, a logged-in cookie session:
// restoring the on-disk cache, scanning a QR code with the mobile app, or a
// phone number plus one-time code. Whichever route succeeds, the session is
// persisted and the authenticated identity is returned.
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mdp/qrterminal/v3"
	"github.com/ncmkit/vipsweep/internal/models"
	"github.com/ncmkit/vipsweep/internal/netease"
	"github.com/ncmkit/vipsweep/internal/shared"
)

// Login method names accepted by [Authenticator.Login].
const (
	MethodQRCode = "qr_code"
	MethodPhone  = "phone"
)

// API is the slice of the remote client the authenticator needs.
type API interface {
	QRKey(ctx context.Context) (string, error)
	QRCheck(ctx context.Context, unikey string) (int, error)
	SendPhoneCode(ctx context.Context, phone string) error
	PhoneLogin(ctx context.Context, phone, captcha string) error
	AccountInfo(ctx context.Context) (*models.UserProfile, error)
	ExportCookies() []models.CookieEntry
	ImportCookies(entries []models.CookieEntry)
	SetCookies(cookies []*http.Cookie)
}

// Opts configures an [Authenticator].
type Opts struct {
	Client      API
	Store       *SessionStore
	Logger      *log.Logger
	Output      io.Writer
	Input       io.Reader
	OpenBrowser bool
}

// Authenticator drives the login flows against the remote service.
type Authenticator struct {
	client      API
	store       *SessionStore
	logger      *log.Logger
	output      io.Writer
	input       io.Reader
	openBrowser bool

	// overridable for tests
	pollInterval time.Duration
	maxPolls     int
	settleDelay  time.Duration
	renderQR     func(w io.Writer, url string)
}

// NewAuthenticator creates an Authenticator with the provided dependencies.
func NewAuthenticator(opts Opts) *Authenticator {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Authenticator{
		client:       opts.Client,
		store:        opts.Store,
		logger:       opts.Logger,
		output:       opts.Output,
		input:        opts.Input,
		openBrowser:  opts.OpenBrowser,
		pollInterval: 2 * time.Second,
		maxPolls:     60,
		settleDelay:  time.Second,
		renderQR:     renderTerminalQR,
	}
}

func renderTerminalQR(w io.Writer, url string) {
	qrterminal.GenerateWithConfig(url, qrterminal.Config{
		Level:     qrterminal.L,
		Writer:    w,
		BlackChar: qrterminal.BLACK,
		WhiteChar: qrterminal.WHITE,
		QuietZone: 1,
	})
}

// Login produces a validated session, trying the cached session first and
// falling back to the requested interactive method.
//
// The phone argument is only consulted by the phone method and may be empty,
// in which case the number is prompted for.
func (a *Authenticator) Login(ctx context.Context, method, phone string) (*models.UserProfile, error) {
	if profile, err := a.restore(ctx); err == nil && profile != nil {
		return profile, nil
	} else if err != nil {
		a.logger.Debug("cached session unusable", "err", err)
	}

	switch method {
	case MethodQRCode:
		return a.loginQR(ctx)
	case MethodPhone:
		return a.loginPhone(ctx, phone)
	default:
		return nil, fmt.Errorf("%w: unknown login method %q", shared.ErrInvalidFlag, method)
	}
}

// restore loads the cached session and validates it with an identity probe.
// Returns (nil, nil) when there is no cache to restore.
func (a *Authenticator) restore(ctx context.Context) (*models.UserProfile, error) {
	session, err := a.store.Load()
	if err != nil {
		return nil, err
	}
	if session == nil || len(session.Cookies) == 0 {
		a.logger.Debug("no cached session found")
		return nil, nil
	}

	a.client.ImportCookies(session.Cookies)

	profile, err := a.probe(ctx)
	if err != nil {
		a.logger.Info("cached session expired, falling back to interactive login")
		return nil, err
	}

	a.logger.Info("restored cached session", "user", profile.Nickname)
	return profile, nil
}

// probe performs the "who am I" check against the service.
//
// A success response carrying no identity is treated as a soft success with
// a placeholder profile, matching the provider branch where the account
// endpoint omits the profile for fresh sessions.
func (a *Authenticator) probe(ctx context.Context) (*models.UserProfile, error) {
	profile, err := a.client.AccountInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrNotAuthenticated, err)
	}
	if profile == nil {
		a.logger.Warn("service reported a session without identity details")
		return &models.UserProfile{UserID: 0, Nickname: "unknown"}, nil
	}
	return profile, nil
}

// loginQR runs the QR flow: request a token, render it, poll until the user
// confirms on the mobile app or the attempt ceiling is reached.
func (a *Authenticator) loginQR(ctx context.Context) (*models.UserProfile, error) {
	unikey, err := a.client.QRKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	loginURL := netease.QRLoginURL(unikey)
	fmt.Fprintln(a.output, "Scan the QR code with the mobile app to log in:")
	fmt.Fprintln(a.output)
	a.renderQR(a.output, loginURL)
	fmt.Fprintf(a.output, "\nLogin link: %s\n\n", loginURL)

	if a.openBrowser {
		if err := shared.OpenBrowser(loginURL); err != nil {
			a.logger.Warn("could not open browser", "err", err)
		}
	}

	fmt.Fprintln(a.output, "Waiting for scan...")

	scanned := false
	for attempt := 0; attempt < a.maxPolls; attempt++ {
		if err := shared.Sleep(ctx, a.pollInterval); err != nil {
			return nil, err
		}

		code, err := a.client.QRCheck(ctx, unikey)
		if err != nil {
			a.logger.Warn("qr status check failed", "attempt", attempt+1, "err", err)
			continue
		}

		switch code {
		case netease.CodeQRConfirmed:
			fmt.Fprintln(a.output, "Authorized, validating session...")
			return a.finishLogin(ctx)
		case netease.CodeQRExpired:
			return nil, shared.ErrQRCodeExpired
		case netease.CodeQRScanned:
			if !scanned {
				scanned = true
				fmt.Fprintln(a.output, "Scanned, confirm the login on your phone...")
			}
		case netease.CodeQRPending:
			// keep polling
		default:
			a.logger.Debug("unexpected qr status", "code", code)
		}
	}

	return nil, fmt.Errorf("%w: qr code was not confirmed within %s",
		shared.ErrLoginTimeout, time.Duration(a.maxPolls)*a.pollInterval)
}

// loginPhone runs the phone flow: send a one-time code, collect it, submit.
// Any non-success response at either stage fails the login.
func (a *Authenticator) loginPhone(ctx context.Context, phone string) (*models.UserProfile, error) {
	var err error
	if phone == "" {
		phone, err = shared.ReadLine(a.input, a.output, "Phone number: ")
		if err != nil {
			return nil, err
		}
	}
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number", shared.ErrMissingArgument)
	}

	fmt.Fprintf(a.output, "Sending verification code to %s...\n", phone)
	if err := a.client.SendPhoneCode(ctx, phone); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	captcha, err := shared.ReadLine(a.input, a.output, "Verification code: ")
	if err != nil {
		return nil, err
	}
	if captcha == "" {
		return nil, fmt.Errorf("%w: verification code", shared.ErrMissingArgument)
	}

	if err := a.client.PhoneLogin(ctx, phone, captcha); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthFailed, err)
	}

	return a.finishLogin(ctx)
}

// ImportFromCurl seeds the session from a cURL command copied out of a
// browser and validates it with the identity probe.
func (a *Authenticator) ImportFromCurl(ctx context.Context, path string) (*models.UserProfile, error) {
	parsed, err := shared.ParseCurlFile(path)
	if err != nil {
		return nil, err
	}
	if len(parsed.Cookies) == 0 {
		return nil, fmt.Errorf("%w: curl command carries no cookies", shared.ErrAuthFailed)
	}

	a.client.SetCookies(parsed.Cookies)
	return a.finishLogin(ctx)
}

// finishLogin validates the freshly established session and persists it.
// The session is only cached after the probe succeeds.
func (a *Authenticator) finishLogin(ctx context.Context) (*models.UserProfile, error) {
	// Give the freshly set cookies a moment to propagate server side.
	if err := shared.Sleep(ctx, a.settleDelay); err != nil {
		return nil, err
	}

	profile, err := a.probe(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: session validation failed: %v", shared.ErrAuthFailed, err)
	}

	session := &models.Session{
		Cookies:   a.client.ExportCookies(),
		User:      profile,
		Timestamp: time.Now().Unix(),
	}
	if err := a.store.Save(session); err != nil {
		a.logger.Warn("failed to cache session", "err", err)
	} else {
		a.logger.Info("session cached", "path", a.store.Path())
	}

	return profile, nil
}

// Status probes the current session without attempting any login.
func (a *Authenticator) Status(ctx context.Context) (*models.UserProfile, error) {
	profile, err := a.restore(ctx)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.New("no cached session")
	}
	return profile, nil
}
