package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ncmkit/vipsweep/internal/models"
)

// SessionStore persists the authenticated session as a JSON document on
// disk. It is read once at startup and written once after a successful
// login.
type SessionStore struct {
	path string
}

// NewSessionStore creates a store backed by the given file path.
func NewSessionStore(path string) *SessionStore {
	if path == "" {
		path = filepath.Join(".cache", "auth.json")
	}
	return &SessionStore{path: path}
}

// Path returns the backing file path.
func (s *SessionStore) Path() string { return s.path }

// cacheDocument mirrors the on-disk schema. Cookies is kept raw because an
// older variant stored a flat name→value map instead of a list of records.
type cacheDocument struct {
	Cookies   json.RawMessage     `json:"cookies"`
	User      *models.UserProfile `json:"user_info"`
	Timestamp int64               `json:"timestamp"`
}

// Load reads the cached session. A missing or unreadable file returns
// (nil, nil): an absent cache is not an error, just a cold start.
func (s *SessionStore) Load() (*models.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session cache: %w", err)
	}

	var doc cacheDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse session cache: %w", err)
	}

	cookies, err := decodeCookies(doc.Cookies)
	if err != nil {
		return nil, err
	}

	return &models.Session{
		Cookies:   cookies,
		User:      doc.User,
		Timestamp: doc.Timestamp,
	}, nil
}

// decodeCookies accepts both cookie schemas: the current list of records and
// the legacy flat name→value map.
func decodeCookies(raw json.RawMessage) ([]models.CookieEntry, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []models.CookieEntry
	if err := json.Unmarshal(raw, &entries); err == nil {
		return entries, nil
	}

	var legacy map[string]string
	if err := json.Unmarshal(raw, &legacy); err != nil {
		return nil, fmt.Errorf("failed to parse session cookies: %w", err)
	}

	entries = make([]models.CookieEntry, 0, len(legacy))
	for name, value := range legacy {
		entries = append(entries, models.CookieEntry{Name: name, Value: value, Path: "/"})
	}
	return entries, nil
}

// Save writes the session to disk, creating the cache directory if needed.
func (s *SessionStore) Save(session *models.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write session cache: %w", err)
	}

	return nil
}
