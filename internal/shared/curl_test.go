package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParseCurlCommand(t *testing.T) {
	t.Run("cookies from a cookie header", func(t *testing.T) {
		cmd := `curl 'https://music.163.com/' -H 'Cookie: MUSIC_U=abc123; __csrf=tok' -H 'User-Agent: Mozilla'`

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("ParseCurlCommand() error = %v", err)
		}
		if len(session.Cookies) != 2 {
			t.Fatalf("got %d cookies, want 2", len(session.Cookies))
		}
		if session.Cookies[0].Name != "MUSIC_U" || session.Cookies[0].Value != "abc123" {
			t.Errorf("cookie = %+v", session.Cookies[0])
		}
		if session.Headers["User-Agent"] != "Mozilla" {
			t.Errorf("headers = %v", session.Headers)
		}
	})

	t.Run("cookies from a -b flag", func(t *testing.T) {
		cmd := `curl 'https://music.163.com/' -b 'MUSIC_U=abc123'`

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("ParseCurlCommand() error = %v", err)
		}
		if len(session.Cookies) != 1 || session.Cookies[0].Value != "abc123" {
			t.Errorf("cookies = %+v", session.Cookies)
		}
	})

	t.Run("line continuations are joined", func(t *testing.T) {
		cmd := "curl 'https://music.163.com/' \\\n  -H 'Cookie: MUSIC_U=abc123'"

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("ParseCurlCommand() error = %v", err)
		}
		if len(session.Cookies) != 1 {
			t.Errorf("got %d cookies, want 1", len(session.Cookies))
		}
	})

	t.Run("double-quoted headers", func(t *testing.T) {
		cmd := `curl "https://music.163.com/" -H "Cookie: MUSIC_U=abc123"`

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("ParseCurlCommand() error = %v", err)
		}
		if len(session.Cookies) != 1 {
			t.Errorf("got %d cookies, want 1", len(session.Cookies))
		}
	})

	t.Run("nothing usable", func(t *testing.T) {
		if _, err := ParseCurlCommand([]byte(`curl 'https://music.163.com/'`)); err == nil {
			t.Error("ParseCurlCommand() expected error for bare command")
		}
	})

	t.Run("malformed cookie pairs are skipped", func(t *testing.T) {
		cmd := `curl 'x' -H 'Cookie: MUSIC_U=abc; ; novalue; =orphan'`

		session, err := ParseCurlCommand([]byte(cmd))
		if err != nil {
			t.Fatalf("ParseCurlCommand() error = %v", err)
		}
		if len(session.Cookies) != 1 {
			t.Errorf("got %d cookies, want 1", len(session.Cookies))
		}
	})
}

func TestParseCurlFile(t *testing.T) {
	t.Run("reads and parses", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "req.curl")
		if err := os.WriteFile(path, []byte(`curl 'x' -b 'MUSIC_U=abc'`), 0644); err != nil {
			t.Fatal(err)
		}

		session, err := ParseCurlFile(path)
		if err != nil {
			t.Fatalf("ParseCurlFile() error = %v", err)
		}
		if len(session.Cookies) != 1 {
			t.Errorf("got %d cookies, want 1", len(session.Cookies))
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ParseCurlFile(filepath.Join(t.TempDir(), "nope")); err == nil {
			t.Error("ParseCurlFile() expected error")
		}
	})
}
