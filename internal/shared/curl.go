// Utilities for parsing cURL commands copied from browser dev tools.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
)

// CurlSession represents the headers and cookies extracted from a cURL command.
type CurlSession struct {
	Headers map[string]string
	Cookies []*http.Cookie
}

// ParseCurlFile reads a file containing a cURL command and extracts its
// headers and cookies. This is how browser sessions are imported: copy the
// request to the music service as cURL, save it, feed it to `auth import`.
func ParseCurlFile(filepath string) (*CurlSession, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(content)
}

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlCookieRegex = regexp.MustCompile(`-b\s+'([^']+)'|-b\s+"([^"]+)"`)
)

// ParseCurlCommand parses a cURL command string and extracts headers and cookies.
//
// Cookies are taken from either a -b flag or a Cookie: header.
func ParseCurlCommand(data []byte) (*CurlSession, error) {
	curlCmd := string(data)
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	headers := make(map[string]string)
	var cookieLine string

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		headerLine := match[1]
		if headerLine == "" {
			headerLine = match[2]
		}

		parts := strings.SplitN(headerLine, ":", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if strings.EqualFold(key, "cookie") {
			cookieLine = value
		} else {
			headers[key] = value
		}
	}

	if m := curlCookieRegex.FindStringSubmatch(curlCmd); len(m) > 1 {
		if m[1] != "" {
			cookieLine = m[1]
		} else {
			cookieLine = m[2]
		}
	}

	cookies := parseCookieLine(cookieLine)

	if len(headers) == 0 && len(cookies) == 0 {
		return nil, fmt.Errorf("no headers or cookies found in curl command")
	}

	return &CurlSession{Headers: headers, Cookies: cookies}, nil
}

// parseCookieLine splits a "name=value; name2=value2" cookie header.
func parseCookieLine(line string) []*http.Cookie {
	var cookies []*http.Cookie

	for _, pair := range strings.Split(line, ";") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		parts := strings.SplitN(pair, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: parts[0], Value: parts[1]})
	}

	return cookies
}
