// package shared defines cross-cutting helpers: logging, ids, prompts
package shared

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] writing to w with timestamps enabled.
//
// The writer defaults to [os.Stderr].
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true}
	return log.NewWithOptions(w, opts)
}

// OpenLogFile creates a timestamped log file under dir (default "logs") and
// returns the handle and its path.
func OpenLogFile(dir string) (*os.File, string, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, "", fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("vipsweep_%s.log", time.Now().Format("20060102_150405")))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open log file: %w", err)
	}
	return f, path, nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel parses a level name (debug, info, warn, error) and applies it to the logger.
func SetLogLevel(l *log.Logger, level string) error {
	ll, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidFlag, level)
	}
	l.SetLevel(ll)
	return nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string.
//
// Attached to the logger so every line of a run can be correlated.
func GenerateID() string {
	return uuid.New().String()
}

// Confirm prompts the user on w and reads a yes/no answer from r.
//
// An empty answer selects def. A read failure counts as a "no".
func Confirm(r io.Reader, w io.Writer, message string, def bool) bool {
	choices := "y/N"
	if def {
		choices = "Y/n"
	}
	fmt.Fprintf(w, "%s [%s] ", message, choices)

	line, err := readLine(r)
	if err != nil && line == "" {
		return false
	}

	answer := strings.ToLower(strings.TrimSpace(line))
	if answer == "" {
		return def
	}
	return answer == "y" || answer == "yes"
}

// ReadLine reads a single trimmed line from r, prompting on w first.
func ReadLine(r io.Reader, w io.Writer, prompt string) (string, error) {
	fmt.Fprint(w, prompt)
	line, err := readLine(r)
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// readLine reads up to the next newline one byte at a time. Prompts
// interleave on the same reader, so nothing may be buffered past the line.
func readLine(r io.Reader) (string, error) {
	var sb strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if buf[0] == '\n' {
				return sb.String(), nil
			}
			sb.WriteByte(buf[0])
		}
		if err != nil {
			return sb.String(), err
		}
	}
}
