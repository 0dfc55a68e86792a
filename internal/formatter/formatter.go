// package formatter renders console output (banner, tables, summaries) and
// writes run artifacts (failed-id file, CSV exports)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ncmkit/vipsweep/internal/models"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	dimStyle    = lipgloss.NewStyle().Faint(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	bannerStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("6")).
			Padding(0, 2)
)

// Banner writes the startup banner.
func Banner(w io.Writer) {
	body := titleStyle.Render("vipsweep") + "\n" + dimStyle.Render("move VIP-only tracks out of liked songs")
	fmt.Fprintln(w, bannerStyle.Render(body))
}

// FeeLabel maps a fee classification code to a display label.
func FeeLabel(fee int) string {
	switch fee {
	case models.FeeFree:
		return "free"
	case models.FeeVIPOnly:
		return "VIP only"
	case models.FeePurchase:
		return "purchased"
	case models.FeeVIPHighQuality:
		return "VIP high quality"
	default:
		return fmt.Sprintf("unknown (%d)", fee)
	}
}

// VIPTypeLabel maps the provider's subscription tier code to a display label.
func VIPTypeLabel(vipType int) string {
	switch vipType {
	case 0:
		return "standard"
	case 11:
		return "VIP"
	default:
		return fmt.Sprintf("tier %d", vipType)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(accentStyle).
		Headers(headers...)
}

// UserTable renders the authenticated identity.
func UserTable(w io.Writer, profile *models.UserProfile) {
	if profile == nil {
		return
	}
	t := newTable().
		Row("Nickname", profile.Nickname).
		Row("User ID", strconv.FormatInt(profile.UserID, 10)).
		Row("Subscription", VIPTypeLabel(profile.VIPType))
	fmt.Fprintln(w, t.String())
}

// TrackTable renders up to limit tracks, noting how many were elided.
// A limit of 0 renders everything.
func TrackTable(w io.Writer, title string, tracks []models.Track, limit int) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%d tracks)", title, len(tracks))))

	shown := tracks
	if limit > 0 && len(tracks) > limit {
		shown = tracks[:limit]
	}

	t := newTable("#", "Title", "Artist", "Album", "Type")
	for i, track := range shown {
		t.Row(
			strconv.Itoa(i+1),
			track.Name,
			track.ArtistLine(),
			track.Album,
			FeeLabel(track.Fee),
		)
	}
	fmt.Fprintln(w, t.String())

	if len(shown) < len(tracks) {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("... and %d more not shown", len(tracks)-len(shown))))
	}
}

// SummaryTable renders the end-of-run tallies.
func SummaryTable(w io.Writer, vipCount int, add, unlike models.MutationResult) {
	t := newTable("Step", "Count").
		Row("VIP tracks found", strconv.Itoa(vipCount)).
		Row("Added to playlist", strconv.Itoa(add.Success)).
		Row("Already in playlist", strconv.Itoa(add.Skipped)).
		Row("Unliked", strconv.Itoa(unlike.Success))

	if add.Failed > 0 {
		t.Row("Add failures", strconv.Itoa(add.Failed))
	}
	if unlike.Failed > 0 {
		t.Row("Unlike failures", strconv.Itoa(unlike.Failed))
	}

	fmt.Fprintln(w, titleStyle.Render("Run summary"))
	fmt.Fprintln(w, t.String())
}

// Warn writes a highlighted warning line.
func Warn(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnStyle.Render(fmt.Sprintf(format, args...)))
}

// FailedIDsFile is where ids that failed either mutation are written for
// manual follow-up.
const FailedIDsFile = "failed_songs.txt"

// WriteFailedIDs writes track ids one per line to path.
func WriteFailedIDs(path string, ids []int64) error {
	if path == "" {
		path = FailedIDsFile
	}

	var buf bytes.Buffer
	for _, id := range ids {
		fmt.Fprintf(&buf, "%d\n", id)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write failure artifact: %w", err)
	}
	return nil
}

// ExportToCSV converts tracks to CSV with columns: ID, Title, Artist, Album, Fee
func ExportToCSV(tracks []models.Track) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Fee"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracks {
		record := []string{
			strconv.FormatInt(track.ID, 10),
			track.Name,
			track.ArtistLine(),
			track.Album,
			strconv.Itoa(track.Fee),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteCSVExport writes the track list as CSV to path.
func WriteCSVExport(tracks []models.Track, path string) error {
	data, err := ExportToCSV(tracks)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write CSV file: %w", err)
	}
	return nil
}
