package cmd

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/earshot/internal/track"
)

// trackView is the data exposed to output templates
type trackView struct {
	ID          string
	Title       string
	Artist      string
	Album       string
	ReleaseDate string
	Artwork     string
	Favorite    bool
	Recognized  time.Time
}

func newTrackView(t track.Track) trackView {
	return trackView{
		ID:          t.MbID,
		Title:       t.Title,
		Artist:      t.Artist,
		Album:       t.Album,
		ReleaseDate: t.ReleaseDate,
		Artwork:     t.Links.Artwork,
		Favorite:    t.Metadata.IsFavorite,
		Recognized:  t.Metadata.LastRecognition,
	}
}

// formatTrack applies the template to the track data
func formatTrack(t track.Track, templateStr string) (string, error) {
	tmpl, err := template.New("output").Parse(templateStr)
	if err != nil {
		return "", fmt.Errorf("invalid template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, newTrackView(t)); err != nil {
		return "", fmt.Errorf("template execution failed: %w", err)
	}

	return buf.String(), nil
}

// padToWidth pads or truncates text to a fixed display width.
// Width is measured in display columns, accounting for Unicode characters.
// If width <= 0, returns text unchanged.
// If text is longer than width, truncates with "..." suffix.
func padToWidth(text string, width int) string {
	if width <= 0 {
		return text
	}

	currentWidth := runewidth.StringWidth(text)

	if currentWidth > width {
		ellipsis := "..."
		ellipsisWidth := runewidth.StringWidth(ellipsis)

		if width <= ellipsisWidth {
			return runewidth.Truncate(ellipsis, width, "")
		}

		truncated := runewidth.Truncate(text, width-ellipsisWidth, "")
		result := truncated + ellipsis

		// Wide runes can leave the result a column short
		if resultWidth := runewidth.StringWidth(result); resultWidth < width {
			return result + strings.Repeat(" ", width-resultWidth)
		}
		return result
	} else if currentWidth < width {
		return text + strings.Repeat(" ", width-currentWidth)
	}

	return text
}

// columns renders rows as space separated, display-width aligned columns.
// widths caps each column; zero means the column is not capped.
func columns(rows [][]string, widths []int) string {
	natural := make([]int, len(widths))
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(natural) {
				break
			}
			if w := runewidth.StringWidth(cell); w > natural[i] {
				natural[i] = w
			}
		}
	}
	for i, limit := range widths {
		if limit > 0 && natural[i] > limit {
			natural[i] = limit
		}
	}

	var sb strings.Builder
	for _, row := range rows {
		parts := make([]string, 0, len(row))
		for i, cell := range row {
			if i == len(row)-1 || i >= len(natural) {
				if i < len(natural) {
					cell = runewidth.Truncate(cell, natural[i], "...")
				}
				parts = append(parts, cell)
				continue
			}
			parts = append(parts, padToWidth(cell, natural[i]))
		}
		sb.WriteString(strings.TrimRight(strings.Join(parts, "  "), " "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// formatAge renders a timestamp relative to now
func formatAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("2006-01-02")
	}
}
