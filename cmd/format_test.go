package cmd

import (
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/jfmyers9/earshot/internal/recognitionqueue"
	"github.com/jfmyers9/earshot/internal/track"
)

func TestPadToWidth(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "no padding when width is 0",
			input:    "Hello",
			width:    0,
			expected: "Hello",
		},
		{
			name:     "no padding when width is negative",
			input:    "Hello",
			width:    -1,
			expected: "Hello",
		},
		{
			name:     "pad short text with spaces",
			input:    "Hi",
			width:    10,
			expected: "Hi        ",
		},
		{
			name:     "exact width unchanged",
			input:    "Hello",
			width:    5,
			expected: "Hello",
		},
		{
			name:     "truncate long text with ellipsis",
			input:    "This is a very long string that needs truncation",
			width:    20,
			expected: "This is a very lo...",
		},
		{
			name:     "handle emoji correctly",
			input:    "🎵 Music",
			width:    15,
			expected: "🎵 Music       ",
		},
		{
			name:     "handle unicode characters",
			input:    "日本語",
			width:    10,
			expected: "日本語    ",
		},
		{
			name:     "truncate wide text pads the gap",
			input:    "日本語とても長いテキスト",
			width:    10,
			expected: "日本語... ",
		},
		{
			name:     "empty string padding",
			input:    "",
			width:    5,
			expected: "     ",
		},
		{
			name:     "width smaller than ellipsis",
			input:    "Hello",
			width:    2,
			expected: "..",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := padToWidth(tt.input, tt.width)
			if result != tt.expected {
				t.Errorf("padToWidth(%q, %d) = %q, want %q", tt.input, tt.width, result, tt.expected)
			}

			if tt.width > 0 {
				if w := runewidth.StringWidth(result); w != tt.width {
					t.Errorf("padToWidth(%q, %d) display width = %d, want %d", tt.input, tt.width, w, tt.width)
				}
			}
		})
	}
}

func TestFormatTrack(t *testing.T) {
	tr := track.Track{
		MbID:   "mb-1",
		Title:  "Song",
		Artist: "Band",
		Album:  "Record",
		Metadata: track.Metadata{
			IsFavorite: true,
		},
	}

	tests := []struct {
		name     string
		template string
		expected string
		wantErr  bool
	}{
		{name: "artist and title", template: "{{.Artist}} - {{.Title}}", expected: "Band - Song"},
		{name: "conditional favorite", template: "{{if .Favorite}}★ {{end}}{{.Title}}", expected: "★ Song"},
		{name: "id and album", template: "{{.ID}}: {{.Album}}", expected: "mb-1: Record"},
		{name: "parse error", template: "{{.Title", wantErr: true},
		{name: "unknown field", template: "{{.Missing}}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatTrack(tr, tt.template)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("formatTrack(%q) expected error, got %q", tt.template, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("formatTrack(%q) error: %v", tt.template, err)
			}
			if got != tt.expected {
				t.Errorf("formatTrack(%q) = %q, want %q", tt.template, got, tt.expected)
			}
		})
	}
}

func TestColumns(t *testing.T) {
	t.Run("aligns to widest cell", func(t *testing.T) {
		got := columns([][]string{{"A", "BB"}, {"CCC", "D"}}, []int{0, 0})
		want := "A    BB\nCCC  D\n"
		if got != want {
			t.Errorf("columns() = %q, want %q", got, want)
		}
	})

	t.Run("caps column width", func(t *testing.T) {
		got := columns([][]string{{"Name", "X"}, {"Longer name here", "Y"}}, []int{8, 0})
		want := "Name      X\nLonge...  Y\n"
		if got != want {
			t.Errorf("columns() = %q, want %q", got, want)
		}
	})

	t.Run("trims trailing space", func(t *testing.T) {
		got := columns([][]string{{"A", ""}, {"B", "value"}}, []int{0, 0})
		want := "A\nB  value\n"
		if got != want {
			t.Errorf("columns() = %q, want %q", got, want)
		}
	})
}

func TestFormatAge(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{name: "zero", at: time.Time{}, want: "-"},
		{name: "seconds", at: now.Add(-30 * time.Second), want: "just now"},
		{name: "minutes", at: now.Add(-5 * time.Minute), want: "5m ago"},
		{name: "hours", at: now.Add(-3 * time.Hour), want: "3h ago"},
		{name: "days", at: now.Add(-48 * time.Hour), want: "2026-03-08"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatAge(tt.at, now); got != tt.want {
				t.Errorf("formatAge() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueueTable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	entries := []recognitionqueue.Enqueued{
		{ID: 1, Title: "Cafe", CreationDate: now.Add(-2 * time.Minute)},
		{
			ID:           2,
			Title:        "Radio",
			CreationDate: now.Add(-time.Hour),
			Result:       recognitionqueue.Outcome{Type: recognitionqueue.ResultSuccess, TrackID: "mb-9"},
		},
		{
			ID:           3,
			Title:        "Street",
			CreationDate: now.Add(-time.Hour),
			Result:       recognitionqueue.Outcome{Type: recognitionqueue.ResultNoMatches, Message: "nothing found"},
		},
	}

	lines := strings.Split(strings.TrimRight(queueTable(entries, now), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines, want 4:\n%s", len(lines), strings.Join(lines, "\n"))
	}
	if !strings.HasPrefix(lines[0], "ID") {
		t.Errorf("header = %q", lines[0])
	}

	checks := []struct {
		line int
		want []string
	}{
		{1, []string{"Cafe", "2m ago", "pending"}},
		{2, []string{"Radio", "success", "mb-9"}},
		{3, []string{"Street", "no-matches", "nothing found"}},
	}
	for _, c := range checks {
		for _, w := range c.want {
			if !strings.Contains(lines[c.line], w) {
				t.Errorf("line %d = %q, missing %q", c.line, lines[c.line], w)
			}
		}
	}
}

func TestTrackTableAndDetail(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	tr := track.Track{
		MbID:   "mb-1",
		Title:  "Song",
		Artist: "Band",
		Links:  track.Links{Deezer: "https://deezer.example/1"},
		Metadata: track.Metadata{
			IsFavorite:      true,
			LastRecognition: now.Add(-10 * time.Minute),
		},
	}

	table := trackTable([]track.Track{tr}, now)
	for _, w := range []string{"TITLE", "★", "Song", "Band", "10m ago", "mb-1"} {
		if !strings.Contains(table, w) {
			t.Errorf("trackTable missing %q:\n%s", w, table)
		}
	}

	detail := trackDetail(tr)
	if !strings.Contains(detail, "Title:        Song\n") {
		t.Errorf("trackDetail missing aligned title:\n%s", detail)
	}
	if !strings.Contains(detail, "Deezer:       https://deezer.example/1") {
		t.Errorf("trackDetail missing deezer link:\n%s", detail)
	}
	if strings.Contains(detail, "Spotify") || strings.Contains(detail, "Album") {
		t.Errorf("trackDetail should omit empty fields:\n%s", detail)
	}
}

func TestParseScope(t *testing.T) {
	scope, err := parseScope([]string{"title", " artist "})
	if err != nil {
		t.Fatalf("parseScope error: %v", err)
	}
	if !slices.Equal(scope, []track.Field{track.FieldTitle, track.FieldArtist}) {
		t.Errorf("parseScope = %v", scope)
	}

	if scope, err := parseScope(nil); err != nil || scope != nil {
		t.Errorf("parseScope(nil) = %v, %v", scope, err)
	}

	if _, err := parseScope([]string{"genre"}); err == nil {
		t.Error("expected error for unknown field")
	}
}

func TestMaskToken(t *testing.T) {
	if got := maskToken("abcdef123456"); got != "********3456" {
		t.Errorf("maskToken = %q", got)
	}
	if got := maskToken("abc"); got != "***" {
		t.Errorf("maskToken short = %q", got)
	}
}
