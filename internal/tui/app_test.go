package tui

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/jfmyers9/earshot/internal/track"
)

type fixedPending int

func (p fixedPending) Count(context.Context, bool) (int, error) { return int(p), nil }

func newTestLibrary(t *testing.T, n int) *track.Store {
	t.Helper()

	store, err := track.NewStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		err := store.Upsert(context.Background(), track.Track{
			MbID:     fmt.Sprintf("mb-%03d", i),
			Title:    fmt.Sprintf("Song %d", i),
			Artist:   "Artist",
			Metadata: track.Metadata{LastRecognition: base.Add(time.Duration(i) * time.Minute)},
		})
		if err != nil {
			t.Fatalf("failed to seed track: %v", err)
		}
	}
	return store
}

func key(r rune) *tcell.EventKey {
	return tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone)
}

func TestApp_Paging(t *testing.T) {
	store := newTestLibrary(t, 5)
	a := NewWithConfig(Config{PageSize: 2}, store, fixedPending(3))
	a.reload()

	if len(a.tracks) != 2 || a.tracks[0].MbID != "mb-004" {
		t.Fatalf("first page = %+v", a.tracks)
	}
	if a.pendingCount != 3 {
		t.Errorf("pendingCount = %d, want 3", a.pendingCount)
	}

	a.handleKeyEvent(key('n'))
	a.handleKeyEvent(key('n'))
	if a.page != 2 || len(a.tracks) != 1 || a.tracks[0].MbID != "mb-000" {
		t.Errorf("last page = %d %+v", a.page, a.tracks)
	}

	// No page past the end
	a.handleKeyEvent(key('n'))
	if a.page != 2 {
		t.Errorf("page = %d, want 2", a.page)
	}

	a.handleKeyEvent(key('p'))
	if a.page != 1 {
		t.Errorf("page = %d, want 1", a.page)
	}
}

func TestApp_ToggleFavorite(t *testing.T) {
	store := newTestLibrary(t, 3)
	a := NewWithConfig(Config{PageSize: 10}, store, nil)
	a.reload()

	a.table.Select(1, 0)
	a.handleKeyEvent(key('f'))

	got, err := store.Get(context.Background(), "mb-002")
	if err != nil {
		t.Fatal(err)
	}
	if !got.Metadata.IsFavorite {
		t.Error("selected track should be a favorite")
	}

	// Favorites-only view
	a.handleKeyEvent(key('F'))
	if !a.favoritesOnly || len(a.tracks) != 1 {
		t.Errorf("favorites view = %+v", a.tracks)
	}

	a.handleKeyEvent(key('f'))
	got, _ = store.Get(context.Background(), "mb-002")
	if got.Metadata.IsFavorite {
		t.Error("second toggle should clear the favorite")
	}
}

func TestApp_SearchAndClear(t *testing.T) {
	store := newTestLibrary(t, 12)
	a := NewWithConfig(Config{PageSize: 5}, store, nil)
	a.reload()

	a.search.SetText("Song 11")
	a.handleSearchDone(tcell.KeyEnter)
	if a.query != "Song 11" {
		t.Fatalf("query = %q", a.query)
	}
	if len(a.tracks) == 0 || a.tracks[0].MbID != "mb-011" {
		t.Errorf("search results = %+v", a.tracks)
	}
	if !strings.Contains(a.lastStatus, "results for") {
		t.Errorf("status = %q", a.lastStatus)
	}

	a.handleKeyEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone))
	if a.query != "" || len(a.tracks) != 5 {
		t.Errorf("after clear: query=%q tracks=%d", a.query, len(a.tracks))
	}
}

func TestApp_SearchCancelled(t *testing.T) {
	store := newTestLibrary(t, 3)
	a := NewWithConfig(Config{PageSize: 5}, store, nil)
	a.reload()

	a.search.SetText("Song 1")
	a.handleSearchDone(tcell.KeyEscape)
	if a.query != "" {
		t.Errorf("cancelled search set query %q", a.query)
	}
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		total, size, want int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := pageCount(tt.total, tt.size); got != tt.want {
			t.Errorf("pageCount(%d, %d) = %d, want %d", tt.total, tt.size, got, tt.want)
		}
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{50 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatAge(tt.d); got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestDetailText(t *testing.T) {
	text := detailText(track.Track{
		Title:    "Song",
		Artist:   "Artist",
		Album:    "Album",
		Lyrics:   "la la [la]",
		Links:    track.Links{Spotify: "https://open.spotify.com/track/1"},
		Metadata: track.Metadata{IsFavorite: true},
	})

	for _, want := range []string{"Song", "Artist", "Album", "Favorite", "Spotify: ", "Lyrics"} {
		if !strings.Contains(text, want) {
			t.Errorf("detail missing %q:\n%s", want, text)
		}
	}
	if strings.Contains(text, "Deezer") {
		t.Error("empty links should be omitted")
	}
}
