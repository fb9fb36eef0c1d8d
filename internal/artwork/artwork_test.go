package artwork

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/earshot/internal/track"
)

func deezerTrackLink(link string) track.Track {
	return track.Track{MbID: "mb-001", Links: track.Links{Deezer: link}}
}

// newTestResolver points a resolver at a test server that answers with body
func newTestResolver(t *testing.T, status int, body string) (*Resolver, *atomic.Int32, *atomic.Value) {
	t.Helper()

	var hits atomic.Int32
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return NewResolver(srv.URL, time.Second, zerolog.Nop()), &hits, &path
}

func TestResolver_AlbumMediumOnly(t *testing.T) {
	r, hits, path := newTestResolver(t, http.StatusOK, `{"album":{"cover_medium":"http://x/m.jpg"}}`)

	got, ok := r.FetchURL(context.Background(), deezerTrackLink("https://www.deezer.com/track/12345"))
	if !ok || got != "http://x/m.jpg" {
		t.Errorf("FetchURL() = %q, %v, want http://x/m.jpg", got, ok)
	}
	if hits.Load() != 1 {
		t.Errorf("expected 1 request, got %d", hits.Load())
	}
	if p := path.Load(); p != "/track/12345" {
		t.Errorf("request path = %v, want /track/12345", p)
	}
}

func TestResolver_AlbumTakesPriority(t *testing.T) {
	r, _, _ := newTestResolver(t, http.StatusOK, `{
		"album": {"cover_xl": "http://x/album-xl.jpg", "cover_big": "http://x/album-big.jpg"},
		"artist": {"picture_xl": "http://x/artist-xl.jpg"}
	}`)

	got, ok := r.FetchURL(context.Background(), deezerTrackLink("https://www.deezer.com/track/1"))
	if !ok || got != "http://x/album-xl.jpg" {
		t.Errorf("FetchURL() = %q, want album xl", got)
	}
}

func TestResolver_FallsBackToArtist(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{
			name: "album block absent",
			body: `{"artist":{"picture_big":"http://x/artist-big.jpg","picture_medium":"http://x/artist-medium.jpg"}}`,
			want: "http://x/artist-big.jpg",
		},
		{
			name: "album block without covers",
			body: `{"album":{},"artist":{"picture_medium":"http://x/artist-medium.jpg"}}`,
			want: "http://x/artist-medium.jpg",
		},
		{
			name: "null covers",
			body: `{"album":{"cover_xl":null},"artist":{"picture_xl":"http://x/artist-xl.jpg"}}`,
			want: "http://x/artist-xl.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestResolver(t, http.StatusOK, tt.body)
			got, ok := r.FetchURL(context.Background(), deezerTrackLink("https://www.deezer.com/track/1"))
			if !ok || got != tt.want {
				t.Errorf("FetchURL() = %q, %v, want %q", got, ok, tt.want)
			}
		})
	}
}

func TestResolver_AbsentWithoutRequest(t *testing.T) {
	tests := []struct {
		name string
		link string
	}{
		{"no deezer link", ""},
		{"no trailing digits", "https://www.deezer.com/track/abc"},
		{"digits not trailing", "https://www.deezer.com/track/123/abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, hits, _ := newTestResolver(t, http.StatusOK, `{"album":{"cover_xl":"http://x/xl.jpg"}}`)

			l := r.Lookup(context.Background(), deezerTrackLink(tt.link))
			if l.Outcome != Absent || l.URL != "" {
				t.Errorf("Lookup() = %+v, want absent", l)
			}
			if n := hits.Load(); n != 0 {
				t.Errorf("expected no HTTP requests, got %d", n)
			}
		})
	}
}

func TestResolver_AbsentOnFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		outcome Outcome
	}{
		{"http error", http.StatusInternalServerError, `{"album":{"cover_xl":"http://x/xl.jpg"}}`, Absent},
		{"not found", http.StatusNotFound, ``, Absent},
		{"malformed json", http.StatusOK, `{"album":`, Suppressed},
		{"no album or artist", http.StatusOK, `{"id":1,"title":"Song"}`, Absent},
		{"deezer error object", http.StatusOK, `{"error":{"type":"DataException","message":"no data","code":800}}`, Absent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _, _ := newTestResolver(t, tt.status, tt.body)
			tr := deezerTrackLink("https://www.deezer.com/track/42")

			l := r.Lookup(context.Background(), tr)
			if l.Outcome != tt.outcome {
				t.Errorf("Lookup() outcome = %v, want %v", l.Outcome, tt.outcome)
			}
			if tt.outcome == Suppressed && l.Err == nil {
				t.Error("suppressed lookup should carry the error")
			}

			if got, ok := r.FetchURL(context.Background(), tr); ok || got != "" {
				t.Errorf("FetchURL() = %q, %v, want absent", got, ok)
			}
		})
	}
}

func TestResolver_AbsentOnUnreachable(t *testing.T) {
	r := NewResolver("http://127.0.0.1:1", time.Second, zerolog.Nop()) // nothing listening

	l := r.Lookup(context.Background(), deezerTrackLink("https://www.deezer.com/track/42"))
	if l.Outcome != Suppressed || l.Err == nil {
		t.Errorf("Lookup() = %+v, want suppressed with error", l)
	}
	if got, ok := r.FetchURL(context.Background(), deezerTrackLink("https://www.deezer.com/track/42")); ok || got != "" {
		t.Errorf("FetchURL() = %q, %v, want absent", got, ok)
	}
}

func TestResolver_ContextCancelled(t *testing.T) {
	r, _, _ := newTestResolver(t, http.StatusOK, `{"album":{"cover_xl":"http://x/xl.jpg"}}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	l := r.Lookup(ctx, deezerTrackLink("https://www.deezer.com/track/42"))
	if l.Outcome != Suppressed || !errors.Is(l.Err, context.Canceled) {
		t.Errorf("Lookup() = %+v, want suppressed context.Canceled", l)
	}
}

func TestResolver_FetchAsync(t *testing.T) {
	r, _, _ := newTestResolver(t, http.StatusOK, `{"album":{"cover_big":"http://x/big.jpg"}}`)

	ch := r.FetchAsync(context.Background(), deezerTrackLink("https://www.deezer.com/track/7"))

	select {
	case l := <-ch:
		if l.Outcome != Found || l.URL != "http://x/big.jpg" {
			t.Errorf("FetchAsync() = %+v", l)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("FetchAsync did not deliver a result")
	}

	if _, open := <-ch; open {
		t.Error("channel should be closed after the result")
	}
}

func TestResolver_DoesNotCache(t *testing.T) {
	r, hits, _ := newTestResolver(t, http.StatusOK, `{"album":{"cover_xl":"http://x/xl.jpg"}}`)
	tr := deezerTrackLink("https://www.deezer.com/track/42")

	r.FetchURL(context.Background(), tr)
	r.FetchURL(context.Background(), tr)

	if n := hits.Load(); n != 2 {
		t.Errorf("expected 2 requests, got %d", n)
	}
}
