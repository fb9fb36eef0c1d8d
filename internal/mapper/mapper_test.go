package mapper

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jfmyers9/earshot/internal/recognitionqueue"
	"github.com/jfmyers9/earshot/internal/remote"
	"github.com/jfmyers9/earshot/internal/track"
)

// countingTrackMapper records the tracks it was asked to map
type countingTrackMapper struct {
	mu    sync.Mutex
	calls []track.Track
}

func (c *countingTrackMapper) Map(t track.Track) recognitionqueue.Track {
	c.mu.Lock()
	c.calls = append(c.calls, t)
	c.mu.Unlock()
	return recognitionqueue.Track{MbID: "mapped-" + t.MbID}
}

func TestRemoteResultMapper_PreservesFields(t *testing.T) {
	recordingErr := errors.New("recording too short")
	unhandledErr := errors.New("unexpected EOF")

	tests := []struct {
		name string
		in   remote.Result
		want recognitionqueue.RemoteResult
	}{
		{
			name: "success",
			in:   remote.Success{Track: track.Track{MbID: "mb-001"}},
			want: recognitionqueue.Success{Track: recognitionqueue.Track{MbID: "mapped-mb-001"}},
		},
		{
			name: "no matches",
			in:   remote.NoMatches{},
			want: recognitionqueue.NoMatches{},
		},
		{
			name: "bad connection",
			in:   remote.BadConnection{},
			want: recognitionqueue.BadConnection{},
		},
		{
			name: "bad recording",
			in:   remote.BadRecording{Cause: recordingErr},
			want: recognitionqueue.BadRecording{Cause: recordingErr},
		},
		{
			name: "http error",
			in:   remote.HTTPError{Code: 418, Message: "I'm a teapot"},
			want: recognitionqueue.HTTPError{Code: 418, Message: "I'm a teapot"},
		},
		{
			name: "wrong token",
			in:   remote.WrongToken{LimitReached: false},
			want: recognitionqueue.WrongToken{LimitReached: false},
		},
		{
			name: "limit reached",
			in:   remote.WrongToken{LimitReached: true},
			want: recognitionqueue.WrongToken{LimitReached: true},
		},
		{
			name: "unhandled error",
			in:   remote.UnhandledError{Message: "decode failed", Cause: unhandledErr},
			want: recognitionqueue.UnhandledError{Message: "decode failed", Cause: unhandledErr},
		},
		{
			name: "unhandled error without cause",
			in:   remote.UnhandledError{Message: "odd"},
			want: recognitionqueue.UnhandledError{Message: "odd"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewRemoteResultMapper(&countingTrackMapper{})
			got := m.Map(tt.in)
			if got != tt.want {
				t.Errorf("Map() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestRemoteResultMapper_DelegatesTrackOnlyOnSuccess(t *testing.T) {
	tm := &countingTrackMapper{}
	m := NewRemoteResultMapper(tm)

	m.Map(remote.NoMatches{})
	m.Map(remote.BadConnection{})
	if len(tm.calls) != 0 {
		t.Fatalf("track mapper called %d times for non-success results", len(tm.calls))
	}

	in := track.Track{MbID: "mb-7", Title: "Innuendo"}
	m.Map(remote.Success{Track: in})
	if len(tm.calls) != 1 || tm.calls[0] != in {
		t.Errorf("track mapper calls = %+v, want exactly the success track", tm.calls)
	}
}

func TestRemoteResultMapper_Concurrent(t *testing.T) {
	m := NewRemoteResultMapper(TrackMapper{})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var in remote.Result = remote.HTTPError{Code: i, Message: "x"}
			want := recognitionqueue.HTTPError{Code: i, Message: "x"}
			if got := m.Map(in); got != want {
				t.Errorf("Map() = %#v, want %#v", got, want)
			}
		}(i)
	}
	wg.Wait()
}

func TestTrackMapper(t *testing.T) {
	recognized := time.Unix(1700000000, 0)
	in := track.Track{
		MbID:        "mb-001",
		Title:       "Warriors",
		Artist:      "Imagine Dragons",
		Album:       "Warriors",
		ReleaseDate: "2014-09-18",
		Lyrics:      "lyrics",
		Links:       track.Links{Artwork: "https://cdn/cover.jpg", Deezer: "https://www.deezer.com/track/1"},
		Metadata:    track.Metadata{LastRecognition: recognized, IsFavorite: true},
	}

	got := TrackMapper{}.Map(in)
	want := recognitionqueue.Track{
		MbID:            "mb-001",
		Title:           "Warriors",
		Artist:          "Imagine Dragons",
		Album:           "Warriors",
		ReleaseDate:     "2014-09-18",
		Lyrics:          "lyrics",
		ArtworkURL:      "https://cdn/cover.jpg",
		IsFavorite:      true,
		LastRecognition: recognized,
	}
	if got != want {
		t.Errorf("Map() = %+v, want %+v", got, want)
	}
}
