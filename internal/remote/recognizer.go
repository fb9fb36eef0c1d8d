package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jfmyers9/earshot/internal/track"
	"github.com/jfmyers9/earshot/pkg/audd"
)

// Recognizer submits recordings to a remote recognition service.
// Every attempt yields exactly one Result; failures are never returned as errors.
type Recognizer interface {
	RecognizeFile(ctx context.Context, path string) Result
}

// AuddRecognizer is the Recognizer backed by the AudD API
type AuddRecognizer struct {
	client *audd.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewAuddRecognizer wraps an AudD client
func NewAuddRecognizer(client *audd.Client, logger zerolog.Logger) *AuddRecognizer {
	return &AuddRecognizer{
		client: client,
		logger: logger.With().Str("component", "recognizer").Logger(),
		now:    time.Now,
	}
}

// RecognizeFile submits the recording stored at path
func (r *AuddRecognizer) RecognizeFile(ctx context.Context, path string) Result {
	f, err := os.Open(path)
	if err != nil {
		return BadRecording{Cause: fmt.Errorf("failed to open recording: %w", err)}
	}
	defer f.Close()

	return r.Recognize(ctx, f, filepath.Base(path))
}

// Recognize submits audio read from the given reader
func (r *AuddRecognizer) Recognize(ctx context.Context, audio io.Reader, name string) Result {
	song, err := r.client.Recognize(ctx, audio, name)
	result := Classify(song, err, r.now())

	r.logger.Debug().
		Str("recording", name).
		Str("result", Describe(result)).
		Msg("Recognition finished")

	return result
}

// Classify turns the outcome of an AudD call into a Result
func Classify(song *audd.Song, err error, now time.Time) Result {
	if err == nil {
		if song == nil {
			return NoMatches{}
		}
		return Success{Track: TrackFromSong(song, now)}
	}

	if errors.Is(err, audd.ErrEmptyAudio) {
		return BadRecording{Cause: err}
	}

	var apiErr *audd.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.BadAudio():
			return BadRecording{Cause: apiErr}
		case apiErr.Code == audd.ErrCodeInvalidToken:
			return WrongToken{LimitReached: false}
		case apiErr.LimitReached():
			return WrongToken{LimitReached: true}
		default:
			return UnhandledError{Message: apiErr.Message, Cause: apiErr}
		}
	}

	var statusErr *audd.StatusError
	if errors.As(err, &statusErr) {
		return HTTPError{Code: statusErr.StatusCode, Message: statusErr.Status}
	}

	// Check context before net.Error: *url.Error satisfies net.Error
	// and wraps cancellations too.
	if errors.Is(err, context.Canceled) {
		return UnhandledError{Message: "recognition cancelled", Cause: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return BadConnection{}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return BadConnection{}
	}

	return UnhandledError{Message: "recognition failed", Cause: err}
}

// TrackFromSong builds a library track from an AudD match
func TrackFromSong(song *audd.Song, now time.Time) track.Track {
	t := track.Track{
		MbID:        trackID(song),
		Title:       song.Title,
		Artist:      song.Artist,
		Album:       song.Album,
		ReleaseDate: song.ReleaseDate,
		Links: track.Links{
			SongLink: song.SongLink,
		},
		Metadata: track.Metadata{
			LastRecognition: now,
		},
	}

	if song.Lyrics != nil {
		t.Lyrics = song.Lyrics.Lyrics
		t.Links.YouTube = song.Lyrics.MediaURL("youtube")
	}
	if song.AppleMusic != nil {
		t.Links.AppleMusic = song.AppleMusic.URL
		t.Links.Artwork = song.AppleMusic.ArtworkURL("1000")
	}
	if song.Spotify != nil {
		t.Links.Spotify = song.Spotify.ExternalURLs.Spotify
		if t.Links.Artwork == "" {
			t.Links.Artwork = song.Spotify.LargestImage()
		}
	}
	if song.Deezer != nil {
		t.Links.Deezer = song.Deezer.Link
	}
	if song.Napster != nil {
		t.Links.Napster = song.Napster.Href
	}
	if id := musicBrainzID(song); id != "" {
		t.Links.MusicBrainz = "https://musicbrainz.org/recording/" + id
	}

	return t
}

// trackID prefers the MusicBrainz recording id. Songs without one get a
// name-based UUID so that recognizing the same song twice yields the same id.
func trackID(song *audd.Song) string {
	if id := musicBrainzID(song); id != "" {
		return id
	}
	name := strings.ToLower(strings.TrimSpace(song.Artist)) + "|" + strings.ToLower(strings.TrimSpace(song.Title))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("earshot:"+name)).String()
}

func musicBrainzID(song *audd.Song) string {
	for _, mb := range song.MusicBrainz {
		if mb.ID != "" {
			return mb.ID
		}
	}
	return ""
}
