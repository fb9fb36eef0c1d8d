package mapper

import (
	"github.com/jfmyers9/earshot/internal/recognitionqueue"
	"github.com/jfmyers9/earshot/internal/remote"
	"github.com/jfmyers9/earshot/internal/track"
)

// Mapper translates values between layers
type Mapper[In, Out any] interface {
	Map(in In) Out
}

// TrackMapper maps library tracks to recognition queue tracks
type TrackMapper struct{}

// Map implements Mapper
func (TrackMapper) Map(t track.Track) recognitionqueue.Track {
	return recognitionqueue.Track{
		MbID:            t.MbID,
		Title:           t.Title,
		Artist:          t.Artist,
		Album:           t.Album,
		ReleaseDate:     t.ReleaseDate,
		Lyrics:          t.Lyrics,
		ArtworkURL:      t.Links.Artwork,
		IsFavorite:      t.Metadata.IsFavorite,
		LastRecognition: t.Metadata.LastRecognition,
	}
}

// RemoteResultMapper maps recognition client results to the queue's
// result type. Every carried field is copied unchanged.
type RemoteResultMapper struct {
	tracks Mapper[track.Track, recognitionqueue.Track]
}

// NewRemoteResultMapper creates a mapper delegating tracks to trackMapper
func NewRemoteResultMapper(trackMapper Mapper[track.Track, recognitionqueue.Track]) *RemoteResultMapper {
	return &RemoteResultMapper{tracks: trackMapper}
}

// Map implements Mapper
func (m *RemoteResultMapper) Map(in remote.Result) recognitionqueue.RemoteResult {
	v := resultVisitor{tracks: m.tracks}
	in.Accept(&v)
	return v.out
}

// resultVisitor must implement every remote.Visitor method, so a new
// remote variant fails to compile here until it is mapped.
type resultVisitor struct {
	tracks Mapper[track.Track, recognitionqueue.Track]
	out    recognitionqueue.RemoteResult
}

var _ remote.Visitor = (*resultVisitor)(nil)

func (v *resultVisitor) Success(t track.Track) {
	v.out = recognitionqueue.Success{Track: v.tracks.Map(t)}
}

func (v *resultVisitor) NoMatches() {
	v.out = recognitionqueue.NoMatches{}
}

func (v *resultVisitor) BadConnection() {
	v.out = recognitionqueue.BadConnection{}
}

func (v *resultVisitor) BadRecording(cause error) {
	v.out = recognitionqueue.BadRecording{Cause: cause}
}

func (v *resultVisitor) HTTPError(code int, message string) {
	v.out = recognitionqueue.HTTPError{Code: code, Message: message}
}

func (v *resultVisitor) WrongToken(limitReached bool) {
	v.out = recognitionqueue.WrongToken{LimitReached: limitReached}
}

func (v *resultVisitor) UnhandledError(message string, cause error) {
	v.out = recognitionqueue.UnhandledError{Message: message, Cause: cause}
}
