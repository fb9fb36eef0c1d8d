package recognitionqueue

import (
	"time"
)

// Track is the track as shown by the recognition queue
type Track struct {
	MbID            string
	Title           string
	Artist          string
	Album           string
	ReleaseDate     string
	Lyrics          string
	ArtworkURL      string
	IsFavorite      bool
	LastRecognition time.Time
}

// RemoteResult is the outcome of a recognition attempt as consumed by
// the queue and its user-facing messages. It mirrors the recognition
// client's result set one variant for one variant.
type RemoteResult interface {
	Accept(v Visitor)
	sealed()
}

// Visitor handles each RemoteResult variant.
type Visitor interface {
	Success(t Track)
	NoMatches()
	BadConnection()
	BadRecording(cause error)
	HTTPError(code int, message string)
	WrongToken(limitReached bool)
	UnhandledError(message string, cause error)
}

// Success carries the matched track
type Success struct {
	Track Track
}

// NoMatches means nothing matched the recording
type NoMatches struct{}

// BadConnection means the service could not be reached
type BadConnection struct{}

// BadRecording means the recording was unusable
type BadRecording struct {
	Cause error
}

// HTTPError means the service answered with a non-success status
type HTTPError struct {
	Code    int
	Message string
}

// WrongToken means the API token was rejected or ran out of quota
type WrongToken struct {
	LimitReached bool
}

// UnhandledError is any other failure
type UnhandledError struct {
	Message string
	Cause   error
}

func (r Success) Accept(v Visitor)        { v.Success(r.Track) }
func (NoMatches) Accept(v Visitor)        { v.NoMatches() }
func (BadConnection) Accept(v Visitor)    { v.BadConnection() }
func (r BadRecording) Accept(v Visitor)   { v.BadRecording(r.Cause) }
func (r HTTPError) Accept(v Visitor)      { v.HTTPError(r.Code, r.Message) }
func (r WrongToken) Accept(v Visitor)     { v.WrongToken(r.LimitReached) }
func (r UnhandledError) Accept(v Visitor) { v.UnhandledError(r.Message, r.Cause) }

func (Success) sealed()        {}
func (NoMatches) sealed()      {}
func (BadConnection) sealed()  {}
func (BadRecording) sealed()   {}
func (HTTPError) sealed()      {}
func (WrongToken) sealed()     {}
func (UnhandledError) sealed() {}
