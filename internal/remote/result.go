package remote

import (
	"fmt"

	"github.com/jfmyers9/earshot/internal/track"
)

// Result is the outcome of one recognition attempt as produced by the
// recognition client. Exactly one variant is active per attempt:
// Success, NoMatches, BadConnection, BadRecording, HTTPError, WrongToken
// or UnhandledError.
//
// The set is closed. Consumers dispatch with Accept; a new variant adds a
// Visitor method, so every dispatch site stops compiling until it handles it.
type Result interface {
	Accept(v Visitor)
	sealed()
}

// Visitor handles each Result variant.
type Visitor interface {
	Success(t track.Track)
	NoMatches()
	BadConnection()
	BadRecording(cause error)
	HTTPError(code int, message string)
	WrongToken(limitReached bool)
	UnhandledError(message string, cause error)
}

// Success carries the matched track.
type Success struct {
	Track track.Track
}

// NoMatches means the service found nothing for the submitted audio.
type NoMatches struct{}

// BadConnection means the network failed before a response was obtained.
type BadConnection struct{}

// BadRecording means the submitted audio was unusable.
type BadRecording struct {
	Cause error
}

// HTTPError means the endpoint answered with a non-success status.
type HTTPError struct {
	Code    int
	Message string
}

// WrongToken means the credential was rejected or its quota is exhausted.
type WrongToken struct {
	LimitReached bool
}

// UnhandledError is everything that fits no other variant.
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

// The error variants also satisfy error so they can be logged directly.

func (BadConnection) Error() string { return "bad connection" }

func (r BadRecording) Error() string {
	if r.Cause == nil {
		return "bad recording"
	}
	return fmt.Sprintf("bad recording: %v", r.Cause)
}

func (r BadRecording) Unwrap() error { return r.Cause }

func (r HTTPError) Error() string {
	return fmt.Sprintf("http error %d: %s", r.Code, r.Message)
}

func (r WrongToken) Error() string {
	if r.LimitReached {
		return "api usage limit reached"
	}
	return "wrong api token"
}

func (r UnhandledError) Error() string {
	if r.Cause == nil {
		return r.Message
	}
	return fmt.Sprintf("%s: %v", r.Message, r.Cause)
}

func (r UnhandledError) Unwrap() error { return r.Cause }

// Describe returns a short log-friendly label for a result.
func Describe(r Result) string {
	var d describer
	r.Accept(&d)
	return d.label
}

type describer struct{ label string }

var _ Visitor = (*describer)(nil)

func (d *describer) Success(t track.Track) { d.label = "success: " + t.Artist + " - " + t.Title }
func (d *describer) NoMatches()            { d.label = "no matches" }
func (d *describer) BadConnection()        { d.label = BadConnection{}.Error() }
func (d *describer) BadRecording(cause error) {
	d.label = BadRecording{Cause: cause}.Error()
}
func (d *describer) HTTPError(code int, message string) {
	d.label = HTTPError{Code: code, Message: message}.Error()
}
func (d *describer) WrongToken(limitReached bool) {
	d.label = WrongToken{LimitReached: limitReached}.Error()
}
func (d *describer) UnhandledError(message string, cause error) {
	d.label = UnhandledError{Message: message, Cause: cause}.Error()
}
