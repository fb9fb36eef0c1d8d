package recognitionqueue

import (
	"fmt"
)

// Message is the user-facing text for a recognition result
type Message struct {
	Title string
	Body  string
}

// MessageFor returns the text shown to the user for r. Each kind of
// failure gets its own wording.
func MessageFor(r RemoteResult) Message {
	var m messenger
	r.Accept(&m)
	return m.msg
}

type messenger struct{ msg Message }

var _ Visitor = (*messenger)(nil)

func (m *messenger) Success(t Track) {
	body := t.Artist
	if t.Album != "" {
		body += " · " + t.Album
	}
	m.msg = Message{Title: t.Title, Body: body}
}

func (m *messenger) NoMatches() {
	m.msg = Message{
		Title: "No matches found",
		Body:  "Try recording again closer to the source.",
	}
}

func (m *messenger) BadConnection() {
	m.msg = Message{
		Title: "Connection problem",
		Body:  "Could not reach the recognition service. The recording was kept, try again when online.",
	}
}

func (m *messenger) BadRecording(cause error) {
	body := "The recording could not be used (too short, silent or corrupt)."
	if cause != nil {
		body += " " + cause.Error()
	}
	m.msg = Message{Title: "Bad recording", Body: body}
}

func (m *messenger) HTTPError(code int, message string) {
	m.msg = Message{
		Title: "Service error",
		Body:  fmt.Sprintf("The recognition service answered %d: %s", code, message),
	}
}

func (m *messenger) WrongToken(limitReached bool) {
	if limitReached {
		m.msg = Message{
			Title: "Usage limit reached",
			Body:  "The API token has no requests left. Wait for the quota to reset or set another token with 'earshot auth'.",
		}
		return
	}
	m.msg = Message{
		Title: "Wrong API token",
		Body:  "The API token was rejected. Set a valid one with 'earshot auth'.",
	}
}

func (m *messenger) UnhandledError(message string, cause error) {
	body := message
	if cause != nil {
		body = fmt.Sprintf("%s (%v)", message, cause)
	}
	m.msg = Message{Title: "Recognition failed", Body: body}
}
