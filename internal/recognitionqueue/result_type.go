package recognitionqueue

import (
	"fmt"
)

// ResultType is the persisted kind of a recognition result
type ResultType int

const (
	ResultSuccess ResultType = iota + 1
	ResultNoMatches
	ResultBadConnection
	ResultBadRecording
	ResultAuthError
	ResultAPIUsageLimited
	ResultHTTPError
	ResultUnhandledError
)

// String returns a human-readable representation of the ResultType
func (t ResultType) String() string {
	switch t {
	case ResultSuccess:
		return "success"
	case ResultNoMatches:
		return "no-matches"
	case ResultBadConnection:
		return "bad-connection"
	case ResultBadRecording:
		return "bad-recording"
	case ResultAuthError:
		return "auth-error"
	case ResultAPIUsageLimited:
		return "api-usage-limited"
	case ResultHTTPError:
		return "http-error"
	case ResultUnhandledError:
		return "unhandled-error"
	default:
		return "unknown"
	}
}

// Outcome is what the queue stores about a finished recognition
type Outcome struct {
	Type    ResultType
	TrackID string // Set for ResultSuccess
	Message string // Diagnostic text for failures
}

// OutcomeOf reduces a result to its persisted form
func OutcomeOf(r RemoteResult) Outcome {
	var c outcomeCollector
	r.Accept(&c)
	return c.out
}

type outcomeCollector struct{ out Outcome }

var _ Visitor = (*outcomeCollector)(nil)

func (c *outcomeCollector) Success(t Track) {
	c.out = Outcome{Type: ResultSuccess, TrackID: t.MbID}
}

func (c *outcomeCollector) NoMatches() {
	c.out = Outcome{Type: ResultNoMatches}
}

func (c *outcomeCollector) BadConnection() {
	c.out = Outcome{Type: ResultBadConnection}
}

func (c *outcomeCollector) BadRecording(cause error) {
	c.out = Outcome{Type: ResultBadRecording}
	if cause != nil {
		c.out.Message = cause.Error()
	}
}

func (c *outcomeCollector) HTTPError(code int, message string) {
	c.out = Outcome{Type: ResultHTTPError, Message: fmt.Sprintf("%d: %s", code, message)}
}

func (c *outcomeCollector) WrongToken(limitReached bool) {
	if limitReached {
		c.out = Outcome{Type: ResultAPIUsageLimited}
		return
	}
	c.out = Outcome{Type: ResultAuthError}
}

func (c *outcomeCollector) UnhandledError(message string, cause error) {
	c.out = Outcome{Type: ResultUnhandledError, Message: message}
	if cause != nil {
		c.out.Message = fmt.Sprintf("%s: %v", message, cause)
	}
}
