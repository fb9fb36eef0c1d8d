package deeplink

import (
	"net/url"
	"strings"
)

// Flag modifies how the host shell activates an intent
type Flag int

const (
	// FlagNewTask brings the application to the foreground in a new task
	FlagNewTask Flag = 1 << iota
)

const (
	// ActionView is the only action the router produces
	ActionView = "view"

	trackHost = "track"
	queueHost = "recognition-queue"
)

// Intent is an opaque navigation directive for the host shell
type Intent struct {
	Action    string
	URI       *url.URL
	Component string // Entry surface that handles the intent
	Flags     Flag
}

// Has reports whether f is set on the intent
func (i Intent) Has(f Flag) bool {
	return i.Flags&f != 0
}

// Router builds intents pointing at in-app destinations
type Router struct {
	scheme    string
	component string
}

// NewRouter creates a router for the given URI scheme and entry component
func NewRouter(scheme, component string) *Router {
	if scheme == "" {
		scheme = "app"
	}
	if component == "" {
		component = "main"
	}
	return &Router{scheme: scheme, component: component}
}

// TrackIntent points at the detail view of a track. The id is not validated.
func (r *Router) TrackIntent(mbID string) Intent {
	return r.intent(&url.URL{
		Scheme:  r.scheme,
		Host:    trackHost,
		Path:    "/" + mbID,
		RawPath: "/" + url.PathEscape(mbID),
	})
}

// QueueIntent points at the pending-recognition queue
func (r *Router) QueueIntent() Intent {
	return r.intent(&url.URL{Scheme: r.scheme, Host: queueHost})
}

func (r *Router) intent(uri *url.URL) Intent {
	return Intent{
		Action:    ActionView,
		URI:       uri,
		Component: r.component,
		Flags:     FlagNewTask,
	}
}

// TrackID extracts the track id from a URI built by TrackIntent
func TrackID(uri *url.URL) (string, bool) {
	if uri == nil || uri.Host != trackHost {
		return "", false
	}
	id := strings.TrimPrefix(uri.Path, "/")
	if id == "" {
		return "", false
	}
	return id, true
}

// IsQueue reports whether uri points at the recognition queue
func IsQueue(uri *url.URL) bool {
	return uri != nil && uri.Host == queueHost
}
