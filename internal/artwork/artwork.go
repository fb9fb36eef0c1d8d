package artwork

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jfmyers9/earshot/internal/track"
)

// DefaultEndpoint is the Deezer public API
const DefaultEndpoint = "https://api.deezer.com"

// Outcome classifies a lookup
type Outcome int

const (
	Absent     Outcome = iota // Nothing to fetch, or the provider has no image
	Found                     // URL holds the image
	Suppressed                // A transport or decode failure was swallowed
)

// String returns a human-readable representation of the Outcome
func (o Outcome) String() string {
	switch o {
	case Absent:
		return "absent"
	case Found:
		return "found"
	case Suppressed:
		return "suppressed"
	default:
		return "unknown"
	}
}

// Lookup is the detailed result of resolving artwork
type Lookup struct {
	Outcome Outcome
	URL     string
	Err     error // Set when Outcome is Suppressed
}

// Resolver finds cover images for tracks through the Deezer API.
// It keeps no state between calls and is safe for concurrent use.
type Resolver struct {
	client   *http.Client
	endpoint string
	logger   zerolog.Logger
}

// NewResolver creates a resolver. An empty endpoint selects DefaultEndpoint.
func NewResolver(endpoint string, timeout time.Duration, logger zerolog.Logger) *Resolver {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Resolver{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: strings.TrimRight(endpoint, "/"),
		logger:   logger.With().Str("component", "artwork").Logger(),
	}
}

type deezerTrack struct {
	Album *struct {
		CoverXL     string `json:"cover_xl"`
		CoverBig    string `json:"cover_big"`
		CoverMedium string `json:"cover_medium"`
	} `json:"album"`
	Artist *struct {
		PictureXL     string `json:"picture_xl"`
		PictureBig    string `json:"picture_big"`
		PictureMedium string `json:"picture_medium"`
	} `json:"artist"`
}

// imagePriority lists image accessors from most to least preferred.
// Artist pictures are only reached when the album has no cover at all.
var imagePriority = []func(deezerTrack) string{
	func(d deezerTrack) string {
		if d.Album == nil {
			return ""
		}
		return d.Album.CoverXL
	},
	func(d deezerTrack) string {
		if d.Album == nil {
			return ""
		}
		return d.Album.CoverBig
	},
	func(d deezerTrack) string {
		if d.Album == nil {
			return ""
		}
		return d.Album.CoverMedium
	},
	func(d deezerTrack) string {
		if d.Artist == nil {
			return ""
		}
		return d.Artist.PictureXL
	},
	func(d deezerTrack) string {
		if d.Artist == nil {
			return ""
		}
		return d.Artist.PictureBig
	},
	func(d deezerTrack) string {
		if d.Artist == nil {
			return ""
		}
		return d.Artist.PictureMedium
	},
}

var trackIDPattern = regexp.MustCompile(`\d+$`)

// FetchURL returns a cover image URL for t, or false when none is available.
// Failures are logged and reported as absent; artwork is optional.
func (r *Resolver) FetchURL(ctx context.Context, t track.Track) (string, bool) {
	l := r.Lookup(ctx, t)
	return l.URL, l.Outcome == Found
}

// FetchAsync runs FetchURL's lookup on its own goroutine. The channel
// receives exactly one value and is then closed.
func (r *Resolver) FetchAsync(ctx context.Context, t track.Track) <-chan Lookup {
	ch := make(chan Lookup, 1)
	go func() {
		defer close(ch)
		ch <- r.Lookup(ctx, t)
	}()
	return ch
}

// Lookup resolves artwork for t and reports why nothing was found
func (r *Resolver) Lookup(ctx context.Context, t track.Track) Lookup {
	link := t.Links.Deezer
	if link == "" {
		return Lookup{Outcome: Absent}
	}

	digits := trackIDPattern.FindString(link)
	if digits == "" {
		return Lookup{Outcome: Absent}
	}
	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return Lookup{Outcome: Absent}
	}

	requestURL := fmt.Sprintf("%s/track/%d", r.endpoint, id)
	l := r.fetch(ctx, requestURL)
	if l.Outcome == Suppressed {
		r.logger.Warn().
			Err(l.Err).
			Str("url", requestURL).
			Str("track", t.MbID).
			Msg("Artwork lookup failed")
	}
	return l
}

func (r *Resolver) fetch(ctx context.Context, requestURL string) Lookup {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return Lookup{Outcome: Suppressed, Err: fmt.Errorf("failed to create request: %w", err)}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return Lookup{Outcome: Suppressed, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Lookup{Outcome: Absent}
	}

	var body deezerTrack
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Lookup{Outcome: Suppressed, Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	for _, image := range imagePriority {
		if u := image(body); u != "" {
			return Lookup{Outcome: Found, URL: u}
		}
	}
	return Lookup{Outcome: Absent}
}
