package audd

import (
	"encoding/json"
	"strings"
)

// Response is the envelope of every AudD API response.
type Response struct {
	Status string    `json:"status"`
	Result *Song     `json:"result"`
	Error  *APIError `json:"error"`
}

// APIError is the error object of a failed response.
type APIError struct {
	Code    int    `json:"error_code"`
	Message string `json:"error_message"`
}

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Song is a matched track with the metadata requested through Config.Return.
type Song struct {
	Artist      string        `json:"artist"`
	Title       string        `json:"title"`
	Album       string        `json:"album"`
	ReleaseDate string        `json:"release_date"`
	Label       string        `json:"label"`
	Timecode    string        `json:"timecode"`
	SongLink    string        `json:"song_link"`
	AppleMusic  *AppleMusic   `json:"apple_music"`
	Spotify     *Spotify      `json:"spotify"`
	Deezer      *Deezer       `json:"deezer"`
	Napster     *Napster      `json:"napster"`
	MusicBrainz []MusicBrainz `json:"musicbrainz"`
	Lyrics      *Lyrics       `json:"lyrics"`
}

// AppleMusic holds the Apple Music metadata of a song.
type AppleMusic struct {
	URL     string `json:"url"`
	Artwork *struct {
		URL    string `json:"url"` // Template with {w} and {h} placeholders
		Width  int    `json:"width"`
		Height int    `json:"height"`
	} `json:"artwork"`
}

// ArtworkURL returns the artwork URL rendered at the given square size.
func (a *AppleMusic) ArtworkURL(size string) string {
	if a == nil || a.Artwork == nil || a.Artwork.URL == "" {
		return ""
	}
	return strings.NewReplacer("{w}", size, "{h}", size).Replace(a.Artwork.URL)
}

// Spotify holds the Spotify metadata of a song.
type Spotify struct {
	ID           string `json:"id"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
	Album *struct {
		Images []struct {
			URL    string `json:"url"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"images"`
	} `json:"album"`
}

// LargestImage returns the URL of the widest album image.
func (s *Spotify) LargestImage() string {
	if s == nil || s.Album == nil {
		return ""
	}
	var url string
	var width int
	for _, img := range s.Album.Images {
		if img.URL != "" && (url == "" || img.Width > width) {
			url, width = img.URL, img.Width
		}
	}
	return url
}

// Deezer holds the Deezer metadata of a song.
type Deezer struct {
	ID   int64  `json:"id"`
	Link string `json:"link"`
}

// Napster holds the Napster metadata of a song.
type Napster struct {
	ID   string `json:"id"`
	Href string `json:"href"`
}

// MusicBrainz is one MusicBrainz recording matching the song.
type MusicBrainz struct {
	ID    string `json:"id"`
	Score int    `json:"score"`
}

// Lyrics holds the lyrics of a song. Media is a JSON-encoded array
// of {provider, url} objects.
type Lyrics struct {
	Lyrics string `json:"lyrics"`
	Media  string `json:"media"`
}

// MediaURL returns the first media link of the given provider, e.g. "youtube".
func (l *Lyrics) MediaURL(provider string) string {
	if l == nil || l.Media == "" {
		return ""
	}
	var media []struct {
		Provider string `json:"provider"`
		URL      string `json:"url"`
	}
	if err := json.Unmarshal([]byte(l.Media), &media); err != nil {
		return ""
	}
	for _, m := range media {
		if m.Provider == provider && m.URL != "" {
			return m.URL
		}
	}
	return ""
}
