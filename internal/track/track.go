package track

import (
	"time"
)

// Track is a recognized track as it is persisted in the library
type Track struct {
	MbID        string // Stable external catalog identifier, never changes once assigned
	Title       string // Track title
	Artist      string // Artist name
	Album       string // Album name (optional)
	ReleaseDate string // Release date as reported by the recognition service (optional)
	Lyrics      string // Plain lyrics (optional)
	Links       Links
	Metadata    Metadata
}

// Links holds one optional URL per external service.
// An empty string means the service has no link for this track.
type Links struct {
	Artwork     string
	SongLink    string
	AppleMusic  string
	Deezer      string
	Spotify     string
	Napster     string
	MusicBrainz string
	YouTube     string
}

// Metadata holds library-local state for a track
type Metadata struct {
	LastRecognition time.Time // When the track was last recognized
	IsFavorite      bool      // Whether the user marked the track as favorite
}

// Field identifies a searchable track attribute
type Field int

const (
	FieldTitle Field = iota
	FieldArtist
	FieldAlbum
	FieldLyrics
)

// String returns the column-style name of the field
func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldArtist:
		return "artist"
	case FieldAlbum:
		return "album"
	case FieldLyrics:
		return "lyrics"
	default:
		return "unknown"
	}
}

// DefaultScope is the search scope used when none is given
var DefaultScope = []Field{FieldTitle, FieldArtist, FieldAlbum}

// ParseField parses a field name as produced by Field.String
func ParseField(name string) (Field, bool) {
	for _, f := range []Field{FieldTitle, FieldArtist, FieldAlbum, FieldLyrics} {
		if f.String() == name {
			return f, true
		}
	}
	return 0, false
}

func (t Track) value(f Field) string {
	switch f {
	case FieldTitle:
		return t.Title
	case FieldArtist:
		return t.Artist
	case FieldAlbum:
		return t.Album
	case FieldLyrics:
		return t.Lyrics
	default:
		return ""
	}
}
