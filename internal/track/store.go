package track

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when no track has the requested identifier
var ErrNotFound = errors.New("track not found")

// Store is the track library backed by SQLite
type Store struct {
	db *sql.DB
}

// PageRequest selects one page of the library
type PageRequest struct {
	Offset        int
	Limit         int
	FavoritesOnly bool
}

// SearchResult is the outcome of a library search
type SearchResult struct {
	Query  string
	Scope  []Field
	Tracks []Track
}

const trackColumns = `mb_id, title, artist, album, release_date, lyrics,
	link_artwork, link_song, link_apple_music, link_deezer, link_spotify,
	link_napster, link_musicbrainz, link_youtube, last_recognition, is_favorite`

// NewStore opens (or creates) the library database at dbPath
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection keeps in-memory databases consistent
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA journal_mode = WAL",
		"PRAGMA temp_store = MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	schema := `
		CREATE TABLE IF NOT EXISTS tracks (
			mb_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			artist TEXT NOT NULL,
			album TEXT NOT NULL DEFAULT '',
			release_date TEXT NOT NULL DEFAULT '',
			lyrics TEXT NOT NULL DEFAULT '',
			link_artwork TEXT NOT NULL DEFAULT '',
			link_song TEXT NOT NULL DEFAULT '',
			link_apple_music TEXT NOT NULL DEFAULT '',
			link_deezer TEXT NOT NULL DEFAULT '',
			link_spotify TEXT NOT NULL DEFAULT '',
			link_napster TEXT NOT NULL DEFAULT '',
			link_musicbrainz TEXT NOT NULL DEFAULT '',
			link_youtube TEXT NOT NULL DEFAULT '',
			last_recognition INTEGER NOT NULL,
			is_favorite BOOLEAN NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_tracks_recognition ON tracks(last_recognition);
		CREATE INDEX IF NOT EXISTS idx_tracks_favorite ON tracks(is_favorite, last_recognition);
	`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Upsert inserts a track or refreshes an existing one.
// The favorite flag is never overwritten, and a link that is empty in t
// keeps its stored value.
func (s *Store) Upsert(ctx context.Context, t Track) error {
	if t.MbID == "" {
		return fmt.Errorf("track has no identifier")
	}

	query := `
		INSERT INTO tracks (` + trackColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(mb_id) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			release_date = excluded.release_date,
			lyrics = COALESCE(NULLIF(excluded.lyrics, ''), tracks.lyrics),
			link_artwork = COALESCE(NULLIF(excluded.link_artwork, ''), tracks.link_artwork),
			link_song = COALESCE(NULLIF(excluded.link_song, ''), tracks.link_song),
			link_apple_music = COALESCE(NULLIF(excluded.link_apple_music, ''), tracks.link_apple_music),
			link_deezer = COALESCE(NULLIF(excluded.link_deezer, ''), tracks.link_deezer),
			link_spotify = COALESCE(NULLIF(excluded.link_spotify, ''), tracks.link_spotify),
			link_napster = COALESCE(NULLIF(excluded.link_napster, ''), tracks.link_napster),
			link_musicbrainz = COALESCE(NULLIF(excluded.link_musicbrainz, ''), tracks.link_musicbrainz),
			link_youtube = COALESCE(NULLIF(excluded.link_youtube, ''), tracks.link_youtube),
			last_recognition = excluded.last_recognition
	`

	recognized := t.Metadata.LastRecognition
	if recognized.IsZero() {
		recognized = time.Now()
	}

	_, err := s.db.ExecContext(ctx, query,
		t.MbID, t.Title, t.Artist, t.Album, t.ReleaseDate, t.Lyrics,
		t.Links.Artwork, t.Links.SongLink, t.Links.AppleMusic, t.Links.Deezer,
		t.Links.Spotify, t.Links.Napster, t.Links.MusicBrainz, t.Links.YouTube,
		recognized.Unix(), t.Metadata.IsFavorite,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}

	return nil
}

// Get returns the track with the given identifier
func (s *Store) Get(ctx context.Context, mbID string) (Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE mb_id = ?`, mbID)
	t, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Track{}, ErrNotFound
	}
	if err != nil {
		return Track{}, fmt.Errorf("failed to get track %s: %w", mbID, err)
	}
	return t, nil
}

// Page returns one page of the library, most recently recognized first
func (s *Store) Page(ctx context.Context, req PageRequest) ([]Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks`
	if req.FavoritesOnly {
		query += ` WHERE is_favorite = 1`
	}
	query += ` ORDER BY last_recognition DESC, mb_id ASC`

	limit := req.Limit
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	offset := req.Offset
	if offset < 0 {
		offset = 0
	}
	query += ` LIMIT ? OFFSET ?`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	return scanTracks(rows)
}

// Search returns tracks whose scoped fields contain query, ranked by
// Jaro-Winkler similarity of the best matching field
func (s *Store) Search(ctx context.Context, query string, scope []Field, limit int) (SearchResult, error) {
	if len(scope) == 0 {
		scope = DefaultScope
	}
	result := SearchResult{Query: query, Scope: scope}

	needle := strings.TrimSpace(query)
	if needle == "" {
		return result, nil
	}

	clauses := make([]string, 0, len(scope))
	args := make([]any, 0, len(scope))
	pattern := "%" + escapeLike(needle) + "%"
	for _, f := range scope {
		clauses = append(clauses, f.String()+` LIKE ? ESCAPE '\'`)
		args = append(args, pattern)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE `+strings.Join(clauses, " OR "), args...)
	if err != nil {
		return result, fmt.Errorf("failed to search tracks: %w", err)
	}
	defer rows.Close()

	tracks, err := scanTracks(rows)
	if err != nil {
		return result, err
	}

	result.Tracks = rankTracks(tracks, needle, scope)
	if limit > 0 && len(result.Tracks) > limit {
		result.Tracks = result.Tracks[:limit]
	}
	return result, nil
}

// SetFavorite sets the favorite flag of a track
func (s *Store) SetFavorite(ctx context.Context, mbID string, favorite bool) error {
	result, err := s.db.ExecContext(ctx, `UPDATE tracks SET is_favorite = ? WHERE mb_id = ?`, favorite, mbID)
	if err != nil {
		return fmt.Errorf("failed to set favorite: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes the given tracks and returns how many were deleted
func (s *Store) Delete(ctx context.Context, mbIDs ...string) (int64, error) {
	if len(mbIDs) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, "DELETE FROM tracks WHERE mb_id = ?")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	var deleted int64
	for _, id := range mbIDs {
		res, err := stmt.ExecContext(ctx, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete track %s: %w", id, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to get rows affected: %w", err)
		}
		deleted += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return deleted, nil
}

// Count returns the number of tracks in the library
func (s *Store) Count(ctx context.Context, favoritesOnly bool) (int, error) {
	query := "SELECT COUNT(*) FROM tracks"
	if favoritesOnly {
		query += " WHERE is_favorite = 1"
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}

	return count, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTrack(row scanner) (Track, error) {
	var t Track
	var recognizedUnix int64
	err := row.Scan(
		&t.MbID, &t.Title, &t.Artist, &t.Album, &t.ReleaseDate, &t.Lyrics,
		&t.Links.Artwork, &t.Links.SongLink, &t.Links.AppleMusic, &t.Links.Deezer,
		&t.Links.Spotify, &t.Links.Napster, &t.Links.MusicBrainz, &t.Links.YouTube,
		&recognizedUnix, &t.Metadata.IsFavorite,
	)
	if err != nil {
		return Track{}, err
	}
	t.Metadata.LastRecognition = time.Unix(recognizedUnix, 0)
	return t, nil
}

func scanTracks(rows *sql.Rows) ([]Track, error) {
	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tracks: %w", err)
	}

	return tracks, nil
}

// rankTracks orders tracks by their best field similarity to query.
// Ties keep the most recently recognized track first.
func rankTracks(tracks []Track, query string, scope []Field) []Track {
	metric := metrics.NewJaroWinkler()
	metric.CaseSensitive = false

	scores := make(map[string]float64, len(tracks))
	for _, t := range tracks {
		var best float64
		for _, f := range scope {
			if score := strutil.Similarity(query, t.value(f), metric); score > best {
				best = score
			}
		}
		scores[t.MbID] = best
	}

	sort.SliceStable(tracks, func(i, j int) bool {
		si, sj := scores[tracks[i].MbID], scores[tracks[j].MbID]
		if si != sj {
			return si > sj
		}
		return tracks[i].Metadata.LastRecognition.After(tracks[j].Metadata.LastRecognition)
	})
	return tracks
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
