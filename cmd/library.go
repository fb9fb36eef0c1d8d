package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jfmyers9/earshot/internal/track"
)

var libraryCmd = &cobra.Command{
	Use:     "library",
	Aliases: []string{"lib"},
	Short:   "Browse and curate recognized tracks",
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracks, most recently recognized first",
	Args:  cobra.NoArgs,
	RunE:  runLibraryList,
}

var librarySearchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search tracks by title, artist or album",
	Long: `Search the library. Matches are ranked by similarity to the query.

Use --scope to choose the fields searched: title, artist, album, lyrics.
The default scope is title, artist and album.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLibrarySearch,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show everything known about a track",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

var libraryFavCmd = &cobra.Command{
	Use:   "fav ID...",
	Short: "Mark tracks as favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFavorites(cmd.Context(), args, true)
	},
}

var libraryUnfavCmd = &cobra.Command{
	Use:   "unfav ID...",
	Short: "Remove tracks from favorites",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setFavorites(cmd.Context(), args, false)
	},
}

var libraryRmCmd = &cobra.Command{
	Use:   "rm ID...",
	Short: "Delete tracks from the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runLibraryRm,
}

func init() {
	rootCmd.AddCommand(libraryCmd)
	libraryCmd.AddCommand(libraryListCmd)
	libraryCmd.AddCommand(librarySearchCmd)
	libraryCmd.AddCommand(libraryShowCmd)
	libraryCmd.AddCommand(libraryFavCmd)
	libraryCmd.AddCommand(libraryUnfavCmd)
	libraryCmd.AddCommand(libraryRmCmd)

	libraryListCmd.Flags().Int("page", 1, "Page number")
	libraryListCmd.Flags().Int("limit", 20, "Tracks per page (0 = all)")
	libraryListCmd.Flags().Bool("favorites", false, "Only list favorites")
	libraryListCmd.Flags().StringP("format", "f", "", "Output format template instead of columns")

	librarySearchCmd.Flags().StringSlice("scope", nil, "Fields to search (title, artist, album, lyrics)")
	librarySearchCmd.Flags().Int("limit", 20, "Maximum results (0 = all)")
	librarySearchCmd.Flags().StringP("format", "f", "", "Output format template instead of columns")
}

func withLibrary(fn func(*track.Store) error) error {
	dataDir, err := resolveDataDir()
	if err != nil {
		return err
	}
	library, err := openLibrary(dataDir)
	if err != nil {
		return err
	}
	defer library.Close()

	return fn(library)
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	limit, _ := cmd.Flags().GetInt("limit")
	favorites, _ := cmd.Flags().GetBool("favorites")
	format, _ := cmd.Flags().GetString("format")

	if page < 1 {
		return fmt.Errorf("page must be at least 1")
	}

	return withLibrary(func(library *track.Store) error {
		total, err := library.Count(cmd.Context(), favorites)
		if err != nil {
			return err
		}

		tracks, err := library.Page(cmd.Context(), track.PageRequest{
			Offset:        (page - 1) * limit,
			Limit:         limit,
			FavoritesOnly: favorites,
		})
		if err != nil {
			return err
		}

		if len(tracks) == 0 {
			fmt.Println("No tracks")
			return nil
		}

		if err := printTracks(tracks, format); err != nil {
			return err
		}
		if format == "" && limit > 0 && total > limit {
			pages := (total + limit - 1) / limit
			fmt.Printf("\nPage %d of %d (%d tracks)\n", page, pages, total)
		}
		return nil
	})
}

func runLibrarySearch(cmd *cobra.Command, args []string) error {
	scopeNames, _ := cmd.Flags().GetStringSlice("scope")
	limit, _ := cmd.Flags().GetInt("limit")
	format, _ := cmd.Flags().GetString("format")

	scope, err := parseScope(scopeNames)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	return withLibrary(func(library *track.Store) error {
		res, err := library.Search(cmd.Context(), query, scope, limit)
		if err != nil {
			return err
		}
		if len(res.Tracks) == 0 {
			fmt.Printf("No tracks match %q\n", query)
			return nil
		}
		return printTracks(res.Tracks, format)
	})
}

// parseScope converts field names into search fields
func parseScope(names []string) ([]track.Field, error) {
	var scope []track.Field
	for _, name := range names {
		f, ok := track.ParseField(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("unknown search field %q (use title, artist, album or lyrics)", name)
		}
		scope = append(scope, f)
	}
	return scope, nil
}

func printTracks(tracks []track.Track, format string) error {
	if format != "" {
		for _, t := range tracks {
			line, err := formatTrack(t, format)
			if err != nil {
				return err
			}
			fmt.Println(line)
		}
		return nil
	}

	fmt.Print(trackTable(tracks, time.Now()))
	return nil
}

// trackTable renders tracks as aligned columns
func trackTable(tracks []track.Track, now time.Time) string {
	rows := [][]string{{"", "TITLE", "ARTIST", "ALBUM", "RECOGNIZED", "ID"}}
	for _, t := range tracks {
		star := ""
		if t.Metadata.IsFavorite {
			star = "★"
		}
		rows = append(rows, []string{star, t.Title, t.Artist, t.Album, formatAge(t.Metadata.LastRecognition, now), t.MbID})
	}
	return columns(rows, []int{1, 36, 28, 28, 0, 0})
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	return withLibrary(func(library *track.Store) error {
		t, err := library.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Print(trackDetail(t))
		return nil
	})
}

// trackDetail renders every known field of t
func trackDetail(t track.Track) string {
	var sb strings.Builder

	field := func(name, value string) {
		if value == "" {
			return
		}
		sb.WriteString(padToWidth(name+":", 14))
		sb.WriteString(value)
		sb.WriteString("\n")
	}

	field("Title", t.Title)
	field("Artist", t.Artist)
	field("Album", t.Album)
	field("Released", t.ReleaseDate)
	field("ID", t.MbID)
	if !t.Metadata.LastRecognition.IsZero() {
		field("Recognized", t.Metadata.LastRecognition.Local().Format(time.RFC1123))
	}
	if t.Metadata.IsFavorite {
		field("Favorite", "yes")
	}
	field("Artwork", t.Links.Artwork)
	field("song.link", t.Links.SongLink)
	field("Apple Music", t.Links.AppleMusic)
	field("Spotify", t.Links.Spotify)
	field("Deezer", t.Links.Deezer)
	field("Napster", t.Links.Napster)
	field("YouTube", t.Links.YouTube)
	field("MusicBrainz", t.Links.MusicBrainz)

	if t.Lyrics != "" {
		sb.WriteString("\n")
		sb.WriteString(t.Lyrics)
		sb.WriteString("\n")
	}
	return sb.String()
}

func setFavorites(ctx context.Context, ids []string, favorite bool) error {
	return withLibrary(func(library *track.Store) error {
		var errs []error
		for _, id := range ids {
			if err := library.SetFavorite(ctx, id, favorite); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", id, err))
				continue
			}
			if favorite {
				fmt.Printf("★ %s\n", id)
			} else {
				fmt.Printf("☆ %s\n", id)
			}
		}
		return errors.Join(errs...)
	})
}

func runLibraryRm(cmd *cobra.Command, args []string) error {
	return withLibrary(func(library *track.Store) error {
		n, err := library.Delete(cmd.Context(), args...)
		if err != nil {
			return err
		}
		fmt.Printf("✓ Deleted %d of %d tracks\n", n, len(args))
		return nil
	})
}

