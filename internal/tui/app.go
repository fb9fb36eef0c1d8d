package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jfmyers9/earshot/internal/track"
)

// Library is the track storage the browser reads and updates
type Library interface {
	Page(ctx context.Context, req track.PageRequest) ([]track.Track, error)
	Search(ctx context.Context, query string, scope []track.Field, limit int) (track.SearchResult, error)
	SetFavorite(ctx context.Context, mbID string, favorite bool) error
	Count(ctx context.Context, favoritesOnly bool) (int, error)
}

// PendingCounter reports how many recordings await recognition
type PendingCounter interface {
	Count(ctx context.Context, includeFinished bool) (int, error)
}

// Config holds TUI configuration options
type Config struct {
	PageSize    int           // Rows per page
	RefreshRate time.Duration // How often to reload from storage
	SearchLimit int           // Maximum search results
}

// DefaultConfig returns the default TUI configuration
func DefaultConfig() Config {
	return Config{
		PageSize:    25,
		RefreshRate: 5 * time.Second,
		SearchLimit: 100,
	}
}

// App is the terminal library browser
type App struct {
	app    *tview.Application
	pages  *tview.Pages
	table  *tview.Table
	detail *tview.TextView
	status *tview.TextView
	search *tview.InputField

	config  Config
	library Library
	queue   PendingCounter

	// View state, only touched on the UI goroutine
	page          int
	total         int
	favoritesOnly bool
	query         string
	tracks        []track.Track
	pendingCount  int
	lastErr       error

	// Last-rendered content for change detection
	lastStatus string

	cancelFunc context.CancelFunc
}

// New creates a library browser with default config
func New(library Library, queue PendingCounter) *App {
	return NewWithConfig(DefaultConfig(), library, queue)
}

// NewWithConfig creates a library browser with the given config
func NewWithConfig(cfg Config, library Library, queue PendingCounter) *App {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultConfig().PageSize
	}
	a := &App{
		app:     tview.NewApplication(),
		config:  cfg,
		library: library,
		queue:   queue,
	}
	a.setupUI()
	return a
}

// setupUI creates the UI layout
func (a *App) setupUI() {
	a.table = tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0)
	a.table.SetBorder(true).
		SetTitle(" Library ").
		SetTitleAlign(tview.AlignLeft)
	a.table.SetSelectionChangedFunc(func(row, _ int) {
		a.showDetail(row)
	})

	a.detail = tview.NewTextView().
		SetDynamicColors(true).
		SetWordWrap(true)
	a.detail.SetBorder(true).
		SetTitle(" Track ").
		SetTitleAlign(tview.AlignLeft)

	a.status = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)

	a.search = tview.NewInputField().
		SetLabel("Search: ").
		SetFieldWidth(0)
	a.search.SetDoneFunc(a.handleSearchDone)

	body := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.table, 0, 3, true).
		AddItem(a.detail, 0, 2, false)

	main := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.status, 1, 0, false)

	searchBar := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(a.search, 1, 0, true)

	a.pages = tview.NewPages().
		AddPage("main", main, true, true).
		AddPage("search", searchBar, true, false)

	a.app.SetInputCapture(a.handleKeyEvent)
	a.app.SetRoot(a.pages, true)
}

// handleKeyEvent processes keyboard input outside the search field
func (a *App) handleKeyEvent(event *tcell.EventKey) *tcell.EventKey {
	if a.search.HasFocus() {
		return event
	}

	switch event.Key() {
	case tcell.KeyEscape:
		if a.query != "" {
			a.query = ""
			a.page = 0
			a.reload()
		}
		return nil
	case tcell.KeyRune:
	default:
		return event
	}

	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case '/':
		a.search.SetText("")
		a.pages.ShowPage("search")
		a.app.SetFocus(a.search)
		return nil
	case 'n':
		if a.query == "" && (a.page+1)*a.config.PageSize < a.total {
			a.page++
			a.reload()
		}
		return nil
	case 'p':
		if a.query == "" && a.page > 0 {
			a.page--
			a.reload()
		}
		return nil
	case 'f':
		a.toggleFavorite()
		return nil
	case 'F':
		a.favoritesOnly = !a.favoritesOnly
		a.page = 0
		a.reload()
		return nil
	case 'r':
		a.reload()
		return nil
	}
	return event
}

// handleSearchDone runs the query typed into the search field
func (a *App) handleSearchDone(key tcell.Key) {
	a.pages.HidePage("search")
	a.app.SetFocus(a.table)

	if key != tcell.KeyEnter {
		return
	}

	a.query = strings.TrimSpace(a.search.GetText())
	a.page = 0
	a.reload()
}

// toggleFavorite flips the favorite flag of the selected track
func (a *App) toggleFavorite() {
	row, _ := a.table.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= len(a.tracks) {
		return
	}

	t := a.tracks[idx]
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := a.library.SetFavorite(ctx, t.MbID, !t.Metadata.IsFavorite); err != nil {
		a.lastErr = err
		a.renderStatus()
		return
	}
	a.reload()
}

// Run starts the browser and blocks until the user quits
func (a *App) Run(ctx context.Context) error {
	ctx, a.cancelFunc = context.WithCancel(ctx)

	a.reload()

	go a.refreshLoop(ctx)

	if err := a.app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}

// refreshLoop periodically reloads the view so tracks recognized by the
// daemon show up without user input
func (a *App) refreshLoop(ctx context.Context) {
	refreshRate := a.config.RefreshRate
	if refreshRate <= 0 {
		refreshRate = 5 * time.Second
	}
	ticker := time.NewTicker(refreshRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			a.app.Stop()
			return
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.reload)
		}
	}
}

// reload fetches the current page or search results and redraws the table
func (a *App) reload() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a.lastErr = nil
	if a.query != "" {
		res, err := a.library.Search(ctx, a.query, nil, a.config.SearchLimit)
		if err != nil {
			a.lastErr = err
		}
		a.tracks = res.Tracks
		a.total = len(res.Tracks)
	} else {
		total, err := a.library.Count(ctx, a.favoritesOnly)
		if err != nil {
			a.lastErr = err
		}
		a.total = total
		if maxPage := pageCount(total, a.config.PageSize) - 1; a.page > maxPage {
			a.page = max(maxPage, 0)
		}

		tracks, err := a.library.Page(ctx, track.PageRequest{
			Offset:        a.page * a.config.PageSize,
			Limit:         a.config.PageSize,
			FavoritesOnly: a.favoritesOnly,
		})
		if err != nil {
			a.lastErr = err
		}
		a.tracks = tracks
	}

	if a.queue != nil {
		if n, err := a.queue.Count(ctx, false); err == nil {
			a.pendingCount = n
		}
	}

	a.renderTable()
	a.renderStatus()
}

// renderTable fills the table from a.tracks, keeping the selection in range
func (a *App) renderTable() {
	row, _ := a.table.GetSelection()

	a.table.Clear()
	for col, h := range []string{"", "Title", "Artist", "Album", "Recognized"} {
		a.table.SetCell(0, col, tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetSelectable(false))
	}

	now := time.Now()
	for i, t := range a.tracks {
		for col, text := range rowCells(t, now) {
			cell := tview.NewTableCell(tview.Escape(text)).SetMaxWidth(40)
			if col == 1 {
				cell.SetExpansion(1)
			}
			a.table.SetCell(i+1, col, cell)
		}
	}

	switch {
	case len(a.tracks) == 0:
		a.detail.SetText("[gray]No tracks[-]")
	case row < 1:
		row = 1
	case row > len(a.tracks):
		row = len(a.tracks)
	}
	if len(a.tracks) > 0 {
		a.table.Select(row, 0)
		a.showDetail(row)
	}
}

// showDetail renders the track at table row into the detail panel
func (a *App) showDetail(row int) {
	idx := row - 1
	if idx < 0 || idx >= len(a.tracks) {
		return
	}
	a.detail.SetText(detailText(a.tracks[idx]))
	a.detail.ScrollToBeginning()
}

// renderStatus updates the status bar
func (a *App) renderStatus() {
	var sb strings.Builder

	if a.query != "" {
		sb.WriteString(fmt.Sprintf("[yellow]%d results for %q[-]", a.total, a.query))
	} else {
		sb.WriteString(fmt.Sprintf("Page %d/%d  %d tracks", a.page+1, max(pageCount(a.total, a.config.PageSize), 1), a.total))
		if a.favoritesOnly {
			sb.WriteString("  [yellow]favorites[-]")
		}
	}
	if a.queue != nil {
		sb.WriteString(fmt.Sprintf("  Pending: %d", a.pendingCount))
	}
	if a.lastErr != nil {
		sb.WriteString(fmt.Sprintf("  [red]%s[-]", tview.Escape(a.lastErr.Error())))
	}
	sb.WriteString("  [gray]q:quit /:search esc:clear n/p:page f:fav F:favorites r:reload[-]")

	text := sb.String()
	if text != a.lastStatus {
		a.lastStatus = text
		a.status.SetText(text)
	}
}

// Stop stops the TUI application
func (a *App) Stop() {
	if a.cancelFunc != nil {
		a.cancelFunc()
	}
	a.app.Stop()
}

// pageCount returns the number of pages needed for total rows
func pageCount(total, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// rowCells returns the table columns for t
func rowCells(t track.Track, now time.Time) []string {
	star := " "
	if t.Metadata.IsFavorite {
		star = "★"
	}
	return []string{star, t.Title, t.Artist, t.Album, formatAge(now.Sub(t.Metadata.LastRecognition))}
}

// detailText renders the detail panel for t
func detailText(t track.Track) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("[white::b]%s[-:-:-]\n", tview.Escape(t.Title)))
	sb.WriteString(fmt.Sprintf("[yellow]%s[-]\n", tview.Escape(t.Artist)))
	if t.Album != "" {
		sb.WriteString(fmt.Sprintf("[gray]%s[-]\n", tview.Escape(t.Album)))
	}
	if t.ReleaseDate != "" {
		sb.WriteString(fmt.Sprintf("[gray]Released %s[-]\n", tview.Escape(t.ReleaseDate)))
	}
	if t.Metadata.IsFavorite {
		sb.WriteString("[yellow]★ Favorite[-]\n")
	}

	links := []struct {
		name string
		url  string
	}{
		{"Artwork", t.Links.Artwork},
		{"song.link", t.Links.SongLink},
		{"Apple Music", t.Links.AppleMusic},
		{"Spotify", t.Links.Spotify},
		{"Deezer", t.Links.Deezer},
		{"Napster", t.Links.Napster},
		{"YouTube", t.Links.YouTube},
		{"MusicBrainz", t.Links.MusicBrainz},
	}
	wroteHeader := false
	for _, l := range links {
		if l.url == "" {
			continue
		}
		if !wroteHeader {
			sb.WriteString("\n[white::b]Links[-:-:-]\n")
			wroteHeader = true
		}
		sb.WriteString(fmt.Sprintf("%s: [blue]%s[-]\n", l.name, tview.Escape(l.url)))
	}

	if t.Lyrics != "" {
		sb.WriteString("\n[white::b]Lyrics[-:-:-]\n")
		sb.WriteString(tview.Escape(t.Lyrics))
	}

	return sb.String()
}

// formatAge renders how long ago something happened
func formatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
