package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/moviedash/internal/store"
	"github.com/naveenspark/moviedash/pkg/catalog"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// Catalog is the catalog API the views read from.
type Catalog interface {
	Search(ctx context.Context, query string, page int, f catalog.Filters) (*domain.Page, error)
	Discover(ctx context.Context, f catalog.DiscoverFilters) (*domain.Page, error)
	Trending(ctx context.Context, media domain.MediaType, window string, page int) (*domain.Page, error)
	Popular(ctx context.Context, media domain.MediaType, page int) (*domain.Page, error)
	TopRated(ctx context.Context, media domain.MediaType, page int) (*domain.Page, error)
	Upcoming(ctx context.Context, page int) (*domain.Page, error)
	Details(ctx context.Context, id int, media domain.MediaType) (*domain.Details, error)
	Genres(ctx context.Context, media domain.MediaType) ([]domain.Genre, error)
	Recommendations(ctx context.Context, id, page int) (*domain.Page, error)
}

// Deps wires the views to the catalog and the client-side stores.
type Deps struct {
	Catalog      Catalog
	Auth         *store.AuthStore
	Favorites    *store.FavoritesStore
	Reviews      *store.ReviewsStore
	ImageBaseURL string // poster CDN root; "" uses the catalog default
}

func (d Deps) session() *domain.Session {
	if d.Auth == nil {
		return nil
	}
	return d.Auth.Session()
}

func (d Deps) isFavorite(movieID int) bool {
	return d.Favorites != nil && d.Favorites.IsFavorite(movieID)
}

// openDetailMsg asks the App to open the detail overlay for a title.
type openDetailMsg struct {
	id    int
	media domain.MediaType
}

func openDetail(t domain.Title) tea.Cmd {
	id, media := t.ID, t.Kind()
	return func() tea.Msg {
		return openDetailMsg{id: id, media: media}
	}
}

// favoriteToggledMsg reports a finished favorite add or remove.
type favoriteToggledMsg struct {
	movieID int
	title   string
	added   bool
	err     error
}

// statusMsg sets the App's status line.
type statusMsg string

// toggleFavorite adds or removes a movie. Only movies can be favorites; the
// backend keys favorites by movie ID.
func toggleFavorite(d Deps, t domain.Title) tea.Cmd {
	if t.Kind() != domain.MediaMovie {
		return func() tea.Msg { return statusMsg("favorites hold movies only") }
	}
	favs := d.Favorites
	id, name := t.ID, t.DisplayTitle()
	// Busy from here on, before the command runs.
	run, err := favs.BeginToggle(id)
	switch {
	case errors.Is(err, store.ErrBusy):
		return func() tea.Msg { return statusMsg("saving favorites...") }
	case err != nil:
		return func() tea.Msg { return favoriteToggledMsg{movieID: id, title: name, err: err} }
	}
	return func() tea.Msg {
		err := run(context.Background())
		return favoriteToggledMsg{movieID: id, title: name, added: favs.IsFavorite(id), err: err}
	}
}

func (m favoriteToggledMsg) status() string {
	switch {
	case errors.Is(m.err, store.ErrAuthRequired):
		return "log in to save favorites (4 account)"
	case m.err != nil:
		return "favorites: " + store.Message(m.err, "could not update favorites")
	case m.added:
		return "★ added " + m.title
	default:
		return "removed " + m.title
	}
}

// sessionChangedMsg is broadcast after a login, registration or logout
// so views can drop per-user state.
type sessionChangedMsg struct{}
