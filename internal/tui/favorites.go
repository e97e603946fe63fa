package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/moviedash/internal/store"
	"github.com/naveenspark/moviedash/pkg/domain"
)

type favoritesModel struct {
	deps    Deps
	titles  []domain.Title
	cursor  int
	seq     int
	loading bool
	err     error
	width   int
	height  int
}

type favoritesLoadedMsg struct {
	seq    int
	titles []domain.Title
	err    error
}

func newFavoritesModel(d Deps) favoritesModel {
	return favoritesModel{deps: d}
}

func (m favoritesModel) Init() tea.Cmd {
	if m.deps.session() == nil {
		return nil
	}
	_, cmd := m.load(true)
	return cmd
}

// load refetches the list when refresh is set, then resolves every favorite
// to catalog details.
func (m favoritesModel) load(refresh bool) (favoritesModel, tea.Cmd) {
	m.seq++
	m.loading = true
	m.err = nil
	favs, c, seq := m.deps.Favorites, m.deps.Catalog, m.seq
	return m, func() tea.Msg {
		ctx := context.Background()
		if refresh {
			favs.Refresh(ctx)
		}
		details, err := favs.Hydrate(ctx, c)
		if err != nil {
			return favoritesLoadedMsg{seq: seq, err: err}
		}
		titles := make([]domain.Title, 0, len(details))
		for _, d := range details {
			t := d.Title
			t.MediaType = domain.MediaMovie
			titles = append(titles, t)
		}
		return favoritesLoadedMsg{seq: seq, titles: titles}
	}
}

func (m favoritesModel) Update(msg tea.Msg) (favoritesModel, tea.Cmd) {
	switch msg := msg.(type) {
	case favoritesLoadedMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.titles = msg.titles
		if m.cursor >= len(m.titles) {
			m.cursor = max(len(m.titles)-1, 0)
		}
		return m, nil

	case favoriteToggledMsg:
		if msg.err != nil || m.deps.session() == nil {
			return m, nil
		}
		return m.load(false)

	case sessionChangedMsg:
		m.titles = nil
		m.cursor = 0
		if m.deps.session() == nil {
			m.seq++
			m.loading = false
			m.err = nil
			return m, nil
		}
		return m.load(false)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m favoritesModel) updateKeys(msg tea.KeyMsg) (favoritesModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.titles)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.titles) {
			return m, openDetail(m.titles[m.cursor])
		}
	case "f", "d":
		if m.cursor < len(m.titles) {
			return m, toggleFavorite(m.deps, m.titles[m.cursor])
		}
	case "r":
		if m.deps.session() != nil {
			return m.load(true)
		}
	}
	return m, nil
}

func (m favoritesModel) View() string {
	var b strings.Builder

	header := "FAVORITES"
	if m.deps.session() != nil {
		header += fmt.Sprintf(" (%d)", m.deps.Favorites.Len())
	}
	b.WriteString(" " + sectionHeaderStyle.Render(header))
	if m.deps.Favorites != nil && m.deps.Favorites.Busy() {
		b.WriteString("  " + dimStyle.Render("saving..."))
	}
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.deps.session() == nil {
		b.WriteString(" " + dimStyle.Render("log in to keep a list of favorite movies") + "  " + helpEntry("4", "account"))
		return b.String()
	}
	if err := m.deps.Favorites.Err(); err != nil {
		b.WriteString(" " + errorStyle.Render(store.Message(err, "favorites unavailable")) + "\n")
	}
	if m.loading && len(m.titles) == 0 {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.titles) == 0 {
		b.WriteString(" " + dimStyle.Render("no favorites yet. press f on any movie to add it"))
		return b.String()
	}

	b.WriteString(renderTitleList(m.deps, m.titles, m.cursor, m.width, m.height-4, false, 0))
	return truncateToHeight(b.String(), m.height)
}
