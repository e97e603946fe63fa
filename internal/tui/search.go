package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/moviedash/pkg/catalog"
	"github.com/naveenspark/moviedash/pkg/domain"
)

type searchModel struct {
	deps       Deps
	query      string
	editing    bool // true when typing the query
	media      domain.MediaType
	genres     []domain.Genre
	genreIdx   int // -1 = text search, otherwise index into genres (discover)
	page       int
	results    []domain.Title
	totalPages int
	total      int
	cursor     int
	seq        int // tags requests so stale results are dropped
	searched   bool
	loading    bool
	err        error
	width      int
	height     int
}

type searchResultMsg struct {
	seq int
	res *domain.Page
	err error
}

type genresLoadedMsg struct {
	genres []domain.Genre
	err    error
}

func newSearchModel(d Deps) searchModel {
	return searchModel{
		deps:     d,
		media:    domain.MediaAll,
		genreIdx: -1,
		page:     1,
	}
}

func (m searchModel) Init() tea.Cmd {
	if len(m.genres) > 0 {
		return nil
	}
	c := m.deps.Catalog
	return func() tea.Msg {
		genres, err := c.Genres(context.Background(), domain.MediaMovie)
		return genresLoadedMsg{genres: genres, err: err}
	}
}

func (m searchModel) discovering() bool {
	return m.genreIdx >= 0 && m.genreIdx < len(m.genres)
}

func (m searchModel) run() (searchModel, tea.Cmd) {
	m.seq++
	m.loading = true
	m.searched = true
	m.err = nil

	c := m.deps.Catalog
	seq, page := m.seq, m.page
	if m.discovering() {
		genre := m.genres[m.genreIdx].ID
		return m, func() tea.Msg {
			res, err := c.Discover(context.Background(), catalog.DiscoverFilters{Genres: []int{genre}, Page: page})
			return searchResultMsg{seq: seq, res: res, err: err}
		}
	}
	query, media := m.query, m.media
	return m, func() tea.Msg {
		res, err := c.Search(context.Background(), query, page, catalog.Filters{MediaType: media})
		return searchResultMsg{seq: seq, res: res, err: err}
	}
}

func (m searchModel) Update(msg tea.Msg) (searchModel, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.results = nil
		m.totalPages, m.total = 0, 0
		if msg.err == nil && msg.res != nil {
			m.results = msg.res.Results
			m.totalPages = msg.res.TotalPages
			m.total = msg.res.TotalResults
		}
		if m.cursor >= len(m.results) {
			m.cursor = 0
		}
		return m, nil

	case genresLoadedMsg:
		if msg.err == nil {
			m.genres = msg.genres
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateQuery(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m searchModel) updateQuery(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.editing = false
		if strings.TrimSpace(m.query) == "" {
			return m, nil
		}
		m.genreIdx = -1
		m.page = 1
		m.cursor = 0
		return m.run()
	case "esc":
		m.editing = false
	default:
		m.query = editRune(m.query, msg.String())
	}
	return m, nil
}

func (m searchModel) updateList(msg tea.KeyMsg) (searchModel, tea.Cmd) {
	switch msg.String() {
	case "/":
		m.editing = true
		m.query = ""
	case "j", "down":
		if m.cursor < len(m.results)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.results) {
			return m, openDetail(m.results[m.cursor])
		}
	case "f":
		if m.cursor < len(m.results) {
			return m, toggleFavorite(m.deps, m.results[m.cursor])
		}
	case "m":
		m.media = nextMedia(m.media)
		if !m.discovering() && strings.TrimSpace(m.query) != "" {
			m.page = 1
			m.cursor = 0
			return m.run()
		}
	case "g", "G":
		if len(m.genres) == 0 {
			return m, nil
		}
		if msg.String() == "g" {
			m.genreIdx++
			if m.genreIdx >= len(m.genres) {
				m.genreIdx = -1
			}
		} else {
			m.genreIdx--
			if m.genreIdx < -1 {
				m.genreIdx = len(m.genres) - 1
			}
		}
		m.page = 1
		m.cursor = 0
		if m.discovering() || strings.TrimSpace(m.query) != "" {
			return m.run()
		}
		m.results = nil
		m.searched = false
	case "]":
		if m.searched && m.page < m.totalPages {
			m.page++
			m.cursor = 0
			return m.run()
		}
	case "[":
		if m.searched && m.page > 1 {
			m.page--
			m.cursor = 0
			return m.run()
		}
	}
	return m, nil
}

func (m searchModel) View() string {
	var b strings.Builder

	switch {
	case m.editing:
		b.WriteString(" " + searchStyle.Render("/ "+m.query+"█"))
	case m.discovering():
		b.WriteString(" " + dimStyle.Render("discover"))
	case m.query != "":
		b.WriteString(" " + searchStyle.Render("/ "+m.query))
	default:
		b.WriteString(" " + dimStyle.Render("/ search movies and shows..."))
	}

	if m.discovering() {
		g := m.genres[m.genreIdx]
		b.WriteString("   " + GenreStyle(g.ID).Render(g.Name) + " " + helpKeyStyle.Render("g"))
	} else {
		b.WriteString("   " + kindStyle.Render("["+mediaLabel(m.media)+"]") + " " + helpKeyStyle.Render("m"))
		if len(m.genres) > 0 {
			b.WriteString("  " + dimStyle.Render("genre") + " " + helpKeyStyle.Render("g"))
		}
	}
	if m.searched && !m.loading {
		b.WriteString("   " + metaStyle.Render(fmt.Sprintf("%s · %d results", pageLabel(m.page, m.totalPages), m.total)))
	}
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("searching..."))
	case m.err != nil:
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
	case !m.searched:
		b.WriteString(" " + dimStyle.Render("press / to search, g to browse by genre"))
	case len(m.results) == 0:
		b.WriteString(" " + dimStyle.Render("no results"))
	default:
		b.WriteString(renderTitleList(m.deps, m.results, m.cursor, m.width, m.height-3, false, 0))
	}

	return truncateToHeight(b.String(), m.height)
}
