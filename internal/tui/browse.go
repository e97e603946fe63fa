package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/moviedash/pkg/domain"
)

type browseTab int

const (
	tabTrending browseTab = iota
	tabPopular
	tabTopRated
	tabUpcoming
	numBrowseTabs
)

var browseTabNames = [numBrowseTabs]string{"trending", "popular", "top rated", "upcoming"}

type browseModel struct {
	deps       Deps
	tab        browseTab
	media      domain.MediaType
	page       int
	titles     []domain.Title
	totalPages int
	cursor     int
	loading    bool
	err        error
	width      int
	height     int
}

type browseLoadedMsg struct {
	tab   browseTab
	media domain.MediaType
	page  int
	res   *domain.Page
	err   error
}

func newBrowseModel(d Deps) browseModel {
	return browseModel{
		deps:    d,
		media:   domain.MediaAll,
		page:    1,
		loading: true,
	}
}

func (m browseModel) Init() tea.Cmd {
	return m.load()
}

// listMedia is the media type the current tab can actually serve.
func (m browseModel) listMedia() domain.MediaType {
	switch m.tab {
	case tabTrending:
		return m.media
	case tabUpcoming:
		return domain.MediaMovie
	}
	if m.media == domain.MediaTV {
		return domain.MediaTV
	}
	return domain.MediaMovie
}

func (m browseModel) load() tea.Cmd {
	c := m.deps.Catalog
	tab, media, page := m.tab, m.listMedia(), m.page
	return func() tea.Msg {
		ctx := context.Background()
		var res *domain.Page
		var err error
		switch tab {
		case tabTrending:
			res, err = c.Trending(ctx, media, "week", page)
		case tabPopular:
			res, err = c.Popular(ctx, media, page)
		case tabTopRated:
			res, err = c.TopRated(ctx, media, page)
		case tabUpcoming:
			res, err = c.Upcoming(ctx, page)
		}
		return browseLoadedMsg{tab: tab, media: media, page: page, res: res, err: err}
	}
}

func (m browseModel) Update(msg tea.Msg) (browseModel, tea.Cmd) {
	switch msg := msg.(type) {
	case browseLoadedMsg:
		if msg.tab != m.tab || msg.media != m.listMedia() || msg.page != m.page {
			return m, nil // superseded
		}
		m.loading = false
		m.err = msg.err
		m.titles = nil
		m.totalPages = 0
		if msg.err == nil && msg.res != nil {
			m.titles = msg.res.Results
			m.totalPages = msg.res.TotalPages
		}
		if m.cursor >= len(m.titles) {
			m.cursor = 0
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m browseModel) updateKeys(msg tea.KeyMsg) (browseModel, tea.Cmd) {
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
	case "f":
		if m.cursor < len(m.titles) {
			return m, toggleFavorite(m.deps, m.titles[m.cursor])
		}
	case "t":
		m.tab = (m.tab + 1) % numBrowseTabs
		return m.reload()
	case "T":
		m.tab = (m.tab - 1 + numBrowseTabs) % numBrowseTabs
		return m.reload()
	case "m":
		m.media = nextMedia(m.media)
		return m.reload()
	case "]":
		if m.totalPages == 0 || m.page < m.totalPages {
			m.page++
			m.loading = true
			m.cursor = 0
			return m, m.load()
		}
	case "[":
		if m.page > 1 {
			m.page--
			m.loading = true
			m.cursor = 0
			return m, m.load()
		}
	case "r":
		m.loading = true
		return m, m.load()
	}
	return m, nil
}

func (m browseModel) reload() (browseModel, tea.Cmd) {
	m.page = 1
	m.cursor = 0
	m.loading = true
	return m, m.load()
}

func nextMedia(t domain.MediaType) domain.MediaType {
	for i, mt := range domain.MediaTypes {
		if mt == t {
			return domain.MediaTypes[(i+1)%len(domain.MediaTypes)]
		}
	}
	return domain.MediaAll
}

func mediaLabel(t domain.MediaType) string {
	switch t {
	case domain.MediaMovie:
		return "movies"
	case domain.MediaTV:
		return "tv"
	}
	return "all"
}

func (m browseModel) selected() (domain.Title, bool) {
	if m.cursor < len(m.titles) {
		return m.titles[m.cursor], true
	}
	return domain.Title{}, false
}

func (m browseModel) View() string {
	var b strings.Builder

	// Tab strip + media + page
	b.WriteString(" ")
	for i := browseTab(0); i < numBrowseTabs; i++ {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == m.tab {
			b.WriteString(searchStyle.Render(browseTabNames[i]))
		} else {
			b.WriteString(dimStyle.Render(browseTabNames[i]))
		}
	}
	b.WriteString("  " + helpKeyStyle.Render("t"))
	b.WriteString("   " + kindStyle.Render("["+mediaLabel(m.listMedia())+"]") + " " + helpKeyStyle.Render("m"))
	b.WriteString("   " + metaStyle.Render(pageLabel(m.page, m.totalPages)))
	b.WriteString("\n")

	sepW := m.width - 2
	if sepW < 4 {
		sepW = 4
	}
	b.WriteString(" " + metaStyle.Render(strings.Repeat("─", sepW)) + "\n")

	if m.loading {
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	}
	if m.err != nil {
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	}
	if len(m.titles) == 0 {
		b.WriteString(" " + dimStyle.Render("nothing here"))
		return b.String()
	}

	rankOffset := 0
	if m.tab != tabUpcoming {
		rankOffset = (m.page - 1) * 20
	}
	b.WriteString(renderTitleList(m.deps, m.titles, m.cursor, m.width, m.height-6, m.tab != tabUpcoming, rankOffset))

	if t, ok := m.selected(); ok && t.Overview != "" {
		w := m.width - 4
		if w < 30 {
			w = 30
		}
		wrapped := lipgloss.NewStyle().Width(w).Render(t.Overview)
		lines := strings.Split(wrapped, "\n")
		if len(lines) > 3 {
			lines = append(lines[:3], "…")
		}
		b.WriteString("\n")
		for _, line := range lines {
			b.WriteString(" " + normalStyle.Render(line) + "\n")
		}
	}

	return truncateToHeight(b.String(), m.height)
}

func pageLabel(page, total int) string {
	if total > 0 {
		return fmt.Sprintf("page %d/%d", page, total)
	}
	return fmt.Sprintf("page %d", page)
}

// renderTitleList renders one row per title: rank, favorite marker, title,
// year, kind and vote average.
func renderTitleList(d Deps, titles []domain.Title, cursor, width, maxRows int, ranked bool, rankOffset int) string {
	var b strings.Builder
	if maxRows < 3 {
		maxRows = 3
	}
	start, end := visibleWindow(cursor, len(titles), maxRows)
	for i := start; i < end; i++ {
		t := titles[i]

		prefix := "  "
		titleStyle := dimStyle
		if i == cursor {
			prefix = accentStyle.Render("▸") + " "
			titleStyle = normalStyle.Bold(true)
		}

		rank := ""
		if ranked {
			n := rankOffset + i + 1
			rank = rankStyle(n).Render(fmt.Sprintf("%3d", n)) + " "
		}

		fav := "  "
		if t.Kind() == domain.MediaMovie && d.isFavorite(t.ID) {
			fav = favoriteStyle.Render("★") + " "
		}

		year := t.Year()
		if year == "" {
			year = "    "
		}
		right := metaStyle.Render(year) + " " + kindBadge(t) + " " + voteStyle(t.VoteAverage).Render(formatVote(t.VoteAverage, t.VoteCount))
		rightWidth := lipgloss.Width(right)

		titleWidth := width - lipgloss.Width(prefix) - lipgloss.Width(rank) - 2 - rightWidth - 2
		if titleWidth < 10 {
			titleWidth = 10
		}
		name := fmt.Sprintf("%-*s", titleWidth, truncStr(t.DisplayTitle(), titleWidth))

		line := prefix + rank + fav + titleStyle.Render(name) + "  " + right
		if i == cursor {
			padded := line + strings.Repeat(" ", max(width-lipgloss.Width(line), 0))
			b.WriteString(selectedRowBg.Render(padded) + "\n")
		} else {
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}
