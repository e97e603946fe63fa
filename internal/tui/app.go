package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/moviedash/internal/browser"
)

type view int

const (
	viewBrowse view = iota
	viewSearch
	viewFavorites
	viewAccount
)

// App is the root Bubbletea model.
type App struct {
	deps       Deps
	version    string
	view       view
	browse     browseModel
	search     searchModel
	favorites  favoritesModel
	account    accountModel
	detail     detailModel
	detailOpen bool
	helpOpen   bool
	helpCursor int
	status     string
	update     string // newer release tag, if any
	width      int
	height     int
	frame      int // logo shimmer animation frame
}

// NewApp creates the TUI over the given catalog and stores.
func NewApp(d Deps, version string) App {
	return App{
		deps:      d,
		version:   version,
		browse:    newBrowseModel(d),
		search:    newSearchModel(d),
		favorites: newFavoritesModel(d),
		account:   newAccountModel(d),
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.browse.Init(),
		a.search.Init(),
		a.favorites.Init(),
		a.account.Init(),
		shimmerTickCmd(),
		checkVersion(a.version),
	)
}

// chrome is header(2) + tabs(1) + status(1) + help(1).
const chrome = 5

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		bodyMsg := tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - chrome}
		a.browse, _ = a.browse.Update(bodyMsg)
		a.search, _ = a.search.Update(bodyMsg)
		a.favorites, _ = a.favorites.Update(bodyMsg)
		a.account, _ = a.account.Update(bodyMsg)
		a.detail, _ = a.detail.Update(bodyMsg)
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case versionCheckMsg:
		if msg.hasUpdate {
			a.update = msg.latestVersion
		}
		return a, nil

	case statusMsg:
		a.status = string(msg)
		return a, nil

	case favoriteToggledMsg:
		a.status = msg.status()
		return a.broadcast(msg)

	case authResultMsg:
		var cmd tea.Cmd
		a.account, cmd = a.account.Update(msg)
		if msg.err != nil {
			return a, cmd
		}
		a.status = msg.action.done()
		return a, tea.Batch(cmd, func() tea.Msg { return sessionChangedMsg{} })

	case openDetailMsg:
		a.detail.close()
		a.detail = newDetailModel(a.deps)
		a.detail, _ = a.detail.Update(tea.WindowSizeMsg{Width: a.width, Height: a.height - chrome})
		a.detailOpen = true
		a.helpOpen = false
		var cmd tea.Cmd
		a.detail, cmd = a.detail.load(msg.id, msg.media)
		return a, cmd

	case tea.KeyMsg:
		return a.updateKeys(msg)
	}

	return a.broadcast(msg)
}

// broadcast hands an async result to every view. Each view ignores messages
// it does not own or that a newer request has superseded.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 5)
	a.browse, cmds[0] = a.browse.Update(msg)
	a.search, cmds[1] = a.search.Update(msg)
	a.favorites, cmds[2] = a.favorites.Update(msg)
	a.account, cmds[3] = a.account.Update(msg)
	if a.detailOpen {
		a.detail, cmds[4] = a.detail.Update(msg)
	}
	return a, tea.Batch(cmds...)
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	a.status = ""

	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// Help overlay captures all keys when open
	if a.helpOpen {
		switch msg.String() {
		case "h", "esc":
			a.helpOpen = false
		case "q":
			return a, tea.Quit
		case "j", "down":
			if a.helpCursor < len(helpItems)-1 {
				a.helpCursor++
			}
		case "k", "up":
			if a.helpCursor > 0 {
				a.helpCursor--
			}
		case "enter":
			if err := browser.Open(helpItems[a.helpCursor].url); err != nil {
				a.status = fmt.Sprintf("could not open browser: %v", err)
			}
		}
		return a, nil
	}

	// Detail overlay captures all keys when open
	if a.detailOpen {
		var cmd tea.Cmd
		a.detail, cmd = a.detail.Update(msg)
		if a.detail.closed {
			a.detail.close()
			a.detailOpen = false
		}
		return a, cmd
	}

	if !a.isEditing() {
		switch msg.String() {
		case "h", "?":
			a.helpOpen = true
			a.helpCursor = 0
			return a, nil
		case "q":
			return a, tea.Quit
		case "1":
			a.view = viewBrowse
			return a, nil
		case "2":
			a.view = viewSearch
			return a, nil
		case "3":
			a.view = viewFavorites
			return a, nil
		case "4":
			a.view = viewAccount
			return a, nil
		}
	}

	var cmd tea.Cmd
	switch a.view {
	case viewBrowse:
		a.browse, cmd = a.browse.Update(msg)
	case viewSearch:
		a.search, cmd = a.search.Update(msg)
	case viewFavorites:
		a.favorites, cmd = a.favorites.Update(msg)
	case viewAccount:
		a.account, cmd = a.account.Update(msg)
	}
	return a, cmd
}

func (a App) isEditing() bool {
	switch a.view {
	case viewSearch:
		return a.search.editing
	case viewAccount:
		return a.account.editing && a.deps.session() == nil
	}
	return false
}

// sessionLine is the centered line under the logo.
func (a App) sessionLine() string {
	var parts []string
	if s := a.deps.session(); s != nil {
		parts = append(parts, selectedStyle.Render(s.User.Username))
		if a.deps.Favorites != nil {
			parts = append(parts, favoriteStyle.Render(fmt.Sprintf("★ %d", a.deps.Favorites.Len())))
		}
	} else {
		parts = append(parts, dimStyle.Render("not logged in"))
	}
	if a.update != "" {
		parts = append(parts, accentStyle.Render(a.update+" available"))
	}
	return strings.Join(parts, metaStyle.Render(" · "))
}

func center(s string, width int) string {
	pad := (width - lipgloss.Width(s)) / 2
	if pad < 0 {
		pad = 0
	}
	return strings.Repeat(" ", pad) + s
}

func (a App) View() string {
	header := center(renderShimmerLogo(a.frame), a.width) + "\n" + center(a.sessionLine(), a.width)

	// Tab bar: equal-width columns spread across the terminal
	tabs := []struct {
		key  string
		name string
		v    view
	}{
		{"1", "Browse", viewBrowse},
		{"2", "Search", viewSearch},
		{"3", "Favorites", viewFavorites},
		{"4", "Account", viewAccount},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	var body, help string
	switch a.view {
	case viewBrowse:
		body = a.browse.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "details") + "  " + helpEntry("f", "favorite") + "  " + helpEntry("t", "chart") + "  " + helpEntry("m", "media") + "  " + helpEntry("[/]", "page") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewSearch:
		body = a.search.View()
		if a.search.editing {
			help = " " + helpEntry("enter", "search") + "  " + helpEntry("esc", "done")
		} else {
			help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("/", "search") + "  " + helpEntry("g", "genre") + "  " + helpEntry("m", "media") + "  " + helpEntry("enter", "details") + "  " + helpEntry("f", "favorite") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
		}
	case viewFavorites:
		body = a.favorites.View()
		help = " " + helpEntry("1-4", "tabs") + "  " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "details") + "  " + helpEntry("f", "remove") + "  " + helpEntry("r", "refresh") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case viewAccount:
		body = a.account.View()
		help = " " + a.account.helpKeys()
		if !a.isEditing() {
			help = " " + helpEntry("1-4", "tabs") + "  " + a.account.helpKeys()
		}
	}

	if a.detailOpen {
		body = a.detail.View()
		help = " " + a.detail.helpKeys()
	}
	if a.helpOpen {
		body = helpView(a.helpCursor)
		help = " " + helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("esc", "close")
	}

	status := ""
	if a.status != "" {
		status = " " + statusStyle.Render(a.status)
	}

	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s", header, tabBar.String(), body, status, help)
}
