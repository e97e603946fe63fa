package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the MOVIEDASH logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "MOVIEDASH" as a wave of marquee light moving
// left to right, from deep amber (#3a2a0a) to bright gold (#fbbf24).
func renderShimmerLogo(frame int) string {
	const text = "MOVIEDASH"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		if b > 1.0 {
			b = 1.0
		} else if b < 0.05 {
			b = 0.05
		}

		r := clampByte(58 + b*(251-58))
		g := clampByte(42 + b*(191-42))
		bl := clampByte(10 + b*(36-10))

		s := lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", r, g, bl)))
		out.WriteString(s.Render(string(text[i])))
		if i < n-1 {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	searchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fbbf24")).
			Bold(true)

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f59e0b"))

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	favoriteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#facc15")).
			Bold(true)

	taglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Italic(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878"))

	reviewTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	reviewTimeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#f59e0b")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	// Genre colors by TMDB genre ID.
	genreColors = map[int]lipgloss.Color{
		28:    lipgloss.Color("#e06060"), // action
		12:    lipgloss.Color("#f0944a"), // adventure
		16:    lipgloss.Color("#c084e0"), // animation
		35:    lipgloss.Color("#facc15"), // comedy
		80:    lipgloss.Color("#b45555"), // crime
		99:    lipgloss.Color("#8890a0"), // documentary
		18:    lipgloss.Color("#60a0e0"), // drama
		10751: lipgloss.Color("#86efac"), // family
		14:    lipgloss.Color("#b080d0"), // fantasy
		27:    lipgloss.Color("#d05050"), // horror
		9648:  lipgloss.Color("#3ecce4"), // mystery
		10749: lipgloss.Color("#f472b6"), // romance
		878:   lipgloss.Color("#22d3ee"), // science fiction
		53:    lipgloss.Color("#d4a844"), // thriller
	}
)

// GenreStyle returns a bold style colored for the given genre ID.
func GenreStyle(id int) lipgloss.Style {
	if c, ok := genreColors[id]; ok {
		return lipgloss.NewStyle().Foreground(c).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
}

// rankStyle colors the top three positions of a chart.
func rankStyle(rank int) lipgloss.Style {
	switch rank {
	case 1:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#facc15")) // gold
	case 2:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#d1d5db")) // silver
	case 3:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#d97706")) // bronze
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#8891a5"))
	}
}

// voteStyle colors a 0-10 vote average.
func voteStyle(vote float64) lipgloss.Style {
	switch {
	case vote >= 7.5:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#4ade80")).Bold(true)
	case vote >= 6:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24"))
	case vote > 0:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#b45555"))
	default:
		return metaStyle
	}
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpItem is a selectable link in the help overlay.
type helpItem struct {
	label string
	desc  string
	url   string
}

var helpItems = []helpItem{
	{"TMDB", "themoviedb.org", "https://www.themoviedb.org"},
	{"Get an API key", "themoviedb.org/settings/api", "https://www.themoviedb.org/settings/api"},
	{"API terms of use", "themoviedb.org/api-terms-of-use", "https://www.themoviedb.org/api-terms-of-use"},
}

// helpView renders the help overlay with a cursor over the links.
func helpView(cursor int) string {
	title := searchStyle.Render("M O V I E D A S H")
	attrib := dimStyle.Italic(true).Render("This product uses the TMDB API but is not endorsed or certified by TMDB.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	cursorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#fbbf24"))
	linkDescStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	commands := []struct{ cmd, desc string }{
		{"moviedash", "Browse, search and review (interactive TUI)"},
		{"moviedash login", "Sign in with email and password"},
		{"moviedash register", "Create an account"},
		{"moviedash logout", "Clear your session"},
		{"moviedash whoami", "Show the signed-in user"},
		{"moviedash version", "Show version"},
	}
	keys := []struct{ key, desc string }{
		{"1-4", "browse, search, favorites, account"},
		{"t / m", "next chart / next media type"},
		{"[ / ]", "previous / next page"},
		{"/ / g", "search by text / discover by genre"},
		{"enter", "open details"},
		{"f", "add or remove favorite"},
		{"r / x", "write / delete your review (details)"},
		{"o / c", "open / copy trailer link (details)"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n  %s\n\n", title, attrib)

	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), descStyle.Render(c.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Keys"))
	for _, k := range keys {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", k.key)), descStyle.Render(k.desc))
	}

	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Links (enter to open)"))
	for i, item := range helpItems {
		label := cmdStyle.Render(fmt.Sprintf("%-20s", item.label))
		prefix := "    "
		if i == cursor {
			label = cursorStyle.Render(fmt.Sprintf("%-20s", item.label))
			prefix = "  > "
		}
		fmt.Fprintf(&b, "%s%s  %s\n", prefix, label, linkDescStyle.Render(item.desc))
	}
	return b.String()
}
