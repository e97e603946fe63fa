package main

import (
	"fmt"
	"io"
	"math/rand/v2"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/moviedash/internal/config"
)

var projectionistLines = [...]string{
	"The house lights are still up. Someone forgot the film.",
	"Reel one is threaded. The projector has nothing to project.",
	"Popcorn is popped. The screen is blank. Priorities, please.",
	"Every great movie night starts with an API key. This one has none.",
	"The usher checked your ticket. It was blank.",
	"Trailers are queued. The catalog is locked.",
	"Somewhere a critic is writing a review you could be reading.",
	"The marquee is dark tonight. You hold the switch.",
	"Previously on moviedash: nothing, because there was no key.",
	"Roll credits? We haven't even rolled the opening.",
}

var (
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#fbbf24")).Bold(true)
	quoteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	attribStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d4a844"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cmdStyle    = lipgloss.NewStyle().Bold(true)
)

func printHelp(out io.Writer) {
	title := titleStyle.Render("M O V I E D A S H")
	quote := quoteStyle.Render(`"Find something worth watching."`)
	attrib := attribStyle.Render("- The Projectionist")

	commands := []struct{ cmd, desc string }{
		{"moviedash", "Browse, search and review (interactive TUI)"},
		{"moviedash login", "Sign in with email and password"},
		{"moviedash register", "Create an account"},
		{"moviedash logout", "Clear your session"},
		{"moviedash whoami", "Show the signed-in user"},
		{"moviedash version", "Show version"},
		{"moviedash help", "You are here"},
	}

	fmt.Fprintf(out, "\n  %s\n\n  %s\n  %s\n\n  Commands:\n", title, quote, attrib)
	for _, c := range commands {
		fmt.Fprintf(out, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-20s", c.cmd)), dimStyle.Render(c.desc))
	}

	fmt.Fprintf(out, "\n  Environment:\n")
	for _, line := range strings.Split(strings.TrimSpace(config.Usage()), "\n") {
		fmt.Fprintf(out, "    %s\n", dimStyle.Render(strings.TrimSpace(line)))
	}
	fmt.Fprintf(out, "\n  %s\n\n", dimStyle.Render("This product uses the TMDB API but is not endorsed or certified by TMDB."))
}

// printGreeting is shown instead of the TUI when no catalog credentials are set.
func printGreeting(out io.Writer) {
	msg := projectionistLines[rand.IntN(len(projectionistLines))]

	hint := dimStyle.Render("Set TMDB_READ_ACCESS_TOKEN or TMDB_API_KEY (https://www.themoviedb.org/settings/api)")

	fmt.Fprintf(out, "\n%s\n\n%s\n%s\n\n%s\n\n",
		titleStyle.Render("MOVIEDASH"), quoteStyle.Render(msg), attribStyle.Render("- The Projectionist"), hint)
}
