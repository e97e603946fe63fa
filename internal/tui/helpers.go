package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/naveenspark/moviedash/pkg/domain"
)

// formatTime renders a short relative timestamp for reviews.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if maxLen < 1 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// stars renders a 1-5 rating as filled and empty stars.
func stars(rating int) string {
	if rating < 0 {
		rating = 0
	}
	if rating > domain.MaxRating {
		rating = domain.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", domain.MaxRating-rating)
}

// formatVote renders a 0-10 vote average, or "--" when nobody voted.
func formatVote(avg float64, count int) string {
	if count == 0 && avg == 0 {
		return " --"
	}
	return fmt.Sprintf("%3.1f", avg)
}

func formatNum(n int) string {
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}

// formatMoney renders a dollar amount as $1.2M / $350K.
func formatMoney(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("$%.1fB", float64(n)/1e9)
	case n >= 1_000_000:
		return fmt.Sprintf("$%.1fM", float64(n)/1e6)
	case n >= 1_000:
		return fmt.Sprintf("$%.0fK", float64(n)/1e3)
	case n > 0:
		return fmt.Sprintf("$%d", n)
	}
	return ""
}

// kindBadge marks TV titles in mixed lists.
func kindBadge(t domain.Title) string {
	if t.Kind() == domain.MediaTV {
		return kindStyle.Render("tv")
	}
	return "  "
}
