package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/naveenspark/moviedash/internal/browser"
	"github.com/naveenspark/moviedash/internal/store"
	"github.com/naveenspark/moviedash/pkg/catalog"
	"github.com/naveenspark/moviedash/pkg/domain"
)

type reviewField int

const (
	fieldRating reviewField = iota
	fieldComment
	numReviewFields
)

// detailModel is the overlay for one title: metadata, cast, trailers,
// favorite toggle and reviews.
type detailModel struct {
	deps   Deps
	ctx    context.Context
	cancel context.CancelFunc
	id     int
	media  domain.MediaType

	details  *domain.Details
	notFound bool
	err      error
	loading  bool

	reviewsLoading bool
	reviewsErr     error
	recs           []domain.Title

	writing    bool
	form       store.ReviewForm
	rating     int
	comment    string
	focus      reviewField
	submitting bool

	statusMsg string
	closed    bool
	width     int
	height    int
}

type detailLoadedMsg struct {
	id      int
	details *domain.Details
	err     error
}

type detailReviewsMsg struct {
	id  int
	err error
}

type recommendationsMsg struct {
	id     int
	titles []domain.Title
}

type reviewSavedMsg struct {
	id  int
	err error
}

type reviewDeletedMsg struct {
	id  int
	err error
}

type copyResultMsg struct{ err error }
type browserResultMsg struct{ err error }

func newDetailModel(d Deps) detailModel {
	ctx, cancel := context.WithCancel(context.Background())
	return detailModel{deps: d, ctx: ctx, cancel: cancel}
}

// close cancels every request the overlay still has in flight.
func (m detailModel) close() {
	if m.cancel != nil {
		m.cancel()
	}
}

func (m detailModel) isMovie() bool {
	return m.media == domain.MediaMovie
}

func (m detailModel) load(id int, media domain.MediaType) (detailModel, tea.Cmd) {
	m.id = id
	m.media = media
	if m.media != domain.MediaTV {
		m.media = domain.MediaMovie
	}
	m.loading = true

	ctx, c, kind := m.ctx, m.deps.Catalog, m.media
	cmds := []tea.Cmd{func() tea.Msg {
		d, err := c.Details(ctx, id, kind)
		return detailLoadedMsg{id: id, details: d, err: err}
	}}
	if m.isMovie() {
		m.reviewsLoading = true
		cmds = append(cmds, m.loadReviews(), func() tea.Msg {
			p, err := c.Recommendations(ctx, id, 1)
			if err != nil || p == nil {
				return recommendationsMsg{id: id}
			}
			return recommendationsMsg{id: id, titles: p.Results}
		})
	}
	return m, tea.Batch(cmds...)
}

func (m detailModel) loadReviews() tea.Cmd {
	ctx, rs, id := m.ctx, m.deps.Reviews, m.id
	return func() tea.Msg {
		return detailReviewsMsg{id: id, err: rs.Load(ctx, id)}
	}
}

func (m detailModel) Update(msg tea.Msg) (detailModel, tea.Cmd) {
	switch msg := msg.(type) {
	case detailLoadedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.loading = false
		switch {
		case errors.Is(msg.err, catalog.ErrNotFound):
			m.notFound = true
		case msg.err != nil:
			m.err = msg.err
		default:
			m.details = msg.details
		}
		return m, nil

	case detailReviewsMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.reviewsLoading = false
		m.reviewsErr = msg.err
		return m, nil

	case recommendationsMsg:
		if msg.id == m.id {
			m.recs = msg.titles
		}
		return m, nil

	case reviewSavedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.submitting = false
		if msg.err != nil {
			m.statusMsg = reviewErrorStatus(msg.err, "could not save review")
			return m, nil
		}
		m.writing = false
		m.statusMsg = "review saved"
		return m, nil

	case reviewDeletedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.statusMsg = reviewErrorStatus(msg.err, "could not delete review")
			return m, nil
		}
		m.statusMsg = "review deleted"
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("copy failed: %v", msg.err)
		} else {
			m.statusMsg = "link copied"
		}
		return m, nil

	case browserResultMsg:
		if msg.err != nil {
			m.statusMsg = fmt.Sprintf("could not open browser: %v", msg.err)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		m.statusMsg = ""
		if m.writing {
			return m.updateForm(msg)
		}
		return m.updateKeys(msg)
	}
	return m, nil
}

func reviewErrorStatus(err error, fallback string) string {
	if errors.Is(err, store.ErrAuthRequired) {
		return "log in to review (4 account)"
	}
	return store.Message(err, fallback)
}

func (m detailModel) updateKeys(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	switch msg.String() {
	case "esc", "backspace":
		m.closed = true
	case "f":
		if m.details == nil {
			return m, nil
		}
		t := m.details.Title
		t.MediaType = m.media
		return m, toggleFavorite(m.deps, t)
	case "o":
		if url := m.linkURL(); url != "" {
			return m, func() tea.Msg {
				return browserResultMsg{err: browser.Open(url)}
			}
		}
	case "p":
		if url := m.posterURL(); url != "" {
			return m, func() tea.Msg {
				return browserResultMsg{err: browser.Open(url)}
			}
		}
		m.statusMsg = "no poster for this title"
	case "c":
		if url := m.linkURL(); url != "" {
			return m, func() tea.Msg {
				return copyResultMsg{err: clipboard.WriteAll(url)}
			}
		}
	case "r":
		if !m.isMovie() {
			m.statusMsg = "reviews are for movies only"
			return m, nil
		}
		form := m.deps.Reviews.Form()
		if form.Mode == store.ModeLocked {
			m.statusMsg = "log in to review (4 account)"
			return m, nil
		}
		m.form = form
		m.rating = form.Rating
		if m.rating == 0 {
			m.rating = domain.MaxRating
		}
		m.comment = form.Comment
		m.focus = fieldRating
		m.writing = true
	case "x":
		if !m.isMovie() {
			return m, nil
		}
		form := m.deps.Reviews.Form()
		if form.Mode != store.ModeEdit {
			m.statusMsg = "you have not reviewed this title"
			return m, nil
		}
		rs, id, reviewID := m.deps.Reviews, m.id, form.ReviewID
		ctx := m.ctx
		return m, func() tea.Msg {
			return reviewDeletedMsg{id: id, err: rs.Delete(ctx, reviewID)}
		}
	}
	return m, nil
}

func (m detailModel) updateForm(msg tea.KeyMsg) (detailModel, tea.Cmd) {
	if m.submitting {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.writing = false
	case "ctrl+s":
		return m.submit()
	case "tab", "down":
		m.focus = (m.focus + 1) % numReviewFields
	case "shift+tab", "up":
		m.focus = (m.focus - 1 + numReviewFields) % numReviewFields
	case "enter":
		if m.focus == fieldRating {
			m.focus = fieldComment
		} else {
			return m.submit()
		}
	default:
		key := msg.String()
		if m.focus == fieldRating {
			switch key {
			case "h", "left":
				if m.rating > domain.MinRating {
					m.rating--
				}
			case "l", "right":
				if m.rating < domain.MaxRating {
					m.rating++
				}
			default:
				if n, err := strconv.Atoi(key); err == nil && n >= domain.MinRating && n <= domain.MaxRating {
					m.rating = n
				}
			}
			return m, nil
		}
		m.comment = editRune(m.comment, key)
	}
	return m, nil
}

func (m detailModel) submit() (detailModel, tea.Cmd) {
	if err := domain.ValidateRating(m.rating); err != nil {
		m.statusMsg = store.Message(err, "invalid rating")
		return m, nil
	}
	m.submitting = true
	rs, id, rating, comment := m.deps.Reviews, m.id, m.rating, m.comment
	ctx := m.ctx
	return m, func() tea.Msg {
		return reviewSavedMsg{id: id, err: rs.Submit(ctx, rating, comment)}
	}
}

// linkURL is the first playable trailer, or the catalog page when there is none.
func (m detailModel) linkURL() string {
	if m.details == nil {
		return ""
	}
	if tr := m.details.Trailers(); len(tr) > 0 {
		return tr[0].URL()
	}
	return catalog.PageURL(m.media, m.id)
}

// posterURL is the full-size poster image, or "" when the title has none.
func (m detailModel) posterURL() string {
	if m.details == nil {
		return ""
	}
	return catalog.ImageURL(m.deps.ImageBaseURL, "w780", m.details.PosterPath)
}

func (m detailModel) View() string {
	var b strings.Builder
	b.WriteString(" " + dimStyle.Render("<- back (esc)") + "\n")

	switch {
	case m.loading:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case m.notFound:
		b.WriteString(" " + errorStyle.Render("title not found"))
		return b.String()
	case m.err != nil:
		b.WriteString(" " + errorStyle.Render(fmt.Sprintf("error: %v", m.err)))
		return b.String()
	case m.details == nil:
		return b.String()
	}
	d := m.details

	width := m.width - 4
	if width < 40 {
		width = 40
	}

	heading := " " + selectedStyle.Render(d.DisplayTitle())
	if y := d.Year(); y != "" {
		heading += " " + metaStyle.Render("("+y+")")
	}
	if m.isMovie() && m.deps.isFavorite(m.id) {
		heading += "  " + favoriteStyle.Render("★ favorite")
	}
	b.WriteString(heading + "\n")
	if d.Tagline != "" {
		b.WriteString(" " + taglineStyle.Render(d.Tagline) + "\n")
	}

	var meta []string
	for _, g := range d.Genres {
		meta = append(meta, GenreStyle(g.ID).Render(g.Name))
	}
	if rt := d.RuntimeLabel(); rt != "" {
		meta = append(meta, metaStyle.Render(rt))
	}
	if d.NumberOfSeasons > 0 {
		meta = append(meta, metaStyle.Render(fmt.Sprintf("%d seasons", d.NumberOfSeasons)))
	}
	if d.Status != "" {
		meta = append(meta, metaStyle.Render(d.Status))
	}
	if d.VoteCount > 0 {
		meta = append(meta, voteStyle(d.VoteAverage).Render(fmt.Sprintf("%.1f", d.VoteAverage))+metaStyle.Render(fmt.Sprintf(" (%s votes)", formatNum(d.VoteCount))))
	}
	if len(meta) > 0 {
		b.WriteString(" " + strings.Join(meta, metaStyle.Render(" · ")) + "\n")
	}

	if d.Overview != "" {
		b.WriteString("\n")
		wrapped := lipgloss.NewStyle().Width(width).Render(d.Overview)
		for _, line := range strings.Split(wrapped, "\n") {
			b.WriteString(" " + normalStyle.Render(line) + "\n")
		}
	}

	if cast := d.Cast(6); len(cast) > 0 {
		names := make([]string, 0, len(cast))
		for _, c := range cast {
			if c.Character != "" {
				names = append(names, c.Name+" as "+c.Character)
			} else {
				names = append(names, c.Name)
			}
		}
		b.WriteString("\n " + sectionHeaderStyle.Render("CAST") + "  " + dimStyle.Render(truncStr(strings.Join(names, ", "), width*2)) + "\n")
	}

	if money := moneyLine(d); money != "" {
		b.WriteString(" " + metaStyle.Render(money) + "\n")
	}

	if tr := d.Trailers(); len(tr) > 0 {
		b.WriteString(" " + sectionHeaderStyle.Render("TRAILER") + "  " + normalStyle.Render(truncStr(tr[0].Name, 40)) + "  " + metaStyle.Render(tr[0].URL()) + "\n")
	}

	if poster := m.posterURL(); poster != "" {
		b.WriteString(" " + sectionHeaderStyle.Render("POSTER") + "  " + metaStyle.Render(poster) + "\n")
	}

	if m.isMovie() {
		b.WriteString(m.viewReviews(width))
	}

	if len(m.recs) > 0 {
		names := make([]string, 0, 5)
		for i, r := range m.recs {
			if i == 5 {
				break
			}
			names = append(names, r.DisplayTitle())
		}
		b.WriteString("\n " + sectionHeaderStyle.Render("MORE LIKE THIS") + "  " + dimStyle.Render(strings.Join(names, " · ")) + "\n")
	}

	if m.statusMsg != "" {
		b.WriteString("\n " + statusStyle.Render(m.statusMsg) + "\n")
	}

	return truncateToHeight(b.String(), m.height)
}

func moneyLine(d *domain.Details) string {
	var parts []string
	if s := formatMoney(d.Budget); s != "" {
		parts = append(parts, "budget "+s)
	}
	if s := formatMoney(d.Revenue); s != "" {
		parts = append(parts, "box office "+s)
	}
	return strings.Join(parts, "  ")
}

func (m detailModel) viewReviews(width int) string {
	var b strings.Builder
	reviews := m.deps.Reviews.Reviews()
	if m.deps.Reviews.MovieID() != m.id {
		reviews = nil
	}

	header := fmt.Sprintf("REVIEWS (%d)", len(reviews))
	if len(reviews) > 0 {
		header += fmt.Sprintf("  avg %.1f", domain.AverageRating(reviews))
	}
	b.WriteString("\n " + sectionHeaderStyle.Render(header) + "\n")

	switch {
	case m.reviewsLoading:
		b.WriteString(" " + dimStyle.Render("loading reviews...") + "\n")
	case m.reviewsErr != nil:
		b.WriteString(" " + errorStyle.Render(store.Message(m.reviewsErr, "could not load reviews")) + "\n")
	case len(reviews) == 0:
		b.WriteString(" " + dimStyle.Render("no reviews yet") + "\n")
	}

	var me int64 = -1
	if s := m.deps.session(); s != nil {
		me = s.User.ID
	}
	for _, r := range reviews {
		who := r.Username
		if who == "" {
			who = fmt.Sprintf("user %d", r.UserID)
		}
		whoStyle := dimStyle
		if r.UserID == me {
			whoStyle = selectedStyle
			who += " (you)"
		}
		line := fmt.Sprintf(" %s %s  %s  %s",
			whoStyle.Render(who),
			favoriteStyle.Render(stars(r.Rating)),
			reviewTextStyle.Render(truncStr(r.Comment, width-30)),
			reviewTimeStyle.Render(formatTime(r.CreatedAt)))
		b.WriteString(line + "\n")
	}

	if m.writing {
		b.WriteString(m.viewForm())
		return b.String()
	}

	switch m.deps.Reviews.Form().Mode {
	case store.ModeLocked:
		b.WriteString(" " + dimStyle.Render("log in to write a review") + "\n")
	case store.ModeEdit:
		b.WriteString(" " + helpEntry("r", "edit your review") + "  " + helpEntry("x", "delete it") + "\n")
	default:
		b.WriteString(" " + helpEntry("r", "write a review") + "\n")
	}
	return b.String()
}

func (m detailModel) viewForm() string {
	var b strings.Builder
	title := "WRITE A REVIEW"
	if m.form.Mode == store.ModeEdit {
		title = "EDIT YOUR REVIEW"
	}
	b.WriteString("\n " + inputPromptStyle.Render(title) + "\n")

	labels := [numReviewFields]string{"rating", "comment"}
	for i := reviewField(0); i < numReviewFields; i++ {
		cursor := " "
		style := metaStyle
		if i == m.focus {
			cursor = ">"
			style = selectedStyle
		}
		var value string
		if i == fieldRating {
			value = favoriteStyle.Render(stars(m.rating)) + "  " + dimStyle.Render("(h/l or 1-5)")
		} else {
			value = renderInput(m.comment, "what did you think?", i == m.focus)
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(labels[i]), value)
	}
	if m.submitting {
		b.WriteString(" " + dimStyle.Render("saving...") + "\n")
	}
	return b.String()
}

func (m detailModel) helpKeys() string {
	if m.writing {
		return helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("esc", "cancel")
	}
	return helpEntry("f", "favorite") + "  " + helpEntry("o", "open trailer") + "  " + helpEntry("c", "copy link") + "  " + helpEntry("p", "poster") + "  " + helpEntry("r", "review") + "  " + helpEntry("esc", "back")
}
