package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/naveenspark/moviedash/internal/store"
	"github.com/naveenspark/moviedash/pkg/domain"
)

type accountField int

const (
	fieldUsername accountField = iota
	fieldEmail
	fieldPassword
	numAccountFields
)

type authAction int

const (
	actionLogin authAction = iota
	actionRegister
	actionLogout
)

func (a authAction) done() string {
	switch a {
	case actionRegister:
		return "account created"
	case actionLogout:
		return "logged out"
	}
	return "logged in"
}

type accountModel struct {
	deps      Deps
	register  bool
	editing   bool
	fields    [numAccountFields]string
	focus     accountField
	submitted bool
	statusMsg string

	reviews        []domain.Review
	reviewsLoading bool
	reviewsErr     error
	cursor         int
	seq            int

	width  int
	height int
}

// authResultMsg reports a finished login, registration or logout.
type authResultMsg struct {
	action authAction
	err    error
}

type myReviewsMsg struct {
	seq     int
	reviews []domain.Review
	err     error
}

func newAccountModel(d Deps) accountModel {
	return accountModel{deps: d, focus: fieldEmail}
}

func (m accountModel) Init() tea.Cmd {
	if m.deps.session() == nil {
		return nil
	}
	_, cmd := m.loadReviews()
	return cmd
}

func (m accountModel) loadReviews() (accountModel, tea.Cmd) {
	m.seq++
	m.reviewsLoading = true
	rs, seq := m.deps.Reviews, m.seq
	return m, func() tea.Msg {
		reviews, err := rs.Mine(context.Background())
		return myReviewsMsg{seq: seq, reviews: reviews, err: err}
	}
}

// firstField is the top form field for the current mode.
func (m accountModel) firstField() accountField {
	if m.register {
		return fieldUsername
	}
	return fieldEmail
}

func (m accountModel) Update(msg tea.Msg) (accountModel, tea.Cmd) {
	switch msg := msg.(type) {
	case authResultMsg:
		m.submitted = false
		if msg.err != nil {
			m.statusMsg = store.Message(msg.err, "something went wrong")
			return m, nil
		}
		m.statusMsg = ""
		m.editing = false
		m.fields = [numAccountFields]string{}
		return m, nil

	case sessionChangedMsg:
		m.reviews = nil
		m.reviewsErr = nil
		m.cursor = 0
		if m.deps.session() == nil {
			m.seq++
			m.reviewsLoading = false
			m.focus = m.firstField()
			return m, nil
		}
		return m.loadReviews()

	case myReviewsMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.reviewsLoading = false
		m.reviews = msg.reviews
		m.reviewsErr = msg.err
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.deps.session() != nil {
			return m.updateSignedIn(msg)
		}
		if m.editing {
			return m.updateForm(msg)
		}
		switch msg.String() {
		case "enter", "i":
			m.editing = true
			m.statusMsg = ""
		case "r":
			m = m.toggleMode()
		}
	}
	return m, nil
}

func (m accountModel) toggleMode() accountModel {
	m.register = !m.register
	m.focus = m.firstField()
	m.statusMsg = ""
	return m
}

func (m accountModel) updateForm(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	if m.submitted {
		return m, nil
	}
	m.statusMsg = ""
	first := m.firstField()
	n := numAccountFields - first

	switch msg.String() {
	case "esc":
		m.editing = false
	case "ctrl+s":
		return m.submit()
	case "ctrl+r":
		m = m.toggleMode()
	case "tab", "down":
		m.focus = first + (m.focus-first+1)%n
	case "shift+tab", "up":
		m.focus = first + (m.focus-first-1+n)%n
	case "enter":
		if m.focus == fieldPassword {
			return m.submit()
		}
		m.focus++
	default:
		m.fields[m.focus] = editRune(m.fields[m.focus], msg.String())
	}
	return m, nil
}

func (m accountModel) submit() (accountModel, tea.Cmd) {
	username := m.fields[fieldUsername]
	email := m.fields[fieldEmail]
	password := m.fields[fieldPassword]

	var err error
	if m.register {
		err = domain.ValidateRegistration(strings.TrimSpace(username), strings.TrimSpace(email), password)
	} else {
		err = domain.ValidateLogin(strings.TrimSpace(email), password)
	}
	if err != nil {
		m.statusMsg = store.Message(err, "invalid input")
		return m, nil
	}

	m.submitted = true
	auth := m.deps.Auth
	if m.register {
		return m, func() tea.Msg {
			return authResultMsg{action: actionRegister, err: auth.Register(context.Background(), username, email, password)}
		}
	}
	return m, func() tea.Msg {
		return authResultMsg{action: actionLogin, err: auth.Login(context.Background(), email, password)}
	}
}

func (m accountModel) updateSignedIn(msg tea.KeyMsg) (accountModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.cursor < len(m.reviews)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.reviews) {
			t := domain.Title{ID: m.reviews[m.cursor].MovieID, MediaType: domain.MediaMovie}
			return m, openDetail(t)
		}
	case "r":
		return m.loadReviews()
	case "L":
		auth := m.deps.Auth
		return m, func() tea.Msg {
			return authResultMsg{action: actionLogout, err: auth.Logout(context.Background())}
		}
	}
	return m, nil
}

func (m accountModel) View() string {
	if s := m.deps.session(); s != nil {
		return m.viewSignedIn(s)
	}

	var b strings.Builder
	title := "LOG IN"
	other := "create an account"
	if m.register {
		title = "CREATE ACCOUNT"
		other = "log in instead"
	}
	b.WriteString(" " + sectionHeaderStyle.Render(title) + "\n\n")

	labels := [numAccountFields]string{"username", "email", "password"}
	placeholders := [numAccountFields]string{"3-50 characters", "you@example.com", "at least 6 characters"}
	for i := m.firstField(); i < numAccountFields; i++ {
		cursor := " "
		style := metaStyle
		focused := m.editing && i == m.focus
		if focused {
			cursor = ">"
			style = selectedStyle
		}
		value := m.fields[i]
		if i == fieldPassword {
			value = mask(value)
		}
		fmt.Fprintf(&b, " %s %-9s %s\n", cursor, style.Render(labels[i]+":"), renderInput(value, placeholders[i], focused))
	}

	b.WriteString("\n")
	switch {
	case m.submitted:
		b.WriteString(" " + dimStyle.Render("signing in..."))
	case m.statusMsg != "":
		b.WriteString(" " + errorStyle.Render(m.statusMsg))
	case !m.editing:
		b.WriteString(" " + helpEntry("enter", "start typing") + "  " + helpEntry("r", other))
	default:
		b.WriteString(" " + helpEntry("ctrl+r", other))
	}
	b.WriteString("\n")
	return b.String()
}

func (m accountModel) viewSignedIn(s *domain.Session) string {
	var b strings.Builder
	b.WriteString(" " + sectionHeaderStyle.Render("ACCOUNT") + "\n\n")
	b.WriteString(" " + metaStyle.Render("user   ") + selectedStyle.Render(s.User.Username) + "\n")
	if s.User.Email != "" {
		b.WriteString(" " + metaStyle.Render("email  ") + normalStyle.Render(s.User.Email) + "\n")
	}
	if m.deps.Favorites != nil {
		b.WriteString(" " + metaStyle.Render("saved  ") + favoriteStyle.Render(fmt.Sprintf("★ %d", m.deps.Favorites.Len())) + "\n")
	}

	b.WriteString("\n " + sectionHeaderStyle.Render(fmt.Sprintf("MY REVIEWS (%d)", len(m.reviews))) + "\n")
	switch {
	case m.reviewsLoading && len(m.reviews) == 0:
		b.WriteString(" " + dimStyle.Render("loading..."))
		return b.String()
	case m.reviewsErr != nil:
		b.WriteString(" " + errorStyle.Render(store.Message(m.reviewsErr, "could not load reviews")))
		return b.String()
	case len(m.reviews) == 0:
		b.WriteString(" " + dimStyle.Render("no reviews yet"))
		return b.String()
	}

	width := m.width - 30
	if width < 20 {
		width = 20
	}
	start, end := visibleWindow(m.cursor, len(m.reviews), m.height-9)
	for i := start; i < end; i++ {
		r := m.reviews[i]
		prefix := "  "
		if i == m.cursor {
			prefix = accentStyle.Render("▸") + " "
		}
		fmt.Fprintf(&b, "%s%s %s  %s  %s\n", prefix,
			metaStyle.Render(fmt.Sprintf("movie %-7d", r.MovieID)),
			favoriteStyle.Render(stars(r.Rating)),
			reviewTextStyle.Render(truncStr(r.Comment, width)),
			reviewTimeStyle.Render(formatTime(r.CreatedAt)))
	}
	return truncateToHeight(b.String(), m.height)
}

func (m accountModel) helpKeys() string {
	switch {
	case m.deps.session() != nil:
		return helpEntry("j/k", "nav") + "  " + helpEntry("enter", "open") + "  " + helpEntry("L", "log out") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
	case m.editing:
		return helpEntry("tab", "next") + "  " + helpEntry("ctrl+s", "submit") + "  " + helpEntry("ctrl+r", "switch") + "  " + helpEntry("esc", "done")
	}
	return helpEntry("enter", "type") + "  " + helpEntry("r", "switch") + "  " + helpEntry("h", "help") + "  " + helpEntry("q", "quit")
}
