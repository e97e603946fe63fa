package tui

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/naveenspark/moviedash/internal/store"
	"github.com/naveenspark/moviedash/pkg/catalog"
	"github.com/naveenspark/moviedash/pkg/client"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// fakeCatalog serves a fixed set of titles.
type fakeCatalog struct {
	mu      sync.Mutex
	titles  map[int]domain.Details
	genres  []domain.Genre
	calls   []string
	failAll error
}

func newFakeCatalog() *fakeCatalog {
	c := &fakeCatalog{titles: map[int]domain.Details{}}
	c.genres = []domain.Genre{{ID: 28, Name: "Action"}, {ID: 18, Name: "Drama"}}
	c.add(domain.Details{
		Title:   domain.Title{ID: 603, Title: "The Matrix", ReleaseDate: "1999-03-30", PosterPath: "/matrix.jpg", Overview: "A hacker learns the truth.", VoteAverage: 8.2, VoteCount: 25000, GenreIDs: []int{28}},
		Tagline: "Welcome to the Real World.",
		Runtime: 136,
		Genres:  []domain.Genre{{ID: 28, Name: "Action"}, {ID: 878, Name: "Science Fiction"}},
	})
	c.add(domain.Details{
		Title:   domain.Title{ID: 949, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9, VoteCount: 7000, GenreIDs: []int{18}},
		Runtime: 170,
	})
	c.add(domain.Details{
		Title: domain.Title{ID: 1396, MediaType: domain.MediaTV, Name: "Breaking Bad", FirstAirDate: "2008-01-20", VoteAverage: 8.9, VoteCount: 13000},
	})
	return c
}

func (c *fakeCatalog) add(d domain.Details) {
	c.titles[d.ID] = d
}

func (c *fakeCatalog) record(call string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, call)
	return c.failAll
}

func (c *fakeCatalog) called(call string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, got := range c.calls {
		if got == call {
			return true
		}
	}
	return false
}

func (c *fakeCatalog) page(media domain.MediaType) *domain.Page {
	ids := make([]int, 0, len(c.titles))
	for id := range c.titles {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	p := &domain.Page{Page: 1, TotalPages: 1}
	for _, id := range ids {
		t := c.titles[id].Title
		if media != domain.MediaAll && media != "" && t.Kind() != media {
			continue
		}
		p.Results = append(p.Results, t)
	}
	p.TotalResults = len(p.Results)
	return p
}

func (c *fakeCatalog) Search(_ context.Context, query string, page int, f catalog.Filters) (*domain.Page, error) {
	if err := c.record("search " + query); err != nil {
		return nil, err
	}
	return c.page(f.MediaType), nil
}

func (c *fakeCatalog) Discover(_ context.Context, f catalog.DiscoverFilters) (*domain.Page, error) {
	if err := c.record(fmt.Sprintf("discover %v", f.Genres)); err != nil {
		return nil, err
	}
	return c.page(domain.MediaMovie), nil
}

func (c *fakeCatalog) Trending(_ context.Context, media domain.MediaType, window string, page int) (*domain.Page, error) {
	if err := c.record(fmt.Sprintf("trending %s %s %d", media, window, page)); err != nil {
		return nil, err
	}
	return c.page(media), nil
}

func (c *fakeCatalog) Popular(_ context.Context, media domain.MediaType, page int) (*domain.Page, error) {
	if err := c.record(fmt.Sprintf("popular %s %d", media, page)); err != nil {
		return nil, err
	}
	return c.page(media), nil
}

func (c *fakeCatalog) TopRated(_ context.Context, media domain.MediaType, page int) (*domain.Page, error) {
	if err := c.record(fmt.Sprintf("top_rated %s %d", media, page)); err != nil {
		return nil, err
	}
	return c.page(media), nil
}

func (c *fakeCatalog) Upcoming(_ context.Context, page int) (*domain.Page, error) {
	if err := c.record(fmt.Sprintf("upcoming %d", page)); err != nil {
		return nil, err
	}
	return c.page(domain.MediaMovie), nil
}

func (c *fakeCatalog) Details(_ context.Context, id int, media domain.MediaType) (*domain.Details, error) {
	if err := c.record(fmt.Sprintf("details %d", id)); err != nil {
		return nil, err
	}
	d, ok := c.titles[id]
	if !ok {
		return nil, fmt.Errorf("catalog.Details: %w", catalog.ErrNotFound)
	}
	d.MediaType = media
	return &d, nil
}

func (c *fakeCatalog) Genres(_ context.Context, _ domain.MediaType) ([]domain.Genre, error) {
	if err := c.record("genres"); err != nil {
		return nil, err
	}
	return c.genres, nil
}

func (c *fakeCatalog) Recommendations(_ context.Context, id, _ int) (*domain.Page, error) {
	if err := c.record(fmt.Sprintf("recommendations %d", id)); err != nil {
		return nil, err
	}
	return &domain.Page{Page: 1, Results: []domain.Title{c.titles[949].Title}}, nil
}

// fakeBackend is an in-memory account, favorites and reviews backend for
// one user, alice / secret1.
type fakeBackend struct {
	mu        sync.Mutex
	token     string
	favorites []domain.Favorite
	reviews   []domain.Review
	nextID    int64
	addErr    error
}

var alice = domain.User{ID: 1, Username: "alice", Email: "alice@example.com"}

func (b *fakeBackend) SetToken(token string) {
	b.mu.Lock()
	b.token = token
	b.mu.Unlock()
}

func (b *fakeBackend) authed() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.token != "t1" {
		return &client.HTTPError{StatusCode: 401, Message: "Unauthorized"}
	}
	return nil
}

func (b *fakeBackend) Login(_ context.Context, email, password string) (*domain.AuthPayload, error) {
	if email != alice.Email || password != "secret1" {
		return nil, &client.HTTPError{StatusCode: 401, Message: "Invalid email or password"}
	}
	return &domain.AuthPayload{Token: "t1", User: alice}, nil
}

func (b *fakeBackend) Register(_ context.Context, username, email, _ string) (*domain.AuthPayload, error) {
	if email == alice.Email {
		return nil, &client.HTTPError{StatusCode: 409, Message: "Email already registered"}
	}
	return &domain.AuthPayload{Token: "t1", User: domain.User{ID: 1, Username: username, Email: email}}, nil
}

func (b *fakeBackend) Me(context.Context) (*domain.User, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	u := alice
	return &u, nil
}

func (b *fakeBackend) Logout(context.Context) error { return nil }

func (b *fakeBackend) ListFavorites(context.Context) ([]domain.Favorite, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.Favorite(nil), b.favorites...), nil
}

func (b *fakeBackend) AddFavorite(_ context.Context, movieID int) (*domain.Favorite, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addErr != nil {
		return nil, b.addErr
	}
	b.nextID++
	f := domain.Favorite{ID: b.nextID, MovieID: movieID, AddedAt: time.Now()}
	b.favorites = append(b.favorites, f)
	return &f, nil
}

func (b *fakeBackend) RemoveFavorite(_ context.Context, movieID int) error {
	if err := b.authed(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	kept := b.favorites[:0]
	for _, f := range b.favorites {
		if f.MovieID != movieID {
			kept = append(kept, f)
		}
	}
	b.favorites = kept
	return nil
}

func (b *fakeBackend) ListMovieReviews(_ context.Context, movieID int) ([]domain.Review, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Review
	for _, r := range b.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *fakeBackend) ListMyReviews(context.Context) ([]domain.Review, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []domain.Review
	for _, r := range b.reviews {
		if r.UserID == alice.ID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *fakeBackend) SaveReview(_ context.Context, req domain.ReviewRequest) (*domain.Review, error) {
	if err := b.authed(); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.reviews {
		if r.UserID == alice.ID && r.MovieID == req.MovieID {
			b.reviews[i].Rating = req.Rating
			b.reviews[i].Comment = req.Comment
			return &b.reviews[i], nil
		}
	}
	b.nextID++
	r := domain.Review{ID: b.nextID, UserID: alice.ID, Username: alice.Username, MovieID: req.MovieID, Rating: req.Rating, Comment: req.Comment, CreatedAt: time.Now()}
	b.reviews = append(b.reviews, r)
	return &r, nil
}

func (b *fakeBackend) DeleteReview(_ context.Context, reviewID int64) error {
	if err := b.authed(); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, r := range b.reviews {
		if r.ID == reviewID {
			b.reviews = append(b.reviews[:i], b.reviews[i+1:]...)
			return nil
		}
	}
	return &client.HTTPError{StatusCode: 404, Message: "Review not found"}
}

func (b *fakeBackend) seedReview(r domain.Review) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	if r.ID == 0 {
		r.ID = b.nextID
	}
	b.reviews = append(b.reviews, r)
}

type testEnv struct {
	catalog *fakeCatalog
	backend *fakeBackend
	deps    Deps
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, _ := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	b := &fakeBackend{}
	c := newFakeCatalog()
	auth := store.NewAuthStore(b, &store.MemoryTokenStore{}, log)
	favs := store.NewFavoritesStore(b, log)
	reviews := store.NewReviewsStore(b, log)
	auth.Subscribe(favs.SessionChanged)
	auth.Subscribe(reviews.SessionChanged)

	return &testEnv{
		catalog: c,
		backend: b,
		deps:    Deps{Catalog: c, Auth: auth, Favorites: favs, Reviews: reviews},
	}
}

func (e *testEnv) login(t *testing.T) {
	t.Helper()
	if err := e.deps.Auth.Login(context.Background(), alice.Email, "secret1"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	case "ctrl+r":
		return tea.KeyMsg{Type: tea.KeyCtrlR}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and feeds every resulting message back into the App
// until the queue is empty. Ticks, quits and version checks are dropped.
func runCmd(t *testing.T, a App, cmd tea.Cmd) App {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 200 {
			t.Fatal("runCmd: command loop did not settle")
		}
		c := queue[0]
		queue = queue[1:]
		if c == nil {
			continue
		}
		switch msg := c().(type) {
		case nil, shimmerTickMsg, tea.QuitMsg, versionCheckMsg:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			model, next := a.Update(msg)
			a = model.(App)
			queue = append(queue, next)
		}
	}
	return a
}

// send delivers msg to the App and settles every command it triggers.
func send(t *testing.T, a App, msg tea.Msg) App {
	t.Helper()
	model, cmd := a.Update(msg)
	return runCmd(t, model.(App), cmd)
}

func typeText(t *testing.T, a App, s string) App {
	t.Helper()
	for _, r := range s {
		a = send(t, a, key(string(r)))
	}
	return a
}
