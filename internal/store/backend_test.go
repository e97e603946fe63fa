package store

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/naveenspark/moviedash/pkg/client"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// fakeBackend is an in-memory moviedash backend speaking the
// {success, message, data} envelope.
type fakeBackend struct {
	t   *testing.T
	srv *httptest.Server

	mu        sync.Mutex
	users     map[string]domain.User // token -> user
	passwords map[string]string      // email -> password
	tokens    map[string]string      // email -> token
	favorites map[int64][]domain.Favorite
	reviews   []domain.Review
	nextID    int64
	requests  []string          // "METHOD /path"
	auth      map[string]string // "METHOD /path" -> last Authorization header

	addStatus  int    // non-zero: POST /favorites fails with this status
	meStatus   int    // non-zero: GET /auth/me fails with this status
	addMessage string // message for addStatus

	listGate    chan struct{} // non-nil: GET /favorites blocks until closed
	listEntered chan struct{} // receives once per gated GET /favorites

	inFlight    int
	maxInFlight int // concurrent favorite mutations observed
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()
	b := &fakeBackend{
		t:         t,
		users:     map[string]domain.User{"t1": {ID: 1, Username: "alice", Email: "alice@example.com"}},
		passwords: map[string]string{"alice@example.com": "secret1"},
		tokens:    map[string]string{"alice@example.com": "t1"},
		favorites: map[int64][]domain.Favorite{},
		nextID:    100,
		auth:      map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("GET /auth/me", b.me)
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		writeOK(w, http.StatusOK, nil)
	})
	mux.HandleFunc("GET /favorites", b.listFavorites)
	mux.HandleFunc("POST /favorites", b.addFavorite)
	mux.HandleFunc("DELETE /favorites/{movieId}", b.removeFavorite)
	mux.HandleFunc("GET /reviews/movie/{movieId}", b.movieReviews)
	mux.HandleFunc("GET /reviews/user", b.userReviews)
	mux.HandleFunc("POST /reviews", b.saveReview)
	mux.HandleFunc("DELETE /reviews/{id}", b.deleteReview)

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		b.mu.Lock()
		b.requests = append(b.requests, key)
		b.auth[key] = r.Header.Get("Authorization")
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)
	return b
}

func (b *fakeBackend) client() *client.Client {
	return client.New(b.srv.URL, "")
}

func (b *fakeBackend) requestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.requests)
}

func (b *fakeBackend) lastAuth(key string) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.auth[key]
}

func (b *fakeBackend) seedFavorites(userID int64, movieIDs ...int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range movieIDs {
		b.nextID++
		b.favorites[userID] = append(b.favorites[userID], domain.Favorite{ID: b.nextID, MovieID: id, AddedAt: time.Now()})
	}
}

func (b *fakeBackend) seedReview(r domain.Review) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	r.ID = b.nextID
	b.reviews = append(b.reviews, r)
}

func (b *fakeBackend) failAdds(status int, msg string) {
	b.mu.Lock()
	b.addStatus, b.addMessage = status, msg
	b.mu.Unlock()
}

func (b *fakeBackend) addUser(token string, u domain.User) {
	b.mu.Lock()
	b.users[token] = u
	b.mu.Unlock()
}

func (b *fakeBackend) maxConcurrentMutations() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.maxInFlight
}

func writeOK(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": true, "data": data}) //nolint:errcheck
}

func writeFail(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg}) //nolint:errcheck
}

func (b *fakeBackend) userFor(r *http.Request) (domain.User, bool) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	b.mu.Lock()
	defer b.mu.Unlock()
	u, ok := b.users[tok]
	return u, ok
}

func (b *fakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct{ Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "bad request")
		return
	}
	b.mu.Lock()
	pw, ok := b.passwords[body.Email]
	tok := b.tokens[body.Email]
	user := b.users[tok]
	b.mu.Unlock()
	if !ok || pw != body.Password {
		writeFail(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	writeOK(w, http.StatusOK, domain.AuthPayload{Token: tok, User: user})
}

func (b *fakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var body struct{ Username, Email, Password string }
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "bad request")
		return
	}
	b.mu.Lock()
	if _, exists := b.passwords[body.Email]; exists {
		b.mu.Unlock()
		writeFail(w, http.StatusConflict, "Email already registered")
		return
	}
	b.nextID++
	user := domain.User{ID: b.nextID, Username: body.Username, Email: body.Email}
	tok := "t" + strconv.FormatInt(b.nextID, 10)
	b.users[tok] = user
	b.passwords[body.Email] = body.Password
	b.tokens[body.Email] = tok
	b.mu.Unlock()
	writeOK(w, http.StatusCreated, domain.AuthPayload{Token: tok, User: user})
}

func (b *fakeBackend) me(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	status := b.meStatus
	b.mu.Unlock()
	if status != 0 {
		writeFail(w, status, "Service unavailable")
		return
	}
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Invalid token")
		return
	}
	writeOK(w, http.StatusOK, u)
}

func (b *fakeBackend) listFavorites(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	b.mu.Lock()
	gate, entered := b.listGate, b.listEntered
	b.mu.Unlock()
	if gate != nil {
		entered <- struct{}{}
		<-gate
	}
	b.mu.Lock()
	favs := append([]domain.Favorite{}, b.favorites[u.ID]...)
	b.mu.Unlock()
	writeOK(w, http.StatusOK, favs)
}

func (b *fakeBackend) enterMutation() {
	b.mu.Lock()
	b.inFlight++
	if b.inFlight > b.maxInFlight {
		b.maxInFlight = b.inFlight
	}
	b.mu.Unlock()
	time.Sleep(2 * time.Millisecond)
}

func (b *fakeBackend) exitMutation() {
	b.mu.Lock()
	b.inFlight--
	b.mu.Unlock()
}

func (b *fakeBackend) addFavorite(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	b.enterMutation()
	defer b.exitMutation()

	var body struct {
		MovieID int `json:"movieId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "bad request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.addStatus != 0 {
		writeFail(w, b.addStatus, b.addMessage)
		return
	}
	for _, f := range b.favorites[u.ID] {
		if f.MovieID == body.MovieID {
			writeFail(w, http.StatusBadRequest, "Movie already in favorites")
			return
		}
	}
	b.nextID++
	fav := domain.Favorite{ID: b.nextID, MovieID: body.MovieID, AddedAt: time.Now()}
	b.favorites[u.ID] = append(b.favorites[u.ID], fav)
	writeOK(w, http.StatusCreated, fav)
}

func (b *fakeBackend) removeFavorite(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	b.enterMutation()
	defer b.exitMutation()

	movieID, _ := strconv.Atoi(r.PathValue("movieId"))
	b.mu.Lock()
	defer b.mu.Unlock()
	favs := b.favorites[u.ID]
	for i, f := range favs {
		if f.MovieID == movieID {
			b.favorites[u.ID] = append(favs[:i:i], favs[i+1:]...)
			writeOK(w, http.StatusOK, nil)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Favorite not found")
}

func (b *fakeBackend) movieReviews(w http.ResponseWriter, r *http.Request) {
	movieID, _ := strconv.Atoi(r.PathValue("movieId"))
	b.mu.Lock()
	var out []domain.Review
	for _, rv := range b.reviews {
		if rv.MovieID == movieID {
			out = append(out, rv)
		}
	}
	b.mu.Unlock()
	writeOK(w, http.StatusOK, out)
}

func (b *fakeBackend) userReviews(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	b.mu.Lock()
	var out []domain.Review
	for _, rv := range b.reviews {
		if rv.UserID == u.ID {
			out = append(out, rv)
		}
	}
	b.mu.Unlock()
	writeOK(w, http.StatusOK, out)
}

func (b *fakeBackend) saveReview(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	var req domain.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFail(w, http.StatusBadRequest, "bad request")
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, rv := range b.reviews {
		if rv.UserID == u.ID && rv.MovieID == req.MovieID {
			b.reviews[i].Rating = req.Rating
			b.reviews[i].Comment = req.Comment
			writeOK(w, http.StatusOK, b.reviews[i])
			return
		}
	}
	b.nextID++
	rv := domain.Review{ID: b.nextID, UserID: u.ID, Username: u.Username, MovieID: req.MovieID, Rating: req.Rating, Comment: req.Comment, CreatedAt: time.Now()}
	b.reviews = append(b.reviews, rv)
	writeOK(w, http.StatusCreated, rv)
}

func (b *fakeBackend) deleteReview(w http.ResponseWriter, r *http.Request) {
	u, ok := b.userFor(r)
	if !ok {
		writeFail(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, rv := range b.reviews {
		if rv.ID == id {
			if rv.UserID != u.ID {
				writeFail(w, http.StatusForbidden, "Not your review")
				return
			}
			b.reviews = append(b.reviews[:i:i], b.reviews[i+1:]...)
			writeOK(w, http.StatusOK, nil)
			return
		}
	}
	writeFail(w, http.StatusNotFound, "Review not found")
}
