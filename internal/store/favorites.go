package store

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/naveenspark/moviedash/internal/logger"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// FavoritesAPI is the part of the backend client the favorites store uses.
type FavoritesAPI interface {
	ListFavorites(ctx context.Context) ([]domain.Favorite, error)
	AddFavorite(ctx context.Context, movieID int) (*domain.Favorite, error)
	RemoveFavorite(ctx context.Context, movieID int) error
}

// State is the favorites store's mutation state.
type State int

const (
	StateIdle State = iota
	StateMutating
	StateIdleWithError
)

func (s State) String() string {
	switch s {
	case StateMutating:
		return "mutating"
	case StateIdleWithError:
		return "error"
	default:
		return "idle"
	}
}

// FavoritesStore mirrors the signed-in user's favorites. The local list is
// only ever replaced by a full refetch; mutations never patch it. Mutations
// are serialized and each one awaits its refetch before returning.
type FavoritesStore struct {
	api FavoritesAPI
	log logrus.FieldLogger

	mutMu sync.Mutex // held for a whole mutation, including its refresh

	mu      sync.RWMutex
	session *domain.Session
	entries []domain.Favorite
	index   map[int]domain.Favorite
	gen     uint64 // ticket counter for refreshes and resets
	applied uint64 // ticket of the last applied refresh or reset
	pending int    // mutations queued or running
	err     error
}

// NewFavoritesStore creates an empty favorites store. log may be nil.
func NewFavoritesStore(api FavoritesAPI, log logrus.FieldLogger) *FavoritesStore {
	if log == nil {
		log = logger.Log
	}
	return &FavoritesStore{
		api:   api,
		log:   log.WithField("store", "favorites"),
		index: map[int]domain.Favorite{},
	}
}

// SessionChanged is an AuthStore listener: nil resets, anything else refreshes
// for the new user.
func (f *FavoritesStore) SessionChanged(ctx context.Context, s *domain.Session) {
	f.mu.Lock()
	f.gen++
	f.applied = f.gen
	f.session = s
	f.entries = nil
	f.index = map[int]domain.Favorite{}
	f.err = nil
	f.mu.Unlock()

	if s != nil {
		f.Refresh(ctx)
	}
}

// Reset empties the list and discards any refresh still in flight.
func (f *FavoritesStore) Reset() {
	f.mu.Lock()
	f.gen++
	f.applied = f.gen
	f.entries = nil
	f.index = map[int]domain.Favorite{}
	f.err = nil
	f.mu.Unlock()
}

// Refresh replaces the local list with the backend's. Failures are logged and
// leave the list empty. A result older than the last applied refresh or the
// last Reset is dropped, so a slow refresh never overwrites a newer list.
func (f *FavoritesStore) Refresh(ctx context.Context) {
	f.mu.Lock()
	f.gen++
	gen := f.gen
	authed := f.session != nil
	f.mu.Unlock()

	if !authed {
		f.apply(gen, nil)
		return
	}

	favs, err := f.api.ListFavorites(ctx)
	if err != nil {
		f.log.WithError(err).Warn("refresh favorites failed")
		favs = nil
	}
	if !f.apply(gen, favs) {
		f.log.Debug("discarding stale favorites refresh")
	}
}

func (f *FavoritesStore) apply(gen uint64, favs []domain.Favorite) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen <= f.applied {
		return false
	}
	f.applied = gen
	idx := domain.FavoriteSet(favs)
	entries := make([]domain.Favorite, 0, len(idx))
	seen := make(map[int]bool, len(idx))
	for _, fav := range favs {
		if seen[fav.MovieID] {
			continue
		}
		seen[fav.MovieID] = true
		entries = append(entries, fav)
	}
	f.entries = entries
	f.index = idx
	return true
}

type favoriteOp int

const (
	opAdd favoriteOp = iota
	opRemove
	opToggle
)

func (o favoriteOp) String() string {
	switch o {
	case opAdd:
		return "add"
	case opRemove:
		return "remove"
	}
	return "toggle"
}

// Add saves movieID to the favorites and waits for the list to refresh.
func (f *FavoritesStore) Add(ctx context.Context, movieID int) error {
	return f.mutate(ctx, opAdd, movieID)
}

// Remove deletes movieID from the favorites and waits for the list to refresh.
func (f *FavoritesStore) Remove(ctx context.Context, movieID int) error {
	return f.mutate(ctx, opRemove, movieID)
}

// Toggle removes movieID if it is a favorite and adds it otherwise. The
// choice is made once every earlier mutation has finished.
func (f *FavoritesStore) Toggle(ctx context.Context, movieID int) error {
	return f.mutate(ctx, opToggle, movieID)
}

// BeginToggle queues a toggle of movieID and marks the store busy before
// returning, so Busy is true from the moment a toggle is accepted. It fails
// with ErrBusy when another mutation is queued or running and with
// ErrAuthRequired without a session. The returned func performs the toggle
// and must be called exactly once.
func (f *FavoritesStore) BeginToggle(movieID int) (func(context.Context) error, error) {
	if err := f.enqueue(true); err != nil {
		return nil, err
	}
	return func(ctx context.Context) error {
		return f.run(ctx, opToggle, movieID)
	}, nil
}

func (f *FavoritesStore) mutate(ctx context.Context, op favoriteOp, movieID int) error {
	if err := f.enqueue(false); err != nil {
		return err
	}
	return f.run(ctx, op, movieID)
}

// enqueue counts a mutation as pending. With exclusive set it refuses to
// queue behind another mutation.
func (f *FavoritesStore) enqueue(exclusive bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		f.err = ErrAuthRequired
		return ErrAuthRequired
	}
	if exclusive && f.pending > 0 {
		return ErrBusy
	}
	f.pending++
	f.err = nil
	return nil
}

// run performs one enqueued mutation and its trailing refresh.
func (f *FavoritesStore) run(ctx context.Context, op favoriteOp, movieID int) error {
	defer func() {
		f.mu.Lock()
		f.pending--
		f.mu.Unlock()
	}()

	f.mutMu.Lock()
	defer f.mutMu.Unlock()

	// A logout may have happened while this mutation was queued.
	f.mu.RLock()
	authed := f.session != nil
	_, member := f.index[movieID]
	f.mu.RUnlock()
	if !authed {
		f.setErr(ErrAuthRequired)
		return ErrAuthRequired
	}

	if op == opToggle {
		op = opAdd
		if member {
			op = opRemove
		}
	}

	var err error
	switch op {
	case opAdd:
		_, err = f.api.AddFavorite(ctx, movieID)
	case opRemove:
		err = f.api.RemoveFavorite(ctx, movieID)
	}

	log := f.log.WithFields(logrus.Fields{"op": op.String(), "movie_id": movieID})
	if err != nil {
		log.WithError(err).Warn("favorite mutation failed")
		f.setErr(err)
		return err
	}
	log.Debug("favorite mutation applied, refreshing")
	f.Refresh(ctx)
	return nil
}

func (f *FavoritesStore) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

// IsFavorite checks the last known list. It never does I/O.
func (f *FavoritesStore) IsFavorite(movieID int) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	_, ok := f.index[movieID]
	return ok
}

// Busy reports whether a mutation is queued or running.
func (f *FavoritesStore) Busy() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.pending > 0
}

// Err returns the last mutation error. The next mutation clears it.
func (f *FavoritesStore) Err() error {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.err
}

func (f *FavoritesStore) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()
	switch {
	case f.pending > 0:
		return StateMutating
	case f.err != nil:
		return StateIdleWithError
	default:
		return StateIdle
	}
}

// Entries returns a copy of the list in backend order.
func (f *FavoritesStore) Entries() []domain.Favorite {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]domain.Favorite, len(f.entries))
	copy(out, f.entries)
	return out
}

// Len returns the number of favorites.
func (f *FavoritesStore) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.entries)
}

// DetailsFetcher loads catalog details for one title.
type DetailsFetcher interface {
	Details(ctx context.Context, id int, media domain.MediaType) (*domain.Details, error)
}

// hydrateLimit caps concurrent catalog lookups in Hydrate.
const hydrateLimit = 6

// Hydrate fetches catalog details for every favorite, in favorites order.
// Titles that fail to load are logged and left out.
func (f *FavoritesStore) Hydrate(ctx context.Context, catalog DetailsFetcher) ([]domain.Details, error) {
	entries := f.Entries()
	results := make([]*domain.Details, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(hydrateLimit)
	for i, fav := range entries {
		g.Go(func() error {
			d, err := catalog.Details(gctx, fav.MovieID, domain.MediaMovie)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				f.log.WithError(err).WithField("movie_id", fav.MovieID).Warn("hydrate favorite failed")
				return nil
			}
			results[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]domain.Details, 0, len(results))
	for _, d := range results {
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}
