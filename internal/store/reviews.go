package store

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/naveenspark/moviedash/internal/logger"
	"github.com/naveenspark/moviedash/pkg/domain"
)

// ReviewsAPI is the part of the backend client the reviews store uses.
type ReviewsAPI interface {
	ListMovieReviews(ctx context.Context, movieID int) ([]domain.Review, error)
	ListMyReviews(ctx context.Context) ([]domain.Review, error)
	SaveReview(ctx context.Context, req domain.ReviewRequest) (*domain.Review, error)
	DeleteReview(ctx context.Context, reviewID int64) error
}

// FormMode says what the review form on a detail view should offer.
type FormMode int

const (
	ModeLocked FormMode = iota // no session: show a login prompt instead
	ModeCreate
	ModeEdit
)

func (m FormMode) String() string {
	switch m {
	case ModeCreate:
		return "create"
	case ModeEdit:
		return "edit"
	default:
		return "locked"
	}
}

// ReviewForm is the initial state of the review form.
type ReviewForm struct {
	Mode     FormMode
	ReviewID int64
	Rating   int
	Comment  string
}

// FormFor derives the form from the loaded reviews: pre-filled edit when the
// session user already reviewed the title, empty create otherwise.
func FormFor(reviews []domain.Review, s *domain.Session) ReviewForm {
	if s == nil {
		return ReviewForm{Mode: ModeLocked}
	}
	if r, ok := domain.FindReviewBy(reviews, s.User.ID); ok {
		return ReviewForm{Mode: ModeEdit, ReviewID: r.ID, Rating: r.Rating, Comment: r.Comment}
	}
	return ReviewForm{Mode: ModeCreate}
}

var errNoTitle = errors.New("no title selected")

// ReviewsStore holds the reviews of the title currently on screen.
type ReviewsStore struct {
	api ReviewsAPI
	log logrus.FieldLogger

	mu      sync.RWMutex
	session *domain.Session
	movieID int
	reviews []domain.Review
	loading bool
	err     error
	gen     uint64
}

// NewReviewsStore creates an empty reviews store. log may be nil.
func NewReviewsStore(api ReviewsAPI, log logrus.FieldLogger) *ReviewsStore {
	if log == nil {
		log = logger.Log
	}
	return &ReviewsStore{api: api, log: log.WithField("store", "reviews")}
}

// SessionChanged is an AuthStore listener.
func (r *ReviewsStore) SessionChanged(_ context.Context, s *domain.Session) {
	r.mu.Lock()
	r.session = s
	r.mu.Unlock()
}

// Load fetches the reviews of movieID and replaces the list. Reviews are
// public, so no session is needed.
func (r *ReviewsStore) Load(ctx context.Context, movieID int) error {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	if r.movieID != movieID {
		r.reviews = nil
	}
	r.movieID = movieID
	r.loading = true
	r.err = nil
	r.mu.Unlock()

	reviews, err := r.api.ListMovieReviews(ctx, movieID)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		return err
	}
	r.loading = false
	if err != nil {
		r.log.WithError(err).WithField("movie_id", movieID).Warn("load reviews failed")
		r.err = err
		return err
	}
	r.reviews = reviews
	return nil
}

// Reviews returns a copy of the loaded reviews.
func (r *ReviewsStore) Reviews() []domain.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Review, len(r.reviews))
	copy(out, r.reviews)
	return out
}

// MovieID is the title whose reviews are loaded, 0 if none.
func (r *ReviewsStore) MovieID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.movieID
}

func (r *ReviewsStore) Loading() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loading
}

func (r *ReviewsStore) Err() error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.err
}

// Form derives the review form for the loaded title and current session.
func (r *ReviewsStore) Form() ReviewForm {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return FormFor(r.reviews, r.session)
}

// Submit creates or updates the session user's review of the loaded title,
// then reloads. On failure the list is left as it was.
func (r *ReviewsStore) Submit(ctx context.Context, rating int, comment string) error {
	r.mu.RLock()
	authed := r.session != nil
	movieID := r.movieID
	r.mu.RUnlock()

	if !authed {
		return ErrAuthRequired
	}
	if err := domain.ValidateRating(rating); err != nil {
		return err
	}
	if movieID == 0 {
		return errNoTitle
	}

	req := domain.ReviewRequest{MovieID: movieID, Rating: rating, Comment: strings.TrimSpace(comment)}
	if _, err := r.api.SaveReview(ctx, req); err != nil {
		r.log.WithError(err).WithField("movie_id", movieID).Warn("save review failed")
		return err
	}
	return r.Load(ctx, movieID)
}

// Delete removes one of the session user's reviews, then reloads.
func (r *ReviewsStore) Delete(ctx context.Context, reviewID int64) error {
	r.mu.RLock()
	authed := r.session != nil
	movieID := r.movieID
	r.mu.RUnlock()

	if !authed {
		return ErrAuthRequired
	}
	if err := r.api.DeleteReview(ctx, reviewID); err != nil {
		r.log.WithError(err).WithField("review_id", reviewID).Warn("delete review failed")
		return err
	}
	if movieID == 0 {
		return nil
	}
	return r.Load(ctx, movieID)
}

// Mine returns every review the session user has written.
func (r *ReviewsStore) Mine(ctx context.Context) ([]domain.Review, error) {
	r.mu.RLock()
	authed := r.session != nil
	r.mu.RUnlock()
	if !authed {
		return nil, ErrAuthRequired
	}
	return r.api.ListMyReviews(ctx)
}
