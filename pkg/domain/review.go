package domain

import "time"

// Review is a user's rating and comment on a movie.
type Review struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Username  string    `json:"username,omitempty"` // Display name, filled in by the backend
	MovieID   int       `json:"movieId"`
	Rating    int       `json:"rating"` // 1-5
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Rating bounds accepted by the backend.
const (
	MinRating = 1
	MaxRating = 5
)

// ReviewRequest is the payload for creating or updating the caller's review.
type ReviewRequest struct {
	MovieID int    `json:"movieId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// FindReviewBy returns the first review written by userID, if any.
func FindReviewBy(reviews []Review, userID int64) (Review, bool) {
	for _, r := range reviews {
		if r.UserID == userID {
			return r, true
		}
	}
	return Review{}, false
}

// AverageRating returns the mean rating of reviews, or 0 when there are none.
func AverageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
