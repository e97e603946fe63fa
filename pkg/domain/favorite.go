package domain

import "time"

// Favorite links the signed-in user to a catalog movie ID.
type Favorite struct {
	ID      int64     `json:"id"`
	MovieID int       `json:"movieId"`
	AddedAt time.Time `json:"addedAt"`
}

// FavoriteSet indexes a favorites list by movie ID.
// Duplicate movie IDs collapse to the first entry.
func FavoriteSet(entries []Favorite) map[int]Favorite {
	set := make(map[int]Favorite, len(entries))
	for _, e := range entries {
		if _, ok := set[e.MovieID]; ok {
			continue
		}
		set[e.MovieID] = e
	}
	return set
}
