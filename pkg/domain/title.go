package domain

import (
	"fmt"
	"strings"
)

// MediaType selects which part of the catalog a title belongs to.
type MediaType string

const (
	MediaAll    MediaType = "all"
	MediaMovie  MediaType = "movie"
	MediaTV     MediaType = "tv"
	// MediaPerson shows up in multi-search results and is skipped by the views.
	MediaPerson MediaType = "person"
)

// MediaTypes is the cycle order used by search filters.
var MediaTypes = []MediaType{MediaAll, MediaMovie, MediaTV}

// ValidMediaType returns true for all, movie and tv.
func ValidMediaType(t MediaType) bool {
	for _, m := range MediaTypes {
		if m == t {
			return true
		}
	}
	return false
}

// Title is a movie or TV show as it appears in catalog lists.
type Title struct {
	ID            int       `json:"id"`
	MediaType     MediaType `json:"media_type,omitempty"`
	Title         string    `json:"title,omitempty"`          // movies
	Name          string    `json:"name,omitempty"`           // tv
	OriginalTitle string    `json:"original_title,omitempty"` // movies
	Overview      string    `json:"overview"`
	ReleaseDate   string    `json:"release_date,omitempty"`   // movies, YYYY-MM-DD
	FirstAirDate  string    `json:"first_air_date,omitempty"` // tv, YYYY-MM-DD
	VoteAverage   float64   `json:"vote_average"`
	VoteCount     int       `json:"vote_count"`
	Popularity    float64   `json:"popularity"`
	PosterPath    string    `json:"poster_path,omitempty"`
	BackdropPath  string    `json:"backdrop_path,omitempty"`
	GenreIDs      []int     `json:"genre_ids,omitempty"`
	Adult         bool      `json:"adult"`
}

// DisplayTitle returns the movie title or the show name, whichever is set.
func (t Title) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// Date returns the release date for movies and the first air date for shows.
func (t Title) Date() string {
	if t.ReleaseDate != "" {
		return t.ReleaseDate
	}
	return t.FirstAirDate
}

// Year returns the four-digit year of Date, or "" when unknown.
func (t Title) Year() string {
	d := t.Date()
	if len(d) < 4 {
		return ""
	}
	return d[:4]
}

// Kind resolves the media type, inferring it from the populated fields when the
// list endpoint did not include media_type.
func (t Title) Kind() MediaType {
	if t.MediaType != "" {
		return t.MediaType
	}
	if t.Name != "" && t.Title == "" {
		return MediaTV
	}
	return MediaMovie
}

// Page is one page of a catalog list response.
type Page struct {
	Page         int     `json:"page"`
	Results      []Title `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool {
	return p.Page < p.TotalPages
}

// CastMember is one credited actor.
type CastMember struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

// Video is a trailer, teaser or clip attached to a title.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"` // "YouTube", "Vimeo"
	Type     string `json:"type"` // "Trailer", "Teaser", "Clip"
	Official bool   `json:"official"`
}

// URL returns the watch URL for the video, or "" for unknown hosts.
func (v Video) URL() string {
	switch v.Site {
	case "YouTube":
		return "https://www.youtube.com/watch?v=" + v.Key
	case "Vimeo":
		return "https://vimeo.com/" + v.Key
	}
	return ""
}

// Details is the full metadata for a single title, including cast and videos.
type Details struct {
	Title
	Tagline          string  `json:"tagline,omitempty"`
	Status           string  `json:"status,omitempty"`
	Runtime          int     `json:"runtime,omitempty"`            // movies, minutes
	EpisodeRunTime   []int   `json:"episode_run_time,omitempty"`   // tv, minutes
	NumberOfSeasons  int     `json:"number_of_seasons,omitempty"`  // tv
	NumberOfEpisodes int     `json:"number_of_episodes,omitempty"` // tv
	Budget           int64   `json:"budget,omitempty"`
	Revenue          int64   `json:"revenue,omitempty"`
	Homepage         string  `json:"homepage,omitempty"`
	Genres           []Genre `json:"genres,omitempty"`
	Credits          struct {
		Cast []CastMember `json:"cast"`
	} `json:"credits"`
	Videos struct {
		Results []Video `json:"results"`
	} `json:"videos"`
}

// Cast returns up to n billed cast members.
func (d Details) Cast(n int) []CastMember {
	cast := d.Credits.Cast
	if n >= 0 && len(cast) > n {
		cast = cast[:n]
	}
	return cast
}

// Trailers returns the playable trailers and teasers, official ones first.
func (d Details) Trailers() []Video {
	var official, rest []Video
	for _, v := range d.Videos.Results {
		if v.URL() == "" || (v.Type != "Trailer" && v.Type != "Teaser") {
			continue
		}
		if v.Official {
			official = append(official, v)
		} else {
			rest = append(rest, v)
		}
	}
	return append(official, rest...)
}

// RuntimeLabel renders the runtime as "2h 14m", "48m/ep" or "".
func (d Details) RuntimeLabel() string {
	mins := d.Runtime
	suffix := ""
	if mins == 0 && len(d.EpisodeRunTime) > 0 {
		mins = d.EpisodeRunTime[0]
		suffix = "/ep"
	}
	if mins <= 0 {
		return ""
	}
	if mins < 60 {
		return fmt.Sprintf("%dm%s", mins, suffix)
	}
	return fmt.Sprintf("%dh %dm%s", mins/60, mins%60, suffix)
}

// GenreNames joins the genre names with the given separator.
func (d Details) GenreNames(sep string) string {
	names := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, sep)
}
