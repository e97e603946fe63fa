package catalog

import (
	"strconv"
	"strings"

	"github.com/naveenspark/moviedash/pkg/domain"
)

// DefaultImageBaseURL is the catalog's image CDN root.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p"

// ImageURL builds a poster or backdrop URL, e.g. ImageURL(base, "w500", "/abc.jpg").
// Returns "" when path is empty.
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	if base == "" {
		base = DefaultImageBaseURL
	}
	if size == "" {
		size = "original"
	}
	return strings.TrimRight(base, "/") + "/" + size + "/" + strings.TrimLeft(path, "/")
}

// PageURL returns the public catalog web page for a title.
func PageURL(media domain.MediaType, id int) string {
	if media != domain.MediaTV {
		media = domain.MediaMovie
	}
	return "https://www.themoviedb.org/" + string(media) + "/" + strconv.Itoa(id)
}
