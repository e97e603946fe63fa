// Package catalog is a read-only client for the TMDB v3 movie and TV catalog.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/naveenspark/moviedash/pkg/domain"
)

// DefaultBaseURL is the public TMDB v3 API root.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// ErrNotFound is returned when the catalog has no title with the requested ID.
var ErrNotFound = errors.New("catalog: title not found")

// StatusError is a non-2xx response from the catalog.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("catalog: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("catalog: HTTP %d: %s", e.StatusCode, e.Message)
}

// Config configures a catalog Client.
type Config struct {
	BaseURL         string
	ReadAccessToken string  // sent as a bearer token
	APIKey          string  // sent as api_key when no read access token is set
	Language        string  // e.g. "en-US"
	MaxRetries      int     // retries after the first attempt for 5xx/429
	RateLimit       float64 // requests per second, 0 = unlimited
	Timeout         time.Duration
	Logger          logrus.FieldLogger
}

// Client is the catalog API client. It holds no state between calls besides the
// rate limiter.
type Client struct {
	baseURL    string
	token      string
	apiKey     string
	language   string
	maxRetries uint64
	backoff    time.Duration
	limiter    *rate.Limiter
	httpClient *http.Client
	log        logrus.FieldLogger
}

// New creates a catalog client.
func New(cfg Config) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.ReadAccessToken,
		apiKey:   cfg.APIKey,
		language: cfg.Language,
		backoff:  200 * time.Millisecond,
		log:      cfg.Logger,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.httpClient.Timeout == 0 {
		c.httpClient.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries > 0 {
		c.maxRetries = uint64(cfg.MaxRetries)
	}
	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	if c.log == nil {
		c.log = logrus.StandardLogger()
	}
	return c
}

// Filters narrows a search.
type Filters struct {
	MediaType    domain.MediaType // all (multi), movie or tv
	Year         int              // 0 = any
	IncludeAdult bool
}

// Search finds titles matching query. An empty query returns an empty page
// without calling the catalog. Person results from multi search are dropped.
func (c *Client) Search(ctx context.Context, query string, page int, f Filters) (*domain.Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &domain.Page{Page: 1}, nil
	}
	media := f.MediaType
	if media == "" {
		media = domain.MediaAll
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("page", strconv.Itoa(pageOrFirst(page)))
	params.Set("include_adult", strconv.FormatBool(f.IncludeAdult))

	var path string
	switch media {
	case domain.MediaAll:
		path = "/search/multi"
	case domain.MediaMovie:
		path = "/search/movie"
		if f.Year > 0 {
			params.Set("primary_release_year", strconv.Itoa(f.Year))
		}
	case domain.MediaTV:
		path = "/search/tv"
		if f.Year > 0 {
			params.Set("first_air_date_year", strconv.Itoa(f.Year))
		}
	default:
		return nil, fmt.Errorf("catalog.Search: unsupported media type %q", media)
	}

	var p domain.Page
	if err := c.get(ctx, path, params, &p); err != nil {
		return nil, fmt.Errorf("catalog.Search: %w", err)
	}
	if media == domain.MediaAll {
		p.Results = dropPeople(p.Results)
	} else {
		fillKind(p.Results, media)
	}
	return &p, nil
}

// Trending returns trending titles for window "day" or "week".
func (c *Client) Trending(ctx context.Context, media domain.MediaType, window string, page int) (*domain.Page, error) {
	if media == "" {
		media = domain.MediaAll
	}
	if window != "day" {
		window = "week"
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOrFirst(page)))

	var p domain.Page
	if err := c.get(ctx, "/trending/"+string(media)+"/"+window, params, &p); err != nil {
		return nil, fmt.Errorf("catalog.Trending: %w", err)
	}
	if media == domain.MediaAll {
		p.Results = dropPeople(p.Results)
	} else {
		fillKind(p.Results, media)
	}
	return &p, nil
}

// Popular returns the most popular movies or shows.
func (c *Client) Popular(ctx context.Context, media domain.MediaType, page int) (*domain.Page, error) {
	p, err := c.list(ctx, media, "popular", page)
	if err != nil {
		return nil, fmt.Errorf("catalog.Popular: %w", err)
	}
	return p, nil
}

// TopRated returns the highest rated movies or shows.
func (c *Client) TopRated(ctx context.Context, media domain.MediaType, page int) (*domain.Page, error) {
	p, err := c.list(ctx, media, "top_rated", page)
	if err != nil {
		return nil, fmt.Errorf("catalog.TopRated: %w", err)
	}
	return p, nil
}

// Upcoming returns movies about to be released.
func (c *Client) Upcoming(ctx context.Context, page int) (*domain.Page, error) {
	p, err := c.list(ctx, domain.MediaMovie, "upcoming", page)
	if err != nil {
		return nil, fmt.Errorf("catalog.Upcoming: %w", err)
	}
	return p, nil
}

// Details returns full metadata plus credits and videos for one title.
// A missing title yields ErrNotFound.
func (c *Client) Details(ctx context.Context, id int, media domain.MediaType) (*domain.Details, error) {
	if media != domain.MediaTV {
		media = domain.MediaMovie
	}
	params := url.Values{}
	params.Set("append_to_response", "credits,videos")

	var d domain.Details
	if err := c.get(ctx, "/"+string(media)+"/"+strconv.Itoa(id), params, &d); err != nil {
		return nil, fmt.Errorf("catalog.Details: %w", err)
	}
	d.MediaType = media
	return &d, nil
}

// Genres returns the genre list for movies or shows.
func (c *Client) Genres(ctx context.Context, media domain.MediaType) ([]domain.Genre, error) {
	if media != domain.MediaTV {
		media = domain.MediaMovie
	}
	var out struct {
		Genres []domain.Genre `json:"genres"`
	}
	if err := c.get(ctx, "/genre/"+string(media)+"/list", nil, &out); err != nil {
		return nil, fmt.Errorf("catalog.Genres: %w", err)
	}
	return out.Genres, nil
}

// DiscoverFilters selects movies by genre and release window.
type DiscoverFilters struct {
	Genres []int
	From   string // YYYY-MM-DD, inclusive
	To     string // YYYY-MM-DD, inclusive
	Page   int
}

// Discover lists movies matching the filters, most popular first.
func (c *Client) Discover(ctx context.Context, f DiscoverFilters) (*domain.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOrFirst(f.Page)))
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("include_video", "false")
	if len(f.Genres) > 0 {
		ids := make([]string, len(f.Genres))
		for i, g := range f.Genres {
			ids[i] = strconv.Itoa(g)
		}
		params.Set("with_genres", strings.Join(ids, ","))
	}
	if f.From != "" {
		params.Set("primary_release_date.gte", f.From)
	}
	if f.To != "" {
		params.Set("primary_release_date.lte", f.To)
	}

	var p domain.Page
	if err := c.get(ctx, "/discover/movie", params, &p); err != nil {
		return nil, fmt.Errorf("catalog.Discover: %w", err)
	}
	fillKind(p.Results, domain.MediaMovie)
	return &p, nil
}

// Recommendations returns movies the catalog recommends alongside id.
func (c *Client) Recommendations(ctx context.Context, id, page int) (*domain.Page, error) {
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOrFirst(page)))

	var p domain.Page
	if err := c.get(ctx, "/movie/"+strconv.Itoa(id)+"/recommendations", params, &p); err != nil {
		return nil, fmt.Errorf("catalog.Recommendations: %w", err)
	}
	fillKind(p.Results, domain.MediaMovie)
	return &p, nil
}

func (c *Client) list(ctx context.Context, media domain.MediaType, kind string, page int) (*domain.Page, error) {
	if media != domain.MediaTV {
		media = domain.MediaMovie
	}
	params := url.Values{}
	params.Set("page", strconv.Itoa(pageOrFirst(page)))

	var p domain.Page
	if err := c.get(ctx, "/"+string(media)+"/"+kind, params, &p); err != nil {
		return nil, err
	}
	fillKind(p.Results, media)
	return &p, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if params == nil {
		params = url.Values{}
	}
	if c.language != "" {
		params.Set("language", c.language)
	}
	if c.token == "" && c.apiKey != "" {
		params.Set("api_key", c.apiKey)
	}
	target := c.baseURL + path + "?" + params.Encode()

	b := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.backoff))
	attempt := 0
	return retry.Do(ctx, b, func(ctx context.Context) error {
		attempt++
		err := c.fetch(ctx, target, out)
		var se *StatusError
		if errors.As(err, &se) && retryable(se.StatusCode) {
			c.log.WithFields(logrus.Fields{
				"path":    path,
				"status":  se.StatusCode,
				"attempt": attempt,
			}).Debug("catalog request failed, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

func (c *Client) fetch(ctx context.Context, target string, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) //nolint:errcheck // best-effort read for error message
		var apiErr struct {
			StatusMessage string `json:"status_message"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.StatusMessage != "" {
			return &StatusError{StatusCode: resp.StatusCode, Message: apiErr.StatusMessage}
		}
		return &StatusError{StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func retryable(code int) bool {
	return code >= 500 || code == http.StatusTooManyRequests
}

func pageOrFirst(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

func dropPeople(titles []domain.Title) []domain.Title {
	out := titles[:0]
	for _, t := range titles {
		if t.MediaType == domain.MediaPerson {
			continue
		}
		out = append(out, t)
	}
	return out
}

func fillKind(titles []domain.Title, media domain.MediaType) {
	for i := range titles {
		if titles[i].MediaType == "" {
			titles[i].MediaType = media
		}
	}
}
