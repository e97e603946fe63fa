package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/naveenspark/moviedash/pkg/domain"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20 // 10 MB

// Client is the moviedash backend API client.
// The bearer token can be swapped at runtime as the session changes.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu    sync.RWMutex
	token string
}

// New creates a new API client.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken replaces the bearer token sent with every request. "" disables auth.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// --- Auth ---

// Login exchanges email and password for a token and user.
func (c *Client) Login(ctx context.Context, email, password string) (*domain.AuthPayload, error) {
	var out domain.AuthPayload
	body := map[string]string{"email": email, "password": password}
	if err := c.post(ctx, "/auth/login", body, &out); err != nil {
		return nil, fmt.Errorf("client.Login: %w", err)
	}
	return &out, nil
}

// Register creates an account and returns its token and user.
func (c *Client) Register(ctx context.Context, username, email, password string) (*domain.AuthPayload, error) {
	var out domain.AuthPayload
	body := map[string]string{"username": username, "email": email, "password": password}
	if err := c.post(ctx, "/auth/register", body, &out); err != nil {
		return nil, fmt.Errorf("client.Register: %w", err)
	}
	return &out, nil
}

// Me returns the user the current token belongs to.
func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var u domain.User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, fmt.Errorf("client.Me: %w", err)
	}
	return &u, nil
}

// Logout invalidates the current token server-side.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, http.MethodPost, "/auth/logout", nil, nil); err != nil {
		return fmt.Errorf("client.Logout: %w", err)
	}
	return nil
}

// --- Favorites ---

// ListFavorites returns the signed-in user's favorites.
func (c *Client) ListFavorites(ctx context.Context) ([]domain.Favorite, error) {
	var favs []domain.Favorite
	if err := c.get(ctx, "/favorites", &favs); err != nil {
		return nil, fmt.Errorf("client.ListFavorites: %w", err)
	}
	return favs, nil
}

// AddFavorite adds a movie to the signed-in user's favorites.
func (c *Client) AddFavorite(ctx context.Context, movieID int) (*domain.Favorite, error) {
	var fav domain.Favorite
	if err := c.post(ctx, "/favorites", map[string]int{"movieId": movieID}, &fav); err != nil {
		return nil, fmt.Errorf("client.AddFavorite: %w", err)
	}
	return &fav, nil
}

// RemoveFavorite removes a movie from the signed-in user's favorites.
func (c *Client) RemoveFavorite(ctx context.Context, movieID int) error {
	if err := c.doRequest(ctx, http.MethodDelete, "/favorites/"+strconv.Itoa(movieID), nil, nil); err != nil {
		return fmt.Errorf("client.RemoveFavorite: %w", err)
	}
	return nil
}

// --- Reviews ---

// ListMovieReviews returns every review of a movie. No auth required.
func (c *Client) ListMovieReviews(ctx context.Context, movieID int) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.get(ctx, "/reviews/movie/"+strconv.Itoa(movieID), &reviews); err != nil {
		return nil, fmt.Errorf("client.ListMovieReviews: %w", err)
	}
	return reviews, nil
}

// ListMyReviews returns the reviews written by the signed-in user.
func (c *Client) ListMyReviews(ctx context.Context) ([]domain.Review, error) {
	var reviews []domain.Review
	if err := c.get(ctx, "/reviews/user", &reviews); err != nil {
		return nil, fmt.Errorf("client.ListMyReviews: %w", err)
	}
	return reviews, nil
}

// SaveReview creates the caller's review of a movie, or updates it if one exists.
func (c *Client) SaveReview(ctx context.Context, req domain.ReviewRequest) (*domain.Review, error) {
	var review domain.Review
	if err := c.post(ctx, "/reviews", req, &review); err != nil {
		return nil, fmt.Errorf("client.SaveReview: %w", err)
	}
	return &review, nil
}

// DeleteReview deletes one of the caller's reviews.
func (c *Client) DeleteReview(ctx context.Context, reviewID int64) error {
	path := "/reviews/" + url.PathEscape(strconv.FormatInt(reviewID, 10))
	if err := c.doRequest(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("client.DeleteReview: %w", err)
	}
	return nil
}

// envelope is the backend's response wrapper.
type envelope struct {
	Success *bool           `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

func (e envelope) message() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Error
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if resp.StatusCode >= 400 {
			return &HTTPError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read body: %v", err)}
		}
		return fmt.Errorf("read response: %w", err)
	}

	var env envelope
	envErr := json.Unmarshal(respBody, &env)

	if resp.StatusCode >= 400 {
		if envErr == nil {
			return &HTTPError{StatusCode: resp.StatusCode, Message: env.message()}
		}
		return &HTTPError{StatusCode: resp.StatusCode}
	}
	if envErr == nil && env.Success != nil && !*env.Success {
		return &HTTPError{StatusCode: resp.StatusCode, Message: env.message()}
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	// Bare payloads (no envelope) decode directly.
	payload := respBody
	if envErr == nil && env.Success != nil {
		payload = env.Data
	}
	if len(payload) == 0 || string(payload) == "null" {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}
