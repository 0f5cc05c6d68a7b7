package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
)

const defaultBaseURL = "https://api.themoviedb.org"
const defaultCacheTTL = 24 * time.Hour

// appended is requested with every movie, show and episode so one call carries the children.
const appended = "credits,videos,keywords"

// ErrNotFound is returned when TMDB has no record for the id.
var ErrNotFound = errors.New("not found in TMDB")

// Client is a TMDB API client.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	httpClient *http.Client
	clock      clockwork.Clock
	ttl        time.Duration
	cache      *cache
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithCacheTTL sets the cache TTL. Zero disables caching.
func WithCacheTTL(ttl time.Duration) Option {
	return func(c *Client) {
		c.ttl = ttl
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLanguage sets the response language, e.g. "fr-FR".
func WithLanguage(lang string) Option {
	return func(c *Client) {
		c.language = lang
	}
}

// WithClock sets the clock used for cache expiry.
func WithClock(clock clockwork.Clock) Option {
	return func(c *Client) {
		c.clock = clock
	}
}

// NewClient creates a new TMDB client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		clock: clockwork.NewRealClock(),
		ttl:   defaultCacheTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cache = newCache(c.ttl, c.clock)
	return c
}

// GetMovie fetches a movie with its credits, videos and keywords.
func (c *Client) GetMovie(ctx context.Context, id int64) (*Movie, error) {
	return fetch[Movie](ctx, c, fmt.Sprintf("/3/movie/%d", id), true)
}

// GetTv fetches a show with its seasons, credits, videos and keywords.
func (c *Client) GetTv(ctx context.Context, id int64) (*Tv, error) {
	return fetch[Tv](ctx, c, fmt.Sprintf("/3/tv/%d", id), true)
}

// GetEpisode fetches one episode of a show with its credits.
func (c *Client) GetEpisode(ctx context.Context, tvID int64, season, episode int) (*Episode, error) {
	return fetch[Episode](ctx, c, fmt.Sprintf("/3/tv/%d/season/%d/episode/%d", tvID, season, episode), true)
}

// GetPerson fetches a person.
func (c *Client) GetPerson(ctx context.Context, id int64) (*Person, error) {
	return fetch[Person](ctx, c, fmt.Sprintf("/3/person/%d", id), false)
}

func fetch[T any](ctx context.Context, c *Client, path string, appendChildren bool) (*T, error) {
	// Check cache first
	if v, ok := c.cache.get(path); ok {
		if out, ok := v.(*T); ok {
			return out, nil
		}
	}

	q := url.Values{}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	if appendChildren {
		q.Set("append_to_response", appended)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("TMDB API error: %s", resp.Status)
	}

	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	c.cache.set(path, &out)
	return &out, nil
}
