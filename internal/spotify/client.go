package spotify

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
	"sync"
	"time"
)

const (
	DefaultAPIBase  = "https://api.spotify.com/v1"
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// ErrAuth is returned when the client-credentials exchange fails.
var ErrAuth = errors.New("spotify auth failed")

// Client talks to the Spotify Web API with client credentials.
type Client struct {
	clientID     string
	clientSecret string
	apiBase      string
	tokenURL     string
	market       string
	pageSize     int
	httpClient   *http.Client

	mu    sync.Mutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURLs points the client at different API and token endpoints.
func WithBaseURLs(apiBase, tokenURL string) Option {
	return func(c *Client) {
		c.apiBase = strings.TrimRight(apiBase, "/")
		c.tokenURL = tokenURL
	}
}

// WithMarket sets the market used when listing episodes.
func WithMarket(market string) Option {
	return func(c *Client) { c.market = market }
}

// WithPageSize sets the episodes page size.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

func NewClient(clientID, clientSecret string, opts ...Option) *Client {
	c := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		apiBase:      DefaultAPIBase,
		tokenURL:     DefaultTokenURL,
		market:       "US",
		pageSize:     50,
		httpClient:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// RefreshToken fetches a new access token.
func (c *Client) RefreshToken(ctx context.Context) error {
	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(c.clientID, c.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAuth, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%w: status %d: %s", ErrAuth, resp.StatusCode, string(body))
	}

	var tok tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return fmt.Errorf("%w: decode token: %v", ErrAuth, err)
	}
	if tok.AccessToken == "" {
		return fmt.Errorf("%w: empty access token", ErrAuth)
	}

	c.mu.Lock()
	c.token = tok.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.token
	c.mu.Unlock()
	if tok != "" {
		return tok, nil
	}
	if err := c.RefreshToken(ctx); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token, nil
}

// get issues an authorized GET. A 401 means the cached token expired: it is
// dropped, refreshed once and the request retried.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	tok, err := c.accessToken(ctx)
	if err != nil {
		return err
	}
	err = c.doGet(ctx, tok, path, params, out)
	if !errors.Is(err, errUnauthorized) {
		return err
	}

	c.mu.Lock()
	if c.token == tok {
		c.token = ""
	}
	c.mu.Unlock()
	if tok, err = c.accessToken(ctx); err != nil {
		return err
	}
	return c.doGet(ctx, tok, path, params, out)
}

var errUnauthorized = errors.New("unauthorized")

func (c *Client) doGet(ctx context.Context, tok, path string, params url.Values, out any) error {
	u := c.apiBase + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		if resp.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("get %s: %w: %s", path, errUnauthorized, string(body))
		}
		return fmt.Errorf("get %s: status %d: %s", path, resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// ResolveShowID extracts the show id from an open.spotify.com show URL.
// Anything else is returned unchanged.
func ResolveShowID(ref string) string {
	const marker = "open.spotify.com/show/"
	i := strings.Index(ref, marker)
	if i < 0 {
		return ref
	}
	id := strings.TrimRight(ref[i+len(marker):], "/")
	if j := strings.IndexAny(id, "?#/"); j >= 0 {
		id = id[:j]
	}
	return id
}

// Show fetches show metadata.
func (c *Client) Show(ctx context.Context, showID string) (*Show, error) {
	var show Show
	if err := c.get(ctx, "/shows/"+url.PathEscape(showID), url.Values{"market": {c.market}}, &show); err != nil {
		return nil, err
	}
	return &show, nil
}

// EachEpisode calls fn for every episode of a show in API order, fetching
// pages on demand. Paging stops when fn returns false or an error.
func (c *Client) EachEpisode(ctx context.Context, showID string, fn func(RawEpisode) (bool, error)) error {
	for offset := 0; ; offset += c.pageSize {
		var page episodePage
		params := url.Values{
			"offset": {strconv.Itoa(offset)},
			"limit":  {strconv.Itoa(c.pageSize)},
			"market": {c.market},
		}
		if err := c.get(ctx, "/shows/"+url.PathEscape(showID)+"/episodes", params, &page); err != nil {
			return err
		}
		for _, raw := range page.Items {
			more, err := fn(raw)
			if err != nil || !more {
				return err
			}
		}
		if len(page.Items) == 0 || page.Next == nil {
			return nil
		}
	}
}
