// Package spacex is the data client for the public launches API. Successful
// responses are written to the response cache; failed requests fall back to
// it when the device is offline or the failure never produced an HTTP status.
package spacex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/Resinat/launchview/internal/model"
	"github.com/Resinat/launchview/internal/netutil"
	"github.com/Resinat/launchview/internal/respcache"
)

// DefaultBaseURL is the public launches API.
const DefaultBaseURL = "https://api.spacexdata.com/v5"

// ErrNotFound is returned for blank identifiers without touching the network.
var ErrNotFound = errors.New("spacex: not found")

// Source tells whether a result came from the network or the response cache.
type Source string

const (
	SourceLive  Source = "live"
	SourceCache Source = "cache"
)

// ResponseCache is the fallback store consulted on connectivity failures.
type ResponseCache interface {
	Put(key string, body []byte)
	Get(key string) ([]byte, bool)
}

// Connectivity reports the current online state.
type Connectivity interface {
	Online() bool
}

// FailureObserver is notified of every failed request, whether or not the
// cache could serve it.
type FailureObserver interface {
	ObserveFailure(rawURL string, err error)
}

// Config wires a Client.
type Config struct {
	BaseURL      string
	Fetcher      netutil.Fetcher
	Cache        ResponseCache
	Connectivity Connectivity
	Observer     FailureObserver
}

// Client issues launch, rocket and launchpad requests.
type Client struct {
	baseURL      string
	fetcher      netutil.Fetcher
	cache        ResponseCache
	connectivity Connectivity
	observer     FailureObserver
}

// NewClient creates a Client. Fetcher is required.
func NewClient(cfg Config) *Client {
	if cfg.Fetcher == nil {
		panic("spacex: NewClient requires a Fetcher")
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:      baseURL,
		fetcher:      cfg.Fetcher,
		cache:        cfg.Cache,
		connectivity: cfg.Connectivity,
		observer:     cfg.Observer,
	}
}

// BaseURL returns the API root every request is issued against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// QueryLaunches fetches one page of launches for q.
func (c *Client) QueryLaunches(ctx context.Context, q model.PageQuery) (model.PageResult, Source, error) {
	q = q.Normalize()
	body, err := json.Marshal(BuildQueryBody(q))
	if err != nil {
		return model.PageResult{}, "", fmt.Errorf("spacex: encode query: %w", err)
	}
	resp, src, err := fetchJSON[pageResponse](ctx, c, netutil.Request{
		Method: http.MethodPost,
		URL:    c.baseURL + "/launches/query",
		Body:   body,
	})
	if err != nil {
		return model.PageResult{}, "", err
	}
	result := model.PageResult{
		Items:     resp.Docs,
		TotalDocs: resp.TotalDocs,
		Page:      resp.Page,
		Limit:     resp.Limit,
	}
	if result.Items == nil {
		result.Items = []model.Launch{}
	}
	if result.Page < 1 {
		result.Page = q.Page
	}
	if result.Limit <= 0 {
		result.Limit = q.Limit
	}
	return result, src, nil
}

// GetLaunch fetches one launch by id.
func (c *Client) GetLaunch(ctx context.Context, id string) (model.Launch, Source, error) {
	rawURL, err := c.entityURL("launches", id)
	if err != nil {
		return model.Launch{}, "", err
	}
	return fetchJSON[model.Launch](ctx, c, netutil.Request{Method: http.MethodGet, URL: rawURL})
}

// GetRocket fetches one rocket by id.
func (c *Client) GetRocket(ctx context.Context, id string) (model.Rocket, error) {
	rawURL, err := c.entityURL("rockets", id)
	if err != nil {
		return model.Rocket{}, err
	}
	r, _, err := fetchJSON[model.Rocket](ctx, c, netutil.Request{Method: http.MethodGet, URL: rawURL})
	return r, err
}

// GetLaunchpad fetches one launchpad by id.
func (c *Client) GetLaunchpad(ctx context.Context, id string) (model.Launchpad, error) {
	rawURL, err := c.entityURL("launchpads", id)
	if err != nil {
		return model.Launchpad{}, err
	}
	p, _, err := fetchJSON[model.Launchpad](ctx, c, netutil.Request{Method: http.MethodGet, URL: rawURL})
	return p, err
}

func (c *Client) entityURL(collection, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrNotFound
	}
	return c.baseURL + "/" + collection + "/" + url.PathEscape(id), nil
}

func fetchJSON[T any](ctx context.Context, c *Client, req netutil.Request) (T, Source, error) {
	var out T
	key := respcache.Key(req.URL, req.Body)

	raw, err := c.fetcher.Fetch(ctx, req)
	if err == nil {
		if err := json.Unmarshal(raw, &out); err != nil {
			return out, "", fmt.Errorf("spacex: decode %s: %w", req.URL, err)
		}
		if c.cache != nil {
			c.cache.Put(key, raw)
		}
		return out, SourceLive, nil
	}

	// Abandoned requests are neither failures nor fallback candidates.
	if errors.Is(err, context.Canceled) {
		return out, "", err
	}
	if c.observer != nil {
		c.observer.ObserveFailure(req.URL, err)
	}
	if !c.shouldFallback(err) {
		return out, "", err
	}
	cached, ok := c.cache.Get(key)
	if !ok {
		return out, "", err
	}
	var fromCache T
	if decodeErr := json.Unmarshal(cached, &fromCache); decodeErr != nil {
		log.Printf("[spacex] discard undecodable cache entry for %s: %v", req.URL, decodeErr)
		return out, "", err
	}
	log.Printf("[spacex] serving cached response for %s: %v", req.URL, err)
	return fromCache, SourceCache, nil
}

func (c *Client) shouldFallback(err error) bool {
	if c.cache == nil {
		return false
	}
	if c.connectivity != nil && !c.connectivity.Online() {
		return true
	}
	return netutil.IsConnectivityError(err)
}
