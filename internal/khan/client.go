package khan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkimber/ka-lite/internal/apperr"
	"github.com/pkimber/ka-lite/internal/models"
	"github.com/pkimber/ka-lite/internal/pipeline"
)

// Verify *Client satisfies the pipeline collaborator contracts at compile time.
var (
	_ pipeline.Fetcher     = (*Client)(nil)
	_ pipeline.IconFetcher = (*Client)(nil)
)

// API endpoint paths, relative to the configured base URL.
const (
	topicTreePath      = "/api/v1/topictree"
	exerciseVideosPath = "/api/v1/exercises/%s/videos"
	mapLayoutPath      = "/api/v1/maplayout"
)

// Client fetches Khan Academy API data over HTTP with optional response
// caching. A nil cache means every call goes upstream.
type Client struct {
	base   string
	http   *http.Client
	cache  *Cache
	logger *slog.Logger
}

// NewClient creates a Client for the given base URL. cache may be nil.
func NewClient(base string, timeout time.Duration, cache *Cache, logger *slog.Logger) *Client {
	return &Client{
		base:   base,
		http:   &http.Client{Timeout: timeout},
		cache:  cache,
		logger: logger,
	}
}

// get returns the response body for path, serving from the cache when a
// fresh entry exists.
func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	fullURL := c.base + path

	if c.cache != nil {
		body, ok, err := c.cache.Get(fullURL)
		if err != nil {
			c.logger.Warn("khan: cache lookup failed", slog.String("url", fullURL), slog.String("error", err.Error()))
		} else if ok {
			c.logger.Debug("khan: cache hit", slog.String("url", fullURL))
			return body, nil
		}
	}

	c.logger.Info("khan: downloading", slog.String("url", fullURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("khan: build request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("khan: get %s: %w", fullURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("khan: get %s: unexpected status %d", fullURL, resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("khan: read body: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.Put(fullURL, body); err != nil {
			c.logger.Warn("khan: cache store failed", slog.String("url", fullURL), slog.String("error", err.Error()))
		}
	}
	return body, nil
}

// TopicTree downloads the raw heterogeneous topic tree.
func (c *Client) TopicTree(ctx context.Context) (map[string]any, error) {
	body, err := c.get(ctx, topicTreePath)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("khan: decode topic tree: %w", err)
	}
	return tree, nil
}

// ExerciseVideos downloads the videos related to the named exercise and
// returns their readable ids.
func (c *Client) ExerciseVideos(ctx context.Context, name string) ([]string, error) {
	body, err := c.get(ctx, fmt.Sprintf(exerciseVideosPath, url.PathEscape(name)))
	if err != nil {
		return nil, err
	}
	var videos []struct {
		ReadableID string `json:"readable_id"`
	}
	if err := json.Unmarshal(body, &videos); err != nil {
		return nil, fmt.Errorf("khan: decode exercise videos for %s: %w", name, err)
	}
	slugs := make([]string, 0, len(videos))
	for _, v := range videos {
		slugs = append(slugs, v.ReadableID)
	}
	return slugs, nil
}

// MapLayout downloads the knowledge-map diagram dataset.
func (c *Client) MapLayout(ctx context.Context) (*models.KnowledgeMap, error) {
	body, err := c.get(ctx, mapLayoutPath)
	if err != nil {
		return nil, err
	}
	var km models.KnowledgeMap
	if err := json.Unmarshal(body, &km); err != nil {
		return nil, fmt.Errorf("khan: decode map layout: %w", err)
	}
	return &km, nil
}

// FetchIcon downloads an icon by its site-relative URL. A 404 is reported
// as apperr.ErrNotFound so callers can fall back to the default icon.
// Icons bypass the response cache: presence on disk is the skip condition.
func (c *Client) FetchIcon(ctx context.Context, iconURL string) ([]byte, error) {
	fullURL := c.base + iconURL
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("khan: build icon request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("khan: get icon %s: %w", fullURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("khan: icon %s: %w", iconURL, apperr.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("khan: get icon %s: unexpected status %d", fullURL, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
