// Package publish is the REST publishing boundary: a WordPress v2 client
// that resolves tag names to ids, attaches category and status, and submits
// posts with pacing between calls.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"afmwatch/internal/article"
)

// ErrMissingCredentials reports an unusable publisher configuration.
var ErrMissingCredentials = errors.New("missing WordPress credentials")

// Options configures the publisher.
type Options struct {
	BaseURL     string
	Username    string
	AppPassword string
	CategoryID  int
	// Status is the post status to submit, "draft" or "publish".
	Status string
	// MaxPosts caps how many posts one run may create.
	MaxPosts int
	// Delay paces successive REST calls. Politeness, not correctness.
	Delay   time.Duration
	Timeout time.Duration
}

// Client talks to the WordPress REST API.
type Client struct {
	opts    Options
	http    *http.Client
	limiter *rate.Limiter
	// tagCache maps tag names to ids for the duration of one run, so each
	// tag is resolved at most once.
	tagCache map[string]int
}

// New creates a publisher client.
func New(opts Options) (*Client, error) {
	if opts.BaseURL == "" || opts.Username == "" || opts.AppPassword == "" {
		return nil, ErrMissingCredentials
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	if opts.Status == "" {
		opts.Status = "draft"
	}
	if opts.MaxPosts <= 0 {
		opts.MaxPosts = 10
	}
	if opts.Delay <= 0 {
		opts.Delay = 400 * time.Millisecond
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 45 * time.Second
	}
	return &Client{
		opts:     opts,
		http:     &http.Client{Timeout: opts.Timeout},
		limiter:  rate.NewLimiter(rate.Every(opts.Delay), 1),
		tagCache: make(map[string]int),
	}, nil
}

// postPayload is the outbound publish payload.
type postPayload struct {
	Title      string            `json:"title"`
	Status     string            `json:"status"`
	Excerpt    string            `json:"excerpt"`
	Content    string            `json:"content"`
	Categories []int             `json:"categories,omitempty"`
	Tags       []int             `json:"tags,omitempty"`
	Meta       map[string]string `json:"meta"`
}

// PublishBatch submits articles sequentially until the per-run cap is hit.
// Per-item failures are logged and skipped; the returned count is how many
// posts were actually created. onPublished, when non-nil, is invoked once
// per successfully created post.
func (c *Client) PublishBatch(ctx context.Context, articles []article.Article, onPublished func(article.Article)) (int, error) {
	created := 0
	for _, a := range articles {
		if created >= c.opts.MaxPosts {
			break
		}
		if err := c.limiter.Wait(ctx); err != nil {
			return created, err
		}
		if err := c.Publish(ctx, a); err != nil {
			slog.Error("Failed to publish article",
				slog.String("unique_id", a.UniqueID),
				slog.String("title", a.Title),
				slog.Any("error", err))
			continue
		}
		created++
		if onPublished != nil {
			onPublished(a)
		}
	}
	return created, nil
}

// Publish creates one post.
func (c *Client) Publish(ctx context.Context, a article.Article) error {
	tagIDs := c.resolveTags(ctx, a.Tags)

	payload := postPayload{
		Title:   a.Title,
		Status:  c.opts.Status,
		Excerpt: a.Excerpt,
		Content: a.ContentHTML,
		Tags:    tagIDs,
		Meta: map[string]string{
			"afm_unique_id": a.UniqueID,
			"afm_date":      a.DateISO,
		},
	}
	if c.opts.CategoryID > 0 {
		payload.Categories = []int{c.opts.CategoryID}
	}

	var resp struct {
		ID int `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/wp-json/wp/v2/posts", payload, &resp); err != nil {
		return err
	}

	slog.Info("Published article",
		slog.Int("post_id", resp.ID),
		slog.String("unique_id", a.UniqueID),
		slog.String("status", c.opts.Status))
	return nil
}

// resolveTags maps tag names to ids, creating missing tags. Resolution
// failures degrade to posting without that tag rather than failing the post.
func (c *Client) resolveTags(ctx context.Context, names []string) []int {
	var ids []int
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if id, ok := c.tagCache[name]; ok {
			ids = append(ids, id)
			continue
		}
		id, err := c.resolveTag(ctx, name)
		if err != nil {
			slog.Warn("Failed to resolve tag", slog.String("tag", name), slog.Any("error", err))
			continue
		}
		c.tagCache[name] = id
		ids = append(ids, id)
	}
	return ids
}

func (c *Client) resolveTag(ctx context.Context, name string) (int, error) {
	var found []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	search := "/wp-json/wp/v2/tags?per_page=20&search=" + url.QueryEscape(name)
	if err := c.do(ctx, http.MethodGet, search, nil, &found); err != nil {
		return 0, err
	}
	for _, t := range found {
		if strings.EqualFold(t.Name, name) {
			return t.ID, nil
		}
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "/wp-json/wp/v2/tags", map[string]string{"name": name}, &created); err != nil {
		return 0, err
	}
	return created.ID, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.opts.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.SetBasicAuth(c.opts.Username, c.opts.AppPassword)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("wordpress %s %s failed [%d]: %s", method, path, resp.StatusCode, snippet(raw))
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

func snippet(b []byte) string {
	const max = 500
	if len(b) > max {
		return string(b[:max])
	}
	return string(b)
}
