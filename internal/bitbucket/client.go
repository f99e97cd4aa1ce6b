package bitbucket

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	clog "github.com/charmbracelet/log"

	"github.com/jmcampanini/bb-cli/internal/remote"
)

const userAgent = "bb-cli"

var errEmptyBody = errors.New("empty response body")

// Client talks to the Bitbucket Cloud REST API using Basic auth.
type Client struct {
	baseURL  string
	httpCli  *http.Client
	log      *clog.Logger
	secret   string
	username string
}

var _ Bitbucket = &Client{}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpCli = h
	}
}

// New creates a Client for baseURL. An empty username sends requests
// without an Authorization header.
func New(logger *clog.Logger, baseURL, username, secret string, opts ...Option) *Client {
	if logger == nil {
		logger = clog.Default()
	}
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpCli:  &http.Client{},
		log:      logger.WithPrefix("bitbucket"),
		secret:   secret,
		username: username,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// resolveURL uses absolute URLs as-is and joins anything else to the base URL.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}

// do performs a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	target := c.resolveURL(path)

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request for %s: %w", target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.username != "" {
		req.SetBasicAuth(c.username, c.secret)
	}

	c.log.Debug("Requesting", "method", method, "url", target, "auth", c.username != "")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to %s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", target, err)
	}

	c.log.Debug("Response", "status", resp.StatusCode, "url", target, "bytes", len(data))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RequestError{
			Body:   string(data),
			Method: method,
			Status: resp.StatusCode,
			URL:    target,
		}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	return c.sendJSON(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, out any) error {
	data, err := c.do(ctx, method, path, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &DecodeError{Err: errEmptyBody, URL: c.resolveURL(path)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &DecodeError{Err: err, URL: c.resolveURL(path)}
	}
	return nil
}

// List follows a paginated collection starting at path. It stops when a
// page has no next link or once limit values are collected; limit <= 0
// means no limit. Pages are fetched one at a time.
func List[T any](ctx context.Context, c *Client, path string, limit int) ([]T, error) {
	var all []T
	next := path
	pages := 0

	for next != "" {
		var page Page[T]
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, err
		}
		pages++

		all = append(all, page.Values...)
		if limit > 0 && len(all) >= limit {
			all = all[:limit]
			break
		}
		next = page.Next
	}

	c.log.Debug("Paginated list complete", "path", path, "pages", pages, "values", len(all))
	return all, nil
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}

func repoPath(repo remote.Coordinates, segments ...string) string {
	parts := []string{"repositories", url.PathEscape(repo.Workspace), url.PathEscape(repo.Repository)}
	for _, s := range segments {
		parts = append(parts, url.PathEscape(s))
	}
	return "/" + strings.Join(parts, "/")
}
