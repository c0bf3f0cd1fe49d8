package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Package notion is a minimal client for the Notion REST API covering the
// two calls the importer needs: retrieve a database and create a page.

const (
	defaultBaseURL = "https://api.notion.com/v1"
	apiVersion     = "2022-06-28"

	defaultTimeout = 30 * time.Second
)

// Client talks to the Notion REST API.
type Client struct {
	http    *resty.Client
	baseURL string
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API origin (tests, proxies).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.SetTimeout(timeout)
		}
	}
}

// NewClient builds a client authenticated with the given integration token.
func NewClient(token string, opts ...Option) *Client {
	http := resty.New()
	http.SetTimeout(defaultTimeout)
	http.SetAuthToken(token)
	http.SetHeader("Notion-Version", apiVersion)

	c := &Client{
		http:    http,
		baseURL: defaultBaseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RetrieveDatabase fetches the database object, including its property schema.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var db Database
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&db).
		Get(c.baseURL + "/databases/" + databaseID)
	if err != nil {
		return nil, fmt.Errorf("retrieve database: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}
	return &db, nil
}

// createPageRequest is the page-creation call body.
type createPageRequest struct {
	Parent     pageParent `json:"parent"`
	Properties Properties `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// CreatePage creates one page under the parent database with the given properties.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties Properties) (*Page, error) {
	body := createPageRequest{
		Parent:     pageParent{DatabaseID: databaseID},
		Properties: properties,
	}

	var page Page
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&page).
		Post(c.baseURL + "/pages")
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	if resp.IsError() {
		return nil, decodeAPIError(resp)
	}
	return &page, nil
}

// decodeAPIError turns an error response body into an APIError, falling back
// to a body snippet when the payload is not the documented error shape.
func decodeAPIError(resp *resty.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode()}
	if err := json.Unmarshal(resp.Body(), apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = bodySnippet(resp.Body())
	}
	apiErr.StatusCode = resp.StatusCode()
	return apiErr
}

func bodySnippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 512 {
		return s[:512] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
