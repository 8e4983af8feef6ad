// Package notion is the document-store collaborator: a thin HTTP client for
// the Notion API exposing the four operations the rest of the system needs
// (query by filter, get page, patch page, create page).
package notion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"
	defaultTimeout = 10 * time.Second
)

type Config struct {
	Token   string
	BaseURL string
	Timeout time.Duration
}

// Client talks to the Notion HTTP API. All calls are bounded by the client
// timeout and the request context, whichever fires first.
type Client struct {
	http *resty.Client
}

func NewClient(cfg Config) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetAuthToken(cfg.Token).
		SetHeader("Notion-Version", apiVersion).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{http: http}
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// QueryRequest is the filter/sort/limit shape accepted by database queries.
type QueryRequest struct {
	Filter   *Filter `json:"filter,omitempty"`
	Sorts    []Sort  `json:"sorts,omitempty"`
	PageSize int     `json:"page_size,omitempty"`
}

type queryResponse struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// QueryDatabase runs a filtered query against a database and returns the
// matching pages in the store's sort order.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) ([]Page, error) {
	var out queryResponse
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&apiErr).
		Post(fmt.Sprintf("/v1/databases/%s/query", databaseID))
	if err != nil {
		return nil, fmt.Errorf("notion query failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notion query returned %d: %s", resp.StatusCode(), apiErr.Message)
	}

	return out.Results, nil
}

// GetPage retrieves a single page with its properties.
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var out Page
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get(fmt.Sprintf("/v1/pages/%s", pageID))
	if err != nil {
		return nil, fmt.Errorf("notion get page failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notion get page returned %d: %s", resp.StatusCode(), apiErr.Message)
	}

	return &out, nil
}

type createPageRequest struct {
	Parent     pageParent          `json:"parent"`
	Properties map[string]Property `json:"properties"`
}

type pageParent struct {
	DatabaseID string `json:"database_id"`
}

// CreatePage appends a new page to a database and returns its id.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]Property) (string, error) {
	var out Page
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(createPageRequest{
			Parent:     pageParent{DatabaseID: databaseID},
			Properties: properties,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/pages")
	if err != nil {
		return "", fmt.Errorf("notion create page failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("notion create page returned %d: %s", resp.StatusCode(), apiErr.Message)
	}

	return out.ID, nil
}

type updatePageRequest struct {
	Properties map[string]Property `json:"properties"`
}

// UpdatePage patches the named properties of a page. Properties not present
// in the map are left untouched.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]Property) error {
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(updatePageRequest{Properties: properties}).
		SetError(&apiErr).
		Patch(fmt.Sprintf("/v1/pages/%s", pageID))
	if err != nil {
		return fmt.Errorf("notion update page failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("notion update page returned %d: %s", resp.StatusCode(), apiErr.Message)
	}

	return nil
}

// Database describes a database's title and property schema. Used by the
// health probe only.
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichTextItem            `json:"title"`
	Properties map[string]PropertySchema `json:"properties"`
}

type PropertySchema struct {
	Type string `json:"type"`
}

// TitleText returns the database title as plain text.
func (d *Database) TitleText() string {
	return joinPlainText(d.Title)
}

// GetDatabase retrieves a database's metadata and schema.
func (c *Client) GetDatabase(ctx context.Context, databaseID string) (*Database, error) {
	var out Database
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&out).
		SetError(&apiErr).
		Get(fmt.Sprintf("/v1/databases/%s", databaseID))
	if err != nil {
		return nil, fmt.Errorf("notion get database failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("notion get database returned %d: %s", resp.StatusCode(), apiErr.Message)
	}

	return &out, nil
}
