// Package official reads pages, databases and search results through the
// public API. Responses are reshaped into flat records with simplified
// property values; no other processing happens here.
package official

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/jomei/notionapi"

	"github.com/aidanlsb/ntn/internal/logger"
	"github.com/aidanlsb/ntn/internal/notion"
)

// DefaultPageSize is the public API's maximum page size.
const DefaultPageSize = 100

// Options configures a Client.
type Options struct {
	APIKey string
	// BaseURL, when set, replaces the public API origin.
	BaseURL    string
	HTTPClient *http.Client
}

// Client wraps the public API SDK client.
type Client struct {
	api *notionapi.Client
}

// New creates a Client. A missing key is reported on first use.
func New(opts Options) (*Client, error) {
	httpClient := opts.HTTPClient
	if opts.BaseURL != "" {
		target, err := url.Parse(opts.BaseURL)
		if err != nil || target.Host == "" {
			return nil, fmt.Errorf("invalid api base url %q", opts.BaseURL)
		}
		base := http.DefaultTransport
		if httpClient != nil && httpClient.Transport != nil {
			base = httpClient.Transport
		}
		rewritten := &http.Client{Transport: rewriteHost{target: target, next: base}}
		if httpClient != nil {
			rewritten.Timeout = httpClient.Timeout
		}
		httpClient = rewritten
	}

	var clientOpts []notionapi.ClientOption
	if httpClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(httpClient))
	}
	return &Client{api: notionapi.NewClient(notionapi.Token(opts.APIKey), clientOpts...)}, nil
}

// rewriteHost sends requests to target's scheme and host, keeping the path.
type rewriteHost struct {
	target *url.URL
	next   http.RoundTripper
}

func (r rewriteHost) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.URL.Scheme = r.target.Scheme
	req.URL.Host = r.target.Host
	req.Host = r.target.Host
	return r.next.RoundTrip(req)
}

// Page is a page with its properties flattened.
type Page struct {
	ID             string                 `json:"id"`
	Title          string                 `json:"title"`
	URL            string                 `json:"url,omitempty"`
	Archived       bool                   `json:"archived,omitempty"`
	CreatedTime    time.Time              `json:"created_time"`
	LastEditedTime time.Time              `json:"last_edited_time"`
	Properties     map[string]interface{} `json:"properties"`
}

// QueryResult is one page of database rows.
type QueryResult struct {
	Rows       []Page `json:"rows"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// SearchHit is a page or database matched by a search.
type SearchHit struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Title  string `json:"title"`
	URL    string `json:"url,omitempty"`
}

// Page fetches one page.
func (c *Client) Page(ctx context.Context, id string) (*Page, error) {
	logger.Debug("public api", "op", "page", "id", id)
	p, err := c.api.Page.Get(ctx, notionapi.PageID(id))
	if err != nil {
		return nil, wrap("page", err)
	}
	return simplifyPage(*p)
}

// Query returns up to limit rows of a database, following cursors.
func (c *Client) Query(ctx context.Context, databaseID string, limit int) (*QueryResult, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	out := &QueryResult{Rows: []Page{}}
	var cursor notionapi.Cursor
	for len(out.Rows) < limit {
		req := &notionapi.DatabaseQueryRequest{
			PageSize:    min(limit-len(out.Rows), DefaultPageSize),
			StartCursor: cursor,
		}
		logger.Debug("public api", "op", "query", "database", databaseID, "cursor", string(cursor))
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, wrap("query", err)
		}
		for _, p := range resp.Results {
			row, err := simplifyPage(p)
			if err != nil {
				return nil, err
			}
			out.Rows = append(out.Rows, *row)
		}
		out.HasMore = resp.HasMore
		out.NextCursor = string(resp.NextCursor)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	if len(out.Rows) > limit {
		out.Rows = out.Rows[:limit]
	}
	return out, nil
}

// Search returns pages and databases whose title matches query.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 || limit > DefaultPageSize {
		limit = DefaultPageSize
	}
	logger.Debug("public api", "op", "search", "query", query)
	resp, err := c.api.Search.Do(ctx, &notionapi.SearchRequest{Query: query, PageSize: limit})
	if err != nil {
		return nil, wrap("search", err)
	}

	// Results are a mix of object kinds; reshape through JSON.
	data, err := json.Marshal(resp.Results)
	if err != nil {
		return nil, fmt.Errorf("encode search results: %w", err)
	}
	var objects []struct {
		Object     string                     `json:"object"`
		ID         string                     `json:"id"`
		URL        string                     `json:"url"`
		Title      []richText                 `json:"title"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(data, &objects); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}

	hits := make([]SearchHit, 0, len(objects))
	for _, o := range objects {
		hit := SearchHit{Object: o.Object, ID: o.ID, URL: o.URL, Title: plain(o.Title)}
		if o.Object == string(notionapi.ObjectTypePage) {
			_, title, err := simplifyProperties(o.Properties)
			if err != nil {
				return nil, err
			}
			hit.Title = title
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func wrap(op string, err error) error {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%s: %s: %w", op, apiErr.Message, notion.ErrUnauthorized)
		case http.StatusNotFound:
			return fmt.Errorf("%s: %s: %w", op, apiErr.Message, notion.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func simplifyPage(p notionapi.Page) (*Page, error) {
	data, err := json.Marshal(p.Properties)
	if err != nil {
		return nil, fmt.Errorf("encode properties of %s: %w", p.ID, err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode properties of %s: %w", p.ID, err)
	}
	props, title, err := simplifyProperties(raw)
	if err != nil {
		return nil, fmt.Errorf("page %s: %w", p.ID, err)
	}
	return &Page{
		ID:             p.ID.String(),
		Title:          title,
		URL:            p.URL,
		Archived:       p.Archived,
		CreatedTime:    p.CreatedTime,
		LastEditedTime: p.LastEditedTime,
		Properties:     props,
	}, nil
}
