// Package redmine is a small client for the parts of the Redmine REST API
// used to seed projects: project lookup, issue categories, sub-projects and issues.
package redmine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HeaderAPIKey carries the Redmine API key on every request.
const HeaderAPIKey = "X-Redmine-API-Key"

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Client talks to a single Redmine instance.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the transport default.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// NewClient creates a client for the Redmine instance at baseURL.
func NewClient(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    NormalizeURL(baseURL),
		apiKey:     apiKey,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeURL prefixes a scheme-less URL with http:// and strips one
// trailing slash.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return strings.TrimSuffix(raw, "/")
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Probe fetches the project named by ref. Anything other than 200 OK is an error.
func (c *Client) Probe(ctx context.Context, ref ProjectRef) (*Project, error) {
	const op = "probe project"
	status, data, err := c.roundTrip(ctx, op, http.MethodGet, projectPath(ref, ""), nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, newStatusError(op, status, data)
	}

	var resp projectResponse
	if err := decode(op, status, data, &resp); err != nil {
		return nil, err
	}
	if resp.Project == nil {
		return nil, &APIError{Op: op, StatusCode: status, Body: string(data), Err: errMissingEntity("project")}
	}
	return resp.Project, nil
}

// CheckConnectivity reports whether the project named by ref is reachable
// with the configured key. It wraps Probe for callers that only need a yes
// or no, such as the check command; seeding runs call Probe directly because
// they need the project id.
func (c *Client) CheckConnectivity(ctx context.Context, ref ProjectRef) bool {
	_, err := c.Probe(ctx, ref)
	return err == nil
}

// CreateCategory creates an issue category in the given project.
func (c *Client) CreateCategory(ctx context.Context, project ProjectRef, req CategoryRequest) (*Category, error) {
	var resp categoryResponse
	path := projectPath(project, "/issue_categories")
	if err := c.post(ctx, "create issue category", path, categoryEnvelope{IssueCategory: &req}, &resp); err != nil {
		return nil, err
	}
	if resp.IssueCategory == nil {
		return nil, &APIError{Op: "create issue category", Err: errMissingEntity("issue_category")}
	}
	return resp.IssueCategory, nil
}

// CreateProject creates a project, typically a sub-project of ParentID.
func (c *Client) CreateProject(ctx context.Context, req SubprojectRequest) (*Project, error) {
	var resp projectResponse
	if err := c.post(ctx, "create project", "/projects.json", subprojectEnvelope{Project: &req}, &resp); err != nil {
		return nil, err
	}
	if resp.Project == nil {
		return nil, &APIError{Op: "create project", Err: errMissingEntity("project")}
	}
	return resp.Project, nil
}

// CreateIssue creates an issue.
func (c *Client) CreateIssue(ctx context.Context, req TicketRequest) (*Issue, error) {
	var resp issueResponse
	if err := c.post(ctx, "create issue", "/issues.json", ticketEnvelope{Issue: &req}, &resp); err != nil {
		return nil, err
	}
	if resp.Issue == nil {
		return nil, &APIError{Op: "create issue", Err: errMissingEntity("issue")}
	}
	return resp.Issue, nil
}

func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	status, data, err := c.roundTrip(ctx, op, http.MethodPost, path, body)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return newStatusError(op, status, data)
	}
	return decode(op, status, data, out)
}

func (c *Client) roundTrip(ctx context.Context, op, method, path string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, nil, &APIError{Op: op, Err: fmt.Errorf("encoding request: %w", err)}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, &APIError{Op: op, Err: err}
	}
	req.Header.Set(HeaderAPIKey, c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, &APIError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, nil, &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("reading response: %w", err)}
	}
	return resp.StatusCode, data, nil
}

func decode(op string, status int, data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return &APIError{Op: op, StatusCode: status, Body: string(data), Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

func projectPath(ref ProjectRef, sub string) string {
	return "/projects/" + url.PathEscape(ref.String()) + sub + ".json"
}
