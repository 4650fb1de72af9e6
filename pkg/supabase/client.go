package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/gestrans/gestrans-backend/pkg/errors"
)

const (
	restPath                   = "/rest/v1"
	defaultSchema              = "public"
	defaultClientInfo          = "gestrans-api/1.0.0"
	defaultTimeout             = 10 * time.Second
	errorBodyReadLimit   int64 = 4096
	preferRepresentation       = "return=representation"
	preferExactCount           = "count=exact"
)

var (
	errURLRequired    = errors.New("supabase url is required")
	errAPIKeyRequired = errors.New("supabase api key is required")
)

// Client talks to the PostgREST endpoint of a Supabase project.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	schema     string
	clientInfo string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// WithSchema selects the Postgres schema through the profile headers.
func WithSchema(schema string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(schema); trimmed != "" {
			c.schema = trimmed
		}
	}
}

// WithClientInfo overrides the X-Client-Info header.
func WithClientInfo(info string) Option {
	return func(c *Client) {
		if trimmed := strings.TrimSpace(info); trimmed != "" {
			c.clientInfo = trimmed
		}
	}
}

// NewClient builds a client for the project at projectURL.
func NewClient(projectURL, apiKey string, opts ...Option) (*Client, error) {
	trimmedURL := strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if trimmedURL == "" {
		return nil, errURLRequired
	}
	u, err := url.Parse(trimmedURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid supabase url %q", projectURL)
	}
	trimmedKey := strings.TrimSpace(apiKey)
	if trimmedKey == "" {
		return nil, errAPIKeyRequired
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    trimmedURL + restPath,
		apiKey:     trimmedKey,
		schema:     defaultSchema,
		clientInfo: defaultClientInfo,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Eq builds the PostgREST equality operator value for a filter.
func Eq(value string) string {
	return "eq." + value
}

// Select runs GET /table with the given query and decodes the JSON array into out.
func (c *Client) Select(ctx context.Context, table string, query url.Values, out any) error {
	resp, err := c.do(ctx, http.MethodGet, table, query, nil, "")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// Insert posts body and decodes the stored representation into out.
func (c *Client) Insert(ctx context.Context, table string, body any, out any) error {
	resp, err := c.do(ctx, http.MethodPost, table, nil, body, preferRepresentation)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// Update patches the rows matched by query and decodes their new representation into out.
func (c *Client) Update(ctx context.Context, table string, query url.Values, body any, out any) error {
	if len(query) == 0 {
		return fmt.Errorf("supabase: refusing unfiltered update on %s", table)
	}
	resp, err := c.do(ctx, http.MethodPatch, table, query, body, preferRepresentation)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// Delete removes the rows matched by query and decodes the removed representation into out.
func (c *Client) Delete(ctx context.Context, table string, query url.Values, out any) error {
	if len(query) == 0 {
		return fmt.Errorf("supabase: refusing unfiltered delete on %s", table)
	}
	resp, err := c.do(ctx, http.MethodDelete, table, query, nil, preferRepresentation)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return decode(resp, out)
}

// Count issues a HEAD request asking for an exact row count.
func (c *Client) Count(ctx context.Context, table string) (int, error) {
	query := url.Values{"select": []string{"id"}}
	resp, err := c.do(ctx, http.MethodHead, table, query, nil, preferExactCount)
	if err != nil {
		return 0, err
	}
	_ = resp.Body.Close()
	return parseContentRange(resp.Header.Get("Content-Range"))
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, body any, prefer string) (*http.Response, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeBadConfig, "supabase client not configured")
	}

	endpoint := c.buildURL(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s body: %w", table, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("X-Client-Info", c.clientInfo)
	req.Header.Set("Accept", "application/json")
	if method == http.MethodGet || method == http.MethodHead {
		req.Header.Set("Accept-Profile", c.schema)
	} else {
		req.Header.Set("Content-Profile", c.schema)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute supabase request")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		return nil, readAPIError(resp)
	}
	return resp, nil
}

func (c *Client) buildURL(table string) string {
	return fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(strings.Trim(table, "/")))
}

func decode(resp *http.Response, out any) error {
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode supabase response: %w", err)
	}
	return nil
}

// parseContentRange reads the total from "0-24/25" or "*/0".
func parseContentRange(value string) (int, error) {
	idx := strings.LastIndex(value, "/")
	if idx < 0 || idx == len(value)-1 {
		return 0, fmt.Errorf("missing count in content-range %q", value)
	}
	total := value[idx+1:]
	if total == "*" {
		return 0, fmt.Errorf("count not provided in content-range %q", value)
	}
	n, err := strconv.Atoi(total)
	if err != nil {
		return 0, fmt.Errorf("invalid content-range %q: %w", value, err)
	}
	return n, nil
}
