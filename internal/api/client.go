// Package api talks to the knowledge-base backend over JSON.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/AndreyChufelin/kbpanel/internal/errmsg"
)

const maxErrorBody = 1 << 20

// ResponseError is returned for every non-2xx answer.
type ResponseError struct {
	Status     int
	StatusText string
	Data       []byte
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("api: %d %s", e.Status, e.StatusText)
}

// Response converts the error into the shape errmsg formats.
func (e *ResponseError) Response() errmsg.Response {
	return errmsg.Response{Status: e.Status, StatusText: e.StatusText, Data: e.Data}
}

// AsResponseError unwraps err to a ResponseError.
func AsResponseError(err error) (*ResponseError, bool) {
	var rerr *ResponseError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient expects httpClient to already carry the auth transport.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", baseURL)
	}
	return &Client{baseURL: u, http: httpClient}, nil
}

func (c *Client) resolve(path string) (string, error) {
	ref, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("invalid api path: %w", err)
	}
	base := *c.baseURL
	base.Path = strings.TrimRight(base.Path, "/") + "/" + strings.TrimLeft(ref.Path, "/")
	base.RawQuery = ref.RawQuery
	return base.String(), nil
}

// Get fetches path relative to the base URL and decodes the JSON body into
// out. out may be nil to discard the body.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	target, err := c.resolve(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &ResponseError{
			Status:     resp.StatusCode,
			StatusText: statusText(resp),
			Data:       data,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(out)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", target, err)
	}
	return nil
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	code := fmt.Sprintf("%d ", resp.StatusCode)
	if text := strings.TrimPrefix(resp.Status, code); text != "" && text != resp.Status {
		return text
	}
	return http.StatusText(resp.StatusCode)
}
