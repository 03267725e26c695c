// Package transport implements the generic HTTP data client the engine
// issues all CRUD calls through, plus the authorization interceptor that
// gates every outgoing request on the current session.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"postline/internal/models"
	"postline/internal/observability"
)

// Client is a thin JSON-over-HTTP data client. Endpoints are paths relative
// to the configured base URL.
type Client struct {
	base string
	http *http.Client
	log  *observability.RequestLogger
}

// NewClient builds a Client over the given round tripper. Pass the
// authorization interceptor as rt so every request carries the session
// credential; a nil rt falls back to http.DefaultTransport.
func NewClient(baseURL string, rt http.RoundTripper, logger *observability.Logger) *Client {
	if rt == nil {
		rt = http.DefaultTransport
	}
	return &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Transport: rt},
		log:  observability.NewRequestLogger("transport", logger),
	}
}

// buildURL resolves endpoint plus an optional query argument. A query
// starting with '?' is appended as-is, one containing '=' becomes a query
// string, anything else is treated as a path segment.
func (c *Client) buildURL(endpoint, query string) string {
	url := c.base + endpoint
	switch {
	case query == "":
		return url
	case strings.HasPrefix(query, "?"):
		return url + query
	case strings.Contains(query, "="):
		return url + "?" + query
	default:
		return url + "/" + query
	}
}

func (c *Client) do(ctx context.Context, method, url string, body any) (*http.Response, error) {
	if observability.ExtractCorrelationID(ctx) == "" {
		ctx = observability.WithCorrelationID(ctx, observability.GenerateCorrelationID())
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.LogRequest(ctx, method, url)
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.LogError(ctx, method, url, err)
		return nil, err
	}
	c.log.LogResponse(ctx, method, url, resp.StatusCode)

	if resp.StatusCode >= http.StatusBadRequest {
		resp.Body.Close()
		return nil, models.ErrorFromStatus(resp.StatusCode)
	}
	return resp, nil
}

func decode[T any](resp *http.Response) (T, error) {
	defer resp.Body.Close()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, fmt.Errorf("decoding response body: %w", err)
	}
	return out, nil
}

// GetData fetches a list of T. Transport failures are logged and returned;
// callers that absorb read errors keep their previous state.
func GetData[T any](ctx context.Context, c *Client, endpoint, query string) ([]T, error) {
	resp, err := c.do(ctx, http.MethodGet, c.buildURL(endpoint, query), nil)
	if err != nil {
		return nil, err
	}
	items, err := decode[[]T](resp)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// GetDataObject fetches a single T. An empty or absent body fails the caller.
func GetDataObject[T any](ctx context.Context, c *Client, endpoint, query string) (T, error) {
	var zero T
	resp, err := c.do(ctx, http.MethodGet, c.buildURL(endpoint, query), nil)
	if err != nil {
		return zero, err
	}
	return decode[T](resp)
}

// Save creates a resource with a POST and returns the server's echo of it.
func Save[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var zero T
	resp, err := c.do(ctx, http.MethodPost, c.buildURL(endpoint, ""), body)
	if err != nil {
		return zero, err
	}
	return decode[T](resp)
}

// Update replaces a resource with a PUT and returns the server's echo of it.
func Update[T any](ctx context.Context, c *Client, endpoint string, body any) (T, error) {
	var zero T
	resp, err := c.do(ctx, http.MethodPut, c.buildURL(endpoint, ""), body)
	if err != nil {
		return zero, err
	}
	return decode[T](resp)
}

// Delete removes the resource identified by id under endpoint.
func Delete(ctx context.Context, c *Client, endpoint string, id any) error {
	url := c.buildURL(endpoint, "") + "/" + fmt.Sprint(id)
	resp, err := c.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}
