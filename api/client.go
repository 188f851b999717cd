package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second
)

// Client talks to a remote document host that stores TOC files, page
// sources and site assets by path.
type Client struct {
	baseURL    string
	user       string
	token      string
	httpClient *http.Client
}

// NewClient creates a new document host client. Requests are sent with basic
// auth when user or token is set.
func NewClient(baseURL, user, token string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		user:    user,
		token:   token,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// request describes one call to the host.
type request struct {
	method      string
	path        string
	body        io.Reader
	contentType string
	accept      string
}

// do executes an HTTP request and returns the response body.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	// Ensure path starts with /
	path := r.path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+path, r.body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.user != "" || c.token != "" {
		req.SetBasicAuth(c.user, c.token)
	}
	if r.accept != "" {
		req.Header.Set("Accept", r.accept)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	// Handle error responses
	if resp.StatusCode >= 400 {
		errResp := ErrorResponse{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(respBody, &errResp); err != nil || errResp.Message == "" && len(errResp.Errors) == 0 {
			errResp.Message = strings.TrimSpace(string(respBody))
			if errResp.Message == "" {
				errResp.Message = http.StatusText(resp.StatusCode)
			}
		}
		errResp.StatusCode = resp.StatusCode
		return nil, &errResp
	}

	return respBody, nil
}

// getJSON performs a GET request and decodes the JSON response into v.
func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, accept: "application/json"})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// Get fetches the raw document at path.
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	return c.do(ctx, request{method: http.MethodGet, path: path})
}

// Put uploads data as the document at path.
func (c *Client) Put(ctx context.Context, path, contentType string, data []byte) error {
	_, err := c.do(ctx, request{
		method:      http.MethodPut,
		path:        path,
		body:        bytes.NewReader(data),
		contentType: contentType,
	})
	return err
}

// Delete removes the document at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, request{method: http.MethodDelete, path: path})
	return err
}
