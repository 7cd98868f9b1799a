package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultUserAgent identifies audiotag to remote services.
const DefaultUserAgent = "audiotagtools"

// maxErrorBody bounds how much of a failed response is kept.
const maxErrorBody = 512

// Client wraps HTTP operations with the headers remote metadata services
// expect.
//
// Example usage:
//
//	client := NewClient("", 0)
//
//	// Fetch raw bytes
//	data, err := client.Get(ctx, "https://coverartarchive.org/release/<mbid>/front")
//
//	// Decode a JSON API response
//	var page artistPage
//	err = client.GetJSON(ctx, baseURL+"/artist", url.Values{"query": {"Tool"}}, &page)
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// NewClient creates a new HTTP client.
//
// An empty userAgent means DefaultUserAgent and a zero timeout means 60
// seconds.
func NewClient(userAgent string, timeout time.Duration) *Client {
	if strings.TrimSpace(userAgent) == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("HTTP %d %s from %s", e.StatusCode, http.StatusText(e.StatusCode), e.URL)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails
//   - The response status is not 200 OK
//   - Reading the body fails
//
// Example:
//
//	data, err := client.Get(ctx, "https://example.com/image.jpg")
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, url, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}

// GetJSON performs a GET request with query parameters and decodes the
// JSON body into out.
//
// Example:
//
//	var page struct{ Artists []artist `json:"artists"` }
//	err := client.GetJSON(ctx, "https://musicbrainz.org/ws/2/artist", url.Values{"query": {"Tool"}}, &page)
func (c *Client) GetJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	resp, err := c.do(ctx, endpoint, "application/json")
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", endpoint, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return resp, nil
}
