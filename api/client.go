package api

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

	"github.com/VietCH57/What-to-watch/utils"
)

const maxErrorBodyBytes = 4096

// Client talks to the What to Watch backend. Every mutation goes through
// Mutate so the error taxonomy is uniform: transport failures surface as
// NetworkError, non-2xx responses as ServerError. The client never retries;
// a failed gesture is simply repeated by the user.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = utils.NewHTTPClient()
		httpClient.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Mutate issues a JSON mutation against the backend. The method is chosen
// by call-site semantics: adding a relation is POST, removing is DELETE,
// both with the same payload shape.
func (c *Client) Mutate(ctx context.Context, path string, method string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return &ServerError{Status: res.StatusCode, Body: string(respBody)}
	}

	io.Copy(io.Discard, res.Body)
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Err: err}
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBodyBytes))
		return &ServerError{Status: res.StatusCode, Body: string(respBody)}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
