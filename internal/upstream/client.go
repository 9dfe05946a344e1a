package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

const maxErrorBody = 512

// Client performs single outbound HTTP calls with a per-call timeout and
// uniform error classification. It never retries; retry policy, if any,
// belongs to the caller.
type Client struct {
	http *http.Client
}

func New() *Client {
	return &Client{
		// No client-wide timeout: each call carries its own deadline,
		// and streamed bodies must be readable past it.
		http: &http.Client{},
	}
}

// GetJSON performs a GET and returns the raw response body. When out is
// non-nil the body is decoded into it; when out is nil the body is still
// required to be valid JSON. op labels the call in errors and logs.
func (c *Client) GetJSON(ctx context.Context, op, url string, timeout time.Duration, out any) ([]byte, error) {
	return c.callJSON(ctx, op, http.MethodGet, url, nil, timeout, out)
}

// PostJSON performs a POST with a JSON body and returns the raw response
// body, decoding into out when non-nil.
func (c *Client) PostJSON(ctx context.Context, op, url string, body []byte, timeout time.Duration, out any) ([]byte, error) {
	return c.callJSON(ctx, op, http.MethodPost, url, body, timeout, out)
}

func (c *Client) callJSON(ctx context.Context, op, method, url string, body []byte, timeout time.Duration, out any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, &Error{Kind: KindUnreachable, Op: op, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, classifyTransport(op, timeout, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.CopyN(io.Discard, resp.Body, maxErrorBody)
		return nil, &Error{Kind: KindBadStatus, Status: resp.StatusCode, Op: op}
	}

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyTransport(op, timeout, err)
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			return payload, &Error{Kind: KindDecode, Op: op, Err: err}
		}
	} else if !json.Valid(payload) {
		return payload, &Error{Kind: KindDecode, Op: op}
	}
	return payload, nil
}
