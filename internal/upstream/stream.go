package upstream

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Stream is an open upstream response whose body has not been read yet.
// Closing the body cancels the outbound request, so the connection is
// released on every exit path, including client disconnect mid-transfer.
type Stream struct {
	Body   io.ReadCloser
	Header http.Header
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	c.cancel()
	return c.ReadCloser.Close()
}

// Stream performs a GET and hands the undecoded body back to the caller.
// The timeout bounds connection establishment and response headers only;
// once headers arrive the transfer is bounded by ctx, not the timeout.
func (c *Client) Stream(ctx context.Context, op, url string, timeout time.Duration) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return nil, &Error{Kind: KindUnreachable, Op: op, Err: err}
	}

	timer := time.AfterFunc(timeout, cancel)
	resp, err := c.http.Do(req)
	expired := !timer.Stop()
	if err != nil {
		cancel()
		if expired {
			return nil, &Error{Kind: KindTimeout, Op: op, Err: err}
		}
		return nil, classifyTransport(op, timeout, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.CopyN(io.Discard, resp.Body, maxErrorBody)
		_ = resp.Body.Close()
		cancel()
		return nil, &Error{Kind: KindBadStatus, Status: resp.StatusCode, Op: op}
	}

	return &Stream{
		Body:   &cancelOnClose{ReadCloser: resp.Body, cancel: cancel},
		Header: resp.Header,
	}, nil
}
