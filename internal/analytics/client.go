package analytics

import (
	"context"
	"fmt"
	"mime"
	"strings"
	"time"

	"github.com/iotdash/bridge/internal/upstream"
)

// DefaultReportFilename is used when the service does not suggest one.
const DefaultReportFilename = "sensor-report.pdf"

// Timeouts holds the independent per-operation budgets. Inference and
// retraining are slower than a liveness probe, so each operation carries
// its own.
type Timeouts struct {
	Health time.Duration
	Detect time.Duration
	Train  time.Duration
	Report time.Duration
	PDF    time.Duration
}

// Client proxies the anomaly-detection/report service. Every operation is
// independent: a failure in one never affects another.
type Client struct {
	baseURL  string
	timeouts Timeouts
	client   *upstream.Client
}

func New(client *upstream.Client, baseURL string, timeouts Timeouts) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeouts: timeouts,
		client:   client,
	}
}

// Health reports whether the service is reachable, along with its raw
// health payload when it is. Unavailability is a normal outcome here, not
// an error: this feeds the status endpoints, which must degrade gracefully.
func (c *Client) Health(ctx context.Context) (bool, []byte) {
	payload, err := c.client.GetJSON(ctx, "analytics health", c.baseURL+"/health", c.timeouts.Health, nil)
	if err != nil {
		return false, nil
	}
	return true, payload
}

// DetectAnomalies forwards a detection request body and returns the
// service's response byte-for-byte. Either a full result or an error,
// never a mix.
func (c *Client) DetectAnomalies(ctx context.Context, body []byte) ([]byte, error) {
	payload, err := c.client.PostJSON(ctx, "anomaly detection", c.baseURL+"/api/detect-anomalies", body, c.timeouts.Detect, nil)
	if err != nil {
		return nil, fmt.Errorf("anomaly detection failed: %w", err)
	}
	return payload, nil
}

// TrainModel forwards an opaque retraining payload.
func (c *Client) TrainModel(ctx context.Context, body []byte) ([]byte, error) {
	payload, err := c.client.PostJSON(ctx, "model training", c.baseURL+"/api/train-model", body, c.timeouts.Train, nil)
	if err != nil {
		return nil, fmt.Errorf("model training failed: %w", err)
	}
	return payload, nil
}

// FetchReport returns the service's JSON report untouched.
func (c *Client) FetchReport(ctx context.Context) ([]byte, error) {
	payload, err := c.client.GetJSON(ctx, "report fetch", c.baseURL+"/api/report", c.timeouts.Report, nil)
	if err != nil {
		return nil, fmt.Errorf("report fetch failed: %w", err)
	}
	return payload, nil
}

// FetchReportPDF opens the PDF download stream and resolves the suggested
// filename from the upstream Content-Disposition header. The caller owns
// the stream and must close it on every path.
func (c *Client) FetchReportPDF(ctx context.Context) (*upstream.Stream, string, error) {
	stream, err := c.client.Stream(ctx, "report download", c.baseURL+"/api/download-report", c.timeouts.PDF)
	if err != nil {
		return nil, "", fmt.Errorf("report download failed: %w", err)
	}
	return stream, filenameFrom(stream.Header.Get("Content-Disposition")), nil
}

func filenameFrom(disposition string) string {
	if disposition == "" {
		return DefaultReportFilename
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return DefaultReportFilename
	}
	name := strings.TrimSpace(params["filename"])
	// Reject path-ish names so the header can't smuggle directories into
	// the attachment header we emit.
	if name == "" || strings.ContainsAny(name, `/\`) {
		return DefaultReportFilename
	}
	return name
}
