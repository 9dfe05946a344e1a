package telemetry

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iotdash/bridge/internal/upstream"
)

// Source fetches the latest sensor feed batch for one configured channel.
// Channel id, API key and result count are baked into the feed URL at
// construction so they can never be overridden by caller-supplied input.
type Source struct {
	feedURL string
	timeout time.Duration
	client  *upstream.Client
}

func New(client *upstream.Client, baseURL, channelID, apiKey string, results int, timeout time.Duration) *Source {
	q := url.Values{}
	q.Set("api_key", apiKey)
	q.Set("results", strconv.Itoa(results))

	return &Source{
		feedURL: fmt.Sprintf("%s/channels/%s/feeds.json?%s",
			strings.TrimRight(baseURL, "/"), url.PathEscape(channelID), q.Encode()),
		timeout: timeout,
		client:  client,
	}
}

// FetchLatest returns the provider's feed payload byte-for-byte. The call
// is all-or-nothing: any upstream failure yields an error and no data.
func (s *Source) FetchLatest(ctx context.Context) ([]byte, error) {
	payload, err := s.client.GetJSON(ctx, "telemetry fetch", s.feedURL, s.timeout, nil)
	if err != nil {
		return nil, fmt.Errorf("telemetry fetch failed: %w", err)
	}
	return payload, nil
}

// Probe checks reachability for the composite status endpoint. The probe
// shares the fetch budget; ctx may impose a shorter one.
func (s *Source) Probe(ctx context.Context) error {
	if _, err := s.FetchLatest(ctx); err != nil {
		return err
	}
	return nil
}
