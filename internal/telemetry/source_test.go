package telemetry

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/iotdash/bridge/internal/upstream"
)

func TestFetchLatestBuildsCredentialedURL(t *testing.T) {
	var gotPath, gotQuery string
	feed := `{"channel":{"id":3063140},"feeds":[{"created_at":"2026-08-29T10:00:00Z","field1":"21.5","field2":"20.9"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(feed))
	}))
	defer srv.Close()

	src := New(upstream.New(), srv.URL, "3063140", "SECRETKEY", 50, time.Second)
	payload, err := src.FetchLatest(context.Background())
	if err != nil {
		t.Fatalf("FetchLatest() error = %v", err)
	}

	if string(payload) != feed {
		t.Errorf("payload modified in transit:\n got %s\nwant %s", payload, feed)
	}
	if gotPath != "/channels/3063140/feeds.json" {
		t.Errorf("path = %q", gotPath)
	}
	if !strings.Contains(gotQuery, "api_key=SECRETKEY") || !strings.Contains(gotQuery, "results=50") {
		t.Errorf("query = %q, want api_key and results baked in", gotQuery)
	}
}

func TestFetchLatestAllOrNothingOnTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	src := New(upstream.New(), srv.URL, "3063140", "k", 50, 50*time.Millisecond)
	payload, err := src.FetchLatest(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if payload != nil {
		t.Errorf("got partial data alongside error: %q", payload)
	}

	var ue *upstream.Error
	if !errors.As(err, &ue) || ue.Kind != upstream.KindTimeout {
		t.Errorf("error = %v, want wrapped KindTimeout", err)
	}
	if !strings.Contains(err.Error(), "telemetry fetch failed") {
		t.Errorf("error = %v, want domain wrapping", err)
	}
}

func TestProbe(t *testing.T) {
	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"feeds":[]}`))
	}))
	defer healthy.Close()

	if err := New(upstream.New(), healthy.URL, "1", "k", 10, time.Second).Probe(context.Background()); err != nil {
		t.Errorf("Probe() on healthy upstream = %v", err)
	}

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	downURL := down.URL
	down.Close()

	if err := New(upstream.New(), downURL, "1", "k", 10, time.Second).Probe(context.Background()); err == nil {
		t.Error("Probe() on closed upstream = nil, want error")
	}
}
