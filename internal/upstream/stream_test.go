package upstream

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestStreamPassesBytesThrough(t *testing.T) {
	payload := []byte("%PDF-1.4 fake report body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", `attachment; filename="daily_report.pdf"`)
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	stream, err := New().Stream(context.Background(), "report download", srv.URL, time.Second)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer func() {
		_ = stream.Body.Close()
	}()

	got, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("reading stream: %v", err)
	}
	if string(got) != string(payload) {
		t.Errorf("stream bytes = %q, want %q", got, payload)
	}
	if cd := stream.Header.Get("Content-Disposition"); cd != `attachment; filename="daily_report.pdf"` {
		t.Errorf("Content-Disposition = %q", cd)
	}
}

func TestStreamTimeoutBeforeHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	_, err := New().Stream(context.Background(), "report download", srv.URL, 50*time.Millisecond)
	if ue := classify(t, err); ue.Kind != KindTimeout {
		t.Errorf("Kind = %v, want KindTimeout", ue.Kind)
	}
}

func TestStreamTransferOutlivesTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		// Body arrives well after the response-start budget.
		time.Sleep(150 * time.Millisecond)
		_, _ = w.Write([]byte("late bytes"))
	}))
	defer srv.Close()

	stream, err := New().Stream(context.Background(), "report download", srv.URL, 75*time.Millisecond)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	defer func() {
		_ = stream.Body.Close()
	}()

	got, err := io.ReadAll(stream.Body)
	if err != nil {
		t.Fatalf("reading stream after budget: %v", err)
	}
	if string(got) != "late bytes" {
		t.Errorf("stream bytes = %q", got)
	}
}

func TestStreamCloseCancelsUpstream(t *testing.T) {
	released := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.(http.Flusher).Flush()
		<-r.Context().Done()
		close(released)
	}))
	defer srv.Close()

	stream, err := New().Stream(context.Background(), "report download", srv.URL, time.Second)
	if err != nil {
		t.Fatalf("Stream() error = %v", err)
	}
	_ = stream.Body.Close()

	select {
	case <-released:
	case <-time.After(2 * time.Second):
		t.Error("closing the stream did not release the upstream connection")
	}
}

func TestStreamBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no report", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := New().Stream(context.Background(), "report download", srv.URL, time.Second)
	ue := classify(t, err)
	if ue.Kind != KindBadStatus || ue.Status != http.StatusNotFound {
		t.Errorf("got kind=%v status=%d, want KindBadStatus 404", ue.Kind, ue.Status)
	}
}
