package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/logger"
	"github.com/iotdash/bridge/internal/metrics"
)

// Report relays the analytics service's JSON report untouched.
func Report(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := d.Analytics.FetchReport(r.Context())
		metrics.ObserveUpstream("ml_service", err)
		if err != nil {
			writeUpstreamError(w, d.Logger, "report fetch", err)
			return
		}
		writeRaw(w, http.StatusOK, payload)
	}
}

// DownloadReport streams the PDF through without buffering the file. The
// upstream connection is closed on every exit path; a client disconnect
// mid-transfer cancels the request context, which tears down the stream.
func DownloadReport(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stream, filename, err := d.Analytics.FetchReportPDF(r.Context())
		metrics.ObserveUpstream("ml_service", err)
		if err != nil {
			writeUpstreamError(w, d.Logger, "report download", err)
			return
		}
		defer func() {
			_ = stream.Body.Close()
		}()

		w.Header().Set("Content-Type", "application/pdf")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		if length := stream.Header.Get("Content-Length"); length != "" {
			w.Header().Set("Content-Length", length)
		}
		w.WriteHeader(http.StatusOK)

		if _, err := io.Copy(w, stream.Body); err != nil {
			// Headers are gone; all we can do is log and drop the stream.
			d.Logger.Warn("report stream interrupted",
				logger.String("filename", filename),
				logger.Error(err))
		}
	}
}
