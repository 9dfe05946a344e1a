package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iotdash/bridge/internal/domain"
	"github.com/iotdash/bridge/internal/logger"
)

func highSeverityResult() domain.DetectionResult {
	return domain.DetectionResult{
		Success: true,
		Count:   1,
		Anomalies: []domain.Anomaly{
			{Index: 7, Value: 41.8, Severity: domain.SeverityHigh, SeverityScore: 0.91},
		},
		Statistics: domain.Statistics{Count: 50, Mean: 22.1, Std: 3.4, Min: 18.0, Max: 41.8},
	}
}

func TestLoadRules(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "alerts.yaml")
	content := `
recipients:
  - ops@example.com
  - oncall@example.com
min_severity: medium
min_count: 2
cooldown: 30m
subject: "Greenhouse anomaly"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing rules file: %v", err)
	}

	rules, err := LoadRules(path)
	if err != nil {
		t.Fatalf("LoadRules() error = %v", err)
	}
	if len(rules.Recipients) != 2 || rules.Recipients[0] != "ops@example.com" {
		t.Errorf("Recipients = %v", rules.Recipients)
	}
	if rules.MinSeverity != domain.SeverityMedium {
		t.Errorf("MinSeverity = %q", rules.MinSeverity)
	}
	if rules.MinCount != 2 {
		t.Errorf("MinCount = %d", rules.MinCount)
	}
	if rules.Cooldown != 30*time.Minute {
		t.Errorf("Cooldown = %v", rules.Cooldown)
	}
	if rules.Subject != "Greenhouse anomaly" {
		t.Errorf("Subject = %q", rules.Subject)
	}
}

func TestLoadRulesMissingFile(t *testing.T) {
	if _, err := LoadRules(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("LoadRules() on missing file = nil error")
	}
}

func TestRulesMatch(t *testing.T) {
	rules := &Rules{MinSeverity: domain.SeverityMedium, MinCount: 1}

	tests := []struct {
		name   string
		result domain.DetectionResult
		want   bool
	}{
		{name: "high matches", result: highSeverityResult(), want: true},
		{
			name: "low below threshold",
			result: domain.DetectionResult{Success: true, Anomalies: []domain.Anomaly{
				{Severity: domain.SeverityLow},
			}},
			want: false,
		},
		{name: "unsuccessful result never matches", result: domain.DetectionResult{Success: false}, want: false},
		{name: "no anomalies", result: domain.DetectionResult{Success: true}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := rules.Match(tt.result); got != tt.want {
				t.Errorf("Match() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNotifierDeliversAsync(t *testing.T) {
	delivered := make(chan mailPayload, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}
		body, _ := io.ReadAll(r.Body)
		var p mailPayload
		_ = json.Unmarshal(body, &p)
		delivered <- p
	}))
	defer srv.Close()

	rules := &Rules{
		Recipients:  []string{"ops@example.com"},
		MinSeverity: domain.SeverityHigh,
		MinCount:    1,
		Subject:     "alert",
	}
	mailer := NewMailer(srv.URL, "test-key", time.Second, logger.Nop())
	n := New(rules, mailer, nil, logger.Nop())
	if err := n.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer n.Stop()

	n.Enqueue(highSeverityResult())

	select {
	case p := <-delivered:
		if len(p.To) != 1 || p.To[0] != "ops@example.com" {
			t.Errorf("To = %v", p.To)
		}
		if p.Subject != "alert" {
			t.Errorf("Subject = %q", p.Subject)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("alert never delivered")
	}
}

func TestNotifierBelowThresholdNotQueued(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no delivery expected")
	}))
	defer srv.Close()

	rules := &Rules{MinSeverity: domain.SeverityHigh, MinCount: 1, Recipients: []string{"ops@example.com"}}
	n := New(rules, NewMailer(srv.URL, "", time.Second, logger.Nop()), nil, logger.Nop())
	if err := n.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	n.Enqueue(domain.DetectionResult{Success: true, Anomalies: []domain.Anomaly{{Severity: domain.SeverityLow}}})
	n.Stop()
}

func TestMemorySuppressorCooldown(t *testing.T) {
	s := NewMemorySuppressor()
	ctx := context.Background()

	if s.Seen(ctx, "high", time.Minute) {
		t.Error("first alert should not be suppressed")
	}
	if !s.Seen(ctx, "high", time.Minute) {
		t.Error("second alert inside cooldown should be suppressed")
	}
	if s.Seen(ctx, "medium", time.Minute) {
		t.Error("different key should not be suppressed")
	}
	if s.Seen(ctx, "high", 0) {
		t.Error("zero cooldown disables suppression")
	}
}

func TestMemorySuppressorExpiry(t *testing.T) {
	s := NewMemorySuppressor()
	current := time.Now()
	s.now = func() time.Time { return current }

	ctx := context.Background()
	if s.Seen(ctx, "high", time.Minute) {
		t.Fatal("first alert suppressed")
	}
	current = current.Add(2 * time.Minute)
	if s.Seen(ctx, "high", time.Minute) {
		t.Error("alert after cooldown expiry should not be suppressed")
	}
}

func TestMailerDisabledWithoutEndpoint(t *testing.T) {
	m := NewMailer("", "", time.Second, logger.Nop())
	if err := m.Send(context.Background(), []string{"ops@example.com"}, "s", "t"); err != nil {
		t.Errorf("Send() with no endpoint = %v, want nil", err)
	}
}
