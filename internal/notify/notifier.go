package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iotdash/bridge/internal/domain"
	"github.com/iotdash/bridge/internal/logger"
)

const queueSize = 16

// Alert is one queued notification task.
type Alert struct {
	Worst      domain.Severity
	Count      int
	Statistics domain.Statistics
	DetectedAt time.Time
}

// Notifier turns successful detection results into fire-and-forget email
// alerts. The HTTP handler only enqueues; a worker goroutine owns delivery,
// so a slow or broken mail API can never delay a response.
type Notifier struct {
	rules    *Rules
	mailer   *Mailer
	suppress Suppressor
	logger   logger.Logger
	queue    chan Alert
	stopCh   chan struct{}
	done     chan struct{}
}

func New(rules *Rules, mailer *Mailer, suppress Suppressor, log logger.Logger) *Notifier {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Notifier{
		rules:    rules,
		mailer:   mailer,
		suppress: suppress,
		logger:   log,
		queue:    make(chan Alert, queueSize),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the delivery worker.
func (n *Notifier) Start(ctx context.Context) error {
	go func() {
		defer close(n.done)
		for {
			select {
			case alert := <-n.queue:
				n.deliver(ctx, alert)
			case <-n.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return nil
}

// Stop signals the worker and waits for it to finish the alert in flight.
func (n *Notifier) Stop() {
	close(n.stopCh)
	<-n.done
}

// Enqueue hands a detection result to the worker when it crosses the alert
// threshold. Never blocks: a full queue drops the alert with a log line.
func (n *Notifier) Enqueue(result domain.DetectionResult) {
	if !n.rules.Match(result) {
		return
	}

	alert := Alert{
		Worst:      result.Worst(),
		Count:      len(result.Anomalies),
		Statistics: result.Statistics,
		DetectedAt: time.Now().UTC(),
	}

	select {
	case n.queue <- alert:
	default:
		n.logger.Warn("alert queue full, dropping alert",
			logger.String("severity", string(alert.Worst)),
			logger.Int("anomalies", alert.Count))
	}
}

func (n *Notifier) deliver(ctx context.Context, alert Alert) {
	if n.suppress != nil && n.suppress.Seen(ctx, string(alert.Worst), n.rules.Cooldown) {
		n.logger.Debug("alert suppressed by cooldown",
			logger.String("severity", string(alert.Worst)))
		return
	}

	err := n.mailer.Send(ctx, n.rules.Recipients, n.rules.Subject, renderAlert(alert))
	if err != nil {
		// Fire-and-forget: log and move on.
		n.logger.Warn("alert delivery failed",
			logger.String("severity", string(alert.Worst)),
			logger.Error(err))
		return
	}
	n.logger.Info("alert delivered",
		logger.String("severity", string(alert.Worst)),
		logger.Int("anomalies", alert.Count))
}

func renderAlert(alert Alert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Anomaly detection flagged %d reading(s), worst severity %s.\n", alert.Count, alert.Worst)
	fmt.Fprintf(&b, "Series: mean %.2f, std %.2f, range %.2f to %.2f.\n",
		alert.Statistics.Mean, alert.Statistics.Std, alert.Statistics.Min, alert.Statistics.Max)
	fmt.Fprintf(&b, "Detected at %s.\n", alert.DetectedAt.Format(time.RFC3339))
	return b.String()
}
