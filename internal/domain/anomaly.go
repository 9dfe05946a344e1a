package domain

// Severity classifies anomaly strength.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// rank orders severities so rules can express "medium or worse".
func (s Severity) rank() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as min. An unknown min never
// matches, so a typo in a rule file fails closed.
func (s Severity) AtLeast(min Severity) bool {
	return min.rank() > 0 && s.rank() >= min.rank()
}

// Anomaly is one flagged reading from the detection service.
type Anomaly struct {
	Index         int      `json:"index"`
	Value         float64  `json:"value"`
	Severity      Severity `json:"severity"`
	SeverityScore float64  `json:"severity_score,omitempty"`
}

// Statistics summarizes the series a detection ran over.
type Statistics struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	Mean       float64 `json:"mean"`
	Std        float64 `json:"std"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
}

// DetectionResult is the decoded shape of a detection response. Routes
// pass the upstream payload through byte-for-byte; this type exists for
// the alert notifier and for tests.
type DetectionResult struct {
	Success    bool       `json:"success"`
	Count      int        `json:"count"`
	Anomalies  []Anomaly  `json:"anomalies"`
	Statistics Statistics `json:"statistics"`
}

// Worst returns the highest severity among the anomalies, or "" when
// there are none.
func (d DetectionResult) Worst() Severity {
	var worst Severity
	for _, a := range d.Anomalies {
		if a.Severity.rank() > worst.rank() {
			worst = a.Severity
		}
	}
	return worst
}
