package notify

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iotdash/bridge/internal/domain"
)

// Rules decide which detection results turn into an email alert.
type Rules struct {
	Recipients  []string        `yaml:"recipients"`
	MinSeverity domain.Severity `yaml:"min_severity"`
	MinCount    int             `yaml:"min_count"`
	Cooldown    time.Duration   `yaml:"cooldown"`
	Subject     string          `yaml:"subject"`
}

// DefaultRules alert on any high-severity anomaly, at most once per cooldown.
func DefaultRules() *Rules {
	return &Rules{
		MinSeverity: domain.SeverityHigh,
		MinCount:    1,
		Cooldown:    15 * time.Minute,
		Subject:     "Sensor anomaly alert",
	}
}

// UnmarshalYAML accepts cooldown as a duration string ("30m"). Fields
// absent from the document keep whatever the target already holds.
func (r *Rules) UnmarshalYAML(value *yaml.Node) error {
	aux := struct {
		Recipients  []string        `yaml:"recipients"`
		MinSeverity domain.Severity `yaml:"min_severity"`
		MinCount    *int            `yaml:"min_count"`
		Cooldown    string          `yaml:"cooldown"`
		Subject     string          `yaml:"subject"`
	}{}
	if err := value.Decode(&aux); err != nil {
		return err
	}

	if aux.Recipients != nil {
		r.Recipients = aux.Recipients
	}
	if aux.MinSeverity != "" {
		r.MinSeverity = aux.MinSeverity
	}
	if aux.MinCount != nil {
		r.MinCount = *aux.MinCount
	}
	if aux.Subject != "" {
		r.Subject = aux.Subject
	}
	if aux.Cooldown != "" {
		d, err := time.ParseDuration(aux.Cooldown)
		if err != nil {
			return fmt.Errorf("invalid cooldown %q: %w", aux.Cooldown, err)
		}
		r.Cooldown = d
	}
	return nil
}

// LoadRules reads an alert rule file. Fields left out keep their defaults.
func LoadRules(path string) (*Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read alert rules file: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse alert rules yaml: %w", err)
	}
	if rules.MinCount < 1 {
		rules.MinCount = 1
	}
	if rules.Cooldown < 0 {
		rules.Cooldown = 0
	}
	return rules, nil
}

// Match reports whether a detection result crosses the alert threshold.
func (r *Rules) Match(result domain.DetectionResult) bool {
	if !result.Success || len(result.Anomalies) < r.MinCount {
		return false
	}
	return result.Worst().AtLeast(r.MinSeverity)
}
