package deps

import (
	"time"

	"github.com/iotdash/bridge/internal/analytics"
	"github.com/iotdash/bridge/internal/logger"
	"github.com/iotdash/bridge/internal/notify"
	"github.com/iotdash/bridge/internal/telemetry"
)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	Telemetry *telemetry.Source // ThingSpeak feed source
	Analytics *analytics.Client // anomaly detection / report service
	Notifier  *notify.Notifier  // async alerting, nil disables it
}

// Now returns the injected clock, falling back to time.Now.
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
