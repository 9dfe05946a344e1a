package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Telemetry provider (ThingSpeak)
	TelemetryBaseURL   string        // ex: "https://api.thingspeak.com"
	TelemetryChannelID string        // channel to read feeds from
	TelemetryAPIKey    string        // read key for the channel
	TelemetryResults   int           // number of readings per fetch (default: 50)
	TelemetryTimeout   time.Duration // feed fetch budget (default: 10s)

	// Analytics (ML) service
	MLServiceURL    string        // base URL of the anomaly detection service
	MLHealthTimeout time.Duration // liveness probe budget (default: 5s)
	DetectTimeout   time.Duration // anomaly detection budget (default: 15s)
	TrainTimeout    time.Duration // model retraining budget (default: 20s)
	ReportTimeout   time.Duration // JSON report budget (default: 15s)
	PDFTimeout      time.Duration // PDF response-start budget (default: 20s)

	// Alerting (optional; empty MailAPIURL disables delivery)
	AlertRulesFile string        // path to alerts.yaml (optional)
	MailAPIURL     string        // transactional email endpoint (optional)
	MailAPIKey     string        // bearer key for the email endpoint
	MailTimeout    time.Duration // email delivery budget (default: 10s)

	// Redis-backed alert cooldown (optional; empty addr => in-process cooldown)
	RedisAddr     string
	RedisUser     string
	RedisPassword string
	RedisDB       int

	AllowedOrigins []string // CORS origins for the dashboard ("*" by default)
}

func Load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      getenv("BRIDGE_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("BRIDGE_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("BRIDGE_LOG_LEVEL", "info"),
		PrettyLog: mustBool("BRIDGE_PRETTY_LOG", false),

		// Telemetry provider. Credentials have no defaults on purpose:
		// the process must not serve traffic partially configured.
		TelemetryBaseURL:   getenv("BRIDGE_THINGSPEAK_BASE_URL", "https://api.thingspeak.com"),
		TelemetryChannelID: requireEnv("BRIDGE_THINGSPEAK_CHANNEL_ID"),
		TelemetryAPIKey:    requireEnv("BRIDGE_THINGSPEAK_API_KEY"),
		TelemetryResults:   getenvInt("BRIDGE_THINGSPEAK_RESULTS", 50),
		TelemetryTimeout:   mustDuration("BRIDGE_TELEMETRY_TIMEOUT", 10*time.Second),

		// Analytics service
		MLServiceURL:    requireEnv("BRIDGE_ML_SERVICE_URL"),
		MLHealthTimeout: mustDuration("BRIDGE_ML_HEALTH_TIMEOUT", 5*time.Second),
		DetectTimeout:   mustDuration("BRIDGE_DETECT_TIMEOUT", 15*time.Second),
		TrainTimeout:    mustDuration("BRIDGE_TRAIN_TIMEOUT", 20*time.Second),
		ReportTimeout:   mustDuration("BRIDGE_REPORT_TIMEOUT", 15*time.Second),
		PDFTimeout:      mustDuration("BRIDGE_PDF_TIMEOUT", 20*time.Second),

		// Alerting
		AlertRulesFile: getenv("BRIDGE_ALERT_RULES_FILE", ""),
		MailAPIURL:     getenv("BRIDGE_MAIL_API_URL", ""),
		MailAPIKey:     getenv("BRIDGE_MAIL_API_KEY", ""),
		MailTimeout:    mustDuration("BRIDGE_MAIL_TIMEOUT", 10*time.Second),

		// Alert cooldown store
		RedisAddr:     getenv("BRIDGE_REDIS_ADDR", ""),
		RedisUser:     getenv("BRIDGE_REDIS_USERNAME", "default"),
		RedisPassword: getenv("BRIDGE_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("BRIDGE_REDIS_DB", 0),

		AllowedOrigins: splitAndTrim(getenv("BRIDGE_ALLOWED_ORIGINS", "*")),
	}

	if cfg.TelemetryResults <= 0 {
		panic(fmt.Sprintf("❌ FATAL: BRIDGE_THINGSPEAK_RESULTS must be positive, got %d", cfg.TelemetryResults))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.TelemetryAPIKey = "***REDACTED***"
		if cfg.MailAPIKey != "" {
			cfgCopy.MailAPIKey = "***REDACTED***"
		}
		if cfg.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
