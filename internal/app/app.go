package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"

	"github.com/iotdash/bridge/internal/analytics"
	"github.com/iotdash/bridge/internal/config"
	"github.com/iotdash/bridge/internal/httpserver"
	"github.com/iotdash/bridge/internal/httpserver/deps"
	"github.com/iotdash/bridge/internal/logger"
	"github.com/iotdash/bridge/internal/metrics"
	"github.com/iotdash/bridge/internal/notify"
	"github.com/iotdash/bridge/internal/telemetry"
	"github.com/iotdash/bridge/internal/upstream"
	"github.com/iotdash/bridge/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	notifier    *notify.Notifier
	redisClient *goredis.Client
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		loggerClient.Errorf("Failed to register metrics: %v", err)
		os.Exit(1)
	}

	// One outbound client shared by both upstream wrappers; every call
	// carries its own timeout budget.
	httpClient := upstream.New()

	telemetrySource := telemetry.New(
		httpClient,
		cfg.TelemetryBaseURL,
		cfg.TelemetryChannelID,
		cfg.TelemetryAPIKey,
		cfg.TelemetryResults,
		cfg.TelemetryTimeout,
	)

	analyticsClient := analytics.New(httpClient, cfg.MLServiceURL, analytics.Timeouts{
		Health: cfg.MLHealthTimeout,
		Detect: cfg.DetectTimeout,
		Train:  cfg.TrainTimeout,
		Report: cfg.ReportTimeout,
		PDF:    cfg.PDFTimeout,
	})

	// Alerting is an optional collaborator: a missing rules file or an
	// unreachable cooldown store degrades it, never the gateway.
	rules := notify.DefaultRules()
	if cfg.AlertRulesFile != "" {
		loaded, err := notify.LoadRules(cfg.AlertRulesFile)
		if err != nil {
			loggerClient.Errorf("Failed to load alert rules: %v", err)
			os.Exit(1)
		}
		rules = loaded
		loggerClient.Info("alert rules loaded",
			logger.String("file", cfg.AlertRulesFile),
			logger.Int("recipients", len(rules.Recipients)))
	}

	var suppress notify.Suppressor = notify.NewMemorySuppressor()
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		client, err := notify.ConnectRedis(context.Background(), cfg.RedisAddr, cfg.RedisUser, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			loggerClient.Warn("redis unavailable, using in-process alert cooldown",
				logger.String("addr", cfg.RedisAddr),
				logger.Error(err))
		} else {
			loggerClient.Info("redis alert cooldown store connected",
				logger.String("addr", cfg.RedisAddr))
			redisClient = client
			suppress = notify.NewRedisSuppressor(client, loggerClient)
		}
	}

	mailer := notify.NewMailer(cfg.MailAPIURL, cfg.MailAPIKey, cfg.MailTimeout, loggerClient)
	notifier := notify.New(rules, mailer, suppress, loggerClient)

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,
		TimeNow:   time.Now,
		Telemetry: telemetrySource,
		Analytics: analyticsClient,
		Notifier:  notifier,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		notifier:    notifier,
		redisClient: redisClient,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting bridge v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("bridge %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.notifier.Start(ctx); err != nil {
		return fmt.Errorf("failed to start alert notifier: %w", err)
	}
	a.logger.Info("alert notifier started")

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.notifier.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		}
	}

	a.logger.Info("✅ bridge stopped cleanly")
	return nil
}
