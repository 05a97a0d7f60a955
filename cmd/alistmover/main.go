package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aleister1102/alistmover/internal/alist"
	"github.com/aleister1102/alistmover/internal/config"
	"github.com/aleister1102/alistmover/internal/httpclient"
	"github.com/aleister1102/alistmover/internal/ledger"
	"github.com/aleister1102/alistmover/internal/logger"
	"github.com/aleister1102/alistmover/internal/monitor"
	"github.com/aleister1102/alistmover/internal/notifier"
	"github.com/aleister1102/alistmover/internal/rslimiter"
	"github.com/aleister1102/alistmover/internal/transfer"
)

func main() {
	flags := ParseFlags()

	gCfg, err := config.LoadGlobalConfig(flags.GlobalConfigFile)
	if err != nil {
		log.Fatalf("[FATAL] Could not load config using path '%s': %v", flags.GlobalConfigFile, err)
	}

	// Flag overrides take precedence over the config file
	if flags.SourcePath != "" {
		gCfg.MonitorConfig.SourcePath = flags.SourcePath
	}
	if flags.DestPath != "" {
		gCfg.MonitorConfig.DestPath = flags.DestPath
	}
	if flags.IntervalSeconds > 0 {
		gCfg.MonitorConfig.CheckIntervalSeconds = flags.IntervalSeconds
	}

	zLogger, err := logger.New(gCfg.LogConfig)
	if err != nil {
		log.Fatalf("[FATAL] Could not initialize logger: %v", err)
	}

	if err := config.ValidateConfig(gCfg); err != nil {
		zLogger.Fatal().Err(err).Msg("Configuration validation failed")
	}
	zLogger.Info().Msg("Configuration loaded and validated")

	// Shared HTTP client for the alist API
	httpClientConfig := httpclient.DefaultHTTPClientConfig()
	httpClientConfig.Timeout = time.Duration(gCfg.AlistConfig.HTTPTimeoutSeconds) * time.Second
	httpClientConfig.InsecureSkipVerify = gCfg.AlistConfig.InsecureSkipVerify
	httpClient, err := httpclient.NewHTTPClient(httpClientConfig, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to create HTTP client")
	}

	retryConfig := httpclient.DefaultRetryHandlerConfig()
	retryConfig.MaxRetries = gCfg.AlistConfig.MaxRetries
	retryConfig.BaseDelay = time.Duration(gCfg.AlistConfig.RetryBaseDelayMs) * time.Millisecond
	retryConfig.MaxDelay = time.Duration(gCfg.AlistConfig.RetryMaxDelayMs) * time.Millisecond
	retryHandler := httpclient.NewRetryHandler(retryConfig, zLogger)

	alistClient, err := alist.NewClient(alist.ClientConfig{
		BaseURL:  gCfg.AlistConfig.URL,
		Token:    gCfg.AlistConfig.Token,
		Username: gCfg.AlistConfig.Username,
		Password: gCfg.AlistConfig.Password,
	}, httpClient, retryHandler, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to create alist client")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Authentication must succeed before anything else starts
	if gCfg.AlistConfig.Token == "" {
		if err := alistClient.Login(ctx); err != nil {
			zLogger.Fatal().Err(err).Msg("Authentication against alist server failed")
		}
	}

	// Probe both directories so misconfiguration fails fast instead of on
	// the first cycle.
	if _, err := alistClient.ListDirectory(ctx, gCfg.MonitorConfig.SourcePath); err != nil {
		zLogger.Fatal().Err(err).Str("path", gCfg.MonitorConfig.SourcePath).Msg("Source directory is not listable")
	}
	if _, err := alistClient.ListDirectory(ctx, gCfg.MonitorConfig.DestPath); err != nil {
		zLogger.Fatal().Err(err).Str("path", gCfg.MonitorConfig.DestPath).Msg("Destination directory is not listable")
	}

	discordNotifier, err := notifier.NewDiscordNotifier(
		zLogger,
		httpClient,
		gCfg.NotificationConfig.RetryAttempts,
		time.Duration(gCfg.NotificationConfig.RetryDelaySeconds)*time.Second,
	)
	if err != nil {
		zLogger.Fatal().Err(err).Msg("Failed to initialize Discord notifier")
	}
	notificationHelper := notifier.NewNotificationHelper(discordNotifier, gCfg.NotificationConfig, zLogger)

	transferLedger, err := ledger.NewLedger(gCfg.LedgerConfig.DatabasePath, zLogger)
	if err != nil {
		zLogger.Fatal().Err(err).Str("path", gCfg.LedgerConfig.DatabasePath).Msg("Failed to open transfer ledger")
	}
	defer func() {
		if err := transferLedger.Close(); err != nil {
			zLogger.Error().Err(err).Msg("Failed to close transfer ledger")
		}
	}()
	zLogger.Info().Int("known_transfers", transferLedger.Count()).Msg("Transfer ledger loaded")

	engine := transfer.NewEngine(alistClient, gCfg.MonitorConfig, notificationHelper, zLogger)
	monitoringService := monitor.NewMonitoringService(
		gCfg.MonitorConfig,
		alistClient,
		engine,
		transferLedger,
		notificationHelper,
		zLogger,
	)

	watchdog := rslimiter.NewWatchdog(gCfg.ResourceLimiterConfig, zLogger)
	watchdog.SetShutdownCallback(cancel)
	watchdog.Start()
	defer watchdog.Stop()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		zLogger.Info().Str("signal", sig.String()).Msg("Received interrupt signal, initiating graceful shutdown...")
		cancel()
	}()

	if err := monitoringService.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		zLogger.Error().Err(err).Msg("Monitoring loop terminated with error")
		os.Exit(1)
	}

	zLogger.Info().Msg("alistmover finished")
}
