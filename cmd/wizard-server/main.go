// cmd/wizard-server/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"application-wizard/internal/clients"
	"application-wizard/internal/common/aws"
	"application-wizard/internal/common/camunda"
	"application-wizard/internal/common/config"
	"application-wizard/internal/common/database"
	httpclient "application-wizard/internal/common/http"
	"application-wizard/internal/common/logger"
	"application-wizard/internal/common/observability"
	"application-wizard/internal/common/retry"
	"application-wizard/internal/draftstore"
	"application-wizard/internal/server"
	"application-wizard/internal/session"
	"application-wizard/internal/submission"
	"application-wizard/internal/wizard"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting application wizard",
		zap.String("environment", cfg.App.Environment),
		zap.String("policy", cfg.Wizard.Policy),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()

	if err := database.EnsureSchema(ctx, pg.DB); err != nil {
		zapLog.Fatal("schema setup failed", zap.Error(err))
	}
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	redis := database.NewRedis(cfg.Database.Redis)
	err = retryWithBackoff(func() error {
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Optional downstream process ---
	var (
		starter submission.ProcessStarter
		zc      *camunda.Client
	)
	if cfg.Camunda.Enabled {
		err = retryWithBackoff(func() error {
			var err error
			zc, err = camunda.NewClient(&camunda.ClientConfig{
				GatewayAddress:         cfg.Camunda.BrokerAddress,
				UsePlaintextConnection: true,
				RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
			}, log)
			return err
		}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zc.Close()
		starter = zc
		zapLog.Info("Zeebe client connected successfully")
	}

	// --- Optional receipt email ---
	var mailer submission.Mailer
	if cfg.Notifications.Email.Enabled {
		m, err := aws.NewMailer(ctx, cfg.Notifications.AWS.Region, cfg.Notifications.Email.FromEmail)
		if err != nil {
			zapLog.Fatal("ses mailer init failed", zap.Error(err))
		}
		mailer = m
	}

	submitter, err := submission.NewService(&submission.Config{
		Timeout:   config.GetDuration(cfg.Wizard.SubmitTimeout),
		ProcessID: cfg.Camunda.ProcessID,
		Retry:     retry.Default,
		Now:       time.Now,
	}, pg.DB, starter, mailer, obs, log)
	if err != nil {
		zapLog.Fatal("submission service init failed", zap.Error(err))
	}

	// --- Sessions ---
	policy, err := wizard.ParsePolicy(cfg.Wizard.Policy)
	if err != nil {
		zapLog.Fatal("invalid wizard policy", zap.Error(err))
	}

	clientCfg := &clients.Config{
		ProfileBaseURL: cfg.Services.ProfileBaseURL,
		ResumeBaseURL:  cfg.Services.ResumeBaseURL,
		Timeout:        config.GetDuration(cfg.Services.Timeout),
	}
	httpc := httpclient.NewClient(clientCfg.Timeout)

	sessCfg := session.LoadConfig()
	sessCfg.IdleTTL = config.GetDuration(cfg.Server.SessionTTL)
	sessCfg.SweepInterval = config.GetDuration(cfg.Server.SweepInterval)
	sessCfg.Wizard = &wizard.Config{Policy: policy, Now: time.Now}
	sessCfg.Profile.EditProfileURL = cfg.Wizard.EscapeHatches.EditProfileURL
	sessCfg.Profile.FetchTimeout = config.GetDuration(cfg.Wizard.ProfileTimeout)
	sessCfg.Resume.ManageResumesURL = cfg.Wizard.EscapeHatches.ManageResumesURL
	sessCfg.Resume.StoreTimeout = config.GetDuration(cfg.Wizard.Upload.StoreTimeout)
	sessCfg.Resume.Retry = retry.Config{
		MaxAttempts: cfg.Wizard.Upload.MaxAttempts,
		BaseDelay:   config.GetDuration(cfg.Wizard.Upload.BaseDelay),
		MaxDelay:    config.GetDuration(cfg.Wizard.Upload.MaxDelay),
	}

	registry := session.NewRegistry(sessCfg, session.Deps{
		Profiles: clients.NewProfileClient(clientCfg, httpc, log),
		Library:  clients.NewResumeLibraryClient(clientCfg, httpc, log),
		Uploads:  clients.NewUploadStore(pg.DB, log),
		Drafts: draftstore.NewStore(&draftstore.Config{
			TTL:       config.GetDuration(cfg.Draft.TTL),
			KeyPrefix: cfg.Draft.KeyPrefix,
		}, redis.Client, log),
		Submitter: submitter,
	}, log)

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go registry.Run(sweepCtx)

	// --- HTTP API ---
	checks := map[string]server.HealthChecker{
		"postgres": pg.Ping,
		"redis":    redis.Ping,
	}
	if zc != nil {
		checks["camunda"] = zc.HealthCheck
	}
	srvCfg := server.LoadConfig()
	srvCfg.Address = cfg.Server.Address
	srvCfg.AllowedOrigins = cfg.Server.AllowedOrigins
	srv := server.NewServer(srvCfg, registry, checks, log)

	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping server...")
	if err := srv.Shutdown(context.Background()); err != nil {
		zapLog.Error("http server shutdown failed", zap.Error(err))
	}
	stopSweep()
	registry.Shutdown()

	zapLog.Info("Application wizard stopped")
}
