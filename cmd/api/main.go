package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/wolfman30/referral-service/cmd/mainconfig"
	"github.com/wolfman30/referral-service/internal/api/router"
	"github.com/wolfman30/referral-service/internal/appointments"
	appconfig "github.com/wolfman30/referral-service/internal/config"
	"github.com/wolfman30/referral-service/internal/notify"
	"github.com/wolfman30/referral-service/internal/observability/metrics"
	"github.com/wolfman30/referral-service/internal/patients"
	"github.com/wolfman30/referral-service/internal/referral"
	"github.com/wolfman30/referral-service/pkg/logging"
)

func main() {
	// Optional .env for local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting referral service",
		"env", cfg.Env,
		"port", cfg.Port,
		"namespace", cfg.AppNamespace,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	dynamoClient := dynamodb.NewFromConfig(awsCfg)
	patientStore := patients.NewStore(dynamoClient, cfg.PatientProfilesTable(), logger.WithComponent("patients"))
	apptStore := appointments.NewStore(dynamoClient, cfg.AppointmentsTable(), logger.WithComponent("appointments"))

	sender := buildEmailSender(cfg, awsCfg, logger)

	referralMetrics := metrics.NewReferralMetrics(nil)

	service := referral.NewService(referral.ServiceDeps{
		Resolver:        referral.NewResolver(patientStore, logger.WithComponent("resolver")),
		Dispatcher:      referral.NewDispatcher(sender, logger.WithComponent("dispatcher")),
		Appointments:    apptStore,
		Metrics:         referralMetrics,
		Logger:          logger.WithComponent("referral"),
		ReferringDoctor: cfg.ReferringDoctor,
	})

	r := router.New(&router.Config{
		Logger:             logger,
		ReferralHandler:    referral.NewHandler(service, logger.WithComponent("handler")),
		MetricsHandler:     promhttp.Handler(),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// buildEmailSender picks the transport from configuration. With nothing
// configured the disabled sender is wired in: referrals still complete, and
// every send reports the missing transport instead of crashing the process.
func buildEmailSender(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	notifyLogger := logger.WithComponent("notify")

	switch cfg.EmailProvider {
	case "disabled":
		return notify.NewDisabledSender(notifyLogger)
	case "sendgrid":
		if sender := newSendGrid(cfg, notifyLogger); sender != nil {
			return sender
		}
		logger.Warn("sendgrid selected but not configured, email disabled")
		return notify.NewDisabledSender(notifyLogger)
	case "ses":
		if sender := newSES(cfg, awsCfg, notifyLogger); sender != nil {
			return sender
		}
		logger.Warn("ses selected but no sender address configured, email disabled")
		return notify.NewDisabledSender(notifyLogger)
	default: // auto
		if sender := newSendGrid(cfg, notifyLogger); sender != nil {
			return sender
		}
		if sender := newSES(cfg, awsCfg, notifyLogger); sender != nil {
			return sender
		}
		logger.Warn("no email transport configured, email disabled")
		return notify.NewDisabledSender(notifyLogger)
	}
}

func newSendGrid(cfg *appconfig.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.SendGridAPIKey == "" || cfg.FromEmail == "" {
		return nil
	}
	return notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}, logger)
}

func newSES(cfg *appconfig.Config, awsCfg aws.Config, logger *logging.Logger) notify.EmailSender {
	if cfg.FromEmail == "" {
		return nil
	}
	return notify.NewSESSender(sesv2.NewFromConfig(awsCfg), notify.SESConfig{
		FromEmail: cfg.FromEmail,
		FromName:  cfg.FromName,
	}, logger)
}
