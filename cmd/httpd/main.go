// Command httpd runs the ride-offer detector as an HTTP service: snapshot
// ingest, stateless ride analysis, live status and session statistics.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/analysis"
	"github.com/n2ilva/motorista-inteligente/internal/api"
	"github.com/n2ilva/motorista-inteligente/internal/config"
	"github.com/n2ilva/motorista-inteligente/internal/detect"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
	"github.com/n2ilva/motorista-inteligente/internal/notify"
	"github.com/n2ilva/motorista-inteligente/internal/session"
	"github.com/n2ilva/motorista-inteligente/internal/telemetry"
)

const (
	sessionWindow   = 60 * time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfgPath := os.Getenv("CONFIG_FILE")
	if cfgPath == "" {
		cfgPath = "config.yml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		panic(err)
	}

	log := logger.Must(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Development: cfg.Service.Debug,
	})
	defer func() { _ = log.Sync() }()

	log.Info("starting offer detector",
		logger.String("service", cfg.Service.Name),
		logger.String("version", cfg.Service.Version),
		logger.Int("port", cfg.Service.Port))

	tel := telemetry.NewProvider()
	sess := session.NewAggregator(sessionWindow)
	scorer := analysis.NewScorer(analysis.Config{
		RefPricePerKm:      cfg.Economics.RefPricePerKm,
		RefEarningsPerHour: cfg.Economics.RefEarningsPerHour,
		PeakMultiplier:     cfg.Economics.PeakMultiplier,
		MaxPickupKm:        cfg.Economics.MaxPickupKm,
		MaxRideKm:          cfg.Economics.MaxRideKm,
	}, log)

	dispatcher := notify.NewDispatcher(
		&notify.LogSink{Logger: log},
		cfg.Delivery.MaxAttempts,
		cfg.Delivery.InitialDelay,
		log,
	)
	dispatcher.OnAttemptFailed = tel.Metrics.DeliveryFailuresTotal.Inc
	dispatcher.OnOfferLost = tel.Metrics.OffersLostTotal.Inc

	cooldown := detect.NewOCRCooldown(
		cfg.Acquisition.OCRBaseCooldown,
		cfg.Acquisition.OCREmptyTreeCooldown,
		cfg.Acquisition.OCRMaxCooldown,
	)

	pipeline := detect.NewPipeline(cfg, detect.Dependencies{
		Analyzer:  scorer,
		Sink:      dispatcher,
		Recorder:  sess,
		Telemetry: tel,
	}, log)

	handler := api.NewHandler(pipeline, scorer, sess, session.DefaultAdvisory, cooldown, cfg, log)
	server := api.NewServer(handler, api.ServerConfig{
		Port:  cfg.Service.Port,
		Debug: cfg.Service.Debug,
	}, tel.Handler(), log)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		log.Fatal("server error", logger.Error(err))
	case sig := <-shutdown:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info("server stopped gracefully")
	}
}
