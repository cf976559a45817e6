// Command detector reads one snapshot per line (NDJSON) from stdin, runs
// each through the detection pipeline and writes one detection outcome per
// line to stdout. Meant for piping a capture agent into the detector.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/analysis"
	"github.com/n2ilva/motorista-inteligente/internal/config"
	"github.com/n2ilva/motorista-inteligente/internal/detect"
	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
	"github.com/n2ilva/motorista-inteligente/internal/notify"
	"github.com/n2ilva/motorista-inteligente/internal/session"
)

const sessionWindow = 60 * time.Minute

// maxLineBytes bounds one NDJSON line; node-tree snapshots can be large.
const maxLineBytes = 4 << 20

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
		OutputPaths: []string{"stderr"},
	})
	defer func() { _ = log.Sync() }()

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
	sess := session.NewAggregator(sessionWindow)

	pipeline := detect.NewPipeline(cfg, detect.Dependencies{
		Analyzer: scorer,
		Sink:     dispatcher,
		Recorder: sess,
	}, log)

	ctx := context.Background()
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	out := json.NewEncoder(os.Stdout)

	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var snap domain.ScreenSnapshot
		if err := json.Unmarshal(line, &snap); err != nil {
			log.Warn("malformed snapshot line", logger.Error(err))
			continue
		}
		if snap.Event == "" {
			snap.Event = domain.EventContentChange
		}
		if snap.CapturedAt.IsZero() {
			snap.CapturedAt = time.Now()
		}

		outcome := pipeline.Submit(ctx, &snap)
		if err := out.Encode(outcome); err != nil {
			log.Error("failed to write outcome", logger.Error(err))
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatal("stdin read failed", logger.Error(err))
	}
}
