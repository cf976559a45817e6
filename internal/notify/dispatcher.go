// Package notify delivers detection results to the presentation layer.
// The presentation layer (overlay card, floating button) is an external
// collaborator; this package owns only the delivery contract: exactly one
// call per emitted offer, one per acceptance, bounded retry, observable
// loss.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
	"github.com/n2ilva/motorista-inteligente/internal/retry"
)

// PresentationSink receives detection results. Implementations may fail
// transiently (overlay not yet attached); the dispatcher retries.
type PresentationSink interface {
	OfferDetected(ctx context.Context, offer *domain.RideOffer, analysis *domain.RideAnalysis) error
	OfferAccepted(ctx context.Context, source domain.AppSource) error
}

// Dispatcher wraps a sink with bounded retry and loss accounting. Losing an
// offer after exhausting retries is the only way a detected offer
// disappears, and it is always logged and counted.
type Dispatcher struct {
	sink   PresentationSink
	cfg    retry.Config
	logger logger.Logger

	// Hooks for telemetry, optional.
	OnAttemptFailed func()
	OnOfferLost     func()
}

// NewDispatcher creates a dispatcher delivering to sink.
func NewDispatcher(sink PresentationSink, maxAttempts int, initialDelay time.Duration, log logger.Logger) *Dispatcher {
	cfg := retry.DefaultConfig()
	if maxAttempts > 0 {
		cfg.MaxAttempts = maxAttempts
	}
	if initialDelay > 0 {
		cfg.InitialDelay = initialDelay
	}
	return &Dispatcher{sink: sink, cfg: cfg, logger: log}
}

// DeliverOffer pushes one detected offer to the presentation layer.
// Returns an error only after every attempt failed; the offer is then
// definitively lost.
func (d *Dispatcher) DeliverOffer(ctx context.Context, offer *domain.RideOffer, analysis *domain.RideAnalysis) error {
	err := retry.Do(ctx, d.cfg, func() error {
		if derr := d.sink.OfferDetected(ctx, offer, analysis); derr != nil {
			if d.OnAttemptFailed != nil {
				d.OnAttemptFailed()
			}
			return fmt.Errorf("deliver offer %s: %w", offer.ID, derr)
		}
		return nil
	})
	if err != nil {
		d.logger.Error("offer lost: presentation layer unavailable",
			logger.String("offer_id", offer.ID),
			logger.String("app", string(offer.Source)),
			logger.Float64("price", offer.Price),
			logger.Error(err))
		if d.OnOfferLost != nil {
			d.OnOfferLost()
		}
		return err
	}
	return nil
}

// DeliverAcceptance pushes one acceptance signal. Best effort with the same
// retry policy; losses are logged but carry no payload worth resurfacing.
func (d *Dispatcher) DeliverAcceptance(ctx context.Context, source domain.AppSource) error {
	err := retry.Do(ctx, d.cfg, func() error {
		if derr := d.sink.OfferAccepted(ctx, source); derr != nil {
			if d.OnAttemptFailed != nil {
				d.OnAttemptFailed()
			}
			return fmt.Errorf("deliver acceptance: %w", derr)
		}
		return nil
	})
	if err != nil {
		d.logger.Warn("acceptance delivery failed",
			logger.String("app", string(source)),
			logger.Error(err))
	}
	return err
}

// LogSink is the default sink: it just logs. Useful standalone and as the
// fallback when no overlay is attached.
type LogSink struct {
	Logger logger.Logger
}

// OfferDetected logs the offer and its analysis.
func (s *LogSink) OfferDetected(_ context.Context, offer *domain.RideOffer, analysis *domain.RideAnalysis) error {
	fields := []logger.Field{
		logger.String("offer_id", offer.ID),
		logger.String("app", string(offer.Source)),
		logger.Float64("price", offer.Price),
		logger.Float64("ride_km", offer.RideDistanceKm),
		logger.Int("ride_min", offer.RideTimeMin),
		logger.String("strategy", offer.ExtractionSource),
	}
	if analysis != nil {
		fields = append(fields,
			logger.Int("score", analysis.Score),
			logger.String("recommendation", string(analysis.Recommendation)))
	}
	s.Logger.Info("offer detected", fields...)
	return nil
}

// OfferAccepted logs the acceptance.
func (s *LogSink) OfferAccepted(_ context.Context, source domain.AppSource) error {
	s.Logger.Info("offer accepted", logger.String("app", string(source)))
	return nil
}
