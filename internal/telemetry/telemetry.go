// Package telemetry provides Prometheus metrics and OpenTelemetry tracing
// for the offer detector.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "offer-detector"

// Metrics holds all detector Prometheus metrics.
type Metrics struct {
	// Pipeline throughput
	SnapshotsTotal *prometheus.CounterVec
	DropsTotal     *prometheus.CounterVec
	OffersEmitted  *prometheus.CounterVec

	// Acceptance tracking
	AcceptancesTotal *prometheus.CounterVec
	TrackerPending   prometheus.Gauge

	// Dedup layer
	QuarantinesTotal prometheus.Counter

	// Acquisition
	OCRRequestsTotal   prometheus.Counter
	OCRSuppressedTotal prometheus.Counter

	// Delivery
	DeliveryFailuresTotal prometheus.Counter
	OffersLostTotal       prometheus.Counter

	// Latency
	ExtractionDuration prometheus.Histogram
}

// Provider wraps the tracer and metrics.
type Provider struct {
	Tracer  trace.Tracer
	Metrics *Metrics

	gatherer prometheus.Gatherer
}

// NewProvider initializes telemetry on the default Prometheus registry.
func NewProvider() *Provider {
	return NewProviderWith(prometheus.DefaultRegisterer)
}

// NewProviderWith registers the detector metrics on the given registerer.
// Tests pass a fresh registry so repeated construction does not collide.
func NewProviderWith(reg prometheus.Registerer) *Provider {
	p := &Provider{
		Tracer:  otel.Tracer(serviceName),
		Metrics: initMetrics(promauto.With(reg)),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		p.gatherer = g
	} else {
		p.gatherer = prometheus.DefaultGatherer
	}
	return p
}

// Handler returns the Prometheus HTTP handler for the /metrics endpoint,
// serving the registry the metrics were registered on.
func (p *Provider) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}

// StartSpan starts a new trace span. The caller ends it with span.End().
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return p.Tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		SnapshotsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "detector_snapshots_total",
			Help: "Snapshots processed, by acquisition channel and trigger event",
		}, []string{"channel", "event"}),
		DropsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "detector_drops_total",
			Help: "Snapshots dropped before emission, by reason",
		}, []string{"reason"}),
		OffersEmitted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "detector_offers_emitted_total",
			Help: "Ride offers emitted, by app and extraction strategy",
		}, []string{"app", "strategy"}),
		AcceptancesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "detector_acceptances_total",
			Help: "Offers observed as accepted, by app",
		}, []string{"app"}),
		TrackerPending: f.NewGauge(prometheus.GaugeOpts{
			Name: "detector_tracker_pending",
			Help: "1 while an emitted offer is being tracked for acceptance",
		}),
		QuarantinesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "detector_price_quarantines_total",
			Help: "Price-only quarantine activations",
		}),
		OCRRequestsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "detector_ocr_requests_total",
			Help: "Image recognition requests issued",
		}),
		OCRSuppressedTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "detector_ocr_suppressed_total",
			Help: "Image recognition requests suppressed by cooldown or in-flight tracking",
		}),
		DeliveryFailuresTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "detector_delivery_failures_total",
			Help: "Failed presentation-layer delivery attempts",
		}),
		OffersLostTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "detector_offers_lost_total",
			Help: "Offers dropped after exhausting delivery retries",
		}),
		ExtractionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "detector_extraction_duration_seconds",
			Help:    "Time spent from snapshot to gate decision",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
	}
}

// RecordSnapshot counts one processed snapshot.
func (p *Provider) RecordSnapshot(channel, event string) {
	p.Metrics.SnapshotsTotal.WithLabelValues(channel, event).Inc()
}

// RecordDrop counts one dropped snapshot.
func (p *Provider) RecordDrop(reason string) {
	p.Metrics.DropsTotal.WithLabelValues(reason).Inc()
}

// RecordOffer counts one emitted offer.
func (p *Provider) RecordOffer(app, strategy string) {
	p.Metrics.OffersEmitted.WithLabelValues(app, strategy).Inc()
}

// RecordExtractionLatency observes the time from snapshot to gate decision.
func (p *Provider) RecordExtractionLatency(took time.Duration) {
	p.Metrics.ExtractionDuration.Observe(took.Seconds())
}

// RecordAcceptance counts one accepted offer.
func (p *Provider) RecordAcceptance(app string) {
	p.Metrics.AcceptancesTotal.WithLabelValues(app).Inc()
}

// SetTrackerPending flips the tracker gauge.
func (p *Provider) SetTrackerPending(pending bool) {
	if pending {
		p.Metrics.TrackerPending.Set(1)
		return
	}
	p.Metrics.TrackerPending.Set(0)
}
