package detect

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/n2ilva/motorista-inteligente/internal/config"
	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
	"github.com/n2ilva/motorista-inteligente/internal/telemetry"
)

// Analyzer scores an emitted offer. Implemented by analysis.Scorer.
type Analyzer interface {
	Analyze(offer *domain.RideOffer, now time.Time) *domain.RideAnalysis
}

// DeliverySink receives emitted offers and acceptance signals. Implemented
// by notify.Dispatcher.
type DeliverySink interface {
	DeliverOffer(ctx context.Context, offer *domain.RideOffer, analysis *domain.RideAnalysis) error
	DeliverAcceptance(ctx context.Context, source domain.AppSource) error
}

// SessionRecorder accumulates emitted offers for session statistics.
// Implemented by session.Aggregator.
type SessionRecorder interface {
	RecordOffer(offer *domain.RideOffer)
	MarkAccepted(app domain.AppSource)
}

// Dependencies are the pipeline's external collaborators. Sink and Analyzer
// are required; the rest are optional.
type Dependencies struct {
	Analyzer  Analyzer
	Sink      DeliverySink
	Recorder  SessionRecorder
	Planner   *Planner
	Telemetry *telemetry.Provider

	// Clock overrides time.Now in tests.
	Clock func() time.Time
}

// Pipeline is the detection facade: it runs every submitted snapshot through
// normalization, the acceptance tracker, the self-detection guard, source
// classification, extraction, the confidence gate, debouncing and
// deduplication, and emits the surviving offers through the delivery sink.
//
// Submissions are serialized: detection state (deduper, tracker, pending
// debounce) is mutated under one lock, never concurrently.
type Pipeline struct {
	mu sync.Mutex

	cfg config.DetectionConfig

	classifier *SourceClassifier
	guard      *Guard
	extractor  *Extractor
	gate       *Gate
	deduper    *Deduper
	tracker    *Tracker
	estimator  *Estimator

	deps   Dependencies
	now    func() time.Time
	logger logger.Logger

	// Debounce state. generation invalidates a scheduled timer when a newer
	// candidate displaces it.
	generation int
	pending    *pendingEmission

	lastOffer    *domain.RideOffer
	lastAnalysis *domain.RideAnalysis
}

type pendingEmission struct {
	cand    *domain.ExtractionCandidate
	source  domain.AppSource
	rawText string
	timer   *time.Timer
}

// NewPipeline wires the full detection pipeline from configuration.
func NewPipeline(cfg *config.Config, deps Dependencies, log logger.Logger) *Pipeline {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	d := cfg.Detection

	p := &Pipeline{
		cfg: d,
		classifier: NewSourceClassifier(SourceOverrides{
			AppASignatures: cfg.Sources.AppASignatures,
			AppBSignatures: cfg.Sources.AppBSignatures,
			AppAHints:      cfg.Sources.AppAHints,
			AppBHints:      cfg.Sources.AppBHints,
		}, log),
		guard:     NewGuard(log),
		extractor: NewExtractor(d.MinPlausiblePrice, log),
		gate:      NewGate(d.MinContextScore, d.MinContentChangeScore, log),
		deduper:   NewDeduper(d.SuppressionWindow, d.QuarantineMaxRepeats, d.QuarantineWindow, d.QuarantineDuration, log),
		tracker:   NewTracker(d.AcceptanceWindow, log),
		estimator: NewEstimator(cfg.Estimate.FarePerKm, cfg.Estimate.UrbanSpeedKmh),
		deps:      deps,
		now:       deps.Clock,
		logger:    log,
	}

	p.tracker.OnAccepted = p.onAccepted
	p.deduper.QuarantineActivated = func(domain.AppSource) {
		if deps.Telemetry != nil {
			deps.Telemetry.Metrics.QuarantinesTotal.Inc()
		}
	}
	if deps.Planner != nil && deps.Telemetry != nil {
		deps.Planner.OCRRequested = deps.Telemetry.Metrics.OCRRequestsTotal.Inc
		deps.Planner.OCRSuppressed = deps.Telemetry.Metrics.OCRSuppressedTotal.Inc
	}
	return p
}

// Submit runs one snapshot through the pipeline and returns its disposition.
// On the synchronous emission path (debounce delay zero) the outcome carries
// the offer and its analysis; when an emission is scheduled the offer is
// delivered later through the sink.
func (p *Pipeline) Submit(ctx context.Context, snap *domain.ScreenSnapshot) domain.DetectionOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	started := time.Now()

	if snap != nil && p.deps.Telemetry != nil {
		var span trace.Span
		ctx, span = p.deps.Telemetry.StartSpan(ctx, "detect.submit",
			attribute.String("channel", string(snap.Channel)),
			attribute.String("event", string(snap.Event)))
		defer span.End()
		p.deps.Telemetry.RecordSnapshot(string(snap.Channel), string(snap.Event))
	}
	if snap == nil || snap.Empty() {
		return p.drop(domain.DropEmptySnapshot)
	}

	normText := Normalize(snap.RawText)

	// Acceptance signals are checked before every other gate so a
	// post-acceptance phrase on an otherwise noisy screen is never lost.
	if p.tracker.ObserveSnapshot(normText, now) {
		p.syncTrackerGauge(now)
		return domain.DetectionOutcome{Status: domain.StatusAcceptSignal}
	}
	p.syncTrackerGauge(now)

	if reason := p.guard.Check(normText); reason != domain.DropNone {
		return p.drop(reason)
	}

	source := p.classifier.Classify(normText, snap.OriginAppHint)
	if !source.Known() {
		return p.drop(domain.DropUnknownSource)
	}

	cand := p.extractor.Extract(snap, normText)
	if cand == nil {
		return p.drop(domain.DropNoCandidate)
	}

	if reason := p.gate.Admit(cand, normText, snap.Event); reason != domain.DropNone {
		return p.drop(reason)
	}

	if p.deps.Telemetry != nil {
		p.deps.Telemetry.RecordExtractionLatency(time.Since(started))
	}

	return p.schedule(ctx, cand, source, snap.RawText, now)
}

// SubmitClick feeds a tap/click event's text to the acceptance tracker.
func (p *Pipeline) SubmitClick(text string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	consumed := p.tracker.ObserveClick(text, now)
	p.syncTrackerGauge(now)
	return consumed
}

// AcquireAndProcess runs the acquisition planner for one triggering event
// and submits whatever snapshot it yields. Requires a configured Planner.
func (p *Pipeline) AcquireAndProcess(ctx context.Context, event domain.EventType, windowKey string, emptyTreeApp bool) domain.DetectionOutcome {
	if p.deps.Planner == nil {
		return domain.Dropped(domain.DropEmptySnapshot)
	}
	snap := p.deps.Planner.Acquire(ctx, event, windowKey, emptyTreeApp)
	if snap == nil {
		return p.dropLocked(domain.DropEmptySnapshot)
	}
	snap.Event = event
	return p.Submit(ctx, snap)
}

// schedule debounces the emission: a fresh candidate inside the delay window
// displaces the pending one, so only the final state of a rendering burst is
// emitted. Zero delay emits synchronously.
func (p *Pipeline) schedule(ctx context.Context, cand *domain.ExtractionCandidate, source domain.AppSource, rawText string, now time.Time) domain.DetectionOutcome {
	if p.cfg.DebounceDelay <= 0 {
		return p.emit(ctx, cand, source, rawText, now)
	}

	if p.pending != nil {
		p.pending.timer.Stop()
		p.pending = nil
		if p.deps.Telemetry != nil {
			p.deps.Telemetry.RecordDrop(string(domain.DropSuperseded))
		}
	}

	p.generation++
	gen := p.generation
	pe := &pendingEmission{cand: cand, source: source, rawText: rawText}
	pe.timer = time.AfterFunc(p.cfg.DebounceDelay, func() {
		p.firePending(gen)
	})
	p.pending = pe

	return domain.DetectionOutcome{Status: domain.StatusScheduled}
}

func (p *Pipeline) firePending(gen int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pending == nil || gen != p.generation {
		return
	}
	pe := p.pending
	p.pending = nil
	p.emit(context.Background(), pe.cand, pe.source, pe.rawText, p.now())
}

// emit runs emission-time deduplication, materializes the offer, scores it
// and hands it to the sink. Called with the lock held.
func (p *Pipeline) emit(ctx context.Context, cand *domain.ExtractionCandidate, source domain.AppSource, rawText string, now time.Time) domain.DetectionOutcome {
	fp := CandidateFingerprint(source, cand)
	if reason := p.deduper.Admit(fp, cand.PriceOnly(), now); reason != domain.DropNone {
		return p.drop(reason)
	}

	distKm, timeMin, distEst, timeEst := p.estimator.Resolve(cand)

	offer := &domain.RideOffer{
		ID:                uuid.NewString(),
		Source:            source,
		Price:             cand.Price,
		RideDistanceKm:    distKm,
		RideTimeMin:       timeMin,
		DistanceEstimated: distEst,
		TimeEstimated:     timeEst,
		PickupDistanceKm:  cand.PickupDistanceKm,
		PickupTimeMin:     cand.PickupTimeMin,
		UserRating:        cand.UserRating,
		PickupAddress:     cand.PickupAddress,
		DropoffAddress:    cand.DropoffAddress,
		ExtractionSource:  cand.Source,
		RawTextSample:     truncateSample(rawText, p.cfg.MaxSampleLen),
		DetectedAt:        now,
	}

	analysis := p.deps.Analyzer.Analyze(offer, now)

	p.tracker.OfferEmitted(offer, now)
	p.syncTrackerGauge(now)
	if p.deps.Recorder != nil {
		p.deps.Recorder.RecordOffer(offer)
	}
	if p.deps.Telemetry != nil {
		p.deps.Telemetry.RecordOffer(string(offer.Source), offer.ExtractionSource)
	}

	p.lastOffer = offer
	p.lastAnalysis = analysis

	p.logger.Info("ride offer emitted",
		logger.String("offer_id", offer.ID),
		logger.String("app", string(offer.Source)),
		logger.Float64("price", offer.Price),
		logger.Float64("ride_km", offer.RideDistanceKm),
		logger.Int("ride_min", offer.RideTimeMin),
		logger.String("strategy", offer.ExtractionSource),
		logger.Int("score", analysis.Score),
		logger.String("recommendation", string(analysis.Recommendation)))

	if err := p.deps.Sink.DeliverOffer(ctx, offer, analysis); err != nil {
		p.logger.Error("offer delivery failed", logger.Error(err),
			logger.String("offer_id", offer.ID))
	}

	return domain.DetectionOutcome{
		Status:   domain.StatusScheduled,
		Offer:    offer,
		Analysis: analysis,
	}
}

// onAccepted runs once per tracked offer when an acceptance signal lands.
func (p *Pipeline) onAccepted(source domain.AppSource) {
	if p.deps.Recorder != nil {
		p.deps.Recorder.MarkAccepted(source)
	}
	if p.deps.Telemetry != nil {
		p.deps.Telemetry.RecordAcceptance(string(source))
	}
	if err := p.deps.Sink.DeliverAcceptance(context.Background(), source); err != nil {
		p.logger.Warn("acceptance delivery failed", logger.Error(err))
	}
}

// Status reports the tracker state and the most recently emitted offer.
func (p *Pipeline) Status() (TrackerState, *domain.RideOffer, *domain.RideAnalysis) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.State(p.now()), p.lastOffer, p.lastAnalysis
}

// LastFingerprint returns the most recently admitted dedup fingerprint.
func (p *Pipeline) LastFingerprint() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fp, ok := p.deduper.LastFingerprint()
	if !ok {
		return "", false
	}
	return fp.String(), true
}

// Reset clears dedup and tracker state, for session boundaries.
func (p *Pipeline) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending != nil {
		p.pending.timer.Stop()
		p.pending = nil
	}
	p.deduper.Reset()
	p.lastOffer = nil
	p.lastAnalysis = nil
}

func (p *Pipeline) drop(reason domain.DropReason) domain.DetectionOutcome {
	if p.deps.Telemetry != nil {
		p.deps.Telemetry.RecordDrop(string(reason))
	}
	return domain.Dropped(reason)
}

// dropLocked is drop for paths that do not yet hold the lock.
func (p *Pipeline) dropLocked(reason domain.DropReason) domain.DetectionOutcome {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.drop(reason)
}

func (p *Pipeline) syncTrackerGauge(now time.Time) {
	if p.deps.Telemetry != nil {
		p.deps.Telemetry.SetTrackerPending(p.tracker.State(now) == TrackerOfferPending)
	}
}

// truncateSample bounds an audit sample to max runes.
func truncateSample(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
