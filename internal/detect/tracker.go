package detect

import (
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// TrackerState is the acceptance tracker's position in its state machine.
type TrackerState string

const (
	// TrackerIdle: no offer is being watched.
	TrackerIdle TrackerState = "idle"
	// TrackerOfferPending: an offer was emitted and the tracker is
	// watching subsequent signals inside the detection window.
	TrackerOfferPending TrackerState = "offer_pending"
)

// Tracker observes post-offer signals to detect accept/reject/expire.
// Exactly one offer is tracked at a time; Accepted and Expired are
// transient transitions straight back to Idle. Expiry is applied lazily on
// the next observation or state read, which is equivalent on the pipeline's
// single sequence and keeps the component clock-injectable for tests.
type Tracker struct {
	window time.Duration

	state    TrackerState
	source   domain.AppSource
	offerAt  time.Time
	accepted bool

	// OnAccepted is invoked exactly once per tracked offer when an
	// acceptance signal lands inside the window.
	OnAccepted func(source domain.AppSource)

	logger logger.Logger
}

// NewTracker creates an acceptance tracker with the given detection window.
func NewTracker(window time.Duration, log logger.Logger) *Tracker {
	return &Tracker{window: window, state: TrackerIdle, logger: log}
}

// State returns the current state after applying lazy expiry.
func (t *Tracker) State(now time.Time) TrackerState {
	t.expire(now)
	return t.state
}

// ActiveSource returns the tracked offer's app while OfferPending.
func (t *Tracker) ActiveSource(now time.Time) (domain.AppSource, bool) {
	if t.State(now) != TrackerOfferPending {
		return domain.SourceUnknown, false
	}
	return t.source, true
}

// OfferEmitted enters OfferPending for the given offer. A still-pending
// previous offer is displaced: only the newest emission is tracked.
func (t *Tracker) OfferEmitted(offer *domain.RideOffer, now time.Time) {
	t.state = TrackerOfferPending
	t.source = offer.Source
	t.offerAt = now
	t.accepted = false
	t.logger.Debug("tracking offer for acceptance",
		logger.String("offer_id", offer.ID),
		logger.String("app", string(offer.Source)))
}

// ObserveSnapshot inspects normalized snapshot text for acceptance or
// rejection vocabulary. Returns true when the snapshot was consumed as a
// signal. Callers run this ahead of cooldown/dedup gating so a
// post-acceptance phrase is never missed.
func (t *Tracker) ObserveSnapshot(normText string, now time.Time) bool {
	if t.State(now) != TrackerOfferPending {
		return false
	}

	if rejectVocab.Contains(normText) {
		t.logger.Debug("offer rejection phrase observed",
			logger.Strings("phrases", rejectVocab.Matched(normText)))
		t.clear()
		return true
	}
	if postAcceptVocab.Contains(normText) {
		t.accept(now)
		return true
	}
	return false
}

// ObserveClick inspects tap/click event text for the acceptance vocabulary.
func (t *Tracker) ObserveClick(clickText string, now time.Time) bool {
	if t.State(now) != TrackerOfferPending {
		return false
	}
	if acceptClickVocab.Contains(Normalize(clickText)) {
		t.accept(now)
		return true
	}
	return false
}

func (t *Tracker) accept(now time.Time) {
	if t.accepted {
		// Latched: the aggregator hears about an acceptance exactly once.
		return
	}
	t.accepted = true
	src := t.source
	t.logger.Info("offer accepted",
		logger.String("app", string(src)),
		logger.Duration("after", now.Sub(t.offerAt)))
	t.clear()
	if t.OnAccepted != nil {
		t.OnAccepted(src)
	}
}

func (t *Tracker) expire(now time.Time) {
	if t.state == TrackerOfferPending && now.Sub(t.offerAt) > t.window {
		t.logger.Debug("offer tracking window elapsed",
			logger.String("app", string(t.source)))
		t.clear()
	}
}

func (t *Tracker) clear() {
	t.state = TrackerIdle
	t.source = domain.SourceUnknown
}
