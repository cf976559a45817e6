package detect

import (
	"testing"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

func trackedOffer() *domain.RideOffer {
	return &domain.RideOffer{ID: "offer-1", Source: domain.SourceAppA}
}

func TestTrackerAcceptViaSnapshot(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	var accepted []domain.AppSource
	tr.OnAccepted = func(src domain.AppSource) { accepted = append(accepted, src) }

	base := time.Now()
	tr.OfferEmitted(trackedOffer(), base)
	if got := tr.State(base); got != TrackerOfferPending {
		t.Fatalf("state = %v, want offer_pending", got)
	}

	consumed := tr.ObserveSnapshot(Normalize("A caminho do passageiro"), base.Add(5*time.Second))
	if !consumed {
		t.Fatal("post-accept phrase should be consumed")
	}
	if len(accepted) != 1 || accepted[0] != domain.SourceAppA {
		t.Errorf("OnAccepted calls = %v, want one for app_a", accepted)
	}
	if got := tr.State(base.Add(6 * time.Second)); got != TrackerIdle {
		t.Errorf("state after accept = %v, want idle", got)
	}
}

func TestTrackerAcceptViaClick(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	fired := 0
	tr.OnAccepted = func(domain.AppSource) { fired++ }

	base := time.Now()
	tr.OfferEmitted(trackedOffer(), base)

	if !tr.ObserveClick("Aceitar corrida", base.Add(2*time.Second)) {
		t.Fatal("accept click should be consumed")
	}
	if fired != 1 {
		t.Errorf("OnAccepted fired %d times, want 1", fired)
	}
}

func TestTrackerRejection(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	fired := 0
	tr.OnAccepted = func(domain.AppSource) { fired++ }

	base := time.Now()
	tr.OfferEmitted(trackedOffer(), base)

	consumed := tr.ObserveSnapshot(Normalize("Procurando viagens próximas"), base.Add(3*time.Second))
	if !consumed {
		t.Fatal("rejection phrase should be consumed")
	}
	if fired != 0 {
		t.Error("rejection must not fire OnAccepted")
	}
	if got := tr.State(base.Add(4 * time.Second)); got != TrackerIdle {
		t.Errorf("state after rejection = %v, want idle", got)
	}
}

func TestTrackerWindowExpiry(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	fired := 0
	tr.OnAccepted = func(domain.AppSource) { fired++ }

	base := time.Now()
	tr.OfferEmitted(trackedOffer(), base)

	// Past the window: the tracker is idle and late signals are ignored.
	late := base.Add(31 * time.Second)
	if got := tr.State(late); got != TrackerIdle {
		t.Fatalf("state past window = %v, want idle", got)
	}
	if tr.ObserveSnapshot(Normalize("corrida aceita"), late) {
		t.Error("signal past the window must not be consumed")
	}
	if fired != 0 {
		t.Error("no acceptance should fire past the window")
	}
}

func TestTrackerIdleIgnoresSignals(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	if tr.ObserveSnapshot(Normalize("corrida aceita"), time.Now()) {
		t.Error("idle tracker must not consume snapshots")
	}
	if tr.ObserveClick("aceitar", time.Now()) {
		t.Error("idle tracker must not consume clicks")
	}
}

func TestTrackerNewOfferDisplacesOld(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	var accepted []domain.AppSource
	tr.OnAccepted = func(src domain.AppSource) { accepted = append(accepted, src) }

	base := time.Now()
	tr.OfferEmitted(&domain.RideOffer{ID: "a", Source: domain.SourceAppA}, base)
	tr.OfferEmitted(&domain.RideOffer{ID: "b", Source: domain.SourceAppB}, base.Add(time.Second))

	tr.ObserveSnapshot(Normalize("viagem aceita"), base.Add(2*time.Second))
	if len(accepted) != 1 || accepted[0] != domain.SourceAppB {
		t.Errorf("accepted = %v, want the displacing offer's app_b", accepted)
	}
}

func TestTrackerActiveSource(t *testing.T) {
	tr := NewTracker(30*time.Second, logger.NewNop())
	base := time.Now()

	if _, ok := tr.ActiveSource(base); ok {
		t.Error("idle tracker has no active source")
	}
	tr.OfferEmitted(trackedOffer(), base)
	src, ok := tr.ActiveSource(base.Add(time.Second))
	if !ok || src != domain.SourceAppA {
		t.Errorf("ActiveSource = (%v, %v), want (app_a, true)", src, ok)
	}
}
