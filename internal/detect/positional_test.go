package detect

import (
	"strings"
	"testing"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

func TestPositionalStrategyBasic(t *testing.T) {
	s := NewPositionalStrategy(5, logger.NewNop())

	text := Normalize("Nova corrida R$ 18,50 7,2 km 15 min Aceitar")
	cand := s.Extract(&domain.ScreenSnapshot{RawText: text}, text)
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Price != 18.50 {
		t.Errorf("Price = %v, want 18.50", cand.Price)
	}
	if cand.RideDistanceKm == nil || *cand.RideDistanceKm != 7.2 {
		t.Errorf("RideDistanceKm = %v, want 7.2", cand.RideDistanceKm)
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 15 {
		t.Errorf("RideTimeMin = %v, want 15", cand.RideTimeMin)
	}
	if !cand.HasAction {
		t.Error("HasAction should be set, text has aceitar")
	}
	if cand.Source != domain.ExtractionPositional {
		t.Errorf("Source = %q", cand.Source)
	}
	// distance + time + action + context word
	wantScore := scoreDistanceToken + scoreTimeToken + scoreActionKeyword + scoreContextWord
	if cand.Score != wantScore {
		t.Errorf("Score = %d, want %d", cand.Score, wantScore)
	}
}

func TestPositionalStrategyPicksContextualPrice(t *testing.T) {
	s := NewPositionalStrategy(5, logger.NewNop())

	// The first amount is an earnings figure far from ride context; the
	// second sits next to distance and time tokens and must win despite
	// coming later.
	filler := strings.Repeat("x ", 60)
	text := Normalize("ganhos de hoje r$ 154,30 " + filler + " corrida r$ 18,50 7,2 km 15 min")
	cand := s.Extract(&domain.ScreenSnapshot{RawText: text}, text)
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Price != 18.50 {
		t.Errorf("Price = %v, want the contextual 18.50", cand.Price)
	}
}

func TestPositionalStrategyTieBreaksEarliest(t *testing.T) {
	s := NewPositionalStrategy(5, logger.NewNop())

	// Two amounts with identical (zero-signal) context: earliest wins.
	filler := strings.Repeat("y ", 60)
	text := Normalize("r$ 9,00 " + filler + " r$ 11,00")
	cand := s.Extract(&domain.ScreenSnapshot{RawText: text}, text)
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Price != 9.00 {
		t.Errorf("Price = %v, want earliest 9.00", cand.Price)
	}
}

func TestPositionalStrategyBeforeAfterLegs(t *testing.T) {
	s := NewPositionalStrategy(5, logger.NewNop())

	// Values both before and after the price: after is the ride leg,
	// before the pickup leg.
	text := Normalize("2,3 km 5 min ate o passageiro r$ 18,50 corrida de 7,2 km 15 min")
	cand := s.Extract(&domain.ScreenSnapshot{RawText: text}, text)
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.RideDistanceKm == nil || *cand.RideDistanceKm != 7.2 {
		t.Errorf("RideDistanceKm = %v, want 7.2", cand.RideDistanceKm)
	}
	if cand.PickupDistanceKm == nil || *cand.PickupDistanceKm != 2.3 {
		t.Errorf("PickupDistanceKm = %v, want 2.3", cand.PickupDistanceKm)
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 15 {
		t.Errorf("RideTimeMin = %v, want 15", cand.RideTimeMin)
	}
	if cand.PickupTimeMin == nil || *cand.PickupTimeMin != 5 {
		t.Errorf("PickupTimeMin = %v, want 5", cand.PickupTimeMin)
	}
}

func TestPositionalStrategyBeforeOnlyIsRide(t *testing.T) {
	s := NewPositionalStrategy(5, logger.NewNop())

	text := Normalize("7,2 km 15 min r$ 18,50")
	cand := s.Extract(&domain.ScreenSnapshot{RawText: text}, text)
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.RideDistanceKm == nil || *cand.RideDistanceKm != 7.2 {
		t.Errorf("RideDistanceKm = %v, want before-value 7.2", cand.RideDistanceKm)
	}
	if cand.PickupDistanceKm != nil {
		t.Error("no pickup leg expected with a single distance")
	}
}

func TestPositionalStrategyNoPrice(t *testing.T) {
	s := NewPositionalStrategy(5, logger.NewNop())
	text := Normalize("7,2 km 15 min sem valor")
	if cand := s.Extract(&domain.ScreenSnapshot{RawText: text}, text); cand != nil {
		t.Error("no price, no candidate")
	}
}
