package detect

import (
	"testing"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

func TestRoutePairStrategyTwoLegs(t *testing.T) {
	s := NewRoutePairStrategy(5, logger.NewNop())

	raw := "Nova corrida\nR$ 18,50\n5 min (2,3 km) • Rua das Flores, 120\n15 min (7,2 km) • Avenida Central, 45\nAceitar"
	snap := &domain.ScreenSnapshot{RawText: raw}
	cand := s.Extract(snap, Normalize(raw))
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Price != 18.50 {
		t.Errorf("Price = %v, want 18.50", cand.Price)
	}
	if cand.PickupTimeMin == nil || *cand.PickupTimeMin != 5 ||
		cand.PickupDistanceKm == nil || *cand.PickupDistanceKm != 2.3 {
		t.Errorf("pickup leg = (%v, %v), want (5, 2.3)", cand.PickupTimeMin, cand.PickupDistanceKm)
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 15 ||
		cand.RideDistanceKm == nil || *cand.RideDistanceKm != 7.2 {
		t.Errorf("ride leg = (%v, %v), want (15, 7.2)", cand.RideTimeMin, cand.RideDistanceKm)
	}
	if cand.PickupAddress != "Rua das Flores, 120" {
		t.Errorf("PickupAddress = %q", cand.PickupAddress)
	}
	if cand.DropoffAddress != "Avenida Central, 45" {
		t.Errorf("DropoffAddress = %q", cand.DropoffAddress)
	}
	if !cand.HasAction {
		t.Error("HasAction should be true, text has aceitar")
	}
	if cand.Source != domain.ExtractionRoutePairs {
		t.Errorf("Source = %q", cand.Source)
	}
}

func TestRoutePairStrategyLongTrip(t *testing.T) {
	s := NewRoutePairStrategy(5, logger.NewNop())

	// One pair followed by an hour-scale expression: the pair is the pickup
	// leg of a long trip.
	raw := "R$ 75,00 4 min (1,5 km) depois 1 h 20 ate 65 km"
	cand := s.Extract(&domain.ScreenSnapshot{RawText: raw}, Normalize(raw))
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.PickupTimeMin == nil || *cand.PickupTimeMin != 4 {
		t.Errorf("PickupTimeMin = %v, want 4", cand.PickupTimeMin)
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 80 {
		t.Errorf("RideTimeMin = %v, want 80", cand.RideTimeMin)
	}
	if cand.RideDistanceKm == nil || *cand.RideDistanceKm != 65 {
		t.Errorf("RideDistanceKm = %v, want 65", cand.RideDistanceKm)
	}
}

func TestRoutePairStrategySingleLegIsRide(t *testing.T) {
	s := NewRoutePairStrategy(5, logger.NewNop())

	raw := "R$ 14,00 12 min (6,0 km)"
	cand := s.Extract(&domain.ScreenSnapshot{RawText: raw}, Normalize(raw))
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.PickupTimeMin != nil || cand.PickupDistanceKm != nil {
		t.Error("single pair without hour span must not produce a pickup leg")
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 12 {
		t.Errorf("RideTimeMin = %v, want 12", cand.RideTimeMin)
	}
}

func TestRoutePairStrategyRequiresPrice(t *testing.T) {
	s := NewRoutePairStrategy(5, logger.NewNop())
	raw := "5 min (2,3 km) 15 min (7,2 km)"
	if cand := s.Extract(&domain.ScreenSnapshot{RawText: raw}, Normalize(raw)); cand != nil {
		t.Error("no price, no candidate")
	}
}

func TestAddressScore(t *testing.T) {
	tests := []struct {
		seg    string
		minOK  bool
		atBar  bool // clears the assignment bar (score >= 2)
	}{
		{"Rua das Flores, 120", true, true},
		{"Avenida Paulista, 1578", true, true},
		{"Aceitar", false, false},
		{"R$ 18,50", false, false},
		{"curto", false, false},
		{"texto generico qualquer coisa", true, false},
	}

	for _, tt := range tests {
		score, ok := addressScore(tt.seg)
		if ok != tt.minOK {
			t.Errorf("addressScore(%q) ok = %v, want %v", tt.seg, ok, tt.minOK)
			continue
		}
		if ok && (score >= 2) != tt.atBar {
			t.Errorf("addressScore(%q) = %d, assignment bar want %v", tt.seg, score, tt.atBar)
		}
	}
}
