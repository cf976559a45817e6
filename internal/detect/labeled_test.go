package detect

import (
	"testing"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

func TestClassifyElementID(t *testing.T) {
	tests := []struct {
		id   string
		want nodeCategory
	}{
		{"com.app:id/fare_amount", catPrice},
		{"com.app:id/trip_distance", catRideDistance},
		{"com.app:id/trip_time", catRideTime},
		{"com.app:id/pickup_distance", catPickupDistance},
		{"com.app:id/pickup_eta", catPickupTime},
		{"com.app:id/dropoff_address", catAddress},
		{"com.app:id/accept_button", catAction},
		{"com.app:id/rider_rating", catRating},
		{"com.app:id/random_container", catUnknown},
		{"", catUnknown},
	}

	for _, tt := range tests {
		if got := classifyElementID(tt.id); got != tt.want {
			t.Errorf("classifyElementID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}

func labeledSnap(nodes ...domain.SemanticNode) *domain.ScreenSnapshot {
	return &domain.ScreenSnapshot{Nodes: nodes}
}

func TestLabeledNodeStrategyFullOffer(t *testing.T) {
	s := NewLabeledNodeStrategy(5, logger.NewNop())

	snap := labeledSnap(
		domain.SemanticNode{ElementID: "id/pickup_distance", Text: "2,3 km", TraversalOrder: 1},
		domain.SemanticNode{ElementID: "id/pickup_eta", Text: "5 min", TraversalOrder: 2},
		domain.SemanticNode{ElementID: "id/fare_amount", Text: "R$ 18,50", TraversalOrder: 3},
		domain.SemanticNode{ElementID: "id/trip_distance", Text: "7,2 km", TraversalOrder: 4},
		domain.SemanticNode{ElementID: "id/trip_time", Text: "15 min", TraversalOrder: 5},
		domain.SemanticNode{ElementID: "id/origin_address", Text: "Rua das Flores, 120", TraversalOrder: 6},
		domain.SemanticNode{ElementID: "id/destination_address", Text: "Avenida Central, 45", TraversalOrder: 7},
		domain.SemanticNode{ElementID: "id/accept_button", Text: "Aceitar", TraversalOrder: 8},
	)

	cand := s.Extract(snap, "")
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Price != 18.50 {
		t.Errorf("Price = %v, want 18.50", cand.Price)
	}
	if cand.PickupDistanceKm == nil || *cand.PickupDistanceKm != 2.3 {
		t.Errorf("PickupDistanceKm = %v, want 2.3", cand.PickupDistanceKm)
	}
	if cand.PickupTimeMin == nil || *cand.PickupTimeMin != 5 {
		t.Errorf("PickupTimeMin = %v, want 5", cand.PickupTimeMin)
	}
	if cand.RideDistanceKm == nil || *cand.RideDistanceKm != 7.2 {
		t.Errorf("RideDistanceKm = %v, want 7.2", cand.RideDistanceKm)
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 15 {
		t.Errorf("RideTimeMin = %v, want 15", cand.RideTimeMin)
	}
	if cand.PickupAddress != "Rua das Flores, 120" {
		t.Errorf("PickupAddress = %q", cand.PickupAddress)
	}
	if cand.DropoffAddress != "Avenida Central, 45" {
		t.Errorf("DropoffAddress = %q", cand.DropoffAddress)
	}
	if !cand.HasAction {
		t.Error("HasAction should be true from labeled accept button")
	}
	if cand.Source != domain.ExtractionLabeledNodes {
		t.Errorf("Source = %q", cand.Source)
	}
}

func TestLabeledNodeStrategyTraversalOrderFallback(t *testing.T) {
	s := NewLabeledNodeStrategy(5, logger.NewNop())

	// Unlabeled distance/time nodes: the one before the price node is the
	// pickup leg, the one after it the ride leg.
	snap := labeledSnap(
		domain.SemanticNode{ElementID: "id/row0", Text: "3 min (1,1 km)", TraversalOrder: 1},
		domain.SemanticNode{ElementID: "id/fare_amount", Text: "22,00", TraversalOrder: 2},
		domain.SemanticNode{ElementID: "id/row1", Text: "18 min (9,4 km)", TraversalOrder: 3},
	)

	cand := s.Extract(snap, "")
	if cand == nil {
		t.Fatal("expected a candidate")
	}
	if cand.Price != 22.00 {
		t.Errorf("Price = %v, want 22.00 from bare decimal label", cand.Price)
	}
	if cand.PickupDistanceKm == nil || *cand.PickupDistanceKm != 1.1 {
		t.Errorf("PickupDistanceKm = %v, want 1.1", cand.PickupDistanceKm)
	}
	if cand.PickupTimeMin == nil || *cand.PickupTimeMin != 3 {
		t.Errorf("PickupTimeMin = %v, want 3", cand.PickupTimeMin)
	}
	if cand.RideDistanceKm == nil || *cand.RideDistanceKm != 9.4 {
		t.Errorf("RideDistanceKm = %v, want 9.4", cand.RideDistanceKm)
	}
	if cand.RideTimeMin == nil || *cand.RideTimeMin != 18 {
		t.Errorf("RideTimeMin = %v, want 18", cand.RideTimeMin)
	}
}

func TestLabeledNodeStrategyFirstPriceWins(t *testing.T) {
	s := NewLabeledNodeStrategy(5, logger.NewNop())

	snap := labeledSnap(
		domain.SemanticNode{ElementID: "id/fare_amount", Text: "R$ 18,50", TraversalOrder: 2},
		domain.SemanticNode{ElementID: "id/old_fare_amount", Text: "R$ 99,00", TraversalOrder: 5},
	)

	cand := s.Extract(snap, "")
	if cand == nil || cand.Price != 18.50 {
		t.Fatalf("expected first labeled price 18.50, got %+v", cand)
	}
}

func TestLabeledNodeStrategyNoNodes(t *testing.T) {
	s := NewLabeledNodeStrategy(5, logger.NewNop())
	if cand := s.Extract(&domain.ScreenSnapshot{RawText: "r$ 18,50"}, "r$ 18,50"); cand != nil {
		t.Error("strategy must not fire without nodes")
	}
}

func TestLabeledNodeStrategyNoPrice(t *testing.T) {
	s := NewLabeledNodeStrategy(5, logger.NewNop())
	snap := labeledSnap(
		domain.SemanticNode{ElementID: "id/trip_distance", Text: "7,2 km", TraversalOrder: 1},
	)
	if cand := s.Extract(snap, ""); cand != nil {
		t.Error("candidate without price must be nil")
	}
}

func TestLabeledNodeStrategyRating(t *testing.T) {
	s := NewLabeledNodeStrategy(5, logger.NewNop())
	snap := labeledSnap(
		domain.SemanticNode{ElementID: "id/fare_amount", Text: "R$ 12,00", TraversalOrder: 1},
		domain.SemanticNode{ElementID: "id/rider_rating", Text: "4,86", TraversalOrder: 2},
	)
	cand := s.Extract(snap, "")
	if cand == nil || cand.UserRating == nil || *cand.UserRating != 4.86 {
		t.Fatalf("expected rating 4.86, got %+v", cand)
	}
}
