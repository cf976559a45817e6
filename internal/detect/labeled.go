package detect

import (
	"sort"
	"strings"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// nodeCategory is the semantic class of a UI node, derived from its stable
// element identifier (not from the displayed value).
type nodeCategory int

const (
	catUnknown nodeCategory = iota
	catPrice
	catRideDistance
	catRideTime
	catPickupDistance
	catPickupTime
	catAddress
	catAction
	catRating
)

// identifier keyword groups. Checked on the normalized element id.
var (
	idPickupWords   = []string{"pickup", "embarque", "coleta", "busca"}
	idDistanceWords = []string{"distance", "distancia", "km"}
	idTimeWords     = []string{"time", "tempo", "duration", "duracao", "eta"}
	idPriceWords    = []string{"price", "valor", "fare", "preco", "amount", "ganho"}
	idAddressWords  = []string{"address", "endereco", "origem", "origin", "destino", "destination", "dropoff"}
	idActionWords   = []string{"accept", "aceitar", "decline", "recusar", "reject"}
	idRatingWords   = []string{"rating", "avaliacao", "estrela", "star"}
)

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// classifyElementID maps a stable element identifier to a semantic category
// using substring rules. Pickup wins over ride when both qualifiers appear.
func classifyElementID(id string) nodeCategory {
	if id == "" {
		return catUnknown
	}
	n := Normalize(id)
	pickup := containsAny(n, idPickupWords)
	switch {
	case containsAny(n, idPriceWords):
		return catPrice
	case containsAny(n, idDistanceWords) && pickup:
		return catPickupDistance
	case containsAny(n, idTimeWords) && pickup:
		return catPickupTime
	case containsAny(n, idDistanceWords):
		return catRideDistance
	case containsAny(n, idTimeWords):
		return catRideTime
	case containsAny(n, idAddressWords):
		return catAddress
	case containsAny(n, idActionWords):
		return catAction
	case containsAny(n, idRatingWords):
		return catRating
	default:
		return catUnknown
	}
}

// LabeledNodeStrategy extracts a candidate from semantic nodes that carry
// stable identifiers. Highest-priority strategy: when an app labels its
// offer surface, the labels are authoritative.
type LabeledNodeStrategy struct {
	minPrice float64
	logger   logger.Logger
}

// NewLabeledNodeStrategy creates the labeled-node extraction strategy.
func NewLabeledNodeStrategy(minPrice float64, log logger.Logger) *LabeledNodeStrategy {
	return &LabeledNodeStrategy{minPrice: minPrice, logger: log}
}

// Name returns the provenance tag for candidates from this strategy.
func (s *LabeledNodeStrategy) Name() string { return domain.ExtractionLabeledNodes }

// Extract classifies every labeled node, parses field values with
// field-specific patterns, and falls back to traversal-order disambiguation
// for unlabeled distance/time nodes: nodes before the price node belong to
// the pickup leg, nodes after it to the ride leg.
func (s *LabeledNodeStrategy) Extract(snap *domain.ScreenSnapshot, normText string) *domain.ExtractionCandidate {
	if !snap.HasNodes() {
		return nil
	}

	nodes := make([]domain.SemanticNode, len(snap.Nodes))
	copy(nodes, snap.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool {
		return nodes[i].TraversalOrder < nodes[j].TraversalOrder
	})

	cand := &domain.ExtractionCandidate{Source: s.Name()}
	priceOrder := -1
	var addresses []string

	for _, node := range nodes {
		text := Normalize(node.Text)
		if text == "" {
			text = Normalize(node.Description)
		}
		if text == "" {
			continue
		}

		switch classifyElementID(node.ElementID) {
		case catPrice:
			if cand.Price > 0 {
				continue // first labeled price wins
			}
			if v, ok := parsePriceText(text, s.minPrice); ok {
				cand.Price = v
				cand.PricePos = node.TraversalOrder
				priceOrder = node.TraversalOrder
			}
		case catRideDistance:
			if v, ok := parseDistanceText(text); ok && cand.RideDistanceKm == nil {
				cand.RideDistanceKm = &v
			}
		case catRideTime:
			if v, ok := parseTimeText(text); ok && cand.RideTimeMin == nil {
				cand.RideTimeMin = &v
			}
		case catPickupDistance:
			if v, ok := parseDistanceText(text); ok && cand.PickupDistanceKm == nil {
				cand.PickupDistanceKm = &v
			}
		case catPickupTime:
			if v, ok := parseTimeText(text); ok && cand.PickupTimeMin == nil {
				cand.PickupTimeMin = &v
			}
		case catAddress:
			addresses = append(addresses, strings.TrimSpace(node.Text))
		case catAction:
			cand.HasAction = true
		case catRating:
			if v, ok := parseDecimal(text); ok && v >= 1.0 && v <= 5.0 && cand.UserRating == nil {
				cand.UserRating = &v
			}
		case catUnknown:
			// resolved by traversal order below
		}
	}

	if cand.Price <= 0 {
		return nil
	}

	// Price is known but the ride leg is not: attribute unlabeled nodes by
	// traversal order relative to the price node. Before price → pickup,
	// after price → ride.
	if cand.RideDistanceKm == nil || cand.RideTimeMin == nil {
		s.resolveUnlabeled(nodes, priceOrder, cand)
	}

	assignAddresses(cand, addresses)
	if !cand.HasAction {
		cand.HasAction = actionVocab.Contains(normText)
	}
	return cand
}

func (s *LabeledNodeStrategy) resolveUnlabeled(nodes []domain.SemanticNode, priceOrder int, cand *domain.ExtractionCandidate) {
	for _, node := range nodes {
		if classifyElementID(node.ElementID) != catUnknown {
			continue
		}
		text := Normalize(node.Text)
		if text == "" {
			continue
		}
		before := node.TraversalOrder < priceOrder

		if d, ok := findDistance(text); ok {
			if before && cand.PickupDistanceKm == nil {
				cand.PickupDistanceKm = &d
			} else if !before && cand.RideDistanceKm == nil {
				cand.RideDistanceKm = &d
			}
		}
		if t, ok := findTime(text); ok {
			if before && cand.PickupTimeMin == nil {
				cand.PickupTimeMin = &t
			} else if !before && cand.RideTimeMin == nil {
				cand.RideTimeMin = &t
			}
		}
	}
}

// assignAddresses fills pickup/dropoff from labeled address nodes in order.
func assignAddresses(cand *domain.ExtractionCandidate, addresses []string) {
	if cand.PickupAddress == "" && len(addresses) > 0 {
		cand.PickupAddress = addresses[0]
	}
	if cand.DropoffAddress == "" && len(addresses) > 1 {
		cand.DropoffAddress = addresses[1]
	}
}

// parsePriceText parses a price from labeled node text: a currency match
// first, then a bare decimal (labels often render just "18,50").
func parsePriceText(text string, minPrice float64) (float64, bool) {
	if prices := findPrices(text, minPrice); len(prices) > 0 {
		return prices[0].Value, true
	}
	if v, ok := parseDecimal(strings.TrimSpace(text)); ok && v >= minPrice {
		return v, true
	}
	return 0, false
}

func parseDistanceText(text string) (float64, bool) {
	if v, ok := findDistance(text); ok {
		return v, true
	}
	if v, ok := parseDecimal(strings.TrimSpace(text)); ok && v > 0 && v < 300 {
		return v, true
	}
	return 0, false
}

func parseTimeText(text string) (int, bool) {
	if v, ok := findTime(text); ok {
		return v, true
	}
	if v, ok := findHourSpan(text); ok {
		return v, true
	}
	return 0, false
}
