package detect

import (
	"regexp"
	"strings"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// uiNoiseTokens are interface fragments that pollute the text segments
// between route pairs and must never be mistaken for addresses.
var uiNoiseTokens = []string{
	"aceitar", "recusar", "accept", "decline", "ver mais", "detalhes",
	"agora", "novo", "toque para", "deslize", "min", "km", "r$",
}

// roadWords rank a segment as address-like.
var roadWords = []string{
	"rua", "r.", "av", "avenida", "alameda", "travessa", "rodovia",
	"estrada", "praca", "largo", "via",
}

var segmentSplitRe = regexp.MustCompile(`[\n•|]+| - `)

// RoutePairStrategy extracts offers rendered as two back-to-back
// "time (distance)" pairs: the first pair is the pickup leg, the second the
// ride leg. With a single pair it searches forward for an hour-scale route
// expression to recover the ride leg of long trips.
type RoutePairStrategy struct {
	minPrice float64
	logger   logger.Logger
}

// NewRoutePairStrategy creates the paired route-token strategy.
func NewRoutePairStrategy(minPrice float64, log logger.Logger) *RoutePairStrategy {
	return &RoutePairStrategy{minPrice: minPrice, logger: log}
}

// Name returns the provenance tag for candidates from this strategy.
func (s *RoutePairStrategy) Name() string { return domain.ExtractionRoutePairs }

// Extract assigns route legs positionally and pulls addresses from the text
// segments between and after the pairs.
func (s *RoutePairStrategy) Extract(snap *domain.ScreenSnapshot, normText string) *domain.ExtractionCandidate {
	legs := findRouteLegs(normText)
	if len(legs) == 0 {
		return nil
	}

	prices := findPrices(normText, s.minPrice)
	if len(prices) == 0 {
		return nil
	}
	price := prices[0]

	cand := &domain.ExtractionCandidate{
		Source:    s.Name(),
		Price:     price.Value,
		PricePos:  price.Pos,
		HasAction: actionVocab.Contains(normText),
	}

	switch {
	case len(legs) >= 2:
		pickup, ride := legs[0], legs[1]
		cand.PickupTimeMin = &pickup.TimeMin
		cand.PickupDistanceKm = &pickup.DistanceKm
		cand.RideTimeMin = &ride.TimeMin
		cand.RideDistanceKm = &ride.DistanceKm
	default:
		// One pair only. If an hour-scale expression follows it, the pair
		// is the pickup leg of a long trip; otherwise it is the ride leg.
		leg := legs[0]
		tail := normText[leg.End:]
		if mins, ok := findHourSpan(tail); ok {
			cand.PickupTimeMin = &leg.TimeMin
			cand.PickupDistanceKm = &leg.DistanceKm
			cand.RideTimeMin = &mins
			if d, okd := findDistance(tail); okd {
				cand.RideDistanceKm = &d
			}
		} else {
			cand.RideTimeMin = &leg.TimeMin
			cand.RideDistanceKm = &leg.DistanceKm
		}
	}

	s.extractAddresses(snap.RawText, cand)

	if r, ok := findRating(normText); ok {
		cand.UserRating = &r
	}
	return cand
}

// extractAddresses works over the raw (unnormalized) text so street names
// keep their casing and accents for display.
func (s *RoutePairStrategy) extractAddresses(rawText string, cand *domain.ExtractionCandidate) {
	segments := segmentSplitRe.Split(rawText, -1)
	type scored struct {
		text  string
		score int
	}
	var ranked []scored
	for _, seg := range segments {
		seg = strings.TrimSpace(seg)
		if score, ok := addressScore(seg); ok {
			ranked = append(ranked, scored{text: seg, score: score})
		}
	}
	// Stable order: segments appear pickup-first in both apps, so assign in
	// text order rather than by score, using score only as the filter bar.
	var picked []string
	for _, r := range ranked {
		if r.score >= 2 {
			picked = append(picked, r.text)
		}
	}
	if len(picked) > 0 && cand.PickupAddress == "" {
		cand.PickupAddress = picked[0]
	}
	if len(picked) > 1 && cand.DropoffAddress == "" {
		cand.DropoffAddress = picked[1]
	}
}

// addressScore ranks a text segment by address-like features: road-type
// keywords, digits (street numbers) and plausible length. Segments
// dominated by UI noise are rejected outright.
func addressScore(seg string) (int, bool) {
	if len(seg) < 8 || len(seg) > 90 {
		return 0, false
	}
	n := Normalize(seg)
	for _, tok := range uiNoiseTokens {
		if n == tok || strings.HasPrefix(n, tok+" ") {
			return 0, false
		}
	}
	if currencyRe.MatchString(n) || routePairRe.MatchString(n) {
		return 0, false
	}

	score := 0
	for _, w := range roadWords {
		if strings.HasPrefix(n, w+" ") || strings.Contains(n, " "+w+" ") {
			score += 2
			break
		}
	}
	if strings.ContainsAny(seg, "0123456789") {
		score++
	}
	if len(seg) >= 15 {
		score++
	}
	return score, score > 0
}
