package detect

import (
	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// contextWindow is how many characters around a currency occurrence are
// inspected when scoring it.
const contextWindow = 80

// Context score contributions.
const (
	scoreDistanceToken = 2
	scoreTimeToken     = 2
	scoreActionKeyword = 3
	scoreContextWord   = 1
	scorePlusPrice     = 1
)

// PositionalStrategy is the last-resort extractor: every currency amount in
// the text is scored by its surroundings and the best occurrence, if any,
// anchors the field search. Text after the chosen price belongs to the ride
// leg, text before it to the pickup leg.
type PositionalStrategy struct {
	minPrice float64
	logger   logger.Logger
}

// NewPositionalStrategy creates the generic positional strategy.
func NewPositionalStrategy(minPrice float64, log logger.Logger) *PositionalStrategy {
	return &PositionalStrategy{minPrice: minPrice, logger: log}
}

// Name returns the provenance tag for candidates from this strategy.
func (s *PositionalStrategy) Name() string { return domain.ExtractionPositional }

// Extract scores every plausible price occurrence and builds a candidate
// around the best one. Ties break toward the earliest occurrence. The
// candidate's Score carries the contextual confidence; the selector gate
// decides whether it clears the event's threshold.
func (s *PositionalStrategy) Extract(snap *domain.ScreenSnapshot, normText string) *domain.ExtractionCandidate {
	prices := findPrices(normText, s.minPrice)
	if len(prices) == 0 {
		return nil
	}

	best := -1
	bestScore := -1
	for i, p := range prices {
		score := s.contextScore(normText, p)
		if score > bestScore { // strict: earliest occurrence wins ties
			best, bestScore = i, score
		}
	}

	chosen := prices[best]
	before, after := splitAround(normText, chosen)

	cand := &domain.ExtractionCandidate{
		Source:    s.Name(),
		Price:     chosen.Value,
		PricePos:  chosen.Pos,
		Score:     bestScore,
		HasAction: actionVocab.Contains(normText),
	}

	// After-values are authoritative for the ride leg; a before-value for
	// the same field then describes the pickup leg.
	if d, ok := findDistance(after); ok {
		cand.RideDistanceKm = &d
		if db, okb := findDistance(before); okb {
			cand.PickupDistanceKm = &db
		}
	} else if db, okb := findDistance(before); okb {
		cand.RideDistanceKm = &db
	}

	if t, ok := findTime(after); ok {
		cand.RideTimeMin = &t
		if tb, okb := findTime(before); okb {
			cand.PickupTimeMin = &tb
		}
	} else if tb, okb := findTime(before); okb {
		cand.RideTimeMin = &tb
	}

	if r, ok := findRating(normText); ok {
		cand.UserRating = &r
	}
	return cand
}

// contextScore rates the characters around one currency occurrence.
func (s *PositionalStrategy) contextScore(text string, p priceMatch) int {
	lo := p.Pos - contextWindow
	if lo < 0 {
		lo = 0
	}
	hi := p.End + contextWindow
	if hi > len(text) {
		hi = len(text)
	}
	window := text[lo:hi]

	score := 0
	if distanceRe.MatchString(window) {
		score += scoreDistanceToken
	}
	if timeRe.MatchString(window) {
		score += scoreTimeToken
	}
	if actionVocab.Contains(window) {
		score += scoreActionKeyword
	}
	if rideContextVocab.Contains(window) {
		score += scoreContextWord
	}
	if plusPriceRe.MatchString(window) {
		score += scorePlusPrice
	}
	return score
}

func splitAround(text string, p priceMatch) (before, after string) {
	return text[:p.Pos], text[p.End:]
}
