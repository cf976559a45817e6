package detect

import (
	"regexp"
	"strings"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// selfMarkerThreshold: snapshots with this many of our own result-card
// markers are our overlay reflected back at us.
const selfMarkerThreshold = 2

// idTokenRe matches raw element-identifier fragments ("com.foo:id/price",
// "layout/offer_card") that dominate structural-noise snapshots.
var idTokenRe = regexp.MustCompile(`[a-z0-9_.]+:id/[a-z0-9_]+|[a-z0-9_]+/[a-z0-9_]+`)

// structuralNoiseMinTokens is how many identifier fragments, with no ride
// markers present, classify a snapshot as structural noise.
const structuralNoiseMinTokens = 3

// Guard rejects snapshots that must never reach extraction.
type Guard struct {
	logger logger.Logger
}

// NewGuard creates the pre-extraction guard.
func NewGuard(log logger.Logger) *Guard {
	return &Guard{logger: log}
}

// Check returns a non-empty DropReason when the snapshot must be discarded.
func (g *Guard) Check(normText string) domain.DropReason {
	if hits := selfMarkerVocab.Hits(normText); hits >= selfMarkerThreshold {
		g.logger.Debug("self-detection guard tripped",
			logger.Int("marker_hits", hits))
		return domain.DropSelfDetection
	}
	if g.isStructuralNoise(normText) {
		return domain.DropStructuralNoise
	}
	return domain.DropNone
}

// isStructuralNoise detects snapshots dominated by raw element identifiers
// with none of the required ride markers (currency, distance, time).
func (g *Guard) isStructuralNoise(normText string) bool {
	if currencyRe.MatchString(normText) ||
		distanceRe.MatchString(normText) ||
		timeRe.MatchString(normText) {
		return false
	}
	ids := idTokenRe.FindAllString(normText, structuralNoiseMinTokens+1)
	if len(ids) < structuralNoiseMinTokens {
		return false
	}
	// Identifier fragments must dominate, not just appear: compare their
	// combined length against the whole text.
	total := 0
	for _, id := range ids {
		total += len(id)
	}
	return total*2 >= len(strings.TrimSpace(normText))
}

// Gate applies the minimum-signal rule to one extraction candidate: a valid
// price plus either an explicit accept/decline action, or enough
// distance/time/context signal to clear the event's threshold.
// Content-change events are held to a stricter threshold because they fire
// on unrelated scrolling and redraws.
type Gate struct {
	minScore        int
	minContentScore int
	logger          logger.Logger
}

// NewGate creates the minimum-signal gate.
func NewGate(minScore, minContentScore int, log logger.Logger) *Gate {
	return &Gate{minScore: minScore, minContentScore: minContentScore, logger: log}
}

// Admit returns DropNone when the candidate passes, or the reason it failed.
// The candidate's Score is updated to the computed confidence.
func (g *Gate) Admit(cand *domain.ExtractionCandidate, normText string, event domain.EventType) domain.DropReason {
	if cand == nil {
		return domain.DropNoCandidate
	}
	if cand.Price <= 0 {
		return domain.DropNoCandidate
	}

	score := cand.Score
	if s := structuralScore(cand, normText); s > score {
		score = s
	}
	cand.Score = score

	if cand.HasAction {
		return domain.DropNone
	}

	min := g.minScore
	if event == domain.EventContentChange {
		min = g.minContentScore
	}
	if score < min {
		g.logger.Debug("candidate below confidence threshold",
			logger.Int("score", score),
			logger.Int("min", min),
			logger.String("event", string(event)),
			logger.String("strategy", cand.Source))
		return domain.DropLowConfidence
	}
	return domain.DropNone
}

// structuralScore rates a candidate by which fields extraction recovered,
// on the same scale the positional strategy uses for its context score.
func structuralScore(cand *domain.ExtractionCandidate, normText string) int {
	score := 0
	if cand.RideDistanceKm != nil || cand.PickupDistanceKm != nil {
		score += scoreDistanceToken
	}
	if cand.RideTimeMin != nil || cand.PickupTimeMin != nil {
		score += scoreTimeToken
	}
	if cand.HasAction {
		score += scoreActionKeyword
	}
	if rideContextVocab.Contains(normText) {
		score += scoreContextWord
	}
	return score
}
