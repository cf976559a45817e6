package detect

import (
	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// Strategy is one extraction approach: a pure function from snapshot to an
// optional candidate. Strategies are evaluated in priority order with early
// exit, which keeps each one independently testable.
type Strategy interface {
	Name() string
	Extract(snap *domain.ScreenSnapshot, normText string) *domain.ExtractionCandidate
}

// Extractor runs the three extraction strategies in fixed priority order:
// labeled nodes, paired route tokens, generic positional. The first
// strategy to produce a candidate wins.
type Extractor struct {
	strategies []Strategy
	logger     logger.Logger
}

// NewExtractor builds the default strategy chain.
func NewExtractor(minPrice float64, log logger.Logger) *Extractor {
	return &Extractor{
		strategies: []Strategy{
			NewLabeledNodeStrategy(minPrice, log),
			NewRoutePairStrategy(minPrice, log),
			NewPositionalStrategy(minPrice, log),
		},
		logger: log,
	}
}

// Extract returns the first candidate any strategy produces, or nil.
func (e *Extractor) Extract(snap *domain.ScreenSnapshot, normText string) *domain.ExtractionCandidate {
	for _, s := range e.strategies {
		if cand := s.Extract(snap, normText); cand != nil {
			e.logger.Debug("extraction strategy matched",
				logger.String("strategy", s.Name()),
				logger.Float64("price", cand.Price))
			return cand
		}
	}
	return nil
}
