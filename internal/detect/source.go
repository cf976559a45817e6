package detect

import (
	"strings"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// Default content signatures. Each app has its own header phrasing: app A
// speaks of "corrida" and renders its fare as "r$ 12,50" (spaced), app B
// speaks of "viagem" and renders "r$12,50" (tight). Signatures are matched
// on normalized text.
var (
	defaultAppASignatures = []string{
		"nova corrida", "corrida disponivel", "aceitar corrida",
		"ganho da corrida", "taxa da corrida", "categoria popular",
	}
	defaultAppBSignatures = []string{
		"nova viagem", "solicitacao de viagem", "viagem exclusiva",
		"tarifa dinamica", "aceitar viagem", "taxa de embarque",
	}
	defaultAppAHints = []string{"dispatch.a", "app_a"}
	defaultAppBHints = []string{"dispatch.b", "app_b"}
)

// SourceClassifier decides which monitored app a snapshot belongs to.
// Content signatures win over the platform-reported origin because the
// active window is frequently stale or mismatched during overlay
// transitions; the hint only breaks ties.
type SourceClassifier struct {
	sigA, sigB     *phraseSet
	hintsA, hintsB []string
	logger         logger.Logger
}

// SourceOverrides lets config swap the built-in signatures and hints.
// Empty slices keep the defaults.
type SourceOverrides struct {
	AppASignatures []string
	AppBSignatures []string
	AppAHints      []string
	AppBHints      []string
}

// NewSourceClassifier builds a classifier with the given overrides.
func NewSourceClassifier(ov SourceOverrides, log logger.Logger) *SourceClassifier {
	sigA := ov.AppASignatures
	if len(sigA) == 0 {
		sigA = defaultAppASignatures
	}
	sigB := ov.AppBSignatures
	if len(sigB) == 0 {
		sigB = defaultAppBSignatures
	}
	hintsA := ov.AppAHints
	if len(hintsA) == 0 {
		hintsA = defaultAppAHints
	}
	hintsB := ov.AppBHints
	if len(hintsB) == 0 {
		hintsB = defaultAppBHints
	}
	return &SourceClassifier{
		sigA:   newPhraseSet(normalizeAll(sigA)...),
		sigB:   newPhraseSet(normalizeAll(sigB)...),
		hintsA: normalizeAll(hintsA),
		hintsB: normalizeAll(hintsB),
		logger: log,
	}
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}

// Classify returns the app a normalized snapshot text belongs to, or
// SourceUnknown when neither signature set matches and the hint is
// unrecognized. Callers must drop SourceUnknown rather than guess.
func (c *SourceClassifier) Classify(normText, originHint string) domain.AppSource {
	hitsA := c.sigA.Hits(normText)
	hitsB := c.sigB.Hits(normText)

	switch {
	case hitsA > hitsB:
		return domain.SourceAppA
	case hitsB > hitsA:
		return domain.SourceAppB
	case hitsA > 0:
		// Equal non-zero signature counts: fall through to the hint.
	}

	if src := c.classifyHint(originHint); src.Known() {
		if hitsA == 0 && hitsB == 0 {
			c.logger.Debug("source classified by origin hint only",
				logger.String("hint", originHint),
				logger.String("source", string(src)))
		}
		return src
	}

	return domain.SourceUnknown
}

func (c *SourceClassifier) classifyHint(hint string) domain.AppSource {
	if hint == "" {
		return domain.SourceUnknown
	}
	h := Normalize(hint)
	for _, p := range c.hintsA {
		if strings.Contains(h, p) {
			return domain.SourceAppA
		}
	}
	for _, p := range c.hintsB {
		if strings.Contains(h, p) {
			return domain.SourceAppB
		}
	}
	return domain.SourceUnknown
}
