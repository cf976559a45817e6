package detect

import (
	ahocorasick "github.com/cloudflare/ahocorasick"
)

// phraseSet is a fixed vocabulary matched in a single Aho-Corasick pass.
// Phrases must already be in normalized form (lowercase, accent-folded).
type phraseSet struct {
	phrases []string
	matcher *ahocorasick.Matcher
}

func newPhraseSet(phrases ...string) *phraseSet {
	return &phraseSet{
		phrases: phrases,
		matcher: ahocorasick.NewStringMatcher(phrases),
	}
}

// Hits returns how many distinct phrases occur in text.
func (p *phraseSet) Hits(text string) int {
	if text == "" {
		return 0
	}
	return len(p.matcher.Match([]byte(text)))
}

// Contains reports whether at least one phrase occurs in text.
func (p *phraseSet) Contains(text string) bool {
	return p.Hits(text) > 0
}

// Matched returns the distinct phrases found in text, for diagnostics.
func (p *phraseSet) Matched(text string) []string {
	hits := p.matcher.Match([]byte(text))
	out := make([]string, 0, len(hits))
	for _, i := range hits {
		if i < len(p.phrases) {
			out = append(out, p.phrases[i])
		}
	}
	return out
}

// Detection vocabularies. All normalized; Portuguese first since both
// monitored apps render pt-BR, with the English strings some builds leak.
var (
	// actionVocab: explicit accept/decline controls on a live offer surface.
	actionVocab = newPhraseSet(
		"aceitar", "recusar", "rejeitar", "accept", "decline", "reject",
	)

	// rideContextVocab: words that accompany a genuine offer card.
	rideContextVocab = newPhraseSet(
		"corrida", "viagem", "passageiro", "embarque", "destino",
		"buscar", "tarifa", "solicitacao", "pedido", "trip", "pickup",
	)

	// selfMarkerVocab: markers unique to this system's own rendered result
	// card. Two or more hits mean we are reading our own overlay; the
	// snapshot is discarded unconditionally to break the observation loop.
	selfMarkerVocab = newPhraseSet(
		"vale a pena", "nao vale a pena", "analise da corrida",
		"ganhos/h", "r$/km", "pontuacao da oferta",
	)

	// acceptClickVocab: tap/click text that accepts an offer.
	acceptClickVocab = newPhraseSet(
		"aceitar", "aceitar corrida", "aceitar viagem", "accept", "pegar corrida",
	)

	// postAcceptVocab: phrases rendered after an offer was accepted.
	postAcceptVocab = newPhraseSet(
		"a caminho do passageiro", "dirija ate", "em rota", "corrida aceita",
		"viagem aceita", "buscar passageiro", "heading to pickup",
		"trip started", "viagem iniciada", "no caminho",
	)

	// rejectVocab: phrases that mean the offer is gone.
	rejectVocab = newPhraseSet(
		"oferta expirada", "corrida expirada", "offer expired",
		"proxima corrida", "next ride", "procurando viagens",
		"procurando corridas", "searching for trips", "corrida recusada",
		"viagem recusada",
	)

	// keywordSearchTokens are the high-value tokens the acquisition
	// strategy looks for when running a targeted keyword search of the
	// UI tree.
	keywordSearchTokens = []string{"r$", "km", "min", "aceitar", "recusar"}
)
