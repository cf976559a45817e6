package session

// Advisory is the peak-time advisory function. The detection core treats
// its output as an opaque recommendation string; this default maps the
// summary trend to driver-facing phrasing. Swappable for the full model.
type Advisory func(Summary) string

// DefaultAdvisory is a minimal trend-based advisory.
func DefaultAdvisory(s Summary) string {
	switch {
	case s.OfferCount == 0:
		return "Sem ofertas recentes na região."
	case s.Trend == TrendRising:
		return "Demanda subindo: bom momento para ficar online."
	case s.Trend == TrendFalling:
		return "Demanda caindo: considere mudar de região."
	default:
		return "Demanda estável."
	}
}
