package detect

import (
	"regexp"
	"strconv"
	"strings"
)

// Field patterns over normalized (lowercased, accent-folded) text.
var (
	// currencyRe matches "r$ 18,50", "r$18.50", "+ r$ 3,00". Both decimal
	// separators occur in practice: the apps render comma, notifications
	// sometimes dot.
	currencyRe = regexp.MustCompile(`r\$\s?(\d{1,4}(?:[.,]\d{1,2})?)`)

	// distanceRe matches "7,2 km", "12 km", "0.8km".
	distanceRe = regexp.MustCompile(`(\d{1,3}(?:[.,]\d{1,2})?)\s?km\b`)

	// timeRe matches "12 min", "5min". Hour-scale expressions are handled
	// by hourSpanRe.
	timeRe = regexp.MustCompile(`(\d{1,3})\s?min\b`)

	// hourSpanRe matches long-trip route expressions: "1 h 20", "1h20min",
	// "2 horas". Group 2 (minutes) is optional.
	hourSpanRe = regexp.MustCompile(`(\d{1,2})\s?h(?:oras?)?\s?(?:e\s)?(\d{1,2})?\s?(?:min\b)?`)

	// routePairRe matches the "time (distance)" pair both apps render for
	// each leg: "5 min (2,0 km)".
	routePairRe = regexp.MustCompile(`(\d{1,3})\s?min\s?\((\d{1,3}(?:[.,]\d{1,2})?)\s?km\)`)

	// ratingRe matches a passenger rating like "4,86" or "5.0" when it
	// appears near a star or rating keyword.
	ratingRe        = regexp.MustCompile(`\b([1-5][.,]\d{1,2})\b`)
	ratingContextRe = regexp.MustCompile(`\*|avaliacao|nota|rating|estrela`)

	// plusPriceRe matches the surge/bonus marker "+ r$ 3,00" some offers
	// carry next to the fare.
	plusPriceRe = regexp.MustCompile(`\+\s?r\$`)
)

// parseDecimal parses a pt-BR or en decimal ("18,50" or "18.50").
func parseDecimal(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// priceMatch is one currency occurrence in text.
type priceMatch struct {
	Value float64
	Pos   int // byte offset of the match start
	End   int
}

// findPrices returns every currency amount at or above minPrice, in text
// order. Malformed or sub-minimum amounts are skipped, never surfaced as
// impossible values.
func findPrices(text string, minPrice float64) []priceMatch {
	idx := currencyRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]priceMatch, 0, len(idx))
	for _, m := range idx {
		v, ok := parseDecimal(text[m[2]:m[3]])
		if !ok || v < minPrice {
			continue
		}
		out = append(out, priceMatch{Value: v, Pos: m[0], End: m[1]})
	}
	return out
}

// findDistance returns the first distance in text, if any.
func findDistance(text string) (float64, bool) {
	m := distanceRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, ok := parseDecimal(m[1])
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// findTime returns the first minute-scale time in text, if any.
func findTime(text string) (int, bool) {
	m := timeRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// findHourSpan returns an hour-scale duration in minutes ("1 h 20" → 80).
// Used by the route-pair strategy to recover the ride leg of long trips.
func findHourSpan(text string) (int, bool) {
	m := hourSpanRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	hours, err := strconv.Atoi(m[1])
	if err != nil || hours <= 0 {
		return 0, false
	}
	minutes := 0
	if m[2] != "" {
		if v, err := strconv.Atoi(m[2]); err == nil {
			minutes = v
		}
	}
	return hours*60 + minutes, true
}

// findRating returns a plausible passenger rating (1.0–5.0) when the text
// has rating context. Out-of-range values are treated as absent.
func findRating(text string) (float64, bool) {
	if !ratingContextRe.MatchString(text) {
		return 0, false
	}
	m := ratingRe.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	v, ok := parseDecimal(m[1])
	if !ok || v < 1.0 || v > 5.0 {
		return 0, false
	}
	return v, true
}

// routeLeg is one "time (distance)" pair.
type routeLeg struct {
	TimeMin    int
	DistanceKm float64
	Pos        int
	End        int
}

// findRouteLegs returns every "time (distance)" pair in text order.
func findRouteLegs(text string) []routeLeg {
	idx := routePairRe.FindAllStringSubmatchIndex(text, -1)
	out := make([]routeLeg, 0, len(idx))
	for _, m := range idx {
		t, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil || t <= 0 {
			continue
		}
		d, ok := parseDecimal(text[m[4]:m[5]])
		if !ok || d <= 0 {
			continue
		}
		out = append(out, routeLeg{TimeMin: t, DistanceKm: d, Pos: m[0], End: m[1]})
	}
	return out
}
