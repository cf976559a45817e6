package detect

import (
	"math"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
)

// Estimator fills missing ride distance/time from price using fixed
// conversion constants. Missing fields after all three strategies are never
// fatal: downstream consumers always see a positive ride leg, flagged as
// estimated rather than extracted.
type Estimator struct {
	farePerKm     float64
	urbanSpeedKmh float64
}

// NewEstimator creates an estimator with the given conversion constants.
func NewEstimator(farePerKm, urbanSpeedKmh float64) *Estimator {
	return &Estimator{farePerKm: farePerKm, urbanSpeedKmh: urbanSpeedKmh}
}

// Resolve returns the ride distance/time for a candidate, estimating
// whichever is missing. Estimation order: a known time yields distance at
// urban speed; otherwise distance comes from price at the reference fare;
// time then follows from distance. Results are always positive.
func (e *Estimator) Resolve(cand *domain.ExtractionCandidate) (distKm float64, timeMin int, distEstimated, timeEstimated bool) {
	switch {
	case cand.RideDistanceKm != nil:
		distKm = *cand.RideDistanceKm
	case cand.RideTimeMin != nil:
		distKm = e.urbanSpeedKmh * float64(*cand.RideTimeMin) / 60.0
		distEstimated = true
	default:
		distKm = cand.Price / e.farePerKm
		distEstimated = true
	}
	if distKm <= 0 {
		distKm = cand.Price / e.farePerKm
		distEstimated = true
	}

	if cand.RideTimeMin != nil {
		timeMin = *cand.RideTimeMin
	} else {
		timeMin = int(math.Round(distKm / e.urbanSpeedKmh * 60.0))
		timeEstimated = true
	}
	if timeMin <= 0 {
		timeMin = 1
		timeEstimated = true
	}
	return distKm, timeMin, distEstimated, timeEstimated
}
