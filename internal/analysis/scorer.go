// Package analysis converts a validated ride offer into a 0-100 score and a
// categorical recommendation. Pure computation: stateless, recomputed on
// demand, never persisted.
package analysis

import (
	"fmt"
	"math"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// Score weights. Fixed by design: 40% price/km, 30% earnings/h, 20% pickup
// penalty, 10% time-of-day bonus.
const (
	maxScore = 100

	pricePointsMax    = 40.0
	earningsPointsMax = 30.0
	pickupPointsMax   = 20.0
	peakBonusPoints   = 10
	offPeakBonus      = 4

	// Full price/earnings points are reached at twice the reference values;
	// beyond that the components keep growing so that a higher price always
	// scores higher until the 100 cap.
	referenceHeadroom = 2.0

	// capPenalty multiplies the score when a hard cap is exceeded.
	capPenalty = 0.5

	worthItThreshold = 60
	neutralThreshold = 40
)

// Peak windows: morning and evening rush.
const (
	morningPeakStart = 7
	morningPeakEnd   = 9
	eveningPeakStart = 17
	eveningPeakEnd   = 20
)

// Config tunes the scorer's reference values and the driver's hard caps.
type Config struct {
	RefPricePerKm      float64
	RefEarningsPerHour float64
	PeakMultiplier     float64
	MaxPickupKm        float64
	MaxRideKm          float64
}

// Scorer computes ride economics.
type Scorer struct {
	cfg    Config
	logger logger.Logger
}

// NewScorer creates an economics scorer.
func NewScorer(cfg Config, log logger.Logger) *Scorer {
	return &Scorer{cfg: cfg, logger: log}
}

// Analyze scores one offer at the given wall-clock moment (the time of day
// decides the peak multiplier and bonus).
func (s *Scorer) Analyze(offer *domain.RideOffer, now time.Time) *domain.RideAnalysis {
	pickupKm := offer.PickupKm()
	pickupMin := offer.PickupMin()

	totalKm := offer.RideDistanceKm + pickupKm
	totalMin := offer.RideTimeMin + pickupMin
	if totalMin <= 0 {
		totalMin = 1
	}
	if totalKm <= 0 {
		totalKm = 0.1
	}

	pricePerKm := offer.Price / totalKm
	earningsPerHour := offer.Price * 60.0 / float64(totalMin)

	peak := isPeakHour(now)
	multiplier := 1.0
	if peak {
		multiplier = s.cfg.PeakMultiplier
	}

	// Component points. Price and earnings are uncapped so the total is
	// strictly increasing in price until the 100 clamp.
	pricePts := pricePointsMax * (pricePerKm / (s.cfg.RefPricePerKm * multiplier)) / referenceHeadroom
	earnPts := earningsPointsMax * (earningsPerHour / s.cfg.RefEarningsPerHour) / referenceHeadroom
	pickupPts := pickupPenaltyPoints(pickupKm)
	todPts := offPeakBonus
	if peak {
		todPts = peakBonusPoints
	}

	raw := pricePts + earnPts + pickupPts + float64(todPts)

	pickupCapExceeded := s.cfg.MaxPickupKm > 0 && pickupKm > s.cfg.MaxPickupKm
	rideCapExceeded := s.cfg.MaxRideKm > 0 && offer.RideDistanceKm > s.cfg.MaxRideKm
	capped := pickupCapExceeded || rideCapExceeded
	if capped {
		raw *= capPenalty
	}

	score := int(math.Round(raw))
	if score > maxScore {
		score = maxScore
	}
	if score < 0 {
		score = 0
	}

	rec := recommend(score)
	if capped {
		// Hard caps force the verdict regardless of score.
		rec = domain.RecommendNotWorthIt
	}

	return &domain.RideAnalysis{
		Score:           score,
		Recommendation:  rec,
		Reasons:         s.reasons(offer, pickupCapExceeded, rideCapExceeded, pricePerKm, earningsPerHour, pickupKm, multiplier, peak),
		PricePerKm:      pricePerKm,
		EarningsPerHour: earningsPerHour,
		TotalDistanceKm: totalKm,
		TotalTimeMin:    totalMin,
		PeakHour:        peak,
	}
}

func recommend(score int) domain.Recommendation {
	switch {
	case score >= worthItThreshold:
		return domain.RecommendWorthIt
	case score >= neutralThreshold:
		return domain.RecommendNeutral
	default:
		return domain.RecommendNotWorthIt
	}
}

// pickupPenaltyPoints is a monotonically decreasing step function of the
// pickup distance.
func pickupPenaltyPoints(pickupKm float64) float64 {
	switch {
	case pickupKm <= 1.0:
		return 20
	case pickupKm <= 2.0:
		return 16
	case pickupKm <= 3.0:
		return 12
	case pickupKm <= 5.0:
		return 6
	default:
		return 0
	}
}

func isPeakHour(now time.Time) bool {
	h := now.Hour()
	return (h >= morningPeakStart && h < morningPeakEnd) ||
		(h >= eveningPeakStart && h < eveningPeakEnd)
}

// reasons builds the ordered human-readable explanation: cap exceedance
// first, then price, earnings, pickup distance, time of day. Never empty.
func (s *Scorer) reasons(offer *domain.RideOffer, pickupCapExceeded, rideCapExceeded bool, pricePerKm, earningsPerHour, pickupKm, multiplier float64, peak bool) []string {
	out := make([]string, 0, 5)

	if pickupCapExceeded {
		out = append(out, fmt.Sprintf("Deslocamento de %.1f km excede seu limite de %.1f km", pickupKm, s.cfg.MaxPickupKm))
	}
	if rideCapExceeded {
		out = append(out, fmt.Sprintf("Corrida de %.1f km excede seu limite de %.1f km", offer.RideDistanceKm, s.cfg.MaxRideKm))
	}

	ref := s.cfg.RefPricePerKm * multiplier
	switch {
	case pricePerKm >= ref*1.5:
		out = append(out, fmt.Sprintf("Preço por km excelente (R$ %.2f/km)", pricePerKm))
	case pricePerKm >= ref:
		out = append(out, fmt.Sprintf("Preço por km razoável (R$ %.2f/km)", pricePerKm))
	default:
		out = append(out, fmt.Sprintf("Preço por km abaixo do mínimo (R$ %.2f/km)", pricePerKm))
	}

	switch {
	case earningsPerHour >= s.cfg.RefEarningsPerHour*1.5:
		out = append(out, fmt.Sprintf("Ganho por hora ótimo (R$ %.0f/h)", earningsPerHour))
	case earningsPerHour >= s.cfg.RefEarningsPerHour:
		out = append(out, fmt.Sprintf("Ganho por hora bom (R$ %.0f/h)", earningsPerHour))
	default:
		out = append(out, fmt.Sprintf("Ganho por hora baixo (R$ %.0f/h)", earningsPerHour))
	}

	switch {
	case pickupKm <= 2.0:
		out = append(out, fmt.Sprintf("Passageiro perto (%.1f km)", pickupKm))
	case pickupKm <= 5.0:
		out = append(out, fmt.Sprintf("Deslocamento moderado (%.1f km)", pickupKm))
	default:
		out = append(out, fmt.Sprintf("Passageiro longe (%.1f km)", pickupKm))
	}

	if peak {
		out = append(out, "Horário de pico: demanda alta")
	} else {
		out = append(out, "Fora do horário de pico")
	}
	return out
}
