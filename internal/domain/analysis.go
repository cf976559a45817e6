package domain

// Recommendation is the categorical verdict on a ride offer.
type Recommendation string

const (
	RecommendWorthIt    Recommendation = "worth_it"
	RecommendNeutral    Recommendation = "neutral"
	RecommendNotWorthIt Recommendation = "not_worth_it"
)

// RideAnalysis is the output of the economics scorer. Derived purely from a
// RideOffer: stateless, recomputed on demand, never persisted.
type RideAnalysis struct {
	Score          int            `json:"score"` // 0-100
	Recommendation Recommendation `json:"recommendation"`
	// Reasons is an ordered, human-readable explanation: cap exceedance
	// first, then price, earnings, pickup distance, time of day. Never empty.
	Reasons []string `json:"reasons"`

	PricePerKm      float64 `json:"price_per_km"`
	EarningsPerHour float64 `json:"earnings_per_hour"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	TotalTimeMin    int     `json:"total_time_min"`
	PeakHour        bool    `json:"peak_hour"`
}
