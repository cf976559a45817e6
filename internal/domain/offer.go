package domain

import "time"

// AppSource identifies which monitored dispatch app produced a snapshot.
// Closed set: the two competing apps plus "unrecognized". Classification is
// content-first; callers must drop SourceUnknown snapshots rather than guess.
type AppSource string

const (
	SourceAppA    AppSource = "app_a"
	SourceAppB    AppSource = "app_b"
	SourceUnknown AppSource = "unknown"
)

// Known reports whether the source is one of the monitored apps.
func (s AppSource) Known() bool {
	return s == SourceAppA || s == SourceAppB
}

// Extraction strategy provenance tags carried on emitted offers.
const (
	ExtractionLabeledNodes = "labeled_nodes"
	ExtractionRoutePairs   = "route_pairs"
	ExtractionPositional   = "positional"
)

// RideOffer is the emitted unit of work: one validated, deduplicated ride
// offer. Immutable after creation; consumed by the economics scorer and
// handed to the presentation layer.
//
// RideDistanceKm and RideTimeMin are never zero downstream: when extraction
// could not recover them they are estimated from price and flagged.
type RideOffer struct {
	ID     string    `json:"id"`
	Source AppSource `json:"app_source"`

	// Price in currency units (BRL). Always > 0.
	Price float64 `json:"price"`

	RideDistanceKm    float64 `json:"ride_distance_km"`
	RideTimeMin       int     `json:"ride_time_min"`
	DistanceEstimated bool    `json:"distance_estimated"`
	TimeEstimated     bool    `json:"time_estimated"`

	PickupDistanceKm *float64 `json:"pickup_distance_km,omitempty"`
	PickupTimeMin    *int     `json:"pickup_time_min,omitempty"`

	// UserRating is the passenger rating, 1.0–5.0 when present.
	UserRating *float64 `json:"user_rating,omitempty"`

	PickupAddress  string `json:"pickup_address,omitempty"`
	DropoffAddress string `json:"dropoff_address,omitempty"`

	// ExtractionSource tags which strategy produced the offer.
	ExtractionSource string `json:"extraction_source"`
	// RawTextSample is a bounded excerpt of the snapshot text, kept for audit.
	RawTextSample string `json:"raw_text_sample"`

	DetectedAt time.Time `json:"detected_at"`
}

// PickupKm returns the pickup leg distance, zero when unknown.
func (o *RideOffer) PickupKm() float64 {
	if o.PickupDistanceKm == nil {
		return 0
	}
	return *o.PickupDistanceKm
}

// PickupMin returns the pickup leg time in minutes, zero when unknown.
func (o *RideOffer) PickupMin() int {
	if o.PickupTimeMin == nil {
		return 0
	}
	return *o.PickupTimeMin
}

// ExtractionCandidate is an intermediate, scored guess at a RideOffer before
// acceptance. Optional fields stay nil until the estimation fallback runs.
type ExtractionCandidate struct {
	Price            float64
	RideDistanceKm   *float64
	RideTimeMin      *int
	PickupDistanceKm *float64
	PickupTimeMin    *int
	UserRating       *float64
	PickupAddress    string
	DropoffAddress   string

	// Source is the strategy that produced the candidate.
	Source string
	// Score is the contextual confidence score used for selection among
	// multiple matches in one snapshot.
	Score int
	// PricePos is the byte offset of the price match in the normalized
	// text. Ties between equal scores break toward the earliest position.
	PricePos int
	// HasAction is set when an explicit accept/decline keyword was seen.
	HasAction bool
}

// HasRideLeg reports whether both ride distance and time were extracted.
func (c *ExtractionCandidate) HasRideLeg() bool {
	return c.RideDistanceKm != nil && c.RideTimeMin != nil
}

// PriceOnly reports whether the candidate carries a price but neither ride
// distance nor time. A common signature of an earnings-summary surface
// rather than a live offer; the dedup layer quarantines repeats.
func (c *ExtractionCandidate) PriceOnly() bool {
	return c.Price > 0 && c.RideDistanceKm == nil && c.RideTimeMin == nil
}
