package api

import (
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
)

// SnapshotRequest is the snapshot ingest payload.
type SnapshotRequest struct {
	RawText       string                `json:"raw_text"`
	Channel       domain.SourceChannel  `json:"source_channel"`
	OriginAppHint string                `json:"origin_app_hint"`
	Event         domain.EventType      `json:"event_type" binding:"required"`
	Nodes         []domain.SemanticNode `json:"nodes"`
	CapturedAt    *time.Time            `json:"captured_at"`
}

// toSnapshot converts the request to the pipeline's input type, defaulting
// the channel and the capture timestamp.
func (r *SnapshotRequest) toSnapshot() *domain.ScreenSnapshot {
	snap := &domain.ScreenSnapshot{
		RawText:       r.RawText,
		Channel:       r.Channel,
		OriginAppHint: r.OriginAppHint,
		Event:         r.Event,
		Nodes:         r.Nodes,
	}
	if snap.Channel == "" {
		if snap.HasNodes() {
			snap.Channel = domain.ChannelNodeTree
		} else {
			snap.Channel = domain.ChannelEventFallback
		}
	}
	if r.CapturedAt != nil {
		snap.CapturedAt = *r.CapturedAt
	} else {
		snap.CapturedAt = time.Now()
	}
	return snap
}

// ClickRequest is a tap/click event payload for acceptance tracking.
type ClickRequest struct {
	Text string `json:"text" binding:"required"`
}

// ClickResponse reports whether the click was consumed as an accept signal.
type ClickResponse struct {
	Consumed bool `json:"consumed"`
}

// AnalyzeRequest is a stateless scoring request for a caller-supplied offer.
type AnalyzeRequest struct {
	Price            float64  `json:"price" binding:"required,gt=0"`
	RideDistanceKm   float64  `json:"ride_distance_km" binding:"required,gt=0"`
	RideTimeMin      int      `json:"ride_time_min" binding:"required,gt=0"`
	PickupDistanceKm *float64 `json:"pickup_distance_km"`
	PickupTimeMin    *int     `json:"pickup_time_min"`
	// At overrides the scoring time, which decides peak-hour treatment.
	// Defaults to now.
	At *time.Time `json:"at"`
}

// AnalyzeResponse wraps the scorer output.
type AnalyzeResponse struct {
	Analysis *domain.RideAnalysis `json:"analysis"`
}

// ServiceInfo identifies the running service.
type ServiceInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// StatusResponse reports the live detection state.
type StatusResponse struct {
	TrackerState    string            `json:"tracker_state"`
	LastFingerprint string            `json:"last_fingerprint,omitempty"`
	LastOffer       *domain.RideOffer `json:"last_offer,omitempty"`
	OCRInterval     string            `json:"ocr_interval,omitempty"`
	Service         ServiceInfo       `json:"service"`
}

// StatsResponse wraps the session summary with the advisory string.
type StatsResponse struct {
	WindowMinutes int            `json:"window_minutes"`
	OfferCount    int            `json:"offer_count"`
	OffersByApp   map[string]int `json:"offers_by_app"`
	AcceptedCount int            `json:"accepted_count"`
	AveragePrice  float64        `json:"average_price"`
	Trend         string         `json:"trend"`
	Advisory      string         `json:"advisory"`
}
