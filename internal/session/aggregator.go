// Package session aggregates emitted offers into rolling demand statistics.
// The detection core only writes offers and acceptance marks here and reads
// back the summary; everything else about demand sessions lives outside
// this service.
package session

import (
	"sync"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
)

// Trend describes the recent offer rate relative to the rest of the window.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendStable  Trend = "stable"
	TrendFalling Trend = "falling"
)

// Summary is the read-only view handed to the advisory function and the
// stats endpoint.
type Summary struct {
	WindowMinutes int                      `json:"window_minutes"`
	OfferCount    int                      `json:"offer_count"`
	OffersByApp   map[domain.AppSource]int `json:"offers_by_app"`
	AcceptedCount int                      `json:"accepted_count"`
	AveragePrice  float64                  `json:"average_price"`
	Trend         Trend                    `json:"trend"`
}

type offerRecord struct {
	app   domain.AppSource
	price float64
	at    time.Time
}

// Aggregator keeps a rolling window of offer statistics. Unlike the
// detection state it is read from the HTTP layer, so it carries its own
// lock.
type Aggregator struct {
	mu       sync.RWMutex
	window   time.Duration
	offers   []offerRecord
	accepted int
	now      func() time.Time
}

// NewAggregator creates an aggregator with the given rolling window.
func NewAggregator(window time.Duration) *Aggregator {
	return &Aggregator{window: window, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (a *Aggregator) WithClock(now func() time.Time) *Aggregator {
	a.now = now
	return a
}

// RecordOffer adds one emitted offer to the window.
func (a *Aggregator) RecordOffer(offer *domain.RideOffer) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.prune(a.now())
	a.offers = append(a.offers, offerRecord{app: offer.Source, price: offer.Price, at: a.now()})
}

// MarkAccepted records one acceptance. Called exactly once per accepted
// offer (the tracker latches).
func (a *Aggregator) MarkAccepted(app domain.AppSource) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accepted++
}

// Summarize returns the current window statistics.
func (a *Aggregator) Summarize() Summary {
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.now()
	a.prune(now)

	s := Summary{
		WindowMinutes: int(a.window.Minutes()),
		OfferCount:    len(a.offers),
		OffersByApp:   make(map[domain.AppSource]int),
		AcceptedCount: a.accepted,
		Trend:         TrendStable,
	}

	var priceSum float64
	recent := 0
	recentCutoff := now.Add(-a.window / 4)
	for _, o := range a.offers {
		s.OffersByApp[o.app]++
		priceSum += o.price
		if o.at.After(recentCutoff) {
			recent++
		}
	}
	if len(a.offers) > 0 {
		s.AveragePrice = priceSum / float64(len(a.offers))
	}

	// The last quarter of the window versus a proportional share of the
	// whole: meaningfully above means rising demand, meaningfully below
	// means falling.
	expected := float64(len(a.offers)) / 4.0
	switch {
	case len(a.offers) >= 4 && float64(recent) > expected*1.5:
		s.Trend = TrendRising
	case len(a.offers) >= 4 && float64(recent) < expected*0.5:
		s.Trend = TrendFalling
	}
	return s
}

func (a *Aggregator) prune(now time.Time) {
	cutoff := now.Add(-a.window)
	i := 0
	for ; i < len(a.offers); i++ {
		if a.offers[i].at.After(cutoff) {
			break
		}
	}
	if i > 0 {
		a.offers = append(a.offers[:0], a.offers[i:]...)
	}
}
