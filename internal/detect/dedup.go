package detect

import (
	"fmt"
	"math"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// Fingerprint identifies one logical detection for dedup purposes.
// Comparable; two detections of the same real-world offer produce equal
// fingerprints even when the raw text differs between redraws.
type Fingerprint struct {
	App        domain.AppSource
	PriceCents int64
	Source     string
	DistTenths int // ride distance in 0.1 km units, -1 when absent
	TimeMin    int // ride time in minutes, -1 when absent
}

// String renders the fingerprint for logs and the status endpoint.
func (f Fingerprint) String() string {
	return fmt.Sprintf("%s|%d|%s|%d|%d", f.App, f.PriceCents, f.Source, f.DistTenths, f.TimeMin)
}

// CandidateFingerprint builds the fingerprint for a gated candidate.
func CandidateFingerprint(app domain.AppSource, cand *domain.ExtractionCandidate) Fingerprint {
	fp := Fingerprint{
		App:        app,
		PriceCents: int64(math.Round(cand.Price * 100)),
		Source:     cand.Source,
		DistTenths: -1,
		TimeMin:    -1,
	}
	if cand.RideDistanceKm != nil {
		fp.DistTenths = int(math.Round(*cand.RideDistanceKm * 10))
	}
	if cand.RideTimeMin != nil {
		fp.TimeMin = *cand.RideTimeMin
	}
	return fp
}

type repeatKey struct {
	app        domain.AppSource
	priceCents int64
}

type repeatState struct {
	count            int
	windowStart      time.Time
	quarantinedUntil time.Time
}

// Deduper collapses bursts and repeats into one logical event per
// real-world offer: identical-fingerprint suppression plus the price-only
// quarantine. All state is mutated on the pipeline's single sequence, so no
// locking is needed; inject a fresh Deduper per test for resettability.
type Deduper struct {
	suppression   time.Duration
	maxRepeats    int
	repeatWindow  time.Duration
	quarantineDur time.Duration

	last    Fingerprint
	lastAt  time.Time
	hasLast bool

	repeats map[repeatKey]*repeatState
	logger  logger.Logger

	// QuarantineActivated is called when a price enters quarantine
	// (telemetry hook). Optional.
	QuarantineActivated func(app domain.AppSource)
}

// NewDeduper creates the dedup layer.
func NewDeduper(suppression time.Duration, maxRepeats int, repeatWindow, quarantineDur time.Duration, log logger.Logger) *Deduper {
	return &Deduper{
		suppression:   suppression,
		maxRepeats:    maxRepeats,
		repeatWindow:  repeatWindow,
		quarantineDur: quarantineDur,
		repeats:       make(map[repeatKey]*repeatState),
		logger:        log,
	}
}

// Admit decides whether a detection with this fingerprint may be emitted
// now. priceOnly marks candidates carrying a price but no ride
// distance/time, the signature of an earnings-summary surface. A non-nil
// reason means the detection is suppressed.
func (d *Deduper) Admit(fp Fingerprint, priceOnly bool, now time.Time) domain.DropReason {
	if d.hasLast && fp == d.last && now.Sub(d.lastAt) < d.suppression {
		return domain.DropDuplicate
	}

	if priceOnly {
		if reason := d.admitPriceOnly(fp, now); reason != domain.DropNone {
			return reason
		}
	}

	d.last = fp
	d.lastAt = now
	d.hasLast = true
	return domain.DropNone
}

func (d *Deduper) admitPriceOnly(fp Fingerprint, now time.Time) domain.DropReason {
	key := repeatKey{app: fp.App, priceCents: fp.PriceCents}

	// A different price from the same app ends any running quarantine for
	// that app: the suspicious surface has moved on.
	for k, st := range d.repeats {
		if k.app == fp.App && k.priceCents != fp.PriceCents && now.Before(st.quarantinedUntil) {
			delete(d.repeats, k)
		}
	}

	st, ok := d.repeats[key]
	if ok && now.Before(st.quarantinedUntil) {
		return domain.DropQuarantined
	}
	if !ok || now.Sub(st.windowStart) > d.repeatWindow {
		st = &repeatState{windowStart: now}
		d.repeats[key] = st
	}

	st.count++
	if st.count > d.maxRepeats {
		st.quarantinedUntil = now.Add(d.quarantineDur)
		d.logger.Info("price-only repeat quarantined",
			logger.String("app", string(fp.App)),
			logger.Int64("price_cents", fp.PriceCents),
			logger.Duration("duration", d.quarantineDur))
		if d.QuarantineActivated != nil {
			d.QuarantineActivated(fp.App)
		}
		return domain.DropQuarantined
	}
	return domain.DropNone
}

// LastFingerprint returns the last admitted fingerprint, if any.
func (d *Deduper) LastFingerprint() (Fingerprint, bool) {
	return d.last, d.hasLast
}

// Reset clears all dedup and quarantine state.
func (d *Deduper) Reset() {
	d.hasLast = false
	d.repeats = make(map[repeatKey]*repeatState)
}
