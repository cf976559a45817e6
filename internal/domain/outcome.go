package domain

// DetectionStatus describes what the pipeline did with one snapshot.
type DetectionStatus string

const (
	// StatusScheduled means a candidate passed all gates and an emission is
	// pending behind the debounce delay (or was emitted synchronously when
	// the delay is zero).
	StatusScheduled DetectionStatus = "scheduled"
	// StatusDropped means the snapshot produced no offer; Reason says why.
	StatusDropped DetectionStatus = "dropped"
	// StatusAcceptSignal means the snapshot was consumed by the acceptance
	// tracker as an accept/reject signal for the pending offer.
	StatusAcceptSignal DetectionStatus = "accept_signal"
)

// DropReason is the well-defined "no detection" outcome of spec'd entry
// points. Not errors: every reason is an expected, observable disposition.
type DropReason string

const (
	DropNone            DropReason = ""
	DropEmptySnapshot   DropReason = "empty_snapshot"
	DropSelfDetection   DropReason = "self_detection"
	DropStructuralNoise DropReason = "structural_noise"
	DropUnknownSource   DropReason = "unknown_source"
	DropNoCandidate     DropReason = "no_candidate"
	DropLowConfidence   DropReason = "low_confidence"
	DropDuplicate       DropReason = "duplicate_fingerprint"
	DropQuarantined     DropReason = "price_quarantined"
	DropSuperseded      DropReason = "superseded"
)

// DetectionOutcome is returned synchronously for every submitted snapshot.
// Offer and Analysis are only set on the emission path (debounce delay zero
// or the outcome of a fired debounce timer delivered through the sink).
type DetectionOutcome struct {
	Status   DetectionStatus `json:"status"`
	Reason   DropReason      `json:"reason,omitempty"`
	Offer    *RideOffer      `json:"offer,omitempty"`
	Analysis *RideAnalysis   `json:"analysis,omitempty"`
}

// Dropped is a convenience constructor for a dropped outcome.
func Dropped(reason DropReason) DetectionOutcome {
	return DetectionOutcome{Status: StatusDropped, Reason: reason}
}
