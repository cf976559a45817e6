package detect

import (
	"testing"
	"time"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

func testFingerprint(price float64, distKm float64, timeMin int) Fingerprint {
	cand := &domain.ExtractionCandidate{Price: price, Source: domain.ExtractionPositional}
	if distKm > 0 {
		cand.RideDistanceKm = &distKm
	}
	if timeMin > 0 {
		cand.RideTimeMin = &timeMin
	}
	return CandidateFingerprint(domain.SourceAppA, cand)
}

func newTestDeduper() *Deduper {
	return NewDeduper(2500*time.Millisecond, 3, 60*time.Second, 120*time.Second, logger.NewNop())
}

func TestDeduperSuppressionWindow(t *testing.T) {
	d := newTestDeduper()
	base := time.Now()
	fp := testFingerprint(18.50, 7.2, 15)

	if got := d.Admit(fp, false, base); got != domain.DropNone {
		t.Fatalf("first admit = %v, want pass", got)
	}
	if got := d.Admit(fp, false, base.Add(1*time.Second)); got != domain.DropDuplicate {
		t.Errorf("repeat inside window = %v, want duplicate", got)
	}
	if got := d.Admit(fp, false, base.Add(3*time.Second)); got != domain.DropNone {
		t.Errorf("repeat after window = %v, want pass", got)
	}
}

func TestDeduperDifferentFingerprintPasses(t *testing.T) {
	d := newTestDeduper()
	base := time.Now()

	if got := d.Admit(testFingerprint(18.50, 7.2, 15), false, base); got != domain.DropNone {
		t.Fatalf("first admit = %v", got)
	}
	// Same instant, different price: a different real-world offer.
	if got := d.Admit(testFingerprint(22.00, 7.2, 15), false, base); got != domain.DropNone {
		t.Errorf("different fingerprint = %v, want pass", got)
	}
}

func TestDeduperPriceOnlyQuarantine(t *testing.T) {
	d := newTestDeduper()
	base := time.Now()
	fp := testFingerprint(154.30, 0, 0)

	// Three repeats inside the window are tolerated (spaced past suppression).
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * 3 * time.Second)
		if got := d.Admit(fp, true, at); got != domain.DropNone {
			t.Fatalf("repeat %d = %v, want pass", i+1, got)
		}
	}
	// The fourth activates quarantine.
	if got := d.Admit(fp, true, base.Add(9*time.Second)); got != domain.DropQuarantined {
		t.Fatalf("fourth repeat = %v, want quarantined", got)
	}
	// Still quarantined well before expiry.
	if got := d.Admit(fp, true, base.Add(60*time.Second)); got != domain.DropQuarantined {
		t.Errorf("during quarantine = %v, want quarantined", got)
	}
	// Quarantine expired.
	if got := d.Admit(fp, true, base.Add(9*time.Second+121*time.Second)); got != domain.DropNone {
		t.Errorf("after quarantine = %v, want pass", got)
	}
}

func TestDeduperQuarantineHook(t *testing.T) {
	d := newTestDeduper()
	var hooked []domain.AppSource
	d.QuarantineActivated = func(app domain.AppSource) { hooked = append(hooked, app) }

	base := time.Now()
	fp := testFingerprint(99.00, 0, 0)
	for i := 0; i < 4; i++ {
		d.Admit(fp, true, base.Add(time.Duration(i)*3*time.Second))
	}
	if len(hooked) != 1 || hooked[0] != domain.SourceAppA {
		t.Errorf("hook calls = %v, want one for app_a", hooked)
	}
}

func TestDeduperDifferentPriceClearsQuarantine(t *testing.T) {
	d := newTestDeduper()
	base := time.Now()
	fp := testFingerprint(154.30, 0, 0)

	for i := 0; i < 4; i++ {
		d.Admit(fp, true, base.Add(time.Duration(i)*3*time.Second))
	}
	// A different price-only value from the same app ends the quarantine.
	other := testFingerprint(37.80, 0, 0)
	if got := d.Admit(other, true, base.Add(12*time.Second)); got != domain.DropNone {
		t.Fatalf("different price = %v, want pass", got)
	}
	// The previously quarantined price starts a fresh window.
	if got := d.Admit(fp, true, base.Add(76*time.Second)); got != domain.DropNone {
		t.Errorf("original price after clear = %v, want pass", got)
	}
}

func TestDeduperFullOffersNotQuarantined(t *testing.T) {
	d := newTestDeduper()
	base := time.Now()

	// Candidates with a ride leg repeat freely past the suppression window.
	for i := 0; i < 6; i++ {
		fp := testFingerprint(18.50, 7.2, 15)
		if got := d.Admit(fp, false, base.Add(time.Duration(i)*3*time.Second)); got != domain.DropNone {
			t.Fatalf("full offer repeat %d = %v, want pass", i+1, got)
		}
	}
}

func TestDeduperReset(t *testing.T) {
	d := newTestDeduper()
	base := time.Now()
	fp := testFingerprint(18.50, 7.2, 15)

	d.Admit(fp, false, base)
	d.Reset()
	if got := d.Admit(fp, false, base.Add(time.Millisecond)); got != domain.DropNone {
		t.Errorf("admit after reset = %v, want pass", got)
	}
	if _, ok := d.LastFingerprint(); !ok {
		t.Error("LastFingerprint should be set again after re-admit")
	}
}

func TestFingerprintString(t *testing.T) {
	fp := testFingerprint(18.50, 7.2, 15)
	want := "app_a|1850|positional|72|15"
	if got := fp.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
	bare := testFingerprint(12.00, 0, 0)
	if got := bare.String(); got != "app_a|1200|positional|-1|-1" {
		t.Errorf("String() = %q", got)
	}
}
