package config

import (
	"fmt"
	"time"
)

// Default values. Thresholds are tunable operating points, not contracts:
// two generations of the detection logic shipped with different values and
// these are the later, more permissive ones.
const (
	defaultServiceName    = "motorista-inteligente"
	defaultServiceVersion = "2.1.0"
	defaultServicePort    = 8087

	defaultDebounceDelay     = 400 * time.Millisecond
	defaultSuppressionWindow = 2500 * time.Millisecond
	defaultMinContextScore   = 3
	defaultMinContentScore   = 4
	defaultMinPlausiblePrice = 5.0
	defaultMaxSampleLen      = 300

	defaultQuarantineMaxRepeats = 3
	defaultQuarantineWindow     = 60 * time.Second
	defaultQuarantineDuration   = 120 * time.Second

	defaultAcceptanceWindow = 30 * time.Second

	defaultOCRBaseCooldown      = 2 * time.Second
	defaultOCREmptyTreeCooldown = 200 * time.Millisecond
	defaultOCRMaxCooldown       = 30 * time.Second

	defaultFarePerKm     = 2.0
	defaultUrbanSpeedKmh = 25.0

	defaultRefPricePerKm      = 1.0
	defaultRefEarningsPerHour = 30.0
	defaultPeakMultiplier     = 1.3
	defaultMaxPickupKm        = 8.0
	defaultMaxRideKm          = 15.0

	defaultDeliveryMaxAttempts  = 3
	defaultDeliveryInitialDelay = 100 * time.Millisecond
)

// Config holds all configuration for the detector service.
type Config struct {
	Service     ServiceConfig     `yaml:"service"`
	Logging     LoggingConfig     `yaml:"logging"`
	Detection   DetectionConfig   `yaml:"detection"`
	Acquisition AcquisitionConfig `yaml:"acquisition"`
	Estimate    EstimateConfig    `yaml:"estimate"`
	Economics   EconomicsConfig   `yaml:"economics"`
	Delivery    DeliveryConfig    `yaml:"delivery"`
	Sources     SourcesConfig     `yaml:"sources"`
}

// ServiceConfig holds service-level configuration.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	Port    int    `env:"DETECTOR_PORT" yaml:"port"`
	Debug   bool   `env:"APP_DEBUG"     yaml:"debug"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `env:"LOG_LEVEL"  yaml:"level"`
	Format string `env:"LOG_FORMAT" yaml:"format"`
}

// DetectionConfig tunes the extraction gate and the dedup layer.
type DetectionConfig struct {
	// DebounceDelay is how long an emission waits for a fresher detection
	// of the same burst. Zero emits synchronously (useful in tests).
	DebounceDelay time.Duration `yaml:"debounce_delay"`
	// SuppressionWindow drops identical fingerprints emitted again within it.
	SuppressionWindow time.Duration `yaml:"suppression_window"`
	// MinContextScore is the minimum candidate score for window-change events.
	MinContextScore int `yaml:"min_context_score"`
	// MinContentChangeScore is the stricter gate for content-change events,
	// which fire on unrelated scrolling and redraws.
	MinContentChangeScore int `yaml:"min_content_change_score"`
	// MinPlausiblePrice excludes currency amounts below a real ride fare.
	MinPlausiblePrice float64 `yaml:"min_plausible_price"`
	// MaxSampleLen bounds the raw text audit sample on emitted offers.
	MaxSampleLen int `yaml:"max_sample_len"`

	// QuarantineMaxRepeats is how many times the same price-only
	// (app, price) pair may repeat inside QuarantineWindow before the
	// price is quarantined for QuarantineDuration.
	QuarantineMaxRepeats int           `yaml:"quarantine_max_repeats"`
	QuarantineWindow     time.Duration `yaml:"quarantine_window"`
	QuarantineDuration   time.Duration `yaml:"quarantine_duration"`

	// AcceptanceWindow is how long the tracker watches for accept signals
	// after an offer is emitted.
	AcceptanceWindow time.Duration `yaml:"acceptance_window"`
}

// AcquisitionConfig tunes the image-recognition cooldown.
type AcquisitionConfig struct {
	// OCRBaseCooldown is the minimum interval between recognition requests.
	OCRBaseCooldown time.Duration `yaml:"ocr_base_cooldown"`
	// OCREmptyTreeCooldown replaces the base interval while a monitored
	// app's structural tree is confirmed empty, so consecutive offers on
	// label-less surfaces are not missed.
	OCREmptyTreeCooldown time.Duration `yaml:"ocr_empty_tree_cooldown"`
	// OCRMaxCooldown caps the exponential backoff applied after
	// consecutive recognitions that yield no usable signal.
	OCRMaxCooldown time.Duration `yaml:"ocr_max_cooldown"`
}

// EstimateConfig holds the conversion constants for the estimation fallback.
type EstimateConfig struct {
	// FarePerKm is the reference fare used to estimate distance from price.
	FarePerKm float64 `yaml:"fare_per_km"`
	// UrbanSpeedKmh is the average urban speed used to convert between
	// distance and time.
	UrbanSpeedKmh float64 `yaml:"urban_speed_kmh"`
}

// EconomicsConfig tunes the ride economics scorer.
type EconomicsConfig struct {
	// RefPricePerKm is the reference minimum price per km; the time-of-day
	// multiplier raises it during peak hours.
	RefPricePerKm      float64 `yaml:"ref_price_per_km"`
	RefEarningsPerHour float64 `yaml:"ref_earnings_per_hour"`
	PeakMultiplier     float64 `yaml:"peak_multiplier"`
	// MaxPickupKm and MaxRideKm are the driver's hard caps: exceeding
	// either forces "not worth it" regardless of score.
	MaxPickupKm float64 `env:"MAX_PICKUP_KM" yaml:"max_pickup_km"`
	MaxRideKm   float64 `env:"MAX_RIDE_KM"   yaml:"max_ride_km"`
}

// SourcesConfig overrides the built-in per-app content signatures and
// origin hints. Empty slices keep the defaults.
type SourcesConfig struct {
	AppASignatures []string `yaml:"app_a_signatures"`
	AppBSignatures []string `yaml:"app_b_signatures"`
	AppAHints      []string `yaml:"app_a_hints"`
	AppBHints      []string `yaml:"app_b_hints"`
}

// DeliveryConfig tunes presentation-layer delivery retry.
type DeliveryConfig struct {
	MaxAttempts  int           `yaml:"max_attempts"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

// Default returns a Config populated with every default value.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func (c *Config) setDefaults() {
	if c.Service.Name == "" {
		c.Service.Name = defaultServiceName
	}
	if c.Service.Version == "" {
		c.Service.Version = defaultServiceVersion
	}
	if c.Service.Port == 0 {
		c.Service.Port = defaultServicePort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}

	d := &c.Detection
	if d.DebounceDelay == 0 {
		d.DebounceDelay = defaultDebounceDelay
	}
	if d.SuppressionWindow == 0 {
		d.SuppressionWindow = defaultSuppressionWindow
	}
	if d.MinContextScore == 0 {
		d.MinContextScore = defaultMinContextScore
	}
	if d.MinContentChangeScore == 0 {
		d.MinContentChangeScore = defaultMinContentScore
	}
	if d.MinPlausiblePrice == 0 {
		d.MinPlausiblePrice = defaultMinPlausiblePrice
	}
	if d.MaxSampleLen == 0 {
		d.MaxSampleLen = defaultMaxSampleLen
	}
	if d.QuarantineMaxRepeats == 0 {
		d.QuarantineMaxRepeats = defaultQuarantineMaxRepeats
	}
	if d.QuarantineWindow == 0 {
		d.QuarantineWindow = defaultQuarantineWindow
	}
	if d.QuarantineDuration == 0 {
		d.QuarantineDuration = defaultQuarantineDuration
	}
	if d.AcceptanceWindow == 0 {
		d.AcceptanceWindow = defaultAcceptanceWindow
	}

	a := &c.Acquisition
	if a.OCRBaseCooldown == 0 {
		a.OCRBaseCooldown = defaultOCRBaseCooldown
	}
	if a.OCREmptyTreeCooldown == 0 {
		a.OCREmptyTreeCooldown = defaultOCREmptyTreeCooldown
	}
	if a.OCRMaxCooldown == 0 {
		a.OCRMaxCooldown = defaultOCRMaxCooldown
	}

	if c.Estimate.FarePerKm == 0 {
		c.Estimate.FarePerKm = defaultFarePerKm
	}
	if c.Estimate.UrbanSpeedKmh == 0 {
		c.Estimate.UrbanSpeedKmh = defaultUrbanSpeedKmh
	}

	e := &c.Economics
	if e.RefPricePerKm == 0 {
		e.RefPricePerKm = defaultRefPricePerKm
	}
	if e.RefEarningsPerHour == 0 {
		e.RefEarningsPerHour = defaultRefEarningsPerHour
	}
	if e.PeakMultiplier == 0 {
		e.PeakMultiplier = defaultPeakMultiplier
	}
	if e.MaxPickupKm == 0 {
		e.MaxPickupKm = defaultMaxPickupKm
	}
	if e.MaxRideKm == 0 {
		e.MaxRideKm = defaultMaxRideKm
	}

	if c.Delivery.MaxAttempts == 0 {
		c.Delivery.MaxAttempts = defaultDeliveryMaxAttempts
	}
	if c.Delivery.InitialDelay == 0 {
		c.Delivery.InitialDelay = defaultDeliveryInitialDelay
	}
}

// Validate checks invariants that would make the pipeline misbehave.
func (c *Config) Validate() error {
	if c.Service.Port <= 0 || c.Service.Port > 65535 {
		return fmt.Errorf("invalid service port %d", c.Service.Port)
	}
	if c.Detection.MinPlausiblePrice < 0 {
		return fmt.Errorf("min_plausible_price must be >= 0, got %v", c.Detection.MinPlausiblePrice)
	}
	if c.Detection.DebounceDelay < 0 {
		return fmt.Errorf("debounce_delay must be >= 0, got %v", c.Detection.DebounceDelay)
	}
	if c.Estimate.FarePerKm <= 0 {
		return fmt.Errorf("fare_per_km must be > 0, got %v", c.Estimate.FarePerKm)
	}
	if c.Estimate.UrbanSpeedKmh <= 0 {
		return fmt.Errorf("urban_speed_kmh must be > 0, got %v", c.Estimate.UrbanSpeedKmh)
	}
	if c.Economics.RefPricePerKm <= 0 {
		return fmt.Errorf("ref_price_per_km must be > 0, got %v", c.Economics.RefPricePerKm)
	}
	if c.Economics.RefEarningsPerHour <= 0 {
		return fmt.Errorf("ref_earnings_per_hour must be > 0, got %v", c.Economics.RefEarningsPerHour)
	}
	return nil
}
