package detect

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
)

// Providers are the external snapshot channels. Each call is independently
// retryable; a provider returning an error or nil is treated as "no
// signal", never surfaced (spec taxonomy: transient source failure).
type Providers struct {
	// Tree walks the currently visible windows and returns a structured
	// node snapshot.
	Tree func(ctx context.Context) (*domain.ScreenSnapshot, error)
	// Notification returns the text of the triggering notification.
	Notification func(ctx context.Context) (*domain.ScreenSnapshot, error)
	// KeywordSearch runs a targeted search of the UI tree for the given
	// high-value tokens.
	KeywordSearch func(ctx context.Context, tokens []string) (*domain.ScreenSnapshot, error)
	// ImageRecognition runs text recognition over a full-screen capture.
	ImageRecognition func(ctx context.Context) (*domain.ScreenSnapshot, error)
}

// OCRCooldown is the adaptive rate limit on image recognition. A fixed
// minimum interval normally; near-zero while a monitored app's structural
// tree is confirmed empty (so consecutive offers on label-less surfaces are
// not missed); exponentially lengthened, capped, after consecutive
// recognitions that yield nothing usable.
type OCRCooldown struct {
	base      time.Duration
	emptyTree time.Duration
	max       time.Duration

	limiter          *rate.Limiter
	consecutiveEmpty int
	emptyTreeMode    bool
}

// NewOCRCooldown creates the cooldown with its three interval bounds.
func NewOCRCooldown(base, emptyTree, max time.Duration) *OCRCooldown {
	c := &OCRCooldown{base: base, emptyTree: emptyTree, max: max}
	c.limiter = rate.NewLimiter(intervalLimit(base), 1)
	return c
}

// Allow reports whether a recognition request may start at now.
func (c *OCRCooldown) Allow(now time.Time) bool {
	return c.limiter.AllowN(now, 1)
}

// SetEmptyTreeMode switches between the normal and the aggressive interval.
func (c *OCRCooldown) SetEmptyTreeMode(on bool) {
	if c.emptyTreeMode == on {
		return
	}
	c.emptyTreeMode = on
	c.limiter.SetLimit(intervalLimit(c.interval()))
}

// Record feeds back whether the last recognition produced a usable signal,
// adapting the interval for the next request.
func (c *OCRCooldown) Record(usable bool) {
	if usable {
		c.consecutiveEmpty = 0
	} else {
		c.consecutiveEmpty++
	}
	c.limiter.SetLimit(intervalLimit(c.interval()))
}

// Interval returns the currently enforced minimum interval.
func (c *OCRCooldown) Interval() time.Duration {
	return c.interval()
}

func (c *OCRCooldown) interval() time.Duration {
	if c.emptyTreeMode {
		return c.emptyTree
	}
	iv := c.base
	for i := 0; i < c.consecutiveEmpty; i++ {
		iv *= 2
		if iv >= c.max {
			return c.max
		}
	}
	return iv
}

func intervalLimit(iv time.Duration) rate.Limit {
	if iv <= 0 {
		return rate.Inf
	}
	return rate.Every(iv)
}

// Planner chooses and sequences extraction channels for one triggering
// event, escalating only as needed: structured tree walk, notification
// text, targeted keyword search, then image recognition under the adaptive
// cooldown. At most one recognition request is issued per invocation and a
// duplicate request for the same window state is suppressed.
type Planner struct {
	providers Providers
	cooldown  *OCRCooldown
	logger    logger.Logger

	inflightKey string

	// Telemetry hooks, optional.
	OCRRequested  func()
	OCRSuppressed func()
}

// NewPlanner creates an acquisition planner.
func NewPlanner(providers Providers, cooldown *OCRCooldown, log logger.Logger) *Planner {
	return &Planner{providers: providers, cooldown: cooldown, logger: log}
}

// Acquire returns the best available snapshot for the event, or nil when
// every channel came back empty. windowKey identifies the current window
// state for in-flight recognition suppression; emptyTreeApp marks apps
// known to render their offer surface without structural labels.
func (p *Planner) Acquire(ctx context.Context, event domain.EventType, windowKey string, emptyTreeApp bool) *domain.ScreenSnapshot {
	var fallback *domain.ScreenSnapshot

	if snap := p.try(ctx, domain.ChannelNodeTree, func() (*domain.ScreenSnapshot, error) {
		if p.providers.Tree == nil {
			return nil, nil
		}
		return p.providers.Tree(ctx)
	}); snap != nil {
		if hasOfferTriple(snap) {
			return snap
		}
		fallback = snap
	}

	treeEmpty := fallback == nil || fallback.Empty()
	p.cooldown.SetEmptyTreeMode(emptyTreeApp && treeEmpty)

	if event == domain.EventNotification {
		if snap := p.try(ctx, domain.ChannelNotification, func() (*domain.ScreenSnapshot, error) {
			if p.providers.Notification == nil {
				return nil, nil
			}
			return p.providers.Notification(ctx)
		}); snap != nil {
			if hasOfferTriple(snap) {
				return snap
			}
			if fallback == nil {
				fallback = snap
			}
		}
	}

	if snap := p.try(ctx, domain.ChannelKeywordSearch, func() (*domain.ScreenSnapshot, error) {
		if p.providers.KeywordSearch == nil {
			return nil, nil
		}
		return p.providers.KeywordSearch(ctx, keywordSearchTokens)
	}); snap != nil {
		if hasOfferTriple(snap) {
			return snap
		}
		if fallback == nil {
			fallback = snap
		}
	}

	// Structural channels produced no full offer signal: escalate to image
	// recognition if the cooldown and in-flight tracking allow it.
	if snap := p.recognize(ctx, windowKey); snap != nil {
		return snap
	}

	return fallback
}

func (p *Planner) recognize(ctx context.Context, windowKey string) *domain.ScreenSnapshot {
	if p.providers.ImageRecognition == nil {
		return nil
	}
	if windowKey != "" && windowKey == p.inflightKey {
		p.logger.Debug("duplicate recognition request suppressed",
			logger.String("window_key", windowKey))
		if p.OCRSuppressed != nil {
			p.OCRSuppressed()
		}
		return nil
	}
	if !p.cooldown.Allow(time.Now()) {
		p.logger.Debug("recognition cooldown active",
			logger.Duration("interval", p.cooldown.Interval()))
		if p.OCRSuppressed != nil {
			p.OCRSuppressed()
		}
		return nil
	}

	p.inflightKey = windowKey
	if p.OCRRequested != nil {
		p.OCRRequested()
	}
	snap := p.try(ctx, domain.ChannelImageRecognition, func() (*domain.ScreenSnapshot, error) {
		return p.providers.ImageRecognition(ctx)
	})

	usable := snap != nil && hasOfferTriple(snap)
	if usable {
		// The window state produced a real offer; a later request for the
		// same key is legitimate again.
		p.inflightKey = ""
	}
	p.cooldown.Record(usable)
	if snap == nil || snap.Empty() {
		return nil
	}
	return snap
}

// try invokes one channel, converting panics, errors and empty snapshots
// into "no signal".
func (p *Planner) try(ctx context.Context, channel domain.SourceChannel, fn func() (*domain.ScreenSnapshot, error)) (snap *domain.ScreenSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Warn("snapshot channel panicked",
				logger.String("channel", string(channel)),
				logger.Any("panic", r))
			snap = nil
		}
	}()

	s, err := fn()
	if err != nil {
		p.logger.Debug("snapshot channel failed",
			logger.String("channel", string(channel)),
			logger.Error(err))
		return nil
	}
	if s == nil || s.Empty() {
		return nil
	}
	if s.Channel == "" {
		s.Channel = channel
	}
	return s
}

// hasOfferTriple reports whether a snapshot's text carries the
// currency+distance+time triple that marks a complete offer surface.
func hasOfferTriple(snap *domain.ScreenSnapshot) bool {
	text := Normalize(snap.RawText)
	return currencyRe.MatchString(text) &&
		distanceRe.MatchString(text) &&
		timeRe.MatchString(text)
}
