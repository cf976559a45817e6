package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/n2ilva/motorista-inteligente/internal/analysis"
	"github.com/n2ilva/motorista-inteligente/internal/config"
	"github.com/n2ilva/motorista-inteligente/internal/detect"
	"github.com/n2ilva/motorista-inteligente/internal/domain"
	"github.com/n2ilva/motorista-inteligente/internal/logger"
	"github.com/n2ilva/motorista-inteligente/internal/session"
)

// Handler handles HTTP requests for the detector API.
type Handler struct {
	pipeline *detect.Pipeline
	scorer   *analysis.Scorer
	session  *session.Aggregator
	advisory session.Advisory
	cooldown *detect.OCRCooldown
	cfg      *config.Config
	logger   logger.Logger
}

// NewHandler creates the API handler. advisory and cooldown may be nil.
func NewHandler(
	pipeline *detect.Pipeline,
	scorer *analysis.Scorer,
	sess *session.Aggregator,
	advisory session.Advisory,
	cooldown *detect.OCRCooldown,
	cfg *config.Config,
	log logger.Logger,
) *Handler {
	if advisory == nil {
		advisory = session.DefaultAdvisory
	}
	return &Handler{
		pipeline: pipeline,
		scorer:   scorer,
		session:  sess,
		advisory: advisory,
		cooldown: cooldown,
		cfg:      cfg,
		logger:   log,
	}
}

// SubmitSnapshot handles POST /api/v1/snapshots.
func (h *Handler) SubmitSnapshot(c *gin.Context) {
	var req SnapshotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid snapshot request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome := h.pipeline.Submit(c.Request.Context(), req.toSnapshot())
	c.JSON(http.StatusOK, outcome)
}

// SubmitClick handles POST /api/v1/clicks.
func (h *Handler) SubmitClick(c *gin.Context) {
	var req ClickRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, ClickResponse{Consumed: h.pipeline.SubmitClick(req.Text)})
}

// Analyze handles POST /api/v1/analyze. Stateless: the offer never enters
// the pipeline.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid analyze request", logger.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	at := time.Now()
	if req.At != nil {
		at = *req.At
	}
	offer := &domain.RideOffer{
		ID:               uuid.NewString(),
		Source:           domain.SourceUnknown,
		Price:            req.Price,
		RideDistanceKm:   req.RideDistanceKm,
		RideTimeMin:      req.RideTimeMin,
		PickupDistanceKm: req.PickupDistanceKm,
		PickupTimeMin:    req.PickupTimeMin,
		DetectedAt:       at,
	}

	c.JSON(http.StatusOK, AnalyzeResponse{Analysis: h.scorer.Analyze(offer, at)})
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(c *gin.Context) {
	state, lastOffer, _ := h.pipeline.Status()
	resp := StatusResponse{
		TrackerState: string(state),
		LastOffer:    lastOffer,
		Service: ServiceInfo{
			Name:    h.cfg.Service.Name,
			Version: h.cfg.Service.Version,
		},
	}
	if fp, ok := h.pipeline.LastFingerprint(); ok {
		resp.LastFingerprint = fp
	}
	if h.cooldown != nil {
		resp.OCRInterval = h.cooldown.Interval().String()
	}
	c.JSON(http.StatusOK, resp)
}

// Stats handles GET /api/v1/stats.
func (h *Handler) Stats(c *gin.Context) {
	summary := h.session.Summarize()

	byApp := make(map[string]int, len(summary.OffersByApp))
	for app, n := range summary.OffersByApp {
		byApp[string(app)] = n
	}
	c.JSON(http.StatusOK, StatsResponse{
		WindowMinutes: summary.WindowMinutes,
		OfferCount:    summary.OfferCount,
		OffersByApp:   byApp,
		AcceptedCount: summary.AcceptedCount,
		AveragePrice:  summary.AveragePrice,
		Trend:         string(summary.Trend),
		Advisory:      h.advisory(summary),
	})
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.cfg.Service.Name,
		"version": h.cfg.Service.Version,
	})
}

// ReadyCheck handles GET /ready. The detector has no external dependencies
// to probe; ready follows healthy.
func (h *Handler) ReadyCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
