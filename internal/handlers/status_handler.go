package handlers

import (
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/common"
	"github.com/ternarybob/titulus/internal/interfaces"
)

// StatusHandler handles HTTP requests for application status and health
type StatusHandler struct {
	config  *common.Config
	store   interfaces.PatternStorage
	logger  arbor.ILogger
	started time.Time
}

// NewStatusHandler creates a new StatusHandler
func NewStatusHandler(config *common.Config, store interfaces.PatternStorage, logger arbor.ILogger) *StatusHandler {
	return &StatusHandler{
		config:  config,
		store:   store,
		logger:  logger,
		started: time.Now(),
	}
}

// GetStatusHandler handles GET /api/status
func (h *StatusHandler) GetStatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	patternCount, err := h.store.CountPatterns(r.Context())
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to count patterns for status")
		patternCount = -1
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"service":        "titulus",
		"version":        common.GetVersion(),
		"environment":    h.config.Environment,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"pattern_count":  patternCount,
	})
}

// HealthHandler handles GET /api/health
func (h *StatusHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if _, err := h.store.CountPatterns(r.Context()); err != nil {
		WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  "pattern store unavailable",
		})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// VersionHandler handles GET /api/version
func (h *StatusHandler) VersionHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetFullVersion(),
	})
}
