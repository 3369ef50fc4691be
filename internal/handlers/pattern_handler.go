package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/models"
)

// PatternHandler handles HTTP requests for pattern library inspection.
// The API is read-only: records are mutated through the CLI curation
// commands, never by the server.
type PatternHandler struct {
	store  interfaces.PatternStorage
	logger arbor.ILogger
}

// NewPatternHandler creates a new PatternHandler
func NewPatternHandler(store interfaces.PatternStorage, logger arbor.ILogger) *PatternHandler {
	return &PatternHandler{
		store:  store,
		logger: logger,
	}
}

type patternListResponse struct {
	Patterns   []*models.Pattern  `json:"patterns"`
	Pagination PaginationResponse `json:"pagination"`
}

// ListPatternsHandler handles GET /api/patterns with optional ?type= filter
// and pagination.
func (h *PatternHandler) ListPatternsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	var (
		records []*models.Pattern
		err     error
	)

	if typeFilter := r.URL.Query().Get("type"); typeFilter != "" {
		records, err = h.store.ListByType(r.Context(), models.PatternType(typeFilter))
	} else {
		records, err = h.store.ListActive(r.Context())
	}
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to list patterns")
		WriteError(w, http.StatusInternalServerError, "Failed to list patterns")
		return
	}

	page, pageSize := GetPaginationParams(r)
	start, end, pagination := PageBounds(page, pageSize, len(records))

	WriteJSON(w, http.StatusOK, patternListResponse{
		Patterns:   records[start:end],
		Pagination: pagination,
	})
}
