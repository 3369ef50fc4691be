package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/titulus/internal/interfaces"
	"github.com/ternarybob/titulus/internal/models"
)

// maxBatchTitles caps a single batch request. Larger corpora go through
// the CLI file mode.
const maxBatchTitles = 1000

// ParseHandler handles HTTP requests for title parsing
type ParseHandler struct {
	pipeline interfaces.TitleParser
	logger   arbor.ILogger
}

// NewParseHandler creates a new ParseHandler
func NewParseHandler(p interfaces.TitleParser, logger arbor.ILogger) *ParseHandler {
	return &ParseHandler{
		pipeline: p,
		logger:   logger,
	}
}

type parseRequest struct {
	Title string `json:"title"`
}

type batchParseRequest struct {
	Titles []string `json:"titles"`
}

type batchParseResponse struct {
	Count   int                   `json:"count"`
	Results []*models.ParseResult `json:"results"`
}

// ParseTitleHandler handles POST /api/parse
func (h *ParseHandler) ParseTitleHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req parseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.Title == "" {
		WriteError(w, http.StatusBadRequest, "Missing required field: title")
		return
	}

	result := h.pipeline.Parse(r.Context(), req.Title)
	WriteJSON(w, http.StatusOK, result)
}

// BatchParseHandler handles POST /api/parse/batch. Titles are parsed in
// request order; a title that fails a stage still yields a result with the
// failure noted, so the response always has one entry per input.
func (h *ParseHandler) BatchParseHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req batchParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if len(req.Titles) == 0 {
		WriteError(w, http.StatusBadRequest, "Missing required field: titles")
		return
	}
	if len(req.Titles) > maxBatchTitles {
		WriteError(w, http.StatusRequestEntityTooLarge, "Batch too large: limit is 1000 titles")
		return
	}

	results := make([]*models.ParseResult, 0, len(req.Titles))
	for _, title := range req.Titles {
		select {
		case <-r.Context().Done():
			WriteError(w, http.StatusRequestTimeout, "Request canceled")
			return
		default:
		}
		results = append(results, h.pipeline.Parse(r.Context(), title))
	}

	h.logger.Debug().Int("count", len(results)).Msg("Batch parse completed")

	WriteJSON(w, http.StatusOK, batchParseResponse{
		Count:   len(results),
		Results: results,
	})
}
