package handlers

import (
	"net/http"
	"strconv"

	"github.com/uxtriage/uxtriage/internal/models"
	"github.com/uxtriage/uxtriage/internal/retrieval"
)

// FindResponse is the reply to GET /find.
type FindResponse struct {
	Query   string           `json:"query"`
	Results []models.UXIssue `json:"results"`
	Total   int              `json:"total"`
}

// Find handles direct issue search, bypassing the assistant.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		h.Error(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	if len(query) > 200 {
		h.Error(w, http.StatusBadRequest, "query too long (max 200 chars)")
		return
	}

	limit := retrieval.DefaultLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 50 {
		limit = 50
	}

	issues, err := h.retriever.Search(r.Context(), query, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("query", query).Msg("issue search failed")
		h.Error(w, http.StatusInternalServerError, "search failed")
		return
	}

	h.JSON(w, http.StatusOK, FindResponse{
		Query:   query,
		Results: issues,
		Total:   len(issues),
	})
}
