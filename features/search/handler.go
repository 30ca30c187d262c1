// Package search is the HTTP surface of the retrieval pipeline.
package search

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"paperbase/internal/expand"
	"paperbase/internal/middleware"
	"paperbase/internal/retrieval"
)

type Expander interface {
	Expand(ctx context.Context, query string, history []expand.Turn) []string
}

type Searcher interface {
	Search(ctx context.Context, variants []string) ([]retrieval.Hit, error)
}

type Handler struct {
	expander Expander
	searcher Searcher
}

func NewHandler(expander Expander, searcher Searcher) *Handler {
	return &Handler{expander: expander, searcher: searcher}
}

type searchRequest struct {
	Query   string        `json:"query"`
	History []expand.Turn `json:"history,omitempty"`
}

type searchResponse struct {
	Query    string          `json:"query"`
	Variants []string        `json:"variants"`
	Results  []retrieval.Hit `json:"results"`
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", err.Error(), http.StatusBadRequest)
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		h.writeError(r.Context(), w, "VALIDATION_ERROR", "query is required", http.StatusBadRequest)
		return
	}

	variants := h.expander.Expand(r.Context(), req.Query, req.History)
	hits, err := h.searcher.Search(r.Context(), variants)
	if err != nil {
		h.writeError(r.Context(), w, "INTERNAL_ERROR", err.Error(), http.StatusInternalServerError)
		return
	}
	if hits == nil {
		hits = []retrieval.Hit{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"data": searchResponse{
		Query:    req.Query,
		Variants: variants,
		Results:  hits,
	}})
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	json.NewEncoder(w).Encode(resp)
}
