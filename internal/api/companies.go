package api

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/greenstart/esgscope/internal/store"
	"github.com/greenstart/esgscope/pkg/scoring"
	"github.com/greenstart/esgscope/pkg/surface"
)

type createCompanyRequest struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.store.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if companies == nil {
		companies = []store.Company{}
	}
	writeJSON(w, http.StatusOK, companies)
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req createCompanyRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	industry := strings.TrimSpace(req.Industry)
	if industry == "" {
		industry = string(scoring.IndustryGeneral)
	}

	c, err := h.store.CreateCompany(r.Context(), name, industry)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	c, err := h.store.GetCompany(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// handleGetScores returns the stored category and overall scores. A company
// that has not been scored yet reports zeros.
func (h *Handler) handleGetScores(w http.ResponseWriter, r *http.Request) {
	sc, err := h.svc.Scores(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// handleGetScoreCard returns the archived card from the last rescore.
// format=text or format=markdown renders it with the company's benchmark.
func (h *Handler) handleGetScoreCard(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	card := h.cache.Get(companyID)
	if card == nil {
		gen := h.cache.Generation(companyID)
		var err error
		card, err = h.svc.Report(r.Context(), companyID)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		// A rescore that lands mid-read leaves the cache empty.
		h.cache.PutIfCurrent(companyID, gen, card)
	}

	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		writeJSON(w, http.StatusOK, card)
		return
	}

	industry := h.industry
	if c, err := h.store.GetCompany(r.Context(), companyID); err == nil && c.Industry != "" {
		industry = c.Industry
	}
	bench := scoring.Benchmark(industry)
	renderer, err := surface.New(format, surface.Options{Benchmark: &bench, Plain: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := renderer.Render(&buf, card); err != nil {
		h.fail(w, r, err)
		return
	}
	contentType := "text/plain; charset=utf-8"
	if format == "markdown" || format == "md" {
		contentType = "text/markdown; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) handleRescore(w http.ResponseWriter, r *http.Request) {
	card, err := h.svc.Recompute(r.Context(), chi.URLParam(r, "companyID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, card)
}
