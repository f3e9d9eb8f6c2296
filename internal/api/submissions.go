package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/greenstart/esgscope/internal/rescore"
	"github.com/greenstart/esgscope/internal/store"
	"github.com/greenstart/esgscope/pkg/submission"
)

type submitRequest struct {
	Type        string          `json:"type"`
	Data        json.RawMessage `json:"data"`
	SubmittedBy string          `json:"submittedBy"`
}

type submitResponse struct {
	Submission *store.Submission  `json:"submission"`
	Issues     []submission.Issue `json:"issues,omitempty"`
}

type reviewRequest struct {
	Status          string `json:"status"`
	RejectionReason string `json:"rejectionReason"`
	ReviewerID      string `json:"reviewerId"`
}

func (h *Handler) handleListSubmissions(w http.ResponseWriter, r *http.Request) {
	companyID := chi.URLParam(r, "companyID")
	if _, err := h.store.GetCompany(r.Context(), companyID); err != nil {
		h.fail(w, r, err)
		return
	}

	f := store.SubmissionFilter{CompanyID: companyID}
	if t := r.URL.Query().Get("type"); t != "" {
		c, err := submission.ParseCategory(t)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		f.Type = c
	}
	if s := r.URL.Query().Get("status"); s != "" {
		f.Status = store.SubmissionStatus(strings.ToUpper(s))
	}

	subs, err := h.store.ListSubmissions(r.Context(), f)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if subs == nil {
		subs = []store.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *Handler) handleGetSubmission(w http.ResponseWriter, r *http.Request) {
	sub, err := h.store.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Data) == 0 {
		writeError(w, http.StatusBadRequest, "data is required")
		return
	}

	sub, issues, err := h.svc.Submit(r.Context(), rescore.SubmitRequest{
		CompanyID:   chi.URLParam(r, "companyID"),
		Type:        req.Type,
		Data:        req.Data,
		SubmittedBy: req.SubmittedBy,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResponse{Submission: sub, Issues: issues})
}

func (h *Handler) handleReview(w http.ResponseWriter, r *http.Request) {
	var req reviewRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	res, err := h.svc.Review(r.Context(), rescore.ReviewRequest{
		SubmissionID:    chi.URLParam(r, "submissionID"),
		Status:          req.Status,
		RejectionReason: req.RejectionReason,
		ReviewerID:      req.ReviewerID,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
