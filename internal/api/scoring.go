package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/greenstart/esgscope/pkg/scoring"
	"github.com/greenstart/esgscope/pkg/submission"
)

type scoreRequest struct {
	Environmental json.RawMessage `json:"environmental,omitempty"`
	Social        json.RawMessage `json:"social,omitempty"`
	Governance    json.RawMessage `json:"governance,omitempty"`
	Policy        string          `json:"policy,omitempty"`
}

type scoreResponse struct {
	*scoring.ScoreCard
	Issues map[scoring.Category][]submission.Issue `json:"issues,omitempty"`
}

// handleScore scores ad-hoc metrics without storing anything.
func (h *Handler) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	policy := h.defaultPolicy()
	if req.Policy != "" {
		p, err := scoring.ParsePolicy(req.Policy)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		policy = p
	}

	var (
		in     scoring.Input
		issues = make(map[scoring.Category][]submission.Issue)
	)
	raw := map[scoring.Category]json.RawMessage{
		scoring.Environmental: req.Environmental,
		scoring.Social:        req.Social,
		scoring.Governance:    req.Governance,
	}
	for _, c := range scoring.Categories() {
		data := raw[c]
		if len(data) == 0 || string(data) == "null" {
			continue
		}
		m, is, err := submission.Decode(c, data)
		if err != nil {
			writeError(w, http.StatusBadRequest, strings.ToLower(string(c))+": "+err.Error())
			return
		}
		if len(is) > 0 {
			issues[c] = is
		}
		switch v := m.(type) {
		case scoring.EnvironmentalMetrics:
			in.Environmental = &v
		case scoring.SocialMetrics:
			in.Social = &v
		case scoring.GovernanceMetrics:
			in.Governance = &v
		}
	}

	card, err := scoring.NewEngine(policy).Score(in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := scoreResponse{ScoreCard: card}
	if len(issues) > 0 {
		resp.Issues = issues
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) defaultPolicy() scoring.OverallPolicy {
	if h.svc != nil {
		return h.svc.Engine().Policy()
	}
	return scoring.PolicyWeighted
}

func (h *Handler) handleRating(w http.ResponseWriter, r *http.Request) {
	score, err := strconv.ParseFloat(chi.URLParam(r, "score"), 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "score must be a number")
		return
	}
	info, err := scoring.Rate(score)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) handleBenchmark(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scoring.Benchmark(chi.URLParam(r, "industry")))
}

type peersResponse struct {
	Industry  scoring.Industry          `json:"industry"`
	Benchmark scoring.IndustryBenchmark `json:"benchmark"`
	Peers     scoring.PeerStats         `json:"peers"`
}

// handlePeers compares stored overall scores of companies in an industry
// with the static benchmark for that industry.
func (h *Handler) handlePeers(w http.ResponseWriter, r *http.Request) {
	industry := r.URL.Query().Get("industry")
	if industry == "" {
		industry = h.industry
	}
	bench := scoring.Benchmark(industry)

	companies, err := h.store.ListCompanies(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	inIndustry := make(map[string]bool, len(companies))
	for _, c := range companies {
		if scoring.Benchmark(c.Industry).Industry == bench.Industry {
			inIndustry[c.ID] = true
		}
	}

	scores, err := h.store.ListScores(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var overall []int
	for _, sc := range scores {
		if inIndustry[sc.CompanyID] {
			overall = append(overall, sc.OverallScore)
		}
	}

	writeJSON(w, http.StatusOK, peersResponse{
		Industry:  bench.Industry,
		Benchmark: bench,
		Peers:     scoring.ComputePeerStats(overall),
	})
}
