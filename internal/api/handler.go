// Package api implements the esgscope REST API: stateless scoring
// endpoints plus the company, submission and review workflow.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/greenstart/esgscope/internal/rescore"
	"github.com/greenstart/esgscope/internal/store"
	"github.com/greenstart/esgscope/pkg/scoring"
	"github.com/greenstart/esgscope/pkg/submission"
)

// Config wires the API to its services.
type Config struct {
	Service  *rescore.Service
	Store    store.Store
	Cache    *CardCache
	APIKey   string
	Industry string // default benchmark industry
	Log      zerolog.Logger
	// Health reports backend reachability for /healthz. Nil means always healthy.
	Health func(ctx context.Context) error
}

// Handler is the top-level API handler.
type Handler struct {
	svc      *rescore.Service
	store    store.Store
	cache    *CardCache
	apiKey   string
	industry string
	log      zerolog.Logger
	health   func(ctx context.Context) error
}

// NewHandler creates a new API handler. The card cache is invalidated
// whenever the service rescores a company.
func NewHandler(cfg Config) *Handler {
	cache := cfg.Cache
	if cache == nil {
		cache = NewCardCache(0)
	}
	h := &Handler{
		svc:      cfg.Service,
		store:    cfg.Store,
		cache:    cache,
		apiKey:   cfg.APIKey,
		industry: cfg.Industry,
		log:      cfg.Log.With().Str("component", "api").Logger(),
		health:   cfg.Health,
	}
	if h.svc != nil {
		h.svc.OnRescore(cache.Invalidate)
	}
	return h
}

// Router builds the chi router with middleware and every route.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.log))
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler())

	r.Get("/healthz", h.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		// Stateless scoring
		r.Post("/score", h.handleScore)
		r.Get("/ratings/{score}", h.handleRating)
		r.Get("/benchmarks/{industry}", h.handleBenchmark)
		r.Get("/peers", h.handlePeers)

		// Read endpoints
		r.Get("/companies", h.handleListCompanies)
		r.Get("/companies/{companyID}", h.handleGetCompany)
		r.Get("/companies/{companyID}/scores", h.handleGetScores)
		r.Get("/companies/{companyID}/scorecard", h.handleGetScoreCard)
		r.Get("/companies/{companyID}/submissions", h.handleListSubmissions)
		r.Get("/submissions/{submissionID}", h.handleGetSubmission)

		// Write endpoints (auth-protected)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(h.apiKey))
			r.Post("/companies", h.handleCreateCompany)
			r.Post("/companies/{companyID}/submissions", h.handleSubmit)
			r.Post("/companies/{companyID}/rescore", h.handleRescore)
			r.Post("/submissions/{submissionID}/review", h.handleReview)
		})
	})

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unreachable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeBody reads a JSON request body into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	return dec.Decode(v)
}

// fail maps service errors onto HTTP statuses. Unexpected errors are logged
// and reported without detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var status int
	switch {
	case errors.Is(err, store.ErrNotFound), errors.Is(err, rescore.ErrReportNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, rescore.ErrNoApprovedData):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, rescore.ErrInvalidReview),
		errors.Is(err, submission.ErrUnknownCategory),
		errors.Is(err, submission.ErrMalformedPayload),
		errors.Is(err, scoring.ErrInvalidScore):
		status = http.StatusBadRequest
	default:
		h.log.Error().Err(err).
			Str("path", r.URL.Path).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeError(w, status, err.Error())
}
