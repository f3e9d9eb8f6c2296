// Package rescore runs the submission workflow: companies submit category
// metrics, reviewers approve or reject them, and approved data is scored and
// stored as the company's current ESG score.
package rescore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/greenstart/esgscope/internal/store"
	"github.com/greenstart/esgscope/pkg/scoring"
	"github.com/greenstart/esgscope/pkg/submission"
)

var (
	// ErrInvalidReview is returned for a review whose status is not
	// APPROVED or REJECTED, or a rejection without a reason.
	ErrInvalidReview = errors.New("invalid review")
	// ErrNoApprovedData is returned by Recompute when a company has no
	// approved submission in any category.
	ErrNoApprovedData = errors.New("no approved submissions")
)

// Listener is notified after a company's stored score changes.
type Listener func(companyID string)

// Service coordinates submissions, reviews and score recomputation.
type Service struct {
	store   store.Store
	engine  *scoring.Engine
	reports ReportStorage
	log     zerolog.Logger
	now     func() time.Time

	mu        sync.RWMutex
	listeners []Listener
}

// Option configures a Service.
type Option func(*Service)

// WithReports archives every recomputed ScoreCard to rs.
func WithReports(rs ReportStorage) Option {
	return func(s *Service) { s.reports = rs }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l }
}

// NewService creates a rescoring Service.
func NewService(st store.Store, engine *scoring.Engine, opts ...Option) *Service {
	s := &Service{
		store:  st,
		engine: engine,
		log:    zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OnRescore registers fn to run after each successful recompute.
func (s *Service) OnRescore(fn Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

func (s *Service) notify(companyID string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.listeners {
		fn(companyID)
	}
}

// Engine returns the scoring engine used for recomputation.
func (s *Service) Engine() *scoring.Engine { return s.engine }

// SubmitRequest is a new category submission.
type SubmitRequest struct {
	CompanyID   string
	Type        string
	Data        json.RawMessage
	SubmittedBy string
}

// Submit validates and stores a pending submission. Fields that will score
// as 0 are returned as issues; they do not reject the submission.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*store.Submission, []submission.Issue, error) {
	c, err := submission.ParseCategory(req.Type)
	if err != nil {
		return nil, nil, err
	}
	_, issues, err := submission.Decode(c, req.Data)
	if err != nil {
		return nil, nil, fmt.Errorf("submit %s data: %w", c, err)
	}

	sub, err := s.store.CreateSubmission(ctx, &store.Submission{
		CompanyID:   req.CompanyID,
		Type:        c,
		Status:      store.StatusPending,
		Data:        req.Data,
		SubmittedBy: req.SubmittedBy,
	})
	if err != nil {
		return nil, nil, err
	}

	s.log.Info().
		Str("company_id", sub.CompanyID).
		Str("submission_id", sub.ID).
		Str("type", string(c)).
		Int("issues", len(issues)).
		Msg("submission received")
	return sub, issues, nil
}

// ReviewRequest records a reviewer's decision.
type ReviewRequest struct {
	SubmissionID    string
	Status          string
	RejectionReason string
	ReviewerID      string
}

// ReviewResult is the reviewed submission and, for approvals, the
// recomputed score card.
type ReviewResult struct {
	Submission *store.Submission  `json:"submission"`
	Card       *scoring.ScoreCard `json:"scoreCard,omitempty"`
}

// Review applies an APPROVED or REJECTED decision to a pending submission.
// Decisions are final: reviewing it again returns store.ErrConflict, so a
// stored score never rests on data that was approved and later withdrawn.
// Approval recomputes the company's scores from its latest approved
// submissions.
func (s *Service) Review(ctx context.Context, req ReviewRequest) (*ReviewResult, error) {
	status := store.SubmissionStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	switch status {
	case store.StatusApproved, store.StatusRejected:
	default:
		return nil, fmt.Errorf("%w: status %q", ErrInvalidReview, req.Status)
	}
	reason := strings.TrimSpace(req.RejectionReason)
	if status == store.StatusRejected && reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrInvalidReview)
	}

	sub, err := s.store.UpdateReview(ctx, req.SubmissionID, store.Review{
		Status:          status,
		ReviewerID:      req.ReviewerID,
		RejectionReason: reason,
		ReviewedAt:      s.now().UTC(),
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("submission_id", sub.ID).
		Str("company_id", sub.CompanyID).
		Str("status", string(status)).
		Msg("submission reviewed")

	result := &ReviewResult{Submission: sub}
	if status == store.StatusApproved {
		card, err := s.Recompute(ctx, sub.CompanyID)
		if err != nil {
			return nil, fmt.Errorf("recompute after approval: %w", err)
		}
		result.Card = card
	}
	return result, nil
}

// Recompute scores a company from the latest approved submission in each
// category, stores the result and archives the full card.
func (s *Service) Recompute(ctx context.Context, companyID string) (*scoring.ScoreCard, error) {
	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}

	var in scoring.Input
	var found int
	for _, c := range scoring.Categories() {
		sub, err := s.store.LatestApproved(ctx, companyID, c)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}

		m, issues, err := submission.Decode(c, sub.Data)
		if err != nil {
			// Stored data that no longer decodes scores as empty.
			s.log.Warn().Err(err).Str("submission_id", sub.ID).Msg("approved submission is malformed")
			continue
		}
		for _, is := range issues {
			s.log.Debug().Str("submission_id", sub.ID).Str("metric", is.Key).Msg("metric defaulted to 0")
		}

		switch v := m.(type) {
		case scoring.EnvironmentalMetrics:
			in.Environmental = &v
		case scoring.SocialMetrics:
			in.Social = &v
		case scoring.GovernanceMetrics:
			in.Governance = &v
		}
		found++
	}
	if found == 0 {
		return nil, fmt.Errorf("recompute %s: %w", companyID, ErrNoApprovedData)
	}

	card, err := s.engine.Score(in)
	if err != nil {
		return nil, fmt.Errorf("score company %s: %w", companyID, err)
	}

	score := &store.Score{
		CompanyID:          companyID,
		EnvironmentalScore: card.EnvironmentalScore,
		SocialScore:        card.SocialScore,
		GovernanceScore:    card.GovernanceScore,
		OverallScore:       card.OverallScore,
		Rating:             card.Rating.Rating,
		Policy:             card.Policy,
		UpdatedAt:          s.now().UTC(),
	}

	if s.reports != nil {
		data, err := json.Marshal(card)
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		ref, err := s.reports.PutReport(ctx, companyID, uuid.NewString(), data)
		if err != nil {
			// The score is still stored; only the archive is missing.
			s.log.Error().Err(err).Str("company_id", companyID).Msg("archive score report")
		}
		score.ReportRef = ref
	}

	if err := s.store.UpsertScore(ctx, score); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("company_id", companyID).
		Int("overall", card.OverallScore).
		Str("rating", string(card.Rating.Rating)).
		Msg("company rescored")

	s.notify(companyID)
	return card, nil
}

// RecomputeAll rescores every company that has approved data. Companies
// without approved submissions are skipped. It returns the number rescored
// and the first error encountered; later companies are still attempted.
func (s *Service) RecomputeAll(ctx context.Context) (int, error) {
	companies, err := s.store.ListCompanies(ctx)
	if err != nil {
		return 0, fmt.Errorf("list companies: %w", err)
	}

	var (
		n        int
		firstErr error
	)
	for _, c := range companies {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if _, err := s.Recompute(ctx, c.ID); err != nil {
			if errors.Is(err, ErrNoApprovedData) {
				continue
			}
			s.log.Error().Err(err).Str("company_id", c.ID).Msg("rescore failed")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		n++
	}
	return n, firstErr
}

// Scores returns the stored score for a company, or all zeros when the
// company has not been scored yet.
func (s *Service) Scores(ctx context.Context, companyID string) (*store.Score, error) {
	if _, err := s.store.GetCompany(ctx, companyID); err != nil {
		return nil, err
	}
	sc, err := s.store.GetScore(ctx, companyID)
	if errors.Is(err, store.ErrNotFound) {
		return &store.Score{CompanyID: companyID}, nil
	}
	return sc, err
}

// Report returns the archived ScoreCard behind a stored score.
func (s *Service) Report(ctx context.Context, companyID string) (*scoring.ScoreCard, error) {
	if s.reports == nil {
		return nil, ErrReportNotFound
	}
	sc, err := s.store.GetScore(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if sc.ReportRef == "" {
		return nil, fmt.Errorf("company %s: %w", companyID, ErrReportNotFound)
	}
	data, err := s.reports.GetReport(ctx, sc.ReportRef)
	if err != nil {
		return nil, err
	}
	var card scoring.ScoreCard
	if err := json.Unmarshal(data, &card); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", sc.ReportRef, err)
	}
	return &card, nil
}
