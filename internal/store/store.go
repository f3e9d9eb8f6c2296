// Package store persists companies, ESG data submissions and the scores
// derived from approved submissions.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/greenstart/esgscope/pkg/scoring"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a unique constraint would be violated or
	// a submission has already been reviewed.
	ErrConflict = errors.New("conflict")
)

// SubmissionStatus is the review state of a submission.
type SubmissionStatus string

const (
	StatusPending  SubmissionStatus = "PENDING"
	StatusApproved SubmissionStatus = "APPROVED"
	StatusRejected SubmissionStatus = "REJECTED"
)

// Company is a reporting entity.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Industry  string    `json:"industry"`
	CreatedAt time.Time `json:"createdAt"`
}

// Submission is one category's raw metrics as submitted for review.
type Submission struct {
	ID              string           `json:"id"`
	CompanyID       string           `json:"companyId"`
	Type            scoring.Category `json:"type"`
	Status          SubmissionStatus `json:"status"`
	Data            json.RawMessage  `json:"data"`
	SubmittedBy     string           `json:"submittedBy,omitempty"`
	SubmittedAt     time.Time        `json:"submittedAt"`
	ReviewerID      string           `json:"reviewerId,omitempty"`
	RejectionReason string           `json:"rejectionReason,omitempty"`
	ReviewedAt      *time.Time       `json:"reviewedAt,omitempty"`
}

// Review is the outcome recorded against a submission.
type Review struct {
	Status          SubmissionStatus
	ReviewerID      string
	RejectionReason string
	ReviewedAt      time.Time
}

// Score is the stored score record for a company. There is at most one per company.
type Score struct {
	CompanyID          string                `json:"companyId"`
	EnvironmentalScore int                   `json:"environmentalScore"`
	SocialScore        int                   `json:"socialScore"`
	GovernanceScore    int                   `json:"governanceScore"`
	OverallScore       int                   `json:"overallScore"`
	Rating             scoring.Rating        `json:"rating,omitempty"`
	Policy             scoring.OverallPolicy `json:"policy,omitempty"`
	ReportRef          string                `json:"reportRef,omitempty"`
	UpdatedAt          time.Time             `json:"updatedAt"`
}

// SubmissionFilter narrows ListSubmissions. Zero fields match everything.
type SubmissionFilter struct {
	CompanyID string
	Type      scoring.Category
	Status    SubmissionStatus
}

// CompanyRepository manages companies.
type CompanyRepository interface {
	CreateCompany(ctx context.Context, name, industry string) (*Company, error)
	GetCompany(ctx context.Context, id string) (*Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
}

// SubmissionRepository manages submissions and their review state.
type SubmissionRepository interface {
	CreateSubmission(ctx context.Context, s *Submission) (*Submission, error)
	GetSubmission(ctx context.Context, id string) (*Submission, error)
	ListSubmissions(ctx context.Context, f SubmissionFilter) ([]Submission, error)
	// LatestApproved returns the most recently submitted approved
	// submission of the given type, or ErrNotFound.
	LatestApproved(ctx context.Context, companyID string, c scoring.Category) (*Submission, error)
	// UpdateReview records a decision on a PENDING submission. A submission
	// that was already reviewed returns ErrConflict.
	UpdateReview(ctx context.Context, id string, r Review) (*Submission, error)
}

// ScoreRepository manages stored scores.
type ScoreRepository interface {
	UpsertScore(ctx context.Context, s *Score) error
	GetScore(ctx context.Context, companyID string) (*Score, error)
	ListScores(ctx context.Context) ([]Score, error)
}

// Store bundles every repository.
type Store interface {
	CompanyRepository
	SubmissionRepository
	ScoreRepository
}
