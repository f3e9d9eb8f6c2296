package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// Postgres is a Store backed by a Postgres database. The schema is
// managed by platform.AutoMigrate.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a Postgres store.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

var _ Store = (*Postgres)(nil)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// wrapErr maps driver errors onto the package sentinels.
func wrapErr(op string, err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
		return fmt.Errorf("%s: %w", op, ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (p *Postgres) CreateCompany(ctx context.Context, name, industry string) (*Company, error) {
	c := &Company{}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO companies (id, name, industry)
		 VALUES ($1, $2, $3)
		 RETURNING id, name, industry, created_at`,
		uuid.NewString(), name, industry,
	).Scan(&c.ID, &c.Name, &c.Industry, &c.CreatedAt)
	if err != nil {
		return nil, wrapErr("create company "+name, err)
	}
	return c, nil
}

func (p *Postgres) GetCompany(ctx context.Context, id string) (*Company, error) {
	c := &Company{}
	err := p.db.QueryRowContext(ctx,
		`SELECT id, name, industry, created_at FROM companies WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.Industry, &c.CreatedAt)
	if err != nil {
		return nil, wrapErr("get company "+id, err)
	}
	return c, nil
}

func (p *Postgres) ListCompanies(ctx context.Context) ([]Company, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, name, industry, created_at FROM companies ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var out []Company
	for rows.Next() {
		var c Company
		if err := rows.Scan(&c.ID, &c.Name, &c.Industry, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

const submissionColumns = `id, company_id, type, status, data, submitted_by, submitted_at,
	reviewer_id, rejection_reason, reviewed_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(r rowScanner) (*Submission, error) {
	var (
		s                                   Submission
		typ, status                         string
		data                                []byte
		submittedBy, reviewer, rejectReason sql.NullString
		reviewedAt                          sql.NullTime
	)
	if err := r.Scan(&s.ID, &s.CompanyID, &typ, &status, &data, &submittedBy, &s.SubmittedAt,
		&reviewer, &rejectReason, &reviewedAt); err != nil {
		return nil, err
	}
	s.Type = scoring.Category(typ)
	s.Status = SubmissionStatus(status)
	s.Data = data
	s.SubmittedBy = submittedBy.String
	s.ReviewerID = reviewer.String
	s.RejectionReason = rejectReason.String
	if reviewedAt.Valid {
		t := reviewedAt.Time
		s.ReviewedAt = &t
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (p *Postgres) CreateSubmission(ctx context.Context, s *Submission) (*Submission, error) {
	id := s.ID
	if id == "" {
		id = uuid.NewString()
	}
	status := s.Status
	if status == "" {
		status = StatusPending
	}
	row := p.db.QueryRowContext(ctx,
		`INSERT INTO submissions (id, company_id, type, status, data, submitted_by, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
		 RETURNING `+submissionColumns,
		id, s.CompanyID, string(s.Type), string(status), string(s.Data), nullString(s.SubmittedBy),
		sql.NullTime{Time: s.SubmittedAt, Valid: !s.SubmittedAt.IsZero()},
	)
	out, err := scanSubmission(row)
	if err != nil {
		var pqErr *pq.Error
		// foreign_key_violation: the company does not exist
		if errors.As(err, &pqErr) && pqErr.Code == "23503" {
			return nil, fmt.Errorf("create submission for company %s: %w", s.CompanyID, ErrNotFound)
		}
		return nil, wrapErr("create submission", err)
	}
	return out, nil
}

func (p *Postgres) GetSubmission(ctx context.Context, id string) (*Submission, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, wrapErr("get submission "+id, err)
	}
	return s, nil
}

func (p *Postgres) ListSubmissions(ctx context.Context, f SubmissionFilter) ([]Submission, error) {
	var (
		where []string
		args  []any
	)
	add := func(col, val string) {
		args = append(args, val)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if f.CompanyID != "" {
		add("company_id", f.CompanyID)
	}
	if f.Type != "" {
		add("type", string(f.Type))
	}
	if f.Status != "" {
		add("status", string(f.Status))
	}

	query := `SELECT ` + submissionColumns + ` FROM submissions`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY submitted_at DESC, seq DESC"

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []Submission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (p *Postgres) LatestApproved(ctx context.Context, companyID string, c scoring.Category) (*Submission, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+submissionColumns+` FROM submissions
		 WHERE company_id = $1 AND type = $2 AND status = $3
		 ORDER BY submitted_at DESC, seq DESC LIMIT 1`,
		companyID, string(c), string(StatusApproved),
	)
	s, err := scanSubmission(row)
	if err != nil {
		return nil, wrapErr(fmt.Sprintf("latest approved %s submission for %s", c, companyID), err)
	}
	return s, nil
}

func (p *Postgres) UpdateReview(ctx context.Context, id string, r Review) (*Submission, error) {
	reason := ""
	if r.Status == StatusRejected {
		reason = r.RejectionReason
	}
	row := p.db.QueryRowContext(ctx,
		`UPDATE submissions
		 SET status = $2, reviewer_id = $3, rejection_reason = $4,
		     reviewed_at = COALESCE($5, now())
		 WHERE id = $1 AND status = $6
		 RETURNING `+submissionColumns,
		id, string(r.Status), nullString(r.ReviewerID), nullString(reason),
		sql.NullTime{Time: r.ReviewedAt, Valid: !r.ReviewedAt.IsZero()},
		string(StatusPending),
	)
	s, err := scanSubmission(row)
	if errors.Is(err, sql.ErrNoRows) {
		// Either the submission is missing or it was already reviewed.
		var status string
		err = p.db.QueryRowContext(ctx,
			`SELECT status FROM submissions WHERE id = $1`, id,
		).Scan(&status)
		if err == nil {
			return nil, fmt.Errorf("review submission %s already %s: %w", id, status, ErrConflict)
		}
	}
	if err != nil {
		return nil, wrapErr("review submission "+id, err)
	}
	return s, nil
}

func (p *Postgres) UpsertScore(ctx context.Context, s *Score) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO esg_scores (company_id, environmental_score, social_score, governance_score,
		                         overall_score, rating, policy, report_ref, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		 ON CONFLICT (company_id) DO UPDATE
		   SET environmental_score = EXCLUDED.environmental_score,
		       social_score = EXCLUDED.social_score,
		       governance_score = EXCLUDED.governance_score,
		       overall_score = EXCLUDED.overall_score,
		       rating = EXCLUDED.rating,
		       policy = EXCLUDED.policy,
		       report_ref = EXCLUDED.report_ref,
		       updated_at = now()`,
		s.CompanyID, s.EnvironmentalScore, s.SocialScore, s.GovernanceScore,
		s.OverallScore, string(s.Rating), string(s.Policy), s.ReportRef,
	)
	if err != nil {
		return wrapErr("upsert score for "+s.CompanyID, err)
	}
	return nil
}

const scoreColumns = `company_id, environmental_score, social_score, governance_score,
	overall_score, rating, policy, report_ref, updated_at`

func scanScore(r rowScanner) (*Score, error) {
	var (
		s              Score
		rating, policy string
	)
	if err := r.Scan(&s.CompanyID, &s.EnvironmentalScore, &s.SocialScore, &s.GovernanceScore,
		&s.OverallScore, &rating, &policy, &s.ReportRef, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Rating = scoring.Rating(rating)
	s.Policy = scoring.OverallPolicy(policy)
	return &s, nil
}

func (p *Postgres) GetScore(ctx context.Context, companyID string) (*Score, error) {
	row := p.db.QueryRowContext(ctx,
		`SELECT `+scoreColumns+` FROM esg_scores WHERE company_id = $1`, companyID)
	s, err := scanScore(row)
	if err != nil {
		return nil, wrapErr("get score for "+companyID, err)
	}
	return s, nil
}

func (p *Postgres) ListScores(ctx context.Context) ([]Score, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT `+scoreColumns+` FROM esg_scores ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var out []Score
	for rows.Next() {
		s, err := scanScore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}
