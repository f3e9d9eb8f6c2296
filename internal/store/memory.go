package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/greenstart/esgscope/pkg/scoring"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	mu          sync.RWMutex
	companies   map[string]Company
	submissions map[string]Submission
	scores      map[string]Score
	seq         map[string]int64 // insertion order, breaks SubmittedAt ties
	next        int64
	now         func() time.Time
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		companies:   make(map[string]Company),
		submissions: make(map[string]Submission),
		scores:      make(map[string]Score),
		seq:         make(map[string]int64),
		now:         time.Now,
	}
}

var _ Store = (*Memory)(nil)

func (m *Memory) CreateCompany(_ context.Context, name, industry string) (*Company, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.companies {
		if strings.EqualFold(c.Name, name) {
			return nil, fmt.Errorf("create company %s: %w", name, ErrConflict)
		}
	}
	c := Company{ID: uuid.NewString(), Name: name, Industry: industry, CreatedAt: m.now().UTC()}
	m.companies[c.ID] = c
	return &c, nil
}

func (m *Memory) GetCompany(_ context.Context, id string) (*Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.companies[id]
	if !ok {
		return nil, fmt.Errorf("get company %s: %w", id, ErrNotFound)
	}
	return &c, nil
}

func (m *Memory) ListCompanies(_ context.Context) ([]Company, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Company, 0, len(m.companies))
	for _, c := range m.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Memory) CreateSubmission(_ context.Context, s *Submission) (*Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.companies[s.CompanyID]; !ok {
		return nil, fmt.Errorf("create submission for company %s: %w", s.CompanyID, ErrNotFound)
	}
	sub := *s
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	if sub.Status == "" {
		sub.Status = StatusPending
	}
	if sub.SubmittedAt.IsZero() {
		sub.SubmittedAt = m.now().UTC()
	}
	m.next++
	m.seq[sub.ID] = m.next
	m.submissions[sub.ID] = sub
	return &sub, nil
}

func (m *Memory) GetSubmission(_ context.Context, id string) (*Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.submissions[id]
	if !ok {
		return nil, fmt.Errorf("get submission %s: %w", id, ErrNotFound)
	}
	return &s, nil
}

func (m *Memory) ListSubmissions(_ context.Context, f SubmissionFilter) ([]Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Submission
	for _, s := range m.submissions {
		if f.CompanyID != "" && s.CompanyID != f.CompanyID {
			continue
		}
		if f.Type != "" && s.Type != f.Type {
			continue
		}
		if f.Status != "" && s.Status != f.Status {
			continue
		}
		out = append(out, s)
	}
	// newest first
	sort.Slice(out, func(i, j int) bool {
		if out[i].SubmittedAt.Equal(out[j].SubmittedAt) {
			return m.seq[out[i].ID] > m.seq[out[j].ID]
		}
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

func (m *Memory) LatestApproved(ctx context.Context, companyID string, c scoring.Category) (*Submission, error) {
	subs, err := m.ListSubmissions(ctx, SubmissionFilter{CompanyID: companyID, Type: c, Status: StatusApproved})
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, fmt.Errorf("latest approved %s submission for %s: %w", c, companyID, ErrNotFound)
	}
	return &subs[0], nil
}

func (m *Memory) UpdateReview(_ context.Context, id string, r Review) (*Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.submissions[id]
	if !ok {
		return nil, fmt.Errorf("review submission %s: %w", id, ErrNotFound)
	}
	if s.Status != StatusPending {
		return nil, fmt.Errorf("review submission %s already %s: %w", id, s.Status, ErrConflict)
	}
	reviewedAt := r.ReviewedAt
	if reviewedAt.IsZero() {
		reviewedAt = m.now().UTC()
	}
	s.Status = r.Status
	s.ReviewerID = r.ReviewerID
	s.RejectionReason = ""
	if r.Status == StatusRejected {
		s.RejectionReason = r.RejectionReason
	}
	s.ReviewedAt = &reviewedAt
	m.submissions[id] = s
	return &s, nil
}

func (m *Memory) UpsertScore(_ context.Context, s *Score) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc := *s
	if sc.UpdatedAt.IsZero() {
		sc.UpdatedAt = m.now().UTC()
	}
	m.scores[sc.CompanyID] = sc
	return nil
}

func (m *Memory) GetScore(_ context.Context, companyID string) (*Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.scores[companyID]
	if !ok {
		return nil, fmt.Errorf("get score for %s: %w", companyID, ErrNotFound)
	}
	return &s, nil
}

func (m *Memory) ListScores(_ context.Context) ([]Score, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Score, 0, len(m.scores))
	for _, s := range m.scores {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CompanyID < out[j].CompanyID })
	return out, nil
}
