package assessments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores assessments in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu     sync.RWMutex
	byID   map[string]Assessment
	byUser map[string][]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		byID:   make(map[string]Assessment),
		byUser: make(map[string][]string),
	}
}

// Create stores the assessment.
func (r *MemoryRepo) Create(ctx context.Context, a Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[a.ID] = a.clone()
	r.byUser[a.UserID] = append(r.byUser[a.UserID], a.ID)
	return nil
}

// GetByID returns an assessment by its ID.
func (r *MemoryRepo) GetByID(ctx context.Context, assessmentID string) (Assessment, error) {
	if err := ctx.Err(); err != nil {
		return Assessment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.byID[assessmentID]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a.clone(), nil
}

// Update replaces the mutable fields of an existing assessment.
func (r *MemoryRepo) Update(ctx context.Context, a Assessment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.byID[a.ID]
	if !ok {
		return ErrNotFound
	}
	updated := a.clone()
	updated.UserID = existing.UserID
	updated.CreatedAt = existing.CreatedAt
	r.byID[a.ID] = updated
	return nil
}

// SetReportKey records where the assessment's report was stored.
func (r *MemoryRepo) SetReportKey(ctx context.Context, assessmentID, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[assessmentID]
	if !ok {
		return ErrNotFound
	}
	a.ReportKey = key
	a.UpdatedAt = time.Now().UTC()
	r.byID[assessmentID] = a
	return nil
}

// ListByUser returns a user's assessments, newest first, with limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}

	r.mu.RLock()
	ids := r.byUser[userID]
	out := make([]Assessment, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.byID[id].clone())
	}
	r.mu.RUnlock()

	if offset >= len(out) {
		return []Assessment{}, nil
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	end := len(out)
	if offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

var _ Repo = (*MemoryRepo)(nil)
