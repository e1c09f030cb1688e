package assessments

import "context"

// Repo defines persistence operations for assessments.
type Repo interface {
	Create(ctx context.Context, a Assessment) error
	GetByID(ctx context.Context, assessmentID string) (Assessment, error)
	// Update writes position, status, answers, report key and timestamps.
	Update(ctx context.Context, a Assessment) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error)
	SetReportKey(ctx context.Context, assessmentID, key string) error
}
