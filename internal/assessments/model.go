package assessments

import (
	"time"

	"coverage-backend/internal/assessment"
)

const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Assessment is the stored form of one user's questionnaire session.
type Assessment struct {
	ID          string                  `json:"id"`
	UserID      string                  `json:"userId"`
	Position    int                     `json:"position"`
	Status      string                  `json:"status"`
	Answers     assessment.AnswerRecord `json:"answers"`
	ReportKey   string                  `json:"reportKey,omitempty"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
	CompletedAt *time.Time              `json:"completedAt,omitempty"`
}

func statusFor(completed bool) string {
	if completed {
		return StatusCompleted
	}
	return StatusInProgress
}

func (a Assessment) clone() Assessment {
	out := a
	out.Answers = a.Answers.Clone()
	if a.CompletedAt != nil {
		t := *a.CompletedAt
		out.CompletedAt = &t
	}
	return out
}
