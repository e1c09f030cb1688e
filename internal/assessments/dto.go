package assessments

import (
	"math"
	"time"

	"coverage-backend/internal/assessment"
	"coverage-backend/internal/assessment/recommendations"
)

type progressView struct {
	Current int `json:"current"`
	Total   int `json:"total"`
	Percent int `json:"percent"`
}

type assessmentView struct {
	AssessmentID string                  `json:"assessmentId"`
	Status       string                  `json:"status"`
	Position     int                     `json:"position"`
	Total        int                     `json:"total"`
	Progress     progressView            `json:"progress"`
	Question     *assessment.Question    `json:"question,omitempty"`
	CanGoBack    bool                    `json:"canGoBack"`
	Answers      assessment.AnswerRecord `json:"answers"`
	ReportReady  bool                    `json:"reportReady"`
	CreatedAt    time.Time               `json:"createdAt"`
	UpdatedAt    time.Time               `json:"updatedAt"`
	CompletedAt  *time.Time              `json:"completedAt,omitempty"`
}

type assessmentSummary struct {
	AssessmentID string     `json:"assessmentId"`
	Status       string     `json:"status"`
	Position     int        `json:"position"`
	Total        int        `json:"total"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CompletedAt  *time.Time `json:"completedAt,omitempty"`
}

type resultsView struct {
	AssessmentID    string                           `json:"assessmentId"`
	Intro           string                           `json:"intro"`
	Recommendations []recommendations.Recommendation `json:"recommendations"`
	Disclaimer      string                           `json:"disclaimer"`
}

// progressFor reports a 1-based question counter and the percentage shown on
// the progress bar; a completed assessment is always 100%.
func progressFor(position, total int, completed bool) progressView {
	if total <= 0 {
		return progressView{}
	}
	if completed {
		return progressView{Current: total, Total: total, Percent: 100}
	}
	current := position + 1
	return progressView{
		Current: current,
		Total:   total,
		Percent: int(math.Round(float64(current) / float64(total) * 100)),
	}
}

func toView(c *assessment.Catalog, a Assessment) assessmentView {
	completed := a.Status == StatusCompleted
	view := assessmentView{
		AssessmentID: a.ID,
		Status:       a.Status,
		Position:     a.Position,
		Total:        c.Len(),
		Progress:     progressFor(a.Position, c.Len(), completed),
		CanGoBack:    !completed && a.Position > 0,
		Answers:      a.Answers,
		ReportReady:  completed && a.ReportKey != "",
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		CompletedAt:  a.CompletedAt,
	}
	if !completed {
		if q, err := c.Get(a.Position); err == nil {
			view.Question = &q
		}
	}
	return view
}

func toSummary(c *assessment.Catalog, a Assessment) assessmentSummary {
	return assessmentSummary{
		AssessmentID: a.ID,
		Status:       a.Status,
		Position:     a.Position,
		Total:        c.Len(),
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
		CompletedAt:  a.CompletedAt,
	}
}

func toResults(assessmentID string, recs []recommendations.Recommendation) resultsView {
	return resultsView{
		AssessmentID:    assessmentID,
		Intro:           recommendations.Intro,
		Recommendations: recs,
		Disclaimer:      recommendations.Disclaimer,
	}
}
