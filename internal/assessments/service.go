package assessments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"coverage-backend/internal/assessment"
	"coverage-backend/internal/assessment/recommendations"
	"coverage-backend/internal/queue"
	"coverage-backend/internal/reports"
	"coverage-backend/internal/shared/metrics"
	"coverage-backend/internal/shared/telemetry"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// Service owns the assessment lifecycle: it rebuilds a session from storage,
// applies one transition, and saves the result under a per-assessment lock.
type Service struct {
	Repo    Repo
	Catalog *assessment.Catalog
	Reports *reports.Service
	Queue   queue.Client
	Now     func() time.Time

	locksOnce sync.Once
	locks     *keyedLocks
}

// NewService wires a Service over the default catalog. reportSvc and jobs may be nil.
func NewService(repo Repo, reportSvc *reports.Service, jobs queue.Client) *Service {
	return &Service{
		Repo:    repo,
		Catalog: assessment.DefaultCatalog(),
		Reports: reportSvc,
		Queue:   jobs,
		Now:     time.Now,
	}
}

// Questions returns the catalog in presentation order.
func (s *Service) Questions() []assessment.Question {
	return s.catalog().Questions()
}

// Create starts a new assessment at the first question.
func (s *Service) Create(ctx context.Context, userID string) (Assessment, error) {
	if userID == "" {
		return Assessment{}, errors.New("userID is required")
	}
	now := s.now()
	a := Assessment{
		ID:        uuid.NewString(),
		UserID:    userID,
		Position:  0,
		Status:    StatusInProgress,
		Answers:   assessment.NewAnswerRecord(s.catalog()),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, a); err != nil {
		return Assessment{}, fmt.Errorf("create assessment: %w", err)
	}
	metrics.IncAssessmentStarted()
	telemetry.Info("assessment.created", map[string]any{
		"request_id":    requestIDFromContext(ctx),
		"user_id":       userID,
		"assessment_id": a.ID,
	})
	return a, nil
}

// Get returns an assessment owned by userID. Assessments of other users read as not found.
func (s *Service) Get(ctx context.Context, userID, assessmentID string) (Assessment, error) {
	if !validID(assessmentID) {
		return Assessment{}, ErrNotFound
	}
	a, err := s.Repo.GetByID(ctx, assessmentID)
	if err != nil {
		return Assessment{}, err
	}
	if a.UserID != userID {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

// List returns a user's assessments ordered newest-first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Answer records v for the current question and advances. It returns the
// status transition ("" when the status did not change).
func (s *Service) Answer(ctx context.Context, userID, assessmentID string, v assessment.AnswerValue) (Assessment, string, error) {
	a, transition, err := s.mutate(ctx, userID, assessmentID, func(sess *assessment.Session) error {
		return sess.SubmitAnswer(v)
	})
	if err != nil {
		if errors.Is(err, assessment.ErrInvalidAnswer) {
			metrics.IncAnswerRejected()
		}
		return a, "", err
	}
	metrics.IncAnswerSubmitted()
	return a, transition, nil
}

// Back returns to the previous question.
func (s *Service) Back(ctx context.Context, userID, assessmentID string) (Assessment, error) {
	a, _, err := s.mutate(ctx, userID, assessmentID, func(sess *assessment.Session) error {
		return sess.GoBack()
	})
	return a, err
}

// Reset clears every answer and returns to the first question.
func (s *Service) Reset(ctx context.Context, userID, assessmentID string) (Assessment, string, error) {
	a, transition, err := s.mutate(ctx, userID, assessmentID, func(sess *assessment.Session) error {
		sess.Reset()
		return nil
	})
	if err != nil {
		return a, "", err
	}
	metrics.IncAssessmentReset()
	return a, transition, nil
}

// Recommendations evaluates a completed assessment.
func (s *Service) Recommendations(ctx context.Context, userID, assessmentID string) ([]recommendations.Recommendation, error) {
	a, err := s.Get(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	start := time.Now()
	recs := recommendations.Evaluate(a.Answers)
	metrics.ObserveEvaluationDurationMs(float64(time.Since(start).Microseconds()) / 1000.0)
	for _, rec := range recs {
		metrics.IncRecommendationIssued(rec.ID)
	}
	return recs, nil
}

// OpenReport streams the stored report of a completed assessment.
func (s *Service) OpenReport(ctx context.Context, userID, assessmentID string) (io.ReadCloser, error) {
	a, err := s.Get(ctx, userID, assessmentID)
	if err != nil {
		return nil, err
	}
	if a.Status != StatusCompleted {
		return nil, ErrNotCompleted
	}
	if a.ReportKey == "" || s.Reports == nil {
		return nil, ErrReportNotReady
	}
	rc, err := s.Reports.Open(ctx, a.ReportKey)
	if err != nil {
		if errors.Is(err, reports.ErrNotFound) {
			return nil, ErrReportNotReady
		}
		return nil, err
	}
	return rc, nil
}

// ProcessReport generates and records the report for a completed assessment.
// It is safe to run more than once; incomplete assessments are skipped.
func (s *Service) ProcessReport(ctx context.Context, assessmentID string) error {
	if s.Reports == nil {
		return errors.New("report service not configured")
	}
	if !validID(assessmentID) {
		return fmt.Errorf("load assessment %s: %w", assessmentID, ErrNotFound)
	}
	unlock := s.lock(assessmentID)
	defer unlock()

	a, err := s.Repo.GetByID(ctx, assessmentID)
	if err != nil {
		return fmt.Errorf("load assessment %s: %w", assessmentID, err)
	}
	fields := map[string]any{
		"request_id":    requestIDFromContext(ctx),
		"user_id":       a.UserID,
		"assessment_id": a.ID,
	}
	if a.Status != StatusCompleted {
		telemetry.Warn("report.skipped", fields)
		return nil
	}
	key, err := s.Reports.Generate(ctx, a.UserID, a.ID, a.Answers)
	if err != nil {
		return err
	}
	if err := s.Repo.SetReportKey(ctx, a.ID, key); err != nil {
		return fmt.Errorf("record report key: %w", err)
	}
	fields["report_key"] = key
	telemetry.Info("report.generated", fields)
	return nil
}

func (s *Service) mutate(ctx context.Context, userID, assessmentID string, apply func(*assessment.Session) error) (Assessment, string, error) {
	unlock := s.lock(assessmentID)
	defer unlock()

	a, err := s.Get(ctx, userID, assessmentID)
	if err != nil {
		return Assessment{}, "", err
	}
	sess, err := assessment.Restore(s.catalog(), a.Position, a.Answers)
	if err != nil {
		return Assessment{}, "", fmt.Errorf("%w: %s: %v", ErrCorrupt, a.ID, err)
	}
	if err := apply(sess); err != nil {
		return a, "", err
	}

	prevStatus := a.Status
	snap := sess.Snapshot()
	now := s.now()
	a.Position = snap.Position
	a.Answers = snap.Answers
	a.Status = statusFor(snap.Completed)
	a.UpdatedAt = now

	transition := ""
	if a.Status != prevStatus {
		transition = prevStatus + "->" + a.Status
	}
	if a.Status == StatusCompleted && prevStatus != StatusCompleted {
		a.CompletedAt = &now
	}
	if a.Status != StatusCompleted {
		a.CompletedAt = nil
		a.ReportKey = ""
	}

	if err := s.Repo.Update(ctx, a); err != nil {
		return Assessment{}, "", fmt.Errorf("save assessment: %w", err)
	}

	if transition != "" {
		telemetry.Info("assessment.status", map[string]any{
			"request_id":        requestIDFromContext(ctx),
			"user_id":           a.UserID,
			"assessment_id":     a.ID,
			"status":            a.Status,
			"status_transition": transition,
		})
	}
	if a.Status == StatusCompleted && prevStatus != StatusCompleted {
		metrics.IncAssessmentCompleted()
		telemetry.Info("assessment.completed", map[string]any{
			"request_id":    requestIDFromContext(ctx),
			"user_id":       a.UserID,
			"assessment_id": a.ID,
		})
		if key := s.scheduleReport(ctx, a); key != "" {
			a.ReportKey = key
		}
	}
	return a, transition, nil
}

// scheduleReport enqueues a report job, or builds the report inline when no
// queue is configured or the send fails. It returns the key of an inline report.
// Failures are logged; completion never fails because of the report.
func (s *Service) scheduleReport(ctx context.Context, a Assessment) string {
	if s.Reports == nil {
		return ""
	}
	fields := map[string]any{
		"request_id":    requestIDFromContext(ctx),
		"user_id":       a.UserID,
		"assessment_id": a.ID,
	}
	if s.Queue != nil {
		msg := queue.NewMessage(a.ID, requestIDFromContext(ctx), s.now())
		err := s.Queue.Send(ctx, msg)
		if err == nil {
			telemetry.Info("report.enqueued", fields)
			return ""
		}
		fields["error"] = err.Error()
		telemetry.Error("report.enqueue_failed", fields)
		delete(fields, "error")
	}

	key, err := s.Reports.Generate(ctx, a.UserID, a.ID, a.Answers)
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Error("report.failed", fields)
		return ""
	}
	if err := s.Repo.SetReportKey(ctx, a.ID, key); err != nil {
		fields["error"] = err.Error()
		telemetry.Error("report.failed", fields)
		return ""
	}
	fields["report_key"] = key
	telemetry.Info("report.generated", fields)
	return key
}

// validID reports whether id can name a stored assessment. IDs are UUIDs, so
// anything else is unknown without a repository round trip.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func (s *Service) lock(assessmentID string) func() {
	s.locksOnce.Do(func() {
		s.locks = newKeyedLocks()
	})
	return s.locks.Lock(assessmentID)
}

func (s *Service) catalog() *assessment.Catalog {
	if s.Catalog == nil {
		return assessment.DefaultCatalog()
	}
	return s.Catalog
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now().UTC()
}
