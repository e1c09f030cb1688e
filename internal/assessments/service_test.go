package assessments

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"coverage-backend/internal/assessment"
	"coverage-backend/internal/queue"
	"coverage-backend/internal/reports"
	"coverage-backend/internal/shared/storage/object/local"
)

type stubQueue struct {
	mu       sync.Mutex
	messages []queue.Message
	err      error
}

func (s *stubQueue) Send(ctx context.Context, msg queue.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func fullProfile() []assessment.AnswerValue {
	return []assessment.AnswerValue{
		assessment.SelectAnswer("Healthcare"),
		assessment.SelectAnswer("51-200"),
		assessment.SelectAnswer("$5M-$10M"),
		assessment.BooleanAnswer(true),
		assessment.BooleanAnswer(true),
		assessment.BooleanAnswer(false),
		assessment.BooleanAnswer(true),
		assessment.BooleanAnswer(true),
	}
}

func newTestService(t *testing.T, jobs queue.Client) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	svc := NewService(repo, reports.NewService(local.New(t.TempDir())), jobs)
	return svc, repo
}

func completeAssessment(t *testing.T, svc *Service, userID, id string) Assessment {
	t.Helper()
	var a Assessment
	var err error
	for _, v := range fullProfile() {
		a, _, err = svc.Answer(context.Background(), userID, id, v)
		if err != nil {
			t.Fatalf("answer %v: %v", v, err)
		}
	}
	return a
}

func TestServiceCreateStartsAtFirstQuestion(t *testing.T) {
	svc, repo := newTestService(t, nil)
	a, err := svc.Create(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Position != 0 || a.Status != StatusInProgress {
		t.Fatalf("unexpected assessment: %+v", a)
	}
	if len(a.Answers) != 8 {
		t.Fatalf("expected 8 answer slots, got %d", len(a.Answers))
	}
	stored, err := repo.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("get stored: %v", err)
	}
	if stored.UserID != "user-1" {
		t.Fatalf("unexpected owner %q", stored.UserID)
	}
}

func TestServiceGetHidesOtherUsers(t *testing.T) {
	svc, _ := newTestService(t, nil)
	a, _ := svc.Create(context.Background(), "user-1")
	if _, err := svc.Get(context.Background(), "user-2", a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, _, err := svc.Answer(context.Background(), "user-2", a.ID, assessment.SelectAnswer("Healthcare")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on answer, got %v", err)
	}
}

func TestServiceAnswerCompletesAndGeneratesReportInline(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1")

	var transition string
	var err error
	for i, v := range fullProfile() {
		a, transition, err = svc.Answer(ctx, "user-1", a.ID, v)
		if err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
		if i < 7 && transition != "" {
			t.Fatalf("unexpected transition at %d: %q", i, transition)
		}
	}
	if transition != "in_progress->completed" {
		t.Fatalf("expected completion transition, got %q", transition)
	}
	if a.Status != StatusCompleted || a.Position != 8 || a.CompletedAt == nil {
		t.Fatalf("unexpected completed assessment: %+v", a)
	}
	if a.ReportKey != reports.Key("user-1", a.ID) {
		t.Fatalf("expected inline report key, got %q", a.ReportKey)
	}

	stored, _ := repo.GetByID(ctx, a.ID)
	if stored.ReportKey == "" {
		t.Fatalf("expected report key to be persisted")
	}

	rc, err := svc.OpenReport(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("open report: %v", err)
	}
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	if len(body) == 0 {
		t.Fatalf("expected report body")
	}
}

func TestServiceAnswerEnqueuesWhenQueueConfigured(t *testing.T) {
	jobs := &stubQueue{}
	svc, _ := newTestService(t, jobs)
	ctx := WithRequestID(context.Background(), "req-1")
	a, _ := svc.Create(ctx, "user-1")

	for _, v := range fullProfile() {
		var err error
		a, _, err = svc.Answer(ctx, "user-1", a.ID, v)
		if err != nil {
			t.Fatalf("answer: %v", err)
		}
	}
	if len(jobs.messages) != 1 {
		t.Fatalf("expected 1 queued message, got %d", len(jobs.messages))
	}
	msg := jobs.messages[0]
	if msg.AssessmentID != a.ID || msg.RequestID != "req-1" || msg.Version != queue.MessageVersion {
		t.Fatalf("unexpected message %+v", msg)
	}
	if a.ReportKey != "" {
		t.Fatalf("expected no inline report when queued, got %q", a.ReportKey)
	}
	if _, err := svc.OpenReport(ctx, "user-1", a.ID); !errors.Is(err, ErrReportNotReady) {
		t.Fatalf("expected ErrReportNotReady before worker runs, got %v", err)
	}

	if err := svc.ProcessReport(ctx, a.ID); err != nil {
		t.Fatalf("process report: %v", err)
	}
	rc, err := svc.OpenReport(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("open report after processing: %v", err)
	}
	rc.Close()
}

func TestServiceFallsBackInlineWhenEnqueueFails(t *testing.T) {
	svc, _ := newTestService(t, &stubQueue{err: errors.New("queue down")})
	a, _ := svc.Create(context.Background(), "user-1")
	a = completeAssessment(t, svc, "user-1", a.ID)
	if a.ReportKey == "" {
		t.Fatalf("expected inline report after enqueue failure")
	}
}

func TestServiceInvalidAnswerLeavesStateUnchanged(t *testing.T) {
	svc, repo := newTestService(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1")
	before, _ := repo.GetByID(ctx, a.ID)

	tests := []assessment.AnswerValue{
		assessment.SelectAnswer("Aerospace"),
		assessment.BooleanAnswer(true),
		assessment.Unanswered(),
	}
	for _, v := range tests {
		if _, _, err := svc.Answer(ctx, "user-1", a.ID, v); !errors.Is(err, assessment.ErrInvalidAnswer) {
			t.Fatalf("expected ErrInvalidAnswer for %v, got %v", v, err)
		}
	}
	after, _ := repo.GetByID(ctx, a.ID)
	if after.Position != before.Position || !after.UpdatedAt.Equal(before.UpdatedAt) {
		t.Fatalf("expected unchanged assessment, got %+v", after)
	}
}

func TestServiceBack(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1")

	if _, err := svc.Back(ctx, "user-1", a.ID); !errors.Is(err, assessment.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition at start, got %v", err)
	}

	a, _, _ = svc.Answer(ctx, "user-1", a.ID, assessment.SelectAnswer("Construction"))
	a, err := svc.Back(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("back: %v", err)
	}
	if a.Position != 0 {
		t.Fatalf("expected position 0, got %d", a.Position)
	}
	if a.Answers.Text(assessment.QuestionIndustry) != "Construction" {
		t.Fatalf("expected answer kept after back, got %v", a.Answers)
	}

	a = completeAssessment(t, svc, "user-1", a.ID)
	if _, err := svc.Back(ctx, "user-1", a.ID); !errors.Is(err, assessment.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition when completed, got %v", err)
	}
}

func TestServiceResetClearsCompletion(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1")
	a = completeAssessment(t, svc, "user-1", a.ID)

	a, transition, err := svc.Reset(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if transition != "completed->in_progress" {
		t.Fatalf("unexpected transition %q", transition)
	}
	if a.Position != 0 || a.Status != StatusInProgress || a.CompletedAt != nil || a.ReportKey != "" {
		t.Fatalf("unexpected reset assessment: %+v", a)
	}
	for id, v := range a.Answers {
		if v.IsAnswered() {
			t.Fatalf("expected %s unanswered after reset", id)
		}
	}
	if _, err := svc.OpenReport(ctx, "user-1", a.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted after reset, got %v", err)
	}
}

func TestServiceAnswerOnCompletedIsInvalidState(t *testing.T) {
	svc, _ := newTestService(t, nil)
	a, _ := svc.Create(context.Background(), "user-1")
	completeAssessment(t, svc, "user-1", a.ID)

	_, _, err := svc.Answer(context.Background(), "user-1", a.ID, assessment.BooleanAnswer(true))
	if !errors.Is(err, assessment.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestServiceRecommendations(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1")

	if _, err := svc.Recommendations(ctx, "user-1", a.ID); !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}

	completeAssessment(t, svc, "user-1", a.ID)
	recs, err := svc.Recommendations(ctx, "user-1", a.ID)
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	want := []string{
		"GENERAL_LIABILITY",
		"WORKERS_COMPENSATION",
		"PROFESSIONAL_LIABILITY",
		"CYBER_LIABILITY",
		"DIRECTORS_AND_OFFICERS",
		"COMMERCIAL_PROPERTY",
		"BUSINESS_INTERRUPTION",
		"COMMERCIAL_AUTO",
		"EMPLOYMENT_PRACTICES_LIABILITY",
	}
	if len(recs) != len(want) {
		t.Fatalf("expected %d recommendations, got %d", len(want), len(recs))
	}
	for i, id := range want {
		if recs[i].ID != id || recs[i].Order != i+1 {
			t.Fatalf("position %d: got %s/%d want %s/%d", i, recs[i].ID, recs[i].Order, id, i+1)
		}
	}
}

func TestServiceProcessReportSkipsIncomplete(t *testing.T) {
	svc, repo := newTestService(t, nil)
	a, _ := svc.Create(context.Background(), "user-1")
	if err := svc.ProcessReport(context.Background(), a.ID); err != nil {
		t.Fatalf("expected skip without error, got %v", err)
	}
	stored, _ := repo.GetByID(context.Background(), a.ID)
	if stored.ReportKey != "" {
		t.Fatalf("expected no report key, got %q", stored.ReportKey)
	}
}

func TestServiceProcessReportMissingAssessment(t *testing.T) {
	svc, _ := newTestService(t, nil)
	if err := svc.ProcessReport(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceConcurrentAnswersAreSerialised(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	a, _ := svc.Create(ctx, "user-1")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := svc.Answer(ctx, "user-1", a.ID, assessment.SelectAnswer("Other")); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	// The first lands on industry; the rest hit the employees question and are rejected.
	rejected := 0
	for err := range errs {
		if !errors.Is(err, assessment.ErrInvalidAnswer) {
			t.Fatalf("unexpected error: %v", err)
		}
		rejected++
	}
	if rejected != 3 {
		t.Fatalf("expected 3 rejected answers, got %d", rejected)
	}
	got, _ := svc.Get(ctx, "user-1", a.ID)
	if got.Position != 1 {
		t.Fatalf("expected position 1, got %d", got.Position)
	}
	if svc.locks.size() != 0 {
		t.Fatalf("expected locks released, got %d", svc.locks.size())
	}
}

func TestProgressFor(t *testing.T) {
	tests := []struct {
		position  int
		completed bool
		want      progressView
	}{
		{position: 0, want: progressView{Current: 1, Total: 8, Percent: 13}},
		{position: 3, want: progressView{Current: 4, Total: 8, Percent: 50}},
		{position: 7, want: progressView{Current: 8, Total: 8, Percent: 100}},
		{position: 8, completed: true, want: progressView{Current: 8, Total: 8, Percent: 100}},
	}
	for _, tt := range tests {
		if got := progressFor(tt.position, 8, tt.completed); got != tt.want {
			t.Fatalf("progressFor(%d, %v) = %+v, want %+v", tt.position, tt.completed, got, tt.want)
		}
	}
}

func TestMemoryRepoListByUserNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	base := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		if err := repo.Create(ctx, Assessment{ID: id, UserID: "u", CreatedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	_ = repo.Create(ctx, Assessment{ID: "other", UserID: "v", CreatedAt: base})

	got, err := repo.ListByUser(ctx, "u", 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].ID != "c" || got[1].ID != "b" {
		t.Fatalf("unexpected page: %+v", got)
	}
	got, _ = repo.ListByUser(ctx, "u", 2, 2)
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("unexpected second page: %+v", got)
	}
}

func TestServiceListNormalisesLimit(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	for i := 0; i < maxListLimit+5; i++ {
		if _, err := svc.Create(ctx, "user-1"); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "zero uses default", limit: 0, want: defaultListLimit},
		{name: "negative uses default", limit: -3, want: defaultListLimit},
		{name: "explicit", limit: 7, want: 7},
		{name: "capped", limit: 1000, want: maxListLimit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.List(ctx, "user-1", tt.limit, 0)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(got) != tt.want {
				t.Fatalf("expected %d rows, got %d", tt.want, len(got))
			}
		})
	}
}

func TestMemoryRepoListByUserDefaultsLimit(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	for i := 0; i < defaultListLimit+5; i++ {
		_ = repo.Create(ctx, Assessment{ID: fmt.Sprintf("a-%d", i), UserID: "u"})
	}
	got, err := repo.ListByUser(ctx, "u", 0, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != defaultListLimit {
		t.Fatalf("expected %d rows, got %d", defaultListLimit, len(got))
	}
}

func TestServiceRejectsMalformedIDs(t *testing.T) {
	svc, _ := newTestService(t, nil)
	ctx := context.Background()
	for _, id := range []string{"", "abc", "a-1", "00000000-0000-0000-0000"} {
		if _, err := svc.Get(ctx, "user-1", id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Get(%q): expected ErrNotFound, got %v", id, err)
		}
		if err := svc.ProcessReport(ctx, id); !errors.Is(err, ErrNotFound) {
			t.Fatalf("ProcessReport(%q): expected ErrNotFound, got %v", id, err)
		}
	}
}
