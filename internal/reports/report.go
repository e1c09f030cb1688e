package reports

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"time"

	"coverage-backend/internal/assessment"
	"coverage-backend/internal/assessment/recommendations"
	"coverage-backend/internal/shared/storage/object"
)

const contentType = "application/json"

// ErrNotFound is returned when no report has been stored under the key.
var ErrNotFound = errors.New("report not found")

// Report is the stored summary of a completed assessment.
type Report struct {
	AssessmentID    string                           `json:"assessmentId"`
	UserID          string                           `json:"userId"`
	GeneratedAt     time.Time                        `json:"generatedAt"`
	Answers         assessment.AnswerRecord          `json:"answers"`
	Recommendations []recommendations.Recommendation `json:"recommendations"`
	Disclaimer      string                           `json:"disclaimer"`
}

// Service renders reports and keeps them in an object store.
type Service struct {
	Store object.Store
	Now   func() time.Time
}

// NewService builds a report service over store.
func NewService(store object.Store) *Service {
	return &Service{Store: store, Now: time.Now}
}

// Key returns the storage key of an assessment's report. User IDs are hashed
// so guest and account identifiers never appear in object paths.
func Key(userID, assessmentID string) string {
	return path.Join("reports", ownerDir(userID), assessmentID+".json")
}

func ownerDir(userID string) string {
	sum := sha256.Sum256([]byte(userID))
	return hex.EncodeToString(sum[:])
}

// Build evaluates answers and assembles a report without storing it.
func (s *Service) Build(userID, assessmentID string, answers assessment.AnswerRecord) Report {
	now := time.Now
	if s != nil && s.Now != nil {
		now = s.Now
	}
	return Report{
		AssessmentID:    assessmentID,
		UserID:          userID,
		GeneratedAt:     now().UTC(),
		Answers:         answers.Clone(),
		Recommendations: recommendations.Evaluate(answers),
		Disclaimer:      recommendations.Disclaimer,
	}
}

// Generate builds and saves the report, overwriting any previous one. It returns the storage key.
func (s *Service) Generate(ctx context.Context, userID, assessmentID string, answers assessment.AnswerRecord) (string, error) {
	if s == nil || s.Store == nil {
		return "", errors.New("report store not configured")
	}
	report := s.Build(userID, assessmentID, answers)
	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode report: %w", err)
	}
	key := Key(userID, assessmentID)
	if _, err := s.Store.SaveWithKey(ctx, key, contentType, bytes.NewReader(payload)); err != nil {
		return "", fmt.Errorf("save report %s: %w", key, err)
	}
	return key, nil
}

// Open streams a stored report.
func (s *Service) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	if s == nil || s.Store == nil {
		return nil, errors.New("report store not configured")
	}
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		if errors.Is(err, object.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("open report %s: %w", key, err)
	}
	return rc, nil
}

// ContentType is the media type reports are stored with.
func ContentType() string { return contentType }
