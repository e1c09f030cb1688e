package assessments

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"coverage-backend/internal/assessment"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectColumns = `id, user_id, position, status, answers, report_key, created_at, updated_at, completed_at`

// Create inserts a new assessment.
func (r *PGRepo) Create(ctx context.Context, a Assessment) error {
	const query = `
INSERT INTO assessments (id, user_id, position, status, answers, report_key, created_at, updated_at, completed_at)
VALUES ($1, $2, $3, $4, $5::jsonb, $6, $7, $8, $9)`
	answers, err := marshalAnswers(a.Answers)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		a.ID,
		a.UserID,
		a.Position,
		a.Status,
		answers,
		nullString(a.ReportKey),
		a.CreatedAt,
		a.UpdatedAt,
		nullTime(a.CompletedAt),
	)
	return err
}

// GetByID returns an assessment by ID.
func (r *PGRepo) GetByID(ctx context.Context, assessmentID string) (Assessment, error) {
	query := `SELECT ` + selectColumns + ` FROM assessments WHERE id = $1 LIMIT 1`
	a, err := scanAssessment(r.DB.QueryRowContext(ctx, query, assessmentID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}
	return a, nil
}

// Update writes the mutable fields of an assessment.
func (r *PGRepo) Update(ctx context.Context, a Assessment) error {
	const query = `
UPDATE assessments
SET position = $2, status = $3, answers = $4::jsonb, report_key = $5, updated_at = $6, completed_at = $7
WHERE id = $1`
	answers, err := marshalAnswers(a.Answers)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, query,
		a.ID,
		a.Position,
		a.Status,
		answers,
		nullString(a.ReportKey),
		a.UpdatedAt,
		nullTime(a.CompletedAt),
	)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// SetReportKey records where the assessment's report was stored.
func (r *PGRepo) SetReportKey(ctx context.Context, assessmentID, key string) error {
	const query = `UPDATE assessments SET report_key = $2, updated_at = now() WHERE id = $1`
	res, err := r.DB.ExecContext(ctx, query, assessmentID, key)
	if err != nil {
		return err
	}
	return expectOneRow(res)
}

// ListByUser returns a user's assessments, newest first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Assessment, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	if offset < 0 {
		offset = 0
	}
	query := `SELECT ` + selectColumns + `
FROM assessments
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Assessment, 0)
	for rows.Next() {
		a, err := scanAssessment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAssessment(row rowScanner) (Assessment, error) {
	var a Assessment
	var answers string
	var reportKey sql.NullString
	var completedAt sql.NullTime
	if err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.Position,
		&a.Status,
		&answers,
		&reportKey,
		&a.CreatedAt,
		&a.UpdatedAt,
		&completedAt,
	); err != nil {
		return Assessment{}, err
	}
	a.Answers = assessment.AnswerRecord{}
	if answers != "" {
		if err := json.Unmarshal([]byte(answers), &a.Answers); err != nil {
			return Assessment{}, fmt.Errorf("%w: answers for %s: %v", ErrCorrupt, a.ID, err)
		}
	}
	if reportKey.Valid {
		a.ReportKey = reportKey.String
	}
	if completedAt.Valid {
		t := completedAt.Time
		a.CompletedAt = &t
	}
	return a, nil
}

func marshalAnswers(answers assessment.AnswerRecord) (string, error) {
	if answers == nil {
		return "{}", nil
	}
	payload, err := json.Marshal(answers)
	if err != nil {
		return "", fmt.Errorf("encode answers: %w", err)
	}
	return string(payload), nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

var _ Repo = (*PGRepo)(nil)
