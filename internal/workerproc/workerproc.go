package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"coverage-backend/internal/assessments"
	"coverage-backend/internal/queue"
)

// Processor builds the report for one assessment.
type Processor interface {
	ProcessReport(ctx context.Context, assessmentID string) error
}

// MessageMeta captures details useful for logging undecodable payloads.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrMissingAssessmentID indicates a message without an assessment id.
type ErrMissingAssessmentID struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrMissingAssessmentID) Error() string { return "missing assessment id" }

// ErrProcess indicates report generation failed after the message parsed.
type ErrProcess struct {
	AssessmentID string
	RequestID    string
	Err          error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process report"
	}
	return "process report: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// Unrecoverable reports whether redelivering the message can never succeed.
// Such messages should be deleted rather than retried.
func Unrecoverable(err error) bool {
	var empty ErrEmptyBody
	var decode ErrDecode
	var missing ErrMissingAssessmentID
	if errors.As(err, &empty) || errors.As(err, &decode) || errors.As(err, &missing) {
		return true
	}
	return errors.Is(err, assessments.ErrNotFound)
}

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}
	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if strings.TrimSpace(msg.AssessmentID) == "" {
		return msg, meta, ErrMissingAssessmentID{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Dispatch runs an already parsed message through the processor.
func Dispatch(ctx context.Context, processor Processor, msg queue.Message) error {
	if processor == nil {
		return errors.New("report processor not configured")
	}
	if strings.TrimSpace(msg.AssessmentID) == "" {
		return ErrMissingAssessmentID{RequestID: msg.RequestID}
	}
	ctx = assessments.WithRequestID(ctx, msg.RequestID)
	if err := processor.ProcessReport(ctx, msg.AssessmentID); err != nil {
		return ErrProcess{AssessmentID: msg.AssessmentID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// HandleMessage parses and processes a raw payload.
func HandleMessage(ctx context.Context, processor Processor, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return Dispatch(ctx, processor, msg)
}
