package main

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"coverage-backend/internal/assessments"
	"coverage-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	err   error
	calls []string
}

func (f *fakeProcessor) ProcessReport(ctx context.Context, assessmentID string) error {
	f.calls = append(f.calls, assessmentID)
	return f.err
}

func sqsMessage(id, body string) sqstypes.Message {
	return sqstypes.Message{
		MessageId:     aws.String("m-" + id),
		ReceiptHandle: aws.String("r-" + id),
		Body:          aws.String(body),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func encoded(t *testing.T, assessmentID string) string {
	t.Helper()
	body, err := queue.EncodeMessage(queue.NewMessage(assessmentID, "req-1", time.Now()))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return string(body)
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("1", encoded(t, "a-1")))

	if len(proc.calls) != 1 || proc.calls[0] != "a-1" {
		t.Fatalf("unexpected processor calls %v", proc.calls)
	}
	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDoesNotDeleteOnFailure(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: errors.New("boom")}

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("2", encoded(t, "a-2")))

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnInvalidJSON(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("3", "{not-json"))

	if len(proc.calls) != 0 {
		t.Fatalf("expected processor not to run")
	}
	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesOnEmptyBody(t *testing.T) {
	client := &fakeSQS{}
	handleMessage(context.Background(), client, "queue", &fakeProcessor{}, sqsMessage("4", "   "))
	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestWorkerDeletesWhenAssessmentMissing(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: fmt.Errorf("load: %w", assessments.ErrNotFound)}

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("5", encoded(t, "gone")))

	if len(client.deleted) != 1 {
		t.Fatalf("expected delete, got %d", len(client.deleted))
	}
}

func TestReceiveCount(t *testing.T) {
	if got := receiveCount(sqstypes.Message{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	msg := sqstypes.Message{Attributes: map[string]string{"ApproximateReceiveCount": "3"}}
	if got := receiveCount(msg); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestJobContextOutlivesShutdownSignal(t *testing.T) {
	signalCtx, stop := context.WithCancel(context.Background())
	jobsCtx, cancelJobs := jobContext(signalCtx)
	defer cancelJobs()

	stop()
	if err := jobsCtx.Err(); err != nil {
		t.Fatalf("expected jobs to keep running after signal, got %v", err)
	}

	client := &fakeSQS{}
	proc := &fakeProcessor{}
	handleMessage(jobsCtx, client, "queue", proc, sqsMessage("6", encoded(t, "a-6")))
	if len(client.deleted) != 1 {
		t.Fatalf("expected in-flight job to delete its message, got %d", len(client.deleted))
	}

	cancelJobs()
	if !errors.Is(jobsCtx.Err(), context.Canceled) {
		t.Fatalf("expected jobs cancelled after grace period, got %v", jobsCtx.Err())
	}
}
