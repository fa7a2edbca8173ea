package intake

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/pagesmith/pagesmith/internal/domain"
	"github.com/pagesmith/pagesmith/internal/repository"
)

type fakeTaskRepo struct {
	createCalls int
	created     *domain.Task
	createErr   error
	existing    *domain.Task
	lookupErr   error
}

func (f *fakeTaskRepo) CreateTask(_ context.Context, task *domain.Task) error {
	f.createCalls++
	f.created = task
	return f.createErr
}

func (f *fakeTaskRepo) GetTaskByNonce(context.Context, string, string, int, string) (*domain.Task, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if f.existing != nil {
		return f.existing, nil
	}
	return nil, repository.ErrNotFound
}

type fakeQueue struct {
	enqueued []domain.Task
	err      error
}

func (f *fakeQueue) Enqueue(task domain.Task) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, task)
	return nil
}

func newTestService(repo *fakeTaskRepo, queue *fakeQueue) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return New(repo, queue, "student@example.com", "s3cret", logger)
}

func validSubmission() Submission {
	return Submission{
		Email:         "student@example.com",
		Secret:        "s3cret",
		Task:          "captcha-solver-x1",
		Round:         1,
		Nonce:         "nonce-1",
		Brief:         "Build a captcha solver",
		EvaluationURL: "https://evaluator.example.com/notify",
	}
}

func TestSubmitRejectsWrongCredentials(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestService(repo, &fakeQueue{})

	sub := validSubmission()
	sub.Secret = "wrong"
	if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	sub = validSubmission()
	sub.Email = "intruder@example.com"
	if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for wrong email, got %v", err)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no task creation, got %d", repo.createCalls)
	}
}

func TestSubmitRejectsWhenUnconfigured(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := New(&fakeTaskRepo{}, &fakeQueue{}, "", "", logger)

	if _, err := svc.Submit(context.Background(), validSubmission()); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized with empty credentials, got %v", err)
	}
}

func TestSubmitRequiresTaskAndNonce(t *testing.T) {
	svc := newTestService(&fakeTaskRepo{}, &fakeQueue{})

	sub := validSubmission()
	sub.Task = "  "
	if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for blank task, got %v", err)
	}

	sub = validSubmission()
	sub.Nonce = ""
	if _, err := svc.Submit(context.Background(), sub); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid for blank nonce, got %v", err)
	}
}

func TestSubmitQueuesNewTask(t *testing.T) {
	repo := &fakeTaskRepo{}
	queue := &fakeQueue{}
	svc := newTestService(repo, queue)

	ack, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if ack.Status != "ok" {
		t.Fatalf("expected ok status, got %q", ack.Status)
	}
	if repo.createCalls != 1 {
		t.Fatalf("expected one task creation, got %d", repo.createCalls)
	}
	if repo.created.SecretHash == "" || repo.created.SecretHash == "s3cret" {
		t.Fatalf("expected hashed secret, got %q", repo.created.SecretHash)
	}
	if repo.created.ID == "" {
		t.Fatal("expected generated task id")
	}
	if len(queue.enqueued) != 1 {
		t.Fatalf("expected one enqueued task, got %d", len(queue.enqueued))
	}
	if queue.enqueued[0].Name != "captcha-solver-x1" {
		t.Fatalf("unexpected enqueued task name %q", queue.enqueued[0].Name)
	}
}

func TestSubmitDefaultsRoundToOne(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := newTestService(repo, &fakeQueue{})

	sub := validSubmission()
	sub.Round = 0
	if _, err := svc.Submit(context.Background(), sub); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if repo.created.Round != 1 {
		t.Fatalf("expected round defaulted to 1, got %d", repo.created.Round)
	}
}

func TestSubmitIdempotentByNonce(t *testing.T) {
	repo := &fakeTaskRepo{existing: &domain.Task{Name: "captcha-solver-x1", Nonce: "nonce-1"}}
	queue := &fakeQueue{}
	svc := newTestService(repo, queue)

	ack, err := svc.Submit(context.Background(), validSubmission())
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if ack.Status != "already_processed" {
		t.Fatalf("expected already_processed, got %q", ack.Status)
	}
	if ack.Nonce != "nonce-1" {
		t.Fatalf("expected nonce echoed back, got %q", ack.Nonce)
	}
	if repo.createCalls != 0 {
		t.Fatalf("expected no new task, got %d creations", repo.createCalls)
	}
	if len(queue.enqueued) != 0 {
		t.Fatalf("expected nothing enqueued, got %d", len(queue.enqueued))
	}
}

func TestSubmitPropagatesLookupFailure(t *testing.T) {
	repo := &fakeTaskRepo{lookupErr: errors.New("db down")}
	svc := newTestService(repo, &fakeQueue{})

	if _, err := svc.Submit(context.Background(), validSubmission()); err == nil {
		t.Fatal("expected error when idempotency lookup fails")
	}
}

func TestSubmitSurfacesQueueFull(t *testing.T) {
	queueErr := errors.New("deployment queue is full")
	svc := newTestService(&fakeTaskRepo{}, &fakeQueue{err: queueErr})

	if _, err := svc.Submit(context.Background(), validSubmission()); !errors.Is(err, queueErr) {
		t.Fatalf("expected queue error, got %v", err)
	}
}
