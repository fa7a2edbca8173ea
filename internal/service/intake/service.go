package intake

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/pagesmith/pagesmith/internal/domain"
	"github.com/pagesmith/pagesmith/internal/repository"
)

// Errors surfaced to the HTTP layer.
var (
	ErrUnauthorized = errors.New("invalid credentials")
	ErrInvalid      = errors.New("invalid submission")
)

// Submission is the inbound deployment request.
type Submission struct {
	Email         string              `json:"email"`
	Secret        string              `json:"secret"`
	Task          string              `json:"task"`
	Round         int                 `json:"round"`
	Nonce         string              `json:"nonce"`
	Brief         string              `json:"brief"`
	Checks        []string            `json:"checks"`
	EvaluationURL string              `json:"evaluation_url"`
	Attachments   []domain.Attachment `json:"attachments"`
}

// Ack reports the intake outcome.
type Ack struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Nonce   string `json:"nonce,omitempty"`
}

// Enqueuer hands accepted tasks to the background worker.
type Enqueuer interface {
	Enqueue(task domain.Task) error
}

// Service validates, stores and enqueues deployment requests.
type Service struct {
	tasks  repository.TaskRepository
	queue  Enqueuer
	email  string
	secret string
	logger *slog.Logger
}

// New constructs an intake service bound to the configured credentials.
func New(tasks repository.TaskRepository, queue Enqueuer, email, secret string, logger *slog.Logger) Service {
	return Service{tasks: tasks, queue: queue, email: email, secret: secret, logger: logger}
}

// Submit processes one deployment request: credential check, idempotency by
// nonce, persistence, then enqueue.
func (s Service) Submit(ctx context.Context, sub Submission) (Ack, error) {
	if !s.authorized(sub.Email, sub.Secret) {
		return Ack{}, ErrUnauthorized
	}
	if strings.TrimSpace(sub.Task) == "" || strings.TrimSpace(sub.Nonce) == "" {
		return Ack{}, fmt.Errorf("%w: task and nonce are required", ErrInvalid)
	}
	if sub.Round <= 0 {
		sub.Round = 1
	}

	existing, err := s.tasks.GetTaskByNonce(ctx, sub.Email, sub.Task, sub.Round, sub.Nonce)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return Ack{}, fmt.Errorf("idempotency lookup: %w", err)
	}
	if existing != nil {
		s.logger.Info("duplicate submission ignored", "task", sub.Task, "round", sub.Round, "nonce", sub.Nonce)
		return Ack{Status: "already_processed", Nonce: sub.Nonce}, nil
	}

	secretHash := sha256.Sum256([]byte(sub.Secret))
	task := domain.Task{
		ID:            uuid.NewString(),
		Email:         sub.Email,
		Name:          sub.Task,
		Round:         sub.Round,
		Nonce:         sub.Nonce,
		Brief:         sub.Brief,
		Checks:        sub.Checks,
		Attachments:   sub.Attachments,
		EvaluationURL: sub.EvaluationURL,
		SecretHash:    hex.EncodeToString(secretHash[:]),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.tasks.CreateTask(ctx, &task); err != nil {
		return Ack{}, fmt.Errorf("store task: %w", err)
	}

	if err := s.queue.Enqueue(task); err != nil {
		return Ack{}, fmt.Errorf("queue deployment: %w", err)
	}

	s.logger.Info("deployment queued", "task", task.Name, "round", task.Round, "nonce", task.Nonce)
	return Ack{Status: "ok", Message: "Deployment queued"}, nil
}

func (s Service) authorized(email, secret string) bool {
	if s.email == "" || s.secret == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.email)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) == 1
	return emailOK && secretOK
}
