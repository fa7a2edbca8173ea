package deploy

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"log/slog"

	"github.com/google/uuid"

	"github.com/pagesmith/pagesmith/internal/domain"
	"github.com/pagesmith/pagesmith/internal/repository"
	"github.com/pagesmith/pagesmith/internal/service/gitdeploy"
	"github.com/pagesmith/pagesmith/internal/service/logs"
	"github.com/pagesmith/pagesmith/internal/service/notify"
	"github.com/pagesmith/pagesmith/internal/service/sitegen"
)

// Workflow stages reported to the log stream.
const (
	StageGenerate = "generate"
	StagePublish  = "publish"
	StageVerify   = "verify"
	StageNotify   = "notify"
	StageRecord   = "record"
)

// ErrQueueFull signals that the deployment queue cannot accept more work.
var ErrQueueFull = errors.New("deployment queue is full")

// Generator produces site bundles for task briefs.
type Generator interface {
	Generate(ctx context.Context, req sitegen.Request) (sitegen.Bundle, error)
}

// Publisher pushes bundles to the hosting target.
type Publisher interface {
	CreateAndDeploy(ctx context.Context, taskName string, files sitegen.Bundle) (gitdeploy.Result, error)
	Update(ctx context.Context, taskName string, files sitegen.Bundle) (gitdeploy.Result, error)
	WaitForPagesLive(ctx context.Context, pagesURL string, maxAttempts int) bool
}

// Notifier delivers evaluation callbacks.
type Notifier interface {
	Send(ctx context.Context, url string, payload notify.Payload) error
}

// Service runs the background deployment workflow.
type Service struct {
	deliveries repository.DeliveryRepository
	logs       logs.Service
	generator  Generator
	publisher  Publisher
	notifier   Notifier
	queue      chan domain.Task
	logger     *slog.Logger
	pagesWait  int
	wg         sync.WaitGroup
}

// New constructs the deployment worker with a bounded queue. pagesWait caps
// how many times the Pages URL is polled before notifying regardless.
func New(deliveries repository.DeliveryRepository, logSvc logs.Service, generator Generator, publisher Publisher, notifier Notifier, logger *slog.Logger, queueSize, pagesWait int) *Service {
	if queueSize <= 0 {
		queueSize = 64
	}
	if pagesWait <= 0 {
		pagesWait = 30
	}
	s := &Service{
		deliveries: deliveries,
		logs:       logSvc,
		generator:  generator,
		publisher:  publisher,
		notifier:   notifier,
		queue:      make(chan domain.Task, queueSize),
		logger:     logger,
		pagesWait:  pagesWait,
	}
	// Counted here rather than in Run so that Wait cannot slip past a
	// worker goroutine that has not been scheduled yet.
	s.wg.Add(1)
	return s
}

// Enqueue hands a task to the worker without blocking the caller.
func (s *Service) Enqueue(task domain.Task) error {
	select {
	case s.queue <- task:
		return nil
	default:
		return ErrQueueFull
	}
}

// Run processes queued tasks until the context is cancelled, then drains
// whatever is already queued.
func (s *Service) Run(ctx context.Context) {
	defer s.wg.Done()
	for {
		select {
		case <-ctx.Done():
			s.drain()
			return
		case task := <-s.queue:
			s.process(context.WithoutCancel(ctx), task)
		}
	}
}

// Wait blocks until the worker loop has exited.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) drain() {
	for {
		select {
		case task := <-s.queue:
			s.process(context.Background(), task)
		default:
			return
		}
	}
}

// process runs the full workflow for one task. Errors are logged, never
// propagated; a broken task must not take the worker down.
func (s *Service) process(ctx context.Context, task domain.Task) {
	s.logger.Info("processing deployment", "task", task.Name, "round", task.Round, "nonce", task.Nonce)

	bundle, err := s.generator.Generate(ctx, sitegen.Request{
		Task:        task.Name,
		Brief:       task.Brief,
		Round:       task.Round,
		Checks:      task.Checks,
		Attachments: task.Attachments,
	})
	if err != nil {
		s.fail(ctx, task, StageGenerate, err)
		return
	}
	s.step(ctx, task, StageGenerate, "generated site bundle", map[string]any{"files": len(bundle)})

	var result gitdeploy.Result
	if task.Round <= 1 {
		result, err = s.publisher.CreateAndDeploy(ctx, task.Name, bundle)
	} else {
		result, err = s.publisher.Update(ctx, task.Name, bundle)
	}
	if err != nil {
		s.fail(ctx, task, StagePublish, err)
		return
	}
	s.step(ctx, task, StagePublish, "published to github pages", map[string]any{
		"repo_url":   result.RepoURL,
		"commit_sha": result.CommitSHA,
		"pages_url":  result.PagesURL,
	})

	// Pages builds lag behind the push; a negative answer never fails the run.
	if s.publisher.WaitForPagesLive(ctx, result.PagesURL, s.pagesWait) {
		s.step(ctx, task, StageVerify, "pages url is live", nil)
	} else {
		s.step(ctx, task, StageVerify, "pages url not confirmed live, continuing", nil)
	}

	notifyStatus := domain.NotifySuccess
	err = s.notifier.Send(ctx, task.EvaluationURL, notify.Payload{
		Email:     task.Email,
		Task:      task.Name,
		Round:     task.Round,
		Nonce:     task.Nonce,
		RepoURL:   result.RepoURL,
		CommitSHA: result.CommitSHA,
		PagesURL:  result.PagesURL,
	})
	if err != nil {
		notifyStatus = domain.NotifyFailed
		s.step(ctx, task, StageNotify, "evaluator notification failed: "+err.Error(), nil)
	} else {
		s.step(ctx, task, StageNotify, "evaluator notified", nil)
	}

	now := time.Now().UTC()
	delivery := &domain.Delivery{
		ID:           uuid.NewString(),
		Email:        task.Email,
		Task:         task.Name,
		Round:        task.Round,
		Nonce:        task.Nonce,
		RepoURL:      result.RepoURL,
		CommitSHA:    result.CommitSHA,
		PagesURL:     result.PagesURL,
		NotifyStatus: notifyStatus,
		NotifiedAt:   now,
		CreatedAt:    now,
	}
	if err := s.deliveries.CreateDelivery(ctx, delivery); err != nil {
		s.fail(ctx, task, StageRecord, err)
		return
	}
	s.step(ctx, task, StageRecord, "delivery recorded", nil)
	s.logger.Info("deployment workflow complete", "task", task.Name, "pages_url", result.PagesURL, "notify_status", notifyStatus)
}

func (s *Service) step(ctx context.Context, task domain.Task, stage, message string, metadata map[string]any) {
	entry := domain.DeployLog{
		Task:      task.Name,
		Stage:     stage,
		Level:     "info",
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if len(metadata) > 0 {
		if data, err := json.Marshal(metadata); err == nil {
			entry.Metadata = data
		}
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append deploy log", "task", task.Name, "stage", stage, "error", err)
	}
}

func (s *Service) fail(ctx context.Context, task domain.Task, stage string, cause error) {
	s.logger.Error("deployment failed", "task", task.Name, "round", task.Round, "stage", stage, "error", cause)
	entry := domain.DeployLog{
		Task:      task.Name,
		Stage:     stage,
		Level:     "error",
		Message:   cause.Error(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.logs.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to append deploy log", "task", task.Name, "stage", stage, "error", err)
	}
}
