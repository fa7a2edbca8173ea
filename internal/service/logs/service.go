package logs

import (
	"context"
	"encoding/json"
	"time"

	"log/slog"

	"github.com/pagesmith/pagesmith/internal/domain"
	"github.com/pagesmith/pagesmith/internal/repository"
	"github.com/pagesmith/pagesmith/internal/ws"
)

// Service handles deployment log persistence and streaming.
type Service struct {
	repo   repository.LogRepository
	hub    *ws.Hub
	logger *slog.Logger
}

// New constructs a log service.
func New(repo repository.LogRepository, hub *ws.Hub, logger *slog.Logger) Service {
	return Service{repo: repo, hub: hub, logger: logger}
}

// Append stores and broadcasts a log entry.
func (s Service) Append(ctx context.Context, entry domain.DeployLog) error {
	entry.CreatedAt = entry.CreatedAt.UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	if err := s.repo.AppendLog(ctx, entry); err != nil {
		return err
	}
	s.broadcast(entry)
	return nil
}

// List returns stored log lines for a task.
func (s Service) List(ctx context.Context, task string, limit, offset int) ([]domain.DeployLog, error) {
	return s.repo.ListLogsByTask(ctx, task, limit, offset)
}

func (s Service) broadcast(entry domain.DeployLog) {
	if s.hub == nil {
		return
	}
	data, err := MarshalEntry(entry)
	if err != nil {
		s.logger.Warn("failed to marshal log payload", "error", err)
		return
	}
	s.hub.Broadcast(entry.Task, data)
}

// Hub returns the websocket hub (useful for HTTP handlers).
func (s Service) Hub() *ws.Hub {
	return s.hub
}

// MarshalEntry formats a deploy log for streaming payloads.
func MarshalEntry(entry domain.DeployLog) ([]byte, error) {
	var metadata any
	if len(entry.Metadata) > 0 {
		metadata = json.RawMessage(entry.Metadata)
	}
	payload := map[string]any{
		"task":       entry.Task,
		"stage":      entry.Stage,
		"level":      entry.Level,
		"message":    entry.Message,
		"metadata":   metadata,
		"created_at": entry.CreatedAt.Format(time.RFC3339Nano),
		"id":         entry.ID,
	}
	return json.Marshal(payload)
}
