package repository

import (
	"context"

	"github.com/pagesmith/pagesmith/internal/domain"
)

// TaskRepository persists accepted deployment requests.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *domain.Task) error
	GetTaskByNonce(ctx context.Context, email, task string, round int, nonce string) (*domain.Task, error)
}

// DeliveryRepository stores completed deployment results.
type DeliveryRepository interface {
	CreateDelivery(ctx context.Context, delivery *domain.Delivery) error
	ListDeliveriesByTask(ctx context.Context, task string, limit int) ([]domain.Delivery, error)
}

// LogRepository handles deployment log persistence and retrieval.
type LogRepository interface {
	AppendLog(ctx context.Context, entry domain.DeployLog) error
	ListLogsByTask(ctx context.Context, task string, limit, offset int) ([]domain.DeployLog, error)
}
