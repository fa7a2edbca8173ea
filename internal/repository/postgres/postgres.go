package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pagesmith/pagesmith/internal/domain"
	"github.com/pagesmith/pagesmith/internal/repository"
)

// Repository implements persistence interfaces on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// New constructs a Repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ensure Repository satisfies interfaces.
var (
	_ repository.TaskRepository     = (*Repository)(nil)
	_ repository.DeliveryRepository = (*Repository)(nil)
	_ repository.LogRepository      = (*Repository)(nil)
)

// CreateTask inserts an accepted deployment request.
func (r *Repository) CreateTask(ctx context.Context, task *domain.Task) error {
	checks, err := json.Marshal(task.Checks)
	if err != nil {
		return fmt.Errorf("encode checks: %w", err)
	}
	attachments, err := json.Marshal(task.Attachments)
	if err != nil {
		return fmt.Errorf("encode attachments: %w", err)
	}
	const query = `INSERT INTO tasks (id, email, task, round, nonce, brief, checks, attachments, evaluation_url, secret_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = r.pool.Exec(ctx, query,
		task.ID, task.Email, task.Name, task.Round, task.Nonce, task.Brief,
		checks, attachments, task.EvaluationURL, task.SecretHash, task.CreatedAt)
	return err
}

// GetTaskByNonce fetches a task by its idempotency tuple.
func (r *Repository) GetTaskByNonce(ctx context.Context, email, task string, round int, nonce string) (*domain.Task, error) {
	const query = `SELECT id, email, task, round, nonce, brief, checks, attachments, evaluation_url, secret_hash, created_at
		FROM tasks WHERE email = $1 AND task = $2 AND round = $3 AND nonce = $4`
	row := r.pool.QueryRow(ctx, query, email, task, round, nonce)
	var (
		t           domain.Task
		checks      []byte
		attachments []byte
	)
	if err := row.Scan(&t.ID, &t.Email, &t.Name, &t.Round, &t.Nonce, &t.Brief, &checks, &attachments, &t.EvaluationURL, &t.SecretHash, &t.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(checks, &t.Checks); err != nil {
		return nil, fmt.Errorf("decode checks: %w", err)
	}
	if err := json.Unmarshal(attachments, &t.Attachments); err != nil {
		return nil, fmt.Errorf("decode attachments: %w", err)
	}
	return &t, nil
}

// CreateDelivery records a completed deployment workflow.
func (r *Repository) CreateDelivery(ctx context.Context, delivery *domain.Delivery) error {
	const query = `INSERT INTO deliveries (id, email, task, round, nonce, repo_url, commit_sha, pages_url, notify_status, notified_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.pool.Exec(ctx, query,
		delivery.ID, delivery.Email, delivery.Task, delivery.Round, delivery.Nonce,
		delivery.RepoURL, delivery.CommitSHA, delivery.PagesURL,
		delivery.NotifyStatus, delivery.NotifiedAt, delivery.CreatedAt)
	return err
}

// ListDeliveriesByTask returns recent deliveries for a task, newest first.
func (r *Repository) ListDeliveriesByTask(ctx context.Context, task string, limit int) ([]domain.Delivery, error) {
	if limit <= 0 {
		limit = 20
	}
	const query = `SELECT id, email, task, round, nonce, repo_url, commit_sha, pages_url, notify_status, notified_at, created_at
		FROM deliveries WHERE task = $1 ORDER BY created_at DESC LIMIT $2`
	rows, err := r.pool.Query(ctx, query, task, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := make([]domain.Delivery, 0)
	for rows.Next() {
		var d domain.Delivery
		if err := rows.Scan(&d.ID, &d.Email, &d.Task, &d.Round, &d.Nonce, &d.RepoURL, &d.CommitSHA, &d.PagesURL, &d.NotifyStatus, &d.NotifiedAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// AppendLog inserts a deployment progress line.
func (r *Repository) AppendLog(ctx context.Context, entry domain.DeployLog) error {
	metadata := entry.Metadata
	if len(metadata) == 0 {
		metadata = []byte("{}")
	}
	const query = `INSERT INTO deploy_logs (task, stage, level, message, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.pool.Exec(ctx, query, entry.Task, entry.Stage, entry.Level, entry.Message, metadata, entry.CreatedAt)
	return err
}

// ListLogsByTask returns stored log lines for a task, oldest first.
func (r *Repository) ListLogsByTask(ctx context.Context, task string, limit, offset int) ([]domain.DeployLog, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, task, stage, level, message, metadata, created_at
		FROM deploy_logs WHERE task = $1 ORDER BY id ASC LIMIT $2 OFFSET $3`
	rows, err := r.pool.Query(ctx, query, task, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.DeployLog, 0)
	for rows.Next() {
		var entry domain.DeployLog
		if err := rows.Scan(&entry.ID, &entry.Task, &entry.Stage, &entry.Level, &entry.Message, &entry.Metadata, &entry.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
