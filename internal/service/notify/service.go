package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sethvargo/go-retry"
)

// Payload is the evaluation callback body.
type Payload struct {
	Email     string `json:"email"`
	Task      string `json:"task"`
	Round     int    `json:"round"`
	Nonce     string `json:"nonce"`
	RepoURL   string `json:"repo_url"`
	CommitSHA string `json:"commit_sha"`
	PagesURL  string `json:"pages_url"`
}

// Service delivers evaluation callbacks with exponential backoff.
type Service struct {
	client      *http.Client
	logger      *slog.Logger
	maxAttempts int
	baseDelay   time.Duration
}

// New constructs a notification service. attempts includes the first try;
// baseDelay seeds the exponential backoff (1s yields 1,2,4,8,16...).
func New(logger *slog.Logger, attempts int, baseDelay time.Duration) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if attempts <= 0 {
		attempts = 5
	}
	if baseDelay <= 0 {
		baseDelay = time.Second
	}
	return Service{
		client:      &http.Client{Timeout: 30 * time.Second},
		logger:      logger,
		maxAttempts: attempts,
		baseDelay:   baseDelay,
	}
}

// Send posts the payload to the evaluator URL, retrying transport failures
// and non-200 responses. The returned error reflects the final attempt.
func (s Service) Send(ctx context.Context, url string, payload Payload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	backoff := retry.WithMaxRetries(uint64(s.maxAttempts-1), retry.NewExponential(s.baseDelay))

	attempt := 0
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		s.logger.Info("notifying evaluator", "url", url, "attempt", attempt, "max_attempts", s.maxAttempts)

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			s.logger.Warn("evaluator request failed", "attempt", attempt, "error", err)
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
			s.logger.Warn("evaluator returned non-200", "attempt", attempt, "status", resp.StatusCode, "body", string(snippet))
			return retry.RetryableError(fmt.Errorf("evaluator returned status %d", resp.StatusCode))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("notify evaluator after %d attempts: %w", attempt, err)
	}
	s.logger.Info("evaluator notified", "url", url, "attempts", attempt)
	return nil
}
