package notify

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func TestSendSucceedsFirstAttempt(t *testing.T) {
	var received Payload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected json content type, got %s", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := New(testLogger(), 3, time.Millisecond)
	payload := Payload{
		Email:     "student@example.com",
		Task:      "captcha-solver-x",
		Round:     1,
		Nonce:     "n-1",
		RepoURL:   "https://github.com/u/captcha-solver-x",
		CommitSHA: "abc123",
		PagesURL:  "https://u.github.io/captcha-solver-x/",
	}
	if err := svc.Send(context.Background(), srv.URL, payload); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if received != payload {
		t.Fatalf("evaluator received %+v, want %+v", received, payload)
	}
}

func TestSendRetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := New(testLogger(), 5, time.Millisecond)
	if err := svc.Send(context.Background(), srv.URL, Payload{Task: "t"}); err != nil {
		t.Fatalf("Send returned error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestSendExhaustsAttempts(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := New(testLogger(), 3, time.Millisecond)
	err := svc.Send(context.Background(), srv.URL, Payload{Task: "t"})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
	if !strings.Contains(err.Error(), "status 500") {
		t.Fatalf("expected final status in error, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestSendStopsOnContextCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := New(testLogger(), 5, 50*time.Millisecond)
	if err := svc.Send(ctx, srv.URL, Payload{Task: "t"}); err == nil {
		t.Fatal("expected error with cancelled context")
	}
}
