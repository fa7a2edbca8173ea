package ws

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeSubscriber struct {
	mu       sync.Mutex
	payloads [][]byte
	sendErr  error
	closed   bool
}

func (f *fakeSubscriber) Send(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.payloads = append(f.payloads, payload)
	return nil
}

func (f *fakeSubscriber) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakeSubscriber) received() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.payloads)
}

func (f *fakeSubscriber) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met within deadline")
}

func TestHubBroadcastsToTaskSubscribers(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}
	other := &fakeSubscriber{}

	hub.Register("task-a", sub)
	hub.Register("task-b", other)

	hub.Broadcast("task-a", []byte("hello"))

	waitFor(t, func() bool { return sub.received() == 1 })
	if other.received() != 0 {
		t.Fatalf("expected no cross-task delivery, got %d", other.received())
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := &fakeSubscriber{}

	hub.Register("task-a", sub)
	hub.Unregister("task-a", sub)
	hub.Broadcast("task-a", []byte("late"))

	// Broadcast is handled on the hub goroutine; give it a moment.
	time.Sleep(20 * time.Millisecond)
	if sub.received() != 0 {
		t.Fatalf("expected no delivery after unregister, got %d", sub.received())
	}
}

func TestHubDropsFailingSubscriber(t *testing.T) {
	hub := NewHub()
	failing := &fakeSubscriber{sendErr: errors.New("gone")}
	healthy := &fakeSubscriber{}

	hub.Register("task-a", failing)
	hub.Register("task-a", healthy)

	hub.Broadcast("task-a", []byte("one"))
	waitFor(t, func() bool { return healthy.received() == 1 })
	waitFor(t, func() bool { return failing.isClosed() })

	hub.Broadcast("task-a", []byte("two"))
	waitFor(t, func() bool { return healthy.received() == 2 })
}
