package notify

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/jakubzver/footboard/internal/platform/logging"
	"github.com/jakubzver/footboard/internal/platform/resilience"
)

func TestWebhookNotifier_PublishDeliversEvent(t *testing.T) {
	var gotAuth string
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(server.Close)

	n := NewWebhookNotifier(WebhookConfig{URL: server.URL, AuthToken: "hook-token"}, logging.NewNop())
	fixed := time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return fixed }

	err := n.publish(context.Background(), syncCompletedEvent{
		Event: "sync.completed", LeagueID: 39, Season: 2025, MatchCount: 380, CompletedAt: fixed,
	})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if gotAuth != "Bearer hook-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}

	var event syncCompletedEvent
	if err := sonic.Unmarshal(gotBody, &event); err != nil {
		t.Fatalf("unmarshal delivered body: %v", err)
	}
	if event.Event != "sync.completed" || event.LeagueID != 39 || event.Season != 2025 || event.MatchCount != 380 {
		t.Fatalf("unexpected event %+v", event)
	}
	if !event.CompletedAt.Equal(fixed) {
		t.Fatalf("unexpected completedAt %v", event.CompletedAt)
	}
}

func TestWebhookNotifier_NotifyIsFireAndForget(t *testing.T) {
	delivered := make(chan struct{}, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		delivered <- struct{}{}
	}))
	t.Cleanup(server.Close)

	n := NewWebhookNotifier(WebhookConfig{URL: server.URL}, logging.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	n.NotifySyncCompleted(ctx, 39, 2025, 10)
	// Cancelling the sync context must not cancel the delivery.
	cancel()

	select {
	case <-delivered:
	case <-time.After(3 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWebhookNotifier_DisabledWithoutURL(t *testing.T) {
	n := NewWebhookNotifier(WebhookConfig{}, logging.NewNop())
	if n.Enabled() {
		t.Fatal("notifier without URL must be disabled")
	}
	// Must be a no-op, not a panic or a hang.
	n.NotifySyncCompleted(context.Background(), 39, 2025, 10)
}

func TestWebhookNotifier_TransientFailureTripsBreaker(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	n := NewWebhookNotifier(WebhookConfig{
		URL: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	event := syncCompletedEvent{Event: "sync.completed", LeagueID: 39, Season: 2025}
	if err := n.publish(context.Background(), event); err == nil {
		t.Fatal("expected error for 502 response")
	}
	if err := n.publish(context.Background(), event); !errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatalf("expected open circuit, got %v", err)
	}
	if calls.Load() != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls.Load())
	}
}

func TestWebhookNotifier_ClientErrorDoesNotTripBreaker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	n := NewWebhookNotifier(WebhookConfig{
		URL: server.URL,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 1,
			OpenTimeout:      time.Minute,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())

	event := syncCompletedEvent{Event: "sync.completed", LeagueID: 39, Season: 2025}
	if err := n.publish(context.Background(), event); err == nil {
		t.Fatal("expected error for 400 response")
	}
	if err := n.publish(context.Background(), event); errors.Is(err, resilience.ErrCircuitOpen) {
		t.Fatal("client errors must not open the circuit")
	}
}
