package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func countingLoader(calls *atomic.Int32, value any, delay time.Duration) func(context.Context) (any, error) {
	return func(context.Context) (any, error) {
		calls.Add(1)
		if delay > 0 {
			time.Sleep(delay)
		}
		return value, nil
	}
}

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := countingLoader(&calls, "value", 20*time.Millisecond)

	const workers = 32
	gate := make(chan struct{})
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate

			v, err := store.GetOrLoad(context.Background(), "same-key", loader)
			if err != nil {
				t.Errorf("GetOrLoad error: %v", err)
				return
			}
			if got, _ := v.(string); got != "value" {
				t.Errorf("unexpected value: %v", v)
			}
		}()
	}

	close(gate)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_UsesCachedValueAfterFirstLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := countingLoader(&calls, "cached", 0)

	for attempt := 0; attempt < 2; attempt++ {
		if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
			t.Fatalf("GetOrLoad attempt %d error: %v", attempt, err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore(time.Minute)
	store.Set(ctx, "table:39:2024", 1)
	store.Set(ctx, "table:39:2023", 2)
	store.Set(ctx, "leagues", 3)

	store.DeletePrefix(ctx, "table:39:")

	if _, ok := store.Get(ctx, "table:39:2024"); ok {
		t.Fatal("expected prefixed key to be evicted")
	}
	if _, ok := store.Get(ctx, "leagues"); !ok {
		t.Fatal("expected unrelated key to survive")
	}
}

func TestDisabledStore_AlwaysLoads(t *testing.T) {
	t.Parallel()

	store := NewDisabledStore()
	var calls atomic.Int32
	loader := countingLoader(&calls, "fresh", 0)

	for i := 0; i < 3; i++ {
		v, err := store.GetOrLoad(context.Background(), "k", loader)
		if err != nil {
			t.Fatalf("GetOrLoad error: %v", err)
		}
		if got, _ := v.(string); got != "fresh" {
			t.Fatalf("unexpected value: %v", v)
		}
	}

	if got := calls.Load(); got != 3 {
		t.Fatalf("loader called %d times, want 3", got)
	}
}
