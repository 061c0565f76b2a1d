package resilience

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSingleFlight_CollapsesConcurrentCalls(t *testing.T) {
	var g SingleFlight
	var loads int32
	var shared int32

	const callers = 20
	gate := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-gate

			v, err, wasShared := g.Do("fixtures-39-2024", func() (any, error) {
				atomic.AddInt32(&loads, 1)
				time.Sleep(20 * time.Millisecond)
				return "ok", nil
			})
			if err != nil {
				t.Errorf("singleflight call failed: %v", err)
			}
			if v != "ok" {
				t.Errorf("unexpected value: %v", v)
			}
			if wasShared {
				atomic.AddInt32(&shared, 1)
			}
		}()
	}

	close(gate)
	wg.Wait()

	if got := atomic.LoadInt32(&loads); got != 1 {
		t.Fatalf("expected function to run once, got %d", got)
	}
	if got := atomic.LoadInt32(&shared); got != callers-1 {
		t.Fatalf("expected %d shared results, got %d", callers-1, got)
	}
}

func TestSingleFlight_SequentialCallsRunSeparately(t *testing.T) {
	var g SingleFlight
	var loads int32

	for i := 0; i < 3; i++ {
		_, err, wasShared := g.Do("standings-39-2024", func() (any, error) {
			atomic.AddInt32(&loads, 1)
			return i, nil
		})
		if err != nil {
			t.Fatalf("singleflight call failed: %v", err)
		}
		if wasShared {
			t.Fatalf("sequential call %d should not share a result", i)
		}
	}

	if got := atomic.LoadInt32(&loads); got != 3 {
		t.Fatalf("expected three loads, got %d", got)
	}
}
