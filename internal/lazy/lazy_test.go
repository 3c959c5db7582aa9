package lazy

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestOfIsAlreadyForced(t *testing.T) {
	c := Of(42)
	if got := c.Force(); got != 42 {
		t.Fatalf("expected 42, got %d", got)
	}
}

func TestDeferMemoizes(t *testing.T) {
	calls := 0
	c := Defer(func() int {
		calls++
		return 7
	})
	if got := c.Force(); got != 7 {
		t.Fatalf("expected 7, got %d", got)
	}
	if got := c.Force(); got != 7 {
		t.Fatalf("second force changed the value: %d", got)
	}
	if calls != 1 {
		t.Fatalf("producer ran %d times", calls)
	}
}

func TestConcurrentForceRunsProducerOnce(t *testing.T) {
	var calls atomic.Int32
	c := Defer(func() int {
		calls.Add(1)
		return 99
	})

	const readers = 16
	results := make([]int, readers)
	var wg sync.WaitGroup
	var start sync.WaitGroup
	start.Add(1)
	for i := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			start.Wait()
			results[i] = c.Force()
		}()
	}
	start.Done()
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("producer ran %d times, want 1", got)
	}
	for i, r := range results {
		if r != 99 {
			t.Fatalf("reader %d observed %d", i, r)
		}
	}
}
