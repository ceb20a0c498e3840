package workpool

import (
	"sync/atomic"
	"testing"

	"github.com/taigrr/wfload/pkg/logsink"
)

func TestInlineDegradation(t *testing.T) {
	p := New(0, logsink.Discard)
	if !p.inline {
		t.Fatal("expected pool with maxThreads=0 to degrade to inline execution")
	}

	h := p.Enqueue(func() (any, error) { return 42, nil })
	result, err := h.Wait()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result != 42 {
		t.Errorf("result = %v, want 42", result)
	}
}

func TestEnqueueRunsAllTasks(t *testing.T) {
	p := New(4, logsink.Discard)
	defer p.Shutdown()

	const n = 20
	var completed atomic.Int64
	handles := make([]*Handle, n)
	for i := 0; i < n; i++ {
		handles[i] = p.Enqueue(func() (any, error) {
			completed.Add(1)
			return nil, nil
		})
	}
	for _, h := range handles {
		if _, err := h.Wait(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if completed.Load() != n {
		t.Errorf("completed = %d, want %d", completed.Load(), n)
	}
}

func TestEnqueueAfterShutdownIsRejected(t *testing.T) {
	p := New(2, logsink.Discard)
	p.Shutdown()

	h := p.Enqueue(func() (any, error) { return nil, nil })
	_, err := h.Wait()
	if err == nil {
		t.Fatal("expected an error after shutdown")
	}
}

func TestPanickingTaskDoesNotCrashWorker(t *testing.T) {
	p := New(1, logsink.Discard)
	defer p.Shutdown()

	h := p.Enqueue(func() (any, error) {
		panic("boom")
	})
	if _, err := h.Wait(); err == nil {
		t.Fatal("expected the panic to surface as an error")
	}

	// The pool must still be usable after a panicking task.
	h2 := p.Enqueue(func() (any, error) { return "ok", nil })
	result, err := h2.Wait()
	if err != nil {
		t.Fatalf("unexpected error after recovering from panic: %v", err)
	}
	if result != "ok" {
		t.Errorf("result = %v, want ok", result)
	}
}
