package lightnet

import (
	"context"
	"sync"
	"testing"
)

func TestRegistryRegisterAndCancel(t *testing.T) {
	reg := newTaskRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	reg.register("a", cancel)

	if reg.inflightCount() != 1 {
		t.Fatalf("expected 1 in-flight entry, got %d", reg.inflightCount())
	}

	reg.cancel("a")
	if ctx.Err() == nil {
		t.Error("expected the registered handle to be cancelled")
	}
	if reg.inflightCount() != 0 {
		t.Errorf("expected entry removed, got %d", reg.inflightCount())
	}

	// Absent ids are a no-op.
	reg.cancel("a")
	reg.cancel("never-registered")
}

func TestRegistryUnregisterLeavesHandleAlone(t *testing.T) {
	reg := newTaskRegistry()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reg.register("a", cancel)
	reg.unregister("a")

	if ctx.Err() != nil {
		t.Error("unregister must not cancel the handle")
	}
	if reg.inflightCount() != 0 {
		t.Errorf("expected entry removed, got %d", reg.inflightCount())
	}
}

func TestRegistryCancelAllWipesEverything(t *testing.T) {
	reg := newTaskRegistry()

	ctxA, cancelA := context.WithCancel(context.Background())
	ctxB, cancelB := context.WithCancel(context.Background())
	reg.register("a", cancelA)
	reg.register("b", cancelB)
	reg.incrementRetries("fp-1")
	reg.incrementRetries("fp-2")
	reg.incrementRetries("fp-2")

	reg.cancelAll()

	if ctxA.Err() == nil || ctxB.Err() == nil {
		t.Error("expected every handle cancelled")
	}
	if reg.inflightCount() != 0 {
		t.Errorf("expected in-flight map empty, got %d", reg.inflightCount())
	}
	if reg.retryCount("fp-1") != 0 || reg.retryCount("fp-2") != 0 {
		t.Error("expected all retry counters wiped")
	}
}

func TestRegistryRetryCounters(t *testing.T) {
	reg := newTaskRegistry()

	if reg.retryCount("fp") != 0 {
		t.Error("expected absent counter to read 0")
	}

	reg.incrementRetries("fp")
	reg.incrementRetries("fp")
	if n := reg.retryCount("fp"); n != 2 {
		t.Errorf("expected 2, got %d", n)
	}

	reg.clearRetries("fp")
	if reg.retryCount("fp") != 0 {
		t.Error("expected counter cleared")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := newTaskRegistry()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := TaskID(rune('a' + n%26))
			_, cancel := context.WithCancel(context.Background())
			reg.register(id, cancel)
			reg.incrementRetries("shared")
			reg.retryCount("shared")
			reg.cancel(id)
		}(i)
	}
	wg.Wait()

	if reg.inflightCount() != 0 {
		t.Errorf("expected registry drained, got %d", reg.inflightCount())
	}
}
