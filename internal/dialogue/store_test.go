package dialogue

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestStoreDefaultsToStart(t *testing.T) {
	store := NewStore()

	if got := store.Get(42); got != StateStart {
		t.Errorf("Expected %s, got %s", StateStart, got)
	}
}

func TestStoreTransitions(t *testing.T) {
	store := NewStore()

	store.Set(1, StateAwaitingAuthCode)
	if got := store.Get(1); got != StateAwaitingAuthCode {
		t.Fatalf("Expected %s, got %s", StateAwaitingAuthCode, got)
	}

	if got := store.Get(2); got != StateStart {
		t.Errorf("Other users must not be affected, got %s", got)
	}

	if store.CompareAndSwap(1, StateStart, StateAwaitingAuthCode) {
		t.Error("CompareAndSwap must fail when the current state differs")
	}

	if !store.CompareAndSwap(1, StateAwaitingAuthCode, StateStart) {
		t.Error("CompareAndSwap should succeed from the current state")
	}

	if got := store.Get(1); got != StateStart {
		t.Errorf("Expected %s after swap, got %s", StateStart, got)
	}
}

func TestStoreConcurrentSameUserCompletesOnce(t *testing.T) {
	store := NewStore()
	store.Set(1, StateAwaitingAuthCode)

	var winners int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if store.CompareAndSwap(1, StateAwaitingAuthCode, StateStart) {
				atomic.AddInt32(&winners, 1)
			}
		}()
	}
	wg.Wait()

	if winners != 1 {
		t.Errorf("Expected exactly one completion, got %d", winners)
	}
}

func TestStateString(t *testing.T) {
	if StateAwaitingAuthCode.String() != "awaiting_auth_code" {
		t.Errorf("unexpected string %q", StateAwaitingAuthCode.String())
	}
	if State(99).String() != "unknown" {
		t.Errorf("unexpected string %q", State(99).String())
	}
}
