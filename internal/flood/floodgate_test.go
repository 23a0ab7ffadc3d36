package flood

import (
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced clock
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestFloodgate(limit int) (*Floodgate, *fakeClock) {
	clock := &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	return newFloodgate(limit, clock.Now), clock
}

func TestFloodgate_CheckMessage_AllowsNormalUsage(t *testing.T) {
	fg := New(6)
	defer fg.Stop()

	for i := 0; i < 6; i++ {
		if !fg.CheckMessage(-100, 1) {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	if fg.CheckMessage(-100, 1) {
		t.Error("7th request within a minute should be blocked")
	}
}

func TestFloodgate_CheckMessage_SlidingWindow(t *testing.T) {
	fg, clock := newTestFloodgate(2)

	if !fg.CheckMessage(1, 1) {
		t.Error("First request should be allowed")
	}
	clock.Advance(30 * time.Second)
	if !fg.CheckMessage(1, 1) {
		t.Error("Second request should be allowed")
	}
	if fg.CheckMessage(1, 1) {
		t.Error("Third request should be blocked")
	}

	// first timestamp leaves the window, second is still in it
	clock.Advance(31 * time.Second)
	if !fg.CheckMessage(1, 1) {
		t.Error("Request after first timestamp expired should be allowed")
	}
	if fg.CheckMessage(1, 1) {
		t.Error("Request should be blocked while window is full again")
	}
}

func TestFloodgate_CheckMessage_PerUserPerChat(t *testing.T) {
	fg, _ := newTestFloodgate(2)

	for i := 0; i < 2; i++ {
		if !fg.CheckMessage(1, 10) {
			t.Errorf("Request %d in chat 1 should be allowed", i+1)
		}
		if !fg.CheckMessage(2, 10) {
			t.Errorf("Request %d in chat 2 should be allowed", i+1)
		}
		if !fg.CheckMessage(1, 20) {
			t.Errorf("Request %d from user 20 should be allowed", i+1)
		}
	}

	if fg.CheckMessage(1, 10) {
		t.Error("Extra request from user 10 in chat 1 should be blocked")
	}
	if fg.CheckMessage(2, 10) {
		t.Error("Extra request from user 10 in chat 2 should be blocked")
	}
	if fg.CheckMessage(1, 20) {
		t.Error("Extra request from user 20 in chat 1 should be blocked")
	}
}

func TestFloodgate_Disabled(t *testing.T) {
	for _, limit := range []int{0, -1} {
		fg, _ := newTestFloodgate(limit)
		for i := 0; i < 100; i++ {
			if !fg.CheckMessage(1, 1) {
				t.Fatalf("limit %d: request %d should be allowed", limit, i+1)
			}
		}
		if stats := fg.GetStats(); stats.ActiveUsers != 0 {
			t.Errorf("limit %d: disabled floodgate should not track users, got %d", limit, stats.ActiveUsers)
		}
	}
}

func TestFloodgate_GetStats(t *testing.T) {
	fg, _ := newTestFloodgate(5)

	stats := fg.GetStats()
	if stats.ActiveUsers != 0 {
		t.Errorf("Expected 0 active users initially, got %d", stats.ActiveUsers)
	}
	if stats.LimitPerMinute != 5 {
		t.Errorf("Expected limit per minute 5, got %d", stats.LimitPerMinute)
	}
	if stats.WindowSeconds != 60 {
		t.Errorf("Expected window seconds 60, got %d", stats.WindowSeconds)
	}

	fg.CheckMessage(1, 1)
	fg.CheckMessage(1, 2)
	fg.CheckMessage(2, 1)

	if stats = fg.GetStats(); stats.ActiveUsers != 3 {
		t.Errorf("Expected 3 active users, got %d", stats.ActiveUsers)
	}
}

func TestFloodgate_Cleanup(t *testing.T) {
	fg, clock := newTestFloodgate(1)

	fg.CheckMessage(1, 1)
	clock.Advance(5 * time.Minute)
	fg.CheckMessage(2, 2)

	clock.Advance(6 * time.Minute)
	fg.performCleanup()

	if stats := fg.GetStats(); stats.ActiveUsers != 1 {
		t.Errorf("Expected idle entry to be purged, got %d active users", stats.ActiveUsers)
	}

	if !fg.CheckMessage(1, 1) {
		t.Error("Purged user should be allowed again")
	}
}

func TestFloodgate_StopTwice(t *testing.T) {
	fg := New(1)
	fg.Stop()
	fg.Stop()
}

func TestFloodgate_ConcurrentAccess(t *testing.T) {
	fg := New(10)
	defer fg.Stop()

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				if fg.CheckMessage(1, 1) {
					mu.Lock()
					allowed++
					mu.Unlock()
				}
				fg.GetStats()
			}
		}()
	}
	wg.Wait()

	if allowed != 10 {
		t.Errorf("Expected exactly 10 allowed requests, got %d", allowed)
	}
}
