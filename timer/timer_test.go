package timer

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestManager_FiresAfterDelay(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	fired := make(chan struct{})
	m.AddTimer(60*time.Millisecond, 0, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("Timer did not fire")
	}
}

func TestManager_RemoveCancelsTimer(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var fired atomic.Bool
	id := m.AddTimer(100*time.Millisecond, 0, func() { fired.Store(true) })
	m.RemoveTimer(id)

	time.Sleep(300 * time.Millisecond)
	if fired.Load() {
		t.Error("Removed timer must not fire")
	}
}

func TestManager_IntervalReschedules(t *testing.T) {
	m := NewManager()
	defer m.Stop()

	var count atomic.Int32
	id := m.AddTimer(30*time.Millisecond, 30*time.Millisecond, func() { count.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if count.Load() >= 2 {
			m.RemoveTimer(id)
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("Expected at least 2 firings, got %d", count.Load())
}
