package retry

import (
	"testing"
	"time"
)

func TestTryState_NextNeverRewinds(t *testing.T) {
	ts := New([]time.Duration{0, time.Second, 2 * time.Second})
	now := time.Now()

	d, ok := ts.Next(now)
	if !ok || d != 0 {
		t.Fatalf("expected first delay 0, got %v ok=%v", d, ok)
	}
	if ts.Index != 1 {
		t.Fatalf("expected index 1, got %d", ts.Index)
	}

	d, ok = ts.Next(now)
	if !ok || d != time.Second {
		t.Fatalf("expected second delay 1s, got %v ok=%v", d, ok)
	}

	d, ok = ts.Next(now)
	if !ok || d != 2*time.Second {
		t.Fatalf("expected third delay 2s, got %v ok=%v", d, ok)
	}

	_, ok = ts.Next(now)
	if ok {
		t.Fatal("expected exhausted schedule to return ok=false")
	}
	if ts.Index != 3 {
		t.Fatalf("index should not rewind, got %d", ts.Index)
	}
}

func TestTryState_ZeroDelayIsConsumed(t *testing.T) {
	ts := New([]time.Duration{0})
	now := time.Now()

	_, ok := ts.Next(now)
	if !ok {
		t.Fatal("zero delay must be a valid, consumed retry")
	}
	if ts.HasRetriesLeft() {
		t.Fatal("schedule of one zero-delay retry should be exhausted after Next")
	}
}

func TestTryState_IsDelayDone(t *testing.T) {
	ts := New([]time.Duration{time.Minute})
	now := time.Now()
	ts.Next(now)

	if ts.IsDelayDone(now) {
		t.Fatal("delay should not be done immediately")
	}
	if !ts.IsDelayDone(now.Add(2 * time.Minute)) {
		t.Fatal("delay should be done after the timeout elapses")
	}
}

func TestTryState_WaitingFlag(t *testing.T) {
	ts := New([]time.Duration{time.Second})
	ts.Next(time.Now())

	ts.SetWaiting()
	if !ts.Waiting {
		t.Fatal("expected waiting=true")
	}
	if ts.HasDelay || ts.HasTimeout {
		t.Fatal("SetWaiting must clear delay and timeout")
	}

	ts.UnsetWaiting()
	if ts.Waiting {
		t.Fatal("expected waiting=false")
	}
}

func TestTryState_SnapshotRestorePreservesIndex(t *testing.T) {
	ts := New([]time.Duration{0, 0, 0})
	ts.Next(time.Now())
	ts.Next(time.Now())

	snap := ts.Snapshot()

	other := New([]time.Duration{0, 0, 0})
	other.Restore(snap)

	if other.Index != ts.Index {
		t.Fatalf("expected restored index %d, got %d", ts.Index, other.Index)
	}
}

func TestTryState_ManualTriggerClearsTimeoutNotIndex(t *testing.T) {
	ts := New([]time.Duration{time.Minute})
	ts.Next(time.Now())

	ts.Reset()

	if ts.IsTimeoutSet() {
		t.Fatal("Reset should clear the armed timeout")
	}
	if ts.Index != 1 {
		t.Fatal("Reset must not rewind Index")
	}
}
