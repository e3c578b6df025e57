package pool

import (
	"strings"
	"testing"

	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
)

func newDispatchPool(t *testing.T) (*InMemoryPool, domain.Identity) {
	t.Helper()
	pl := New(Config{})
	pl.AddDef(&domain.TaskDef{Name: "foo"})
	id := domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}
	if _, err := pl.Spawn(id, &domain.DeltaBuffer{}); err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	return pl, id
}

func TestDispatchSubmitSucceeded(t *testing.T) {
	pl, id := newDispatchPool(t)

	err := pl.Dispatch(CallbackPayload{
		TaskName:   id.Name,
		CyclePoint: id.Point.String(),
		Kind:       "submit",
		RawLine:    "2026-07-30T00:00:00Z|submit|0|12345",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	p, _ := pl.Get(id)
	if p.Status() != domain.StatusSubmitted {
		t.Fatalf("status = %v, want submitted", p.Status())
	}
}

func TestDispatchUnknownIdentity(t *testing.T) {
	pl, _ := newDispatchPool(t)

	err := pl.Dispatch(CallbackPayload{
		TaskName:   "missing",
		CyclePoint: "1",
		Kind:       "submit",
		RawLine:    "2026-07-30T00:00:00Z|submit|0|12345",
	})
	if err == nil {
		t.Fatal("expected an error for an unknown identity")
	}
}

func TestDispatchMalformedCyclePoint(t *testing.T) {
	pl, _ := newDispatchPool(t)

	err := pl.Dispatch(CallbackPayload{
		TaskName:   "foo",
		CyclePoint: "not-a-point-!!",
		Kind:       "submit",
		RawLine:    "2026-07-30T00:00:00Z|submit|0|12345",
	})
	if err == nil {
		t.Fatal("expected an error for a malformed cycle point")
	}
}

func TestDispatchMalformedLine(t *testing.T) {
	pl, id := newDispatchPool(t)

	err := pl.Dispatch(CallbackPayload{
		TaskName:   id.Name,
		CyclePoint: id.Point.String(),
		Kind:       "submit",
		RawLine:    "too|short",
	})
	if err == nil {
		t.Fatal("expected an error for a malformed callback line")
	}
}

func TestDispatchUnknownKind(t *testing.T) {
	pl, id := newDispatchPool(t)

	err := pl.Dispatch(CallbackPayload{
		TaskName:   id.Name,
		CyclePoint: id.Point.String(),
		Kind:       "bogus",
		RawLine:    "anything",
	})
	if err == nil || !strings.Contains(err.Error(), "unknown callback kind") {
		t.Fatalf("Dispatch err = %v, want unknown callback kind", err)
	}
}

func TestDispatchKill(t *testing.T) {
	pl, id := newDispatchPool(t)
	p, _ := pl.Get(id)
	p.SetStatus(domain.StatusRunning)

	err := pl.Dispatch(CallbackPayload{
		TaskName:   id.Name,
		CyclePoint: id.Point.String(),
		Kind:       "kill",
		RawLine:    "2026-07-30T00:00:00Z|kill|0",
	})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if p.Status() != domain.StatusFailed {
		t.Fatalf("status = %v, want failed", p.Status())
	}
}
