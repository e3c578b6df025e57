package pool

import (
	"testing"

	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
)

func TestSpawnRequiresKnownDef(t *testing.T) {
	pl := New(Config{})
	_, err := pl.Spawn(domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}, nil)
	if err == nil {
		t.Fatal("expected an error for an unknown task name")
	}
}

func TestSpawnAndGet(t *testing.T) {
	pl := New(Config{})
	pl.AddDef(&domain.TaskDef{Name: "foo"})

	id := domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}
	p, err := pl.Spawn(id, nil)
	if err != nil {
		t.Fatalf("Spawn: %v", err)
	}
	got, ok := pl.Get(id)
	if !ok || got != p {
		t.Fatal("expected Get to return the spawned proxy")
	}
}

func TestPutCommandHoldAndRelease(t *testing.T) {
	pl := New(Config{})
	pl.AddDef(&domain.TaskDef{Name: "foo"})
	id := domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}
	p, _ := pl.Spawn(id, nil)

	if err := pl.PutCommand(id, CommandHold); err != nil {
		t.Fatalf("PutCommand(hold): %v", err)
	}
	if !p.IsHeld() {
		t.Fatal("expected proxy to be held")
	}
	if err := pl.PutCommand(id, CommandRelease); err != nil {
		t.Fatalf("PutCommand(release): %v", err)
	}
	if p.IsHeld() {
		t.Fatal("expected proxy to be released")
	}
}

func TestPutCommandUnknownIdentity(t *testing.T) {
	pl := New(Config{})
	err := pl.PutCommand(domain.Identity{Name: "missing", Point: cycle.IntegerPoint(1)}, CommandHold)
	if err == nil {
		t.Fatal("expected an error for an unknown identity")
	}
}

func TestGetMinMaxPoint(t *testing.T) {
	pl := New(Config{})
	pl.AddDef(&domain.TaskDef{Name: "foo"})
	pl.Spawn(domain.Identity{Name: "foo", Point: cycle.IntegerPoint(3)}, nil)
	pl.Spawn(domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}, nil)
	pl.Spawn(domain.Identity{Name: "foo", Point: cycle.IntegerPoint(2)}, nil)

	min, ok := pl.GetMinPoint()
	if !ok || min.(cycle.IntegerPoint) != 1 {
		t.Fatalf("GetMinPoint = %v, %v", min, ok)
	}
	max, ok := pl.GetMaxPoint()
	if !ok || max.(cycle.IntegerPoint) != 3 {
		t.Fatalf("GetMaxPoint = %v, %v", max, ok)
	}
}

func TestDoReloadReplacesDefTable(t *testing.T) {
	pl := New(Config{})
	pl.AddDef(&domain.TaskDef{Name: "old"})

	if err := pl.DoReload([]*domain.TaskDef{{Name: "new"}}); err != nil {
		t.Fatalf("DoReload: %v", err)
	}
	if _, err := pl.Spawn(domain.Identity{Name: "old", Point: cycle.IntegerPoint(1)}, nil); err == nil {
		t.Fatal("expected old def to be gone after reload")
	}
	if _, err := pl.Spawn(domain.Identity{Name: "new", Point: cycle.IntegerPoint(1)}, nil); err != nil {
		t.Fatalf("expected new def to be spawnable: %v", err)
	}
}
