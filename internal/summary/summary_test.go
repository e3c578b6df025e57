package summary

import (
	"testing"
	"time"

	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/pool"
)

func newTestPool(t *testing.T) *pool.InMemoryPool {
	t.Helper()
	pl := pool.New(pool.Config{})
	pl.AddDef(&domain.TaskDef{Name: "foo"})
	pl.AddDef(&domain.TaskDef{Name: "bar"})
	return pl
}

func TestRefreshCountsStateTotals(t *testing.T) {
	pl := newTestPool(t)
	id1 := domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}
	id2 := domain.Identity{Name: "bar", Point: cycle.IntegerPoint(1)}
	p1, _ := pl.Spawn(id1, nil)
	pl.Spawn(id2, nil)
	p1.SetStatus(domain.StatusRunning)

	proj := New(pl, Ancestry{FirstParent: map[string]string{}})
	proj.Refresh(time.Now(), false, false)

	snap := proj.Current()
	if snap.Global.StateTotals[domain.StatusRunning] != 1 {
		t.Fatalf("expected 1 running, got %d", snap.Global.StateTotals[domain.StatusRunning])
	}
	if snap.Global.StateTotals[domain.StatusWaiting] != 1 {
		t.Fatalf("expected 1 waiting, got %d", snap.Global.StateTotals[domain.StatusWaiting])
	}
}

func TestRefreshStatusStringPrecedence(t *testing.T) {
	pl := newTestPool(t)
	proj := New(pl, Ancestry{})

	proj.Refresh(time.Now(), true, true)
	if proj.Current().Global.StatusString != domain.SuiteHeld {
		t.Fatalf("expected held to take precedence, got %s", proj.Current().Global.StatusString)
	}

	proj.Refresh(time.Now(), false, true)
	if proj.Current().Global.StatusString != domain.SuiteStopping {
		t.Fatalf("expected stopping, got %s", proj.Current().Global.StatusString)
	}

	proj.Refresh(time.Now(), false, false)
	if proj.Current().Global.StatusString != domain.SuiteRunning {
		t.Fatalf("expected running, got %s", proj.Current().Global.StatusString)
	}
}

func TestRefreshCyclePointExtremes(t *testing.T) {
	pl := newTestPool(t)
	pl.Spawn(domain.Identity{Name: "foo", Point: cycle.IntegerPoint(5)}, nil)
	pl.Spawn(domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}, nil)

	proj := New(pl, Ancestry{})
	proj.Refresh(time.Now(), false, false)

	snap := proj.Current()
	if snap.Global.OldestCyclePoint != "1" {
		t.Fatalf("expected oldest 1, got %s", snap.Global.OldestCyclePoint)
	}
	if snap.Global.NewestCyclePoint != "5" {
		t.Fatalf("expected newest 5, got %s", snap.Global.NewestCyclePoint)
	}
}

func TestRefreshPopulatesLatestMessageAndTimestamps(t *testing.T) {
	pl := newTestPool(t)
	id := domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}
	p, _ := pl.Spawn(id, nil)
	p.SetLatestMessage("succeeded")
	p.SetFinishedTime(time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC))

	proj := New(pl, Ancestry{})
	proj.Refresh(time.Now(), false, false)

	task := proj.Current().Tasks[id.String()]
	if task.LatestMessage != "succeeded" {
		t.Fatalf("LatestMessage = %q, want succeeded", task.LatestMessage)
	}
	if task.FinishedTime.IsZero() {
		t.Fatal("expected FinishedTime to be projected")
	}
}

func TestRollupFamilyStatePicksWorstStatus(t *testing.T) {
	pl := newTestPool(t)
	id1 := domain.Identity{Name: "foo", Point: cycle.IntegerPoint(1)}
	id2 := domain.Identity{Name: "bar", Point: cycle.IntegerPoint(1)}
	p1, _ := pl.Spawn(id1, nil)
	p2, _ := pl.Spawn(id2, nil)
	p1.SetStatus(domain.StatusRunning)
	p2.SetStatus(domain.StatusFailed)

	proj := New(pl, Ancestry{FirstParent: map[string]string{"foo": "FAM", "bar": "FAM"}})
	proj.Refresh(time.Now(), false, false)

	fam, ok := proj.Current().Families["FAM.1"]
	if !ok {
		t.Fatal("expected a family summary for FAM.1")
	}
	if fam.State != domain.StatusFailed {
		t.Fatalf("expected failed to win over running, got %s", fam.State)
	}
}

func TestGetTasksByStateAppendsOverflowSentinel(t *testing.T) {
	snap := &Snapshot{Tasks: map[string]TaskSummary{}}
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 8; i++ {
		name := string(rune('a' + i))
		snap.Tasks[name] = TaskSummary{
			Identity:      domain.Identity{Name: name, Point: cycle.IntegerPoint(1)},
			State:         domain.StatusRunning,
			FinishedTime:  base.Add(time.Duration(i) * time.Minute),
		}
	}

	byState := snap.GetTasksByState()
	entries := byState[domain.StatusRunning]
	if len(entries) != 6 {
		t.Fatalf("expected 5 tasks + 1 sentinel, got %d", len(entries))
	}
	sentinel := entries[len(entries)-1]
	if sentinel.Overflow != 3 {
		t.Fatalf("expected overflow of 3, got %d", sentinel.Overflow)
	}
}

func TestGetTasksByStateKeepsAllWhenSixOrFewer(t *testing.T) {
	snap := &Snapshot{Tasks: map[string]TaskSummary{}}
	for i := 0; i < 4; i++ {
		name := string(rune('a' + i))
		snap.Tasks[name] = TaskSummary{
			Identity: domain.Identity{Name: name, Point: cycle.IntegerPoint(1)},
			State:    domain.StatusSucceeded,
		}
	}

	byState := snap.GetTasksByState()
	if len(byState[domain.StatusSucceeded]) != 4 {
		t.Fatalf("expected all 4 tasks kept, got %d", len(byState[domain.StatusSucceeded]))
	}
}
