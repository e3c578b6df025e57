// Package summary implements the state-summary projector: a snapshot
// built from the live pool on each scheduler cycle and published
// atomically so readers (the HTTP API, the CLI) never observe a
// partially-built snapshot.
package summary

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/pool"
)

// TaskSummary is one proxy's projected state, the Go shape of the
// original's per-task summary dict.
type TaskSummary struct {
	Identity       domain.Identity
	State          domain.TaskStatus
	Spawned        bool
	SubmitNum      int
	LatestMessage  string
	SubmittedTime  time.Time
	StartedTime    time.Time
	FinishedTime   time.Time
	MeanElapsedSec float64
}

// FamilySummary aggregates the state of every task under fam at one
// cycle point, using first-parent single-inheritance the way
// state_summary_mgr.py does.
type FamilySummary struct {
	Family     string
	CyclePoint string
	State      domain.TaskStatus
}

// GlobalSummary is the run-wide snapshot: status string, cycle-point
// extremes and per-state totals.
type GlobalSummary struct {
	StatusString     domain.SuiteStatus
	OldestCyclePoint string
	NewestCyclePoint string
	NewestRunahead   string
	StateTotals      map[domain.TaskStatus]int
	LastUpdated      time.Time
}

// Snapshot is one atomically published projection of the whole pool.
type Snapshot struct {
	Global   GlobalSummary
	Tasks    map[string]TaskSummary // keyed by identity string
	Families map[string]FamilySummary
}

// Ancestry supplies the first-parent family tree the projector
// aggregates family state over. The broader namespace-inheritance
// config is out of this module's scope, so Ancestry is supplied by
// the caller (loaded from task definitions) rather than computed
// here.
type Ancestry struct {
	// FirstParent maps a task/family name to its immediate
	// first-parent, or "" at the root.
	FirstParent map[string]string
}

// Projector builds and atomically publishes Snapshots.
type Projector struct {
	pl       pool.Pool
	ancestry Ancestry
	current  atomic.Pointer[Snapshot]
}

// New returns a Projector reading from pl.
func New(pl pool.Pool, ancestry Ancestry) *Projector {
	p := &Projector{pl: pl, ancestry: ancestry}
	p.current.Store(&Snapshot{Tasks: map[string]TaskSummary{}, Families: map[string]FamilySummary{}})
	return p
}

// Current returns the most recently published snapshot.
func (p *Projector) Current() *Snapshot {
	return p.current.Load()
}

// Refresh builds a fresh snapshot from the pool and swaps it in.
// Stages mirror StateSummaryMgr.update: (1) collect per-task
// summaries, (2) derive per-cycle-point state counts, (3) roll them
// up into family summaries via first-parent ancestry, (4) compute
// state totals, (5) derive the suite status string, (6) atomic swap.
func (p *Projector) Refresh(now time.Time, held bool, stopping bool) {
	tasks := make(map[string]TaskSummary)
	byPointState := make(map[string]map[string]domain.TaskStatus) // point -> name -> status
	totals := make(map[domain.TaskStatus]int)

	for _, proxy := range p.pl.GetTasks() {
		id := proxy.Identity()
		status := proxy.Status()
		tasks[id.String()] = TaskSummary{
			Identity:      id,
			State:         status,
			Spawned:       proxy.HasSpawned(),
			SubmitNum:     proxy.SubmitNum(),
			LatestMessage: proxy.LatestMessage(),
			SubmittedTime: proxy.SubmittedTime(),
			StartedTime:   proxy.StartedTime(),
			FinishedTime:  proxy.FinishedTime(),
		}
		totals[status]++

		point := id.Point.String()
		if byPointState[point] == nil {
			byPointState[point] = make(map[string]domain.TaskStatus)
		}
		byPointState[point][id.Name] = status
	}

	families := p.rollupFamilies(byPointState)

	minPoint, hasMin := p.pl.GetMinPoint()
	maxPoint, hasMax := p.pl.GetMaxPoint()
	runahead, hasRunahead := p.pl.GetMaxPointRunahead()

	global := GlobalSummary{
		StatusString: suiteStatus(held, stopping),
		StateTotals:  totals,
		LastUpdated:  now,
	}
	if hasMin {
		global.OldestCyclePoint = minPoint.String()
	}
	if hasMax {
		global.NewestCyclePoint = maxPoint.String()
	}
	if hasRunahead {
		global.NewestRunahead = runahead.String()
	}

	p.current.Store(&Snapshot{Global: global, Tasks: tasks, Families: families})
}

func suiteStatus(held, stopping bool) domain.SuiteStatus {
	switch {
	case held:
		return domain.SuiteHeld
	case stopping:
		return domain.SuiteStopping
	default:
		return domain.SuiteRunning
	}
}

// rollupFamilies aggregates each cycle point's task states up through
// the first-parent ancestry chain, the same single-inheritance
// rollup state_summary_mgr.py performs per cycle point.
func (p *Projector) rollupFamilies(byPointState map[string]map[string]domain.TaskStatus) map[string]FamilySummary {
	families := make(map[string]FamilySummary)
	for point, states := range byPointState {
		childStates := make(map[string][]domain.TaskStatus)
		for name, status := range states {
			for parent := p.ancestry.FirstParent[name]; parent != ""; parent = p.ancestry.FirstParent[parent] {
				childStates[parent] = append(childStates[parent], status)
			}
		}
		for fam, states := range childStates {
			families[fam+"."+point] = FamilySummary{
				Family:     fam,
				CyclePoint: point,
				State:      extractGroupState(states),
			}
		}
	}
	return families
}

// statusPrecedence mirrors extract_group_state's "worst status wins"
// rule: the first matching status in this list, in order, is the
// family's aggregate state.
var statusPrecedence = []domain.TaskStatus{
	domain.StatusSubmitFailed,
	domain.StatusFailed,
	domain.StatusExpired,
	domain.StatusRetry,
	domain.StatusSubmitRetry,
	domain.StatusRunning,
	domain.StatusSubmitted,
	domain.StatusReady,
	domain.StatusQueued,
	domain.StatusHeld,
	domain.StatusWaiting,
	domain.StatusRunahead,
	domain.StatusSucceeded,
}

func extractGroupState(states []domain.TaskStatus) domain.TaskStatus {
	present := make(map[domain.TaskStatus]bool, len(states))
	for _, s := range states {
		present[s] = true
	}
	for _, candidate := range statusPrecedence {
		if present[candidate] {
			return candidate
		}
	}
	if len(states) > 0 {
		return states[0]
	}
	return ""
}

// StateEntry is one row of GetTasksByState's per-state listing.
type StateEntry struct {
	TaskName   string
	CyclePoint string
	MostRecent time.Time
	// Overflow is set on the sentinel row appended when a state has
	// more than six tasks, carrying how many additional tasks were
	// dropped from the listing rather than silently truncating.
	Overflow int
}

// GetTasksByState returns, per status, at most six rows ordered by
// most recent submitted/started/finished time: every task when there
// are six or fewer, otherwise the five most recent plus an overflow
// sentinel row, matching get_tasks_by_state's "five plus a count" trim.
func (s *Snapshot) GetTasksByState() map[domain.TaskStatus][]StateEntry {
	byState := make(map[domain.TaskStatus][]StateEntry)
	for _, t := range s.Tasks {
		recent := t.SubmittedTime
		if t.StartedTime.After(recent) {
			recent = t.StartedTime
		}
		if t.FinishedTime.After(recent) {
			recent = t.FinishedTime
		}
		byState[t.State] = append(byState[t.State], StateEntry{
			TaskName:   t.Identity.Name,
			CyclePoint: t.Identity.Point.String(),
			MostRecent: recent,
		})
	}
	for state, entries := range byState {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].MostRecent.After(entries[j].MostRecent)
		})
		if len(entries) < 7 {
			byState[state] = entries
			continue
		}
		trimmed := append([]StateEntry{}, entries[:5]...)
		trimmed = append(trimmed, StateEntry{Overflow: len(entries) - 5})
		byState[state] = trimmed
	}
	return byState
}
