package domain

import (
	"sync"
	"time"
)

// ProxyStateRow mirrors one row of task_states: the persisted snapshot
// of a proxy's lifecycle status at a point in time.
type ProxyStateRow struct {
	Name       string
	CyclePoint string
	Status     TaskStatus
	SubmitNum  int
	TryNum     int
	UpdatedAt  time.Time
}

// JobRow mirrors one row of task_jobs: one submission attempt.
type JobRow struct {
	Name        string
	CyclePoint  string
	SubmitNum   int
	BatchSystem string
	BatchJobID  string
	SubmittedAt time.Time
	StartedAt   time.Time
	FinishedAt  time.Time
	ExitStatus  string
}

// JobLogRow mirrors one row of task_job_logs: a log artifact
// associated with one submission attempt.
type JobLogRow struct {
	Name        string
	CyclePoint  string
	SubmitNum   int
	Path        string
	RetrievedAt time.Time
}

// EventRow mirrors one row of task_events: a point-in-time event
// fired against a proxy, independent of whether any handler fired for
// it.
type EventRow struct {
	Name       string
	CyclePoint string
	SubmitNum  int
	Event      string
	Message    string
	At         time.Time
}

// DeltaBuffer accumulates rows pending a flush to storage. The core
// appends to it during state transitions and message processing; the
// repository layer drains it on its own schedule. One DeltaBuffer is
// shared across every live proxy, so its own mutex (separate from any
// per-proxy identity lock) guards the slices directly.
type DeltaBuffer struct {
	mu      sync.Mutex
	States  []ProxyStateRow
	Jobs    []JobRow
	JobLogs []JobLogRow
	Events  []EventRow
}

// AddState appends a state row to the buffer.
func (b *DeltaBuffer) AddState(row ProxyStateRow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.States = append(b.States, row)
}

// AddJob appends a job row to the buffer.
func (b *DeltaBuffer) AddJob(row JobRow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Jobs = append(b.Jobs, row)
}

// AddJobLog appends a job-log row to the buffer.
func (b *DeltaBuffer) AddJobLog(row JobLogRow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.JobLogs = append(b.JobLogs, row)
}

// AddEvent appends an event row to the buffer.
func (b *DeltaBuffer) AddEvent(row EventRow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Events = append(b.Events, row)
}

// Drain returns the buffered rows and resets the buffer to empty. The
// repository layer calls this once per flush cycle.
func (b *DeltaBuffer) Drain() (states []ProxyStateRow, jobs []JobRow, jobLogs []JobLogRow, events []EventRow) {
	b.mu.Lock()
	defer b.mu.Unlock()
	states, jobs, jobLogs, events = b.States, b.Jobs, b.JobLogs, b.Events
	b.States, b.Jobs, b.JobLogs, b.Events = nil, nil, nil, nil
	return
}

// Empty reports whether the buffer holds no pending rows.
func (b *DeltaBuffer) Empty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.States) == 0 && len(b.Jobs) == 0 && len(b.JobLogs) == 0 && len(b.Events) == 0
}
