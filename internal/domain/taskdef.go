package domain

import (
	"time"

	"github.com/shaiso/cyclesched/internal/cycle"
)

// TaskDef is the immutable metadata for a task name. Proxies hold the
// name as a handle into an arena keyed by name, not a back-pointer to
// the definition — this breaks the cyclic proxy <-> task-def <->
// sequences reference chain a naive struct-of-pointers design would carry.
type TaskDef struct {
	Name string

	// Sequences are the cycle-point generators this task runs on.
	Sequences []cycle.Sequence

	Runtime RuntimeConfig

	// ClockTriggerOffset delays ready-to-run until
	// now > cyclePoint.AsSeconds() + ClockTriggerOffset.
	ClockTriggerOffset time.Duration

	// ExpirationOffset, if set, transitions the proxy straight to
	// expired once now > cyclePoint.AsSeconds() + ExpirationOffset.
	ExpirationOffset    time.Duration
	HasExpirationOffset bool

	Namespace []string
	Coldstart bool

	// Prerequisites are the conditions a spawned proxy must satisfy
	// before it may leave waiting, independent of retry timers and the
	// clock trigger. Each spawned proxy gets its own copy so that one
	// identity's progress never marks another's satisfied.
	Prerequisites []Prerequisite

	// ElapsedTimeSamples holds successful run durations. Nothing in
	// the module appends to it on success; it holds only the samples
	// the caller supplies or adds through RecordElapsedTime.
	ElapsedTimeSamples []time.Duration
}

// RuntimeConfig is the per-task runtime configuration read by the
// submission preparer and event-handler registry.
type RuntimeConfig struct {
	Script      string
	Environment map[string]string
	Directives  map[string]string

	SubmissionRetryDelays []time.Duration
	ExecutionRetryDelays  []time.Duration

	EventHooks map[string][]string // event -> custom command templates
	MailEvents map[string]bool

	PollIntervals map[TaskStatus]time.Duration

	RunTimeout    time.Duration
	SubmitTimeout time.Duration

	BatchSystemName string
	IsLocal         bool
	RetrieveJobLogs bool

	ResetTimerOnMessage bool

	// SimModeRunLength, if non-zero, puts the task into simulation
	// mode: sim-time-check synthesizes submitted + succeeded/failed
	// messages after this duration instead of really submitting.
	SimModeRunLength time.Duration
	SimModeFailsAt   []int // submit numbers that should synthesize "failed"

	EnableResurrection bool
}

// MeanElapsedTime returns the mean of the recorded elapsed-time
// samples, or 0 if there are none.
func (d *TaskDef) MeanElapsedTime() time.Duration {
	if len(d.ElapsedTimeSamples) == 0 {
		return 0
	}
	var total time.Duration
	for _, s := range d.ElapsedTimeSamples {
		total += s
	}
	return total / time.Duration(len(d.ElapsedTimeSamples))
}

// RecordElapsedTime appends a successful-run duration sample. No
// lifecycle transition in the module calls it.
func (d *TaskDef) RecordElapsedTime(elapsed time.Duration) {
	d.ElapsedTimeSamples = append(d.ElapsedTimeSamples, elapsed)
}
