// Package proxy implements the task proxy core: the per-identity
// state machine binding together retry ledgers, cycle points, the
// event-handler registry, the submission preparer's job
// configuration, callback results and message ingress. It is the one package in the module
// allowed to depend on all of its collaborators — every other
// package either sits below it or imports it one-directionally.
package proxy

import (
	"sync"
	"time"

	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/events"
	"github.com/shaiso/cyclesched/internal/retry"
	"github.com/shaiso/cyclesched/internal/submit"
)

// Proxy is one task proxy: the mutable lifecycle state for one
// (task name, cycle point) identity. All mutation goes through
// methods that take mu, giving single-writer serialization per
// identity, narrowed to per-proxy rather than per-run scope (there is
// no cross-proxy ordering guarantee).
type Proxy struct {
	mu sync.Mutex

	identity domain.Identity
	def      *domain.TaskDef

	status     domain.TaskStatus
	held       bool
	prereqs    []domain.Prerequisite
	outputs    domain.OutputSet
	hasSpawned bool

	submitNum int
	tryNum    int

	submitTry    *retry.TryState
	executionTry *retry.TryState

	eventsReg *events.Registry
	eventsCfg events.Config

	jobConf submit.JobConf

	jobVacated    bool
	killFailed    bool
	killRequested bool

	batchJobID string

	latestMessage string
	submittedTime time.Time
	startedTime   time.Time
	finishedTime  time.Time

	executionTimeout     time.Time
	hasExecutionTimeout  bool
	submissionTimeout    time.Time
	hasSubmissionTimeout bool

	coldstart bool

	suiteName string

	deltas *domain.DeltaBuffer
}

// Config supplies everything a new Proxy needs that is not recomputed
// at runtime.
type Config struct {
	Identity  domain.Identity
	Def       *domain.TaskDef
	EventsCfg events.Config
	SuiteName string
	Coldstart bool
	Deltas    *domain.DeltaBuffer
}

// New constructs a Proxy in its initial waiting status.
func New(cfg Config) *Proxy {
	status := domain.StatusWaiting
	prereqs := make([]domain.Prerequisite, len(cfg.Def.Prerequisites))
	copy(prereqs, cfg.Def.Prerequisites)
	return &Proxy{
		identity:     cfg.Identity,
		def:          cfg.Def,
		status:       status,
		prereqs:      prereqs,
		submitTry:    retry.New(cfg.Def.Runtime.SubmissionRetryDelays),
		executionTry: retry.New(cfg.Def.Runtime.ExecutionRetryDelays),
		eventsReg:    events.NewRegistry(),
		eventsCfg:    cfg.EventsCfg,
		suiteName:    cfg.SuiteName,
		coldstart:    cfg.Coldstart,
		deltas:       cfg.Deltas,
	}
}

// Identity returns the proxy's (name, cycle point) identity.
func (p *Proxy) Identity() domain.Identity {
	return p.identity
}

// Status returns the current lifecycle status.
func (p *Proxy) Status() domain.TaskStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// SetStatus transitions the proxy to s, recording a delta row for
// later flush. It does not validate that the transition is legal —
// callers (message ingress, the scheduler pool, manual triggers) own
// that decision, matching the original's set_state methods.
func (p *Proxy) SetStatus(s domain.TaskStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.setStatusLocked(s)
}

func (p *Proxy) setStatusLocked(s domain.TaskStatus) {
	p.status = s
	if p.deltas != nil {
		p.deltas.AddState(domain.ProxyStateRow{
			Name:       p.identity.Name,
			CyclePoint: p.identity.Point.String(),
			Status:     s,
			SubmitNum:  p.submitNum,
			TryNum:     p.tryNum,
			UpdatedAt:  time.Now(),
		})
	}
}

// IsHeld reports whether the proxy is administratively held.
func (p *Proxy) IsHeld() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.held
}

// Hold marks the proxy held; Release clears it.
func (p *Proxy) Hold() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = true
}

func (p *Proxy) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.held = false
}

// IsResurrectable reports whether a message arriving while failed
// should be accepted rather than rejected.
func (p *Proxy) IsResurrectable() bool {
	return p.def.Runtime.EnableResurrection
}

// RecordOutput records msg as a completed output; it is idempotent.
func (p *Proxy) RecordOutput(msg string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outputs.Record(msg)
}

// SetVacated records whether the job was vacated by its batch system.
func (p *Proxy) SetVacated(v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.jobVacated = v
}

// ResetExecutionTimer re-arms the execution timeout from now, or
// clears it if no execution timeout is configured.
func (p *Proxy) ResetExecutionTimer() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.def.Runtime.RunTimeout > 0 {
		p.executionTimeout = time.Now().Add(p.def.Runtime.RunTimeout)
		p.hasExecutionTimeout = true
	} else {
		p.hasExecutionTimeout = false
	}
}

// ResetSubmissionTry resets the submission try counter to zero,
// called when a started message confirms submission actually worked.
func (p *Proxy) ResetSubmissionTry() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitTry = retry.New(p.def.Runtime.SubmissionRetryDelays)
}

// QueueEventHandlers sets up job-logs retrieval, mail notification
// and custom command handlers for event, via the bound registry.
func (p *Proxy) QueueEventHandlers(event, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queueEventHandlersLocked(event, msg)
}

func (p *Proxy) queueEventHandlersLocked(event, msg string) {
	tctx := events.TemplateContext{
		Suite: p.suiteName,
		Point: p.identity.Point.String(),
		Name:  p.identity.Name,
		ID:    p.identity.String(),
	}
	p.eventsReg.Setup(p.eventsCfg, event, msg, p.submitNum, tctx)
	if p.deltas != nil {
		p.deltas.AddEvent(domain.EventRow{
			Name:       p.identity.Name,
			CyclePoint: p.identity.Point.String(),
			SubmitNum:  p.submitNum,
			Event:      event,
			Message:    msg,
			At:         time.Now(),
		})
	}
}

// ReadyEventHandlers returns the queued event handlers whose retry
// delay has elapsed and marks them in flight.
func (p *Proxy) ReadyEventHandlers(now time.Time) []*events.Handler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eventsReg.Ready(now)
}

// EventHandlerCallback reports the outcome of a dispatched event
// handler back to the registry.
func (p *Proxy) EventHandlerCallback(key events.Key, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.eventsReg.Callback(key, ok, time.Now())
}

// SubmitNum returns the current submit number.
func (p *Proxy) SubmitNum() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submitNum
}

// BatchVariantName returns the batch system this proxy submits under.
func (p *Proxy) BatchVariantName() string {
	return p.def.Runtime.BatchSystemName
}

// BatchJobID returns the batch-system job ID recorded on the most
// recent successful submission, or "" before one has occurred.
func (p *Proxy) BatchJobID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.batchJobID
}

// SetLatestMessage records msg as the most recent message received,
// regardless of whether the message is later accepted or rejected by
// the rest of message ingress — mirrors summary['latest_message']
// always tracking the raw incoming line.
func (p *Proxy) SetLatestMessage(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.latestMessage = msg
}

// LatestMessage returns the most recently recorded message.
func (p *Proxy) LatestMessage() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.latestMessage
}

// SetStartedTime records when the job actually started running.
func (p *Proxy) SetStartedTime(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.startedTime = t
}

// SetFinishedTime records when the job reached a terminal outcome.
func (p *Proxy) SetFinishedTime(t time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.finishedTime = t
}

// SubmittedTime, StartedTime and FinishedTime report the lifecycle
// timestamps the summary projector surfaces to clients.
func (p *Proxy) SubmittedTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.submittedTime
}

func (p *Proxy) StartedTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.startedTime
}

func (p *Proxy) FinishedTime() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finishedTime
}

// Prerequisites returns the conditions this proxy waits on before it
// may become ready.
func (p *Proxy) Prerequisites() []domain.Prerequisite {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Prerequisite, len(p.prereqs))
	copy(out, p.prereqs)
	return out
}

// SatisfyPrerequisite marks the prerequisite with the given expression
// satisfied, if the proxy has one by that expression.
func (p *Proxy) SatisfyPrerequisite(expression string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := range p.prereqs {
		if p.prereqs[i].Expression == expression {
			p.prereqs[i].Satisfied = true
		}
	}
}

// RecordJobOutcome appends a job-row delta capturing this submission
// attempt's terminal outcome, for the message-ingress paths that reach
// a terminal status directly rather than through JobExecutionFailed's
// retry bookkeeping.
func (p *Proxy) RecordJobOutcome(exitStatus string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.deltas == nil {
		return
	}
	p.deltas.AddJob(domain.JobRow{
		Name:        p.identity.Name,
		CyclePoint:  p.identity.Point.String(),
		SubmitNum:   p.submitNum,
		BatchSystem: p.def.Runtime.BatchSystemName,
		BatchJobID:  p.batchJobID,
		FinishedAt:  p.finishedTime,
		ExitStatus:  exitStatus,
	})
}

// RequestKill records that a kill has been requested against this
// proxy. It does not transition status itself: kill is a best-effort
// command dispatched to the external process pool, and only
// JobKillCallback's parsed outcome drives the resulting state
// transition, the same as submission already works.
func (p *Proxy) RequestKill() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.killRequested = true
}

// KillRequested reports whether a kill has been requested and not yet
// resolved by a callback.
func (p *Proxy) KillRequested() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killRequested
}
