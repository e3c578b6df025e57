package proxy

import (
	"fmt"
	"time"

	"github.com/shaiso/cyclesched/internal/domain"
)

// ReadyToRun reports whether a pre-run proxy (waiting/queued, not
// held) is ready to run now: its retry delay, if any, has elapsed and
// its clock-trigger time has been reached. A proxy that has reached
// its expiration offset is transitioned to expired instead and
// reported not ready, mirroring ready_to_run's expiry check.
func (p *Proxy) ReadyToRun(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.held {
		return false
	}
	if p.status != domain.StatusWaiting && p.status != domain.StatusQueued {
		return false
	}

	retryDelayDone := p.submitTry.IsDelayDone(now) || p.executionTry.IsDelayDone(now)
	clockReached := p.clockTriggerReached(now)
	prereqsDone := domain.AllSatisfied(p.prereqs)
	ready := prereqsDone && (retryDelayDone || (!p.submitTry.IsTimeoutSet() && !p.executionTry.IsTimeoutSet() && clockReached))

	if ready && p.hasExpiredLocked(now) {
		p.queueEventHandlersLocked("expired", "Task expired (skipping job).")
		p.setStatusLocked(domain.StatusExpired)
		return false
	}
	return ready
}

func (p *Proxy) clockTriggerReached(now time.Time) bool {
	if p.def.ClockTriggerOffset == 0 {
		return true
	}
	triggerAt := time.Unix(p.identity.Point.Add(p.def.ClockTriggerOffset).AsSeconds(), 0)
	return now.After(triggerAt)
}

func (p *Proxy) hasExpiredLocked(now time.Time) bool {
	if !p.def.HasExpirationOffset {
		return false
	}
	expireAt := time.Unix(p.identity.Point.Add(p.def.ExpirationOffset).AsSeconds(), 0)
	return now.After(expireAt)
}

// HasSpawned reports whether this proxy has already spawned its
// successor.
func (p *Proxy) HasSpawned() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasSpawned
}

// ReadyToSpawn reports whether this proxy may spawn its successor:
// it has not already spawned and has progressed past "ready" in the
// partial order used for spawning. A coldstart proxy is marked spawned
// here instead and never spawns a successor.
func (p *Proxy) ReadyToSpawn() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hasSpawned {
		return false
	}
	if p.coldstart {
		p.hasSpawned = true
		return false
	}
	return p.status.IsPastSubmit()
}

// Spawn marks this proxy as having spawned its successor. It does not
// construct the successor proxy itself — that is the pool's job,
// since it owns the arena of live proxies.
func (p *Proxy) Spawn() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.hasSpawned = true
}

// Trigger forces a pre-run proxy straight to ready, clearing any armed
// submission/execution retry timeout without rewinding the retry
// count, mirroring a manual trigger's "jump the backoff" semantics.
func (p *Proxy) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitTry.Reset()
	p.executionTry.Reset()
	p.setStatusLocked(domain.StatusReady)
}

// PrepSubmit increments the submit number and appends the new
// attempt's first task_jobs row, mirroring _prep_submit_impl's bookkeeping before a fresh
// attempt is assembled. Job configuration assembly itself happens in
// internal/submit; this method only owns proxy-local counters.
func (p *Proxy) PrepSubmit() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.submitNum++
	if p.deltas != nil {
		p.deltas.AddJob(domain.JobRow{
			Name:       p.identity.Name,
			CyclePoint: p.identity.Point.String(),
			SubmitNum:  p.submitNum,
		})
	}
	return p.submitNum
}

// JobSubmissionSucceeded records a successful submission and arms the
// submission timeout.
func (p *Proxy) JobSubmissionSucceeded(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.batchJobID = jobID
	p.submittedTime = time.Now()
	p.startedTime = time.Time{}
	p.finishedTime = time.Time{}

	if p.deltas != nil {
		p.deltas.AddJob(domain.JobRow{
			Name:        p.identity.Name,
			CyclePoint:  p.identity.Point.String(),
			SubmitNum:   p.submitNum,
			BatchSystem: p.def.Runtime.BatchSystemName,
			BatchJobID:  jobID,
			SubmittedAt: p.submittedTime,
		})
	}

	p.queueEventHandlersLocked("submitted", "job submitted")
	p.setStatusLocked(domain.StatusSubmitted)

	if p.def.Runtime.SubmitTimeout > 0 {
		p.submissionTimeout = time.Now().Add(p.def.Runtime.SubmitTimeout)
		p.hasSubmissionTimeout = true
	} else {
		p.hasSubmissionTimeout = false
	}
}

// JobSubmissionFailed records a failed submission, advancing to a
// submission retry if one is scheduled or to a definitive
// submit-failed status otherwise.
func (p *Proxy) JobSubmissionFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.finishedTime = time.Now()
	if p.deltas != nil {
		p.deltas.AddJob(domain.JobRow{
			Name:        p.identity.Name,
			CyclePoint:  p.identity.Point.String(),
			SubmitNum:   p.submitNum,
			BatchSystem: p.def.Runtime.BatchSystemName,
			FinishedAt:  p.finishedTime,
			ExitStatus:  "submission failed",
		})
	}

	if _, ok := p.submitTry.Next(time.Now()); !ok {
		p.queueEventHandlersLocked("submission failed", "job submission failed")
		p.setStatusLocked(domain.StatusSubmitFailed)
		return
	}
	delayMsg := fmt.Sprintf("submit-retrying in %s", p.submitTry.CurrentDelay)
	p.queueEventHandlersLocked("submission retry", "job submission failed, "+delayMsg)
	p.setStatusLocked(domain.StatusSubmitRetry)
}

// JobExecutionFailed records a job failure, advancing to an execution
// retry if one is scheduled or to a definitive failed status
// otherwise.
func (p *Proxy) JobExecutionFailed() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.hasExecutionTimeout = false
	p.finishedTime = time.Now()
	if p.deltas != nil {
		p.deltas.AddJob(domain.JobRow{
			Name:        p.identity.Name,
			CyclePoint:  p.identity.Point.String(),
			SubmitNum:   p.submitNum,
			BatchSystem: p.def.Runtime.BatchSystemName,
			BatchJobID:  p.batchJobID,
			FinishedAt:  p.finishedTime,
			ExitStatus:  "failed",
		})
	}

	if _, ok := p.executionTry.Next(time.Now()); !ok {
		p.setStatusLocked(domain.StatusFailed)
		p.queueEventHandlersLocked("failed", "job failed")
		return
	}
	delayMsg := fmt.Sprintf("retrying in %s", p.executionTry.CurrentDelay)
	p.queueEventHandlersLocked("retry", "job failed, "+delayMsg)
	p.setStatusLocked(domain.StatusRetry)
}

// HandleSubmissionTimeout queues the submission-timeout event
// handlers; it is the caller's job to invoke this only while the
// proxy is actually in the submitted status.
func (p *Proxy) HandleSubmissionTimeout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queueEventHandlersLocked("submission timeout", "job submitted, but has not started")
}

// HandleExecutionTimeout queues the execution-timeout event handlers;
// the caller invokes this only while the proxy is in the running
// status.
func (p *Proxy) HandleExecutionTimeout() {
	p.mu.Lock()
	defer p.mu.Unlock()
	msg := "job started, but has not finished"
	if p.def.Runtime.ResetTimerOnMessage {
		msg = "last message received, but job not finished"
	}
	p.queueEventHandlersLocked("execution timeout", msg)
}

// IsSubmissionTimedOut reports whether the armed submission timeout
// has passed.
func (p *Proxy) IsSubmissionTimedOut(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == domain.StatusSubmitted && p.hasSubmissionTimeout && now.After(p.submissionTimeout)
}

// IsExecutionTimedOut reports whether the armed execution timeout has
// passed.
func (p *Proxy) IsExecutionTimedOut(now time.Time) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status == domain.StatusRunning && p.hasExecutionTimeout && now.After(p.executionTimeout)
}

// SimTimeCheck reports whether a simulated job's synthetic run length
// has elapsed and, if so, whether it should be simulated as a failure.
// The caller is responsible for feeding the resulting started/
// succeeded or started/failed messages back through message ingress,
// the same two-message sequence sim_time_check enqueues.
func (p *Proxy) SimTimeCheck(now, startedTime time.Time) (done bool, simulateFailure bool) {
	if !now.After(startedTime.Add(p.def.Runtime.SimModeRunLength)) {
		return false, false
	}
	for _, n := range p.def.Runtime.SimModeFailsAt {
		if n == p.SubmitNum() {
			return true, true
		}
	}
	return true, false
}
