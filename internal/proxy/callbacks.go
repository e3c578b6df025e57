package proxy

import (
	"github.com/shaiso/cyclesched/internal/callback"
	"github.com/shaiso/cyclesched/internal/domain"
	"github.com/shaiso/cyclesched/internal/message"
)

// JobSubmissionCallback handles the parsed outcome of a submit
// command, mirroring job_submission_callback/job_submit_callback: a
// batch job ID on success drives the proxy to submitted, anything
// else drives a submission failure/retry.
func (p *Proxy) JobSubmissionCallback(result callback.SubmitResult) {
	if result.JobID != "" && result.RetCode == 0 {
		p.JobSubmissionSucceeded(result.JobID)
		return
	}
	p.JobSubmissionFailed()
}

// JobPollCallback interprets a parsed poll result through the same
// precedence table as the original job_poll_callback and feeds the
// derived event back through message ingress as a polled message.
func (p *Proxy) JobPollCallback(result callback.PollResult) {
	event, failSignal := result.Outcome()
	message.Ingress(p, "INFO", event, true)
	if failSignal != "" {
		message.Ingress(p, "INFO", message.FailSignalPrefix+failSignal, true)
	}
}

// JobPollMessageCallback feeds a polled free-form message (priority,
// message) back through message ingress.
func (p *Proxy) JobPollMessageCallback(msg callback.PollMessage) {
	message.Ingress(p, msg.Priority, msg.Message, true)
}

// JobKillCallback handles the parsed outcome of a kill command. A
// non-zero return code means the kill itself failed and is logged as
// a warning by the caller; a zero return code advances the proxy to a
// submission or execution failure depending on what status it was in
// when the kill was issued, mirroring job_kill_callback.
func (p *Proxy) JobKillCallback(result callback.KillResult) (outcome string) {
	if result.RetCode != 0 {
		p.mu.Lock()
		p.killFailed = true
		p.killRequested = false
		p.mu.Unlock()
		return "kill failed"
	}

	p.mu.Lock()
	p.killRequested = false
	p.mu.Unlock()

	switch p.Status() {
	case domain.StatusSubmitted, domain.StatusSubmitRetry:
		p.JobSubmissionFailed()
	case domain.StatusRunning:
		p.JobExecutionFailed()
	default:
		return "ignoring job kill result, unexpected task state"
	}
	return "killed"
}
