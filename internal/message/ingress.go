// Package message implements message ingress: parsing an inbound task
// message and deciding how it should update a proxy's state, without
// depending on the concrete proxy type. Callers implement Target (the
// proxy package does) so this package never imports back up to it.
package message

import (
	"regexp"
	"strings"
	"time"

	"github.com/shaiso/cyclesched/internal/domain"
)

// Target is the narrow slice of task-proxy behaviour message ingress
// needs. internal/proxy's Proxy type satisfies it directly.
type Target interface {
	Status() domain.TaskStatus
	SetStatus(domain.TaskStatus)
	RecordOutput(name string) bool
	IsResurrectable() bool
	ResetExecutionTimer()
	ResetSubmissionTry()
	SetVacated(bool)
	QueueEventHandlers(event, message string)
	SetLatestMessage(message string)
	SetStartedTime(t time.Time)
	SetFinishedTime(t time.Time)
	RecordJobOutcome(exitStatus string)
}

var messageSuffixRE = regexp.MustCompile(`\s+at\s+\S+\s*$`)

// activeStatuses mirrors TASK_STATUSES_ACTIVE: the statuses in which a
// polled message still means something.
var activeStatuses = map[domain.TaskStatus]bool{
	domain.StatusReady:        true,
	domain.StatusSubmitted:    true,
	domain.StatusSubmitRetry:  true,
	domain.StatusRunning:      true,
	domain.StatusSubmitFailed: true,
}

// Ingress processes one inbound message against target, following the
// exact-match-then-prefix routing of the original process_incoming_message.
// wasPolled marks a message that arrived via a poll rather than a
// live callback; polled results arriving after a task has finished
// are dropped.
func Ingress(target Target, priority, rawMessage string, wasPolled bool) {
	msg := messageSuffixRE.ReplaceAllString(rawMessage, "")
	target.SetLatestMessage(msg)

	if target.Status() == domain.StatusFailed && !target.IsResurrectable() {
		return
	}

	changed := target.RecordOutput(msg)
	_ = changed // idempotent; the caller's persistence layer decides whether to flush

	if wasPolled && !activeStatuses[target.Status()] {
		return
	}

	if priority == "WARNING" {
		target.QueueEventHandlers("warning", msg)
	}

	switch {
	case msg == domain.OutputStarted && isOneOf(target.Status(),
		domain.StatusReady, domain.StatusSubmitted, domain.StatusSubmitFailed):
		target.SetVacated(false)
		target.SetStatus(domain.StatusRunning)
		target.SetStartedTime(time.Now())
		target.ResetExecutionTimer()
		target.ResetSubmissionTry()
		target.QueueEventHandlers("started", "job started")

	case msg == domain.OutputSucceeded && isOneOf(target.Status(),
		domain.StatusReady, domain.StatusSubmitted, domain.StatusSubmitFailed,
		domain.StatusRunning, domain.StatusFailed):
		target.QueueEventHandlers("succeeded", "job succeeded")
		target.SetStatus(domain.StatusSucceeded)
		target.SetFinishedTime(time.Now())
		target.RecordJobOutcome("succeeded")

	case msg == domain.OutputFailed && isOneOf(target.Status(),
		domain.StatusReady, domain.StatusSubmitted, domain.StatusSubmitFailed,
		domain.StatusRunning):
		target.QueueEventHandlers("failed", "job failed")
		target.SetStatus(domain.StatusFailed)
		target.SetFinishedTime(time.Now())
		target.RecordJobOutcome("failed")

	case strings.HasPrefix(msg, FailSignalPrefix):
		// recorded as an output above; no status change here.

	case strings.HasPrefix(msg, VacationPrefix):
		target.SetStatus(domain.StatusSubmitted)
		target.ResetExecutionTimer()
		target.ResetSubmissionTry()
		target.SetVacated(true)

	case msg == domain.OutputSubmissionFailed:
		target.SetStatus(domain.StatusSubmitFailed)

	default:
		// unhandled: general progress messages and repeated poll results
	}
}

const (
	FailSignalPrefix = "failed/"
	VacationPrefix   = "vacated "
)

func isOneOf(status domain.TaskStatus, options ...domain.TaskStatus) bool {
	for _, o := range options {
		if status == o {
			return true
		}
	}
	return false
}
