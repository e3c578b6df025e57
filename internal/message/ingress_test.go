package message

import (
	"testing"
	"time"

	"github.com/shaiso/cyclesched/internal/domain"
)

type fakeTarget struct {
	status         domain.TaskStatus
	resurrectable  bool
	recorded       []string
	vacated        bool
	timerReset     bool
	subTryReset    bool
	queuedHandlers []string
	latestMessage  string
	startedTime    time.Time
	finishedTime   time.Time
	jobOutcomes    []string
}

func (f *fakeTarget) Status() domain.TaskStatus     { return f.status }
func (f *fakeTarget) SetStatus(s domain.TaskStatus) { f.status = s }
func (f *fakeTarget) RecordOutput(name string) bool {
	f.recorded = append(f.recorded, name)
	return true
}
func (f *fakeTarget) IsResurrectable() bool   { return f.resurrectable }
func (f *fakeTarget) ResetExecutionTimer()    { f.timerReset = true }
func (f *fakeTarget) ResetSubmissionTry()     { f.subTryReset = true }
func (f *fakeTarget) SetVacated(v bool)       { f.vacated = v }
func (f *fakeTarget) QueueEventHandlers(event, message string) {
	f.queuedHandlers = append(f.queuedHandlers, event)
}
func (f *fakeTarget) SetLatestMessage(message string) { f.latestMessage = message }
func (f *fakeTarget) SetStartedTime(t time.Time)      { f.startedTime = t }
func (f *fakeTarget) SetFinishedTime(t time.Time)     { f.finishedTime = t }
func (f *fakeTarget) RecordJobOutcome(exitStatus string) {
	f.jobOutcomes = append(f.jobOutcomes, exitStatus)
}

func TestIngressStartedTransitionsToRunning(t *testing.T) {
	target := &fakeTarget{status: domain.StatusSubmitted}
	Ingress(target, "INFO", "started at 2026-07-30T00:00:00Z", false)

	if target.status != domain.StatusRunning {
		t.Fatalf("status = %s, want running", target.status)
	}
	if !target.timerReset || !target.subTryReset {
		t.Fatal("expected execution timer and submission try to reset")
	}
}

func TestIngressSucceededFromFailedIsAllowed(t *testing.T) {
	target := &fakeTarget{status: domain.StatusFailed, resurrectable: true}
	Ingress(target, "INFO", "succeeded", false)

	if target.status != domain.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", target.status)
	}
}

func TestIngressRejectsMessageForTerminalNonResurrectable(t *testing.T) {
	target := &fakeTarget{status: domain.StatusFailed, resurrectable: false}
	Ingress(target, "INFO", "succeeded", false)

	if target.status != domain.StatusFailed {
		t.Fatalf("status changed to %s, want unchanged failed", target.status)
	}
	if len(target.recorded) != 0 {
		t.Fatal("expected no output recorded for a rejected message")
	}
	if target.latestMessage != "succeeded" {
		t.Fatalf("latestMessage = %q, want it updated even though the message was rejected", target.latestMessage)
	}
}

func TestIngressSucceededRecordsFinishedTimeAndJobOutcome(t *testing.T) {
	target := &fakeTarget{status: domain.StatusRunning}
	Ingress(target, "INFO", "succeeded", false)

	if target.status != domain.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", target.status)
	}
	if target.finishedTime.IsZero() {
		t.Fatal("expected finishedTime to be set")
	}
	if len(target.jobOutcomes) != 1 || target.jobOutcomes[0] != "succeeded" {
		t.Fatalf("jobOutcomes = %v, want [succeeded]", target.jobOutcomes)
	}
}

func TestIngressIgnoresLatePollWhenInactive(t *testing.T) {
	target := &fakeTarget{status: domain.StatusSucceeded}
	Ingress(target, "INFO", "started", true)

	if target.status != domain.StatusSucceeded {
		t.Fatalf("status = %s, want unchanged succeeded", target.status)
	}
}

func TestIngressVacationMessageResetsToSubmitted(t *testing.T) {
	target := &fakeTarget{status: domain.StatusRunning}
	Ingress(target, "INFO", "vacated by batch system", false)

	if target.status != domain.StatusSubmitted {
		t.Fatalf("status = %s, want submitted", target.status)
	}
	if !target.vacated {
		t.Fatal("expected job_vacated to be set")
	}
}

func TestIngressSubmissionFailedViaPoll(t *testing.T) {
	target := &fakeTarget{status: domain.StatusSubmitted}
	Ingress(target, "INFO", "submission failed", true)

	if target.status != domain.StatusSubmitFailed {
		t.Fatalf("status = %s, want submit-failed", target.status)
	}
}
