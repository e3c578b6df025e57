// Package events implements the event-handler registry: job-logs
// retrieval, mail notification and custom command handlers, each
// keyed by (handler key, event, submit number) and retried
// independently of the proxy's own submission/execution retries.
package events

import "github.com/shaiso/cyclesched/internal/retry"

// Kind distinguishes the four handler varieties the registry can run.
type Kind string

const (
	KindJobLogsRegister Kind = "job-logs-register"
	KindJobLogsRetrieve Kind = "job-logs-retrieve"
	KindMail            Kind = "event-mail"
	KindCustom          Kind = "event-handler"
)

// Key identifies one queued handler invocation. A handler is
// registered at most once per (Label, Event, SubmitNum) — re-setup
// for an event already queued at the current submit number is a
// no-op, matching the original setup_event_handlers guard.
type Key struct {
	Label     string
	Event     string
	SubmitNum int
}

// Handler is one queued, independently-retried action.
type Handler struct {
	Key     Key
	Kind    Kind
	Command string // populated for KindCustom; the fully rendered command line

	// Mail fields, populated for KindMail.
	MailFrom string
	MailTo   string
	MailSMTP string

	// JobLogs fields, populated for KindJobLogsRetrieve.
	UserAtHost string
	MaxSize    string

	Try       *retry.TryState
	Attempted bool
}
