package events

import (
	"fmt"
	"time"

	"github.com/shaiso/cyclesched/internal/retry"
)

// Config carries the subset of runtime configuration the registry
// needs to decide which handlers to queue. It is read, never
// mutated, by Setup.
type Config struct {
	// MailEvents lists the events that should trigger a notification
	// email; EventHandlers maps event name to the custom command
	// templates configured for it.
	MailEvents    map[string]bool
	EventHandlers map[string][]string

	MailFrom string
	MailTo   string
	MailSMTP string

	MailRetryDelays    []time.Duration
	HandlerRetryDelays []time.Duration
	JobLogsRetryDelays []time.Duration

	// RetrieveJobLogs selects remote retrieval over local registration
	// for the "failed"/"retry"/"succeeded" events.
	RetrieveJobLogs bool
	UserAtHost      string
	IsLocal         bool
	MaxJobLogSize   string
}

var jobLogEvents = map[string]bool{
	"failed":    true,
	"retry":     true,
	"succeeded": true,
}

// Registry holds the handlers queued for one task proxy, across all
// submit numbers, keyed by Key so re-setup for an already-queued
// event is a no-op.
type Registry struct {
	handlers map[Key]*Handler
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[Key]*Handler)}
}

// Setup queues job-logs retrieval, mail notification and custom
// command handlers for event, unless each is already queued at the
// given submit number. tctx supplies the values available to custom
// command templates.
func (r *Registry) Setup(cfg Config, event, message string, submitNum int, tctx TemplateContext) {
	r.setupJobLogs(cfg, event, submitNum)
	r.setupMail(cfg, event, submitNum)
	r.setupCustom(cfg, event, message, submitNum, tctx)
}

func (r *Registry) setupJobLogs(cfg Config, event string, submitNum int) {
	if !jobLogEvents[event] {
		return
	}
	if cfg.IsLocal || !cfg.RetrieveJobLogs {
		key := Key{Label: string(KindJobLogsRegister), Event: event, SubmitNum: submitNum}
		if _, exists := r.handlers[key]; exists {
			return
		}
		r.handlers[key] = &Handler{
			Key:  key,
			Kind: KindJobLogsRegister,
			Try:  retry.New(cfg.JobLogsRetryDelays),
		}
		return
	}
	key := Key{Label: string(KindJobLogsRetrieve), Event: event, SubmitNum: submitNum}
	if _, exists := r.handlers[key]; exists {
		return
	}
	r.handlers[key] = &Handler{
		Key:        key,
		Kind:       KindJobLogsRetrieve,
		UserAtHost: cfg.UserAtHost,
		MaxSize:    cfg.MaxJobLogSize,
		Try:        retry.New(cfg.JobLogsRetryDelays),
	}
}

func (r *Registry) setupMail(cfg Config, event string, submitNum int) {
	if !cfg.MailEvents[event] {
		return
	}
	key := Key{Label: string(KindMail), Event: event, SubmitNum: submitNum}
	if _, exists := r.handlers[key]; exists {
		return
	}
	r.handlers[key] = &Handler{
		Key:      key,
		Kind:     KindMail,
		MailFrom: cfg.MailFrom,
		MailTo:   cfg.MailTo,
		MailSMTP: cfg.MailSMTP,
		Try:      retry.New(cfg.MailRetryDelays),
	}
}

func (r *Registry) setupCustom(cfg Config, event, message string, submitNum int, tctx TemplateContext) {
	handlers := cfg.EventHandlers[event]
	tctx.Event = event
	tctx.Message = message
	tctx.SubmitNum = submitNum
	for i, tmpl := range handlers {
		label := fmt.Sprintf("%s-%02d", KindCustom, i)
		key := Key{Label: label, Event: event, SubmitNum: submitNum}
		if _, exists := r.handlers[key]; exists {
			continue
		}
		cmd, err := RenderCommand(tmpl, tctx)
		if err != nil {
			cmd = tmpl
		}
		r.handlers[key] = &Handler{
			Key:     key,
			Kind:    KindCustom,
			Command: cmd,
			Try:     retry.New(cfg.HandlerRetryDelays),
		}
	}
}

// Ready returns the handlers that are not in flight, and are either
// on their first attempt or past an armed retry delay, marking each
// one waiting. Callers dispatch the returned handlers and must report
// the outcome through Callback.
func (r *Registry) Ready(now time.Time) []*Handler {
	var ready []*Handler
	for _, h := range r.handlers {
		if h.Try.Waiting {
			continue
		}
		if h.Attempted && (!h.Try.IsTimeoutSet() || !h.Try.IsDelayDone(now)) {
			continue
		}
		h.Attempted = true
		h.Try.SetWaiting()
		ready = append(ready, h)
	}
	return ready
}

// Callback reports the outcome of a dispatched handler. On success
// the handler is removed from the registry. On failure it is
// unmarked-waiting and, if its retry schedule has a delay left, that
// delay is armed so Ready will reconsider it later; once the
// schedule is exhausted the handler is dropped.
func (r *Registry) Callback(key Key, ok bool, now time.Time) {
	h, exists := r.handlers[key]
	if !exists {
		return
	}
	if ok {
		delete(r.handlers, key)
		return
	}
	h.Try.UnsetWaiting()
	if _, hasNext := h.Try.Next(now); !hasNext {
		delete(r.handlers, key)
	}
}

// Pending reports whether any handler is still queued (waiting or
// not), used to decide whether a proxy can be safely torn down.
func (r *Registry) Pending() int {
	return len(r.handlers)
}
