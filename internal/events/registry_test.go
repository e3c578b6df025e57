package events

import (
	"testing"
	"time"
)

func TestSetupCustomHandlerRendersClassicInterface(t *testing.T) {
	r := NewRegistry()
	cfg := Config{EventHandlers: map[string][]string{"started": {"/usr/bin/notify-task"}}}
	r.Setup(cfg, "started", "job started", 1, TemplateContext{Suite: "demo", ID: "foo.20260101"})

	ready := r.Ready(time.Now())
	if len(ready) != 1 {
		t.Fatalf("expected 1 ready handler, got %d", len(ready))
	}
	h := ready[0]
	if h.Kind != KindCustom {
		t.Fatalf("expected custom handler, got %s", h.Kind)
	}
	want := "/usr/bin/notify-task started demo foo.20260101 'job started'"
	if h.Command != want {
		t.Fatalf("command = %q, want %q", h.Command, want)
	}
}

func TestSetupIsIdempotentPerSubmitNumber(t *testing.T) {
	r := NewRegistry()
	cfg := Config{MailEvents: map[string]bool{"started": true}}
	r.Setup(cfg, "started", "job started", 1, TemplateContext{})
	r.Setup(cfg, "started", "job started", 1, TemplateContext{})

	if got := r.Pending(); got != 1 {
		t.Fatalf("expected setup to be idempotent, got %d pending handlers", got)
	}

	r.Setup(cfg, "started", "job started", 2, TemplateContext{})
	if got := r.Pending(); got != 2 {
		t.Fatalf("expected a new submit number to queue its own handler, got %d", got)
	}
}

func TestCallbackSuccessRemovesHandler(t *testing.T) {
	r := NewRegistry()
	cfg := Config{MailEvents: map[string]bool{"submitted": true}}
	r.Setup(cfg, "submitted", "job submitted", 1, TemplateContext{})

	ready := r.Ready(time.Now())
	if len(ready) != 1 {
		t.Fatalf("expected 1 ready handler, got %d", len(ready))
	}
	r.Callback(ready[0].Key, true, time.Now())

	if got := r.Pending(); got != 0 {
		t.Fatalf("expected handler removed after success, got %d pending", got)
	}
}

func TestCallbackFailureRetriesThenDrops(t *testing.T) {
	r := NewRegistry()
	now := time.Now()
	cfg := Config{
		MailEvents:      map[string]bool{"submitted": true},
		MailRetryDelays: []time.Duration{time.Minute},
	}
	r.Setup(cfg, "submitted", "job submitted", 1, TemplateContext{})

	ready := r.Ready(now)
	if len(ready) != 1 {
		t.Fatalf("expected 1 ready handler, got %d", len(ready))
	}
	key := ready[0].Key
	r.Callback(key, false, now)

	if got := r.Pending(); got != 1 {
		t.Fatalf("expected handler retained after first failure, got %d pending", got)
	}
	if len(r.Ready(now)) != 0 {
		t.Fatalf("expected handler not yet ready before its retry delay elapses")
	}
	if len(r.Ready(now.Add(2*time.Minute))) != 1 {
		t.Fatalf("expected handler ready after its retry delay elapses")
	}

	r.Callback(key, false, now.Add(2*time.Minute))
	if got := r.Pending(); got != 0 {
		t.Fatalf("expected handler dropped once its retry schedule is exhausted, got %d pending", got)
	}
}

func TestJobLogsRetrievalChoosesRegisterForLocalHost(t *testing.T) {
	r := NewRegistry()
	cfg := Config{IsLocal: true}
	r.Setup(cfg, "succeeded", "job succeeded", 1, TemplateContext{})

	ready := r.Ready(time.Now())
	if len(ready) != 1 || ready[0].Kind != KindJobLogsRegister {
		t.Fatalf("expected a job-logs-register handler for a local host, got %+v", ready)
	}
}

func TestJobLogsRetrievalChoosesRemoteRetrieve(t *testing.T) {
	r := NewRegistry()
	cfg := Config{IsLocal: false, RetrieveJobLogs: true, UserAtHost: "alice@remote"}
	r.Setup(cfg, "retry", "job retry", 1, TemplateContext{})

	ready := r.Ready(time.Now())
	if len(ready) != 1 || ready[0].Kind != KindJobLogsRetrieve {
		t.Fatalf("expected a job-logs-retrieve handler for a remote host, got %+v", ready)
	}
	if ready[0].UserAtHost != "alice@remote" {
		t.Fatalf("expected user-at-host to be threaded through, got %q", ready[0].UserAtHost)
	}
}

func TestShellQuote(t *testing.T) {
	cases := map[string]string{
		"simple":     "simple",
		"":           "''",
		"has space":  "'has space'",
		"it's":       `'it'"'"'s'`,
		"foo.20260101T0000Z": "foo.20260101T0000Z",
	}
	for in, want := range cases {
		if got := ShellQuote(in); got != want {
			t.Errorf("ShellQuote(%q) = %q, want %q", in, got, want)
		}
	}
}
