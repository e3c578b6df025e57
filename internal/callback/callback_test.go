package callback

import "testing"

func TestParseSubmit(t *testing.T) {
	result, err := ParseSubmit("2026-07-30T00:00:00Z|qsub /tmp/job|0|42.host")
	if err != nil {
		t.Fatalf("ParseSubmit: %v", err)
	}
	if result.RetCode != 0 || result.JobID != "42.host" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseSubmitMalformed(t *testing.T) {
	if _, err := ParseSubmit("not-enough-fields"); err == nil {
		t.Fatal("expected an error for a malformed submit line")
	}
	if _, err := ParseSubmit("ts|cmd|not-a-number"); err == nil {
		t.Fatal("expected an error for a non-numeric ret_code")
	}
}

func TestPollOutcomeFailedNormally(t *testing.T) {
	p := PollResult{RunStatus: "1", RunSignal: "ERR"}
	event, sig := p.Outcome()
	if event != "failed" || sig != "" {
		t.Fatalf("got (%q, %q)", event, sig)
	}
}

func TestPollOutcomeFailedBySignalNoLongerInBatch(t *testing.T) {
	p := PollResult{RunStatus: "1", RunSignal: "SIGTERM", BatchSysExitPolled: true}
	event, sig := p.Outcome()
	if event != "failed" || sig != "SIGTERM" {
		t.Fatalf("got (%q, %q)", event, sig)
	}
}

func TestPollOutcomeSucceeded(t *testing.T) {
	p := PollResult{RunStatus: "0"}
	if event, _ := p.Outcome(); event != "succeeded" {
		t.Fatalf("got %q", event)
	}
}

func TestPollOutcomeSubmissionFailed(t *testing.T) {
	p := PollResult{BatchSysExitPolled: true}
	if event, _ := p.Outcome(); event != "submission failed" {
		t.Fatalf("got %q", event)
	}
}

func TestPollOutcomeStillSubmitted(t *testing.T) {
	p := PollResult{}
	if event, _ := p.Outcome(); event != "submitted" {
		t.Fatalf("got %q", event)
	}
}

func TestParsePoll(t *testing.T) {
	line := "ts|cmd|0|_|1|0|ERR|_|2026-07-30T00:00:00Z"
	result, err := ParsePoll(line)
	if err != nil {
		t.Fatalf("ParsePoll: %v", err)
	}
	if result.RunStatus != "0" || result.RunSignal != "ERR" {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParsePollMessage(t *testing.T) {
	msg, err := ParsePollMessage("ts|cmd|0|INFO|job started")
	if err != nil {
		t.Fatalf("ParsePollMessage: %v", err)
	}
	if msg.Priority != "INFO" || msg.Message != "job started" {
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestParsePollMessageMalformed(t *testing.T) {
	if _, err := ParsePollMessage("too|few|fields"); err == nil {
		t.Fatal("expected an error for too few fields")
	}
}

func TestParseKill(t *testing.T) {
	result, err := ParseKill("ts|cmd|0")
	if err != nil {
		t.Fatalf("ParseKill: %v", err)
	}
	if result.RetCode != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseKillNonZeroRetCode(t *testing.T) {
	result, err := ParseKill("ts|cmd|1")
	if err != nil {
		t.Fatalf("ParseKill: %v", err)
	}
	if result.RetCode != 1 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestParseKillMalformed(t *testing.T) {
	if _, err := ParseKill("ts|cmd"); err == nil {
		t.Fatal("expected an error for too few fields")
	}
}
