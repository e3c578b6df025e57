package domain

// Well-known output tokens recognised by message routing, independent
// of whatever task-specific outputs a definition declares.
const (
	OutputStarted          = "started"
	OutputSucceeded        = "succeeded"
	OutputFailed           = "failed"
	OutputSubmitFailed     = "submit_failed"
	OutputSubmissionFailed = "submission failed"
)

// VacationMessagePrefix and FailSignalPrefix are matched against the
// start of an inbound message when none of the exact-match output
// tokens apply.
const (
	VacationMessagePrefix = "vacated "
	FailSignalPrefix      = "failed/"
)

// OutputSet is the proxy's mapping of output name to completed?. Its
// zero value is ready to use.
type OutputSet struct {
	completed map[string]bool
}

// Record marks an output as completed. Re-recording an already
// completed output is a no-op, matching the idempotence required by
// message ingress step 5.
func (o *OutputSet) Record(name string) (changed bool) {
	if o.completed == nil {
		o.completed = make(map[string]bool)
	}
	if o.completed[name] {
		return false
	}
	o.completed[name] = true
	return true
}

// IsCompleted reports whether the named output has been recorded.
func (o *OutputSet) IsCompleted(name string) bool {
	return o.completed[name]
}

// Completed returns the set of completed output names.
func (o *OutputSet) Completed() []string {
	names := make([]string, 0, len(o.completed))
	for name := range o.completed {
		names = append(names, name)
	}
	return names
}
