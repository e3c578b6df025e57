// Package batch provides dynamic dispatch across batch-system
// variants (background, pbs), via a registry of named
// variant implementations applied to job submission methods.
package batch

import (
	"context"
	"fmt"
)

// Variant knows how to format the commands a particular batch system
// needs and how to interpret its submit output.
type Variant interface {
	Name() string

	// FormatSubmit returns the shell command used to submit a job
	// file for execution under this batch system.
	FormatSubmit(jobFilePath string) string

	// ParseSubmitOutput extracts the batch system's own job ID from
	// the captured stdout/stderr of a submit command.
	ParseSubmitOutput(stdout, stderr string) (jobID string, err error)

	// FormatPoll returns the command used to query whether jobID is
	// still alive.
	FormatPoll(jobID string) string

	// FormatKill returns the command used to cancel jobID.
	FormatKill(jobID string) string
}

// Registry dispatches batch-system names to Variant implementations.
type Registry struct {
	variants map[string]Variant
}

// ErrUnknownVariant is returned by Get for an unregistered batch
// system name.
var ErrUnknownVariant = fmt.Errorf("unknown batch system variant")

// NewRegistry returns a registry with the background variant
// registered, the only one that needs no external scheduler.
func NewRegistry() *Registry {
	r := &Registry{variants: make(map[string]Variant)}
	r.Register(&Background{})
	return r
}

// Register adds or replaces the variant for its own Name().
func (r *Registry) Register(v Variant) {
	r.variants[v.Name()] = v
}

// Get returns the variant registered under name.
func (r *Registry) Get(name string) (Variant, error) {
	v, ok := r.variants[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownVariant, name)
	}
	return v, nil
}

// SubmitRequest is the batch-system-agnostic description of one job
// submission, assembled by the submission preparer.
type SubmitRequest struct {
	JobFilePath string
	BatchSystem string
}

// SubmitResult carries what the caller needs to track the submitted
// job: its batch-system job ID, for later poll/kill commands.
type SubmitResult struct {
	JobID string
}

// Submit formats and is expected to execute req.JobFilePath's submit
// command under req.BatchSystem; exec is the process runner supplied
// by the caller (normally the process pool), kept as a parameter so
// this package stays free of any concrete process-execution
// dependency.
func Submit(ctx context.Context, reg *Registry, req SubmitRequest, exec func(ctx context.Context, command string) (stdout, stderr string, err error)) (SubmitResult, error) {
	variant, err := reg.Get(req.BatchSystem)
	if err != nil {
		return SubmitResult{}, err
	}
	stdout, stderr, err := exec(ctx, variant.FormatSubmit(req.JobFilePath))
	if err != nil {
		return SubmitResult{}, fmt.Errorf("submit job: %w", err)
	}
	jobID, err := variant.ParseSubmitOutput(stdout, stderr)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("parse submit output: %w", err)
	}
	return SubmitResult{JobID: jobID}, nil
}
