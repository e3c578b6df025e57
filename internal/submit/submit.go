// Package submit implements the submission preparer: assembling a
// job configuration, writing the job file, and maintaining the
// job-log directory layout (one directory per submit number, plus an
// "NN" symlink to the most recent one).
package submit

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/shaiso/cyclesched/internal/domain"
)

// JobConf is everything the batch-system variant and the job file
// template need to submit one attempt.
type JobConf struct {
	TaskName    string
	CyclePoint  string
	SubmitNum   int
	BatchSystem string

	Script      string
	PreScript   string
	PostScript  string
	Environment map[string]string
	Directives  map[string]string

	UserAtHost string

	LocalJobFilePath  string
	RemoteJobFilePath string
	JobLogDir         string
}

// FileWriter writes the rendered job file to disk; it is supplied by
// the caller so this package stays free of any concrete filesystem
// dependency beyond path arithmetic.
type FileWriter interface {
	WriteJobFile(path string, conf JobConf) error
	EnsureDir(path string) error
	RemoveDir(path string) error
	Symlink(oldname, newname string) error
}

// Request is the input to Prepare: the task definition, its cycle
// identity and the overrides a manual re-trigger may supply.
type Request struct {
	Def        *domain.TaskDef
	Identity   domain.Identity
	SubmitNum  int
	JobLogRoot string
	Overrides  map[string]string
}

// jobLogDirName returns "NN"-padded submit-number directory name,
// matching the original zero-padded two-digit convention; submit
// numbers beyond 99 simply widen rather than truncate.
func jobLogDirName(submitNum int) string {
	return fmt.Sprintf("%02d", submitNum)
}

// Prepare assembles a JobConf for one submission attempt, writes the
// job file through w, and maintains job-log-dir/NN -> job-log-dir/<n>
// as a symlink to the submission just written. It is idempotent only
// in the sense that the original is: each call increments no state of
// its own — callers own the submit-number increment — but re-running
// Prepare for the same submit number simply rewrites the same files.
// The per-attempt directory is removed before it is recreated, so a
// retry never accumulates stale files from the previous attempt.
func Prepare(req Request, w FileWriter) (JobConf, error) {
	rt := req.Def.Runtime

	taskLogDir := filepath.Join(req.JobLogRoot, req.Identity.Name, req.Identity.Point.String())
	submitDir := filepath.Join(taskLogDir, jobLogDirName(req.SubmitNum))
	if err := w.RemoveDir(submitDir); err != nil {
		return JobConf{}, fmt.Errorf("submit: remove stale job log dir: %w", err)
	}
	if err := w.EnsureDir(submitDir); err != nil {
		return JobConf{}, fmt.Errorf("submit: create job log dir: %w", err)
	}

	nnLink := filepath.Join(taskLogDir, "NN")
	if err := w.Symlink(jobLogDirName(req.SubmitNum), nnLink); err != nil {
		return JobConf{}, fmt.Errorf("submit: update NN symlink: %w", err)
	}

	script := rt.Script
	for k, v := range req.Overrides {
		if k == "script" {
			script = v
		}
	}

	conf := JobConf{
		TaskName:          req.Identity.Name,
		CyclePoint:        req.Identity.Point.String(),
		SubmitNum:         req.SubmitNum,
		BatchSystem:       rt.BatchSystemName,
		Script:            script,
		Environment:       rt.Environment,
		Directives:        rt.Directives,
		LocalJobFilePath:  filepath.Join(submitDir, "job"),
		RemoteJobFilePath: filepath.Join(submitDir, "job"),
		JobLogDir:         submitDir,
	}

	if err := w.WriteJobFile(conf.LocalJobFilePath, conf); err != nil {
		return JobConf{}, fmt.Errorf("submit: write job file: %w", err)
	}
	return conf, nil
}

// PollIntervalFor returns the configured polling interval for status,
// or the default if none is configured.
func PollIntervalFor(rt domain.RuntimeConfig, status domain.TaskStatus, fallback time.Duration) time.Duration {
	if d, ok := rt.PollIntervals[status]; ok {
		return d
	}
	return fallback
}
