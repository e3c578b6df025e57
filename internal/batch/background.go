package batch

import (
	"fmt"
	"strconv"
	"strings"
)

// Background is the simplest batch system variant: the job file is
// just executed directly and backgrounded, with its PID used as the
// batch-system job ID. It needs no external scheduler.
type Background struct{}

// Name returns "background".
func (Background) Name() string { return "background" }

// FormatSubmit runs the job file in the background and echoes its
// PID, which ParseSubmitOutput picks back up.
func (Background) FormatSubmit(jobFilePath string) string {
	return fmt.Sprintf("nohup %s >/dev/null 2>&1 & echo $!", jobFilePath)
}

// ParseSubmitOutput reads the PID echoed by FormatSubmit's command.
func (Background) ParseSubmitOutput(stdout, _ string) (string, error) {
	pid := strings.TrimSpace(stdout)
	if pid == "" {
		return "", fmt.Errorf("background submit: no PID in output")
	}
	if _, err := strconv.Atoi(pid); err != nil {
		return "", fmt.Errorf("background submit: invalid PID %q: %w", pid, err)
	}
	return pid, nil
}

// FormatPoll checks whether the PID is still a live process.
func (Background) FormatPoll(jobID string) string {
	return fmt.Sprintf("kill -0 %s", jobID)
}

// FormatKill sends SIGTERM to the PID.
func (Background) FormatKill(jobID string) string {
	return fmt.Sprintf("kill %s", jobID)
}
