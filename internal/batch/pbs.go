package batch

import (
	"fmt"
	"strings"
)

// PBS submits jobs to a PBS/Torque-style scheduler via qsub, using
// the job ID qsub prints on stdout.
type PBS struct{}

// Name returns "pbs".
func (PBS) Name() string { return "pbs" }

// FormatSubmit hands the job file to qsub.
func (PBS) FormatSubmit(jobFilePath string) string {
	return fmt.Sprintf("qsub %s", jobFilePath)
}

// ParseSubmitOutput takes qsub's printed job ID verbatim.
func (PBS) ParseSubmitOutput(stdout, _ string) (string, error) {
	id := strings.TrimSpace(stdout)
	if id == "" {
		return "", fmt.Errorf("pbs submit: no job ID in output")
	}
	return id, nil
}

// FormatPoll queries job status with qstat.
func (PBS) FormatPoll(jobID string) string {
	return fmt.Sprintf("qstat %s", jobID)
}

// FormatKill cancels the job with qdel.
func (PBS) FormatKill(jobID string) string {
	return fmt.Sprintf("qdel %s", jobID)
}
