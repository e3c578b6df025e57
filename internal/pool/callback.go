package pool

import (
	"fmt"

	"github.com/shaiso/cyclesched/internal/callback"
	"github.com/shaiso/cyclesched/internal/cycle"
	"github.com/shaiso/cyclesched/internal/domain"
)

// CallbackPayload is the decoded form of a process-pool callback
// delivery, before its raw line has been parsed by internal/callback.
type CallbackPayload struct {
	TaskName   string
	CyclePoint string
	Kind       string // submit | poll | poll-message | kill
	RawLine    string
}

// Dispatch routes one process-pool callback to the live proxy it
// names, parsing RawLine according to Kind and feeding the result
// into the matching Proxy callback method. A malformed line or an
// unknown identity is returned as an error rather than panicking —
// the process pool is an external collaborator the scheduler must
// stay up in spite of.
func (pl *InMemoryPool) Dispatch(payload CallbackPayload) error {
	point, err := cycle.ParsePoint(payload.CyclePoint)
	if err != nil {
		return fmt.Errorf("pool: dispatch: %w", err)
	}
	id := domain.Identity{Name: payload.TaskName, Point: point}
	p, ok := pl.Get(id)
	if !ok {
		return ErrUnknownIdentity(id.String())
	}

	switch payload.Kind {
	case "submit":
		result, err := callback.ParseSubmit(payload.RawLine)
		if err != nil {
			return fmt.Errorf("pool: dispatch: %w", err)
		}
		p.JobSubmissionCallback(result)
	case "poll":
		result, err := callback.ParsePoll(payload.RawLine)
		if err != nil {
			return fmt.Errorf("pool: dispatch: %w", err)
		}
		p.JobPollCallback(result)
	case "poll-message":
		msg, err := callback.ParsePollMessage(payload.RawLine)
		if err != nil {
			return fmt.Errorf("pool: dispatch: %w", err)
		}
		p.JobPollMessageCallback(msg)
	case "kill":
		result, err := callback.ParseKill(payload.RawLine)
		if err != nil {
			return fmt.Errorf("pool: dispatch: %w", err)
		}
		p.JobKillCallback(result)
	default:
		return fmt.Errorf("pool: dispatch: unknown callback kind %q", payload.Kind)
	}
	return nil
}
