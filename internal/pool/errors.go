package pool

import "fmt"

// ErrUnknownTaskName reports a Spawn for a task name absent from the
// arena's definition table.
func ErrUnknownTaskName(name string) error {
	return fmt.Errorf("%w: %s", errUnknownTaskName, name)
}

// ErrUnknownIdentity reports a PutCommand against an identity with no
// live proxy.
func ErrUnknownIdentity(id string) error {
	return fmt.Errorf("%w: %s", errUnknownIdentity, id)
}

// ErrUnknownCommand reports a PutCommand with an unrecognised verb.
func ErrUnknownCommand(cmd string) error {
	return fmt.Errorf("%w: %s", errUnknownCommand, cmd)
}

var (
	errUnknownTaskName = fmt.Errorf("pool: unknown task name")
	errUnknownIdentity = fmt.Errorf("pool: unknown proxy identity")
	errUnknownCommand  = fmt.Errorf("pool: unknown command")
)
