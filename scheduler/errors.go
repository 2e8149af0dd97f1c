package scheduler

import (
	"errors"
	"fmt"

	"github.com/veritb/veritb/vtime"
)

// ErrStaleHandle is returned when a handle path does not resolve to a live
// simulator object.
var ErrStaleHandle = errors.New(
	"scheduler: handle does not resolve to a live object")

// ErrDoubleArm reports an internal invariant violation: a single-shot
// trigger was armed twice or re-armed after it fired.
var ErrDoubleArm = errors.New("scheduler: trigger armed twice")

// ErrCallbackAfterCancel reports a kernel callback that fired for a waiter
// that was already resolved or cancelled. Cancellation disarms callbacks
// synchronously, so this can only mean scheduler-state corruption; the run
// is aborted.
var ErrCallbackAfterCancel = errors.New(
	"scheduler: callback fired for a cancelled waiter")

// ErrTaskCancelled is the terminal error of a task torn down before
// completion.
var ErrTaskCancelled = errors.New("scheduler: task cancelled")

// errKilled travels from the forced unwind of a cancelled task fiber back to
// the scheduler. It is never visible to users.
var errKilled = errors.New("scheduler: task killed")

// killSignal is panicked inside a cancelled task to unwind its fiber.
type killSignal struct{}

// A TaskFailure wraps the unrecoverable error a task's logic raised,
// together with the task identity and the simulated time of the failure.
type TaskFailure struct {
	TaskName  string
	TimeSteps vtime.Steps
	Err       error
}

func (e *TaskFailure) Error() string {
	return fmt.Sprintf("task %s failed at %d steps: %v",
		e.TaskName, e.TimeSteps, e.Err)
}

func (e *TaskFailure) Unwrap() error {
	return e.Err
}
