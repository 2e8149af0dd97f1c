package scheduler

import (
	"fmt"
	"sync/atomic"
)

// TaskState tracks where a task is in its lifecycle.
type TaskState int32

// The task lifecycle. A task moves Created -> Running -> Suspended ->
// Running -> ... until it reaches one of the three terminal states.
const (
	TaskCreated TaskState = iota
	TaskRunning
	TaskSuspended
	TaskCompleted
	TaskFailed
	TaskCancelled
)

func (s TaskState) String() string {
	switch s {
	case TaskCreated:
		return "created"
	case TaskRunning:
		return "running"
	case TaskSuspended:
		return "suspended"
	case TaskCompleted:
		return "completed"
	case TaskFailed:
		return "failed"
	case TaskCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("TaskState(%d)", int32(s))
}

// Terminal reports whether the state is one a task never leaves.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed || s == TaskCancelled
}

// TaskFunc is the body of a task. It runs on the task's own fiber and may
// only interact with the runtime through the Context it receives.
type TaskFunc func(ctx *Context) error

type resumeMsg struct {
	firing *Firing
	err    error
	kill   bool
}

type yieldMsg struct {
	await Trigger
	done  bool
	err   error
}

// A Task is one suspendable unit of test logic. Tasks are owned by the
// scheduler for their whole lifetime; user code holds them only to join or
// cancel them.
//
// A task is backed by a goroutine, but execution is strictly cooperative:
// the scheduler resumes a task and then blocks until the task either
// suspends on a trigger or terminates, so at any moment exactly one of the
// scheduler and one task is running.
type Task struct {
	id   string
	name string
	fn   TaskFunc

	state atomic.Int32

	resume  chan resumeMsg
	yield   chan yieldMsg
	started bool

	// waiting is set while the task is suspended on an armed trigger and
	// cleared when the trigger fires or the task is cancelled.
	waiting *waiter

	// resumeFiring carries the firing of the trigger the task was suspended
	// on, between enqueueing and the actual resume.
	resumeFiring *Firing

	err error

	completionSubs []*CompletionTrigger
	children       []*Task
	topLevel       bool
}

// ID returns the task's unique identity.
func (t *Task) ID() string { return t.id }

// Name returns the human-readable task name.
func (t *Task) Name() string { return t.name }

// State returns the task's current lifecycle state.
func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

func (t *Task) setState(s TaskState) {
	t.state.Store(int32(s))
}

// Err returns the terminal error of a failed or cancelled task, nil
// otherwise.
func (t *Task) Err() error { return t.err }

// Awaiting returns the trigger the task is currently suspended on, nil if
// the task is not suspended.
func (t *Task) Awaiting() Trigger {
	if w := t.waiting; w != nil {
		return w.root
	}
	return nil
}

// run is the body of the task fiber. It waits for the initial resume, runs
// the task function, and reports the outcome through the yield channel. A
// cancellation unwinds the fiber via killSignal.
func (t *Task) run(ctx *Context) {
	<-t.resume

	err := t.invoke(ctx)
	t.yield <- yieldMsg{done: true, err: err}
}

func (t *Task) invoke(ctx *Context) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if _, killed := r.(killSignal); killed {
			err = errKilled
			return
		}
		err = fmt.Errorf("task panicked: %v", r)
	}()

	return t.fn(ctx)
}
