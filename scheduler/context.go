package scheduler

import (
	"github.com/veritb/veritb/vtime"
)

// A Context is the task-facing API of the scheduler. Each task receives its
// own context; all suspension, spawning, and signal access goes through it.
type Context struct {
	s *Scheduler
	t *Task
}

// Task returns the task this context belongs to.
func (c *Context) Task() *Task { return c.t }

// Await suspends the calling task until the trigger fires and returns the
// firing. Construction errors (invalid unit, non-integer delay, stale
// handle) surface here before any native callback is registered.
func (c *Context) Await(tr Trigger) (*Firing, error) {
	c.t.yield <- yieldMsg{await: tr}
	msg := <-c.t.resume

	if msg.kill {
		panic(killSignal{})
	}
	if msg.err != nil {
		return nil, msg.err
	}
	return msg.firing, nil
}

// Spawn starts a child task. The child is owned by the scheduler; it is
// cancelled automatically when this task reaches a terminal state.
func (c *Context) Spawn(name string, fn TaskFunc) *Task {
	return c.s.spawn(c.t, name, fn)
}

// Join suspends until the target task reaches a terminal state, then
// returns its result: nil for completion, the wrapped TaskFailure for a
// failure, ErrTaskCancelled for a cancellation.
func (c *Context) Join(target *Task) error {
	if _, err := c.Await(Completion(target)); err != nil {
		return err
	}
	return target.Err()
}

// Cancel tears down a task. Cancelling the calling task itself unwinds its
// own fiber immediately.
func (c *Context) Cancel(target *Task) {
	if target == c.t {
		panic(killSignal{})
	}
	c.s.CancelTask(target)
}

// SimTime returns the current simulated time viewed in the requested unit.
// The internal counter always stays in steps; coarsening only truncates the
// returned view.
func (c *Context) SimTime(unit vtime.Unit) (uint64, error) {
	return vtime.StepsIn(c.s.k.CurrentTime(), c.s.k.Precision(), unit)
}

// Precision returns the kernel's native step resolution.
func (c *Context) Precision() vtime.Unit {
	return c.s.k.Precision()
}

// Resolve looks up a signal by hierarchical path.
func (c *Context) Resolve(path string) (*Handle, error) {
	return Resolve(c.s.k, path)
}

// Set queues a write to a signal. Writes are not applied immediately; they
// are flushed at the start of the next read-write phase, before any task
// resumes, so tasks never mutate hardware state mid-callback.
func (c *Context) Set(h *Handle, value uint64) {
	c.s.queueWrite(h, value)
}

// Read returns the signal's current value.
func (c *Context) Read(h *Handle) (uint64, error) {
	return h.Value()
}
