// Package scheduler multiplexes suspendable verification tasks over a
// single-threaded, callback-driven simulator kernel. Tasks await triggers;
// the scheduler arms the triggers' leaf conditions as native kernel
// callbacks and resumes tasks from a FIFO ready queue during the kernel's
// read-write phase.
package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/veritb/veritb/hooking"
	"github.com/veritb/veritb/kernel"
)

// HookPosTaskSpawn triggers when a task is registered with the scheduler.
var HookPosTaskSpawn = &hooking.HookPos{Name: "TaskSpawn"}

// HookPosTaskResume triggers right before a task starts or resumes running.
var HookPosTaskResume = &hooking.HookPos{Name: "TaskResume"}

// HookPosTaskSuspend triggers when a task suspends on a trigger. Detail
// carries the trigger.
var HookPosTaskSuspend = &hooking.HookPos{Name: "TaskSuspend"}

// HookPosTaskTerminate triggers when a task reaches a terminal state.
var HookPosTaskTerminate = &hooking.HookPos{Name: "TaskTerminate"}

// HookPosTriggerFired triggers when an armed trigger resolves. Item carries
// the Firing, Detail the awaiting task.
var HookPosTriggerFired = &hooking.HookPos{Name: "TriggerFired"}

// A waiter links an armed trigger back to the suspended task. done guards
// against stale callbacks: once set, any further callback for this waiter is
// a fatal scheduler bug.
type waiter struct {
	task *Task
	root Trigger
	done bool
}

type pendingWrite struct {
	handle *Handle
	value  uint64
}

// A Scheduler coordinates all tasks of one simulation session. It owns the
// armed-trigger bookkeeping, the FIFO ready queue, and every task it ever
// spawned; its lifetime is bound to the kernel session it was created for.
type Scheduler struct {
	*hooking.HookableBase

	id string
	k  kernel.Kernel

	tasksLock sync.Mutex
	tasks     []*Task

	ready   []*Task
	running *Task

	pendingWrites []pendingWrite
	rwPending     bool
	draining      bool

	failure error
}

// New creates a scheduler bound to one kernel session.
func New(k kernel.Kernel) *Scheduler {
	return &Scheduler{
		HookableBase: hooking.NewHookableBase(),
		id:           GetIDGenerator().Generate(),
		k:            k,
	}
}

// ID returns the scheduler's session identity.
func (s *Scheduler) ID() string { return s.id }

// Kernel returns the kernel session the scheduler is bound to.
func (s *Scheduler) Kernel() kernel.Kernel { return s.k }

// Spawn registers a new top-level task and schedules it to start at the
// next read-write phase.
func (s *Scheduler) Spawn(name string, fn TaskFunc) *Task {
	return s.spawn(nil, name, fn)
}

func (s *Scheduler) spawn(parent *Task, name string, fn TaskFunc) *Task {
	t := &Task{
		id:     GetIDGenerator().Generate(),
		name:   name,
		fn:     fn,
		resume: make(chan resumeMsg),
		yield:  make(chan yieldMsg),
	}
	t.setState(TaskCreated)
	t.topLevel = parent == nil

	if parent != nil {
		parent.children = append(parent.children, t)
	}

	s.tasksLock.Lock()
	s.tasks = append(s.tasks, t)
	s.tasksLock.Unlock()

	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosTaskSpawn,
		Item:   t,
	})

	s.enqueueReady(t)
	return t
}

// Tasks returns a snapshot of every task the scheduler has spawned.
func (s *Scheduler) Tasks() []*Task {
	s.tasksLock.Lock()
	defer s.tasksLock.Unlock()

	dup := make([]*Task, len(s.tasks))
	copy(dup, s.tasks)
	return dup
}

// Err returns the error that aborted the run, if any.
func (s *Scheduler) Err() error { return s.failure }

// RunUntilIdle drives the kernel's event loop until no events remain or the
// run aborts. It requires a loop-owning kernel such as the reference
// EventKernel; with an external simulator, the simulator drives the loop and
// this entry point is not used.
func (s *Scheduler) RunUntilIdle() error {
	loop, ok := s.k.(kernel.EventLoop)
	if !ok {
		return errors.New("scheduler: kernel does not own an event loop")
	}

	if err := loop.Run(); err != nil {
		return err
	}
	return s.failure
}

// Shutdown cancels every task that is not yet terminal. The runner calls it
// at the end of each test so no callback survives into the next session.
func (s *Scheduler) Shutdown() {
	for _, t := range s.Tasks() {
		if !t.State().Terminal() {
			s.CancelTask(t)
		}
	}
}

// CancelTask tears a task down before completion. Every native callback the
// task holds is disarmed before CancelTask returns, so no stale callback can
// later resume it.
func (s *Scheduler) CancelTask(t *Task) {
	switch t.State() {
	case TaskCreated:
		t.err = ErrTaskCancelled
		t.setState(TaskCancelled)
		s.terminated(t)

	case TaskSuspended:
		if t.waiting != nil {
			t.waiting.done = true
			t.waiting.root.disarm(s)
			t.waiting = nil
		}
		t.resume <- resumeMsg{kill: true}
		<-t.yield
		t.err = ErrTaskCancelled
		t.setState(TaskCancelled)
		s.terminated(t)

	default:
		// Running tasks cancel themselves through Context.Cancel; terminal
		// tasks are left alone.
	}
}

func (s *Scheduler) enqueueReady(t *Task) {
	s.ready = append(s.ready, t)
	s.requestDrain()
}

func (s *Scheduler) requestDrain() {
	if s.draining || s.rwPending {
		return
	}
	s.rwPending = true
	if err := s.k.RegisterReadWrite(s.drain); err != nil {
		s.abort(fmt.Errorf("scheduler: cannot enter read-write phase: %w", err))
	}
}

// drain runs in the kernel's read-write phase. It first applies queued
// writes, then resumes ready tasks strictly FIFO, each to its next
// suspension point, until the queue is empty.
func (s *Scheduler) drain() {
	s.rwPending = false
	s.draining = true
	defer func() { s.draining = false }()

	s.flushWrites()

	for s.failure == nil && len(s.ready) > 0 {
		t := s.ready[0]
		s.ready = s.ready[1:]

		if t.State().Terminal() {
			continue
		}

		s.runTask(t)
		s.flushWrites()
	}
}

func (s *Scheduler) flushWrites() {
	for len(s.pendingWrites) > 0 {
		w := s.pendingWrites[0]
		s.pendingWrites = s.pendingWrites[1:]

		if err := s.k.Deposit(w.handle.obj, w.value); err != nil {
			s.abort(fmt.Errorf("%w: %q", ErrStaleHandle, w.handle.path))
			return
		}
	}
}

func (s *Scheduler) queueWrite(h *Handle, value uint64) {
	s.pendingWrites = append(s.pendingWrites, pendingWrite{h, value})
	s.requestDrain()
}

// runTask resumes one task and blocks until it suspends or terminates. If
// the trigger it tries to await is invalid, the task is resumed immediately
// with the error, without any partial arming.
func (s *Scheduler) runTask(t *Task) {
	msg := resumeMsg{firing: t.resumeFiring}
	t.resumeFiring = nil

	for {
		t.setState(TaskRunning)
		s.running = t
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosTaskResume,
			Item:   t,
		})

		if !t.started {
			t.started = true
			go t.run(&Context{s: s, t: t})
		}

		t.resume <- msg
		y := <-t.yield
		s.running = nil

		if y.done {
			s.finishTask(t, y.err)
			return
		}

		if err := s.armFor(t, y.await); err != nil {
			msg = resumeMsg{err: err}
			continue
		}

		t.setState(TaskSuspended)
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosTaskSuspend,
			Item:   t,
			Detail: y.await,
		})
		return
	}
}

// armFor validates the whole trigger tree first, then arms its leaves. A
// validation failure reaches the task before any native registration; an
// arming failure disarms whatever was already registered before the error
// is reported.
func (s *Scheduler) armFor(t *Task, root Trigger) error {
	if root == nil {
		return errors.New("scheduler: await requires a trigger")
	}

	if err := root.validate(s.k); err != nil {
		return err
	}

	w := &waiter{task: t, root: root}
	t.waiting = w

	err := root.arm(s, func(cause Trigger) {
		if w.done {
			s.abort(fmt.Errorf("%w: task %s, trigger %s",
				ErrCallbackAfterCancel, t.name, root))
			return
		}
		w.done = true
		t.waiting = nil

		firing := &Firing{
			Trigger:   root,
			Cause:     cause,
			TimeSteps: s.k.CurrentTime(),
		}
		s.InvokeHook(hooking.HookCtx{
			Domain: s,
			Pos:    HookPosTriggerFired,
			Item:   firing,
			Detail: t,
		})

		t.resumeFiring = firing
		s.enqueueReady(t)
	})
	if err != nil {
		root.disarm(s)
		w.done = true
		t.waiting = nil
		return err
	}

	return nil
}

func (s *Scheduler) finishTask(t *Task, err error) {
	switch {
	case err == nil:
		t.setState(TaskCompleted)
	case errors.Is(err, errKilled):
		t.err = ErrTaskCancelled
		t.setState(TaskCancelled)
	default:
		t.err = &TaskFailure{
			TaskName:  t.name,
			TimeSteps: s.k.CurrentTime(),
			Err:       err,
		}
		t.setState(TaskFailed)
	}

	s.terminated(t)
}

// terminated handles the common tail of every terminal transition: hooks,
// cancelling the task's remaining children, waking joiners, and aborting
// the run on an unobserved failure.
func (s *Scheduler) terminated(t *Task) {
	s.InvokeHook(hooking.HookCtx{
		Domain: s,
		Pos:    HookPosTaskTerminate,
		Item:   t,
	})

	for _, child := range t.children {
		if !child.State().Terminal() {
			s.CancelTask(child)
		}
	}
	t.children = nil

	subs := t.completionSubs
	t.completionSubs = nil
	observed := len(subs) > 0
	for _, sub := range subs {
		sub.targetFinished()
	}

	if t.State() == TaskFailed && !observed {
		s.abort(t.err)
	}
}

// abort marks the run failed and cancels everything that is still alive.
// Cleanup of native callbacks happens here, before the error surfaces.
func (s *Scheduler) abort(err error) {
	if s.failure == nil {
		s.failure = err
	}

	for _, t := range s.Tasks() {
		if !t.State().Terminal() && t != s.running {
			s.CancelTask(t)
		}
	}
}
