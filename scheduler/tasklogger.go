package scheduler

import (
	"log"

	"github.com/veritb/veritb/hooking"
	"github.com/veritb/veritb/kernel"
)

// A LogHook is a hook that records information from the run.
type LogHook interface {
	hooking.Hook
}

// LogHookBase provides the common logic for all LogHooks.
type LogHookBase struct {
	*log.Logger
}

// TaskLogger is a hook that prints task lifecycle transitions and trigger
// firings, prefixed with the simulated time at which they happened.
type TaskLogger struct {
	LogHookBase
	k kernel.Kernel
}

// NewTaskLogger returns a TaskLogger writing into the given logger.
func NewTaskLogger(logger *log.Logger, k kernel.Kernel) *TaskLogger {
	h := new(TaskLogger)
	h.Logger = logger
	h.k = k
	return h
}

// Func writes the hook information into the logger.
func (h *TaskLogger) Func(ctx hooking.HookCtx) {
	now := h.k.CurrentTime()
	unit := h.k.Precision()

	switch ctx.Pos {
	case HookPosTaskSpawn:
		t := ctx.Item.(*Task)
		h.Printf("%10d %s  spawn     %s", now, unit, t.Name())

	case HookPosTaskSuspend:
		t := ctx.Item.(*Task)
		tr := ctx.Detail.(Trigger)
		h.Printf("%10d %s  suspend   %s on %s", now, unit, t.Name(), tr)

	case HookPosTriggerFired:
		firing := ctx.Item.(*Firing)
		t := ctx.Detail.(*Task)
		h.Printf("%10d %s  fired     %s for %s", now, unit, firing.Cause, t.Name())

	case HookPosTaskTerminate:
		t := ctx.Item.(*Task)
		if err := t.Err(); err != nil {
			h.Printf("%10d %s  %-9s %s: %v", now, unit, t.State(), t.Name(), err)
			return
		}
		h.Printf("%10d %s  %-9s %s", now, unit, t.State(), t.Name())
	}
}
