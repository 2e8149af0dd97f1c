package recording

import (
	"github.com/veritb/veritb/hooking"
	"github.com/veritb/veritb/scheduler"
)

// TaskEvent is one row of the task_events table.
type TaskEvent struct {
	Time     uint64
	Event    string
	TaskID   string
	TaskName string
	State    string
	Error    string
}

// TriggerEvent is one row of the trigger_events table.
type TriggerEvent struct {
	Time     uint64
	TaskID   string
	TaskName string
	Trigger  string
	Cause    string
}

// A TraceHook records every task lifecycle transition and trigger firing of
// a scheduler into the data recorder.
type TraceHook struct {
	recorder DataRecorder
}

// NewTraceHook creates a TraceHook and its backing tables.
func NewTraceHook(recorder DataRecorder) *TraceHook {
	h := &TraceHook{recorder: recorder}

	h.recorder.CreateTable("task_events", TaskEvent{})
	h.recorder.CreateTable("trigger_events", TriggerEvent{})

	return h
}

// Func writes the hook information into the recorder.
func (h *TraceHook) Func(ctx hooking.HookCtx) {
	s, ok := ctx.Domain.(*scheduler.Scheduler)
	if !ok {
		return
	}
	now := uint64(s.Kernel().CurrentTime())

	switch ctx.Pos {
	case scheduler.HookPosTaskSpawn,
		scheduler.HookPosTaskResume,
		scheduler.HookPosTaskTerminate:
		t := ctx.Item.(*scheduler.Task)

		errText := ""
		if err := t.Err(); err != nil {
			errText = err.Error()
		}

		h.recorder.InsertData("task_events", TaskEvent{
			Time:     now,
			Event:    ctx.Pos.Name,
			TaskID:   t.ID(),
			TaskName: t.Name(),
			State:    t.State().String(),
			Error:    errText,
		})

	case scheduler.HookPosTaskSuspend:
		t := ctx.Item.(*scheduler.Task)
		tr := ctx.Detail.(scheduler.Trigger)

		h.recorder.InsertData("task_events", TaskEvent{
			Time:     now,
			Event:    ctx.Pos.Name,
			TaskID:   t.ID(),
			TaskName: t.Name(),
			State:    tr.String(),
		})

	case scheduler.HookPosTriggerFired:
		firing := ctx.Item.(*scheduler.Firing)
		t := ctx.Detail.(*scheduler.Task)

		h.recorder.InsertData("trigger_events", TriggerEvent{
			Time:     uint64(firing.TimeSteps),
			TaskID:   t.ID(),
			TaskName: t.Name(),
			Trigger:  firing.Trigger.String(),
			Cause:    firing.Cause.String(),
		})
	}
}
