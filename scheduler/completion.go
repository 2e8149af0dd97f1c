package scheduler

import (
	"fmt"

	"github.com/veritb/veritb/kernel"
)

// A CompletionTrigger fires when the target task reaches a terminal state.
// Joining a task is awaiting its completion trigger.
type CompletionTrigger struct {
	target *Task

	state    triggerState
	fired    func(cause Trigger)
	viaTimer bool
	tok      kernel.Token
}

// Completion builds a trigger on the target task's terminal state. If the
// target is already terminal the trigger still fires through the kernel at
// the current time, so the awaiting task always yields a scheduling point.
func Completion(target *Task) *CompletionTrigger {
	return &CompletionTrigger{target: target}
}

func (tr *CompletionTrigger) String() string {
	return fmt.Sprintf("Completion(%s)", tr.target.Name())
}

func (tr *CompletionTrigger) validate(k kernel.Kernel) error {
	if tr.target == nil {
		return fmt.Errorf("scheduler: completion trigger without a target")
	}
	return nil
}

func (tr *CompletionTrigger) arm(s *Scheduler, fired func(cause Trigger)) error {
	if tr.state != triggerIdle {
		return fmt.Errorf("%w: %s", ErrDoubleArm, tr)
	}

	if tr.target.State().Terminal() {
		tok, err := s.k.RegisterTimeDelay(0, func() {
			tr.state = triggerConsumed
			fired(tr)
		})
		if err != nil {
			return err
		}
		tr.tok = tok
		tr.viaTimer = true
		tr.state = triggerArmed
		return nil
	}

	tr.fired = fired
	tr.target.completionSubs = append(tr.target.completionSubs, tr)
	tr.state = triggerArmed
	return nil
}

func (tr *CompletionTrigger) disarm(s *Scheduler) {
	if tr.state != triggerArmed {
		return
	}
	tr.state = triggerConsumed

	if tr.viaTimer {
		_ = s.k.Cancel(tr.tok)
		return
	}

	subs := tr.target.completionSubs
	for i, sub := range subs {
		if sub == tr {
			tr.target.completionSubs = append(subs[:i], subs[i+1:]...)
			return
		}
	}
}

// targetFinished is called by the scheduler when the target task reaches a
// terminal state.
func (tr *CompletionTrigger) targetFinished() {
	if tr.state != triggerArmed {
		return
	}
	tr.state = triggerConsumed
	tr.fired(tr)
}
