package scheduler

import (
	"fmt"
	"strings"

	"github.com/veritb/veritb/kernel"
)

// firstOf fires when any one sub-trigger fires; the remaining siblings are
// disarmed at that moment and never fire afterwards.
type firstOf struct {
	subs  []Trigger
	state triggerState
}

// FirstOf combines triggers into one that resolves on the earliest firing
// among them. When sub-triggers fire in the very same kernel callback batch,
// the first callback the kernel delivers wins and the siblings are disarmed.
func FirstOf(subs ...Trigger) Trigger {
	return &firstOf{subs: subs}
}

func (tr *firstOf) String() string {
	return "FirstOf(" + describeSubs(tr.subs) + ")"
}

func (tr *firstOf) validate(k kernel.Kernel) error {
	if len(tr.subs) == 0 {
		return fmt.Errorf("scheduler: FirstOf requires at least one trigger")
	}
	for _, sub := range tr.subs {
		if err := sub.validate(k); err != nil {
			return err
		}
	}
	return nil
}

func (tr *firstOf) arm(s *Scheduler, fired func(cause Trigger)) error {
	if tr.state != triggerIdle {
		return fmt.Errorf("%w: %s", ErrDoubleArm, tr)
	}
	tr.state = triggerArmed

	for i, sub := range tr.subs {
		winner := i
		err := sub.arm(s, func(cause Trigger) {
			tr.state = triggerConsumed
			for j, sibling := range tr.subs {
				if j != winner {
					sibling.disarm(s)
				}
			}
			fired(cause)
		})
		if err != nil {
			for j := 0; j < i; j++ {
				tr.subs[j].disarm(s)
			}
			tr.state = triggerConsumed
			return err
		}
	}

	return nil
}

func (tr *firstOf) disarm(s *Scheduler) {
	if tr.state != triggerArmed {
		return
	}
	tr.state = triggerConsumed
	for _, sub := range tr.subs {
		sub.disarm(s)
	}
}

// allOf fires once every sub-trigger has fired at least once, whatever the
// order, and exactly once even when several subs fire at the same instant.
type allOf struct {
	subs      []Trigger
	remaining int
	state     triggerState
}

// AllOf combines triggers into one that resolves only after every one of
// them has fired.
func AllOf(subs ...Trigger) Trigger {
	return &allOf{subs: subs}
}

func (tr *allOf) String() string {
	return "AllOf(" + describeSubs(tr.subs) + ")"
}

func (tr *allOf) validate(k kernel.Kernel) error {
	if len(tr.subs) == 0 {
		return fmt.Errorf("scheduler: AllOf requires at least one trigger")
	}
	for _, sub := range tr.subs {
		if err := sub.validate(k); err != nil {
			return err
		}
	}
	return nil
}

func (tr *allOf) arm(s *Scheduler, fired func(cause Trigger)) error {
	if tr.state != triggerIdle {
		return fmt.Errorf("%w: %s", ErrDoubleArm, tr)
	}
	tr.state = triggerArmed
	tr.remaining = len(tr.subs)

	for i, sub := range tr.subs {
		err := sub.arm(s, func(cause Trigger) {
			tr.remaining--
			if tr.remaining > 0 {
				return
			}
			tr.state = triggerConsumed
			fired(cause)
		})
		if err != nil {
			for j := 0; j < i; j++ {
				tr.subs[j].disarm(s)
			}
			tr.state = triggerConsumed
			return err
		}
	}

	return nil
}

func (tr *allOf) disarm(s *Scheduler) {
	if tr.state != triggerArmed {
		return
	}
	tr.state = triggerConsumed
	for _, sub := range tr.subs {
		sub.disarm(s)
	}
}

func describeSubs(subs []Trigger) string {
	descs := make([]string, len(subs))
	for i, sub := range subs {
		descs[i] = sub.String()
	}
	return strings.Join(descs, ", ")
}
