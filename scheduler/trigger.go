package scheduler

import (
	"fmt"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/vtime"
)

// A Trigger describes one condition a task can await. Triggers are
// single-shot: once fired (or disarmed) a trigger is consumed, and awaiting
// the same logical condition again requires constructing a new one.
type Trigger interface {
	fmt.Stringer

	// validate checks that the trigger is constructible against the kernel.
	// It runs before any native registration, so an invalid trigger never
	// arms partially.
	validate(k kernel.Kernel) error

	// arm registers one kernel callback per leaf condition. fired is invoked
	// exactly once, with the leaf that completed the trigger.
	arm(s *Scheduler, fired func(cause Trigger)) error

	// disarm cancels any callbacks still registered and consumes the
	// trigger.
	disarm(s *Scheduler)
}

// A Firing reports a resolved trigger to the task that awaited it.
type Firing struct {
	// Trigger is the root trigger that was awaited.
	Trigger Trigger

	// Cause is the leaf condition that completed the trigger. For FirstOf
	// this identifies the winner.
	Cause Trigger

	// TimeSteps is the simulated time at which the trigger fired.
	TimeSteps vtime.Steps
}

type triggerState int

const (
	triggerIdle triggerState = iota
	triggerArmed
	triggerConsumed
)

// EdgeKind selects which transitions of a signal satisfy an edge trigger.
type EdgeKind int

const (
	// RisingEdge matches a transition from zero to any non-zero value.
	RisingEdge EdgeKind = iota
	// FallingEdge matches a transition from any non-zero value to zero.
	FallingEdge
	// AnyChange matches every value change.
	AnyChange
)

func (k EdgeKind) String() string {
	switch k {
	case RisingEdge:
		return "RisingEdge"
	case FallingEdge:
		return "FallingEdge"
	case AnyChange:
		return "AnyChange"
	}
	return fmt.Sprintf("EdgeKind(%d)", int(k))
}

func (k EdgeKind) matches(prev, curr uint64) bool {
	switch k {
	case RisingEdge:
		return prev == 0 && curr != 0
	case FallingEdge:
		return prev != 0 && curr == 0
	default:
		return true
	}
}

// An EdgeTrigger fires the first time the watched signal makes a matching
// transition after arming. Transitions that happened before arming are never
// observed.
type EdgeTrigger struct {
	handle *Handle
	kind   EdgeKind

	state triggerState
	tok   kernel.Token
}

// Edge builds an edge trigger of the given kind on a signal.
func Edge(h *Handle, kind EdgeKind) *EdgeTrigger {
	return &EdgeTrigger{handle: h, kind: kind}
}

// Rising builds a trigger for the signal's next rising edge.
func Rising(h *Handle) *EdgeTrigger { return Edge(h, RisingEdge) }

// Falling builds a trigger for the signal's next falling edge.
func Falling(h *Handle) *EdgeTrigger { return Edge(h, FallingEdge) }

// Change builds a trigger for the signal's next value change of any kind.
func Change(h *Handle) *EdgeTrigger { return Edge(h, AnyChange) }

func (tr *EdgeTrigger) String() string {
	return fmt.Sprintf("%s(%s)", tr.kind, tr.handle.Path())
}

func (tr *EdgeTrigger) validate(k kernel.Kernel) error {
	if tr.handle == nil {
		return fmt.Errorf("%w: edge trigger without a handle", ErrStaleHandle)
	}
	return nil
}

func (tr *EdgeTrigger) arm(s *Scheduler, fired func(cause Trigger)) error {
	if tr.state != triggerIdle {
		return fmt.Errorf("%w: %s", ErrDoubleArm, tr)
	}

	// The kernel notifies on every value change; the edge kind is checked
	// here against the before/after pair, staying armed on non-matching
	// transitions.
	tok, err := s.k.RegisterValueChange(tr.handle.obj,
		func(prev, curr uint64) {
			if !tr.kind.matches(prev, curr) {
				return
			}
			_ = s.k.Cancel(tr.tok)
			tr.state = triggerConsumed
			fired(tr)
		})
	if err != nil {
		return err
	}

	tr.tok = tok
	tr.state = triggerArmed
	return nil
}

func (tr *EdgeTrigger) disarm(s *Scheduler) {
	if tr.state != triggerArmed {
		return
	}
	_ = s.k.Cancel(tr.tok)
	tr.state = triggerConsumed
}

// A TimerTrigger fires exactly once when simulated time reaches the absolute
// deadline computed at arm time as current time plus the requested delay.
type TimerTrigger struct {
	delay vtime.Time

	steps    vtime.Steps
	deadline vtime.Steps
	state    triggerState
	tok      kernel.Token
}

// Timer builds a trigger that fires after the given delay. The delay must be
// a whole number of kernel steps; anything else is rejected at await time,
// before any native registration.
func Timer(value uint64, unit vtime.Unit) *TimerTrigger {
	return &TimerTrigger{delay: vtime.New(value, unit)}
}

func (tr *TimerTrigger) String() string {
	return fmt.Sprintf("Timer(%s)", tr.delay)
}

// Deadline returns the absolute fire time in steps. It is only meaningful
// once the trigger has been armed.
func (tr *TimerTrigger) Deadline() vtime.Steps { return tr.deadline }

func (tr *TimerTrigger) validate(k kernel.Kernel) error {
	steps, err := tr.delay.ToSteps(k.Precision())
	if err != nil {
		return err
	}
	tr.steps = steps
	return nil
}

func (tr *TimerTrigger) arm(s *Scheduler, fired func(cause Trigger)) error {
	if tr.state != triggerIdle {
		return fmt.Errorf("%w: %s", ErrDoubleArm, tr)
	}

	now := s.k.CurrentTime()
	if tr.steps > ^vtime.Steps(0)-now {
		return fmt.Errorf("%w: %s from step %d",
			vtime.ErrStepOverflow, tr, now)
	}
	tr.deadline = now + tr.steps

	tok, err := s.k.RegisterTimeDelay(tr.steps, func() {
		tr.state = triggerConsumed
		fired(tr)
	})
	if err != nil {
		return err
	}

	tr.tok = tok
	tr.state = triggerArmed
	return nil
}

func (tr *TimerTrigger) disarm(s *Scheduler) {
	if tr.state != triggerArmed {
		return
	}
	_ = s.k.Cancel(tr.tok)
	tr.state = triggerConsumed
}
