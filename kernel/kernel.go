// Package kernel defines the narrow callback interface between the
// verification runtime and an event-driven simulator, plus an in-process
// reference kernel that implements it. The kernel is the sole source of
// time and event truth; the rest of the runtime never keeps its own clock.
package kernel

import (
	"errors"

	"github.com/veritb/veritb/vtime"
)

// ObjectID identifies one simulator-resident signal. IDs are stable for the
// lifetime of a kernel session.
type ObjectID int32

// Token identifies one registered callback so it can be cancelled.
type Token uint64

// ValueChangeFunc is invoked when a watched signal changes value. It receives
// the value before and after the transition.
type ValueChangeFunc func(prev, curr uint64)

// TimeFunc is invoked when a time-delay callback matures.
type TimeFunc func()

// ErrUnknownObject is returned when an object ID or path does not resolve to
// a signal in this session.
var ErrUnknownObject = errors.New("kernel: unknown object")

// ErrUnknownToken is returned when cancelling a callback that is not
// registered, already cancelled, or already delivered.
var ErrUnknownToken = errors.New("kernel: unknown callback token")

// Kernel is the simulator callback interface consumed by the scheduler.
//
// RegisterValueChange and RegisterTimeDelay arm exactly one native callback
// each and return a token for cancellation. Cancel takes effect immediately:
// a cancelled callback is never delivered afterwards.
type Kernel interface {
	// RegisterValueChange arms fn to run on every value change of obj until
	// the token is cancelled.
	RegisterValueChange(obj ObjectID, fn ValueChangeFunc) (Token, error)

	// RegisterTimeDelay arms fn to run once, delay steps from the current
	// simulated time. A zero delay still goes through the event loop and is
	// delivered no earlier than the next dispatch at the current time.
	RegisterTimeDelay(delay vtime.Steps, fn TimeFunc) (Token, error)

	// RegisterReadWrite arms fn to run in the read-write phase of the current
	// timestep, after all value-change and time-delay callbacks at this time
	// have been delivered. Each registration fires once.
	RegisterReadWrite(fn func()) error

	// Cancel deregisters a callback by token.
	Cancel(tok Token) error

	// CurrentTime returns the simulated time cursor in steps.
	CurrentTime() vtime.Steps

	// Precision returns the metric unit one step corresponds to.
	Precision() vtime.Unit

	// Lookup resolves a hierarchical signal path to its object ID.
	Lookup(path string) (ObjectID, error)

	// Width returns the bit width of a signal.
	Width(obj ObjectID) (int, error)

	// Read returns the current value of a signal.
	Read(obj ObjectID) (uint64, error)

	// Deposit drives a signal to a value, notifying value-change callbacks.
	Deposit(obj ObjectID, value uint64) error
}

// EventLoop is implemented by kernels that own their event loop, such as the
// reference EventKernel. External simulators drive the loop themselves.
type EventLoop interface {
	// Run processes events until none remain.
	Run() error
}
