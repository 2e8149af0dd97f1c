// Package vtime models simulated time. All bookkeeping inside the runtime is
// done in steps, the kernel's native resolution; the types here only convert
// between steps and human time units, and refuse any conversion that cannot
// be expressed as a whole number of steps.
package vtime

import (
	"errors"
	"fmt"
)

// A Unit identifies one of the time units the runtime understands. For the
// metric units the numeric value is the decimal exponent relative to one
// second, which is also how simulator kernels report their precision.
type Unit int32

// The full set of units. Step stands for the kernel's native resolution and
// is the only member that is not a fixed metric unit.
const (
	Fs   Unit = -15
	Ps   Unit = -12
	Ns   Unit = -9
	Us   Unit = -6
	Ms   Unit = -3
	Sec  Unit = 0
	Step Unit = 1
)

// ErrInvalidUnit is returned when a unit name is not one of
// fs, ps, ns, us, ms, sec, step.
var ErrInvalidUnit = errors.New("vtime: unrecognized time unit")

var unitNames = map[Unit]string{
	Fs:   "fs",
	Ps:   "ps",
	Ns:   "ns",
	Us:   "us",
	Ms:   "ms",
	Sec:  "sec",
	Step: "step",
}

var unitsByName = map[string]Unit{
	"fs":   Fs,
	"ps":   Ps,
	"ns":   Ns,
	"us":   Us,
	"ms":   Ms,
	"sec":  Sec,
	"step": Step,
}

// ParseUnit maps a unit name to its Unit. The mapping is a bijection with
// String over the fixed unit set; any other name fails with ErrInvalidUnit.
func ParseUnit(name string) (Unit, error) {
	u, ok := unitsByName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidUnit, name)
	}
	return u, nil
}

func (u Unit) String() string {
	name, ok := unitNames[u]
	if !ok {
		return fmt.Sprintf("Unit(%d)", int32(u))
	}
	return name
}

// Valid reports whether u is a member of the fixed unit set.
func (u Unit) Valid() bool {
	_, ok := unitNames[u]
	return ok
}

// IsMetric reports whether u is a fixed metric unit, i.e. anything but Step.
func (u Unit) IsMetric() bool {
	return u.Valid() && u != Step
}
