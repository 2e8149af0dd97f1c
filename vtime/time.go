package vtime

import (
	"errors"
	"fmt"
)

// Steps counts simulated time in the kernel's native resolution.
type Steps uint64

// ErrNonIntegerDelay is returned when a duration cannot be expressed as a
// whole number of kernel steps. Durations are never rounded or truncated.
var ErrNonIntegerDelay = errors.New(
	"vtime: duration is not a whole number of simulator steps")

// ErrStepOverflow is returned when a conversion does not fit in 64 bits.
var ErrStepOverflow = errors.New("vtime: step count overflows uint64")

// A Time is a duration expressed as an integer count of one unit.
type Time struct {
	Value uint64
	Unit  Unit
}

// New builds a Time value.
func New(value uint64, unit Unit) Time {
	return Time{Value: value, Unit: unit}
}

func (t Time) String() string {
	return fmt.Sprintf("%d %s", t.Value, t.Unit)
}

// ToSteps converts the duration to kernel steps given the kernel's precision.
// The conversion is exact integer scaling. A duration finer than the
// precision, or one that does not divide evenly, fails with
// ErrNonIntegerDelay.
func (t Time) ToSteps(precision Unit) (Steps, error) {
	if t.Unit == Step {
		return Steps(t.Value), nil
	}

	if !t.Unit.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidUnit, int32(t.Unit))
	}

	if !precision.IsMetric() {
		return 0, fmt.Errorf(
			"%w: precision %s is not a metric unit", ErrInvalidUnit, precision)
	}

	diff := int(t.Unit) - int(precision)
	if diff >= 0 {
		scale := pow10(diff)
		if t.Value != 0 && t.Value > maxUint64/scale {
			return 0, fmt.Errorf("%w: %s at precision %s",
				ErrStepOverflow, t, precision)
		}
		return Steps(t.Value * scale), nil
	}

	scale := pow10(-diff)
	if t.Value%scale != 0 {
		return 0, fmt.Errorf("%w: %s at precision %s",
			ErrNonIntegerDelay, t, precision)
	}
	return Steps(t.Value / scale), nil
}

// StepsIn rescales a step count to a view in the requested unit. The step
// count itself remains the single source of truth; coarsening truncates the
// returned view and never touches the underlying counter.
func StepsIn(steps Steps, precision Unit, unit Unit) (uint64, error) {
	if unit == Step {
		return uint64(steps), nil
	}

	if !unit.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidUnit, int32(unit))
	}

	if !precision.IsMetric() {
		return 0, fmt.Errorf(
			"%w: precision %s is not a metric unit", ErrInvalidUnit, precision)
	}

	diff := int(precision) - int(unit)
	if diff >= 0 {
		scale := pow10(diff)
		if steps != 0 && uint64(steps) > maxUint64/scale {
			return 0, fmt.Errorf("%w: %d steps viewed in %s",
				ErrStepOverflow, steps, unit)
		}
		return uint64(steps) * scale, nil
	}

	return uint64(steps) / pow10(-diff), nil
}

const maxUint64 = ^uint64(0)

func pow10(exp int) uint64 {
	p := uint64(1)
	for i := 0; i < exp; i++ {
		p *= 10
	}
	return p
}
