package scheduler

import (
	"fmt"

	"github.com/veritb/veritb/vtime"
)

// Clock returns a task function that drives a square wave on the signal
// with the given period. The signal is held low for the first half period,
// then high for the second, forever; stop the clock by cancelling its task.
func Clock(h *Handle, period uint64, unit vtime.Unit) TaskFunc {
	return func(ctx *Context) error {
		if period == 0 || period%2 != 0 {
			return fmt.Errorf(
				"clock period must be a positive even number, got %d %s",
				period, unit)
		}

		half := period / 2
		for {
			ctx.Set(h, 0)
			if _, err := ctx.Await(Timer(half, unit)); err != nil {
				return err
			}

			ctx.Set(h, 1)
			if _, err := ctx.Await(Timer(half, unit)); err != nil {
				return err
			}
		}
	}
}
