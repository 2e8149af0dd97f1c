package scheduler

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/vtime"
)

var _ = ginkgo.Describe("Scheduler", func() {
	var (
		k *kernel.EventKernel
		s *Scheduler
	)

	ginkgo.BeforeEach(func() {
		k = kernel.NewEventKernel(vtime.Ps)
		s = New(k)
	})

	ginkgo.It("should advance time by the exact sum of awaited delays", func() {
		var end uint64

		s.Spawn("stimulus", func(ctx *Context) error {
			if _, err := ctx.Await(Timer(10, vtime.Ns)); err != nil {
				return err
			}
			if _, err := ctx.Await(Timer(5, vtime.Ns)); err != nil {
				return err
			}

			var err error
			end, err = ctx.SimTime(vtime.Ns)
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(end).To(gomega.Equal(uint64(15)))
	})

	ginkgo.It("should report a non-integer delay before suspending", func() {
		var awaitErr error

		s.Spawn("bad_delay", func(ctx *Context) error {
			_, awaitErr = ctx.Await(Timer(1, vtime.Fs))
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(errors.Is(awaitErr, vtime.ErrNonIntegerDelay)).
			To(gomega.BeTrue())
	})

	ginkgo.It("should refuse to await a consumed trigger again", func() {
		var awaitErr error

		s.Spawn("reuse", func(ctx *Context) error {
			tr := Timer(1, vtime.Ns)
			if _, err := ctx.Await(tr); err != nil {
				return err
			}
			_, awaitErr = ctx.Await(tr)
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(errors.Is(awaitErr, ErrDoubleArm)).To(gomega.BeTrue())
	})

	ginkgo.It("should resolve FirstOf on the earliest condition", func() {
		k.MustDefineSignal("dut.irq", 1)
		timeout := Timer(5, vtime.Ns)
		var firing *Firing
		var at uint64

		s.Spawn("race", func(ctx *Context) error {
			irq, err := ctx.Resolve("dut.irq")
			if err != nil {
				return err
			}

			firing, err = ctx.Await(FirstOf(timeout, Rising(irq)))
			if err != nil {
				return err
			}

			at, err = ctx.SimTime(vtime.Ns)
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(firing.Cause).To(gomega.BeIdenticalTo(timeout))
		gomega.Expect(at).To(gomega.Equal(uint64(5)))
	})

	ginkgo.It("should resolve AllOf once when both land together", func() {
		var at uint64

		s.Spawn("barrier", func(ctx *Context) error {
			_, err := ctx.Await(AllOf(
				Timer(5, vtime.Ns), Timer(5, vtime.Ns)))
			if err != nil {
				return err
			}

			at, err = ctx.SimTime(vtime.Ns)
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(at).To(gomega.Equal(uint64(5)))
	})

	ginkgo.It("should resolve AllOf at the latest condition", func() {
		var at uint64

		s.Spawn("barrier", func(ctx *Context) error {
			_, err := ctx.Await(AllOf(
				Timer(10, vtime.Ns), Timer(2, vtime.Ns)))
			if err != nil {
				return err
			}

			at, err = ctx.SimTime(vtime.Ns)
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(at).To(gomega.Equal(uint64(10)))
	})

	ginkgo.It("should wake same-edge waiters in await order", func() {
		k.MustDefineSignal("dut.clk", 1)
		var order []string

		await := func(name string) TaskFunc {
			return func(ctx *Context) error {
				clk, err := ctx.Resolve("dut.clk")
				if err != nil {
					return err
				}
				if _, err := ctx.Await(Rising(clk)); err != nil {
					return err
				}
				order = append(order, name)
				return nil
			}
		}

		s.Spawn("x", await("x"))
		s.Spawn("y", await("y"))
		s.Spawn("driver", func(ctx *Context) error {
			clk, err := ctx.Resolve("dut.clk")
			if err != nil {
				return err
			}
			if _, err := ctx.Await(Timer(1, vtime.Ns)); err != nil {
				return err
			}
			ctx.Set(clk, 1)
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(order).To(gomega.Equal([]string{"x", "y"}))
	})

	ginkgo.It("should make queued writes visible after the next delay", func() {
		obj := k.MustDefineSignal("dut.data", 8)
		var seen uint64

		s.Spawn("writer", func(ctx *Context) error {
			data, err := ctx.Resolve("dut.data")
			if err != nil {
				return err
			}

			ctx.Set(data, 42)
			if _, err := ctx.Await(Timer(1, vtime.Ns)); err != nil {
				return err
			}

			seen, err = ctx.Read(data)
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(seen).To(gomega.Equal(uint64(42)))

		v, err := k.Read(obj)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(v).To(gomega.Equal(uint64(42)))
	})

	ginkgo.It("should disarm a cancelled task's callbacks", func() {
		k.MustDefineSignal("dut.clk", 1)
		var child *Task

		s.Spawn("parent", func(ctx *Context) error {
			clk, err := ctx.Resolve("dut.clk")
			if err != nil {
				return err
			}

			child = ctx.Spawn("edge_waiter", func(ctx *Context) error {
				_, err := ctx.Await(Rising(clk))
				return err
			})

			if _, err := ctx.Await(Timer(2, vtime.Ns)); err != nil {
				return err
			}
			ctx.Cancel(child)

			if _, err := ctx.Await(Timer(2, vtime.Ns)); err != nil {
				return err
			}
			ctx.Set(clk, 1)
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(child.State()).To(gomega.Equal(TaskCancelled))
		gomega.Expect(errors.Is(child.Err(), ErrTaskCancelled)).To(gomega.BeTrue())
	})

	ginkgo.It("should abort the run on an unobserved failure", func() {
		errBoom := errors.New("scoreboard mismatch")

		t := s.Spawn("checker", func(ctx *Context) error {
			if _, err := ctx.Await(Timer(3, vtime.Ns)); err != nil {
				return err
			}
			return errBoom
		})

		err := s.RunUntilIdle()

		gomega.Expect(errors.Is(err, errBoom)).To(gomega.BeTrue())
		gomega.Expect(t.State()).To(gomega.Equal(TaskFailed))

		var failure *TaskFailure
		gomega.Expect(errors.As(err, &failure)).To(gomega.BeTrue())
		gomega.Expect(failure.TaskName).To(gomega.Equal("checker"))
	})

	ginkgo.It("should hand a joined child's failure to the parent", func() {
		errBoom := errors.New("protocol violation")
		var joinErr error

		s.Spawn("parent", func(ctx *Context) error {
			child := ctx.Spawn("child", func(ctx *Context) error {
				if _, err := ctx.Await(Timer(1, vtime.Ns)); err != nil {
					return err
				}
				return errBoom
			})

			joinErr = ctx.Join(child)
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(errors.Is(joinErr, errBoom)).To(gomega.BeTrue())
	})

	ginkgo.It("should join a child that already finished", func() {
		var joinErr error = errors.New("not joined")

		s.Spawn("parent", func(ctx *Context) error {
			child := ctx.Spawn("child", func(ctx *Context) error {
				return nil
			})

			if _, err := ctx.Await(Timer(5, vtime.Ns)); err != nil {
				return err
			}

			joinErr = ctx.Join(child)
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(joinErr).To(gomega.BeNil())
	})

	ginkgo.It("should cancel remaining children when the parent finishes", func() {
		var child *Task

		s.Spawn("parent", func(ctx *Context) error {
			child = ctx.Spawn("forever", func(ctx *Context) error {
				_, err := ctx.Await(Timer(1000, vtime.Ns))
				return err
			})
			_, err := ctx.Await(Timer(1, vtime.Ns))
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(child.State()).To(gomega.Equal(TaskCancelled))
	})

	ginkgo.It("should cancel stranded tasks on shutdown", func() {
		k.MustDefineSignal("dut.never", 1)

		t := s.Spawn("stranded", func(ctx *Context) error {
			sig, err := ctx.Resolve("dut.never")
			if err != nil {
				return err
			}
			_, err = ctx.Await(Rising(sig))
			return err
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(t.State()).To(gomega.Equal(TaskSuspended))

		s.Shutdown()
		gomega.Expect(t.State()).To(gomega.Equal(TaskCancelled))
	})
})

var _ = ginkgo.Describe("Clock", func() {
	ginkgo.It("should produce rising edges at half-period intervals", func() {
		k := kernel.NewEventKernel(vtime.Ps)
		s := New(k)
		k.MustDefineSignal("dut.clk", 1)

		var clockTask *Task
		var edges []uint64

		s.Spawn("clock_setup", func(ctx *Context) error {
			clk, err := ctx.Resolve("dut.clk")
			if err != nil {
				return err
			}
			clockTask = ctx.Spawn("clk_gen", Clock(clk, 10, vtime.Ns))

			for i := 0; i < 2; i++ {
				if _, err := ctx.Await(Rising(clk)); err != nil {
					return err
				}
				at, err := ctx.SimTime(vtime.Ns)
				if err != nil {
					return err
				}
				edges = append(edges, at)
			}

			ctx.Cancel(clockTask)
			return nil
		})

		gomega.Expect(s.RunUntilIdle()).To(gomega.Succeed())
		gomega.Expect(edges).To(gomega.Equal([]uint64{5, 15}))
		gomega.Expect(clockTask.State()).To(gomega.Equal(TaskCancelled))
	})

	ginkgo.It("should reject an odd period", func() {
		k := kernel.NewEventKernel(vtime.Ns)
		s := New(k)
		k.MustDefineSignal("dut.clk", 1)

		clk, err := Resolve(k, "dut.clk")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())

		s.Spawn("clk_gen", Clock(clk, 7, vtime.Ns))

		err = s.RunUntilIdle()
		gomega.Expect(err).To(gomega.HaveOccurred())
		gomega.Expect(err.Error()).To(gomega.ContainSubstring("even"))
	})
})
