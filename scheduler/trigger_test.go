package scheduler

import (
	"errors"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/veritb/veritb/kernel"
	"github.com/veritb/veritb/vtime"
)

var _ = ginkgo.Describe("TimerTrigger", func() {
	var (
		mockCtrl *gomock.Controller
		k        *MockKernel
		s        *Scheduler
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		k = NewMockKernel(mockCtrl)
		s = New(k)
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should convert the delay at the kernel precision", func() {
		k.EXPECT().Precision().Return(vtime.Ps)

		tr := Timer(2, vtime.Ns)
		err := tr.validate(k)

		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		gomega.Expect(tr.steps).To(gomega.Equal(vtime.Steps(2000)))
	})

	ginkgo.It("should reject a delay that is not a whole number of steps", func() {
		k.EXPECT().Precision().Return(vtime.Ps)

		tr := Timer(1, vtime.Fs)
		err := tr.validate(k)

		gomega.Expect(errors.Is(err, vtime.ErrNonIntegerDelay)).To(gomega.BeTrue())
	})

	ginkgo.It("should arm at an absolute deadline and fire once", func() {
		var armedFn kernel.TimeFunc
		k.EXPECT().Precision().Return(vtime.Ps)
		k.EXPECT().CurrentTime().Return(vtime.Steps(100))
		k.EXPECT().
			RegisterTimeDelay(vtime.Steps(2000), gomock.Any()).
			DoAndReturn(func(
				_ vtime.Steps,
				fn kernel.TimeFunc,
			) (kernel.Token, error) {
				armedFn = fn
				return kernel.Token(1), nil
			})

		tr := Timer(2, vtime.Ns)
		gomega.Expect(tr.validate(k)).To(gomega.Succeed())

		var cause Trigger
		gomega.Expect(tr.arm(s, func(c Trigger) { cause = c })).To(gomega.Succeed())
		gomega.Expect(tr.Deadline()).To(gomega.Equal(vtime.Steps(2100)))

		armedFn()
		gomega.Expect(cause).To(gomega.BeIdenticalTo(tr))
	})

	ginkgo.It("should refuse to arm twice", func() {
		k.EXPECT().CurrentTime().Return(vtime.Steps(0))
		k.EXPECT().
			RegisterTimeDelay(gomock.Any(), gomock.Any()).
			Return(kernel.Token(1), nil)

		tr := Timer(5, vtime.Step)
		tr.steps = 5

		gomega.Expect(tr.arm(s, func(Trigger) {})).To(gomega.Succeed())
		err := tr.arm(s, func(Trigger) {})

		gomega.Expect(errors.Is(err, ErrDoubleArm)).To(gomega.BeTrue())
	})

	ginkgo.It("should reject a deadline that overflows", func() {
		k.EXPECT().CurrentTime().Return(^vtime.Steps(0) - 1)

		tr := Timer(5, vtime.Step)
		tr.steps = 5

		err := tr.arm(s, func(Trigger) {})

		gomega.Expect(errors.Is(err, vtime.ErrStepOverflow)).
			To(gomega.BeTrue())
	})
})

var _ = ginkgo.Describe("EdgeTrigger", func() {
	var (
		mockCtrl *gomock.Controller
		k        *MockKernel
		s        *Scheduler
		h        *Handle
		watch    kernel.ValueChangeFunc
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		k = NewMockKernel(mockCtrl)
		s = New(k)
		h = &Handle{k: k, obj: 3, path: "dut.clk", width: 1}

		k.EXPECT().
			RegisterValueChange(kernel.ObjectID(3), gomock.Any()).
			DoAndReturn(func(
				_ kernel.ObjectID,
				fn kernel.ValueChangeFunc,
			) (kernel.Token, error) {
				watch = fn
				return kernel.Token(7), nil
			}).
			AnyTimes()
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should stay armed across non-matching transitions", func() {
		tr := Falling(h)
		fireCount := 0

		gomega.Expect(tr.arm(s, func(Trigger) { fireCount++ })).To(gomega.Succeed())

		watch(0, 1)
		gomega.Expect(fireCount).To(gomega.Equal(0))

		k.EXPECT().Cancel(kernel.Token(7)).Return(nil)
		watch(1, 0)
		gomega.Expect(fireCount).To(gomega.Equal(1))
	})

	ginkgo.It("should cancel the native callback when disarmed", func() {
		tr := Rising(h)
		gomega.Expect(tr.arm(s, func(Trigger) {})).To(gomega.Succeed())

		k.EXPECT().Cancel(kernel.Token(7)).Return(nil)
		tr.disarm(s)

		// A consumed trigger ignores further disarms.
		tr.disarm(s)
	})
})

var _ = ginkgo.Describe("FirstOf", func() {
	var (
		mockCtrl *gomock.Controller
		k        *MockKernel
		s        *Scheduler
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		k = NewMockKernel(mockCtrl)
		s = New(k)
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should fire first and disarm the losing siblings", func() {
		fns := make(map[vtime.Steps]kernel.TimeFunc)
		k.EXPECT().CurrentTime().Return(vtime.Steps(0)).Times(2)
		k.EXPECT().
			RegisterTimeDelay(gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				d vtime.Steps,
				fn kernel.TimeFunc,
			) (kernel.Token, error) {
				fns[d] = fn
				return kernel.Token(d), nil
			}).
			Times(2)

		fast := Timer(5, vtime.Step)
		slow := Timer(10, vtime.Step)
		fast.steps, slow.steps = 5, 10
		tr := FirstOf(fast, slow)

		var cause Trigger
		gomega.Expect(tr.arm(s, func(c Trigger) { cause = c })).To(gomega.Succeed())

		k.EXPECT().Cancel(kernel.Token(10)).Return(nil)
		fns[5]()

		gomega.Expect(cause).To(gomega.BeIdenticalTo(fast))
	})

	ginkgo.It("should reject an empty combination", func() {
		gomega.Expect(FirstOf().validate(k)).ToNot(gomega.Succeed())
	})
})

var _ = ginkgo.Describe("AllOf", func() {
	var (
		mockCtrl *gomock.Controller
		k        *MockKernel
		s        *Scheduler
	)

	ginkgo.BeforeEach(func() {
		mockCtrl = gomock.NewController(ginkgo.GinkgoT())
		k = NewMockKernel(mockCtrl)
		s = New(k)
	})

	ginkgo.AfterEach(func() {
		mockCtrl.Finish()
	})

	ginkgo.It("should fire only after every sub-trigger fired", func() {
		fns := make(map[vtime.Steps]kernel.TimeFunc)
		k.EXPECT().CurrentTime().Return(vtime.Steps(0)).Times(2)
		k.EXPECT().
			RegisterTimeDelay(gomock.Any(), gomock.Any()).
			DoAndReturn(func(
				d vtime.Steps,
				fn kernel.TimeFunc,
			) (kernel.Token, error) {
				fns[d] = fn
				return kernel.Token(d), nil
			}).
			Times(2)

		a := Timer(5, vtime.Step)
		b := Timer(10, vtime.Step)
		a.steps, b.steps = 5, 10
		tr := AllOf(a, b)

		fireCount := 0
		gomega.Expect(tr.arm(s, func(Trigger) { fireCount++ })).To(gomega.Succeed())

		fns[10]()
		gomega.Expect(fireCount).To(gomega.Equal(0))

		fns[5]()
		gomega.Expect(fireCount).To(gomega.Equal(1))
	})
})
