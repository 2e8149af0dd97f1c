package kernel

import (
	"fmt"
	"log"
	"sync"

	"github.com/veritb/veritb/hooking"
	"github.com/veritb/veritb/vtime"
)

// HookPosBeforeEvent triggers before the kernel delivers a callback.
var HookPosBeforeEvent = &hooking.HookPos{Name: "BeforeEvent"}

// HookPosAfterEvent triggers after the kernel delivered a callback.
var HookPosAfterEvent = &hooking.HookPos{Name: "AfterEvent"}

type signal struct {
	path  string
	width int
	value uint64
}

type valueWatch struct {
	tok       Token
	obj       ObjectID
	fn        ValueChangeFunc
	cancelled bool
}

// EventKernel is the in-process reference kernel. It delivers callbacks one
// at a time on the goroutine that calls Run, in strict (time, registration)
// order, with read-write phase callbacks sorted after all primary callbacks
// at the same timestep.
type EventKernel struct {
	*hooking.HookableBase

	precision vtime.Unit

	timeLock sync.RWMutex
	now      vtime.Steps

	queue          *futureEventQueue
	secondaryQueue *futureEventQueue
	seq            uint64

	nextToken Token
	timers    map[Token]*futureEvent
	watches   map[ObjectID][]*valueWatch
	watchTok  map[Token]*valueWatch

	signals   []*signal
	pathIndex map[string]ObjectID

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	singleRunLock sync.Mutex
}

// NewEventKernel creates an EventKernel whose step equals one unit of the
// given metric precision.
func NewEventKernel(precision vtime.Unit) *EventKernel {
	if !precision.IsMetric() {
		log.Panicf("kernel: precision must be a metric unit, got %s", precision)
	}

	return &EventKernel{
		HookableBase:   hooking.NewHookableBase(),
		precision:      precision,
		queue:          newFutureEventQueue(),
		secondaryQueue: newFutureEventQueue(),
		timers:         make(map[Token]*futureEvent),
		watches:        make(map[ObjectID][]*valueWatch),
		watchTok:       make(map[Token]*valueWatch),
		pathIndex:      make(map[string]ObjectID),
	}
}

// DefineSignal adds a signal to the session under a hierarchical path.
// Signals can only be defined while building the design, before Run.
func (k *EventKernel) DefineSignal(path string, width int) (ObjectID, error) {
	if path == "" {
		return 0, fmt.Errorf("kernel: signal path must be non-empty")
	}
	if width < 1 || width > 64 {
		return 0, fmt.Errorf("kernel: signal %q width %d out of range", path, width)
	}
	if _, exists := k.pathIndex[path]; exists {
		return 0, fmt.Errorf("kernel: signal %q already defined", path)
	}

	id := ObjectID(len(k.signals))
	k.signals = append(k.signals, &signal{path: path, width: width})
	k.pathIndex[path] = id
	return id, nil
}

// MustDefineSignal is DefineSignal that panics on error, for design setup.
func (k *EventKernel) MustDefineSignal(path string, width int) ObjectID {
	id, err := k.DefineSignal(path, width)
	if err != nil {
		log.Panic(err)
	}
	return id
}

// Lookup resolves a signal path to its object ID.
func (k *EventKernel) Lookup(path string) (ObjectID, error) {
	id, ok := k.pathIndex[path]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownObject, path)
	}
	return id, nil
}

// Width returns the bit width of a signal.
func (k *EventKernel) Width(obj ObjectID) (int, error) {
	sig, err := k.signalByID(obj)
	if err != nil {
		return 0, err
	}
	return sig.width, nil
}

// Read returns the current value of a signal.
func (k *EventKernel) Read(obj ObjectID) (uint64, error) {
	sig, err := k.signalByID(obj)
	if err != nil {
		return 0, err
	}
	return sig.value, nil
}

// Deposit drives a signal. A deposit that does not change the value delivers
// no notifications. Value-change callbacks are delivered as primary events at
// the current timestep, in the order the watches were registered.
func (k *EventKernel) Deposit(obj ObjectID, value uint64) error {
	sig, err := k.signalByID(obj)
	if err != nil {
		return err
	}

	masked := value & widthMask(sig.width)
	prev := sig.value
	if masked == prev {
		return nil
	}
	sig.value = masked

	for _, w := range k.watches[obj] {
		watch := w
		k.schedule(k.readNow(), false, func() {
			if watch.cancelled {
				return
			}
			watch.fn(prev, masked)
		})
	}

	return nil
}

// RegisterValueChange arms a watch on a signal.
func (k *EventKernel) RegisterValueChange(
	obj ObjectID,
	fn ValueChangeFunc,
) (Token, error) {
	if _, err := k.signalByID(obj); err != nil {
		return 0, err
	}

	k.nextToken++
	w := &valueWatch{tok: k.nextToken, obj: obj, fn: fn}
	k.watches[obj] = append(k.watches[obj], w)
	k.watchTok[w.tok] = w
	return w.tok, nil
}

// RegisterTimeDelay arms a one-shot callback delay steps in the future.
func (k *EventKernel) RegisterTimeDelay(
	delay vtime.Steps,
	fn TimeFunc,
) (Token, error) {
	k.nextToken++
	tok := k.nextToken

	evt := k.schedule(k.readNow()+delay, false, func() {
		delete(k.timers, tok)
		fn()
	})
	k.timers[tok] = evt
	return tok, nil
}

// RegisterReadWrite arms a one-shot callback for the read-write phase of the
// current timestep.
func (k *EventKernel) RegisterReadWrite(fn func()) error {
	k.schedule(k.readNow(), true, fn)
	return nil
}

// Cancel deregisters a pending callback.
func (k *EventKernel) Cancel(tok Token) error {
	if evt, ok := k.timers[tok]; ok {
		evt.cancelled = true
		delete(k.timers, tok)
		return nil
	}

	if w, ok := k.watchTok[tok]; ok {
		w.cancelled = true
		delete(k.watchTok, tok)
		k.removeWatch(w)
		return nil
	}

	return fmt.Errorf("%w: %d", ErrUnknownToken, tok)
}

func (k *EventKernel) removeWatch(w *valueWatch) {
	list := k.watches[w.obj]
	for i, candidate := range list {
		if candidate == w {
			k.watches[w.obj] = append(list[:i], list[i+1:]...)
			return
		}
	}
}

// CurrentTime returns the simulated time cursor in steps.
func (k *EventKernel) CurrentTime() vtime.Steps {
	return k.readNow()
}

// Precision returns the metric unit of one step.
func (k *EventKernel) Precision() vtime.Unit {
	return k.precision
}

// Run delivers all pending callbacks in time order until none remain.
func (k *EventKernel) Run() error {
	k.singleRunLock.Lock()
	defer k.singleRunLock.Unlock()

	for {
		if k.noMoreEvent() {
			return nil
		}

		k.pauseLock.Lock()

		evt := k.nextEvent()
		now := k.readNow()
		if evt.time < now {
			log.Panicf(
				"kernel: cannot deliver a callback in the past, evt @ %d, now %d",
				evt.time, now,
			)
		}
		k.writeNow(evt.time)

		if evt.cancelled {
			k.pauseLock.Unlock()
			continue
		}

		hookCtx := hooking.HookCtx{
			Domain: k,
			Pos:    HookPosBeforeEvent,
			Item:   evt.time,
		}
		k.InvokeHook(hookCtx)

		evt.fn()

		hookCtx.Pos = HookPosAfterEvent
		k.InvokeHook(hookCtx)

		k.pauseLock.Unlock()
	}
}

// Pause prevents the kernel from delivering more callbacks until Continue.
// Pause must not be called from inside a callback.
func (k *EventKernel) Pause() {
	k.isPausedLock.Lock()
	defer k.isPausedLock.Unlock()

	if k.isPaused {
		return
	}

	k.pauseLock.Lock()
	k.isPaused = true
}

// Continue resumes callback delivery after a Pause.
func (k *EventKernel) Continue() {
	k.isPausedLock.Lock()
	defer k.isPausedLock.Unlock()

	if !k.isPaused {
		return
	}

	k.pauseLock.Unlock()
	k.isPaused = false
}

func (k *EventKernel) schedule(
	t vtime.Steps,
	secondary bool,
	fn func(),
) *futureEvent {
	k.seq++
	evt := &futureEvent{time: t, seq: k.seq, fn: fn}
	if secondary {
		k.secondaryQueue.Push(evt)
	} else {
		k.queue.Push(evt)
	}
	return evt
}

func (k *EventKernel) noMoreEvent() bool {
	return k.queue.Len() == 0 && k.secondaryQueue.Len() == 0
}

func (k *EventKernel) nextEvent() *futureEvent {
	if k.queue.Len() == 0 {
		return k.secondaryQueue.Pop()
	}

	if k.secondaryQueue.Len() == 0 {
		return k.queue.Pop()
	}

	primary := k.queue.Peek()
	secondary := k.secondaryQueue.Peek()

	if primary.time <= secondary.time {
		return k.queue.Pop()
	}
	return k.secondaryQueue.Pop()
}

func (k *EventKernel) readNow() vtime.Steps {
	k.timeLock.RLock()
	t := k.now
	k.timeLock.RUnlock()
	return t
}

func (k *EventKernel) writeNow(t vtime.Steps) {
	k.timeLock.Lock()
	k.now = t
	k.timeLock.Unlock()
}

func (k *EventKernel) signalByID(obj ObjectID) (*signal, error) {
	if obj < 0 || int(obj) >= len(k.signals) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownObject, obj)
	}
	return k.signals[obj], nil
}

func widthMask(width int) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

var _ Kernel = (*EventKernel)(nil)
var _ EventLoop = (*EventKernel)(nil)
