package kernel

import (
	"container/heap"
	"sync"

	"github.com/veritb/veritb/vtime"
)

// futureEvent is one pending callback delivery. seq preserves registration
// order so that deliveries at the same timestep are FIFO.
type futureEvent struct {
	time      vtime.Steps
	seq       uint64
	cancelled bool
	fn        func()
}

type futureEventQueue struct {
	sync.Mutex
	events futureEventHeap
}

func newFutureEventQueue() *futureEventQueue {
	q := &futureEventQueue{}
	q.events = make([]*futureEvent, 0)
	heap.Init(&q.events)
	return q
}

func (q *futureEventQueue) Push(evt *futureEvent) {
	q.Lock()
	heap.Push(&q.events, evt)
	q.Unlock()
}

func (q *futureEventQueue) Pop() *futureEvent {
	q.Lock()
	defer q.Unlock()
	if q.events.Len() == 0 {
		return nil
	}
	return heap.Pop(&q.events).(*futureEvent)
}

func (q *futureEventQueue) Len() int {
	q.Lock()
	defer q.Unlock()
	return q.events.Len()
}

func (q *futureEventQueue) Peek() *futureEvent {
	q.Lock()
	defer q.Unlock()
	if q.events.Len() == 0 {
		return nil
	}
	return q.events[0]
}

type futureEventHeap []*futureEvent

func (h futureEventHeap) Len() int { return len(h) }

func (h futureEventHeap) Less(i, j int) bool {
	if h[i].time != h[j].time {
		return h[i].time < h[j].time
	}
	return h[i].seq < h[j].seq
}

func (h futureEventHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *futureEventHeap) Push(x any) {
	evt := x.(*futureEvent)
	*h = append(*h, evt)
}

func (h *futureEventHeap) Pop() any {
	old := *h
	n := len(old)
	evt := old[n-1]
	*h = old[:n-1]
	return evt
}
