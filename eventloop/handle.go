package eventloop

import (
	"container/heap"
	"time"
)

// Handle refers to a callback scheduled with CallSoon.
type Handle struct {
	fn       func()
	canceled bool
}

// Cancel prevents the callback from running if it has not run yet.
func (h *Handle) Cancel() {
	h.canceled = true
	h.fn = nil
}

func (h *Handle) Canceled() bool {
	return h.canceled
}

// TimerHandle refers to a callback scheduled with CallLater or CallAt.
type TimerHandle struct {
	Handle

	at  time.Time
	seq uint64
}

// When returns the time the timer is scheduled to fire.
func (h *TimerHandle) When() time.Time {
	return h.at
}

// timerQueue is a min-heap of timers ordered by deadline, ties broken by
// arming order. Canceled timers are discarded lazily on peek.
type timerQueue struct {
	heap timerHeap
}

func (q *timerQueue) push(h *TimerHandle) {
	heap.Push(&q.heap, h)
}

// peek returns the next live timer without removing it, discarding canceled
// entries along the way.
func (q *timerQueue) peek() *TimerHandle {
	for len(q.heap) > 0 {
		h := q.heap[0]
		if !h.canceled {
			return h
		}
		heap.Pop(&q.heap)
	}

	return nil
}

func (q *timerQueue) pop() *TimerHandle {
	if q.peek() == nil {
		return nil
	}

	return heap.Pop(&q.heap).(*TimerHandle)
}

type timerHeap []*TimerHandle

func (h timerHeap) Len() int { return len(h) }

func (h timerHeap) Less(i, j int) bool {
	if h[i].at.Equal(h[j].at) {
		return h[i].seq < h[j].seq
	}
	return h[i].at.Before(h[j].at)
}

func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *timerHeap) Push(x any) {
	*h = append(*h, x.(*TimerHandle))
}

func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}
