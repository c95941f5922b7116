package scheduler

import (
	"container/heap"
	"time"

	"electsim/event"
)

// An Executor applies a dispatched event to its target node.
// The driver provides one when constructing the queue. Any non-nil error
// stops the current drain and is propagated to the caller.
type Executor func(evt event.Event) error

// EventQueue orders scheduled events by virtual timestamp and dispatches
// them through the executor.
//
// Virtual time is a duration measured from the start of the run. It advances
// to the timestamp of each dispatched event and never goes backwards. Events
// scheduled for the same instant are dispatched in insertion order, so a
// fixed insertion sequence always produces the same trace.
type EventQueue struct {
	exec Executor

	now        time.Duration
	seq        uint64
	dispatched int

	entries entryHeap
}

// A Handle identifies a scheduled entry so it can be cancelled.
type Handle struct {
	entry *entry
}

type entry struct {
	at  time.Duration
	seq uint64
	evt event.Event

	// Index in the heap, -1 once dispatched or cancelled.
	index int
}

// Creates an EventQueue that hands dispatched events to exec.
func NewEventQueue(exec Executor) *EventQueue {
	return &EventQueue{
		exec:    exec,
		entries: make(entryHeap, 0),
	}
}

// ScheduleAfter enqueues evt to be dispatched delay after the current
// virtual time. A negative delay is treated as zero. The returned handle can
// be passed to Cancel.
func (eq *EventQueue) ScheduleAfter(delay time.Duration, evt event.Event) *Handle {
	if delay < 0 {
		delay = 0
	}
	e := &entry{
		at:  eq.now + delay,
		seq: eq.seq,
		evt: evt,
	}
	eq.seq++
	heap.Push(&eq.entries, e)
	return &Handle{entry: e}
}

// Cancel removes a scheduled entry from the queue.
// Cancelling a nil handle or an entry that has already been dispatched or
// cancelled is a no-op.
func (eq *EventQueue) Cancel(h *Handle) {
	if h == nil || h.entry == nil || h.entry.index < 0 {
		return
	}
	heap.Remove(&eq.entries, h.entry.index)
}

// Step dispatches the next pending event, advancing the virtual clock to its
// timestamp. Reports false when the queue is empty.
func (eq *EventQueue) Step() (bool, error) {
	if eq.entries.Len() == 0 {
		return false, nil
	}
	e := heap.Pop(&eq.entries).(*entry)
	eq.now = e.at
	eq.dispatched++
	return true, eq.exec(e.evt)
}

// RunUntilEmpty dispatches events in timestamp order until the queue drains.
// Stops at the first executor error and returns it; the remaining events
// stay scheduled.
func (eq *EventQueue) RunUntilEmpty() error {
	for {
		ok, err := eq.Step()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
	}
}

// RunUntil dispatches events whose timestamp does not exceed deadline.
// Later events stay scheduled, so the drain can be resumed.
func (eq *EventQueue) RunUntil(deadline time.Duration) error {
	for eq.entries.Len() > 0 && eq.entries[0].at <= deadline {
		if _, err := eq.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Now returns the timestamp of the most recently dispatched event.
func (eq *EventQueue) Now() time.Duration {
	return eq.now
}

// Len returns the number of pending events.
func (eq *EventQueue) Len() int {
	return eq.entries.Len()
}

// Dispatched returns the number of events dispatched so far.
func (eq *EventQueue) Dispatched() int {
	return eq.dispatched
}

type entryHeap []*entry

func (h entryHeap) Len() int {
	return len(h)
}

func (h entryHeap) Less(i, j int) bool {
	if h[i].at == h[j].at {
		return h[i].seq < h[j].seq
	}
	return h[i].at < h[j].at
}

func (h entryHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *entryHeap) Push(x any) {
	e := x.(*entry)
	e.index = len(*h)
	*h = append(*h, e)
}

func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*h = old[:n-1]
	return e
}
