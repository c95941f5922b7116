package scheduler

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"golang.org/x/exp/slices"

	"electsim/event"
)

type MockEvent struct {
	id     int
	target int
}

func (me MockEvent) Execute(_ any) error {
	return nil
}

func (me MockEvent) Target() int {
	return me.target
}

func (me MockEvent) String() string {
	return fmt.Sprintf("{Mock Id: %v}", me.id)
}

// Creates an executor that appends the id of every dispatched event to dst
func collect(dst *[]int) Executor {
	return func(evt event.Event) error {
		*dst = append(*dst, evt.(MockEvent).id)
		return nil
	}
}

func TestDispatchInTimestampOrder(t *testing.T) {
	got := []int{}
	eq := NewEventQueue(collect(&got))
	eq.ScheduleAfter(30*time.Millisecond, MockEvent{id: 3})
	eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 1})
	eq.ScheduleAfter(20*time.Millisecond, MockEvent{id: 2})

	err := eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want := []int{1, 2, 3}
	if !slices.Equal(got, want) {
		t.Errorf("Expected events in timestamp order %v. Got: %v", want, got)
	}
	if eq.Now() != 30*time.Millisecond {
		t.Errorf("Expected the clock to advance to the last timestamp. Got: %v", eq.Now())
	}
	if eq.Dispatched() != 3 {
		t.Errorf("Expected 3 dispatched events. Got: %v", eq.Dispatched())
	}
}

func TestDispatchFifoAtEqualTimestamps(t *testing.T) {
	got := []int{}
	eq := NewEventQueue(collect(&got))
	for i := 0; i < 10; i++ {
		eq.ScheduleAfter(5*time.Millisecond, MockEvent{id: i})
	}

	err := eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	for i := 0; i < 10; i++ {
		if got[i] != i {
			t.Errorf("Expected events at the same timestamp in insertion order. Got: %v", got)
			break
		}
	}
}

func TestNegativeDelayDispatchesImmediately(t *testing.T) {
	got := []int{}
	eq := NewEventQueue(collect(&got))
	eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 2})
	eq.ScheduleAfter(-5*time.Millisecond, MockEvent{id: 1})

	err := eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want := []int{1, 2}
	if !slices.Equal(got, want) {
		t.Errorf("Expected the negative delay to be clamped to zero. Got: %v", got)
	}
}

func TestCancelPendingEntry(t *testing.T) {
	got := []int{}
	eq := NewEventQueue(collect(&got))
	h := eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 1})
	eq.ScheduleAfter(20*time.Millisecond, MockEvent{id: 2})
	eq.Cancel(h)

	err := eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want := []int{2}
	if !slices.Equal(got, want) {
		t.Errorf("Expected the cancelled event to be skipped. Got: %v", got)
	}
}

func TestCancelDispatchedEntryIsNoop(t *testing.T) {
	got := []int{}
	eq := NewEventQueue(collect(&got))
	h := eq.ScheduleAfter(0, MockEvent{id: 1})
	eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 2})

	ok, err := eq.Step()
	if !ok || err != nil {
		t.Errorf("Expected the first step to dispatch an event. Got: ok=%v err=%v", ok, err)
	}

	// The handle now refers to a dispatched entry
	eq.Cancel(h)
	eq.Cancel(h)
	eq.Cancel(nil)

	err = eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want := []int{1, 2}
	if !slices.Equal(got, want) {
		t.Errorf("Expected both events to dispatch. Got: %v", got)
	}
}

func TestStepOnEmptyQueue(t *testing.T) {
	eq := NewEventQueue(collect(&[]int{}))
	ok, err := eq.Step()
	if ok {
		t.Errorf("Expected no event to be dispatched from an empty queue")
	}
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
}

func TestRunUntilLeavesLaterEventsPending(t *testing.T) {
	got := []int{}
	eq := NewEventQueue(collect(&got))
	eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 1})
	eq.ScheduleAfter(20*time.Millisecond, MockEvent{id: 2})
	eq.ScheduleAfter(30*time.Millisecond, MockEvent{id: 3})

	err := eq.RunUntil(20 * time.Millisecond)
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want := []int{1, 2}
	if !slices.Equal(got, want) {
		t.Errorf("Expected only events up to the deadline to dispatch. Got: %v", got)
	}
	if eq.Len() != 1 {
		t.Errorf("Expected one pending event after the deadline. Got: %v", eq.Len())
	}
	if eq.Now() != 20*time.Millisecond {
		t.Errorf("Expected the clock to stop at the deadline. Got: %v", eq.Now())
	}

	// The drain can be resumed
	err = eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want = []int{1, 2, 3}
	if !slices.Equal(got, want) {
		t.Errorf("Expected the remaining event to dispatch. Got: %v", got)
	}
}

func TestExecutorErrorStopsDrain(t *testing.T) {
	dispatchError := errors.New("dispatch failed")
	eq := NewEventQueue(func(evt event.Event) error {
		if evt.(MockEvent).id == 2 {
			return dispatchError
		}
		return nil
	})
	eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 1})
	eq.ScheduleAfter(20*time.Millisecond, MockEvent{id: 2})
	eq.ScheduleAfter(30*time.Millisecond, MockEvent{id: 3})

	err := eq.RunUntilEmpty()
	if !errors.Is(err, dispatchError) {
		t.Errorf("Expected the executor error to propagate. Got: %v", err)
	}
	if eq.Len() != 1 {
		t.Errorf("Expected the remaining event to stay scheduled. Got: %v", eq.Len())
	}
	if eq.Dispatched() != 2 {
		t.Errorf("Expected 2 dispatched events. Got: %v", eq.Dispatched())
	}
}

func TestScheduleDuringDispatch(t *testing.T) {
	// A dispatched event schedules a follow up relative to the advanced clock
	var eq *EventQueue
	got := []time.Duration{}
	eq = NewEventQueue(func(evt event.Event) error {
		got = append(got, eq.Now())
		if evt.(MockEvent).id == 1 {
			eq.ScheduleAfter(5*time.Millisecond, MockEvent{id: 2})
		}
		return nil
	})
	eq.ScheduleAfter(10*time.Millisecond, MockEvent{id: 1})

	err := eq.RunUntilEmpty()
	if err != nil {
		t.Errorf("Did not expect to receive an error. Got: %v", err)
	}
	want := []time.Duration{10 * time.Millisecond, 15 * time.Millisecond}
	if !slices.Equal(got, want) {
		t.Errorf("Expected dispatch times %v. Got: %v", want, got)
	}
}
