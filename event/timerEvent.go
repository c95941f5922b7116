package event

import (
	"fmt"
)

// An event representing the expiry of a node's round timer.
// It is the unit the election protocols use to drive their rounds forward;
// rescheduling is done by the node runtime, not by the event itself.
type TimerEvent struct {
	target int
}

func NewTimerEvent(target int) TimerEvent {
	return TimerEvent{
		target: target,
	}
}

func (te TimerEvent) String() string {
	return fmt.Sprintf("{Timer Target: %v}", te.target)
}

// Calls the timer handler of the target node.
func (te TimerEvent) Execute(node any) error {
	n, ok := node.(TimerHandler)
	if !ok {
		return fmt.Errorf("event: node %d does not handle timers", te.target)
	}
	n.HandleTimer()
	return nil
}

func (te TimerEvent) Target() int {
	return te.target
}
