package event

import (
	"fmt"
)

// An event representing the arrival of a message on a node.
//
// Does not incorporate any message passing mechanisms, instead it calls the
// message handler of the target node with the transmitting neighbor and the
// payload. The payload carries the original sender itself, so from is the
// link the message arrived on rather than necessarily its origin.
type DeliveryEvent struct {
	from    int
	to      int
	payload any
}

// Creates a DeliveryEvent.
//
// from is the id of the transmitting node, to is the id of the receiving
// node and payload is the message value handed to the receiver untouched.
func NewDeliveryEvent(from, to int, payload any) DeliveryEvent {
	return DeliveryEvent{
		from:    from,
		to:      to,
		payload: payload,
	}
}

func (de DeliveryEvent) String() string {
	return fmt.Sprintf("{Deliver From: %v, To: %v, Payload: %v}", de.from, de.to, de.payload)
}

// Calls the message handler of the target node.
func (de DeliveryEvent) Execute(node any) error {
	n, ok := node.(MessageHandler)
	if !ok {
		return fmt.Errorf("event: node %d does not handle messages", de.to)
	}
	n.HandleMessage(de.from, de.payload)
	return nil
}

func (de DeliveryEvent) Target() int {
	return de.to
}

// The id of the node the message is sent to
func (de DeliveryEvent) To() int {
	return de.to
}

// The id of the node the message arrived from
func (de DeliveryEvent) From() int {
	return de.from
}

// Returns the message value carried by the event.
func (de DeliveryEvent) Payload() any {
	return de.payload
}
