package event

// An event represents some kind of action applied to a node at a point in
// virtual time. Events carry the information to execute themselves on some
// generic node.
type Event interface {
	// A method executing the event on the target node.
	// Returns an error if the node can not handle this kind of event.
	Execute(node any) error

	// The id of the target node, i.e. the node whose state will be changed by the event executing.
	Target() int

	// A short human readable description used in traces and logs.
	String() string
}

// An event that is used to represent some kind of message between two nodes.
type MessageEvent interface {
	Event

	// Returns the id of the node receiving the event
	To() int
	// Returns the id of the node transmitting the event
	From() int
}

// Implemented by nodes that handle the expiry of their round timer.
type TimerHandler interface {
	HandleTimer()
}

// Implemented by nodes that handle delivered messages.
// from is the id of the transmitting neighbor, which under flooding may
// differ from the node that originally created the payload.
type MessageHandler interface {
	HandleMessage(from int, payload any)
}
