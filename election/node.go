package election

import (
	"time"

	"go.uber.org/zap"

	"electsim/event"
	"electsim/scheduler"
	"electsim/topology"
)

// A Node is the runtime a protocol instance runs on. It owns the messaging
// primitives, the round timer and the cumulative traffic counters; all
// protocol state lives in the attached Protocol.
type Node struct {
	id    int
	topo  *topology.Topology
	queue *scheduler.EventQueue

	analyzer Analyzer
	log      *zap.Logger

	proto Protocol
	timer *scheduler.Handle

	linkDelay time.Duration

	sent     int
	received int
}

// Creates a Node. The protocol is attached separately since protocol
// constructors need the node first. A nil logger is replaced with a no-op
// logger and a nil analyzer with NopAnalyzer.
func NewNode(id int, topo *topology.Topology, queue *scheduler.EventQueue, analyzer Analyzer, linkDelay time.Duration, log *zap.Logger) *Node {
	if log == nil {
		log = zap.NewNop()
	}
	if analyzer == nil {
		analyzer = NopAnalyzer{}
	}
	return &Node{
		id:        id,
		topo:      topo,
		queue:     queue,
		analyzer:  analyzer,
		log:       log,
		linkDelay: linkDelay,
	}
}

// Attach binds the protocol instance that will receive this node's events.
func (n *Node) Attach(proto Protocol) {
	n.proto = proto
}

func (n *Node) ID() int {
	return n.id
}

// Neighbors returns the adjacent node ids in ascending order.
func (n *Node) Neighbors() []int {
	return n.topo.Neighbors(n.id)
}

func (n *Node) Degree() int {
	return n.topo.Degree(n.id)
}

// NodeCount returns the total number of nodes in the topology.
func (n *Node) NodeCount() int {
	return n.topo.NodeCount()
}

// Sent returns the cumulative number of messages this node has sent.
func (n *Node) Sent() int {
	return n.sent
}

// Received returns the cumulative number of messages delivered to this node.
func (n *Node) Received() int {
	return n.received
}

func (n *Node) Round() int {
	return n.proto.Round()
}

func (n *Node) Terminal() bool {
	return n.proto.Terminal()
}

// Send enqueues msg for delivery to the neighbor to after the link delay.
func (n *Node) Send(to int, msg Message) {
	n.sent++
	n.queue.ScheduleAfter(n.linkDelay, event.NewDeliveryEvent(n.id, to, msg))
}

// Broadcast sends msg to every neighbor.
func (n *Node) Broadcast(msg Message) {
	for _, nb := range n.Neighbors() {
		n.Send(nb, msg)
	}
}

// BroadcastExcept sends msg to every neighbor but exclude. It is the
// flooding relay: a message is forwarded everywhere except back over the
// link it arrived on.
func (n *Node) BroadcastExcept(exclude int, msg Message) {
	for _, nb := range n.Neighbors() {
		if nb == exclude {
			continue
		}
		n.Send(nb, msg)
	}
}

// RestartTimer cancels any pending round timer and schedules a new one to
// fire after d. Cancelling an already fired timer is a no-op, so the two
// steps behave as one atomic reschedule.
func (n *Node) RestartTimer(d time.Duration) {
	n.queue.Cancel(n.timer)
	n.timer = n.queue.ScheduleAfter(d, event.NewTimerEvent(n.id))
}

// ReportElected forwards the terminal report to the analyzer.
func (n *Node) ReportElected(rounds int) {
	n.analyzer.ReportLeaderElected(n.id, rounds, n.sent)
}

// HandleTimer implements event.TimerHandler.
func (n *Node) HandleTimer() {
	n.proto.HandleTimer()
}

// HandleMessage implements event.MessageHandler. Payloads that are not
// election messages are dropped.
func (n *Node) HandleMessage(from int, payload any) {
	n.received++
	msg, ok := payload.(Message)
	if !ok {
		n.log.Warn("dropping payload of unknown type",
			zap.Int("node", n.id),
			zap.Int("from", from),
			zap.Any("payload", payload))
		return
	}
	n.proto.HandleMessage(from, msg)
}
