package election

import (
	"testing"
	"time"

	"electsim/event"
	"electsim/scheduler"
	"electsim/topology"
)

// Create some dummy collaborators and a small driver for use when testing
// the protocols without the simulation facade.

type report struct {
	node     int
	rounds   int
	messages int
}

// Analyzer capturing every report it receives
type captureAnalyzer struct {
	reports []report
}

func (c *captureAnalyzer) ReportLeaderElected(nodeID, roundsToElection, messagesSentByLeader int) {
	c.reports = append(c.reports, report{node: nodeID, rounds: roundsToElection, messages: messagesSentByLeader})
}

type testCluster struct {
	queue    *scheduler.EventQueue
	nodes    map[int]*Node
	analyzer *captureAnalyzer
}

// Creates a cluster of nodes over topo with a protocol built by build on
// each of them.
func newCluster(t *testing.T, topo *topology.Topology, p Params, build func(n *Node, p Params) Protocol) *testCluster {
	t.Helper()
	c := &testCluster{
		nodes:    make(map[int]*Node),
		analyzer: &captureAnalyzer{},
	}
	c.queue = scheduler.NewEventQueue(func(evt event.Event) error {
		return evt.Execute(c.nodes[evt.Target()])
	})
	for id := 0; id < topo.NodeCount(); id++ {
		n := NewNode(id, topo, c.queue, c.analyzer, p.LinkDelay, nil)
		c.nodes[id] = n
		build(n, p)
	}
	return c
}

func (c *testCluster) start() {
	for id := 0; id < len(c.nodes); id++ {
		c.nodes[id].proto.Start()
	}
}

func (c *testCluster) run(t *testing.T) {
	t.Helper()
	if err := c.queue.RunUntilEmpty(); err != nil {
		t.Fatalf("Did not expect to receive an error. Got: %v", err)
	}
}

func (c *testCluster) proto(id int) Protocol {
	return c.nodes[id].proto
}

func (c *testCluster) totalSent() int {
	sum := 0
	for _, n := range c.nodes {
		sum += n.Sent()
	}
	return sum
}

func testParams() Params {
	return Params{
		StartDelay: 10 * time.Millisecond,
		RoundDelay: 100 * time.Millisecond,
		LinkDelay:  time.Millisecond,
	}
}
