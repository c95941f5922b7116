package election

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"electsim/topology"
)

func newArbitraryCluster(t *testing.T, topo *topology.Topology) *testCluster {
	t.Helper()
	return newCluster(t, topo, testParams(), func(n *Node, p Params) Protocol {
		return NewArbitrary(n, p)
	})
}

func TestArbitraryRingElectsHighestId(t *testing.T) {
	topo, err := topology.Ring(5)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	c.start()
	c.run(t)

	require.Len(t, c.analyzer.reports, 1)
	rep := c.analyzer.reports[0]
	assert.Equal(t, 4, rep.node)
	assert.Equal(t, 3, rep.rounds)
	assert.Equal(t, 6, rep.messages)
	for id := 0; id < 5; id++ {
		a := c.proto(id).(*Arbitrary)
		assert.True(t, a.Terminal(), "node %d should be terminal", id)
		assert.Equal(t, 4, a.Candidate(), "node %d should have seen the highest id", id)
		assert.Equal(t, id == 4, a.Leader(), "only node 4 should consider itself leader")
	}
	// 5 nodes broadcasting to 2 neighbors over 3 rounds
	assert.Equal(t, 30, c.totalSent())
}

func TestArbitraryCompleteGraphFinishesInOneRound(t *testing.T) {
	topo, err := topology.Complete(4)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	c.start()
	c.run(t)

	require.Len(t, c.analyzer.reports, 1)
	rep := c.analyzer.reports[0]
	assert.Equal(t, 3, rep.node)
	assert.Equal(t, 1, rep.rounds)
	assert.Equal(t, 3, rep.messages)
	assert.Equal(t, 12, c.totalSent())
}

func TestArbitraryMeshCandidateNeverDecreases(t *testing.T) {
	topo, err := topology.Mesh(3)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	c.start()

	last := make(map[int]int)
	for id, n := range c.nodes {
		last[id] = n.proto.(*Arbitrary).Candidate()
	}
	for {
		ok, err := c.queue.Step()
		require.NoError(t, err)
		if !ok {
			break
		}
		for id, n := range c.nodes {
			cur := n.proto.(*Arbitrary).Candidate()
			assert.GreaterOrEqual(t, cur, last[id], "candidate of node %d decreased", id)
			last[id] = cur
		}
	}

	require.Len(t, c.analyzer.reports, 1)
	rep := c.analyzer.reports[0]
	assert.Equal(t, 8, rep.node)
	assert.Equal(t, 4, rep.rounds)
	// Node 8 sits in a corner of the grid and has two neighbors
	assert.Equal(t, 8, rep.messages)
}

func TestArbitraryDiscardsOutOfRoundCandidates(t *testing.T) {
	topo, err := topology.Ring(5)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	a := c.proto(0).(*Arbitrary)

	// Node 0 has not started any round yet
	a.HandleMessage(1, LeaderCandidate{From: 1, RoundNum: 5, Candidate: 9})
	assert.Equal(t, 0, a.Round())
	assert.Equal(t, 0, a.Candidate())
	assert.Len(t, a.received, 0)
}

func TestArbitraryDuplicateSenderCountsOnce(t *testing.T) {
	topo, err := topology.Ring(3)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	a := c.proto(0).(*Arbitrary)
	a.startRound()

	a.HandleMessage(1, LeaderCandidate{From: 1, RoundNum: 1, Candidate: 7})
	a.HandleMessage(1, LeaderCandidate{From: 1, RoundNum: 1, Candidate: 7})
	assert.Equal(t, 1, a.Round(), "a repeated sender must not complete the round")
	assert.Equal(t, 0, a.Candidate())

	a.HandleMessage(2, LeaderCandidate{From: 2, RoundNum: 1, Candidate: 5})
	assert.Equal(t, 7, a.Candidate(), "the round should fold in the highest received candidate")
	assert.False(t, a.Terminal())
}

func TestArbitraryWithoutNeighborsFinalizesAfterFirstRound(t *testing.T) {
	topo, err := topology.New(2, nil, 1)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	c.start()
	c.run(t)

	// Both isolated nodes elect themselves
	require.Len(t, c.analyzer.reports, 2)
	for i, rep := range c.analyzer.reports {
		assert.Equal(t, i, rep.node)
		assert.Equal(t, 1, rep.rounds)
		assert.Equal(t, 0, rep.messages)
	}
}

func TestArbitrarySingleNode(t *testing.T) {
	topo, err := topology.New(1, nil, 0)
	require.NoError(t, err)
	c := newArbitraryCluster(t, topo)
	c.start()
	c.run(t)

	require.Len(t, c.analyzer.reports, 1)
	rep := c.analyzer.reports[0]
	assert.Equal(t, 0, rep.node)
	assert.Equal(t, 0, rep.rounds)
	assert.Equal(t, 0, rep.messages)
	assert.True(t, c.proto(0).(*Arbitrary).Leader())
}
