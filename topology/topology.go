package topology

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/sets/treeset"
)

// InvalidTopologyError is returned when a topology can not be constructed or
// does not satisfy a property required by the selected election mode.
var InvalidTopologyError = errors.New("topology: invalid topology")

// Topology is an undirected graph over the node ids 0..n-1.
//
// The adjacency sets are ordered, so every neighbor iteration visits ids in
// ascending order. Topologies are immutable once constructed.
type Topology struct {
	n        int
	adj      []*treeset.Set
	edges    int
	diameter int
	name     string
}

// New creates a topology from an explicit edge list.
//
// The diameter is an externally supplied upper bound on the graph
// eccentricity and is used by the candidate election to decide how many
// rounds to run. Duplicate edges collapse to one.
func New(n int, edges [][2]int, diameter int) (*Topology, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: node count %d", InvalidTopologyError, n)
	}
	if diameter < 0 {
		return nil, fmt.Errorf("%w: negative diameter %d", InvalidTopologyError, diameter)
	}
	t := newTopology(n, fmt.Sprintf("custom(%d)", n))
	for _, e := range edges {
		if err := t.addEdge(e[0], e[1]); err != nil {
			return nil, err
		}
	}
	t.diameter = diameter
	return t, nil
}

func newTopology(n int, name string) *Topology {
	adj := make([]*treeset.Set, n)
	for i := range adj {
		adj[i] = treeset.NewWithIntComparator()
	}
	return &Topology{n: n, adj: adj, name: name}
}

func (t *Topology) addEdge(a, b int) error {
	if a < 0 || a >= t.n || b < 0 || b >= t.n {
		return fmt.Errorf("%w: edge (%d,%d) references a node outside 0..%d", InvalidTopologyError, a, b, t.n-1)
	}
	if a == b {
		return fmt.Errorf("%w: self-loop on node %d", InvalidTopologyError, a)
	}
	if t.adj[a].Contains(b) {
		return nil
	}
	t.adj[a].Add(b)
	t.adj[b].Add(a)
	t.edges++
	return nil
}

// NodeCount returns the number of nodes.
func (t *Topology) NodeCount() int {
	return t.n
}

// Neighbors returns the ids adjacent to id in ascending order.
func (t *Topology) Neighbors(id int) []int {
	vals := t.adj[id].Values()
	out := make([]int, len(vals))
	for i, v := range vals {
		out[i] = v.(int)
	}
	return out
}

// Degree returns the number of neighbors of id.
func (t *Topology) Degree(id int) int {
	return t.adj[id].Size()
}

// HasEdge reports whether a and b are adjacent.
func (t *Topology) HasEdge(a, b int) bool {
	if a < 0 || a >= t.n || b < 0 || b >= t.n {
		return false
	}
	return t.adj[a].Contains(b)
}

// EdgeCount returns the number of undirected edges.
func (t *Topology) EdgeCount() int {
	return t.edges
}

// Diameter returns the configured upper bound on the graph eccentricity.
func (t *Topology) Diameter() int {
	return t.diameter
}

// IsComplete reports whether every pair of distinct nodes is adjacent.
func (t *Topology) IsComplete() bool {
	for i := 0; i < t.n; i++ {
		if t.adj[i].Size() != t.n-1 {
			return false
		}
	}
	return true
}

// Name returns a short description of how the topology was built.
func (t *Topology) Name() string {
	return t.name
}
