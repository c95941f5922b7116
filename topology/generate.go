package topology

import (
	"fmt"
	"math/rand"
)

// Ring creates a cycle of n nodes where node i is adjacent to its two ring
// neighbors. The diameter is set to ⌈n/2⌉.
func Ring(n int) (*Topology, error) {
	if n < 3 {
		return nil, fmt.Errorf("%w: a ring needs at least 3 nodes, got %d", InvalidTopologyError, n)
	}
	t := newTopology(n, fmt.Sprintf("ring(%d)", n))
	for i := 0; i < n; i++ {
		t.addEdge(i, (i+1)%n)
	}
	t.diameter = (n + 1) / 2
	return t, nil
}

// Mesh creates a k×k grid of k*k nodes with row-major ids. The diameter is
// the corner-to-corner distance 2(k-1).
func Mesh(k int) (*Topology, error) {
	if k < 1 {
		return nil, fmt.Errorf("%w: mesh side %d", InvalidTopologyError, k)
	}
	t := newTopology(k*k, fmt.Sprintf("mesh(%dx%d)", k, k))
	for r := 0; r < k; r++ {
		for c := 0; c < k; c++ {
			id := r*k + c
			if c+1 < k {
				t.addEdge(id, id+1)
			}
			if r+1 < k {
				t.addEdge(id, id+k)
			}
		}
	}
	t.diameter = 2 * (k - 1)
	return t, nil
}

// Star creates a hub-and-spoke graph with node 0 as the center.
func Star(n int) (*Topology, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: node count %d", InvalidTopologyError, n)
	}
	t := newTopology(n, fmt.Sprintf("star(%d)", n))
	for i := 1; i < n; i++ {
		t.addEdge(0, i)
	}
	switch {
	case n == 1:
		t.diameter = 0
	case n == 2:
		t.diameter = 1
	default:
		t.diameter = 2
	}
	return t, nil
}

// Complete creates a graph where every pair of nodes is adjacent.
func Complete(n int) (*Topology, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: node count %d", InvalidTopologyError, n)
	}
	t := newTopology(n, fmt.Sprintf("complete(%d)", n))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			t.addEdge(i, j)
		}
	}
	if n > 1 {
		t.diameter = 1
	}
	return t, nil
}

// Random creates a graph where each pair of nodes is connected independently
// with probability p, drawn from a generator seeded with seed. The exact
// diameter is computed by breadth first search. Disconnected results are
// rejected since neither election mode can make progress across partitions.
func Random(n int, p float64, seed int64) (*Topology, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: node count %d", InvalidTopologyError, n)
	}
	if p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: edge probability %v outside [0,1]", InvalidTopologyError, p)
	}
	t := newTopology(n, fmt.Sprintf("random(%d,%v)", n, p))
	r := rand.New(rand.NewSource(seed))
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if r.Float64() < p {
				t.addEdge(i, j)
			}
		}
	}
	d, ok := t.bfsDiameter()
	if !ok {
		return nil, fmt.Errorf("%w: random graph with n=%d p=%v seed=%d is not connected", InvalidTopologyError, n, p, seed)
	}
	t.diameter = d
	return t, nil
}

// bfsDiameter computes the exact diameter, reporting false when the graph is
// disconnected.
func (t *Topology) bfsDiameter() (int, bool) {
	max := 0
	for src := 0; src < t.n; src++ {
		dist := make([]int, t.n)
		for i := range dist {
			dist[i] = -1
		}
		dist[src] = 0
		queue := []int{src}
		seen := 1
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nb := range t.Neighbors(cur) {
				if dist[nb] == -1 {
					dist[nb] = dist[cur] + 1
					seen++
					queue = append(queue, nb)
					if dist[nb] > max {
						max = dist[nb]
					}
				}
			}
		}
		if seen != t.n {
			return 0, false
		}
	}
	return max, true
}
