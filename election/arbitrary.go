package election

import (
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// Arbitrary is the candidate election for connected networks where every
// node owns a unique id. Each round every node floods the highest id it has
// seen to its neighbors; after diameter rounds the maximum has reached every
// node and the node owning it finalizes as leader.
//
// Rounds are lock-step: all first timers fire at exactly StartDelay and all
// links share one delay, so a message can only ever carry the receiver's
// current round number. Anything out of phase is dropped.
type Arbitrary struct {
	n *Node
	p Params

	diameter  int
	round     int
	candidate int
	received  map[int]int
	leader    bool
	done      bool
}

// Creates the candidate election state machine on n and attaches it.
// The candidate value starts as the node's own id.
func NewArbitrary(n *Node, p Params) *Arbitrary {
	a := &Arbitrary{
		n:         n,
		p:         p,
		diameter:  n.topo.Diameter(),
		candidate: n.id,
		received:  make(map[int]int),
	}
	n.Attach(a)
	return a
}

func (a *Arbitrary) Start() {
	a.n.RestartTimer(a.p.StartDelay)
}

func (a *Arbitrary) Round() int {
	return a.round
}

func (a *Arbitrary) Terminal() bool {
	return a.done
}

// Leader reports whether this node won. Only meaningful once Terminal.
func (a *Arbitrary) Leader() bool {
	return a.leader
}

// Candidate returns the highest id this node has seen so far.
func (a *Arbitrary) Candidate() int {
	return a.candidate
}

func (a *Arbitrary) HandleTimer() {
	if a.done {
		return
	}
	if a.round >= a.diameter {
		a.finalize()
		return
	}
	a.startRound()
}

func (a *Arbitrary) startRound() {
	a.round++
	maps.Clear(a.received)
	a.n.Broadcast(LeaderCandidate{From: a.n.id, RoundNum: a.round, Candidate: a.candidate})
	a.n.log.Debug("candidate round started",
		zap.Int("node", a.n.id),
		zap.Int("round", a.round),
		zap.Int("candidate", a.candidate))
	if a.n.Degree() == 0 {
		// Nothing to wait for without neighbors.
		a.finalize()
	}
}

func (a *Arbitrary) HandleMessage(from int, msg Message) {
	if a.done {
		return
	}
	m, ok := msg.(LeaderCandidate)
	if !ok {
		return
	}
	if m.RoundNum != a.round {
		a.n.log.Debug("discarding out of round candidate",
			zap.Int("node", a.n.id),
			zap.Int("round", a.round),
			zap.Int("msgRound", m.RoundNum))
		return
	}
	a.received[m.From] = m.Candidate
	if len(a.received) == a.n.Degree() {
		a.processRound()
	}
}

func (a *Arbitrary) processRound() {
	for _, v := range a.received {
		if v > a.candidate {
			a.candidate = v
		}
	}
	a.n.log.Debug("candidate round complete",
		zap.Int("node", a.n.id),
		zap.Int("round", a.round),
		zap.Int("candidate", a.candidate))
	if a.round < a.diameter {
		a.n.RestartTimer(a.p.RoundDelay)
		return
	}
	a.finalize()
}

func (a *Arbitrary) finalize() {
	a.done = true
	a.leader = a.candidate == a.n.id
	if !a.leader {
		a.n.log.Debug("election finished",
			zap.Int("node", a.n.id),
			zap.Int("leader", a.candidate),
			zap.Int("rounds", a.round))
		return
	}
	a.n.log.Info("elected as leader",
		zap.Int("node", a.n.id),
		zap.Int("rounds", a.round),
		zap.Int("messages", a.n.sent))
	a.n.ReportElected(a.round)
}
