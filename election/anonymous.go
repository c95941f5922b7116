package election

import (
	"math/rand"
	"time"

	"github.com/emirpasic/gods/sets/treeset"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
)

// Anonymous is the randomized election for fully connected networks of
// identical nodes. Active nodes draw a random bit every round; a node that
// holds the only 1 of the round wins, nodes that drew 0 while someone else
// drew 1 drop out, and rounds where every active node drew the same bit are
// repeated. The winner floods a leader announcement so everyone can stop.
//
// Nodes run their rounds loosely in step. A proposal for a round this node
// has not started yet is buffered and replayed once the round begins, so
// jittered starts and uneven link arrivals never lose bits.
type Anonymous struct {
	n *Node
	p Params

	rng     *rand.Rand
	drawBit func() bool

	status   Status
	round    int
	bit      bool
	numNodes int

	active   *treeset.Set
	received map[int]bool
	future   []pendingProposal

	announcementSeen bool
}

type pendingProposal struct {
	via int
	msg BitProposal
}

// Creates the anonymous election state machine on n and attaches it.
// Every node starts active and assumes all other nodes are active too. The
// random stream is seeded from the node id and run index so runs with the
// same base seed replay exactly.
func NewAnonymous(n *Node, p Params) *Anonymous {
	rng := rand.New(rand.NewSource(int64(p.seed(n.id))))
	a := &Anonymous{
		n:        n,
		p:        p,
		rng:      rng,
		status:   StatusActive,
		numNodes: n.NodeCount(),
		active:   treeset.NewWithIntComparator(),
		received: make(map[int]bool),
	}
	a.drawBit = func() bool {
		return rng.Intn(2) == 1
	}
	for id := 0; id < a.numNodes; id++ {
		a.active.Add(id)
	}
	n.Attach(a)
	return a
}

// Start arms the first round timer at StartDelay plus a small per node
// jitter, which breaks the artificial lock step of identical nodes.
func (a *Anonymous) Start() {
	delay := a.p.StartDelay
	if a.p.StartJitterMax > 0 {
		delay += time.Duration(a.rng.Int63n(int64(a.p.StartJitterMax)))
	}
	a.n.RestartTimer(delay)
}

func (a *Anonymous) Round() int {
	return a.round
}

func (a *Anonymous) Terminal() bool {
	return a.status == StatusLeader
}

// Status returns the current election status of this node.
func (a *Anonymous) Status() Status {
	return a.status
}

func (a *Anonymous) HandleTimer() {
	if a.status == StatusLeader {
		return
	}
	a.startRound()
}

func (a *Anonymous) startRound() {
	a.round++
	maps.Clear(a.received)
	a.bit = false
	if a.status == StatusActive {
		a.bit = a.drawBit()
	}
	a.n.Broadcast(BitProposal{From: a.n.id, RoundNum: a.round, Bit: a.bit, Active: a.status == StatusActive})
	a.n.log.Debug("bit round started",
		zap.Int("node", a.n.id),
		zap.Int("round", a.round),
		zap.Bool("bit", a.bit),
		zap.Stringer("status", a.status))
	a.replayBuffered()
	if a.numNodes == 1 {
		// A single node is its own full receipt set.
		a.processRound()
	}
}

// replayBuffered feeds proposals that were ahead of this node back into the
// handler now that their round has started. Arrival order is preserved.
func (a *Anonymous) replayBuffered() {
	if len(a.future) == 0 {
		return
	}
	var due, rest []pendingProposal
	for _, pp := range a.future {
		if pp.msg.RoundNum == a.round {
			due = append(due, pp)
		} else {
			rest = append(rest, pp)
		}
	}
	a.future = rest
	for _, pp := range due {
		a.onBitProposal(pp.via, pp.msg)
	}
}

func (a *Anonymous) HandleMessage(from int, msg Message) {
	switch m := msg.(type) {
	case BitProposal:
		a.onBitProposal(from, m)
	case LeaderAnnouncement:
		a.onAnnouncement(from, m)
	}
}

func (a *Anonymous) onBitProposal(via int, m BitProposal) {
	if a.status == StatusLeader || m.RoundNum < a.round {
		return
	}
	if m.RoundNum > a.round {
		// The sender is ahead of us. Hold the proposal until our own round catches up.
		a.future = append(a.future, pendingProposal{via: via, msg: m})
		return
	}
	if _, dup := a.received[m.From]; dup {
		return
	}
	a.received[m.From] = m.Bit
	if m.Active {
		a.active.Add(m.From)
	} else {
		a.active.Remove(m.From)
	}
	a.n.BroadcastExcept(via, m)
	if len(a.received) == a.numNodes-1 {
		a.processRound()
	}
}

func (a *Anonymous) processRound() {
	s := 0
	for _, b := range a.received {
		if b {
			s++
		}
	}
	if a.status == StatusActive && a.bit {
		s++
	}
	activeCount := a.active.Size()
	a.n.log.Debug("bit round complete",
		zap.Int("node", a.n.id),
		zap.Int("round", a.round),
		zap.Int("ones", s),
		zap.Int("active", activeCount))
	if a.status == StatusActive {
		switch {
		case s == 1 && a.bit:
			a.becomeLeader()
			return
		case s == 1:
			// Another node holds the only 1 of the round.
			a.becomePassive()
		case s > 1 && s < activeCount:
			if !a.bit {
				a.becomePassive()
			}
		default:
			// s == 0 or s == activeCount: every active node drew the same
			// bit, nothing was decided and the round repeats.
		}
	}
	a.n.RestartTimer(a.p.RoundDelay)
}

func (a *Anonymous) becomeLeader() {
	a.status = StatusLeader
	a.n.Broadcast(LeaderAnnouncement{From: a.n.id, RoundNum: a.round, Leader: a.n.id})
	a.n.log.Info("elected as leader",
		zap.Int("node", a.n.id),
		zap.Int("rounds", a.round),
		zap.Int("messages", a.n.sent))
	a.n.ReportElected(a.round)
}

func (a *Anonymous) becomePassive() {
	a.status = StatusPassive
	a.active.Remove(a.n.id)
	a.n.log.Debug("turned passive",
		zap.Int("node", a.n.id),
		zap.Int("round", a.round))
}

func (a *Anonymous) onAnnouncement(via int, m LeaderAnnouncement) {
	if a.status == StatusLeader || a.announcementSeen {
		return
	}
	a.announcementSeen = true
	if a.status == StatusActive {
		a.becomePassive()
	}
	a.n.BroadcastExcept(via, m)
	a.n.log.Debug("leader announced",
		zap.Int("node", a.n.id),
		zap.Int("leader", m.Leader),
		zap.Int("round", a.round))
}
