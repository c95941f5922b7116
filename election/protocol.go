package election

import (
	"time"
)

// A Protocol is one of the election state machines driven by the node
// runtime. The set of implementations is closed: Arbitrary for networks with
// unique ids and Anonymous for fully connected networks of identical nodes.
type Protocol interface {
	// Schedules the first round timer.
	Start()
	// Runs when the node's round timer fires.
	HandleTimer()
	// Consumes a delivered message. from is the transmitting neighbor and is
	// used as the exclusion gate when the message is flooded onwards.
	HandleMessage(from int, msg Message)
	// The current round number. Strictly increases, at most once per timer.
	Round() int
	// Reports whether the protocol reached its final state.
	Terminal() bool
}

// Status of a node in the anonymous election.
// Transitions are monotone: Active -> Passive or Active -> Leader.
type Status uint8

const (
	StatusActive Status = iota
	StatusPassive
	StatusLeader
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusPassive:
		return "passive"
	case StatusLeader:
		return "leader"
	}
	return "unknown"
}

// A SeedFunc derives the seed of one node's random stream for one run.
// Implementations must be deterministic in their arguments.
type SeedFunc func(base uint64, nodeID, runIndex int) uint64

// Params groups the virtual-time and randomness parameters shared by both
// protocols.
//
// StartJitterMax only applies to the anonymous election; candidate rounds
// must stay in lock-step and always begin exactly at StartDelay.
type Params struct {
	StartDelay     time.Duration
	RoundDelay     time.Duration
	LinkDelay      time.Duration
	StartJitterMax time.Duration

	BaseSeed uint64
	RunIndex int

	// Seed overrides the default derivation when set.
	Seed SeedFunc
}

func (p Params) seed(nodeID int) uint64 {
	if p.Seed != nil {
		return p.Seed(p.BaseSeed, nodeID, p.RunIndex)
	}
	return DeriveSeed(p.BaseSeed, nodeID, p.RunIndex)
}
