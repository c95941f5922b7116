package election

// A Message is the payload carried by every protocol exchange.
//
// The concrete types below are plain value types built only by the
// protocols themselves, so a message in flight is always well formed.
type Message interface {
	// The id of the node that created the message. Under flooding this can
	// differ from the neighbor the message was last transmitted by.
	Sender() int
	// The protocol round the message belongs to.
	Round() int
}

// A BitProposal carries one random bit of the anonymous election.
// Passive senders always propose false and flag themselves inactive.
type BitProposal struct {
	From     int
	RoundNum int
	Bit      bool
	Active   bool
}

func (m BitProposal) Sender() int {
	return m.From
}

func (m BitProposal) Round() int {
	return m.RoundNum
}

// A LeaderCandidate carries the highest id its sender has seen so far in the
// candidate election.
type LeaderCandidate struct {
	From      int
	RoundNum  int
	Candidate int
}

func (m LeaderCandidate) Sender() int {
	return m.From
}

func (m LeaderCandidate) Round() int {
	return m.RoundNum
}

// A LeaderAnnouncement floods the identity of the elected leader through the
// network so every node can stop participating.
type LeaderAnnouncement struct {
	From     int
	RoundNum int
	Leader   int
}

func (m LeaderAnnouncement) Sender() int {
	return m.From
}

func (m LeaderAnnouncement) Round() int {
	return m.RoundNum
}
