package election

// An Analyzer receives the terminal report of a run.
//
// The elected leader calls it exactly once when it finalizes; collaborators
// that aggregate statistics across runs implement this interface and live
// outside the election core.
type Analyzer interface {
	ReportLeaderElected(nodeID, roundsToElection, messagesSentByLeader int)
}

// NopAnalyzer discards reports. It is the default collaborator when the
// caller does not care about run outcomes.
type NopAnalyzer struct{}

func (NopAnalyzer) ReportLeaderElected(nodeID, roundsToElection, messagesSentByLeader int) {}
