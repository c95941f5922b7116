package electsim

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"electsim/election"
	"electsim/event"
	"electsim/scheduler"
	"electsim/topology"
)

// Algorithm selects which election protocol a simulation runs.
type Algorithm string

const (
	// Flooding max-id election for connected networks with unique ids.
	Arbitrary Algorithm = "arbitrary"
	// Randomized bit elimination for fully connected anonymous networks.
	Anonymous Algorithm = "anonymous"
)

// ParseAlgorithm maps a selector string onto an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case Arbitrary:
		return Arbitrary, nil
	case Anonymous:
		return Anonymous, nil
	}
	return "", fmt.Errorf("%w: %q", UnknownAlgorithmError, s)
}

var (
	// Returned when a run is cut by the event limit before completing.
	EventLimitError = errors.New("electsim: event limit reached before the run completed")
	// Returned when the algorithm selector does not name a known protocol.
	UnknownAlgorithmError = errors.New("electsim: unknown algorithm")
)

// A Report is the outcome of one run, latched by the driver from the first
// analyzer report.
type Report struct {
	Leader   int
	Rounds   int
	Messages int

	// Virtual time at which the leader reported.
	Elapsed time.Duration
}

// A Simulation drives one election run in virtual time. It is single shot:
// prepare a new one for every run of a campaign.
type Simulation struct {
	topo *topology.Topology
	alg  Algorithm

	queue  *scheduler.EventQueue
	nodes  map[int]*election.Node
	protos map[int]election.Protocol

	analyzer election.Analyzer
	report   *Report

	log        *zap.Logger
	eventLimit int
	deadline   time.Duration
	observer   func(at time.Duration, evt event.Event)

	started bool
}

// Run starts every protocol in ascending node order and drains the event
// queue. When a deadline is configured the drain stops at that virtual time
// instead of requiring an empty queue. Returns the error that cut the run
// short, if any.
func (s *Simulation) Run() error {
	if s.started {
		return errors.New("electsim: a simulation can only run once")
	}
	s.started = true
	s.log.Debug("run started",
		zap.String("topology", s.topo.Name()),
		zap.String("algorithm", string(s.alg)),
		zap.Int("nodes", s.topo.NodeCount()))
	ids := maps.Keys(s.protos)
	slices.Sort(ids)
	for _, id := range ids {
		s.protos[id].Start()
	}
	if s.deadline > 0 {
		return s.queue.RunUntil(s.deadline)
	}
	return s.queue.RunUntilEmpty()
}

// dispatch resolves the target node of evt and applies it. It also enforces
// the event limit valve and feeds the observer.
func (s *Simulation) dispatch(evt event.Event) error {
	if s.eventLimit > 0 && s.queue.Dispatched() > s.eventLimit {
		return EventLimitError
	}
	if s.observer != nil {
		s.observer(s.queue.Now(), evt)
	}
	if msg, ok := evt.(event.MessageEvent); ok {
		s.log.Debug("delivering message",
			zap.Int("from", msg.From()),
			zap.Int("to", msg.To()),
			zap.Duration("at", s.queue.Now()))
	}
	node, ok := s.nodes[evt.Target()]
	if !ok {
		return fmt.Errorf("electsim: event %v targets unknown node %d", evt, evt.Target())
	}
	return evt.Execute(node)
}

// Report returns the latched outcome of the run. ok is false when no leader
// reported, for example when the run was cut by the safety valve.
func (s *Simulation) Report() (Report, bool) {
	if s.report == nil {
		return Report{}, false
	}
	return *s.report, true
}

// Elapsed returns the current virtual time of the run.
func (s *Simulation) Elapsed() time.Duration {
	return s.queue.Now()
}

// Events returns the number of events dispatched so far.
func (s *Simulation) Events() int {
	return s.queue.Dispatched()
}

// runReporter latches the first report of the run and forwards it to the
// configured analyzer. Later reports are dropped, which keeps the analyzer
// contract at one report per run even for degenerate edge-list topologies
// where several isolated nodes finalize on their own.
type runReporter struct {
	s *Simulation
}

func (r runReporter) ReportLeaderElected(nodeID, roundsToElection, messagesSentByLeader int) {
	if r.s.report != nil {
		return
	}
	r.s.report = &Report{
		Leader:   nodeID,
		Rounds:   roundsToElection,
		Messages: messagesSentByLeader,
		Elapsed:  r.s.queue.Now(),
	}
	r.s.analyzer.ReportLeaderElected(nodeID, roundsToElection, messagesSentByLeader)
}
