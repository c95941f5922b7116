package electsim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"electsim/election"
	"electsim/event"
	"electsim/scheduler"
	"electsim/topology"
)

// Prepare builds a simulation of one election run over topo.
//
// The anonymous election requires a fully connected topology. The candidate
// election requires the topology's diameter to cover its eccentricity,
// which generator built topologies guarantee.
func Prepare(topo *topology.Topology, alg Algorithm, opts ...Option) (*Simulation, error) {
	if topo == nil {
		return nil, fmt.Errorf("%w: nil topology", topology.InvalidTopologyError)
	}
	var (
		params = election.Params{
			StartDelay:     10 * time.Millisecond,
			RoundDelay:     100 * time.Millisecond,
			LinkDelay:      time.Millisecond,
			StartJitterMax: 5 * time.Millisecond,
		}
		analyzer   election.Analyzer = election.NopAnalyzer{}
		log        = zap.NewNop()
		eventLimit = 100000
		deadline   time.Duration
		observer   func(at time.Duration, evt event.Event)
	)

	for _, opt := range opts {
		switch t := opt.(type) {
		case startDelayOption:
			params.StartDelay = t.d
		case roundDelayOption:
			params.RoundDelay = t.d
		case linkDelayOption:
			params.LinkDelay = t.d
		case startJitterOption:
			params.StartJitterMax = t.d
		case seedOption:
			params.BaseSeed = t.seed
		case runIndexOption:
			params.RunIndex = t.idx
		case seedFuncOption:
			params.Seed = t.fn
		case analyzerOption:
			if t.a != nil {
				analyzer = t.a
			}
		case loggerOption:
			if t.log != nil {
				log = t.log
			}
		case eventLimitOption:
			eventLimit = t.n
		case deadlineOption:
			deadline = t.d
		case observerOption:
			observer = t.fn
		}
	}

	if params.StartDelay < 0 || params.RoundDelay <= 0 || params.LinkDelay < 0 || params.StartJitterMax < 0 {
		return nil, fmt.Errorf("electsim: delays must not be negative and the round delay must be positive")
	}
	switch alg {
	case Arbitrary:
		// Candidate rounds are only deadlock free in lock step.
		params.StartJitterMax = 0
	case Anonymous:
		if !topo.IsComplete() {
			return nil, fmt.Errorf("%w: the anonymous election requires a fully connected topology, got %s",
				topology.InvalidTopologyError, topo.Name())
		}
	default:
		return nil, fmt.Errorf("%w: %q", UnknownAlgorithmError, alg)
	}

	s := &Simulation{
		topo:       topo,
		alg:        alg,
		nodes:      make(map[int]*election.Node),
		protos:     make(map[int]election.Protocol),
		analyzer:   analyzer,
		log:        log,
		eventLimit: eventLimit,
		deadline:   deadline,
		observer:   observer,
	}
	s.queue = scheduler.NewEventQueue(s.dispatch)
	reporter := runReporter{s: s}
	for id := 0; id < topo.NodeCount(); id++ {
		node := election.NewNode(id, topo, s.queue, reporter, params.LinkDelay, log)
		s.nodes[id] = node
		switch alg {
		case Arbitrary:
			s.protos[id] = election.NewArbitrary(node, params)
		case Anonymous:
			s.protos[id] = election.NewAnonymous(node, params)
		}
	}
	return s, nil
}

// An Option configures a simulation.
type Option interface{}

type startDelayOption struct{ d time.Duration }

// Configure the virtual time at which the first round timers fire.
//
// Default value is 10ms.
func WithStartDelay(d time.Duration) Option {
	return startDelayOption{d: d}
}

type roundDelayOption struct{ d time.Duration }

// Configure the virtual pause between a completed round and the next round
// timer.
//
// Default value is 100ms.
func WithRoundDelay(d time.Duration) Option {
	return roundDelayOption{d: d}
}

type linkDelayOption struct{ d time.Duration }

// Configure the virtual transit time of every message.
//
// Default value is 1ms.
func WithLinkDelay(d time.Duration) Option {
	return linkDelayOption{d: d}
}

type startJitterOption struct{ d time.Duration }

// Configure the upper bound of the per node jitter added to the first round
// timer of the anonymous election. The candidate election ignores it.
//
// Default value is 5ms.
func WithStartJitter(d time.Duration) Option {
	return startJitterOption{d: d}
}

type seedOption struct{ seed uint64 }

// Configure the base seed of the run's random streams.
//
// Default value is 0.
func WithSeed(seed uint64) Option {
	return seedOption{seed: seed}
}

type runIndexOption struct{ idx int }

// Configure the run index mixed into every node seed, so campaigns with a
// fixed base seed still vary between runs.
//
// Default value is 0.
func WithRunIndex(idx int) Option {
	return runIndexOption{idx: idx}
}

type seedFuncOption struct{ fn election.SeedFunc }

// Configure an explicit seed derivation, replacing the built in mix.
func WithSeedFunc(fn election.SeedFunc) Option {
	return seedFuncOption{fn: fn}
}

type analyzerOption struct{ a election.Analyzer }

// Configure the analyzer that receives the terminal report of the run.
// Only the first report of a run is forwarded.
func WithAnalyzer(a election.Analyzer) Option {
	return analyzerOption{a: a}
}

type loggerOption struct{ log *zap.Logger }

// Configure the logger used by the driver and every node.
//
// Default is a no-op logger.
func WithLogger(log *zap.Logger) Option {
	return loggerOption{log: log}
}

type eventLimitOption struct{ n int }

// Configure the maximum number of dispatched events before a run is cut
// with EventLimitError. Elections that make no progress, for example
// anonymous runs where every node keeps drawing identical bits, never drain
// the queue on their own. A value of 0 disables the limit.
//
// Default value is 100000.
func WithEventLimit(n int) Option {
	return eventLimitOption{n: n}
}

type deadlineOption struct{ d time.Duration }

// Configure a virtual time deadline. The run dispatches only events
// scheduled up to the deadline and leaves the rest pending. A value of 0
// means no deadline.
func WithDeadline(d time.Duration) Option {
	return deadlineOption{d: d}
}

type observerOption struct {
	fn func(at time.Duration, evt event.Event)
}

// Configure a callback invoked for every dispatched event with its virtual
// timestamp, in dispatch order. Useful for trace capture.
func WithObserver(fn func(at time.Duration, evt event.Event)) Option {
	return observerOption{fn: fn}
}
