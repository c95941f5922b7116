package analyzer

import (
	"fmt"
	"io"
	"math"
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// A Run captures one completed election.
type Run struct {
	Leader   int
	Rounds   int
	Messages int
}

// Recorder accumulates election reports across runs and aggregates them into
// summary statistics. It satisfies the election Analyzer interface and is
// safe for concurrent use so independent campaigns can share one instance.
type Recorder struct {
	mu   sync.Mutex
	runs []Run
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// ReportLeaderElected records the outcome of one run.
func (r *Recorder) ReportLeaderElected(nodeID, roundsToElection, messagesSentByLeader int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, Run{
		Leader:   nodeID,
		Rounds:   roundsToElection,
		Messages: messagesSentByLeader,
	})
}

// Runs returns a copy of the recorded runs in report order.
func (r *Recorder) Runs() []Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Run, len(r.runs))
	copy(out, r.runs)
	return out
}

// A Summary aggregates the recorded runs. The standard deviations are
// population deviations over the recorded values.
type Summary struct {
	Runs         int
	LeaderWins   map[int]int
	MeanRounds   float64
	StdRounds    float64
	MeanMessages float64
	StdMessages  float64
}

// Summary computes the aggregate statistics of all recorded runs.
func (r *Recorder) Summary() Summary {
	runs := r.Runs()
	s := Summary{Runs: len(runs), LeaderWins: make(map[int]int)}
	if len(runs) == 0 {
		return s
	}
	var sumRounds, sumMsgs float64
	for _, run := range runs {
		s.LeaderWins[run.Leader]++
		sumRounds += float64(run.Rounds)
		sumMsgs += float64(run.Messages)
	}
	n := float64(len(runs))
	s.MeanRounds = sumRounds / n
	s.MeanMessages = sumMsgs / n
	var varRounds, varMsgs float64
	for _, run := range runs {
		dr := float64(run.Rounds) - s.MeanRounds
		dm := float64(run.Messages) - s.MeanMessages
		varRounds += dr * dr
		varMsgs += dm * dm
	}
	s.StdRounds = math.Sqrt(varRounds / n)
	s.StdMessages = math.Sqrt(varMsgs / n)
	return s
}

// WriteReport renders a plain text report of every recorded run followed by
// the summary statistics.
func (r *Recorder) WriteReport(w io.Writer) error {
	runs := r.Runs()
	if _, err := fmt.Fprintf(w, "election report: %d run(s)\n", len(runs)); err != nil {
		return err
	}
	for i, run := range runs {
		if _, err := fmt.Fprintf(w, "run %3d: leader=%d rounds=%d messages=%d\n", i, run.Leader, run.Rounds, run.Messages); err != nil {
			return err
		}
	}
	if len(runs) == 0 {
		return nil
	}
	s := r.Summary()
	if _, err := fmt.Fprintf(w, "rounds:   mean=%.2f std=%.2f\n", s.MeanRounds, s.StdRounds); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "messages: mean=%.2f std=%.2f\n", s.MeanMessages, s.StdMessages); err != nil {
		return err
	}
	leaders := maps.Keys(s.LeaderWins)
	slices.Sort(leaders)
	for _, id := range leaders {
		if _, err := fmt.Fprintf(w, "leader %d: %d win(s)\n", id, s.LeaderWins[id]); err != nil {
			return err
		}
	}
	return nil
}
