package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"electsim/topology"
)

// A scenario file bundles the configuration of a simulation campaign into a
// JSON document. Fields left out of the document keep their flag values.
// The "custom" topology kind is only reachable through a scenario file since
// an edge list cannot be passed as a flag.
type Scenario struct {
	Algorithm   string   `json:"Algorithm,omitempty"`
	Topology    string   `json:"Topology,omitempty"`
	Nodes       int      `json:"Nodes,omitempty"`
	MeshSide    int      `json:"MeshSide,omitempty"`
	Probability float64  `json:"Probability,omitempty"`
	Edges       [][2]int `json:"Edges,omitempty"`
	Diameter    int      `json:"Diameter,omitempty"`
	Runs        int      `json:"Runs,omitempty"`
	Seed        uint64   `json:"Seed,omitempty"`
	StartDelay  string   `json:"StartDelay,omitempty"`
	RoundDelay  string   `json:"RoundDelay,omitempty"`
	LinkDelay   string   `json:"LinkDelay,omitempty"`
	StartJitter string   `json:"StartJitter,omitempty"`
	EventLimit  int      `json:"EventLimit,omitempty"`
}

var (
	customEdges    [][2]int
	customDiameter int
)

// Overwrites the flag globals with the values the scenario file sets
func applyScenario(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var sc Scenario
	if err := json.Unmarshal(data, &sc); err != nil {
		return fmt.Errorf("invalid scenario file %v: %w", path, err)
	}

	if sc.Algorithm != "" {
		algorithm = sc.Algorithm
	}
	if sc.Topology != "" {
		topoKind = sc.Topology
	}
	if sc.Nodes > 0 {
		nodes = sc.Nodes
	}
	if sc.MeshSide > 0 {
		meshSide = sc.MeshSide
	}
	if sc.Probability > 0 {
		probability = sc.Probability
	}
	if sc.Runs > 0 {
		runs = sc.Runs
	}
	if sc.Seed != 0 {
		seed = sc.Seed
	}
	if sc.EventLimit > 0 {
		eventLimit = sc.EventLimit
	}
	customEdges = sc.Edges
	customDiameter = sc.Diameter

	if err := setDuration(&startDelay, sc.StartDelay); err != nil {
		return err
	}
	if err := setDuration(&roundDelay, sc.RoundDelay); err != nil {
		return err
	}
	if err := setDuration(&linkDelay, sc.LinkDelay); err != nil {
		return err
	}
	return setDuration(&startJitter, sc.StartJitter)
}

func setDuration(dst *time.Duration, value string) error {
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return err
	}
	*dst = d
	return nil
}

// Creates the topology selected by the flags or the scenario file
func buildTopology() (*topology.Topology, error) {
	switch topoKind {
	case "ring":
		return topology.Ring(nodes)
	case "mesh":
		return topology.Mesh(meshSide)
	case "star":
		return topology.Star(nodes)
	case "complete":
		return topology.Complete(nodes)
	case "random":
		return topology.Random(nodes, probability, int64(seed))
	case "custom":
		return topology.New(nodes, customEdges, customDiameter)
	default:
		return nil, fmt.Errorf("unknown topology kind: %v", topoKind)
	}
}
