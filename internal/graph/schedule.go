package graph

import "fmt"

// StageKind tags a schedule level with the propagation stage it belongs to.
type StageKind int

// Stage kinds. StagePrimary only ever appears at level 0.
const (
	// StagePrimary is the primary-input level; predictions there are
	// copied from ground truth, never computed.
	StagePrimary StageKind = iota
	// StageNet levels pull predictions from drive pins to sink pins.
	StageNet
	// StageCell levels push predictions across cell arcs, input pin to
	// output pin.
	StageCell
)

// String returns the stage kind's name.
func (k StageKind) String() string {
	switch k {
	case StagePrimary:
		return "primary"
	case StageNet:
		return "net"
	case StageCell:
		return "cell"
	default:
		return "unknown"
	}
}

// Level is one frontier of the topological schedule: the nodes whose
// predictions become final once this level executes.
type Level struct {
	Kind  StageKind
	Nodes []int
}

// Schedule is the topological companion of a Graph: named node subsets plus
// the ordered levels signal propagation walks through.
//
// Levels alternate net and cell stages after the primary-input level:
// primary, net, cell, net, cell, ... with an even total count.
type Schedule struct {
	// PINodes are the primary-input pins (level 0).
	PINodes []int
	// InputNodes are all net sink pins (cell inputs and primary outputs' loads).
	InputNodes []int
	// OutputNodes are all net drive pins.
	OutputNodes []int
	// OutputNodesNonPI are the drive pins excluding primary inputs, the
	// cell-stage frontier under teacher forcing.
	OutputNodesNonPI []int

	Levels []Level
}

// Validate enforces the schedule invariants up front so propagation code
// never needs parity checks:
//   - at least two levels, and an even number of them
//   - level 0 is the primary-input level
//   - odd levels are net stages, even levels (past 0) are cell stages
func (s *Schedule) Validate() error {
	if len(s.Levels) == 0 {
		return fmt.Errorf("schedule has no levels")
	}
	if len(s.Levels)%2 != 0 {
		return fmt.Errorf("schedule has %d levels, the net/cell alternation requires an even count", len(s.Levels))
	}
	if s.Levels[0].Kind != StagePrimary {
		return fmt.Errorf("level 0 has kind %s, expected %s", s.Levels[0].Kind, StagePrimary)
	}
	for i := 1; i < len(s.Levels); i++ {
		want := StageNet
		if i%2 == 0 {
			want = StageCell
		}
		if s.Levels[i].Kind != want {
			return fmt.Errorf("level %d has kind %s, expected %s", i, s.Levels[i].Kind, want)
		}
	}
	return nil
}

// CheckNodes verifies that every node referenced by the schedule is a valid
// index for a graph with numNodes nodes.
func (s *Schedule) CheckNodes(numNodes int) error {
	check := func(name string, nodes []int) error {
		for _, n := range nodes {
			if n < 0 || n >= numNodes {
				return fmt.Errorf("schedule %s: node %d out of range [0, %d)", name, n, numNodes)
			}
		}
		return nil
	}
	if err := check("pi_nodes", s.PINodes); err != nil {
		return err
	}
	if err := check("input_nodes", s.InputNodes); err != nil {
		return err
	}
	if err := check("output_nodes", s.OutputNodes); err != nil {
		return err
	}
	if err := check("output_nodes_nonpi", s.OutputNodesNonPI); err != nil {
		return err
	}
	for i, level := range s.Levels {
		if err := check(fmt.Sprintf("level %d", i), level.Nodes); err != nil {
			return err
		}
	}
	return nil
}
