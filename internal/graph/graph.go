// Package graph defines the heterogeneous timing graph the models operate
// on: pins as nodes, net and cell-arc relations as typed edge lists, and the
// topological schedule that orders propagation.
package graph

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// Relation identifies a typed edge collection of the timing graph.
type Relation int

// Edge relations. Every edge belongs to exactly one relation.
const (
	// NetOut connects a net's drive pin to each of its sink pins.
	NetOut Relation = iota
	// NetIn is the reverse orientation, sink pin to drive pin.
	NetIn
	// CellOut connects a cell's input pin to an output pin (one timing arc).
	CellOut
)

// String returns the relation's canonical name.
func (r Relation) String() string {
	switch r {
	case NetOut:
		return "net_out"
	case NetIn:
		return "net_in"
	case CellOut:
		return "cell_out"
	default:
		return "unknown"
	}
}

// EdgeSet is one typed edge collection: parallel src/dst node index slices
// and an optional per-edge feature tensor with one row per edge.
type EdgeSet[B tensor.Backend] struct {
	Src []int
	Dst []int
	EF  *tensor.Tensor[float32, B] // may be nil when the relation carries no features
}

// Len returns the number of edges.
func (e *EdgeSet[B]) Len() int {
	return len(e.Src)
}

func (e *EdgeSet[B]) validate(rel Relation, numNodes int) error {
	if len(e.Src) != len(e.Dst) {
		return fmt.Errorf("%s: src has %d entries, dst has %d", rel, len(e.Src), len(e.Dst))
	}
	for i := range e.Src {
		if e.Src[i] < 0 || e.Src[i] >= numNodes {
			return fmt.Errorf("%s: edge %d src %d out of range [0, %d)", rel, i, e.Src[i], numNodes)
		}
		if e.Dst[i] < 0 || e.Dst[i] >= numNodes {
			return fmt.Errorf("%s: edge %d dst %d out of range [0, %d)", rel, i, e.Dst[i], numNodes)
		}
	}
	if e.EF != nil {
		shape := e.EF.Shape()
		if len(shape) != 2 || shape[0] != len(e.Src) {
			return fmt.Errorf("%s: edge features have shape %v, expected [%d, *]", rel, shape, len(e.Src))
		}
	}
	return nil
}

// Graph is a heterogeneous directed multigraph over circuit pins.
//
// A graph is built once per circuit instance and is immutable for the
// duration of a forward pass; every intermediate tensor a model computes is
// function-local and discarded on return.
type Graph[B tensor.Backend] struct {
	NumNodes int

	// NF holds the static per-pin features, one row per node.
	NF *tensor.Tensor[float32, B]
	// ATSlew holds the ground-truth arrival time/slew per pin, used for the
	// primary-input level and for teacher forcing.
	ATSlew *tensor.Tensor[float32, B]

	NetOut  EdgeSet[B]
	NetIn   EdgeSet[B]
	CellOut EdgeSet[B]
}

// Validate checks edge index ranges and feature tensor shapes.
func (g *Graph[B]) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("graph has %d nodes, expected at least 1", g.NumNodes)
	}
	if g.NF == nil {
		return fmt.Errorf("graph is missing node features")
	}
	if shape := g.NF.Shape(); len(shape) != 2 || shape[0] != g.NumNodes {
		return fmt.Errorf("node features have shape %v, expected [%d, *]", g.NF.Shape(), g.NumNodes)
	}
	if g.ATSlew != nil {
		if shape := g.ATSlew.Shape(); len(shape) != 2 || shape[0] != g.NumNodes {
			return fmt.Errorf("ground-truth features have shape %v, expected [%d, *]", g.ATSlew.Shape(), g.NumNodes)
		}
	}
	if err := g.NetOut.validate(NetOut, g.NumNodes); err != nil {
		return err
	}
	if err := g.NetIn.validate(NetIn, g.NumNodes); err != nil {
		return err
	}
	return g.CellOut.validate(CellOut, g.NumNodes)
}

// Homograph is the homogeneous view used by the baseline deep-GCN models:
// a single untyped edge collection with one feature row per edge.
type Homograph[B tensor.Backend] struct {
	NumNodes int
	Src      []int
	Dst      []int
	NF       *tensor.Tensor[float32, B]
	EF       *tensor.Tensor[float32, B]
}

// Validate checks edge index ranges and feature tensor shapes.
func (g *Homograph[B]) Validate() error {
	if g.NumNodes <= 0 {
		return fmt.Errorf("homograph has %d nodes, expected at least 1", g.NumNodes)
	}
	if len(g.Src) != len(g.Dst) {
		return fmt.Errorf("homograph: src has %d entries, dst has %d", len(g.Src), len(g.Dst))
	}
	for i := range g.Src {
		if g.Src[i] < 0 || g.Src[i] >= g.NumNodes {
			return fmt.Errorf("homograph: edge %d src %d out of range [0, %d)", i, g.Src[i], g.NumNodes)
		}
		if g.Dst[i] < 0 || g.Dst[i] >= g.NumNodes {
			return fmt.Errorf("homograph: edge %d dst %d out of range [0, %d)", i, g.Dst[i], g.NumNodes)
		}
	}
	return nil
}
