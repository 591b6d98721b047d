package model

import (
	"github.com/timewire-ml/timewire/internal/backend/cpu"
	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/internal/tensor"
)

type testBackend = *cpu.CPUBackend

// chainGraph builds the smallest complete timing chain:
//
//	0 (primary input) --net--> 1 (cell input) --cell--> 2 (cell output) --net--> 3 (endpoint)
//
// with feature widths chosen by the caller. cellEF must cover the LUT axis
// metadata and table block of the propagation stage under test.
func chainGraph(b testBackend, nf, netEF, cellEF, atSlew int) (*graph.Graph[testBackend], *graph.Schedule) {
	g := &graph.Graph[testBackend]{
		NumNodes: 4,
		NF:       tensor.Randn[float32](tensor.Shape{4, nf}, b),
		ATSlew:   tensor.Randn[float32](tensor.Shape{4, atSlew}, b),
		NetOut: graph.EdgeSet[testBackend]{
			Src: []int{0, 2},
			Dst: []int{1, 3},
			EF:  tensor.Randn[float32](tensor.Shape{2, netEF}, b),
		},
		NetIn: graph.EdgeSet[testBackend]{
			Src: []int{1, 3},
			Dst: []int{0, 2},
			EF:  tensor.Randn[float32](tensor.Shape{2, netEF}, b),
		},
		CellOut: graph.EdgeSet[testBackend]{
			Src: []int{1},
			Dst: []int{2},
			EF:  tensor.Rand[float32](tensor.Shape{1, cellEF}, b),
		},
	}

	ts := &graph.Schedule{
		PINodes:          []int{0},
		InputNodes:       []int{1, 3},
		OutputNodes:      []int{0, 2},
		OutputNodesNonPI: []int{2},
		Levels: []graph.Level{
			{Kind: graph.StagePrimary, Nodes: []int{0}},
			{Kind: graph.StageNet, Nodes: []int{1}},
			{Kind: graph.StageCell, Nodes: []int{2}},
			{Kind: graph.StageNet, Nodes: []int{3}},
		},
	}
	return g, ts
}

// netOnlyGraph builds a two-node graph with a single net and no cell arcs.
func netOnlyGraph(b testBackend, nf, netEF, atSlew int) (*graph.Graph[testBackend], *graph.Schedule) {
	g := &graph.Graph[testBackend]{
		NumNodes: 2,
		NF:       tensor.Randn[float32](tensor.Shape{2, nf}, b),
		ATSlew:   tensor.Randn[float32](tensor.Shape{2, atSlew}, b),
		NetOut: graph.EdgeSet[testBackend]{
			Src: []int{0},
			Dst: []int{1},
			EF:  tensor.Randn[float32](tensor.Shape{1, netEF}, b),
		},
		NetIn: graph.EdgeSet[testBackend]{
			Src: []int{1},
			Dst: []int{0},
			EF:  tensor.Randn[float32](tensor.Shape{1, netEF}, b),
		},
	}

	ts := &graph.Schedule{
		PINodes:     []int{0},
		InputNodes:  []int{1},
		OutputNodes: []int{0},
		Levels: []graph.Level{
			{Kind: graph.StagePrimary, Nodes: []int{0}},
			{Kind: graph.StageNet, Nodes: []int{1}},
		},
	}
	return g, ts
}
