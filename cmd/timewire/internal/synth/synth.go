// Package synth builds small synthetic timing graphs for the demo command
// and end-to-end exercises: layered netlists of alternating net fanout and
// cell stages, with random features sized for the reference models.
package synth

import (
	"github.com/timewire-ml/timewire/graph"
	"github.com/timewire-ml/timewire/tensor"
)

// Params sizes a synthetic netlist and its feature tensors.
type Params struct {
	// PrimaryInputs is the number of primary-input drive pins.
	PrimaryInputs int
	// Stages is the number of cell stages between primary inputs and
	// endpoints.
	Stages int
	// Fanout is the number of sink pins each drive pin feeds; all sinks of
	// one drive feed a single cell output in the next stage.
	Fanout int

	// NodeFeatures is the per-pin static feature width.
	NodeFeatures int
	// NetEdgeFeatures is the per-net-edge feature width.
	NetEdgeFeatures int
	// CellEdgeFeatures is the per-cell-arc feature width; it must cover the
	// LUT axis metadata and table values the propagation stage decodes.
	CellEdgeFeatures int
	// PredictionChannels is the arrival-time/slew channel count.
	PredictionChannels int
}

// Reference returns parameters matching the reference TimingGCN dimensions:
// 10 pin features, 2 net edge features, 8 LUTs of size 7x7 per cell arc
// (8*(1+14) + 8*49 = 512 feature slots), 8 prediction channels.
func Reference(primaryInputs, stages, fanout int) Params {
	return Params{
		PrimaryInputs:      primaryInputs,
		Stages:             stages,
		Fanout:             fanout,
		NodeFeatures:       10,
		NetEdgeFeatures:    2,
		CellEdgeFeatures:   512,
		PredictionChannels: 8,
	}
}

// Timing builds a layered synthetic timing graph and its topological
// schedule. The netlist alternates net fanout and cell stages and always
// ends on a net stage, so the schedule's level count is even.
func Timing[B tensor.Backend](p Params, backend B) (*graph.Graph[B], *graph.Schedule) {
	next := 0
	alloc := func() int {
		id := next
		next++
		return id
	}

	drives := make([]int, p.PrimaryInputs)
	for i := range drives {
		drives[i] = alloc()
	}

	ts := &graph.Schedule{
		PINodes:     append([]int(nil), drives...),
		OutputNodes: append([]int(nil), drives...),
	}
	ts.Levels = append(ts.Levels, graph.Level{
		Kind:  graph.StagePrimary,
		Nodes: append([]int(nil), drives...),
	})

	var netSrc, netDst []int
	var cellSrc, cellDst []int

	// fanOut expands every drive into Fanout sinks and records the net
	// edges; it returns the sinks grouped by their drive.
	fanOut := func(drives []int) [][]int {
		groups := make([][]int, len(drives))
		var level []int
		for i, d := range drives {
			for f := 0; f < p.Fanout; f++ {
				s := alloc()
				groups[i] = append(groups[i], s)
				level = append(level, s)
				netSrc = append(netSrc, d)
				netDst = append(netDst, s)
			}
		}
		ts.InputNodes = append(ts.InputNodes, level...)
		ts.Levels = append(ts.Levels, graph.Level{Kind: graph.StageNet, Nodes: level})
		return groups
	}

	groups := fanOut(drives)
	for s := 0; s < p.Stages; s++ {
		// One cell output per sink group, with one timing arc per sink.
		outs := make([]int, len(groups))
		for i, g := range groups {
			o := alloc()
			outs[i] = o
			for _, in := range g {
				cellSrc = append(cellSrc, in)
				cellDst = append(cellDst, o)
			}
		}
		ts.OutputNodes = append(ts.OutputNodes, outs...)
		ts.OutputNodesNonPI = append(ts.OutputNodesNonPI, outs...)
		ts.Levels = append(ts.Levels, graph.Level{Kind: graph.StageCell, Nodes: outs})

		groups = fanOut(outs)
	}

	numNodes := next
	g := &graph.Graph[B]{
		NumNodes: numNodes,
		NF:       tensor.Randn[float32](tensor.Shape{numNodes, p.NodeFeatures}, backend),
		ATSlew:   tensor.Randn[float32](tensor.Shape{numNodes, p.PredictionChannels}, backend),
		NetOut: graph.EdgeSet[B]{
			Src: netSrc,
			Dst: netDst,
			EF:  tensor.Randn[float32](tensor.Shape{len(netSrc), p.NetEdgeFeatures}, backend),
		},
		NetIn: graph.EdgeSet[B]{
			Src: netDst,
			Dst: netSrc,
			EF:  tensor.Randn[float32](tensor.Shape{len(netSrc), p.NetEdgeFeatures}, backend),
		},
		CellOut: graph.EdgeSet[B]{
			Src: cellSrc,
			Dst: cellDst,
			EF:  tensor.Rand[float32](tensor.Shape{len(cellSrc), p.CellEdgeFeatures}, backend),
		},
	}
	return g, ts
}

// Homo flattens a timing graph into the homogeneous view the deep baseline
// runs on: net and cell edges merged into one relation with fresh random
// edge features of the given width.
func Homo[B tensor.Backend](g *graph.Graph[B], edgeFeatures int, backend B) *graph.Homograph[B] {
	src := append(append([]int(nil), g.NetOut.Src...), g.CellOut.Src...)
	dst := append(append([]int(nil), g.NetOut.Dst...), g.CellOut.Dst...)
	return &graph.Homograph[B]{
		NumNodes: g.NumNodes,
		Src:      src,
		Dst:      dst,
		NF:       g.NF,
		EF:       tensor.Randn[float32](tensor.Shape{len(src), edgeFeatures}, backend),
	}
}
