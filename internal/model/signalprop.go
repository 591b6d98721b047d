package model

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/internal/nn"
	"github.com/timewire-ml/timewire/internal/tensor"
)

// SignalProp propagates arrival-time/slew predictions through the graph in
// strict topological order, alternating net-stage and cell-stage transfer.
// Cell arcs are modeled by a differentiable lookup into the tabulated
// non-linear delay model carried on each cell_out edge: learned attention
// distributions over the two LUT axes are outer-multiplied into a soft
// selection matrix, so the lookup stays differentiable end to end instead
// of hard-indexing the grid.
//
// Two modes:
//   - teacher forced: every stage reads ground truth, and a single net
//     stage plus a single cell stage cover the whole graph in parallel
//   - autoregressive: stages execute level by level, each reading the
//     predictions the previous level finalized
type SignalProp[B tensor.Backend] struct {
	inNF    int // input node feature width
	numLUTs int // lookup tables per cell arc
	lutSz   int // breakpoints per LUT axis
	outNF   int // prediction width (arrival time/slew channels)
	outCEF  int // cell-delay prediction width per arc
	h1      int // sum-path hidden width
	h2      int // max-path hidden width
	lutDup  int // independent duplicate queries per LUT

	netProp    *nn.MLP[B] // net-stage transfer, drive → sink
	lutQuery   *nn.MLP[B] // builds duplicated (x, y) LUT axis queries
	lutAttn    *nn.MLP[B] // answers a query against one LUT's axis metadata
	cellarcMsg *nn.MLP[B] // cell-arc message: gate + payloads + delay readout
	cellReduce *nn.MLP[B] // output-pin reduction over [feature, sum, max]

	backend B
}

// NewSignalProp creates a SignalProp stage with the reference hidden widths
// (h1 = h2 = 32, lutDup = 4).
func NewSignalProp[B tensor.Backend](inNF, numLUTs, lutSz, outNF, outCEF int, backend B) *SignalProp[B] {
	const h1, h2, lutDup = 32, 32, 4
	return &SignalProp[B]{
		inNF:       inNF,
		numLUTs:    numLUTs,
		lutSz:      lutSz,
		outNF:      outNF,
		outCEF:     outCEF,
		h1:         h1,
		h2:         h2,
		lutDup:     lutDup,
		netProp:    nn.NewMLP(backend, []int{outNF + 2*inNF, 64, 64, 64, 64, outNF}),
		lutQuery:   nn.NewMLP(backend, []int{outNF + 2*inNF, 64, 64, 64, numLUTs * lutDup * 2}),
		lutAttn:    nn.NewMLP(backend, []int{1 + 2 + 2*lutSz, 64, 64, 64, 2 * lutSz}),
		cellarcMsg: nn.NewMLP(backend, []int{outNF + 2*inNF + numLUTs*lutDup, 64, 64, 64, 1 + h1 + h2 + outCEF}),
		cellReduce: nn.NewMLP(backend, []int{inNF + h1 + h2, 64, 64, 64, outNF}),
		backend:    backend,
	}
}

// OutFeatures returns the node prediction width.
func (p *SignalProp[B]) OutFeatures() int {
	return p.outNF
}

// axisLen is the length of the LUT axis metadata prefix in a cell_out
// edge's feature vector: per table, one breakpoint-count slot plus two axes
// of breakpoints.
func (p *SignalProp[B]) axisLen() int {
	return p.numLUTs * (1 + 2*p.lutSz)
}

// tablesLen is the length of the flattened LUT value block that follows the
// axis metadata.
func (p *SignalProp[B]) tablesLen() int {
	return p.numLUTs * p.lutSz * p.lutSz
}

// Forward propagates predictions through the schedule and returns the final
// node prediction tensor [numNodes, outNF] and the per-cell_out-edge delay
// prediction tensor [numCellEdges, outCEF] (nil when the graph has no cell
// arcs).
//
// Configuration errors (malformed schedule, width mismatches, short LUT
// blocks) are returned before any computation happens.
func (p *SignalProp[B]) Forward(g *graph.Graph[B], ts *graph.Schedule, nf *tensor.Tensor[float32, B], groundtruth bool) (*tensor.Tensor[float32, B], *tensor.Tensor[float32, B], error) {
	if err := ts.Validate(); err != nil {
		return nil, nil, fmt.Errorf("signalprop: %w", err)
	}
	if err := ts.CheckNodes(g.NumNodes); err != nil {
		return nil, nil, fmt.Errorf("signalprop: %w", err)
	}
	if shape := nf.Shape(); len(shape) != 2 || shape[0] != g.NumNodes || shape[1] != p.inNF {
		return nil, nil, fmt.Errorf("signalprop: node features have shape %v, expected [%d, %d]", nf.Shape(), g.NumNodes, p.inNF)
	}
	if g.ATSlew == nil {
		return nil, nil, fmt.Errorf("signalprop: graph is missing ground-truth arrival/slew features")
	}
	if shape := g.ATSlew.Shape(); shape[1] != p.outNF {
		return nil, nil, fmt.Errorf("signalprop: ground-truth features have width %d, expected %d", shape[1], p.outNF)
	}
	if g.CellOut.Len() > 0 {
		if g.CellOut.EF == nil {
			return nil, nil, fmt.Errorf("signalprop: cell_out relation has %d edges but no edge features", g.CellOut.Len())
		}
		if want := p.axisLen() + p.tablesLen(); g.CellOut.EF.Shape()[1] < want {
			return nil, nil, fmt.Errorf("signalprop: cell_out edge features have width %d, need at least %d for %d LUTs of size %dx%d",
				g.CellOut.EF.Shape()[1], want, p.numLUTs, p.lutSz, p.lutSz)
		}
	}

	// Level 0: primary inputs carry ground truth, never a computed value.
	newNF := tensor.Zeros[float32](tensor.Shape{g.NumNodes, p.outNF}, p.backend)
	if len(ts.PINodes) > 0 {
		newNF.IndexCopy(ts.PINodes, g.ATSlew.IndexSelect(ts.PINodes))
	}

	// One delay row per cell arc; nil when the graph has no cell arcs.
	// Arcs never reached by the schedule keep their zero row.
	var cellDelays *tensor.Tensor[float32, B]
	if g.CellOut.Len() > 0 {
		cellDelays = tensor.Zeros[float32](tensor.Shape{g.CellOut.Len(), p.outCEF}, p.backend)
	}

	if groundtruth {
		// Teacher forcing: both stages read ground truth, so all net sinks
		// and all non-PI drive pins can be processed in one shot each.
		if len(ts.InputNodes) > 0 {
			p.propNet(g, newNF, nf, ts.InputNodes, true)
		}
		if len(ts.OutputNodesNonPI) > 0 {
			p.propCell(g, newNF, cellDelays, nf, ts.OutputNodesNonPI, true)
		}
	} else {
		// Autoregressive: each level reads what the previous level wrote.
		for i := 1; i < len(ts.Levels); i++ {
			level := &ts.Levels[i]
			if len(level.Nodes) == 0 {
				continue
			}
			switch level.Kind {
			case graph.StageNet:
				p.propNet(g, newNF, nf, level.Nodes, false)
			case graph.StageCell:
				p.propCell(g, newNF, cellDelays, nf, level.Nodes, false)
			}
		}
	}

	return newNF, cellDelays, nil
}

// propNet finalizes the predictions of a frontier of sink pins by pulling
// messages along net_out edges from their drive pins. Frontier pins with no
// incoming net edge are set to zero, the sum identity.
func (p *SignalProp[B]) propNet(g *graph.Graph[B], newNF, nf *tensor.Tensor[float32, B], frontier []int, groundtruth bool) {
	src, dst, _ := filterEdgesByDst(&g.NetOut, frontier, g.NumNodes)
	if len(src) == 0 {
		newNF.IndexCopy(frontier, tensor.Zeros[float32](tensor.Shape{len(frontier), p.outNF}, p.backend))
		return
	}

	last := p.lastPrediction(g, newNF, groundtruth).IndexSelect(src)
	x := tensor.Cat([]*tensor.Tensor[float32, B]{last, nf.IndexSelect(src), nf.IndexSelect(dst)}, 1)
	msg := p.netProp.Forward(x)

	summed := msg.SegmentSum(dst, g.NumNodes)
	newNF.IndexCopy(frontier, summed.IndexSelect(frontier))
}

// propCell finalizes the predictions of a frontier of cell output pins from
// their incoming cell_out arcs, and writes each arc's delay prediction.
func (p *SignalProp[B]) propCell(g *graph.Graph[B], newNF, cellDelays, nf *tensor.Tensor[float32, B], frontier []int, groundtruth bool) {
	src, dst, edgeIdx := filterEdgesByDst(&g.CellOut, frontier, g.NumNodes)

	nfc1 := tensor.Zeros[float32](tensor.Shape{g.NumNodes, p.h1}, p.backend)
	nfc2 := tensor.Zeros[float32](tensor.Shape{g.NumNodes, p.h2}, p.backend)

	if len(src) > 0 {
		last := p.lastPrediction(g, newNF, groundtruth).IndexSelect(src)
		srcNF := nf.IndexSelect(src)
		dstNF := nf.IndexSelect(dst)

		r := p.lutLookup(g, last, srcNF, dstNF, edgeIdx)

		// Cell-arc message: gate + sum payload + max payload + delay readout.
		// The delay channel is emitted ungated.
		x := tensor.Cat([]*tensor.Tensor[float32, B]{last, srcNF, dstNF, r}, 1)
		msg := p.cellarcMsg.Forward(x)
		parts := msg.Split([]int{1, p.h1, p.h2, p.outCEF}, 1)
		k := parts[0].Sigmoid()
		f1 := parts[1].Mul(k)
		f2 := parts[2].Mul(k)
		cellDelays.IndexCopy(edgeIdx, parts[3])

		nfc1 = f1.SegmentSum(dst, g.NumNodes)
		nfc2 = f2.SegmentMax(dst, g.NumNodes)
	}

	x := tensor.Cat([]*tensor.Tensor[float32, B]{
		nf.IndexSelect(frontier),
		nfc1.IndexSelect(frontier),
		nfc2.IndexSelect(frontier),
	}, 1)
	newNF.IndexCopy(frontier, p.cellReduce.Forward(x))
}

// lutLookup performs the attention-based NLDM lookup for a batch of cell
// arcs and returns one result column per (table, duplicate) pair:
// [numEdges, numLUTs*lutDup].
func (p *SignalProp[B]) lutLookup(g *graph.Graph[B], last, srcNF, dstNF *tensor.Tensor[float32, B], edgeIdx []int) *tensor.Tensor[float32, B] {
	numEdges := len(edgeIdx)
	ef := g.CellOut.EF.IndexSelect(edgeIdx)

	// Build duplicated 2-channel axis queries, one (x, y) pair per
	// (edge, table, duplicate).
	q := p.lutQuery.Forward(tensor.Cat([]*tensor.Tensor[float32, B]{last, srcNF, dstNF}, 1))
	q = q.Reshape(numEdges*p.numLUTs*p.lutDup, 2)

	// Axis metadata lives in the feature prefix, one row per (edge, table);
	// replicate rows to align with the duplicated queries.
	axisWidth := 1 + 2*p.lutSz
	axis := ef.Narrow(1, 0, p.axisLen()).
		Reshape(numEdges*p.numLUTs, axisWidth).
		RepeatRows(p.lutDup)

	// Two attention distributions per query, one per LUT axis.
	a := p.lutAttn.Forward(tensor.Cat([]*tensor.Tensor[float32, B]{q, axis}, 1))
	parts := a.Split([]int{p.lutSz, p.lutSz}, 1)
	ax := parts[0]
	ay := parts[1]

	// Table values follow the axis block, one grid per (edge, table).
	tables := ef.Narrow(1, p.axisLen(), p.tablesLen()).
		Reshape(numEdges*p.numLUTs, p.lutSz*p.lutSz).
		RepeatRows(p.lutDup)

	r := lookupTables(tables, ax, ay)
	return r.Reshape(numEdges, p.numLUTs*p.lutDup)
}

// lookupTables contracts each flattened LUT grid against the outer product
// of its two axis attention distributions. With one-hot distributions this
// degenerates to reading the single selected table entry.
//
// tables: [m, lutSz*lutSz], ax/ay: [m, lutSz] → result [m].
func lookupTables[B tensor.Backend](tables, ax, ay *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	m := tables.Shape()[0]
	lutSz := ax.Shape()[1]

	attn := ax.Reshape(m, lutSz, 1).BatchMatMul(ay.Reshape(m, 1, lutSz))
	return tables.Mul(attn.Reshape(m, lutSz*lutSz)).SumDim(1, false)
}

// Parameters returns all MLP parameters.
func (p *SignalProp[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, p.netProp.Parameters()...)
	params = append(params, p.lutQuery.Parameters()...)
	params = append(params, p.lutAttn.Parameters()...)
	params = append(params, p.cellarcMsg.Parameters()...)
	params = append(params, p.cellReduce.Parameters()...)
	return params
}

// SetTraining propagates the training flag to all MLPs.
func (p *SignalProp[B]) SetTraining(training bool) {
	p.netProp.SetTraining(training)
	p.lutQuery.SetTraining(training)
	p.lutAttn.SetTraining(training)
	p.cellarcMsg.SetTraining(training)
	p.cellReduce.SetTraining(training)
}

// lastPrediction selects the prediction source for a stage: ground truth
// under teacher forcing, the running prediction buffer otherwise.
func (p *SignalProp[B]) lastPrediction(g *graph.Graph[B], newNF *tensor.Tensor[float32, B], groundtruth bool) *tensor.Tensor[float32, B] {
	if groundtruth {
		return g.ATSlew
	}
	return newNF
}

// filterEdgesByDst selects the edges of a relation whose destination is in
// the frontier, returning the filtered src/dst lists and original edge
// indices.
func filterEdgesByDst[B tensor.Backend](edges *graph.EdgeSet[B], frontier []int, numNodes int) (src, dst, edgeIdx []int) {
	inFrontier := make([]bool, numNodes)
	for _, n := range frontier {
		inFrontier[n] = true
	}
	for i := range edges.Dst {
		if inFrontier[edges.Dst[i]] {
			src = append(src, edges.Src[i])
			dst = append(dst, edges.Dst[i])
			edgeIdx = append(edgeIdx, i)
		}
	}
	return src, dst, edgeIdx
}
