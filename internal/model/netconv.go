// Package model implements the learned timing models: net embedding
// convolution, topological signal propagation with LUT-based cell delays,
// the composed timing predictor, and the deep-GCN baseline.
package model

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/internal/nn"
	"github.com/timewire-ml/timewire/internal/tensor"
)

// NetConv computes net-level pin embeddings by one round of bidirectional
// message passing between a net's drive pin and its sink pins.
//
// Sink pins take their new feature directly from the drive→sink broadcast.
// Drive pins aggregate gated sink→drive messages twice, by sum (cumulative
// load) and by max (critical contribution), and reduce the pair together
// with their old feature. Neither aggregation alone is a sufficient proxy
// for delay, so both are kept.
type NetConv[B tensor.Backend] struct {
	inNF  int // input node feature width
	inEF  int // input edge feature width
	outNF int // output node feature width
	h1    int // sum-path hidden width
	h2    int // max-path hidden width

	msgO2I  *nn.MLP[B] // drive→sink broadcast, becomes the sink's new feature
	msgI2O  *nn.MLP[B] // sink→drive message, split into gate + two payloads
	reduceO *nn.MLP[B] // drive-pin reduction over [old feature, sum, max]

	backend B
}

// NewNetConv creates a NetConv layer with the reference hidden widths
// (h1 = h2 = 32).
func NewNetConv[B tensor.Backend](inNF, inEF, outNF int, backend B) *NetConv[B] {
	const h1, h2 = 32, 32
	return &NetConv[B]{
		inNF:    inNF,
		inEF:    inEF,
		outNF:   outNF,
		h1:      h1,
		h2:      h2,
		msgO2I:  nn.NewMLP(backend, []int{2*inNF + inEF, 64, 64, 64, 64, outNF}),
		msgI2O:  nn.NewMLP(backend, []int{2*inNF + inEF, 64, 64, 64, 1 + h1 + h2}),
		reduceO: nn.NewMLP(backend, []int{inNF + h1 + h2, 64, 64, 64, outNF}),
		backend: backend,
	}
}

// OutFeatures returns the output node feature width.
func (c *NetConv[B]) OutFeatures() int {
	return c.outNF
}

// Forward runs one round of net message passing and returns the new node
// feature tensor for the whole graph. Sink features are finalized by the
// drive→sink broadcast; drive features by the gated sink→drive reduction at
// the schedule's output-node subset.
func (c *NetConv[B]) Forward(g *graph.Graph[B], ts *graph.Schedule, nf *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if shape := nf.Shape(); len(shape) != 2 || shape[0] != g.NumNodes || shape[1] != c.inNF {
		return nil, fmt.Errorf("netconv: node features have shape %v, expected [%d, %d]", nf.Shape(), g.NumNodes, c.inNF)
	}
	if err := checkEdgeFeatures("netconv", &g.NetOut, c.inEF); err != nil {
		return nil, err
	}
	if err := checkEdgeFeatures("netconv", &g.NetIn, c.inEF); err != nil {
		return nil, err
	}

	// Drive→sink broadcast: each net_out message becomes its sink's new
	// feature via sum aggregation. A sink has exactly one drive, so the sum
	// is the message itself; isolated nodes stay zero.
	newNF := tensor.Zeros[float32](tensor.Shape{g.NumNodes, c.outNF}, c.backend)
	if g.NetOut.Len() > 0 {
		x := catSrcDstEF(nf, &g.NetOut)
		msg := c.msgO2I.Forward(x)
		newNF = msg.SegmentSum(g.NetOut.Dst, g.NumNodes)
	}

	// Sink→drive messages: gate k scales both payloads before aggregation.
	nfo1 := tensor.Zeros[float32](tensor.Shape{g.NumNodes, c.h1}, c.backend)
	nfo2 := tensor.Zeros[float32](tensor.Shape{g.NumNodes, c.h2}, c.backend)
	if g.NetIn.Len() > 0 {
		x := catSrcDstEF(nf, &g.NetIn)
		msg := c.msgI2O.Forward(x)
		parts := msg.Split([]int{1, c.h1, c.h2}, 1)
		k := parts[0].Sigmoid()
		f1 := parts[1].Mul(k)
		f2 := parts[2].Mul(k)
		nfo1 = f1.SegmentSum(g.NetIn.Dst, g.NumNodes)
		nfo2 = f2.SegmentMax(g.NetIn.Dst, g.NumNodes)
	}

	// Drive-pin reduction, applied only at the designated output subset.
	if len(ts.OutputNodes) > 0 {
		x := tensor.Cat([]*tensor.Tensor[float32, B]{
			nf.IndexSelect(ts.OutputNodes),
			nfo1.IndexSelect(ts.OutputNodes),
			nfo2.IndexSelect(ts.OutputNodes),
		}, 1)
		newNF.IndexCopy(ts.OutputNodes, c.reduceO.Forward(x))
	}

	return newNF, nil
}

// Parameters returns all MLP parameters.
func (c *NetConv[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, c.msgO2I.Parameters()...)
	params = append(params, c.msgI2O.Parameters()...)
	params = append(params, c.reduceO.Parameters()...)
	return params
}

// SetTraining propagates the training flag to all MLPs.
func (c *NetConv[B]) SetTraining(training bool) {
	c.msgO2I.SetTraining(training)
	c.msgI2O.SetTraining(training)
	c.reduceO.SetTraining(training)
}

// catSrcDstEF builds the per-edge message input [src feature, dst feature,
// edge feature] for a relation.
func catSrcDstEF[B tensor.Backend](nf *tensor.Tensor[float32, B], edges *graph.EdgeSet[B]) *tensor.Tensor[float32, B] {
	return tensor.Cat([]*tensor.Tensor[float32, B]{
		nf.IndexSelect(edges.Src),
		nf.IndexSelect(edges.Dst),
		edges.EF,
	}, 1)
}

// checkEdgeFeatures validates a relation's edge feature width.
func checkEdgeFeatures[B tensor.Backend](op string, edges *graph.EdgeSet[B], want int) error {
	if edges.Len() == 0 {
		return nil
	}
	if edges.EF == nil {
		return fmt.Errorf("%s: relation has %d edges but no edge features", op, edges.Len())
	}
	if shape := edges.EF.Shape(); shape[1] != want {
		return fmt.Errorf("%s: edge features have width %d, expected %d", op, shape[1], want)
	}
	return nil
}
