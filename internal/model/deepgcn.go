package model

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/internal/nn"
	"github.com/timewire-ml/timewire/internal/tensor"
)

// AllConv is the homogeneous-graph convolution the deep baseline stacks:
// one gated edge message per edge, sum and max aggregation at every node,
// then a reduction over [old feature, sum, max]. No direction asymmetry and
// no timing semantics; it shares the gating primitive with NetConv.
type AllConv[B tensor.Backend] struct {
	inNF  int
	inEF  int
	outNF int
	h1    int
	h2    int

	msg    *nn.MLP[B]
	reduce *nn.MLP[B]

	backend B
}

// NewAllConv creates an AllConv layer with the baseline hidden widths
// (in_ef = 12, h1 = h2 = 10).
func NewAllConv[B tensor.Backend](inNF, outNF int, backend B) *AllConv[B] {
	const inEF, h1, h2 = 12, 10, 10
	return &AllConv[B]{
		inNF:    inNF,
		inEF:    inEF,
		outNF:   outNF,
		h1:      h1,
		h2:      h2,
		msg:     nn.NewMLP(backend, []int{2*inNF + inEF, 32, 32, 32, 1 + h1 + h2}),
		reduce:  nn.NewMLP(backend, []int{inNF + h1 + h2, 32, 32, 32, outNF}),
		backend: backend,
	}
}

// Forward runs one convolution round and returns the new node features.
func (c *AllConv[B]) Forward(g *graph.Homograph[B], nf *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], error) {
	if shape := nf.Shape(); len(shape) != 2 || shape[0] != g.NumNodes || shape[1] != c.inNF {
		return nil, fmt.Errorf("allconv: node features have shape %v, expected [%d, %d]", nf.Shape(), g.NumNodes, c.inNF)
	}
	if len(g.Src) > 0 {
		if g.EF == nil {
			return nil, fmt.Errorf("allconv: graph has %d edges but no edge features", len(g.Src))
		}
		if shape := g.EF.Shape(); shape[1] != c.inEF {
			return nil, fmt.Errorf("allconv: edge features have width %d, expected %d", shape[1], c.inEF)
		}
	}

	nf1 := tensor.Zeros[float32](tensor.Shape{g.NumNodes, c.h1}, c.backend)
	nf2 := tensor.Zeros[float32](tensor.Shape{g.NumNodes, c.h2}, c.backend)
	if len(g.Src) > 0 {
		x := tensor.Cat([]*tensor.Tensor[float32, B]{
			nf.IndexSelect(g.Src),
			nf.IndexSelect(g.Dst),
			g.EF,
		}, 1)
		msg := c.msg.Forward(x)
		parts := msg.Split([]int{1, c.h1, c.h2}, 1)
		k := parts[0].Sigmoid()
		nf1 = parts[1].Mul(k).SegmentSum(g.Dst, g.NumNodes)
		nf2 = parts[2].Mul(k).SegmentMax(g.Dst, g.NumNodes)
	}

	x := tensor.Cat([]*tensor.Tensor[float32, B]{nf, nf1, nf2}, 1)
	return c.reduce.Forward(x), nil
}

// Parameters returns all MLP parameters.
func (c *AllConv[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, c.msg.Parameters()...)
	params = append(params, c.reduce.Parameters()...)
	return params
}

// DeepGCNII stacks AllConv layers with the "initial residual + identity
// mapping" recipe: every intermediate layer sees [running features,
// original features] and adds its output back onto the running features.
// Provided as an ablation baseline alongside TimingGCN.
type DeepGCNII[B tensor.Backend] struct {
	nLayers int
	outNF   int

	layer0 *AllConv[B]
	layers []*AllConv[B] // nLayers-2 intermediate residual layers
	layerN *AllConv[B]
}

// NewDeepGCNII creates the baseline with nLayers total layers (default
// configuration in the reference is 60) over 10-dim input node features.
// nLayers must be at least 2; with exactly 2, layer0 feeds layerN directly.
func NewDeepGCNII[B tensor.Backend](nLayers, outNF int, backend B) *DeepGCNII[B] {
	if nLayers < 2 {
		panic(fmt.Sprintf("NewDeepGCNII: need at least 2 layers, got %d", nLayers))
	}

	layers := make([]*AllConv[B], nLayers-2)
	for i := range layers {
		layers[i] = NewAllConv(16+10, 16, backend)
	}

	return &DeepGCNII[B]{
		nLayers: nLayers,
		outNF:   outNF,
		layer0:  NewAllConv(10, 16, backend),
		layers:  layers,
		layerN:  NewAllConv(16, outNF, backend),
	}
}

// NumLayers returns the total layer count.
func (m *DeepGCNII[B]) NumLayers() int {
	return m.nLayers
}

// NumIntermediate returns the number of residual intermediate layers.
func (m *DeepGCNII[B]) NumIntermediate() int {
	return len(m.layers)
}

// Forward runs the full stack on the graph's node features.
func (m *DeepGCNII[B]) Forward(g *graph.Homograph[B]) (*tensor.Tensor[float32, B], error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	x, err := m.layer0.Forward(g, g.NF)
	if err != nil {
		return nil, err
	}
	for _, layer := range m.layers {
		// Initial residual: re-inject the original features; identity
		// mapping: add the running features back on.
		in := tensor.Cat([]*tensor.Tensor[float32, B]{x, g.NF}, 1)
		out, err := layer.Forward(g, in)
		if err != nil {
			return nil, err
		}
		x = out.Add(x)
	}
	return m.layerN.Forward(g, x)
}

// Parameters returns all parameters across the stack.
func (m *DeepGCNII[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, m.layer0.Parameters()...)
	for _, layer := range m.layers {
		params = append(params, layer.Parameters()...)
	}
	params = append(params, m.layerN.Parameters()...)
	return params
}
