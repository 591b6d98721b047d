package model

import (
	"github.com/timewire-ml/timewire/internal/graph"
	"github.com/timewire-ml/timewire/internal/nn"
	"github.com/timewire-ml/timewire/internal/tensor"
)

// TimingGCN composes three stacked NetConv layers with one SignalProp stage
// into the full timing predictor: 10-dim pin features are refined into a
// 16-dim net embedding whose first 4 channels read out as net delays, then
// the original and refined features together drive signal propagation.
type TimingGCN[B tensor.Backend] struct {
	nc1  *NetConv[B]
	nc2  *NetConv[B]
	nc3  *NetConv[B]
	prop *SignalProp[B]
}

// netDelayChannels is the number of leading net-embedding channels
// interpreted as net-delay predictions.
const netDelayChannels = 4

// NewTimingGCN creates the model with the reference dimensions:
// NetConv 10→32→32→16 over 2-dim net edge features, SignalProp over the
// 26-dim concatenated feature with 8 LUTs of size 7x7, 8 prediction
// channels and 4 delay channels per cell arc.
func NewTimingGCN[B tensor.Backend](backend B) *TimingGCN[B] {
	return &TimingGCN[B]{
		nc1:  NewNetConv(10, 2, 32, backend),
		nc2:  NewNetConv(32, 2, 32, backend),
		nc3:  NewNetConv(32, 2, 16, backend),
		prop: NewSignalProp(10+16, 8, 7, 8, 4, backend),
	}
}

// Forward runs the full pipeline and returns net delays
// [numNodes, 4], cell delays [numCellEdges, 4] and node predictions
// [numNodes, 8].
func (m *TimingGCN[B]) Forward(g *graph.Graph[B], ts *graph.Schedule, groundtruth bool) (netDelays, cellDelays, nodePreds *tensor.Tensor[float32, B], err error) {
	if err := g.Validate(); err != nil {
		return nil, nil, nil, err
	}

	nf0 := g.NF
	x, err := m.nc1.Forward(g, ts, nf0)
	if err != nil {
		return nil, nil, nil, err
	}
	x, err = m.nc2.Forward(g, ts, x)
	if err != nil {
		return nil, nil, nil, err
	}
	x, err = m.nc3.Forward(g, ts, x)
	if err != nil {
		return nil, nil, nil, err
	}

	// Net delays are the leading channels of the final net embedding.
	netDelays = x.Narrow(1, 0, netDelayChannels)

	// Signal propagation sees both the raw pin features and the embedding.
	nf1 := tensor.Cat([]*tensor.Tensor[float32, B]{nf0, x}, 1)
	nodePreds, cellDelays, err = m.prop.Forward(g, ts, nf1, groundtruth)
	if err != nil {
		return nil, nil, nil, err
	}

	return netDelays, cellDelays, nodePreds, nil
}

// Parameters returns all parameters of the composed modules.
func (m *TimingGCN[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, m.nc1.Parameters()...)
	params = append(params, m.nc2.Parameters()...)
	params = append(params, m.nc3.Parameters()...)
	params = append(params, m.prop.Parameters()...)
	return params
}

// SetTraining propagates the training flag to every sub-module.
func (m *TimingGCN[B]) SetTraining(training bool) {
	m.nc1.SetTraining(training)
	m.nc2.SetTraining(training)
	m.nc3.SetTraining(training)
	m.prop.SetTraining(training)
}
