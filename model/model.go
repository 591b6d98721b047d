// Copyright 2025 Timewire ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model provides the public API for the learned timing models:
// the net embedding convolution, the topological signal propagator with
// LUT-based cell delays, the composed TimingGCN predictor, and the
// deep-GCN ablation baseline.
//
// Example:
//
//	backend := cpu.New()
//	m := model.NewTimingGCN(backend)
//	netDelays, cellDelays, nodePreds, err := m.Forward(g, ts, false)
package model

import (
	"github.com/timewire-ml/timewire/internal/model"
	"github.com/timewire-ml/timewire/tensor"
)

// NetConv is the bidirectional net message-passing layer.
type NetConv[B tensor.Backend] = model.NetConv[B]

// NewNetConv creates a NetConv layer mapping inNF-dim node features over
// inEF-dim net edge features to outNF-dim embeddings.
func NewNetConv[B tensor.Backend](inNF, inEF, outNF int, backend B) *NetConv[B] {
	return model.NewNetConv(inNF, inEF, outNF, backend)
}

// SignalProp is the topological signal propagator with attention-based
// LUT interpolation for cell arc delays.
type SignalProp[B tensor.Backend] = model.SignalProp[B]

// NewSignalProp creates a SignalProp stage. numLUTs tables of size
// lutSz x lutSz are expected per cell arc; outNF is the per-node
// prediction width and outCEF the per-arc delay width.
func NewSignalProp[B tensor.Backend](inNF, numLUTs, lutSz, outNF, outCEF int, backend B) *SignalProp[B] {
	return model.NewSignalProp(inNF, numLUTs, lutSz, outNF, outCEF, backend)
}

// TimingGCN is the full timing predictor: three NetConv layers feeding a
// SignalProp stage.
type TimingGCN[B tensor.Backend] = model.TimingGCN[B]

// NewTimingGCN creates the timing predictor with the reference
// dimensions.
func NewTimingGCN[B tensor.Backend](backend B) *TimingGCN[B] {
	return model.NewTimingGCN(backend)
}

// AllConv is the homogeneous convolution layer of the deep baseline.
type AllConv[B tensor.Backend] = model.AllConv[B]

// NewAllConv creates an AllConv layer.
func NewAllConv[B tensor.Backend](inNF, outNF int, backend B) *AllConv[B] {
	return model.NewAllConv(inNF, outNF, backend)
}

// DeepGCNII is the deep residual baseline stack.
type DeepGCNII[B tensor.Backend] = model.DeepGCNII[B]

// NewDeepGCNII creates the baseline with nLayers total layers.
func NewDeepGCNII[B tensor.Backend](nLayers, outNF int, backend B) *DeepGCNII[B] {
	return model.NewDeepGCNII[B](nLayers, outNF, backend)
}
