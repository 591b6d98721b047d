// Copyright 2025 Timewire ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network building blocks the timing
// models are assembled from: layers, activations, containers, and the
// LeakyReLU MLP used throughout.
//
// Example:
//
//	backend := cpu.New()
//	mlp := nn.NewMLP(backend, []int{10, 64, 64, 4})
//	y := mlp.Forward(x)
package nn

import (
	"github.com/timewire-ml/timewire/internal/nn"
	"github.com/timewire-ml/timewire/tensor"
)

// Module is the interface all neural network modules implement.
type Module[B tensor.Backend] = nn.Module[B]

// TrainableModule is implemented by modules whose forward pass differs
// between training and evaluation.
type TrainableModule = nn.TrainableModule

// Parameter is a named trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter wrapping a tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Linear is a fully connected layer: y = x @ W.T + b.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier-initialized weights and
// zero bias.
func NewLinear[B tensor.Backend](inFeatures, outFeatures int, backend B) *Linear[B] {
	return nn.NewLinear(inFeatures, outFeatures, backend)
}

// LeakyReLU is the leaky rectified linear activation.
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a LeakyReLU activation with the given negative slope.
func NewLeakyReLU[B tensor.Backend](negSlope float64) *LeakyReLU[B] {
	return nn.NewLeakyReLU[B](negSlope)
}

// Sigmoid is the logistic activation.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid activation.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return nn.NewSigmoid[B]()
}

// Dropout randomly zeroes inputs during training and is the identity in
// evaluation mode.
type Dropout[B tensor.Backend] = nn.Dropout[B]

// NewDropout creates a dropout layer with drop probability p.
func NewDropout[B tensor.Backend](p float64) *Dropout[B] {
	return nn.NewDropout[B](p)
}

// BatchNorm1d normalizes 2D activations per feature.
type BatchNorm1d[B tensor.Backend] = nn.BatchNorm1d[B]

// NewBatchNorm1d creates a batch normalization layer over numFeatures.
func NewBatchNorm1d[B tensor.Backend](numFeatures int, backend B) *BatchNorm1d[B] {
	return nn.NewBatchNorm1d(numFeatures, backend)
}

// Sequential chains modules, feeding each output into the next.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a sequential container from the given modules.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// MLP is a multi-layer perceptron with LeakyReLU activations between
// linear layers.
type MLP[B tensor.Backend] = nn.MLP[B]

// MLPOption configures optional MLP behavior.
type MLPOption = nn.MLPOption

// WithDropout enables dropout after each hidden activation.
func WithDropout() MLPOption {
	return nn.WithDropout()
}

// WithBatchNorm enables batch normalization between hidden layers.
func WithBatchNorm() MLPOption {
	return nn.WithBatchNorm()
}

// NewMLP creates an MLP with the given layer sizes.
// sizes[0] is the input width and sizes[len-1] the output width.
func NewMLP[B tensor.Backend](backend B, sizes []int, opts ...MLPOption) *MLP[B] {
	return nn.NewMLP(backend, sizes, opts...)
}
