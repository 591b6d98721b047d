// Package nn implements the neural-network building blocks used by the
// timewire timing models.
//
// This package provides:
//   - Module interface: Base interface for all NN components
//   - Parameter: Trainable parameters
//   - Linear: Fully connected layer
//   - LeakyReLU, Sigmoid: Activations
//   - Dropout, BatchNorm1d: Regularization layers
//   - Sequential: Container for stacking layers
//   - MLP: The width-list feed-forward stack all message and reduce
//     functions share
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/timewire-ml/timewire/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Modules can be composed to build complex architectures:
//
//	model := nn.NewSequential[Backend](
//	    nn.NewLinear(10, 64, backend),
//	    nn.NewLeakyReLU[Backend](0.2),
//	    nn.NewLinear(64, 8, backend),
//	)
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	// Linear-like modules expect [batch, features].
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module,
	// including nested module parameters. Modules without trainable
	// parameters return an empty slice.
	Parameters() []*Parameter[B]
}

// TrainableModule is implemented by modules whose forward pass differs
// between training and evaluation (Dropout, BatchNorm1d). Containers
// propagate the flag to every child that implements it.
type TrainableModule interface {
	SetTraining(training bool)
}
