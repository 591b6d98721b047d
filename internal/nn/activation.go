package nn

import (
	"github.com/timewire-ml/timewire/internal/tensor"
)

// LeakyReLU is a leaky rectified linear unit activation module.
//
// Applies the element-wise function: f(x) = x for x >= 0, slope*x otherwise.
// The message and reduce MLPs all use a negative slope of 0.2.
type LeakyReLU[B tensor.Backend] struct {
	negSlope float64
}

// NewLeakyReLU creates a new LeakyReLU activation module with the given
// negative slope.
func NewLeakyReLU[B tensor.Backend](negSlope float64) *LeakyReLU[B] {
	return &LeakyReLU[B]{negSlope: negSlope}
}

// Forward applies the leaky rectifier.
func (r *LeakyReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.LeakyReLU(r.negSlope)
}

// Parameters returns an empty slice (LeakyReLU has no trainable parameters).
func (r *LeakyReLU[B]) Parameters() []*Parameter[B] {
	return nil
}

// NegSlope returns the configured negative slope.
func (r *LeakyReLU[B]) NegSlope() float64 {
	return r.negSlope
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x)).
// Used for the message gates in the convolution layers.
type Sigmoid[B tensor.Backend] struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies the logistic function.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Sigmoid()
}

// Parameters returns an empty slice (Sigmoid has no trainable parameters).
func (s *Sigmoid[B]) Parameters() []*Parameter[B] {
	return nil
}
