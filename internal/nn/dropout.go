package nn

import (
	"fmt"
	"math/rand"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// Dropout randomly zeroes elements of the input with probability p during
// training, scaling the survivors by 1/(1-p) (inverted dropout). In
// evaluation mode it is the identity.
type Dropout[B tensor.Backend] struct {
	p        float64
	training bool
}

// NewDropout creates a Dropout module with drop probability p.
// Modules start in evaluation mode.
func NewDropout[B tensor.Backend](p float64) *Dropout[B] {
	if p < 0 || p >= 1 {
		panic(fmt.Sprintf("Dropout: probability must be in [0, 1), got %v", p))
	}
	return &Dropout[B]{p: p}
}

// SetTraining switches between training and evaluation behavior.
func (d *Dropout[B]) SetTraining(training bool) {
	d.training = training
}

// Forward applies dropout in training mode, identity otherwise.
func (d *Dropout[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return input
	}

	mask := tensor.Zeros[float32](input.Shape(), input.Backend())
	scale := float32(1.0 / (1.0 - d.p))
	data := mask.Data()
	for i := range data {
		//nolint:gosec // math/rand is fine for dropout masks
		if rand.Float64() >= d.p {
			data[i] = scale
		}
	}
	return input.Mul(mask)
}

// Parameters returns an empty slice (Dropout has no trainable parameters).
func (d *Dropout[B]) Parameters() []*Parameter[B] {
	return nil
}
