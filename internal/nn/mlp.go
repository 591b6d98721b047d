package nn

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/tensor"
)

const (
	// mlpNegSlope is the LeakyReLU negative slope between MLP layers.
	mlpNegSlope = 0.2
	// mlpDropout is the drop probability when dropout is enabled.
	mlpDropout = 0.2
)

// MLP is the feed-forward stack shared by all message and reduce functions:
// a Linear projection per width transition, with LeakyReLU(0.2) and optional
// Dropout(0.2) and BatchNorm1d between layers. Nothing follows the final
// Linear, so the output is an unbounded linear read-out.
type MLP[B tensor.Backend] struct {
	sizes []int
	seq   *Sequential[B]
}

// MLPOption configures optional inter-layer regularization.
type MLPOption func(*mlpOptions)

type mlpOptions struct {
	dropout   bool
	batchNorm bool
}

// WithDropout enables Dropout(0.2) after each hidden activation.
func WithDropout() MLPOption {
	return func(o *mlpOptions) { o.dropout = true }
}

// WithBatchNorm enables BatchNorm1d after each hidden activation.
func WithBatchNorm() MLPOption {
	return func(o *mlpOptions) { o.batchNorm = true }
}

// NewMLP builds an MLP from an ordered list of layer widths.
// At least two widths (input and output) are required.
func NewMLP[B tensor.Backend](backend B, sizes []int, opts ...MLPOption) *MLP[B] {
	if len(sizes) < 2 {
		panic(fmt.Sprintf("NewMLP: need at least 2 widths, got %v", sizes))
	}

	var o mlpOptions
	for _, opt := range opts {
		opt(&o)
	}

	seq := NewSequential[B]()
	for i := 1; i < len(sizes); i++ {
		seq.Add(NewLinear(sizes[i-1], sizes[i], backend))
		if i < len(sizes)-1 {
			seq.Add(NewLeakyReLU[B](mlpNegSlope))
			if o.dropout {
				seq.Add(NewDropout[B](mlpDropout))
			}
			if o.batchNorm {
				seq.Add(NewBatchNorm1d(sizes[i], backend))
			}
		}
	}

	return &MLP[B]{
		sizes: append([]int(nil), sizes...),
		seq:   seq,
	}
}

// Forward applies the stack to a [batch, in] input, returning [batch, out].
func (m *MLP[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return m.seq.Forward(input)
}

// Parameters returns all Linear and BatchNorm parameters.
func (m *MLP[B]) Parameters() []*Parameter[B] {
	return m.seq.Parameters()
}

// SetTraining propagates the training flag to Dropout/BatchNorm children.
func (m *MLP[B]) SetTraining(training bool) {
	m.seq.SetTraining(training)
}

// InFeatures returns the input width.
func (m *MLP[B]) InFeatures() int {
	return m.sizes[0]
}

// OutFeatures returns the output width.
func (m *MLP[B]) OutFeatures() int {
	return m.sizes[len(m.sizes)-1]
}

// Linears returns the Linear layers in order, for weight injection.
func (m *MLP[B]) Linears() []*Linear[B] {
	var linears []*Linear[B]
	for i := 0; i < m.seq.Len(); i++ {
		if l, ok := m.seq.Module(i).(*Linear[B]); ok {
			linears = append(linears, l)
		}
	}
	return linears
}

// StateDict returns all Linear parameters keyed by layer index,
// e.g. "0.weight", "0.bias", "1.weight", ...
func (m *MLP[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor)
	for i, l := range m.Linears() {
		for name, raw := range l.StateDict() {
			state[fmt.Sprintf("%d.%s", i, name)] = raw
		}
	}
	return state
}

// LoadStateDict loads Linear parameters from a state dictionary keyed the
// way StateDict produces them.
func (m *MLP[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	for i, l := range m.Linears() {
		sub := make(map[string]*tensor.RawTensor, 2)
		for _, name := range []string{"weight", "bias"} {
			raw, ok := state[fmt.Sprintf("%d.%s", i, name)]
			if !ok {
				return fmt.Errorf("missing %d.%s in state dict", i, name)
			}
			sub[name] = raw
		}
		if err := l.LoadStateDict(sub); err != nil {
			return fmt.Errorf("layer %d: %w", i, err)
		}
	}
	return nil
}
