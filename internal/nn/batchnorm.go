package nn

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// BatchNorm1d normalizes each feature over the batch dimension:
//
//	y = gamma * (x - mean) / sqrt(var + eps) + beta
//
// In training mode the batch statistics are used and folded into running
// estimates; in evaluation mode the running estimates are used.
type BatchNorm1d[B tensor.Backend] struct {
	numFeatures int
	eps         float32
	momentum    float32
	training    bool

	gamma *Parameter[B] // scale, [features]
	beta  *Parameter[B] // shift, [features]

	runningMean *tensor.Tensor[float32, B] // [1, features]
	runningVar  *tensor.Tensor[float32, B] // [1, features]
}

// NewBatchNorm1d creates a BatchNorm1d over the given feature width.
// Modules start in evaluation mode.
func NewBatchNorm1d[B tensor.Backend](numFeatures int, backend B) *BatchNorm1d[B] {
	return &BatchNorm1d[B]{
		numFeatures: numFeatures,
		eps:         1e-5,
		momentum:    0.1,
		gamma:       NewParameter("gamma", Ones(tensor.Shape{numFeatures}, backend)),
		beta:        NewParameter("beta", Zeros(tensor.Shape{numFeatures}, backend)),
		runningMean: tensor.Zeros[float32](tensor.Shape{1, numFeatures}, backend),
		runningVar:  tensor.Ones[float32](tensor.Shape{1, numFeatures}, backend),
	}
}

// SetTraining switches between batch and running statistics.
func (bn *BatchNorm1d[B]) SetTraining(training bool) {
	bn.training = training
}

// Forward normalizes a [batch, features] input.
func (bn *BatchNorm1d[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("BatchNorm1d.Forward: expected 2D input [batch, features], got shape %v", shape))
	}
	if shape[1] != bn.numFeatures {
		panic(fmt.Sprintf("BatchNorm1d.Forward: expected %d features, got %d", bn.numFeatures, shape[1]))
	}

	var mean, variance *tensor.Tensor[float32, B]
	if bn.training {
		mean = input.MeanDim(0, true)               // [1, features]
		diff := input.Sub(mean)                     // [batch, features]
		variance = diff.Mul(diff).MeanDim(0, true)  // biased variance, [1, features]
		bn.updateRunning(mean, variance, shape[0])
	} else {
		mean = bn.runningMean
		variance = bn.runningVar
	}

	normalized := input.Sub(mean).Div(variance.AddScalar(bn.eps).Sqrt())

	gamma := bn.gamma.Tensor().Reshape(1, bn.numFeatures)
	beta := bn.beta.Tensor().Reshape(1, bn.numFeatures)
	return normalized.Mul(gamma).Add(beta)
}

// updateRunning folds batch statistics into the running estimates. The
// running variance uses the unbiased estimator, matching the convention of
// separate batch/population statistics.
func (bn *BatchNorm1d[B]) updateRunning(mean, variance *tensor.Tensor[float32, B], batch int) {
	unbiased := variance
	if batch > 1 {
		unbiased = variance.MulScalar(float32(batch) / float32(batch-1))
	}
	bn.runningMean = bn.runningMean.MulScalar(1 - bn.momentum).Add(mean.MulScalar(bn.momentum))
	bn.runningVar = bn.runningVar.MulScalar(1 - bn.momentum).Add(unbiased.MulScalar(bn.momentum))
}

// Parameters returns the scale and shift parameters.
func (bn *BatchNorm1d[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta}
}
