package tensor

// Add performs element-wise addition with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Add(t.raw, other.raw), t.backend)
}

// Sub performs element-wise subtraction with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Sub(t.raw, other.raw), t.backend)
}

// Mul performs element-wise multiplication with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Mul(t.raw, other.raw), t.backend)
}

// Div performs element-wise division with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.Div(t.raw, other.raw), t.backend)
}

// MatMul performs 2D matrix multiplication: (M, K) @ (K, N) → (M, N).
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.MatMul(t.raw, other.raw), t.backend)
}

// BatchMatMul performs batched matrix multiplication:
// (B, M, K) @ (B, K, N) → (B, M, N).
func (t *Tensor[T, B]) BatchMatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return New[T, B](t.backend.BatchMatMul(t.raw, other.raw), t.backend)
}

// Reshape returns a tensor with the same data but different shape.
// The new shape must have the same number of elements.
func (t *Tensor[T, B]) Reshape(newShape ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Reshape(t.raw, Shape(newShape)), t.backend)
}

// Transpose transposes the tensor by permuting its dimensions.
// If axes is empty, reverses all dimensions.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return New[T, B](t.backend.Transpose(t.raw, axes...), t.backend)
}

// T is a shortcut for 2D transpose (swaps rows and columns).
// Panics if the tensor is not 2D.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	if len(t.Shape()) != 2 {
		panic("T() only works for 2D tensors")
	}
	return t.Transpose(1, 0)
}

// MulScalar multiplies every element by a scalar.
func (t *Tensor[T, B]) MulScalar(scalar T) *Tensor[T, B] {
	return New[T, B](t.backend.MulScalar(t.raw, scalar), t.backend)
}

// AddScalar adds a scalar to every element.
func (t *Tensor[T, B]) AddScalar(scalar T) *Tensor[T, B] {
	return New[T, B](t.backend.AddScalar(t.raw, scalar), t.backend)
}

// Exp applies the element-wise exponential.
func (t *Tensor[T, B]) Exp() *Tensor[T, B] {
	return New[T, B](t.backend.Exp(t.raw), t.backend)
}

// Sqrt applies the element-wise square root.
func (t *Tensor[T, B]) Sqrt() *Tensor[T, B] {
	return New[T, B](t.backend.Sqrt(t.raw), t.backend)
}

// Sigmoid applies the element-wise logistic function 1/(1+exp(-x)).
func (t *Tensor[T, B]) Sigmoid() *Tensor[T, B] {
	return New[T, B](t.backend.Sigmoid(t.raw), t.backend)
}

// LeakyReLU applies the element-wise leaky rectifier with the given
// negative slope.
func (t *Tensor[T, B]) LeakyReLU(negSlope float64) *Tensor[T, B] {
	return New[T, B](t.backend.LeakyReLU(t.raw, negSlope), t.backend)
}

// SumDim sums along a dimension.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.SumDim(t.raw, dim, keepDim), t.backend)
}

// MeanDim averages along a dimension.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return New[T, B](t.backend.MeanDim(t.raw, dim, keepDim), t.backend)
}

// Split splits the tensor into parts of the given sizes along a dimension.
// The sizes must sum to the dimension's extent.
func (t *Tensor[T, B]) Split(sizes []int, dim int) []*Tensor[T, B] {
	raws := t.backend.Split(t.raw, sizes, dim)
	out := make([]*Tensor[T, B], len(raws))
	for i, r := range raws {
		out[i] = New[T, B](r, t.backend)
	}
	return out
}

// Narrow returns a contiguous slice [start, start+length) along a dimension.
func (t *Tensor[T, B]) Narrow(dim, start, length int) *Tensor[T, B] {
	return New[T, B](t.backend.Narrow(t.raw, dim, start, length), t.backend)
}

// RepeatRows repeats each row of a 2D tensor `times` times consecutively:
// (N, W) → (N*times, W) with row i mapped to rows [i*times, (i+1)*times).
func (t *Tensor[T, B]) RepeatRows(times int) *Tensor[T, B] {
	return New[T, B](t.backend.RepeatRows(t.raw, times), t.backend)
}

// IndexSelect gathers the given rows of a 2D tensor: (N, W) → (len(rows), W).
func (t *Tensor[T, B]) IndexSelect(rows []int) *Tensor[T, B] {
	return New[T, B](t.backend.IndexSelect(t.raw, rows), t.backend)
}

// IndexCopy writes the rows of src into this tensor at the given row
// indices, in place. src must have shape (len(rows), W).
func (t *Tensor[T, B]) IndexCopy(rows []int, src *Tensor[T, B]) {
	t.backend.IndexCopy(t.raw, rows, src.raw)
}

// SegmentSum sums the rows of a 2D tensor into `segments` output rows,
// routing row i to output row index[i]. Empty segments stay zero.
func (t *Tensor[T, B]) SegmentSum(index []int, segments int) *Tensor[T, B] {
	return New[T, B](t.backend.SegmentSum(t.raw, index, segments), t.backend)
}

// SegmentMax takes the element-wise maximum of the rows routed to each
// segment. Empty segments yield a zero row: the kernel seeds with -Inf and
// rewrites untouched segments to zero, so callers never observe sentinels.
func (t *Tensor[T, B]) SegmentMax(index []int, segments int) *Tensor[T, B] {
	return New[T, B](t.backend.SegmentMax(t.raw, index, segments), t.backend)
}
