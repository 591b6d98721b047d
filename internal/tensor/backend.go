package tensor

// Backend defines the interface that all compute backends must implement.
// Backends handle the actual computation for tensor operations.
//
// Only a CPU implementation ships today; the interface is the seam where a
// GPU backend would slot in.
type Backend interface {
	// Element-wise binary operations (NumPy-style broadcasting)
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Matrix operations
	MatMul(a, b *RawTensor) *RawTensor

	// BatchMatMul performs batched matrix multiplication for 3D tensors:
	// [B, M, K] @ [B, K, N] -> [B, M, N]
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Shape operations
	Reshape(t *RawTensor, newShape Shape) *RawTensor
	Transpose(t *RawTensor, axes ...int) *RawTensor

	// Scalar operations (element-wise with scalar)
	MulScalar(x *RawTensor, scalar any) *RawTensor
	AddScalar(x *RawTensor, scalar any) *RawTensor

	// Math operations (element-wise)
	Exp(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor

	// Activation functions
	Sigmoid(x *RawTensor) *RawTensor
	LeakyReLU(x *RawTensor, negSlope float64) *RawTensor

	// Reduction operations
	SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor

	// Manipulation operations
	Cat(tensors []*RawTensor, dim int) *RawTensor   // concatenate along dimension
	Split(x *RawTensor, sizes []int, dim int) []*RawTensor // split into given sizes
	Narrow(x *RawTensor, dim, start, length int) *RawTensor // contiguous slice along dimension
	RepeatRows(x *RawTensor, times int) *RawTensor  // repeat each row of a 2D tensor consecutively

	// Row indexing and segment reductions over 2D tensors. These are the
	// message-passing primitives: gather per-edge rows, scatter per-node
	// rows, and reduce edge messages into node slots.
	IndexSelect(x *RawTensor, rows []int) *RawTensor
	IndexCopy(x *RawTensor, rows []int, src *RawTensor)
	SegmentSum(x *RawTensor, index []int, segments int) *RawTensor
	SegmentMax(x *RawTensor, index []int, segments int) *RawTensor

	// Metadata
	Name() string
	Device() Device
}
