package tensor

import (
	"fmt"
	"math"
)

// Verify that MockBackend implements Backend.
var _ Backend = (*MockBackend)(nil)

// MockBackend is a simple backend for testing.
// It implements all operations naively for correctness verification.
type MockBackend struct{}

// NewMockBackend creates a new MockBackend.
func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

// Name returns the backend name.
func (m *MockBackend) Name() string {
	return "mock"
}

// Device returns the device type.
func (m *MockBackend) Device() Device {
	return CPU
}

// Add performs element-wise addition with broadcasting.
func (m *MockBackend) Add(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (m *MockBackend) Sub(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (m *MockBackend) Mul(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (m *MockBackend) Div(a, b *RawTensor) *RawTensor {
	return m.elementWise(a, b, func(x, y float64) float64 { return x / y })
}

// elementWise performs element-wise operations with broadcasting.
func (m *MockBackend) elementWise(a, b *RawTensor, op func(float64, float64) float64) *RawTensor {
	outShape, _, err := BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(err)
	}

	result, err := NewRaw(outShape, a.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	aData := m.toFloat64Slice(a)
	bData := m.toFloat64Slice(b)
	resultData := m.toFloat64Slice(result)

	for i := 0; i < outShape.NumElements(); i++ {
		aIdx := m.broadcastIndex(i, outShape, a.Shape())
		bIdx := m.broadcastIndex(i, outShape, b.Shape())
		resultData[i] = op(aData[aIdx], bData[bIdx])
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// MatMul performs 2D matrix multiplication.
func (m *MockBackend) MatMul(a, b *RawTensor) *RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic("MatMul only supports 2D tensors in mock backend")
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("incompatible shapes for MatMul: %v @ %v", aShape, bShape))
	}

	M, K := aShape[0], aShape[1]
	N := bShape[1]

	result, err := NewRaw(Shape{M, N}, a.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	aData := m.toFloat64Slice(a)
	bData := m.toFloat64Slice(b)
	resultData := m.toFloat64Slice(result)

	for i := 0; i < M; i++ {
		for j := 0; j < N; j++ {
			sum := 0.0
			for k := 0; k < K; k++ {
				sum += aData[i*K+k] * bData[k*N+j]
			}
			resultData[i*N+j] = sum
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// BatchMatMul performs batched 3D matrix multiplication.
func (m *MockBackend) BatchMatMul(a, b *RawTensor) *RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 3 || len(bShape) != 3 {
		panic("BatchMatMul requires 3D tensors")
	}
	if aShape[0] != bShape[0] || aShape[2] != bShape[1] {
		panic(fmt.Sprintf("incompatible shapes for BatchMatMul: %v @ %v", aShape, bShape))
	}

	B, M, K := aShape[0], aShape[1], aShape[2]
	N := bShape[2]

	result, err := NewRaw(Shape{B, M, N}, a.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	aData := m.toFloat64Slice(a)
	bData := m.toFloat64Slice(b)
	resultData := m.toFloat64Slice(result)

	for batch := 0; batch < B; batch++ {
		for i := 0; i < M; i++ {
			for j := 0; j < N; j++ {
				sum := 0.0
				for k := 0; k < K; k++ {
					sum += aData[batch*M*K+i*K+k] * bData[batch*K*N+k*N+j]
				}
				resultData[batch*M*N+i*N+j] = sum
			}
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Reshape changes tensor shape.
func (m *MockBackend) Reshape(t *RawTensor, newShape Shape) *RawTensor {
	if err := newShape.Validate(); err != nil {
		panic(err)
	}
	if t.NumElements() != newShape.NumElements() {
		panic(fmt.Sprintf("cannot reshape tensor with %d elements to shape %v (%d elements)",
			t.NumElements(), newShape, newShape.NumElements()))
	}

	result, err := NewRaw(newShape, t.DType(), m.Device())
	if err != nil {
		panic(err)
	}
	copy(result.Data(), t.Data())
	return result
}

// Transpose transposes tensor dimensions.
func (m *MockBackend) Transpose(t *RawTensor, axes ...int) *RawTensor {
	shape := t.Shape()

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, len(shape))
		for i := range axes {
			axes[i] = len(shape) - 1 - i
		}
	}
	if len(axes) != len(shape) {
		panic(fmt.Sprintf("axes length %d doesn't match tensor dimensions %d", len(axes), len(shape)))
	}

	newShape := make(Shape, len(shape))
	for i, axis := range axes {
		if axis < 0 || axis >= len(shape) {
			panic(fmt.Sprintf("axis %d out of bounds for tensor with %d dimensions", axis, len(shape)))
		}
		newShape[i] = shape[axis]
	}

	result, err := NewRaw(newShape, t.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	tData := m.toFloat64Slice(t)
	resultData := m.toFloat64Slice(result)

	oldStrides := shape.ComputeStrides()
	newStrides := newShape.ComputeStrides()

	for i := 0; i < t.NumElements(); i++ {
		indices := make([]int, len(shape))
		temp := i
		for j := 0; j < len(shape); j++ {
			indices[j] = temp / oldStrides[j]
			temp %= oldStrides[j]
		}

		newIdx := 0
		for j, axis := range axes {
			newIdx += indices[axis] * newStrides[j]
		}
		resultData[newIdx] = tData[i]
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// MulScalar multiplies every element by a scalar.
func (m *MockBackend) MulScalar(x *RawTensor, scalar any) *RawTensor {
	s := m.scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v * s })
}

// AddScalar adds a scalar to every element.
func (m *MockBackend) AddScalar(x *RawTensor, scalar any) *RawTensor {
	s := m.scalarToFloat64(scalar)
	return m.unary(x, func(v float64) float64 { return v + s })
}

// Exp computes e^x element-wise.
func (m *MockBackend) Exp(x *RawTensor) *RawTensor {
	return m.unary(x, math.Exp)
}

// Sqrt computes the square root element-wise.
func (m *MockBackend) Sqrt(x *RawTensor) *RawTensor {
	return m.unary(x, math.Sqrt)
}

// Sigmoid computes 1/(1+e^-x) element-wise.
func (m *MockBackend) Sigmoid(x *RawTensor) *RawTensor {
	return m.unary(x, func(v float64) float64 { return 1.0 / (1.0 + math.Exp(-v)) })
}

// LeakyReLU computes max(x, negSlope*x) element-wise.
func (m *MockBackend) LeakyReLU(x *RawTensor, negSlope float64) *RawTensor {
	return m.unary(x, func(v float64) float64 {
		if v >= 0 {
			return v
		}
		return negSlope * v
	})
}

func (m *MockBackend) unary(x *RawTensor, op func(float64) float64) *RawTensor {
	result, err := NewRaw(x.Shape(), x.DType(), m.Device())
	if err != nil {
		panic(err)
	}
	data := m.toFloat64Slice(x)
	for i, v := range data {
		data[i] = op(v)
	}
	m.fromFloat64Slice(data, result)
	return result
}

// SumDim sums along a dimension.
func (m *MockBackend) SumDim(x *RawTensor, dim int, keepDim bool) *RawTensor {
	return m.reduceDim(x, dim, keepDim, false)
}

// MeanDim averages along a dimension.
func (m *MockBackend) MeanDim(x *RawTensor, dim int, keepDim bool) *RawTensor {
	return m.reduceDim(x, dim, keepDim, true)
}

func (m *MockBackend) reduceDim(x *RawTensor, dim int, keepDim, mean bool) *RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("reduce dim %d out of bounds for shape %v", dim, shape))
	}

	outShape := Shape{}
	for i, d := range shape {
		if i == dim {
			if keepDim {
				outShape = append(outShape, 1)
			}
			continue
		}
		outShape = append(outShape, d)
	}
	if len(outShape) == 0 {
		outShape = Shape{1}
	}

	result, err := NewRaw(outShape, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	n := shape[dim]

	data := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			sum := 0.0
			for k := 0; k < n; k++ {
				sum += data[o*n*inner+k*inner+in]
			}
			if mean {
				sum /= float64(n)
			}
			resultData[o*inner+in] = sum
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Cat concatenates tensors along a dimension.
func (m *MockBackend) Cat(tensors []*RawTensor, dim int) *RawTensor {
	if len(tensors) == 0 {
		panic("Cat requires at least one tensor")
	}

	first := tensors[0].Shape()
	outShape := first.Clone()
	for _, t := range tensors[1:] {
		outShape[dim] += t.Shape()[dim]
	}

	result, err := NewRaw(outShape, tensors[0].DType(), m.Device())
	if err != nil {
		panic(err)
	}

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= first[i]
	}
	inner := 1
	for i := dim + 1; i < len(first); i++ {
		inner *= first[i]
	}

	resultData := m.toFloat64Slice(result)
	outRow := outShape[dim] * inner
	offset := 0
	for _, t := range tensors {
		data := m.toFloat64Slice(t)
		block := t.Shape()[dim] * inner
		for o := 0; o < outer; o++ {
			copy(resultData[o*outRow+offset:o*outRow+offset+block], data[o*block:(o+1)*block])
		}
		offset += block
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Narrow slices a contiguous range along a dimension.
func (m *MockBackend) Narrow(x *RawTensor, dim, start, length int) *RawTensor {
	shape := x.Shape()
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("narrow dim %d out of bounds for shape %v", dim, shape))
	}
	if start < 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow range [%d, %d) out of bounds for dim size %d", start, start+length, shape[dim]))
	}

	outShape := shape.Clone()
	outShape[dim] = length

	result, err := NewRaw(outShape, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	data := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for o := 0; o < outer; o++ {
		src := o*shape[dim]*inner + start*inner
		copy(resultData[o*length*inner:(o+1)*length*inner], data[src:src+length*inner])
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Split splits a tensor into chunks of the given sizes along a dimension.
func (m *MockBackend) Split(x *RawTensor, sizes []int, dim int) []*RawTensor {
	total := 0
	for _, s := range sizes {
		total += s
	}
	if total != x.Shape()[dim] {
		panic(fmt.Sprintf("split sizes %v do not sum to dim size %d", sizes, x.Shape()[dim]))
	}

	result := make([]*RawTensor, len(sizes))
	start := 0
	for i, s := range sizes {
		result[i] = m.Narrow(x, dim, start, s)
		start += s
	}
	return result
}

// RepeatRows repeats each row of a 2D tensor consecutively.
func (m *MockBackend) RepeatRows(x *RawTensor, times int) *RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("RepeatRows requires a 2D tensor, got shape %v", shape))
	}

	n, w := shape[0], shape[1]
	result, err := NewRaw(Shape{n * times, w}, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	data := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for i := 0; i < n; i++ {
		for r := 0; r < times; r++ {
			copy(resultData[(i*times+r)*w:(i*times+r+1)*w], data[i*w:(i+1)*w])
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// IndexSelect gathers rows of a 2D tensor.
func (m *MockBackend) IndexSelect(x *RawTensor, rows []int) *RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("IndexSelect requires a 2D tensor, got shape %v", shape))
	}

	w := shape[1]
	result, err := NewRaw(Shape{len(rows), w}, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	data := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for i, r := range rows {
		if r < 0 || r >= shape[0] {
			panic(fmt.Sprintf("IndexSelect row %d out of range [0, %d)", r, shape[0]))
		}
		copy(resultData[i*w:(i+1)*w], data[r*w:(r+1)*w])
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// IndexCopy writes src rows into x at the given row indices, in place.
func (m *MockBackend) IndexCopy(x *RawTensor, rows []int, src *RawTensor) {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("IndexCopy requires a 2D tensor, got shape %v", shape))
	}
	if src.Shape()[0] != len(rows) || src.Shape()[1] != shape[1] {
		panic(fmt.Sprintf("IndexCopy src shape %v does not match %d rows of width %d", src.Shape(), len(rows), shape[1]))
	}

	w := shape[1]
	data := m.toFloat64Slice(x)
	srcData := m.toFloat64Slice(src)
	for i, r := range rows {
		if r < 0 || r >= shape[0] {
			panic(fmt.Sprintf("IndexCopy row %d out of range [0, %d)", r, shape[0]))
		}
		copy(data[r*w:(r+1)*w], srcData[i*w:(i+1)*w])
	}
	m.fromFloat64Slice(data, x)
}

// SegmentSum sums rows of a 2D tensor into segments. Empty segments are zero.
func (m *MockBackend) SegmentSum(x *RawTensor, index []int, segments int) *RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SegmentSum requires a 2D tensor, got shape %v", shape))
	}
	if len(index) != shape[0] {
		panic(fmt.Sprintf("SegmentSum index has %d entries for %d rows", len(index), shape[0]))
	}

	w := shape[1]
	result, err := NewRaw(Shape{segments, w}, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	data := m.toFloat64Slice(x)
	resultData := m.toFloat64Slice(result)
	for i, seg := range index {
		for j := 0; j < w; j++ {
			resultData[seg*w+j] += data[i*w+j]
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// SegmentMax takes the element-wise max of rows per segment. Empty segments
// are zero.
func (m *MockBackend) SegmentMax(x *RawTensor, index []int, segments int) *RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("SegmentMax requires a 2D tensor, got shape %v", shape))
	}
	if len(index) != shape[0] {
		panic(fmt.Sprintf("SegmentMax index has %d entries for %d rows", len(index), shape[0]))
	}

	w := shape[1]
	result, err := NewRaw(Shape{segments, w}, x.DType(), m.Device())
	if err != nil {
		panic(err)
	}

	resultData := m.toFloat64Slice(result)
	touched := make([]bool, segments)
	for i := range resultData {
		resultData[i] = math.Inf(-1)
	}

	data := m.toFloat64Slice(x)
	for i, seg := range index {
		touched[seg] = true
		for j := 0; j < w; j++ {
			if data[i*w+j] > resultData[seg*w+j] {
				resultData[seg*w+j] = data[i*w+j]
			}
		}
	}
	for seg := 0; seg < segments; seg++ {
		if !touched[seg] {
			for j := 0; j < w; j++ {
				resultData[seg*w+j] = 0
			}
		}
	}

	m.fromFloat64Slice(resultData, result)
	return result
}

// Helper functions

func (m *MockBackend) scalarToFloat64(scalar any) float64 {
	switch s := scalar.(type) {
	case float64:
		return s
	case float32:
		return float64(s)
	case int:
		return float64(s)
	case int32:
		return float64(s)
	default:
		panic(fmt.Sprintf("unsupported scalar type: %T", scalar))
	}
}

func (m *MockBackend) toFloat64Slice(t *RawTensor) []float64 {
	switch t.DType() {
	case Float32:
		src := t.AsFloat32()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	case Float64:
		return t.AsFloat64()
	case Int32:
		src := t.AsInt32()
		dst := make([]float64, len(src))
		for i, v := range src {
			dst[i] = float64(v)
		}
		return dst
	default:
		panic(fmt.Sprintf("unsupported dtype: %s", t.DType()))
	}
}

func (m *MockBackend) fromFloat64Slice(src []float64, t *RawTensor) {
	switch t.DType() {
	case Float32:
		dst := t.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case Float64:
		copy(t.AsFloat64(), src)
	case Int32:
		dst := t.AsInt32()
		for i, v := range src {
			dst[i] = int32(v)
		}
	}
}

func (m *MockBackend) broadcastIndex(flatIdx int, outShape, inShape Shape) int {
	outStrides := outShape.ComputeStrides()
	indices := make([]int, len(outShape))

	temp := flatIdx
	for i := 0; i < len(outShape); i++ {
		indices[i] = temp / outStrides[i]
		temp %= outStrides[i]
	}

	inStrides := inShape.ComputeStrides()
	inIdx := 0

	offset := len(outShape) - len(inShape)
	for i := 0; i < len(inShape); i++ {
		outDimIdx := indices[offset+i]
		if inShape[i] == 1 {
			outDimIdx = 0
		}
		inIdx += outDimIdx * inStrides[i]
	}

	return inIdx
}
