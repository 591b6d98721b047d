package cpu

import (
	"fmt"

	"github.com/timewire-ml/timewire/internal/tensor"
)

// Reshape returns a zero-copy view with a different shape.
// The new shape must have the same number of elements.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	result, err := x.WithShape(newShape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the tensor's dimensions. If axes is empty, all
// dimensions are reversed (standard transpose for 2D).
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: expected %d axes, got %d", ndim, len(axes)))
	}
	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid axes permutation %v", axes))
		}
		seen[ax] = true
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("transpose: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		outShape[i] = shape[ax]
	}

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	srcStrides := shape.ComputeStrides()

	idx := make([]int, ndim)
	for i := range dst {
		off := 0
		for d, ax := range axes {
			off += idx[d] * srcStrides[ax]
		}
		dst[i] = src[off]
		incrementIndex(idx, outShape)
	}

	return result
}

// Cat concatenates tensors along the specified dimension.
// All tensors must have the same shape except along the concatenation dimension.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}

	shape := tensors[0].Shape()
	ndim := len(shape)
	dtype := tensors[0].DType()

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("cat: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if dtype != tensor.Float32 {
		panic(fmt.Sprintf("cat: unsupported dtype %s (only float32 supported)", dtype))
	}

	totalDim := 0
	for i, t := range tensors {
		tShape := t.Shape()
		if len(tShape) != ndim {
			panic(fmt.Sprintf("cat: tensor %d has %d dimensions, expected %d", i, len(tShape), ndim))
		}
		if t.DType() != dtype {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), dtype))
		}
		for d := 0; d < ndim; d++ {
			if d == dim {
				totalDim += tShape[d]
			} else if tShape[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d dimension %d is %d, expected %d", i, d, tShape[d], shape[d]))
			}
		}
	}

	outShape := shape.Clone()
	outShape[dim] = totalDim

	result, err := tensor.NewRaw(outShape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cat: %v", err))
	}

	// Copy block-wise: [outer, dim, inner] layout, inner blocks contiguous.
	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}

	dst := result.AsFloat32()
	outRowLen := totalDim * inner
	colOffset := 0
	for _, t := range tensors {
		src := t.AsFloat32()
		tDim := t.Shape()[dim]
		blockLen := tDim * inner
		for o := 0; o < outer; o++ {
			copy(dst[o*outRowLen+colOffset:o*outRowLen+colOffset+blockLen], src[o*blockLen:(o+1)*blockLen])
		}
		colOffset += blockLen
	}

	return result
}

// Split splits a tensor into parts of the given sizes along a dimension.
// The sizes must sum to the dimension's extent.
func (cpu *CPUBackend) Split(x *tensor.RawTensor, sizes []int, dim int) []*tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("split: dimension %d out of range for %dD tensor", dim, ndim))
	}

	total := 0
	for i, s := range sizes {
		if s <= 0 {
			panic(fmt.Sprintf("split: size %d at index %d must be positive", s, i))
		}
		total += s
	}
	if total != shape[dim] {
		panic(fmt.Sprintf("split: sizes %v sum to %d, expected %d", sizes, total, shape[dim]))
	}

	parts := make([]*tensor.RawTensor, len(sizes))
	start := 0
	for i, s := range sizes {
		parts[i] = cpu.Narrow(x, dim, start, s)
		start += s
	}
	return parts
}

// Narrow returns a copy of the slice [start, start+length) along a dimension.
func (cpu *CPUBackend) Narrow(x *tensor.RawTensor, dim, start, length int) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	if dim < 0 {
		dim = ndim + dim
	}
	if dim < 0 || dim >= ndim {
		panic(fmt.Sprintf("narrow: dimension %d out of range for %dD tensor", dim, ndim))
	}
	if start < 0 || length <= 0 || start+length > shape[dim] {
		panic(fmt.Sprintf("narrow: range [%d, %d) out of bounds for dimension of size %d", start, start+length, shape[dim]))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("narrow: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	outShape := shape.Clone()
	outShape[dim] = length

	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("narrow: %v", err))
	}

	outer, inner := 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < ndim; i++ {
		inner *= shape[i]
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	srcRowLen := shape[dim] * inner
	dstRowLen := length * inner
	for o := 0; o < outer; o++ {
		copy(dst[o*dstRowLen:(o+1)*dstRowLen], src[o*srcRowLen+start*inner:o*srcRowLen+(start+length)*inner])
	}

	return result
}

// RepeatRows repeats each row of a 2D tensor `times` times consecutively:
// (N, W) → (N*times, W) with row i mapped to rows [i*times, (i+1)*times).
func (cpu *CPUBackend) RepeatRows(x *tensor.RawTensor, times int) *tensor.RawTensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("repeatrows: expected 2D tensor, got %v", shape))
	}
	if times <= 0 {
		panic(fmt.Sprintf("repeatrows: times must be positive, got %d", times))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("repeatrows: unsupported dtype %s (only float32 supported)", x.DType()))
	}

	n, w := shape[0], shape[1]
	result, err := tensor.NewRaw(tensor.Shape{n * times, w}, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("repeatrows: %v", err))
	}

	src := x.AsFloat32()
	dst := result.AsFloat32()
	for i := 0; i < n; i++ {
		row := src[i*w : (i+1)*w]
		for r := 0; r < times; r++ {
			copy(dst[(i*times+r)*w:(i*times+r+1)*w], row)
		}
	}

	return result
}
